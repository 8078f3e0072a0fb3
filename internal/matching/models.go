// internal/matching/models.go
package matching

// Specialty is a coaching focus area tag shared by coach profiles and the
// client questionnaire.
type Specialty string

const (
	SpecialtyCareerGrowth   Specialty = "Career Growth"
	SpecialtyLeadership     Specialty = "Leadership"
	SpecialtyExecutive      Specialty = "Executive Coaching"
	SpecialtyLifeCoaching   Specialty = "Life Coaching"
	SpecialtyHealthWellness Specialty = "Health & Wellness"
	SpecialtyRelationships  Specialty = "Relationships"
	SpecialtyBusiness       Specialty = "Business"
	SpecialtyMindset        Specialty = "Mindset"
)

// SessionFormat is a way a coach can deliver sessions.
type SessionFormat string

const (
	FormatOnline   SessionFormat = "Online"
	FormatInPerson SessionFormat = "In-Person"
	FormatHybrid   SessionFormat = "Hybrid"
)

// ExperienceTier is the coaching experience band a client asks for.
type ExperienceTier string

const (
	TierAny          ExperienceTier = "any"
	TierBeginner     ExperienceTier = "beginner"
	TierIntermediate ExperienceTier = "intermediate"
	TierAdvanced     ExperienceTier = "advanced"
)

// IsAny reports whether the tier expresses no preference.
func (t ExperienceTier) IsAny() bool {
	return t == "" || t == TierAny
}

// Valid reports whether t is one of the known tiers or unset.
func (t ExperienceTier) Valid() bool {
	switch t {
	case "", TierAny, TierBeginner, TierIntermediate, TierAdvanced:
		return true
	}
	return false
}

// Hour thresholds for deriving a coach's tier from total coaching hours.
const (
	BeginnerMinHours     = 100
	IntermediateMinHours = 500
	AdvancedMinHours     = 1500
)

// TierForHours maps total coaching hours to an experience tier:
// beginner [100,500], intermediate (500,1500], advanced above 1500.
// Fewer than 100 hours yields the empty tier.
func TierForHours(hours int) ExperienceTier {
	switch {
	case hours > AdvancedMinHours:
		return TierAdvanced
	case hours > IntermediateMinHours:
		return TierIntermediate
	case hours >= BeginnerMinHours:
		return TierBeginner
	default:
		return ""
	}
}

// CoachProfile is the read-only snapshot of a coach consumed by scoring.
// Every field is optional; nil numbers read as zero and nil slices as empty sets.
type CoachProfile struct {
	ID               string          `json:"id,omitempty"`
	Name             string          `json:"name,omitempty"`
	Specialties      []Specialty     `json:"specialties,omitempty"`
	AvailableFormats []SessionFormat `json:"availableFormats,omitempty"`
	HourlyRate       *float64        `json:"hourlyRate,omitempty"`
	Currency         string          `json:"currency,omitempty"`
	Certifications   []string        `json:"additionalCertifications,omitempty"`
	Languages        []string        `json:"languages,omitempty"`
	CoachingHours    *int            `json:"coachingHours,omitempty"`
	AverageRating    *float64        `json:"averageRating,omitempty"`
	TotalReviews     *int            `json:"totalReviews,omitempty"`
}

// Rate returns the hourly rate, or 0 when unset.
func (c CoachProfile) Rate() float64 {
	if c.HourlyRate == nil {
		return 0
	}
	return *c.HourlyRate
}

// HasRate reports whether the coach published an hourly rate. A rate of 0 is
// a published rate (free sessions).
func (c CoachProfile) HasRate() bool {
	return c.HourlyRate != nil
}

// Hours returns total coaching hours, or 0 when unset.
func (c CoachProfile) Hours() int {
	if c.CoachingHours == nil {
		return 0
	}
	return *c.CoachingHours
}

// Rating returns the average rating, or 0 when unset.
func (c CoachProfile) Rating() float64 {
	if c.AverageRating == nil {
		return 0
	}
	return *c.AverageRating
}

// Reviews returns the review count, or 0 when unset.
func (c CoachProfile) Reviews() int {
	if c.TotalReviews == nil {
		return 0
	}
	return *c.TotalReviews
}

// ClientPreferences are the questionnaire answers of a prospective client.
type ClientPreferences struct {
	Specialty      Specialty       `json:"goal,omitempty"`
	Formats        []SessionFormat `json:"preferredFormat,omitempty"`
	Budget         *float64        `json:"budgetRange,omitempty"`
	Certifications []string        `json:"preferredCertifications,omitempty"`
	Languages      []string        `json:"languagePreferences,omitempty"`
	ExperienceTier ExperienceTier  `json:"experienceLevel,omitempty"`
}

// MaxBudget returns the budget, or 0 when unset.
func (p ClientPreferences) MaxBudget() float64 {
	if p.Budget == nil {
		return 0
	}
	return *p.Budget
}
