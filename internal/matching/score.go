// internal/matching/score.go
package matching

import (
	"math"
	"slices"
)

// Criterion weights. Each evaluated criterion adds its weight to the maximum.
const (
	WeightSpecialty      = 25.0
	WeightFormat         = 15.0
	WeightBudget         = 20.0
	WeightCertifications = 15.0
	WeightLanguages      = 10.0
	WeightExperience     = 10.0
	WeightReviews        = 5.0
)

// budgetTolerance is how far over budget a rate may go and still earn half credit.
const budgetTolerance = 1.2

// Criterion names a scoring criterion in a Breakdown.
type Criterion string

const (
	CriterionSpecialty      Criterion = "specialty"
	CriterionFormat         Criterion = "format"
	CriterionBudget         Criterion = "budget"
	CriterionCertifications Criterion = "certifications"
	CriterionLanguages      Criterion = "languages"
	CriterionExperience     Criterion = "experience"
	CriterionReviews        Criterion = "reviews"
)

// Factor is one criterion's contribution to a score.
type Factor struct {
	Criterion Criterion `json:"criterion"`
	Points    float64   `json:"points"`
	MaxPoints float64   `json:"maxPoints"`
	Evaluated bool      `json:"evaluated"`
}

// Match is the full result of comparing one coach with one client.
type Match struct {
	Score     int      `json:"matchScore"`
	Reason    string   `json:"matchReason"`
	Breakdown []Factor `json:"breakdown"`
}

// Evaluate scores coach against prefs and explains the result.
func Evaluate(coach CoachProfile, prefs ClientPreferences) Match {
	breakdown := factors(coach, prefs)
	return Match{
		Score:     percentage(breakdown),
		Reason:    Explain(coach, prefs),
		Breakdown: breakdown,
	}
}

// Score returns the weighted compatibility of coach and prefs in [0,100].
func Score(coach CoachProfile, prefs ClientPreferences) int {
	return percentage(factors(coach, prefs))
}

func factors(coach CoachProfile, prefs ClientPreferences) []Factor {
	return []Factor{
		specialtyFit(coach, prefs),
		formatFit(coach, prefs),
		budgetFit(coach, prefs),
		certificationFit(coach, prefs),
		languageFit(coach, prefs),
		experienceFit(coach, prefs),
		reviewFit(coach),
	}
}

func percentage(breakdown []Factor) int {
	var total, max float64
	for _, f := range breakdown {
		if !f.Evaluated {
			continue
		}
		total += f.Points
		max += f.MaxPoints
	}
	if max == 0 {
		return 0
	}

	score := int(math.Round(100 * total / max))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// specialtyFit is skipped entirely when the client named no specialty, unlike
// every other criterion which credits "no preference" with full weight.
func specialtyFit(coach CoachProfile, prefs ClientPreferences) Factor {
	f := Factor{Criterion: CriterionSpecialty, MaxPoints: WeightSpecialty}
	if prefs.Specialty == "" {
		f.MaxPoints = 0
		return f
	}
	f.Evaluated = true
	if slices.Contains(coach.Specialties, prefs.Specialty) {
		f.Points = WeightSpecialty
	}
	return f
}

func formatFit(coach CoachProfile, prefs ClientPreferences) Factor {
	f := Factor{Criterion: CriterionFormat, MaxPoints: WeightFormat, Evaluated: true}
	if len(prefs.Formats) == 0 || sharesAny(prefs.Formats, coach.AvailableFormats) {
		f.Points = WeightFormat
	}
	return f
}

func budgetFit(coach CoachProfile, prefs ClientPreferences) Factor {
	f := Factor{Criterion: CriterionBudget, MaxPoints: WeightBudget, Evaluated: true}
	if !coach.HasRate() {
		return f
	}

	rate, budget := coach.Rate(), prefs.MaxBudget()
	switch {
	case rate <= budget:
		f.Points = WeightBudget
	case rate <= budget*budgetTolerance:
		f.Points = WeightBudget / 2
	}
	return f
}

func certificationFit(coach CoachProfile, prefs ClientPreferences) Factor {
	f := Factor{Criterion: CriterionCertifications, MaxPoints: WeightCertifications, Evaluated: true}
	if len(prefs.Certifications) == 0 {
		f.Points = WeightCertifications
		return f
	}

	shared := countShared(prefs.Certifications, coach.Certifications)
	f.Points = math.Round(WeightCertifications * float64(shared) / float64(len(prefs.Certifications)))
	return f
}

func languageFit(coach CoachProfile, prefs ClientPreferences) Factor {
	f := Factor{Criterion: CriterionLanguages, MaxPoints: WeightLanguages, Evaluated: true}
	if len(prefs.Languages) == 0 || sharesAny(prefs.Languages, coach.Languages) {
		f.Points = WeightLanguages
	}
	return f
}

func experienceFit(coach CoachProfile, prefs ClientPreferences) Factor {
	f := Factor{Criterion: CriterionExperience, MaxPoints: WeightExperience, Evaluated: true}
	if prefs.ExperienceTier.IsAny() {
		f.Points = WeightExperience
		return f
	}

	hours := coach.Hours()
	switch {
	case TierForHours(hours) == prefs.ExperienceTier:
		f.Points = WeightExperience
	case hours > BeginnerMinHours:
		f.Points = WeightExperience / 2
	}
	return f
}

// reviewFit always counts toward the maximum, so coaches without reviews can
// never reach 100.
func reviewFit(coach CoachProfile) Factor {
	f := Factor{Criterion: CriterionReviews, MaxPoints: WeightReviews, Evaluated: true}
	reviews := coach.Reviews()
	if reviews < 1 {
		return f
	}

	quality := coach.Rating() / 5 * 3
	f.Points = math.Round(quality + volumeBonus(reviews))
	return f
}

func volumeBonus(reviews int) float64 {
	switch {
	case reviews >= 20:
		return 2
	case reviews >= 10:
		return 1.5
	case reviews >= 5:
		return 1
	case reviews >= 2:
		return 0.5
	default:
		return 0
	}
}

func sharesAny[T comparable](want, have []T) bool {
	_, ok := firstShared(want, have)
	return ok
}

// firstShared returns the first element of want that also appears in have.
func firstShared[T comparable](want, have []T) (T, bool) {
	for _, w := range want {
		if slices.Contains(have, w) {
			return w, true
		}
	}
	var zero T
	return zero, false
}

func countShared[T comparable](want, have []T) int {
	n := 0
	for _, w := range want {
		if slices.Contains(have, w) {
			n++
		}
	}
	return n
}
