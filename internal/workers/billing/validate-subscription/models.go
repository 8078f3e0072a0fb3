// internal/workers/billing/validate-subscription/models.go
package validatesubscription

import (
	"slices"
	"time"
)

type Input struct {
	CoachID         string `json:"coachId"`
	RequiredFeature string `json:"requiredFeature,omitempty"`
}

// Output represents the output data after subscription validation
type Output struct {
	IsValid   bool       `json:"isValid"`
	TierLevel string     `json:"tierLevel"`
	Features  []string   `json:"features,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// Subscription represents a coach's listing plan
type Subscription struct {
	CoachID   string     `json:"coachId"`
	Tier      string     `json:"tier"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	IsActive  bool       `json:"isActive"`
}

const (
	FeatureBasicListing    = "basic_listing"
	FeatureMatchScores     = "match_scores"
	FeatureReviewResponses = "review_responses"
	FeatureAnalytics       = "analytics"
	FeatureFeaturedListing = "featured_listing"
	FeatureMatchBadges     = "match_badges"
)

// tierFeatures lists what each plan unlocks on the coach's listing.
var tierFeatures = map[string][]string{
	"free":         {FeatureBasicListing},
	"basic":        {FeatureBasicListing, FeatureMatchScores},
	"professional": {FeatureBasicListing, FeatureMatchScores, FeatureReviewResponses, FeatureAnalytics},
	"premium": {
		FeatureBasicListing, FeatureMatchScores, FeatureReviewResponses, FeatureAnalytics,
		FeatureFeaturedListing, FeatureMatchBadges,
	},
}

// Features returns the features of tier and whether the tier is known.
func Features(tier string) ([]string, bool) {
	f, ok := tierFeatures[tier]
	return slices.Clone(f), ok
}
