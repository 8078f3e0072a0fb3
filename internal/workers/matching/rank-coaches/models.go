// internal/workers/matching/rank-coaches/models.go
package rankcoaches

import "coach-match-workers/internal/matching"

// Input lists candidates inline, by id, or both. Inline profiles win over
// loaded ones when the same id appears twice.
type Input struct {
	Coaches     []matching.CoachProfile    `json:"coaches"`
	CoachIDs    []string                   `json:"coachIds,omitempty"`
	Preferences matching.ClientPreferences `json:"preferences"`
	MinScore    *int                       `json:"minScore,omitempty"`
	Limit       int                        `json:"limit,omitempty"`
}

// Output counts candidates three ways: Skipped (no id or invalid profile),
// TotalEvaluated (scored) and FilteredOut (scored below minScore).
type Output struct {
	RankedCoaches  []RankedCoach `json:"rankedCoaches"`
	TotalEvaluated int           `json:"totalEvaluated"`
	FilteredOut    int           `json:"filteredOut"`
	Skipped        int           `json:"skipped"`
}

type RankedCoach struct {
	CoachID       string   `json:"coachId"`
	Name          string   `json:"name"`
	MatchScore    int      `json:"matchScore"`
	MatchReason   string   `json:"matchReason"`
	AverageRating *float64 `json:"averageRating,omitempty"`
	TotalReviews  *int     `json:"totalReviews,omitempty"`
}
