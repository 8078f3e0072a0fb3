// internal/workers/matching/calculate-match-score/models.go
package calculatematchscore

import "coach-match-workers/internal/matching"

// Input carries either an inline coach profile or the id to load it by.
type Input struct {
	CoachID     string                     `json:"coachId,omitempty"`
	Coach       *matching.CoachProfile     `json:"coach,omitempty"`
	Preferences matching.ClientPreferences `json:"preferences"`
}

type Output struct {
	CoachID     string            `json:"coachId"`
	MatchScore  int               `json:"matchScore"`
	MatchReason string            `json:"matchReason"`
	Breakdown   []matching.Factor `json:"breakdown"`
}
