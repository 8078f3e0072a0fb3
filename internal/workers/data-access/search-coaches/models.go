// internal/workers/data-access/search-coaches/models.go
package searchcoaches

import "coach-match-workers/internal/matching"

type Input struct {
	IndexName   string                     `json:"indexName,omitempty"`
	Keywords    string                     `json:"keywords,omitempty"`
	Preferences matching.ClientPreferences `json:"preferences"`
	Pagination  Pagination                 `json:"pagination"`
}

type Pagination struct {
	From int `json:"from"`
	Size int `json:"size"`
}

type Output struct {
	Coaches   []matching.CoachProfile `json:"coaches"`
	TotalHits int64                   `json:"totalHits"`
	MaxScore  float64                 `json:"maxScore"`
	Took      int64                   `json:"took"` // milliseconds
}
