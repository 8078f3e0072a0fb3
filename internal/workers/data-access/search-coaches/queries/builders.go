package queries

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"coach-match-workers/internal/matching"
)

var (
	ErrMissingIndex = errors.New("index name is required")
)

const (
	DefaultSize = 20
	MaxSize     = 100
)

// budgetTolerance mirrors the half-credit band of the budget criterion so
// search never drops a coach that scoring would still reward.
const budgetTolerance = 1.2

// budgetFilter keeps coaches priced within the tolerance band and coaches
// without a published rate.
func budgetFilter(budget float64) map[string]interface{} {
	return map[string]interface{}{
		"bool": map[string]interface{}{
			"should": []interface{}{
				map[string]interface{}{
					"range": map[string]interface{}{
						"hourly_rate": map[string]interface{}{"lte": budget * budgetTolerance},
					},
				},
				map[string]interface{}{
					"bool": map[string]interface{}{
						"must_not": map[string]interface{}{
							"exists": map[string]interface{}{"field": "hourly_rate"},
						},
					},
				},
			},
			"minimum_should_match": 1,
		},
	}
}

// CoachQuery describes one coach search.
type CoachQuery struct {
	Index       string
	Keywords    string
	Preferences matching.ClientPreferences
	From        int
	Size        int
}

// Normalize clamps pagination: size defaults to 20 and is capped at 100.
func (q *CoachQuery) Normalize() {
	if q.Size < 1 {
		q.Size = DefaultSize
	}
	if q.Size > MaxSize {
		q.Size = MaxSize
	}
	if q.From < 0 {
		q.From = 0
	}
}

// BuildQuery builds the search request for q.
func BuildQuery(q CoachQuery) (*esapi.SearchRequest, error) {
	if q.Index == "" {
		return nil, ErrMissingIndex
	}
	q.Normalize()

	body, err := json.Marshal(BuildCoachSearchBody(q))
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	return &esapi.SearchRequest{
		Index:          []string{q.Index},
		Body:           bytes.NewReader(body),
		From:           &q.From,
		Size:           &q.Size,
		TrackTotalHits: true,
	}, nil
}

// BuildCoachSearchBody translates client preferences into a bool query. Hard
// requirements become filters; certifications and experience only boost.
func BuildCoachSearchBody(q CoachQuery) map[string]interface{} {
	prefs := q.Preferences
	mustClauses := []interface{}{}
	filterClauses := []interface{}{}
	shouldClauses := []interface{}{}

	if q.Keywords != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  q.Keywords,
				"fields": []string{"name^3", "specialties^2", "bio"},
				"type":   "best_fields",
			},
		})
	}

	if prefs.Specialty != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"specialties": prefs.Specialty},
		})
	}

	if len(prefs.Formats) > 0 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"terms": map[string]interface{}{"available_formats": prefs.Formats},
		})
	}

	if len(prefs.Languages) > 0 {
		filterClauses = append(filterClauses, map[string]interface{}{
			"terms": map[string]interface{}{"languages": prefs.Languages},
		})
	}

	if budget := prefs.MaxBudget(); budget > 0 {
		filterClauses = append(filterClauses, budgetFilter(budget))
	}

	if len(prefs.Certifications) > 0 {
		shouldClauses = append(shouldClauses, map[string]interface{}{
			"terms": map[string]interface{}{
				"certifications": prefs.Certifications,
				"boost":          2.0,
			},
		})
	}

	if hours := tierHours(prefs.ExperienceTier); hours != nil {
		shouldClauses = append(shouldClauses, map[string]interface{}{
			"range": map[string]interface{}{"coaching_hours": hours},
		})
	}

	if len(mustClauses) == 0 {
		mustClauses = append(mustClauses, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	boolQuery := map[string]interface{}{"must": mustClauses}
	if len(filterClauses) > 0 {
		boolQuery["filter"] = filterClauses
	}
	if len(shouldClauses) > 0 {
		boolQuery["should"] = shouldClauses
	}

	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"sort": []interface{}{
			map[string]interface{}{"_score": "desc"},
			map[string]interface{}{"average_rating": map[string]interface{}{"order": "desc", "missing": "_last"}},
			map[string]interface{}{"total_reviews": map[string]interface{}{"order": "desc", "missing": "_last"}},
		},
	}
}

// tierHours returns the coaching_hours range of a tier, or nil for any tier.
func tierHours(tier matching.ExperienceTier) map[string]interface{} {
	switch tier {
	case matching.TierBeginner:
		return map[string]interface{}{"gte": matching.BeginnerMinHours, "lte": matching.IntermediateMinHours}
	case matching.TierIntermediate:
		return map[string]interface{}{"gt": matching.IntermediateMinHours, "lte": matching.AdvancedMinHours}
	case matching.TierAdvanced:
		return map[string]interface{}{"gt": matching.AdvancedMinHours}
	default:
		return nil
	}
}
