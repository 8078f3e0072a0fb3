package queries

import (
	"encoding/json"
	"io"
	"testing"

	"coach-match-workers/internal/matching"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func boolQuery(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	var decoded struct {
		Query struct {
			Bool map[string]interface{} `json:"bool"`
		} `json:"query"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	return decoded.Query.Bool
}

func TestBudgetFilter_KeepsCoachesWithoutRate(t *testing.T) {
	clauses := budgetFilter(100.0)["bool"].(map[string]interface{})

	assert.Equal(t, 1, clauses["minimum_should_match"])
	should := clauses["should"].([]interface{})
	require.Len(t, should, 2)
	assert.Equal(t, map[string]interface{}{
		"range": map[string]interface{}{"hourly_rate": map[string]interface{}{"lte": 120.0}},
	}, should[0])
	assert.Equal(t, map[string]interface{}{
		"bool": map[string]interface{}{
			"must_not": map[string]interface{}{
				"exists": map[string]interface{}{"field": "hourly_rate"},
			},
		},
	}, should[1])
}

func TestBuildCoachSearchBody_EmptyPreferences(t *testing.T) {
	b := boolQuery(t, BuildCoachSearchBody(CoachQuery{Index: "coaches"}))

	assert.Equal(t, []interface{}{map[string]interface{}{"match_all": map[string]interface{}{}}}, b["must"])
	assert.NotContains(t, b, "filter")
	assert.NotContains(t, b, "should")
}

func TestBuildCoachSearchBody_Filters(t *testing.T) {
	q := CoachQuery{
		Index:    "coaches",
		Keywords: "career change",
		Preferences: matching.ClientPreferences{
			Specialty:      matching.SpecialtyCareerGrowth,
			Formats:        []matching.SessionFormat{matching.FormatOnline, matching.FormatHybrid},
			Budget:         ptr(150.0),
			Languages:      []string{"English"},
			Certifications: []string{"ICF PCC"},
			ExperienceTier: matching.TierIntermediate,
		},
	}
	b := boolQuery(t, BuildCoachSearchBody(q))

	must := b["must"].([]interface{})
	require.Len(t, must, 1)
	assert.Contains(t, must[0], "multi_match")

	filters := b["filter"].([]interface{})
	require.Len(t, filters, 4)
	assert.Equal(t, map[string]interface{}{"term": map[string]interface{}{"specialties": "Career Growth"}}, filters[0])
	assert.Equal(t, map[string]interface{}{"terms": map[string]interface{}{"available_formats": []interface{}{"Online", "Hybrid"}}}, filters[1])
	assert.Equal(t, map[string]interface{}{"terms": map[string]interface{}{"languages": []interface{}{"English"}}}, filters[2])
	assert.Equal(t, map[string]interface{}{
		"bool": map[string]interface{}{
			"should": []interface{}{
				map[string]interface{}{"range": map[string]interface{}{"hourly_rate": map[string]interface{}{"lte": 180.0}}},
				map[string]interface{}{"bool": map[string]interface{}{
					"must_not": map[string]interface{}{"exists": map[string]interface{}{"field": "hourly_rate"}},
				}},
			},
			"minimum_should_match": 1.0,
		},
	}, filters[3])

	should := b["should"].([]interface{})
	require.Len(t, should, 2)
	assert.Equal(t, map[string]interface{}{
		"range": map[string]interface{}{"coaching_hours": map[string]interface{}{"gt": 500.0, "lte": 1500.0}},
	}, should[1])
}

func TestBuildCoachSearchBody_AnyTierAddsNoBoost(t *testing.T) {
	b := boolQuery(t, BuildCoachSearchBody(CoachQuery{
		Index:       "coaches",
		Preferences: matching.ClientPreferences{ExperienceTier: matching.TierAny},
	}))
	assert.NotContains(t, b, "should")
}

func TestCoachQuery_Normalize(t *testing.T) {
	tests := []struct {
		name     string
		from     int
		size     int
		wantFrom int
		wantSize int
	}{
		{"defaults", 0, 0, 0, DefaultSize},
		{"capped", 10, 500, 10, MaxSize},
		{"negative", -5, -1, 0, DefaultSize},
		{"kept", 40, 25, 40, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := CoachQuery{From: tt.from, Size: tt.size}
			q.Normalize()
			assert.Equal(t, tt.wantFrom, q.From)
			assert.Equal(t, tt.wantSize, q.Size)
		})
	}
}

func TestBuildQuery(t *testing.T) {
	_, err := BuildQuery(CoachQuery{})
	assert.ErrorIs(t, err, ErrMissingIndex)

	req, err := BuildQuery(CoachQuery{Index: "coaches", Size: 1000})
	require.NoError(t, err)
	assert.Equal(t, []string{"coaches"}, req.Index)
	assert.Equal(t, MaxSize, *req.Size)

	raw, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"average_rating"`)
}
