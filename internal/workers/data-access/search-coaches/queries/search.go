// internal/workers/data-access/search-coaches/queries/search.go
package queries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"

	"coach-match-workers/internal/matching"
)

var (
	ErrIndexNotFound = errors.New("index not found")
	ErrQueryFailed   = errors.New("search query failed")
)

// CoachDocument is a coach as stored in the search index.
type CoachDocument struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Bio              string   `json:"bio,omitempty"`
	Specialties      []string `json:"specialties"`
	AvailableFormats []string `json:"available_formats"`
	HourlyRate       *float64 `json:"hourly_rate"`
	Currency         string   `json:"currency"`
	Certifications   []string `json:"certifications"`
	Languages        []string `json:"languages"`
	CoachingHours    *int     `json:"coaching_hours"`
	AverageRating    *float64 `json:"average_rating"`
	TotalReviews     *int     `json:"total_reviews"`
}

// Profile converts the indexed document into the scoring model.
func (d CoachDocument) Profile() matching.CoachProfile {
	p := matching.CoachProfile{
		ID:             d.ID,
		Name:           d.Name,
		HourlyRate:     d.HourlyRate,
		Currency:       d.Currency,
		Certifications: d.Certifications,
		Languages:      d.Languages,
		CoachingHours:  d.CoachingHours,
		AverageRating:  d.AverageRating,
		TotalReviews:   d.TotalReviews,
	}
	for _, s := range d.Specialties {
		p.Specialties = append(p.Specialties, matching.Specialty(s))
	}
	for _, f := range d.AvailableFormats {
		p.AvailableFormats = append(p.AvailableFormats, matching.SessionFormat(f))
	}
	return p
}

type QueryResult struct {
	Coaches   []matching.CoachProfile
	TotalHits int64
	MaxScore  float64
	Took      int64
}

type searchResponse struct {
	Took int64 `json:"took"`
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		MaxScore *float64 `json:"max_score"`
		Hits     []struct {
			ID     string        `json:"_id"`
			Source CoachDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Execute runs q against the cluster and decodes the matching coaches.
func Execute(ctx context.Context, client *elasticsearch.Client, q CoachQuery) (*QueryResult, error) {
	req, err := BuildQuery(q)
	if err != nil {
		return nil, err
	}

	res, err := req.Do(ctx, client)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, q.Index)
	}
	if res.IsError() {
		return nil, fmt.Errorf("%w: %s", ErrQueryFailed, res.String())
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrQueryFailed, err)
	}

	result := &QueryResult{
		Coaches:   make([]matching.CoachProfile, 0, len(r.Hits.Hits)),
		TotalHits: r.Hits.Total.Value,
		Took:      r.Took,
	}
	if r.Hits.MaxScore != nil {
		result.MaxScore = *r.Hits.MaxScore
	}
	for _, hit := range r.Hits.Hits {
		doc := hit.Source
		if doc.ID == "" {
			doc.ID = hit.ID
		}
		result.Coaches = append(result.Coaches, doc.Profile())
	}
	return result, nil
}
