package matching

import (
	"fmt"
	"math"
	"strings"
)

// FieldError describes one rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every problem found in one entity.
type ValidationError struct {
	Entity string       `json:"entity"`
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + " " + f.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Entity, strings.Join(parts, "; "))
}

type problems struct {
	entity string
	fields []FieldError
}

func (p *problems) add(field, msg string) {
	p.fields = append(p.fields, FieldError{Field: field, Message: msg})
}

func (p *problems) nonNegative(field string, v *float64) {
	if v == nil {
		return
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		p.add(field, "must be a finite number")
		return
	}
	if *v < 0 {
		p.add(field, "must not be negative")
	}
}

func (p *problems) nonNegativeInt(field string, v *int) {
	if v != nil && *v < 0 {
		p.add(field, "must not be negative")
	}
}

func (p *problems) err() error {
	if len(p.fields) == 0 {
		return nil
	}
	return &ValidationError{Entity: p.entity, Fields: p.fields}
}

// Validate checks a profile once on ingestion. Scoring itself never fails,
// so malformed data is rejected here instead.
func (c CoachProfile) Validate() error {
	p := &problems{entity: "coach profile"}
	p.nonNegative("hourlyRate", c.HourlyRate)
	p.nonNegativeInt("coachingHours", c.CoachingHours)
	p.nonNegativeInt("totalReviews", c.TotalReviews)
	if r := c.AverageRating; r != nil {
		if math.IsNaN(*r) || *r < 0 || *r > 5 {
			p.add("averageRating", "must be between 0 and 5")
		}
	}
	return p.err()
}

// Validate checks questionnaire answers once on ingestion.
func (q ClientPreferences) Validate() error {
	p := &problems{entity: "client preferences"}
	p.nonNegative("budgetRange", q.Budget)
	if !q.ExperienceTier.Valid() {
		p.add("experienceLevel", fmt.Sprintf("unknown tier %q", q.ExperienceTier))
	}
	return p.err()
}
