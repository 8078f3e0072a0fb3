package matching

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExplain(t *testing.T) {
	tests := []struct {
		name     string
		coach    CoachProfile
		prefs    ClientPreferences
		expected string
	}{
		{
			name:     "specialty budget and format",
			coach:    createTestCoach(),
			prefs:    createTestPreferences(),
			expected: "Specializes in Career Growth • Fits your budget • Available online",
		},
		{
			name:     "nothing matched",
			coach:    CoachProfile{},
			prefs:    ClientPreferences{},
			expected: FallbackReason,
		},
		{
			name:     "budget only",
			coach:    CoachProfile{HourlyRate: ptr(80.0)},
			prefs:    ClientPreferences{Budget: ptr(100.0)},
			expected: "Fits your budget",
		},
		{
			name:     "within tolerance is not a budget fit",
			coach:    CoachProfile{HourlyRate: ptr(110.0)},
			prefs:    ClientPreferences{Budget: ptr(100.0)},
			expected: FallbackReason,
		},
		{
			name: "hyphenated format is lowercased",
			coach: CoachProfile{
				AvailableFormats: []SessionFormat{FormatOnline, FormatInPerson},
			},
			prefs: ClientPreferences{
				Formats: []SessionFormat{FormatInPerson, FormatOnline},
			},
			expected: "Available in-person",
		},
		{
			name: "certification language and tier",
			coach: CoachProfile{
				Certifications: []string{"EMCC", "ICF PCC"},
				Languages:      []string{"English", "Spanish"},
				CoachingHours:  ptr(2000),
			},
			prefs: ClientPreferences{
				Certifications: []string{"ICF PCC", "EMCC"},
				Languages:      []string{"Spanish"},
				ExperienceTier: TierAdvanced,
			},
			expected: "ICF PCC certified • Speaks Spanish • Advanced level experience",
		},
		{
			name: "truncated to three phrases",
			coach: CoachProfile{
				Specialties:      []Specialty{SpecialtyLeadership},
				AvailableFormats: []SessionFormat{FormatHybrid},
				HourlyRate:       ptr(90.0),
				Certifications:   []string{"ICF MCC"},
				Languages:        []string{"French"},
				CoachingHours:    ptr(300),
			},
			prefs: ClientPreferences{
				Specialty:      SpecialtyLeadership,
				Formats:        []SessionFormat{FormatHybrid},
				Budget:         ptr(90.0),
				Certifications: []string{"ICF MCC"},
				Languages:      []string{"French"},
				ExperienceTier: TierBeginner,
			},
			expected: "Specializes in Leadership • Fits your budget • Available hybrid",
		},
		{
			name:     "any tier never explains experience",
			coach:    CoachProfile{CoachingHours: ptr(2000)},
			prefs:    ClientPreferences{ExperienceTier: TierAny},
			expected: FallbackReason,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Explain(tt.coach, tt.prefs))
		})
	}
}

func TestExplain_AtMostThreePhrases(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 300; i++ {
		reason := Explain(randomCoach(r), randomPreferences(r))
		assert.NotEmpty(t, reason)
		assert.LessOrEqual(t, len(strings.Split(reason, ReasonSeparator)), 3)
	}
}

func TestEvaluate_ReasonMatchesExplain(t *testing.T) {
	coach, prefs := createTestCoach(), createTestPreferences()
	assert.Equal(t, Explain(coach, prefs), Evaluate(coach, prefs).Reason)
}
