package matching

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoachProfile_Validate(t *testing.T) {
	tests := []struct {
		name    string
		coach   CoachProfile
		fields  []string
		wantErr bool
	}{
		{name: "empty profile", coach: CoachProfile{}},
		{name: "complete profile", coach: createTestCoach()},
		{name: "negative rate", coach: CoachProfile{HourlyRate: ptr(-10.0)}, fields: []string{"hourlyRate"}, wantErr: true},
		{name: "non-finite rate", coach: CoachProfile{HourlyRate: ptr(math.Inf(1))}, fields: []string{"hourlyRate"}, wantErr: true},
		{name: "rating above five", coach: CoachProfile{AverageRating: ptr(5.5)}, fields: []string{"averageRating"}, wantErr: true},
		{
			name:    "several problems",
			coach:   CoachProfile{CoachingHours: ptr(-1), TotalReviews: ptr(-3), AverageRating: ptr(-1.0)},
			fields:  []string{"coachingHours", "totalReviews", "averageRating"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.coach.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, "coach profile", verr.Entity)

			got := make([]string, len(verr.Fields))
			for i, f := range verr.Fields {
				got[i] = f.Field
			}
			assert.Equal(t, tt.fields, got)
		})
	}
}

func TestClientPreferences_Validate(t *testing.T) {
	assert.NoError(t, createTestPreferences().Validate())
	assert.NoError(t, ClientPreferences{ExperienceTier: TierAny}.Validate())

	err := ClientPreferences{Budget: ptr(-1.0), ExperienceTier: "expert"}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "budgetRange must not be negative")
	assert.Contains(t, err.Error(), `experienceLevel unknown tier "expert"`)
}
