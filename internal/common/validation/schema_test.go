package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rankSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"coaches", "preferences"},
		"properties": map[string]interface{}{
			"coaches": map[string]interface{}{"type": "array"},
			"preferences": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"budgetRange": map[string]interface{}{"type": "number", "minimum": 0},
				},
			},
			"minScore": map[string]interface{}{"type": "integer", "minimum": 0, "maximum": 100},
		},
	}
}

func TestCheck(t *testing.T) {
	schema, err := Compile(rankSchema())
	require.NoError(t, err)

	tests := []struct {
		name    string
		payload string
		valid   bool
		field   string
	}{
		{"valid", `{"coaches":[],"preferences":{"budgetRange":120}}`, true, ""},
		{"missing required", `{"coaches":[]}`, false, "(root)"},
		{"negative budget", `{"coaches":[],"preferences":{"budgetRange":-5}}`, false, "preferences.budgetRange"},
		{"min score too high", `{"coaches":[],"preferences":{},"minScore":101}`, false, "minScore"},
		{"not json", `{"coaches":`, false, "(root)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Check(schema, tt.payload)
			assert.Equal(t, tt.valid, result.Valid)
			if !tt.valid {
				require.NotEmpty(t, result.Errors)
				assert.Equal(t, tt.field, result.Errors[0].Field)
				assert.NotEmpty(t, result.Summary())
			}
		})
	}
}

func TestCompile_RejectsBrokenSchema(t *testing.T) {
	_, err := Compile(map[string]interface{}{"type": 12})
	assert.Error(t, err)
}
