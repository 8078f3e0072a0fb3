// internal/workers/reviews/manage-review-token/config.go
package managereviewtoken

import (
	"time"

	"github.com/xeipuuv/gojsonschema"
)

type Config struct {
	TokenTTL     time.Duration
	DismissalTTL time.Duration
	Timeout      time.Duration
	InputSchema  *gojsonschema.Schema
}

func LoadConfig() *Config {
	return &Config{
		TokenTTL:     90 * 24 * time.Hour,
		DismissalTTL: 24 * time.Hour,
		Timeout:      10 * time.Second,
	}
}
