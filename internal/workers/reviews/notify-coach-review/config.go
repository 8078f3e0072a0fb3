// internal/workers/reviews/notify-coach-review/config.go
package notifycoachreview

import (
	"time"

	"github.com/xeipuuv/gojsonschema"
)

type Config struct {
	EmailEnabled bool
	SMSEnabled   bool
	FromEmail    string
	SenderID     string
	// LowRatingThreshold is the highest rating that also triggers an SMS.
	LowRatingThreshold int
	Timeout            time.Duration
	InputSchema        *gojsonschema.Schema
}

func LoadConfig() *Config {
	return &Config{
		EmailEnabled:       true,
		LowRatingThreshold: 2,
		Timeout:            30 * time.Second,
	}
}
