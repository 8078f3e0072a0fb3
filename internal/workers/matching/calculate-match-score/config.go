// internal/workers/matching/calculate-match-score/config.go
package calculatematchscore

import (
	"time"

	"github.com/xeipuuv/gojsonschema"
)

type Config struct {
	CacheTTL time.Duration
	Timeout  time.Duration
	// InputSchema, when set, is checked against raw job variables before decoding.
	InputSchema *gojsonschema.Schema
}

func LoadConfig() *Config {
	return &Config{
		CacheTTL: 10 * time.Minute,
		Timeout:  30 * time.Second,
	}
}
