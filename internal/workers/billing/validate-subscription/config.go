// internal/workers/billing/validate-subscription/config.go
package validatesubscription

import (
	"time"

	"github.com/xeipuuv/gojsonschema"
)

type Config struct {
	Timeout     time.Duration
	CacheTTL    time.Duration
	InputSchema *gojsonschema.Schema
}

func LoadConfig() *Config {
	return &Config{
		Timeout:  30 * time.Second,
		CacheTTL: 5 * time.Minute,
	}
}
