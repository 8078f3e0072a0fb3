// internal/workers/matching/rank-coaches/config.go
package rankcoaches

import (
	"time"

	"github.com/xeipuuv/gojsonschema"
)

// MaxLimit caps how many ranked coaches a single job may return.
const MaxLimit = 100

type Config struct {
	MaxItems    int
	MinScore    int
	Parallelism int
	CacheTTL    time.Duration
	Timeout     time.Duration
	InputSchema *gojsonschema.Schema
}

func LoadConfig() *Config {
	return &Config{
		MaxItems:    20,
		Parallelism: 8,
		CacheTTL:    10 * time.Minute,
		Timeout:     30 * time.Second,
	}
}
