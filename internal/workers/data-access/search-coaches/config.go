// internal/workers/data-access/search-coaches/config.go
package searchcoaches

import (
	"time"

	"github.com/xeipuuv/gojsonschema"
)

type Config struct {
	DefaultIndex string
	PageSize     int
	Timeout      time.Duration
	InputSchema  *gojsonschema.Schema
}

func LoadConfig() *Config {
	return &Config{
		DefaultIndex: "coaches",
		PageSize:     20,
		Timeout:      30 * time.Second,
	}
}
