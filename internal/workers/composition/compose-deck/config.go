// internal/workers/composition/compose-deck/config.go
package composedeck

import "time"

type Config struct {
	// DefaultFormat is used when the job does not name one: markup, deck or both.
	DefaultFormat string
	Timeout       time.Duration
}

func LoadConfig() *Config {
	return &Config{
		DefaultFormat: "both",
		Timeout:       60 * time.Second,
	}
}
