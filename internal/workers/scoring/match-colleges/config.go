// internal/workers/scoring/match-colleges/config.go
package matchcolleges

import "time"

type Config struct {
	Timeout       time.Duration
	RatingTimeout time.Duration
	DefaultLimit  int
	MaxLimit      int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       45 * time.Second,
		RatingTimeout: 20 * time.Second,
		DefaultLimit:  10,
		MaxLimit:      50,
	}
}
