// internal/workers/scoring/rate-student/config.go
package ratestudent

import "time"

type Config struct {
	Timeout       time.Duration
	RatingTimeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       30 * time.Second,
		RatingTimeout: 20 * time.Second,
	}
}
