// Package nutritionix provides a client for the Nutritionix natural language nutrients API.
package nutritionix

import "time"

// Config holds configuration for the Nutritionix API client.
type Config struct {
	AppID        string        `env:"APP_ID"`
	AppKey       string        `env:"APP_KEY"`
	BaseURL      string        `env:"BASE_URL" envDefault:"https://trackapi.nutritionix.com"`
	Timeout      time.Duration `env:"TIMEOUT" envDefault:"10s"`
	RateLimit    int           `env:"RATE_LIMIT" envDefault:"30"`
	RateInterval time.Duration `env:"RATE_INTERVAL" envDefault:"1m"`
}

// Enabled reports whether credentials are present.
func (c Config) Enabled() bool {
	return c.AppID != "" && c.AppKey != ""
}
