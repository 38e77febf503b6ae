package config

import "time"

// Config holds runtime settings for the story CLI.
//
// Fields:
//   - APIBaseURL: base URL of the story API, including the version prefix.
//   - DatabasePath: path to the local SQLite database file.
//   - OnlineCheckInterval: how often the client probes server reachability.
//   - VAPIDPublicKey: application server key presented when registering
//     for push messages.
//   - Guest: skip session restore and submit stories anonymously.
type Config struct {
	APIBaseURL          string
	DatabasePath        string
	OnlineCheckInterval time.Duration
	VAPIDPublicKey      string
	Guest               bool
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "https://story-api.dicoding.dev/v1"
	c.DatabasePath = "storyapp.db"
	c.OnlineCheckInterval = 30 * time.Second
	c.VAPIDPublicKey = "BCCs2eonMI-6H2ctvFaWg-UYdDv387Vno_bzUzALpB442r2lCnsHmtrx8biyPi_E-1fSGABK_Qs_GlvPoJJqxbk"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
