package config

import "time"

// RateLimitConfig configures the fixed-window limiter placed in front of the
// login endpoint. Max requests are allowed per Window for each key.
type RateLimitConfig struct {
	Enabled     bool
	Max         int
	Window      time.Duration
	KeyStrategy string // ip or ip_route
	Prefix      string
	Message     string
	Debug       bool
}

func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:     envBool("LOGIN_RATE_LIMIT_ENABLED", true),
		Max:         envInt("LOGIN_RATE_LIMIT_MAX", 5),
		Window:      envDur("LOGIN_RATE_LIMIT_WINDOW", 15*time.Minute),
		KeyStrategy: envStr("LOGIN_RATE_LIMIT_KEY_STRATEGY", "ip"),
		Prefix:      envStr("LOGIN_RATE_LIMIT_PREFIX", "rl:login"),
		Message:     envStr("LOGIN_RATE_LIMIT_MESSAGE", "Too many login attempts, please try again after 15 minutes"),
		Debug:       envBool("LOGIN_RATE_LIMIT_DEBUG", false),
	}
	if cfg.Max < 1 {
		cfg.Max = 1
	}
	if cfg.Window <= 0 {
		cfg.Window = 15 * time.Minute
	}
	return cfg
}
