package module

import (
	"time"

	"rankbot/internal/platform/config"
)

// Options holds configuration options for the ranker service
type Options struct {
	PolicyPath string
	DryRun     bool

	Workers           int
	MaxRetries        int
	RetryBase         time.Duration
	RateLimitCooldown time.Duration
}

// FromConfig reads the ranker options from config with CORE_RANKER_ prefix
func FromConfig(cfg config.Conf) Options {
	rk := cfg.Prefix("CORE_RANKER_")
	return Options{
		PolicyPath:        rk.MustString("POLICY"),
		DryRun:            rk.MayBool("DRY_RUN", false),
		Workers:           rk.MayInt("WORKERS", 4),
		MaxRetries:        rk.MayInt("RETRIES", 5),
		RetryBase:         rk.MayDuration("RETRY_BASE", 500*time.Millisecond),
		RateLimitCooldown: rk.MayDuration("COOLDOWN", 60*time.Second),
	}
}

// TransportOptions holds the group API client configuration
type TransportOptions struct {
	Cookie    string
	BaseURL   string
	UsersURL  string
	UserAgent string
	Timeout   time.Duration
	RPS       float64
	Burst     int
}

// TransportFromConfig reads the client options with SERVICE_GROUPS_ prefix.
// The cookie is the only required value; everything else has a sane default
func TransportFromConfig(cfg config.Conf) TransportOptions {
	gc := cfg.Prefix("SERVICE_GROUPS_")
	return TransportOptions{
		Cookie:    gc.MustString("COOKIE"),
		BaseURL:   gc.MayString("BASE_URL", ""),
		UsersURL:  gc.MayString("USERS_URL", ""),
		UserAgent: gc.MayString("USER_AGENT", ""),
		Timeout:   gc.MayDuration("TIMEOUT", 0),
		RPS:       gc.MayFloat64("RPS", 0),
		Burst:     gc.MayInt("BURST", 0),
	}
}
