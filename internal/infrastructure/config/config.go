package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Browser  BrowserConfig
	Retry    RetryConfig
	Throttle ThrottleConfig
	Site     SiteConfig
	Logging  LogConfig
}

// BrowserConfig holds navigation engine settings.
type BrowserConfig struct {
	Timeout          time.Duration `envconfig:"BROWSER_TIMEOUT" default:"30s"`
	MaxHTTPRedirects int           `envconfig:"BROWSER_MAX_HTTP_REDIRECTS" default:"10"`
	MaxRedirectHops  int           `envconfig:"BROWSER_MAX_REDIRECT_HOPS" default:"10"`
	MetaRefreshMax   time.Duration `envconfig:"BROWSER_META_REFRESH_MAX" default:"0s"`
	UserAgent        string        `envconfig:"BROWSER_USER_AGENT" default:"firefox-linux"`
}

// RetryConfig holds the retry handler settings. MaxRetries of zero
// leaves the retry handler out of the recommended plugin set.
type RetryConfig struct {
	MaxRetries int           `envconfig:"RETRY_MAX" default:"2"`
	MinWait    time.Duration `envconfig:"RETRY_MIN_WAIT" default:"500ms"`
	MaxWait    time.Duration `envconfig:"RETRY_MAX_WAIT" default:"5s"`
}

// ThrottleConfig holds per-browser request pacing and breaker settings.
type ThrottleConfig struct {
	RequestsPerSecond float64       `envconfig:"THROTTLE_RPS" default:"0"`
	Burst             int           `envconfig:"THROTTLE_BURST" default:"1"`
	BreakerFailures   uint32        `envconfig:"THROTTLE_BREAKER_FAILURES" default:"5"`
	BreakerCooldown   time.Duration `envconfig:"THROTTLE_BREAKER_COOLDOWN" default:"30s"`
}

// SiteConfig holds the site-specific endpoints. None of these are known
// to the navigation engine itself.
type SiteConfig struct {
	LoginURL          string `envconfig:"SITE_LOGIN_URL" default:"https://login.ufl.edu/idp/Authn/UserPassword"`
	LogoutURL         string `envconfig:"SITE_LOGOUT_URL" default:"https://login.ufl.edu/idp/logout.jsp"`
	IsisURL           string `envconfig:"SITE_ISIS_URL" default:"https://www.isis.ufl.edu/cgi-bin/nirvana"`
	LandingPattern    string `envconfig:"SITE_LANDING_PATTERN" default:"^https://www\\.isis\\.ufl\\.edu/"`
	ContinuePattern   string `envconfig:"SITE_CONTINUE_PATTERN" default:"^https://login\\.ufl\\.edu(:\\d+)?/idp/(profile/SAML2/Redirect/SSO|Authn/UserPassword)"`
	SessionCookie     string `envconfig:"SITE_SESSION_COOKIE" default:"JSESSIONID"`
	SessionCookiePath string `envconfig:"SITE_SESSION_COOKIE_PATH" default:"/idp"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Browser: BrowserConfig{
			Timeout:          30 * time.Second,
			MaxHTTPRedirects: 10,
			MaxRedirectHops:  10,
			UserAgent:        "firefox-linux",
		},
		Retry: RetryConfig{
			MaxRetries: 2,
			MinWait:    500 * time.Millisecond,
			MaxWait:    5 * time.Second,
		},
		Throttle: ThrottleConfig{
			Burst:           1,
			BreakerFailures: 5,
			BreakerCooldown: 30 * time.Second,
		},
		Site: SiteConfig{
			LoginURL:          "https://login.ufl.edu/idp/Authn/UserPassword",
			LogoutURL:         "https://login.ufl.edu/idp/logout.jsp",
			IsisURL:           "https://www.isis.ufl.edu/cgi-bin/nirvana",
			LandingPattern:    `^https://www\.isis\.ufl\.edu/`,
			ContinuePattern:   `^https://login\.ufl\.edu(:\d+)?/idp/(profile/SAML2/Redirect/SSO|Authn/UserPassword)`,
			SessionCookie:     "JSESSIONID",
			SessionCookiePath: "/idp",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}
