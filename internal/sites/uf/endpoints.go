package uf

import (
	"fmt"
	"net/url"
	"regexp"

	"github.com/GriffinCanCode/gatorbrowse/internal/infrastructure/config"
)

const (
	// DefaultLoginPage matches the GatorLink username and password form
	DefaultLoginPage = `(?is)<title>.*?GatorLink login.*?</title>.*?<body.*?>.*?Enter your GatorLink username and password`

	gsmCookie = "UF_GSM"
)

// Endpoints locates the parts of the site the plugins talk to
type Endpoints struct {
	LoginURL          string
	LogoutURL         string
	IsisURL           string
	Landing           *regexp.Regexp
	Continue          *regexp.Regexp
	LoginPage         *regexp.Regexp
	SessionCookie     string
	SessionCookiePath string
}

// EndpointsFromConfig compiles the site settings
func EndpointsFromConfig(cfg config.SiteConfig) (Endpoints, error) {
	if _, err := url.Parse(cfg.LoginURL); err != nil || cfg.LoginURL == "" {
		return Endpoints{}, fmt.Errorf("invalid login url %q", cfg.LoginURL)
	}
	landing, err := regexp.Compile(cfg.LandingPattern)
	if err != nil {
		return Endpoints{}, fmt.Errorf("landing pattern: %w", err)
	}
	cont, err := regexp.Compile(cfg.ContinuePattern)
	if err != nil {
		return Endpoints{}, fmt.Errorf("continue pattern: %w", err)
	}

	return Endpoints{
		LoginURL:          cfg.LoginURL,
		LogoutURL:         cfg.LogoutURL,
		IsisURL:           cfg.IsisURL,
		Landing:           landing,
		Continue:          cont,
		LoginPage:         regexp.MustCompile(DefaultLoginPage),
		SessionCookie:     cfg.SessionCookie,
		SessionCookiePath: cfg.SessionCookiePath,
	}, nil
}

// sessionURL is where the session cookie is scoped
func (e Endpoints) sessionURL() *url.URL {
	u, err := url.Parse(e.LoginURL)
	if err != nil {
		return &url.URL{}
	}
	return &url.URL{Scheme: u.Scheme, Host: u.Host, Path: e.SessionCookiePath + "/"}
}

func (e Endpoints) loginHost() *url.URL {
	u, err := url.Parse(e.LoginURL)
	if err != nil {
		return &url.URL{}
	}
	return &url.URL{Scheme: u.Scheme, Host: u.Host, Path: "/"}
}
