package cookies

import (
	"github.com/GriffinCanCode/gatorbrowse/internal/browser"
	"github.com/GriffinCanCode/gatorbrowse/internal/plugin"
)

// PropertyJar is the name of the read-only property exposing the *Jar
const PropertyJar = "cookie_jar"

// Plugin keeps cookies across fetches
type Plugin struct {
	jar *Jar
}

// New creates a cookie plugin with an empty jar
func New() (*Plugin, error) {
	jar, err := NewJar()
	if err != nil {
		return nil, err
	}
	return &Plugin{jar: jar}, nil
}

// Name returns the plugin name
func (p *Plugin) Name() string { return "cookies" }

// Jar returns the plugin's cookie store
func (p *Plugin) Jar() *Jar { return p.jar }

// Contribute adds the cookie handler and the cookie_jar property
func (p *Plugin) Contribute(b *browser.Browser) (*plugin.Descriptor, error) {
	return plugin.Describe().
		Handler(p.jar.Handler).
		Property(PropertyJar, func() any { return p.jar }, nil).
		Build(), nil
}

// FromBrowser returns the jar installed on b, or nil when b has no cookie
// plugin.
func FromBrowser(b *browser.Browser) *Jar {
	v, err := b.Get(PropertyJar)
	if err != nil {
		return nil
	}
	jar, _ := v.(*Jar)
	return jar
}
