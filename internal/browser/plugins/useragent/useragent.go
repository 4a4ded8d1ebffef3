// Package useragent makes the browser announce itself as a common desktop
// browser.
package useragent

import (
	"sort"

	"github.com/GriffinCanCode/gatorbrowse/internal/browser"
	"github.com/GriffinCanCode/gatorbrowse/internal/plugin"
)

// PropertyUserAgent is the read-only property holding the sent string
const PropertyUserAgent = "user_agent"

// Presets maps short names to user agent strings
var Presets = map[string]string{
	"firefox-linux":       "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0",
	"firefox-macintosh":   "Mozilla/5.0 (Macintosh; Intel Mac OS X 14.5; rv:128.0) Gecko/20100101 Firefox/128.0",
	"firefox-windows":     "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:128.0) Gecko/20100101 Firefox/128.0",
	"chrome-windows":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"iceweasel-linux-5.0": "Mozilla/5.0 (X11; Linux x86; rv:5.0) Gecko/20100101 Firefox/5.0 Iceweasel/5.0",
}

// Names returns the preset names, sorted
func Names() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the preset called agent, or agent itself when it is not
// a preset name
func Resolve(agent string) string {
	if s, ok := Presets[agent]; ok {
		return s
	}
	return agent
}

// Plugin sets the User-Agent header
type Plugin struct {
	agent string
}

// New creates a plugin sending agent, which may be a preset name
func New(agent string) *Plugin {
	return &Plugin{agent: Resolve(agent)}
}

// Name returns the plugin name
func (p *Plugin) Name() string { return "useragent" }

// Contribute adds the User-Agent header
func (p *Plugin) Contribute(b *browser.Browser) (*plugin.Descriptor, error) {
	return plugin.Describe().
		Header("User-Agent", p.agent).
		Property(PropertyUserAgent, func() any { return p.agent }, nil).
		Build(), nil
}
