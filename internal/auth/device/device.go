// Package device turns User-Agent headers into short labels shown in
// session listings.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

const unknownDevice = "Unknown Device"

// ParseUserAgent returns a label such as "Chrome on Intel Mac OS X 10_15_7".
func ParseUserAgent(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return unknownDevice
	}

	ua := useragent.New(raw)
	if ua.Bot() {
		name, _ := ua.Browser()
		return collapse("Bot " + name)
	}

	browser, _ := ua.Browser()
	if browser == "" {
		browser = "Unknown Browser"
	}
	platform := ua.OS()
	if platform == "" {
		platform = ua.Platform()
	}
	if platform == "" {
		platform = "Unknown OS"
	}
	return collapse(browser + " on " + platform)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
