// Package device turns User-Agent strings into short display names for audit trails.
package device

import (
	"fmt"
	"strings"

	"github.com/mssola/useragent"
)

const unknownDevice = "Unknown Device"

// ParseUserAgent returns "<browser> on <os>", e.g. "Chrome on Intel Mac OS X 10_15_7".
func ParseUserAgent(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return unknownDevice
	}

	ua := useragent.New(userAgent)
	if ua.Bot() {
		name, _ := ua.Browser()
		if name == "" {
			return "Bot"
		}
		return "Bot (" + name + ")"
	}

	browser, _ := ua.Browser()
	if browser == "" {
		browser = "Unknown Browser"
	}

	os := ua.OS()
	if os == "" {
		os = ua.Platform()
	}
	if os == "" {
		os = "Unknown OS"
	}
	if ua.Mobile() && !strings.Contains(os, ua.Platform()) && ua.Platform() != "" {
		os = ua.Platform() + " " + os
	}

	return strings.TrimSpace(fmt.Sprintf("%s on %s", browser, os))
}
