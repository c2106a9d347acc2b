// Package useragent classifies raw User-Agent strings into a device class,
// a browser name and an OS name for click analytics. Matching is ordered
// substring matching: overlapping tokens (Edge UAs contain "Chrome", Android
// UAs contain "Linux") make the rule order part of the contract.
package useragent

import "strings"

const (
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = "desktop"
)

// Info is the classification of a single user-agent string.
type Info struct {
	DeviceType string
	Browser    string
	OS         string
}

// mobileOrTablet is checked as one combined set and classifies any hit as
// mobile. The tablet-only tokens are a subset of it, so the tablet branch
// below never fires; this reproduces the long-standing behavior of the
// service this was ported from rather than silently changing analytics.
var mobileOrTablet = []string{"mobile", "android", "iphone", "ipod", "ipad", "tablet", "blackberry", "opera mini"}

var tabletOnly = []string{"tablet", "ipad"}

type rule struct {
	token string
	name  string
}

// browserRules is evaluated in order; first match wins.
var browserRules = []rule{
	{"firefox", "Firefox"},
	{"edg", "Edge"},
	{"chrome", "Chrome"},
	{"safari", "Safari"},
	{"opera", "Opera"},
	{"opr", "Opera"},
	{"msie", "Internet Explorer"},
	{"trident", "Internet Explorer"},
}

// osRules is ordered most specific first: Windows NT versions before the
// generic Windows token, iPhone/iPad before "mac os x" (iOS UAs claim
// "like Mac OS X"), Android before Linux.
var osRules = []rule{
	{"windows nt 10.0", "Windows 10"},
	{"windows nt 6.3", "Windows 8.1"},
	{"windows nt 6.2", "Windows 8"},
	{"windows nt 6.1", "Windows 7"},
	{"windows", "Windows"},
	{"iphone", "iOS"},
	{"ipad", "iOS"},
	{"mac os x", "Mac OS X"},
	{"android", "Android"},
	{"linux", "Linux"},
}

// Classify parses a raw user-agent string. An empty string yields
// desktop/Unknown/Unknown.
func Classify(userAgent string) Info {
	if userAgent == "" {
		return Info{DeviceType: DeviceDesktop, Browser: "Unknown", OS: "Unknown"}
	}

	lower := strings.ToLower(userAgent)
	return Info{
		DeviceType: classifyDevice(lower),
		Browser:    classifyBrowser(lower),
		OS:         classifyOS(lower),
	}
}

func classifyDevice(lower string) string {
	if containsAny(lower, mobileOrTablet) {
		return DeviceMobile
	}
	if containsAny(lower, tabletOnly) {
		return DeviceTablet
	}
	return DeviceDesktop
}

func classifyBrowser(lower string) string {
	for _, r := range browserRules {
		if strings.Contains(lower, r.token) {
			return r.name
		}
	}
	return "Other"
}

func classifyOS(lower string) string {
	for _, r := range osRules {
		if strings.Contains(lower, r.token) {
			return r.name
		}
	}
	return "Other"
}

func containsAny(s string, tokens []string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
