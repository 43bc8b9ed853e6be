package client

import (
	"bytes"
)

// captchaMarkers are the fixed indicators of an automated-challenge page.
// Matching is case-insensitive over the whole response body.
var captchaMarkers = []string{
	"captcha",
	"verify you are human",
	"security check",
	"recaptcha",
	"cloudflare",
}

// containsCaptchaMarker reports whether body looks like a captcha page.
func containsCaptchaMarker(body []byte) bool {
	lower := bytes.ToLower(body)
	for _, marker := range captchaMarkers {
		if bytes.Contains(lower, []byte(marker)) {
			return true
		}
	}
	return false
}
