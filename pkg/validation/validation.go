package validation

import (
	"errors"
	"net/url"
	"strings"
)

// ValidateMediaURL accepts absolute http(s) URLs only.
func ValidateMediaURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return errors.New("media url cannot be empty")
	}
	parsed, err := url.ParseRequestURI(raw)
	if err != nil || parsed.Host == "" {
		return errors.New("media url must be valid")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.New("media url must use http or https")
	}
	return nil
}
