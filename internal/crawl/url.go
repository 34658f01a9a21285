package crawl

import (
	"fmt"
	"net/url"
)

// Hostname extracts the hostname component of raw, the key used for
// per-host delay and selector lookup.
func Hostname(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	return u.Hostname(), nil
}
