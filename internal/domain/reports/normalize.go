package reports

import (
	"fmt"
	"net/url"
	"strings"
)

// NormalizeURL coerces user input into a canonical absolute URL. Input
// without a scheme gets https prepended. Purely syntactic; no network access.
func NormalizeURL(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty input", ErrInvalidURL)
	}

	lower := strings.ToLower(trimmed)
	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		// already absolute
	case strings.Contains(trimmed, "://"):
		return "", fmt.Errorf("%w: unsupported scheme", ErrInvalidURL)
	default:
		trimmed = "https://" + trimmed
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return u.String(), nil
}
