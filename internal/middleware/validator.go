package middleware

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Input validation and sanitization utilities

// ValidateTargetURL checks a normalized analysis target before the pipeline
// touches it. Scheme and host checks plus basic SSRF protection; syntactic
// normalization itself lives in the domain layer.
func ValidateTargetURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("URL cannot be empty")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: %s (allowed: http, https)", u.Scheme)
	}

	// Check for localhost/internal IPs (SSRF protection)
	host := strings.ToLower(u.Hostname())
	blocked := []string{"localhost", "127.0.0.1", "0.0.0.0", "[::]", "::1"}
	for _, b := range blocked {
		if strings.Contains(host, b) {
			return fmt.Errorf("localhost/internal IPs are not allowed")
		}
	}

	// Block private IP ranges (basic check)
	if strings.HasPrefix(host, "10.") ||
		strings.HasPrefix(host, "192.168.") ||
		strings.HasPrefix(host, "172.16.") ||
		strings.HasPrefix(host, "172.31.") {
		return fmt.Errorf("private IP ranges are not allowed")
	}

	return nil
}

// ValidateUserID validates user ID format
func ValidateUserID(user string) error {
	if user == "" {
		return fmt.Errorf("user ID cannot be empty")
	}

	// Allow alphanumeric, dash, underscore (max 64 chars)
	pattern := `^[a-zA-Z0-9_-]{1,64}$`
	matched, _ := regexp.MatchString(pattern, user)
	if !matched {
		return fmt.Errorf("invalid user ID format (alphanumeric, dash, underscore only, max 64 chars)")
	}

	return nil
}

// ValidateReportID validates report ID format (plain UUID)
func ValidateReportID(id string) error {
	if id == "" {
		return fmt.Errorf("report ID cannot be empty")
	}

	pattern := `^[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}$`
	matched, _ := regexp.MatchString(pattern, id)
	if !matched {
		return fmt.Errorf("invalid report ID format")
	}

	return nil
}
