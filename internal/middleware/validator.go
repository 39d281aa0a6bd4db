package middleware

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ValidateTargetURL checks a relay destination. Only http and https are
// accepted; when allowedHosts is non-empty the host must match one entry
// exactly or be a subdomain of an entry written as ".example.com".
func ValidateTargetURL(rawURL string, allowedHosts []string) error {
	if rawURL == "" {
		return fmt.Errorf("targetUrl cannot be empty")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid targetUrl format: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid targetUrl scheme: %q (allowed: http, https)", u.Scheme)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return fmt.Errorf("targetUrl has no host")
	}
	if len(allowedHosts) == 0 {
		return nil
	}
	for _, allowed := range allowedHosts {
		allowed = strings.ToLower(strings.TrimSpace(allowed))
		if allowed == "" {
			continue
		}
		if host == allowed {
			return nil
		}
		if strings.HasPrefix(allowed, ".") && strings.HasSuffix(host, allowed) {
			return nil
		}
	}
	return fmt.Errorf("targetUrl host %q is not allowed", host)
}

var analysisIDPattern = regexp.MustCompile(`^[a-z0-9_]{1,64}$`)

// ValidateAnalysisID validates the path parameter of the run endpoint.
func ValidateAnalysisID(id string) error {
	if id == "" {
		return fmt.Errorf("analysis id cannot be empty")
	}
	if !analysisIDPattern.MatchString(id) {
		return fmt.Errorf("invalid analysis id format (lowercase alphanumeric and underscore, max 64 chars)")
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}
