package check

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"time"
	"unicode/utf8"
)

// Expirable is one expirable credential or certificate owned by a
// record.
type Expirable struct {
	ID          string
	Description string
	Expires     time.Time
}

// CompileExcludes compiles operator-supplied exclusion patterns.
// Patterns match at the start of the description, not the full string:
// operators anchor with "$" themselves when they want a full match, and
// silently upgrading to full-match would change which credentials
// existing configurations exclude.
func CompileExcludes(patterns []string) ([]*regexp.Regexp, error) {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(`\A(?:` + p + `)`)
		if err != nil {
			return nil, fmt.Errorf("compiling exclude pattern %q: %w", p, err)
		}
		res = append(res, re)
	}
	return res, nil
}

// Excluded reports whether a description matches any exclusion pattern.
// Matching uses the rendered description, never the raw identifier.
func Excluded(description string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(description) {
			return true
		}
	}
	return false
}

// Earliest selects the earliest-expiring non-excluded item. Ties keep
// the first-encountered item, so selection is stable in input order.
// It returns nil when every item is excluded (or the slice is empty).
func Earliest(items []Expirable, exclude []*regexp.Regexp) *Expirable {
	var earliest *Expirable
	for i := range items {
		if Excluded(items[i].Description, exclude) {
			continue
		}
		if earliest == nil || items[i].Expires.Before(earliest.Expires) {
			earliest = &items[i]
		}
	}
	return earliest
}

// DecodeIdentifier turns an opaque base64 credential identifier into a
// readable description. Entra stores the customKeyIdentifier of secrets
// base64-encoded, but not every value decodes cleanly; failures are
// absorbed and the empty string is returned.
func DecodeIdentifier(identifier string) string {
	raw, err := base64.StdEncoding.DecodeString(identifier)
	if err != nil || !utf8.Valid(raw) {
		return ""
	}
	return string(raw)
}

// ParseExpiration parses an ISO-8601 expiration timestamp.
func ParseExpiration(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing expiration timestamp %q: %w", value, err)
	}
	return t, nil
}
