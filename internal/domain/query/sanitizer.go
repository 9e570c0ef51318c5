package query

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/docquery/internal/domain"
)

// MaxQueryLength is the maximum accepted query length in characters.
const MaxQueryLength = 200

// denylist holds substrings that reject a query outright. Matched
// case-insensitively against the normalized input.
var denylist = []string{
	";",
	"--",
	"/*",
	"*/",
	"xp_",
	"sp_",
	"\x00",
}

// allowedChars is the character whitelist: letters, digits, space, and a
// small punctuation set. Anything outside rejects the query — no silent
// stripping.
var allowedChars = regexp.MustCompile(`^[a-zA-Z0-9 .,\-?!'"$()]*$`)

// suspiciousKeywords flag a query for audit visibility without blocking it.
var suspiciousKeywords = []string{
	"select ", "insert ", "update ", "delete ", "drop ", "alter ",
	"create ", "truncate ", "exec ", "union ", "script",
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Sanitize validates and normalizes raw query text. It returns
// domain.ErrValidation for empty input and domain.ErrSecurity for input that
// is too long, contains a denylisted substring, or contains a character
// outside the whitelist. Disallowed input is rejected, never repaired.
func Sanitize(raw string) (string, error) {
	normalized := whitespaceRun.ReplaceAllString(strings.TrimSpace(raw), " ")
	if normalized == "" {
		return "", fmt.Errorf("empty query: %w", domain.ErrValidation)
	}
	if n := utf8.RuneCountInString(normalized); n > MaxQueryLength {
		return "", domain.NewSecurityError(
			"query_too_long",
			fmt.Sprintf("length %d exceeds cap %d", n, MaxQueryLength),
		)
	}

	lowered := strings.ToLower(normalized)
	for _, pattern := range denylist {
		if strings.Contains(lowered, pattern) {
			return "", domain.NewSecurityError(
				"denylisted_pattern",
				fmt.Sprintf("query contains %q", pattern),
			)
		}
	}

	if !allowedChars.MatchString(normalized) {
		return "", domain.NewSecurityError("disallowed_character", "query contains a character outside the whitelist")
	}

	return normalized, nil
}

// IsSuspicious reports whether the query contains SQL DDL/DML keyword
// phrasing. Advisory only: suspicious queries are flagged in the audit log
// but not blocked.
func IsSuspicious(q string) bool {
	lowered := strings.ToLower(q)
	for _, kw := range suspiciousKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}
