package domain

import (
	"strings"
	"time"
)

// NormalizeHumanName trims leading/trailing whitespace and collapses internal whitespace runs.
// It is used for user name normalization.
func NormalizeHumanName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeEmail trims surrounding whitespace. Case is preserved for display;
// comparisons use strings.EqualFold.
func NormalizeEmail(s string) string {
	return strings.TrimSpace(s)
}

// DateOf truncates t to midnight UTC. Dates in this package carry date-only semantics.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// MustDate parses a YYYY-MM-DD literal. It panics on malformed input and is meant for fixtures.
func MustDate(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

// MatchesSearch reports whether term is a case-insensitive substring of any field.
// An empty (or whitespace-only) term matches everything.
func MatchesSearch(term string, fields ...string) bool {
	t := strings.ToLower(strings.TrimSpace(term))
	if t == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), t) {
			return true
		}
	}
	return false
}

// MatchesExact applies an optional categorical filter. "" and "all" match everything.
func MatchesExact(filter string, value string) bool {
	f := strings.TrimSpace(filter)
	if f == "" || strings.EqualFold(f, "all") {
		return true
	}
	return strings.EqualFold(f, value)
}
