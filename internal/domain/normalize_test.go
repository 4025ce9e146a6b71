package domain

import (
	"testing"
	"time"
)

func TestMatchesSearch(t *testing.T) {
	t.Parallel()

	if !MatchesSearch("", "anything") {
		t.Fatalf("empty term should match")
	}
	if !MatchesSearch("  ", "anything") {
		t.Fatalf("blank term should match")
	}
	if !MatchesSearch("SMITH", "John Smith", "john@example.com") {
		t.Fatalf("expected case-insensitive match on first field")
	}
	if !MatchesSearch("example", "John Smith", "john@example.com") {
		t.Fatalf("expected match on second field")
	}
	if MatchesSearch("tesla", "John Smith", "john@example.com") {
		t.Fatalf("unexpected match")
	}
}

func TestMatchesExact(t *testing.T) {
	t.Parallel()

	if !MatchesExact("", "active") || !MatchesExact("all", "active") || !MatchesExact("ALL", "x") {
		t.Fatalf("empty/all filters should match everything")
	}
	if !MatchesExact("toyota", "Toyota") {
		t.Fatalf("expected case-insensitive equality")
	}
	if MatchesExact("expired", "active") {
		t.Fatalf("unexpected match")
	}
}

func TestDateOf_TruncatesToUTCMidnight(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("X", -5*3600)
	in := time.Date(2024, 7, 10, 22, 30, 0, 0, loc) // 2024-07-11 03:30 UTC
	got := DateOf(in)
	if !got.Equal(MustDate("2024-07-11")) {
		t.Fatalf("DateOf()=%v", got)
	}
}

func TestNormalizeHumanName(t *testing.T) {
	t.Parallel()

	if got := NormalizeHumanName("  Alice   Smith "); got != "Alice Smith" {
		t.Fatalf("NormalizeHumanName()=%q", got)
	}
}
