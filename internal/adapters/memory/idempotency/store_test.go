package idempotency

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/aquaclean/carwash-api/internal/domain"
	"github.com/aquaclean/carwash-api/internal/ports/out/idempotency"
)

func TestStore_PutThenGet(t *testing.T) {
	t.Parallel()

	s := NewStore()
	fp := idempotency.Fingerprint{
		Key:      "k1",
		User:     domain.UserID("u-1"),
		Method:   http.MethodPost,
		Route:    "/me/appointments",
		BodyHash: "abc123",
	}
	rec := idempotency.Record{
		StatusCode:  http.StatusCreated,
		ContentType: "application/json",
		Body:        []byte(`{"ok":true}`),
		CreatedAt:   time.Unix(123, 0).UTC(),
	}

	if err := s.Put(context.Background(), fp, rec); err != nil {
		t.Fatalf("Put() err=%v", err)
	}

	got, ok, err := s.Get(context.Background(), fp)
	if err != nil {
		t.Fatalf("Get() err=%v", err)
	}
	if !ok {
		t.Fatalf("Get() ok=false, want true")
	}
	if got.StatusCode != rec.StatusCode || got.ContentType != rec.ContentType || string(got.Body) != string(rec.Body) {
		t.Fatalf("Get()=%+v, want %+v", got, rec)
	}
}

func TestStore_FingerprintsAreScopedPerUser(t *testing.T) {
	t.Parallel()

	s := NewStore()
	fp := idempotency.Fingerprint{Key: "k1", User: "u-1", Method: http.MethodPatch, Route: "/me/profile"}
	if err := s.Put(context.Background(), fp, idempotency.Record{StatusCode: http.StatusOK}); err != nil {
		t.Fatalf("Put() err=%v", err)
	}

	other := fp
	other.User = "u-2"
	if _, ok, err := s.Get(context.Background(), other); err != nil || ok {
		t.Fatalf("Get(other user) ok=%v err=%v, want miss", ok, err)
	}
}

func TestStore_ReturnedBodyIsACopy(t *testing.T) {
	t.Parallel()

	s := NewStore()
	fp := idempotency.Fingerprint{Key: "k1", User: "u-1", Method: http.MethodPatch, Route: "/me/profile"}
	_ = s.Put(context.Background(), fp, idempotency.Record{StatusCode: http.StatusOK, Body: []byte("abc")})

	got, _, _ := s.Get(context.Background(), fp)
	got.Body[0] = 'z'

	again, _, _ := s.Get(context.Background(), fp)
	if string(again.Body) != "abc" {
		t.Fatalf("stored body mutated: %q", again.Body)
	}
}

func TestStore_PurgeDropsOldRecords(t *testing.T) {
	t.Parallel()

	s := NewStore()
	now := time.Date(2024, 7, 9, 12, 0, 0, 0, time.UTC)
	old := idempotency.Fingerprint{Key: "old", User: "u-1", Method: http.MethodPost, Route: "/me/appointments"}
	recent := idempotency.Fingerprint{Key: "recent", User: "u-1", Method: http.MethodPost, Route: "/me/appointments"}
	_ = s.Put(context.Background(), old, idempotency.Record{StatusCode: http.StatusCreated, CreatedAt: now.Add(-48 * time.Hour)})
	_ = s.Put(context.Background(), recent, idempotency.Record{StatusCode: http.StatusCreated, CreatedAt: now.Add(-time.Hour)})

	n, err := s.Purge(context.Background(), now.Add(-24*time.Hour))
	if err != nil || n != 1 {
		t.Fatalf("Purge() n=%d err=%v, want 1", n, err)
	}
	if _, ok, _ := s.Get(context.Background(), old); ok {
		t.Fatalf("old record survived purge")
	}
	if _, ok, _ := s.Get(context.Background(), recent); !ok {
		t.Fatalf("recent record was purged")
	}
}
