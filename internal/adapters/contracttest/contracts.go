package contracttest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/aquaclean/carwash-api/internal/domain"
	idempotencyport "github.com/aquaclean/carwash-api/internal/ports/out/idempotency"
	notificationrepoport "github.com/aquaclean/carwash-api/internal/ports/out/notificationrepo"
	revenuerepoport "github.com/aquaclean/carwash-api/internal/ports/out/revenuerepo"
	sessionstoreport "github.com/aquaclean/carwash-api/internal/ports/out/sessionstore"
	userrepoport "github.com/aquaclean/carwash-api/internal/ports/out/userrepo"
)

type CleanupFunc = func()

type UserRepoFactory func(t *testing.T) (userrepoport.Repository, CleanupFunc)
type NotificationRepoFactory func(t *testing.T) (notificationrepoport.Repository, CleanupFunc)
type RevenueRepoFactory func(t *testing.T) (revenuerepoport.Repository, CleanupFunc)
type SessionStoreFactory func(t *testing.T) (sessionstoreport.Store, CleanupFunc)
type IdemStoreFactory func(t *testing.T) (idempotencyport.Store, CleanupFunc)

func RunIdempotencyStore(t *testing.T, newStore IdemStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	fp := idempotencyport.Fingerprint{
		Key:      idempotencyport.Key("k-" + uuid.NewString()),
		User:     domain.UserID(uuid.NewString()),
		Method:   "PATCH",
		Route:    "/me/profile",
		BodyHash: "",
	}
	if _, ok, err := store.Get(ctx, fp); err != nil || ok {
		t.Fatalf("Get before Put: ok=%v err=%v", ok, err)
	}

	rec := idempotencyport.Record{
		StatusCode:  0,
		ContentType: "text/plain",
		Body:        []byte("hash-abc"),
		CreatedAt:   time.Unix(123, 0).UTC(),
	}
	if err := store.Put(ctx, fp, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := store.Get(ctx, fp)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok=true")
	}
	if string(got.Body) != "hash-abc" || got.ContentType != "text/plain" || got.StatusCode != 0 {
		t.Fatalf("unexpected record: %+v", got)
	}

	// Overwrite semantics.
	rec2 := rec
	rec2.Body = []byte("hash-def")
	if err := store.Put(ctx, fp, rec2); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	got, ok, err = store.Get(ctx, fp)
	if err != nil || !ok || string(got.Body) != "hash-def" {
		t.Fatalf("expected overwritten record, got ok=%v err=%v body=%q", ok, err, string(got.Body))
	}

	// A different body hash is a different fingerprint.
	other := fp
	other.BodyHash = "h2"
	if _, ok, err := store.Get(ctx, other); err != nil || ok {
		t.Fatalf("Get other body hash: ok=%v err=%v", ok, err)
	}

	// Purge drops only records created before the cutoff.
	fresh := other
	if err := store.Put(ctx, fresh, idempotencyport.Record{StatusCode: 201, ContentType: "application/json", Body: []byte("{}"), CreatedAt: time.Unix(1000, 0).UTC()}); err != nil {
		t.Fatalf("Put fresh: %v", err)
	}
	n, err := store.Purge(ctx, time.Unix(500, 0).UTC())
	if err != nil || n < 1 {
		t.Fatalf("Purge: n=%d err=%v", n, err)
	}
	if _, ok, err := store.Get(ctx, fp); err != nil || ok {
		t.Fatalf("Get purged: ok=%v err=%v", ok, err)
	}
	if got, ok, err := store.Get(ctx, fresh); err != nil || !ok || got.StatusCode != 201 {
		t.Fatalf("Get fresh after purge: ok=%v err=%v rec=%+v", ok, err, got)
	}
}

func testUser(email string, joined time.Time) domain.User {
	id := domain.UserID(uuid.NewString())
	carID := domain.CarID(uuid.NewString())
	return domain.User{
		ID:       id,
		Name:     "Test User",
		Email:    email,
		Phone:    "+1 (555) 111-2222",
		Role:     domain.RoleCustomer,
		JoinDate: joined,
		Subscription: domain.Subscription{
			Tier:      domain.TierPremium,
			Duration:  domain.DurationSixMonth,
			StartDate: joined,
			EndDate:   domain.DurationSixMonth.EndDate(joined),
			Status:    domain.SubscriptionActive,
		},
		TotalSpent: 120.5,
		Cars: []domain.Car{{
			ID: carID, UserID: id, Make: "Toyota", Model: "Camry", Year: 2022,
			Color: "White", LicensePlate: "TST-001", AddedDate: joined,
		}},
		Appointments: []domain.Appointment{{
			ID: domain.AppointmentID(uuid.NewString()), UserID: id, CarID: carID,
			Date: joined.AddDate(0, 0, 7), Time: "10:00 AM", Service: domain.TierPremium,
			Status: domain.AppointmentScheduled, WashType: "Exterior & Interior",
		}},
		Feedback: []domain.Feedback{{
			ID: domain.FeedbackID(uuid.NewString()), UserID: id, Rating: 5,
			Comment: "Great", Date: joined, ServiceType: "Premium Clean",
		}},
	}
}

func RunUserRepo(t *testing.T, newRepo UserRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	now := time.Unix(1000, 0).UTC()
	joined := domain.MustDate("2024-01-15")
	suffix := uuid.NewString()[:8]

	a := testUser("Alice."+suffix+"@Example.com", joined)
	if err := repo.Create(ctx, userrepoport.Record{User: a, PasswordHash: []byte("hash-a"), CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("Create a: %v", err)
	}

	got, err := repo.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.User.Email != a.Email || string(got.PasswordHash) != "hash-a" {
		t.Fatalf("unexpected record: %+v", got)
	}
	if len(got.User.Cars) != 1 || len(got.User.Appointments) != 1 || len(got.User.Feedback) != 1 {
		t.Fatalf("children not persisted: %+v", got.User)
	}
	if got.User.Subscription.Tier != domain.TierPremium || !got.User.Subscription.EndDate.Equal(domain.MustDate("2024-07-15")) {
		t.Fatalf("unexpected subscription: %+v", got.User.Subscription)
	}

	// Case-insensitive email lookup.
	byEmail, err := repo.GetByEmail(ctx, "alice."+suffix+"@example.COM")
	if err != nil || byEmail.User.ID != a.ID {
		t.Fatalf("GetByEmail: id=%q err=%v", byEmail.User.ID, err)
	}
	if _, err := repo.GetByEmail(ctx, "nobody-"+suffix+"@example.com"); !errors.Is(err, userrepoport.ErrNotFound) {
		t.Fatalf("GetByEmail unknown err=%v, want ErrNotFound", err)
	}

	// Uniqueness.
	if err := repo.Create(ctx, userrepoport.Record{User: a, CreatedAt: now, UpdatedAt: now}); !errors.Is(err, userrepoport.ErrAlreadyExists) {
		t.Fatalf("Create duplicate id err=%v, want ErrAlreadyExists", err)
	}
	dup := testUser("ALICE."+suffix+"@example.com", joined)
	if err := repo.Create(ctx, userrepoport.Record{User: dup, CreatedAt: now, UpdatedAt: now}); !errors.Is(err, userrepoport.ErrEmailTaken) {
		t.Fatalf("Create duplicate email err=%v, want ErrEmailTaken", err)
	}

	b := testUser("bob."+suffix+"@example.com", joined)
	b.Cars = nil
	b.Appointments = nil
	b.Feedback = nil
	if err := repo.Create(ctx, userrepoport.Record{User: b, CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("Create b: %v", err)
	}

	// Wholesale update keeps the password hash.
	a2 := got.User.Clone()
	a2.Name = "Alice Updated"
	a2.Cars = append(a2.Cars, domain.Car{
		ID: domain.CarID(uuid.NewString()), UserID: a.ID, Make: "Honda", Model: "Civic",
		Year: 2021, Color: "Black", LicensePlate: "TST-002", AddedDate: joined,
	})
	a2.Appointments[0].Status = domain.AppointmentCompleted
	a2.Feedback = nil
	later := now.Add(time.Hour)
	if err := repo.Update(ctx, a2, later); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err = repo.GetByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetByID after update: %v", err)
	}
	if got.User.Name != "Alice Updated" || len(got.User.Cars) != 2 || got.User.Cars[1].Make != "Honda" {
		t.Fatalf("unexpected updated user: %+v", got.User)
	}
	if got.User.Appointments[0].Status != domain.AppointmentCompleted || len(got.User.Feedback) != 0 {
		t.Fatalf("children not replaced: %+v", got.User)
	}
	if string(got.PasswordHash) != "hash-a" {
		t.Fatalf("password hash changed by Update: %q", got.PasswordHash)
	}

	// Email change onto another user's address.
	clash := got.User.Clone()
	clash.Email = "BOB." + suffix + "@example.com"
	if err := repo.Update(ctx, clash, later); !errors.Is(err, userrepoport.ErrEmailTaken) {
		t.Fatalf("Update email clash err=%v, want ErrEmailTaken", err)
	}

	missing := testUser("ghost."+suffix+"@example.com", joined)
	if err := repo.Update(ctx, missing, later); !errors.Is(err, userrepoport.ErrNotFound) {
		t.Fatalf("Update missing err=%v, want ErrNotFound", err)
	}

	if err := repo.SetPasswordHash(ctx, b.ID, []byte("hash-b"), later); err != nil {
		t.Fatalf("SetPasswordHash: %v", err)
	}
	gotB, err := repo.GetByID(ctx, b.ID)
	if err != nil || string(gotB.PasswordHash) != "hash-b" {
		t.Fatalf("GetByID b: hash=%q err=%v", gotB.PasswordHash, err)
	}
	if err := repo.SetPasswordHash(ctx, missing.ID, []byte("x"), later); !errors.Is(err, userrepoport.ErrNotFound) {
		t.Fatalf("SetPasswordHash missing err=%v, want ErrNotFound", err)
	}

	// Insertion order.
	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	ia, ib := -1, -1
	for i, u := range list {
		switch u.ID {
		case a.ID:
			ia = i
		case b.ID:
			ib = i
		}
	}
	if ia < 0 || ib < 0 || ia > ib {
		t.Fatalf("unexpected list order: a=%d b=%d", ia, ib)
	}
}

func RunNotificationRepo(t *testing.T, newRepo NotificationRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	target := domain.UserID(uuid.NewString())
	older := domain.Notification{
		ID: domain.NotificationID(uuid.NewString()), UserID: &target,
		Title: "Reminder", Message: "Renew soon", Type: domain.NotificationReminder,
		Date: domain.MustDate("2031-07-01"),
	}
	newer := domain.Notification{
		ID:    domain.NotificationID(uuid.NewString()),
		Title: "Promo", Message: "25% off", Type: domain.NotificationPromotion,
		Date: domain.MustDate("2031-07-05"),
	}
	sameDay := domain.Notification{
		ID:    domain.NotificationID(uuid.NewString()),
		Title: "System", Message: "Maintenance", Type: domain.NotificationSystem,
		Date: domain.MustDate("2031-07-05"),
	}
	for _, n := range []domain.Notification{older, newer, sameDay} {
		if err := repo.Create(ctx, n); err != nil {
			t.Fatalf("Create %q: %v", n.Title, err)
		}
	}
	if err := repo.Create(ctx, older); !errors.Is(err, notificationrepoport.ErrAlreadyExists) {
		t.Fatalf("Create duplicate err=%v, want ErrAlreadyExists", err)
	}

	got, err := repo.GetByID(ctx, older.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.UserID == nil || *got.UserID != target || got.Read {
		t.Fatalf("unexpected notification: %+v", got)
	}
	if _, err := repo.GetByID(ctx, domain.NotificationID(uuid.NewString())); !errors.Is(err, notificationrepoport.ErrNotFound) {
		t.Fatalf("GetByID unknown err=%v, want ErrNotFound", err)
	}

	// Newest first; same date resolves to most recently created.
	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var ordered []domain.NotificationID
	for _, n := range list {
		switch n.ID {
		case older.ID, newer.ID, sameDay.ID:
			ordered = append(ordered, n.ID)
		}
	}
	want := []domain.NotificationID{sameDay.ID, newer.ID, older.ID}
	if len(ordered) != len(want) {
		t.Fatalf("List missing entries: %v", ordered)
	}
	for i := range want {
		if ordered[i] != want[i] {
			t.Fatalf("List order=%v, want %v", ordered, want)
		}
	}

	if err := repo.MarkRead(ctx, older.ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	got, _ = repo.GetByID(ctx, older.ID)
	if !got.Read {
		t.Fatalf("expected read after MarkRead")
	}
	if err := repo.MarkRead(ctx, domain.NotificationID(uuid.NewString())); !errors.Is(err, notificationrepoport.ErrNotFound) {
		t.Fatalf("MarkRead unknown err=%v, want ErrNotFound", err)
	}
}

// RunRevenueRepo expects an empty series.
func RunRevenueRepo(t *testing.T, newRepo RevenueRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	jan := domain.Revenue{Month: "2024-01", Basic: 1200, Premium: 2400, Luxury: 1800, Total: 5400}
	feb := domain.Revenue{Month: "2024-02", Basic: 1350, Premium: 2700, Luxury: 2100, Total: 6150}
	if err := repo.Append(ctx, jan); err != nil {
		t.Fatalf("Append jan: %v", err)
	}
	if err := repo.Append(ctx, feb); err != nil {
		t.Fatalf("Append feb: %v", err)
	}
	if err := repo.Append(ctx, jan); !errors.Is(err, revenuerepoport.ErrOutOfOrder) {
		t.Fatalf("Append out of order err=%v, want ErrOutOfOrder", err)
	}
	if err := repo.Append(ctx, feb); !errors.Is(err, revenuerepoport.ErrOutOfOrder) {
		t.Fatalf("Append same month err=%v, want ErrOutOfOrder", err)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0] != jan || list[1] != feb {
		t.Fatalf("unexpected series: %+v", list)
	}
}

func RunSessionStore(t *testing.T, newStore SessionStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	now := time.Now().UTC().Truncate(time.Second)
	sess := sessionstoreport.Session{
		TokenHash: "th-" + uuid.NewString(),
		UserID:    domain.UserID(uuid.NewString()),
		Role:      domain.RoleCustomer,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
	if _, err := store.Get(ctx, sess.TokenHash); !errors.Is(err, sessionstoreport.ErrNotFound) {
		t.Fatalf("Get before Put err=%v, want ErrNotFound", err)
	}
	if err := store.Put(ctx, sess); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := store.Get(ctx, sess.TokenHash)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.UserID != sess.UserID || got.Role != sess.Role || !got.ExpiresAt.Equal(sess.ExpiresAt) || !got.CreatedAt.Equal(sess.CreatedAt) {
		t.Fatalf("Get()=%+v, want %+v", got, sess)
	}

	if err := store.Delete(ctx, sess.TokenHash); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, sess.TokenHash); !errors.Is(err, sessionstoreport.ErrNotFound) {
		t.Fatalf("Get after Delete err=%v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, sess.TokenHash); err != nil {
		t.Fatalf("Delete twice: %v", err)
	}
}
