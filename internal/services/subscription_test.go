package services

import (
	"net/http"
	"testing"
	"time"

	"github.com/giglink/backend/internal/models"
)

// fixNow pins the service clock for the duration of a test.
func fixNow(t *testing.T, at time.Time) func(time.Time) {
	t.Helper()

	current := at
	now = func() time.Time { return current }
	t.Cleanup(func() { now = time.Now })

	return func(next time.Time) { current = next }
}

func TestSubscriptionCreate(t *testing.T) {
	db := newTestDB(t)
	svc := NewSubscriptionService(db)

	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fixNow(t, t0)

	musician := createMusician(t, db, "musician@test.local")

	sub, err := svc.Create(musician.ID, &CreateSubscriptionRequest{DurationMonths: 3, Amount: 45})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if sub.Status != models.SubscriptionActive {
		t.Errorf("Status = %q, expected %q", sub.Status, models.SubscriptionActive)
	}
	if !sub.StartDate.Equal(t0) {
		t.Errorf("StartDate = %v, expected %v", sub.StartDate, t0)
	}
	if want := t0.AddDate(0, 3, 0); !sub.EndDate.Equal(want) {
		t.Errorf("EndDate = %v, expected %v", sub.EndDate, want)
	}
	if !sub.AutoRenew {
		t.Error("AutoRenew should default to true")
	}
}

func TestSubscriptionCreate_ConflictWhileActive(t *testing.T) {
	db := newTestDB(t)
	svc := NewSubscriptionService(db)
	fixNow(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	musician := createMusician(t, db, "musician@test.local")

	if _, err := svc.Create(musician.ID, &CreateSubscriptionRequest{DurationMonths: 1}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	_, err := svc.Create(musician.ID, &CreateSubscriptionRequest{DurationMonths: 1})
	assertAppError(t, err, http.StatusConflict)
}

func TestSubscriptionCreate_ReusesExpiredRow(t *testing.T) {
	db := newTestDB(t)
	svc := NewSubscriptionService(db)

	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	advance := fixNow(t, t0)

	musician := createMusician(t, db, "musician@test.local")

	first, err := svc.Create(musician.ID, &CreateSubscriptionRequest{DurationMonths: 1})
	if err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	// Let the window lapse, then subscribe again.
	advance(t0.AddDate(0, 2, 0))

	second, err := svc.Create(musician.ID, &CreateSubscriptionRequest{DurationMonths: 1})
	if err != nil {
		t.Fatalf("second Create failed: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("second subscription ID = %d, expected reuse of %d", second.ID, first.ID)
	}

	var count int64
	db.Model(&models.Subscription{}).Count(&count)
	if count != 1 {
		t.Errorf("subscription rows = %d, expected 1 per profile", count)
	}
}

func TestSubscriptionCreate_RequiresProfile(t *testing.T) {
	db := newTestDB(t)
	svc := NewSubscriptionService(db)

	client := createClient(t, db, "client@test.local")

	_, err := svc.Create(client.ID, &CreateSubscriptionRequest{DurationMonths: 1})
	assertAppError(t, err, http.StatusNotFound)
}

func TestSubscriptionRenew_EarlyAppendsToWindow(t *testing.T) {
	db := newTestDB(t)
	svc := NewSubscriptionService(db)

	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fixNow(t, t0)

	musician := createMusician(t, db, "musician@test.local")

	if _, err := svc.Create(musician.ID, &CreateSubscriptionRequest{DurationMonths: 2}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Renewing before expiry extends from the current end date, the
	// remaining time is never lost.
	sub, err := svc.Renew(musician.ID, &RenewSubscriptionRequest{DurationMonths: 1})
	if err != nil {
		t.Fatalf("Renew failed: %v", err)
	}

	if want := t0.AddDate(0, 3, 0); !sub.EndDate.Equal(want) {
		t.Errorf("EndDate = %v, expected %v", sub.EndDate, want)
	}
}

func TestSubscriptionRenew_AfterExpiryRestartsFromNow(t *testing.T) {
	db := newTestDB(t)
	svc := NewSubscriptionService(db)

	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	advance := fixNow(t, t0)

	musician := createMusician(t, db, "musician@test.local")

	if _, err := svc.Create(musician.ID, &CreateSubscriptionRequest{DurationMonths: 1}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	lapsed := t0.AddDate(0, 6, 0)
	advance(lapsed)

	sub, err := svc.Renew(musician.ID, &RenewSubscriptionRequest{DurationMonths: 1})
	if err != nil {
		t.Fatalf("Renew failed: %v", err)
	}

	if sub.Status != models.SubscriptionActive {
		t.Errorf("Status = %q, expected %q", sub.Status, models.SubscriptionActive)
	}
	if want := lapsed.AddDate(0, 1, 0); !sub.EndDate.Equal(want) {
		t.Errorf("EndDate = %v, expected %v", sub.EndDate, want)
	}
}

func TestSubscriptionStatus_LazyExpiry(t *testing.T) {
	db := newTestDB(t)
	svc := NewSubscriptionService(db)

	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	advance := fixNow(t, t0)

	musician := createMusician(t, db, "musician@test.local")

	if _, err := svc.Create(musician.ID, &CreateSubscriptionRequest{DurationMonths: 1}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Nothing touches the row until somebody reads it.
	advance(t0.AddDate(0, 2, 0))

	var stored models.Subscription
	db.First(&stored)
	if stored.Status != models.SubscriptionActive {
		t.Fatalf("stored Status = %q before read, expected %q", stored.Status, models.SubscriptionActive)
	}

	sub, err := svc.Status(musician.ID)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if sub.Status != models.SubscriptionExpired {
		t.Errorf("Status = %q, expected %q", sub.Status, models.SubscriptionExpired)
	}

	// The expiry is persisted, not just reported.
	db.First(&stored)
	if stored.Status != models.SubscriptionExpired {
		t.Errorf("stored Status = %q after read, expected %q", stored.Status, models.SubscriptionExpired)
	}
}

func TestSubscriptionCancel_KeepsWindow(t *testing.T) {
	db := newTestDB(t)
	svc := NewSubscriptionService(db)

	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fixNow(t, t0)

	musician := createMusician(t, db, "musician@test.local")

	created, err := svc.Create(musician.ID, &CreateSubscriptionRequest{DurationMonths: 2})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	sub, err := svc.Cancel(musician.ID)
	if err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	if sub.Status != models.SubscriptionCancelled {
		t.Errorf("Status = %q, expected %q", sub.Status, models.SubscriptionCancelled)
	}
	if sub.AutoRenew {
		t.Error("AutoRenew should be off after cancellation")
	}
	if !sub.EndDate.Equal(created.EndDate) {
		t.Errorf("EndDate = %v, expected the window untouched at %v", sub.EndDate, created.EndDate)
	}
}

func TestSubscriptionStatus_NoSubscription(t *testing.T) {
	db := newTestDB(t)
	svc := NewSubscriptionService(db)

	musician := createMusician(t, db, "musician@test.local")

	_, err := svc.Status(musician.ID)
	assertAppError(t, err, http.StatusNotFound)
}
