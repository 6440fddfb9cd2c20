package services

import (
	"net/http"
	"testing"
	"time"

	"github.com/giglink/backend/internal/models"
)

func TestBookingCreate(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db, newTestNotifier(db))

	client := createClient(t, db, "client@test.local")
	musician := createMusician(t, db, "musician@test.local")

	booking, err := svc.Create(client.ID, &CreateBookingRequest{
		MusicianID:  musician.ID,
		EventDate:   time.Now().AddDate(0, 1, 0),
		EventType:   "Wedding",
		OfferedRate: 200,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if booking.Status != models.BookingPending {
		t.Errorf("Status = %q, expected %q", booking.Status, models.BookingPending)
	}
	if booking.AgreedRate != nil {
		t.Errorf("AgreedRate should be nil while pending, got %v", *booking.AgreedRate)
	}

	var notif models.Notification
	if err := db.Where("user_id = ? AND type = ?", musician.ID, models.NotifBookingRequest).First(&notif).Error; err != nil {
		t.Errorf("expected booking_request notification for musician: %v", err)
	}
}

func TestBookingCreate_MusicianChecks(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db, newTestNotifier(db))

	client := createClient(t, db, "client@test.local")
	otherClient := createClient(t, db, "client2@test.local")
	unavailable := createMusician(t, db, "busy@test.local")
	db.Model(&models.MusicianProfile{}).Where("user_id = ?", unavailable.ID).Update("is_available", false)

	inactive := createMusician(t, db, "gone@test.local")
	db.Model(&models.User{}).Where("id = ?", inactive.ID).Update("is_active", false)

	tests := []struct {
		name       string
		musicianID uint
	}{
		{"nonexistent musician", 9999},
		{"target is a client", otherClient.ID},
		{"musician unavailable", unavailable.ID},
		{"musician deactivated", inactive.ID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(client.ID, &CreateBookingRequest{
				MusicianID:  tt.musicianID,
				EventDate:   time.Now().AddDate(0, 1, 0),
				OfferedRate: 100,
			})
			assertAppError(t, err, http.StatusNotFound)
		})
	}
}

func TestBookingAccept_DefaultsToOfferedRate(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db, newTestNotifier(db))

	client := createClient(t, db, "client@test.local")
	musician := createMusician(t, db, "musician@test.local")
	booking := createBooking(t, db, client.ID, musician.ID, models.BookingPending)

	accepted, err := svc.Accept(musician.ID, booking.ID, &AcceptBookingRequest{})
	if err != nil {
		t.Fatalf("Accept failed: %v", err)
	}

	if accepted.Status != models.BookingAccepted {
		t.Errorf("Status = %q, expected %q", accepted.Status, models.BookingAccepted)
	}
	if accepted.AgreedRate == nil || *accepted.AgreedRate != booking.OfferedRate {
		t.Errorf("AgreedRate = %v, expected %v", accepted.AgreedRate, booking.OfferedRate)
	}
}

func TestBookingAccept_RateOverride(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db, newTestNotifier(db))

	client := createClient(t, db, "client@test.local")
	musician := createMusician(t, db, "musician@test.local")
	booking := createBooking(t, db, client.ID, musician.ID, models.BookingPending)

	rate := 275.0
	accepted, err := svc.Accept(musician.ID, booking.ID, &AcceptBookingRequest{AgreedRate: &rate})
	if err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	if accepted.AgreedRate == nil || *accepted.AgreedRate != rate {
		t.Errorf("AgreedRate = %v, expected %v", accepted.AgreedRate, rate)
	}
}

func TestBookingAccept_OnlyOnce(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db, newTestNotifier(db))

	client := createClient(t, db, "client@test.local")
	musician := createMusician(t, db, "musician@test.local")
	booking := createBooking(t, db, client.ID, musician.ID, models.BookingPending)

	if _, err := svc.Accept(musician.ID, booking.ID, &AcceptBookingRequest{}); err != nil {
		t.Fatalf("first Accept failed: %v", err)
	}

	_, err := svc.Accept(musician.ID, booking.ID, &AcceptBookingRequest{})
	assertAppError(t, err, http.StatusNotFound)
}

func TestBookingAccept_WrongMusician(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db, newTestNotifier(db))

	client := createClient(t, db, "client@test.local")
	musician := createMusician(t, db, "musician@test.local")
	other := createMusician(t, db, "other@test.local")
	booking := createBooking(t, db, client.ID, musician.ID, models.BookingPending)

	_, err := svc.Accept(other.ID, booking.ID, &AcceptBookingRequest{})
	assertAppError(t, err, http.StatusNotFound)

	var fresh models.Booking
	db.First(&fresh, booking.ID)
	if fresh.Status != models.BookingPending {
		t.Errorf("Status = %q, the booking should be untouched", fresh.Status)
	}
}

func TestBookingReject(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db, newTestNotifier(db))

	client := createClient(t, db, "client@test.local")
	musician := createMusician(t, db, "musician@test.local")
	booking := createBooking(t, db, client.ID, musician.ID, models.BookingPending)

	rejected, err := svc.Reject(musician.ID, booking.ID)
	if err != nil {
		t.Fatalf("Reject failed: %v", err)
	}
	if rejected.Status != models.BookingRejected {
		t.Errorf("Status = %q, expected %q", rejected.Status, models.BookingRejected)
	}
	if rejected.AgreedRate != nil {
		t.Errorf("AgreedRate should stay nil after rejection, got %v", *rejected.AgreedRate)
	}

	// Rejection is terminal
	_, err = svc.Accept(musician.ID, booking.ID, &AcceptBookingRequest{})
	assertAppError(t, err, http.StatusNotFound)
}

func TestBookingCancel(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db, newTestNotifier(db))

	client := createClient(t, db, "client@test.local")
	musician := createMusician(t, db, "musician@test.local")

	tests := []struct {
		name     string
		status   string
		callerID func() uint
		wantErr  bool
	}{
		{"client cancels pending", models.BookingPending, func() uint { return client.ID }, false},
		{"musician cancels accepted", models.BookingAccepted, func() uint { return musician.ID }, false},
		{"completed cannot be cancelled", models.BookingCompleted, func() uint { return client.ID }, true},
		{"rejected cannot be cancelled", models.BookingRejected, func() uint { return client.ID }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			booking := createBooking(t, db, client.ID, musician.ID, tt.status)

			cancelled, err := svc.Cancel(tt.callerID(), booking.ID)
			if tt.wantErr {
				assertAppError(t, err, http.StatusNotFound)
				return
			}
			if err != nil {
				t.Fatalf("Cancel failed: %v", err)
			}
			if cancelled.Status != models.BookingCancelled {
				t.Errorf("Status = %q, expected %q", cancelled.Status, models.BookingCancelled)
			}
		})
	}
}

func TestBookingCancel_Stranger(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db, newTestNotifier(db))

	client := createClient(t, db, "client@test.local")
	musician := createMusician(t, db, "musician@test.local")
	stranger := createClient(t, db, "stranger@test.local")
	booking := createBooking(t, db, client.ID, musician.ID, models.BookingPending)

	_, err := svc.Cancel(stranger.ID, booking.ID)
	assertAppError(t, err, http.StatusNotFound)
}

func TestBookingComplete_IncrementsTotalGigsOnce(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db, newTestNotifier(db))

	client := createClient(t, db, "client@test.local")
	musician := createMusician(t, db, "musician@test.local")
	booking := createBooking(t, db, client.ID, musician.ID, models.BookingAccepted)

	completed, err := svc.Complete(client.ID, booking.ID)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if completed.Status != models.BookingCompleted {
		t.Errorf("Status = %q, expected %q", completed.Status, models.BookingCompleted)
	}

	var profile models.MusicianProfile
	db.Where("user_id = ?", musician.ID).First(&profile)
	if profile.TotalGigs != 1 {
		t.Errorf("TotalGigs = %d, expected 1", profile.TotalGigs)
	}

	// A repeat completion fails and must not credit a second gig.
	_, err = svc.Complete(client.ID, booking.ID)
	assertAppError(t, err, http.StatusNotFound)

	db.Where("user_id = ?", musician.ID).First(&profile)
	if profile.TotalGigs != 1 {
		t.Errorf("TotalGigs = %d after repeat completion, expected 1", profile.TotalGigs)
	}
}

func TestBookingComplete_RequiresAccepted(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db, newTestNotifier(db))

	client := createClient(t, db, "client@test.local")
	musician := createMusician(t, db, "musician@test.local")
	booking := createBooking(t, db, client.ID, musician.ID, models.BookingPending)

	_, err := svc.Complete(client.ID, booking.ID)
	assertAppError(t, err, http.StatusNotFound)

	var profile models.MusicianProfile
	db.Where("user_id = ?", musician.ID).First(&profile)
	if profile.TotalGigs != 0 {
		t.Errorf("TotalGigs = %d, expected 0", profile.TotalGigs)
	}
}

func TestBookingLifecycle(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db, newTestNotifier(db))

	client := createClient(t, db, "client@test.local")
	musician := createMusician(t, db, "musician@test.local")

	booking, err := svc.Create(client.ID, &CreateBookingRequest{
		MusicianID:  musician.ID,
		EventDate:   time.Now().AddDate(0, 2, 0),
		EventType:   "Birthday",
		OfferedRate: 300,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	rate := 350.0
	if _, err := svc.Accept(musician.ID, booking.ID, &AcceptBookingRequest{AgreedRate: &rate}); err != nil {
		t.Fatalf("Accept failed: %v", err)
	}

	completed, err := svc.Complete(musician.ID, booking.ID)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if *completed.AgreedRate != rate {
		t.Errorf("AgreedRate = %v, expected %v", *completed.AgreedRate, rate)
	}

	// Both parties got notified along the way.
	var clientNotifs, musicianNotifs int64
	db.Model(&models.Notification{}).Where("user_id = ?", client.ID).Count(&clientNotifs)
	db.Model(&models.Notification{}).Where("user_id = ?", musician.ID).Count(&musicianNotifs)
	if clientNotifs != 2 { // accepted + completed
		t.Errorf("client notifications = %d, expected 2", clientNotifs)
	}
	if musicianNotifs != 1 { // booking request
		t.Errorf("musician notifications = %d, expected 1", musicianNotifs)
	}
}

func TestBookingList(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db, newTestNotifier(db))

	client := createClient(t, db, "client@test.local")
	musician := createMusician(t, db, "musician@test.local")
	stranger := createClient(t, db, "stranger@test.local")

	createBooking(t, db, client.ID, musician.ID, models.BookingPending)
	createBooking(t, db, client.ID, musician.ID, models.BookingCancelled)
	createBooking(t, db, stranger.ID, musician.ID, models.BookingPending)

	resp, err := svc.List(client.ID, &BookingListRequest{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if resp.Total != 2 {
		t.Errorf("Total = %d, expected 2", resp.Total)
	}

	resp, err = svc.List(client.ID, &BookingListRequest{Status: models.BookingPending})
	if err != nil {
		t.Fatalf("List with status filter failed: %v", err)
	}
	if resp.Total != 1 {
		t.Errorf("Total = %d with status filter, expected 1", resp.Total)
	}

	// The musician sees all three.
	resp, err = svc.List(musician.ID, &BookingListRequest{})
	if err != nil {
		t.Fatalf("List for musician failed: %v", err)
	}
	if resp.Total != 3 {
		t.Errorf("Total = %d for musician, expected 3", resp.Total)
	}
}

func TestBookingGetByID_Visibility(t *testing.T) {
	db := newTestDB(t)
	svc := NewBookingService(db, newTestNotifier(db))

	client := createClient(t, db, "client@test.local")
	musician := createMusician(t, db, "musician@test.local")
	stranger := createClient(t, db, "stranger@test.local")
	booking := createBooking(t, db, client.ID, musician.ID, models.BookingPending)

	if _, err := svc.GetByID(client.ID, booking.ID); err != nil {
		t.Errorf("client should see own booking: %v", err)
	}
	if _, err := svc.GetByID(musician.ID, booking.ID); err != nil {
		t.Errorf("musician should see own booking: %v", err)
	}

	_, err := svc.GetByID(stranger.ID, booking.ID)
	assertAppError(t, err, http.StatusNotFound)
}
