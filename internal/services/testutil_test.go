package services

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/giglink/backend/internal/models"
	"github.com/giglink/backend/pkg/response"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := models.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// noopQueue drops every dispatch task. Tests that assert on pushes use
// recordingQueue instead.
type noopQueue struct{}

func (noopQueue) Enqueue(*DispatchTask) error { return nil }
func (noopQueue) IsAsync() bool               { return false }
func (noopQueue) Close() error                { return nil }

func newTestNotifier(db *gorm.DB) *NotificationService {
	return NewNotificationService(db, noopQueue{})
}

func createClient(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := &models.User{
		Email:    email,
		Phone:    fmt.Sprintf("+234%d", time.Now().UnixNano()%1e10),
		Password: "hashed",
		FullName: "Test Client",
		Role:     models.RoleClient,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return user
}

func createMusician(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := &models.User{
		Email:    email,
		Phone:    fmt.Sprintf("+235%d", time.Now().UnixNano()%1e10),
		Password: "hashed",
		FullName: "Test Musician",
		Role:     models.RoleMusician,
		IsActive: true,
		Profile:  &models.MusicianProfile{IsAvailable: true, HourlyRate: 100},
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create musician: %v", err)
	}
	return user
}

func createBooking(t *testing.T, db *gorm.DB, clientID, musicianID uint, status string) *models.Booking {
	t.Helper()

	booking := &models.Booking{
		ClientID:    clientID,
		MusicianID:  musicianID,
		EventDate:   time.Now().AddDate(0, 1, 0),
		EventType:   "Wedding",
		Venue:       "Test Hall",
		OfferedRate: 150,
		Status:      status,
	}
	if status == models.BookingAccepted || status == models.BookingCompleted {
		rate := 150.0
		booking.AgreedRate = &rate
	}
	if err := db.Create(booking).Error; err != nil {
		t.Fatalf("failed to create booking: %v", err)
	}
	return booking
}

func assertAppError(t *testing.T, err error, wantStatus int) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected error with status %d, got nil", wantStatus)
	}
	appErr, ok := err.(*response.AppError)
	if !ok {
		t.Fatalf("expected *response.AppError, got %T: %v", err, err)
	}
	if appErr.HTTPStatus != wantStatus {
		t.Errorf("HTTPStatus = %d, expected %d", appErr.HTTPStatus, wantStatus)
	}
}
