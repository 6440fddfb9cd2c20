package services

import (
	"net/http"
	"testing"

	"github.com/giglink/backend/internal/config"
	"github.com/giglink/backend/internal/models"
	"github.com/giglink/backend/internal/utils"
)

func TestRegister(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, &config.JWTConfig{Secret: "test", ExpireHour: 1}, nil)

	user, err := svc.Register(&RegisterRequest{
		Email:    "new@test.local",
		Phone:    "+2348000000001",
		Password: "password123",
		FullName: "New User",
		Role:     models.RoleClient,
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if user.ID == 0 {
		t.Error("user should be persisted with an ID")
	}
	if user.Password == "password123" {
		t.Error("password must be stored hashed")
	}
	if user.Profile != nil {
		t.Error("a client registration should not create a profile")
	}
}

func TestRegister_MusicianGetsProfile(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, &config.JWTConfig{Secret: "test", ExpireHour: 1}, nil)

	user, err := svc.Register(&RegisterRequest{
		Email:    "band@test.local",
		Phone:    "+2348000000002",
		Password: "password123",
		FullName: "Band Leader",
		Role:     models.RoleMusician,
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	var profile models.MusicianProfile
	if err := db.Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
		t.Errorf("musician registration should create a profile shell: %v", err)
	}
}

func TestRegister_Duplicates(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, &config.JWTConfig{Secret: "test", ExpireHour: 1}, nil)

	base := &RegisterRequest{
		Email:    "taken@test.local",
		Phone:    "+2348000000003",
		Password: "password123",
		FullName: "First",
		Role:     models.RoleClient,
	}
	if _, err := svc.Register(base); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	_, err := svc.Register(&RegisterRequest{
		Email:    "taken@test.local",
		Phone:    "+2348000000004",
		Password: "password123",
		FullName: "Second",
		Role:     models.RoleClient,
	})
	assertAppError(t, err, http.StatusConflict)

	_, err = svc.Register(&RegisterRequest{
		Email:    "fresh@test.local",
		Phone:    "+2348000000003",
		Password: "password123",
		FullName: "Third",
		Role:     models.RoleClient,
	})
	assertAppError(t, err, http.StatusConflict)
}

func TestLogin(t *testing.T) {
	utils.SetJWTSecret("test-secret")

	db := newTestDB(t)
	svc := NewAuthService(db, &config.JWTConfig{Secret: "test-secret", ExpireHour: 1}, nil)

	if _, err := svc.Register(&RegisterRequest{
		Email:    "login@test.local",
		Phone:    "+2348000000005",
		Password: "password123",
		FullName: "Login User",
		Role:     models.RoleClient,
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	resp, err := svc.Login(&LoginRequest{Email: "login@test.local", Password: "password123"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if resp.Token == "" {
		t.Error("Token should not be empty")
	}
	if resp.User.LastLogin == nil {
		t.Error("LastLogin should be stamped")
	}

	claims, err := utils.ParseToken(resp.Token)
	if err != nil {
		t.Fatalf("issued token should parse: %v", err)
	}
	if claims.UserID != resp.User.ID {
		t.Errorf("token UserID = %d, expected %d", claims.UserID, resp.User.ID)
	}
	if claims.Role != models.RoleClient {
		t.Errorf("token Role = %q, expected %q", claims.Role, models.RoleClient)
	}
}

func TestLogin_Failures(t *testing.T) {
	utils.SetJWTSecret("test-secret")

	db := newTestDB(t)
	svc := NewAuthService(db, &config.JWTConfig{Secret: "test-secret", ExpireHour: 1}, nil)

	if _, err := svc.Register(&RegisterRequest{
		Email:    "user@test.local",
		Phone:    "+2348000000006",
		Password: "password123",
		FullName: "User",
		Role:     models.RoleClient,
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	_, err := svc.Login(&LoginRequest{Email: "user@test.local", Password: "wrong"})
	assertAppError(t, err, http.StatusUnauthorized)

	_, err = svc.Login(&LoginRequest{Email: "nobody@test.local", Password: "password123"})
	assertAppError(t, err, http.StatusUnauthorized)

	db.Model(&models.User{}).Where("email = ?", "user@test.local").Update("is_active", false)
	_, err = svc.Login(&LoginRequest{Email: "user@test.local", Password: "password123"})
	assertAppError(t, err, http.StatusForbidden)
}

func TestChangePassword(t *testing.T) {
	utils.SetJWTSecret("test-secret")

	db := newTestDB(t)
	svc := NewAuthService(db, &config.JWTConfig{Secret: "test-secret", ExpireHour: 1}, nil)

	user, err := svc.Register(&RegisterRequest{
		Email:    "user@test.local",
		Phone:    "+2348000000007",
		Password: "oldpassword",
		FullName: "User",
		Role:     models.RoleClient,
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	err = svc.ChangePassword(user.ID, &ChangePasswordRequest{OldPassword: "nope", NewPassword: "newpassword"})
	assertAppError(t, err, http.StatusUnauthorized)

	if err := svc.ChangePassword(user.ID, &ChangePasswordRequest{OldPassword: "oldpassword", NewPassword: "newpassword"}); err != nil {
		t.Fatalf("ChangePassword failed: %v", err)
	}

	if _, err := svc.Login(&LoginRequest{Email: "user@test.local", Password: "newpassword"}); err != nil {
		t.Errorf("login with the new password should work: %v", err)
	}
}

func TestDeleteAccount_CascadesProfile(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, &config.JWTConfig{Secret: "test", ExpireHour: 1}, nil)

	user, err := svc.Register(&RegisterRequest{
		Email:    "band@test.local",
		Phone:    "+2348000000008",
		Password: "password123",
		FullName: "Band",
		Role:     models.RoleMusician,
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if err := svc.DeleteAccount(user.ID); err != nil {
		t.Fatalf("DeleteAccount failed: %v", err)
	}

	var users, profiles int64
	db.Model(&models.User{}).Where("id = ?", user.ID).Count(&users)
	db.Model(&models.MusicianProfile{}).Where("user_id = ?", user.ID).Count(&profiles)
	if users != 0 {
		t.Error("user row should be gone")
	}
	if profiles != 0 {
		t.Error("profile row should be gone")
	}
}

func TestCreateAdminIfNotExists(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, &config.JWTConfig{Secret: "test", ExpireHour: 1}, nil)

	if err := svc.CreateAdminIfNotExists(); err != nil {
		t.Fatalf("CreateAdminIfNotExists failed: %v", err)
	}
	if err := svc.CreateAdminIfNotExists(); err != nil {
		t.Fatalf("second CreateAdminIfNotExists failed: %v", err)
	}

	var count int64
	db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count)
	if count != 1 {
		t.Errorf("admin accounts = %d, expected 1", count)
	}
}

func TestUpdateContact(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, &config.JWTConfig{Secret: "test", ExpireHour: 1}, nil)
	user := createClient(t, db, "contact@client.test")

	name := "New Name"
	phone := "0811111111"
	updated, err := svc.UpdateContact(user.ID, &UpdateContactRequest{FullName: &name, Phone: &phone})
	if err != nil {
		t.Fatalf("UpdateContact failed: %v", err)
	}
	if updated.FullName != "New Name" {
		t.Errorf("FullName = %q, expected %q", updated.FullName, "New Name")
	}
	if updated.Phone != "0811111111" {
		t.Errorf("Phone = %q, expected %q", updated.Phone, "0811111111")
	}

	// Partial update leaves the other field alone.
	other := "Other Name"
	updated, err = svc.UpdateContact(user.ID, &UpdateContactRequest{FullName: &other})
	if err != nil {
		t.Fatalf("UpdateContact failed: %v", err)
	}
	if updated.Phone != "0811111111" {
		t.Errorf("Phone = %q, expected it unchanged", updated.Phone)
	}
}

func TestUpdateContact_PhoneConflict(t *testing.T) {
	db := newTestDB(t)
	svc := NewAuthService(db, &config.JWTConfig{Secret: "test", ExpireHour: 1}, nil)
	user := createClient(t, db, "owner@client.test")
	neighbor := createClient(t, db, "neighbor@client.test")

	taken := neighbor.Phone
	_, err := svc.UpdateContact(user.ID, &UpdateContactRequest{Phone: &taken})
	assertAppError(t, err, http.StatusConflict)

	// Re-submitting your own number is not a conflict.
	own := user.Phone
	if _, err := svc.UpdateContact(user.ID, &UpdateContactRequest{Phone: &own}); err != nil {
		t.Errorf("UpdateContact with own phone failed: %v", err)
	}
}
