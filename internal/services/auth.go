package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/giglink/backend/internal/config"
	"github.com/giglink/backend/internal/models"
	"github.com/giglink/backend/internal/utils"
	"github.com/giglink/backend/pkg/logger"
	"github.com/giglink/backend/pkg/response"
)

type AuthService struct {
	db        *gorm.DB
	jwtConfig *config.JWTConfig
	email     *EmailService
}

func NewAuthService(db *gorm.DB, jwtCfg *config.JWTConfig, email *EmailService) *AuthService {
	return &AuthService{db: db, jwtConfig: jwtCfg, email: email}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=CLIENT MUSICIAN"`
}

// Register creates an account. A MUSICIAN registration also creates the
// one-to-one profile shell so the user can be discovered once they fill
// it in.
func (s *AuthService) Register(req *RegisterRequest) (*models.User, error) {
	var count int64
	s.db.Model(&models.User{}).Where("email = ?", req.Email).Count(&count)
	if count > 0 {
		return nil, response.NewConflict("email already registered")
	}
	s.db.Model(&models.User{}).Where("phone = ?", req.Phone).Count(&count)
	if count > 0 {
		return nil, response.NewConflict("phone number already registered")
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:    req.Email,
		Phone:    req.Phone,
		Password: hash,
		FullName: req.FullName,
		Role:     req.Role,
	}
	if req.Role == models.RoleMusician {
		user.Profile = &models.MusicianProfile{}
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}

	if s.email != nil {
		if err := s.email.SendWelcome(user); err != nil {
			logger.Warn().Err(err).Str("email", user.Email).Msg("welcome email not sent")
		}
	}

	return user, nil
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token    string       `json:"token"`
	User     *models.User `json:"user"`
	ExpireAt time.Time    `json:"expire_at"`
}

// Login authenticates a user and returns a JWT token.
func (s *AuthService) Login(req *LoginRequest) (*LoginResponse, error) {
	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return nil, response.NewUnauthorized("invalid email or password")
	}

	if !utils.CheckPassword(req.Password, user.Password) {
		return nil, response.NewUnauthorized("invalid email or password")
	}

	if !user.IsActive {
		return nil, response.NewForbidden("account is disabled")
	}

	token, err := utils.GenerateToken(user.ID, user.Email, user.Role, s.jwtConfig.ExpireHour)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user.LastLogin = &now
	s.db.Save(&user)

	return &LoginResponse{
		Token:    token,
		User:     &user,
		ExpireAt: now.Add(time.Duration(s.jwtConfig.ExpireHour) * time.Hour),
	}, nil
}

// GetUserByID returns a user by ID.
func (s *AuthService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := s.db.Preload("Profile").First(&user, id).Error; err != nil {
		return nil, response.NewNotFound("user not found")
	}
	return &user, nil
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

// ChangePassword verifies the old password and stores a new hash.
func (s *AuthService) ChangePassword(userID uint, req *ChangePasswordRequest) error {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return response.NewNotFound("user not found")
	}

	if !utils.CheckPassword(req.OldPassword, user.Password) {
		return response.NewUnauthorized("old password is incorrect")
	}

	hash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	return s.db.Model(&user).Update("password", hash).Error
}

type UpdateContactRequest struct {
	FullName *string `json:"full_name"`
	Phone    *string `json:"phone"`
}

// UpdateContact changes the caller's contact fields. A new phone number
// must not collide with another account.
func (s *AuthService) UpdateContact(userID uint, req *UpdateContactRequest) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, response.NewNotFound("user not found")
	}

	updates := map[string]interface{}{}
	if req.FullName != nil {
		updates["full_name"] = *req.FullName
	}
	if req.Phone != nil && *req.Phone != user.Phone {
		var count int64
		s.db.Model(&models.User{}).Where("phone = ? AND id <> ?", *req.Phone, userID).Count(&count)
		if count > 0 {
			return nil, response.NewConflict("phone number already registered")
		}
		updates["phone"] = *req.Phone
	}
	if len(updates) == 0 {
		return &user, nil
	}

	if err := s.db.Model(&user).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteAccount hard-deletes the user and cascades the musician profile
// (with its subscription and portfolio).
func (s *AuthService) DeleteAccount(userID uint) error {
	var user models.User
	if err := s.db.Preload("Profile").First(&user, userID).Error; err != nil {
		return response.NewNotFound("user not found")
	}

	if user.Profile != nil {
		s.db.Where("profile_id = ?", user.Profile.ID).Delete(&models.Subscription{})
		s.db.Where("profile_id = ?", user.Profile.ID).Delete(&models.PortfolioItem{})
		s.db.Delete(user.Profile)
	}

	return s.db.Delete(&user).Error
}

// CreateAdminIfNotExists seeds the default admin account.
func (s *AuthService) CreateAdminIfNotExists() error {
	var count int64
	s.db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count)
	if count > 0 {
		return nil
	}

	hash, err := utils.HashPassword("admin123")
	if err != nil {
		return err
	}

	admin := &models.User{
		Email:      "admin@giglink.local",
		Phone:      "+0000000000",
		Password:   hash,
		FullName:   "Administrator",
		Role:       models.RoleAdmin,
		IsActive:   true,
		IsVerified: true,
	}
	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	logger.Infof("[Auth] Default admin created: admin@giglink.local / admin123 (change this immediately)")
	return nil
}
