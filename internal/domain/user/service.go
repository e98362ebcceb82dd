// internal/domain/user/service.go
package user

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/clinic-store-backend/internal/pkg/apperror"
	"github.com/your-org/clinic-store-backend/internal/pkg/auth"
	"gorm.io/gorm"
)

// Service handles account registration and authentication
type Service struct {
	db        *gorm.DB
	jwt       *auth.JWTManager
	passwords *auth.PasswordManager
	logger    *logrus.Logger
}

// NewService creates a new user service
func NewService(db *gorm.DB, jwt *auth.JWTManager, passwords *auth.PasswordManager, logger *logrus.Logger) *Service {
	return &Service{db: db, jwt: jwt, passwords: passwords, logger: logger}
}

// RegisterRequest represents account creation data
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse carries the authenticated user and their tokens
type AuthResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Register creates a new account and returns tokens for it
func (s *Service) Register(req *RegisterRequest) (*AuthResponse, error) {
	if err := s.passwords.ValidatePassword(req.Password); err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, "invalid password", err)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var count int64
	if err := s.db.Model(&User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}
	if count > 0 {
		return nil, apperror.New(apperror.KindValidation, "an account with this email already exists")
	}

	hash, err := s.passwords.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		IsActive:     true,
	}
	if err := s.db.Create(&account).Error; err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.logger.WithField("user_id", account.ID).Info("account registered")
	return s.issueTokens(&account)
}

// Login authenticates credentials and returns fresh tokens
func (s *Service) Login(req *LoginRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var account User
	if err := s.db.Where("email = ?", email).First(&account).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.New(apperror.KindValidation, "invalid email or password")
		}
		return nil, fmt.Errorf("failed to retrieve account: %w", err)
	}
	if !account.IsActive {
		return nil, apperror.New(apperror.KindPermission, "account is disabled")
	}

	if err := s.passwords.VerifyPassword(req.Password, account.PasswordHash); err != nil {
		return nil, apperror.New(apperror.KindValidation, "invalid email or password")
	}

	now := time.Now().UTC()
	if err := s.db.Model(&account).Update("last_login_at", now).Error; err != nil {
		s.logger.WithError(err).Warn("failed to record login time")
	}

	return s.issueTokens(&account)
}

// Get retrieves an account by ID
func (s *Service) Get(userID uint) (*User, error) {
	var account User
	if err := s.db.First(&account, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperror.Newf(apperror.KindNotFound, "user %d not found", userID)
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return &account, nil
}

func (s *Service) issueTokens(account *User) (*AuthResponse, error) {
	access, err := s.jwt.GenerateAccessToken(account.ID, account.Email, account.IsStaff)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.jwt.GenerateRefreshToken(account.ID, account.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	return &AuthResponse{User: account, AccessToken: access, RefreshToken: refresh}, nil
}
