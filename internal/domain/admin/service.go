// internal/domain/admin/service.go
package admin

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
)

// ErrInvalidCredentials is returned for any failed login attempt.
// The cause (unknown username, wrong password, disabled account) is
// deliberately not distinguished.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service handles admin authentication
type Service struct {
	db              *gorm.DB
	config          *config.Config
	jwtManager      *auth.JWTManager
	passwordManager *auth.PasswordManager
}

// NewService creates a new admin service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:              db,
		config:          cfg,
		jwtManager:      auth.NewJWTManager(cfg),
		passwordManager: auth.NewPasswordManager(cfg),
	}
}

// LoginRequest represents admin login data
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents a successful admin login
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Admin     Admin     `json:"admin"`
}

// Login verifies admin credentials and issues a token
func (s *Service) Login(req *LoginRequest) (*LoginResponse, error) {
	var account Admin
	result := s.db.Where("username = ?", req.Username).First(&account)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to retrieve admin: %w", result.Error)
	}

	if !account.IsActive {
		return nil, ErrInvalidCredentials
	}

	if err := s.passwordManager.VerifyPassword(req.Password, account.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwtManager.GenerateToken(account.ID, account.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	now := time.Now().UTC()
	s.db.Model(&account).Updates(map[string]interface{}{
		"last_login_at": now,
		"updated_at":    now,
	})
	account.LastLoginAt = &now

	return &LoginResponse{
		Token:     token,
		ExpiresAt: now.Add(s.config.JWT.TokenExpiry),
		Admin:     account,
	}, nil
}

// ValidateToken parses and validates an admin token
func (s *Service) ValidateToken(token string) (*auth.Claims, error) {
	return s.jwtManager.ValidateToken(token)
}
