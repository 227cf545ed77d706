package admins

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	// ErrInvalidCredentials is returned on any authentication failure; the
	// caller cannot distinguish unknown email from wrong password.
	ErrInvalidCredentials = errors.New("admins: invalid credentials")
)

// IDProvider issues unique identifiers for admin accounts.
type IDProvider interface {
	NewID() (string, error)
}

// ServiceConfig describes the dependencies for admin account management.
type ServiceConfig struct {
	Database   *gorm.DB
	Clock      func() time.Time
	IDProvider IDProvider
}

// Service manages admin accounts and credential verification.
type Service struct {
	db         *gorm.DB
	now        func() time.Time
	idProvider IDProvider
}

// NewService constructs the admin account service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("admins: database connection required")
	}
	if cfg.IDProvider == nil {
		return nil, fmt.Errorf("admins: id provider required")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Service{db: cfg.Database, now: clock, idProvider: cfg.IDProvider}, nil
}

// EnsureBootstrapAdmin creates the configured admin account when it does not
// exist yet. Both arguments empty is a no-op so deployments without a
// bootstrap account stay valid.
func (s *Service) EnsureBootstrapAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}

	var existing Admin
	err := s.db.WithContext(ctx).Where("email = ?", email).Take(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("admins: bootstrap lookup failed: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("admins: password hash failed: %w", err)
	}
	adminID, err := s.idProvider.NewID()
	if err != nil {
		return fmt.Errorf("admins: id generation failed: %w", err)
	}

	account := Admin{
		AdminID:          adminID,
		Email:            email,
		DisplayName:      "Administrator",
		PasswordHash:     string(hash),
		Role:             "admin",
		CreatedAtSeconds: s.now().UTC().Unix(),
	}
	if err := s.db.WithContext(ctx).Create(&account).Error; err != nil {
		return fmt.Errorf("admins: bootstrap create failed: %w", err)
	}
	return nil
}

// Authenticate verifies the credential pair and returns the account on
// success, recording the login time.
func (s *Service) Authenticate(ctx context.Context, email, password string) (Admin, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return Admin{}, ErrInvalidCredentials
	}

	var account Admin
	err := s.db.WithContext(ctx).Where("email = ?", email).Take(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Admin{}, ErrInvalidCredentials
	}
	if err != nil {
		return Admin{}, fmt.Errorf("admins: lookup failed: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return Admin{}, ErrInvalidCredentials
	}

	loginAt := s.now().UTC().Unix()
	_ = s.db.WithContext(ctx).Model(&Admin{}).
		Where("admin_id = ?", account.AdminID).
		Update("last_login_at_s", loginAt).Error
	account.LastLoginAtSecond = loginAt

	return account, nil
}
