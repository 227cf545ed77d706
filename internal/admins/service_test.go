package admins

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type staticIDGenerator struct {
	next int
}

func (g *staticIDGenerator) NewID() (string, error) {
	g.next++
	return fmt.Sprintf("admin-%d", g.next), nil
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:admins_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	if err := db.AutoMigrate(&Admin{}); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}
	service, err := NewService(ServiceConfig{
		Database:   db,
		IDProvider: &staticIDGenerator{},
	})
	if err != nil {
		t.Fatalf("failed to construct service: %v", err)
	}
	return service
}

func TestBootstrapAndAuthenticate(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()

	if err := service.EnsureBootstrapAdmin(ctx, "Admin@VisionMakers.io", "hunter2hunter2"); err != nil {
		t.Fatalf("unexpected bootstrap error: %v", err)
	}
	// A second bootstrap with the same email must not duplicate the account.
	if err := service.EnsureBootstrapAdmin(ctx, "admin@visionmakers.io", "different"); err != nil {
		t.Fatalf("unexpected repeat bootstrap error: %v", err)
	}

	account, err := service.Authenticate(ctx, "admin@visionmakers.io", "hunter2hunter2")
	if err != nil {
		t.Fatalf("expected successful authentication: %v", err)
	}
	if account.Email != "admin@visionmakers.io" {
		t.Fatalf("unexpected email: %s", account.Email)
	}
	if account.LastLoginAtSecond == 0 {
		t.Fatalf("login time must be recorded")
	}
}

func TestAuthenticateRejectsWrongPassword(t *testing.T) {
	service := newTestService(t)
	ctx := context.Background()
	if err := service.EnsureBootstrapAdmin(ctx, "admin@visionmakers.io", "correct-horse"); err != nil {
		t.Fatalf("unexpected bootstrap error: %v", err)
	}

	_, err := service.Authenticate(ctx, "admin@visionmakers.io", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticateRejectsUnknownEmail(t *testing.T) {
	service := newTestService(t)

	_, err := service.Authenticate(context.Background(), "nobody@visionmakers.io", "whatever")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestBootstrapWithoutCredentialsIsNoOp(t *testing.T) {
	service := newTestService(t)

	if err := service.EnsureBootstrapAdmin(context.Background(), "", ""); err != nil {
		t.Fatalf("empty bootstrap must be a no-op, got %v", err)
	}
}
