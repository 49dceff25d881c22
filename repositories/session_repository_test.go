package repositories

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSessionCreateResolveDelete(t *testing.T) {
	_, client := newTestRedis(t)
	repo := NewRedisSessionRepository(client)
	ctx := context.Background()

	if err := repo.Create(ctx, "secret-1", "acc-1", time.Hour); err != nil {
		t.Fatalf("create: %v", err)
	}

	accountID, err := repo.Resolve(ctx, "secret-1")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if accountID != "acc-1" {
		t.Fatalf("expected acc-1, got %s", accountID)
	}

	if err := repo.Delete(ctx, "secret-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = repo.Resolve(ctx, "secret-1")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after delete, got %v", err)
	}
}

func TestSessionExpires(t *testing.T) {
	mr, client := newTestRedis(t)
	repo := NewRedisSessionRepository(client)
	ctx := context.Background()

	if err := repo.Create(ctx, "secret-1", "acc-1", time.Hour); err != nil {
		t.Fatalf("create: %v", err)
	}
	mr.FastForward(2 * time.Hour)

	_, err := repo.Resolve(ctx, "secret-1")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after expiry, got %v", err)
	}
}
