package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/chatly/chatweb/internal/session"
	"github.com/redis/go-redis/v9"
)

func newTestRedisRepository(t *testing.T) (*RedisSessionRepository, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisSessionRepository(client), mr
}

func TestRedisSessionRepositorySaveLoad(t *testing.T) {
	repo, mr := newTestRedisRepository(t)
	ctx := context.Background()

	if err := repo.Save(ctx, "key-1", "abc", time.Hour); err != nil {
		t.Fatalf("Save() unexpected error: %v", err)
	}
	if !mr.Exists("userToken:key-1") {
		t.Fatal("expected key under the userToken prefix")
	}

	token, err := repo.Load(ctx, "key-1")
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if token != "abc" {
		t.Errorf("Load() = %q, want %q", token, "abc")
	}
}

func TestRedisSessionRepositoryExpires(t *testing.T) {
	repo, mr := newTestRedisRepository(t)
	ctx := context.Background()

	if err := repo.Save(ctx, "key-1", "abc", time.Minute); err != nil {
		t.Fatalf("Save() unexpected error: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	if _, err := repo.Load(ctx, "key-1"); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("Load() error = %v, want session.ErrNotFound", err)
	}
}

func TestRedisSessionRepositoryDelete(t *testing.T) {
	repo, _ := newTestRedisRepository(t)
	ctx := context.Background()

	if err := repo.Save(ctx, "key-1", "abc", time.Hour); err != nil {
		t.Fatalf("Save() unexpected error: %v", err)
	}
	if err := repo.Delete(ctx, "key-1"); err != nil {
		t.Fatalf("Delete() unexpected error: %v", err)
	}
	if _, err := repo.Load(ctx, "key-1"); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("Load() error = %v, want session.ErrNotFound", err)
	}
}

func TestNewRedisClientUnreachable(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	addr := mr.Addr()
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, err := NewRedisClient(ctx, addr, ""); err == nil {
		t.Error("NewRedisClient() expected error for closed server")
	}
}
