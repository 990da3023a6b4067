package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	sageauth "github.com/sageflow/sageauth"
)

// both interfaces live on every backend
var (
	_ sageauth.TokenStore = (*Memory)(nil)
	_ sageauth.UserStore  = (*Memory)(nil)
	_ sageauth.TokenStore = (*File)(nil)
	_ sageauth.UserStore  = (*File)(nil)
	_ sageauth.TokenStore = (*Redis)(nil)
	_ sageauth.UserStore  = (*Redis)(nil)
)

type backend interface {
	sageauth.TokenStore
	sageauth.UserStore
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, redis.UniversalClient) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return mr, rdb
}

func backends(t *testing.T) map[string]backend {
	t.Helper()

	fileStore, err := NewFile(filepath.Join(t.TempDir(), "state"))
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}

	_, rdb := newTestRedis(t)

	return map[string]backend{
		"memory": NewMemory(),
		"file":   fileStore,
		"redis":  NewRedis(rdb, "sf", "dev-1"),
	}
}

func TestTokenRoundTrip(t *testing.T) {
	ctx := context.Background()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if tok, err := s.Token(ctx); err != nil || tok != "" {
				t.Fatalf("expected absent token as empty, got (%q, %v)", tok, err)
			}

			if err := s.SetToken(ctx, "abc.def.ghi"); err != nil {
				t.Fatalf("SetToken: %v", err)
			}
			tok, err := s.Token(ctx)
			if err != nil || tok != "abc.def.ghi" {
				t.Fatalf("expected stored token back, got (%q, %v)", tok, err)
			}

			if err := s.ClearToken(ctx); err != nil {
				t.Fatalf("ClearToken: %v", err)
			}
			if tok, err := s.Token(ctx); err != nil || tok != "" {
				t.Fatalf("expected cleared token as empty, got (%q, %v)", tok, err)
			}

			// Clearing an already-empty store is not an error.
			if err := s.ClearToken(ctx); err != nil {
				t.Fatalf("double ClearToken: %v", err)
			}
		})
	}
}

func TestUserRoundTrip(t *testing.T) {
	ctx := context.Background()
	completed := true
	user := sageauth.User{
		ID:                       101,
		Username:                 "maya",
		Role:                     sageauth.RoleStudent,
		HolisticProfileCompleted: &completed,
	}

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if u, err := s.Load(ctx); err != nil || u != nil {
				t.Fatalf("expected absent user as nil, got (%+v, %v)", u, err)
			}

			if err := s.Save(ctx, user); err != nil {
				t.Fatalf("Save: %v", err)
			}
			loaded, err := s.Load(ctx)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if loaded == nil || loaded.ID != 101 || loaded.Username != "maya" || loaded.Role != sageauth.RoleStudent {
				t.Fatalf("unexpected loaded user %+v", loaded)
			}
			if loaded.HolisticProfileCompleted == nil || !*loaded.HolisticProfileCompleted {
				t.Fatalf("expected holistic flag preserved, got %+v", loaded)
			}

			if err := s.Clear(ctx); err != nil {
				t.Fatalf("Clear: %v", err)
			}
			if u, err := s.Load(ctx); err != nil || u != nil {
				t.Fatalf("expected cleared user as nil, got (%+v, %v)", u, err)
			}
		})
	}
}

func TestMemoryLoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	if err := s.Save(ctx, sageauth.User{ID: 1, Username: "maya"}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	first, _ := s.Load(ctx)
	first.Username = "tampered"

	second, _ := s.Load(ctx)
	if second.Username != "maya" {
		t.Fatalf("expected stored record isolated from callers, got %q", second.Username)
	}
}

func TestFileSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "state")

	first, err := NewFile(dir)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	if err := first.SetToken(ctx, "tok"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	if err := first.Save(ctx, sageauth.User{ID: 7, Username: "jordan", Role: sageauth.RoleParent}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	second, err := NewFile(dir)
	if err != nil {
		t.Fatalf("NewFile reopen: %v", err)
	}
	if tok, _ := second.Token(ctx); tok != "tok" {
		t.Fatalf("expected token to survive reopen, got %q", tok)
	}
	user, _ := second.Load(ctx)
	if user == nil || user.ID != 7 {
		t.Fatalf("expected user to survive reopen, got %+v", user)
	}
}

func TestFileCorruptUserRecordReadsAsAbsent(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "state")

	s, err := NewFile(dir)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "user.json"), []byte("{truncated"), 0o600); err != nil {
		t.Fatalf("write corrupt record: %v", err)
	}

	user, err := s.Load(ctx)
	if err != nil || user != nil {
		t.Fatalf("expected corrupt record read as absent, got (%+v, %v)", user, err)
	}
}

func TestFileRejectsEmptyDir(t *testing.T) {
	if _, err := NewFile("  "); err == nil {
		t.Fatal("expected error for empty state directory")
	}
}

func TestRedisKeysAreNamespacedPerDevice(t *testing.T) {
	ctx := context.Background()
	_, rdb := newTestRedis(t)

	a := NewRedis(rdb, "sf", "device-a")
	b := NewRedis(rdb, "sf", "device-b")

	if err := a.SetToken(ctx, "token-a"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	if tok, _ := b.Token(ctx); tok != "" {
		t.Fatalf("expected device isolation, device-b saw %q", tok)
	}
	if tok, _ := a.Token(ctx); tok != "token-a" {
		t.Fatalf("expected device-a token back, got %q", tok)
	}
}

func TestRedisGeneratesDeviceID(t *testing.T) {
	_, rdb := newTestRedis(t)

	s := NewRedis(rdb, "", "")
	if s.DeviceID() == "" {
		t.Fatal("expected generated device id")
	}
}

func TestRedisUnavailableBackendReturnsErrUnavailable(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestRedis(t)
	s := NewRedis(rdb, "sf", "dev-1")

	mr.Close()

	if _, err := s.Token(ctx); err == nil {
		t.Fatal("expected error from closed backend")
	} else if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable in chain, got %v", err)
	}
}
