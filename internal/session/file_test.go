package session

import (
	"context"
	"os"
	"testing"
	"time"

	"hospital-portal/internal/model"
)

func newFile(t *testing.T, dir, tab string, secret []byte) *FileBackend {
	t.Helper()
	b, err := NewFileBackend(dir, tab, secret, time.Hour)
	if err != nil {
		t.Fatalf("backend: %v", err)
	}
	return b
}

func TestFileSurvivesReload(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	secret := []byte("0123456789abcdef0123456789abcdef")

	first := New(newFile(t, dir, "tab-1", secret), nil)
	if err := first.SetIdentity(ctx, model.PatientIdentity(7)); err != nil {
		t.Fatalf("set: %v", err)
	}

	// a fresh process in the same tab sees the identity
	again := New(newFile(t, dir, "tab-1", secret), nil)
	got, ok := again.Identity(ctx)
	if !ok || got != model.PatientIdentity(7) {
		t.Fatalf("reload: got %+v %v", got, ok)
	}

	// another tab does not
	if _, ok := New(newFile(t, dir, "tab-2", secret), nil).Identity(ctx); ok {
		t.Fatal("session leaked across tabs")
	}
}

func TestFileRejectsTamperingAndExpiry(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	secret := []byte("0123456789abcdef0123456789abcdef")

	b := newFile(t, dir, "tab", secret)
	s := New(b, nil)
	if err := s.SetIdentity(ctx, model.DoctorIdentity(3)); err != nil {
		t.Fatal(err)
	}

	t.Run("wrong secret", func(t *testing.T) {
		other := newFile(t, dir, "tab", []byte("ffffffffffffffffffffffffffffffff"))
		if _, ok := New(other, nil).Identity(ctx); ok {
			t.Error("accepted token signed with another secret")
		}
	})

	t.Run("expired", func(t *testing.T) {
		late := newFile(t, dir, "tab", secret)
		late.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		if _, ok := New(late, nil).Identity(ctx); ok {
			t.Error("accepted expired token")
		}
	})

	t.Run("edited file", func(t *testing.T) {
		if err := os.WriteFile(b.path(), []byte("null"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, ok := s.Identity(ctx); ok {
			t.Error("accepted garbage file")
		}
	})
}

func TestFileRemoveIsIdempotent(t *testing.T) {
	b := newFile(t, t.TempDir(), "tab", []byte("0123456789abcdef0123456789abcdef"))
	if err := b.Remove(context.Background()); err != nil {
		t.Fatalf("remove missing: %v", err)
	}
}

func TestLoadOrCreateSecret(t *testing.T) {
	dir := t.TempDir()
	a, err := LoadOrCreateSecret(dir)
	if err != nil {
		t.Fatal(err)
	}
	b, err := LoadOrCreateSecret(dir)
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) || len(a) != 32 {
		t.Fatal("secret not stable across calls")
	}
}
