package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const secretFile = ".secret"

var unsafeTabChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// DefaultTabID scopes the session to the invoking shell, so a new terminal
// starts logged out while repeated commands in one terminal share a login.
func DefaultTabID() string {
	return fmt.Sprintf("ppid-%d", os.Getppid())
}

// FileBackend stores one sealed file per tab under dir.
type FileBackend struct {
	dir    string
	tab    string
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewFileBackend(dir, tab string, secret []byte, ttl time.Duration) (*FileBackend, error) {
	if tab == "" {
		return nil, errors.New("session: tab id required")
	}
	if len(secret) == 0 {
		return nil, errors.New("session: secret required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("session dir: %w", err)
	}
	return &FileBackend{dir: dir, tab: tab, secret: secret, ttl: ttl, now: time.Now}, nil
}

func (b *FileBackend) path() string {
	return filepath.Join(b.dir, "tab-"+unsafeTabChars.ReplaceAllString(b.tab, "_")+".jwt")
}

func (b *FileBackend) Load(context.Context) (map[string]string, error) {
	raw, err := os.ReadFile(b.path())
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return open(strings.TrimSpace(string(raw)), b.tab, b.secret, b.now)
}

func (b *FileBackend) Save(_ context.Context, values map[string]string) error {
	tok, err := seal(values, b.tab, b.secret, b.ttl, b.now())
	if err != nil {
		return err
	}
	// write-then-rename so a reader never sees half a token
	tmp, err := os.CreateTemp(b.dir, ".tab-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(tok); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), b.path())
}

func (b *FileBackend) Remove(context.Context) error {
	err := os.Remove(b.path())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// LoadOrCreateSecret returns the installation's signing secret, creating it
// on first use.
func LoadOrCreateSecret(dir string) ([]byte, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	p := filepath.Join(dir, secretFile)
	if raw, err := os.ReadFile(p); err == nil {
		b, err := hex.DecodeString(strings.TrimSpace(string(raw)))
		if err == nil && len(b) >= 32 {
			return b, nil
		}
	}
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	if err := os.WriteFile(p, []byte(hex.EncodeToString(b)), 0o600); err != nil {
		return nil, err
	}
	return b, nil
}
