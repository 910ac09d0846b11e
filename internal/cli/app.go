// Package cli is the hospital command: each subcommand is one portal view,
// entered through the route guard against the tab's session.
package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"hospital-portal/internal/api"
	"hospital-portal/internal/appointments"
	"hospital-portal/internal/auth"
	"hospital-portal/internal/booking"
	"hospital-portal/internal/config"
	"hospital-portal/internal/guard"
	"hospital-portal/internal/middleware"
	"hospital-portal/internal/profile"
	"hospital-portal/internal/session"
	"hospital-portal/internal/transport"
)

type App struct {
	cfg *config.Config
	log *zap.Logger
	out io.Writer
	now func() time.Time

	store    *session.Store
	client   *api.Client
	auth     *auth.Authenticator
	guard    *guard.Guard
	profiles *profile.Service
	normal   *appointments.Normalizer
	booking  *booking.Workflow
	notes    *booking.NoteWorkflow

	closers []func() error
}

// noticeNavigator stands in for a browser redirect.
type noticeNavigator struct{ out io.Writer }

func (n noticeNavigator) Redirect(path string) {
	fmt.Fprintf(n.out, "Please log in to continue (redirected to %s). Run: hospital login --role <doctor|patient|admin>\n", path)
}

func New(cfg *config.Config, log *zap.Logger, out io.Writer) (*App, error) {
	backend, closeBackend, err := sessionBackend(cfg)
	if err != nil {
		return nil, err
	}

	rl := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	hc := &http.Client{
		Timeout: cfg.HTTPTimeout,
		Transport: middleware.Chain(http.DefaultTransport,
			middleware.RequestID(),
			middleware.RateLimit(rl),
			middleware.Logging(log),
		),
	}

	a := &App{cfg: cfg, log: log, out: out, now: time.Now}
	a.closers = append(a.closers, func() error { rl.Close(); return nil })
	if closeBackend != nil {
		a.closers = append(a.closers, closeBackend)
	}

	a.store = session.New(backend, log)
	a.client = api.New(transport.New(cfg.APIBaseURL, hc, log))
	a.auth = auth.New(a.client.Transport(), a.store, log)
	a.guard = guard.New(a.store, noticeNavigator{out: out}, log)
	a.profiles = profile.New(a.client, a.store, log)
	a.normal = appointments.NewNormalizer(a.client, log)
	a.booking = booking.NewWorkflow(a.store, a.client, log)
	a.notes = booking.NewNoteWorkflow(a.store, a.client, log)
	return a, nil
}

func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func sessionBackend(cfg *config.Config) (session.Backend, func() error, error) {
	tab := cfg.TabID
	if tab == "" {
		tab = session.DefaultTabID()
	}
	switch cfg.SessionBackend {
	case config.BackendMemory:
		return session.NewMemoryBackend(), nil, nil
	case config.BackendRedis:
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("redis url: %w", err)
		}
		rc := redis.NewClient(opts)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rc.Ping(ctx).Err(); err != nil {
			rc.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		return session.NewRedisBackend(rc, tab, cfg.SessionTTL), rc.Close, nil
	default:
		secret := []byte(cfg.SessionSecret)
		if len(secret) == 0 {
			s, err := session.LoadOrCreateSecret(cfg.SessionDir)
			if err != nil {
				return nil, nil, fmt.Errorf("session secret: %w", err)
			}
			secret = s
		}
		fb, err := session.NewFileBackend(cfg.SessionDir, tab, secret, cfg.SessionTTL)
		if err != nil {
			return nil, nil, err
		}
		return fb, nil, nil
	}
}
