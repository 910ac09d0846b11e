// Package guard decides whether a view may be entered with the current
// session, and sends the user to the login view when it may not.
package guard

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"hospital-portal/internal/apperr"
	"hospital-portal/internal/model"
)

const LoginPath = "/login"

type Kind int

const (
	KindUnknown Kind = iota
	KindHome
	KindLogin
	KindRegister
	KindDoctor
	KindPatient
	KindAdmin
	KindEditByAdmin
)

// View is a parsed route. TargetID is set for /editByAdmin/{id} only.
type View struct {
	Kind     Kind
	Path     string
	TargetID int64
}

func (v View) Protected() bool {
	switch v.Kind {
	case KindHome, KindLogin, KindRegister:
		return false
	}
	return true
}

var fixed = map[string]Kind{
	"/":         KindHome,
	"/login":    KindLogin,
	"/register": KindRegister,
	"/doctor":   KindDoctor,
	"/patient":  KindPatient,
	"/admin":    KindAdmin,
}

const editPrefix = "/editByAdmin/"

// ParseView maps a path onto a view. Unknown paths are protected and no
// identity satisfies them.
func ParseView(path string) View {
	p := path
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	if k, ok := fixed[p]; ok {
		return View{Kind: k, Path: p}
	}
	if rest, ok := strings.CutPrefix(p, editPrefix); ok {
		if id, err := strconv.ParseInt(rest, 10, 64); err == nil && id > 0 {
			return View{Kind: KindEditByAdmin, Path: p, TargetID: id}
		}
	}
	return View{Kind: KindUnknown, Path: path}
}

func EditByAdmin(id int64) View {
	return View{Kind: KindEditByAdmin, Path: editPrefix + strconv.FormatInt(id, 10), TargetID: id}
}

type State struct {
	identity model.Identity
	ok       bool
}

func Unauthenticated() State { return State{} }

func Authenticated(id model.Identity) State {
	return State{identity: id, ok: id.Validate() == nil}
}

func (s State) Identity() (model.Identity, bool) { return s.identity, s.ok }

// RequiresRedirect reports whether entering view with state must bounce to
// the login view. It has no side effects.
func RequiresRedirect(v View, s State) bool {
	if !v.Protected() {
		return false
	}
	id, ok := s.Identity()
	if !ok {
		return true
	}
	switch v.Kind {
	case KindDoctor:
		return !id.IsDoctor()
	case KindPatient:
		return !id.IsPatient()
	case KindAdmin:
		return !id.IsAdmin()
	case KindEditByAdmin:
		return !(id.IsAdmin() || (id.IsDoctor() && id.ID == v.TargetID))
	}
	return true
}

type Navigator interface {
	Redirect(path string)
}

type IdentityReader interface {
	Identity(ctx context.Context) (model.Identity, bool)
}

type Effects func(ctx context.Context, id model.Identity) error

type Guard struct {
	store IdentityReader
	nav   Navigator
	log   *zap.Logger
}

func New(store IdentityReader, nav Navigator, log *zap.Logger) *Guard {
	if log == nil {
		log = zap.NewNop()
	}
	return &Guard{store: store, nav: nav, log: log}
}

// Enter checks the session before running the view's effects. On a redirect
// the effects never run and SessionAbsent is returned.
func (g *Guard) Enter(ctx context.Context, v View, effects Effects) error {
	state := Unauthenticated()
	if id, ok := g.store.Identity(ctx); ok {
		state = Authenticated(id)
	}
	if RequiresRedirect(v, state) {
		g.log.Info("guard: redirecting to login", zap.String("view", v.Path))
		g.nav.Redirect(LoginPath)
		return apperr.New(apperr.KindSessionAbsent, "Please log in to continue.")
	}
	if effects == nil {
		return nil
	}
	id, _ := state.Identity()
	return effects(ctx, id)
}
