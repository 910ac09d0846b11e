// Package auth logs an actor in against the role's verification endpoint
// and, on success, commits the identity to the session store.
package auth

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"hospital-portal/internal/api"
	"hospital-portal/internal/apperr"
	"hospital-portal/internal/model"
	"hospital-portal/internal/transport"
)

const (
	MsgRejected    = "Invalid credentials. Please try again."
	MsgUnreachable = "Something went wrong. Please try again later."
)

type Credentials struct {
	ID       string
	Email    string
	Password string
}

type IdentityWriter interface {
	SetIdentity(ctx context.Context, id model.Identity) error
	Clear(ctx context.Context) error
}

// endpoint is one row of the login dispatch table
type endpoint struct {
	path     string
	keyParam string
	identity func(Credentials) (model.Identity, error)
}

var endpoints = map[model.Role]endpoint{
	model.RoleDoctor:  {path: api.PathDoctorAuth, keyParam: "doctorId", identity: byID(model.DoctorIdentity)},
	model.RolePatient: {path: api.PathPatientAuth, keyParam: "patientId", identity: byID(model.PatientIdentity)},
	model.RoleAdmin:   {path: api.PathAdminAuth, keyParam: "identifier", identity: byEmail},
}

func byID(mk func(int64) model.Identity) func(Credentials) (model.Identity, error) {
	return func(c Credentials) (model.Identity, error) {
		raw := strings.TrimSpace(c.ID)
		if raw == "" {
			return model.Identity{}, apperr.Validation("ID is required.")
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			return model.Identity{}, apperr.Validation("ID must be a positive number.")
		}
		return mk(n), nil
	}
}

func byEmail(c Credentials) (model.Identity, error) {
	email := strings.TrimSpace(c.Email)
	if email == "" {
		return model.Identity{}, apperr.Validation("Email is required.")
	}
	return model.AdminIdentity(email), nil
}

// key is the identifier exactly as it goes on the wire
func key(id model.Identity) string {
	if id.IsAdmin() {
		return id.Email
	}
	return strconv.FormatInt(id.ID, 10)
}

type Authenticator struct {
	t     *transport.Client
	store IdentityWriter
	log   *zap.Logger
}

func New(t *transport.Client, store IdentityWriter, log *zap.Logger) *Authenticator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Authenticator{t: t, store: store, log: log}
}

// Login verifies the credentials and commits the identity. Any failure
// leaves the session untouched. Nothing is retried.
func (a *Authenticator) Login(ctx context.Context, role model.Role, c Credentials) (model.Identity, error) {
	ep, ok := endpoints[role]
	if !ok {
		return model.Identity{}, apperr.Validation("Unknown role.")
	}
	id, err := ep.identity(c)
	if err != nil {
		return model.Identity{}, err
	}
	if c.Password == "" {
		return model.Identity{}, apperr.Validation("Password is required.")
	}

	// url.Values percent-encodes '@', '#', '&' and friends
	q := url.Values{ep.keyParam: {key(id)}, "password": {c.Password}}
	res := a.t.Do(ctx, transport.Request{Method: http.MethodPost, Path: ep.path, Query: q})

	switch {
	case res.Outcome == transport.RejectedByServer && res.Status < 500:
		a.log.Info("login rejected", zap.String("role", string(role)), zap.Int("status", res.Status))
		return model.Identity{}, apperr.Wrap(res.Error(), apperr.KindAuthenticationFailed, MsgRejected, "")
	case !res.OK():
		a.log.Error("login failed", zap.String("role", string(role)), zap.Stringer("outcome", res.Outcome), zap.Error(res.Err))
		return model.Identity{}, apperr.Wrap(res.Error(), apperr.KindAuthenticationFailed, MsgUnreachable, "")
	case !accepted(res.Payload):
		a.log.Info("login rejected", zap.String("role", string(role)))
		cause := apperr.New(apperr.KindRequestRejected, "credentials rejected")
		return model.Identity{}, apperr.Wrap(cause, apperr.KindAuthenticationFailed, MsgRejected, "")
	}

	if err := a.store.SetIdentity(ctx, id); err != nil {
		return model.Identity{}, apperr.Wrap(err, apperr.KindAuthenticationFailed, MsgUnreachable, "session write failed")
	}
	a.log.Info("login", zap.String("role", string(role)))
	return id, nil
}

func (a *Authenticator) Logout(ctx context.Context) error {
	return a.store.Clear(ctx)
}

// accepted reads a 2xx login payload: a literal true, an empty body, or an
// object that does not say otherwise. Falsy scalars such as false, 0, null
// and "false" are rejections.
func accepted(payload []byte) bool {
	raw := bytes.TrimSpace(payload)
	if len(raw) == 0 {
		return true
	}
	if raw[0] != '{' {
		return !falsy(raw)
	}
	var body struct {
		Success       *bool `json:"success"`
		Authenticated *bool `json:"authenticated"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return false
	}
	if body.Success != nil && !*body.Success {
		return false
	}
	if body.Authenticated != nil && !*body.Authenticated {
		return false
	}
	return true
}

func falsy(raw []byte) bool {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		// bare text is a status line, not a verdict
		return false
	}
	switch x := v.(type) {
	case nil:
		return true
	case bool:
		return !x
	case float64:
		return x == 0
	case string:
		s := strings.ToLower(strings.TrimSpace(x))
		return s == "" || s == "false" || s == "0"
	}
	return false
}
