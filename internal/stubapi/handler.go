// Package stubapi is an in-memory stand-in for the hospital backend, used by
// tests and by cmd/stubserver for local runs. It reproduces the backend's
// observed quirks, such as list responses whose shape varies.
package stubapi

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type ListShape string

const (
	ShapeList     ListShape = "list"
	ShapeEnvelope ListShape = "envelope"
	ShapeEmpty    ListShape = "empty"
	ShapeUnknown  ListShape = "unknown"
)

type Options struct {
	// auth requests allowed per IP per minute
	AuthRequestLimit int
	ListShape        ListShape
}

// Call is one request as the stub received it.
type Call struct {
	Method string
	Path   string
	Query  string
	Body   []byte
}

type Handler struct {
	store *Store
	log   *zap.Logger
	opts  Options

	mu    sync.Mutex
	shape ListShape
	calls []Call
}

func New(st *Store, log *zap.Logger, opts Options) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.AuthRequestLimit <= 0 {
		opts.AuthRequestLimit = 60
	}
	if opts.ListShape == "" {
		opts.ListShape = ShapeList
	}
	return &Handler{store: st, log: log, opts: opts, shape: opts.ListShape}
}

func (h *Handler) SetListShape(s ListShape) {
	h.mu.Lock()
	h.shape = s
	h.mu.Unlock()
}

func (h *Handler) listShape() ListShape {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.shape
}

// Calls returns every request received so far, oldest first.
func (h *Handler) Calls() []Call {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Call(nil), h.calls...)
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(h.record)

	// only the login endpoints are rate limited
	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(h.opts.AuthRequestLimit, time.Minute))
		r.Post("/api/doctor/authenticate", h.doctorAuth)
		r.Post("/api/patient/auth", h.patientAuth)
		r.Post("/api/authenticateAdmin/login", h.adminAuth)
	})

	r.Get("/api/doctor", h.listDoctors)
	r.Get("/api/doctor/{id}", h.getDoctor)
	r.Put("/api/doctor/{id}", h.updateDoctor)
	r.Get("/api/patient/{id}", h.getPatient)
	r.Get("/api/appointment/doctorId/{id}", h.doctorAppointments)
	r.Get("/api/appointment/patientId/{id}", h.patientAppointments)
	r.Post("/api/appointment", h.createAppointment)
	r.Post("/api/doctor-notes", h.createNote)
	return r
}

func (h *Handler) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
		}
		h.mu.Lock()
		h.calls = append(h.calls, Call{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: body})
		h.mu.Unlock()
		h.log.Debug("stub request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", r.Header.Get("X-Request-ID")),
		)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func pathID(r *http.Request) (int64, bool) {
	n, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return n, err == nil && n > 0
}
