package booking_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"hospital-portal/internal/api"
	"hospital-portal/internal/apperr"
	"hospital-portal/internal/booking"
	"hospital-portal/internal/model"
	"hospital-portal/internal/session"
	"hospital-portal/internal/stubapi"
	"hospital-portal/internal/transport"
)

func loggedIn(t *testing.T, id model.Identity) *session.Store {
	t.Helper()
	store := session.New(session.NewMemoryBackend(), nil)
	if err := store.SetIdentity(context.Background(), id); err != nil {
		t.Fatal(err)
	}
	return store
}

func TestBookSendsExactPayload(t *testing.T) {
	srv, h, _ := stubapi.Start(stubapi.Options{})
	defer srv.Close()

	client := api.New(transport.New(srv.URL, nil, nil))
	w := booking.NewWorkflow(loggedIn(t, model.PatientIdentity(7)), client, nil)

	form := &booking.Form{Date: "2024-03-01", DoctorID: "3", Problem: "Fever"}
	apt, err := w.Book(context.Background(), form)
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if *form != (booking.Form{}) {
		t.Errorf("form not reset: %+v", form)
	}
	if apt == nil || apt.Status != model.StatusPending || apt.Date != "2024-03-01" {
		t.Errorf("created %+v", apt)
	}

	calls := h.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected one request, got %d", len(calls))
	}
	want := `{"appointmentDate":"2024-03-01","problem":"Fever","status":"Pending","doctor":{"doctorId":3},"patient":{"patientId":7}}`
	if got := string(calls[0].Body); got != want {
		t.Errorf("body\n got %s\nwant %s", got, want)
	}
	if calls[0].Method != http.MethodPost || calls[0].Path != api.PathAppointments {
		t.Errorf("sent %s %s", calls[0].Method, calls[0].Path)
	}
}

func TestBookFailuresKeepForm(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		kind    error
		message string
	}{
		{
			name: "server message",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"message":"slot taken"}`))
			},
			kind:    apperr.ErrRequestRejected,
			message: "slot taken",
		},
		{
			name: "bare text",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte("doctor unavailable"))
			},
			kind:    apperr.ErrRequestRejected,
			message: "doctor unavailable",
		},
		{
			name:    "no body",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) },
			kind:    apperr.ErrRequestRejected,
			message: "server error",
		},
		{
			name:    "accepted is not created",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusAccepted) },
			kind:    apperr.ErrRequestRejected,
			message: "server error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			w := booking.NewWorkflow(loggedIn(t, model.PatientIdentity(7)), api.New(transport.New(srv.URL, nil, nil)), nil)
			form := &booking.Form{Date: "2024-03-01", DoctorID: "3", Problem: "Fever"}
			before := *form

			_, err := w.Book(context.Background(), form)
			if !errors.Is(err, tt.kind) {
				t.Fatalf("got %v", err)
			}
			if apperr.Message(err) != tt.message {
				t.Errorf("message %q, want %q", apperr.Message(err), tt.message)
			}
			if *form != before {
				t.Errorf("form changed to %+v", form)
			}
		})
	}
}

func TestBookNoResponse(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	w := booking.NewWorkflow(loggedIn(t, model.PatientIdentity(7)), api.New(transport.New(addr, nil, nil)), nil)
	_, err := w.Book(context.Background(), &booking.Form{Date: "2024-03-01", DoctorID: "3"})
	if !errors.Is(err, apperr.ErrTransportFailure) || apperr.Message(err) != transport.MsgNotResponding {
		t.Fatalf("got %v", err)
	}
}

func TestBookSlotTakenOnStub(t *testing.T) {
	srv, _, _ := stubapi.Start(stubapi.Options{})
	defer srv.Close()

	w := booking.NewWorkflow(loggedIn(t, model.PatientIdentity(7)), api.New(transport.New(srv.URL, nil, nil)), nil)
	if _, err := w.Book(context.Background(), &booking.Form{Date: "2024-03-01", DoctorID: "3"}); err != nil {
		t.Fatal(err)
	}
	form := &booking.Form{Date: "2024-03-01", DoctorID: "3", Problem: "again"}
	_, err := w.Book(context.Background(), form)
	if apperr.Message(err) != "slot taken" || form.Problem != "again" {
		t.Fatalf("got %v, form %+v", err, form)
	}
}

func TestBookValidationSendsNothing(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()
	client := api.New(transport.New(srv.URL, nil, nil))

	tests := []struct {
		name     string
		identity *model.Identity
		form     booking.Form
		session  bool
	}{
		{"no session", nil, booking.Form{Date: "2024-03-01", DoctorID: "3"}, true},
		{"doctor session", ptr(model.DoctorIdentity(3)), booking.Form{Date: "2024-03-01", DoctorID: "3"}, true},
		{"no doctor", ptr(model.PatientIdentity(7)), booking.Form{Date: "2024-03-01"}, false},
		{"doctor not numeric", ptr(model.PatientIdentity(7)), booking.Form{Date: "2024-03-01", DoctorID: "x"}, false},
		{"no date", ptr(model.PatientIdentity(7)), booking.Form{DoctorID: "3"}, false},
		{"bad date", ptr(model.PatientIdentity(7)), booking.Form{Date: "03/01/2024", DoctorID: "3"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := session.New(session.NewMemoryBackend(), nil)
			if tt.identity != nil {
				store.SetIdentity(context.Background(), *tt.identity)
			}
			form := tt.form
			_, err := booking.NewWorkflow(store, client, nil).Book(context.Background(), &form)
			if !errors.Is(err, apperr.ErrValidationFailed) {
				t.Fatalf("expected ValidationFailed, got %v", err)
			}
			if errors.Is(err, apperr.ErrSessionAbsent) != tt.session {
				t.Errorf("session cause = %v", !tt.session)
			}
			if tt.session && apperr.Message(err) != "not logged in" {
				t.Errorf("message %q", apperr.Message(err))
			}
			if form != tt.form {
				t.Errorf("form changed")
			}
		})
	}
	if hits.Load() != 0 {
		t.Errorf("expected no requests, got %d", hits.Load())
	}
}

func TestBookRejectsConcurrentSubmit(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		close(entered)
		<-release
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	w := booking.NewWorkflow(loggedIn(t, model.PatientIdentity(7)), api.New(transport.New(srv.URL, nil, nil)), nil)
	done := make(chan error, 1)
	go func() {
		_, err := w.Book(context.Background(), &booking.Form{Date: "2024-03-01", DoctorID: "3"})
		done <- err
	}()

	<-entered
	if !w.Pending() {
		t.Error("expected pending")
	}
	if _, err := w.Book(context.Background(), &booking.Form{Date: "2024-03-02", DoctorID: "3"}); !errors.Is(err, booking.ErrSubmissionPending) {
		t.Errorf("second submit: %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if hits.Load() != 1 || w.Pending() {
		t.Errorf("hits %d, pending %v", hits.Load(), w.Pending())
	}
}

func ptr(id model.Identity) *model.Identity { return &id }
