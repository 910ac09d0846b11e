// Package booking submits appointment requests and doctor notes for the
// active identity, and loads the data the booking view shows.
package booking

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"hospital-portal/internal/api"
	"hospital-portal/internal/apperr"
	"hospital-portal/internal/model"
	"hospital-portal/internal/transport"
	"hospital-portal/internal/validate"
)

// ErrSubmissionPending is returned while an earlier submission from the same
// workflow has not finished. Nothing is sent.
var ErrSubmissionPending = errors.New("booking: submission already in flight")

type IdentityReader interface {
	Identity(ctx context.Context) (model.Identity, bool)
}

type AppointmentCreator interface {
	CreateAppointment(ctx context.Context, req api.CreateAppointmentRequest) transport.Result
}

// Form is the booking form as the user filled it in.
type Form struct {
	Date     string
	DoctorID string
	Problem  string
}

func (f *Form) Reset() { *f = Form{} }

type Workflow struct {
	store   IdentityReader
	client  AppointmentCreator
	log     *zap.Logger
	pending atomic.Bool
}

func NewWorkflow(store IdentityReader, client AppointmentCreator, log *zap.Logger) *Workflow {
	if log == nil {
		log = zap.NewNop()
	}
	return &Workflow{store: store, client: client, log: log}
}

// Pending reports whether a submission is in flight.
func (w *Workflow) Pending() bool { return w.pending.Load() }

// Book validates the form, then posts it as a Pending appointment for the
// logged-in patient. On success the form is reset and the created record is
// returned when the server sent one back. On failure the form is untouched.
func (w *Workflow) Book(ctx context.Context, f *Form) (*model.Appointment, error) {
	patient, err := w.patient(ctx)
	if err != nil {
		return nil, err
	}
	doctorID, err := parseRef("doctor", f.DoctorID)
	if err != nil {
		return nil, err
	}
	req := api.CreateAppointmentRequest{
		AppointmentDate: strings.TrimSpace(f.Date),
		Problem:         f.Problem,
		Status:          model.StatusPending,
		Doctor:          model.DoctorRef{DoctorID: doctorID},
		Patient:         model.PatientRef{PatientID: patient.ID},
	}
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	if !w.pending.CompareAndSwap(false, true) {
		return nil, ErrSubmissionPending
	}
	defer w.pending.Store(false)

	res := w.client.CreateAppointment(ctx, req)
	if err := created(res); err != nil {
		w.log.Warn("booking: rejected",
			zap.Int64("patient_id", patient.ID),
			zap.Int64("doctor_id", doctorID),
			zap.Stringer("outcome", res.Outcome),
			zap.Int("status", res.Status),
		)
		return nil, err
	}

	w.log.Info("booking: created", zap.Int64("patient_id", patient.ID), zap.Int64("doctor_id", doctorID))
	f.Reset()

	var apt model.Appointment
	if len(res.Payload) == 0 || res.Decode(&apt) != nil {
		return nil, nil
	}
	return &apt, nil
}

func (w *Workflow) patient(ctx context.Context) (model.Identity, error) {
	id, ok := w.store.Identity(ctx)
	if !ok || !id.IsPatient() {
		cause := apperr.New(apperr.KindSessionAbsent, "no patient session")
		return model.Identity{}, apperr.Wrap(cause, apperr.KindValidationFailed, "not logged in", "")
	}
	return id, nil
}

// created accepts 200 and 201 only
func created(res transport.Result) error {
	if !res.OK() {
		return res.Error()
	}
	if res.Status != http.StatusOK && res.Status != http.StatusCreated {
		msg := res.ServerMessage()
		if msg == "" {
			msg = transport.MsgServerError
		}
		return apperr.New(apperr.KindRequestRejected, msg)
	}
	return nil
}

func parseRef(field, raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, apperr.Validation("Please select a " + field + ".")
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, apperr.Validation(field + " must be a number")
	}
	return n, nil
}
