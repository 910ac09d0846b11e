package booking

import (
	"context"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"hospital-portal/internal/api"
	"hospital-portal/internal/apperr"
	"hospital-portal/internal/model"
	"hospital-portal/internal/transport"
)

type NoteCreator interface {
	CreateDoctorNote(ctx context.Context, req api.CreateNoteRequest) transport.Result
}

// NoteWorkflow lets the logged-in doctor attach a note to a patient.
type NoteWorkflow struct {
	store   IdentityReader
	client  NoteCreator
	log     *zap.Logger
	pending atomic.Bool
}

func NewNoteWorkflow(store IdentityReader, client NoteCreator, log *zap.Logger) *NoteWorkflow {
	if log == nil {
		log = zap.NewNop()
	}
	return &NoteWorkflow{store: store, client: client, log: log}
}

func (w *NoteWorkflow) Create(ctx context.Context, patientID, content string) (*model.DoctorNote, error) {
	doctor, ok := w.store.Identity(ctx)
	if !ok || !doctor.IsDoctor() {
		cause := apperr.New(apperr.KindSessionAbsent, "no doctor session")
		return nil, apperr.Wrap(cause, apperr.KindValidationFailed, "not logged in", "")
	}
	pid, err := parseRef("patient", patientID)
	if err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperr.Validation("Note content is required.")
	}

	if !w.pending.CompareAndSwap(false, true) {
		return nil, ErrSubmissionPending
	}
	defer w.pending.Store(false)

	res := w.client.CreateDoctorNote(ctx, api.CreateNoteRequest{
		Doctor:      model.DoctorRef{DoctorID: doctor.ID},
		Patient:     model.PatientRef{PatientID: pid},
		NoteContent: content,
	})
	if err := created(res); err != nil {
		w.log.Warn("note: rejected", zap.Int64("doctor_id", doctor.ID), zap.Stringer("outcome", res.Outcome))
		return nil, err
	}
	w.log.Info("note: created", zap.Int64("doctor_id", doctor.ID), zap.Int64("patient_id", pid))

	var note model.DoctorNote
	if len(res.Payload) == 0 || res.Decode(&note) != nil {
		return nil, nil
	}
	return &note, nil
}
