package stubapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"hospital-portal/internal/model"
)

type createAppointmentBody struct {
	AppointmentDate string            `json:"appointmentDate"`
	Problem         string            `json:"problem"`
	Status          string            `json:"status"`
	Doctor          *model.DoctorRef  `json:"doctor"`
	Patient         *model.PatientRef `json:"patient"`
}

func (h *Handler) createAppointment(w http.ResponseWriter, r *http.Request) {
	var req createAppointmentBody
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "malformed body")
		return
	}
	if req.Doctor == nil || req.Patient == nil {
		writeMessage(w, http.StatusBadRequest, "doctor and patient required")
		return
	}
	if _, err := time.Parse(time.DateOnly, req.AppointmentDate); err != nil {
		writeMessage(w, http.StatusBadRequest, "appointmentDate must be YYYY-MM-DD")
		return
	}
	if req.Status == "" {
		req.Status = model.StatusPending
	}

	apt, err := h.store.CreateAppointment(req.AppointmentDate, req.Problem, req.Status, req.Doctor.DoctorID, req.Patient.PatientID)
	switch {
	case errors.Is(err, ErrNotFound):
		writeMessage(w, http.StatusBadRequest, "doctor or patient not found")
		return
	case errors.Is(err, ErrSlotTaken):
		writeMessage(w, http.StatusConflict, "slot taken")
		return
	case err != nil:
		writeMessage(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, apt)
}

func (h *Handler) doctorAppointments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "invalid doctor id")
		return
	}
	h.writeList(w, h.store.AppointmentsForDoctor(id))
}

func (h *Handler) patientAppointments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "invalid patient id")
		return
	}
	h.writeList(w, h.store.AppointmentsForPatient(id))
}

// writeList answers in whichever shape the stub is set to
func (h *Handler) writeList(w http.ResponseWriter, items any) {
	switch h.listShape() {
	case ShapeEnvelope:
		writeJSON(w, http.StatusOK, map[string]any{"content": items, "pageable": "INSTANCE"})
	case ShapeEmpty:
		w.WriteHeader(http.StatusOK)
	case ShapeUnknown:
		writeJSON(w, http.StatusOK, map[string]string{"status": "UP"})
	default:
		writeJSON(w, http.StatusOK, items)
	}
}

func (h *Handler) listDoctors(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, h.store.Doctors())
}

func (h *Handler) getDoctor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "invalid doctor id")
		return
	}
	d, err := h.store.Doctor(id)
	if err != nil {
		writeMessage(w, http.StatusNotFound, "doctor not found")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *Handler) updateDoctor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "invalid doctor id")
		return
	}
	var d model.Doctor
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeMessage(w, http.StatusBadRequest, "malformed body")
		return
	}
	out, err := h.store.UpdateDoctor(id, d)
	if errors.Is(err, ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "doctor not found")
		return
	}
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getPatient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeMessage(w, http.StatusBadRequest, "invalid patient id")
		return
	}
	p, err := h.store.Patient(id)
	if err != nil {
		writeMessage(w, http.StatusNotFound, "patient not found")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) createNote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Doctor      *model.DoctorRef  `json:"doctor"`
		Patient     *model.PatientRef `json:"patient"`
		NoteContent string            `json:"noteContent"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "malformed body")
		return
	}
	if req.Doctor == nil || req.Patient == nil || strings.TrimSpace(req.NoteContent) == "" {
		writeMessage(w, http.StatusBadRequest, "doctor, patient and noteContent required")
		return
	}
	n, err := h.store.CreateNote(req.Doctor.DoctorID, req.Patient.PatientID, req.NoteContent)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "doctor or patient not found")
		return
	}
	writeJSON(w, http.StatusCreated, n)
}
