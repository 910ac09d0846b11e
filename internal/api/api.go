// Package api names the hospital backend's REST endpoints and decodes what
// they return.
package api

import (
	"context"
	"net/http"
	"strconv"

	"hospital-portal/internal/model"
	"hospital-portal/internal/normalize"
	"hospital-portal/internal/transport"
)

const (
	PathDoctorAuth      = "/api/doctor/authenticate"
	PathPatientAuth     = "/api/patient/auth"
	PathAdminAuth       = "/api/authenticateAdmin/login"
	PathDoctors         = "/api/doctor"
	PathPatients        = "/api/patient"
	PathAppointments    = "/api/appointment"
	PathDoctorNotes     = "/api/doctor-notes"
	pathApptsForDoctor  = "/api/appointment/doctorId/"
	pathApptsForPatient = "/api/appointment/patientId/"
)

// CreateAppointmentRequest embeds doctor and patient as reference objects;
// the backend resolves them.
type CreateAppointmentRequest struct {
	AppointmentDate string           `json:"appointmentDate" validate:"required,datetime=2006-01-02"`
	Problem         string           `json:"problem"`
	Status          string           `json:"status" validate:"required"`
	Doctor          model.DoctorRef  `json:"doctor"`
	Patient         model.PatientRef `json:"patient"`
}

// DoctorUpdate is the full record PUT back on edit. Numbers are always sent,
// zero included; the password goes back as fetched unless replaced.
type DoctorUpdate struct {
	DoctorID        int64   `json:"doctorId"`
	Name            string  `json:"name" validate:"required"`
	Email           string  `json:"email" validate:"required,email"`
	ContactNumber   string  `json:"contactNumber" validate:"required"`
	Password        string  `json:"password,omitempty"`
	Specialization  string  `json:"specialization" validate:"required"`
	ExperienceYears int     `json:"experienceYears" validate:"gte=0"`
	ClinicAddress   string  `json:"clinicAddress" validate:"required"`
	AvailableDays   string  `json:"availableDays" validate:"required"`
	ConsultationFee float64 `json:"consultationFee" validate:"gte=0"`
}

type CreateNoteRequest struct {
	Doctor      model.DoctorRef  `json:"doctor"`
	Patient     model.PatientRef `json:"patient"`
	NoteContent string           `json:"noteContent"`
}

type Client struct {
	t *transport.Client
}

func New(t *transport.Client) *Client { return &Client{t: t} }

func (c *Client) Transport() *transport.Client { return c.t }

// Doctors lists every doctor. An unrecognized list shape yields an empty
// slice together with a MalformedResponse error.
func (c *Client) Doctors(ctx context.Context) ([]model.Doctor, error) {
	res := c.t.Do(ctx, transport.Request{Method: http.MethodGet, Path: PathDoctors})
	if !res.OK() {
		return []model.Doctor{}, res.Error()
	}
	list := normalize.Decode[model.Doctor](res.Payload)
	return list.Items, list.Err
}

func (c *Client) Doctor(ctx context.Context, id int64) (*model.Doctor, error) {
	var d model.Doctor
	res := c.t.Do(ctx, transport.Request{Method: http.MethodGet, Path: PathDoctors + "/" + itoa(id)})
	if err := res.Decode(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *Client) UpdateDoctor(ctx context.Context, id int64, u DoctorUpdate) transport.Result {
	return c.t.Do(ctx, transport.Request{Method: http.MethodPut, Path: PathDoctors + "/" + itoa(id), Body: u})
}

func (c *Client) Patient(ctx context.Context, id int64) (*model.Patient, error) {
	var p model.Patient
	res := c.t.Do(ctx, transport.Request{Method: http.MethodGet, Path: PathPatients + "/" + itoa(id)})
	if err := res.Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// FetchAppointments returns the raw response; normalization is the caller's.
func (c *Client) FetchAppointments(ctx context.Context, actor model.Actor) transport.Result {
	path := pathApptsForDoctor
	if actor.Role == model.RolePatient {
		path = pathApptsForPatient
	}
	return c.t.Do(ctx, transport.Request{Method: http.MethodGet, Path: path + itoa(actor.ID)})
}

func (c *Client) CreateAppointment(ctx context.Context, req CreateAppointmentRequest) transport.Result {
	return c.t.Do(ctx, transport.Request{Method: http.MethodPost, Path: PathAppointments, Body: req})
}

func (c *Client) CreateDoctorNote(ctx context.Context, req CreateNoteRequest) transport.Result {
	return c.t.Do(ctx, transport.Request{Method: http.MethodPost, Path: PathDoctorNotes, Body: req})
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }
