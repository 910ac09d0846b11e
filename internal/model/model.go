package model

import (
	"errors"
	"strings"
)

type Role string

const (
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
	RoleAdmin   Role = "admin"
)

// ParseRole accepts the role names the login form uses, case-insensitively.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleDoctor:
		return RoleDoctor, nil
	case RolePatient:
		return RolePatient, nil
	case RoleAdmin:
		return RoleAdmin, nil
	}
	return "", errors.New("unknown role " + s)
}

var ErrBadIdentity = errors.New("invalid identity")

// Identity is the authenticated actor. Doctors and patients are keyed by a
// numeric id, admins by email; the two are never mixed.
type Identity struct {
	Role  Role
	ID    int64
	Email string
}

func DoctorIdentity(id int64) Identity  { return Identity{Role: RoleDoctor, ID: id} }
func PatientIdentity(id int64) Identity { return Identity{Role: RolePatient, ID: id} }
func AdminIdentity(email string) Identity {
	return Identity{Role: RoleAdmin, Email: email}
}

func (i Identity) Validate() error {
	switch i.Role {
	case RoleDoctor, RolePatient:
		if i.ID <= 0 || i.Email != "" {
			return ErrBadIdentity
		}
	case RoleAdmin:
		if strings.TrimSpace(i.Email) == "" || i.ID != 0 {
			return ErrBadIdentity
		}
	default:
		return ErrBadIdentity
	}
	return nil
}

func (i Identity) IsDoctor() bool  { return i.Role == RoleDoctor }
func (i Identity) IsPatient() bool { return i.Role == RolePatient }
func (i Identity) IsAdmin() bool   { return i.Role == RoleAdmin }

// Actor names whose appointments are being read.
type Actor struct {
	Role Role
	ID   int64
}

const StatusPending = "Pending"

// Appointment dates are calendar dates (YYYY-MM-DD), no time component.
type Appointment struct {
	AppointmentID int64    `json:"appointmentId"`
	Date          string   `json:"appointmentDate"`
	Problem       string   `json:"problem"`
	Status        string   `json:"status"`
	Doctor        *Doctor  `json:"doctor,omitempty"`
	Patient       *Patient `json:"patient,omitempty"`
}

// reference objects, resolved to full records by the backend
type DoctorRef struct {
	DoctorID int64 `json:"doctorId"`
}

type PatientRef struct {
	PatientID int64 `json:"patientId"`
}

type Doctor struct {
	DoctorID        int64   `json:"doctorId"`
	Name            string  `json:"name,omitempty"`
	FirstName       string  `json:"firstName,omitempty"`
	Email           string  `json:"email,omitempty"`
	ContactNumber   string  `json:"contactNumber,omitempty"`
	Password        string  `json:"password,omitempty"`
	Specialization  string  `json:"specialization,omitempty"`
	ExperienceYears int     `json:"experienceYears,omitempty"`
	ClinicAddress   string  `json:"clinicAddress,omitempty"`
	AvailableDays   string  `json:"availableDays,omitempty"`
	ConsultationFee float64 `json:"consultationFee,omitempty"`
}

// DisplayName falls back to firstName for records that carry no name.
func (d Doctor) DisplayName() string {
	if d.Name != "" {
		return d.Name
	}
	return d.FirstName
}

type Patient struct {
	PatientID        int64  `json:"patientId"`
	FirstName        string `json:"firstName,omitempty"`
	LastName         string `json:"lastName,omitempty"`
	Email            string `json:"email,omitempty"`
	ContactNumber    string `json:"contactNumber,omitempty"`
	DateOfBirth      string `json:"dateOfBirth,omitempty"`
	Gender           string `json:"gender,omitempty"`
	Address          string `json:"address,omitempty"`
	EmergencyContact string `json:"emergencyContact,omitempty"`
	BloodType        string `json:"bloodType,omitempty"`
}

func (p Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

type DoctorNote struct {
	NoteID      int64    `json:"noteId,omitempty"`
	Doctor      *Doctor  `json:"doctor,omitempty"`
	Patient     *Patient `json:"patient,omitempty"`
	NoteContent string   `json:"noteContent"`
}
