package stubapi

import (
	"errors"
	"sort"
	"sync"

	"hospital-portal/internal/model"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrSlotTaken = errors.New("slot taken")
)

// Store is the stub backend's in-memory state.
type Store struct {
	mu           sync.RWMutex
	doctors      map[int64]model.Doctor
	patients     map[int64]model.Patient
	doctorHash   map[int64]string
	patientHash  map[int64]string
	adminHash    map[string]string
	appointments []apptRow
	notes        []model.DoctorNote
	nextAppt     int64
	nextNote     int64
}

// appointments keep references only; records are joined on read
type apptRow struct {
	ID        int64
	Date      string
	Problem   string
	Status    string
	DoctorID  int64
	PatientID int64
}

func NewStore() *Store {
	return &Store{
		doctors:     map[int64]model.Doctor{},
		patients:    map[int64]model.Patient{},
		doctorHash:  map[int64]string{},
		patientHash: map[int64]string{},
		adminHash:   map[string]string{},
		nextAppt:    1,
		nextNote:    1,
	}
}

func (s *Store) AddDoctor(d model.Doctor, password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	d.Password = ""
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doctors[d.DoctorID] = d
	s.doctorHash[d.DoctorID] = hash
	return nil
}

func (s *Store) AddPatient(p model.Patient, password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patients[p.PatientID] = p
	s.patientHash[p.PatientID] = hash
	return nil
}

func (s *Store) AddAdmin(email, password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adminHash[email] = hash
	return nil
}

func (s *Store) CheckDoctor(id int64, pw string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return checkPassword(s.doctorHash[id], pw)
}

func (s *Store) CheckPatient(id int64, pw string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return checkPassword(s.patientHash[id], pw)
}

func (s *Store) CheckAdmin(email, pw string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return checkPassword(s.adminHash[email], pw)
}

func (s *Store) Doctors() []model.Doctor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Doctor, 0, len(s.doctors))
	for _, d := range s.doctors {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DoctorID < out[j].DoctorID })
	return out
}

func (s *Store) Doctor(id int64) (model.Doctor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.doctors[id]
	if !ok {
		return model.Doctor{}, ErrNotFound
	}
	return d, nil
}

// UpdateDoctor replaces the profile; a non-empty password is re-hashed.
func (s *Store) UpdateDoctor(id int64, d model.Doctor) (model.Doctor, error) {
	var hash string
	if d.Password != "" {
		h, err := hashPassword(d.Password)
		if err != nil {
			return model.Doctor{}, err
		}
		hash = h
	}
	d.DoctorID = id
	d.Password = ""

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.doctors[id]; !ok {
		return model.Doctor{}, ErrNotFound
	}
	s.doctors[id] = d
	if hash != "" {
		s.doctorHash[id] = hash
	}
	return d, nil
}

func (s *Store) Patient(id int64) (model.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.patients[id]
	if !ok {
		return model.Patient{}, ErrNotFound
	}
	return p, nil
}

func (s *Store) CreateAppointment(date, problem, status string, doctorID, patientID int64) (model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.doctors[doctorID]; !ok {
		return model.Appointment{}, ErrNotFound
	}
	if _, ok := s.patients[patientID]; !ok {
		return model.Appointment{}, ErrNotFound
	}
	// one visit per patient, doctor and day
	for _, a := range s.appointments {
		if a.DoctorID == doctorID && a.PatientID == patientID && a.Date == date {
			return model.Appointment{}, ErrSlotTaken
		}
	}

	row := apptRow{
		ID:        s.nextAppt,
		Date:      date,
		Problem:   problem,
		Status:    status,
		DoctorID:  doctorID,
		PatientID: patientID,
	}
	s.nextAppt++
	s.appointments = append(s.appointments, row)
	return s.join(row), nil
}

func (s *Store) AppointmentsForDoctor(id int64) []model.Appointment {
	return s.filter(func(a apptRow) bool { return a.DoctorID == id })
}

func (s *Store) AppointmentsForPatient(id int64) []model.Appointment {
	return s.filter(func(a apptRow) bool { return a.PatientID == id })
}

func (s *Store) filter(keep func(apptRow) bool) []model.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Appointment{}
	for _, a := range s.appointments {
		if keep(a) {
			out = append(out, s.join(a))
		}
	}
	return out
}

// caller holds s.mu
func (s *Store) join(a apptRow) model.Appointment {
	d := s.doctors[a.DoctorID]
	p := s.patients[a.PatientID]
	return model.Appointment{
		AppointmentID: a.ID,
		Date:          a.Date,
		Problem:       a.Problem,
		Status:        a.Status,
		Doctor:        &d,
		Patient:       &p,
	}
}

func (s *Store) CreateNote(doctorID, patientID int64, content string) (model.DoctorNote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.doctors[doctorID]
	if !ok {
		return model.DoctorNote{}, ErrNotFound
	}
	p, ok := s.patients[patientID]
	if !ok {
		return model.DoctorNote{}, ErrNotFound
	}
	n := model.DoctorNote{NoteID: s.nextNote, Doctor: &d, Patient: &p, NoteContent: content}
	s.nextNote++
	s.notes = append(s.notes, n)
	return n, nil
}

func (s *Store) Notes() []model.DoctorNote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.DoctorNote(nil), s.notes...)
}
