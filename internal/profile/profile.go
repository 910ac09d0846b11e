// Package profile reads the logged-in actor's own record and lets an admin,
// or the doctor themself, edit a doctor profile.
package profile

import (
	"context"

	"go.uber.org/zap"

	"hospital-portal/internal/api"
	"hospital-portal/internal/apperr"
	"hospital-portal/internal/guard"
	"hospital-portal/internal/model"
	"hospital-portal/internal/transport"
	"hospital-portal/internal/validate"
)

type Directory interface {
	Doctors(ctx context.Context) ([]model.Doctor, error)
	Doctor(ctx context.Context, id int64) (*model.Doctor, error)
	Patient(ctx context.Context, id int64) (*model.Patient, error)
	UpdateDoctor(ctx context.Context, id int64, u api.DoctorUpdate) transport.Result
}

type IdentityReader interface {
	Identity(ctx context.Context) (model.Identity, bool)
}

// DoctorUpdate is the doctor edit form, sent as the PUT body.
type DoctorUpdate = api.DoctorUpdate

// FromDoctor prefills the edit form from the fetched record, password
// included, so fields the user leaves alone go back unchanged.
func FromDoctor(d model.Doctor) DoctorUpdate {
	return DoctorUpdate{
		DoctorID:        d.DoctorID,
		Name:            d.DisplayName(),
		Email:           d.Email,
		ContactNumber:   d.ContactNumber,
		Password:        d.Password,
		Specialization:  d.Specialization,
		ExperienceYears: d.ExperienceYears,
		ClinicAddress:   d.ClinicAddress,
		AvailableDays:   d.AvailableDays,
		ConsultationFee: d.ConsultationFee,
	}
}

type Service struct {
	dir   Directory
	store IdentityReader
	log   *zap.Logger
}

func New(dir Directory, store IdentityReader, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{dir: dir, store: store, log: log}
}

func (s *Service) DoctorProfile(ctx context.Context) (*model.Doctor, error) {
	id, ok := s.store.Identity(ctx)
	if !ok || !id.IsDoctor() {
		return nil, apperr.New(apperr.KindSessionAbsent, "not logged in")
	}
	return s.dir.Doctor(ctx, id.ID)
}

func (s *Service) PatientProfile(ctx context.Context) (*model.Patient, error) {
	id, ok := s.store.Identity(ctx)
	if !ok || !id.IsPatient() {
		return nil, apperr.New(apperr.KindSessionAbsent, "not logged in")
	}
	return s.dir.Patient(ctx, id.ID)
}

func (s *Service) Doctors(ctx context.Context) ([]model.Doctor, error) {
	return s.dir.Doctors(ctx)
}

// EditDoctor replaces doctor id's profile with u. Only an admin or that
// doctor may do so.
func (s *Service) EditDoctor(ctx context.Context, id int64, u DoctorUpdate) (*model.Doctor, error) {
	state := guard.Unauthenticated()
	if who, ok := s.store.Identity(ctx); ok {
		state = guard.Authenticated(who)
	}
	if guard.RequiresRedirect(guard.EditByAdmin(id), state) {
		return nil, apperr.New(apperr.KindSessionAbsent, "not allowed to edit this profile")
	}
	if err := validate.Struct(u); err != nil {
		return nil, err
	}

	u.DoctorID = id
	res := s.dir.UpdateDoctor(ctx, id, u)
	if !res.OK() {
		s.log.Warn("profile: update rejected", zap.Int64("doctor_id", id), zap.Stringer("outcome", res.Outcome), zap.Int("status", res.Status))
		return nil, res.Error()
	}
	s.log.Info("profile: doctor updated", zap.Int64("doctor_id", id))

	var d model.Doctor
	if len(res.Payload) == 0 || res.Decode(&d) != nil {
		return nil, nil
	}
	d.Password = ""
	return &d, nil
}
