package booking

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"hospital-portal/internal/apperr"
	"hospital-portal/internal/model"
)

type Directory interface {
	Doctors(ctx context.Context) ([]model.Doctor, error)
	Patient(ctx context.Context, id int64) (*model.Patient, error)
}

// State is what the booking view displays. The two loads fail independently.
type State struct {
	Doctors    []model.Doctor
	Patient    *model.Patient
	DoctorsErr error
	PatientErr error
}

// View loads the doctor list and the patient's own profile side by side.
// After Close, results that arrive late are dropped.
type View struct {
	store IdentityReader
	dir   Directory
	log   *zap.Logger

	mu     sync.Mutex
	closed bool
	state  State
}

func NewView(store IdentityReader, dir Directory, log *zap.Logger) *View {
	if log == nil {
		log = zap.NewNop()
	}
	return &View{store: store, dir: dir, log: log, state: State{Doctors: []model.Doctor{}}}
}

// Load returns the joined errors of both fetches; State keeps each one.
func (v *View) Load(ctx context.Context) error {
	id, ok := v.store.Identity(ctx)
	if !ok || !id.IsPatient() {
		return apperr.New(apperr.KindSessionAbsent, "not logged in")
	}

	var g errgroup.Group
	g.Go(func() error {
		docs, err := v.dir.Doctors(ctx)
		if docs == nil {
			docs = []model.Doctor{}
		}
		v.update(func(s *State) { s.Doctors, s.DoctorsErr = docs, err })
		if err != nil {
			v.log.Warn("booking view: doctors", zap.Error(err))
		}
		return err
	})
	g.Go(func() error {
		p, err := v.dir.Patient(ctx, id.ID)
		v.update(func(s *State) { s.Patient, s.PatientErr = p, err })
		if err != nil {
			v.log.Warn("booking view: patient", zap.Int64("patient_id", id.ID), zap.Error(err))
		}
		return err
	})
	g.Wait()

	s := v.State()
	return errors.Join(s.DoctorsErr, s.PatientErr)
}

func (v *View) update(fn func(*State)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	fn(&v.state)
}

func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

func (v *View) Close() {
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
}
