package stubapi

import (
	"net/http/httptest"

	"go.uber.org/zap"

	"hospital-portal/internal/model"
)

// SeedPassword is the password of every seeded account.
const SeedPassword = "secret"

const SeedAdminEmail = "admin@hospital.org"

func Seed(st *Store) error {
	doctors := []model.Doctor{
		{
			DoctorID: 3, Name: "Dr. Asha Rao", Email: "asha.rao@hospital.org", ContactNumber: "555-0103",
			Specialization: "Cardiology", ExperienceYears: 12, ClinicAddress: "12 Harbor Rd",
			AvailableDays: "Mon, Wed, Fri", ConsultationFee: 80,
		},
		{
			DoctorID: 5, FirstName: "Lena", Email: "lena@hospital.org", ContactNumber: "555-0105",
			Specialization: "Dermatology", ExperienceYears: 4, ClinicAddress: "3 Elm St",
			AvailableDays: "Tue, Thu", ConsultationFee: 55,
		},
	}
	for _, d := range doctors {
		if err := st.AddDoctor(d, SeedPassword); err != nil {
			return err
		}
	}

	patients := []model.Patient{
		{
			PatientID: 7, FirstName: "Ravi", LastName: "Kumar", Email: "ravi@example.com",
			ContactNumber: "555-0107", DateOfBirth: "1988-04-02", Gender: "Male", BloodType: "O+",
		},
		{
			PatientID: 9, FirstName: "Maria", LastName: "Lopez", Email: "maria@example.com",
			ContactNumber: "555-0109", DateOfBirth: "1992-11-20", Gender: "Female", BloodType: "A-",
		},
	}
	for _, p := range patients {
		if err := st.AddPatient(p, SeedPassword); err != nil {
			return err
		}
	}
	return st.AddAdmin(SeedAdminEmail, SeedPassword)
}

// Start runs a seeded stub on a local httptest server. Callers close it.
func Start(opts Options) (*httptest.Server, *Handler, *Store) {
	st := NewStore()
	if err := Seed(st); err != nil {
		panic(err)
	}
	h := New(st, zap.NewNop(), opts)
	return httptest.NewServer(h.Routes()), h, st
}
