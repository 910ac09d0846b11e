package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"hospital-portal/internal/apperr"
	"hospital-portal/internal/appointments"
	"hospital-portal/internal/booking"
	"hospital-portal/internal/model"
)

func (a *App) table(header []string, rows [][]string) {
	t := tablewriter.NewWriter(a.out)
	t.SetHeader(header)
	t.SetAutoWrapText(false)
	t.SetAutoFormatHeaders(false)
	t.AppendBulk(rows)
	t.Render()
}

// showAppointments renders one date of the actor's appointments. A failed
// fetch still renders the empty view before the error is returned.
func (a *App) showAppointments(ctx context.Context, actor model.Actor, date string) error {
	coll, loadErr := a.normal.Load(ctx, actor)
	view := appointments.NewDateView(coll, a.now())
	if date != "" {
		view.Select(date)
	}

	fmt.Fprintf(a.out, "Dates: %s\n", strings.Join(view.Options(), ", "))
	fmt.Fprintf(a.out, "Selected: %s\n", view.Selected())
	if view.Empty() {
		fmt.Fprintln(a.out, appointments.EmptyMessage)
	} else {
		a.renderAppointments(view.Visible(), actor.Role)
	}
	return loadErr
}

func (a *App) renderAppointments(items []model.Appointment, viewer model.Role) {
	if viewer == model.RoleDoctor {
		rows := make([][]string, 0, len(items))
		for _, apt := range items {
			patient := ""
			if apt.Patient != nil {
				patient = apt.Patient.FullName()
			}
			rows = append(rows, []string{strconv.FormatInt(apt.AppointmentID, 10), apt.Date, patient, apt.Problem, apt.Status})
		}
		a.table([]string{"ID", "Date", "Patient", "Problem", "Status"}, rows)
		return
	}
	rows := make([][]string, 0, len(items))
	for _, apt := range items {
		doctor, specialty := "", ""
		if apt.Doctor != nil {
			doctor, specialty = apt.Doctor.DisplayName(), apt.Doctor.Specialization
		}
		rows = append(rows, []string{strconv.FormatInt(apt.AppointmentID, 10), apt.Date, doctor, specialty, apt.Problem, apt.Status})
	}
	a.table([]string{"ID", "Date", "Doctor", "Specialization", "Problem", "Status"}, rows)
}

func (a *App) listDoctors(ctx context.Context) error {
	docs, err := a.profiles.Doctors(ctx)
	if err != nil {
		return err
	}
	a.renderDoctors(docs)
	return nil
}

// loadBookingView fetches the doctor list and the patient's profile side by
// side. A failed profile fetch is reported here; the caller decides what a
// failed doctor list means.
func (a *App) loadBookingView(ctx context.Context) booking.State {
	v := booking.NewView(a.store, a.client, a.log)
	defer v.Close()
	v.Load(ctx)

	st := v.State()
	switch {
	case st.PatientErr != nil:
		fmt.Fprintf(a.out, "Profile unavailable: %s\n", apperr.Message(st.PatientErr))
	case st.Patient != nil:
		fmt.Fprintf(a.out, "Booking for %s (patient %d)\n", st.Patient.FullName(), st.Patient.PatientID)
	}
	return st
}

func (a *App) renderDoctors(docs []model.Doctor) {
	if len(docs) == 0 {
		fmt.Fprintln(a.out, "No doctors found.")
		return
	}
	rows := make([][]string, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, []string{
			strconv.FormatInt(d.DoctorID, 10),
			d.DisplayName(),
			d.Specialization,
			strconv.Itoa(d.ExperienceYears),
			money(d.ConsultationFee),
			d.AvailableDays,
		})
	}
	a.table([]string{"ID", "Name", "Specialization", "Experience", "Fee", "Available"}, rows)
}

func (a *App) renderDoctor(d model.Doctor) {
	a.table([]string{"Field", "Value"}, [][]string{
		{"ID", strconv.FormatInt(d.DoctorID, 10)},
		{"Name", d.DisplayName()},
		{"Email", d.Email},
		{"Contact", d.ContactNumber},
		{"Specialization", d.Specialization},
		{"Experience", strconv.Itoa(d.ExperienceYears)},
		{"Clinic", d.ClinicAddress},
		{"Available", d.AvailableDays},
		{"Fee", money(d.ConsultationFee)},
	})
}

func (a *App) renderPatient(p model.Patient) {
	a.table([]string{"Field", "Value"}, [][]string{
		{"ID", strconv.FormatInt(p.PatientID, 10)},
		{"Name", p.FullName()},
		{"Email", p.Email},
		{"Contact", p.ContactNumber},
		{"Date of birth", p.DateOfBirth},
		{"Gender", p.Gender},
		{"Address", p.Address},
		{"Emergency contact", p.EmergencyContact},
		{"Blood type", p.BloodType},
	})
}

func money(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
