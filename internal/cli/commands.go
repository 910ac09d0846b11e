package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"hospital-portal/internal/apperr"
	"hospital-portal/internal/auth"
	"hospital-portal/internal/booking"
	"hospital-portal/internal/guard"
	"hospital-portal/internal/model"
	"hospital-portal/internal/profile"
)

// landing is where each role goes after logging in
var landing = map[model.Role]string{
	model.RoleDoctor:  "/doctor (hospital schedule)",
	model.RolePatient: "/patient (hospital appointments, hospital book)",
	model.RoleAdmin:   "/admin (hospital admin doctors)",
}

func (a *App) Command() *cobra.Command {
	root := &cobra.Command{
		Use:           "hospital",
		Short:         "Hospital appointment portal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(a.out)
	root.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.scheduleCmd(),
		a.appointmentsCmd(),
		a.doctorsCmd(),
		a.bookCmd(),
		a.noteCmd(),
		a.profileCmd(),
		a.adminCmd(),
	)
	return root
}

func (a *App) loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as a doctor, patient or admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			roleName, _ := cmd.Flags().GetString("role")
			id, _ := cmd.Flags().GetString("id")
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")

			role, err := model.ParseRole(roleName)
			if err != nil {
				return apperr.Wrap(err, apperr.KindValidationFailed, "role must be doctor, patient or admin", "")
			}
			who, err := a.auth.Login(cmd.Context(), role, auth.Credentials{ID: id, Email: email, Password: password})
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Logged in as %s.\nNext: %s\n", describe(who), landing[role])
			return nil
		},
	}
	cmd.Flags().String("role", "", "doctor, patient or admin")
	cmd.Flags().String("id", "", "Doctor or patient ID")
	cmd.Flags().String("email", "", "Admin email")
	cmd.Flags().String("password", "", "Password")
	return cmd
}

func (a *App) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget this terminal's login",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.auth.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Logged out.")
			return nil
		},
	}
}

func (a *App) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the active identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			who, ok := a.store.Identity(cmd.Context())
			if !ok {
				fmt.Fprintln(a.out, "Not logged in.")
				return nil
			}
			fmt.Fprintf(a.out, "%s\n", describe(who))
			return nil
		},
	}
}

func (a *App) scheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Doctor view: appointments for a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			date, _ := cmd.Flags().GetString("date")
			return a.guard.Enter(cmd.Context(), guard.ParseView("/doctor"), func(ctx context.Context, who model.Identity) error {
				return a.showAppointments(ctx, model.Actor{Role: model.RoleDoctor, ID: who.ID}, date)
			})
		},
	}
	cmd.Flags().String("date", "", "Date to show, YYYY-MM-DD (default today)")
	return cmd
}

func (a *App) appointmentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "appointments",
		Short: "Patient view: your appointments for a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			date, _ := cmd.Flags().GetString("date")
			return a.guard.Enter(cmd.Context(), guard.ParseView("/patient"), func(ctx context.Context, who model.Identity) error {
				return a.showAppointments(ctx, model.Actor{Role: model.RolePatient, ID: who.ID}, date)
			})
		},
	}
	cmd.Flags().String("date", "", "Date to show, YYYY-MM-DD (default today)")
	return cmd
}

func (a *App) doctorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctors",
		Short: "Patient view: doctors you can book",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.guard.Enter(cmd.Context(), guard.ParseView("/patient"), func(ctx context.Context, _ model.Identity) error {
				st := a.loadBookingView(ctx)
				if st.DoctorsErr != nil {
					return st.DoctorsErr
				}
				a.renderDoctors(st.Doctors)
				return nil
			})
		},
	}
}

func (a *App) bookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Patient view: request an appointment",
		RunE: func(cmd *cobra.Command, args []string) error {
			doctor, _ := cmd.Flags().GetString("doctor")
			date, _ := cmd.Flags().GetString("date")
			reason, _ := cmd.Flags().GetString("reason")
			return a.guard.Enter(cmd.Context(), guard.ParseView("/patient"), func(ctx context.Context, _ model.Identity) error {
				st := a.loadBookingView(ctx)
				if st.DoctorsErr != nil {
					fmt.Fprintf(a.out, "Doctors unavailable: %s\n", apperr.Message(st.DoctorsErr))
				}
				form := &booking.Form{Date: date, DoctorID: doctor, Problem: reason}
				apt, err := a.booking.Book(ctx, form)
				if err != nil {
					return err
				}
				fmt.Fprintln(a.out, "Appointment booked.")
				if apt != nil {
					a.renderAppointments([]model.Appointment{*apt}, model.RolePatient)
				}
				return nil
			})
		},
	}
	cmd.Flags().String("doctor", "", "Doctor ID")
	cmd.Flags().String("date", "", "Appointment date, YYYY-MM-DD")
	cmd.Flags().String("reason", "", "Reason for the visit")
	return cmd
}

func (a *App) noteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Doctor view: add a note for a patient",
		RunE: func(cmd *cobra.Command, args []string) error {
			patient, _ := cmd.Flags().GetString("patient")
			content, _ := cmd.Flags().GetString("content")
			return a.guard.Enter(cmd.Context(), guard.ParseView("/doctor"), func(ctx context.Context, _ model.Identity) error {
				note, err := a.notes.Create(ctx, patient, content)
				if err != nil {
					return err
				}
				if note != nil && note.NoteID > 0 {
					fmt.Fprintf(a.out, "Note %d saved.\n", note.NoteID)
					return nil
				}
				fmt.Fprintln(a.out, "Note saved.")
				return nil
			})
		},
	}
	cmd.Flags().String("patient", "", "Patient ID")
	cmd.Flags().String("content", "", "Note text")
	return cmd
}

func (a *App) profileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Show your own profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			view := guard.ParseView("/patient")
			if who, ok := a.store.Identity(cmd.Context()); ok && who.IsDoctor() {
				view = guard.ParseView("/doctor")
			}
			return a.guard.Enter(cmd.Context(), view, func(ctx context.Context, who model.Identity) error {
				if who.IsDoctor() {
					d, err := a.profiles.DoctorProfile(ctx)
					if err != nil {
						return err
					}
					a.renderDoctor(*d)
					return nil
				}
				p, err := a.profiles.PatientProfile(ctx)
				if err != nil {
					return err
				}
				a.renderPatient(*p)
				return nil
			})
		},
	}
}

func (a *App) adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Admin views",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "doctors",
		Short: "List every doctor",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.guard.Enter(cmd.Context(), guard.ParseView("/admin"), func(ctx context.Context, _ model.Identity) error {
				return a.listDoctors(ctx)
			})
		},
	})
	cmd.AddCommand(a.editDoctorCmd())
	return cmd
}

func (a *App) editDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit-doctor <id>",
		Short: "Edit a doctor profile (admins, or the doctor themself)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return apperr.Validation("doctor id must be a positive number")
			}
			return a.guard.Enter(cmd.Context(), guard.EditByAdmin(id), func(ctx context.Context, _ model.Identity) error {
				cur, err := a.client.Doctor(ctx, id)
				if err != nil {
					return err
				}
				u := profile.FromDoctor(*cur)
				if err := applyEdits(cmd, &u); err != nil {
					return err
				}
				d, err := a.profiles.EditDoctor(ctx, id, u)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Doctor %d updated.\n", id)
				if d != nil {
					a.renderDoctor(*d)
				}
				return nil
			})
		},
	}
	f := cmd.Flags()
	f.String("name", "", "Display name")
	f.String("email", "", "Email")
	f.String("contact", "", "Contact number")
	f.String("password", "", "New password")
	f.String("specialization", "", "Specialization")
	f.Int("experience", 0, "Years of experience")
	f.String("address", "", "Clinic address")
	f.String("days", "", "Available days")
	f.Float64("fee", 0, "Consultation fee")
	return cmd
}

// applyEdits overlays only the flags the user set
func applyEdits(cmd *cobra.Command, u *profile.DoctorUpdate) error {
	f := cmd.Flags()
	strs := map[string]*string{
		"name":           &u.Name,
		"email":          &u.Email,
		"contact":        &u.ContactNumber,
		"password":       &u.Password,
		"specialization": &u.Specialization,
		"address":        &u.ClinicAddress,
		"days":           &u.AvailableDays,
	}
	for name, dst := range strs {
		if f.Changed(name) {
			v, err := f.GetString(name)
			if err != nil {
				return err
			}
			*dst = v
		}
	}
	if f.Changed("experience") {
		v, err := f.GetInt("experience")
		if err != nil {
			return err
		}
		u.ExperienceYears = v
	}
	if f.Changed("fee") {
		v, err := f.GetFloat64("fee")
		if err != nil {
			return err
		}
		u.ConsultationFee = v
	}
	return nil
}

func describe(id model.Identity) string {
	if id.IsAdmin() {
		return "admin " + id.Email
	}
	return fmt.Sprintf("%s %d", id.Role, id.ID)
}
