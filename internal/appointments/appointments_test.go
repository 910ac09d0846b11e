package appointments_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"hospital-portal/internal/api"
	"hospital-portal/internal/apperr"
	"hospital-portal/internal/appointments"
	"hospital-portal/internal/model"
	"hospital-portal/internal/stubapi"
	"hospital-portal/internal/transport"
)

type fixedFetcher struct {
	res   transport.Result
	calls int
}

func (f *fixedFetcher) FetchAppointments(context.Context, model.Actor) transport.Result {
	f.calls++
	return f.res
}

func okPayload(s string) transport.Result {
	return transport.Result{Outcome: transport.OK, Status: 200, Payload: []byte(s)}
}

func TestLoadShapes(t *testing.T) {
	list := `[{"appointmentId":1,"appointmentDate":"2024-01-07","problem":"a","status":"Pending"},
	          {"appointmentId":2,"appointmentDate":"2024-01-05","problem":"b","status":"Pending"}]`
	tests := []struct {
		name    string
		payload string
		count   int
		dates   []string
	}{
		{"list", list, 2, []string{"2024-01-05", "2024-01-07"}},
		{"envelope", `{"content":` + list + `,"totalElements":2}`, 2, []string{"2024-01-05", "2024-01-07"}},
		{"empty body", ``, 0, []string{}},
		{"null", `null`, 0, []string{}},
		{"status object", `{"status":"UP"}`, 0, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := appointments.NewNormalizer(&fixedFetcher{res: okPayload(tt.payload)}, nil)
			coll, err := n.Load(context.Background(), model.Actor{Role: model.RoleDoctor, ID: 3})
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if coll.Items == nil || coll.Dates == nil {
				t.Fatal("collection must be concrete")
			}
			if len(coll.Items) != tt.count {
				t.Errorf("got %d items, want %d", len(coll.Items), tt.count)
			}
			if !reflect.DeepEqual(coll.Dates, tt.dates) {
				t.Errorf("dates %v, want %v", coll.Dates, tt.dates)
			}
		})
	}
}

func TestUnknownShapeIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	n := appointments.NewNormalizer(&fixedFetcher{res: okPayload(`{"status":"UP"}`)}, zap.New(core))

	coll, err := n.Load(context.Background(), model.Actor{Role: model.RolePatient, ID: 7})
	if err != nil || len(coll.Items) != 0 {
		t.Fatalf("got %v, %v", coll, err)
	}
	if logs.FilterMessage("appointments: unrecognized response").Len() != 1 {
		t.Errorf("expected one error log, got %v", logs.All())
	}
}

func TestFetchFailureReturnsEmptyAndError(t *testing.T) {
	f := &fixedFetcher{res: transport.Result{Outcome: transport.NoResponse, Err: errors.New("dial tcp: refused")}}
	n := appointments.NewNormalizer(f, nil)

	coll, err := n.Load(context.Background(), model.Actor{Role: model.RoleDoctor, ID: 3})
	if !errors.Is(err, apperr.ErrTransportFailure) {
		t.Fatalf("expected transport failure, got %v", err)
	}
	if coll.Items == nil || len(coll.Items) != 0 {
		t.Errorf("expected empty collection, got %v", coll.Items)
	}
}

func TestLoadRejectsAdminActor(t *testing.T) {
	f := &fixedFetcher{}
	_, err := appointments.NewNormalizer(f, nil).Load(context.Background(), model.Actor{Role: model.RoleAdmin, ID: 1})
	if !errors.Is(err, apperr.ErrValidationFailed) || f.calls != 0 {
		t.Fatalf("got %v after %d calls", err, f.calls)
	}
}

func TestDistinctSortedDates(t *testing.T) {
	coll := appointments.NewCollection([]model.Appointment{
		{AppointmentID: 1, Date: "2024-01-05"},
		{AppointmentID: 2, Date: "2024-01-05"},
		{AppointmentID: 3, Date: "2024-01-07"},
	})
	if want := []string{"2024-01-05", "2024-01-07"}; !reflect.DeepEqual(coll.Dates, want) {
		t.Fatalf("dates %v, want %v", coll.Dates, want)
	}

	v := appointments.NewDateView(coll, time.Date(2024, 1, 5, 9, 0, 0, 0, time.Local))
	if got := v.Visible(); len(got) != 2 || got[0].AppointmentID != 1 || got[1].AppointmentID != 2 {
		t.Errorf("visible on 01-05: %+v", got)
	}
	v.Select("2024-01-07")
	if got := v.Visible(); len(got) != 1 || got[0].AppointmentID != 3 {
		t.Errorf("visible on 01-07: %+v", got)
	}
	v.Select("2024-01-06")
	if !v.Empty() {
		t.Error("expected nothing on 01-06")
	}
}

func TestDateViewDefaultsToToday(t *testing.T) {
	now := time.Date(2025, 3, 14, 23, 30, 0, 0, time.Local)
	v := appointments.NewDateView(appointments.NewCollection(nil), now)
	if v.Selected() != "2025-03-14" {
		t.Fatalf("selected %s", v.Selected())
	}
	if opts := v.Options(); !reflect.DeepEqual(opts, []string{"2025-03-14"}) {
		t.Errorf("options %v", opts)
	}
	if !v.Empty() {
		t.Error("expected empty view")
	}
}

func TestLoadFromStub(t *testing.T) {
	srv, _, st := stubapi.Start(stubapi.Options{})
	defer srv.Close()

	for _, date := range []string{"2024-02-02", "2024-02-01"} {
		if _, err := st.CreateAppointment(date, "checkup", model.StatusPending, 3, 7); err != nil {
			t.Fatal(err)
		}
	}

	client := api.New(transport.New(srv.URL, nil, nil))
	n := appointments.NewNormalizer(client, nil)
	for _, actor := range []model.Actor{{Role: model.RoleDoctor, ID: 3}, {Role: model.RolePatient, ID: 7}} {
		coll, err := n.Load(context.Background(), actor)
		if err != nil {
			t.Fatalf("%v: %v", actor, err)
		}
		if !reflect.DeepEqual(coll.Dates, []string{"2024-02-01", "2024-02-02"}) {
			t.Errorf("%v: dates %v", actor, coll.Dates)
		}
		if coll.Items[0].Doctor == nil || coll.Items[0].Patient == nil {
			t.Errorf("%v: nested records missing", actor)
		}
	}
}
