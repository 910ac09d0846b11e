package appointments

import (
	"time"

	"hospital-portal/internal/model"
)

const EmptyMessage = "No appointments for selected date."

// DateView filters a collection down to one calendar date.
type DateView struct {
	coll     Collection
	selected string
}

// NewDateView selects today's local date, whether or not anything is booked
// on it.
func NewDateView(coll Collection, now time.Time) *DateView {
	return &DateView{coll: coll, selected: now.Local().Format(time.DateOnly)}
}

func (v *DateView) Selected() string { return v.selected }

func (v *DateView) Select(date string) { v.selected = date }

// Options lists the dates a user can pick from. With nothing booked the
// selection itself is the only option.
func (v *DateView) Options() []string {
	if len(v.coll.Dates) == 0 {
		return []string{v.selected}
	}
	out := make([]string, len(v.coll.Dates))
	copy(out, v.coll.Dates)
	return out
}

func (v *DateView) Visible() []model.Appointment {
	out := []model.Appointment{}
	for _, a := range v.coll.Items {
		if a.Date == v.selected {
			out = append(out, a)
		}
	}
	return out
}

func (v *DateView) Empty() bool { return len(v.Visible()) == 0 }
