// Package appointments turns whatever the backend returns for an actor's
// appointment list into a concrete collection, and partitions it by date.
package appointments

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"hospital-portal/internal/apperr"
	"hospital-portal/internal/model"
	"hospital-portal/internal/normalize"
	"hospital-portal/internal/transport"
)

type Fetcher interface {
	FetchAppointments(ctx context.Context, actor model.Actor) transport.Result
}

// Collection is always concrete; Dates holds the distinct appointment dates
// in ascending order.
type Collection struct {
	Items []model.Appointment
	Dates []string
}

func NewCollection(items []model.Appointment) Collection {
	if items == nil {
		items = []model.Appointment{}
	}
	seen := make(map[string]struct{}, len(items))
	dates := []string{}
	for _, a := range items {
		if _, ok := seen[a.Date]; ok {
			continue
		}
		seen[a.Date] = struct{}{}
		dates = append(dates, a.Date)
	}
	sort.Strings(dates)
	return Collection{Items: items, Dates: dates}
}

type Normalizer struct {
	fetch Fetcher
	log   *zap.Logger
}

func NewNormalizer(f Fetcher, log *zap.Logger) *Normalizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Normalizer{fetch: f, log: log}
}

// Load never returns a nil collection. An unrecognized payload is logged and
// read as empty; a failed request is logged and its error returned.
func (n *Normalizer) Load(ctx context.Context, actor model.Actor) (Collection, error) {
	if actor.ID <= 0 || (actor.Role != model.RoleDoctor && actor.Role != model.RolePatient) {
		return NewCollection(nil), apperr.Validation("appointments are listed for a doctor or a patient")
	}

	res := n.fetch.FetchAppointments(ctx, actor)
	if !res.OK() {
		err := res.Error()
		n.log.Error("appointments: fetch failed",
			zap.String("role", string(actor.Role)),
			zap.Int64("id", actor.ID),
			zap.Stringer("outcome", res.Outcome),
			zap.Error(err),
		)
		return NewCollection(nil), err
	}

	decoded := normalize.Decode[model.Appointment](res.Payload)
	if decoded.Shape == normalize.ShapeUnknown {
		n.log.Error("appointments: unrecognized response",
			zap.String("role", string(actor.Role)),
			zap.Int64("id", actor.ID),
			zap.ByteString("payload", truncate(res.Payload, 256)),
			zap.Error(decoded.Err),
		)
		return NewCollection(nil), nil
	}
	n.log.Debug("appointments: loaded",
		zap.Stringer("shape", decoded.Shape),
		zap.Int("count", len(decoded.Items)),
	)
	return NewCollection(decoded.Items), nil
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}
