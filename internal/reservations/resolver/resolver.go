package resolver

import (
	"context"
	"sort"

	"roomly/pkg/model"
)

// ReservationReader is the store read the resolver runs against. When
// called with a session context the read observes the surrounding
// transaction's snapshot.
type ReservationReader interface {
	FindBlockingByRoom(ctx context.Context, roomID string, within model.StayInterval, excludeID string) ([]*model.Reservation, error)
}

// Resolver reports which admitted reservations conflict with a candidate
// interval. It is a read against a snapshot; making the answer hold under
// concurrency is the admission pipeline's job, not the resolver's.
type Resolver struct {
	store ReservationReader
}

func New(store ReservationReader) *Resolver {
	return &Resolver{store: store}
}

// Conflicts returns every blocking reservation for the room whose interval
// overlaps the candidate, ordered by check-in so error reporting is
// deterministic. excludeID skips the reservation being rescheduled.
func (r *Resolver) Conflicts(ctx context.Context, roomID string, iv model.StayInterval, excludeID string) ([]*model.Reservation, error) {
	existing, err := r.store.FindBlockingByRoom(ctx, roomID, iv, excludeID)
	if err != nil {
		return nil, err
	}

	var conflicts []*model.Reservation
	for _, res := range existing {
		if res.ID == excludeID {
			continue
		}
		if !res.Blocks() {
			continue
		}
		if res.Interval().Overlaps(iv) {
			conflicts = append(conflicts, res)
		}
	}

	sort.Slice(conflicts, func(i, j int) bool {
		return conflicts[i].CheckIn.Before(conflicts[j].CheckIn)
	})

	return conflicts, nil
}

// FirstConflict returns the earliest-check-in conflicting reservation, or
// nil when the interval is free.
func (r *Resolver) FirstConflict(ctx context.Context, roomID string, iv model.StayInterval, excludeID string) (*model.Reservation, error) {
	conflicts, err := r.Conflicts(ctx, roomID, iv, excludeID)
	if err != nil {
		return nil, err
	}
	if len(conflicts) == 0 {
		return nil, nil
	}
	return conflicts[0], nil
}
