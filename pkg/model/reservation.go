package model

import (
	"time"
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// CanTransition reports whether a reservation may move from one status to
// another: pending -> confirmed|cancelled, confirmed -> cancelled|completed.
func CanTransition(from, to string) bool {
	switch to {
	case StatusConfirmed:
		return from == StatusPending
	case StatusCancelled:
		return from == StatusPending || from == StatusConfirmed
	case StatusCompleted:
		return from == StatusConfirmed
	}
	return false
}

type Reservation struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	RoomID    string    `json:"room_id" bson:"room_id" validate:"required,mongodb"`
	GuestName string    `json:"guest_name" bson:"guest_name" validate:"required,min=2,max=100"`
	CheckIn   time.Time `json:"check_in" bson:"check_in" validate:"required"`
	CheckOut  time.Time `json:"check_out" bson:"check_out" validate:"required,gtfield=CheckIn"`

	// Derived at admission time from the room's current nightly rate.
	// Later rate changes never touch an admitted reservation.
	Nights           int   `json:"nights" bson:"nights" validate:"omitempty,min=1"`
	NightlyRateCents int64 `json:"nightly_rate_cents" bson:"nightly_rate_cents" validate:"omitempty,gte=0"`
	TotalPriceCents  int64 `json:"total_price_cents" bson:"total_price_cents" validate:"omitempty,gte=0"`

	Status string `json:"status" bson:"status" validate:"required,oneof=pending confirmed cancelled completed"`

	// Removed is the soft-delete axis, independent of Status. A removed
	// reservation is invisible to reads and overlap checks but retained.
	Removed   bool      `json:"-" bson:"removed"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// Interval returns the reservation's stay as a half-open date interval.
func (r *Reservation) Interval() StayInterval {
	return StayInterval{CheckIn: r.CheckIn, CheckOut: r.CheckOut}
}

// Blocks reports whether the reservation still occupies its interval for
// overlap purposes. Cancelled and soft-removed reservations free capacity.
func (r *Reservation) Blocks() bool {
	return r.Status != StatusCancelled && !r.Removed
}

// ReservationUpdate is the reschedule payload. Changing dates re-enters the
// full admission pipeline with the reservation excluded from its own
// overlap check.
type ReservationUpdate struct {
	GuestName string     `json:"guest_name,omitempty" validate:"omitempty,min=2,max=100"`
	CheckIn   *time.Time `json:"check_in,omitempty"`
	CheckOut  *time.Time `json:"check_out,omitempty"`
}
