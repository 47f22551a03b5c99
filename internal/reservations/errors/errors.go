package errors

import (
	"errors"
	"fmt"
	"time"

	"roomly/pkg/model"
)

var (
	ErrNotFound = errors.New("reservation not found")

	ErrInvalidID = errors.New("invalid reservation ID format")

	ErrRoomNotFound = errors.New("room not found")

	// ErrStaleStatus reports a conditional write that matched nothing
	// because the reservation's status changed since it was read.
	ErrStaleStatus = errors.New("reservation status changed concurrently")
)

// RejectReason classifies why an admission attempt was turned down.
type RejectReason string

const (
	ReasonInvalidRange     RejectReason = "INVALID_RANGE"
	ReasonPastDate         RejectReason = "PAST_DATE"
	ReasonDurationExceeded RejectReason = "DURATION_EXCEEDED"
	ReasonOverlap          RejectReason = "OVERLAP"
)

// Rejection is an expected, reportable admission outcome, not a fault. It
// travels as an error value so callers can branch on it with errors.As and
// surface the human-readable detail to end users.
type Rejection struct {
	Reason RejectReason
	Detail string

	// ConflictID identifies the earliest-check-in conflicting reservation
	// when Reason is ReasonOverlap.
	ConflictID string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("admission rejected (%s): %s", r.Reason, r.Detail)
}

func InvalidRange(detail string) *Rejection {
	return &Rejection{Reason: ReasonInvalidRange, Detail: detail}
}

func PastDate(checkIn, today time.Time) *Rejection {
	return &Rejection{
		Reason: ReasonPastDate,
		Detail: fmt.Sprintf("check-in %s is before today %s",
			checkIn.Format("2006-01-02"), today.Format("2006-01-02")),
	}
}

func DurationExceeded(nights, maxStayDays int) *Rejection {
	return &Rejection{
		Reason: ReasonDurationExceeded,
		Detail: fmt.Sprintf("stay of %d nights exceeds the maximum of %d", nights, maxStayDays),
	}
}

func Overlap(conflict *model.Reservation) *Rejection {
	return &Rejection{
		Reason: ReasonOverlap,
		Detail: fmt.Sprintf("room already booked from %s to %s",
			conflict.CheckIn.Format("2006-01-02"), conflict.CheckOut.Format("2006-01-02")),
		ConflictID: conflict.ID,
	}
}

// AsRejection unwraps err into a Rejection if it is one.
func AsRejection(err error) (*Rejection, bool) {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}
