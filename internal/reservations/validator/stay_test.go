package validator

import (
	"testing"
	"time"

	reserrors "roomly/internal/reservations/errors"
	"roomly/pkg/logger"
	"roomly/pkg/model"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Service: "test"})
}

func day(d int) time.Time {
	return time.Date(2030, time.January, d, 0, 0, 0, 0, time.UTC)
}

func TestValidateStay(t *testing.T) {
	v := NewStayValidator(testLogger(), 30)
	now := day(10)

	tests := []struct {
		name       string
		iv         model.StayInterval
		wantReason reserrors.RejectReason
	}{
		{
			name: "valid stay",
			iv:   model.StayInterval{CheckIn: day(11), CheckOut: day(15)},
		},
		{
			name: "starting today is allowed",
			iv:   model.StayInterval{CheckIn: day(10), CheckOut: day(12)},
		},
		{
			name:       "same-day interval is an invalid range, not a past date",
			iv:         model.StayInterval{CheckIn: day(11), CheckOut: day(11)},
			wantReason: reserrors.ReasonInvalidRange,
		},
		{
			name:       "inverted interval",
			iv:         model.StayInterval{CheckIn: day(15), CheckOut: day(11)},
			wantReason: reserrors.ReasonInvalidRange,
		},
		{
			name:       "missing dates",
			iv:         model.StayInterval{},
			wantReason: reserrors.ReasonInvalidRange,
		},
		{
			name:       "past check-in",
			iv:         model.StayInterval{CheckIn: day(5), CheckOut: day(8)},
			wantReason: reserrors.ReasonPastDate,
		},
		{
			name:       "past check-in with inverted range reports the range first",
			iv:         model.StayInterval{CheckIn: day(5), CheckOut: day(3)},
			wantReason: reserrors.ReasonInvalidRange,
		},
		{
			name: "exactly the maximum duration",
			iv:   model.StayInterval{CheckIn: day(11), CheckOut: day(11).AddDate(0, 0, 30)},
		},
		{
			name:       "one night over the maximum",
			iv:         model.StayInterval{CheckIn: day(11), CheckOut: day(11).AddDate(0, 0, 31)},
			wantReason: reserrors.ReasonDurationExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rej := v.ValidateStay(tt.iv, now)
			if tt.wantReason == "" {
				if rej != nil {
					t.Fatalf("expected valid stay, got rejection %v", rej)
				}
				return
			}
			if rej == nil {
				t.Fatalf("expected rejection %s, got none", tt.wantReason)
			}
			if rej.Reason != tt.wantReason {
				t.Errorf("expected reason %s, got %s (%s)", tt.wantReason, rej.Reason, rej.Detail)
			}
			if rej.Detail == "" {
				t.Error("expected human-readable detail on rejection")
			}
		})
	}
}

func TestValidateStay_ClockIsInjected(t *testing.T) {
	v := NewStayValidator(testLogger(), 30)
	iv := model.StayInterval{CheckIn: day(5), CheckOut: day(8)}

	// The same interval is a past date relative to Jan 10 but fine
	// relative to Jan 1.
	if rej := v.ValidateStay(iv, day(10)); rej == nil || rej.Reason != reserrors.ReasonPastDate {
		t.Errorf("expected PastDate with now=Jan 10, got %v", rej)
	}
	if rej := v.ValidateStay(iv, day(1)); rej != nil {
		t.Errorf("expected valid with now=Jan 1, got %v", rej)
	}
}

func TestValidateStruct(t *testing.T) {
	v := NewStayValidator(testLogger(), 30)

	valid := &model.Reservation{
		RoomID:    "507f1f77bcf86cd799439011",
		GuestName: "Ada Lovelace",
		CheckIn:   day(11),
		CheckOut:  day(15),
		Status:    model.StatusPending,
	}
	if err := v.ValidateStruct(valid); err != nil {
		t.Fatalf("expected valid reservation, got %v", err)
	}

	invalid := &model.Reservation{
		RoomID:    "not-an-object-id",
		GuestName: "A",
		CheckIn:   day(15),
		CheckOut:  day(11),
		Status:    "sleeping",
	}
	err := v.ValidateStruct(invalid)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	verrs, ok := err.(ValidationErrors)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if len(verrs) < 3 {
		t.Errorf("expected at least 3 field errors, got %d: %v", len(verrs), verrs)
	}
}
