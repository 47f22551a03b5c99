package pricing

import (
	"testing"
	"time"

	"roomly/pkg/model"
)

func day(d int) time.Time {
	return time.Date(2030, time.January, d, 0, 0, 0, 0, time.UTC)
}

func TestQuote(t *testing.T) {
	var calc Calculator

	tests := []struct {
		name       string
		iv         model.StayInterval
		rateCents  int64
		wantNights int
		wantTotal  int64
	}{
		{
			name:       "four nights at 100",
			iv:         model.StayInterval{CheckIn: day(1), CheckOut: day(5)},
			rateCents:  100_00,
			wantNights: 4,
			wantTotal:  400_00,
		},
		{
			name:       "one night",
			iv:         model.StayInterval{CheckIn: day(1), CheckOut: day(2)},
			rateCents:  89_50,
			wantNights: 1,
			wantTotal:  89_50,
		},
		{
			name:       "same-day booking bills one night",
			iv:         model.StayInterval{CheckIn: day(1), CheckOut: day(1)},
			rateCents:  100_00,
			wantNights: 1,
			wantTotal:  100_00,
		},
		{
			name:       "zero rate",
			iv:         model.StayInterval{CheckIn: day(1), CheckOut: day(4)},
			rateCents:  0,
			wantNights: 3,
			wantTotal:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nights, total := calc.Quote(tt.iv, tt.rateCents)
			if nights != tt.wantNights {
				t.Errorf("Quote() nights = %d, want %d", nights, tt.wantNights)
			}
			if total != tt.wantTotal {
				t.Errorf("Quote() total = %d, want %d", total, tt.wantTotal)
			}
		})
	}
}
