package model

import "time"

// Room is the bookable unit reservations compete for. The admission
// pipeline only reads it for the current nightly rate.
type Room struct {
	ID               string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Number           string    `json:"number" bson:"number" validate:"required,min=1,max=20"`
	NightlyRateCents int64     `json:"nightly_rate_cents" bson:"nightly_rate_cents" validate:"gte=0"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}
