package model

import "time"

// ReservationLock is a per-room advisory lock held for the duration of one
// admission attempt. The unique _id makes concurrent acquisition
// first-committer-wins; a TTL index on expires_at reaps abandoned locks.
type ReservationLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
