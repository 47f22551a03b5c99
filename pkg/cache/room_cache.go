package cache

import (
	"sync"
	"time"

	"roomly/pkg/model"
)

type entry struct {
	reservations []*model.Reservation
	createdAt    time.Time
}

// RoomReservationCache is a time-bounded cache of per-room reservation
// lists. It is owned by the read path, never by the admission pipeline:
// callers must invalidate the room key on every successful admit,
// reschedule, cancel or remove.
type RoomReservationCache struct {
	mu     sync.RWMutex
	store  map[string]*entry
	ttl    time.Duration
	stopCh chan struct{}
}

func NewRoomReservationCache(ttl time.Duration) *RoomReservationCache {
	c := &RoomReservationCache{
		store:  make(map[string]*entry),
		ttl:    ttl,
		stopCh: make(chan struct{}),
	}

	go c.cleanup()

	return c
}

func (c *RoomReservationCache) Get(roomID string) ([]*model.Reservation, bool) {
	c.mu.RLock()
	e, exists := c.store[roomID]
	c.mu.RUnlock()

	if !exists {
		return nil, false
	}

	if time.Since(e.createdAt) > c.ttl {
		c.mu.Lock()
		delete(c.store, roomID)
		c.mu.Unlock()
		return nil, false
	}

	return e.reservations, true
}

func (c *RoomReservationCache) Set(roomID string, reservations []*model.Reservation) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store[roomID] = &entry{
		reservations: reservations,
		createdAt:    time.Now(),
	}
}

func (c *RoomReservationCache) Invalidate(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.store, roomID)
}

func (c *RoomReservationCache) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mu.Lock()
			for key, e := range c.store {
				if time.Since(e.createdAt) > c.ttl {
					delete(c.store, key)
				}
			}
			c.mu.Unlock()
		case <-c.stopCh:
			return
		}
	}
}

func (c *RoomReservationCache) Stop() {
	close(c.stopCh)
}
