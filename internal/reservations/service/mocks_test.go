package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	reserrors "roomly/internal/reservations/errors"
	"roomly/internal/reservations/repository"
	"roomly/internal/reservations/resolver"
	"roomly/internal/reservations/validator"
	"roomly/pkg/config"
	mongotx "roomly/pkg/db/mongo"
	"roomly/pkg/logger"
	"roomly/pkg/model"
)

// Struct validation requires ObjectID-shaped identifiers, so the mocks mint
// fixed-prefix 24-hex IDs.
const (
	testRoomID  = "65f0a1b2c3d4e5f601000001"
	testRoomID2 = "65f0a1b2c3d4e5f601000002"
)

// memReservationRepo is a mutex-guarded in-memory ReservationRepository.
// ExecuteTransaction runs the callback directly; atomicity in tests comes
// from the advisory lock serializing admissions.
type memReservationRepo struct {
	mu           sync.Mutex
	reservations map[string]*model.Reservation
	nextID       int

	createErr error
	findErr   error

	// afterFind runs after FindByID returns, outside the mutex. Tests use
	// it to interleave a concurrent writer between a read and its write.
	afterFind func()

	// onBlockingFind runs at the start of FindBlockingByRoom, inside the
	// admission transaction.
	onBlockingFind func()
}

func newMemReservationRepo() *memReservationRepo {
	return &memReservationRepo{reservations: make(map[string]*model.Reservation)}
}

func (m *memReservationRepo) Create(_ context.Context, r *model.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	r.ID = fmt.Sprintf("65f1%020x", m.nextID)
	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now
	stored := *r
	m.reservations[r.ID] = &stored
	return nil
}

func (m *memReservationRepo) FindByID(_ context.Context, id string) (*model.Reservation, error) {
	m.mu.Lock()
	var cp *model.Reservation
	if r, ok := m.reservations[id]; ok && !r.Removed {
		c := *r
		cp = &c
	}
	m.mu.Unlock()

	if m.afterFind != nil {
		m.afterFind()
	}
	if cp == nil {
		return nil, reserrors.ErrNotFound
	}
	return cp, nil
}

func (m *memReservationRepo) FindAll(_ context.Context, limit int, offset int64) ([]*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Reservation
	for _, r := range m.reservations {
		if r.Removed {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	if int(offset) >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memReservationRepo) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, r := range m.reservations {
		if !r.Removed {
			n++
		}
	}
	return n, nil
}

func (m *memReservationRepo) FindBlockingByRoom(_ context.Context, roomID string, _ model.StayInterval, _ string) ([]*model.Reservation, error) {
	if m.onBlockingFind != nil {
		m.onBlockingFind()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	var out []*model.Reservation
	for _, r := range m.reservations {
		if r.RoomID != roomID || r.Removed {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memReservationRepo) FindByRoom(_ context.Context, roomID string) ([]*model.Reservation, error) {
	return m.FindBlockingByRoom(context.Background(), roomID, model.StayInterval{}, "")
}

func (m *memReservationRepo) Update(_ context.Context, id string, r *model.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.reservations[id]
	if !ok || existing.Removed ||
		existing.Status == model.StatusCancelled || existing.Status == model.StatusCompleted {
		return reserrors.ErrStaleStatus
	}
	cp := *r
	cp.ID = id
	cp.Status = existing.Status
	cp.CreatedAt = existing.CreatedAt
	cp.UpdatedAt = time.Now()
	m.reservations[id] = &cp
	return nil
}

func (m *memReservationRepo) UpdateStatus(_ context.Context, id string, from string, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reservations[id]
	if !ok || r.Removed || r.Status != from {
		return reserrors.ErrStaleStatus
	}
	r.Status = to
	r.UpdatedAt = time.Now()
	return nil
}

func (m *memReservationRepo) SoftRemove(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reservations[id]
	if !ok || r.Removed {
		return reserrors.ErrNotFound
	}
	r.Removed = true
	r.UpdatedAt = time.Now()
	return nil
}

func (m *memReservationRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

func (m *memReservationRepo) seed(r *model.Reservation) *model.Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	if r.ID == "" {
		r.ID = fmt.Sprintf("65f1%020x", m.nextID)
	}
	if r.Status == "" {
		r.Status = model.StatusConfirmed
	}
	stored := *r
	m.reservations[r.ID] = &stored
	return r
}

func (m *memReservationRepo) get(id string) *model.Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reservations[id]
	if !ok {
		return nil
	}
	cp := *r
	return &cp
}

func (m *memReservationRepo) setStatus(id, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reservations[id].Status = status
}

func (m *memReservationRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.reservations)
}

// memLockRepo mirrors the duplicate-key contention behavior of the lock
// collection.
type memLockRepo struct {
	mu      sync.Mutex
	held    map[string]bool
	fail    bool // always report contention
	creates int
}

func newMemLockRepo() *memLockRepo {
	return &memLockRepo{held: make(map[string]bool)}
}

func duplicateKeyErr() error {
	return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}
}

func (m *memLockRepo) Create(_ context.Context, lock *model.ReservationLock) (*model.ReservationLock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	if m.fail || m.held[lock.ID] {
		return nil, duplicateKeyErr()
	}
	m.held[lock.ID] = true
	return lock, nil
}

func (m *memLockRepo) Delete(ctx context.Context, lockID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, lockID)
	return nil
}

func (m *memLockRepo) heldCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.held)
}

type memRoomRepo struct {
	mu    sync.Mutex
	rooms map[string]*model.Room
}

func newMemRoomRepo(rooms ...*model.Room) *memRoomRepo {
	m := &memRoomRepo{rooms: make(map[string]*model.Room)}
	for _, r := range rooms {
		m.rooms[r.ID] = r
	}
	return m
}

func (m *memRoomRepo) FindByID(_ context.Context, id string) (*model.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[id]
	if !ok {
		return nil, reserrors.ErrRoomNotFound
	}
	cp := *room
	return &cp, nil
}

func (m *memRoomRepo) setRate(id string, rateCents int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rooms[id].NightlyRateCents = rateCents
}

type publishedEvent struct {
	eventType string
	id        string
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, r *model.Reservation) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{eventType: eventType, id: r.ID})
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.eventType
	}
	return out
}

type testHarness struct {
	svc    *reservationService
	repo   *memReservationRepo
	locks  *memLockRepo
	rooms  *memRoomRepo
	events *recordingPublisher
}

// testNow is the injected clock for every service test.
var testNow = time.Date(2026, 3, 1, 15, 30, 0, 0, time.UTC)

// d returns midnight UTC on the given day of March 2026.
func d(day int) time.Time {
	return time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC)
}

func newHarness(rooms ...*model.Room) *testHarness {
	if len(rooms) == 0 {
		rooms = []*model.Room{{ID: testRoomID, Number: "101", NightlyRateCents: 100_00}}
	}

	log := logger.New(logger.Config{Level: "error", Format: "text", Output: io.Discard})
	cfg := &config.Config{
		MaxStayDays:        30,
		AdmissionLockTTL:   10 * time.Second,
		LockAcquireRetries: 10,
		LockRetryBackoff:   time.Millisecond,
		Log:                log,
	}

	h := &testHarness{
		repo:   newMemReservationRepo(),
		locks:  newMemLockRepo(),
		rooms:  newMemRoomRepo(rooms...),
		events: &recordingPublisher{},
	}
	h.svc = &reservationService{
		repo:      h.repo,
		lockRepo:  h.locks,
		rooms:     h.rooms,
		resolver:  resolver.New(h.repo),
		validator: validator.NewStayValidator(log, cfg.MaxStayDays),
		publisher: h.events,
		cfg:       cfg,
		now:       func() time.Time { return testNow },
	}
	return h
}

var _ repository.ReservationRepository = (*memReservationRepo)(nil)
var _ repository.ReservationLockRepository = (*memLockRepo)(nil)
var _ repository.RoomRepository = (*memRoomRepo)(nil)
