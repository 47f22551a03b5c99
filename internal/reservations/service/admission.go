package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	reserrors "roomly/internal/reservations/errors"
	"roomly/internal/reservations/pricing"
	"roomly/internal/reservations/repository"
	"roomly/internal/reservations/resolver"
	"roomly/internal/reservations/validator"
	"roomly/pkg/config"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/events"
	"roomly/pkg/model"
	"roomly/pkg/sanitizer"
)

type ReservationService interface {
	Admit(ctx context.Context, reservation *model.Reservation) error
	Reschedule(ctx context.Context, id string, updates *model.ReservationUpdate) (*model.Reservation, error)
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, int64, error)
	GetByRoom(ctx context.Context, roomID string) ([]*model.Reservation, error)
	Confirm(ctx context.Context, id string) (*model.Reservation, error)
	Cancel(ctx context.Context, id string) (*model.Reservation, error)
	Complete(ctx context.Context, id string) (*model.Reservation, error)
	Remove(ctx context.Context, id string) error
}

type reservationService struct {
	repo      repository.ReservationRepository
	lockRepo  repository.ReservationLockRepository
	rooms     repository.RoomRepository
	resolver  *resolver.Resolver
	validator *validator.StayValidator
	pricer    pricing.Calculator
	publisher events.Publisher
	cfg       *config.Config

	// now is the injected clock; the admission rules never read the
	// system clock directly.
	now func() time.Time
}

func NewReservationService(
	repo repository.ReservationRepository,
	lockRepo repository.ReservationLockRepository,
	rooms repository.RoomRepository,
	stayValidator *validator.StayValidator,
	publisher events.Publisher,
	cfg *config.Config,
) ReservationService {
	return &reservationService{
		repo:      repo,
		lockRepo:  lockRepo,
		rooms:     rooms,
		resolver:  resolver.New(repo),
		validator: stayValidator,
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Admit runs the admission pipeline for a new reservation: standalone stay
// rules, then overlap resolution and pricing and the insert as one atomic
// unit under the room's advisory lock. On success the reservation is
// persisted with status pending and its pricing fields filled in.
func (s *reservationService) Admit(ctx context.Context, reservation *model.Reservation) error {
	s.applyDefaults(reservation)
	s.sanitize(reservation)
	if err := s.validateStruct(reservation); err != nil {
		return err
	}

	if rej := s.validator.ValidateStay(reservation.Interval(), s.now()); rej != nil {
		s.cfg.Log.Info("Admission rejected before store access",
			"room_id", reservation.RoomID,
			"reason", rej.Reason,
			"detail", rej.Detail,
		)
		return rej
	}

	room, err := s.lookupRoom(ctx, reservation.RoomID)
	if err != nil {
		return err
	}

	err = s.withRoomLock(ctx, reservation.RoomID, func() error {
		return s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
			conflict, err := s.resolver.FirstConflict(sessCtx, reservation.RoomID, reservation.Interval(), "")
			if err != nil {
				return apperrors.Internal("Failed to check existing reservations", err)
			}
			if conflict != nil {
				return reserrors.Overlap(conflict)
			}

			nights, total := s.pricer.Quote(reservation.Interval(), room.NightlyRateCents)
			reservation.Nights = nights
			reservation.NightlyRateCents = room.NightlyRateCents
			reservation.TotalPriceCents = total
			reservation.Status = model.StatusPending

			if err := s.repo.Create(sessCtx, reservation); err != nil {
				return apperrors.Internal("Failed to persist reservation", err)
			}
			return nil
		})
	})
	if err != nil {
		if rej, ok := reserrors.AsRejection(err); ok {
			s.cfg.Log.Info("Admission rejected on overlap",
				"room_id", reservation.RoomID,
				"conflict_id", rej.ConflictID,
			)
			return rej
		}
		s.cfg.Log.Error("Admission failed", "room_id", reservation.RoomID, "error", err)
		return err
	}

	s.publish(ctx, events.TypeAdmitted, reservation)
	s.cfg.Log.Info("Reservation admitted",
		"id", reservation.ID,
		"room_id", reservation.RoomID,
		"check_in", reservation.CheckIn,
		"check_out", reservation.CheckOut,
		"total_price_cents", reservation.TotalPriceCents,
	)
	return nil
}

// Reschedule re-enters the full admission pipeline for an existing
// reservation, excluding it from its own overlap check. The stay is
// re-priced at the room's current rate.
func (s *reservationService) Reschedule(ctx context.Context, id string, updates *model.ReservationUpdate) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}
	if err := s.validator.ValidateUpdate(updates); err != nil {
		return nil, apperrors.Validation("Invalid reschedule input", map[string]any{"error": err.Error()})
	}

	existing, err := s.findExisting(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Status == model.StatusCancelled || existing.Status == model.StatusCompleted {
		return nil, apperrors.Conflict(fmt.Sprintf("cannot reschedule a %s reservation", existing.Status))
	}

	merged := s.merge(existing, updates)
	s.sanitize(merged)
	if err := s.validateStruct(merged); err != nil {
		return nil, err
	}

	if rej := s.validator.ValidateStay(merged.Interval(), s.now()); rej != nil {
		return nil, rej
	}

	room, err := s.lookupRoom(ctx, merged.RoomID)
	if err != nil {
		return nil, err
	}

	err = s.withRoomLock(ctx, merged.RoomID, func() error {
		return s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
			conflict, err := s.resolver.FirstConflict(sessCtx, merged.RoomID, merged.Interval(), merged.ID)
			if err != nil {
				return apperrors.Internal("Failed to check existing reservations", err)
			}
			if conflict != nil {
				return reserrors.Overlap(conflict)
			}

			nights, total := s.pricer.Quote(merged.Interval(), room.NightlyRateCents)
			merged.Nights = nights
			merged.NightlyRateCents = room.NightlyRateCents
			merged.TotalPriceCents = total

			// The repository write refuses cancelled and completed
			// reservations, so a cancel landing after the legality
			// check above cannot be overwritten here.
			if err := s.repo.Update(sessCtx, id, merged); err != nil {
				if errors.Is(err, reserrors.ErrStaleStatus) {
					return apperrors.Conflict(fmt.Sprintf("reservation %s can no longer be rescheduled", id))
				}
				return apperrors.Internal("Failed to update reservation", err)
			}
			return nil
		})
	})
	if err != nil {
		if rej, ok := reserrors.AsRejection(err); ok {
			return nil, rej
		}
		s.cfg.Log.Error("Reschedule failed", "id", id, "error", err)
		return nil, err
	}

	s.publish(ctx, events.TypeRescheduled, merged)
	s.cfg.Log.Info("Reservation rescheduled", "id", id, "room_id", merged.RoomID)
	return merged, nil
}

// --- Helpers ---

func (s *reservationService) applyDefaults(r *model.Reservation) {
	if r.Status == "" {
		r.Status = model.StatusPending
	}
	iv := r.Interval().Normalize()
	r.CheckIn = iv.CheckIn
	r.CheckOut = iv.CheckOut
}

func (s *reservationService) sanitize(r *model.Reservation) {
	r.GuestName = sanitizer.NormalizeGuestName(r.GuestName)
}

func (s *reservationService) validateStruct(r *model.Reservation) error {
	if err := s.validator.ValidateStruct(r); err != nil {
		s.cfg.Log.Warn("Reservation validation failed", "error", err)
		return apperrors.Validation("Reservation validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *reservationService) merge(existing *model.Reservation, updates *model.ReservationUpdate) *model.Reservation {
	merged := *existing

	if updates.GuestName != "" {
		merged.GuestName = updates.GuestName
	}
	if updates.CheckIn != nil {
		merged.CheckIn = model.DateOnly(*updates.CheckIn)
	}
	if updates.CheckOut != nil {
		merged.CheckOut = model.DateOnly(*updates.CheckOut)
	}

	return &merged
}

func (s *reservationService) lookupRoom(ctx context.Context, roomID string) (*model.Room, error) {
	room, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, reserrors.ErrRoomNotFound) {
			return nil, apperrors.NotFoundWithID("Room", roomID)
		}
		if errors.Is(err, reserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid room ID format")
		}
		return nil, apperrors.Internal("Failed to look up room", err)
	}
	return room, nil
}

func (s *reservationService) findExisting(ctx context.Context, id string) (*model.Reservation, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, reserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Reservation", id)
		}
		if errors.Is(err, reserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid reservation ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve reservation", err)
	}
	return existing, nil
}

const lockReleaseTimeout = 5 * time.Second

// withRoomLock serializes admissions per room. Acquisition is retried a
// bounded number of times with jittered backoff, then gives up with a
// retryable fault so the caller can try the whole admission again.
func (s *reservationService) withRoomLock(ctx context.Context, roomID string, fn func() error) error {
	lockID := fmt.Sprintf("admission_%s", roomID)

	var acquired *model.ReservationLock
	for attempt := 0; ; attempt++ {
		lock, err := s.lockRepo.Create(ctx, &model.ReservationLock{
			ID:        lockID,
			ExpiresAt: s.now().Add(s.cfg.AdmissionLockTTL),
		})
		if err == nil {
			acquired = lock
			break
		}
		if !mongo.IsDuplicateKeyError(err) {
			return apperrors.Internal("Failed to acquire admission lock", err)
		}
		if attempt >= s.cfg.LockAcquireRetries {
			return apperrors.Unavailable("room admission")
		}

		select {
		case <-time.After(lockBackoff(s.cfg.LockRetryBackoff, attempt)):
		case <-ctx.Done():
			return apperrors.Timeout("admission aborted by context deadline")
		}
	}

	defer func() {
		// The release must outlive the request context. Reusing it would
		// leave the room serialized for the full lock TTL whenever the
		// request expires mid-admission.
		releaseCtx, cancel := context.WithTimeout(context.Background(), lockReleaseTimeout)
		defer cancel()
		if err := s.lockRepo.Delete(releaseCtx, acquired.ID); err != nil {
			s.cfg.Log.Warn("Failed to release admission lock", "lock_id", acquired.ID, "error", err)
		}
	}()

	return fn()
}

func (s *reservationService) publish(ctx context.Context, eventType string, r *model.Reservation) {
	if err := s.publisher.Publish(ctx, eventType, r); err != nil {
		s.cfg.Log.Warn("Failed to publish reservation event",
			"event_type", eventType,
			"id", r.ID,
			"error", err,
		)
	}
}

func lockBackoff(base time.Duration, attempt int) time.Duration {
	d := base << attempt
	return d/2 + time.Duration(rand.Int63n(int64(d/2)+1))
}
