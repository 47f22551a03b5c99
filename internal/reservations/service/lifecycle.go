package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	reserrors "roomly/internal/reservations/errors"
	"roomly/pkg/config"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/events"
	"roomly/pkg/model"
)

func (s *reservationService) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}
	return s.findExisting(ctx, id)
}

// GetAll returns a page of reservations plus the total count. The count and
// the page are fetched concurrently.
func (s *reservationService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var (
		wg           sync.WaitGroup
		reservations []*model.Reservation
		total        int64
		findErr      error
		countErr     error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		reservations, findErr = s.repo.FindAll(ctx, limit, offset)
	}()
	go func() {
		defer wg.Done()
		total, countErr = s.repo.Count(ctx)
	}()
	wg.Wait()

	if findErr != nil {
		return nil, 0, apperrors.Internal("Failed to list reservations", findErr)
	}
	if countErr != nil {
		return nil, 0, apperrors.Internal("Failed to count reservations", countErr)
	}
	return reservations, total, nil
}

func (s *reservationService) GetByRoom(ctx context.Context, roomID string) ([]*model.Reservation, error) {
	if roomID == "" {
		return nil, apperrors.InvalidInput("Room ID cannot be empty")
	}

	reservations, err := s.repo.FindByRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, reserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid room ID format")
		}
		return nil, apperrors.Internal("Failed to list room reservations", err)
	}
	return reservations, nil
}

func (s *reservationService) Confirm(ctx context.Context, id string) (*model.Reservation, error) {
	return s.transition(ctx, id, model.StatusConfirmed, events.TypeConfirmed)
}

// Cancel frees the reservation's dates. It never contends for the room's
// admission lock; the blocking filter on the overlap query excludes
// cancelled reservations as soon as the status lands.
func (s *reservationService) Cancel(ctx context.Context, id string) (*model.Reservation, error) {
	return s.transition(ctx, id, model.StatusCancelled, events.TypeCancelled)
}

func (s *reservationService) Complete(ctx context.Context, id string) (*model.Reservation, error) {
	return s.transition(ctx, id, model.StatusCompleted, events.TypeCompleted)
}

func (s *reservationService) transition(ctx context.Context, id string, to string, eventType string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	existing, err := s.findExisting(ctx, id)
	if err != nil {
		return nil, err
	}

	if !model.CanTransition(existing.Status, to) {
		return nil, apperrors.Conflict(fmt.Sprintf("cannot mark a %s reservation as %s", existing.Status, to))
	}

	// The write is conditional on the status the legality check saw. A
	// concurrent transition that lands first makes this one miss, so a
	// Confirm racing a Cancel cannot revive a freed interval.
	if err := s.repo.UpdateStatus(ctx, id, existing.Status, to); err != nil {
		if errors.Is(err, reserrors.ErrStaleStatus) {
			return nil, apperrors.Conflict(fmt.Sprintf("reservation %s changed concurrently, re-read and retry", id))
		}
		if errors.Is(err, reserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Reservation", id)
		}
		return nil, apperrors.Internal("Failed to update reservation status", err)
	}

	existing.Status = to
	s.publish(ctx, eventType, existing)
	s.cfg.Log.Info("Reservation status updated", "id", id, "status", to)
	return existing, nil
}

// Remove soft-deletes a reservation. Removed reservations stop blocking new
// admissions and disappear from reads, but the document stays in the store.
func (s *reservationService) Remove(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	existing, err := s.findExisting(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.SoftRemove(ctx, id); err != nil {
		if errors.Is(err, reserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Reservation", id)
		}
		return apperrors.Internal("Failed to remove reservation", err)
	}

	existing.Removed = true
	s.publish(ctx, events.TypeRemoved, existing)
	s.cfg.Log.Info("Reservation removed", "id", id)
	return nil
}
