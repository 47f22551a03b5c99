package mongo

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	apperrors "roomly/pkg/errors"
)

type TransactionFunc func(ctx mongo.SessionContext) error

type TransactionManager interface {
	ExecuteTransaction(ctx context.Context, fn TransactionFunc) error
}

type mongoTransactionManager struct {
	client     *mongo.Client
	maxRetries int
	backoff    time.Duration
}

// NewTransactionManager wraps resolve+commit sequences in a multi-document
// transaction. Transient transaction errors (write-write conflicts between
// concurrent admissions) are retried up to maxRetries times with jittered
// backoff before surfacing a retryable fault.
func NewTransactionManager(client *mongo.Client, maxRetries int, backoff time.Duration) TransactionManager {
	return &mongoTransactionManager{
		client:     client,
		maxRetries: maxRetries,
		backoff:    backoff,
	}
}

func (m *mongoTransactionManager) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	var lastErr error

	for attempt := 0; ; attempt++ {
		lastErr = m.runOnce(ctx, fn)
		if lastErr == nil {
			return nil
		}

		// Business outcomes and other application errors pass through
		// untouched; only infrastructure-level conflicts are retried.
		if apperrors.IsAppError(lastErr) {
			return lastErr
		}
		if !isTransient(lastErr) || attempt >= m.maxRetries {
			break
		}

		select {
		case <-time.After(jitter(m.backoff, attempt)):
		case <-ctx.Done():
			return apperrors.Timeout("transaction aborted by context deadline")
		}
	}

	if isTransient(lastErr) {
		return apperrors.TransientInternal("transaction retries exhausted", lastErr)
	}
	return fmt.Errorf("transaction failed: %w", lastErr)
}

func (m *mongoTransactionManager) runOnce(ctx context.Context, fn TransactionFunc) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (any, error) {
		return nil, fn(sessCtx)
	})
	return err
}

func isTransient(err error) bool {
	if err == nil {
		return false
	}
	le, ok := err.(interface{ HasErrorLabel(string) bool })
	if !ok {
		return false
	}
	return le.HasErrorLabel("TransientTransactionError") ||
		le.HasErrorLabel("UnknownTransactionCommitResult")
}

// jitter spreads retries of competing admissions so they do not collide
// again in lockstep.
func jitter(base time.Duration, attempt int) time.Duration {
	d := base << attempt
	return d/2 + time.Duration(rand.Int63n(int64(d/2)+1))
}
