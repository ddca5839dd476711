package service

import (
	"context"
	"errors"
	"time"
)

// RunExpirePendingBatch cancels pending orders older than the configured
// window. Cancellation goes through Cancel so the no-cancel-after-payment
// rule lives in exactly one place; an order that got paid while the batch ran
// is skipped, not an error.
func (s *PaymentService) RunExpirePendingBatch(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-s.cfg.PendingTimeout)
	mappings, err := s.mappings.ListCreatedBefore(ctx, cutoff, s.batchSize())
	if err != nil {
		return err
	}

	var firstErr error
	expired := 0
	for _, mapping := range mappings {
		err := s.Cancel(ctx, mapping.Reference, mapping.PayerID, true)
		switch {
		case err == nil:
			expired++
		case errors.Is(err, ErrOrderAlreadyPaid), errors.Is(err, ErrOrderNotFound):
			// Finalized or already removed while the batch ran.
			continue
		default:
			s.logger.WithError(err).WithField("reference", mapping.Reference).
				Error("Expiry cancellation failed")
			firstErr = keepFirstErr(firstErr, err)
		}
	}

	if expired > 0 {
		s.logger.WithField("expired", expired).Info("Expired stale pending orders")
	}

	return firstErr
}

func keepFirstErr(current error, candidate error) error {
	if current != nil {
		return current
	}
	return candidate
}
