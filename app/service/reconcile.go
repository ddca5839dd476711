package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hirevia/ms-go-payments/app/entity"
	"github.com/hirevia/ms-go-payments/app/repository"
	"github.com/hirevia/ms-go-payments/app/types"
	"github.com/sirupsen/logrus"
)

type FinalizeInput struct {
	Reference string
	Amount    int64
	Gateway   int32
	Method    string
}

type FinalizeResult struct {
	Payment *entity.Payment

	// AlreadyFinalized reports that another channel won the race. The caller
	// treats it as the same success outcome the winner saw.
	AlreadyFinalized bool
}

// Finalize converts a verified completion into durable state exactly once.
// Any channel may call it any number of times and in any order; the existence
// check is the fast path and the unique key on the ledger's transaction id is
// the arbiter of last resort when two channels pass the check concurrently.
func (s *PaymentService) Finalize(ctx context.Context, input *FinalizeInput) (*FinalizeResult, error) {
	existing, err := s.ledger.FindByTransactionID(ctx, input.Reference)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.cleanupMapping(ctx, input.Reference)
		return &FinalizeResult{Payment: existing, AlreadyFinalized: true}, nil
	}

	mapping, err := s.mappings.Get(ctx, input.Reference)
	if err != nil {
		return nil, err
	}
	if mapping == nil {
		s.anomalyLogger(input).Error("Completion cannot be attributed to any payer")
		return nil, ErrUnknownReference
	}
	if mapping.Amount != input.Amount {
		s.anomalyLogger(input).WithField("expected_amount", mapping.Amount).
			Error("Completion amount does not match the pending order")
		return nil, ErrAmountMismatch
	}

	now := time.Now().UTC()
	payment := &entity.Payment{
		TransactionID: input.Reference,
		Amount:        input.Amount,
		Currency:      s.cfg.Currency,
		Gateway:       input.Gateway,
		Method:        input.Method,
		Status:        int32(types.PaymentStatusSuccess),
		PayerID:       mapping.PayerID,
		CreatedAt:     now,
	}

	subscription := s.buildSubscription(ctx, mapping, now)

	if err := s.ledger.CreateWithSubscription(ctx, payment, subscription); err != nil {
		if errors.Is(err, repository.ErrPaymentAlreadyExists) {
			winner, findErr := s.ledger.FindByTransactionID(ctx, input.Reference)
			if findErr != nil {
				s.logger.WithError(findErr).WithField("reference", input.Reference).
					Warn("Failed to re-read payment after losing the finalize race")
			}
			s.cleanupMapping(ctx, input.Reference)
			return &FinalizeResult{Payment: winner, AlreadyFinalized: true}, nil
		}
		return nil, fmt.Errorf("record payment: %w", err)
	}

	s.cleanupMapping(ctx, input.Reference)
	s.runSideEffects(ctx, mapping, payment)

	return &FinalizeResult{Payment: payment}, nil
}

// buildSubscription resolves the plan for the mapping, if any. A plan lookup
// failure is downgraded: the payment must still commit.
func (s *PaymentService) buildSubscription(ctx context.Context, mapping *entity.OrderMapping, now time.Time) *entity.Subscription {
	if mapping.PlanID == 0 {
		return nil
	}

	plan, err := s.plans.FindByID(ctx, mapping.PlanID)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"reference": mapping.Reference,
			"plan_id":   mapping.PlanID,
		}).Warn("Plan lookup failed, recording payment without subscription")
		return nil
	}
	if plan == nil {
		return nil
	}

	return &entity.Subscription{
		PayerID:      mapping.PayerID,
		PlanID:       plan.ID,
		AmountPaid:   mapping.Amount,
		StartDate:    now,
		EndDate:      now.AddDate(0, 0, int(plan.DurationDays)),
		JobPostQuota: plan.JobPostLimit,
		CVViewQuota:  plan.CVViewLimit,
		CreatedAt:    now,
	}
}

// runSideEffects performs the auxiliary writes after the atomic unit has
// committed. All of them are best-effort: none may undo a recorded payment.
func (s *PaymentService) runSideEffects(ctx context.Context, mapping *entity.OrderMapping, payment *entity.Payment) {
	if mapping.CompanyID != nil {
		if err := s.tagger.Attach(ctx, *mapping.CompanyID, s.cfg.CompanyTag); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"reference":  payment.TransactionID,
				"company_id": *mapping.CompanyID,
			}).Warn("Company tag attach failed")
		}
	}

	title := "Payment received"
	content := fmt.Sprintf("Your payment %s of %d %s has been confirmed.",
		payment.TransactionID, payment.Amount, payment.Currency)
	if err := s.notifier.Notify(ctx, payment.PayerID, title, content, "payment"); err != nil {
		s.logger.WithError(err).WithField("reference", payment.TransactionID).
			Warn("Payer notification failed")
	}

	activity := fmt.Sprintf("Paid order %s via %s", payment.TransactionID, types.GatewayType(payment.Gateway))
	if err := s.notifier.LogActivity(ctx, payment.PayerID, activity); err != nil {
		s.logger.WithError(err).WithField("reference", payment.TransactionID).
			Warn("Activity log failed")
	}
}

// cleanupMapping deletes the mapping once a payment exists for the reference.
// Correctness does not depend on it (the ledger row already blocks a second
// finalize), so a failure is only logged.
func (s *PaymentService) cleanupMapping(ctx context.Context, reference string) {
	if err := s.mappings.Delete(ctx, reference); err != nil {
		s.logger.WithError(err).WithField("reference", reference).
			Warn("Failed to delete finalized order mapping")
	}
}

func (s *PaymentService) anomalyLogger(input *FinalizeInput) logrus.FieldLogger {
	return s.logger.WithFields(logrus.Fields{
		"reference": input.Reference,
		"amount":    input.Amount,
		"gateway":   types.GatewayType(input.Gateway).String(),
		"method":    input.Method,
	})
}
