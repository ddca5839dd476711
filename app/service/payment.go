package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hirevia/ms-go-payments/app/entity"
	"github.com/hirevia/ms-go-payments/app/factory"
	"github.com/hirevia/ms-go-payments/app/gateway"
	"github.com/hirevia/ms-go-payments/app/types"
	"github.com/hirevia/ms-go-payments/config"
	"github.com/sirupsen/logrus"
)

const defaultBatchSize = int32(100)

type orderMappingRepository interface {
	Save(ctx context.Context, mapping *entity.OrderMapping) error
	Get(ctx context.Context, reference string) (*entity.OrderMapping, error)
	Delete(ctx context.Context, reference string) error
	ListByPayer(ctx context.Context, payerID uint64) ([]*entity.OrderMapping, error)
	ListCreatedBefore(ctx context.Context, cutoff time.Time, limit int32) ([]*entity.OrderMapping, error)
}

type paymentLedger interface {
	FindByTransactionID(ctx context.Context, transactionID string) (*entity.Payment, error)
	CreateWithSubscription(ctx context.Context, payment *entity.Payment, subscription *entity.Subscription) error
}

type planDirectory interface {
	FindByID(ctx context.Context, id uint64) (*entity.Plan, error)
}

type subscriptionDirectory interface {
	FindByPaymentID(ctx context.Context, paymentID uint64) (*entity.Subscription, error)
}

type companyTagger interface {
	Attach(ctx context.Context, companyID uint64, tag string) error
}

type notifier interface {
	Notify(ctx context.Context, payerID uint64, title, content, category string) error
	LogActivity(ctx context.Context, payerID uint64, text string) error
}

type PaymentService struct {
	mappings orderMappingRepository
	ledger   paymentLedger
	plans    planDirectory
	subs     subscriptionDirectory
	tagger   companyTagger
	notifier notifier
	gateways *gateway.Registry
	cfg      config.PaymentsConfig
	logger   logrus.FieldLogger
}

func NewPaymentService(
	mappings orderMappingRepository,
	ledger paymentLedger,
	plans planDirectory,
	subs subscriptionDirectory,
	tagger companyTagger,
	notifier notifier,
	gateways *gateway.Registry,
	cfg config.PaymentsConfig,
) *PaymentService {
	return &PaymentService{
		mappings: mappings,
		ledger:   ledger,
		plans:    plans,
		subs:     subs,
		tagger:   tagger,
		notifier: notifier,
		gateways: gateways,
		cfg:      cfg,
		logger:   factory.NewModuleLogger("payments-service"),
	}
}

type CreateOrderResult struct {
	Reference string
	Gateway   types.GatewayType
	Amount    int64
	PayURL    string
	QR        *gateway.QRPayload
}

// CreateOrder persists the pending mapping before the reference is handed to
// the gateway, so no completion signal can ever race ahead of the mapping's
// existence. A gateway failure rolls the mapping back and fails the whole
// call: no partial reference is disclosed.
func (s *PaymentService) CreateOrder(ctx context.Context, payerID uint64, req *types.CreateOrderRequest, clientIP string) (*CreateOrderResult, error) {
	if payerID == 0 {
		return nil, ErrInvalidRequest
	}

	gatewayType, err := types.ParseGatewayType(req.Gateway)
	if err != nil {
		return nil, ErrGatewayUnsupported
	}
	gatewayClient, err := s.gateways.Get(int32(gatewayType))
	if err != nil {
		if errors.Is(err, gateway.ErrGatewayNotSupported) {
			return nil, ErrGatewayUnsupported
		}
		return nil, err
	}

	reference := gateway.NewReference(s.cfg.ReferencePrefix)

	var companyID *uint64
	if req.CompanyID > 0 {
		id := req.CompanyID
		companyID = &id
	}

	mapping := &entity.OrderMapping{
		Reference: reference,
		PayerID:   payerID,
		Amount:    req.Amount,
		PlanID:    req.PlanID,
		CompanyID: companyID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.mappings.Save(ctx, mapping); err != nil {
		return nil, fmt.Errorf("persist order mapping: %w", err)
	}

	output, err := gatewayClient.CreateOrder(ctx, &gateway.CreateOrderInput{
		Reference:   reference,
		Amount:      req.Amount,
		Description: req.Description,
		PayerID:     payerID,
		ClientIP:    clientIP,
	})
	if err != nil {
		if deleteErr := s.mappings.Delete(ctx, reference); deleteErr != nil {
			s.logger.WithError(deleteErr).WithField("reference", reference).
				Warn("Failed to remove mapping after gateway error")
		}
		return nil, fmt.Errorf("create order at gateway: %w", err)
	}

	return &CreateOrderResult{
		Reference: reference,
		Gateway:   gatewayType,
		Amount:    req.Amount,
		PayURL:    output.PayURL,
		QR:        output.QR,
	}, nil
}

type StatusResult struct {
	Status       types.PaymentStatus
	Amount       int64
	Subscription *entity.Subscription
}

// Status reads local state only: the ledger first, then the pending mapping.
// For a recorded payment the subscription it unlocked rides along; a lookup
// failure there degrades to a status without subscription detail.
func (s *PaymentService) Status(ctx context.Context, reference string) (*StatusResult, error) {
	payment, err := s.ledger.FindByTransactionID(ctx, reference)
	if err != nil {
		return nil, err
	}
	if payment != nil {
		result := &StatusResult{Status: types.PaymentStatus(payment.Status), Amount: payment.Amount}
		subscription, subErr := s.subs.FindByPaymentID(ctx, payment.ID)
		if subErr != nil {
			s.logger.WithError(subErr).WithField("reference", reference).
				Warn("Subscription lookup failed for status read")
		} else {
			result.Subscription = subscription
		}
		return result, nil
	}

	mapping, err := s.mappings.Get(ctx, reference)
	if err != nil {
		return nil, err
	}
	if mapping != nil {
		return &StatusResult{Status: types.PaymentStatusPending, Amount: mapping.Amount}, nil
	}

	return nil, ErrOrderNotFound
}

// Cancel removes a pending mapping. A paid order can never be cancelled
// through this path, and only the mapping's payer (or the expiry manager) may
// cancel it.
func (s *PaymentService) Cancel(ctx context.Context, reference string, payerID uint64, byExpiry bool) error {
	payment, err := s.ledger.FindByTransactionID(ctx, reference)
	if err != nil {
		return err
	}
	if payment != nil {
		return ErrOrderAlreadyPaid
	}

	mapping, err := s.mappings.Get(ctx, reference)
	if err != nil {
		return err
	}
	if mapping == nil {
		return ErrOrderNotFound
	}
	if !byExpiry && mapping.PayerID != payerID {
		return ErrNotMappingOwner
	}

	return s.mappings.Delete(ctx, reference)
}

// CancelAll cancels every pending order of a payer. Failures are isolated per
// mapping; the batch continues and reports how many were removed.
func (s *PaymentService) CancelAll(ctx context.Context, payerID uint64) (int, error) {
	mappings, err := s.mappings.ListByPayer(ctx, payerID)
	if err != nil {
		return 0, err
	}

	canceled := 0
	for _, mapping := range mappings {
		if err := s.Cancel(ctx, mapping.Reference, payerID, false); err != nil {
			s.logger.WithError(err).WithField("reference", mapping.Reference).
				Warn("Cancel-all skipped a pending order")
			continue
		}
		canceled++
	}

	return canceled, nil
}

// VerifyWithProvider is the manual query path: ask the gateway for the order
// state and, when the provider reports a completed payment of the expected
// amount, run it through the same finalizer every other channel uses.
func (s *PaymentService) VerifyWithProvider(ctx context.Context, reference string, gatewayRaw string) (*StatusResult, error) {
	gatewayType, err := types.ParseGatewayType(gatewayRaw)
	if err != nil {
		return nil, ErrGatewayUnsupported
	}
	gatewayClient, err := s.gateways.Get(int32(gatewayType))
	if err != nil {
		return nil, ErrGatewayUnsupported
	}

	result, err := gatewayClient.QueryOrder(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("query order at gateway: %w", err)
	}

	if types.PaymentStatus(result.Status) != types.PaymentStatusSuccess {
		return &StatusResult{Status: types.PaymentStatus(result.Status), Amount: result.Amount}, nil
	}

	amount := result.Amount
	if amount == 0 {
		// Some query endpoints omit the amount; trust the mapping then.
		if mapping, mapErr := s.mappings.Get(ctx, reference); mapErr == nil && mapping != nil {
			amount = mapping.Amount
		}
	}

	outcome, err := s.Finalize(ctx, &FinalizeInput{
		Reference: reference,
		Amount:    amount,
		Gateway:   int32(gatewayType),
		Method:    "query",
	})
	if err != nil {
		return nil, err
	}

	status := &StatusResult{Status: types.PaymentStatusSuccess, Amount: amount}
	if outcome.Payment != nil {
		status.Amount = outcome.Payment.Amount
	}
	return status, nil
}

func (s *PaymentService) batchSize() int32 {
	if s.cfg.JobBatchSize > 0 {
		return s.cfg.JobBatchSize
	}
	return defaultBatchSize
}
