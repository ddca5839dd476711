package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hirevia/ms-go-payments/app/entity"
	"github.com/hirevia/ms-go-payments/app/gateway"
	"github.com/hirevia/ms-go-payments/app/repository"
	"github.com/hirevia/ms-go-payments/app/types"
	"github.com/hirevia/ms-go-payments/config"
)

type serviceMappingRepo struct {
	mu       sync.Mutex
	mappings map[string]*entity.OrderMapping
	saveErr  error
}

func newServiceMappingRepo() *serviceMappingRepo {
	return &serviceMappingRepo{mappings: map[string]*entity.OrderMapping{}}
}

func (r *serviceMappingRepo) Save(_ context.Context, mapping *entity.OrderMapping) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	if _, ok := r.mappings[mapping.Reference]; ok {
		return repository.ErrMappingAlreadyExists
	}
	copyItem := *mapping
	r.mappings[mapping.Reference] = &copyItem
	return nil
}

func (r *serviceMappingRepo) Get(_ context.Context, reference string) (*entity.OrderMapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.mappings[reference]
	if !ok {
		return nil, nil
	}
	copyItem := *item
	return &copyItem, nil
}

func (r *serviceMappingRepo) Delete(_ context.Context, reference string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.mappings, reference)
	return nil
}

func (r *serviceMappingRepo) ListByPayer(_ context.Context, payerID uint64) ([]*entity.OrderMapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]*entity.OrderMapping, 0)
	for _, item := range r.mappings {
		if item.PayerID == payerID {
			copyItem := *item
			items = append(items, &copyItem)
		}
	}
	return items, nil
}

func (r *serviceMappingRepo) ListCreatedBefore(_ context.Context, cutoff time.Time, limit int32) ([]*entity.OrderMapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]*entity.OrderMapping, 0)
	for _, item := range r.mappings {
		if !item.CreatedAt.After(cutoff) {
			copyItem := *item
			items = append(items, &copyItem)
		}
	}
	if limit > 0 && int(limit) < len(items) {
		items = items[:limit]
	}
	return items, nil
}

func (r *serviceMappingRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.mappings)
}

type serviceLedger struct {
	mu            sync.Mutex
	payments      map[string]*entity.Payment
	subscriptions map[uint64]*entity.Subscription
	nextID        uint64
	createErr     error
}

func newServiceLedger() *serviceLedger {
	return &serviceLedger{
		payments:      map[string]*entity.Payment{},
		subscriptions: map[uint64]*entity.Subscription{},
		nextID:        1,
	}
}

func (r *serviceLedger) FindByTransactionID(_ context.Context, transactionID string) (*entity.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.payments[transactionID]
	if !ok {
		return nil, nil
	}
	copyItem := *item
	return &copyItem, nil
}

func (r *serviceLedger) CreateWithSubscription(_ context.Context, payment *entity.Payment, subscription *entity.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.payments[payment.TransactionID]; ok {
		return repository.ErrPaymentAlreadyExists
	}
	payment.ID = r.nextID
	r.nextID++
	copyItem := *payment
	r.payments[payment.TransactionID] = &copyItem
	if subscription != nil {
		subscription.PaymentID = payment.ID
		copySub := *subscription
		r.subscriptions[payment.ID] = &copySub
	}
	return nil
}

func (r *serviceLedger) FindByPaymentID(_ context.Context, paymentID uint64) (*entity.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.subscriptions[paymentID]
	if !ok {
		return nil, nil
	}
	copyItem := *item
	return &copyItem, nil
}

func (r *serviceLedger) paymentCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.payments)
}

type servicePlans struct {
	plans map[uint64]*entity.Plan
	err   error
}

func (r *servicePlans) FindByID(_ context.Context, id uint64) (*entity.Plan, error) {
	if r.err != nil {
		return nil, r.err
	}
	item, ok := r.plans[id]
	if !ok {
		return nil, nil
	}
	copyItem := *item
	return &copyItem, nil
}

type serviceTagger struct {
	mu       sync.Mutex
	attached map[uint64]string
	err      error
}

func (r *serviceTagger) Attach(_ context.Context, companyID uint64, tag string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if r.attached == nil {
		r.attached = map[uint64]string{}
	}
	r.attached[companyID] = tag
	return nil
}

type serviceNotifier struct {
	mu         sync.Mutex
	notified   int
	activities int
	err        error
}

func (r *serviceNotifier) Notify(_ context.Context, _ uint64, _, _, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.notified++
	return nil
}

func (r *serviceNotifier) LogActivity(_ context.Context, _ uint64, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.activities++
	return nil
}

type serviceGateway struct {
	code      int32
	createOut *gateway.CreateOrderOutput
	createErr error
	queryOut  *gateway.QueryResult
	queryErr  error
}

func (g *serviceGateway) Code() int32 {
	if g.code != 0 {
		return g.code
	}
	return int32(types.GatewayBankTransfer)
}

func (g *serviceGateway) CreateOrder(context.Context, *gateway.CreateOrderInput) (*gateway.CreateOrderOutput, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	if g.createOut != nil {
		return g.createOut, nil
	}
	return &gateway.CreateOrderOutput{PayURL: "https://pay.example/checkout"}, nil
}

func (g *serviceGateway) VerifyAndParseNotification(context.Context, []byte, string) (*gateway.Notification, error) {
	return nil, errors.New("not used")
}

func (g *serviceGateway) QueryOrder(context.Context, string) (*gateway.QueryResult, error) {
	if g.queryErr != nil {
		return nil, g.queryErr
	}
	if g.queryOut != nil {
		return g.queryOut, nil
	}
	return &gateway.QueryResult{Status: int32(types.PaymentStatusPending)}, nil
}

type serviceFixture struct {
	mappings *serviceMappingRepo
	ledger   *serviceLedger
	plans    *servicePlans
	tagger   *serviceTagger
	notifier *serviceNotifier
	gw       *serviceGateway
	svc      *PaymentService
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		mappings: newServiceMappingRepo(),
		ledger:   newServiceLedger(),
		plans:    &servicePlans{plans: map[uint64]*entity.Plan{}},
		tagger:   &serviceTagger{},
		notifier: &serviceNotifier{},
		gw:       &serviceGateway{},
	}
	f.svc = NewPaymentService(
		f.mappings,
		f.ledger,
		f.plans,
		f.ledger,
		f.tagger,
		f.notifier,
		gateway.NewRegistry(f.gw),
		config.PaymentsConfig{
			ReferencePrefix: "TST",
			Currency:        "VND",
			CompanyTag:      "recommended",
			PendingTimeout:  time.Minute,
			JobBatchSize:    100,
		},
	)
	return f
}

func TestCreateOrderSavesMappingBeforeGatewayContact(t *testing.T) {
	f := newServiceFixture()

	result, err := f.svc.CreateOrder(context.Background(), 7, &types.CreateOrderRequest{
		Gateway: "sepay",
		Amount:  500000,
	}, "203.0.113.9")
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if result.Reference == "" {
		t.Fatal("expected a reference")
	}

	mapping, err := f.mappings.Get(context.Background(), result.Reference)
	if err != nil {
		t.Fatalf("get mapping failed: %v", err)
	}
	if mapping == nil {
		t.Fatal("expected mapping to be persisted")
	}
	if mapping.PayerID != 7 || mapping.Amount != 500000 {
		t.Fatalf("unexpected mapping: %+v", mapping)
	}
}

func TestCreateOrderGatewayFailureRemovesMapping(t *testing.T) {
	f := newServiceFixture()
	f.gw.createErr = errors.New("gateway down")

	_, err := f.svc.CreateOrder(context.Background(), 7, &types.CreateOrderRequest{
		Gateway: "sepay",
		Amount:  500000,
	}, "")
	if err == nil {
		t.Fatal("expected error when gateway fails")
	}
	if f.mappings.count() != 0 {
		t.Fatalf("expected mapping to be rolled back, have %d", f.mappings.count())
	}
}

func TestCreateOrderUnknownGateway(t *testing.T) {
	f := newServiceFixture()

	_, err := f.svc.CreateOrder(context.Background(), 7, &types.CreateOrderRequest{
		Gateway: "paypal",
		Amount:  100,
	}, "")
	if !errors.Is(err, ErrGatewayUnsupported) {
		t.Fatalf("expected ErrGatewayUnsupported, got %v", err)
	}
}

func seedMapping(f *serviceFixture, reference string, payerID uint64, amount int64, planID uint64, companyID *uint64) {
	f.mappings.mappings[reference] = &entity.OrderMapping{
		Reference: reference,
		PayerID:   payerID,
		Amount:    amount,
		PlanID:    planID,
		CompanyID: companyID,
		CreatedAt: time.Now().UTC(),
	}
}

func TestFinalizeRecordsPaymentAndSubscription(t *testing.T) {
	f := newServiceFixture()
	f.plans.plans[3] = &entity.Plan{ID: 3, Name: "Pro", DurationDays: 30, JobPostLimit: 10, CVViewLimit: 100}
	companyID := uint64(44)
	seedMapping(f, "TST202601021504059999", 7, 500000, 3, &companyID)

	result, err := f.svc.Finalize(context.Background(), &FinalizeInput{
		Reference: "TST202601021504059999",
		Amount:    500000,
		Gateway:   int32(types.GatewayBankTransfer),
		Method:    "bank_transfer",
	})
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if result.AlreadyFinalized {
		t.Fatal("first finalize must not report already finalized")
	}
	if result.Payment == nil || result.Payment.Status != int32(types.PaymentStatusSuccess) {
		t.Fatalf("unexpected payment: %+v", result.Payment)
	}

	sub := f.ledger.subscriptions[result.Payment.ID]
	if sub == nil {
		t.Fatal("expected subscription for plan-backed order")
	}
	if sub.JobPostQuota != 10 || sub.CVViewQuota != 100 {
		t.Fatalf("unexpected quotas: %+v", sub)
	}
	wantEnd := sub.StartDate.AddDate(0, 0, 30)
	if !sub.EndDate.Equal(wantEnd) {
		t.Fatalf("unexpected end date: got %v want %v", sub.EndDate, wantEnd)
	}

	if f.mappings.count() != 0 {
		t.Fatal("expected mapping to be deleted after finalize")
	}
	if f.tagger.attached[44] != "recommended" {
		t.Fatalf("expected company tag, have %v", f.tagger.attached)
	}
	if f.notifier.notified != 1 || f.notifier.activities != 1 {
		t.Fatalf("expected one notification and one activity, have %d/%d", f.notifier.notified, f.notifier.activities)
	}
}

func TestFinalizeDuplicateSignalKeepsSinglePayment(t *testing.T) {
	f := newServiceFixture()
	seedMapping(f, "TST202601021504050001", 7, 1000, 0, nil)

	input := &FinalizeInput{Reference: "TST202601021504050001", Amount: 1000, Gateway: int32(types.GatewayEWallet)}
	first, err := f.svc.Finalize(context.Background(), input)
	if err != nil {
		t.Fatalf("first finalize failed: %v", err)
	}
	second, err := f.svc.Finalize(context.Background(), input)
	if err != nil {
		t.Fatalf("second finalize failed: %v", err)
	}
	if !second.AlreadyFinalized {
		t.Fatal("second finalize must report already finalized")
	}
	if second.Payment.ID != first.Payment.ID {
		t.Fatalf("expected same payment, first=%d second=%d", first.Payment.ID, second.Payment.ID)
	}
	if f.ledger.paymentCount() != 1 {
		t.Fatalf("expected exactly one payment, have %d", f.ledger.paymentCount())
	}
	if f.notifier.notified != 1 {
		t.Fatalf("expected side effects to run once, notified %d times", f.notifier.notified)
	}
}

func TestFinalizeConcurrentChannelsRecordOnePayment(t *testing.T) {
	f := newServiceFixture()
	seedMapping(f, "TST202601021504050002", 7, 2500, 0, nil)

	const channels = 8
	var wg sync.WaitGroup
	winners := make(chan bool, channels)
	for i := 0; i < channels; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := f.svc.Finalize(context.Background(), &FinalizeInput{
				Reference: "TST202601021504050002",
				Amount:    2500,
				Gateway:   int32(types.GatewayCard),
			})
			if err != nil {
				t.Errorf("finalize failed: %v", err)
				return
			}
			winners <- !result.AlreadyFinalized
		}()
	}
	wg.Wait()
	close(winners)

	wins := 0
	for won := range winners {
		if won {
			wins++
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one winning channel, have %d", wins)
	}
	if f.ledger.paymentCount() != 1 {
		t.Fatalf("expected exactly one payment, have %d", f.ledger.paymentCount())
	}
}

func TestFinalizeUnknownReference(t *testing.T) {
	f := newServiceFixture()

	_, err := f.svc.Finalize(context.Background(), &FinalizeInput{
		Reference: "TST000000000000000000",
		Amount:    1000,
		Gateway:   int32(types.GatewayBankTransfer),
	})
	if !errors.Is(err, ErrUnknownReference) {
		t.Fatalf("expected ErrUnknownReference, got %v", err)
	}
	if f.ledger.paymentCount() != 0 {
		t.Fatal("no payment may be recorded without a mapping")
	}
}

func TestFinalizeAmountMismatch(t *testing.T) {
	f := newServiceFixture()
	seedMapping(f, "TST202601021504050003", 7, 1000, 0, nil)

	_, err := f.svc.Finalize(context.Background(), &FinalizeInput{
		Reference: "TST202601021504050003",
		Amount:    999,
		Gateway:   int32(types.GatewayBankTransfer),
	})
	if !errors.Is(err, ErrAmountMismatch) {
		t.Fatalf("expected ErrAmountMismatch, got %v", err)
	}
	if f.ledger.paymentCount() != 0 {
		t.Fatal("no payment may be recorded on amount mismatch")
	}
	if f.mappings.count() != 1 {
		t.Fatal("mapping must survive a mismatched completion")
	}
}

func TestFinalizePlanLookupFailureStillRecordsPayment(t *testing.T) {
	f := newServiceFixture()
	f.plans.err = errors.New("plans unavailable")
	seedMapping(f, "TST202601021504050004", 7, 1000, 3, nil)

	result, err := f.svc.Finalize(context.Background(), &FinalizeInput{
		Reference: "TST202601021504050004",
		Amount:    1000,
		Gateway:   int32(types.GatewayBankTransfer),
	})
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if result.Payment == nil {
		t.Fatal("expected payment despite plan failure")
	}
	if len(f.ledger.subscriptions) != 0 {
		t.Fatal("expected no subscription when the plan cannot be resolved")
	}
}

func TestFinalizeSideEffectFailureDoesNotUndoPayment(t *testing.T) {
	f := newServiceFixture()
	f.notifier.err = errors.New("notifications down")
	companyID := uint64(9)
	f.tagger.err = errors.New("tags down")
	seedMapping(f, "TST202601021504050005", 7, 1000, 0, &companyID)

	result, err := f.svc.Finalize(context.Background(), &FinalizeInput{
		Reference: "TST202601021504050005",
		Amount:    1000,
		Gateway:   int32(types.GatewayBankTransfer),
	})
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if result.Payment == nil || f.ledger.paymentCount() != 1 {
		t.Fatal("payment must survive side-effect failures")
	}
}

func TestStatusPrefersLedgerOverMapping(t *testing.T) {
	f := newServiceFixture()
	seedMapping(f, "TST202601021504050006", 7, 1000, 0, nil)

	status, err := f.svc.Status(context.Background(), "TST202601021504050006")
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if status.Status != types.PaymentStatusPending {
		t.Fatalf("expected pending before finalize, got %v", status.Status)
	}

	if _, err := f.svc.Finalize(context.Background(), &FinalizeInput{
		Reference: "TST202601021504050006",
		Amount:    1000,
		Gateway:   int32(types.GatewayBankTransfer),
	}); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	status, err = f.svc.Status(context.Background(), "TST202601021504050006")
	if err != nil {
		t.Fatalf("status after finalize failed: %v", err)
	}
	if status.Status != types.PaymentStatusSuccess {
		t.Fatalf("expected success after finalize, got %v", status.Status)
	}
}

func TestStatusCarriesUnlockedSubscription(t *testing.T) {
	f := newServiceFixture()
	f.plans.plans[3] = &entity.Plan{ID: 3, Name: "Pro", DurationDays: 30, JobPostLimit: 10, CVViewLimit: 100}
	seedMapping(f, "TST202601021504050018", 7, 1000, 3, nil)

	if _, err := f.svc.Finalize(context.Background(), &FinalizeInput{
		Reference: "TST202601021504050018",
		Amount:    1000,
		Gateway:   int32(types.GatewayBankTransfer),
	}); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	status, err := f.svc.Status(context.Background(), "TST202601021504050018")
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if status.Subscription == nil {
		t.Fatal("expected subscription on a plan-backed payment")
	}
	if status.Subscription.PlanID != 3 || status.Subscription.JobPostQuota != 10 {
		t.Fatalf("unexpected subscription: %+v", status.Subscription)
	}
}

func TestStatusUnknownReference(t *testing.T) {
	f := newServiceFixture()

	_, err := f.svc.Status(context.Background(), "TST000000000000000000")
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestCancelPaidOrderIsRejected(t *testing.T) {
	f := newServiceFixture()
	seedMapping(f, "TST202601021504050007", 7, 1000, 0, nil)
	if _, err := f.svc.Finalize(context.Background(), &FinalizeInput{
		Reference: "TST202601021504050007",
		Amount:    1000,
		Gateway:   int32(types.GatewayBankTransfer),
	}); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	err := f.svc.Cancel(context.Background(), "TST202601021504050007", 7, false)
	if !errors.Is(err, ErrOrderAlreadyPaid) {
		t.Fatalf("expected ErrOrderAlreadyPaid, got %v", err)
	}
}

func TestCancelRequiresMappingOwner(t *testing.T) {
	f := newServiceFixture()
	seedMapping(f, "TST202601021504050008", 7, 1000, 0, nil)

	err := f.svc.Cancel(context.Background(), "TST202601021504050008", 8, false)
	if !errors.Is(err, ErrNotMappingOwner) {
		t.Fatalf("expected ErrNotMappingOwner, got %v", err)
	}
	if f.mappings.count() != 1 {
		t.Fatal("mapping must survive a foreign cancel attempt")
	}

	if err := f.svc.Cancel(context.Background(), "TST202601021504050008", 7, false); err != nil {
		t.Fatalf("owner cancel failed: %v", err)
	}
	if f.mappings.count() != 0 {
		t.Fatal("expected mapping to be removed")
	}
}

func TestCancelThenCompleteIsUnknownReference(t *testing.T) {
	f := newServiceFixture()
	seedMapping(f, "TST202601021504050009", 7, 1000, 0, nil)

	if err := f.svc.Cancel(context.Background(), "TST202601021504050009", 7, false); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	_, err := f.svc.Finalize(context.Background(), &FinalizeInput{
		Reference: "TST202601021504050009",
		Amount:    1000,
		Gateway:   int32(types.GatewayBankTransfer),
	})
	if !errors.Is(err, ErrUnknownReference) {
		t.Fatalf("expected ErrUnknownReference after cancel, got %v", err)
	}
}

func TestCancelAllIsolatesFailures(t *testing.T) {
	f := newServiceFixture()
	seedMapping(f, "TST202601021504050010", 7, 1000, 0, nil)
	seedMapping(f, "TST202601021504050011", 7, 2000, 0, nil)
	seedMapping(f, "TST202601021504050012", 8, 3000, 0, nil)
	// A paid order in the batch is skipped, the rest still cancel.
	if _, err := f.svc.Finalize(context.Background(), &FinalizeInput{
		Reference: "TST202601021504050010",
		Amount:    1000,
		Gateway:   int32(types.GatewayBankTransfer),
	}); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	seedMapping(f, "TST202601021504050010", 7, 1000, 0, nil)

	canceled, err := f.svc.CancelAll(context.Background(), 7)
	if err != nil {
		t.Fatalf("cancel-all failed: %v", err)
	}
	if canceled != 1 {
		t.Fatalf("expected 1 cancellation, got %d", canceled)
	}
	if _, ok := f.mappings.mappings["TST202601021504050012"]; !ok {
		t.Fatal("another payer's mapping must not be touched")
	}
}

func TestExpirePendingBatchCancelsStaleOrders(t *testing.T) {
	f := newServiceFixture()
	seedMapping(f, "TST202601021504050013", 7, 1000, 0, nil)
	f.mappings.mappings["TST202601021504050013"].CreatedAt = time.Now().UTC().Add(-2 * time.Minute)
	seedMapping(f, "TST202601021504050014", 7, 2000, 0, nil)

	if err := f.svc.RunExpirePendingBatch(context.Background()); err != nil {
		t.Fatalf("expire batch failed: %v", err)
	}

	if _, ok := f.mappings.mappings["TST202601021504050013"]; ok {
		t.Fatal("stale mapping must be expired")
	}
	if _, ok := f.mappings.mappings["TST202601021504050014"]; !ok {
		t.Fatal("fresh mapping must survive the expiry batch")
	}
}

func TestVerifyWithProviderFinalizesOnSuccess(t *testing.T) {
	f := newServiceFixture()
	f.gw.queryOut = &gateway.QueryResult{Status: int32(types.PaymentStatusSuccess), Amount: 1000}
	seedMapping(f, "TST202601021504050015", 7, 1000, 0, nil)

	status, err := f.svc.VerifyWithProvider(context.Background(), "TST202601021504050015", "sepay")
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if status.Status != types.PaymentStatusSuccess {
		t.Fatalf("expected success, got %v", status.Status)
	}
	if f.ledger.paymentCount() != 1 {
		t.Fatalf("expected finalized payment, have %d", f.ledger.paymentCount())
	}
}

func TestVerifyWithProviderFallsBackToMappingAmount(t *testing.T) {
	f := newServiceFixture()
	f.gw.queryOut = &gateway.QueryResult{Status: int32(types.PaymentStatusSuccess)}
	seedMapping(f, "TST202601021504050016", 7, 4000, 0, nil)

	status, err := f.svc.VerifyWithProvider(context.Background(), "TST202601021504050016", "sepay")
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if status.Amount != 4000 {
		t.Fatalf("expected mapping amount, got %d", status.Amount)
	}
}

func TestVerifyWithProviderPendingDoesNotFinalize(t *testing.T) {
	f := newServiceFixture()
	seedMapping(f, "TST202601021504050017", 7, 1000, 0, nil)

	status, err := f.svc.VerifyWithProvider(context.Background(), "TST202601021504050017", "sepay")
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if status.Status != types.PaymentStatusPending {
		t.Fatalf("expected pending, got %v", status.Status)
	}
	if f.ledger.paymentCount() != 0 {
		t.Fatal("pending query must not finalize")
	}
}
