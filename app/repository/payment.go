package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/hirevia/ms-go-payments/app/entity"
)

var ErrPaymentAlreadyExists = errors.New("payment already exists")

// PaymentRepository owns the ledger table and the payment+subscription atomic
// unit, so it takes the *sql.DB rather than a DBTX: it has to open its own
// transactions.
type PaymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func (r *PaymentRepository) FindByTransactionID(ctx context.Context, transactionID string) (*entity.Payment, error) {
	query := `
		SELECT id, transaction_id, amount, currency, gateway, method, status, payer_id, created_at
		FROM payments
		WHERE transaction_id = ?
		LIMIT 1
	`

	payment := &entity.Payment{}
	err := r.db.QueryRowContext(ctx, query, transactionID).Scan(
		&payment.ID,
		&payment.TransactionID,
		&payment.Amount,
		&payment.Currency,
		&payment.Gateway,
		&payment.Method,
		&payment.Status,
		&payment.PayerID,
		&payment.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return payment, nil
}

// CreateWithSubscription inserts the payment and, when subscription is not
// nil, the subscription row, in one transaction. The unique key on
// payments.transaction_id turns a concurrent duplicate into
// ErrPaymentAlreadyExists with nothing committed.
func (r *PaymentRepository) CreateWithSubscription(ctx context.Context, payment *entity.Payment, subscription *entity.Subscription) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO payments (transaction_id, amount, currency, gateway, method, status, payer_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		payment.TransactionID,
		payment.Amount,
		payment.Currency,
		payment.Gateway,
		payment.Method,
		payment.Status,
		payment.PayerID,
		payment.CreatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrPaymentAlreadyExists
		}
		return err
	}

	paymentID, err := result.LastInsertId()
	if err != nil {
		return err
	}
	payment.ID = uint64(paymentID)

	if subscription != nil {
		subscription.PaymentID = payment.ID
		if err := insertSubscription(ctx, tx, subscription); err != nil {
			return err
		}
	}

	return tx.Commit()
}
