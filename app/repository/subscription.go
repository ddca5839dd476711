package repository

import (
	"context"
	"database/sql"

	"github.com/hirevia/ms-go-payments/app/entity"
)

type SubscriptionRepository struct {
	db DBTX
}

func NewSubscriptionRepository(db DBTX) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) FindByPaymentID(ctx context.Context, paymentID uint64) (*entity.Subscription, error) {
	query := `
		SELECT id, payment_id, payer_id, plan_id, amount_paid, start_date, end_date,
			job_post_quota, cv_view_quota, created_at
		FROM subscriptions
		WHERE payment_id = ?
		LIMIT 1
	`

	item := &entity.Subscription{}
	err := r.db.QueryRowContext(ctx, query, paymentID).Scan(
		&item.ID,
		&item.PaymentID,
		&item.PayerID,
		&item.PlanID,
		&item.AmountPaid,
		&item.StartDate,
		&item.EndDate,
		&item.JobPostQuota,
		&item.CVViewQuota,
		&item.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return item, nil
}

func insertSubscription(ctx context.Context, db DBTX, item *entity.Subscription) error {
	result, err := db.ExecContext(ctx, `
		INSERT INTO subscriptions (payment_id, payer_id, plan_id, amount_paid, start_date, end_date,
			job_post_quota, cv_view_quota, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		item.PaymentID,
		item.PayerID,
		item.PlanID,
		item.AmountPaid,
		item.StartDate,
		item.EndDate,
		item.JobPostQuota,
		item.CVViewQuota,
		item.CreatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	item.ID = uint64(id)
	return nil
}
