package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/hirevia/ms-go-payments/app/entity"
)

var ErrMappingAlreadyExists = errors.New("order mapping already exists")

type OrderMappingRepository struct {
	db DBTX
}

func NewOrderMappingRepository(db DBTX) *OrderMappingRepository {
	return &OrderMappingRepository{db: db}
}

// Save is creation, not upsert: a reference collision means the generator
// produced a duplicate and the caller must not silently take over another
// payer's pending order.
func (r *OrderMappingRepository) Save(ctx context.Context, mapping *entity.OrderMapping) error {
	query := `
		INSERT INTO order_mappings (reference, payer_id, amount, plan_id, company_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		mapping.Reference,
		mapping.PayerID,
		mapping.Amount,
		mapping.PlanID,
		nullableUint64Value(mapping.CompanyID),
		mapping.CreatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrMappingAlreadyExists
		}
		return err
	}
	return nil
}

func (r *OrderMappingRepository) Get(ctx context.Context, reference string) (*entity.OrderMapping, error) {
	query := `
		SELECT reference, payer_id, amount, plan_id, company_id, created_at
		FROM order_mappings
		WHERE reference = ?
	`

	mapping := &entity.OrderMapping{}
	var companyID sql.NullInt64
	err := r.db.QueryRowContext(ctx, query, reference).Scan(
		&mapping.Reference,
		&mapping.PayerID,
		&mapping.Amount,
		&mapping.PlanID,
		&companyID,
		&mapping.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	mapping.CompanyID = uint64PtrFromNull(companyID)

	return mapping, nil
}

// Delete is idempotent: removing a missing reference is not an error.
func (r *OrderMappingRepository) Delete(ctx context.Context, reference string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM order_mappings WHERE reference = ?`, reference)
	return err
}

func (r *OrderMappingRepository) ListByPayer(ctx context.Context, payerID uint64) ([]*entity.OrderMapping, error) {
	query := `
		SELECT reference, payer_id, amount, plan_id, company_id, created_at
		FROM order_mappings
		WHERE payer_id = ?
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, payerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMappings(rows)
}

func (r *OrderMappingRepository) ListCreatedBefore(ctx context.Context, cutoff time.Time, limit int32) ([]*entity.OrderMapping, error) {
	query := `
		SELECT reference, payer_id, amount, plan_id, company_id, created_at
		FROM order_mappings
		WHERE created_at <= ?
		ORDER BY created_at ASC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMappings(rows)
}

func scanMappings(rows *sql.Rows) ([]*entity.OrderMapping, error) {
	mappings := make([]*entity.OrderMapping, 0)
	for rows.Next() {
		mapping := &entity.OrderMapping{}
		var companyID sql.NullInt64
		if err := rows.Scan(
			&mapping.Reference,
			&mapping.PayerID,
			&mapping.Amount,
			&mapping.PlanID,
			&companyID,
			&mapping.CreatedAt,
		); err != nil {
			return nil, err
		}
		mapping.CompanyID = uint64PtrFromNull(companyID)
		mappings = append(mappings, mapping)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return mappings, nil
}
