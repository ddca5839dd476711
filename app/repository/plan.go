package repository

import (
	"context"
	"database/sql"

	"github.com/hirevia/ms-go-payments/app/entity"
)

// PlanRepository is read-only: plans are owned by the surrounding platform.
type PlanRepository struct {
	db DBTX
}

func NewPlanRepository(db DBTX) *PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) FindByID(ctx context.Context, id uint64) (*entity.Plan, error) {
	query := `
		SELECT id, name, duration_days, job_post_limit, cv_view_limit, price
		FROM plans
		WHERE id = ?
	`

	plan := &entity.Plan{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&plan.ID,
		&plan.Name,
		&plan.DurationDays,
		&plan.JobPostLimit,
		&plan.CVViewLimit,
		&plan.Price,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return plan, nil
}
