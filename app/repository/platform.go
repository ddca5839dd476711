package repository

import (
	"context"
	"time"
)

// The platform tables written here (company tags, notifications, activity
// log) belong to the surrounding application. This subsystem only ever
// appends to them, fire-and-forget.

type CompanyTagRepository struct {
	db DBTX
}

func NewCompanyTagRepository(db DBTX) *CompanyTagRepository {
	return &CompanyTagRepository{db: db}
}

// Attach is create-or-noop: the unique (company_id, tag) pair plus INSERT
// IGNORE make a re-attach invisible.
func (r *CompanyTagRepository) Attach(ctx context.Context, companyID uint64, tag string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT IGNORE INTO company_tags (company_id, tag, created_at)
		VALUES (?, ?, ?)
	`, companyID, tag, time.Now().UTC())
	return err
}

type NotificationRepository struct {
	db DBTX
}

func NewNotificationRepository(db DBTX) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Notify(ctx context.Context, payerID uint64, title, content, category string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO notifications (payer_id, title, content, category, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, payerID, title, content, category, time.Now().UTC())
	return err
}

func (r *NotificationRepository) LogActivity(ctx context.Context, payerID uint64, text string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO activity_logs (payer_id, text, created_at)
		VALUES (?, ?, ?)
	`, payerID, text, time.Now().UTC())
	return err
}
