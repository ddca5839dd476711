package entity

import "time"

// OrderMapping is the pending-order intent record. It is created before the
// order reference is disclosed to anyone and removed exactly once, either by
// finalization or by cancellation. Rows are never updated.
type OrderMapping struct {
	Reference string
	PayerID   uint64
	Amount    int64
	PlanID    uint64
	CompanyID *uint64
	CreatedAt time.Time
}
