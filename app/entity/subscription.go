package entity

import "time"

type Subscription struct {
	ID uint64

	// PaymentID carries a unique key: at most one subscription per payment.
	PaymentID uint64

	PayerID    uint64
	PlanID     uint64
	AmountPaid int64

	StartDate time.Time
	EndDate   time.Time

	JobPostQuota int32
	CVViewQuota  int32

	CreatedAt time.Time
}
