package entity

import "time"

type Payment struct {
	ID uint64

	// TransactionID equals the order reference and carries a unique key.
	TransactionID string

	Amount   int64
	Currency string

	Gateway int32
	Method  string
	Status  int32

	PayerID uint64

	CreatedAt time.Time
}
