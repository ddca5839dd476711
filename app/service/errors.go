package service

import "errors"

var (
	ErrInvalidRequest     = errors.New("invalid request")
	ErrGatewayUnsupported = errors.New("gateway is not supported")
	ErrOrderNotFound      = errors.New("order not found")

	// ErrUnknownReference marks a verified completion that cannot be
	// attributed to any payer: no mapping, no existing payment. It is a
	// reconciliation anomaly, never silently absorbed.
	ErrUnknownReference = errors.New("completion references an unknown order")

	ErrAmountMismatch   = errors.New("completion amount does not match the order")
	ErrOrderAlreadyPaid = errors.New("cannot cancel a paid order")
	ErrNotMappingOwner  = errors.New("order belongs to a different payer")
)
