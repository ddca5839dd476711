package gateway

import (
	"context"
	"errors"
)

var (
	ErrGatewayNotSupported = errors.New("gateway is not supported")
	ErrInvalidSignature    = errors.New("invalid notification signature")
)

type CreateOrderInput struct {
	Reference   string
	Amount      int64
	Description string
	PayerID     uint64
	ClientIP    string
}

// QRPayload is returned by gateways that collect via bank transfer instead of
// a hosted checkout page.
type QRPayload struct {
	ImageURL        string
	AccountNumber   string
	AccountName     string
	BankCode        string
	TransferContent string
}

type CreateOrderOutput struct {
	PayURL string
	QR     *QRPayload
}

// Notification is a completion signal normalized to whole currency units,
// regardless of which channel or encoding the gateway used on the wire.
type Notification struct {
	Reference string
	Amount    int64
	Success   bool
	Code      string
	Method    string
}

type QueryResult struct {
	Status int32
	Amount int64
}

type Gateway interface {
	Code() int32

	// CreateOrder builds the provider-specific payload for an order whose
	// mapping has already been persisted by the caller.
	CreateOrder(ctx context.Context, input *CreateOrderInput) (*CreateOrderOutput, error)

	// VerifyAndParseNotification authenticates an inbound completion signal
	// and normalizes it. The payload and signature placement differ by
	// gateway topology; an authentication failure is ErrInvalidSignature.
	VerifyAndParseNotification(ctx context.Context, payload []byte, signature string) (*Notification, error)

	// QueryOrder asks the provider for the order state. Gateways without a
	// query capability report pending rather than fabricate a status.
	QueryOrder(ctx context.Context, reference string) (*QueryResult, error)
}
