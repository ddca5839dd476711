package types

import (
	"errors"
	"strings"
)

type PaymentStatus int32

const (
	PaymentStatusUnspecified PaymentStatus = 0
	PaymentStatusPending     PaymentStatus = 1
	PaymentStatusSuccess     PaymentStatus = 2
	PaymentStatusFailed      PaymentStatus = 3
)

func (s PaymentStatus) String() string {
	switch s {
	case PaymentStatusPending:
		return "pending"
	case PaymentStatusSuccess:
		return "success"
	case PaymentStatusFailed:
		return "failed"
	default:
		return "unspecified"
	}
}

type GatewayType int32

const (
	GatewayUnspecified  GatewayType = 0
	GatewayBankTransfer GatewayType = 1
	GatewayEWallet      GatewayType = 2
	GatewayCard         GatewayType = 3
)

var ErrInvalidGateway = errors.New("invalid gateway")

// ParseGatewayType accepts both the family name and the concrete provider name,
// the way callers tend to send whichever they know.
func ParseGatewayType(raw string) (GatewayType, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "sepay", "bank_transfer", "bank-transfer", "1":
		return GatewayBankTransfer, nil
	case "zalopay", "ewallet", "e-wallet", "2":
		return GatewayEWallet, nil
	case "vnpay", "card", "3":
		return GatewayCard, nil
	default:
		return GatewayUnspecified, ErrInvalidGateway
	}
}

func (g GatewayType) String() string {
	switch g {
	case GatewayBankTransfer:
		return "bank_transfer"
	case GatewayEWallet:
		return "ewallet"
	case GatewayCard:
		return "card"
	default:
		return "unspecified"
	}
}

type HealthResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type QRInfo struct {
	ImageURL        string `json:"image_url"`
	AccountNumber   string `json:"account_number"`
	AccountName     string `json:"account_name,omitempty"`
	BankCode        string `json:"bank_code"`
	TransferContent string `json:"transfer_content"`
}

type CreateOrderResponse struct {
	Reference string  `json:"reference"`
	Gateway   string  `json:"gateway"`
	Amount    int64   `json:"amount"`
	PayURL    string  `json:"pay_url,omitempty"`
	QR        *QRInfo `json:"qr,omitempty"`
}

type OrderStatusResponse struct {
	Reference    string            `json:"reference"`
	Status       string            `json:"status"`
	Amount       int64             `json:"amount,omitempty"`
	Subscription *SubscriptionInfo `json:"subscription,omitempty"`
}

type SubscriptionInfo struct {
	PlanID       uint64 `json:"plan_id"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	JobPostQuota int32  `json:"job_post_quota"`
	CVViewQuota  int32  `json:"cv_view_quota"`
}

type CancelAllResponse struct {
	Canceled int `json:"canceled"`
}

// Provider acknowledgement envelopes. Each provider insists on its own shape
// and retries until it sees it, so these are returned even on internal errors.

type VnpayIPNResponse struct {
	RspCode string `json:"RspCode"`
	Message string `json:"Message"`
}

type ZalopayCallbackResponse struct {
	ReturnCode    int    `json:"return_code"`
	ReturnMessage string `json:"return_message"`
}

type SepayWebhookResponse struct {
	Success bool `json:"success"`
}
