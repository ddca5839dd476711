package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/hirevia/ms-go-payments/app/signature"
	"github.com/hirevia/ms-go-payments/app/types"
)

const defaultSepayQRBaseURL = "https://qr.sepay.vn/img"

type SepayConfig struct {
	WebhookSecret string
	AccountNumber string
	AccountName   string
	BankCode      string
	QRBaseURL     string
}

// SepayGateway has no order-creation API: an order is a VA transfer whose
// description carries the reference, and the only completion channel is the
// webhook push. The whole raw webhook body is HMACed with the shared secret.
type SepayGateway struct {
	cfg    SepayConfig
	parser *ReferenceParser
}

func NewSepayGateway(cfg SepayConfig, parser *ReferenceParser) *SepayGateway {
	if strings.TrimSpace(cfg.QRBaseURL) == "" {
		cfg.QRBaseURL = defaultSepayQRBaseURL
	}
	return &SepayGateway{cfg: cfg, parser: parser}
}

func (g *SepayGateway) Code() int32 {
	return int32(types.GatewayBankTransfer)
}

func (g *SepayGateway) CreateOrder(_ context.Context, input *CreateOrderInput) (*CreateOrderOutput, error) {
	if strings.TrimSpace(g.cfg.AccountNumber) == "" || strings.TrimSpace(g.cfg.BankCode) == "" {
		return nil, errors.New("sepay receiving account is not configured")
	}

	values := url.Values{}
	values.Set("acc", g.cfg.AccountNumber)
	values.Set("bank", g.cfg.BankCode)
	values.Set("amount", strconv.FormatInt(input.Amount, 10))
	values.Set("des", input.Reference)

	return &CreateOrderOutput{
		QR: &QRPayload{
			ImageURL:        g.cfg.QRBaseURL + "?" + values.Encode(),
			AccountNumber:   g.cfg.AccountNumber,
			AccountName:     g.cfg.AccountName,
			BankCode:        g.cfg.BankCode,
			TransferContent: input.Reference,
		},
	}, nil
}

// VerifyAndParseNotification takes the raw webhook body and the signature
// header. The order reference is recovered from the free-text transfer
// content; a parse miss yields an empty reference, which the caller treats as
// an unknown-reference anomaly, not a protocol error.
func (g *SepayGateway) VerifyAndParseNotification(_ context.Context, payload []byte, sig string) (*Notification, error) {
	if !signature.VerifyBody(payload, strings.TrimSpace(sig), g.cfg.WebhookSecret) {
		return nil, ErrInvalidSignature
	}

	var event struct {
		Gateway        string `json:"gateway"`
		TransferType   string `json:"transferType"`
		TransferAmount int64  `json:"transferAmount"`
		Content        string `json:"content"`
		ReferenceCode  string `json:"referenceCode"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, err
	}

	if event.TransferType != "in" {
		return &Notification{Success: false, Code: event.TransferType}, nil
	}

	reference, ok := g.parser.Parse(event.Content)
	if !ok {
		reference, _ = g.parser.Parse(event.ReferenceCode)
	}

	method := "bank_transfer"
	if bank := strings.TrimSpace(event.Gateway); bank != "" {
		method = "bank_transfer:" + bank
	}

	return &Notification{
		Reference: reference,
		Amount:    event.TransferAmount,
		Success:   true,
		Code:      event.TransferType,
		Method:    method,
	}, nil
}

// QueryOrder reports pending: the provider offers no pull API, completion only
// ever arrives through the webhook push.
func (g *SepayGateway) QueryOrder(_ context.Context, _ string) (*QueryResult, error) {
	return &QueryResult{Status: int32(types.PaymentStatusPending)}, nil
}
