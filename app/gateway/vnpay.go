package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hirevia/ms-go-payments/app/signature"
	"github.com/hirevia/ms-go-payments/app/types"
)

// VnpayResponseCodeSuccess is the vnp_ResponseCode the gateway sends for a
// completed transaction on both the return redirect and the IPN.
const VnpayResponseCodeSuccess = "00"

const vnpayAmountScale = 100

type VnpayConfig struct {
	TmnCode     string
	HashSecret  string
	PayURL      string
	QueryURL    string
	ReturnURL   string
	ExpireIn    time.Duration
	HTTPTimeout time.Duration
}

// VnpayGateway builds signed browser redirects and verifies the signed query
// strings the gateway sends back on the return redirect and the IPN. Amounts
// are multiplied by 100 on the wire; the conversion stays inside this adapter.
type VnpayGateway struct {
	cfg    VnpayConfig
	client *http.Client
}

func NewVnpayGateway(cfg VnpayConfig) *VnpayGateway {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if cfg.ExpireIn <= 0 {
		cfg.ExpireIn = 15 * time.Minute
	}
	return &VnpayGateway{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

func (g *VnpayGateway) Code() int32 {
	return int32(types.GatewayCard)
}

func (g *VnpayGateway) CreateOrder(_ context.Context, input *CreateOrderInput) (*CreateOrderOutput, error) {
	if strings.TrimSpace(g.cfg.TmnCode) == "" || strings.TrimSpace(g.cfg.HashSecret) == "" {
		return nil, errors.New("vnpay merchant credentials are not configured")
	}
	if strings.TrimSpace(g.cfg.PayURL) == "" {
		return nil, errors.New("vnpay pay url is not configured")
	}

	orderInfo := strings.TrimSpace(input.Description)
	if orderInfo == "" {
		orderInfo = "Thanh toan don hang " + input.Reference
	}
	clientIP := strings.TrimSpace(input.ClientIP)
	if clientIP == "" {
		clientIP = "127.0.0.1"
	}

	now := time.Now()
	params := map[string]string{
		"vnp_Version":    "2.1.0",
		"vnp_Command":    "pay",
		"vnp_TmnCode":    g.cfg.TmnCode,
		"vnp_Amount":     strconv.FormatInt(input.Amount*vnpayAmountScale, 10),
		"vnp_CurrCode":   "VND",
		"vnp_TxnRef":     input.Reference,
		"vnp_OrderInfo":  orderInfo,
		"vnp_OrderType":  "other",
		"vnp_Locale":     "vn",
		"vnp_ReturnUrl":  g.cfg.ReturnURL,
		"vnp_IpAddr":     clientIP,
		"vnp_CreateDate": now.Format(referenceTimeLayout),
		"vnp_ExpireDate": now.Add(g.cfg.ExpireIn).Format(referenceTimeLayout),
	}

	secureHash := signature.SignSortedQuery(params, g.cfg.HashSecret)

	values := url.Values{}
	for key, value := range params {
		if value == "" {
			continue
		}
		values.Set(key, value)
	}
	values.Set("vnp_SecureHash", secureHash)

	return &CreateOrderOutput{PayURL: g.cfg.PayURL + "?" + values.Encode()}, nil
}

// VerifyAndParseNotification takes the raw query string of a return redirect
// or IPN. The secure hash travels inside the query itself and is excluded
// from the canonical form before verification.
func (g *VnpayGateway) VerifyAndParseNotification(_ context.Context, payload []byte, _ string) (*Notification, error) {
	values, err := url.ParseQuery(string(payload))
	if err != nil {
		return nil, err
	}

	provided := values.Get("vnp_SecureHash")
	params := make(map[string]string, len(values))
	for key := range values {
		if key == "vnp_SecureHash" || key == "vnp_SecureHashType" {
			continue
		}
		params[key] = values.Get(key)
	}

	if !signature.VerifySortedQuery(params, provided, g.cfg.HashSecret) {
		return nil, ErrInvalidSignature
	}

	rawAmount, err := strconv.ParseInt(values.Get("vnp_Amount"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("vnpay notification carries a malformed amount: %w", err)
	}

	code := values.Get("vnp_ResponseCode")
	method := values.Get("vnp_CardType")
	if bank := values.Get("vnp_BankCode"); bank != "" {
		method = strings.TrimSpace(method + " " + bank)
	}

	return &Notification{
		Reference: values.Get("vnp_TxnRef"),
		Amount:    rawAmount / vnpayAmountScale,
		Success:   code == VnpayResponseCodeSuccess,
		Code:      code,
		Method:    method,
	}, nil
}

func (g *VnpayGateway) QueryOrder(ctx context.Context, reference string) (*QueryResult, error) {
	if strings.TrimSpace(g.cfg.QueryURL) == "" {
		return nil, errors.New("vnpay query url is not configured")
	}

	params := map[string]string{
		"vnp_Version":    "2.1.0",
		"vnp_Command":    "querydr",
		"vnp_TmnCode":    g.cfg.TmnCode,
		"vnp_TxnRef":     reference,
		"vnp_OrderInfo":  "Truy van don hang " + reference,
		"vnp_CreateDate": time.Now().Format(referenceTimeLayout),
		"vnp_IpAddr":     "127.0.0.1",
	}
	values := url.Values{}
	for key, value := range params {
		values.Set(key, value)
	}
	values.Set("vnp_SecureHash", signature.SignSortedQuery(params, g.cfg.HashSecret))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.QueryURL, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("vnpay query failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var result struct {
		ResponseCode      string `json:"vnp_ResponseCode"`
		TransactionStatus string `json:"vnp_TransactionStatus"`
		Amount            string `json:"vnp_Amount"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}

	amount, _ := strconv.ParseInt(result.Amount, 10, 64)
	out := &QueryResult{Amount: amount / vnpayAmountScale}

	switch result.TransactionStatus {
	case "00":
		out.Status = int32(types.PaymentStatusSuccess)
	case "01":
		out.Status = int32(types.PaymentStatusPending)
	default:
		out.Status = int32(types.PaymentStatusFailed)
	}

	return out, nil
}
