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

type ZalopayConfig struct {
	AppID       string
	Key1        string
	Key2        string
	CreateURL   string
	QueryURL    string
	CallbackURL string
	HTTPTimeout time.Duration
}

// ZalopayGateway creates orders through the wallet's server API and verifies
// the MAC on its completion callbacks. The wallet requires the transaction id
// on its side to be prefixed with the yymmdd of creation; that prefix exists
// only on the wire and is stripped before a reference leaves this adapter.
type ZalopayGateway struct {
	cfg    ZalopayConfig
	client *http.Client
}

func NewZalopayGateway(cfg ZalopayConfig) *ZalopayGateway {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ZalopayGateway{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

func (g *ZalopayGateway) Code() int32 {
	return int32(types.GatewayEWallet)
}

func (g *ZalopayGateway) CreateOrder(ctx context.Context, input *CreateOrderInput) (*CreateOrderOutput, error) {
	if strings.TrimSpace(g.cfg.AppID) == "" || strings.TrimSpace(g.cfg.Key1) == "" {
		return nil, errors.New("zalopay app credentials are not configured")
	}
	if strings.TrimSpace(g.cfg.CreateURL) == "" {
		return nil, errors.New("zalopay create url is not configured")
	}

	now := time.Now()
	appTransID := now.Format("060102") + "_" + input.Reference
	appTime := strconv.FormatInt(now.UnixMilli(), 10)
	appUser := strconv.FormatUint(input.PayerID, 10)
	amount := strconv.FormatInt(input.Amount, 10)

	embedData, err := json.Marshal(map[string]string{"reference": input.Reference})
	if err != nil {
		return nil, err
	}
	item := "[]"

	mac := signature.SignFields(g.cfg.Key1,
		g.cfg.AppID, appTransID, appUser, amount, appTime, string(embedData), item)

	values := url.Values{}
	values.Set("app_id", g.cfg.AppID)
	values.Set("app_trans_id", appTransID)
	values.Set("app_user", appUser)
	values.Set("app_time", appTime)
	values.Set("amount", amount)
	values.Set("embed_data", string(embedData))
	values.Set("item", item)
	values.Set("description", strings.TrimSpace(input.Description))
	values.Set("callback_url", g.cfg.CallbackURL)
	values.Set("mac", mac)

	body, err := g.postForm(ctx, g.cfg.CreateURL, values)
	if err != nil {
		return nil, err
	}

	var result struct {
		ReturnCode    int    `json:"return_code"`
		ReturnMessage string `json:"return_message"`
		OrderURL      string `json:"order_url"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}
	if result.ReturnCode != 1 {
		return nil, fmt.Errorf("zalopay order creation refused: code=%d message=%s", result.ReturnCode, result.ReturnMessage)
	}
	if strings.TrimSpace(result.OrderURL) == "" {
		return nil, errors.New("zalopay order url missing")
	}

	return &CreateOrderOutput{PayURL: result.OrderURL}, nil
}

// VerifyAndParseNotification takes the raw callback body, an envelope of
// {data, mac} where the MAC covers the serialized data string with key2.
func (g *ZalopayGateway) VerifyAndParseNotification(_ context.Context, payload []byte, _ string) (*Notification, error) {
	var envelope struct {
		Data string `json:"data"`
		Mac  string `json:"mac"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, err
	}

	if !signature.VerifyBody([]byte(envelope.Data), envelope.Mac, g.cfg.Key2) {
		return nil, ErrInvalidSignature
	}

	var data struct {
		AppTransID string `json:"app_trans_id"`
		Amount     int64  `json:"amount"`
		Channel    int    `json:"channel"`
	}
	if err := json.Unmarshal([]byte(envelope.Data), &data); err != nil {
		return nil, err
	}

	// The callback fires only for completed transactions.
	return &Notification{
		Reference: referenceFromAppTransID(data.AppTransID),
		Amount:    data.Amount,
		Success:   true,
		Code:      "1",
		Method:    "zalopay:" + strconv.Itoa(data.Channel),
	}, nil
}

func (g *ZalopayGateway) QueryOrder(ctx context.Context, reference string) (*QueryResult, error) {
	if strings.TrimSpace(g.cfg.QueryURL) == "" {
		return nil, errors.New("zalopay query url is not configured")
	}

	createdAt, ok := ReferenceTime(reference)
	if !ok {
		return nil, fmt.Errorf("reference %q does not carry a creation timestamp", reference)
	}
	appTransID := createdAt.Format("060102") + "_" + reference

	mac := signature.SignFields(g.cfg.Key1, g.cfg.AppID, appTransID, g.cfg.Key1)

	values := url.Values{}
	values.Set("app_id", g.cfg.AppID)
	values.Set("app_trans_id", appTransID)
	values.Set("mac", mac)

	body, err := g.postForm(ctx, g.cfg.QueryURL, values)
	if err != nil {
		return nil, err
	}

	var result struct {
		ReturnCode int   `json:"return_code"`
		Amount     int64 `json:"amount"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}

	out := &QueryResult{Amount: result.Amount}
	switch result.ReturnCode {
	case 1:
		out.Status = int32(types.PaymentStatusSuccess)
	case 3:
		out.Status = int32(types.PaymentStatusPending)
	default:
		out.Status = int32(types.PaymentStatusFailed)
	}

	return out, nil
}

func (g *ZalopayGateway) postForm(ctx context.Context, endpoint string, values url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
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
		return nil, fmt.Errorf("zalopay request failed: url=%s status=%d body=%s", endpoint, resp.StatusCode, string(body))
	}

	return body, nil
}

func referenceFromAppTransID(appTransID string) string {
	parts := strings.SplitN(appTransID, "_", 2)
	if len(parts) == 2 {
		return parts[1]
	}
	return appTransID
}
