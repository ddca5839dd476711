package types

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
)

const maxOrderDescriptionLen = 255

type CreateOrderRequest struct {
	Gateway     string `json:"gateway"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
	PlanID      uint64 `json:"plan_id"`
	CompanyID   uint64 `json:"company_id"`
}

func NewCreateOrderRequestFromContext(ctx echo.Context) (*CreateOrderRequest, error) {
	var body CreateOrderRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	body.Gateway = strings.ToLower(strings.TrimSpace(body.Gateway))
	body.Description = strings.TrimSpace(body.Description)

	return &body, nil
}

func (r *CreateOrderRequest) Validate() error {
	if r.Amount <= 0 {
		return errors.New("amount must be > 0")
	}
	if _, err := ParseGatewayType(r.Gateway); err != nil {
		return errors.New("gateway must be sepay, zalopay or vnpay")
	}
	if len(r.Description) > maxOrderDescriptionLen {
		return errors.New("description is too long")
	}
	return nil
}

type VerifyOrderRequest struct {
	Reference string `json:"-"`
	Gateway   string `json:"gateway"`
}

func NewVerifyOrderRequestFromContext(ctx echo.Context) (*VerifyOrderRequest, error) {
	reference := strings.TrimSpace(ctx.Param("reference"))
	if reference == "" {
		return nil, errors.New("reference is required")
	}

	var body VerifyOrderRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}
	body.Reference = reference
	body.Gateway = strings.ToLower(strings.TrimSpace(body.Gateway))

	return &body, nil
}

func (r *VerifyOrderRequest) Validate() error {
	if strings.TrimSpace(r.Reference) == "" {
		return errors.New("reference is required")
	}
	if _, err := ParseGatewayType(r.Gateway); err != nil {
		return errors.New("gateway must be sepay, zalopay or vnpay")
	}
	return nil
}

type OrderReferenceRequest struct {
	Reference string
}

func NewOrderReferenceRequestFromContext(ctx echo.Context) (*OrderReferenceRequest, error) {
	reference := strings.TrimSpace(ctx.Param("reference"))
	if reference == "" {
		return nil, errors.New("reference is required")
	}
	return &OrderReferenceRequest{Reference: reference}, nil
}

func (r *OrderReferenceRequest) Validate() error {
	if strings.TrimSpace(r.Reference) == "" {
		return errors.New("reference is required")
	}
	return nil
}
