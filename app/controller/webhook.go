package controller

import (
	"errors"
	"io"
	"net/http"

	"github.com/hirevia/ms-go-payments/app/factory"
	"github.com/hirevia/ms-go-payments/app/gateway"
	"github.com/hirevia/ms-go-payments/app/service"
	"github.com/hirevia/ms-go-payments/app/types"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// WebhookController terminates the provider-facing notification channels.
// Every handler answers the envelope its provider expects, including on
// internal failure: providers retry on transport errors, not on our JSON.
type WebhookController struct {
	paymentService *service.PaymentService
	gateways       *gateway.Registry
	logger         logrus.FieldLogger
}

func NewWebhookController(paymentService *service.PaymentService, gateways *gateway.Registry) *WebhookController {
	return &WebhookController{
		paymentService: paymentService,
		gateways:       gateways,
		logger:         factory.NewModuleLogger("webhooks-controller"),
	}
}

// VnpayReturn handles the browser redirect after checkout. It finalizes on a
// verified success so the payer sees the outcome immediately, but the IPN
// remains authoritative; a duplicate here is the expected case, not an error.
func (c *WebhookController) VnpayReturn(ctx echo.Context) error {
	g, err := c.gateways.Get(int32(types.GatewayCard))
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, &types.ErrorResponse{Error: "gateway unavailable"})
	}

	notification, err := g.VerifyAndParseNotification(ctx.Request().Context(), []byte(ctx.Request().URL.RawQuery), "")
	if err != nil {
		if errors.Is(err, gateway.ErrInvalidSignature) {
			return ctx.JSON(http.StatusBadRequest, &types.ErrorResponse{Error: "invalid signature"})
		}
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Return URL parse failed")
		return ctx.JSON(http.StatusBadRequest, &types.ErrorResponse{Error: "invalid request"})
	}

	if !notification.Success {
		return ctx.JSON(http.StatusOK, &types.OrderStatusResponse{
			Reference: notification.Reference,
			Status:    types.PaymentStatusFailed.String(),
			Amount:    notification.Amount,
		})
	}

	_, err = c.paymentService.Finalize(ctx.Request().Context(), &service.FinalizeInput{
		Reference: notification.Reference,
		Amount:    notification.Amount,
		Gateway:   g.Code(),
		Method:    notification.Method,
	})
	if err != nil {
		factory.LoggerWithContext(c.logger, ctx).WithError(err).
			WithField("reference", notification.Reference).Error("Return URL finalize failed")
		return ctx.JSON(http.StatusOK, &types.OrderStatusResponse{
			Reference: notification.Reference,
			Status:    types.PaymentStatusPending.String(),
			Amount:    notification.Amount,
		})
	}

	return ctx.JSON(http.StatusOK, &types.OrderStatusResponse{
		Reference: notification.Reference,
		Status:    types.PaymentStatusSuccess.String(),
		Amount:    notification.Amount,
	})
}

// VnpayIPN is the authoritative server-to-server channel. The provider keys
// its retry behavior off RspCode, so the handler always answers HTTP 200 with
// the protocol envelope.
func (c *WebhookController) VnpayIPN(ctx echo.Context) error {
	g, err := c.gateways.Get(int32(types.GatewayCard))
	if err != nil {
		return ctx.JSON(http.StatusOK, &types.VnpayIPNResponse{RspCode: "99", Message: "Unknown error"})
	}

	notification, err := g.VerifyAndParseNotification(ctx.Request().Context(), []byte(ctx.Request().URL.RawQuery), "")
	if err != nil {
		if errors.Is(err, gateway.ErrInvalidSignature) {
			return ctx.JSON(http.StatusOK, &types.VnpayIPNResponse{RspCode: "97", Message: "Invalid signature"})
		}
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("IPN parse failed")
		return ctx.JSON(http.StatusOK, &types.VnpayIPNResponse{RspCode: "99", Message: "Unknown error"})
	}

	// A verified non-success code is a final answer for that attempt; it is
	// acknowledged so the provider stops retrying, and the order stays
	// pending until it succeeds through another attempt or expires.
	if !notification.Success {
		factory.LoggerWithContext(c.logger, ctx).
			WithField("reference", notification.Reference).
			WithField("response_code", notification.Code).
			Info("Gateway reported unsuccessful payment")
		return ctx.JSON(http.StatusOK, &types.VnpayIPNResponse{RspCode: "00", Message: "Confirm Success"})
	}

	result, err := c.paymentService.Finalize(ctx.Request().Context(), &service.FinalizeInput{
		Reference: notification.Reference,
		Amount:    notification.Amount,
		Gateway:   g.Code(),
		Method:    notification.Method,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownReference):
			return ctx.JSON(http.StatusOK, &types.VnpayIPNResponse{RspCode: "01", Message: "Order not found"})
		case errors.Is(err, service.ErrAmountMismatch):
			return ctx.JSON(http.StatusOK, &types.VnpayIPNResponse{RspCode: "04", Message: "Invalid amount"})
		default:
			factory.LoggerWithContext(c.logger, ctx).WithError(err).
				WithField("reference", notification.Reference).Error("IPN finalize failed")
			return ctx.JSON(http.StatusOK, &types.VnpayIPNResponse{RspCode: "99", Message: "Unknown error"})
		}
	}

	if result.AlreadyFinalized {
		return ctx.JSON(http.StatusOK, &types.VnpayIPNResponse{RspCode: "02", Message: "Order already confirmed"})
	}
	return ctx.JSON(http.StatusOK, &types.VnpayIPNResponse{RspCode: "00", Message: "Confirm Success"})
}

// ZalopayCallback follows the provider's retry contract: return_code 1 stops
// delivery, a negative code marks the callback dead, and 0 requests a retry.
func (c *WebhookController) ZalopayCallback(ctx echo.Context) error {
	g, err := c.gateways.Get(int32(types.GatewayEWallet))
	if err != nil {
		return ctx.JSON(http.StatusOK, &types.ZalopayCallbackResponse{ReturnCode: 0, ReturnMessage: "gateway unavailable"})
	}

	payload, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return ctx.JSON(http.StatusOK, &types.ZalopayCallbackResponse{ReturnCode: 0, ReturnMessage: "unreadable body"})
	}

	notification, err := g.VerifyAndParseNotification(ctx.Request().Context(), payload, "")
	if err != nil {
		if errors.Is(err, gateway.ErrInvalidSignature) {
			return ctx.JSON(http.StatusOK, &types.ZalopayCallbackResponse{ReturnCode: -1, ReturnMessage: "mac not equal"})
		}
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Callback parse failed")
		return ctx.JSON(http.StatusOK, &types.ZalopayCallbackResponse{ReturnCode: -1, ReturnMessage: "invalid data"})
	}

	_, err = c.paymentService.Finalize(ctx.Request().Context(), &service.FinalizeInput{
		Reference: notification.Reference,
		Amount:    notification.Amount,
		Gateway:   g.Code(),
		Method:    notification.Method,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownReference), errors.Is(err, service.ErrAmountMismatch):
			// Retrying cannot fix a bad reference or a wrong amount.
			factory.LoggerWithContext(c.logger, ctx).WithError(err).
				WithField("reference", notification.Reference).Error("Callback rejected")
			return ctx.JSON(http.StatusOK, &types.ZalopayCallbackResponse{ReturnCode: -1, ReturnMessage: err.Error()})
		default:
			factory.LoggerWithContext(c.logger, ctx).WithError(err).
				WithField("reference", notification.Reference).Error("Callback finalize failed")
			return ctx.JSON(http.StatusOK, &types.ZalopayCallbackResponse{ReturnCode: 0, ReturnMessage: "temporary failure"})
		}
	}

	return ctx.JSON(http.StatusOK, &types.ZalopayCallbackResponse{ReturnCode: 1, ReturnMessage: "success"})
}

// SepayWebhook answers {"success":true} for everything the provider should
// not redeliver, including outbound transfers and unattributable references.
// Only an authentication failure or a transient internal error is refused.
func (c *WebhookController) SepayWebhook(ctx echo.Context) error {
	g, err := c.gateways.Get(int32(types.GatewayBankTransfer))
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, &types.SepayWebhookResponse{Success: false})
	}

	payload, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, &types.SepayWebhookResponse{Success: false})
	}

	notification, err := g.VerifyAndParseNotification(ctx.Request().Context(), payload, ctx.Request().Header.Get("X-Signature"))
	if err != nil {
		if errors.Is(err, gateway.ErrInvalidSignature) {
			return ctx.JSON(http.StatusBadRequest, &types.SepayWebhookResponse{Success: false})
		}
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Webhook parse failed")
		return ctx.JSON(http.StatusBadRequest, &types.SepayWebhookResponse{Success: false})
	}

	// Outbound transfers share the webhook; they are acknowledged and ignored.
	if !notification.Success {
		return ctx.JSON(http.StatusOK, &types.SepayWebhookResponse{Success: true})
	}

	_, err = c.paymentService.Finalize(ctx.Request().Context(), &service.FinalizeInput{
		Reference: notification.Reference,
		Amount:    notification.Amount,
		Gateway:   g.Code(),
		Method:    notification.Method,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownReference), errors.Is(err, service.ErrAmountMismatch):
			factory.LoggerWithContext(c.logger, ctx).WithError(err).
				WithField("reference", notification.Reference).Error("Webhook rejected")
			return ctx.JSON(http.StatusOK, &types.SepayWebhookResponse{Success: true})
		default:
			factory.LoggerWithContext(c.logger, ctx).WithError(err).
				WithField("reference", notification.Reference).Error("Webhook finalize failed")
			return ctx.JSON(http.StatusInternalServerError, &types.SepayWebhookResponse{Success: false})
		}
	}

	return ctx.JSON(http.StatusOK, &types.SepayWebhookResponse{Success: true})
}
