package controller

import (
	"errors"
	"net/http"

	"github.com/hirevia/ms-go-payments/app/factory"
	"github.com/hirevia/ms-go-payments/app/mapper"
	"github.com/hirevia/ms-go-payments/app/middleware"
	"github.com/hirevia/ms-go-payments/app/service"
	"github.com/hirevia/ms-go-payments/app/types"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type PaymentController struct {
	paymentService *service.PaymentService
	logger         logrus.FieldLogger
}

func NewPaymentController(paymentService *service.PaymentService) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
		logger:         factory.NewModuleLogger("payments-controller"),
	}
}

func (c *PaymentController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &types.HealthResponse{Status: "ok"})
}

func (c *PaymentController) CreateOrder(ctx echo.Context) error {
	req, err := types.NewCreateOrderRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	result, err := c.paymentService.CreateOrder(ctx.Request().Context(), middleware.PayerID(ctx), req, ctx.RealIP())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, service.ErrGatewayUnsupported):
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		default:
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Create order failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusCreated, mapper.CreateOrderResultToResponse(result))
}

func (c *PaymentController) GetStatus(ctx echo.Context) error {
	req, err := types.NewOrderReferenceRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	result, err := c.paymentService.Status(ctx.Request().Context(), req.Reference)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			return ctx.JSON(http.StatusNotFound, &types.OrderStatusResponse{
				Reference: req.Reference,
				Status:    "not_found",
			})
		}
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Status lookup failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, mapper.StatusResultToResponse(req.Reference, result))
}

func (c *PaymentController) CancelOrder(ctx echo.Context) error {
	req, err := types.NewOrderReferenceRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	err = c.paymentService.Cancel(ctx.Request().Context(), req.Reference, middleware.PayerID(ctx), false)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderAlreadyPaid):
			return c.writeError(ctx, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrOrderNotFound):
			return c.writeError(ctx, http.StatusNotFound, "order not found")
		case errors.Is(err, service.ErrNotMappingOwner):
			return c.writeError(ctx, http.StatusForbidden, err.Error())
		default:
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Cancel order failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusOK, &types.MessageResponse{Message: "Order canceled"})
}

func (c *PaymentController) CancelAll(ctx echo.Context) error {
	canceled, err := c.paymentService.CancelAll(ctx.Request().Context(), middleware.PayerID(ctx))
	if err != nil {
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Cancel-all failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, &types.CancelAllResponse{Canceled: canceled})
}

func (c *PaymentController) VerifyOrder(ctx echo.Context) error {
	req, err := types.NewVerifyOrderRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	result, err := c.paymentService.VerifyWithProvider(ctx.Request().Context(), req.Reference, req.Gateway)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGatewayUnsupported):
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrUnknownReference):
			return c.writeError(ctx, http.StatusNotFound, "order not found")
		case errors.Is(err, service.ErrAmountMismatch):
			return c.writeError(ctx, http.StatusConflict, err.Error())
		default:
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Provider verification failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusOK, mapper.StatusResultToResponse(req.Reference, result))
}

func (c *PaymentController) writeError(ctx echo.Context, statusCode int, message string) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{Error: message})
}
