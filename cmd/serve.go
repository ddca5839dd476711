package cmd

import (
	"context"
	"database/sql"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hirevia/ms-go-payments/app/controller"
	"github.com/hirevia/ms-go-payments/app/gateway"
	"github.com/hirevia/ms-go-payments/app/middleware"
	"github.com/hirevia/ms-go-payments/app/repository"
	"github.com/hirevia/ms-go-payments/app/service"
	"github.com/hirevia/ms-go-payments/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  "Start the HTTP (Echo) server for client payment endpoints and gateway webhooks.",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, paymentService, gateways, cleanup := mustCreatePaymentService()
	defer cleanup()

	paymentController := controller.NewPaymentController(paymentService)
	webhookController := controller.NewWebhookController(paymentService, gateways)

	e := setupHTTPServer(paymentController, webhookController, cfg.JWT.Secret)

	go func() {
		httpAddr := net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port)
		logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
		if err := e.Start(httpAddr); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("HTTP shutdown error")
	}

	logrus.Info("Server stopped")
}

func setupHTTPServer(
	paymentController *controller.PaymentController,
	webhookController *controller.WebhookController,
	jwtSecret string,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(echomiddleware.RequestID())

	e.GET("/health", paymentController.Health)

	api := e.Group("/api/payments", middleware.PayerAuth(jwtSecret))
	api.POST("", paymentController.CreateOrder)
	api.DELETE("", paymentController.CancelAll)
	api.GET("/:reference", paymentController.GetStatus)
	api.DELETE("/:reference", paymentController.CancelOrder)
	api.POST("/:reference/verify", paymentController.VerifyOrder)

	// Gateway-facing endpoints carry the provider's own MAC, not a session.
	hooks := e.Group("/payments")
	hooks.GET("/vnpay/return", webhookController.VnpayReturn)
	hooks.GET("/vnpay/ipn", webhookController.VnpayIPN)
	hooks.POST("/zalopay/callback", webhookController.ZalopayCallback)
	hooks.POST("/sepay/webhook", webhookController.SepayWebhook)

	return e
}

func mustCreatePaymentService() (*config.Config, *service.PaymentService, *gateway.Registry, func()) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		logrus.WithError(err).Fatal("Failed to ping database")
	}

	mappingRepo := repository.NewOrderMappingRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	planRepo := repository.NewPlanRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	tagRepo := repository.NewCompanyTagRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	parser := gateway.NewReferenceParser(cfg.Payments.ReferencePrefix)
	gateways := gateway.NewRegistry(
		gateway.NewSepayGateway(gateway.SepayConfig{
			WebhookSecret: cfg.Sepay.WebhookSecret,
			AccountNumber: cfg.Sepay.AccountNumber,
			AccountName:   cfg.Sepay.AccountName,
			BankCode:      cfg.Sepay.BankCode,
			QRBaseURL:     cfg.Sepay.QRBaseURL,
		}, parser),
		gateway.NewZalopayGateway(gateway.ZalopayConfig{
			AppID:       cfg.Zalopay.AppID,
			Key1:        cfg.Zalopay.Key1,
			Key2:        cfg.Zalopay.Key2,
			CreateURL:   cfg.Zalopay.CreateURL,
			QueryURL:    cfg.Zalopay.QueryURL,
			CallbackURL: cfg.Zalopay.CallbackURL,
			HTTPTimeout: cfg.Zalopay.HTTPTimeout,
		}),
		gateway.NewVnpayGateway(gateway.VnpayConfig{
			TmnCode:     cfg.Vnpay.TmnCode,
			HashSecret:  cfg.Vnpay.HashSecret,
			PayURL:      cfg.Vnpay.PayURL,
			QueryURL:    cfg.Vnpay.QueryURL,
			ReturnURL:   cfg.Vnpay.ReturnURL,
			ExpireIn:    cfg.Vnpay.ExpireIn,
			HTTPTimeout: cfg.Vnpay.HTTPTimeout,
		}),
	)

	paymentService := service.NewPaymentService(
		mappingRepo,
		paymentRepo,
		planRepo,
		subscriptionRepo,
		tagRepo,
		notificationRepo,
		gateways,
		cfg.Payments,
	)

	cleanup := func() {
		if err := db.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close database")
		}
	}

	return cfg, paymentService, gateways, cleanup
}
