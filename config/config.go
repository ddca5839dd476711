package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	HTTP     ServerConfig
	MySQL    MySQLConfig
	Log      LogConfig
	JWT      JWTConfig
	Vnpay    VnpayConfig
	Zalopay  ZalopayConfig
	Sepay    SepayConfig
	Payments PaymentsConfig
	Jobs     JobsConfig
}

type AppConfig struct {
	ServiceName string
}

type ServerConfig struct {
	Host string
	Port string
}

type MySQLConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type LogConfig struct {
	Level string
}

type JWTConfig struct {
	Secret string
}

type VnpayConfig struct {
	TmnCode     string
	HashSecret  string
	PayURL      string
	QueryURL    string
	ReturnURL   string
	ExpireIn    time.Duration
	HTTPTimeout time.Duration
}

type ZalopayConfig struct {
	AppID       string
	Key1        string
	Key2        string
	CreateURL   string
	QueryURL    string
	CallbackURL string
	HTTPTimeout time.Duration
}

type SepayConfig struct {
	WebhookSecret string
	AccountNumber string
	AccountName   string
	BankCode      string
	QRBaseURL     string
}

type PaymentsConfig struct {
	ReferencePrefix string
	Currency        string
	CompanyTag      string
	PendingTimeout  time.Duration
	JobBatchSize    int32
}

type JobsConfig struct {
	ExpirePendingInterval time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		return nil, errors.New("MYSQL_DSN environment variable is required")
	}

	return &Config{
		App: AppConfig{
			ServiceName: getEnv("APP_SERVICE_NAME", "payments-service"),
		},
		HTTP: ServerConfig{
			Host: getEnv("HTTP_HOST", "0.0.0.0"),
			Port: getEnv("HTTP_PORT", "8080"),
		},
		MySQL: MySQLConfig{
			DSN:             mysqlDSN,
			MaxOpenConns:    getIntEnv("MYSQL_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getIntEnv("MYSQL_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getMinutesEnv("MYSQL_CONN_MAX_LIFETIME_MINUTES", 30*time.Minute),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
		},
		Vnpay: VnpayConfig{
			TmnCode:     getEnv("VNPAY_TMN_CODE", ""),
			HashSecret:  getEnv("VNPAY_HASH_SECRET", ""),
			PayURL:      getEnv("VNPAY_PAY_URL", "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html"),
			QueryURL:    getEnv("VNPAY_QUERY_URL", "https://sandbox.vnpayment.vn/merchant_webapi/api/transaction"),
			ReturnURL:   getEnv("VNPAY_RETURN_URL", ""),
			ExpireIn:    getMinutesEnv("VNPAY_EXPIRE_MINUTES", 15*time.Minute),
			HTTPTimeout: getSecondsEnv("VNPAY_HTTP_TIMEOUT_SECONDS", 10*time.Second),
		},
		Zalopay: ZalopayConfig{
			AppID:       getEnv("ZALOPAY_APP_ID", ""),
			Key1:        getEnv("ZALOPAY_KEY1", ""),
			Key2:        getEnv("ZALOPAY_KEY2", ""),
			CreateURL:   getEnv("ZALOPAY_CREATE_URL", "https://sb-openapi.zalopay.vn/v2/create"),
			QueryURL:    getEnv("ZALOPAY_QUERY_URL", "https://sb-openapi.zalopay.vn/v2/query"),
			CallbackURL: getEnv("ZALOPAY_CALLBACK_URL", ""),
			HTTPTimeout: getSecondsEnv("ZALOPAY_HTTP_TIMEOUT_SECONDS", 10*time.Second),
		},
		Sepay: SepayConfig{
			WebhookSecret: getEnv("SEPAY_WEBHOOK_SECRET", ""),
			AccountNumber: getEnv("SEPAY_ACCOUNT_NUMBER", ""),
			AccountName:   getEnv("SEPAY_ACCOUNT_NAME", ""),
			BankCode:      getEnv("SEPAY_BANK_CODE", ""),
			QRBaseURL:     getEnv("SEPAY_QR_BASE_URL", "https://qr.sepay.vn/img"),
		},
		Payments: PaymentsConfig{
			ReferencePrefix: getEnv("PAYMENTS_REFERENCE_PREFIX", "HRV"),
			Currency:        getEnv("PAYMENTS_CURRENCY", "VND"),
			CompanyTag:      getEnv("PAYMENTS_COMPANY_TAG", "recommended"),
			PendingTimeout:  getMinutesEnv("PAYMENTS_PENDING_TIMEOUT_MINUTES", 15*time.Minute),
			JobBatchSize:    int32(getIntEnv("PAYMENTS_JOB_BATCH_SIZE", 100)),
		},
		Jobs: JobsConfig{
			ExpirePendingInterval: getMinutesEnv("PAYMENTS_EXPIRE_PENDING_INTERVAL_MINUTES", 5*time.Minute),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getMinutesEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}

func getSecondsEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}
