package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = ""

type Config struct {
	App       AppConfig
	Service   ServiceConfig
	DB        DBConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Password  PasswordConfig
	Tax       TaxConfig
	Gateway   GatewayConfig
	SMTP      SMTPConfig
	WhatsApp  WhatsAppConfig
	Artifacts ArtifactsConfig
	Scheduler SchedulerConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GLASSERP_APP_ENV" required:"true"`
	Port         string `envconfig:"GLASSERP_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"GLASSERP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GLASSERP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, "dev")
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, "prod")
}

type ServiceConfig struct {
	Kind string `envconfig:"GLASSERP_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"GLASSERP_DB_DSN"`
	Driver string `envconfig:"GLASSERP_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"GLASSERP_DB_HOST"`
	Port     int    `envconfig:"GLASSERP_DB_PORT" default:"5432"`
	User     string `envconfig:"GLASSERP_DB_USER"`
	Password string `envconfig:"GLASSERP_DB_PASSWORD"`
	Name     string `envconfig:"GLASSERP_DB_NAME"`
	SSLMode  string `envconfig:"GLASSERP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GLASSERP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GLASSERP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GLASSERP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GLASSERP_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	AutoMigrate bool `envconfig:"GLASSERP_DB_AUTO_MIGRATE" default:"false"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GLASSERP_REDIS_URL" required:"true"`
	PoolSize     int           `envconfig:"GLASSERP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GLASSERP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GLASSERP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GLASSERP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GLASSERP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"GLASSERP_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"GLASSERP_JWT_ISSUER" default:"glasserp"`
	ExpirationMinutes int    `envconfig:"GLASSERP_JWT_EXPIRATION_MINUTES" default:"720"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"GLASSERP_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"GLASSERP_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"GLASSERP_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"GLASSERP_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"GLASSERP_ARGON_KEY_LEN" default:"32"`
}

// TaxConfig pins the seller side of every GST split.
type TaxConfig struct {
	SellerStateCode string `envconfig:"GLASSERP_SELLER_STATE_CODE" default:"27"`
	SellerGSTIN     string `envconfig:"GLASSERP_SELLER_GSTIN"`
	DefaultHSNRate  string `envconfig:"GLASSERP_DEFAULT_HSN_RATE" default:"18"`
}

type GatewayConfig struct {
	KeyID     string        `envconfig:"GLASSERP_GATEWAY_KEY_ID" required:"true"`
	KeySecret string        `envconfig:"GLASSERP_GATEWAY_KEY_SECRET" required:"true"`
	Timeout   time.Duration `envconfig:"GLASSERP_GATEWAY_TIMEOUT" default:"30s"`
}

type SMTPConfig struct {
	Host     string        `envconfig:"GLASSERP_SMTP_HOST"`
	Port     int           `envconfig:"GLASSERP_SMTP_PORT" default:"587"`
	Username string        `envconfig:"GLASSERP_SMTP_USERNAME"`
	Password string        `envconfig:"GLASSERP_SMTP_PASSWORD"`
	From     string        `envconfig:"GLASSERP_SMTP_FROM"`
	Timeout  time.Duration `envconfig:"GLASSERP_SMTP_TIMEOUT" default:"30s"`
}

type WhatsAppConfig struct {
	BaseURL string        `envconfig:"GLASSERP_WHATSAPP_BASE_URL"`
	Token   string        `envconfig:"GLASSERP_WHATSAPP_TOKEN"`
	Timeout time.Duration `envconfig:"GLASSERP_WHATSAPP_TIMEOUT" default:"30s"`
}

type ArtifactsConfig struct {
	// SigningSecret signs QR deep-link payloads embedded in PDFs.
	SigningSecret string `envconfig:"GLASSERP_ARTIFACT_SIGNING_SECRET" required:"true"`
	DeepLinkBase  string `envconfig:"GLASSERP_ARTIFACT_DEEPLINK_BASE" default:"https://erp.shreeglass.in/r"`
	WorkerPool    int    `envconfig:"GLASSERP_ARTIFACT_WORKER_POOL" default:"4"`
}

type SchedulerConfig struct {
	Timezone             string `envconfig:"GLASSERP_SCHEDULER_TZ" default:"Asia/Kolkata"`
	PaymentAlertsSpec    string `envconfig:"GLASSERP_SCHEDULER_PAYMENT_ALERTS" default:"0 9 * * *"`
	PLReportSpec         string `envconfig:"GLASSERP_SCHEDULER_PL_REPORT" default:"0 5 * * *"`
	VendorSummarySpec    string `envconfig:"GLASSERP_SCHEDULER_VENDOR_SUMMARY" default:"0 10 * * 1"`
	AdminEmails          string `envconfig:"GLASSERP_SCHEDULER_ADMIN_EMAILS"`
	AdminWhatsAppNumbers string `envconfig:"GLASSERP_SCHEDULER_ADMIN_WHATSAPP"`
}

// AdminEmailList splits the configured comma-separated admin recipients.
func (s SchedulerConfig) AdminEmailList() []string {
	return splitList(s.AdminEmails)
}

func (s SchedulerConfig) AdminWhatsAppList() []string {
	return splitList(s.AdminWhatsAppNumbers)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	for env, value := range map[string]string{
		"GLASSERP_DB_HOST": db.Host,
		"GLASSERP_DB_USER": db.User,
		"GLASSERP_DB_NAME": db.Name,
	} {
		if value == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either GLASSERP_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}
	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
