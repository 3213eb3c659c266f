package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	defaultRunAddress   = ":8080"
	defaultDatabaseURI  = ""
	defaultLogLevel     = "debug"
	defaultOrganization = "Pithom Foundation"
	defaultEnvFile      = ".env"
)

// GatewayConfig is payment gateway configuration
type GatewayConfig struct {
	// Environment is sandbox or production
	Environment   string        `mapstructure:"environment"`
	ClientID      string        `mapstructure:"client_id"`
	ClientSecret  string        `mapstructure:"client_secret"`
	ClientVersion string        `mapstructure:"client_version"`
	MerchantID    string        `mapstructure:"merchant_id"`
	AuthURL       string        `mapstructure:"auth_url"`
	BaseURL       string        `mapstructure:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	OrderExpiry   time.Duration `mapstructure:"order_expiry"`
}

// WebhookConfig holds credentials configured for gateway webhooks
type WebhookConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// DonationConfig is checkout policy
type DonationConfig struct {
	MinimumMinor int64         `mapstructure:"minimum_minor"`
	PollAttempts uint64        `mapstructure:"poll_attempts"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// ReconcileConfig is reconciliation worker configuration
type ReconcileConfig struct {
	Interval   time.Duration `mapstructure:"interval"`
	StaleAfter time.Duration `mapstructure:"stale_after"`
	BatchSize  int           `mapstructure:"batch_size"`
}

// MailConfig is email delivery configuration
type MailConfig struct {
	APIURL  string `mapstructure:"api_url"`
	APIKey  string `mapstructure:"api_key"`
	From    string `mapstructure:"from"`
	AdminTo string `mapstructure:"admin_to"`
}

// AdminConfig is admin login configuration
type AdminConfig struct {
	Login        string        `mapstructure:"login"`
	PasswordHash string        `mapstructure:"password_hash"`
	TokenKey     string        `mapstructure:"token_key"`
	TokenTTL     time.Duration `mapstructure:"token_ttl"`
}

// FeedConfig is live feed configuration
type FeedConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type Config struct {
	RunAddress   string          `mapstructure:"run_address"`
	DatabaseURI  string          `mapstructure:"database_uri"`
	LogLevel     string          `mapstructure:"log_level"`
	BaseURL      string          `mapstructure:"base_url"`
	Organization string          `mapstructure:"organization"`
	Gateway      GatewayConfig   `mapstructure:"gateway"`
	Webhook      WebhookConfig   `mapstructure:"webhook"`
	Donation     DonationConfig  `mapstructure:"donation"`
	Reconcile    ReconcileConfig `mapstructure:"reconcile"`
	Mail         MailConfig      `mapstructure:"mail"`
	Admin        AdminConfig     `mapstructure:"admin"`
	Feed         FeedConfig      `mapstructure:"feed"`
}

// envBindings maps config keys to environment variables, first name wins
var envBindings = map[string][]string{
	"run_address":            {"RUN_ADDRESS"},
	"database_uri":           {"DATABASE_URI"},
	"log_level":              {"LOG_LEVEL"},
	"base_url":               {"BASE_URL", "NEXT_PUBLIC_BASE_URL"},
	"organization":           {"ORGANIZATION_NAME"},
	"gateway.environment":    {"PHONEPE_ENV"},
	"gateway.client_id":      {"PHONEPE_CLIENT_ID"},
	"gateway.client_secret":  {"PHONEPE_CLIENT_SECRET"},
	"gateway.client_version": {"PHONEPE_CLIENT_VERSION"},
	"gateway.merchant_id":    {"PHONEPE_MERCHANT_ID"},
	"gateway.auth_url":       {"PHONEPE_AUTH_URL"},
	"gateway.base_url":       {"PHONEPE_BASE_URL"},
	"gateway.timeout":        {"PHONEPE_TIMEOUT"},
	"gateway.order_expiry":   {"PHONEPE_ORDER_EXPIRY"},
	"webhook.username":       {"PHONEPE_WEBHOOK_USERNAME"},
	"webhook.password":       {"PHONEPE_WEBHOOK_PASSWORD"},
	"donation.minimum_minor": {"DONATION_MINIMUM_PAISE"},
	"donation.poll_attempts": {"DONATION_POLL_ATTEMPTS"},
	"donation.poll_interval": {"DONATION_POLL_INTERVAL"},
	"reconcile.interval":     {"RECONCILE_INTERVAL"},
	"reconcile.stale_after":  {"RECONCILE_STALE_AFTER"},
	"reconcile.batch_size":   {"RECONCILE_BATCH_SIZE"},
	"mail.api_url":           {"RESEND_API_URL"},
	"mail.api_key":           {"RESEND_API_KEY"},
	"mail.from":              {"RESEND_FROM_EMAIL"},
	"mail.admin_to":          {"NOTIFICATION_EMAIL"},
	"admin.login":            {"ADMIN_LOGIN"},
	"admin.password_hash":    {"ADMIN_PASSWORD_HASH"},
	"admin.token_key":        {"ADMIN_TOKEN_KEY"},
	"admin.token_ttl":        {"ADMIN_TOKEN_TTL"},
	"feed.allowed_origins":   {"FEED_ALLOWED_ORIGINS"},
}

var (
	once      sync.Once
	singleton *Config
	loadErr   error
)

// New returns new Config. It parses command line, .env, config file and
// environment variables only once.
func New() (*Config, error) {
	once.Do(func() {
		singleton, loadErr = Load(os.Args[1:], defaultEnvFile)
	})

	return singleton, loadErr
}

// Load builds validated Config. Precedence: flag, environment, config file, default.
func Load(args []string, envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	fs := pflag.NewFlagSet("donations", pflag.ContinueOnError)
	fs.StringP("address", "a", defaultRunAddress, "server address")
	fs.StringP("database", "d", defaultDatabaseURI, "database URI")
	fs.StringP("log-level", "l", defaultLogLevel, "log level")
	fs.StringP("config", "c", "", "path to config.yaml")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, err
		}
	}

	flagKeys := map[string]string{
		"address":   "run_address",
		"database":  "database_uri",
		"log-level": "log_level",
	}
	for flagName, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(flagName)); err != nil {
			return nil, err
		}
	}

	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("run_address", defaultRunAddress)
	v.SetDefault("database_uri", defaultDatabaseURI)
	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("organization", defaultOrganization)
	v.SetDefault("gateway.environment", "sandbox")
	v.SetDefault("gateway.client_version", "1")
	v.SetDefault("gateway.timeout", 10*time.Second)
	v.SetDefault("gateway.order_expiry", 20*time.Minute)
	v.SetDefault("donation.minimum_minor", 100)
	v.SetDefault("donation.poll_attempts", 10)
	v.SetDefault("donation.poll_interval", 3*time.Second)
	v.SetDefault("reconcile.interval", time.Minute)
	v.SetDefault("reconcile.stale_after", 30*time.Minute)
	v.SetDefault("reconcile.batch_size", 50)
	v.SetDefault("mail.api_url", "https://api.resend.com/emails")
	v.SetDefault("admin.login", "admin")
	v.SetDefault("admin.token_ttl", 12*time.Hour)
}

// Validate reports every missing or malformed required setting
func (c *Config) Validate() error {
	var errs []error

	required := map[string]string{
		"DATABASE_URI":             c.DatabaseURI,
		"BASE_URL":                 c.BaseURL,
		"PHONEPE_CLIENT_ID":        c.Gateway.ClientID,
		"PHONEPE_CLIENT_SECRET":    c.Gateway.ClientSecret,
		"PHONEPE_WEBHOOK_USERNAME": c.Webhook.Username,
		"PHONEPE_WEBHOOK_PASSWORD": c.Webhook.Password,
		"ADMIN_TOKEN_KEY":          c.Admin.TokenKey,
	}
	for name, value := range required {
		if strings.TrimSpace(value) == "" {
			errs = append(errs, fmt.Errorf("%s is required", name))
		}
	}

	switch c.Gateway.Environment {
	case "sandbox", "production":
	default:
		errs = append(errs, fmt.Errorf("PHONEPE_ENV must be sandbox or production, got %q", c.Gateway.Environment))
	}

	if c.Admin.TokenKey != "" {
		if key, err := hex.DecodeString(c.Admin.TokenKey); err != nil || len(key) < 16 {
			errs = append(errs, errors.New("ADMIN_TOKEN_KEY must be at least 16 hex-encoded bytes"))
		}
	}
	if c.Donation.MinimumMinor <= 0 {
		errs = append(errs, errors.New("minimum donation must be positive"))
	}
	if c.Donation.PollAttempts == 0 {
		errs = append(errs, errors.New("poll attempts must be positive"))
	}

	return errors.Join(errs...)
}

// TokenKey returns decoded admin token key
func (c *Config) TokenKey() []byte {
	key, _ := hex.DecodeString(c.Admin.TokenKey)
	return key
}
