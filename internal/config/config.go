package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Stripe     StripeConfig     `mapstructure:"stripe"`
	Delivery   DeliveryConfig   `mapstructure:"delivery"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Compliance ComplianceConfig `mapstructure:"compliance"`
	SMTP       SMTPConfig       `mapstructure:"smtp"`
	Security   SecurityConfig   `mapstructure:"security"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	Env          string        `mapstructure:"env"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// ExposeErrors includes upstream provider detail in error responses.
	// Development only.
	ExposeErrors bool `mapstructure:"expose_errors"`
	// DemoMode swaps the identity and delivery backends for in-memory fakes
	// at startup. Never enable in production.
	DemoMode bool `mapstructure:"demo_mode"`
}

func (s ServerConfig) IsDevelopment() bool {
	return s.Env == "development"
}

type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Name         string `mapstructure:"name"`
	SSLMode      string `mapstructure:"sslmode"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

// DSN renders the lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiry     time.Duration `mapstructure:"expiry"`
	CookieName string        `mapstructure:"cookie_name"`
}

type StripeConfig struct {
	SecretKey     string `mapstructure:"secret_key"`
	WebhookSecret string `mapstructure:"webhook_secret"`
	SuccessURL    string `mapstructure:"success_url"`
	CancelURL     string `mapstructure:"cancel_url"`
	// PriceTiers maps Stripe price IDs to subscription tiers.
	PriceTiers map[string]string `mapstructure:"price_tiers"`
}

type DeliveryConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type RateLimitConfig struct {
	Window  time.Duration `mapstructure:"window"`
	Default int           `mapstructure:"default"`
	Auth    int           `mapstructure:"auth"`
	Send    int           `mapstructure:"send"`
	Webhook int           `mapstructure:"webhook"`
}

type ComplianceConfig struct {
	// Timezone is the IANA name of the deployment's local timezone used for
	// the TCPA calling-hours gate.
	Timezone  string `mapstructure:"timezone"`
	StartHour int    `mapstructure:"start_hour"`
	EndHour   int    `mapstructure:"end_hour"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type SecurityConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.env", "development")
	viper.SetDefault("server.read_timeout", 15*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("jwt.expiry", 30*24*time.Hour)
	viper.SetDefault("jwt.cookie_name", "vd_session")
	viper.SetDefault("delivery.timeout", 10*time.Second)
	viper.SetDefault("rate_limit.window", time.Minute)
	viper.SetDefault("rate_limit.default", 60)
	viper.SetDefault("rate_limit.auth", 5)
	viper.SetDefault("rate_limit.send", 10)
	viper.SetDefault("rate_limit.webhook", 100)
	viper.SetDefault("compliance.timezone", "America/New_York")
	viper.SetDefault("compliance.start_hour", 8)
	viper.SetDefault("compliance.end_hour", 21)
}
