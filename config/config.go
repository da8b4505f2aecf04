package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort     string `mapstructure:"APP_PORT"`
	Env         string `mapstructure:"ENV"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// Redis configuration.
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisSessionDB int    `mapstructure:"REDIS_SESSION_DB"`

	// Upstream inventory supplier.
	SupplierBaseURL      string `mapstructure:"SUPPLIER_BASE_URL"`
	SupplierTokenURL     string `mapstructure:"SUPPLIER_TOKEN_URL"`
	SupplierClientID     string `mapstructure:"SUPPLIER_CLIENT_ID"`
	SupplierClientSecret string `mapstructure:"SUPPLIER_CLIENT_SECRET"`
	SupplierTimeoutSec   int    `mapstructure:"SUPPLIER_TIMEOUT_SEC"`

	// Price lock TTL in minutes.
	LockTTLMin int `mapstructure:"LOCK_TTL_MIN"`

	// Stripe API key for payment authorization.
	StripeKey string `mapstructure:"STRIPE_KEY"`

	MaxRequestsPerMin int `mapstructure:"MAX_REQUESTS_PER_MIN"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_SESSION_DB", 0)
	viper.SetDefault("SUPPLIER_BASE_URL", "https://api.supplier.example.com")
	viper.SetDefault("SUPPLIER_TOKEN_URL", "https://api.supplier.example.com/token")
	viper.SetDefault("SUPPLIER_TIMEOUT_SEC", 45)
	viper.SetDefault("LOCK_TTL_MIN", 30)
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// SupplierTimeout returns the per-call ceiling for supplier requests.
func SupplierTimeout() time.Duration {
	return time.Duration(AppConfig.SupplierTimeoutSec) * time.Second
}

// LockTTL returns the lifetime of a price lock.
func LockTTL() time.Duration {
	return time.Duration(AppConfig.LockTTLMin) * time.Minute
}
