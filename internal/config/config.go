package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode  string
	Port     string
	Database DatabaseConfig
	JWT      JWTConfig
	Cookie   CookieConfig
	Seed     SeedConfig
	Cron     CronConfig
	Log      LogConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver   string // mysql or postgres
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	RefreshSecret    string
	AccessTokenMins  int
	RefreshTokenDays int
}

// CookieConfig holds cookie configuration
type CookieConfig struct {
	Secure   bool
	SameSite string
	Domain   string
}

// SeedConfig holds the bootstrap admin account
type SeedConfig struct {
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

// CronConfig holds scheduled job configuration
type CronConfig struct {
	Enabled        bool
	ExpirySchedule string
}

// LogConfig holds log output configuration
type LogConfig struct {
	File       string // empty logs to stdout only
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// Trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	config := &Config{
		AppMode:  appMode,
		Port:     getEnv("PORT", "3000"),
		Database: loadDatabaseConfig(appMode),
		JWT:      loadJWTConfig(appMode),
		Cookie:   loadCookieConfig(appMode),
		Seed:     loadSeedConfig(),
		Cron:     loadCronConfig(),
		Log:      loadLogConfig(),
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	AppConfig = config

	log.Printf("✅ Configuration loaded successfully [MODE: %s]", appMode)
	return config, nil
}

func (c *Config) validate() error {
	if c.Database.Driver != "mysql" && c.Database.Driver != "postgres" {
		return fmt.Errorf("invalid DB_DRIVER: '%s' (must be 'mysql' or 'postgres')", c.Database.Driver)
	}
	if c.IsProd() && (c.JWT.Secret == defaultJWTSecret || c.JWT.RefreshSecret == defaultRefreshSecret) {
		return fmt.Errorf("JWT secrets must be set in prod mode")
	}
	if c.JWT.Secret == c.JWT.RefreshSecret {
		return fmt.Errorf("JWT_SECRET and JWT_REFRESH_SECRET must differ")
	}
	if c.JWT.AccessTokenMins <= 0 || c.JWT.RefreshTokenDays <= 0 {
		return fmt.Errorf("token lifetimes must be positive")
	}
	return nil
}

const (
	defaultJWTSecret     = "default_secret"
	defaultRefreshSecret = "default_refresh_secret"
)

func modePrefix(mode string) string {
	if mode == "prod" {
		return "PROD_"
	}
	return "DEV_"
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := modePrefix(mode)
	driver := strings.ToLower(getEnv("DB_DRIVER", "mysql"))

	defaultPort := "3306"
	defaultUser := "root"
	if driver == "postgres" {
		defaultPort = "5432"
		defaultUser = "postgres"
	}

	return DatabaseConfig{
		Driver:   driver,
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", defaultPort),
		User:     getEnv(prefix+"DB_USER", defaultUser),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "punebus"),
	}
}

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := modePrefix(mode)

	return JWTConfig{
		Secret:           getEnv(prefix+"JWT_SECRET", defaultJWTSecret),
		RefreshSecret:    getEnv(prefix+"JWT_REFRESH_SECRET", defaultRefreshSecret),
		AccessTokenMins:  getEnvInt("ACCESS_TOKEN_MINUTES", 60),
		RefreshTokenDays: getEnvInt("REFRESH_TOKEN_DAYS", 7),
	}
}

// loadCookieConfig loads cookie config based on mode
func loadCookieConfig(mode string) CookieConfig {
	secure, _ := strconv.ParseBool(getEnv(modePrefix(mode)+"COOKIE_SECURE", "false"))

	return CookieConfig{
		Secure:   secure,
		SameSite: getEnv("COOKIE_SAMESITE", "lax"),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
	}
}

func loadSeedConfig() SeedConfig {
	return SeedConfig{
		AdminName:     getEnv("SEED_ADMIN_NAME", "PuneBus Admin"),
		AdminEmail:    strings.ToLower(getEnv("SEED_ADMIN_EMAIL", "")),
		AdminPassword: getEnv("SEED_ADMIN_PASSWORD", ""),
	}
}

func loadCronConfig() CronConfig {
	enabled, _ := strconv.ParseBool(getEnv("CRON_ENABLED", "true"))

	return CronConfig{
		Enabled:        enabled,
		ExpirySchedule: getEnv("SUBSCRIPTION_EXPIRY_CRON", ""),
	}
}

func loadLogConfig() LogConfig {
	return LogConfig{
		File:       getEnv("LOG_FILE", ""),
		MaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 50),
		MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
		MaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable, falling back on parse errors
func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, strconv.Itoa(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return n
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return "https://punebus.in"
	}
	return origins
}
