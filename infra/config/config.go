package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"

	"github.com/radhian/billing-reconciliation/consts"
)

type Config struct {
	Port    string `validate:"required,numeric"`
	DataDir string `validate:"required"`

	DbHost     string `validate:"required"`
	DbPort     string `validate:"required,numeric"`
	DbUser     string `validate:"required"`
	DbName     string `validate:"required"`
	DbPassword string

	ReportAPIBaseURL string        `validate:"required,url"`
	OAuthTokenURL    string        `validate:"required,url"`
	HTTPTimeout      time.Duration `validate:"gt=0"`

	GCPProjectID string `validate:"required"`
	BlobBucket   string

	LockBackend  string        `validate:"oneof=memory redis"`
	RedisAddress string        `validate:"required_if=LockBackend redis"`
	LockTTL      time.Duration `validate:"gt=0"`

	TokenRotationInterval time.Duration `validate:"gt=0"`
	LogLevel              string        `validate:"oneof=DEBUG INFO WARN ERROR"`
}

// serverOnlyFields are settings the token rotation worker never reads.
var serverOnlyFields = []string{
	"Port", "DataDir",
	"DbHost", "DbPort", "DbUser", "DbName",
	"ReportAPIBaseURL",
	"LockBackend", "RedisAddress", "LockTTL",
}

// Load reads the HTTP server configuration from the environment, after
// applying an optional .env file.
func Load() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadCron is Load for the token rotation worker. Database, report API and
// lock settings are not required.
func LoadCron() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}
	if err := validator.New().StructExcept(cfg, serverOnlyFields...); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func read() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warnf("[Config] Ignoring .env file: %v", err)
	}

	cfg := &Config{
		Port:    getEnv("PORT", consts.DefaultPort),
		DataDir: getEnv("DATA_DIR", consts.DefaultDataDir),

		DbHost:     os.Getenv("DB_HOST"),
		DbPort:     os.Getenv("DB_PORT"),
		DbUser:     os.Getenv("DB_USER"),
		DbName:     os.Getenv("DB_NAME"),
		DbPassword: os.Getenv("DB_PASSWORD"),

		ReportAPIBaseURL: os.Getenv("REPORT_API_BASE_URL"),
		OAuthTokenURL:    os.Getenv("OAUTH_TOKEN_URL"),

		GCPProjectID: os.Getenv("GCP_PROJECT_ID"),
		BlobBucket:   os.Getenv("BLOB_BUCKET"),

		LockBackend:  strings.ToLower(getEnv("LOCK_BACKEND", "memory")),
		RedisAddress: os.Getenv("REDIS_ADDRESS"),

		LogLevel: strings.ToUpper(getEnv("LOG_LEVEL", "INFO")),
	}

	var err error
	if cfg.HTTPTimeout, err = getSeconds("HTTP_TIMEOUT_SECONDS", consts.DefaultHTTPTimeoutSec); err != nil {
		return nil, err
	}
	if cfg.LockTTL, err = getSeconds("LOCK_TTL_SECONDS", consts.DefaultLockTTLSec); err != nil {
		return nil, err
	}
	minutes, err := getInt("TOKEN_ROTATION_INTERVAL_MINUTES", consts.DefaultRotationIntervalMin)
	if err != nil {
		return nil, err
	}
	cfg.TokenRotationInterval = time.Duration(minutes) * time.Minute
	return cfg, nil
}

// DBURI is the postgres connection string.
func (c *Config) DBURI() string {
	return fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=disable password=%s",
		c.DbHost, c.DbPort, c.DbUser, c.DbName, c.DbPassword)
}

// LogLvl maps LogLevel onto the gommon levels.
func (c *Config) LogLvl() log.Lvl {
	switch c.LogLevel {
	case "DEBUG":
		return log.DEBUG
	case "WARN":
		return log.WARN
	case "ERROR":
		return log.ERROR
	default:
		return log.INFO
	}
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getSeconds(key string, fallback int) (time.Duration, error) {
	n, err := getInt(key, fallback)
	if err != nil {
		return 0, err
	}
	return time.Duration(n) * time.Second, nil
}
