package bootstrap

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvironmentDevelopment = "development"
	EnvironmentProduction  = "production"

	DefaultConfigPath = "configs/default.yaml"
)

// Config is the resolved runtime configuration. It is built once at startup
// and handed to components as plain values.
type Config struct {
	ServiceID   string
	Environment string

	HTTPPort  int
	GRPCPort  int
	APIPrefix string

	DatabaseURL string
	RedisURL    string
	MaxDBConns  int32
	AutoMigrate bool

	SecretKey        string
	Algorithm        string
	AccessTokenTTL   time.Duration
	ExtendedTokenTTL time.Duration
	BcryptCost       int

	CORSOrigins []string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	OAuthTimeout       time.Duration

	ListLimitMax    int
	FailedThreshold int
	LockoutDuration time.Duration
}

// Production reports whether the service runs with production cookie and
// error-detail policy.
func (c Config) Production() bool { return c.Environment == EnvironmentProduction }

// GoogleConfigured reports whether Google login can be offered.
func (c Config) GoogleConfigured() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// configFile mirrors the YAML schema used by configs/default.yaml.
// Secrets are read from the environment only.
type configFile struct {
	Service struct {
		ID          string `yaml:"id"`
		Environment string `yaml:"environment"`
		HTTPPort    int    `yaml:"http_port"`
		GRPCPort    int    `yaml:"grpc_port"`
		APIPrefix   string `yaml:"api_prefix"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURLDev  string `yaml:"postgres_url_dev"`
		PostgresURLProd string `yaml:"postgres_url_prod"`
		RedisURL        string `yaml:"redis_url"`
		MaxDBConns      int    `yaml:"max_db_conns"`
		AutoMigrate     *bool  `yaml:"auto_migrate"`
	} `yaml:"dependencies"`
	Auth struct {
		Algorithm                string `yaml:"algorithm"`
		AccessTokenExpireMinutes int    `yaml:"access_token_expire_minutes"`
		ExtendedTokenTTLMinutes  int    `yaml:"extended_token_ttl_minutes"`
		BcryptRounds             int    `yaml:"bcrypt_rounds"`
		FailedLoginThreshold     int    `yaml:"failed_login_threshold"`
		AccountLockoutMinutes    int    `yaml:"account_lockout_minutes"`
		ListLimitMax             int    `yaml:"list_limit_max"`
	} `yaml:"auth"`
	CORS struct {
		OriginsDev  []string `yaml:"origins_dev"`
		OriginsProd []string `yaml:"origins_prod"`
	} `yaml:"cors"`
	Google struct {
		ClientID       string `yaml:"client_id"`
		RedirectURL    string `yaml:"redirect_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"google"`
}

// LoadConfig resolves configuration in priority order: defaults -> file -> env.
// A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:        "authcenter",
		Environment:      EnvironmentDevelopment,
		HTTPPort:         8000,
		GRPCPort:         9090,
		APIPrefix:        "/api/v1",
		MaxDBConns:       20,
		AutoMigrate:      true,
		Algorithm:        "HS256",
		AccessTokenTTL:   60 * time.Minute,
		ExtendedTokenTTL: 7 * 24 * time.Hour,
		BcryptCost:       12,
		OAuthTimeout:     10 * time.Second,
		ListLimitMax:     100,
		FailedThreshold:  5,
		LockoutDuration:  15 * time.Minute,
	}
	databaseURLDev, databaseURLProd := "", ""
	corsDev, corsProd := []string{"http://localhost:3000"}, []string(nil)

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case err == nil:
			var f configFile
			if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
				return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
			}
			applyFile(&cfg, f)
			if f.Dependencies.PostgresURLDev != "" {
				databaseURLDev = f.Dependencies.PostgresURLDev
			}
			if f.Dependencies.PostgresURLProd != "" {
				databaseURLProd = f.Dependencies.PostgresURLProd
			}
			if len(f.CORS.OriginsDev) > 0 {
				corsDev = f.CORS.OriginsDev
			}
			if len(f.CORS.OriginsProd) > 0 {
				corsProd = f.CORS.OriginsProd
			}
		case errors.Is(err, fs.ErrNotExist):
		default:
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg.Environment = strings.ToLower(strings.TrimSpace(envOrDefault("ENVIRONMENT", cfg.Environment)))
	databaseURLDev = envOrDefault("DATABASE_URL_DEV", databaseURLDev)
	databaseURLProd = envOrDefault("DATABASE_URL_PROD", databaseURLProd)
	corsDev = envCSV("CORS_ORIGINS_DEV", corsDev)
	corsProd = envCSV("CORS_ORIGINS_PROD", corsProd)

	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.SecretKey = envOrDefault("SECRET_KEY", cfg.SecretKey)
	cfg.Algorithm = strings.ToUpper(strings.TrimSpace(envOrDefault("ALGORITHM", cfg.Algorithm)))
	cfg.APIPrefix = envOrDefault("API_PREFIX", cfg.APIPrefix)
	cfg.GoogleClientID = envOrDefault("GOOGLE_CLIENT_ID", cfg.GoogleClientID)
	cfg.GoogleClientSecret = envOrDefault("GOOGLE_CLIENT_SECRET", cfg.GoogleClientSecret)
	cfg.GoogleRedirectURL = envOrDefault("GOOGLE_REDIRECT_URL", cfg.GoogleRedirectURL)
	cfg.AutoMigrate = envBool("AUTO_MIGRATE", cfg.AutoMigrate)

	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = envInt("GRPC_PORT", cfg.GRPCPort)
	cfg.BcryptCost = envInt("BCRYPT_ROUNDS", cfg.BcryptCost)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))
	cfg.ListLimitMax = envInt("LIST_LIMIT_MAX", cfg.ListLimitMax)
	cfg.FailedThreshold = envInt("FAILED_LOGIN_THRESHOLD", cfg.FailedThreshold)

	cfg.AccessTokenTTL = time.Duration(envInt("ACCESS_TOKEN_EXPIRE_MINUTES", int(cfg.AccessTokenTTL.Minutes()))) * time.Minute
	cfg.ExtendedTokenTTL = time.Duration(envInt("EXTENDED_TOKEN_TTL_MINUTES", int(cfg.ExtendedTokenTTL.Minutes()))) * time.Minute
	cfg.LockoutDuration = time.Duration(envInt("ACCOUNT_LOCKOUT_MINUTES", int(cfg.LockoutDuration.Minutes()))) * time.Minute
	cfg.OAuthTimeout = time.Duration(envInt("OAUTH_TIMEOUT_SECONDS", int(cfg.OAuthTimeout.Seconds()))) * time.Second

	switch cfg.Environment {
	case EnvironmentDevelopment:
		cfg.DatabaseURL = databaseURLDev
		cfg.CORSOrigins = corsDev
	case EnvironmentProduction:
		cfg.DatabaseURL = databaseURLProd
		cfg.CORSOrigins = corsProd
	default:
		return Config{}, fmt.Errorf("unknown ENVIRONMENT %q", cfg.Environment)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyFile(cfg *Config, f configFile) {
	if f.Service.ID != "" {
		cfg.ServiceID = f.Service.ID
	}
	if f.Service.Environment != "" {
		cfg.Environment = f.Service.Environment
	}
	if f.Service.HTTPPort > 0 {
		cfg.HTTPPort = f.Service.HTTPPort
	}
	if f.Service.GRPCPort > 0 {
		cfg.GRPCPort = f.Service.GRPCPort
	}
	if f.Service.APIPrefix != "" {
		cfg.APIPrefix = f.Service.APIPrefix
	}
	if f.Dependencies.RedisURL != "" {
		cfg.RedisURL = f.Dependencies.RedisURL
	}
	if f.Dependencies.MaxDBConns > 0 {
		cfg.MaxDBConns = int32(f.Dependencies.MaxDBConns)
	}
	if f.Dependencies.AutoMigrate != nil {
		cfg.AutoMigrate = *f.Dependencies.AutoMigrate
	}
	if f.Auth.Algorithm != "" {
		cfg.Algorithm = f.Auth.Algorithm
	}
	if f.Auth.AccessTokenExpireMinutes > 0 {
		cfg.AccessTokenTTL = time.Duration(f.Auth.AccessTokenExpireMinutes) * time.Minute
	}
	if f.Auth.ExtendedTokenTTLMinutes > 0 {
		cfg.ExtendedTokenTTL = time.Duration(f.Auth.ExtendedTokenTTLMinutes) * time.Minute
	}
	if f.Auth.BcryptRounds > 0 {
		cfg.BcryptCost = f.Auth.BcryptRounds
	}
	if f.Auth.FailedLoginThreshold > 0 {
		cfg.FailedThreshold = f.Auth.FailedLoginThreshold
	}
	if f.Auth.AccountLockoutMinutes > 0 {
		cfg.LockoutDuration = time.Duration(f.Auth.AccountLockoutMinutes) * time.Minute
	}
	if f.Auth.ListLimitMax > 0 {
		cfg.ListLimitMax = f.Auth.ListLimitMax
	}
	if f.Google.ClientID != "" {
		cfg.GoogleClientID = f.Google.ClientID
	}
	if f.Google.RedirectURL != "" {
		cfg.GoogleRedirectURL = f.Google.RedirectURL
	}
	if f.Google.TimeoutSeconds > 0 {
		cfg.OAuthTimeout = time.Duration(f.Google.TimeoutSeconds) * time.Second
	}
}

func (c Config) validate() error {
	if c.DatabaseURL == "" {
		if c.Production() {
			return errors.New("missing DATABASE_URL_PROD")
		}
		return errors.New("missing DATABASE_URL_DEV")
	}
	if strings.TrimSpace(c.SecretKey) == "" {
		return errors.New("missing SECRET_KEY")
	}
	switch c.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("unsupported ALGORITHM %q", c.Algorithm)
	}
	if c.AccessTokenTTL <= 0 {
		return errors.New("ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}
	if c.ExtendedTokenTTL < c.AccessTokenTTL {
		return errors.New("EXTENDED_TOKEN_TTL_MINUTES must not be shorter than ACCESS_TOKEN_EXPIRE_MINUTES")
	}
	if c.HTTPPort <= 0 || c.GRPCPort <= 0 {
		return errors.New("HTTP_PORT and GRPC_PORT must be positive")
	}
	return nil
}

// envOrDefault returns an env var when present, otherwise the provided fallback.
func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// envInt parses integer env vars with safe fallback on empty/invalid values.
func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envBool(name string, fallback bool) bool {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	switch strings.ToLower(raw) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	default:
		return fallback
	}
}

// envCSV parses comma-separated env vars and removes empty segments.
func envCSV(name string, fallback []string) []string {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	parts := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		parts = append(parts, trimmed)
	}
	if len(parts) == 0 {
		return fallback
	}
	return parts
}
