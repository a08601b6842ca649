package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"valour-interiors/quotes_backend/internal/domain/quote/pdf/layout"
)

const EnvPrefix = "QUOTES"

type Config struct {
	HTTP    HTTPConfig
	DB      DBConfig
	Auth    AuthConfig
	Redis   RedisConfig
	Log     LogConfig
	Company CompanyConfig
	Export  ExportConfig
}

type HTTPConfig struct {
	Addr              string        `envconfig:"QUOTES_HTTP_ADDR" default:":8080"`
	CORSOrigins       []string      `envconfig:"QUOTES_CORS_ORIGINS" default:"*"`
	ReadHeaderTimeout time.Duration `envconfig:"QUOTES_HTTP_READ_HEADER_TIMEOUT" default:"10s"`
	ShutdownTimeout   time.Duration `envconfig:"QUOTES_HTTP_SHUTDOWN_TIMEOUT" default:"15s"`
}

type DBConfig struct {
	URL      string `envconfig:"QUOTES_DATABASE_URL" required:"true"`
	MaxConns int32  `envconfig:"QUOTES_DB_MAX_CONNS" default:"10"`
	MinConns int32  `envconfig:"QUOTES_DB_MIN_CONNS" default:"2"`
}

type AuthConfig struct {
	JWTSecret string        `envconfig:"QUOTES_JWT_SECRET" required:"true"`
	TokenTTL  time.Duration `envconfig:"QUOTES_JWT_TTL" default:"12h"`
}

// RedisConfig enables the suggestion cache when URL is set.
type RedisConfig struct {
	URL           string        `envconfig:"QUOTES_REDIS_URL"`
	SuggestionTTL time.Duration `envconfig:"QUOTES_REDIS_SUGGESTION_TTL" default:"10m"`
}

type LogConfig struct {
	Level  string `envconfig:"QUOTES_LOG_LEVEL" default:"info"`
	Format string `envconfig:"QUOTES_LOG_FORMAT" default:"json"`
}

// CompanyConfig is the letterhead printed on quotations.
type CompanyConfig struct {
	Name       string `envconfig:"QUOTES_COMPANY_NAME" default:"Valour Interiors"`
	Tagline    string `envconfig:"QUOTES_COMPANY_TAGLINE" default:"Interior Design & Build Studio"`
	Phone      string `envconfig:"QUOTES_COMPANY_PHONE"`
	Email      string `envconfig:"QUOTES_COMPANY_EMAIL"`
	Address    string `envconfig:"QUOTES_COMPANY_ADDRESS"`
	TaxID      string `envconfig:"QUOTES_COMPANY_GSTIN"`
	PreparedBy string `envconfig:"QUOTES_COMPANY_PREPARED_BY"`
	Terms      string `envconfig:"QUOTES_COMPANY_TERMS"`
	LogoPath   string `envconfig:"QUOTES_LOGO_PATH"`
}

type ExportConfig struct {
	ResolveExistingOnConflict bool `envconfig:"QUOTES_RESOLVE_EXISTING_ON_CONFLICT" default:"true"`
}

// Load reads .env when present and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if strings.TrimSpace(cfg.DB.URL) == "" {
		return Config{}, errors.New("QUOTES_DATABASE_URL must not be empty")
	}
	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		return Config{}, errors.New("QUOTES_JWT_SECRET must not be empty")
	}
	return cfg, nil
}

// MustLoad is Load for process startup; it exits on invalid configuration.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

func (c CompanyConfig) Letterhead() layout.Letterhead {
	lh := layout.Letterhead{
		Name:       c.Name,
		Tagline:    c.Tagline,
		Phone:      c.Phone,
		Email:      c.Email,
		Address:    c.Address,
		TaxID:      c.TaxID,
		PreparedBy: c.PreparedBy,
	}
	if t := strings.TrimSpace(c.Terms); t != "" {
		lh.Disclaimers = []string{t}
	}
	return lh
}
