package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type LookupFunc func(string) (string, bool)

type Profile string

const (
	ProfileDev  Profile = "dev"
	ProfileTest Profile = "test"
	ProfileProd Profile = "prod"
)

const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

const (
	DriverSQLite   = "sqlite"
	DriverDuckDB   = "duckdb"
	DriverPostgres = "postgres"
)

const (
	SourceLocal = "local"
	SourceS3    = "s3"
)

const (
	PolicyFirstSelect = "first-select"
	PolicyReadOnly    = "read-only"
)

type Config struct {
	Profile       Profile
	Service       ServiceConfig
	HTTP          HTTPConfig
	Database      DatabaseConfig
	Loader        LoaderConfig
	ObjectStore   ObjectStoreConfig
	AI            AIConfig
	Prompt        PromptConfig
	Policy        PolicyConfig
	Observability ObservabilityConfig
}

type ServiceConfig struct {
	Name string
}

type HTTPConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig is shared by the API and the loader so both target the same file.
type DatabaseConfig struct {
	Driver string
	DSN    string
	Table  string
}

type LoaderConfig struct {
	Source    string
	DataDir   string
	BatchSize int
}

type ObjectStoreConfig struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	Prefix          string
}

type AIConfig struct {
	Provider       string
	BaseURL        string
	APIKey         string
	Model          string
	Temperature    *float64
	MaxTokens      int
	Timeout        time.Duration
	MaxAttempts    int
	RetryBaseDelay time.Duration
}

type PromptConfig struct {
	File string
}

type PolicyConfig struct {
	Mode string
}

type ObservabilityConfig struct {
	LogLevel slog.Level
	LogJSON  bool
}

// LoadFromEnv reads a .env file from the working directory when one exists and then
// resolves configuration from the process environment. Variables already set in the
// environment take precedence over the file.
func LoadFromEnv(serviceName string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env file: %w", err)
	}
	return Load(serviceName, os.LookupEnv)
}

func Load(serviceName string, lookup LookupFunc) (Config, error) {
	if lookup == nil {
		return Config{}, fmt.Errorf("lookup function is required")
	}

	profile := ProfileDev
	if raw, ok := lookup("SQLASSIST_PROFILE"); ok {
		profile = Profile(strings.ToLower(strings.TrimSpace(raw)))
	}
	if !isValidProfile(profile) {
		return Config{}, fmt.Errorf("invalid SQLASSIST_PROFILE: %q", profile)
	}

	cfg := defaultsForProfile(profile)
	if serviceName != "" {
		cfg.Service.Name = serviceName
	}

	appliers := []func() error{
		func() error { return applyString(lookup, "SQLASSIST_SERVICE_NAME", &cfg.Service.Name) },
		func() error { return applyString(lookup, "SQLASSIST_HTTP_ADDR", &cfg.HTTP.Address) },
		func() error { return applyDuration(lookup, "SQLASSIST_HTTP_READ_TIMEOUT", &cfg.HTTP.ReadTimeout) },
		func() error { return applyDuration(lookup, "SQLASSIST_HTTP_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout) },
		func() error { return applyDuration(lookup, "SQLASSIST_HTTP_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout) },
		func() error { return applyString(lookup, "SQLASSIST_DB_DRIVER", &cfg.Database.Driver) },
		func() error { return applyString(lookup, "SQLASSIST_DB_DSN", &cfg.Database.DSN) },
		func() error { return applyString(lookup, "SQLASSIST_DB_TABLE", &cfg.Database.Table) },
		func() error { return applyString(lookup, "SQLASSIST_LOADER_SOURCE", &cfg.Loader.Source) },
		func() error { return applyString(lookup, "SQLASSIST_LOADER_DATA_DIR", &cfg.Loader.DataDir) },
		func() error { return applyInt(lookup, "SQLASSIST_LOADER_BATCH_SIZE", &cfg.Loader.BatchSize) },
		func() error { return applyString(lookup, "SQLASSIST_OBJECTSTORE_ENDPOINT", &cfg.ObjectStore.Endpoint) },
		func() error { return applyString(lookup, "SQLASSIST_OBJECTSTORE_REGION", &cfg.ObjectStore.Region) },
		func() error { return applyString(lookup, "SQLASSIST_OBJECTSTORE_BUCKET", &cfg.ObjectStore.Bucket) },
		func() error {
			return applyString(lookup, "SQLASSIST_OBJECTSTORE_ACCESS_KEY", &cfg.ObjectStore.AccessKeyID)
		},
		func() error {
			return applyString(lookup, "SQLASSIST_OBJECTSTORE_SECRET_KEY", &cfg.ObjectStore.SecretAccessKey)
		},
		func() error { return applyBool(lookup, "SQLASSIST_OBJECTSTORE_USE_SSL", &cfg.ObjectStore.UseSSL) },
		func() error { return applyString(lookup, "SQLASSIST_OBJECTSTORE_PREFIX", &cfg.ObjectStore.Prefix) },
		func() error { return applyString(lookup, "SQLASSIST_AI_PROVIDER", &cfg.AI.Provider) },
		func() error { return applyString(lookup, "SQLASSIST_AI_BASE_URL", &cfg.AI.BaseURL) },
		func() error { return applyString(lookup, "SQLASSIST_AI_API_KEY", &cfg.AI.APIKey) },
		func() error { return applyString(lookup, "SQLASSIST_AI_MODEL", &cfg.AI.Model) },
		func() error { return applyOptionalFloat(lookup, "SQLASSIST_AI_TEMPERATURE", &cfg.AI.Temperature) },
		func() error { return applyInt(lookup, "SQLASSIST_AI_MAX_TOKENS", &cfg.AI.MaxTokens) },
		func() error { return applyDuration(lookup, "SQLASSIST_AI_TIMEOUT", &cfg.AI.Timeout) },
		func() error { return applyInt(lookup, "SQLASSIST_AI_MAX_ATTEMPTS", &cfg.AI.MaxAttempts) },
		func() error { return applyDuration(lookup, "SQLASSIST_AI_RETRY_BASE_DELAY", &cfg.AI.RetryBaseDelay) },
		func() error { return applyString(lookup, "SQLASSIST_PROMPT_FILE", &cfg.Prompt.File) },
		func() error { return applyString(lookup, "SQLASSIST_SQL_POLICY", &cfg.Policy.Mode) },
		func() error { return applyBool(lookup, "SQLASSIST_LOG_JSON", &cfg.Observability.LogJSON) },
		func() error { return applyLogLevel(lookup, "SQLASSIST_LOG_LEVEL", &cfg.Observability.LogLevel) },
	}
	for _, apply := range appliers {
		if err := apply(); err != nil {
			return Config{}, err
		}
	}

	cfg.AI.Provider = strings.ToLower(cfg.AI.Provider)
	if cfg.AI.Model == "" {
		cfg.AI.Model = defaultModel(cfg.AI.Provider)
	}
	if cfg.AI.APIKey == "" {
		if key, ok := lookup(providerKeyVariable(cfg.AI.Provider)); ok {
			cfg.AI.APIKey = strings.TrimSpace(key)
		}
	}
	cfg.Database.Driver = strings.ToLower(cfg.Database.Driver)
	cfg.Loader.Source = strings.ToLower(cfg.Loader.Source)
	cfg.Policy.Mode = strings.ToLower(cfg.Policy.Mode)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Service.Name == "" {
		return fmt.Errorf("service name is required")
	}
	if c.HTTP.Address == "" {
		return fmt.Errorf("http address is required")
	}
	switch c.Database.Driver {
	case DriverSQLite, DriverDuckDB, DriverPostgres:
	default:
		return fmt.Errorf("invalid SQLASSIST_DB_DRIVER: %q", c.Database.Driver)
	}
	if c.Database.Table == "" {
		return fmt.Errorf("database table is required")
	}
	switch c.Loader.Source {
	case SourceLocal, SourceS3:
	default:
		return fmt.Errorf("invalid SQLASSIST_LOADER_SOURCE: %q", c.Loader.Source)
	}
	if c.Loader.BatchSize <= 0 {
		return fmt.Errorf("invalid SQLASSIST_LOADER_BATCH_SIZE: %d", c.Loader.BatchSize)
	}
	switch c.AI.Provider {
	case ProviderGemini, ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("invalid SQLASSIST_AI_PROVIDER: %q", c.AI.Provider)
	}
	if c.AI.MaxAttempts < 1 {
		return fmt.Errorf("invalid SQLASSIST_AI_MAX_ATTEMPTS: %d", c.AI.MaxAttempts)
	}
	switch c.Policy.Mode {
	case PolicyFirstSelect, PolicyReadOnly:
	default:
		return fmt.Errorf("invalid SQLASSIST_SQL_POLICY: %q", c.Policy.Mode)
	}
	return nil
}

func defaultsForProfile(profile Profile) Config {
	cfg := Config{
		Profile: profile,
		Service: ServiceConfig{Name: "sqlassist-api"},
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 90 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			DSN:    "employee_details.db",
			Table:  "employee_details",
		},
		Loader: LoaderConfig{
			Source:    SourceLocal,
			DataDir:   "data",
			BatchSize: 500,
		},
		ObjectStore: ObjectStoreConfig{
			Endpoint: "localhost:9000",
			Region:   "us-east-1",
			Bucket:   "sqlassist",
			UseSSL:   false,
		},
		AI: AIConfig{
			Provider:       ProviderGemini,
			Timeout:        30 * time.Second,
			MaxAttempts:    1,
			RetryBaseDelay: 500 * time.Millisecond,
		},
		Policy: PolicyConfig{
			Mode: PolicyFirstSelect,
		},
		Observability: ObservabilityConfig{
			LogLevel: slog.LevelDebug,
			LogJSON:  true,
		},
	}

	switch profile {
	case ProfileTest:
		cfg.HTTP.Address = ":18080"
		cfg.Observability.LogLevel = slog.LevelWarn
	case ProfileProd:
		cfg.Observability.LogLevel = slog.LevelInfo
		cfg.ObjectStore.UseSSL = true
	}

	return cfg
}

func defaultModel(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return "gpt-4o-mini"
	case ProviderAnthropic:
		return "claude-3-5-haiku-latest"
	default:
		return "gemini-2.0-flash"
	}
}

func providerKeyVariable(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return "GEMINI_API_KEY"
	}
}

func isValidProfile(profile Profile) bool {
	switch profile {
	case ProfileDev, ProfileTest, ProfileProd:
		return true
	default:
		return false
	}
}

func applyString(lookup LookupFunc, key string, dst *string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	*dst = strings.TrimSpace(raw)
	return nil
}

func applyDuration(lookup LookupFunc, key string, dst *time.Duration) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyBool(lookup LookupFunc, key string, dst *bool) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyInt(lookup LookupFunc, key string, dst *int) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

// applyOptionalFloat leaves dst nil when the variable is unset or blank so the
// provider default applies.
func applyOptionalFloat(lookup LookupFunc, key string, dst **float64) error {
	raw, ok := lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = &value
	return nil
}

func applyLogLevel(lookup LookupFunc, key string, dst *slog.Level) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	level := strings.ToLower(strings.TrimSpace(raw))
	switch level {
	case "debug":
		*dst = slog.LevelDebug
	case "info":
		*dst = slog.LevelInfo
	case "warn", "warning":
		*dst = slog.LevelWarn
	case "error":
		*dst = slog.LevelError
	default:
		return fmt.Errorf("invalid %s: %q", key, raw)
	}
	return nil
}
