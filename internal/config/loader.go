package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rpattn/listimport/internal/db"
	"github.com/rpattn/listimport/internal/domain"
	"github.com/spf13/viper"
)

// Field error policies.
const (
	OnFieldErrorSkip   = "skip"
	OnFieldErrorReject = "reject"
)

// Config is the run-scoped configuration shared by every component.
type Config struct {
	Database db.Config
	Target   TargetConfig
	Lookup   LookupConfig
	Taxonomy TaxonomyConfig
	Remote   RemoteConfig
	Import   ImportConfig
	Cache    CacheConfig
	Storage  StorageConfig
	Server   ServerConfig
	LogLevel string
}

// TargetConfig names the list records are imported into.
type TargetConfig struct {
	ListName string
	KeyField string
}

// LookupConfig names the list and field used for cross-list lookups.
type LookupConfig struct {
	ListName  string
	FieldName string
	FieldType string
}

// TaxonomyConfig controls term label matching.
type TaxonomyConfig struct {
	LCID            int
	TrimUnavailable bool
}

// RemoteConfig bounds every call to the target store.
type RemoteConfig struct {
	CallTimeout time.Duration
	MaxAttempts int
	RetryDelay  time.Duration
}

// ImportConfig controls record processing.
type ImportConfig struct {
	OnFieldError string
	Concurrency  int
	Columns      []domain.Column
}

// CacheConfig configures the optional valkey resolution cache.
type CacheConfig struct {
	Addr     string
	Password string
	TTL      time.Duration
}

// Enabled reports whether a cache address was configured.
func (c CacheConfig) Enabled() bool { return strings.TrimSpace(c.Addr) != "" }

// StorageConfig configures the optional object storage input source.
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Enabled reports whether an object storage endpoint was configured.
func (s StorageConfig) Enabled() bool { return strings.TrimSpace(s.Endpoint) != "" }

// ServerConfig configures the HTTP upload endpoint.
type ServerConfig struct {
	Addr           string
	AllowedOrigins []string
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() Config {
	layout := domain.DefaultLayout()
	return Config{
		Database: db.DefaultConfig(),
		Target: TargetConfig{
			ListName: "Import Target",
			KeyField: layout.KeyField,
		},
		Lookup: LookupConfig{
			ListName:  "Lookup Source",
			FieldName: "Title",
			FieldType: "Text",
		},
		Taxonomy: TaxonomyConfig{
			LCID:            domain.DefaultLCID,
			TrimUnavailable: true,
		},
		Remote: RemoteConfig{
			CallTimeout: 30 * time.Second,
			MaxAttempts: 3,
			RetryDelay:  time.Second,
		},
		Import: ImportConfig{
			OnFieldError: OnFieldErrorSkip,
			Concurrency:  1,
			Columns:      layout.Columns,
		},
		Cache: CacheConfig{
			TTL: time.Hour,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		LogLevel: "info",
	}
}

// Layout returns the field table for the configured columns and key field.
func (c Config) Layout() domain.Layout {
	return domain.Layout{
		Columns:  c.Import.Columns,
		KeyField: c.Target.KeyField,
	}
}

// Load reads config.yaml from configPath, applies LISTIMPORT_* environment
// overrides and falls back to DefaultConfig for anything unset.
func Load(configPath string) (Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.SetEnvPrefix("LISTIMPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range []string{
		"database.host", "database.port", "database.user", "database.password", "database.dbname", "database.sslmode",
		"target.list_name", "target.key_field",
		"lookup.list_name", "lookup.field_name", "lookup.field_type",
		"taxonomy.lcid", "taxonomy.trim_unavailable",
		"remote.call_timeout", "remote.max_attempts", "remote.retry_delay",
		"import.on_field_error", "import.concurrency",
		"cache.addr", "cache.password", "cache.ttl",
		"storage.endpoint", "storage.access_key", "storage.secret_key", "storage.bucket", "storage.use_ssl",
		"server.addr", "server.allowed_origins",
		"log.level",
	} {
		_ = v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if v.IsSet("database.host") {
		cfg.Database.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		cfg.Database.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		cfg.Database.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		cfg.Database.Password = v.GetString("database.password")
	}
	if v.IsSet("database.dbname") {
		cfg.Database.DBName = v.GetString("database.dbname")
	}
	if v.IsSet("database.sslmode") {
		cfg.Database.SSLMode = v.GetString("database.sslmode")
	}

	if v.IsSet("target.list_name") {
		cfg.Target.ListName = v.GetString("target.list_name")
	}
	if v.IsSet("target.key_field") {
		cfg.Target.KeyField = v.GetString("target.key_field")
	}

	if v.IsSet("lookup.list_name") {
		cfg.Lookup.ListName = v.GetString("lookup.list_name")
	}
	if v.IsSet("lookup.field_name") {
		cfg.Lookup.FieldName = v.GetString("lookup.field_name")
	}
	if v.IsSet("lookup.field_type") {
		cfg.Lookup.FieldType = v.GetString("lookup.field_type")
	}

	if v.IsSet("taxonomy.lcid") {
		cfg.Taxonomy.LCID = v.GetInt("taxonomy.lcid")
	}
	if v.IsSet("taxonomy.trim_unavailable") {
		cfg.Taxonomy.TrimUnavailable = v.GetBool("taxonomy.trim_unavailable")
	}

	if v.IsSet("remote.call_timeout") {
		cfg.Remote.CallTimeout = v.GetDuration("remote.call_timeout")
	}
	if v.IsSet("remote.max_attempts") {
		cfg.Remote.MaxAttempts = v.GetInt("remote.max_attempts")
	}
	if v.IsSet("remote.retry_delay") {
		cfg.Remote.RetryDelay = v.GetDuration("remote.retry_delay")
	}

	if v.IsSet("import.on_field_error") {
		cfg.Import.OnFieldError = strings.ToLower(strings.TrimSpace(v.GetString("import.on_field_error")))
	}
	if v.IsSet("import.concurrency") {
		cfg.Import.Concurrency = v.GetInt("import.concurrency")
	}
	if v.IsSet("import.columns") {
		var columns []domain.Column
		if err := v.UnmarshalKey("import.columns", &columns); err != nil {
			return cfg, fmt.Errorf("failed to decode import columns: %w", err)
		}
		cfg.Import.Columns = columns
	}

	if v.IsSet("cache.addr") {
		cfg.Cache.Addr = v.GetString("cache.addr")
	}
	if v.IsSet("cache.password") {
		cfg.Cache.Password = v.GetString("cache.password")
	}
	if v.IsSet("cache.ttl") {
		cfg.Cache.TTL = v.GetDuration("cache.ttl")
	}

	if v.IsSet("storage.endpoint") {
		cfg.Storage.Endpoint = v.GetString("storage.endpoint")
	}
	if v.IsSet("storage.access_key") {
		cfg.Storage.AccessKey = v.GetString("storage.access_key")
	}
	if v.IsSet("storage.secret_key") {
		cfg.Storage.SecretKey = v.GetString("storage.secret_key")
	}
	if v.IsSet("storage.bucket") {
		cfg.Storage.Bucket = v.GetString("storage.bucket")
	}
	if v.IsSet("storage.use_ssl") {
		cfg.Storage.UseSSL = v.GetBool("storage.use_ssl")
	}

	if v.IsSet("server.addr") {
		cfg.Server.Addr = v.GetString("server.addr")
	}
	if v.IsSet("server.allowed_origins") {
		cfg.Server.AllowedOrigins = v.GetStringSlice("server.allowed_origins")
	}

	if v.IsSet("log.level") {
		cfg.LogLevel = v.GetString("log.level")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the values the import cannot run without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Target.ListName) == "" {
		return errors.New("target list name is required")
	}
	if strings.TrimSpace(c.Target.KeyField) == "" {
		return errors.New("target key field is required")
	}
	if len(c.Import.Columns) == 0 {
		return errors.New("at least one import column is required")
	}
	switch c.Import.OnFieldError {
	case OnFieldErrorSkip, OnFieldErrorReject:
	default:
		return fmt.Errorf("invalid import.on_field_error %q (want %s or %s)", c.Import.OnFieldError, OnFieldErrorSkip, OnFieldErrorReject)
	}
	if c.Remote.MaxAttempts < 1 {
		return errors.New("remote.max_attempts must be at least 1")
	}
	if c.Remote.CallTimeout <= 0 {
		return errors.New("remote.call_timeout must be positive")
	}
	return nil
}
