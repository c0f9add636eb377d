package config

import (
	"fmt"
	"maps"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverS3       = "s3"
	DriverMemory   = "memory"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
}

type ServerConfig struct {
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type StoreConfig struct {
	Driver   string         `yaml:"driver"`
	Postgres DatabaseConfig `yaml:"postgres"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	S3       S3Config       `yaml:"s3"`
	Retry    RetryConfig    `yaml:"retry"`
}

type DatabaseConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Name       string `yaml:"name"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	SSLMode    string `yaml:"sslmode"`
	Migrations string `yaml:"migrations"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Prefix          string `yaml:"prefix"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	UsePathStyle    bool   `yaml:"use_path_style"`
}

// RetryConfig controls how often a failed store call is retried.
// Attempts <= 1 disables retrying.
type RetryConfig struct {
	Attempts int           `yaml:"attempts"`
	Backoff  time.Duration `yaml:"backoff"`
}

type AnalysisConfig struct {
	Formula          string             `yaml:"formula"`
	Rule             string             `yaml:"rule"`
	BalanceCap       float64            `yaml:"balance_cap"`
	ReferenceWeights map[string]float64 `yaml:"reference_weights"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// DefaultReferenceWeights are the per-muscle-group target lifts (kg) used by
// the balance chart when the config does not set its own.
var DefaultReferenceWeights = map[string]float64{
	"Pecs":    100,
	"Dos":     100,
	"Jambes":  140,
	"Épaules": 60,
	"Bras":    45,
	"Abdos":   40,
}

// Default returns a config usable without a file: local sqlite, Epley, raw rule.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix LIFTLOG_ and underscore-separated paths:
//
//	LIFTLOG_SERVER_HOST, LIFTLOG_SERVER_PORT, LIFTLOG_STORE_DRIVER,
//	LIFTLOG_DB_HOST, LIFTLOG_DB_PORT, LIFTLOG_DB_NAME,
//	LIFTLOG_DB_USER, LIFTLOG_DB_PASSWORD, LIFTLOG_DB_SSLMODE,
//	LIFTLOG_SQLITE_PATH, LIFTLOG_S3_BUCKET, LIFTLOG_S3_REGION,
//	LIFTLOG_S3_ENDPOINT, LIFTLOG_S3_ACCESS_KEY_ID, LIFTLOG_S3_SECRET_ACCESS_KEY,
//	LIFTLOG_ANALYSIS_FORMULA, LIFTLOG_ANALYSIS_RULE
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LIFTLOG_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("LIFTLOG_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("LIFTLOG_STORE_DRIVER"); v != "" {
		cfg.Store.Driver = v
	}
	if v := os.Getenv("LIFTLOG_DB_HOST"); v != "" {
		cfg.Store.Postgres.Host = v
	}
	if v := os.Getenv("LIFTLOG_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Store.Postgres.Port = port
		}
	}
	if v := os.Getenv("LIFTLOG_DB_NAME"); v != "" {
		cfg.Store.Postgres.Name = v
	}
	if v := os.Getenv("LIFTLOG_DB_USER"); v != "" {
		cfg.Store.Postgres.User = v
	}
	if v := os.Getenv("LIFTLOG_DB_PASSWORD"); v != "" {
		cfg.Store.Postgres.Password = v
	}
	if v := os.Getenv("LIFTLOG_DB_SSLMODE"); v != "" {
		cfg.Store.Postgres.SSLMode = v
	}
	if v := os.Getenv("LIFTLOG_SQLITE_PATH"); v != "" {
		cfg.Store.SQLite.Path = v
	}
	if v := os.Getenv("LIFTLOG_S3_BUCKET"); v != "" {
		cfg.Store.S3.Bucket = v
	}
	if v := os.Getenv("LIFTLOG_S3_REGION"); v != "" {
		cfg.Store.S3.Region = v
	}
	if v := os.Getenv("LIFTLOG_S3_ENDPOINT"); v != "" {
		cfg.Store.S3.Endpoint = v
	}
	if v := os.Getenv("LIFTLOG_S3_ACCESS_KEY_ID"); v != "" {
		cfg.Store.S3.AccessKeyID = v
	}
	if v := os.Getenv("LIFTLOG_S3_SECRET_ACCESS_KEY"); v != "" {
		cfg.Store.S3.SecretAccessKey = v
	}
	if v := os.Getenv("LIFTLOG_ANALYSIS_FORMULA"); v != "" {
		cfg.Analysis.Formula = v
	}
	if v := os.Getenv("LIFTLOG_ANALYSIS_RULE"); v != "" {
		cfg.Analysis.Rule = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	if c.Store.Driver == "" {
		c.Store.Driver = DriverSQLite
	}
	if c.Store.SQLite.Path == "" {
		c.Store.SQLite.Path = "liftlog.db"
	}
	if c.Store.Postgres.Migrations == "" {
		c.Store.Postgres.Migrations = "migrations"
	}
	if c.Store.Retry.Attempts == 0 {
		c.Store.Retry.Attempts = 3
	}
	if c.Store.Retry.Backoff == 0 {
		c.Store.Retry.Backoff = time.Second
	}
	if c.Analysis.Formula == "" {
		c.Analysis.Formula = "epley"
	}
	if c.Analysis.Rule == "" {
		c.Analysis.Rule = "raw"
	}
	if c.Analysis.BalanceCap == 0 {
		c.Analysis.BalanceCap = 1.10
	}
	if len(c.Analysis.ReferenceWeights) == 0 {
		c.Analysis.ReferenceWeights = maps.Clone(DefaultReferenceWeights)
	}
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	switch c.Store.Driver {
	case DriverPostgres:
		if c.Store.Postgres.Host == "" {
			return fmt.Errorf("store.postgres.host is required")
		}
		if c.Store.Postgres.Port == 0 {
			return fmt.Errorf("store.postgres.port is required")
		}
		if c.Store.Postgres.Name == "" {
			return fmt.Errorf("store.postgres.name is required")
		}
		if c.Store.Postgres.User == "" {
			return fmt.Errorf("store.postgres.user is required")
		}
	case DriverSQLite, DriverMemory:
	case DriverS3:
		if c.Store.S3.Bucket == "" {
			return fmt.Errorf("store.s3.bucket is required")
		}
		if c.Store.S3.Region == "" {
			return fmt.Errorf("store.s3.region is required")
		}
	default:
		return fmt.Errorf("unknown store.driver %q", c.Store.Driver)
	}
	switch strings.ToLower(c.Analysis.Formula) {
	case "epley", "brzycki":
	default:
		return fmt.Errorf("unknown analysis.formula %q", c.Analysis.Formula)
	}
	switch strings.ToLower(c.Analysis.Rule) {
	case "raw", "intensity":
	default:
		return fmt.Errorf("unknown analysis.rule %q", c.Analysis.Rule)
	}
	if c.Analysis.BalanceCap < 1 {
		return fmt.Errorf("analysis.balance_cap must be >= 1")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	return nil
}
