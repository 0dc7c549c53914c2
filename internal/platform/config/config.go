package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	EnvPrefix     = "ATLAS"
	EnvConfigPath = "ATLAS_CONFIG"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// NullPolicy controls where countries without an indicator land in top-N rankings.
type NullPolicy string

const (
	NullPolicyExclude NullPolicy = "exclude"
	NullPolicyLast    NullPolicy = "last"
)

func (p NullPolicy) Valid() bool {
	return p == NullPolicyExclude || p == NullPolicyLast
}

type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Rollup        RollupConfig        `yaml:"rollup"`
	Resolution    ResolutionConfig    `yaml:"resolution"`
	Stats         StatsConfig         `yaml:"stats"`
	Import        ImportConfig        `yaml:"import"`
	Observability ObservabilityConfig `yaml:"observability"`
	Log           LogConfig           `yaml:"log"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	Mode            string        `yaml:"mode"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" split_words:"true"`
	CORSOrigins     []string      `yaml:"corsOrigins"     envconfig:"CORS_ORIGINS"`
}

type DatabaseConfig struct {
	Driver          string        `yaml:"driver"`
	DSN             string        `yaml:"dsn"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Name            string        `yaml:"name"`
	SSLMode         string        `yaml:"sslMode"         split_words:"true"`
	SQLitePath      string        `yaml:"sqlitePath"      split_words:"true"`
	MaxOpenConns    int           `yaml:"maxOpenConns"    split_words:"true"`
	MaxIdleConns    int           `yaml:"maxIdleConns"    split_words:"true"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime" split_words:"true"`
	SlowThreshold   time.Duration `yaml:"slowThreshold"   split_words:"true"`
	Tracing         bool          `yaml:"tracing"`
}

type RollupConfig struct {
	InstallDBTrigger bool          `yaml:"installDbTrigger" envconfig:"INSTALL_DB_TRIGGER"`
	TxTimeout        time.Duration `yaml:"txTimeout"        split_words:"true"`
}

type ResolutionConfig struct {
	CacheEnabled bool          `yaml:"cacheEnabled" split_words:"true"`
	CacheTTL     time.Duration `yaml:"cacheTTL"     envconfig:"CACHE_TTL"`
	RedisAddr    string        `yaml:"redisAddr"    split_words:"true"`
	RedisURL     string        `yaml:"redisURL"     envconfig:"REDIS_URL"`
	MaxAttempts  int           `yaml:"maxAttempts"  split_words:"true"`
}

type StatsConfig struct {
	NullPolicy NullPolicy `yaml:"nullPolicy" split_words:"true"`
	TopN       int        `yaml:"topN"       envconfig:"TOP_N"`
}

type ImportConfig struct {
	Concurrency int `yaml:"concurrency"`
}

type ObservabilityConfig struct {
	MetricsEnabled bool    `yaml:"metricsEnabled" split_words:"true"`
	OtelEnabled    bool    `yaml:"otelEnabled"    split_words:"true"`
	OtelEndpoint   string  `yaml:"otelEndpoint"   split_words:"true"`
	OtelInsecure   bool    `yaml:"otelInsecure"   split_words:"true"`
	SampleRatio    float64 `yaml:"sampleRatio"    split_words:"true"`
	ServiceName    string  `yaml:"serviceName"    split_words:"true"`
	Environment    string  `yaml:"environment"`
	Version        string  `yaml:"version"`
}

type LogConfig struct {
	Mode string `yaml:"mode"`
}

// Default returns the configuration used when neither a file nor the environment overrides a value.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			Mode:            "release",
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins: []string{
				"http://localhost:3000",
				"http://localhost:5173",
				"http://127.0.0.1:3000",
				"http://127.0.0.1:5173",
			},
		},
		Database: DatabaseConfig{
			Driver:          DriverPostgres,
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			Name:            "atlas",
			SSLMode:         "disable",
			MaxOpenConns:    20,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			SlowThreshold:   time.Second,
			Tracing:         true,
		},
		Rollup: RollupConfig{
			TxTimeout: 15 * time.Second,
		},
		Resolution: ResolutionConfig{
			CacheTTL:    10 * time.Minute,
			RedisAddr:   "localhost:6379",
			MaxAttempts: 3,
		},
		Stats: StatsConfig{
			NullPolicy: NullPolicyExclude,
			TopN:       5,
		},
		Import: ImportConfig{
			Concurrency: 4,
		},
		Observability: ObservabilityConfig{
			MetricsEnabled: true,
			SampleRatio:    0.1,
			ServiceName:    "atlas-backend",
		},
		Log: LogConfig{
			Mode: "dev",
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (or $ATLAS_CONFIG), and ATLAS_* variables.
func Load(path string) (*Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		path = strings.TrimSpace(os.Getenv(EnvConfigPath))
	}
	if path != "" {
		buf, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	c.Stats.NullPolicy = NullPolicy(strings.ToLower(strings.TrimSpace(string(c.Stats.NullPolicy))))
	if c.Stats.TopN <= 0 {
		c.Stats.TopN = 5
	}
	if c.Import.Concurrency <= 0 {
		c.Import.Concurrency = 1
	}
	if c.Resolution.MaxAttempts <= 0 {
		c.Resolution.MaxAttempts = 3
	}
	if c.Observability.SampleRatio < 0 {
		c.Observability.SampleRatio = 0
	}
	if c.Observability.SampleRatio > 1 {
		c.Observability.SampleRatio = 1
	}
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("database.driver: unsupported driver %q", c.Database.Driver))
	}
	if !c.Stats.NullPolicy.Valid() {
		errs = append(errs, fmt.Errorf("stats.nullPolicy: must be %q or %q", NullPolicyExclude, NullPolicyLast))
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr: required"))
	}
	if c.Rollup.InstallDBTrigger && c.Database.Driver != DriverPostgres {
		errs = append(errs, errors.New("rollup.installDbTrigger: only supported on postgres"))
	}
	return errors.Join(errs...)
}

// PostgresDSN returns the explicit DSN or one assembled from the connection pieces.
func (d DatabaseConfig) PostgresDSN() string {
	if dsn := strings.TrimSpace(d.DSN); dsn != "" {
		return dsn
	}
	sslMode := strings.TrimSpace(d.SSLMode)
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Name,
		sslMode,
	)
}
