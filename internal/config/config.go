package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Environment string `toml:"environment"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	// exposes the cause of internal errors in responses
	Debug bool `toml:"debug"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
	PostgresUser   string `toml:"postgres_user"`
	MigrateOnStart bool   `toml:"migrate_on_start"`

	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// http
	AllowedOrigins              []string `toml:"allowed_origins"`
	LoginRateLimitAllowedPerMin int      `toml:"login_rate_limit_allowed_per_min"`
	AuthSessionTTL              Duration `toml:"auth_session_ttl"`

	// calendar dates for streaks and daily series are taken in this location
	Timezone string `toml:"timezone"`

	Stats Stats `toml:"stats"`
	Goals Goals `toml:"goals"`
}

type Stats struct {
	CacheEnabled bool `toml:"cache_enabled"`
	// megabytes
	CacheSizeMB int                 `toml:"cache_size_mb"`
	CacheTTL    map[string]Duration `toml:"cache_ttl"`
}

type Goals struct {
	WeeklySessions    int `toml:"weekly_sessions"`
	MonthlySessions   int `toml:"monthly_sessions"`
	StreakDays        int `toml:"streak_days"`
	WeeklyMinutes     int `toml:"weekly_minutes"`
	MonthlyMinutes    int `toml:"monthly_minutes"`
	WeeklyExercises   int `toml:"weekly_exercises"`
	WeeklyMuscleGroup int `toml:"weekly_muscle_groups"`
}

// Duration decodes TOML strings like "30m" or "168h".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	switch strings.ToLower(env) {
	case "dev", "development", "ddev", "dockerdev":
		return t.Development, nil
	case "prod", "production":
		return t.Production, nil
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
}

// Load reads the TOML file at path and returns the section for env with
// defaults filled in.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file: %w", err)
	}
	return fromToml(&t, env)
}

// Parse is Load for an in-memory document.
func Parse(env, data string) (*Config, error) {
	var t Toml
	if _, err := toml.Decode(data, &t); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return fromToml(&t, env)
}

func fromToml(t *Toml, env string) (*Config, error) {
	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("config section for env %s missing", env)
	}

	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) setDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 9000
	}
	if c.PostgresPort == "" {
		c.PostgresPort = "5432"
	}
	if c.PostgresUser == "" {
		c.PostgresUser = "postgres"
	}
	if c.RedisPort == "" {
		c.RedisPort = "6379"
	}
	if c.LoginRateLimitAllowedPerMin == 0 {
		c.LoginRateLimitAllowedPerMin = 15
	}
	if c.AuthSessionTTL.Duration == 0 {
		c.AuthSessionTTL.Duration = 7 * 24 * time.Hour
	}
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	if c.Stats.CacheSizeMB == 0 {
		c.Stats.CacheSizeMB = 32
	}

	defaultTTLs := map[string]time.Duration{
		"dashboard": 30 * time.Minute,
		"progresso": time.Hour,
		"rankings":  2 * time.Hour,
		"evolucao":  24 * time.Hour,
		"grupos":    4 * time.Hour,
		"default":   time.Hour,
	}
	if c.Stats.CacheTTL == nil {
		c.Stats.CacheTTL = map[string]Duration{}
	}
	for k, v := range defaultTTLs {
		if _, ok := c.Stats.CacheTTL[k]; !ok {
			c.Stats.CacheTTL[k] = Duration{v}
		}
	}

	if c.Goals.WeeklySessions == 0 {
		c.Goals.WeeklySessions = 3
	}
	if c.Goals.MonthlySessions == 0 {
		c.Goals.MonthlySessions = 12
	}
	if c.Goals.StreakDays == 0 {
		c.Goals.StreakDays = 7
	}
	if c.Goals.WeeklyMinutes == 0 {
		c.Goals.WeeklyMinutes = 180
	}
	if c.Goals.MonthlyMinutes == 0 {
		c.Goals.MonthlyMinutes = 720
	}
	if c.Goals.WeeklyExercises == 0 {
		c.Goals.WeeklyExercises = 10
	}
	if c.Goals.WeeklyMuscleGroup == 0 {
		c.Goals.WeeklyMuscleGroup = 4
	}
}

func (c *Config) validate() error {
	if c.PostgresHost == "" || c.PostgresDBName == "" {
		return errors.New("postgres host and db name must be set")
	}
	if c.RedisHost == "" {
		return errors.New("redis host must be set")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	return nil
}

// Location returns the configured time zone; validated on load.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// StatsCacheTTL returns the TTL for a stats report type, falling back to "default".
func (c *Config) StatsCacheTTL(reportType string) time.Duration {
	if ttl, ok := c.Stats.CacheTTL[reportType]; ok {
		return ttl.Duration
	}
	return c.Stats.CacheTTL["default"].Duration
}
