package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/health-portal/internal/repository/memory"
	"github.com/jwalitptl/health-portal/internal/service/appointment"
	"github.com/jwalitptl/health-portal/internal/service/dashboard"
	"github.com/jwalitptl/health-portal/pkg/logger"
	"github.com/jwalitptl/health-portal/pkg/validator"
)

// EnvPrefix prefixes every environment override, e.g. PORTAL_LOG_LEVEL.
const EnvPrefix = "PORTAL"

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type StoreConfig struct {
	SeedDemoData bool   `mapstructure:"seed_demo_data" split_words:"true"`
	IDStrategy   string `mapstructure:"id_strategy" split_words:"true"`
}

type AuthConfig struct {
	VerifyPasswords   bool    `mapstructure:"verify_passwords" split_words:"true"`
	BcryptCost        int     `mapstructure:"bcrypt_cost" split_words:"true"`
	MinPasswordLength int     `mapstructure:"min_password_length" split_words:"true"`
	DemoPassword      string  `mapstructure:"demo_password" split_words:"true"`
	LoginsPerMinute   float64 `mapstructure:"logins_per_minute" split_words:"true"`
	LoginBurst        int     `mapstructure:"login_burst" split_words:"true"`
}

type BookingConfig struct {
	TimeSlots      []string `mapstructure:"time_slots" split_words:"true"`
	AllowWeekends  bool     `mapstructure:"allow_weekends" split_words:"true"`
	AllowPastDates bool     `mapstructure:"allow_past_dates" split_words:"true"`
}

type DashboardConfig struct {
	CacheTTL        time.Duration `mapstructure:"cache_ttl" split_words:"true"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" split_words:"true"`
	UpcomingLimit   int           `mapstructure:"upcoming_limit" split_words:"true"`
	RecentLimit     int           `mapstructure:"recent_limit" split_words:"true"`
}

type MetricsConfig struct {
	Namespace string `mapstructure:"namespace"`
}

type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Store     StoreConfig     `mapstructure:"store"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Booking   BookingConfig   `mapstructure:"booking"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", logger.FormatConsole)

	v.SetDefault("store.seed_demo_data", true)
	v.SetDefault("store.id_strategy", memory.IDStrategyUUID)

	v.SetDefault("auth.verify_passwords", false)
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.min_password_length", 0)
	v.SetDefault("auth.demo_password", "password")
	v.SetDefault("auth.logins_per_minute", 0)
	v.SetDefault("auth.login_burst", 5)

	v.SetDefault("booking.time_slots", appointment.DefaultTimeSlots)
	v.SetDefault("booking.allow_weekends", false)
	v.SetDefault("booking.allow_past_dates", false)

	def := dashboard.DefaultConfig()
	v.SetDefault("dashboard.cache_ttl", def.CacheDuration)
	v.SetDefault("dashboard.cleanup_interval", def.CleanupInterval)
	v.SetDefault("dashboard.upcoming_limit", def.UpcomingLimit)
	v.SetDefault("dashboard.recent_limit", def.RecentLimit)

	v.SetDefault("metrics.namespace", "portal")
}

// Load reads config.yml from paths (default "." and "./config") when one
// exists, fills in defaults, then applies PORTAL_* environment overrides.
// PORTAL_CONFIG_FILE names an exact file instead.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if file := os.Getenv(EnvPrefix + "_CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yml")
		if len(paths) == 0 {
			paths = []string{".", "./config"}
		}
		for _, p := range paths {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the portal cannot start with.
func (c *Config) Validate() error {
	switch c.Log.Format {
	case logger.FormatConsole, logger.FormatJSON:
	default:
		return fmt.Errorf("invalid log.format %q", c.Log.Format)
	}
	if _, err := memory.NewIDGenerator(c.Store.IDStrategy); err != nil {
		return fmt.Errorf("invalid store.id_strategy: %w", err)
	}
	if len(c.Booking.TimeSlots) == 0 {
		return errors.New("booking.time_slots must not be empty")
	}
	for _, slot := range c.Booking.TimeSlots {
		if _, err := time.Parse(validator.ClockLayout, slot); err != nil {
			return fmt.Errorf("invalid booking time slot %q", slot)
		}
	}
	if c.Auth.MinPasswordLength < 0 {
		return errors.New("auth.min_password_length must not be negative")
	}
	if c.Auth.LoginsPerMinute < 0 || c.Auth.LoginBurst < 0 {
		return errors.New("auth login limits must not be negative")
	}
	if c.Dashboard.UpcomingLimit < 0 || c.Dashboard.RecentLimit < 0 {
		return errors.New("dashboard limits must not be negative")
	}
	return nil
}

func (c *LogConfig) ToLoggerConfig() *logger.Config {
	return &logger.Config{
		Level:  logger.ParseLevel(c.Level),
		Format: c.Format,
		Output: os.Stdout,
	}
}

// LoginLimit converts logins_per_minute to a per-second rate. Zero means
// unthrottled.
func (c *AuthConfig) LoginLimit() rate.Limit {
	return rate.Limit(c.LoginsPerMinute / 60)
}

func (c *BookingConfig) ToAppointmentConfig() appointment.Config {
	slots := make([]string, len(c.TimeSlots))
	copy(slots, c.TimeSlots)
	return appointment.Config{
		TimeSlots:      slots,
		AllowWeekends:  c.AllowWeekends,
		AllowPastDates: c.AllowPastDates,
	}
}

func (c *DashboardConfig) ToDashboardConfig() dashboard.Config {
	return dashboard.Config{
		CacheDuration:   c.CacheTTL,
		CleanupInterval: c.CleanupInterval,
		UpcomingLimit:   c.UpcomingLimit,
		RecentLimit:     c.RecentLimit,
	}
}
