package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/health-portal/internal/service/appointment"
	"github.com/jwalitptl/health-portal/pkg/logger"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(body), 0o600))
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, logger.FormatConsole, cfg.Log.Format)
	assert.True(t, cfg.Store.SeedDemoData)
	assert.Equal(t, "uuid", cfg.Store.IDStrategy)
	assert.False(t, cfg.Auth.VerifyPasswords)
	assert.Equal(t, "password", cfg.Auth.DemoPassword)
	assert.Zero(t, cfg.Auth.LoginLimit())
	assert.Equal(t, 5, cfg.Auth.LoginBurst)
	assert.Equal(t, appointment.DefaultTimeSlots, cfg.Booking.TimeSlots)
	assert.False(t, cfg.Booking.AllowWeekends)
	assert.Equal(t, 5*time.Minute, cfg.Dashboard.CacheTTL)
	assert.Equal(t, 3, cfg.Dashboard.UpcomingLimit)
	assert.Equal(t, 5, cfg.Dashboard.RecentLimit)
	assert.Equal(t, "portal", cfg.Metrics.Namespace)
}

func TestLoad_File(t *testing.T) {
	dir := writeConfig(t, `
log:
  level: debug
  format: json
store:
  id_strategy: sequence
booking:
  time_slots: ["08:00", "08:30"]
  allow_weekends: true
dashboard:
  cache_ttl: 30s
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, logger.FormatJSON, cfg.Log.Format)
	assert.Equal(t, "sequence", cfg.Store.IDStrategy)
	assert.True(t, cfg.Store.SeedDemoData)
	assert.Equal(t, []string{"08:00", "08:30"}, cfg.Booking.TimeSlots)
	assert.True(t, cfg.Booking.AllowWeekends)
	assert.Equal(t, 30*time.Second, cfg.Dashboard.CacheTTL)
	assert.Equal(t, 10*time.Minute, cfg.Dashboard.CleanupInterval)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := writeConfig(t, `
log:
  level: debug
store:
  id_strategy: sequence
`)
	t.Setenv("PORTAL_LOG_LEVEL", "warn")
	t.Setenv("PORTAL_STORE_ID_STRATEGY", "timestamp")
	t.Setenv("PORTAL_STORE_SEED_DEMO_DATA", "false")
	t.Setenv("PORTAL_AUTH_VERIFY_PASSWORDS", "true")
	t.Setenv("PORTAL_BOOKING_TIME_SLOTS", "10:00,10:15")
	t.Setenv("PORTAL_DASHBOARD_CACHE_TTL", "1m")
	t.Setenv("PORTAL_AUTH_LOGINS_PER_MINUTE", "30")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "timestamp", cfg.Store.IDStrategy)
	assert.False(t, cfg.Store.SeedDemoData)
	assert.True(t, cfg.Auth.VerifyPasswords)
	assert.Equal(t, []string{"10:00", "10:15"}, cfg.Booking.TimeSlots)
	assert.Equal(t, time.Minute, cfg.Dashboard.CacheTTL)
	assert.InDelta(t, 0.5, float64(cfg.Auth.LoginLimit()), 1e-9)
}

func TestLoad_ExplicitFile(t *testing.T) {
	dir := writeConfig(t, "metrics:\n  namespace: clinic\n")
	t.Setenv("PORTAL_CONFIG_FILE", filepath.Join(dir, "config.yml"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "clinic", cfg.Metrics.Namespace)

	t.Setenv("PORTAL_CONFIG_FILE", filepath.Join(dir, "missing.yml"))
	_, err = Load()
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"id strategy": "store:\n  id_strategy: random\n",
		"log format":  "log:\n  format: xml\n",
		"time slot":   "booking:\n  time_slots: [\"9am\"]\n",
		"limits":      "dashboard:\n  recent_limit: -1\n",
		"login burst": "auth:\n  login_burst: -2\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestConversions(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	apt := cfg.Booking.ToAppointmentConfig()
	assert.Equal(t, cfg.Booking.TimeSlots, apt.TimeSlots)
	apt.TimeSlots[0] = "00:00"
	assert.Equal(t, "09:00", cfg.Booking.TimeSlots[0])

	dash := cfg.Dashboard.ToDashboardConfig()
	assert.Equal(t, cfg.Dashboard.CacheTTL, dash.CacheDuration)
	assert.Equal(t, cfg.Dashboard.RecentLimit, dash.RecentLimit)

	lc := cfg.Log.ToLoggerConfig()
	assert.Equal(t, logger.InfoLevel, lc.Level)
}
