package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("MONGODB_DB_NAME", "bizdesk_test")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load("does-not-exist.env")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 168*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, 8.0, cfg.Worksheets.WorkdayHours)
	assert.Equal(t, "0 20 * * 5", cfg.Reporting.CronSchedule)
	assert.False(t, cfg.WhatsApp.Enabled())
	assert.False(t, cfg.Sheets.Enabled())
}

func TestLoad_MissingSecret(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_SECRET", "")

	_, err := Load("does-not-exist.env")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_InvalidWorkdayHours(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("WORKDAY_HOURS", "abc")

	_, err := Load("does-not-exist.env")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WORKDAY_HOURS")
}

func TestLoad_OptionalSinks(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("WHATSAPP_TOKEN", "token")
	t.Setenv("WHATSAPP_PHONE_NUMBER_ID", "123")
	t.Setenv("WHATSAPP_DIGEST_RECIPIENT", "224600000000")
	t.Setenv("GOOGLE_SHEETS_CREDENTIALS_PATH", "/tmp/creds.json")
	t.Setenv("GOOGLE_SHEET_DIGEST_ID", "sheet-id")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := Load("does-not-exist.env")
	require.NoError(t, err)

	assert.True(t, cfg.WhatsApp.Enabled())
	assert.True(t, cfg.Sheets.Enabled())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
}

func TestValidate_InvalidTimezone(t *testing.T) {
	cfg := &Config{
		Server:     ServerConfig{Port: "8080"},
		MongoDB:    MongoDBConfig{URI: "mongodb://x", DBName: "db"},
		Auth:       AuthConfig{JWTSecret: "s", SessionTTL: time.Hour},
		Worksheets: WorksheetsConfig{WorkdayHours: 8},
		Reporting:  ReportingConfig{CronSchedule: "* * * * *", Timezone: "Mars/Olympus"},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TIMEZONE")
}
