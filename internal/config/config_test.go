package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, key := range []string{"APP_PORT", "STORAGE_DRIVER", "SETTINGS_DRIVER", "ANTHROPIC_API_KEY", "WHATSAPP_TOKEN", "TIMEZONE"} {
		t.Setenv(key, "")
	}

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, SettingsFile, cfg.Settings.Driver)
	assert.Equal(t, "Africa/Algiers", cfg.Reporting.Timezone)
	assert.False(t, cfg.AI.Enabled())
	assert.False(t, cfg.WhatsApp.Enabled())
	assert.False(t, cfg.Sheets.Enabled())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("STORAGE_DRIVER=MongoDB\nMONGODB_URI=mongodb://localhost:27017\nREDIS_DB=2\n"), 0o600))
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("MONGODB_URI", "")
	t.Setenv("REDIS_DB", "")
	// godotenv never overrides variables that are already set, even when empty.
	require.NoError(t, os.Unsetenv("STORAGE_DRIVER"))
	require.NoError(t, os.Unsetenv("MONGODB_URI"))
	require.NoError(t, os.Unsetenv("REDIS_DB"))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DriverMongoDB, cfg.Storage.Driver)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	assert.Equal(t, 2, cfg.Settings.RedisDB)
}

func TestLoadRejectsBadValues(t *testing.T) {
	chdir(t, t.TempDir())

	t.Setenv("REDIS_DB", "two")
	_, err := Load("")
	assert.ErrorContains(t, err, "REDIS_DB")

	t.Setenv("REDIS_DB", "")
	t.Setenv("STORAGE_DRIVER", "postgres")
	_, err = Load("")
	assert.ErrorContains(t, err, "STORAGE_DRIVER")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:    ServerConfig{Port: "8080"},
			Storage:   StorageConfig{Driver: DriverMemory},
			Settings:  SettingsConfig{Driver: SettingsFile, Path: "s.env"},
			WhatsApp:  WhatsAppConfig{BaseURL: "https://graph.facebook.com", APIVersion: "v20.0"},
			Backup:    BackupConfig{CronSchedule: "0 2 * * *"},
			Reporting: ReportingConfig{CronSchedule: "0 20 * * 0", Timezone: "UTC"},
		}
	}
	require.NoError(t, valid().Validate())

	cfg := valid()
	cfg.Settings = SettingsConfig{Driver: SettingsRedis}
	assert.ErrorContains(t, cfg.Validate(), "REDIS_ADDR")

	cfg = valid()
	cfg.Sheets.CredentialsPath = "creds.json"
	assert.ErrorContains(t, cfg.Validate(), "set together")

	cfg = valid()
	cfg.Storage = StorageConfig{Driver: DriverMongoDB}
	assert.ErrorContains(t, cfg.Validate(), "MONGODB_URI")

	var nilCfg *Config
	assert.Error(t, nilCfg.Validate())
}

// chdir changes the working directory for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
