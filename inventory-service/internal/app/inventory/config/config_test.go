package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	// Act
	cfg, err := Load()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:5000", cfg.Server.Address())
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Alerts.DedupWindow)
	assert.Equal(t, 7*24*time.Hour, cfg.Alerts.ListWindow)
	assert.Equal(t, 20, cfg.Alerts.ListLimit)
	assert.True(t, cfg.Alerts.GenerateOnRead)
	assert.False(t, cfg.Alerts.SerializeDedup)
	assert.Equal(t, "*/15 * * * *", cfg.Alerts.ScanSchedule)
	assert.Equal(t, []string{"admin", "manager"}, cfg.JWT.AllowedRoles)
	assert.False(t, cfg.JWT.AuthEnabled())
	assert.Equal(t, "localhost:6379", cfg.Redis.Address())
}

func TestLoad_EnvOverrides(t *testing.T) {
	// Arrange
	t.Setenv("DB_DRIVER", "MySQL")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("ALERTS_DEDUP_WINDOW", "12h")
	t.Setenv("ALERTS_GENERATE_ON_READ", "false")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("JWT_SECRET", "s3cret")

	// Act
	cfg, err := Load()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "inventario:inventario@tcp(db.internal:3306)/inventario?charset=utf8mb4&parseTime=True&loc=UTC", cfg.Database.DSN())
	assert.Equal(t, 12*time.Hour, cfg.Alerts.DedupWindow)
	assert.False(t, cfg.Alerts.GenerateOnRead)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.JWT.AuthEnabled())
}

func TestLoad_UnsupportedDriver(t *testing.T) {
	// Arrange
	t.Setenv("DB_DRIVER", "sqlite")

	// Act
	cfg, err := Load()

	// Assert
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "unsupported DB_DRIVER")
}

func TestValidate_InvalidAlertSettings(t *testing.T) {
	base := func() *Config {
		return &Config{
			Database: DatabaseConfig{Driver: "postgres"},
			Alerts:   AlertsConfig{DedupWindow: time.Hour, ListWindow: time.Hour, ListLimit: 20},
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero dedup window", func(c *Config) { c.Alerts.DedupWindow = 0 }},
		{"negative list window", func(c *Config) { c.Alerts.ListWindow = -time.Minute }},
		{"zero list limit", func(c *Config) { c.Alerts.ListLimit = 0 }},
		{"kafka without brokers", func(c *Config) { c.Kafka.Enabled = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDatabaseConfig_PostgresDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Driver:   "postgres",
		Host:     "localhost",
		Port:     "5432",
		User:     "u",
		Password: "p",
		DBName:   "inv",
		SSLMode:  "disable",
	}

	assert.Equal(t, "host=localhost port=5432 user=u password=p dbname=inv sslmode=disable", cfg.DSN())
}
