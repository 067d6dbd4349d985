package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, DriverPostgres, cfg.DB.Driver)
	assert.True(t, cfg.DB.Migrate)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, "SKU:", cfg.Labels.CodePrefix)
	assert.False(t, cfg.JWT.Enabled(), "sin JWT_SECRET la autenticación queda desactivada")
	assert.Equal(t, 1, cfg.Scanner.Qty)
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("DB_DRIVER", "SQLite")
	v.Set("SQLITE_PATH", "/tmp/stock.db")
	v.Set("HTTP_PORT", "9090")
	v.Set("JWT_SECRET", "s3cret")
	v.Set("SCANNER_API_URL", "http://stock.local:8080/")
	v.Set("DB_MIGRATE", false)

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, "/tmp/stock.db", cfg.DB.SQLitePath)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.True(t, cfg.JWT.Enabled())
	assert.Equal(t, "http://stock.local:8080", cfg.Scanner.APIURL)
	assert.False(t, cfg.DB.Migrate)
}

func TestFromViper_DriverInvalido(t *testing.T) {
	v := viper.New()
	v.Set("DB_DRIVER", "oracle")

	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestLoad_EnvTienePrioridad(t *testing.T) {
	t.Setenv("APP_NAME", "stock-test")
	t.Setenv("DB_PORT", "6543")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "stock-test", cfg.App.Name)
	assert.Equal(t, 6543, cfg.DB.Port)
}

func TestDBConfig_DSN(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss:w", DBName: "stock", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%3Aw@db:5432/stock?sslmode=disable", c.DSN())

	c.DatabaseURL = "postgres://x@y/z"
	assert.Equal(t, "postgres://x@y/z", c.ConnectionString())
}
