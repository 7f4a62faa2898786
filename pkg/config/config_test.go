package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jhoicas/manufactura-erp/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "1400", cfg.Accounts.Inventory)
	assert.Equal(t, "1410", cfg.Accounts.CategoryInventory["RAW_MATERIAL"])
	assert.Equal(t, 3*time.Second, cfg.DB.LockTimeout)
	assert.Equal(t, 2, cfg.DB.MinConns)
	assert.Equal(t, time.Hour, cfg.DB.MaxConnLifetime)
	assert.Equal(t, "manufactura-erp", cfg.DB.ApplicationName)
	assert.False(t, cfg.DB.ForceIPv4, "IPv4 forzado solo bajo demanda")
	assert.Equal(t, "log", cfg.Outbox.Publisher)
}

func TestLoad_DesdeEntorno(t *testing.T) {
	t.Setenv("DB_LOCK_TIMEOUT", "750ms")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("PERIOD_CACHE_TTL", "30")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DB_FORCE_IPV4", "true")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 750*time.Millisecond, cfg.DB.LockTimeout)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 30*time.Second, cfg.Cache.PeriodTTL, "un entero se interpreta en segundos")
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
	assert.True(t, cfg.DB.ForceIPv4)
}

func TestLoad_DuracionInvalida(t *testing.T) {
	t.Setenv("OUTBOX_INTERVAL", "pronto")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoadChart(t *testing.T) {
	chart, err := config.LoadChart("")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultChart, chart)

	path := filepath.Join(t.TempDir(), "chart.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`accounts:
  - code: "1100"
    name: Caja
    type: ASSET
  - code: "3100"
    name: Capital
    type: EQUITY
`), 0o600))
	chart, err = config.LoadChart(path)
	require.NoError(t, err)
	require.Len(t, chart, 2)
	assert.Equal(t, "Caja", chart[0].Name)
}

func TestDSN_EscapaContrasena(t *testing.T) {
	db := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss/w", DBName: "erp", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%2Fw@db:5432/erp?sslmode=disable", db.ConnectionString())
}
