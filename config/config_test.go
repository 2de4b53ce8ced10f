package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "SHELLUSDT", cfg.Trading.Symbol)
	assert.Equal(t, "15m", cfg.Trading.Interval)
	assert.Equal(t, 0.6, cfg.Trading.BuyThreshold)
	assert.Equal(t, -0.6, cfg.Trading.SellThreshold)
	assert.Equal(t, "buntdb", cfg.Storage.Driver)
	assert.NotEmpty(t, cfg.API.News.RSSFeeds)
}

func TestLoadWritesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg, err := Load(path)
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Trading.Symbol, cfg.Trading.Symbol)
	assert.Equal(t, Default().Monitoring.RefreshIntervalSec, cfg.Monitoring.RefreshIntervalSec)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
		"trading": {
			"symbol": "BTCUSDT",
			"interval": "1h",
			"trade_quantity": 50,
			"initial_balance": 5000,
			"buy_threshold": 0.7,
			"sell_threshold": -0.7
		},
		"monitoring": {"refresh_interval_seconds": 30},
		"storage": {"driver": "memory"}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "BTCUSDT", cfg.Trading.Symbol)
	assert.Equal(t, "1h", cfg.Trading.Interval)
	assert.Equal(t, 0.7, cfg.Trading.BuyThreshold)
	assert.Equal(t, 30, cfg.Monitoring.RefreshIntervalSec)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	// defaults still fill the rest
	assert.Equal(t, Default().Monitoring.PriceLogDir, cfg.Monitoring.PriceLogDir)
}

func TestValidateRejectsBadThresholds(t *testing.T) {
	cfg := Default()
	cfg.Trading.BuyThreshold = -0.5
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Trading.SellThreshold = 0.5
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsBadInterval(t *testing.T) {
	cfg := Default()
	cfg.Trading.Interval = "7m"
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsBadStorageDriver(t *testing.T) {
	cfg := Default()
	cfg.Storage.Driver = "postgres"
	require.Error(t, cfg.Validate())
}

func TestSettings(t *testing.T) {
	cfg := Default()
	cfg.API.Telegram.Enabled = true
	cfg.API.Telegram.Token = "token"
	cfg.API.Telegram.Users = []int{42}

	settings := cfg.Settings()

	require.Equal(t, []string{"SHELLUSDT"}, settings.Pairs)
	assert.True(t, settings.Telegram.Enabled)
	assert.Equal(t, "token", settings.Telegram.Token)
	assert.Equal(t, []int{42}, settings.Telegram.Users)
}
