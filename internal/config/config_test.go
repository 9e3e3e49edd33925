package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/fundrisk/internal/modules/risk"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FUNDRISK_DATA_DIR", dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, 8001, cfg.Port)
	assert.Equal(t, 21, cfg.MinFiles)
	assert.Equal(t, 500, cfg.MaxFiles)
	assert.Equal(t, int64(20<<20), cfg.MaxFileBytes)
	assert.Equal(t, 1.645, cfg.VaRZ)
	assert.Equal(t, 21, cfg.HorizonDays)
	assert.Equal(t, risk.DefaultConfig().Coefficients, cfg.Coefficients)
	assert.False(t, cfg.InboxEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("FUNDRISK_DATA_DIR", filepath.Join(t.TempDir(), "uploads"))
	t.Setenv("GO_PORT", "9090")
	t.Setenv("FUNDRISK_MIN_FILES", "5")
	t.Setenv("FUNDRISK_WORKERS", "8")
	t.Setenv("FUNDRISK_VAR_Z", "2.33")
	t.Setenv("FUNDRISK_VAR_MODEL", "historical")
	t.Setenv("FUNDRISK_CREDIT_COEF", "0.5")
	t.Setenv("FUNDRISK_S3_BUCKET", "funds")
	t.Setenv("FUNDRISK_INBOX_DIR", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.DirExists(t, cfg.DataDir)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 5, cfg.AggregationConfig().MinFiles)
	assert.Equal(t, 8, cfg.AggregationConfig().Workers)
	assert.True(t, cfg.InboxEnabled())

	rc := cfg.RiskConfig()
	assert.Equal(t, 2.33, rc.ZScore)
	assert.Equal(t, risk.ModelHistorical, rc.Model)
	assert.Equal(t, 0.5, rc.Coefficients.Credit)
	assert.Equal(t, 0.8, rc.Coefficients.InterestRate)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"port out of range", "GO_PORT", "70000"},
		{"max files below min files", "FUNDRISK_MAX_FILES", "3"},
		{"unknown log level", "LOG_LEVEL", "loud"},
		{"unknown model", "FUNDRISK_VAR_MODEL", "montecarlo"},
		{"non-positive z", "FUNDRISK_VAR_Z", "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("FUNDRISK_DATA_DIR", t.TempDir())
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_INT", "abc")
	t.Setenv("TEST_FLOAT", "0.25")
	t.Setenv("TEST_BOOL", "true")

	assert.Equal(t, 7, getEnvAsInt("TEST_INT", 7))
	assert.Equal(t, 0.25, getEnvAsFloat("TEST_FLOAT", 1))
	assert.True(t, getEnvAsBool("TEST_BOOL", false))
	assert.Equal(t, "fallback", getEnv("TEST_UNSET_KEY", "fallback"))
}
