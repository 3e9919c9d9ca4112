package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/izposoja/internal/errs"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "izposoja.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "izposoja.sqlite3", c.DBPath)
	assert.Equal(t, ":8080", c.Addr)
	assert.True(t, c.AuditDB)

	p, err := c.Policy()
	require.NoError(t, err)
	assert.True(t, p.DailyLateFee.Equal(decimal.NewFromInt(5000)))
	assert.Equal(t, 30, p.MaxDays)

	tariff, err := c.Tariff()
	require.NoError(t, err)
	cost, err := tariff.Lookup("JNT")
	require.NoError(t, err)
	assert.True(t, cost.Equal(decimal.NewFromInt(12000)))
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
db: /var/lib/izposoja/shop.sqlite3
addr: 127.0.0.1:9000
rental:
  daily_late_fee: 7500
  max_days: 14
shipping:
  Kurir Toko: 10000
`)

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/izposoja/shop.sqlite3", c.DBPath)
	assert.Equal(t, "127.0.0.1:9000", c.Addr)

	p, err := c.Policy()
	require.NoError(t, err)
	assert.True(t, p.DailyLateFee.Equal(decimal.NewFromInt(7500)))
	assert.Equal(t, 14, p.MaxDays)
	assert.Equal(t, 1, p.MinDays, "unset keys keep their defaults")

	tariff, err := c.Tariff()
	require.NoError(t, err)
	cost, err := tariff.Lookup("Kurir Toko")
	require.NoError(t, err)
	assert.True(t, cost.Equal(decimal.NewFromInt(10000)))
	_, err = tariff.Lookup("JNE")
	require.NoError(t, err, "default methods stay when the file adds one")
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "addr: 127.0.0.1:9000\n")
	t.Setenv("IZPOSOJA_ADDR", ":7000")
	t.Setenv("IZPOSOJA_MAX_QUANTITY", "3")
	t.Setenv("IZPOSOJA_AUDIT_DB", "false")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7000", c.Addr)
	assert.Equal(t, 3, c.Rental.MaxQuantity)
	assert.False(t, c.AuditDB)
}

func TestInvalidConfig(t *testing.T) {
	tests := map[string]string{
		"bad fee":      "rental:\n  daily_late_fee: lots\n",
		"days swapped": "rental:\n  min_days: 10\n  max_days: 5\n",
		"bad shipping": "shipping:\n  JNE: gratis\n",
		"empty db":     "db: \"\"\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, content))
			assert.ErrorIs(t, err, errs.ErrValidation)
		})
	}
}

func TestMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLookupEnvHelpers(t *testing.T) {
	t.Setenv("IZPOSOJA_TEST_INT", "x")
	assert.Equal(t, 4, LookupEnvInt("IZPOSOJA_TEST_INT", 4))
	t.Setenv("IZPOSOJA_TEST_BOOL", "maybe")
	assert.True(t, LookupEnvBool("IZPOSOJA_TEST_BOOL", true))
	assert.Equal(t, "d", LookupEnvString("IZPOSOJA_TEST_UNSET", "d"))
}
