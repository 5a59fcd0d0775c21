package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"endpoint_addr_http":     "www.example:9000",
		"database_dsn":           "postgres://paylink",
		"secret_key":             "my_secret_key",
		"ledger_base_url":        "http://ledger:9100",
		"ledger_request_timeout": "10s",
		"payment_request_expiry": "48h",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, "www.example:9000", cfg.EndpointAddrHTTP)
		assert.Equal(t, "postgres://paylink", cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, "http://ledger:9100", cfg.LedgerBaseURL)
		assert.Equal(t, 10*time.Second, cfg.LedgerRequestTimeout)
		assert.Equal(t, 48*time.Hour, cfg.PaymentRequestExpiry)
	})

	t.Run("no CONFIG and no flags → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{
			EndpointAddrHTTP:     "defaults:1234",
			DatabaseDSN:          "postgres://defaults",
			SecretKey:            "key",
			LedgerBaseURL:        "http://defaults:9100",
			LedgerRequestTimeout: 2 * time.Second,
			PaymentRequestExpiry: 12 * time.Hour,
		}
		parseJson(cfg)

		assert.Equal(t, "defaults:1234", cfg.EndpointAddrHTTP)
		assert.Equal(t, "postgres://defaults", cfg.DatabaseDSN)
		assert.Equal(t, "key", cfg.SecretKey)
		assert.Equal(t, "http://defaults:9100", cfg.LedgerBaseURL)
		assert.Equal(t, 2*time.Second, cfg.LedgerRequestTimeout)
		assert.Equal(t, 12*time.Hour, cfg.PaymentRequestExpiry)
	})

	t.Run("partial json keeps remaining fields", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{
			"endpoint_addr_http": "partial:8081",
		})
		os.Args = []string{"testbin", "-config", partial}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "partial:8081", cfg.EndpointAddrHTTP)
		assert.Equal(t, "secretKey", cfg.SecretKey)
		assert.Equal(t, 24*time.Hour, cfg.PaymentRequestExpiry)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseJson(cfg) })
	})
}
