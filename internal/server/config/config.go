// Package config handles configuration for the server component,
// including defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the paylink server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the public HTTP endpoint.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty means in-memory repositories.
//   - SecretKey: HMAC secret for verifying JWTs (HS256). Do not use test defaults in prod.
//   - LedgerBaseURL: base URL of the ledger index used for transfer verification.
//   - LedgerRequestTimeout: per-call timeout for ledger index requests.
//   - PaymentRequestExpiry: fulfillment window for payment requests.
type Config struct {
	EndpointAddrHTTP     string
	DatabaseDSN          string
	SecretKey            string
	LedgerBaseURL        string
	LedgerRequestTimeout time.Duration
	PaymentRequestExpiry time.Duration
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.DatabaseDSN = ""
	c.SecretKey = "secretKey"
	c.LedgerBaseURL = "http://127.0.0.1:9100"
	c.LedgerRequestTimeout = 5 * time.Second
	c.PaymentRequestExpiry = 24 * time.Hour
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
