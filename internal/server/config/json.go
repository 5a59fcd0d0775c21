package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/paylink/internal/flagx"
	"github.com/dmitrijs2005/paylink/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "24h" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, its fields are copied into the runtime Config
// struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddrHTTP     string         `json:"endpoint_addr_http"`
	DatabaseDSN          string         `json:"database_dsn"`
	SecretKey            string         `json:"secret_key"`
	LedgerBaseURL        string         `json:"ledger_base_url"`
	LedgerRequestTimeout timex.Duration `json:"ledger_request_timeout"`
	PaymentRequestExpiry timex.Duration `json:"payment_request_expiry"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The lookup order for the JSON file path is:
//
//	The -c or -config command-line flags.
//	If it is not set, no JSON file is loaded.
//
// If the file path is found, parseJson attempts to read and unmarshal it
// into a JsonConfig. Values present in the file are copied into the target
// Config; omitted fields keep their previous (default) values. If the file
// cannot be read or contains invalid JSON, the function panics.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	if c.EndpointAddrHTTP != "" {
		config.EndpointAddrHTTP = c.EndpointAddrHTTP
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.LedgerBaseURL != "" {
		config.LedgerBaseURL = c.LedgerBaseURL
	}
	if c.LedgerRequestTimeout.Duration != 0 {
		config.LedgerRequestTimeout = c.LedgerRequestTimeout.Duration
	}
	if c.PaymentRequestExpiry.Duration != 0 {
		config.PaymentRequestExpiry = c.PaymentRequestExpiry.Duration
	}
}
