package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/paylink/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN (empty = in-memory repositories)
//	-s string   JWT HMAC secret key
//	-l string   ledger index base URL
//	-t int      ledger request timeout, seconds
//	-r int      payment request expiry, minutes
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are accepted as integers and then converted to
//     time.Duration values.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-l", "-t", "-r"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.LedgerBaseURL, "l", config.LedgerBaseURL, "ledger index base URL")

	ledgerRequestTimeout := fs.Int("t", int(config.LedgerRequestTimeout.Seconds()), "ledger_request_timeout (in seconds)")
	paymentRequestExpiry := fs.Int("r", int(config.PaymentRequestExpiry.Minutes()), "payment_request_expiry (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.LedgerRequestTimeout = time.Duration(*ledgerRequestTimeout) * time.Second
	config.PaymentRequestExpiry = time.Duration(*paymentRequestExpiry) * time.Minute
}
