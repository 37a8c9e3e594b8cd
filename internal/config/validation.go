package config

import (
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/LeJamon/rwaxrpl/internal/errs"
	"github.com/LeJamon/rwaxrpl/internal/ledger"
)

// ValidateConfig validates the complete configuration
func ValidateConfig(config *Config) error {
	if _, ok := Endpoints[config.Network]; !ok {
		return errs.Invalid("network", "%q is not one of mainnet, testnet, devnet", config.Network)
	}
	if config.Endpoint != "" {
		if err := validateEndpoint(config.Endpoint); err != nil {
			return err
		}
	}
	if config.Portfolio.LookupWorkers < 1 {
		return errs.Invalid("portfolio.lookup_workers", "must be at least 1")
	}
	if config.Ledger.PageSize < 1 || config.Ledger.PageSize > ledger.MaxPageSize {
		return errs.Invalid("ledger.page_size", "must be between 1 and %d", ledger.MaxPageSize)
	}
	if config.Ledger.SubmitTimeout <= 0 {
		return errs.Invalid("ledger.submit_timeout", "must be positive")
	}
	buf, err := decimal.NewFromString(config.AMM.SafetyBufferXRP)
	if err != nil || buf.IsNegative() {
		return errs.Invalid("amm.safety_buffer_xrp", "must be a non-negative number")
	}
	return nil
}

func validateEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return errs.Invalid("endpoint", "%v", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return errs.Invalid("endpoint", "scheme must be ws or wss, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errs.Invalid("endpoint", "missing host in %q", endpoint)
	}
	return nil
}
