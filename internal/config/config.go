package config

import (
	"time"

	"github.com/shopspring/decimal"
)

// Network names a ledger environment.
type Network string

const (
	Mainnet Network = "mainnet"
	Testnet Network = "testnet"
	Devnet  Network = "devnet"
)

// Endpoints binds each network to its public websocket endpoint.
var Endpoints = map[Network]string{
	Mainnet: "wss://xrplcluster.com",
	Testnet: "wss://s.altnet.rippletest.net:51233",
	Devnet:  "wss://s.devnet.rippletest.net:51233",
}

// Config represents the complete rwaxrpl configuration
type Config struct {
	Network  Network `toml:"network" mapstructure:"network"`
	Endpoint string  `toml:"endpoint" mapstructure:"endpoint"`

	Wallet    WalletConfig    `toml:"wallet" mapstructure:"wallet"`
	Log       LogConfig       `toml:"log" mapstructure:"log"`
	Portfolio PortfolioConfig `toml:"portfolio" mapstructure:"portfolio"`
	Ledger    LedgerConfig    `toml:"ledger" mapstructure:"ledger"`
	AMM       AMMConfig       `toml:"amm" mapstructure:"amm"`

	configPath string
}

// WalletConfig holds the signing credentials. Seeds are never written back
// to disk or logs.
type WalletConfig struct {
	// Seed signs for the operating account (distribution, trader, LP).
	Seed string `toml:"seed" mapstructure:"seed"`
	// IssuerSeed signs for the issuing account. Optional.
	IssuerSeed string `toml:"issuer_seed" mapstructure:"issuer_seed"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Debug bool `toml:"debug" mapstructure:"debug"`
}

// PortfolioConfig tunes the holdings aggregator.
type PortfolioConfig struct {
	LookupWorkers int `toml:"lookup_workers" mapstructure:"lookup_workers"`
}

// LedgerConfig tunes the ledger client.
type LedgerConfig struct {
	PageSize      int           `toml:"page_size" mapstructure:"page_size"`
	SubmitTimeout time.Duration `toml:"submit_timeout" mapstructure:"submit_timeout"`
}

// AMMConfig tunes pool operations.
type AMMConfig struct {
	SafetyBufferXRP string `toml:"safety_buffer_xrp" mapstructure:"safety_buffer_xrp"`
}

// SafetyBuffer returns the extra XRP kept above reserves on pool creation.
func (c AMMConfig) SafetyBuffer() decimal.Decimal {
	d, err := decimal.NewFromString(c.SafetyBufferXRP)
	if err != nil {
		return decimal.NewFromInt(1)
	}
	return d
}

// GetConfigPath returns the config file the values were read from, if any.
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// ResolvedEndpoint returns the endpoint override or the network's endpoint.
func (c *Config) ResolvedEndpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return Endpoints[c.Network]
}

// Credential is the signing material handed to the core. It formats as a
// placeholder so it cannot end up in logs by accident.
type Credential struct {
	Seed       string
	IssuerSeed string
}

func (Credential) String() string   { return "credential(redacted)" }
func (Credential) GoString() string { return "credential(redacted)" }

// HasIssuer reports whether a separate issuing credential was configured.
func (c Credential) HasIssuer() bool { return c.IssuerSeed != "" }

// Resolved is the {credential, network, endpoint} triple the core consumes.
type Resolved struct {
	Credential Credential
	Network    Network
	Endpoint   string
}

// Resolve returns the triple the core consumes.
func (c *Config) Resolve() Resolved {
	return Resolved{
		Credential: Credential{Seed: c.Wallet.Seed, IssuerSeed: c.Wallet.IssuerSeed},
		Network:    c.Network,
		Endpoint:   c.ResolvedEndpoint(),
	}
}
