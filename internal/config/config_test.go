package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/rwaxrpl/internal/errs"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"RWA_NETWORK", "RWA_ENDPOINT", "RWA_WALLET_SEED", "RWA_WALLET_ISSUER_SEED",
		"RWA_LOG_DEBUG", "RWA_PORTFOLIO_LOOKUP_WORKERS", "RWA_LEDGER_PAGE_SIZE",
		"RWA_LEDGER_SUBMIT_TIMEOUT", "RWA_AMM_SAFETY_BUFFER_XRP",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	config, err := LoadConfig(Options{})
	require.NoError(t, err)

	assert.Equal(t, Testnet, config.Network)
	assert.Equal(t, Endpoints[Testnet], config.ResolvedEndpoint())
	assert.Equal(t, 4, config.Portfolio.LookupWorkers)
	assert.Equal(t, 200, config.Ledger.PageSize)
	assert.Equal(t, 60*time.Second, config.Ledger.SubmitTimeout)
	assert.True(t, config.AMM.SafetyBuffer().Equal(decimal.NewFromInt(1)))
	assert.Empty(t, config.Wallet.Seed)
	assert.Empty(t, config.GetConfigPath())
}

func TestLoadConfigSources(t *testing.T) {
	clearEnv(t)
	tempDir := t.TempDir()

	mainConfigContent := `
network = "devnet"

[ledger]
page_size = 50

[portfolio]
lookup_workers = 8
`
	mainConfigPath := filepath.Join(tempDir, "rwaxrpl.toml")
	require.NoError(t, os.WriteFile(mainConfigPath, []byte(mainConfigContent), 0600))

	envPath := filepath.Join(tempDir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("RWA_WALLET_SEED=sEdTestSeedValue\nRWA_LEDGER_SUBMIT_TIMEOUT=15s\n"), 0600))
	t.Cleanup(func() {
		_ = os.Unsetenv("RWA_WALLET_SEED")
		_ = os.Unsetenv("RWA_LEDGER_SUBMIT_TIMEOUT")
	})

	t.Setenv("RWA_PORTFOLIO_LOOKUP_WORKERS", "2")

	config, err := LoadConfig(Options{
		File:      mainConfigPath,
		EnvFile:   envPath,
		Overrides: map[string]any{"endpoint": "ws://localhost:6006"},
	})
	require.NoError(t, err)

	assert.Equal(t, Devnet, config.Network)
	assert.Equal(t, 50, config.Ledger.PageSize)
	assert.Equal(t, 2, config.Portfolio.LookupWorkers, "environment wins over file")
	assert.Equal(t, 15*time.Second, config.Ledger.SubmitTimeout)
	assert.Equal(t, mainConfigPath, config.GetConfigPath())

	resolved := config.Resolve()
	assert.Equal(t, Devnet, resolved.Network)
	assert.Equal(t, "ws://localhost:6006", resolved.Endpoint)
	assert.Equal(t, "sEdTestSeedValue", resolved.Credential.Seed)
	assert.False(t, resolved.Credential.HasIssuer())
}

func TestLoadConfigMissingFiles(t *testing.T) {
	clearEnv(t)

	_, err := LoadConfig(Options{EnvFile: filepath.Join(t.TempDir(), "absent.env")})
	require.NoError(t, err)

	_, err = LoadConfig(Options{File: filepath.Join(t.TempDir(), "absent.toml")})
	require.Error(t, err)
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Network:   Mainnet,
			Portfolio: PortfolioConfig{LookupWorkers: 4},
			Ledger:    LedgerConfig{PageSize: 200, SubmitTimeout: time.Minute},
			AMM:       AMMConfig{SafetyBufferXRP: "1"},
		}
	}
	require.NoError(t, ValidateConfig(valid()))

	testcases := []struct {
		name   string
		field  string
		mutate func(*Config)
	}{
		{"UnknownNetwork", "network", func(c *Config) { c.Network = "localnet" }},
		{"HTTPEndpoint", "endpoint", func(c *Config) { c.Endpoint = "https://example.com" }},
		{"NoWorkers", "portfolio.lookup_workers", func(c *Config) { c.Portfolio.LookupWorkers = 0 }},
		{"PageTooLarge", "ledger.page_size", func(c *Config) { c.Ledger.PageSize = 401 }},
		{"NoTimeout", "ledger.submit_timeout", func(c *Config) { c.Ledger.SubmitTimeout = 0 }},
		{"NegativeBuffer", "amm.safety_buffer_xrp", func(c *Config) { c.AMM.SafetyBufferXRP = "-1" }},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			c := valid()
			tc.mutate(c)
			err := ValidateConfig(c)
			var verr *errs.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestCredentialRedacted(t *testing.T) {
	c := Credential{Seed: "sEdSecret", IssuerSeed: "sEdOther"}
	assert.NotContains(t, fmt.Sprintf("%v %+v %#v %s", c, c, c, c), "sEd")
	assert.True(t, c.HasIssuer())
}
