package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/LeJamon/rwaxrpl/internal/config"
	"github.com/LeJamon/rwaxrpl/internal/errs"
	"github.com/LeJamon/rwaxrpl/internal/issuance"
	"github.com/LeJamon/rwaxrpl/internal/ledger"
	"github.com/LeJamon/rwaxrpl/internal/ledger/wsclient"
	"github.com/LeJamon/rwaxrpl/internal/logger"
	"github.com/LeJamon/rwaxrpl/internal/pool"
	"github.com/LeJamon/rwaxrpl/internal/portfolio"
	"github.com/LeJamon/rwaxrpl/internal/tools"
)

var (
	// Global flags
	configFile string
	envFile    string
	network    string
	endpoint   string
	debug      bool
)

// errToolFailed marks a call whose Result was already printed.
var errToolFailed = errors.New("tool returned an error")

var rootCmd = &cobra.Command{
	Use:   "rwaxrpl",
	Short: "rwaxrpl - tokenize real-world assets and trade them through XRPL AMM pools",
	Long: `rwaxrpl issues real-world asset tokens on the XRP Ledger, transfers them,
pays yield to holders and manages token/XRP AMM pools. Every operation is a
named tool taking JSON input and printing a JSON result.`,
	Version:       "0.1.0-dev",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	err := rootCmd.Execute()
	logger.Sync()
	if err == nil {
		return
	}
	if !errors.Is(err, errToolFailed) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(1)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with RWA_ variables")
	rootCmd.PersistentFlags().StringVar(&network, "network", "", "mainnet, testnet or devnet")
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "websocket endpoint overriding the network default")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig merges flags over file, dotenv and environment.
func loadConfig() (*config.Config, error) {
	overrides := map[string]any{}
	if network != "" {
		overrides["network"] = network
	}
	if endpoint != "" {
		overrides["endpoint"] = endpoint
	}
	if debug {
		overrides["log.debug"] = true
	}
	cfg, err := config.LoadConfig(config.Options{File: configFile, EnvFile: envFile, Overrides: overrides})
	if err != nil {
		return nil, err
	}
	if err := logger.Initialize(logger.Config{Debug: cfg.Log.Debug}); err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}
	return cfg, nil
}

// buildRegistry wires the tools against the configured ledger. Replaced in
// tests.
var buildRegistry = func(cfg *config.Config) (*tools.Registry, error) {
	resolved := cfg.Resolve()

	deps := tools.Deps{
		Dialer: wsclient.NewDialer(resolved.Endpoint, wsclient.Config{
			PageSize:      cfg.Ledger.PageSize,
			SubmitTimeout: cfg.Ledger.SubmitTimeout,
		}),
		Portfolio: portfolio.Options{
			Workers:         cfg.Portfolio.LookupWorkers,
			HistoryPageSize: cfg.Ledger.PageSize,
		},
		Issuance: issuance.Options{HistoryPageSize: cfg.Ledger.PageSize},
		Pool:     pool.Options{SafetyBuffer: cfg.AMM.SafetyBuffer()},
	}

	// Signers are assigned only when derived so a missing seed stays a nil
	// interface.
	if resolved.Credential.Seed != "" {
		s, err := ledger.NewWalletSigner(resolved.Credential.Seed)
		if err != nil {
			return nil, errs.Invalid("wallet.seed", "malformed signing credential")
		}
		deps.Operator = s
	}
	if resolved.Credential.HasIssuer() {
		s, err := ledger.NewWalletSigner(resolved.Credential.IssuerSeed)
		if err != nil {
			return nil, errs.Invalid("wallet.issuer_seed", "malformed signing credential")
		}
		deps.Issuer = s
	}

	logger.Debug("tools wired")
	return tools.New(deps), nil
}
