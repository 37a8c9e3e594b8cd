package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults registers every key so environment variables bind on Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("network", string(Testnet))
	v.SetDefault("endpoint", "")

	v.SetDefault("wallet.seed", "")
	v.SetDefault("wallet.issuer_seed", "")

	v.SetDefault("log.debug", false)

	v.SetDefault("portfolio.lookup_workers", 4)

	v.SetDefault("ledger.page_size", 200)
	v.SetDefault("ledger.submit_timeout", 60*time.Second)

	v.SetDefault("amm.safety_buffer_xrp", "1")
}
