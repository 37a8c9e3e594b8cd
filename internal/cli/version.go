package cli

import (
	"fmt"
	"runtime"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/LeJamon/rwaxrpl/internal/config"
	"github.com/LeJamon/rwaxrpl/internal/tools"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the build, the tool catalog size and the known networks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "rwaxrpl %s (%s %s/%s)\n", rootCmd.Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		fmt.Fprintf(out, "%d tools\n", len(tools.New(tools.Deps{}).Names()))

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		for _, n := range []config.Network{config.Mainnet, config.Testnet, config.Devnet} {
			fmt.Fprintf(tw, "  %s\t%s\n", n, config.Endpoints[n])
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
