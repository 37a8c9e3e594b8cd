package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/LeJamon/rwaxrpl/internal/tools"
)

var listJSON bool

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the available tools and their inputs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		registry, err := buildRegistry(cfg)
		if err != nil {
			return err
		}
		return listTools(cmd.OutOrStdout(), registry, listJSON)
	},
}

var callCmd = &cobra.Command{
	Use:   "call <tool> [json|-]",
	Short: "Run a tool",
	Long: `Run a tool with JSON input and print its result.

The input is the second argument, or standard input when it is "-".
Omitted input is treated as {}. The exit status is 1 when the result
has status "error".`,
	Example: `  rwaxrpl call validate_token_symbol '{"symbol":"BLD"}'
  rwaxrpl call estimate_swap '{"from":"XRP","to":"BLD.rN7n7otQDd6FczFgLdSqtcsAUxDkw6fzRH","amount":"100"}'
  echo '{"account":"r..."}' | rwaxrpl call get_portfolio -`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := readParams(cmd.InOrStdin(), args[1:])
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		registry, err := buildRegistry(cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		res := registry.Call(ctx, args[0], params)
		if err := printJSON(cmd.OutOrStdout(), res); err != nil {
			return err
		}
		if !res.OK() {
			return errToolFailed
		}
		return nil
	},
}

func init() {
	toolsCmd.Flags().BoolVar(&listJSON, "json", false, "print the catalog as JSON")
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(callCmd)
}

func readParams(stdin io.Reader, args []string) (json.RawMessage, error) {
	if len(args) == 0 {
		return nil, nil
	}
	if args[0] != "-" {
		return json.RawMessage(args[0]), nil
	}
	raw, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return raw, nil
}

type toolEntry struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Params      []tools.Param `json:"params"`
}

func listTools(w io.Writer, registry *tools.Registry, asJSON bool) error {
	all := registry.Tools()
	if asJSON {
		entries := make([]toolEntry, 0, len(all))
		for _, t := range all {
			entries = append(entries, toolEntry{Name: t.Name(), Description: t.Description(), Params: t.Params()})
		}
		return printJSON(w, entries)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, t := range all {
		fmt.Fprintf(tw, "%s\t%s\n", t.Name(), t.Description())
		for _, p := range t.Params() {
			req := "optional"
			if p.Required {
				req = "required"
			}
			fmt.Fprintf(tw, "  %s\t%s, %s\t%s\n", p.Name, p.Type, req, p.Constraint)
		}
	}
	return tw.Flush()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
