package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/rwaxrpl/internal/config"
	"github.com/LeJamon/rwaxrpl/internal/ledgertest"
	"github.com/LeJamon/rwaxrpl/internal/tools"
)

const holder = "rPT1Sjq2YGrBMTttX4GZHjKu9dyfzbpAYe"

// run executes the root command against a fake ledger.
func run(t *testing.T, l *ledgertest.Ledger, stdin string, args ...string) (string, error) {
	t.Helper()

	orig := buildRegistry
	buildRegistry = func(*config.Config) (*tools.Registry, error) {
		return tools.New(tools.Deps{Dialer: l}), nil
	}
	t.Cleanup(func() { buildRegistry = orig })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--env-file", ""}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCallPrintsResult(t *testing.T) {
	out, err := run(t, ledgertest.New(), "", "call", "validate_token_symbol", `{"symbol":"BLD"}`)
	require.NoError(t, err)

	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "success", res["status"])
	assert.Equal(t, true, res["data"].(map[string]any)["valid"])
}

func TestCallReadsStdin(t *testing.T) {
	l := ledgertest.New()
	l.Fund(holder, decimal.NewFromInt(50))

	out, err := run(t, l, `{"account":"`+holder+`"}`, "call", "get_holdings", "-")
	require.NoError(t, err)
	assert.Contains(t, out, `"status": "success"`)
	assert.Equal(t, 1, l.Calls("Dial"))
}

func TestCallErrorResultFailsCommand(t *testing.T) {
	out, err := run(t, ledgertest.New(), "", "call", "get_holdings", `{"account":"nope"}`)

	assert.ErrorIs(t, err, errToolFailed)
	assert.Contains(t, out, `"kind": "InvalidAddressError"`)
}

func TestCallWithoutSeedRefusesSigningTools(t *testing.T) {
	l := ledgertest.New()
	out, err := run(t, l, "", "call", "amm_bid", `{"asset1":"XRP","asset2":"BLD.rN7n7otQDd6FczFgLdSqtcsAUxDkw6fzRH"}`)

	assert.ErrorIs(t, err, errToolFailed)
	assert.Contains(t, out, `"field": "wallet.seed"`)
	assert.Zero(t, l.Calls("Dial"))
}

func TestToolsList(t *testing.T) {
	out, err := run(t, ledgertest.New(), "", "tools", "--json")
	require.NoError(t, err)

	var entries []toolEntry
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	assert.Len(t, entries, 15)
	assert.Equal(t, "amm_bid", entries[0].Name)
}

func TestReadParams(t *testing.T) {
	raw, err := readParams(strings.NewReader("ignored"), nil)
	require.NoError(t, err)
	assert.Nil(t, raw)

	raw, err = readParams(strings.NewReader("ignored"), []string{`{"a":1}`})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(raw))

	raw, err = readParams(strings.NewReader(`{"b":2}`), []string{"-"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"b":2}`, string(raw))
}

func TestVersion(t *testing.T) {
	l := ledgertest.New()
	out, err := run(t, l, "", "version")
	require.NoError(t, err)

	assert.Contains(t, out, "rwaxrpl 0.1.0-dev")
	assert.Contains(t, out, "15 tools")
	assert.Contains(t, out, "wss://s.altnet.rippletest.net:51233")
	assert.Zero(t, l.Calls("Dial"))
}
