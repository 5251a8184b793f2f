package main

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tradeparadex/paradex-go/config"
)

type errOutput struct {
	Error string `json:"error"`
}

func fatalJSON(msg string) {
	enc := json.NewEncoder(os.Stdout)
	_ = enc.Encode(errOutput{Error: msg})
	os.Exit(1)
}

// cli carries the state shared by every command. Flags are bound into v, so
// each one can also be set from a PARADEX_* environment variable.
type cli struct {
	v   *viper.Viper
	in  io.Reader
	out io.Writer
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	c := &cli{v: viper.New(), in: in, out: out}
	c.v.SetEnvPrefix("PARADEX")
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "paradex-auth",
		Short:         "Derive Paradex accounts and sign authenticated fullnode RPC calls",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.v.BindPFlags(cmd.Flags()); err != nil {
				return err
			}
			c.setupLogging()
			return nil
		},
	}
	root.SetIn(in)
	root.SetOut(out)

	pf := root.PersistentFlags()
	pf.String("api-base", "", "Paradex REST base URL (overrides --env)")
	pf.String("env", string(config.Prod), "Paradex environment: prod | testnet")
	pf.String("rpc-url", "", "Fullnode RPC URL (default: starknet_fullnode_rpc_url from the system config)")
	pf.Bool("json", false, "Output JSON")
	pf.BoolP("verbose", "v", false, "Enable debug logging")
	addCredentialFlags(pf)

	root.AddCommand(
		c.deriveCmd(),
		c.headersCmd(),
		c.callCmd(),
		c.balanceCmd(),
		c.keyringCmd(),
	)
	return root
}

func (c *cli) setupLogging() {
	if c.v.GetBool("verbose") {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

// emit writes v as JSON when --json is set, and the text rendering otherwise.
func (c *cli) emit(v any, text func(w io.Writer)) error {
	if c.v.GetBool("json") {
		enc := json.NewEncoder(c.out)
		enc.SetEscapeHTML(false)
		return enc.Encode(v)
	}
	text(c.out)
	return nil
}

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		fatalJSON(err.Error())
	}
}
