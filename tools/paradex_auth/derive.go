package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/tradeparadex/paradex-go/paradexapi"
)

type deriveOutput struct {
	EthAddress string `json:"ethAddress,omitempty"`
	Account    string `json:"account"`
	PublicKey  string `json:"publicKey"`
	Onboarded  bool   `json:"onboarded,omitempty"`
}

func (c *cli) deriveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Derive the Paradex account of an Ethereum wallet",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			creds, err := c.loadCredentials()
			if err != nil {
				return err
			}
			cfg, err := c.systemConfig(ctx)
			if err != nil {
				return err
			}
			acct, err := c.loadAccount(ctx, cfg, creds)
			if err != nil {
				return errors.Wrap(err, "derive")
			}

			out := deriveOutput{Account: acct.Address(), PublicKey: acct.PublicKeyHex()}
			if creds.eth != nil {
				out.EthAddress = creds.eth.Address().Hex()
			}
			if l1 := strings.TrimSpace(c.v.GetString("l1-address")); l1 != "" {
				out.EthAddress = l1
			}

			if c.v.GetBool("onboard") {
				if out.EthAddress == "" {
					return errors.New("onboarding needs an Ethereum address (use --l1-address with --stark-key)")
				}
				apiBase, err := c.apiBase()
				if err != nil {
					return err
				}
				if err := paradexapi.New(apiBase).Onboard(ctx, out.EthAddress, acct); err != nil {
					return errors.Wrap(err, "onboarding")
				}
				out.Onboarded = true
			}

			return c.emit(out, func(w io.Writer) {
				if out.EthAddress != "" {
					fmt.Fprintf(w, "Ethereum address: %s\n", out.EthAddress)
				}
				fmt.Fprintf(w, "Paradex account:  %s\n", out.Account)
				fmt.Fprintf(w, "STARK public key: %s\n", out.PublicKey)
				if out.Onboarded {
					fmt.Fprintln(w, "Onboarded")
				}
			})
		},
	}
	cmd.Flags().Bool("onboard", false, "Register the account with the Paradex API")
	cmd.Flags().String("l1-address", "", "Ethereum account address (0x...) used for onboarding")
	return cmd
}
