package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tradeparadex/paradex-go/paraclear"
)

type balanceOutput struct {
	Account   string `json:"account"`
	Token     string `json:"token"`
	Balance   string `json:"balance"`
	ChainSize string `json:"chainSize"`
}

func (c *cli) balanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show the account's Paraclear token balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := c.client(cmd)
			if err != nil {
				return err
			}
			token := c.v.GetString("token")
			bal, err := client.GetTokenBalance(cmd.Context(), token)
			if err != nil {
				return err
			}
			raw, err := paraclear.ToChainSize(bal.String(), client.Config().ParaclearDecimals)
			if err != nil {
				return err
			}

			out := balanceOutput{
				Account:   client.Address(),
				Token:     token,
				Balance:   bal.String(),
				ChainSize: raw.String(),
			}
			return c.emit(out, func(w io.Writer) {
				fmt.Fprintf(w, "%s %s\n", out.Balance, out.Token)
			})
		},
	}
	cmd.Flags().String("token", "USDC", "Bridged token symbol")
	return cmd
}
