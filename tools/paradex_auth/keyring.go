package main

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/zalando/go-keyring"
)

type keyringOutput struct {
	EthAddress string   `json:"ethAddress,omitempty"`
	Stored     string   `json:"stored,omitempty"`
	Deleted    []string `json:"deleted,omitempty"`
}

func (c *cli) keyringCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keyring",
		Short: "Manage the Ethereum secret stored in the OS keyring",
	}
	cmd.AddCommand(c.keyringSetCmd(), c.keyringDeleteCmd())
	return cmd
}

func (c *cli) keyringSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set",
		Short: "Store an Ethereum private key or mnemonic",
		RunE: func(cmd *cobra.Command, args []string) error {
			var secret string
			switch {
			case c.v.GetString("private-key") != "":
				secret = c.v.GetString("private-key")
			case c.v.GetString("mnemonic") != "":
				secret = c.v.GetString("mnemonic")
			default:
				s, err := c.readSecret()
				if err != nil {
					return err
				}
				secret = s
			}
			eth, err := c.ethSigner(secret)
			if err != nil {
				return err
			}

			user, other := keyringPrivateKey, keyringMnemonic
			if isMnemonic(secret) {
				user, other = keyringMnemonic, keyringPrivateKey
			}
			if err := keyring.Set(keyringService, user, secret); err != nil {
				return errors.Wrap(err, "keyring")
			}
			// A single identity is active at a time.
			if err := keyring.Delete(keyringService, other); err != nil && !errors.Is(err, keyring.ErrNotFound) {
				return errors.Wrap(err, "keyring")
			}

			out := keyringOutput{EthAddress: eth.Address().Hex(), Stored: user}
			return c.emit(out, func(w io.Writer) {
				fmt.Fprintf(w, "Stored %s for %s\n", out.Stored, out.EthAddress)
			})
		},
	}
}

func (c *cli) keyringDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Remove the stored Ethereum secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			var out keyringOutput
			for _, user := range []string{keyringPrivateKey, keyringMnemonic} {
				err := keyring.Delete(keyringService, user)
				switch {
				case err == nil:
					out.Deleted = append(out.Deleted, user)
				case errors.Is(err, keyring.ErrNotFound):
				default:
					return errors.Wrap(err, "keyring")
				}
			}
			return c.emit(out, func(w io.Writer) {
				if len(out.Deleted) == 0 {
					fmt.Fprintln(w, "Nothing stored")
					return
				}
				for _, u := range out.Deleted {
					fmt.Fprintf(w, "Deleted %s\n", u)
				}
			})
		},
	}
}
