// Package paradex derives Paradex accounts from Ethereum or Starknet wallets
// and talks to the Paradex fullnode on their behalf.
package paradex

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/tradeparadex/paradex-go/account"
	"github.com/tradeparadex/paradex-go/config"
	"github.com/tradeparadex/paradex-go/paraclear"
	"github.com/tradeparadex/paradex-go/provider"
)

// Client is a derived account with an authenticated fullnode provider.
type Client struct {
	cfg      config.SystemConfig
	account  *account.Account
	provider *provider.Provider
}

// FromEthSigner derives the account controlled by an Ethereum wallet.
func FromEthSigner(ctx context.Context, cfg config.SystemConfig, signer account.EthereumSigner, opts ...provider.Option) (*Client, error) {
	acct, err := account.FromEthSigner(ctx, cfg.ChainContext(), signer)
	if err != nil {
		return nil, err
	}
	return NewClient(cfg, acct, opts...)
}

// FromStarknetAccount derives the account controlled by a Starknet wallet.
func FromStarknetAccount(ctx context.Context, cfg config.SystemConfig, wallet account.StarknetAccount, opts ...provider.Option) (*Client, error) {
	acct, err := account.FromStarknetAccount(ctx, cfg.ChainContext(), wallet)
	if err != nil {
		return nil, err
	}
	return NewClient(cfg, acct, opts...)
}

// NewClient wraps an already derived account, e.g. one restored from a STARK
// private key.
func NewClient(cfg config.SystemConfig, acct *account.Account, opts ...provider.Option) (*Client, error) {
	if cfg.FullnodeRPCURL == "" {
		return nil, errors.New("config: missing starknet_fullnode_rpc_url")
	}
	opts = append([]provider.Option{provider.WithAccount(acct)}, opts...)
	return &Client{
		cfg:      cfg,
		account:  acct,
		provider: provider.New(cfg.FullnodeRPCURL, cfg.ChainID, opts...),
	}, nil
}

func (c *Client) Address() string              { return c.account.Address() }
func (c *Client) Account() *account.Account    { return c.account }
func (c *Client) Provider() *provider.Provider { return c.provider }
func (c *Client) Config() config.SystemConfig  { return c.cfg }

// GetTokenBalance returns the account's Paraclear balance of token.
func (c *Client) GetTokenBalance(ctx context.Context, token string) (decimal.Decimal, error) {
	return paraclear.GetTokenBalance(ctx, c.provider, c.cfg, c.account.Address(), token)
}
