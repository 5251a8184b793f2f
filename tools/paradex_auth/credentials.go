package main

import (
	"context"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/zalando/go-keyring"

	"github.com/tradeparadex/paradex-go/account"
	"github.com/tradeparadex/paradex-go/config"
	"github.com/tradeparadex/paradex-go/signer"
	"github.com/tradeparadex/paradex-go/stark"
)

const (
	keyringService    = "paradex-auth"
	keyringPrivateKey = "evm-private-key"
	keyringMnemonic   = "evm-mnemonic"
)

var errNoCredentials = errors.New("missing credentials (use --private-key, --mnemonic, --secret-stdin, --stark-key or `keyring set`)")

func addCredentialFlags(fs *pflag.FlagSet) {
	fs.String("private-key", "", "Ethereum private key (0x...)")
	fs.String("mnemonic", "", "Ethereum BIP-39 mnemonic")
	fs.String("passphrase", "", "BIP-39 passphrase for --mnemonic")
	fs.Bool("secret-stdin", false, "Read the Ethereum private key or mnemonic from stdin (preferred over argv for secrecy)")
	fs.String("stark-key", "", "Paradex STARK private key (0x...), skips derivation")
}

// credentials holds either an Ethereum wallet to derive from or an already
// derived STARK key.
type credentials struct {
	eth   *signer.PrivateKeySigner
	stark *stark.KeyPair
}

func (c *cli) readSecret() (string, error) {
	raw, err := io.ReadAll(c.in)
	if err != nil {
		return "", errors.Wrap(err, "read stdin")
	}
	secret := strings.TrimSpace(string(raw))
	if secret == "" {
		return "", errors.New("empty secret on stdin")
	}
	return secret, nil
}

func isMnemonic(secret string) bool {
	return len(strings.Fields(secret)) > 1
}

func (c *cli) ethSigner(secret string) (*signer.PrivateKeySigner, error) {
	if isMnemonic(secret) {
		return signer.FromMnemonic(secret, c.v.GetString("passphrase"))
	}
	return signer.FromHex(secret)
}

// loadCredentials resolves credentials from flags, stdin and finally the OS
// keyring, in that order.
func (c *cli) loadCredentials() (*credentials, error) {
	if k := strings.TrimSpace(c.v.GetString("stark-key")); k != "" {
		priv, err := stark.ParseFelt(k)
		if err != nil {
			return nil, errors.Wrap(err, "stark key")
		}
		kp, err := stark.NewKeyPair(priv)
		if err != nil {
			return nil, err
		}
		return &credentials{stark: kp}, nil
	}

	var secret string
	switch {
	case c.v.GetString("private-key") != "":
		secret = c.v.GetString("private-key")
	case c.v.GetString("mnemonic") != "":
		secret = c.v.GetString("mnemonic")
	case c.v.GetBool("secret-stdin"):
		s, err := c.readSecret()
		if err != nil {
			return nil, err
		}
		secret = s
	default:
		s, err := keyringSecret()
		if err != nil {
			return nil, err
		}
		secret = s
	}
	eth, err := c.ethSigner(secret)
	if err != nil {
		return nil, err
	}
	return &credentials{eth: eth}, nil
}

func keyringSecret() (string, error) {
	for _, user := range []string{keyringPrivateKey, keyringMnemonic} {
		secret, err := keyring.Get(keyringService, user)
		if err == nil {
			return secret, nil
		}
		if !errors.Is(err, keyring.ErrNotFound) {
			log.Debug().Err(err).Msg("keyring unavailable")
			return "", errNoCredentials
		}
	}
	return "", errNoCredentials
}

func (c *cli) loadAccount(ctx context.Context, cfg config.SystemConfig, creds *credentials) (*account.Account, error) {
	if creds.stark != nil {
		return account.New(creds.stark, cfg.ChainContext())
	}
	return account.FromEthSigner(ctx, cfg.ChainContext(), creds.eth)
}

func (c *cli) apiBase() (string, error) {
	if b := c.v.GetString("api-base"); b != "" {
		return b, nil
	}
	return config.APIBaseURL(config.Environment(c.v.GetString("env")))
}

func (c *cli) systemConfig(ctx context.Context) (config.SystemConfig, error) {
	apiBase, err := c.apiBase()
	if err != nil {
		return config.SystemConfig{}, err
	}
	cfg, err := config.Fetch(ctx, apiBase)
	if err != nil {
		return config.SystemConfig{}, errors.Wrap(err, "config")
	}
	if rpc := c.v.GetString("rpc-url"); rpc != "" {
		cfg.FullnodeRPCURL = rpc
	}
	if err := cfg.ChainContext().Validate(); err != nil {
		return config.SystemConfig{}, err
	}
	return cfg, nil
}
