package account

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/rs/zerolog/log"

	"github.com/tradeparadex/paradex-go/config"
	"github.com/tradeparadex/paradex-go/provider"
	"github.com/tradeparadex/paradex-go/stark"
)

// EthereumSigner signs EIP-712 typed data and returns the 65-byte signature
// as 0x-prefixed hex.
type EthereumSigner interface {
	SignTypedData(ctx context.Context, td apitypes.TypedData) (string, error)
}

// StarknetAccount is a deployed Starknet account backed by a wallet.
type StarknetAccount interface {
	Address() string
	SignMessage(ctx context.Context, td stark.TypedData) (stark.WalletSignature, error)
	GetClassHashAt(ctx context.Context, address string) (string, error)
	GetClassAt(ctx context.Context, address string) (*provider.ContractClass, error)
}

// FromEthSigner derives the Paradex account controlled by an Ethereum wallet.
func FromEthSigner(ctx context.Context, chain config.ChainContext, signer EthereumSigner) (*Account, error) {
	if err := chain.Validate(); err != nil {
		return nil, err
	}
	td, err := StarkKeyEthTypedData(chain.L1ChainID)
	if err != nil {
		return nil, err
	}
	first, err := signer.SignTypedData(ctx, td)
	if err != nil {
		return nil, err
	}
	second, err := signer.SignTypedData(ctx, td)
	if err != nil {
		return nil, err
	}
	if first != second {
		return nil, &DeterminismError{Path: "ethereum"}
	}
	seed, err := ethSignatureSeed(first)
	if err != nil {
		return nil, err
	}
	key, err := stark.KeyPairFromSeed(seed)
	if err != nil {
		return nil, err
	}
	acct, err := New(key, chain)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("path", "ethereum").Str("address", acct.Address()).Msg("derived paradex account")
	return acct, nil
}

// ethSignatureSeed returns the r component of a 65-byte signature or a 64-byte
// EIP-2098 compact one, hex digits kept as the wallet produced them.
func ethSignatureSeed(sig string) (string, error) {
	raw := strings.TrimPrefix(sig, "0x")
	if len(raw) != 130 && len(raw) != 128 {
		return "", fmt.Errorf("malformed ethereum signature: %d hex digits", len(raw))
	}
	return raw[:64], nil
}

// FromStarknetAccount derives the Paradex account controlled by a Starknet
// wallet. Signatures from the two signing rounds only need to share r.
func FromStarknetAccount(ctx context.Context, chain config.ChainContext, wallet StarknetAccount) (*Account, error) {
	if err := chain.Validate(); err != nil {
		return nil, err
	}
	support, err := CheckSupport(ctx, wallet)
	if err != nil {
		return nil, err
	}
	td := StarkKeyStarknetTypedData(chain.ChainID)
	first, err := wallet.SignMessage(ctx, td)
	if err != nil {
		return nil, err
	}
	second, err := wallet.SignMessage(ctx, td)
	if err != nil {
		return nil, err
	}
	same, err := stark.SameSeed(first, second)
	if err != nil {
		return nil, err
	}
	if !same {
		return nil, &DeterminismError{Path: "starknet"}
	}
	seed, err := first.Seed()
	if err != nil {
		return nil, err
	}
	priv, err := stark.GrindKeyFromInt(seed)
	if err != nil {
		return nil, err
	}
	key, err := stark.NewKeyPair(priv)
	if err != nil {
		return nil, err
	}
	acct, err := New(key, chain)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("path", "starknet").
		Str("wallet", wallet.Address()).
		Int("cairo_version", support.CairoVersion).
		Str("signature_kind", first.Kind.String()).
		Str("address", acct.Address()).
		Msg("derived paradex account")
	return acct, nil
}
