package account

import (
	"context"
	"fmt"
	"math/big"

	"github.com/tradeparadex/paradex-go/config"
	"github.com/tradeparadex/paradex-go/stark"
)

// Account is a derived Paradex account. The private key never leaves it.
type Account struct {
	address string
	key     *stark.KeyPair
	chain   config.ChainContext
}

// New builds the account controlled by key.
func New(key *stark.KeyPair, chain config.ChainContext) (*Account, error) {
	if key == nil {
		return nil, fmt.Errorf("account: nil key")
	}
	addr, err := ComputeAddress(key.PublicKey(), chain)
	if err != nil {
		return nil, err
	}
	return &Account{address: addr, key: key, chain: chain}, nil
}

func (a *Account) Address() string {
	return a.address
}

func (a *Account) PublicKey() *big.Int {
	return a.key.PublicKey()
}

func (a *Account) PublicKeyHex() string {
	return a.key.PublicKeyHex()
}

func (a *Account) ChainContext() config.ChainContext {
	return a.chain
}

// SignMessage signs typed data on behalf of this account.
func (a *Account) SignMessage(ctx context.Context, td stark.TypedData) (stark.WalletSignature, error) {
	if err := ctx.Err(); err != nil {
		return stark.WalletSignature{}, err
	}
	addr, err := stark.ParseFelt(a.address)
	if err != nil {
		return stark.WalletSignature{}, err
	}
	h, err := td.MessageHash(addr)
	if err != nil {
		return stark.WalletSignature{}, err
	}
	r, s, err := a.key.Sign(h)
	if err != nil {
		return stark.WalletSignature{}, err
	}
	return stark.NewPairSignature(r, s), nil
}

func (a *Account) String() string {
	return fmt.Sprintf("account.Account{address: %s, publicKey: %s}", a.address, a.key.PublicKeyHex())
}
