package paraclear

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/tradeparadex/paradex-go/config"
	"github.com/tradeparadex/paradex-go/provider"
	"github.com/tradeparadex/paradex-go/stark"
)

const balanceEntryPoint = "getTokenAssetBalance"

// ContractCaller runs read-only contract calls.
type ContractCaller interface {
	CallContract(ctx context.Context, call provider.FunctionCall) ([]string, error)
}

var (
	feltPrime = fp.Modulus()
	halfPrime = new(big.Int).Rsh(feltPrime, 1)
)

// GetTokenBalance returns account's Paraclear balance of token (a bridged
// token symbol such as USDC).
func GetTokenBalance(ctx context.Context, caller ContractCaller, cfg config.SystemConfig, account, token string) (decimal.Decimal, error) {
	tok, ok := cfg.Token(token)
	if !ok {
		return decimal.Zero, errors.Errorf("token %s is not supported", token)
	}
	call := provider.NewFunctionCall(cfg.ParaclearAddress, balanceEntryPoint, account, tok.L2TokenAddress)
	result, err := caller.CallContract(ctx, call)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "failed to get %s balance", token)
	}
	if len(result) == 0 {
		return decimal.Zero, errors.New("failed to get token balance: empty result")
	}
	raw, err := stark.ParseFelt(result[0])
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "failed to parse token balance")
	}
	return FromChainSize(SignedFelt(raw), cfg.ParaclearDecimals), nil
}

// SignedFelt maps felts above p/2 to their negative representative.
func SignedFelt(v *big.Int) *big.Int {
	if v.Cmp(halfPrime) > 0 {
		return new(big.Int).Sub(v, feltPrime)
	}
	return new(big.Int).Set(v)
}

// FromChainSize scales an on-chain integer amount down by decimals.
func FromChainSize(v *big.Int, decimals int) decimal.Decimal {
	return decimal.NewFromBigInt(v, int32(-decimals))
}

// ToChainSize scales a decimal amount up by decimals, truncating any excess
// precision so the amount is never rounded up.
func ToChainSize(amount string, decimals int) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, fmt.Errorf("empty number")
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, err
	}
	return d.Shift(int32(decimals)).Truncate(0).BigInt(), nil
}
