package account

import (
	"fmt"
	"math/big"

	"github.com/dontpanicdao/caigo"
	"github.com/dontpanicdao/caigo/types"

	"github.com/tradeparadex/paradex-go/config"
	"github.com/tradeparadex/paradex-go/stark"
)

var (
	contractAddressPrefix = types.StrToFelt("STARKNET_CONTRACT_ADDRESS").Big()
	initializeSelector    = types.GetSelectorFromName("initialize")
)

// ComputeAddress returns the address of the Paraclear account proxy deployed
// for publicKey: deployer 0, salt publicKey, constructor calling
// initialize(signer=publicKey, guardian=0) on the account class.
func ComputeAddress(publicKey *big.Int, chain config.ChainContext) (string, error) {
	accountHash, err := stark.ParseFelt(chain.AccountClassHash)
	if err != nil {
		return "", fmt.Errorf("account class hash: %w", err)
	}
	proxyHash, err := stark.ParseFelt(chain.AccountProxyClassHash)
	if err != nil {
		return "", fmt.Errorf("account proxy class hash: %w", err)
	}

	zero := big.NewInt(0)
	constructorCalldata := []*big.Int{
		accountHash,
		initializeSelector,
		big.NewInt(2),
		publicKey,
		zero,
	}
	constructorCalldataHash, err := caigo.Curve.ComputeHashOnElements(constructorCalldata)
	if err != nil {
		return "", fmt.Errorf("calldata hash: %w", err)
	}

	address := []*big.Int{
		contractAddressPrefix,
		zero,      // deployer address
		publicKey, // salt
		proxyHash,
		constructorCalldataHash,
	}
	addressHash, err := caigo.Curve.ComputeHashOnElements(address)
	if err != nil {
		return "", fmt.Errorf("address hash: %w", err)
	}
	return types.BigToHex(addressHash), nil
}
