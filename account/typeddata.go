package account

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/tradeparadex/paradex-go/stark"
)

const (
	domainName     = "Paradex"
	domainVersion  = "1"
	constantType   = "Constant"
	starkKeyAction = "STARK Key"
)

// StarkKeyEthTypedData is the EIP-712 message an Ethereum wallet signs to
// derive the Paradex key.
func StarkKeyEthTypedData(l1ChainID string) (apitypes.TypedData, error) {
	chainID, ok := math.ParseBig256(l1ChainID)
	if !ok {
		return apitypes.TypedData{}, fmt.Errorf("invalid l1 chain id %q", l1ChainID)
	}
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
			},
			constantType: {
				{Name: "action", Type: "string"},
			},
		},
		PrimaryType: constantType,
		Domain: apitypes.TypedDataDomain{
			Name:    domainName,
			Version: domainVersion,
			ChainId: (*math.HexOrDecimal256)(chainID),
		},
		Message: apitypes.TypedDataMessage{
			"action": starkKeyAction,
		},
	}, nil
}

// StarkKeyStarknetTypedData is the message a Starknet wallet signs to derive
// the Paradex key.
func StarkKeyStarknetTypedData(chainID string) stark.TypedData {
	return stark.TypedData{
		Types: map[string][]stark.TypeField{
			stark.DomainType: {
				{Name: "name", Type: "felt"},
				{Name: "version", Type: "felt"},
				{Name: "chainId", Type: "felt"},
			},
			constantType: {
				{Name: "action", Type: "felt"},
			},
		},
		PrimaryType: constantType,
		Domain: stark.Domain{
			Name:    domainName,
			Version: domainVersion,
			ChainID: chainID,
		},
		Message: map[string]string{"action": starkKeyAction},
	}
}
