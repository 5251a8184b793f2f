package account

import (
	"context"
	"strings"

	"github.com/tradeparadex/paradex-go/provider"
	"github.com/tradeparadex/paradex-go/stark"
)

const undeployedHint = "cannot determine account type; make sure the account contract is deployed and try again"

// Support describes an inspected Starknet account.
type Support struct {
	ClassHash    string
	CairoVersion int
}

// CheckSupport inspects wallet's on-chain class and ABI.
func CheckSupport(ctx context.Context, wallet StarknetAccount) (*Support, error) {
	addr := wallet.Address()
	classHash, err := wallet.GetClassHashAt(ctx, addr)
	if err != nil {
		return nil, &UnsupportedAccountError{Address: addr, Reason: undeployedHint, Err: err}
	}
	if h, err := stark.ParseFelt(classHash); err != nil || h.Sign() == 0 {
		return nil, &UnsupportedAccountError{Address: addr, Reason: undeployedHint}
	}

	class, err := wallet.GetClassAt(ctx, addr)
	if err != nil {
		return nil, &UnsupportedAccountError{Address: addr, Reason: "account class is not available", Err: err}
	}
	if class == nil {
		return nil, &UnsupportedAccountError{Address: addr, Reason: "account class is not available"}
	}
	entries, err := class.ABIEntries()
	if err != nil {
		return nil, &UnsupportedAccountError{Address: addr, Reason: "account ABI cannot be parsed", Err: err}
	}

	support := &Support{ClassHash: classHash, CairoVersion: 0}
	hasFunction := false
	for _, e := range entries {
		switch e.Type {
		case "function":
			hasFunction = true
		case "interface":
			for _, item := range e.Items {
				if item.Type == "function" {
					hasFunction = true
				}
			}
		}
		if usesCairo1Types(e) {
			support.CairoVersion = 1
		}
	}
	if !hasFunction {
		return nil, &UnsupportedAccountError{Address: addr, Reason: "account ABI exposes no functions"}
	}
	return support, nil
}

// Cairo 1 ABIs name types by path, e.g. core::felt252.
func usesCairo1Types(e provider.ABIEntry) bool {
	params := append(append([]provider.ABIParam{}, e.Inputs...), e.Outputs...)
	for _, item := range e.Items {
		params = append(params, item.Inputs...)
		params = append(params, item.Outputs...)
	}
	for _, p := range params {
		if strings.Contains(p.Type, "::") {
			return true
		}
	}
	return strings.Contains(e.Name, "::")
}
