package account

import "fmt"

// DeterminismError means two signatures over the same message differed, so
// the wallet cannot be used to derive a stable account.
type DeterminismError struct {
	Path string
}

func (e *DeterminismError) Error() string {
	return fmt.Sprintf("%s wallet returned different signatures for the same message; "+
		"it does not sign deterministically and cannot be used to derive a Paradex account", e.Path)
}

// UnsupportedAccountError means a Starknet account could not be inspected or
// does not expose a usable interface.
type UnsupportedAccountError struct {
	Address string
	Reason  string
	Err     error
}

func (e *UnsupportedAccountError) Error() string {
	msg := fmt.Sprintf("unsupported account %s: %s", e.Address, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UnsupportedAccountError) Unwrap() error {
	return e.Err
}
