package stark

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

var ErrUnsupportedSignature = errors.New("stark: unsupported wallet signature shape")

// SignatureKind tags the shape a wallet returned its signature in.
type SignatureKind int

const (
	SignatureUnknown SignatureKind = iota
	// [r, s]
	SignaturePair
	// [discriminant, r, s], as returned by some multi-signer account contracts
	SignatureDiscriminated
	// {r, s}
	SignatureWeierstrass
)

func (k SignatureKind) String() string {
	switch k {
	case SignaturePair:
		return "pair"
	case SignatureDiscriminated:
		return "discriminated"
	case SignatureWeierstrass:
		return "weierstrass"
	default:
		return "unknown"
	}
}

// WalletSignature is a signature as returned by a Starknet wallet.
type WalletSignature struct {
	Kind         SignatureKind
	Discriminant *big.Int
	R            *big.Int
	S            *big.Int
}

func NewPairSignature(r, s *big.Int) WalletSignature {
	return WalletSignature{Kind: SignaturePair, R: r, S: s}
}

func NewDiscriminatedSignature(d, r, s *big.Int) WalletSignature {
	return WalletSignature{Kind: SignatureDiscriminated, Discriminant: d, R: r, S: s}
}

func NewWeierstrassSignature(r, s *big.Int) WalletSignature {
	return WalletSignature{Kind: SignatureWeierstrass, R: r, S: s}
}

// Components returns (r, s) for every known shape.
func (w WalletSignature) Components() (r, s *big.Int, err error) {
	switch w.Kind {
	case SignaturePair, SignatureWeierstrass, SignatureDiscriminated:
		if w.R == nil || w.S == nil {
			return nil, nil, fmt.Errorf("%w: missing component in %s signature", ErrUnsupportedSignature, w.Kind)
		}
		return w.R, w.S, nil
	default:
		return nil, nil, ErrUnsupportedSignature
	}
}

// Seed returns the r component, the value key derivation grinds.
func (w WalletSignature) Seed() (*big.Int, error) {
	r, _, err := w.Components()
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(r), nil
}

// SameSeed reports whether both signatures normalize to the same seed.
func SameSeed(a, b WalletSignature) (bool, error) {
	sa, err := a.Seed()
	if err != nil {
		return false, err
	}
	sb, err := b.Seed()
	if err != nil {
		return false, err
	}
	return sa.Cmp(sb) == 0, nil
}

// ParseWalletSignature decodes the JSON a wallet returns: a two or three
// element array, or an object with r and s. Elements may be hex strings,
// decimal strings or numbers.
func ParseWalletSignature(raw []byte) (WalletSignature, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return WalletSignature{}, ErrUnsupportedSignature
	}
	switch raw[0] {
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(raw, &elems); err != nil {
			return WalletSignature{}, fmt.Errorf("%w: %v", ErrUnsupportedSignature, err)
		}
		vals := make([]*big.Int, len(elems))
		for i, e := range elems {
			v, err := parseJSONFelt(e)
			if err != nil {
				return WalletSignature{}, err
			}
			vals[i] = v
		}
		switch len(vals) {
		case 2:
			return NewPairSignature(vals[0], vals[1]), nil
		case 3:
			return NewDiscriminatedSignature(vals[0], vals[1], vals[2]), nil
		default:
			return WalletSignature{}, fmt.Errorf("%w: array of %d elements", ErrUnsupportedSignature, len(vals))
		}
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return WalletSignature{}, fmt.Errorf("%w: %v", ErrUnsupportedSignature, err)
		}
		rRaw, okR := obj["r"]
		sRaw, okS := obj["s"]
		if !okR || !okS {
			return WalletSignature{}, fmt.Errorf("%w: object without r and s", ErrUnsupportedSignature)
		}
		r, err := parseJSONFelt(rRaw)
		if err != nil {
			return WalletSignature{}, err
		}
		s, err := parseJSONFelt(sRaw)
		if err != nil {
			return WalletSignature{}, err
		}
		return NewWeierstrassSignature(r, s), nil
	}
	return WalletSignature{}, ErrUnsupportedSignature
}

func parseJSONFelt(raw json.RawMessage) (*big.Int, error) {
	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		str = strings.TrimSpace(string(raw))
	}
	v, err := ParseFelt(str)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedSignature, err)
	}
	return v, nil
}

// ParseFelt parses a 0x-prefixed hex or a decimal string.
func ParseFelt(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	var (
		v  *big.Int
		ok bool
	)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, ok = new(big.Int).SetString(s[2:], 16)
	} else {
		v, ok = new(big.Int).SetString(s, 10)
	}
	if !ok || v.Sign() < 0 {
		return nil, fmt.Errorf("invalid felt %q", s)
	}
	return v, nil
}
