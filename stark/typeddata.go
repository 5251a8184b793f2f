package stark

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
	"github.com/dontpanicdao/caigo"
	"github.com/dontpanicdao/caigo/types"

	pedersenhash "github.com/consensys/gnark-crypto/ecc/stark-curve/pedersen-hash"
)

const DomainType = "StarkNetDomain"

var snMessageBigInt = types.UTF8StrToBig("StarkNet Message")

type TypeField struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type Domain struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	ChainID string `json:"chainId"`
}

// TypedData is a revision 0 Starknet typed-data document. Every field is a
// felt; values are hex, decimal or short strings.
type TypedData struct {
	Types       map[string][]TypeField `json:"types"`
	PrimaryType string                 `json:"primaryType"`
	Domain      Domain                 `json:"domain"`
	Message     map[string]string      `json:"message"`
}

func (d Domain) values() map[string]string {
	return map[string]string{
		"name":    d.Name,
		"version": d.Version,
		"chainId": d.ChainID,
	}
}

// MessageHash computes the Pedersen message hash the account signs:
// h("StarkNet Message", h(domain), account, h(message)).
func (td TypedData) MessageHash(account *big.Int) (*big.Int, error) {
	if account == nil {
		return nil, fmt.Errorf("typed data: nil account")
	}
	if _, ok := td.Types[DomainType]; !ok {
		return nil, fmt.Errorf("typed data: missing %s type", DomainType)
	}
	ctd, err := td.caigo()
	if err != nil {
		return nil, err
	}
	domEnc, err := structHash(ctd, DomainType, td.Domain.values())
	if err != nil {
		return nil, fmt.Errorf("could not hash domain: %w", err)
	}
	msgEnc, err := structHash(ctd, td.PrimaryType, td.Message)
	if err != nil {
		return nil, fmt.Errorf("could not hash message: %w", err)
	}
	return PedersenArray([]*big.Int{snMessageBigInt, domEnc, account, msgEnc}), nil
}

func (td TypedData) caigo() (*caigo.TypedData, error) {
	typesMap := make(map[string]caigo.TypeDef, len(td.Types))
	for name, fields := range td.Types {
		defs := make([]caigo.Definition, len(fields))
		for i, f := range fields {
			defs[i] = caigo.Definition{Name: f.Name, Type: f.Type}
		}
		typesMap[name] = caigo.TypeDef{Definitions: defs}
	}
	dom := caigo.Domain{Name: td.Domain.Name, Version: td.Domain.Version, ChainId: td.Domain.ChainID}
	ctd, err := caigo.NewTypedData(typesMap, td.PrimaryType, dom)
	if err != nil {
		return nil, fmt.Errorf("failed to create typed data with caigo: %w", err)
	}
	return &ctd, nil
}

func structHash(td *caigo.TypedData, inType string, values map[string]string) (*big.Int, error) {
	prim, ok := td.Types[inType]
	if !ok {
		return nil, fmt.Errorf("unknown type: %s", inType)
	}
	elements := make([]*big.Int, 0, len(prim.Definitions)+1)
	elements = append(elements, prim.Encoding)

	for _, def := range prim.Definitions {
		if def.Type != "felt" {
			return nil, fmt.Errorf("unsupported field type: %s", def.Type)
		}
		v, ok := values[def.Name]
		if !ok {
			return nil, fmt.Errorf("missing value for %s.%s", inType, def.Name)
		}
		felt, err := EncodeFelt(v)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", inType, def.Name, err)
		}
		elements = append(elements, felt)
	}
	return PedersenArray(elements), nil
}

var feltModulus = fp.Modulus()

// EncodeFelt converts a typed-data value to a field element: numbers in hex
// or decimal, anything else as an ASCII short string.
func EncodeFelt(v string) (*big.Int, error) {
	// types.StrToFelt("") returns nil
	if v == "" {
		return big.NewInt(0), nil
	}
	f := types.StrToFelt(v)
	if f == nil || f.Int == nil {
		return nil, fmt.Errorf("value %q is not a felt", v)
	}
	out := f.Big()
	if out.Sign() < 0 || out.Cmp(feltModulus) >= 0 {
		return nil, fmt.Errorf("value %q does not fit in a felt", v)
	}
	return out, nil
}

// PedersenArray is the Starknet array hash h(h(h(0, a0), a1), ..., n).
func PedersenArray(elems []*big.Int) *big.Int {
	fpElements := make([]*fp.Element, len(elems))
	for i, elem := range elems {
		fpElements[i] = new(fp.Element).SetBigInt(elem)
	}
	hash := pedersenhash.PedersenArray(fpElements...)
	return hash.BigInt(new(big.Int))
}
