package stark

import (
	"fmt"
	"math/big"

	starkcurve "github.com/consensys/gnark-crypto/ecc/stark-curve"
	"github.com/consensys/gnark-crypto/ecc/stark-curve/ecdsa"
	"github.com/consensys/gnark-crypto/ecc/stark-curve/fr"
	"github.com/dontpanicdao/caigo"
	"github.com/dontpanicdao/caigo/types"
)

// KeyPair holds a STARK private key and the x-coordinate of its public point.
// The private scalar is never exported, printed or marshalled.
type KeyPair struct {
	private *big.Int
	public  *big.Int
}

// NewKeyPair validates priv and derives its public key.
func NewKeyPair(priv *big.Int) (*KeyPair, error) {
	if priv == nil || priv.Sign() <= 0 || priv.Cmp(curveOrder) >= 0 {
		return nil, fmt.Errorf("stark: private key out of range")
	}
	pubX, _, err := caigo.Curve.PrivateToPoint(priv)
	if err != nil {
		return nil, fmt.Errorf("stark: public key: %w", err)
	}
	return &KeyPair{private: new(big.Int).Set(priv), public: pubX}, nil
}

// KeyPairFromSeed grinds seed into a private key and derives the pair.
func KeyPairFromSeed(seed string) (*KeyPair, error) {
	priv, err := GrindKey(seed)
	if err != nil {
		return nil, err
	}
	return NewKeyPair(priv)
}

// PublicKey returns the x-coordinate of the public point.
func (k *KeyPair) PublicKey() *big.Int {
	return new(big.Int).Set(k.public)
}

// PublicKeyHex returns the public key as 0x-prefixed hex.
func (k *KeyPair) PublicKeyHex() string {
	return types.BigToHex(k.public)
}

func (k *KeyPair) String() string {
	return "stark.KeyPair{public: " + k.PublicKeyHex() + "}"
}

func (k *KeyPair) MarshalJSON() ([]byte, error) {
	return []byte(`{"publicKey":"` + k.PublicKeyHex() + `"}`), nil
}

// Sign produces an (r, s) STARK ECDSA signature over msgHash.
func (k *KeyPair) Sign(msgHash *big.Int) (r, s *big.Int, err error) {
	priv, err := k.ecdsaPrivateKey()
	if err != nil {
		return nil, nil, err
	}
	sigBin, err := priv.Sign(msgHash.Bytes(), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("stark: sign: %w", err)
	}
	r = new(big.Int).SetBytes(sigBin[:fr.Bytes])
	s = new(big.Int).SetBytes(sigBin[fr.Bytes:])
	return r, s, nil
}

func (k *KeyPair) ecdsaPrivateKey() (*ecdsa.PrivateKey, error) {
	_, g := starkcurve.Generators()
	pub := new(ecdsa.PublicKey)
	pub.A.ScalarMultiplication(&g, k.private)

	key := new(ecdsa.PrivateKey)
	buf := append(pub.Bytes(), k.private.FillBytes(make([]byte, fr.Bytes))...)
	if _, err := key.SetBytes(buf); err != nil {
		return nil, fmt.Errorf("stark: private key: %w", err)
	}
	return key, nil
}
