package stark

import (
	"math/big"

	starkcurve "github.com/consensys/gnark-crypto/ecc/stark-curve"
	"github.com/consensys/gnark-crypto/ecc/stark-curve/ecdsa"
	"github.com/consensys/gnark-crypto/ecc/stark-curve/fp"
	"github.com/consensys/gnark-crypto/ecc/stark-curve/fr"
)

// compressed point flags used by gnark's G1Affine encoding
const (
	compressedSmallest byte = 0b10 << 6
	compressedLargest  byte = 0b11 << 6
)

// Verify checks an (r, s) signature over msgHash against a public key given
// only by its x-coordinate. Both points with that x are tried.
func Verify(publicKey, msgHash, r, s *big.Int) bool {
	if publicKey == nil || msgHash == nil || r == nil || s == nil {
		return false
	}
	if publicKey.BitLen() > fp.Bits || r.Sign() <= 0 || s.Sign() <= 0 {
		return false
	}
	if r.Cmp(curveOrder) >= 0 || s.Cmp(curveOrder) >= 0 {
		return false
	}
	sig := make([]byte, 2*fr.Bytes)
	r.FillBytes(sig[:fr.Bytes])
	s.FillBytes(sig[fr.Bytes:])

	for _, flag := range []byte{compressedSmallest, compressedLargest} {
		buf := publicKey.FillBytes(make([]byte, fp.Bytes))
		buf[0] |= flag
		var point starkcurve.G1Affine
		if _, err := point.SetBytes(buf); err != nil {
			return false
		}
		pub := ecdsa.PublicKey{A: point}
		ok, err := pub.Verify(sig, msgHash.Bytes(), nil)
		if err == nil && ok {
			return true
		}
	}
	return false
}
