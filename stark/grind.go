package stark

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/stark-curve/fr"
	"github.com/rs/zerolog/log"
)

// MaxGrindIterations bounds the rejection sampling in GrindKey.
const MaxGrindIterations = 100000

var ErrDerivationExhausted = errors.New("stark: key grinding did not terminate")

var (
	curveOrder = fr.Modulus()
	// 2^256 - (2^256 mod n): largest multiple of n below 2^256.
	grindLimit = func() *big.Int {
		max := new(big.Int).Lsh(big.NewInt(1), 256)
		return max.Sub(max, new(big.Int).Mod(max, curveOrder))
	}()
)

// CurveOrder returns the order of the STARK curve's scalar field.
func CurveOrder() *big.Int {
	return new(big.Int).Set(curveOrder)
}

// GrindKey turns an arbitrary seed (hex, with or without 0x) into a private
// key in [0, n). The seed digits are kept as given: an odd-length seed loses
// its final nibble when joined with the counter, exactly as the browser SDK
// decodes it.
func GrindKey(seed string) (*big.Int, error) {
	seedHex := strings.TrimPrefix(strings.TrimPrefix(seed, "0x"), "0X")
	if seedHex == "" {
		return nil, fmt.Errorf("stark: empty seed")
	}
	if _, err := hex.DecodeString(seedHex + strings.Repeat("0", len(seedHex)%2)); err != nil {
		return nil, fmt.Errorf("stark: seed is not hex: %q", seed)
	}
	return grindKey(seedHex, MaxGrindIterations)
}

func grindKey(seedHex string, maxIter int) (*big.Int, error) {
	for i := 0; i < maxIter; i++ {
		key := hashKeyWithIndex(seedHex, i)
		if key.Cmp(grindLimit) < 0 {
			if i > 0 {
				log.Debug().Int("iterations", i+1).Msg("stark key ground")
			}
			return key.Mod(key, curveOrder), nil
		}
	}
	return nil, ErrDerivationExhausted
}

// GrindKeyFromInt grinds the lowercase, unpadded hex form of seed.
func GrindKeyFromInt(seed *big.Int) (*big.Int, error) {
	return GrindKey(seed.Text(16))
}

func hashKeyWithIndex(seedHex string, index int) *big.Int {
	idx := strconv.FormatInt(int64(index), 16)
	if len(idx)%2 == 1 {
		idx = "0" + idx
	}
	buf := seedHex + idx
	buf = buf[:len(buf)-len(buf)%2]
	// already validated as hex
	raw, _ := hex.DecodeString(buf)
	sum := sha256.Sum256(raw)
	return new(big.Int).SetBytes(sum[:])
}
