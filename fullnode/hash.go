package fullnode

import (
	"math/big"

	"github.com/NethermindEth/juno/core/crypto"
	"github.com/NethermindEth/juno/core/felt"
)

// HashPayload is the Poseidon hash of the byte-array encoding of payload.
func HashPayload(payload []byte) *big.Int {
	return PoseidonMany(ByteArrayFromString(string(payload)).Felts())
}

// PoseidonMany hashes elems with Starknet's poseidon_hash_many.
func PoseidonMany(elems []*big.Int) *big.Int {
	felts := make([]*felt.Felt, len(elems))
	for i, e := range elems {
		felts[i] = new(felt.Felt).SetBytes(e.Bytes())
	}
	out := crypto.PoseidonArray(felts...).Bytes()
	return new(big.Int).SetBytes(out[:])
}
