package fullnode

import "math/big"

// ByteArrayChunkSize is the number of bytes packed into one felt.
const ByteArrayChunkSize = 31

// ByteArray is the Cairo ByteArray encoding of a string: full 31-byte words
// plus a trailing partial word.
type ByteArray struct {
	Data           []*big.Int
	PendingWord    *big.Int
	PendingWordLen int
}

func ByteArrayFromString(s string) ByteArray {
	b := []byte(s)
	full := len(b) / ByteArrayChunkSize
	out := ByteArray{Data: make([]*big.Int, 0, full)}
	for i := 0; i < full; i++ {
		chunk := b[i*ByteArrayChunkSize : (i+1)*ByteArrayChunkSize]
		out.Data = append(out.Data, new(big.Int).SetBytes(chunk))
	}
	rest := b[full*ByteArrayChunkSize:]
	out.PendingWord = new(big.Int).SetBytes(rest)
	out.PendingWordLen = len(rest)
	return out
}

// Felts flattens the encoding for hashing: the word count, the words, then
// the pending word and its length only when both are nonzero.
func (b ByteArray) Felts() []*big.Int {
	felts := make([]*big.Int, 0, len(b.Data)+3)
	felts = append(felts, big.NewInt(int64(len(b.Data))))
	felts = append(felts, b.Data...)
	if b.PendingWord != nil && b.PendingWord.Sign() != 0 && b.PendingWordLen != 0 {
		felts = append(felts, b.PendingWord, big.NewInt(int64(b.PendingWordLen)))
	}
	return felts
}
