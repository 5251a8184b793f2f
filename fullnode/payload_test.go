package fullnode

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical(t *testing.T) {
	p := Payload{Method: "starknet_getTransactionStatus", Params: []string{"0x1"}, ID: 1}
	body, err := p.MarshalCanonical()
	require.NoError(t, err)
	assert.Equal(t, `{"jsonrpc": "2.0", "method": "starknet_getTransactionStatus", "params": ["0x1"], "id": 1}`, string(body))
	assert.Equal(t, "2542254075546871898725420793330915700567851405709402681030792058741266708376", HashPayload(body).String())
}

func TestMarshalCanonicalLayout(t *testing.T) {
	tests := []struct {
		name   string
		params any
		want   string
	}{
		{"nil params", nil, `{"jsonrpc": "2.0", "method": "m", "params": [], "id": 7}`},
		{"nil slice params", []string(nil), `{"jsonrpc": "2.0", "method": "m", "params": [], "id": 7}`},
		{"nil map params", map[string]any(nil), `{"jsonrpc": "2.0", "method": "m", "params": [], "id": 7}`},
		{"nil raw params", json.RawMessage(nil), `{"jsonrpc": "2.0", "method": "m", "params": [], "id": 7}`},
		{"empty slice params", []string{}, `{"jsonrpc": "2.0", "method": "m", "params": [], "id": 7}`},
		{"sorted map keys", map[string]any{"b": 1, "a": []int{1, 2}}, `{"jsonrpc": "2.0", "method": "m", "params": {"a": [1, 2], "b": 1}, "id": 7}`},
		{"separators inside strings", []string{"a,b:c", `q"u,o:te`}, `{"jsonrpc": "2.0", "method": "m", "params": ["a,b:c", "q\"u,o:te"], "id": 7}`},
		{"non ascii", []string{"é€😀"}, `{"jsonrpc": "2.0", "method": "m", "params": ["\u00e9\u20ac\ud83d\ude00"], "id": 7}`},
		{"no html escaping", []string{"<a&b>"}, `{"jsonrpc": "2.0", "method": "m", "params": ["<a&b>"], "id": 7}`},
		{"raw params", json.RawMessage(`{"block_id":"latest"}`), `{"jsonrpc": "2.0", "method": "m", "params": {"block_id": "latest"}, "id": 7}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := Payload{Method: "m", Params: tt.params, ID: 7}.MarshalCanonical()
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(body))
			assert.True(t, json.Valid(body))
		})
	}
}

func TestNextRequestIDUnique(t *testing.T) {
	seen := make(map[int64]bool)
	ch := make(chan int64, 400)
	for i := 0; i < 4; i++ {
		go func() {
			for j := 0; j < 100; j++ {
				ch <- NewPayload("m", nil).ID
			}
		}()
	}
	for i := 0; i < 400; i++ {
		id := <-ch
		assert.False(t, seen[id])
		seen[id] = true
	}
}
