package paradex

import (
	"context"
	"math/big"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradeparadex/paradex-go/config"
	"github.com/tradeparadex/paradex-go/fullnode"
	"github.com/tradeparadex/paradex-go/provider"
	"github.com/tradeparadex/paradex-go/signer"
	"github.com/tradeparadex/paradex-go/stark"
)

func testConfig(rpcURL string) config.SystemConfig {
	return config.SystemConfig{
		FullnodeRPCURL:            rpcURL,
		ChainID:                   "PRIVATE_SN_POTC_SEPOLIA",
		L1ChainID:                 "11155111",
		ParaclearAddress:          "0x286003f7c7bfc3f94e8f0af48b48302e7aee2fb13c23b141479ba00832ef2c6",
		ParaclearDecimals:         8,
		ParaclearAccountHash:      "0x033434ad846cdd5f23eb73ff09fe6fddd568284a0fb7d1be20ee482f044dabe2",
		ParaclearAccountProxyHash: "0x3530cc4759d78042f1b543bf797f5f3d647cde0388c33734cf91b7f7b9314a9",
		BridgedTokens: []config.BridgedToken{
			{Symbol: "USDC", Decimals: 6, L2TokenAddress: "0x6f373b346561036d98ea10fb3e60d2f459c872b1933b50b21fe6ef4fda3b75e"},
		},
	}
}

func TestClientFromEthSigner(t *testing.T) {
	s, err := signer.FromMnemonic("test test test test test test test test test test test ball", "")
	require.NoError(t, err)

	var client *Client
	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_, err := fullnode.Verify(r.Header, body, "PRIVATE_SN_POTC_SEPOLIA", client.Account().PublicKey(), time.Now(), time.Minute)
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var env struct {
			ID int64 `json:"id"`
		}
		_ = json.Unmarshal(body, &env)
		_ = json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": env.ID, "result": []string{"0x256ba8940"}})
	}))
	defer srv.Close()

	client, err = FromEthSigner(context.Background(), testConfig("http://"+srv.Listener.Addr().String()), s)
	require.NoError(t, err)
	srv.Start()
	assert.Equal(t, "0x5c706a72363bd09bfd8673dc907917436fbc816b08e812cb2da4badffcbb2e1", client.Address())
	assert.NotNil(t, client.Provider().Account())

	bal, err := client.GetTokenBalance(context.Background(), "USDC")
	require.NoError(t, err)
	assert.Equal(t, "100.45", bal.String())
}

func TestClientRequiresRPCURL(t *testing.T) {
	s, err := signer.FromMnemonic("test test test test test test test test test test test ball", "")
	require.NoError(t, err)
	_, err = FromEthSigner(context.Background(), testConfig(""), s)
	assert.ErrorContains(t, err, "starknet_fullnode_rpc_url")
}

// fixedSigner is a wallet with a deterministic signing scheme.
type fixedSigner struct {
	sig stark.WalletSignature
}

func (f fixedSigner) SignMessage(ctx context.Context, td stark.TypedData) (stark.WalletSignature, error) {
	return f.sig, nil
}

func TestClientFromStarknetAccount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     int64  `json:"id"`
			Method string `json:"method"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		var result any
		switch req.Method {
		case "starknet_getClassHashAt":
			result = "0x29927c8af6bccf3f6fda035981e765a7bdbf18a2dc0d630494f8758aa908e2b"
		case "starknet_getClassAt":
			result = map[string]any{"abi": []map[string]any{{"type": "function", "name": "__execute__"}}}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": result})
	}))
	defer srv.Close()

	seed, ok := new(big.Int).SetString("2231984868969048974562485890219247398275701629647443585775236999641425026575", 10)
	require.True(t, ok)
	wallet := provider.NewRPCAccount(
		provider.New(srv.URL, "PRIVATE_SN_POTC_SEPOLIA"),
		"0x4a1b7c1d3f5e",
		fixedSigner{sig: stark.NewPairSignature(seed, big.NewInt(0x1234))},
	)

	client, err := FromStarknetAccount(context.Background(), testConfig(srv.URL), wallet)
	require.NoError(t, err)
	assert.Equal(t, "0x672cb394537429ecd536356dd1a5914857a1e893cd6cf4f5d733c46219554e9", client.Address())
	assert.Equal(t, "0x7a0e7def00d198ccea862678174b5afcc26378d31e1fcdeabb7d5f8d698dbb", client.Account().PublicKeyHex())
	assert.Equal(t, srv.URL, client.Provider().URL())
}
