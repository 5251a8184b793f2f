package provider_test

import (
	"context"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradeparadex/paradex-go/account"
	"github.com/tradeparadex/paradex-go/config"
	"github.com/tradeparadex/paradex-go/fullnode"
	"github.com/tradeparadex/paradex-go/provider"
	"github.com/tradeparadex/paradex-go/stark"
)

const testChainID = "PRIVATE_SN_POTC_SEPOLIA"

var testChain = config.ChainContext{
	L1ChainID:             "11155111",
	ChainID:               testChainID,
	AccountClassHash:      "0x033434ad846cdd5f23eb73ff09fe6fddd568284a0fb7d1be20ee482f044dabe2",
	AccountProxyClassHash: "0x3530cc4759d78042f1b543bf797f5f3d647cde0388c33734cf91b7f7b9314a9",
}

func testAccount(t *testing.T) *account.Account {
	t.Helper()
	priv, err := stark.ParseFelt("0x643b17fd3d0c403b8214af3439adbff6d8359e034de6c7d46b4ab5696c461de")
	require.NoError(t, err)
	kp, err := stark.NewKeyPair(priv)
	require.NoError(t, err)
	acct, err := account.New(kp, testChain)
	require.NoError(t, err)
	return acct
}

type recorded struct {
	header http.Header
	body   []byte
}

// rpcServer answers every call with reply and records what it received.
func rpcServer(t *testing.T, status int, reply string) (*httptest.Server, *[]recorded) {
	t.Helper()
	var (
		mu   sync.Mutex
		seen []recorded
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		seen = append(seen, recorded{header: r.Header.Clone(), body: body})
		mu.Unlock()
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func TestCallUnauthenticated(t *testing.T) {
	srv, seen := rpcServer(t, http.StatusOK, `{"jsonrpc":"2.0","id":1,"result":"0x505249564154455f534e5f504f54435f5345504f4c4941"}`)
	p := provider.New(srv.URL, testChainID)

	chainID, err := p.StarknetChainID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0x505249564154455f534e5f504f54435f5345504f4c4941", chainID)

	require.Len(t, *seen, 1)
	got := (*seen)[0]
	for _, h := range []string{fullnode.HeaderAccount, fullnode.HeaderSignature, fullnode.HeaderSignatureTimestamp, fullnode.HeaderSignatureVersion} {
		assert.Empty(t, got.header.Get(h), h)
	}
	var env map[string]any
	require.NoError(t, json.Unmarshal(got.body, &env))
	assert.Equal(t, "starknet_chainId", env["method"])
	assert.Equal(t, []any{}, env["params"])
}

func TestCallAuthenticated(t *testing.T) {
	srv, seen := rpcServer(t, http.StatusOK, `{"jsonrpc":"2.0","id":1,"result":"0x1"}`)
	acct := testAccount(t)
	p := provider.New(srv.URL, testChainID, provider.WithAccount(acct))

	params := []string{"0x1"}
	var out string
	require.NoError(t, p.Call(context.Background(), "starknet_getTransactionStatus", params, &out))
	assert.Equal(t, "0x1", out)

	require.Len(t, *seen, 1)
	got := (*seen)[0]
	assert.Equal(t, acct.Address(), got.header.Get(fullnode.HeaderAccount))
	assert.NotEmpty(t, got.header.Get(fullnode.HeaderSignature))
	assert.NotEmpty(t, got.header.Get(fullnode.HeaderSignatureTimestamp))
	assert.Equal(t, "1.0.0", got.header.Get(fullnode.HeaderSignatureVersion))

	var env struct {
		Params []string `json:"params"`
		ID     int64    `json:"id"`
	}
	require.NoError(t, json.Unmarshal(got.body, &env))
	assert.Equal(t, params, env.Params)

	// the signed payload hash is computed over the transmitted body, id included
	vr, err := fullnode.Verify(got.header, got.body, testChainID, acct.PublicKey(), time.Now(), time.Minute)
	require.NoError(t, err)
	assert.Equal(t, env.ID, vr.ID)
}

func TestEnableDisableAuthentication(t *testing.T) {
	srv, seen := rpcServer(t, http.StatusOK, `{"jsonrpc":"2.0","id":1,"result":null}`)
	p := provider.New(srv.URL, testChainID)
	assert.Nil(t, p.Account())

	acct := testAccount(t)
	p.EnableAuthentication(acct)
	assert.Equal(t, acct, p.Account())
	require.NoError(t, p.Call(context.Background(), "starknet_chainId", nil, nil))

	p.DisableAuthentication()
	assert.Nil(t, p.Account())
	require.NoError(t, p.Call(context.Background(), "starknet_chainId", nil, nil))

	require.Len(t, *seen, 2)
	assert.NotEmpty(t, (*seen)[0].header.Get(fullnode.HeaderSignature))
	assert.Empty(t, (*seen)[1].header.Get(fullnode.HeaderSignature))
}

func TestCallErrors(t *testing.T) {
	t.Run("http status", func(t *testing.T) {
		srv, _ := rpcServer(t, http.StatusInternalServerError, "boom")
		err := provider.New(srv.URL, testChainID).Call(context.Background(), "starknet_chainId", nil, nil)
		var te *provider.TransportError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, http.StatusInternalServerError, te.StatusCode)
	})
	t.Run("rpc error", func(t *testing.T) {
		srv, _ := rpcServer(t, http.StatusOK, `{"jsonrpc":"2.0","id":1,"error":{"code":-32602,"message":"Contract not found"}}`)
		_, err := provider.New(srv.URL, testChainID, provider.WithAccount(testAccount(t))).
			GetClassHashAt(context.Background(), "0x123")
		var re *provider.RPCError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, -32602, re.Code)
		assert.Equal(t, "Contract not found", re.Message)
	})
	t.Run("bad json", func(t *testing.T) {
		srv, _ := rpcServer(t, http.StatusOK, `not json`)
		err := provider.New(srv.URL, testChainID).Call(context.Background(), "starknet_chainId", nil, nil)
		assert.Error(t, err)
	})
	t.Run("no result", func(t *testing.T) {
		srv, _ := rpcServer(t, http.StatusOK, `{"jsonrpc":"2.0","id":1}`)
		var out string
		err := provider.New(srv.URL, testChainID).Call(context.Background(), "starknet_chainId", nil, &out)
		assert.ErrorContains(t, err, "no result")
	})
}

type failingSigner struct{ err error }

func (f failingSigner) Address() string { return "0x1" }

func (f failingSigner) SignMessage(context.Context, stark.TypedData) (stark.WalletSignature, error) {
	return stark.WalletSignature{}, f.err
}

func TestCallSigningFailureSendsNothing(t *testing.T) {
	srv, seen := rpcServer(t, http.StatusOK, `{"jsonrpc":"2.0","id":1,"result":null}`)
	boom := assert.AnError
	p := provider.New(srv.URL, testChainID, provider.WithAccount(failingSigner{err: boom}))

	err := p.Call(context.Background(), "starknet_chainId", nil, nil)
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, *seen)
}

func TestConcurrentCallsUseDistinctIDs(t *testing.T) {
	srv, seen := rpcServer(t, http.StatusOK, `{"jsonrpc":"2.0","id":1,"result":null}`)
	acct := testAccount(t)
	p := provider.New(srv.URL, testChainID, provider.WithAccount(acct))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, p.Call(context.Background(), "starknet_blockNumber", nil, nil))
		}()
	}
	wg.Wait()

	ids := make(map[int64]bool)
	for _, r := range *seen {
		vr, err := fullnode.Verify(r.header, r.body, testChainID, acct.PublicKey(), time.Now(), time.Minute)
		require.NoError(t, err)
		assert.False(t, ids[vr.ID])
		ids[vr.ID] = true
	}
	assert.Len(t, ids, 8)
}

func TestCallContract(t *testing.T) {
	srv, seen := rpcServer(t, http.StatusOK, `{"jsonrpc":"2.0","id":1,"result":["0x2540be400"]}`)
	p := provider.New(srv.URL, testChainID)

	out, err := p.CallContract(context.Background(), provider.NewFunctionCall("0xabc", "getTokenAssetBalance", "0x1", "0x2"))
	require.NoError(t, err)
	assert.Equal(t, []string{"0x2540be400"}, out)

	var env struct {
		Params struct {
			Request struct {
				ContractAddress    string   `json:"contract_address"`
				EntryPointSelector string   `json:"entry_point_selector"`
				Calldata           []string `json:"calldata"`
			} `json:"request"`
			BlockID string `json:"block_id"`
		} `json:"params"`
	}
	require.NoError(t, json.Unmarshal((*seen)[0].body, &env))
	assert.Equal(t, "0xabc", env.Params.Request.ContractAddress)
	assert.Equal(t, []string{"0x1", "0x2"}, env.Params.Request.Calldata)
	assert.Equal(t, "latest", env.Params.BlockID)
	sel, ok := new(big.Int).SetString(env.Params.Request.EntryPointSelector[2:], 16)
	require.True(t, ok)
	assert.Equal(t, 1, sel.Sign())
}

func TestContractClassABIEntries(t *testing.T) {
	legacy := provider.ContractClass{ABI: json.RawMessage(`[{"type":"function","name":"__execute__","inputs":[{"name":"calls","type":"felt*"}]}]`)}
	entries, err := legacy.ABIEntries()
	require.NoError(t, err)
	assert.Equal(t, "__execute__", entries[0].Name)

	sierra := provider.ContractClass{ABI: json.RawMessage(`"[{\"type\":\"interface\",\"name\":\"openzeppelin::account::interface::ISRC6\",\"items\":[{\"type\":\"function\",\"name\":\"is_valid_signature\"}]}]"`)}
	entries, err = sierra.ABIEntries()
	require.NoError(t, err)
	require.Len(t, entries[0].Items, 1)

	_, err = (&provider.ContractClass{}).ABIEntries()
	assert.Error(t, err)
	_, err = (&provider.ContractClass{ABI: json.RawMessage(`[]`)}).ABIEntries()
	assert.Error(t, err)
}

func TestStarknetHelpers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     int64           `json:"id"`
			Method string          `json:"method"`
			Params json.RawMessage `json:"params"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		var result any
		switch req.Method {
		case "starknet_chainId":
			result = "0x505249564154455f534e5f504f54435f5345504f4c4941"
		case "starknet_getClassHashAt":
			assert.JSONEq(t, `{"block_id": "latest", "contract_address": "0x123"}`, string(req.Params))
			result = "0x29927c8af6bccf3f6fda035981e765a7bdbf18a2dc0d630494f8758aa908e2b"
		case "starknet_getClassAt":
			result = map[string]any{"abi": `[{"type":"function","name":"__execute__"}]`, "contract_class_version": "0.1.0"}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"jsonrpc": "2.0", "id": req.ID, "result": result})
	}))
	defer srv.Close()

	p := provider.New(srv.URL, testChainID)
	ctx := context.Background()

	chainID, err := p.StarknetChainID(ctx)
	require.NoError(t, err)
	assert.Equal(t, "0x505249564154455f534e5f504f54435f5345504f4c4941", chainID)

	hash, err := p.GetClassHashAt(ctx, "0x123")
	require.NoError(t, err)
	assert.Equal(t, "0x29927c8af6bccf3f6fda035981e765a7bdbf18a2dc0d630494f8758aa908e2b", hash)

	class, err := p.GetClassAt(ctx, "0x123")
	require.NoError(t, err)
	assert.Equal(t, "0.1.0", class.ContractClassVersion)
	entries, err := class.ABIEntries()
	require.NoError(t, err)
	assert.Equal(t, "__execute__", entries[0].Name)

	acct := testAccount(t)
	wallet := provider.NewRPCAccount(p, "0x123", acct)
	assert.Equal(t, "0x123", wallet.Address())
	sig, err := wallet.SignMessage(ctx, fullnode.RequestTypedData(testChainID, "0x123", big.NewInt(1), 1700000000))
	require.NoError(t, err)
	assert.Equal(t, stark.SignaturePair, sig.Kind)
}
