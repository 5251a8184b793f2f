package paradexapi

import (
	"context"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradeparadex/paradex-go/account"
	"github.com/tradeparadex/paradex-go/config"
	"github.com/tradeparadex/paradex-go/fullnode"
	"github.com/tradeparadex/paradex-go/stark"
)

var testnet = config.ChainContext{
	L1ChainID:             "11155111",
	ChainID:               "PRIVATE_SN_POTC_SEPOLIA",
	AccountClassHash:      "0x033434ad846cdd5f23eb73ff09fe6fddd568284a0fb7d1be20ee482f044dabe2",
	AccountProxyClassHash: "0x3530cc4759d78042f1b543bf797f5f3d647cde0388c33734cf91b7f7b9314a9",
}

const ethAddress = "0xc6d5a3c98ec9073b54fa0969957bd582e8d874bf"

func testAccount(t *testing.T) *account.Account {
	t.Helper()
	priv, err := stark.ParseFelt("0x643b17fd3d0c403b8214af3439adbff6d8359e034de6c7d46b4ab5696c461de")
	require.NoError(t, err)
	kp, err := stark.NewKeyPair(priv)
	require.NoError(t, err)
	acct, err := account.New(kp, testnet)
	require.NoError(t, err)
	return acct
}

func TestOnboardingTypedDataHash(t *testing.T) {
	acct, err := stark.ParseFelt("0x5c706a72363bd09bfd8673dc907917436fbc816b08e812cb2da4badffcbb2e1")
	require.NoError(t, err)
	h, err := OnboardingTypedData(testnet.ChainID).MessageHash(acct)
	require.NoError(t, err)
	assert.Equal(t, "0x5384e604ac95955d122028acc0330e7c2162613b1a1189e354c94f870d0d632", "0x"+h.Text(16))
}

func TestOnboardVerifiedByServer(t *testing.T) {
	acct := testAccount(t)
	var got *Onboarding
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/onboarding", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		var err error
		got, err = VerifyOnboarding(r.Header, body, testnet)
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	require.NoError(t, New(srv.URL+"/v1").Onboard(context.Background(), ethAddress, acct))
	require.NotNil(t, got)
	assert.Equal(t, acct.Address(), got.Account)
	assert.Equal(t, acct.PublicKeyHex(), got.PublicKey)
	assert.Equal(t, ethAddress, got.EthereumAccount)
}

func TestOnboardAlreadyOnboarded(t *testing.T) {
	for _, tt := range []struct {
		status int
		body   string
	}{
		{http.StatusConflict, ""},
		{http.StatusBadRequest, `{"error":"ALREADY_ONBOARDED"}`},
	} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			_, _ = w.Write([]byte(tt.body))
		}))
		assert.NoError(t, New(srv.URL).Onboard(context.Background(), ethAddress, testAccount(t)))
		srv.Close()
	}
}

func TestOnboardHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()
	assert.ErrorContains(t, New(srv.URL).Onboard(context.Background(), ethAddress, testAccount(t)), "http 403")
}

func TestVerifyOnboardingRejects(t *testing.T) {
	acct := testAccount(t)
	sig, err := acct.SignMessage(context.Background(), OnboardingTypedData(testnet.ChainID))
	require.NoError(t, err)
	header := func() http.Header {
		h := http.Header{}
		h.Set(HeaderEthereumAccount, ethAddress)
		h.Set(fullnode.HeaderAccount, acct.Address())
		h.Set(fullnode.HeaderSignature, fullnode.FormatSignature([2]string{sig.R.String(), sig.S.String()}))
		return h
	}
	body := []byte(`{"public_key":"` + acct.PublicKeyHex() + `"}`)

	_, err = VerifyOnboarding(header(), body, testnet)
	require.NoError(t, err)

	h := header()
	h.Set(fullnode.HeaderAccount, "0x1")
	_, err = VerifyOnboarding(h, body, testnet)
	assert.ErrorIs(t, err, ErrAddressMismatch)

	h = header()
	h.Set(fullnode.HeaderSignature, fullnode.FormatSignature([2]string{sig.R.String(), new(big.Int).Add(sig.S, big.NewInt(1)).String()}))
	_, err = VerifyOnboarding(h, body, testnet)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	h = header()
	h.Del(HeaderEthereumAccount)
	_, err = VerifyOnboarding(h, body, testnet)
	assert.Error(t, err)
}
