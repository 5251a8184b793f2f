package paradexapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/tradeparadex/paradex-go/account"
	"github.com/tradeparadex/paradex-go/config"
	"github.com/tradeparadex/paradex-go/fullnode"
	"github.com/tradeparadex/paradex-go/stark"
)

const (
	HeaderEthereumAccount = "PARADEX-ETHEREUM-ACCOUNT"
	onboardingAction      = "Onboarding"
)

var (
	ErrAddressMismatch  = errors.New("onboarding: account address does not match public key")
	ErrInvalidSignature = errors.New("onboarding: invalid signature")
)

type OnboardingRequest struct {
	PublicKey string `json:"public_key"`
}

// Client talks to the Paradex REST API.
type Client struct {
	apiBase string
	http    *http.Client
}

func New(apiBase string) *Client {
	return &Client{
		apiBase: strings.TrimRight(apiBase, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// OnboardingTypedData is the message an account signs to register with the
// exchange.
func OnboardingTypedData(chainID string) stark.TypedData {
	return stark.TypedData{
		Types: map[string][]stark.TypeField{
			stark.DomainType: {
				{Name: "name", Type: "felt"},
				{Name: "chainId", Type: "felt"},
				{Name: "version", Type: "felt"},
			},
			"Constant": {
				{Name: "action", Type: "felt"},
			},
		},
		PrimaryType: "Constant",
		Domain: stark.Domain{
			Name:    fullnode.DomainName,
			Version: fullnode.DomainVersion,
			ChainID: chainID,
		},
		Message: map[string]string{"action": onboardingAction},
	}
}

// Onboard registers acct under ethAddress. Accounts that are already
// onboarded are treated as success.
func (c *Client) Onboard(ctx context.Context, ethAddress string, acct *account.Account) error {
	sig, err := acct.SignMessage(ctx, OnboardingTypedData(acct.ChainContext().ChainID))
	if err != nil {
		return err
	}
	r, s, err := sig.Components()
	if err != nil {
		return err
	}

	bodyBytes, err := json.Marshal(OnboardingRequest{PublicKey: acct.PublicKeyHex()})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+"/onboarding", bytes.NewReader(bodyBytes))
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderEthereumAccount, ethAddress)
	req.Header.Set(fullnode.HeaderAccount, acct.Address())
	req.Header.Set(fullnode.HeaderSignature, fullnode.FormatSignature([2]string{r.String(), s.String()}))

	res, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "failed to send onboarding request")
	}
	defer res.Body.Close()
	raw, _ := io.ReadAll(res.Body)
	if res.StatusCode >= 200 && res.StatusCode < 300 {
		log.Debug().Str("account", acct.Address()).Msg("onboarded")
		return nil
	}
	if res.StatusCode == http.StatusConflict || bytes.Contains(bytes.ToUpper(raw), []byte("ALREADY_ONBOARDED")) {
		log.Debug().Str("account", acct.Address()).Msg("already onboarded")
		return nil
	}
	return errors.Errorf("http %d: %s", res.StatusCode, string(raw))
}

// Onboarding is a verified onboarding request.
type Onboarding struct {
	EthereumAccount string
	Account         string
	PublicKey       string
}

// VerifyOnboarding checks an onboarding request: the account must be the
// address derived from the submitted public key, and the signature must be
// the key's signature of the onboarding message.
func VerifyOnboarding(h http.Header, body []byte, chain config.ChainContext) (*Onboarding, error) {
	var req OnboardingRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, errors.Wrap(err, "failed to decode onboarding request")
	}
	ethAccount := h.Get(HeaderEthereumAccount)
	acctAddr := h.Get(fullnode.HeaderAccount)
	rawSig := h.Get(fullnode.HeaderSignature)
	if ethAccount == "" || acctAddr == "" || rawSig == "" || req.PublicKey == "" {
		return nil, errors.New("onboarding: missing header or public key")
	}

	pub, err := stark.ParseFelt(req.PublicKey)
	if err != nil {
		return nil, errors.Wrap(err, "onboarding: public key")
	}
	want, err := account.ComputeAddress(pub, chain)
	if err != nil {
		return nil, err
	}
	got, err := stark.ParseFelt(acctAddr)
	if err != nil {
		return nil, errors.Wrap(err, "onboarding: account")
	}
	wantBN, _ := stark.ParseFelt(want)
	if got.Cmp(wantBN) != 0 {
		return nil, ErrAddressMismatch
	}

	sig, err := stark.ParseWalletSignature([]byte(rawSig))
	if err != nil {
		return nil, errors.Wrap(ErrInvalidSignature, err.Error())
	}
	r, s, err := sig.Components()
	if err != nil {
		return nil, errors.Wrap(ErrInvalidSignature, err.Error())
	}
	msgHash, err := OnboardingTypedData(chain.ChainID).MessageHash(got)
	if err != nil {
		return nil, err
	}
	if !stark.Verify(pub, msgHash, r, s) {
		return nil, ErrInvalidSignature
	}
	return &Onboarding{EthereumAccount: ethAccount, Account: want, PublicKey: req.PublicKey}, nil
}
