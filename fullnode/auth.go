package fullnode

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/tradeparadex/paradex-go/stark"
)

const (
	HeaderAccount            = "PARADEX-STARKNET-ACCOUNT"
	HeaderSignature          = "PARADEX-STARKNET-SIGNATURE"
	HeaderSignatureTimestamp = "PARADEX-STARKNET-SIGNATURE-TIMESTAMP"
	HeaderSignatureVersion   = "PARADEX-STARKNET-SIGNATURE-VERSION"

	// SignatureVersion is the only request signature version the fullnode accepts.
	SignatureVersion = "1.0.0"

	DomainName    = "Paradex"
	DomainVersion = "1"
	RequestType   = "Request"
)

// Signer is an account able to sign Starknet typed data.
type Signer interface {
	Address() string
	SignMessage(ctx context.Context, td stark.TypedData) (stark.WalletSignature, error)
}

// AuthSignature is the signed authentication envelope of a single call.
// Body holds the exact bytes that were hashed and must be transmitted.
type AuthSignature struct {
	Account     string
	Signature   [2]string
	Timestamp   int64
	ID          int64
	PayloadHash *big.Int
	Body        []byte
}

// Header returns the four authentication headers.
func (a *AuthSignature) Header() http.Header {
	h := make(http.Header, 4)
	h.Set(HeaderAccount, a.Account)
	h.Set(HeaderSignature, FormatSignature(a.Signature))
	h.Set(HeaderSignatureTimestamp, strconv.FormatInt(a.Timestamp, 10))
	h.Set(HeaderSignatureVersion, SignatureVersion)
	return h
}

// FormatSignature renders a signature as a JSON array of decimal strings.
func FormatSignature(sig [2]string) string {
	b, _ := json.Marshal(sig[:])
	return string(b)
}

func requestTypes() map[string][]stark.TypeField {
	return map[string][]stark.TypeField{
		stark.DomainType: {
			{Name: "name", Type: "felt"},
			{Name: "chainId", Type: "felt"},
			{Name: "version", Type: "felt"},
		},
		RequestType: {
			{Name: "account", Type: "felt"},
			{Name: "payload", Type: "felt"},
			{Name: "timestamp", Type: "felt"},
			{Name: "version", Type: "felt"},
		},
	}
}

// RequestTypedData is the document signed for one fullnode call.
func RequestTypedData(chainID, account string, payloadHash *big.Int, timestamp int64) stark.TypedData {
	return stark.TypedData{
		Types:       requestTypes(),
		PrimaryType: RequestType,
		Domain: stark.Domain{
			Name:    DomainName,
			Version: DomainVersion,
			ChainID: chainID,
		},
		Message: map[string]string{
			"account":   account,
			"payload":   payloadHash.String(),
			"timestamp": strconv.FormatInt(timestamp, 10),
			"version":   SignatureVersion,
		},
	}
}

// GenerateAuthSignature signs payload for the fullnode at the current time.
func GenerateAuthSignature(ctx context.Context, signer Signer, chainID string, payload Payload) (*AuthSignature, error) {
	return GenerateAuthSignatureAt(ctx, signer, chainID, payload, time.Now())
}

// GenerateAuthSignatureAt is GenerateAuthSignature with an explicit clock.
// Errors returned by the signer are passed through unchanged.
func GenerateAuthSignatureAt(ctx context.Context, signer Signer, chainID string, payload Payload, now time.Time) (*AuthSignature, error) {
	body, err := payload.MarshalCanonical()
	if err != nil {
		return nil, err
	}
	hash := HashPayload(body)
	ts := now.Unix()
	account := signer.Address()
	td := RequestTypedData(chainID, account, hash, ts)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sig, err := signer.SignMessage(ctx, td)
	if err != nil {
		return nil, err
	}
	r, s, err := sig.Components()
	if err != nil {
		return nil, err
	}
	return &AuthSignature{
		Account:     account,
		Signature:   [2]string{r.String(), s.String()},
		Timestamp:   ts,
		ID:          payload.ID,
		PayloadHash: hash,
		Body:        body,
	}, nil
}
