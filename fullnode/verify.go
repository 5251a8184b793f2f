package fullnode

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/tradeparadex/paradex-go/stark"
)

var (
	ErrMissingHeader      = errors.New("fullnode: missing authentication header")
	ErrUnsupportedVersion = errors.New("fullnode: unsupported signature version")
	ErrStaleSignature     = errors.New("fullnode: signature timestamp outside allowed window")
	ErrInvalidSignature   = errors.New("fullnode: invalid request signature")
)

// AuthHeaders is the parsed form of the four authentication headers.
type AuthHeaders struct {
	Account   string
	R, S      *big.Int
	Timestamp int64
	Version   string
}

func ParseAuthHeaders(h http.Header) (*AuthHeaders, error) {
	out := &AuthHeaders{
		Account: h.Get(HeaderAccount),
		Version: h.Get(HeaderSignatureVersion),
	}
	rawSig := h.Get(HeaderSignature)
	rawTs := h.Get(HeaderSignatureTimestamp)
	for name, v := range map[string]string{
		HeaderAccount:            out.Account,
		HeaderSignature:          rawSig,
		HeaderSignatureTimestamp: rawTs,
		HeaderSignatureVersion:   out.Version,
	} {
		if v == "" {
			return nil, fmt.Errorf("%w: %s", ErrMissingHeader, name)
		}
	}
	if out.Version != SignatureVersion {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedVersion, out.Version)
	}
	var parts []string
	if err := json.Unmarshal([]byte(rawSig), &parts); err != nil || len(parts) != 2 {
		return nil, fmt.Errorf("%w: malformed %s", ErrInvalidSignature, HeaderSignature)
	}
	var err error
	if out.R, err = stark.ParseFelt(parts[0]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if out.S, err = stark.ParseFelt(parts[1]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if out.Timestamp, err = strconv.ParseInt(rawTs, 10, 64); err != nil {
		return nil, fmt.Errorf("%w: malformed %s", ErrInvalidSignature, HeaderSignatureTimestamp)
	}
	return out, nil
}

// VerifiedRequest describes a request whose signature checked out.
type VerifiedRequest struct {
	Account     string
	Timestamp   int64
	ID          int64
	Method      string
	PayloadHash *big.Int
}

// Verify recomputes the payload hash of body and checks the request
// signature against publicKey. A zero maxSkew disables the timestamp check.
func Verify(h http.Header, body []byte, chainID string, publicKey *big.Int, now time.Time, maxSkew time.Duration) (*VerifiedRequest, error) {
	ah, err := ParseAuthHeaders(h)
	if err != nil {
		return nil, err
	}
	if maxSkew > 0 {
		skew := now.Sub(time.Unix(ah.Timestamp, 0))
		if skew > maxSkew || skew < -maxSkew {
			return nil, ErrStaleSignature
		}
	}
	account, err := stark.ParseFelt(ah.Account)
	if err != nil {
		return nil, fmt.Errorf("%w: bad account: %v", ErrInvalidSignature, err)
	}
	var env struct {
		Method string `json:"method"`
		ID     int64  `json:"id"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	hash := HashPayload(body)
	td := RequestTypedData(chainID, ah.Account, hash, ah.Timestamp)
	msgHash, err := td.MessageHash(account)
	if err != nil {
		return nil, err
	}
	if !stark.Verify(publicKey, msgHash, ah.R, ah.S) {
		return nil, ErrInvalidSignature
	}
	return &VerifiedRequest{
		Account:     ah.Account,
		Timestamp:   ah.Timestamp,
		ID:          env.ID,
		Method:      env.Method,
		PayloadHash: hash,
	}, nil
}
