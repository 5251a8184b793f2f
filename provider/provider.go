package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/tradeparadex/paradex-go/fullnode"
)

const defaultTimeout = 30 * time.Second

// Provider is a JSON-RPC client for the Paradex fullnode. With an account
// attached every call carries the fullnode authentication headers; without
// one, calls are sent unauthenticated.
type Provider struct {
	url       string
	chainID   string
	transport Transport

	mu      sync.RWMutex
	account fullnode.Signer
}

type Option func(*Provider)

// WithTransport replaces the default HTTP transport.
func WithTransport(t Transport) Option {
	return func(p *Provider) { p.transport = t }
}

// WithAccount enables authentication from construction.
func WithAccount(acct fullnode.Signer) Option {
	return func(p *Provider) { p.account = acct }
}

// New returns a provider for the fullnode at url on chainID.
func New(url, chainID string, opts ...Option) *Provider {
	p := &Provider{
		url:       url,
		chainID:   chainID,
		transport: NewHTTPTransport(defaultTimeout),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) URL() string     { return p.url }
func (p *Provider) ChainID() string { return p.chainID }

// EnableAuthentication signs every following call as acct.
func (p *Provider) EnableAuthentication(acct fullnode.Signer) {
	p.mu.Lock()
	p.account = acct
	p.mu.Unlock()
}

// DisableAuthentication switches back to unauthenticated calls.
func (p *Provider) DisableAuthentication() {
	p.mu.Lock()
	p.account = nil
	p.mu.Unlock()
}

// Account returns the signing account, or nil.
func (p *Provider) Account() fullnode.Signer {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.account
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// Call invokes method with params and decodes the result into result, which
// may be nil.
func (p *Provider) Call(ctx context.Context, method string, params any, result any) error {
	acct := p.Account()
	payload := fullnode.NewPayload(method, params)

	var (
		body   []byte
		header http.Header
	)
	if acct != nil {
		auth, err := fullnode.GenerateAuthSignature(ctx, acct, p.chainID, payload)
		if err != nil {
			return err
		}
		body, header = auth.Body, auth.Header()
	} else {
		var err error
		if body, err = payload.MarshalCanonical(); err != nil {
			return err
		}
		header = make(http.Header)
	}

	log.Debug().
		Str("method", method).
		Int64("id", payload.ID).
		Bool("authenticated", acct != nil).
		Msg("fullnode rpc call")

	res, err := p.transport.Do(ctx, &Request{URL: p.url, Header: header, Body: body})
	if err != nil {
		return errors.Wrapf(err, "%s", method)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return &TransportError{StatusCode: res.StatusCode, Body: string(res.Body)}
	}

	var rpcRes rpcResponse
	if err := json.Unmarshal(res.Body, &rpcRes); err != nil {
		return errors.Wrap(err, "failed to decode response")
	}
	if rpcRes.Error != nil {
		return rpcRes.Error
	}
	if len(rpcRes.Result) == 0 {
		return errors.New("rpc response has no result")
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(rpcRes.Result, result); err != nil {
		return errors.Wrap(err, "failed to decode result")
	}
	return nil
}
