package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tradeparadex/paradex-go/fullnode"
	"github.com/tradeparadex/paradex-go/paradexapi"
	"github.com/tradeparadex/paradex-go/provider"
	"github.com/tradeparadex/paradex-go/stark"
)

const maxBodyBytes = 1 << 20

const (
	rpcParseError     = -32700
	rpcMethodNotFound = -32601
)

type okResp struct {
	OK bool `json:"ok"`
}

type errorResp struct {
	Error string `json:"error"`
}

type rpcEnvelope struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      json.RawMessage `json:"id"`
}

type rpcErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcErrorBody   `json:"error,omitempty"`
}

func withJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeRPC(w http.ResponseWriter, id json.RawMessage, result any, rpcErr *rpcErrorBody) {
	if len(id) == 0 {
		id = json.RawMessage("null")
	}
	writeJSON(w, http.StatusOK, rpcResponse{JSONRPC: fullnode.JSONRPCVersion, ID: id, Result: result, Error: rpcErr})
}

// canonicalAddress normalizes a felt to lowercase 0x hex without leading
// zeros, the form account addresses are stored in.
func canonicalAddress(s string) (string, error) {
	v, err := stark.ParseFelt(s)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("0x%x", v), nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, okResp{OK: true})
}

func (s *Server) handleOnboarding(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResp{Error: "method not allowed"})
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: "invalid body"})
		return
	}
	ob, err := paradexapi.VerifyOnboarding(r.Header, body, s.cfg.Chain)
	switch {
	case err == nil:
	case errors.Is(err, paradexapi.ErrInvalidSignature):
		s.metrics.onboardings.WithLabelValues("invalid_signature").Inc()
		writeJSON(w, http.StatusUnauthorized, errorResp{Error: err.Error()})
		return
	default:
		s.metrics.onboardings.WithLabelValues("bad_request").Inc()
		writeJSON(w, http.StatusBadRequest, errorResp{Error: err.Error()})
		return
	}

	pub, err := canonicalAddress(ob.PublicKey)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: "invalid public key"})
		return
	}
	err = s.db.addAccount(OnboardedAccount{
		Account:         ob.Account,
		PublicKey:       pub,
		EthereumAccount: ob.EthereumAccount,
	})
	if errors.Is(err, errAlreadyOnboarded) {
		s.metrics.onboardings.WithLabelValues("already_onboarded").Inc()
		writeJSON(w, http.StatusConflict, errorResp{Error: errAlreadyOnboarded.Error()})
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("store account")
		writeJSON(w, http.StatusInternalServerError, errorResp{Error: "onboarding failed"})
		return
	}
	s.metrics.onboardings.WithLabelValues("ok").Inc()
	log.Info().Str("account", ob.Account).Str("ethereum_account", ob.EthereumAccount).Msg("onboarded")
	writeJSON(w, http.StatusOK, okResp{OK: true})
}

func (s *Server) handleAccount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorResp{Error: "method not allowed"})
		return
	}
	addr, err := canonicalAddress(strings.TrimPrefix(r.URL.Path, "/accounts/"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: "invalid address"})
		return
	}
	acct, ok := s.db.account(addr)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp{Error: "account not found"})
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

// handleRPC authenticates a fullnode call against the public key the account
// onboarded with. starknet_chainId is answered locally; everything else goes
// to the upstream fullnode when one is configured.
func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResp{Error: "method not allowed"})
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp{Error: "invalid body"})
		return
	}
	var env rpcEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		s.metrics.rpcRequests.WithLabelValues("", "bad_request").Inc()
		writeRPC(w, nil, nil, &rpcErrorBody{Code: rpcParseError, Message: "Parse error"})
		return
	}

	if err := s.authenticate(r.Header, body); err != nil {
		s.metrics.rpcRequests.WithLabelValues("", "unauthorized").Inc()
		log.Debug().Err(err).Str("method", env.Method).Msg("rejected rpc call")
		writeJSON(w, http.StatusUnauthorized, errorResp{Error: err.Error()})
		return
	}

	switch {
	case env.Method == "starknet_chainId":
		s.metrics.rpcRequests.WithLabelValues(env.Method, "ok").Inc()
		writeRPC(w, env.ID, "0x"+hex.EncodeToString([]byte(s.cfg.Chain.ChainID)), nil)
	case s.upstream != nil:
		s.forward(w, r, env.Method, body)
	default:
		s.metrics.rpcRequests.WithLabelValues(env.Method, "not_found").Inc()
		writeRPC(w, env.ID, nil, &rpcErrorBody{Code: rpcMethodNotFound, Message: "Method not found"})
	}
}

func (s *Server) authenticate(h http.Header, body []byte) error {
	auth, err := fullnode.ParseAuthHeaders(h)
	if err != nil {
		return err
	}
	addr, err := canonicalAddress(auth.Account)
	if err != nil {
		return err
	}
	acct, ok := s.db.account(addr)
	if !ok {
		return fmt.Errorf("account %s is not onboarded", addr)
	}
	pub, err := stark.ParseFelt(acct.PublicKey)
	if err != nil {
		return err
	}
	_, err = fullnode.Verify(h, body, s.cfg.Chain.ChainID, pub, s.now(), s.cfg.MaxSkew)
	return err
}

func (s *Server) forward(w http.ResponseWriter, r *http.Request, method string, body []byte) {
	h := make(http.Header)
	for _, k := range []string{
		fullnode.HeaderAccount,
		fullnode.HeaderSignature,
		fullnode.HeaderSignatureTimestamp,
		fullnode.HeaderSignatureVersion,
	} {
		h.Set(k, r.Header.Get(k))
	}

	start := time.Now()
	res, err := s.upstream.Do(r.Context(), &provider.Request{URL: s.cfg.UpstreamRPCURL, Header: h, Body: body})
	s.metrics.upstream.Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.rpcRequests.WithLabelValues(method, "upstream_error").Inc()
		log.Error().Err(err).Str("method", method).Msg("upstream call")
		writeJSON(w, http.StatusBadGateway, errorResp{Error: "upstream unavailable"})
		return
	}
	s.metrics.rpcRequests.WithLabelValues(method, "forwarded").Inc()
	w.WriteHeader(res.StatusCode)
	_, _ = w.Write(res.Body)
}
