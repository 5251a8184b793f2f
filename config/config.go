package config

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

type Environment string

const (
	Prod    Environment = "prod"
	Testnet Environment = "testnet"
)

var apiBaseURLs = map[Environment]string{
	Prod:    "https://api.prod.paradex.trade/v1",
	Testnet: "https://api.testnet.paradex.trade/v1",
}

// APIBaseURL returns the REST base URL of env.
func APIBaseURL(env Environment) (string, error) {
	u, ok := apiBaseURLs[Environment(strings.ToLower(string(env)))]
	if !ok {
		return "", fmt.Errorf("unknown environment %q", env)
	}
	return u, nil
}

type BridgedToken struct {
	Name            string `json:"name"`
	Symbol          string `json:"symbol"`
	Decimals        int    `json:"decimals"`
	L1TokenAddress  string `json:"l1_token_address"`
	L1BridgeAddress string `json:"l1_bridge_address"`
	L2TokenAddress  string `json:"l2_token_address"`
	L2BridgeAddress string `json:"l2_bridge_address"`
}

// SystemConfig is the body of GET /system/config.
type SystemConfig struct {
	GatewayURL                string         `json:"starknet_gateway_url"`
	FullnodeRPCURL            string         `json:"starknet_fullnode_rpc_url"`
	ChainID                   string         `json:"starknet_chain_id"`
	BlockExplorerURL          string         `json:"block_explorer_url"`
	ParaclearAddress          string         `json:"paraclear_address"`
	ParaclearDecimals         int            `json:"paraclear_decimals"`
	ParaclearAccountProxyHash string         `json:"paraclear_account_proxy_hash"`
	ParaclearAccountHash      string         `json:"paraclear_account_hash"`
	BridgedTokens             []BridgedToken `json:"bridged_tokens"`
	L1CoreContractAddress     string         `json:"l1_core_contract_address"`
	L1OperatorAddress         string         `json:"l1_operator_address"`
	L1ChainID                 string         `json:"l1_chain_id"`
}

// ChainContext is the subset of the system config key derivation and request
// signing depend on.
type ChainContext struct {
	L1ChainID             string
	ChainID               string
	AccountClassHash      string
	AccountProxyClassHash string
}

func (c SystemConfig) ChainContext() ChainContext {
	return ChainContext{
		L1ChainID:             c.L1ChainID,
		ChainID:               c.ChainID,
		AccountClassHash:      c.ParaclearAccountHash,
		AccountProxyClassHash: c.ParaclearAccountProxyHash,
	}
}

// Token looks up a bridged token by symbol, case-insensitively.
func (c SystemConfig) Token(symbol string) (BridgedToken, bool) {
	for _, t := range c.BridgedTokens {
		if strings.EqualFold(t.Symbol, symbol) {
			return t, true
		}
	}
	return BridgedToken{}, false
}

// Validate checks that every field is present. Values are not interpreted.
func (c ChainContext) Validate() error {
	var missing []string
	if strings.TrimSpace(c.L1ChainID) == "" {
		missing = append(missing, "l1_chain_id")
	}
	if strings.TrimSpace(c.ChainID) == "" {
		missing = append(missing, "starknet_chain_id")
	}
	if strings.TrimSpace(c.AccountClassHash) == "" {
		missing = append(missing, "paraclear_account_hash")
	}
	if strings.TrimSpace(c.AccountProxyClassHash) == "" {
		missing = append(missing, "paraclear_account_proxy_hash")
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: missing %s", strings.Join(missing, ", "))
	}
	return nil
}

var httpClient = &http.Client{Timeout: 30 * time.Second}

// Fetch loads the system config from apiBase (e.g. https://api.prod.paradex.trade/v1).
func Fetch(ctx context.Context, apiBase string) (SystemConfig, error) {
	url := strings.TrimRight(apiBase, "/") + "/system/config"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return SystemConfig{}, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")
	res, err := httpClient.Do(req)
	if err != nil {
		return SystemConfig{}, errors.Wrap(err, "failed to fetch system config")
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return SystemConfig{}, errors.Wrap(err, "failed to read response")
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return SystemConfig{}, errors.Errorf("http %d: %s", res.StatusCode, string(body))
	}
	var cfg SystemConfig
	if err := json.Unmarshal(body, &cfg); err != nil {
		return SystemConfig{}, errors.Wrap(err, "failed to decode system config")
	}
	log.Debug().Str("chain_id", cfg.ChainID).Str("l1_chain_id", cfg.L1ChainID).Msg("fetched system config")
	return cfg, nil
}
