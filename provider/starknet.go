package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/dontpanicdao/caigo/types"

	"github.com/tradeparadex/paradex-go/stark"
)

const BlockLatest = "latest"

type classAtParams struct {
	BlockID         string `json:"block_id"`
	ContractAddress string `json:"contract_address"`
}

type FunctionCall struct {
	ContractAddress    string   `json:"contract_address"`
	EntryPointSelector string   `json:"entry_point_selector"`
	Calldata           []string `json:"calldata"`
}

type callParams struct {
	Request FunctionCall `json:"request"`
	BlockID string       `json:"block_id"`
}

// NewFunctionCall resolves entryPoint to its selector.
func NewFunctionCall(contract, entryPoint string, calldata ...string) FunctionCall {
	if calldata == nil {
		calldata = []string{}
	}
	return FunctionCall{
		ContractAddress:    contract,
		EntryPointSelector: types.BigToHex(types.GetSelectorFromName(entryPoint)),
		Calldata:           calldata,
	}
}

// ContractClass is the part of starknet_getClassAt the SDK reads.
type ContractClass struct {
	ABI                  json.RawMessage `json:"abi"`
	ContractClassVersion string          `json:"contract_class_version,omitempty"`
}

type ABIParam struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type ABIEntry struct {
	Type    string     `json:"type"`
	Name    string     `json:"name"`
	Inputs  []ABIParam `json:"inputs,omitempty"`
	Outputs []ABIParam `json:"outputs,omitempty"`
	Items   []ABIEntry `json:"items,omitempty"`
}

// ABIEntries decodes the ABI. Sierra classes carry it as a JSON string,
// legacy classes as an array.
func (c *ContractClass) ABIEntries() ([]ABIEntry, error) {
	raw := bytes.TrimSpace(c.ABI)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, fmt.Errorf("class has no abi")
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		raw = []byte(s)
	}
	var entries []ABIEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("class abi is empty")
	}
	return entries, nil
}

// StarknetChainID returns the chain id reported by the node.
func (p *Provider) StarknetChainID(ctx context.Context) (string, error) {
	var out string
	if err := p.Call(ctx, "starknet_chainId", nil, &out); err != nil {
		return "", err
	}
	return out, nil
}

func (p *Provider) GetClassHashAt(ctx context.Context, address string) (string, error) {
	var out string
	err := p.Call(ctx, "starknet_getClassHashAt", classAtParams{BlockID: BlockLatest, ContractAddress: address}, &out)
	if err != nil {
		return "", err
	}
	return out, nil
}

func (p *Provider) GetClassAt(ctx context.Context, address string) (*ContractClass, error) {
	var out ContractClass
	err := p.Call(ctx, "starknet_getClassAt", classAtParams{BlockID: BlockLatest, ContractAddress: address}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// CallContract runs a read-only call at the latest block.
func (p *Provider) CallContract(ctx context.Context, call FunctionCall) ([]string, error) {
	var out []string
	if err := p.Call(ctx, "starknet_call", callParams{Request: call, BlockID: BlockLatest}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MessageSigner signs typed data for a Starknet account.
type MessageSigner interface {
	SignMessage(ctx context.Context, td stark.TypedData) (stark.WalletSignature, error)
}

// RPCAccount pairs a wallet's signer with a provider for on-chain lookups.
type RPCAccount struct {
	*Provider
	address string
	signer  MessageSigner
}

func NewRPCAccount(p *Provider, address string, signer MessageSigner) *RPCAccount {
	return &RPCAccount{Provider: p, address: address, signer: signer}
}

func (a *RPCAccount) Address() string {
	return a.address
}

func (a *RPCAccount) SignMessage(ctx context.Context, td stark.TypedData) (stark.WalletSignature, error) {
	return a.signer.SignMessage(ctx, td)
}
