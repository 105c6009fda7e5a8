package walletbridge

import (
	"encoding/json"
	"fmt"
)

// Request and push methods of the bridge protocol.
const (
	methodRequestAccounts   = "requestAccounts"
	methodChainID           = "chainId"
	methodSignAndBroadcast  = "signAndBroadcast"
	pushAccountsChanged     = "accountsChanged"
	pushChainChanged        = "chainChanged"
	codeUserRejected        = 4001
	codeProviderUnavailable = 4900
)

// frame is the envelope of every message exchanged with the wallet bridge.
// Frames with a method and an id are requests, frames with an id only are
// responses, frames with an event are pushes.
type frame struct {
	ID     uint64          `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Event  string          `json:"event,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *BridgeError    `json:"error,omitempty"`
}

// BridgeError is a structured error reported by the wallet bridge.
type BridgeError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *BridgeError) Error() string {
	return fmt.Sprintf("wallet bridge error %d: %s", e.Code, e.Message)
}

type signParams struct {
	From     string        `json:"from"`
	Contract string        `json:"contract"`
	Method   string        `json:"method"`
	Args     []interface{} `json:"args"`
	Value    string        `json:"value,omitempty"`
}

type accountsPush struct {
	Accounts []string `json:"accounts"`
}

type chainPush struct {
	ChainID uint64 `json:"chainId"`
}
