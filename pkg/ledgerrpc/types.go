package ledgerrpc

import (
	"encoding/json"
	"fmt"
	"strings"
)

// JSON-RPC error codes this client gives a meaning to.
const (
	// CodeRateLimited is returned by nodes shedding load.
	CodeRateLimited = -32005
	// CodeServerBusy is returned by nodes with exhausted resources.
	CodeServerBusy = -32002
	// CodeRevert carries an execution revert with its reason.
	CodeRevert = 3
)

const revertPrefix = "execution reverted"

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
	ID      uint64        `json:"id"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// RPCError is a structured JSON-RPC error.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// Transient reports whether the failure is worth retrying.
func (e *RPCError) Transient() bool {
	return e.Code == CodeRateLimited || e.Code == CodeServerBusy
}

// IsRevert reports whether the error carries an execution revert.
func (e *RPCError) IsRevert() bool {
	return e.Code == CodeRevert || strings.HasPrefix(e.Message, revertPrefix)
}

// RevertReason returns the ledger's revert reason, verbatim, without the
// protocol prefix.
func (e *RPCError) RevertReason() string {
	reason := strings.TrimPrefix(e.Message, revertPrefix)
	return strings.TrimPrefix(strings.TrimSpace(reason), ": ")
}

// HTTPError is a non-200 response from the RPC endpoint.
type HTTPError struct {
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("rpc endpoint returned status %d", e.Status)
}

// Transient reports whether the failure is worth retrying.
func (e *HTTPError) Transient() bool {
	return e.Status == 429 || e.Status >= 500
}

// TransportError is a network-level failure reaching the RPC endpoint.
type TransportError struct {
	cause   error
	timeout bool
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("rpc transport: %s", e.cause)
}

func (e *TransportError) Unwrap() error { return e.cause }

// Transient reports whether the failure is worth retrying. Transport
// failures always are: the request may simply not have reached the node.
func (e *TransportError) Transient() bool { return true }

func asRevert(err error) (bool, string) {
	if rpcErr, ok := err.(*RPCError); ok && rpcErr.IsRevert() {
		return true, rpcErr.RevertReason()
	}
	return false, ""
}
