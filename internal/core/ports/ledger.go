package ports

import (
	"context"
	"math/big"
	"time"
)

// Value is the decoded return value of a contract read.
type Value struct {
	raw interface{}
}

// NewValue wraps a decoded RPC result.
func NewValue(raw interface{}) Value { return Value{raw: raw} }

// Uint64 returns the value as uint64.
func (v Value) Uint64() uint64 {
	switch n := v.raw.(type) {
	case uint64:
		return n
	case int64:
		return uint64(n)
	case float64:
		return uint64(n)
	case *big.Int:
		return n.Uint64()
	default:
		return 0
	}
}

// BigInt returns the value as *big.Int.
func (v Value) BigInt() *big.Int {
	switch n := v.raw.(type) {
	case *big.Int:
		return n
	case uint64:
		return new(big.Int).SetUint64(n)
	case int64:
		return big.NewInt(n)
	case string:
		if b, ok := new(big.Int).SetString(n, 10); ok {
			return b
		}
	}
	return new(big.Int)
}

// Bool returns the value as bool.
func (v Value) Bool() bool {
	b, _ := v.raw.(bool)
	return b
}

// String returns the value as string.
func (v Value) String() string {
	s, _ := v.raw.(string)
	return s
}

// List returns the value as a slice of values.
func (v Value) List() []Value {
	raw, ok := v.raw.([]interface{})
	if !ok {
		return nil
	}
	out := make([]Value, 0, len(raw))
	for _, item := range raw {
		out = append(out, Value{raw: item})
	}
	return out
}

// Raw returns the undecoded value.
func (v Value) Raw() interface{} { return v.raw }

// Log is an event record emitted by a confirmed write, indexed by block
// height and position within the block.
type Log struct {
	Height   uint64
	LogIndex uint32
	TxID     string
	Topics   []string
	Data     []Value
}

// LogFilter selects logs by emitting contract, topics and height range.
// Topics are matched positionally; an empty string matches any value at that
// position.
type LogFilter struct {
	Contract   string
	Topics     []string
	FromHeight uint64
	ToHeight   uint64
}

// Block carries the block header fields this client needs.
type Block struct {
	Height    uint64
	Timestamp time.Time
}

// TxStatus is the confirmation state of a broadcast transaction.
type TxStatus struct {
	Confirmed bool
	Height    uint64
	Reverted  bool
	Reason    string
}

// LedgerRPC is the narrow interface to the external ledger RPC collaborator.
type LedgerRPC interface {
	// Call performs a non-mutating contract call.
	Call(ctx context.Context, contract, method string, args ...interface{}) (Value, error)
	// EstimateFee estimates the fee of the given call against current network
	// conditions, surfacing the ledger's revert reason on failure.
	EstimateFee(ctx context.Context, req TxRequest) (*big.Int, error)
	// GetLogs returns the logs matching the filter.
	GetLogs(ctx context.Context, filter LogFilter) ([]Log, error)
	// GetBlock returns the block at the given height.
	GetBlock(ctx context.Context, height uint64) (Block, error)
	// BlockHeight returns the latest confirmed height.
	BlockHeight(ctx context.Context) (uint64, error)
	// TransactionStatus returns the confirmation state of a transaction.
	TransactionStatus(ctx context.Context, txID string) (TxStatus, error)
}

// TransientError marks RPC failures that are worth retrying: timeouts, rate
// limiting and comparable short-lived conditions. Implementations of
// LedgerRPC classify their own errors.
type TransientError interface {
	error
	Transient() bool
}
