package ports

import (
	"context"
	"math/big"
)

// TxRequest describes a contract call to be estimated, signed and broadcast.
type TxRequest struct {
	From     string
	Contract string
	Method   string
	Args     []interface{}
	ValueWei *big.Int
}

// WalletEventType discriminates push notifications from the wallet provider.
type WalletEventType int

const (
	// WalletEventAccountsChanged signals that the active account changed.
	WalletEventAccountsChanged WalletEventType = iota
	// WalletEventChainChanged signals that the active chain changed.
	WalletEventChainChanged
)

// WalletEvent is a push notification emitted by the wallet provider.
type WalletEvent struct {
	Type     WalletEventType
	Accounts []string
	ChainID  uint64
}

// WalletProvider is the narrow interface to the external wallet collaborator.
// It is injected rather than read from ambient state so tests can substitute
// a double.
type WalletProvider interface {
	// RequestAccounts asks the wallet for account access and returns the
	// granted accounts.
	RequestAccounts(ctx context.Context) ([]string, error)
	// ChainID returns the chain the wallet is currently connected to.
	ChainID(ctx context.Context) (uint64, error)
	// SignAndBroadcast asks the wallet to sign the given call and broadcast
	// it, returning the transaction id.
	SignAndBroadcast(ctx context.Context, req TxRequest) (string, error)
	// Notifications returns the channel of push events (account and chain
	// changes). The channel is closed when the provider shuts down.
	Notifications() <-chan WalletEvent
	// Close tears down the provider connection.
	Close() error
}
