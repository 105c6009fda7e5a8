package application_test

import (
	"context"
	"io"
	"math/big"

	"github.com/stretchr/testify/mock"

	"github.com/tunex-network/tunex-client/internal/core/ports"
)

// **** Ledger RPC ****

type mockRPC struct {
	mock.Mock
}

func (m *mockRPC) Call(
	ctx context.Context, contract, method string, args ...interface{},
) (ports.Value, error) {
	callArgs := append([]interface{}{contract, method}, args...)
	res := m.Called(callArgs...)

	var value ports.Value
	if a := res.Get(0); a != nil {
		value = a.(ports.Value)
	}
	return value, res.Error(1)
}

func (m *mockRPC) EstimateFee(ctx context.Context, req ports.TxRequest) (*big.Int, error) {
	res := m.Called(req.Method)

	var fee *big.Int
	if a := res.Get(0); a != nil {
		fee = a.(*big.Int)
	}
	return fee, res.Error(1)
}

func (m *mockRPC) GetLogs(ctx context.Context, filter ports.LogFilter) ([]ports.Log, error) {
	res := m.Called(filter)

	var logs []ports.Log
	if a := res.Get(0); a != nil {
		logs = a.([]ports.Log)
	}
	return logs, res.Error(1)
}

func (m *mockRPC) GetBlock(ctx context.Context, height uint64) (ports.Block, error) {
	res := m.Called(height)

	var block ports.Block
	if a := res.Get(0); a != nil {
		block = a.(ports.Block)
	}
	return block, res.Error(1)
}

func (m *mockRPC) BlockHeight(ctx context.Context) (uint64, error) {
	res := m.Called()

	var height uint64
	if a := res.Get(0); a != nil {
		height = a.(uint64)
	}
	return height, res.Error(1)
}

func (m *mockRPC) TransactionStatus(ctx context.Context, txID string) (ports.TxStatus, error) {
	res := m.Called(txID)

	var status ports.TxStatus
	if a := res.Get(0); a != nil {
		status = a.(ports.TxStatus)
	}
	return status, res.Error(1)
}

// **** Wallet provider ****

type mockWallet struct {
	mock.Mock
	events chan ports.WalletEvent
}

func newMockWallet() *mockWallet {
	return &mockWallet{events: make(chan ports.WalletEvent, 10)}
}

func (m *mockWallet) RequestAccounts(ctx context.Context) ([]string, error) {
	res := m.Called()

	var accounts []string
	if a := res.Get(0); a != nil {
		accounts = a.([]string)
	}
	return accounts, res.Error(1)
}

func (m *mockWallet) ChainID(ctx context.Context) (uint64, error) {
	res := m.Called()

	var chainID uint64
	if a := res.Get(0); a != nil {
		chainID = a.(uint64)
	}
	return chainID, res.Error(1)
}

func (m *mockWallet) SignAndBroadcast(ctx context.Context, req ports.TxRequest) (string, error) {
	res := m.Called(req.Method)

	var txID string
	if a := res.Get(0); a != nil {
		txID = a.(string)
	}
	return txID, res.Error(1)
}

func (m *mockWallet) Notifications() <-chan ports.WalletEvent {
	return m.events
}

func (m *mockWallet) Close() error {
	return nil
}

// **** Content store ****

type mockContentStore struct {
	mock.Mock
}

func (m *mockContentStore) Put(ctx context.Context, r io.Reader) (string, error) {
	res := m.Called()

	var cid string
	if a := res.Get(0); a != nil {
		cid = a.(string)
	}
	return cid, res.Error(1)
}

func (m *mockContentStore) Get(ctx context.Context, cid string) (io.ReadCloser, error) {
	res := m.Called(cid)

	var rc io.ReadCloser
	if a := res.Get(0); a != nil {
		rc = a.(io.ReadCloser)
	}
	return rc, res.Error(1)
}

// **** Invalidation listener ****

type mockListener struct {
	mock.Mock
}

func (m *mockListener) Invalidate() {
	m.Called()
}

// transientErr satisfies ports.TransientError for retry tests.
type transientErr struct {
	msg string
}

func (e *transientErr) Error() string   { return e.msg }
func (e *transientErr) Transient() bool { return true }

var _ ports.TransientError = (*transientErr)(nil)
