package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tunex-network/tunex-client/internal/core/application"
)

const (
	testAccount  = "0xa11ce00000000000000000000000000000000001"
	testBuyer    = "0xb0b0000000000000000000000000000000000002"
	testContract = "0xc0ffee0000000000000000000000000000000003"
	testChainID  = uint64(5)
)

func newConnectedSessions(t *testing.T, wallet *mockWallet) application.SessionManager {
	t.Helper()

	wallet.On("RequestAccounts").Return([]string{testAccount}, nil)
	wallet.On("ChainID").Return(testChainID, nil)

	sessions := application.NewSessionManager(application.SessionManagerOpts{
		Wallet:            wallet,
		ContractAddresses: map[uint64]string{testChainID: testContract},
	})
	_, err := sessions.Connect(context.Background())
	require.NoError(t, err)
	return sessions
}

// newFastGateway returns a gateway with timings suitable for tests.
func newFastGateway(
	rpc *mockRPC, wallet *mockWallet, sessions application.SessionManager,
) application.LedgerGateway {
	return application.NewLedgerGateway(application.GatewayOpts{
		RPC:                 rpc,
		Wallet:              wallet,
		Sessions:            sessions,
		RetryBaseDelay:      time.Millisecond,
		AttemptTimeout:      time.Second,
		ConfirmCeiling:      200 * time.Millisecond,
		ConfirmPollInterval: 10 * time.Millisecond,
		ReadsPerSecond:      1000,
	})
}
