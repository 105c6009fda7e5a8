package ledgerrpc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tunex-network/tunex-client/internal/core/domain"
	"github.com/tunex-network/tunex-client/internal/core/ports"
)

// newTestServer serves canned JSON-RPC responses keyed by method. Every
// client starts with a ledger_blockHeight health check, so a handler for it
// is always installed.
func newTestServer(t *testing.T, handlers map[string]interface{}) *httptest.Server {
	t.Helper()
	if _, ok := handlers["ledger_blockHeight"]; !ok {
		handlers["ledger_blockHeight"] = uint64(100)
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "2.0", req.JSONRPC)

		canned, ok := handlers[req.Method]
		require.True(t, ok, "unexpected method %s", req.Method)

		if rpcErr, isErr := canned.(*RPCError); isErr {
			json.NewEncoder(w).Encode(map[string]interface{}{"error": rpcErr})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"result": canned})
	}))
}

func newTestClient(t *testing.T, handlers map[string]interface{}) *Client {
	t.Helper()
	server := newTestServer(t, handlers)
	t.Cleanup(server.Close)

	client, err := NewClient(Opts{RPCURL: server.URL, Timeout: time.Second})
	require.NoError(t, err)
	return client
}

func TestNewClientHealthCheck(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, map[string]interface{}{})
	height, err := client.BlockHeight(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(100), height)
}

func TestNewClientUnreachableEndpoint(t *testing.T) {
	t.Parallel()

	_, err := NewClient(Opts{RPCURL: "http://127.0.0.1:1", Timeout: time.Second})
	require.Error(t, err)
}

func TestCallDecodesResult(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, map[string]interface{}{
		"ledger_call": []interface{}{"Harbor Lights", "1000", "bafytest"},
	})

	value, err := client.Call(context.Background(), "0xc0ffee", "getEntryDetails", uint64(1))
	require.NoError(t, err)
	fields := value.List()
	require.Len(t, fields, 3)
	require.Equal(t, "Harbor Lights", fields[0].String())
	require.Equal(t, "1000", fields[1].BigInt().String())
}

func TestEstimateFeeSurfacesRevertReason(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, map[string]interface{}{
		"ledger_estimateFee": &RPCError{
			Code:    CodeRevert,
			Message: "execution reverted: Incorrect value sent",
		},
	})

	_, err := client.EstimateFee(context.Background(), ports.TxRequest{
		From:     "0xa11ce",
		Contract: "0xc0ffee",
		Method:   "purchaseEntry",
	})
	var estimation *domain.EstimationError
	require.ErrorAs(t, err, &estimation)
	require.Equal(t, "Incorrect value sent", estimation.Reason)
}

func TestEstimateFeeDecodesAmount(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, map[string]interface{}{
		"ledger_estimateFee": "21000",
	})

	fee, err := client.EstimateFee(context.Background(), ports.TxRequest{Method: "withdrawFunds"})
	require.NoError(t, err)
	require.Equal(t, "21000", fee.String())
}

func TestGetLogsDecodesRecords(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, map[string]interface{}{
		"ledger_getLogs": []map[string]interface{}{
			{
				"height":   12,
				"logIndex": 1,
				"txid":     "0xtx1",
				"topics":   []string{"0xtopic"},
				"data":     []interface{}{float64(7), "700"},
			},
		},
	})

	logs, err := client.GetLogs(context.Background(), ports.LogFilter{
		Contract: "0xc0ffee",
		ToHeight: 50,
	})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, uint64(12), logs[0].Height)
	require.Equal(t, uint32(1), logs[0].LogIndex)
	require.Equal(t, uint64(7), logs[0].Data[0].Uint64())
	require.Equal(t, "700", logs[0].Data[1].BigInt().String())
}

func TestGetBlockDecodesTimestamp(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, map[string]interface{}{
		"ledger_getBlock": map[string]interface{}{
			"height":    12,
			"timestamp": 1700000000,
		},
	})

	block, err := client.GetBlock(context.Background(), 12)
	require.NoError(t, err)
	require.Equal(t, uint64(12), block.Height)
	require.Equal(t, time.Unix(1700000000, 0).UTC(), block.Timestamp)
}

func TestTransactionStatusDecodesRevert(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, map[string]interface{}{
		"ledger_getTransactionStatus": map[string]interface{}{
			"confirmed": false,
			"reverted":  true,
			"reason":    "Already purchased",
		},
	})

	status, err := client.TransactionStatus(context.Background(), "0xtx1")
	require.NoError(t, err)
	require.True(t, status.Reverted)
	require.Equal(t, "Already purchased", status.Reason)
}

func TestServerErrorsAreClassified(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	_, err := NewClient(Opts{RPCURL: server.URL, Timeout: time.Second})
	var transient ports.TransientError
	require.ErrorAs(t, err, &transient)
	require.True(t, transient.Transient())
}
