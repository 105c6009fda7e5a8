package application_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tunex-network/tunex-client/internal/core/application"
	"github.com/tunex-network/tunex-client/internal/core/ports"
)

func purchaseLog(trackID uint64, amount string, height uint64, logIndex uint32) ports.Log {
	return ports.Log{
		Height:   height,
		LogIndex: logIndex,
		TxID:     "0xtx",
		Data: []ports.Value{
			ports.NewValue(float64(trackID)),
			ports.NewValue(amount),
		},
	}
}

func TestHistoryOrdersByHeightThenLogIndex(t *testing.T) {
	t.Parallel()

	wallet := newMockWallet()
	sessions := newConnectedSessions(t, wallet)
	rpc := &mockRPC{}
	rpc.On("BlockHeight").Return(uint64(50), nil)
	// Logs arrive in no particular order, two of them share a block.
	rpc.On("GetLogs", mock.Anything).Return([]ports.Log{
		purchaseLog(3, "300", 40, 2),
		purchaseLog(1, "1000", 12, 0),
		purchaseLog(2, "500", 40, 1),
	}, nil)
	rpc.On("GetBlock", uint64(12)).
		Return(ports.Block{Height: 12, Timestamp: time.Unix(1000, 0).UTC()}, nil)
	rpc.On("GetBlock", uint64(40)).
		Return(ports.Block{Height: 40, Timestamp: time.Unix(4000, 0).UTC()}, nil)

	history := application.NewEventHistoryReconstructor(application.HistoryOpts{
		Gateway:  newFastGateway(rpc, wallet, sessions),
		Sessions: sessions,
	})

	records, anomalies, err := history.History(context.Background(), testAccount)
	require.NoError(t, err)
	require.Empty(t, anomalies)
	require.Len(t, records, 3)

	require.Equal(t, uint64(1), records[0].TrackID)
	require.Equal(t, uint64(2), records[1].TrackID)
	require.Equal(t, uint64(3), records[2].TrackID)
	require.Equal(t, time.Unix(1000, 0).UTC(), records[0].Timestamp)
	require.Equal(t, time.Unix(4000, 0).UTC(), records[1].Timestamp)
	require.Equal(t, time.Unix(4000, 0).UTC(), records[2].Timestamp)
	require.Equal(t, "500", records[1].AmountWei.String())

	// One block lookup per distinct height, not per event.
	rpc.AssertNumberOfCalls(t, "GetBlock", 2)
}

func TestHistoryIsIdempotentOverUnchangedRange(t *testing.T) {
	t.Parallel()

	wallet := newMockWallet()
	sessions := newConnectedSessions(t, wallet)
	rpc := &mockRPC{}
	rpc.On("BlockHeight").Return(uint64(50), nil)
	rpc.On("GetLogs", mock.Anything).Return([]ports.Log{
		purchaseLog(2, "500", 40, 1),
		purchaseLog(1, "1000", 12, 0),
	}, nil)
	rpc.On("GetBlock", uint64(12)).
		Return(ports.Block{Height: 12, Timestamp: time.Unix(1000, 0).UTC()}, nil)
	rpc.On("GetBlock", uint64(40)).
		Return(ports.Block{Height: 40, Timestamp: time.Unix(4000, 0).UTC()}, nil)

	history := application.NewEventHistoryReconstructor(application.HistoryOpts{
		Gateway:  newFastGateway(rpc, wallet, sessions),
		Sessions: sessions,
	})

	first, _, err := history.History(context.Background(), testAccount)
	require.NoError(t, err)
	second, _, err := history.History(context.Background(), testAccount)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestHistorySurfacesDuplicateEvents(t *testing.T) {
	t.Parallel()

	wallet := newMockWallet()
	sessions := newConnectedSessions(t, wallet)
	rpc := &mockRPC{}
	rpc.On("BlockHeight").Return(uint64(50), nil)
	// The same entry id shows up twice: the ledger enforces one purchase per
	// entry per account, so this is an anomaly worth surfacing.
	rpc.On("GetLogs", mock.Anything).Return([]ports.Log{
		purchaseLog(7, "700", 10, 0),
		purchaseLog(7, "700", 20, 0),
		purchaseLog(8, "800", 30, 0),
	}, nil)
	rpc.On("GetBlock", mock.Anything).
		Return(ports.Block{Timestamp: time.Unix(1000, 0).UTC()}, nil)

	history := application.NewEventHistoryReconstructor(application.HistoryOpts{
		Gateway:  newFastGateway(rpc, wallet, sessions),
		Sessions: sessions,
	})

	records, anomalies, err := history.History(context.Background(), testAccount)
	require.NoError(t, err)
	// Both occurrences stay in the record set, nothing is merged.
	require.Len(t, records, 3)
	require.Len(t, anomalies, 1)
	require.Equal(t, uint64(7), anomalies[0].TrackID)
	require.Equal(t, 2, anomalies[0].Count)
}

func TestHistoryFiltersByAccountTopic(t *testing.T) {
	t.Parallel()

	wallet := newMockWallet()
	sessions := newConnectedSessions(t, wallet)
	rpc := &mockRPC{}
	rpc.On("BlockHeight").Return(uint64(50), nil)
	var captured ports.LogFilter
	rpc.On("GetLogs", mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(0).(ports.LogFilter)
		}).
		Return([]ports.Log{}, nil)

	history := application.NewEventHistoryReconstructor(application.HistoryOpts{
		Gateway:  newFastGateway(rpc, wallet, sessions),
		Sessions: sessions,
	})

	records, anomalies, err := history.History(context.Background(), testAccount)
	require.NoError(t, err)
	require.Empty(t, records)
	require.Empty(t, anomalies)

	require.Equal(t, testContract, captured.Contract)
	require.Equal(t, uint64(0), captured.FromHeight)
	require.Equal(t, uint64(50), captured.ToHeight)
	require.Len(t, captured.Topics, 2)
	// Second topic position selects the buyer, left-padded to a full word.
	require.Len(t, captured.Topics[1], 66)
	require.True(t, strings.HasPrefix(captured.Topics[1], "0x"))
	require.Contains(t, captured.Topics[1], testAccount[2:])
}
