package application

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/tunex-network/tunex-client/internal/core/domain"
	"github.com/tunex-network/tunex-client/internal/core/ports"
)

// DefaultTimestampWorkers bounds the concurrent block lookups while
// resolving event timestamps.
const DefaultTimestampWorkers = 5

// EventHistoryReconstructor rebuilds chronologically ordered purchase
// activity from the logs emitted by the ledger.
type EventHistoryReconstructor interface {
	// History scans the purchase logs of the given account from genesis to
	// the latest confirmed height and returns records strictly ordered by
	// (block height, log index). Re-running it over an unchanged log range
	// yields identical output. Duplicate events for the same entry id are
	// surfaced as anomalies alongside the records, never merged silently.
	History(ctx context.Context, account string) ([]domain.HistoryRecord, []*domain.DuplicateEventAnomaly, error)
	// Invalidate drops any derived state after a confirmed write.
	Invalidate()
}

// HistoryOpts groups the dependencies of an event history reconstructor.
type HistoryOpts struct {
	Gateway  LedgerGateway
	Sessions SessionManager
	// TimestampWorkers bounds the concurrent block lookups,
	// DefaultTimestampWorkers if zero.
	TimestampWorkers int
}

type historyReconstructor struct {
	gateway  LedgerGateway
	sessions SessionManager
	workers  int

	mtx  sync.Mutex
	last []domain.HistoryRecord
}

// NewEventHistoryReconstructor returns an EventHistoryReconstructor reading
// through the given gateway.
func NewEventHistoryReconstructor(opts HistoryOpts) EventHistoryReconstructor {
	workers := opts.TimestampWorkers
	if workers <= 0 {
		workers = DefaultTimestampWorkers
	}
	return &historyReconstructor{
		gateway:  opts.Gateway,
		sessions: opts.Sessions,
		workers:  workers,
	}
}

func (h *historyReconstructor) History(
	ctx context.Context, account string,
) ([]domain.HistoryRecord, []*domain.DuplicateEventAnomaly, error) {
	contract, err := h.sessions.Contract()
	if err != nil {
		return nil, nil, err
	}
	head, err := h.gateway.Height(ctx)
	if err != nil {
		return nil, nil, err
	}

	logs, err := h.gateway.Logs(ctx, ports.LogFilter{
		Contract:   contract.Address,
		Topics:     []string{eventTopic(EventEntryPurchased), addressTopic(account)},
		FromHeight: 0,
		ToHeight:   head,
	})
	if err != nil {
		return nil, nil, err
	}

	records := make([]domain.HistoryRecord, 0, len(logs))
	for _, l := range logs {
		record, err := parsePurchaseLog(l, account)
		if err != nil {
			return nil, nil, err
		}
		records = append(records, record)
	}

	if err := h.resolveTimestamps(ctx, records); err != nil {
		return nil, nil, err
	}

	domain.SortHistory(records)
	anomalies := detectDuplicates(records)
	for _, anomaly := range anomalies {
		log.Warnf("history scan for %s: %s", account, anomaly)
	}

	h.mtx.Lock()
	h.last = records
	h.mtx.Unlock()
	return records, anomalies, nil
}

func (h *historyReconstructor) Invalidate() {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	h.last = nil
}

// resolveTimestamps looks up the timestamp of every distinct block height
// once, with bounded concurrency, instead of issuing one lookup per event.
func (h *historyReconstructor) resolveTimestamps(
	ctx context.Context, records []domain.HistoryRecord,
) error {
	heights := make([]uint64, 0, len(records))
	seen := map[uint64]struct{}{}
	for _, record := range records {
		if _, ok := seen[record.Height]; ok {
			continue
		}
		seen[record.Height] = struct{}{}
		heights = append(heights, record.Height)
	}

	timestamps := make(map[uint64]int, len(heights))
	resolved := make([]domain.HistoryRecord, len(heights))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(h.workers)
	for i, height := range heights {
		i, height := i, height
		timestamps[height] = i
		eg.Go(func() error {
			ts, err := h.gateway.BlockTimestamp(egCtx, height)
			if err != nil {
				return fmt.Errorf("resolve timestamp of block %d: %w", height, err)
			}
			resolved[i] = domain.HistoryRecord{Height: height, Timestamp: ts}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	for i := range records {
		records[i].Timestamp = resolved[timestamps[records[i].Height]].Timestamp
	}
	return nil
}

func parsePurchaseLog(l ports.Log, account string) (domain.HistoryRecord, error) {
	if len(l.Data) < 2 {
		return domain.HistoryRecord{}, fmt.Errorf(
			"malformed purchase log in tx %s at height %d", l.TxID, l.Height,
		)
	}
	return domain.HistoryRecord{
		TrackID:   l.Data[0].Uint64(),
		Buyer:     account,
		Height:    l.Height,
		LogIndex:  l.LogIndex,
		AmountWei: l.Data[1].BigInt(),
	}, nil
}

// detectDuplicates flags entry ids appearing more than once. The ledger
// enforces one purchase per entry per account, so a duplicate means a client
// double-submission slipped through.
func detectDuplicates(records []domain.HistoryRecord) []*domain.DuplicateEventAnomaly {
	counts := map[uint64]int{}
	for _, record := range records {
		counts[record.TrackID]++
	}

	anomalies := []*domain.DuplicateEventAnomaly{}
	for _, record := range records {
		if counts[record.TrackID] > 1 {
			anomalies = append(anomalies, &domain.DuplicateEventAnomaly{
				TrackID: record.TrackID,
				Count:   counts[record.TrackID],
			})
			counts[record.TrackID] = 0
		}
	}
	return anomalies
}
