package application

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/tunex-network/tunex-client/internal/core/domain"
)

// DefaultCatalogWorkers is the bound on concurrent in-flight reads during a
// catalog refresh.
const DefaultCatalogWorkers = 5

// CatalogSynchronizer enumerates the ledger-resident catalog and produces
// consistent, id-ordered snapshots.
type CatalogSynchronizer interface {
	// Refresh assembles a fresh snapshot. A call issued while another is in
	// flight does not fetch again: both callers receive the in-flight
	// result.
	Refresh(ctx context.Context) (*domain.CatalogSnapshot, error)
	// Snapshot returns the last completed snapshot, nil if none.
	Snapshot() *domain.CatalogSnapshot
	// Invalidate drops the cached snapshot. The next Snapshot call returns
	// nil until a refresh completes.
	Invalidate()
}

// CatalogOpts groups the dependencies of a catalog synchronizer.
type CatalogOpts struct {
	Gateway  LedgerGateway
	Sessions SessionManager
	// Workers bounds the concurrent per-entry reads, DefaultCatalogWorkers
	// if zero.
	Workers int
}

type catalogSynchronizer struct {
	gateway  LedgerGateway
	sessions SessionManager
	workers  int

	group singleflight.Group

	mtx      sync.RWMutex
	snapshot *domain.CatalogSnapshot
}

// NewCatalogSynchronizer returns a CatalogSynchronizer reading through the
// given gateway.
func NewCatalogSynchronizer(opts CatalogOpts) CatalogSynchronizer {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultCatalogWorkers
	}
	return &catalogSynchronizer{
		gateway:  opts.Gateway,
		sessions: opts.Sessions,
		workers:  workers,
	}
}

func (c *catalogSynchronizer) Refresh(ctx context.Context) (*domain.CatalogSnapshot, error) {
	// Concurrent refreshes coalesce on the same in-flight fetch instead of
	// issuing duplicate remote reads.
	res, err, _ := c.group.Do("refresh", func() (interface{}, error) {
		return c.fetchSnapshot(ctx)
	})
	if err != nil {
		return nil, err
	}
	return res.(*domain.CatalogSnapshot), nil
}

func (c *catalogSynchronizer) Snapshot() *domain.CatalogSnapshot {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	return c.snapshot
}

func (c *catalogSynchronizer) Invalidate() {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.snapshot = nil
	log.Debug("catalog snapshot invalidated")
}

func (c *catalogSynchronizer) fetchSnapshot(ctx context.Context) (*domain.CatalogSnapshot, error) {
	session, err := c.sessions.Current()
	if err != nil {
		return nil, err
	}

	height, err := c.gateway.Height(ctx)
	if err != nil {
		return nil, err
	}
	nextID, err := c.gateway.Read(ctx, MethodNextEntryID)
	if err != nil {
		return nil, err
	}
	lastID := nextID.Uint64()
	if lastID <= 1 {
		snapshot := &domain.CatalogSnapshot{Height: height}
		c.store(ctx, snapshot)
		return snapshot, nil
	}

	// Per-entry fetches fan out with a fixed worker bound and land in an
	// arena indexed by entry id, so completion order never leaks into the
	// snapshot.
	arena := make([]*domain.Track, lastID-1)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(c.workers)
	for id := uint64(1); id < lastID; id++ {
		id := id
		eg.Go(func() error {
			track, err := c.fetchTrack(egCtx, id, session.Account)
			if err != nil {
				return err
			}
			arena[id-1] = track
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	tracks := make([]*domain.Track, 0, len(arena))
	for _, track := range arena {
		if track == nil || !track.IsFinalized() {
			continue
		}
		tracks = append(tracks, track)
	}

	snapshot := &domain.CatalogSnapshot{Tracks: tracks, Height: height}
	c.store(ctx, snapshot)
	log.Debugf("catalog refreshed, %d tracks at height %d", len(tracks), height)
	return snapshot, nil
}

// fetchTrack reads the entry details and the active account's purchase flag.
// The ledger's verifyPurchase is the sole source of purchase truth; the
// track's flag is derived from it.
func (c *catalogSynchronizer) fetchTrack(
	ctx context.Context, id uint64, account string,
) (*domain.Track, error) {
	details, err := c.gateway.Read(ctx, MethodGetEntryDetail, id)
	if err != nil {
		return nil, fmt.Errorf("fetch entry %d: %w", id, err)
	}
	fields := details.List()
	if len(fields) < 6 {
		return nil, fmt.Errorf("fetch entry %d: malformed details tuple", id)
	}

	contentID := fields[2].String()
	if contentID == "" {
		// Not yet finalized, excluded from the snapshot without further
		// reads.
		return nil, nil
	}

	contributors := []string{}
	for _, v := range fields[4].List() {
		contributors = append(contributors, v.String())
	}
	splits := []uint64{}
	for _, v := range fields[5].List() {
		splits = append(splits, v.Uint64())
	}

	track, err := domain.NewTrack(
		id, fields[0].String(), fields[1].BigInt(), contentID, fields[3].String(),
		contributors, splits,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch entry %d: %w", id, err)
	}

	purchased, err := c.gateway.Read(ctx, MethodVerifyPurchase, id, account)
	if err != nil {
		return nil, fmt.Errorf("verify purchase of entry %d: %w", id, err)
	}
	track.Purchased = purchased.Bool()
	return track, nil
}

// store swaps the snapshot pointer atomically, unless the refresh was
// canceled: a stale write-back after teardown is a correctness bug.
func (c *catalogSynchronizer) store(ctx context.Context, snapshot *domain.CatalogSnapshot) {
	if ctx.Err() != nil {
		return
	}
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.snapshot = snapshot
}
