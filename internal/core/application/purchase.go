package application

import (
	"context"
	"math/big"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/tunex-network/tunex-client/internal/core/domain"
)

// InvalidationListener is notified after a confirmed write so that derived
// state (snapshots, balances) can be dropped. Listeners are notified, never
// mutated directly.
type InvalidationListener interface {
	Invalidate()
}

// PurchaseOrchestrator drives the state machine of a single catalog purchase.
type PurchaseOrchestrator interface {
	// Buy purchases the track with the given id, offering exactly offerWei.
	// The returned intent is terminal. At most one purchase per track id is
	// in flight at any time; a second request returns ErrAlreadyInFlight.
	Buy(ctx context.Context, trackID uint64, offerWei *big.Int) (*domain.Intent, error)
	// InFlight returns whether a purchase for the given track id is being
	// processed.
	InFlight(trackID uint64) bool
}

// PurchaseOpts groups the dependencies of a purchase orchestrator.
type PurchaseOpts struct {
	Gateway  LedgerGateway
	Sessions SessionManager
	Catalog  CatalogSynchronizer
	// Listeners are notified after every confirmed purchase.
	Listeners []InvalidationListener
}

type purchaseOrchestrator struct {
	gateway   LedgerGateway
	sessions  SessionManager
	catalog   CatalogSynchronizer
	listeners []InvalidationListener

	mtx      sync.Mutex
	inFlight map[uint64]*domain.Intent
}

// NewPurchaseOrchestrator returns a PurchaseOrchestrator writing through the
// given gateway.
func NewPurchaseOrchestrator(opts PurchaseOpts) PurchaseOrchestrator {
	return &purchaseOrchestrator{
		gateway:   opts.Gateway,
		sessions:  opts.Sessions,
		catalog:   opts.Catalog,
		listeners: opts.Listeners,
		inFlight:  map[uint64]*domain.Intent{},
	}
}

func (o *purchaseOrchestrator) Buy(
	ctx context.Context, trackID uint64, offerWei *big.Int,
) (*domain.Intent, error) {
	// Preconditions are checked locally before anything touches the network.
	session, err := o.sessions.Current()
	if err != nil {
		return nil, err
	}
	if !session.HasAccount() {
		return nil, domain.ErrNoSession
	}
	contract, err := o.sessions.Contract()
	if err != nil {
		return nil, err
	}
	if err := contract.CheckChain(session); err != nil {
		return nil, err
	}

	track, err := o.lookupTrack(ctx, trackID)
	if err != nil {
		return nil, err
	}
	if track.Purchased {
		return nil, domain.ErrAlreadyPurchased
	}
	if !track.MatchesPrice(offerWei) {
		return nil, &domain.ValidationError{
			Field:  "offer",
			Detail: "offered value does not equal the recorded price",
		}
	}

	intent := domain.NewIntent(domain.IntentPurchase, session.Account, trackID, offerWei)
	if err := o.register(trackID, intent); err != nil {
		return nil, err
	}
	defer o.unregister(trackID)

	intent, err = o.gateway.Write(ctx, intent, MethodPurchaseEntry, trackID)
	if err != nil {
		return nil, err
	}

	if intent.IsConfirmed() {
		log.Infof("track %d purchased by %s", trackID, session.Account)
		o.notifyInvalidation()
	}
	return intent, nil
}

func (o *purchaseOrchestrator) InFlight(trackID uint64) bool {
	o.mtx.Lock()
	defer o.mtx.Unlock()
	_, ok := o.inFlight[trackID]
	return ok
}

// lookupTrack resolves the track from the last snapshot, refreshing once if
// none is available. The snapshot's purchase flag derives from the ledger's
// verifyPurchase, which stays the sole source of truth.
func (o *purchaseOrchestrator) lookupTrack(
	ctx context.Context, trackID uint64,
) (*domain.Track, error) {
	snapshot := o.catalog.Snapshot()
	if snapshot == nil {
		refreshed, err := o.catalog.Refresh(ctx)
		if err != nil {
			return nil, err
		}
		snapshot = refreshed
	}
	track, ok := snapshot.TrackByID(trackID)
	if !ok {
		return nil, domain.ErrTrackNotFound
	}
	return track, nil
}

func (o *purchaseOrchestrator) register(trackID uint64, intent *domain.Intent) error {
	o.mtx.Lock()
	defer o.mtx.Unlock()
	if _, ok := o.inFlight[trackID]; ok {
		return domain.ErrAlreadyInFlight
	}
	o.inFlight[trackID] = intent
	return nil
}

func (o *purchaseOrchestrator) unregister(trackID uint64) {
	o.mtx.Lock()
	defer o.mtx.Unlock()
	delete(o.inFlight, trackID)
}

func (o *purchaseOrchestrator) notifyInvalidation() {
	for _, listener := range o.listeners {
		listener.Invalidate()
	}
}
