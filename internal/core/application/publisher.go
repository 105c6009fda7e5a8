package application

import (
	"context"
	"io"
	"math/big"

	log "github.com/sirupsen/logrus"

	"github.com/tunex-network/tunex-client/internal/core/domain"
	"github.com/tunex-network/tunex-client/internal/core/ports"
)

// TrackDraft is the input of a catalog publication: metadata plus the media
// payload to pin on content-addressed storage.
type TrackDraft struct {
	Title        string
	PriceWei     *big.Int
	Contributors []string
	Splits       []uint64
	Media        io.Reader
}

// CatalogPublisher uploads new entries to the ledger catalog and resolves
// media payloads for purchased ones.
type CatalogPublisher interface {
	// Publish validates the draft locally, stores its media payload and
	// uploads the entry to the contract. The returned intent is terminal.
	Publish(ctx context.Context, draft TrackDraft) (*domain.Intent, error)
	// Fetch resolves the media payload of a track by its content
	// identifier. The payload is opaque to this client.
	Fetch(ctx context.Context, trackID uint64) (io.ReadCloser, error)
}

// PublisherOpts groups the dependencies of a catalog publisher.
type PublisherOpts struct {
	Gateway  LedgerGateway
	Sessions SessionManager
	Catalog  CatalogSynchronizer
	Store    ports.ContentStore
	// Listeners are notified after every confirmed upload.
	Listeners []InvalidationListener
}

type catalogPublisher struct {
	gateway   LedgerGateway
	sessions  SessionManager
	catalog   CatalogSynchronizer
	store     ports.ContentStore
	listeners []InvalidationListener
}

// NewCatalogPublisher returns a CatalogPublisher writing through the given
// gateway and storing payloads in the given content store.
func NewCatalogPublisher(opts PublisherOpts) CatalogPublisher {
	return &catalogPublisher{
		gateway:   opts.Gateway,
		sessions:  opts.Sessions,
		catalog:   opts.Catalog,
		store:     opts.Store,
		listeners: opts.Listeners,
	}
}

func (p *catalogPublisher) Publish(ctx context.Context, draft TrackDraft) (*domain.Intent, error) {
	session, err := p.sessions.Current()
	if err != nil {
		return nil, err
	}
	if !session.HasAccount() {
		return nil, domain.ErrNoSession
	}
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	cid, err := p.store.Put(ctx, draft.Media)
	if err != nil {
		return nil, err
	}
	log.Debugf("media payload stored as %s", cid)

	intent := domain.NewIntent(domain.IntentUpload, session.Account, 0, nil)
	intent, err = p.gateway.Write(
		ctx, intent, MethodUploadEntry,
		draft.Title, draft.PriceWei, cid, draft.Contributors, draft.Splits,
	)
	if err != nil {
		return nil, err
	}

	if intent.IsConfirmed() {
		log.Infof("track %q published by %s", draft.Title, session.Account)
		for _, listener := range p.listeners {
			listener.Invalidate()
		}
	}
	return intent, nil
}

func (p *catalogPublisher) Fetch(ctx context.Context, trackID uint64) (io.ReadCloser, error) {
	snapshot := p.catalog.Snapshot()
	if snapshot == nil {
		refreshed, err := p.catalog.Refresh(ctx)
		if err != nil {
			return nil, err
		}
		snapshot = refreshed
	}
	track, ok := snapshot.TrackByID(trackID)
	if !ok {
		return nil, domain.ErrTrackNotFound
	}
	return p.store.Get(ctx, track.ContentID)
}

// validateDraft checks the publication preconditions locally. A failing
// draft never reaches the network.
func validateDraft(draft TrackDraft) error {
	if draft.Title == "" {
		return &domain.ValidationError{Field: "title", Detail: "must not be empty"}
	}
	if draft.PriceWei == nil || draft.PriceWei.Sign() <= 0 {
		return &domain.ValidationError{Field: "price", Detail: "must be a positive amount in wei"}
	}
	if len(draft.Contributors) != len(draft.Splits) {
		return &domain.ValidationError{
			Field:  "splits",
			Detail: "contributors and splits must have the same length",
		}
	}
	var sum uint64
	for _, split := range draft.Splits {
		sum += split
	}
	if sum > 100 {
		return &domain.ValidationError{
			Field:  "splits",
			Detail: "percentages must not sum above 100",
		}
	}
	if draft.Media == nil {
		return &domain.ValidationError{Field: "media", Detail: "payload is required"}
	}
	return nil
}
