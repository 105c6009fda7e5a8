package domain

import (
	"fmt"
	"math/big"
)

// Track is a catalog entry as recorded on the ledger. Ids are assigned by the
// contract, dense and starting at 1. PriceWei is the exact price in the
// ledger's smallest unit; it is compared with big.Int arithmetic only, never
// through floating point.
type Track struct {
	ID           uint64
	Title        string
	PriceWei     *big.Int
	ContentID    string
	Artist       string
	Contributors []string
	Splits       []uint64
	// Purchased is derived from the ledger's verifyPurchase for the active
	// account. It is never authoritative on its own.
	Purchased bool
}

// NewTrack validates and returns a track. The contributor and split lists are
// parallel and the split percentages must not exceed 100 in total.
func NewTrack(
	id uint64, title string, priceWei *big.Int, contentID, artist string,
	contributors []string, splits []uint64,
) (*Track, error) {
	if id == 0 {
		return nil, &ValidationError{Field: "id", Detail: "must be positive"}
	}
	if priceWei == nil || priceWei.Sign() <= 0 {
		return nil, &ValidationError{Field: "price", Detail: "must be a positive amount in wei"}
	}
	if len(contributors) != len(splits) {
		return nil, &ValidationError{
			Field:  "splits",
			Detail: "contributors and splits must have the same length",
		}
	}
	if sum := sumSplits(splits); sum > 100 {
		return nil, &ValidationError{
			Field:  "splits",
			Detail: fmt.Sprintf("percentages sum to %d, max is 100", sum),
		}
	}
	return &Track{
		ID:           id,
		Title:        title,
		PriceWei:     priceWei,
		ContentID:    contentID,
		Artist:       artist,
		Contributors: contributors,
		Splits:       splits,
	}, nil
}

// IsFinalized returns whether the track has a content identifier. Entries
// without one are not yet finalized and are excluded from snapshots.
func (t *Track) IsFinalized() bool {
	return t.ContentID != ""
}

// MatchesPrice returns whether the offered amount equals the recorded price
// exactly.
func (t *Track) MatchesPrice(offerWei *big.Int) bool {
	return offerWei != nil && t.PriceWei.Cmp(offerWei) == 0
}

func sumSplits(splits []uint64) uint64 {
	var sum uint64
	for _, s := range splits {
		sum += s
	}
	return sum
}

// CatalogSnapshot is an immutable, id-ordered view of the catalog assembled
// at a given ledger height. Snapshots are superseded by newer ones, never
// mutated.
type CatalogSnapshot struct {
	Tracks []*Track
	Height uint64
}

// TrackByID returns the snapshot entry with the given id, if present.
func (s *CatalogSnapshot) TrackByID(id uint64) (*Track, bool) {
	for _, t := range s.Tracks {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}
