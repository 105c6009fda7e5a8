package domain

import (
	"math/big"
	"sort"
	"time"
)

// HistoryRecord is one purchase reconstructed from a ledger log event. The
// ordering key is (Height, LogIndex) ascending; wall-clock arrival never
// participates in ordering.
type HistoryRecord struct {
	TrackID   uint64
	Buyer     string
	Height    uint64
	LogIndex  uint32
	Timestamp time.Time
	AmountWei *big.Int
}

// SortHistory sorts records in place by (Height, LogIndex) ascending.
func SortHistory(records []HistoryRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].Height != records[j].Height {
			return records[i].Height < records[j].Height
		}
		return records[i].LogIndex < records[j].LogIndex
	})
}

// Balance is the accrued ledger balance of an account, in the smallest unit.
// It is always fetched from the ledger, never derived client-side.
type Balance struct {
	Account   string
	AmountWei *big.Int
}
