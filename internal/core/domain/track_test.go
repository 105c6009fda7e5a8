package domain_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tunex-network/tunex-client/internal/core/domain"
)

func TestNewTrack(t *testing.T) {
	t.Parallel()

	track, err := domain.NewTrack(
		2, "Night Drive", big.NewInt(500), "bafyaudio", "0xa57157",
		[]string{"0xc0111ab", "0xc0111ac"}, []uint64{60, 40},
	)
	require.NoError(t, err)
	require.True(t, track.IsFinalized())
	require.False(t, track.Purchased)
	require.True(t, track.MatchesPrice(big.NewInt(500)))
	require.False(t, track.MatchesPrice(big.NewInt(499)))
	require.False(t, track.MatchesPrice(nil))
}

func TestFailingNewTrack(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		id           uint64
		price        *big.Int
		contributors []string
		splits       []uint64
	}{
		{
			name:   "zero_id",
			id:     0,
			price:  big.NewInt(1000),
			splits: []uint64{},
		},
		{
			name:  "nil_price",
			id:    1,
			price: nil,
		},
		{
			name:  "zero_price",
			id:    1,
			price: big.NewInt(0),
		},
		{
			name:         "splits_above_hundred",
			id:           1,
			price:        big.NewInt(1000),
			contributors: []string{"0x01", "0x02"},
			splits:       []uint64{60, 50},
		},
		{
			name:         "parallel_length_mismatch",
			id:           1,
			price:        big.NewInt(1000),
			contributors: []string{"0x01"},
			splits:       []uint64{50, 50},
		},
	}

	for i := range tests {
		tt := tests[i]

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := domain.NewTrack(
				tt.id, "x", tt.price, "cid", "0xa57157", tt.contributors, tt.splits,
			)
			require.Error(t, err)

			var validationErr *domain.ValidationError
			require.ErrorAs(t, err, &validationErr)
		})
	}
}

func TestSnapshotTrackByID(t *testing.T) {
	t.Parallel()

	snapshot := &domain.CatalogSnapshot{
		Tracks: []*domain.Track{
			{ID: 1, Title: "one"},
			{ID: 3, Title: "three"},
		},
		Height: 99,
	}

	track, ok := snapshot.TrackByID(3)
	require.True(t, ok)
	require.Equal(t, "three", track.Title)

	_, ok = snapshot.TrackByID(2)
	require.False(t, ok)
}
