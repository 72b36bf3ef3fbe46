package engine

import (
	"sync"
	"testing"

	"github.com/astra-games/crash-services/internal/crashsvc/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func entry(uid string, bet string) models.PlayerEntry {
	return models.PlayerEntry{
		UserID:    uid,
		Name:      "player-" + uid,
		BetAmount: dec(bet),
		Status:    models.StatusInGame,
	}
}

func TestRegistry_PutRejectsDuplicateUser(t *testing.T) {
	r := NewRegistry()

	assert.True(t, r.Put(entry("u1", "10")))
	assert.False(t, r.Put(entry("u1", "20")))
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_CashOutClaimsEntryOnce(t *testing.T) {
	r := NewRegistry()
	r.Put(entry("u1", "10"))

	e, ok := r.CashOut("u1", dec("1.50"))
	require.True(t, ok)
	assert.Equal(t, models.StatusCashedOut, e.Status)
	require.NotNil(t, e.CashOutMultiplier)
	assert.True(t, e.CashOutMultiplier.Equal(dec("1.50")))

	// second cashout is a no-op
	_, ok = r.CashOut("u1", dec("2.00"))
	assert.False(t, ok)

	// unknown user is a no-op
	_, ok = r.CashOut("nobody", dec("1.10"))
	assert.False(t, ok)
}

func TestRegistry_SnapshotOrdersByBetDescending(t *testing.T) {
	r := NewRegistry()
	r.Put(entry("small", "5"))
	r.Put(entry("big", "100"))
	r.Put(entry("mid-a", "25"))
	r.Put(entry("mid-b", "25"))

	snap := r.Snapshot()
	require.Len(t, snap, 4)
	assert.Equal(t, "big", snap[0].UserID)
	assert.Equal(t, "mid-a", snap[1].UserID) // insertion order breaks the tie
	assert.Equal(t, "mid-b", snap[2].UserID)
	assert.Equal(t, "small", snap[3].UserID)
}

func TestRegistry_DrainReturnsOnlyInGameEntriesAndClears(t *testing.T) {
	r := NewRegistry()
	r.Put(entry("winner", "10"))
	r.Put(entry("loser", "5"))

	_, ok := r.CashOut("winner", dec("1.80"))
	require.True(t, ok)

	losers := r.Drain()
	require.Len(t, losers, 1)
	assert.Equal(t, "loser", losers[0].UserID)
	assert.Equal(t, 0, r.Len())

	// a second drain owes nothing
	assert.Empty(t, r.Drain())
}

func TestRegistry_MarkAllInGameKeepsCashedOutClaims(t *testing.T) {
	r := NewRegistry()
	r.Put(entry("claimed", "10"))
	r.Put(entry("fresh", "5"))
	_, ok := r.CashOut("claimed", dec("1.20"))
	require.True(t, ok)

	r.MarkAllInGame()

	snap := r.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, models.StatusCashedOut, snap[0].Status)
	require.NotNil(t, snap[0].CashOutMultiplier)
	assert.True(t, snap[0].CashOutMultiplier.Equal(dec("1.20")))
	assert.Equal(t, models.StatusInGame, snap[1].Status)

	// the settled entry cannot cash out again after normalization
	_, ok = r.CashOut("claimed", dec("1.40"))
	assert.False(t, ok)
}

// Exactly one of cashout-settlement and crash-settlement may claim an entry,
// no matter how the two interleave.
func TestRegistry_ConcurrentCashOutAndDrainSettleOnce(t *testing.T) {
	for i := 0; i < 100; i++ {
		r := NewRegistry()
		r.Put(entry("u1", "10"))

		var wg sync.WaitGroup
		var cashouts, losses int
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, ok := r.CashOut("u1", dec("1.30")); ok {
				cashouts = 1
			}
		}()
		go func() {
			defer wg.Done()
			losses = len(r.Drain())
		}()
		wg.Wait()

		assert.Equal(t, 1, cashouts+losses, "entry settled %d times", cashouts+losses)
	}
}
