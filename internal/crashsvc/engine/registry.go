package engine

import (
	"sort"
	"sync"

	"github.com/astra-games/crash-services/internal/crashsvc/models"
	"github.com/shopspring/decimal"
)

type playerSlot struct {
	entry models.PlayerEntry
	seq   uint64
}

// Registry is the set of players committed to the active or upcoming round,
// keyed by user id. All mutation happens under one mutex so a cashout and
// the crash settlement scan can never both claim the same entry.
type Registry struct {
	mu      sync.RWMutex
	players map[string]*playerSlot
	seq     uint64
}

func NewRegistry() *Registry {
	return &Registry{players: make(map[string]*playerSlot)}
}

// Put inserts the entry unless the user already has one this round.
func (r *Registry) Put(entry models.PlayerEntry) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.players[entry.UserID]; ok {
		return false
	}
	r.seq++
	r.players[entry.UserID] = &playerSlot{entry: entry, seq: r.seq}
	return true
}

func (r *Registry) Has(uid string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.players[uid]
	return ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.players)
}

// MarkAllInGame normalizes entries for the starting round. A CASHED_OUT
// entry is never downgraded; its claim stands until the registry is drained.
func (r *Registry) MarkAllInGame() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, slot := range r.players {
		if slot.entry.Status == models.StatusCashedOut {
			continue
		}
		slot.entry.Status = models.StatusInGame
		slot.entry.CashOutMultiplier = nil
	}
}

// CashOut transitions the user's entry IN_GAME -> CASHED_OUT at the given
// multiplier. Returns the updated entry, or false if the user has no entry
// or already cashed out. The transition happens at most once per round.
func (r *Registry) CashOut(uid string, multiplier decimal.Decimal) (models.PlayerEntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	slot, ok := r.players[uid]
	if !ok || slot.entry.Status != models.StatusInGame {
		return models.PlayerEntry{}, false
	}

	m := multiplier
	slot.entry.Status = models.StatusCashedOut
	slot.entry.CashOutMultiplier = &m
	return slot.entry, true
}

// Snapshot returns the entries ordered by bet amount descending, insertion
// order on ties.
func (r *Registry) Snapshot() []models.PlayerEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	slots := make([]*playerSlot, 0, len(r.players))
	for _, slot := range r.players {
		slots = append(slots, slot)
	}
	sort.Slice(slots, func(i, j int) bool {
		if !slots[i].entry.BetAmount.Equal(slots[j].entry.BetAmount) {
			return slots[i].entry.BetAmount.GreaterThan(slots[j].entry.BetAmount)
		}
		return slots[i].seq < slots[j].seq
	})

	entries := make([]models.PlayerEntry, 0, len(slots))
	for _, slot := range slots {
		entries = append(entries, slot.entry)
	}
	return entries
}

// Drain clears the registry and returns the entries that were still
// IN_GAME, the ones the crash settlement owes a loss record. Entries that
// cashed out were already settled and are only cleared.
func (r *Registry) Drain() []models.PlayerEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	var losers []models.PlayerEntry
	for _, slot := range r.players {
		if slot.entry.Status == models.StatusInGame {
			losers = append(losers, slot.entry)
		}
	}
	r.players = make(map[string]*playerSlot)
	return losers
}
