package engine

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/astra-games/crash-services/internal/comm"
	"github.com/astra-games/crash-services/internal/crashsvc/models"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

var (
	// ErrBetRejected means the round is not accepting bets (running,
	// crashed, or the user already has an entry).
	ErrBetRejected = errors.New("bet rejected by round state")

	// ErrCashOutRejected means no cashout was possible: round not running,
	// unknown user, or already cashed out.
	ErrCashOutRejected = errors.New("cashout rejected by round state")
)

var tickStep = decimal.New(1, -2) // 0.01

type Wallet interface {
	PlaceBet(ctx context.Context, uid string, amount decimal.Decimal) (decimal.Decimal, error)
	ProcessWin(ctx context.Context, uid string, amount decimal.Decimal) error
}

type Recorder interface {
	Record(ctx context.Context, h *models.GameHistory) error
}

// Publisher pushes an event to subscribers, fire-and-forget.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

type Config struct {
	StartEvery time.Duration // period of round-start attempts
	TickEvery  time.Duration // multiplier quantum
	Cooldown   time.Duration // hold in CRASHED before returning to WAITING
}

func DefaultConfig() Config {
	return Config{
		StartEvery: 15 * time.Second,
		TickEvery:  100 * time.Millisecond,
		Cooldown:   3 * time.Second,
	}
}

// roundSnapshot is the shared round state. State and multiplier are swapped
// together so readers never see them half-updated.
type roundSnapshot struct {
	State      models.RoundState
	Multiplier decimal.Decimal
}

// Engine drives the crash round lifecycle: WAITING -> RUNNING -> CRASHED ->
// WAITING, one live round at a time. The lifecycle mutex serializes round
// starts and bet admission; cashouts only touch the registry and the
// snapshot.
type Engine struct {
	mu       sync.Mutex
	snap     atomic.Value
	players  *Registry
	history  *HistoryBuffer
	wallet   Wallet
	recorder Recorder
	pub      Publisher
	cfg      Config

	drawCrashPoint func() float64
}

func New(wallet Wallet, recorder Recorder, pub Publisher, cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.StartEvery <= 0 {
		cfg.StartEvery = def.StartEvery
	}
	if cfg.TickEvery <= 0 {
		cfg.TickEvery = def.TickEvery
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = def.Cooldown
	}

	e := &Engine{
		players:  NewRegistry(),
		history:  NewHistoryBuffer(defaultHistorySize),
		wallet:   wallet,
		recorder: recorder,
		pub:      pub,
		cfg:      cfg,
		drawCrashPoint: func() float64 {
			return 1.0 + rand.Float64()*2.0
		},
	}
	e.setSnapshot(models.StateWaiting, decimal.New(1, 0))
	return e
}

func (e *Engine) snapshot() roundSnapshot {
	return e.snap.Load().(roundSnapshot)
}

func (e *Engine) setSnapshot(state models.RoundState, multiplier decimal.Decimal) {
	e.snap.Store(roundSnapshot{State: state, Multiplier: multiplier})
}

// Run attempts a round start on a fixed period until ctx is done.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.StartEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.StartRound()
		}
	}
}

// StartRound transitions WAITING -> RUNNING and spawns the ticking task.
// A round starts even with zero players registered.
func (e *Engine) StartRound() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.snapshot().State != models.StateWaiting {
		return false
	}

	// Entries are normalized before the RUNNING snapshot is visible, so a
	// cashout that observes RUNNING can never be reset afterwards.
	e.players.MarkAllInGame()
	e.setSnapshot(models.StateRunning, decimal.New(1, 0))
	crashPoint := e.drawCrashPoint()

	log.Infof("starting new crash round with %d players", e.players.Len())
	e.publishJSON(comm.TopicRoundState, string(models.StateRunning))

	go e.runRound(crashPoint)
	return true
}

func (e *Engine) runRound(crashPoint float64) {
	e.publishPlayerList()

	crash := decimal.NewFromFloat(crashPoint)
	for {
		snap := e.snapshot()
		if snap.State != models.StateRunning || snap.Multiplier.GreaterThanOrEqual(crash) {
			break
		}
		next := snap.Multiplier.Add(tickStep)
		e.setSnapshot(models.StateRunning, next)
		e.publishJSON(comm.TopicMultiplierTick, next.StringFixed(2))
		time.Sleep(e.cfg.TickEvery)
	}

	if e.snapshot().State == models.StateRunning {
		e.crash(crash)
	}
}

func (e *Engine) crash(crash decimal.Decimal) {
	final := crash.Truncate(2) // truncate, never round up
	e.setSnapshot(models.StateCrashed, final)
	formatted := final.StringFixed(2)

	log.Infof("crash! multiplier stopped at %sx", formatted)
	e.publishJSON(comm.TopicCrashResult, formatted)

	e.history.PushFront(final)
	e.publishJSON(comm.TopicCrashHistory, e.historyStrings())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Entries that cashed out settled themselves; everyone still in the
	// round lost their bet, which was debited at bet time.
	for _, p := range e.players.Drain() {
		rec := &models.GameHistory{
			UserID:    p.UserID,
			GameType:  models.GameCosmicCrash,
			BetAmount: p.BetAmount,
			WinAmount: decimal.Zero,
			Result:    "Loss. Crash at " + formatted + "x",
			CreatedAt: time.Now(),
		}
		if err := e.recorder.Record(ctx, rec); err != nil {
			log.Errorf("record loss for user %s: %v", p.UserID, err)
		}
	}

	e.publishPlayerList()

	time.Sleep(e.cfg.Cooldown)
	// the crash multiplier stays on display through WAITING; the next round
	// start resets it to 1.00
	e.setSnapshot(models.StateWaiting, final)
	e.publishJSON(comm.TopicRoundState, string(models.StateWaiting))
}

// PlaceBet debits the stake and registers the player for the upcoming
// round. Only accepted while WAITING and only once per user per round.
func (e *Engine) PlaceBet(ctx context.Context, uid, name string, amount decimal.Decimal) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if snap := e.snapshot(); snap.State != models.StateWaiting || e.players.Has(uid) {
		log.Warnf("bet rejected for user %s: state %s or already in round", uid, snap.State)
		return ErrBetRejected
	}

	if _, err := e.wallet.PlaceBet(ctx, uid, amount); err != nil {
		return err
	}

	e.players.Put(models.PlayerEntry{
		UserID:    uid,
		Name:      name,
		BetAmount: amount,
		Status:    models.StatusInGame,
	})
	log.Infof("user %s (%s) placed a bet of %s", uid, name, amount.StringFixed(2))
	e.publishPlayerList()
	return nil
}

// CashOut locks in winnings at the multiplier observed now. Returns the
// credited winnings.
func (e *Engine) CashOut(ctx context.Context, uid string) (decimal.Decimal, error) {
	snap := e.snapshot()
	if snap.State != models.StateRunning {
		log.Warnf("cashout rejected for user %s: round is %s", uid, snap.State)
		return decimal.Zero, ErrCashOutRejected
	}
	multiplier := snap.Multiplier.Truncate(2)

	entry, ok := e.players.CashOut(uid, multiplier)
	if !ok {
		log.Warnf("cashout rejected for user %s: no active entry", uid)
		return decimal.Zero, ErrCashOutRejected
	}

	winnings := entry.BetAmount.Mul(multiplier).Truncate(2)
	if err := e.wallet.ProcessWin(ctx, uid, winnings); err != nil {
		log.Errorf("credit winnings for user %s: %v", uid, err)
		return decimal.Zero, err
	}

	e.publishPlayerList()

	rec := &models.GameHistory{
		UserID:    uid,
		GameType:  models.GameCosmicCrash,
		BetAmount: entry.BetAmount,
		WinAmount: winnings,
		Result:    "Win. Cashed out at " + multiplier.StringFixed(2) + "x",
		CreatedAt: time.Now(),
	}
	if err := e.recorder.Record(ctx, rec); err != nil {
		log.Errorf("record win for user %s: %v", uid, err)
	}

	log.Infof("user %s cashed out at %sx, winning %s", uid, multiplier.StringFixed(2), winnings.StringFixed(2))
	return winnings, nil
}

// CurrentState returns a point-in-time view of the round for query paths.
func (e *Engine) CurrentState() comm.GameState {
	snap := e.snapshot()
	return comm.GameState{
		State:             string(snap.State),
		CurrentMultiplier: snap.Multiplier.StringFixed(2),
		Players:           e.players.Snapshot(),
		CrashHistory:      e.historyStrings(),
	}
}

func (e *Engine) historyStrings() []string {
	vals := e.history.Snapshot()
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		out = append(out, v.StringFixed(2))
	}
	return out
}

func (e *Engine) publishPlayerList() {
	e.publishJSON(comm.TopicPlayerList, e.players.Snapshot())
}

func (e *Engine) publishJSON(topic string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("marshal payload for topic %s: %v", topic, err)
		return
	}
	if err := e.pub.Publish(topic, data); err != nil {
		log.Errorf("publish %s: %v", topic, err)
	}
}
