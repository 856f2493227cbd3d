package battle

import (
	"context"
	"time"

	"github.com/tflegends/legends/internal/constants"
	"github.com/tflegends/legends/internal/game"
	"github.com/tflegends/legends/internal/logging"
)

// Observer receives a fresh copy of the shared record on every poll
// tick that finds it. The last-fetched record wins: observers replace
// their local view wholesale.
type Observer interface {
	BattleUpdated(b *game.Battle)
}

// Poller re-fetches the full battle list on a fixed cadence and hands
// the id-matched record to the observer. A tick that fails or no longer
// contains the id is logged and skipped; the next tick may recover it.
// Cancelling the context stops the loop (logout, battle end, teardown).
type Poller struct {
	store    RecordStore
	interval time.Duration
}

func NewPoller(store RecordStore, interval time.Duration) *Poller {
	return &Poller{store: store, interval: interval}
}

// Watch starts the polling loop in its own goroutine and returns
// immediately.
func (p *Poller) Watch(ctx context.Context, battleID string, obs Observer) {
	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.pollOnce(ctx, battleID, obs)
			}
		}
	}()
}

// pollOnce performs a single tick: list, match by id, notify.
func (p *Poller) pollOnce(ctx context.Context, battleID string, obs Observer) {
	battles, err := p.store.List(ctx)
	if err != nil {
		logging.Error("battle poll tick failed", err, logging.Fields{constants.LogFieldBattleID: battleID})
		return
	}
	for i := range battles {
		if battles[i].ID == battleID {
			fresh := battles[i]
			obs.BattleUpdated(&fresh)
			return
		}
	}
	// Record missing from this tick: treat as stale, not fatal.
	logging.Warn("battle record missing from poll", logging.Fields{constants.LogFieldBattleID: battleID})
}
