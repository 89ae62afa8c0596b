package rooms

import (
	"log/slog"
	"time"

	"github.com/pixil98/go-wordle/internal/protocol"
)

type turnCause string

const (
	causeGuess      turnCause = "guess"
	causePass       turnCause = "pass"
	causeTimeout    turnCause = "timeout"
	causeDisconnect turnCause = "disconnect"
)

// turnCursor exists only while a turn-based room is playing. gen changes on
// every turn start and stop; a countdown callback carrying an older gen is stale.
type turnCursor struct {
	index     int
	remaining time.Duration
	timer     Timer
	gen       uint64
}

func (r *Room) turnHolder() string {
	if r.turn.index < 0 || r.turn.index >= len(r.members) {
		return ""
	}
	return r.members[r.turn.index].identity
}

func (r *Room) timerEnabled() bool {
	return r.cfg.TimerEnabled && r.rules.turnBased()
}

func (r *Room) stopTurnTimer() {
	if r.turn.timer != nil {
		r.turn.timer.Stop()
		r.turn.timer = nil
	}
	r.turn.gen++
}

// startTurn hands the turn to the player at idx and, when the room is timed,
// starts a fresh countdown.
func (r *Room) startTurn(idx int) {
	r.stopTurnTimer()

	r.turn.index = idx
	r.turn.remaining = 0
	if r.timerEnabled() {
		r.turn.remaining = r.rules.turnDuration(r.reg.settings)
	}

	r.broadcast(protocol.NewEvent(protocol.TypeTurnUpdate, r.turnUpdate()))

	if r.timerEnabled() {
		r.scheduleTick(r.turn.gen)
	}
}

func (r *Room) turnUpdate() protocol.TurnUpdate {
	return protocol.TurnUpdate{
		PlayerIdentity: r.turnHolder(),
		TimeLeft:       int(r.turn.remaining / time.Second),
		TimerEnabled:   r.timerEnabled(),
	}
}

func (r *Room) scheduleTick(gen uint64) {
	r.turn.timer = r.reg.clock.AfterFunc(r.reg.settings.TimerTick, func() {
		r.onTick(gen)
	})
}

func (r *Room) onTick(gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || r.status != StatusPlaying || gen != r.turn.gen {
		return
	}

	r.turn.remaining -= r.reg.settings.TimerTick
	if r.turn.remaining <= 0 {
		slog.Info("turn timed out", "roomCode", r.code, "identity", r.turnHolder())
		r.advanceTurn(causeTimeout)
		return
	}

	r.broadcast(protocol.NewEvent(protocol.TypeTimerTick, protocol.TimerTick{
		PlayerIdentity: r.turnHolder(),
		TimeLeft:       int(r.turn.remaining / time.Second),
	}))
	r.scheduleTick(gen)
}

// advanceTurn passes the turn to the next connected player. It does nothing
// unless the room is playing.
func (r *Room) advanceTurn(cause turnCause) {
	if r.status != StatusPlaying || !r.rules.turnBased() || len(r.members) == 0 {
		return
	}
	r.stopTurnTimer()

	next := r.nextConnected((r.turn.index + 1) % len(r.members))
	slog.Debug("advancing turn", "roomCode", r.code, "cause", cause, "from", r.turnHolder(), "to", r.members[next].identity)
	r.startTurn(next)
}

// nextConnected returns the first connected member at or after from, wrapping.
// If nobody is connected it returns from.
func (r *Room) nextConnected(from int) int {
	n := len(r.members)
	for i := range n {
		j := (from + i) % n
		if r.members[j].connected {
			return j
		}
	}
	return from
}

// PassTurn gives up the current turn.
func (r *Room) PassTurn(c Caller) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.actor(c)
	if err != nil {
		return err
	}
	if !r.rules.turnBased() {
		return ErrNotTurnBased
	}
	if r.status != StatusPlaying {
		return ErrGameNotActive
	}
	if r.turnHolder() != m.identity {
		return ErrTurnViolation
	}
	r.advanceTurn(causePass)
	return nil
}

// authorizeTurn rejects identity unless it holds the shared turn.
func (r *Room) authorizeTurn(identity string) error {
	if r.turnHolder() != identity {
		return ErrTurnViolation
	}
	return nil
}
