package rooms

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/pixil98/go-wordle/internal/protocol"
)

// StartGame moves a host-started room out of the lobby.
func (r *Room) StartGame(c Caller) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.actor(c)
	if err != nil {
		return err
	}
	if !r.rules.hostStarts() {
		return fmt.Errorf("%w: %s rooms start on their own", ErrInvalidAction, r.mode)
	}
	if r.host != m.identity {
		return ErrNotHost
	}
	if r.status != StatusLobby {
		return ErrGameAlreadyStarted
	}
	return r.startRound()
}

// NextRound lets the host restart a finished room without a vote, optionally
// with a different word length.
func (r *Room) NextRound(c Caller, wordLength int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.actor(c)
	if err != nil {
		return err
	}
	if !r.rules.hostStarts() {
		return fmt.Errorf("%w: %s rooms restart by rematch", ErrInvalidAction, r.mode)
	}
	if r.host != m.identity {
		return ErrNotHost
	}
	if r.status != StatusEnded {
		return ErrGameNotActive
	}
	if wordLength != 0 {
		if !slices.Contains(r.reg.words.Lengths(r.cfg.Language), wordLength) {
			return fmt.Errorf("%w: no %d letter words", ErrInvalidAction, wordLength)
		}
		r.cfg.WordLengths = []int{wordLength}
	}
	return r.startRound()
}

// RequestRematch records a vote. Once every current member has voted the
// room restarts; until then the others are told who asked.
func (r *Room) RequestRematch(c Caller) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.actor(c)
	if err != nil {
		return err
	}
	if r.status != StatusEnded {
		return ErrGameNotActive
	}

	r.votes[m.identity] = struct{}{}
	if len(r.votes) >= len(r.members) {
		r.reachQuorum()
		return nil
	}

	r.broadcastExcept(m.identity, protocol.NewEvent(protocol.TypeRematchRequested, protocol.RematchRequested{
		Identity: m.identity,
		Votes:    len(r.votes),
		Needed:   len(r.members),
	}))
	return nil
}

func (r *Room) reachQuorum() {
	slog.Info("rematch agreed", "roomCode", r.code, "players", len(r.members))
	if err := r.rules.restart(r); err != nil {
		slog.Error("restarting room", "roomCode", r.code, "error", err)
	}
}

// startRound clears round state, chooses new secrets and starts play.
func (r *Room) startRound() error {
	r.stopTurnTimer()

	prevSecret := r.secret
	r.votes = map[string]struct{}{}
	r.result = nil
	r.attempts = nil
	r.secret = ""
	r.hangman = hangmanState{}
	for _, m := range r.members {
		m.attempts = nil
		m.locked = nil
	}

	if err := r.rules.begin(r); err != nil {
		r.secret = prevSecret
		return err
	}

	r.status = StatusPlaying
	r.lastActivity = r.reg.clock.Now()
	slog.Info("round started", "roomCode", r.code, "mode", r.mode, "wordLength", r.wordLength)
	slog.Debug("round secret", "roomCode", r.code, "secret", r.secret)

	for _, m := range r.members {
		r.send(m, protocol.NewEvent(protocol.TypeGameStarted, r.rules.started(r, m)))
	}
	r.broadcastRoster()

	if r.rules.turnBased() {
		r.turn.index = 0
		r.startTurn(r.nextConnected(0))
	}
	return nil
}

// endRound finishes the round. winner is empty when nobody won.
func (r *Room) endRound(winner string, secrets map[string]string) {
	r.stopTurnTimer()
	r.status = StatusEnded
	r.votes = map[string]struct{}{}

	if m := r.member(winner); m != nil {
		m.score++
	}

	r.result = &protocol.RoundEnded{
		WinnerIdentity: winner,
		SecretWord:     r.secret,
		Secrets:        secrets,
		Standings:      r.standings(),
	}

	slog.Info("round ended", "roomCode", r.code, "winner", winner)
	r.broadcast(protocol.NewEvent(protocol.TypeRoundEnded, *r.result))
	r.broadcastRoster()
}

func (r *Room) standings() []protocol.Standing {
	out := make([]protocol.Standing, len(r.members))
	for i, m := range r.members {
		out[i] = protocol.Standing{
			Identity: m.identity,
			Score:    m.score,
			Locked:   m.lockedCount(),
		}
	}
	return out
}
