package rooms

import (
	"fmt"
	"strings"
	"time"

	"github.com/pixil98/go-wordle/internal/feedback"
	"github.com/pixil98/go-wordle/internal/protocol"
)

const maxHintRunes = 80

// duelRules is the private-grid duel: each player sets a secret for the other
// and both guess concurrently. A player's grid is private; the opponent only
// sees the colours.
type duelRules struct{}

func (duelRules) capacity(Settings) int { return 2 }

func (duelRules) autoStart(cfg Config) bool { return cfg.RandomSecrets }

func (duelRules) hostStarts() bool { return false }

func (duelRules) turnBased() bool { return false }

func (duelRules) defaultTimer() bool { return false }

func (duelRules) turnDuration(Settings) time.Duration { return 0 }

func (duelRules) begin(r *Room) error {
	if len(r.members) != 2 {
		return fmt.Errorf("%w: waiting for an opponent", ErrGameNotActive)
	}
	for _, m := range r.members {
		if r.cfg.RandomSecrets {
			secret, err := r.reg.words.RandomSecret(r.cfg.Language, r.wordLength)
			if err != nil {
				return fmt.Errorf("choosing secret: %w", err)
			}
			m.secret = secret
			m.hint = ""
			continue
		}
		if m.secret == "" {
			return ErrSecretMissing
		}
	}
	return nil
}

func (duelRules) guess(r *Room, m *member, word string) error {
	opp := opponent(r, m)
	if opp == nil {
		return ErrGameNotActive
	}
	w, err := r.validateWord(word)
	if err != nil {
		return err
	}
	fb, err := feedback.Compute(w, opp.secret)
	if err != nil {
		return err
	}

	m.attempts = append(m.attempts, Attempt{Guesser: m.identity, Word: w, Feedback: fb})
	n := len(m.attempts)
	r.send(m, protocol.NewEvent(protocol.TypeGuessResult, protocol.GuessResult{
		Word:          w,
		Feedback:      fb,
		OwnerIdentity: m.identity,
		Attempt:       n,
	}))
	r.send(opp, protocol.NewEvent(protocol.TypeOpponentGuess, protocol.OpponentGuess{
		OwnerIdentity: m.identity,
		Attempt:       n,
		Correct:       len(fb.CorrectPositions()),
		Feedback:      fb,
	}))

	if fb.IsWin() {
		r.endRound(m.identity, duelSecrets(r))
	}
	return nil
}

// restart goes back to secret setup unless the room draws secrets itself.
func (duelRules) restart(r *Room) error {
	if r.cfg.RandomSecrets {
		return r.startRound()
	}

	r.stopTurnTimer()
	r.status = StatusLobby
	r.votes = map[string]struct{}{}
	r.result = nil
	for _, m := range r.members {
		m.attempts = nil
		m.secret = ""
		m.hint = ""
		m.ready = false
	}
	r.broadcastRoster()
	return nil
}

func (duelRules) sync(r *Room, m *member, ss *protocol.StateSync) {
	ss.Attempts = guessResults(m.attempts)
	ss.SecretSet = m.secret != ""
	ss.Ready = m.ready

	opp := opponent(r, m)
	if opp == nil {
		return
	}
	for i, a := range opp.attempts {
		ss.Opponent = append(ss.Opponent, protocol.OpponentGuess{
			OwnerIdentity: opp.identity,
			Attempt:       i + 1,
			Correct:       len(a.Feedback.CorrectPositions()),
			Feedback:      a.Feedback,
		})
	}
	if r.status != StatusLobby && r.cfg.HintsEnabled {
		ss.Hint = opp.hint
	}
}

func (duelRules) started(r *Room, m *member) protocol.GameStarted {
	gs := protocol.GameStarted{
		Mode:       string(r.mode),
		WordLength: r.wordLength,
		Roster:     r.identities(),
	}
	if opp := opponent(r, m); opp != nil && r.cfg.HintsEnabled {
		gs.Hint = opp.hint
	}
	return gs
}

func opponent(r *Room, m *member) *member {
	for _, o := range r.members {
		if o != m {
			return o
		}
	}
	return nil
}

func duelSecrets(r *Room) map[string]string {
	out := make(map[string]string, len(r.members))
	for _, m := range r.members {
		out[m.identity] = m.secret
	}
	return out
}

// SetSecret stores the word the caller's opponent will have to guess.
func (r *Room) SetSecret(c Caller, word, hint string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.actor(c)
	if err != nil {
		return err
	}
	if _, ok := r.rules.(*duelRules); !ok {
		return fmt.Errorf("%w: %s rooms choose their own secret", ErrInvalidAction, r.mode)
	}
	if r.status != StatusLobby {
		return ErrGameAlreadyStarted
	}
	w, err := r.validateWord(word)
	if err != nil {
		return err
	}

	hint = strings.TrimSpace(hint)
	if runes := []rune(hint); len(runes) > maxHintRunes {
		hint = string(runes[:maxHintRunes])
	}

	m.secret = w
	m.hint = hint
	m.ready = false
	r.send(m, protocol.NewEvent(protocol.TypeSecretAccepted, nil))
	return nil
}

// Ready marks the caller as done with setup; the duel starts once both are.
func (r *Room) Ready(c Caller) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.actor(c)
	if err != nil {
		return err
	}
	if _, ok := r.rules.(*duelRules); !ok {
		return fmt.Errorf("%w: %s rooms have no setup", ErrInvalidAction, r.mode)
	}
	if r.status != StatusLobby {
		return ErrGameAlreadyStarted
	}
	if m.secret == "" {
		return ErrSecretMissing
	}
	m.ready = true

	if len(r.members) == 2 && r.members[0].ready && r.members[1].ready {
		return r.startRound()
	}
	r.send(m, protocol.NewEvent(protocol.TypeWaitingForOpponent, nil))
	return nil
}
