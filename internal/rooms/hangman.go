package rooms

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/pixil98/go-wordle/internal/protocol"
)

// hangmanState tracks revealed positions and distinct missed letters. A
// missed letter may be tried again; it costs the turn but is listed once.
type hangmanState struct {
	revealed []bool
	misses   []string
}

// hangmanRules is the letter-guessing relay. A hit keeps the turn and
// restarts its clock; a miss passes the turn.
type hangmanRules struct {
	sharedRound
}

func (hangmanRules) capacity(s Settings) int { return s.MaxPlayers }

func (hangmanRules) autoStart(Config) bool { return false }

func (hangmanRules) turnBased() bool { return true }

func (hangmanRules) defaultTimer() bool { return true }

func (hangmanRules) turnDuration(s Settings) time.Duration { return s.LetterTurnDuration }

func (rl hangmanRules) begin(r *Room) error {
	if err := rl.sharedRound.begin(r); err != nil {
		return err
	}
	r.hangman = hangmanState{
		revealed: make([]bool, len([]rune(r.secret))),
	}
	return nil
}

func (hangmanRules) guess(r *Room, m *member, word string) error {
	if err := r.authorizeTurn(m.identity); err != nil {
		return err
	}
	letters := []rune(r.reg.words.Normalize(word, r.cfg.Language))
	if len(letters) != 1 {
		return fmt.Errorf("%w: guess one letter", ErrLengthMismatch)
	}
	letter := letters[0]
	if letter < 'A' || letter > 'Z' {
		return fmt.Errorf("%w: %q is not a letter", ErrInvalidWord, letter)
	}

	h := &r.hangman
	secret := []rune(r.secret)
	for i, c := range secret {
		if c == letter && h.revealed[i] {
			return ErrLetterRevealed
		}
	}

	hit := false
	for i, c := range secret {
		if c == letter {
			h.revealed[i] = true
			hit = true
		}
	}
	if !hit && !slices.Contains(h.misses, string(letter)) {
		h.misses = append(h.misses, string(letter))
	}

	r.broadcast(protocol.NewEvent(protocol.TypeLetterResult, protocol.LetterResult{
		Identity: m.identity,
		Letter:   string(letter),
		Hit:      hit,
		Revealed: r.hangmanMask(),
		Misses:   append([]string(nil), h.misses...),
	}))

	switch {
	case hit && r.hangmanSolved():
		r.endRound(m.identity, nil)
	case hit:
		r.startTurn(r.turn.index)
	default:
		r.advanceTurn(causeGuess)
	}
	return nil
}

func (hangmanRules) sync(r *Room, _ *member, ss *protocol.StateSync) {
	ss.Revealed = r.hangmanMask()
	ss.Misses = append([]string(nil), r.hangman.misses...)
}

func (r *Room) hangmanMask() string {
	var sb strings.Builder
	for i, c := range []rune(r.secret) {
		if i < len(r.hangman.revealed) && r.hangman.revealed[i] {
			sb.WriteRune(c)
		} else {
			sb.WriteByte('_')
		}
	}
	return sb.String()
}

func (r *Room) hangmanSolved() bool {
	if len(r.hangman.revealed) == 0 {
		return false
	}
	for _, ok := range r.hangman.revealed {
		if !ok {
			return false
		}
	}
	return true
}
