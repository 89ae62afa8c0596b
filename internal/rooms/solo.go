package rooms

import (
	"github.com/pixil98/go-wordle/internal/feedback"
	"github.com/pixil98/go-wordle/internal/protocol"
)

const (
	soloInitialRows = 6
	soloRowGrowth   = 5
)

// soloRules is one player against a random secret. The round starts as soon
// as the room is created and the board never runs out: it grows by
// soloRowGrowth rows each time the last one is used.
type soloRules struct {
	sharedRound
}

func (soloRules) capacity(Settings) int { return 1 }

func (soloRules) autoStart(Config) bool { return true }

func (soloRules) hostStarts() bool { return false }

func (soloRules) turnBased() bool { return false }

func (soloRules) guess(r *Room, m *member, word string) error {
	w, err := r.validateWord(word)
	if err != nil {
		return err
	}
	fb, err := feedback.Compute(w, r.secret)
	if err != nil {
		return err
	}

	m.attempts = append(m.attempts, Attempt{Guesser: m.identity, Word: w, Feedback: fb})
	r.send(m, protocol.NewEvent(protocol.TypeGuessResult, protocol.GuessResult{
		Word:          w,
		Feedback:      fb,
		OwnerIdentity: m.identity,
		Attempt:       len(m.attempts),
		MaxRows:       soloRows(len(m.attempts)),
	}))

	if fb.IsWin() {
		r.endRound(m.identity, nil)
	}
	return nil
}

func (soloRules) sync(r *Room, m *member, ss *protocol.StateSync) {
	ss.Attempts = guessResults(m.attempts)
	ss.MaxRows = soloRows(len(m.attempts))
}

func (rl soloRules) started(r *Room, m *member) protocol.GameStarted {
	gs := rl.sharedRound.started(r, m)
	gs.MaxRows = soloInitialRows
	return gs
}

// soloRows is the board height after attempts guesses.
func soloRows(attempts int) int {
	rows := soloInitialRows
	for attempts >= rows {
		rows += soloRowGrowth
	}
	return rows
}
