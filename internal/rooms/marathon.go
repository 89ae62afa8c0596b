package rooms

import (
	"github.com/pixil98/go-wordle/internal/feedback"
	"github.com/pixil98/go-wordle/internal/protocol"
)

// marathonRules is the per-player isolated grid with shared spectation: two
// players chase the same secret on their own grids and only see a status
// line for the other.
type marathonRules struct {
	sharedRound
}

func (marathonRules) capacity(Settings) int { return 2 }

func (marathonRules) autoStart(Config) bool { return true }

func (marathonRules) hostStarts() bool { return false }

func (marathonRules) turnBased() bool { return false }

func (marathonRules) guess(r *Room, m *member, word string) error {
	w, err := r.validateWord(word)
	if err != nil {
		return err
	}
	fb, err := feedback.Compute(w, r.secret)
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
	r.broadcastExcept(m.identity, protocol.NewEvent(protocol.TypeOpponentGuess, protocol.OpponentGuess{
		OwnerIdentity: m.identity,
		Attempt:       n,
		Correct:       len(fb.CorrectPositions()),
	}))

	if fb.IsWin() {
		r.endRound(m.identity, nil)
	}
	return nil
}

func (marathonRules) sync(r *Room, m *member, ss *protocol.StateSync) {
	ss.Attempts = guessResults(m.attempts)
	for _, o := range r.others(m.identity) {
		for i, a := range o.attempts {
			ss.Opponent = append(ss.Opponent, protocol.OpponentGuess{
				OwnerIdentity: o.identity,
				Attempt:       i + 1,
				Correct:       len(a.Feedback.CorrectPositions()),
			})
		}
	}
}
