package rooms

import (
	"github.com/pixil98/go-wordle/internal/feedback"
	"github.com/pixil98/go-wordle/internal/protocol"
)

// relayRules is the shared-grid turn relay: everyone guesses one secret in
// strict turn order and sees every attempt. pair rooms hold exactly two
// players and start as soon as the second joins.
type relayRules struct {
	sharedRound
	pair bool
}

func (rl *relayRules) capacity(s Settings) int {
	if rl.pair {
		return 2
	}
	return s.MaxPlayers
}

func (rl *relayRules) autoStart(Config) bool { return rl.pair }

func (rl *relayRules) hostStarts() bool { return !rl.pair }

func (rl *relayRules) turnBased() bool { return true }

func (rl *relayRules) defaultTimer() bool { return !rl.pair }

func (rl *relayRules) guess(r *Room, m *member, word string) error {
	if err := r.authorizeTurn(m.identity); err != nil {
		return err
	}
	w, err := r.validateWord(word)
	if err != nil {
		return err
	}
	fb, err := feedback.Compute(w, r.secret)
	if err != nil {
		return err
	}

	r.attempts = append(r.attempts, Attempt{Guesser: m.identity, Word: w, Feedback: fb})
	r.broadcast(protocol.NewEvent(protocol.TypeGuessResult, protocol.GuessResult{
		Word:          w,
		Feedback:      fb,
		OwnerIdentity: m.identity,
		Attempt:       len(r.attempts),
	}))

	if fb.IsWin() {
		r.endRound(m.identity, nil)
		return nil
	}
	r.advanceTurn(causeGuess)
	return nil
}

func (rl *relayRules) sync(r *Room, _ *member, ss *protocol.StateSync) {
	ss.Attempts = guessResults(r.attempts)
}

// guessResults numbers attempts in the order they were made.
func guessResults(attempts []Attempt) []protocol.GuessResult {
	out := make([]protocol.GuessResult, len(attempts))
	for i, a := range attempts {
		out[i] = protocol.GuessResult{
			Word:          a.Word,
			Feedback:      a.Feedback,
			OwnerIdentity: a.Guesser,
			Attempt:       i + 1,
		}
	}
	return out
}
