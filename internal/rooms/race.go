package rooms

import (
	"sort"

	"github.com/pixil98/go-wordle/internal/feedback"
	"github.com/pixil98/go-wordle/internal/protocol"
)

// raceRules is the free-for-all race: every player guesses the same secret
// with no turns. Progress is the set of positions a player has ever had
// correct, so it never goes down.
type raceRules struct {
	sharedRound
}

func (raceRules) capacity(s Settings) int { return s.MaxPlayers }

func (raceRules) autoStart(Config) bool { return false }

func (raceRules) turnBased() bool { return false }

func (raceRules) guess(r *Room, m *member, word string) error {
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
	}))

	if m.locked == nil {
		m.locked = map[int]bool{}
	}
	for _, i := range fb.CorrectPositions() {
		m.locked[i] = true
	}
	r.broadcast(protocol.NewEvent(protocol.TypeScoreUpdate, protocol.ScoreUpdate{
		Identity: m.identity,
		Locked:   m.lockedCount(),
		Length:   r.wordLength,
	}))

	if fb.IsWin() {
		r.endRound(m.identity, nil)
	}
	return nil
}

func (raceRules) sync(r *Room, m *member, ss *protocol.StateSync) {
	ss.Attempts = guessResults(m.attempts)
	for i := range m.locked {
		ss.Locked = append(ss.Locked, i)
	}
	sort.Ints(ss.Locked)
	for _, o := range r.others(m.identity) {
		ss.Opponent = append(ss.Opponent, protocol.OpponentGuess{
			OwnerIdentity: o.identity,
			Attempt:       len(o.attempts),
			Correct:       o.lockedCount(),
		})
	}
}
