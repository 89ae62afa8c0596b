package rooms

import "github.com/pixil98/go-wordle/internal/protocol"

func (r *Room) sendSync(m *member) {
	r.send(m, protocol.NewEvent(protocol.TypeStateSync, r.stateSync(m)))
}

// stateSync builds the full view m is entitled to. Secrets are only
// included once the round is over.
func (r *Room) stateSync(m *member) protocol.StateSync {
	ss := protocol.StateSync{
		Room:       r.roster(),
		Identity:   m.identity,
		WordLength: r.wordLength,
		Attempts:   []protocol.GuessResult{},
	}
	if r.status == StatusPlaying && r.rules.turnBased() {
		tu := r.turnUpdate()
		ss.Turn = &tu
	}

	r.rules.sync(r, m, &ss)

	if r.status == StatusEnded && r.result != nil {
		res := *r.result
		ss.RoundResult = &res
	}
	return ss
}

// Sync replays the room state to the caller.
func (r *Room) Sync(c Caller) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.actor(c)
	if err != nil {
		return err
	}
	r.sendSync(m)
	return nil
}
