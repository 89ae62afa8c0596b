package rooms

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pixil98/go-wordle/internal/feedback"
	"github.com/pixil98/go-wordle/internal/protocol"
)

type Status string

const (
	StatusLobby   Status = "lobby"
	StatusPlaying Status = "playing"
	StatusEnded   Status = "ended"
)

// Attempt is one scored guess. Attempts are only ever appended.
type Attempt struct {
	Guesser  string
	Word     string
	Feedback feedback.Result
}

type member struct {
	identity   string
	conn       Conn
	connected  bool
	evictTimer Timer
	evictGen   uint64
	score      int

	// private grid state
	attempts []Attempt
	locked   map[int]bool
	secret   string
	hint     string
	ready    bool
}

func (m *member) lockedCount() int {
	return len(m.locked)
}

// Room is one game session. Every exported method runs as a single handler
// under the room lock; timer callbacks take the same lock and re-check the
// state they were scheduled against before doing anything.
type Room struct {
	mu sync.Mutex

	code  string
	mode  Mode
	rules rules
	cfg   Config
	reg   *Registry

	status     Status
	host       string
	members    []*member
	wordLength int
	secret     string
	attempts   []Attempt
	turn       turnCursor
	votes      map[string]struct{}
	result     *protocol.RoundEnded
	hangman    hangmanState

	closed       bool
	lastActivity time.Time
}

func (r *Room) Code() string {
	return r.code
}

func (r *Room) Mode() Mode {
	return r.mode
}

// Summary is a point-in-time description of a room.
type Summary struct {
	Code      string `json:"code"`
	Mode      Mode   `json:"mode"`
	Status    Status `json:"status"`
	Host      string `json:"host"`
	Players   int    `json:"players"`
	Connected int    `json:"connected"`
}

func (r *Room) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Summary{
		Code:    r.code,
		Mode:    r.mode,
		Status:  r.status,
		Host:    r.host,
		Players: len(r.members),
	}
	for _, m := range r.members {
		if m.connected {
			s.Connected++
		}
	}
	return s
}

// Status returns the room's lifecycle status.
func (r *Room) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Caller is one connection acting for an identity.
type Caller struct {
	Identity string
	ConnId   string
}

// Guess submits a word (or a letter, in hangman) for the caller.
func (r *Room) Guess(c Caller, word string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.actor(c)
	if err != nil {
		return err
	}
	if r.status != StatusPlaying {
		return ErrGameNotActive
	}
	return r.rules.guess(r, m, word)
}

// React relays an emoji reaction to the whole room.
func (r *Room) React(c Caller, emoji string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.actor(c)
	if err != nil {
		return err
	}
	if emoji == "" || len(emoji) > maxReactionBytes {
		return fmt.Errorf("%w: bad reaction", ErrInvalidAction)
	}
	r.broadcast(protocol.NewEvent(protocol.TypeReaction, protocol.ReactionEvent{Identity: m.identity, Emoji: emoji}))
	return nil
}

// actor resolves the caller to a member and records activity. Only the
// connection currently bound to the identity may act for it.
func (r *Room) actor(c Caller) (*member, error) {
	if c.Identity == "" {
		return nil, ErrMissingIdentity
	}
	if r.closed {
		return nil, ErrRoomNotFound
	}
	m := r.member(c.Identity)
	if m == nil {
		return nil, ErrUnknownIdentity
	}
	if m.conn == nil || m.conn.Id() != c.ConnId {
		return nil, ErrSessionReplaced
	}
	r.lastActivity = r.reg.clock.Now()
	return m, nil
}

func (r *Room) member(identity string) *member {
	for _, m := range r.members {
		if m.identity == identity {
			return m
		}
	}
	return nil
}

func (r *Room) memberIndex(identity string) int {
	for i, m := range r.members {
		if m.identity == identity {
			return i
		}
	}
	return -1
}

func (r *Room) identities() []string {
	ids := make([]string, len(r.members))
	for i, m := range r.members {
		ids[i] = m.identity
	}
	return ids
}

func (r *Room) others(identity string) []*member {
	var out []*member
	for _, m := range r.members {
		if m.identity != identity {
			out = append(out, m)
		}
	}
	return out
}

func (r *Room) capacity() int {
	return r.rules.capacity(r.reg.settings)
}

func (r *Room) pickLength() int {
	if len(r.cfg.WordLengths) == 1 {
		return r.cfg.WordLengths[0]
	}
	return r.cfg.WordLengths[r.reg.intn(len(r.cfg.WordLengths))]
}

// validateWord normalizes word and checks it against the round's length and
// the language oracle.
func (r *Room) validateWord(word string) (string, error) {
	w := r.reg.words.Normalize(word, r.cfg.Language)
	if n := len([]rune(w)); n != r.wordLength {
		return "", fmt.Errorf("%w: got %d letters, want %d", ErrLengthMismatch, n, r.wordLength)
	}
	if !r.reg.words.IsValidWord(w, r.cfg.Language) {
		return "", fmt.Errorf("%w: %s", ErrInvalidWord, w)
	}
	return w, nil
}

func (r *Room) roster() protocol.RoomUpdate {
	u := protocol.RoomUpdate{
		RoomCode: r.code,
		Mode:     string(r.mode),
		Status:   string(r.status),
		Roster:   make([]protocol.RosterEntry, len(r.members)),
	}
	for i, m := range r.members {
		u.Roster[i] = protocol.RosterEntry{
			Identity:  m.identity,
			Connected: m.connected,
			Host:      m.identity == r.host,
			Score:     m.score,
		}
	}
	return u
}

func (r *Room) broadcastRoster() {
	r.broadcast(protocol.NewEvent(protocol.TypeRoomUpdate, r.roster()))
}

// broadcast sends ev to every bound member in roster order.
func (r *Room) broadcast(ev protocol.Event) {
	for _, m := range r.members {
		if m.conn != nil {
			m.conn.Send(ev)
		}
	}
}

func (r *Room) broadcastExcept(identity string, ev protocol.Event) {
	for _, m := range r.members {
		if m.identity != identity && m.conn != nil {
			m.conn.Send(ev)
		}
	}
}

func (r *Room) send(m *member, ev protocol.Event) {
	if m.conn != nil {
		m.conn.Send(ev)
	}
}

// destroy tears the room down. Callers hold the room lock.
func (r *Room) destroy(reason string) {
	if r.closed {
		return
	}
	r.stopTurnTimer()
	for _, m := range r.members {
		if m.evictTimer != nil {
			m.evictTimer.Stop()
			m.evictTimer = nil
		}
		m.evictGen++
	}
	r.closed = true
	r.reg.remove(r.code, r)

	slog.Info("room destroyed", "roomCode", r.code, "reason", reason)
}
