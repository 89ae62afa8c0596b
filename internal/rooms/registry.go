package rooms

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pixil98/go-wordle/internal/protocol"
)

// Registry owns the code to room map. Lock order is room then registry: the
// registry lock is never held while a room lock is acquired.
type Registry struct {
	rooms map[string]*Room

	words    Oracle
	settings Settings
	clock    Clock
	newCode  func() string
	intn     func(int) int

	mu sync.Mutex
}

func NewRegistry(words Oracle, opts ...RegistryOpt) *Registry {
	r := &Registry{
		rooms:    map[string]*Room{},
		words:    words,
		settings: DefaultSettings(),
		clock:    realClock{},
		newCode:  randomCode,
		intn:     rand.IntN,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func randomCode() string {
	var sb strings.Builder
	for range codeLength {
		sb.WriteByte(codeAlphabet[rand.IntN(len(codeAlphabet))])
	}
	return sb.String()
}

// Create opens a new room in the lobby with identity as host and sole member.
func (reg *Registry) Create(mode string, req protocol.RoomConfig, identity string, conn Conn) (*Room, error) {
	if identity == "" {
		return nil, ErrMissingIdentity
	}
	m, err := ParseMode(mode)
	if err != nil {
		return nil, err
	}
	rl := modeRules[m]
	cfg, err := resolveConfig(m, rl, req, reg.words)
	if err != nil {
		return nil, err
	}

	now := reg.clock.Now()
	room := &Room{
		mode:         m,
		rules:        rl,
		cfg:          cfg,
		reg:          reg,
		status:       StatusLobby,
		host:         identity,
		wordLength:   cfg.WordLengths[0],
		votes:        map[string]struct{}{},
		lastActivity: now,
		members: []*member{{
			identity:  identity,
			conn:      conn,
			connected: true,
		}},
	}

	// Held across the insert so no handler runs before the creation events.
	room.mu.Lock()
	defer room.mu.Unlock()

	code, err := reg.insert(room)
	if err != nil {
		return nil, err
	}

	slog.Info("room created", "roomCode", code, "mode", m, "host", identity)

	room.send(room.members[0], protocol.NewEvent(protocol.TypeRoomCreated, protocol.RoomCreated{RoomCode: code, Mode: string(m)}))
	room.broadcastRoster()

	if rl.autoStart(cfg) && len(room.members) == room.capacity() {
		if err := room.startRound(); err != nil {
			room.destroy("start failed")
			return nil, err
		}
	}

	return room, nil
}

func (reg *Registry) insert(room *Room) (string, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	for range maxCodeAttempts {
		code := reg.newCode()
		if _, taken := reg.rooms[code]; taken {
			continue
		}
		room.code = code
		reg.rooms[code] = room
		return code, nil
	}
	return "", ErrCodeSpaceExhausted
}

// remove deletes code only if it still maps to room, so a reused code is
// never removed by a stale room.
func (reg *Registry) remove(code string, room *Room) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if reg.rooms[code] == room {
		delete(reg.rooms, code)
	}
}

// Lookup finds a live room.
func (reg *Registry) Lookup(code string) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// Join adds identity to a lobby room. An existing member is rebound instead.
func (reg *Registry) Join(code, identity string, conn Conn) (*Room, error) {
	if identity == "" {
		return nil, ErrMissingIdentity
	}
	room, err := reg.Lookup(code)
	if err != nil {
		return nil, err
	}
	return room, room.join(identity, conn)
}

// Rejoin rebinds an existing member and replays the room state to it.
func (reg *Registry) Rejoin(code, identity string, conn Conn) (*Room, error) {
	if identity == "" {
		return nil, ErrMissingIdentity
	}
	room, err := reg.Lookup(code)
	if err != nil {
		return nil, err
	}
	return room, room.rejoin(identity, conn)
}

// Destroy removes a room and cancels everything it owns.
func (reg *Registry) Destroy(code string) error {
	room, err := reg.Lookup(code)
	if err != nil {
		return err
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	room.destroy("destroyed")
	return nil
}

func (reg *Registry) snapshot() []*Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	rooms := make([]*Room, 0, len(reg.rooms))
	for _, r := range reg.rooms {
		rooms = append(rooms, r)
	}
	return rooms
}

// Rooms summarizes every live room ordered by code.
func (reg *Registry) Rooms() []Summary {
	var out []Summary
	for _, r := range reg.snapshot() {
		out = append(out, r.Summary())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Len is the number of live rooms.
func (reg *Registry) Len() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.rooms)
}

// Tick sweeps rooms that have seen no action for longer than the idle TTL.
func (reg *Registry) Tick(ctx context.Context) error {
	cutoff := reg.clock.Now().Add(-reg.settings.IdleRoomTTL)
	for _, r := range reg.snapshot() {
		r.sweep(ctx, cutoff)
	}
	return nil
}

// sweep destroys the room if it has been idle since before cutoff.
func (r *Room) sweep(ctx context.Context, cutoff time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return false
	}
	if len(r.members) > 0 && r.lastActivity.After(cutoff) {
		return false
	}
	slog.InfoContext(ctx, "sweeping idle room", "roomCode", r.code, "lastActivity", r.lastActivity)
	r.broadcast(protocol.NewEvent(protocol.TypeError, protocol.Error{Code: CodeRoomExpired, Message: "room closed after inactivity"}))
	r.destroy("idle")
	return true
}
