package lobby

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
	"github.com/pixil98/go-wordle/internal/messaging"
	"github.com/pixil98/go-wordle/internal/protocol"
	"github.com/pixil98/go-wordle/internal/rooms"
)

// memoryBus delivers synchronously on the publishing goroutine.
type memoryBus struct {
	mu   sync.Mutex
	subs map[string]func([]byte)
}

func newMemoryBus() *memoryBus {
	return &memoryBus{subs: map[string]func([]byte){}}
}

func (b *memoryBus) Publish(subject string, data []byte) error {
	b.mu.Lock()
	h := b.subs[subject]
	b.mu.Unlock()
	if h != nil {
		h(data)
	}
	return nil
}

func (b *memoryBus) Subscribe(subject string, handler func([]byte)) (func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[subject] = handler
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, subject)
	}, nil
}

type idleTimer struct{}

func (idleTimer) Stop() bool { return true }

// idleClock never fires timers.
type idleClock struct{}

func (idleClock) AfterFunc(time.Duration, func()) rooms.Timer { return idleTimer{} }
func (idleClock) Now() time.Time                              { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

type stubOracle struct{}

func (stubOracle) IsValidWord(word, _ string) bool { return word != "XXXXX" }
func (stubOracle) RandomSecret(string, int) (string, error) {
	return "HELLO", nil
}
func (stubOracle) Normalize(word, _ string) string { return strings.ToUpper(strings.TrimSpace(word)) }
func (stubOracle) Language(string) string          { return "en" }
func (stubOracle) Lengths(string) []int            { return []int{5} }

func newTestLobby(t *testing.T) (*Lobby, *rooms.Registry) {
	t.Helper()
	codes := 0
	reg := rooms.NewRegistry(stubOracle{},
		rooms.WithClock(idleClock{}),
		rooms.WithCodeSource(func() string {
			codes++
			return []string{"AAAA", "BBBB", "CCCC"}[(codes-1)%3]
		}),
		rooms.WithRandom(func(int) int { return 0 }),
	)
	return New(reg, newMemoryBus()), reg
}

type sink struct {
	mu     sync.Mutex
	frames [][]byte
}

func (s *sink) deliver(b []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, b)
}

func (s *sink) types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, f := range s.frames {
		env, err := protocol.DecodeEnvelope(f)
		if err != nil {
			out = append(out, "!"+err.Error())
			continue
		}
		out = append(out, env.Type)
	}
	return out
}

func (s *sink) has(typ string) bool {
	for _, got := range s.types() {
		if got == typ {
			return true
		}
	}
	return false
}

// lastError returns the code of the most recent error event.
func (s *sink) lastError(t *testing.T) string {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.frames) - 1; i >= 0; i-- {
		typ, e, err := protocol.DecodeEvent[protocol.Error](s.frames[i])
		if err != nil {
			t.Fatalf("decoding frame: %v", err)
		}
		if typ == protocol.TypeError {
			return e.Code
		}
	}
	return ""
}

func (s *sink) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = nil
}

func request(t *testing.T, typ string, payload any) protocol.Envelope {
	t.Helper()
	env, err := envelope(typ, payload)
	if err != nil {
		t.Fatalf("building %s: %v", typ, err)
	}
	return env
}

func open(t *testing.T, l *Lobby, identity string) (*Session, *sink) {
	t.Helper()
	out := &sink{}
	sess, err := l.Open(context.Background(), out.deliver)
	if err != nil {
		t.Fatalf("opening session: %v", err)
	}
	sess.SetIdentity(identity)
	return sess, out
}

func TestSession_Errors(t *testing.T) {
	tests := map[string]struct {
		raw     string
		expCode string
	}{
		"not json": {
			raw:     `guess hello`,
			expCode: "invalid_action",
		},
		"unknown type": {
			raw:     `{"type":"fireworks"}`,
			expCode: "invalid_action",
		},
		"bad payload": {
			raw:     `{"type":"createRoom","data":{"mode":7}}`,
			expCode: "invalid_action",
		},
		"guess outside a room": {
			raw:     `{"type":"submitGuess","data":{"word":"HELLO"}}`,
			expCode: "room_not_found",
		},
		"join missing room": {
			raw:     `{"type":"joinRoom","data":{"roomCode":"ZZZZ"}}`,
			expCode: "room_not_found",
		},
		"unknown mode": {
			raw:     `{"type":"createRoom","data":{"mode":"chess"}}`,
			expCode: "invalid_action",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			l, _ := newTestLobby(t)
			sess, out := open(t, l, "alice")

			sess.HandleMessage(context.Background(), []byte(tt.raw))

			testutil.AssertEqual(t, "code", out.lastError(t), tt.expCode)
		})
	}
}

func TestSession_MissingIdentity(t *testing.T) {
	l, _ := newTestLobby(t)
	sess, out := open(t, l, "")

	sess.Handle(context.Background(), request(t, protocol.TypeCreateRoom, protocol.CreateRoom{Mode: "classic"}))

	testutil.AssertEqual(t, "code", out.lastError(t), "missing_identity")
}

func TestSession_ClassicRound(t *testing.T) {
	ctx := context.Background()
	l, reg := newTestLobby(t)

	alice, aliceOut := open(t, l, "alice")
	alice.Handle(ctx, request(t, protocol.TypeCreateRoom, protocol.CreateRoom{Mode: "classic"}))
	testutil.AssertEqual(t, "room created", aliceOut.has(protocol.TypeRoomCreated), true)
	testutil.AssertEqual(t, "rooms", reg.Len(), 1)

	bob, bobOut := open(t, l, "")
	bob.Handle(ctx, request(t, protocol.TypeJoinRoom, protocol.JoinRoom{RoomCode: "AAAA", Identity: "bob"}))
	testutil.AssertEqual(t, "bob identity", bob.Identity(), "bob")
	testutil.AssertEqual(t, "alice started", aliceOut.has(protocol.TypeGameStarted), true)
	testutil.AssertEqual(t, "bob started", bobOut.has(protocol.TypeGameStarted), true)

	bob.Handle(ctx, request(t, protocol.TypeSubmitGuess, protocol.SubmitGuess{Word: "world"}))
	testutil.AssertEqual(t, "out of turn", bobOut.lastError(t), "turn_violation")

	alice.Handle(ctx, request(t, protocol.TypeSubmitGuess, protocol.SubmitGuess{Word: "hello"}))
	testutil.AssertEqual(t, "bob saw the end", bobOut.has(protocol.TypeRoundEnded), true)

	var ended protocol.RoundEnded
	for _, f := range bobOut.frames {
		if typ, re, err := protocol.DecodeEvent[protocol.RoundEnded](f); err == nil && typ == protocol.TypeRoundEnded {
			ended = re
		}
	}
	testutil.AssertEqual(t, "winner", ended.WinnerIdentity, "alice")

	aliceOut.reset()
	bob.Close(ctx)
	testutil.AssertEqual(t, "alice told", aliceOut.has(protocol.TypeConnectionStatus), true)

	// Closed sessions ignore further requests.
	bobOut.reset()
	bob.Handle(ctx, request(t, protocol.TypeRequestRematch, nil))
	testutil.AssertEqual(t, "frames after close", len(bobOut.types()), 0)
}

func TestSession_SwitchingRooms(t *testing.T) {
	ctx := context.Background()
	l, reg := newTestLobby(t)

	host, _ := open(t, l, "host")
	host.Handle(ctx, request(t, protocol.TypeCreateRoom, protocol.CreateRoom{Mode: "race"}))

	alice, aliceOut := open(t, l, "alice")
	alice.Handle(ctx, request(t, protocol.TypeJoinRoom, protocol.JoinRoom{RoomCode: "AAAA"}))
	alice.Handle(ctx, request(t, protocol.TypeCreateRoom, protocol.CreateRoom{Mode: "race"}))
	testutil.AssertEqual(t, "rooms", reg.Len(), 2)

	race, err := reg.Lookup("AAAA")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	summary := race.Summary()
	testutil.AssertEqual(t, "players", summary.Players, 2)
	testutil.AssertEqual(t, "alice away from first room", summary.Connected, 1)

	aliceOut.reset()
	alice.Handle(ctx, request(t, protocol.TypeLeaveRoom, nil))
	testutil.AssertEqual(t, "empty room removed", reg.Len(), 1)

	alice.Handle(ctx, request(t, protocol.TypePassTurn, nil))
	testutil.AssertEqual(t, "no room", aliceOut.lastError(t), "room_not_found")
}

func TestSession_SupersededConnection(t *testing.T) {
	ctx := context.Background()
	l, _ := newTestLobby(t)

	first, firstOut := open(t, l, "alice")
	first.Handle(ctx, request(t, protocol.TypeCreateRoom, protocol.CreateRoom{Mode: "classic"}))
	bob, bobOut := open(t, l, "bob")
	bob.Handle(ctx, request(t, protocol.TypeJoinRoom, protocol.JoinRoom{RoomCode: "AAAA"}))

	second, secondOut := open(t, l, "alice")
	second.Handle(ctx, request(t, protocol.TypeRejoin, protocol.JoinRoom{RoomCode: "AAAA"}))
	testutil.AssertEqual(t, "old connection told", firstOut.has(protocol.TypeSessionReplaced), true)

	first.Handle(ctx, request(t, protocol.TypeSubmitGuess, protocol.SubmitGuess{Word: "hello"}))
	testutil.AssertEqual(t, "old connection refused", firstOut.lastError(t), "session_replaced")
	testutil.AssertEqual(t, "round still running", bobOut.has(protocol.TypeRoundEnded), false)

	second.Handle(ctx, request(t, protocol.TypeSubmitGuess, protocol.SubmitGuess{Word: "hello"}))
	testutil.AssertEqual(t, "new connection plays", secondOut.has(protocol.TypeRoundEnded), true)
	testutil.AssertEqual(t, "bob saw the end", bobOut.has(protocol.TypeRoundEnded), true)
}

func TestIsSessionReplaced(t *testing.T) {
	b, err := json.Marshal(protocol.NewEvent(protocol.TypeSessionReplaced, protocol.SessionReplaced{Message: "bye"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "replaced", IsSessionReplaced(b), true)
	testutil.AssertEqual(t, "other", IsSessionReplaced([]byte(`{"type":"roomUpdate"}`)), false)
	testutil.AssertEqual(t, "garbage", IsSessionReplaced([]byte(`nope`)), false)
}

var _ messaging.Bus = (*memoryBus)(nil)
