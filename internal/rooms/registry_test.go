package rooms

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/pixil98/go-testutil"
	"github.com/pixil98/go-wordle/internal/protocol"
)

func TestRegistry_Create(t *testing.T) {
	tests := map[string]struct {
		mode     string
		cfg      protocol.RoomConfig
		identity string
		expErr   error
		expTimer bool
		expLen   int
	}{
		"classic defaults": {
			mode:     "classic",
			identity: "alice",
			expLen:   5,
		},
		"relay has timer by default": {
			mode:     "relay",
			identity: "alice",
			expTimer: true,
			expLen:   5,
		},
		"timer can be disabled": {
			mode:     "relay",
			cfg:      protocol.RoomConfig{TimerEnabled: boolPtr(false)},
			identity: "alice",
			expLen:   5,
		},
		"race never has a timer": {
			mode:     "race",
			cfg:      protocol.RoomConfig{TimerEnabled: boolPtr(true)},
			identity: "alice",
			expLen:   5,
		},
		"chosen length": {
			mode:     "race",
			cfg:      protocol.RoomConfig{WordLengths: []int{6, 4}},
			identity: "alice",
			expLen:   6,
		},
		"missing identity": {
			mode:   "classic",
			expErr: ErrMissingIdentity,
		},
		"unknown mode": {
			mode:     "solitaire",
			identity: "alice",
			expErr:   ErrInvalidAction,
		},
		"unavailable length": {
			mode:     "race",
			cfg:      protocol.RoomConfig{WordLengths: []int{9}},
			identity: "alice",
			expErr:   ErrInvalidAction,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			room, err := f.reg.Create(tt.mode, tt.cfg, tt.identity, f.conn("alice"))
			if tt.expErr != nil {
				if !errors.Is(err, tt.expErr) {
					t.Fatalf("expected %v, got %v", tt.expErr, err)
				}
				testutil.AssertEqual(t, "rooms", f.reg.Len(), 0)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			testutil.AssertEqual(t, "code", room.Code(), "AAAA")
			testutil.AssertEqual(t, "status", room.Status(), StatusLobby)
			testutil.AssertEqual(t, "timer", room.cfg.TimerEnabled, tt.expTimer)
			testutil.AssertEqual(t, "word length", room.wordLength, tt.expLen)
			testutil.AssertEqual(t, "host", room.Summary().Host, "alice")

			var created protocol.RoomCreated
			if !f.conn("alice").last(t, protocol.TypeRoomCreated, &created) {
				t.Fatal("expected roomCreated")
			}
			testutil.AssertEqual(t, "created code", created.RoomCode, "AAAA")
			testutil.AssertEqual(t, "roster sent", f.conn("alice").count(protocol.TypeRoomUpdate), 1)
		})
	}
}

func TestRegistry_CreateSkipsLiveCodes(t *testing.T) {
	codes := []string{"AAAA", "AAAA", "AAAA", "BBBB"}
	i := 0
	f := newFixture(t, WithCodeSource(func() string {
		c := codes[i]
		i++
		return c
	}))

	first := f.create(t, "race", protocol.RoomConfig{}, "alice")
	second := f.create(t, "race", protocol.RoomConfig{}, "bob")

	testutil.AssertEqual(t, "first", first.Code(), "AAAA")
	testutil.AssertEqual(t, "second", second.Code(), "BBBB")
}

func TestRegistry_CodeSpaceExhausted(t *testing.T) {
	f := newFixture(t, WithCodeSource(func() string { return "ZZZZ" }))
	f.create(t, "race", protocol.RoomConfig{}, "alice")

	_, err := f.reg.Create("race", protocol.RoomConfig{}, "bob", f.conn("bob"))
	if !errors.Is(err, ErrCodeSpaceExhausted) {
		t.Fatalf("expected ErrCodeSpaceExhausted, got %v", err)
	}
}

func TestRegistry_CodeReusedAfterDestroy(t *testing.T) {
	f := newFixture(t, WithCodeSource(func() string { return "ZZZZ" }))
	room := f.create(t, "race", protocol.RoomConfig{}, "alice")

	if err := f.reg.Destroy(room.Code()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	again := f.create(t, "race", protocol.RoomConfig{}, "bob")
	testutil.AssertEqual(t, "code", again.Code(), "ZZZZ")
}

func TestRegistry_Join(t *testing.T) {
	tests := map[string]struct {
		setup    func(t *testing.T, f *fixture) string
		identity string
		expErr   error
	}{
		"joins lobby": {
			setup: func(t *testing.T, f *fixture) string {
				return f.create(t, "race", protocol.RoomConfig{}, "alice").Code()
			},
			identity: "bob",
		},
		"code is case insensitive": {
			setup: func(t *testing.T, f *fixture) string {
				f.create(t, "race", protocol.RoomConfig{}, "alice")
				return " aaaa "
			},
			identity: "bob",
		},
		"unknown room": {
			setup:    func(t *testing.T, f *fixture) string { return "NOPE" },
			identity: "bob",
			expErr:   ErrRoomNotFound,
		},
		"missing identity": {
			setup: func(t *testing.T, f *fixture) string {
				return f.create(t, "race", protocol.RoomConfig{}, "alice").Code()
			},
			expErr: ErrMissingIdentity,
		},
		"full pair room": {
			setup: func(t *testing.T, f *fixture) string {
				room := f.create(t, "duel", protocol.RoomConfig{}, "alice")
				f.join(t, room, "bob")
				return room.Code()
			},
			identity: "carol",
			expErr:   ErrRoomFull,
		},
		"full multi room": {
			setup: func(t *testing.T, f *fixture) string {
				room := f.create(t, "race", protocol.RoomConfig{}, "p0")
				for i := 1; i < DefaultMaxPlayers; i++ {
					f.join(t, room, fmt.Sprintf("p%d", i))
				}
				return room.Code()
			},
			identity: "late",
			expErr:   ErrRoomFull,
		},
		"started room": {
			setup: func(t *testing.T, f *fixture) string {
				room := f.create(t, "race", protocol.RoomConfig{}, "alice")
				if err := room.StartGame(f.as("alice")); err != nil {
					t.Fatalf("starting: %v", err)
				}
				return room.Code()
			},
			identity: "bob",
			expErr:   ErrGameAlreadyStarted,
		},
		"member rejoining a started room": {
			setup: func(t *testing.T, f *fixture) string {
				room := f.create(t, "race", protocol.RoomConfig{}, "alice")
				f.join(t, room, "bob")
				if err := room.StartGame(f.as("alice")); err != nil {
					t.Fatalf("starting: %v", err)
				}
				return room.Code()
			},
			identity: "bob",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			code := tt.setup(t, f)

			_, err := f.reg.Join(code, tt.identity, newConn("fresh"))
			if tt.expErr != nil {
				if !errors.Is(err, tt.expErr) {
					t.Fatalf("expected %v, got %v", tt.expErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestRegistry_JoinBroadcastsRoster(t *testing.T) {
	f := newFixture(t)
	room := f.create(t, "race", protocol.RoomConfig{}, "alice")
	f.join(t, room, "bob", "bob")

	var update protocol.RoomUpdate
	if !f.conn("alice").last(t, protocol.TypeRoomUpdate, &update) {
		t.Fatal("expected roomUpdate")
	}
	testutil.AssertEqual(t, "roster size", len(update.Roster), 2)
	testutil.AssertEqual(t, "second member", update.Roster[1].Identity, "bob")
	testutil.AssertEqual(t, "host flag", update.Roster[0].Host, true)
	testutil.AssertEqual(t, "bob synced on repeat join", f.conn("bob").count(protocol.TypeStateSync), 1)
}

func TestRegistry_Destroy(t *testing.T) {
	f := newFixture(t)
	room := f.create(t, "relay", protocol.RoomConfig{}, "alice")
	f.join(t, room, "bob")
	if err := room.StartGame(f.as("alice")); err != nil {
		t.Fatalf("starting: %v", err)
	}
	room.Disconnect("bob", f.conn("bob").Id())

	if err := f.reg.Destroy(room.Code()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "pending timers", f.clock.pending(), 0)
	testutil.AssertEqual(t, "rooms", f.reg.Len(), 0)
	if _, err := f.reg.Lookup(room.Code()); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("expected ErrRoomNotFound, got %v", err)
	}
	if err := room.Guess(f.as("alice"), "HELLO"); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("expected guesses on a destroyed room to fail, got %v", err)
	}
	if err := f.reg.Destroy(room.Code()); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("expected second destroy to fail, got %v", err)
	}
}

func TestRegistry_TickSweepsIdleRooms(t *testing.T) {
	f := newFixture(t, WithSettings(Settings{
		DisconnectGrace:    time.Hour,
		TurnDuration:       time.Minute,
		LetterTurnDuration: time.Minute,
		TimerTick:          time.Second,
		MaxPlayers:         4,
		IdleRoomTTL:        10 * time.Minute,
	}))
	idle := f.create(t, "race", protocol.RoomConfig{}, "alice")
	f.clock.Advance(5 * time.Minute)
	busy := f.create(t, "race", protocol.RoomConfig{}, "bob")

	f.clock.Advance(6 * time.Minute)
	if err := f.reg.Tick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := f.reg.Lookup(idle.Code()); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("expected idle room to be swept, got %v", err)
	}
	if _, err := f.reg.Lookup(busy.Code()); err != nil {
		t.Errorf("expected busy room to survive, got %v", err)
	}

	var e protocol.Error
	if !f.conn("alice").last(t, protocol.TypeError, &e) {
		t.Fatal("expected alice to be told")
	}
	testutil.AssertEqual(t, "code", e.Code, CodeRoomExpired)
}

func TestRegistry_Rooms(t *testing.T) {
	f := newFixture(t)
	f.create(t, "race", protocol.RoomConfig{}, "alice")
	b := f.create(t, "duel", protocol.RoomConfig{}, "bob")
	f.join(t, b, "carol")

	rooms := f.reg.Rooms()
	testutil.AssertEqual(t, "count", len(rooms), 2)
	testutil.AssertEqual(t, "first", rooms[0].Code, "AAAA")
	testutil.AssertEqual(t, "second players", rooms[1].Players, 2)
	testutil.AssertEqual(t, "second mode", rooms[1].Mode, ModeDuel)
}

func TestErrorCode(t *testing.T) {
	tests := map[string]struct {
		err error
		exp string
	}{
		"sentinel":   {err: ErrRoomFull, exp: "room_full"},
		"wrapped":    {err: fmt.Errorf("%w: got 4 letters", ErrLengthMismatch), exp: "length_mismatch"},
		"turn":       {err: ErrTurnViolation, exp: "turn_violation"},
		"identity":   {err: ErrMissingIdentity, exp: "missing_identity"},
		"replaced":   {err: ErrSessionReplaced, exp: "session_replaced"},
		"unexpected": {err: errors.New("boom"), exp: CodeInternal},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, "code", ErrorCode(tt.err), tt.exp)
		})
	}
}
