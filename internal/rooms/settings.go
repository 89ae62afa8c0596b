package rooms

import "time"

const (
	DefaultDisconnectGrace    = 3 * time.Minute
	DefaultTurnDuration       = 45 * time.Second
	DefaultLetterTurnDuration = 30 * time.Second
	DefaultTimerTick          = time.Second
	DefaultMaxPlayers         = 10
	DefaultIdleRoomTTL        = 2 * time.Hour

	codeLength       = 4
	codeAlphabet     = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	maxCodeAttempts  = 1000
	maxReactionBytes = 16
)

// Settings are the server-wide knobs shared by every room.
type Settings struct {
	DisconnectGrace    time.Duration
	TurnDuration       time.Duration
	LetterTurnDuration time.Duration
	TimerTick          time.Duration
	MaxPlayers         int
	IdleRoomTTL        time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		DisconnectGrace:    DefaultDisconnectGrace,
		TurnDuration:       DefaultTurnDuration,
		LetterTurnDuration: DefaultLetterTurnDuration,
		TimerTick:          DefaultTimerTick,
		MaxPlayers:         DefaultMaxPlayers,
		IdleRoomTTL:        DefaultIdleRoomTTL,
	}
}

type RegistryOpt func(*Registry)

func WithSettings(s Settings) RegistryOpt {
	return func(r *Registry) {
		r.settings = s
	}
}

func WithClock(c Clock) RegistryOpt {
	return func(r *Registry) {
		r.clock = c
	}
}

// WithCodeSource replaces the room code generator.
func WithCodeSource(f func() string) RegistryOpt {
	return func(r *Registry) {
		r.newCode = f
	}
}

// WithRandom replaces the source used to pick word lengths.
func WithRandom(intn func(int) int) RegistryOpt {
	return func(r *Registry) {
		r.intn = intn
	}
}
