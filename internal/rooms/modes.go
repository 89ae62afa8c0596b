package rooms

import (
	"fmt"
	"slices"
	"time"

	"github.com/pixil98/go-wordle/internal/protocol"
)

type Mode string

const (
	ModeSolo     Mode = "solo"
	ModeClassic  Mode = "classic"
	ModeRelay    Mode = "relay"
	ModeDuel     Mode = "duel"
	ModeRace     Mode = "race"
	ModeMarathon Mode = "marathon"
	ModeHangman  Mode = "hangman"
)

func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	if _, ok := modeRules[m]; !ok {
		return "", fmt.Errorf("%w: unknown mode %q", ErrInvalidAction, s)
	}
	return m, nil
}

var modeRules = map[Mode]rules{
	ModeSolo:     &soloRules{},
	ModeClassic:  &relayRules{pair: true},
	ModeRelay:    &relayRules{},
	ModeDuel:     &duelRules{},
	ModeRace:     &raceRules{},
	ModeMarathon: &marathonRules{},
	ModeHangman:  &hangmanRules{},
}

// Config is a room's resolved configuration.
type Config struct {
	Language      string
	WordLengths   []int
	TimerEnabled  bool
	HintsEnabled  bool
	RandomSecrets bool
}

// rules is what differs between modes: who may act when, and who sees what.
type rules interface {
	capacity(s Settings) int
	autoStart(cfg Config) bool
	hostStarts() bool
	turnBased() bool
	defaultTimer() bool
	turnDuration(s Settings) time.Duration

	// begin prepares secrets and per-round state. It runs after the
	// room's round state has been cleared and before status is playing.
	begin(r *Room) error
	guess(r *Room, m *member, word string) error
	// restart runs once rematch quorum is reached.
	restart(r *Room) error
	sync(r *Room, m *member, ss *protocol.StateSync)
	started(r *Room, m *member) protocol.GameStarted
}

// sharedRound holds the defaults for modes built around one shared secret.
type sharedRound struct{}

func (sharedRound) begin(r *Room) error {
	r.wordLength = r.pickLength()
	secret, err := r.reg.words.RandomSecret(r.cfg.Language, r.wordLength)
	if err != nil {
		return fmt.Errorf("choosing secret: %w", err)
	}
	r.secret = secret
	return nil
}

func (sharedRound) restart(r *Room) error {
	return r.startRound()
}

func (sharedRound) hostStarts() bool { return true }

func (sharedRound) defaultTimer() bool { return false }

func (sharedRound) turnDuration(s Settings) time.Duration { return s.TurnDuration }

func (sharedRound) started(r *Room, _ *member) protocol.GameStarted {
	return protocol.GameStarted{
		Mode:       string(r.mode),
		WordLength: r.wordLength,
		Roster:     r.identities(),
	}
}

// resolveConfig applies mode defaults and checks requested lengths.
func resolveConfig(mode Mode, rl rules, req protocol.RoomConfig, words Oracle) (Config, error) {
	cfg := Config{
		Language:      words.Language(req.Language),
		TimerEnabled:  rl.defaultTimer(),
		HintsEnabled:  req.HintsEnabled,
		RandomSecrets: req.RandomSecrets,
	}
	if req.TimerEnabled != nil {
		cfg.TimerEnabled = *req.TimerEnabled
	}
	if !rl.turnBased() {
		cfg.TimerEnabled = false
	}

	available := words.Lengths(cfg.Language)
	if len(available) == 0 {
		return Config{}, fmt.Errorf("%w: no words for %s", ErrInvalidAction, cfg.Language)
	}
	lengths := req.WordLengths
	if len(lengths) == 0 {
		lengths = []int{available[0]}
		if slices.Contains(available, 5) {
			lengths = []int{5}
		}
	}
	for _, n := range lengths {
		if !slices.Contains(available, n) {
			return Config{}, fmt.Errorf("%w: no %d letter words for %s", ErrInvalidAction, n, cfg.Language)
		}
	}
	if mode == ModeDuel || mode == ModeMarathon || mode == ModeClassic {
		lengths = lengths[:1]
	}
	cfg.WordLengths = slices.Clone(lengths)

	return cfg, nil
}
