package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-wordle/internal/rooms"
)

// RoomsConfig overrides the registry's defaults. Empty fields keep them.
type RoomsConfig struct {
	DisconnectGrace    string `json:"disconnect_grace"`
	TurnDuration       string `json:"turn_duration"`
	LetterTurnDuration string `json:"letter_turn_duration"`
	TimerTick          string `json:"timer_tick"`
	MaxPlayers         int    `json:"max_players"`
	IdleRoomTTL        string `json:"idle_room_ttl"`
}

func (c *RoomsConfig) durations() map[string]string {
	return map[string]string{
		"disconnect_grace":     c.DisconnectGrace,
		"turn_duration":        c.TurnDuration,
		"letter_turn_duration": c.LetterTurnDuration,
		"timer_tick":           c.TimerTick,
		"idle_room_ttl":        c.IdleRoomTTL,
	}
}

func (c *RoomsConfig) validate() error {
	el := errors.NewErrorList()

	for name, v := range c.durations() {
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			el.Add(fmt.Errorf("rooms: parsing %s: %w", name, err))
		} else if d <= 0 {
			el.Add(fmt.Errorf("rooms: %s must be positive", name))
		}
	}
	if c.MaxPlayers != 0 && (c.MaxPlayers < 2 || c.MaxPlayers > rooms.DefaultMaxPlayers) {
		el.Add(fmt.Errorf("rooms: max_players must be between 2 and %d", rooms.DefaultMaxPlayers))
	}

	return el.Err()
}

func (c *RoomsConfig) Settings() (rooms.Settings, error) {
	s := rooms.DefaultSettings()

	fields := []struct {
		value string
		dst   *time.Duration
	}{
		{c.DisconnectGrace, &s.DisconnectGrace},
		{c.TurnDuration, &s.TurnDuration},
		{c.LetterTurnDuration, &s.LetterTurnDuration},
		{c.TimerTick, &s.TimerTick},
		{c.IdleRoomTTL, &s.IdleRoomTTL},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		d, err := time.ParseDuration(f.value)
		if err != nil {
			return rooms.Settings{}, fmt.Errorf("parsing %q: %w", f.value, err)
		}
		*f.dst = d
	}
	if c.MaxPlayers != 0 {
		s.MaxPlayers = c.MaxPlayers
	}

	return s, nil
}
