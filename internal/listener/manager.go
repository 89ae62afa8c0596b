package listener

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/pixil98/go-wordle/internal/lobby"
)

// ConnectionManager hands accepted line based connections to a terminal
// session.
type ConnectionManager struct {
	term *lobby.Terminal
}

func NewConnectionManager(term *lobby.Terminal) *ConnectionManager {
	return &ConnectionManager{
		term: term,
	}
}

func (m *ConnectionManager) AcceptConnection(ctx context.Context, conn io.ReadWriter) {
	err := m.term.Run(ctx, conn)
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.WarnContext(ctx, "terminal session", "error", err)
	}
}
