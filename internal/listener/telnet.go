package listener

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/iammegalith/telnet"
)

// TelnetListener serves the line-based terminal game over plain telnet.
type TelnetListener struct {
	port uint16
	cm   *ConnectionManager
}

func NewTelnetListener(port uint16, cm *ConnectionManager) *TelnetListener {
	return &TelnetListener{
		port: port,
		cm:   cm,
	}
}

func (l *TelnetListener) Start(ctx context.Context) error {
	players := newTelnetPlayers(l.cm.AcceptConnection)
	svr := telnet.NewServer(fmt.Sprintf(":%d", l.port), players)

	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-ctx.Done():
			svr.Stop()
			players.hangUp()
		case <-stopped:
		}
	}()

	slog.InfoContext(ctx, "listening for telnet", "port", l.port)

	if err := svr.ListenAndServe(); err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return fmt.Errorf("telnet port %d is already in use", l.port)
		}
		return fmt.Errorf("serving telnet on port %d: %w", l.port, err)
	}
	return nil
}

// telnetPlayers runs one terminal session per telnet connection. Every
// session shares ctx so shutdown hangs them all up together.
type telnetPlayers struct {
	play   func(context.Context, io.ReadWriter)
	ctx    context.Context
	cancel context.CancelFunc

	wg     sync.WaitGroup
	online atomic.Int64
}

func newTelnetPlayers(play func(context.Context, io.ReadWriter)) *telnetPlayers {
	ctx, cancel := context.WithCancel(context.Background())
	return &telnetPlayers{play: play, ctx: ctx, cancel: cancel}
}

func (p *telnetPlayers) HandleTelnet(conn *telnet.Connection) {
	p.wg.Add(1)
	defer p.wg.Done()

	slog.Debug("telnet player connected", "online", p.online.Add(1))
	defer func() {
		slog.Debug("telnet player disconnected", "online", p.online.Add(-1))
		if err := conn.Close(); err != nil {
			slog.Warn("closing telnet connection", "error", err)
		}
	}()

	p.play(p.ctx, newCRLFReadWriter(conn))
}

// hangUp ends every session and waits for them to finish.
func (p *telnetPlayers) hangUp() {
	p.cancel()
	p.wg.Wait()
}
