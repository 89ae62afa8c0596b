package listener

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"

	"golang.org/x/crypto/ssh"
)

// SshListener serves terminal sessions over ssh. Anyone may connect; the
// identity token typed at the prompt is the only credential.
type SshListener struct {
	port    uint16
	cm      *ConnectionManager
	hostKey ssh.Signer
}

func NewSshListener(port uint16, cm *ConnectionManager, hostKey ssh.Signer) *SshListener {
	return &SshListener{
		port:    port,
		cm:      cm,
		hostKey: hostKey,
	}
}

func (l *SshListener) Start(ctx context.Context) error {
	config := &ssh.ServerConfig{
		NoClientAuth: true,
	}
	config.AddHostKey(l.hostKey)

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", fmt.Sprintf(":%d", l.port))
	if err != nil {
		return fmt.Errorf("listening on port %d: %w", l.port, err)
	}

	slog.InfoContext(ctx, "listening for ssh", "port", l.port)

	connCtx, cancelConns := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	defer func() {
		cancelConns()
		wg.Wait()
	}()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return fmt.Errorf("ssh listener closed: %w", err)
			}
			slog.ErrorContext(ctx, "accepting ssh connection", "error", err)
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			l.serveConn(connCtx, conn, config)
		}()
	}
}

func (l *SshListener) serveConn(ctx context.Context, conn net.Conn, config *ssh.ServerConfig) {
	defer conn.Close()

	sshConn, chans, reqs, err := ssh.NewServerConn(conn, config)
	if err != nil {
		slog.DebugContext(ctx, "ssh handshake", "remote", conn.RemoteAddr(), "error", err)
		return
	}
	defer sshConn.Close()

	slog.InfoContext(ctx, "ssh connection established", "remote", conn.RemoteAddr(), "user", sshConn.User())

	// Closing the connection ends the channel loop below.
	go func() {
		<-ctx.Done()
		sshConn.Close()
	}()

	go ssh.DiscardRequests(reqs)

	for newChan := range chans {
		if newChan.ChannelType() != "session" {
			newChan.Reject(ssh.UnknownChannelType, "unknown channel type")
			continue
		}

		ch, requests, err := newChan.Accept()
		if err != nil {
			slog.ErrorContext(ctx, "accepting ssh channel", "error", err)
			continue
		}

		if !waitForShell(ctx, requests) {
			ch.Close()
			continue
		}

		l.cm.AcceptConnection(ctx, newCRLFReadWriter(ch))
		closeSession(ch)
	}
}

// waitForShell answers channel requests until the client asks for a shell.
// A pty is refused so the client keeps local echo and line editing.
func waitForShell(ctx context.Context, in <-chan *ssh.Request) bool {
	shell := make(chan struct{})
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		opened := false
		for req := range in {
			switch {
			case req.Type == "shell" && !opened:
				opened = true
				req.Reply(true, nil)
				close(shell)
			case req.WantReply:
				req.Reply(false, nil)
			}
		}
	}()

	select {
	case <-shell:
		return true
	case <-gone:
		select {
		case <-shell:
			return true
		default:
			return false
		}
	case <-ctx.Done():
		return false
	}
}

// closeSession reports a clean exit so the client hangs up instead of
// waiting on an idle channel.
func closeSession(ch ssh.Channel) {
	status := ssh.Marshal(struct{ Status uint32 }{0})
	if _, err := ch.SendRequest("exit-status", false, status); err != nil && !errors.Is(err, io.EOF) {
		slog.Debug("sending ssh exit status", "error", err)
	}
	ch.Close()
}
