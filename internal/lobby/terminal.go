package lobby

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/pixil98/go-wordle/internal/display"
	"github.com/pixil98/go-wordle/internal/protocol"
)

// Terminal plays the game over a line based connection such as telnet or ssh.
type Terminal struct {
	lobby *Lobby
	t     display.Translator
	lang  string
}

func NewTerminal(l *Lobby, t display.Translator, lang string) *Terminal {
	return &Terminal{lobby: l, t: t, lang: lang}
}

// Run asks for an identity and then reads commands until the player quits,
// the connection drops or ctx is cancelled.
func (t *Terminal) Run(ctx context.Context, rw io.ReadWriter) error {
	r := display.NewRenderer(t.t, t.lang)
	br := bufio.NewReader(rw)

	identity, err := prompt(br, rw, r.Text("prompt.identity", nil),
		withValidator(func(s string) (bool, string) {
			if ValidIdentity(s) {
				return true, ""
			}
			return false, r.Text("prompt.invalidIdentity", nil)
		}),
		withMaxTries(3),
	)
	if err != nil {
		return fmt.Errorf("reading identity: %w", err)
	}
	r.SetIdentity(identity)

	done := make(chan struct{})
	defer close(done)

	msgs := make(chan []byte, 64)
	sess, err := t.lobby.Open(ctx, func(b []byte) {
		select {
		case msgs <- b:
		case <-done:
		}
	})
	if err != nil {
		return err
	}
	defer sess.Close(ctx)
	sess.SetIdentity(identity)

	slog.InfoContext(ctx, "terminal session started", "connId", sess.Id(), "identity", identity)

	term := &terminalSession{rw: rw, r: r, sess: sess}
	return term.loop(ctx, br, msgs)
}

type terminalSession struct {
	rw   io.ReadWriter
	r    *display.Renderer
	sess *Session
}

func (ts *terminalSession) loop(ctx context.Context, br *bufio.Reader, msgs <-chan []byte) error {
	inputChan := make(chan string)
	inputErrChan := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(br)
		for scanner.Scan() {
			inputChan <- scanner.Text()
		}
		inputErrChan <- scanner.Err()
		close(inputChan)
	}()

	err := ts.writeLine(ts.r.Text("welcome", map[string]any{"Identity": ts.sess.Identity()}))
	if err != nil {
		return err
	}
	if err := ts.prompt(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case msg := <-msgs:
			text, err := ts.r.Render(msg)
			if err != nil {
				slog.Warn("rendering event", "connId", ts.sess.Id(), "error", err)
				continue
			}
			if text == "" {
				continue
			}
			if err := ts.writeLine("\n" + text); err != nil {
				return err
			}
			if IsSessionReplaced(msg) {
				return nil
			}
			if err := ts.prompt(); err != nil {
				return err
			}

		case line, ok := <-inputChan:
			if !ok {
				select {
				case err := <-inputErrChan:
					return err
				default:
					return nil
				}
			}

			quit, err := ts.exec(ctx, strings.TrimSpace(line))
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
			if err := ts.prompt(); err != nil {
				return err
			}
		}
	}
}

// exec runs one typed line. Requests that reach a room answer through the
// event stream, so only local problems are written here.
func (ts *terminalSession) exec(ctx context.Context, line string) (bool, error) {
	if line == "" {
		return false, nil
	}

	env, err := ParseCommand(line)
	if err != nil {
		var userErr *UserError
		switch {
		case errors.Is(err, ErrQuit):
			return true, ts.writeLine(ts.r.Text("bye", nil))
		case errors.Is(err, ErrHelp):
			return false, ts.writeLine(ts.r.Text("help", nil))
		case errors.As(err, &userErr):
			return false, ts.writeLine(ts.r.Text(userErr.Key, userErr.Data))
		default:
			return false, fmt.Errorf("parsing command: %w", err)
		}
	}

	if env.Type == protocol.TypeCreateRoom {
		var req protocol.CreateRoom
		if err := env.DecodeData(&req); err == nil && req.Config.Language != "" {
			ts.r.SetLanguage(req.Config.Language)
		}
	}

	ts.sess.Handle(ctx, env)
	return false, nil
}

func (ts *terminalSession) prompt() error {
	_, err := ts.rw.Write([]byte("> "))
	return err
}

func (ts *terminalSession) writeLine(msg string) error {
	_, err := ts.rw.Write([]byte(msg + "\n\n"))
	return err
}
