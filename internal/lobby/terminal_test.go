package lobby

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/pixil98/go-testutil"
	"github.com/pixil98/go-wordle/internal/i18n"
	"github.com/pixil98/go-wordle/internal/storage"
)

// scriptedConn reads a fixed script and records everything written.
type scriptedConn struct {
	io.Reader

	mu  sync.Mutex
	out bytes.Buffer
}

func (c *scriptedConn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.out.Write(p)
}

func (c *scriptedConn) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.out.String()
}

func newTestTerminal(t *testing.T) (*Terminal, *Lobby) {
	t.Helper()
	store, err := storage.NewFileStore[*i18n.Messages]("../../assets/i18n")
	if err != nil {
		t.Fatalf("loading messages: %v", err)
	}
	catalog, err := i18n.NewCatalog(store)
	if err != nil {
		t.Fatalf("building catalog: %v", err)
	}
	l, _ := newTestLobby(t)
	return NewTerminal(l, catalog, "en"), l
}

func TestTerminal_Run(t *testing.T) {
	tests := map[string]struct {
		script   string
		exp      []string
		expError string
	}{
		"quit": {
			script: "alice\nquit\n",
			exp:    []string{"Welcome, alice.", "Goodbye."},
		},
		"retries identity": {
			script: "a!\nalice\nquit\n",
			exp:    []string{"That token will not work.", "Welcome, alice."},
		},
		"help and unknown": {
			script: "alice\nhelp\ndance\nguess\nquit\n",
			exp:    []string{"Commands:", `Unknown command "dance".`, "Usage: guess <word>"},
		},
		"too many tries": {
			script:   "!\n?\nno way\n",
			expError: "too many tries",
		},
		"connection dropped": {
			script: "alice\n",
			exp:    []string{"Welcome, alice."},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			term, _ := newTestTerminal(t)
			conn := &scriptedConn{Reader: strings.NewReader(tt.script)}

			err := term.Run(context.Background(), conn)
			if tt.expError != "" {
				testutil.AssertErrorContains(t, err, tt.expError)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			got := conn.String()
			for _, want := range tt.exp {
				if !strings.Contains(got, want) {
					t.Errorf("output missing %q:\n%s", want, got)
				}
			}
		})
	}
}

func TestTerminal_CreateRoom(t *testing.T) {
	term, l := newTestTerminal(t)
	conn := &scriptedConn{Reader: strings.NewReader("alice\ncreate race\n")}

	if err := term.Run(context.Background(), conn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	summaries := l.Rooms()
	testutil.AssertEqual(t, "rooms", len(summaries), 1)
	testutil.AssertEqual(t, "host", summaries[0].Host, "alice")
	testutil.AssertEqual(t, "disconnected on close", summaries[0].Connected, 0)
}
