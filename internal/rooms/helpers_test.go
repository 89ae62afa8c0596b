package rooms

import (
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pixil98/go-wordle/internal/protocol"
)

type fakeTimer struct {
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// fakeClock only moves when Advance is called. Callbacks run on the caller's
// goroutine, in deadline order.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		var next *fakeTimer
		for _, t := range c.timers {
			if t.stopped || t.fired || t.at.After(target) {
				continue
			}
			if next == nil || t.at.Before(next.at) {
				next = t
			}
		}
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		next.fired = true
		c.now = next.at
		c.mu.Unlock()

		next.f()
	}
}

// pending counts timers that could still fire.
func (c *fakeClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type recordingConn struct {
	id string

	mu     sync.Mutex
	events []protocol.Event
}

func newConn(id string) *recordingConn {
	return &recordingConn{id: id}
}

func (c *recordingConn) Id() string { return c.id }

func (c *recordingConn) Send(ev protocol.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *recordingConn) count(typ string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, ev := range c.events {
		if ev.Type == typ {
			n++
		}
	}
	return n
}

// last decodes the payload of the most recent event of typ into out.
func (c *recordingConn) last(t *testing.T, typ string, out any) bool {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.events) - 1; i >= 0; i-- {
		if c.events[i].Type != typ {
			continue
		}
		b, err := json.Marshal(c.events[i].Data)
		if err != nil {
			t.Fatalf("marshalling %s: %v", typ, err)
		}
		if out != nil {
			if err := json.Unmarshal(b, out); err != nil {
				t.Fatalf("unmarshalling %s: %v", typ, err)
			}
		}
		return true
	}
	return false
}

func (c *recordingConn) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = nil
}

// stubOracle accepts every word except those listed in rejected.
type stubOracle struct {
	secrets  map[int]string
	rejected map[string]bool
}

func newOracle() *stubOracle {
	return &stubOracle{
		secrets:  map[int]string{4: "ROSA", 5: "HELLO", 6: "BANANA"},
		rejected: map[string]bool{},
	}
}

func (o *stubOracle) IsValidWord(word, _ string) bool { return !o.rejected[word] }

func (o *stubOracle) RandomSecret(_ string, length int) (string, error) {
	return o.secrets[length], nil
}

func (o *stubOracle) Normalize(word, _ string) string {
	return strings.ToUpper(strings.TrimSpace(word))
}

func (o *stubOracle) Language(lang string) string {
	if lang == "en" {
		return "en"
	}
	return "it"
}

func (o *stubOracle) Lengths(string) []int {
	var out []int
	for n := range o.secrets {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

type fixture struct {
	reg   *Registry
	clock *fakeClock
	words *stubOracle
	conns map[string]*recordingConn
}

func newFixture(t *testing.T, opts ...RegistryOpt) *fixture {
	t.Helper()
	f := &fixture{
		clock: newFakeClock(),
		words: newOracle(),
		conns: map[string]*recordingConn{},
	}
	codes := 0
	base := []RegistryOpt{
		WithClock(f.clock),
		WithCodeSource(func() string {
			codes++
			return []string{"AAAA", "BBBB", "CCCC", "DDDD", "EEEE"}[(codes-1)%5]
		}),
		WithRandom(func(int) int { return 0 }),
	}
	f.reg = NewRegistry(f.words, append(base, opts...)...)
	return f
}

func (f *fixture) conn(identity string) *recordingConn {
	c, ok := f.conns[identity]
	if !ok {
		c = newConn("conn-" + identity)
		f.conns[identity] = c
	}
	return c
}

// as acts for identity through its fixture connection.
func (f *fixture) as(identity string) Caller {
	return Caller{Identity: identity, ConnId: f.conn(identity).Id()}
}

func (f *fixture) create(t *testing.T, mode string, cfg protocol.RoomConfig, host string) *Room {
	t.Helper()
	room, err := f.reg.Create(mode, cfg, host, f.conn(host))
	if err != nil {
		t.Fatalf("creating room: %v", err)
	}
	return room
}

func (f *fixture) join(t *testing.T, room *Room, identities ...string) {
	t.Helper()
	for _, id := range identities {
		if _, err := f.reg.Join(room.Code(), id, f.conn(id)); err != nil {
			t.Fatalf("joining %s: %v", id, err)
		}
	}
}

func boolPtr(b bool) *bool { return &b }
