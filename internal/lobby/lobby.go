package lobby

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/pixil98/go-wordle/internal/messaging"
	"github.com/pixil98/go-wordle/internal/protocol"
	"github.com/pixil98/go-wordle/internal/rooms"
)

// Lobby opens sessions for client connections and routes their requests to
// the room registry.
type Lobby struct {
	reg *rooms.Registry
	bus messaging.Bus
}

func New(reg *rooms.Registry, bus messaging.Bus) *Lobby {
	return &Lobby{reg: reg, bus: bus}
}

// Rooms summarizes every live room.
func (l *Lobby) Rooms() []rooms.Summary {
	return l.reg.Rooms()
}

// Open starts a session. Every event for the session, including errors for
// its own requests, is handed to deliver as framed JSON in the order it was
// produced. deliver must not call back into the session.
func (l *Lobby) Open(ctx context.Context, deliver func([]byte)) (*Session, error) {
	id := uuid.NewString()

	unsub, err := l.bus.Subscribe(messaging.ConnSubject(id), deliver)
	if err != nil {
		return nil, fmt.Errorf("subscribing session %s: %w", id, err)
	}

	slog.DebugContext(ctx, "session opened", "connId", id)

	return &Session{
		id:    id,
		lobby: l,
		out:   messaging.NewOutbox(id, l.bus),
		unsub: unsub,
	}, nil
}

// Session is one client connection. A session speaks for at most one
// identity in at most one room at a time.
type Session struct {
	id    string
	lobby *Lobby
	out   rooms.Conn
	unsub func()

	mu       sync.Mutex
	identity string
	room     *rooms.Room
	closed   bool
}

func (s *Session) Id() string {
	return s.id
}

// Identity is the identity the session last entered a room as.
func (s *Session) Identity() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// SetIdentity sets the identity used when a request does not carry one.
func (s *Session) SetIdentity(identity string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = identity
}

// HandleMessage decodes a framed request and handles it.
func (s *Session) HandleMessage(ctx context.Context, b []byte) {
	env, err := protocol.DecodeEnvelope(b)
	if err != nil {
		s.fail(ctx, "", fmt.Errorf("%w: %w", rooms.ErrInvalidAction, err))
		return
	}
	s.Handle(ctx, env)
}

// Handle runs one request. Failures are reported to the client as an error
// event rather than returned.
func (s *Session) Handle(ctx context.Context, env protocol.Envelope) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if err := s.dispatch(ctx, env); err != nil {
		s.fail(ctx, env.Type, err)
	}
}

func (s *Session) fail(ctx context.Context, typ string, err error) {
	code := rooms.ErrorCode(err)
	msg := err.Error()
	if code == rooms.CodeInternal {
		slog.ErrorContext(ctx, "handling request", "connId", s.id, "type", typ, "error", err)
		msg = "internal error"
	} else {
		slog.DebugContext(ctx, "request rejected", "connId", s.id, "type", typ, "code", code)
	}
	s.out.Send(protocol.NewEvent(protocol.TypeError, protocol.Error{Code: code, Message: msg}))
}

func decode(env protocol.Envelope, v any) error {
	if err := env.DecodeData(v); err != nil {
		return fmt.Errorf("%w: %w", rooms.ErrInvalidAction, err)
	}
	return nil
}

func (s *Session) dispatch(ctx context.Context, env protocol.Envelope) error {
	reg := s.lobby.reg

	switch env.Type {
	case protocol.TypeCreateRoom:
		var req protocol.CreateRoom
		if err := decode(env, &req); err != nil {
			return err
		}
		identity := s.identityFor(req.Identity)
		room, err := reg.Create(req.Mode, req.Config, identity, s.out)
		if err != nil {
			return err
		}
		s.enter(ctx, room, identity)
		return nil

	case protocol.TypeJoinRoom, protocol.TypeRejoin:
		var req protocol.JoinRoom
		if err := decode(env, &req); err != nil {
			return err
		}
		identity := s.identityFor(req.Identity)
		join := reg.Join
		if env.Type == protocol.TypeRejoin {
			join = reg.Rejoin
		}
		room, err := join(req.RoomCode, identity, s.out)
		if err != nil {
			return err
		}
		s.enter(ctx, room, identity)
		return nil
	}

	room := s.room
	if room == nil {
		if !isRoomRequest(env.Type) {
			return fmt.Errorf("%w: unknown message type %q", rooms.ErrInvalidAction, env.Type)
		}
		return fmt.Errorf("%w: join a room first", rooms.ErrRoomNotFound)
	}

	c := rooms.Caller{Identity: s.identity, ConnId: s.id}

	switch env.Type {
	case protocol.TypeSubmitGuess:
		var req protocol.SubmitGuess
		if err := decode(env, &req); err != nil {
			return err
		}
		return room.Guess(c, req.Word)

	case protocol.TypePassTurn:
		return room.PassTurn(c)

	case protocol.TypeRequestRematch:
		return room.RequestRematch(c)

	case protocol.TypeStartGame:
		return room.StartGame(c)

	case protocol.TypeNextRound:
		var req protocol.NextRound
		if err := decode(env, &req); err != nil {
			return err
		}
		return room.NextRound(c, req.WordLength)

	case protocol.TypeSetSecret:
		var req protocol.SetSecret
		if err := decode(env, &req); err != nil {
			return err
		}
		return room.SetSecret(c, req.Word, req.Hint)

	case protocol.TypeReady:
		return room.Ready(c)

	case protocol.TypeReaction:
		var req protocol.Reaction
		if err := decode(env, &req); err != nil {
			return err
		}
		return room.React(c, req.Emoji)

	case protocol.TypeLeaveRoom:
		if err := room.Leave(c); err != nil {
			return err
		}
		s.room = nil
		return nil
	}

	return fmt.Errorf("%w: unknown message type %q", rooms.ErrInvalidAction, env.Type)
}

func isRoomRequest(typ string) bool {
	switch typ {
	case protocol.TypeSubmitGuess, protocol.TypePassTurn, protocol.TypeRequestRematch,
		protocol.TypeStartGame, protocol.TypeNextRound, protocol.TypeSetSecret,
		protocol.TypeReady, protocol.TypeReaction, protocol.TypeLeaveRoom:
		return true
	}
	return false
}

func (s *Session) identityFor(requested string) string {
	if requested != "" {
		return requested
	}
	return s.identity
}

// enter records room as the session's room. Moving to a different room
// releases the old one as if the connection had dropped there.
func (s *Session) enter(ctx context.Context, room *rooms.Room, identity string) {
	if s.room != nil && (s.room != room || s.identity != identity) {
		s.room.Disconnect(s.identity, s.id)
	}
	s.room = room
	s.identity = identity
	slog.InfoContext(ctx, "session entered room", "connId", s.id, "roomCode", room.Code(), "identity", identity)
}

// Close stops delivery and tells the room the connection is gone.
func (s *Session) Close(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.unsub()

	if s.room != nil {
		s.room.Disconnect(s.identity, s.id)
	}
	slog.DebugContext(ctx, "session closed", "connId", s.id, "identity", s.identity)
}

// IsSessionReplaced reports whether a framed event tells the session another
// connection took over.
func IsSessionReplaced(b []byte) bool {
	env, err := protocol.DecodeEnvelope(b)
	return err == nil && env.Type == protocol.TypeSessionReplaced
}
