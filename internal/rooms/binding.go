package rooms

import (
	"log/slog"

	"github.com/pixil98/go-wordle/internal/protocol"
)

// Message keys carried by connectionStatus events.
const (
	StatusConnectionLost = "connection_lost"
	StatusReconnected    = "reconnected"
	StatusOpponentGone   = "opponent_gone"
	StatusPlayerLeft     = "player_left"
)

const sessionReplacedMessage = "Another connection has taken over your session."

func (r *Room) join(identity string, conn Conn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRoomNotFound
	}
	if m := r.member(identity); m != nil {
		r.bind(m, conn)
		r.sendSync(m)
		return nil
	}
	if len(r.members) >= r.capacity() {
		return ErrRoomFull
	}
	if r.status != StatusLobby {
		return ErrGameAlreadyStarted
	}

	r.members = append(r.members, &member{
		identity:  identity,
		conn:      conn,
		connected: true,
	})
	r.lastActivity = r.reg.clock.Now()

	slog.Info("player joined", "roomCode", r.code, "identity", identity, "players", len(r.members))
	r.broadcastRoster()

	if r.rules.autoStart(r.cfg) && len(r.members) == r.capacity() {
		if err := r.startRound(); err != nil {
			slog.Error("starting round", "roomCode", r.code, "error", err)
		}
	}
	return nil
}

func (r *Room) rejoin(identity string, conn Conn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRoomNotFound
	}
	m := r.member(identity)
	if m == nil {
		return ErrUnknownIdentity
	}
	r.bind(m, conn)
	r.sendSync(m)
	return nil
}

// bind makes conn the live connection for m. A different earlier connection is
// told it was replaced; any pending eviction is cancelled.
func (r *Room) bind(m *member, conn Conn) {
	if m.conn != nil && m.conn.Id() != conn.Id() {
		m.conn.Send(protocol.NewEvent(protocol.TypeSessionReplaced, protocol.SessionReplaced{Message: sessionReplacedMessage}))
	}

	if m.evictTimer != nil {
		m.evictTimer.Stop()
		m.evictTimer = nil
	}
	m.evictGen++

	wasConnected := m.connected
	m.conn = conn
	m.connected = true
	r.lastActivity = r.reg.clock.Now()

	if !wasConnected {
		slog.Info("player reconnected", "roomCode", r.code, "identity", m.identity)
		r.broadcastExcept(m.identity, protocol.NewEvent(protocol.TypeConnectionStatus, protocol.ConnectionStatus{
			Identity:  m.identity,
			Connected: true,
			Message:   StatusReconnected,
		}))
		r.broadcastRoster()
	}
}

// Resolve returns the connection currently bound to identity, if any.
func (r *Room) Resolve(identity string) (Conn, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := r.member(identity)
	if m == nil || m.conn == nil {
		return nil, false
	}
	return m.conn, true
}

// Disconnect records that connId dropped. It is ignored unless connId is still
// the live connection for identity, so a superseded connection closing late
// cannot mark its successor as gone.
func (r *Room) Disconnect(identity, connId string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	m := r.member(identity)
	if m == nil || m.conn == nil || m.conn.Id() != connId {
		return
	}

	m.conn = nil
	m.connected = false
	m.evictGen++
	gen := m.evictGen
	m.evictTimer = r.reg.clock.AfterFunc(r.reg.settings.DisconnectGrace, func() {
		r.expire(identity, gen)
	})

	slog.Info("player disconnected", "roomCode", r.code, "identity", identity, "grace", r.reg.settings.DisconnectGrace)

	r.broadcastExcept(identity, protocol.NewEvent(protocol.TypeConnectionStatus, protocol.ConnectionStatus{
		Identity:  identity,
		Connected: false,
		Message:   StatusConnectionLost,
	}))
	r.broadcastRoster()

	if r.status == StatusPlaying && r.rules.turnBased() && r.turnHolder() == identity {
		r.advanceTurn(causeDisconnect)
	}
}

// expire runs when a grace period lapses. gen ties it to the disconnect that
// scheduled it; a rejoin or later disconnect bumps the generation.
func (r *Room) expire(identity string, gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	m := r.member(identity)
	if m == nil || m.connected || m.evictGen != gen {
		return
	}
	m.evictTimer = nil

	slog.Info("grace period expired", "roomCode", r.code, "identity", identity)
	r.forfeit(m, StatusOpponentGone)
}

// Leave removes the caller's identity from the room immediately.
func (r *Room) Leave(c Caller) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.actor(c)
	if err != nil {
		return err
	}
	if m.evictTimer != nil {
		m.evictTimer.Stop()
		m.evictTimer = nil
	}
	m.evictGen++

	slog.Info("player left", "roomCode", r.code, "identity", m.identity)
	r.forfeit(m, StatusPlayerLeft)
	return nil
}

// forfeit permanently drops m. Two player rooms cannot continue without
// both players, so the survivor is told and the room is torn down.
func (r *Room) forfeit(m *member, reason string) {
	notice := protocol.NewEvent(protocol.TypeConnectionStatus, protocol.ConnectionStatus{
		Identity:  m.identity,
		Connected: false,
		Message:   reason,
	})

	if r.capacity() == 2 && len(r.members) == 2 {
		r.broadcastExcept(m.identity, notice)
		r.destroy(reason)
		return
	}

	r.removeMember(m.identity)
	if r.closed {
		return
	}
	r.broadcast(notice)
	r.broadcastRoster()
}

// removeMember drops identity from the roster, re-elects the host, keeps the
// turn cursor on the same player and re-checks rematch quorum.
func (r *Room) removeMember(identity string) {
	idx := r.memberIndex(identity)
	if idx < 0 {
		return
	}
	r.members = append(r.members[:idx], r.members[idx+1:]...)
	delete(r.votes, identity)

	if len(r.members) == 0 {
		r.destroy("empty")
		return
	}

	if r.host == identity {
		r.host = r.members[0].identity
		slog.Info("host changed", "roomCode", r.code, "host", r.host)
		r.broadcast(protocol.NewEvent(protocol.TypeHostChanged, protocol.HostChanged{Identity: r.host}))
	}

	if r.status == StatusPlaying && r.rules.turnBased() {
		switch {
		case idx < r.turn.index:
			r.turn.index--
		case idx == r.turn.index:
			r.startTurn(r.nextConnected(idx % len(r.members)))
		}
	}

	if r.status == StatusEnded && len(r.votes) > 0 && len(r.votes) >= len(r.members) {
		r.reachQuorum()
	}
}
