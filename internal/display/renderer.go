package display

import (
	"fmt"
	"strings"

	"github.com/pixil98/go-wordle/internal/protocol"
)

// Translator turns a message key into text for a language.
type Translator interface {
	Translate(lang, key string, data any) string
}

// Renderer turns outbound events into lines for a text terminal. Identity is
// the viewer, used to say "your turn" instead of a name.
type Renderer struct {
	t        Translator
	lang     string
	identity string
}

func NewRenderer(t Translator, lang string) *Renderer {
	return &Renderer{t: t, lang: lang}
}

func (r *Renderer) SetLanguage(lang string) {
	r.lang = lang
}

func (r *Renderer) SetIdentity(identity string) {
	r.identity = identity
}

// Text translates key and wraps the result.
func (r *Renderer) Text(key string, data any) string {
	return Wrap(r.t.Translate(r.lang, key, data))
}

// Render decodes a framed event and returns the text to show. An empty string
// means the event has nothing worth printing.
func (r *Renderer) Render(b []byte) (string, error) {
	env, err := protocol.DecodeEnvelope(b)
	if err != nil {
		return "", err
	}

	switch env.Type {
	case protocol.TypeRoomCreated:
		return decodeText[protocol.RoomCreated](r, env, "event.roomCreated")
	case protocol.TypeRoomUpdate:
		return decodeText[protocol.RoomUpdate](r, env, "event.roomUpdate")
	case protocol.TypeGameStarted:
		return decodeText[protocol.GameStarted](r, env, "event.gameStarted")
	case protocol.TypeScoreUpdate:
		return decodeText[protocol.ScoreUpdate](r, env, "event.scoreUpdate")
	case protocol.TypeRematchRequested:
		return decodeText[protocol.RematchRequested](r, env, "event.rematchRequested")
	case protocol.TypeHostChanged:
		return decodeText[protocol.HostChanged](r, env, "event.hostChanged")
	case protocol.TypeReaction:
		return decodeText[protocol.ReactionEvent](r, env, "event.reaction")
	case protocol.TypeSecretAccepted:
		return r.Text("event.secretAccepted", nil), nil
	case protocol.TypeWaitingForOpponent:
		return r.Text("event.waitingForOpponent", nil), nil
	case protocol.TypeSessionReplaced:
		return r.Text("event.sessionReplaced", nil), nil

	case protocol.TypeTurnUpdate:
		var tu protocol.TurnUpdate
		if err := env.DecodeData(&tu); err != nil {
			return "", err
		}
		return r.turn(tu), nil

	case protocol.TypeTimerTick:
		var tick protocol.TimerTick
		if err := env.DecodeData(&tick); err != nil {
			return "", err
		}
		if tick.TimeLeft != 10 && tick.TimeLeft > 5 {
			return "", nil
		}
		return r.Text("event.timerTick", tick), nil

	case protocol.TypeGuessResult:
		var g protocol.GuessResult
		if err := env.DecodeData(&g); err != nil {
			return "", err
		}
		return r.guess(g), nil

	case protocol.TypeOpponentGuess:
		var g protocol.OpponentGuess
		if err := env.DecodeData(&g); err != nil {
			return "", err
		}
		return r.opponent(g), nil

	case protocol.TypeLetterResult:
		var lr protocol.LetterResult
		if err := env.DecodeData(&lr); err != nil {
			return "", err
		}
		if lr.Hit {
			return r.Text("event.letterResult.hit", lr), nil
		}
		return r.Text("event.letterResult.miss", lr), nil

	case protocol.TypeRoundEnded:
		var re protocol.RoundEnded
		if err := env.DecodeData(&re); err != nil {
			return "", err
		}
		return r.roundEnded(re), nil

	case protocol.TypeConnectionStatus:
		var cs protocol.ConnectionStatus
		if err := env.DecodeData(&cs); err != nil {
			return "", err
		}
		return r.Text("event.connectionStatus."+cs.Message, cs), nil

	case protocol.TypeStateSync:
		var ss protocol.StateSync
		if err := env.DecodeData(&ss); err != nil {
			return "", err
		}
		return r.sync(ss), nil

	case protocol.TypeError:
		var e protocol.Error
		if err := env.DecodeData(&e); err != nil {
			return "", err
		}
		return r.Error(e), nil
	}

	return "", fmt.Errorf("unknown event type %q", env.Type)
}

func decodeText[T any](r *Renderer, env protocol.Envelope, key string) (string, error) {
	var v T
	if err := env.DecodeData(&v); err != nil {
		return "", err
	}
	return r.Text(key, v), nil
}

// Error prefers a translation for the code and falls back to the message the
// server sent.
func (r *Renderer) Error(e protocol.Error) string {
	key := "error." + e.Code
	if text := r.t.Translate(r.lang, key, e); text != key {
		return Wrap(text)
	}
	return r.Text("error", e)
}

func (r *Renderer) turn(tu protocol.TurnUpdate) string {
	if tu.PlayerIdentity != "" && tu.PlayerIdentity == r.identity {
		return r.Text("event.turnUpdate.mine", tu)
	}
	return r.Text("event.turnUpdate.other", tu)
}

type gridLine struct {
	OwnerIdentity string
	Attempt       int
	Correct       int
	MaxRows       int
	Grid          string
}

func (r *Renderer) guess(g protocol.GuessResult) string {
	return r.Text("event.guessResult", gridLine{
		OwnerIdentity: g.OwnerIdentity,
		Attempt:       g.Attempt,
		MaxRows:       g.MaxRows,
		Grid:          Grid(g.Word, g.Feedback),
	})
}

func (r *Renderer) opponent(g protocol.OpponentGuess) string {
	line := gridLine{
		OwnerIdentity: g.OwnerIdentity,
		Attempt:       g.Attempt,
		Correct:       g.Correct,
	}
	switch {
	case g.Word != "":
		line.Grid = Grid(g.Word, g.Feedback)
	case len(g.Feedback) > 0:
		line.Grid = Colours(g.Feedback)
	}
	return r.Text("event.opponentGuess", line)
}

func (r *Renderer) roundEnded(re protocol.RoundEnded) string {
	if re.WinnerIdentity == "" {
		return r.Text("event.roundEnded.none", re)
	}
	return r.Text("event.roundEnded.won", re)
}

// sync replays a stateSync as the lines a player would have seen.
func (r *Renderer) sync(ss protocol.StateSync) string {
	lines := []string{
		r.Text("event.stateSync", ss),
		r.Text("event.roomUpdate", ss.Room),
	}
	for _, a := range ss.Attempts {
		lines = append(lines, r.guess(a))
	}
	for _, o := range ss.Opponent {
		lines = append(lines, r.opponent(o))
	}
	if ss.Revealed != "" {
		lines = append(lines, r.Text("event.board", ss))
	}
	if ss.Turn != nil {
		lines = append(lines, r.turn(*ss.Turn))
	}
	if ss.RoundResult != nil {
		lines = append(lines, r.roundEnded(*ss.RoundResult))
	}
	return strings.Join(lines, "\n")
}
