package lobby

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pixil98/go-wordle/internal/protocol"
)

var (
	// ErrQuit is returned by ParseCommand when the player asks to disconnect.
	ErrQuit = errors.New("quit")
	// ErrHelp is returned by ParseCommand when the player asks for help.
	ErrHelp = errors.New("help")
)

// UserError is a problem with what the player typed. Key names the message
// shown to them.
type UserError struct {
	Key  string
	Data map[string]any
}

func (e *UserError) Error() string {
	return fmt.Sprintf("%s %v", e.Key, e.Data)
}

func usage(u string) *UserError {
	return &UserError{Key: "command.usage", Data: map[string]any{"Usage": u}}
}

var identityPattern = regexp.MustCompile(`^[A-Za-z0-9-]{3,32}$`)

// ValidIdentity reports whether s can be used as an identity token.
func ValidIdentity(s string) bool {
	return identityPattern.MatchString(s)
}

type commandParser func(args []string) (protocol.Envelope, error)

var commandParsers = map[string]commandParser{
	"create":  parseCreate,
	"join":    parseJoin(protocol.TypeJoinRoom, "join <code>"),
	"rejoin":  parseJoin(protocol.TypeRejoin, "rejoin <code>"),
	"guess":   parseGuess,
	"g":       parseGuess,
	"pass":    bare(protocol.TypePassTurn),
	"start":   bare(protocol.TypeStartGame),
	"next":    parseNext,
	"secret":  parseSecret,
	"ready":   bare(protocol.TypeReady),
	"rematch": bare(protocol.TypeRequestRematch),
	"react":   parseReact,
	"leave":   bare(protocol.TypeLeaveRoom),
}

// ParseCommand turns a line typed at a terminal into the request it stands
// for.
func ParseCommand(line string) (protocol.Envelope, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return protocol.Envelope{}, usage("help")
	}

	name := strings.ToLower(parts[0])
	switch name {
	case "quit", "exit":
		return protocol.Envelope{}, ErrQuit
	case "help", "?":
		return protocol.Envelope{}, ErrHelp
	}

	parse, ok := commandParsers[name]
	if !ok {
		return protocol.Envelope{}, &UserError{Key: "command.unknown", Data: map[string]any{"Command": parts[0]}}
	}
	return parse(parts[1:])
}

func envelope(typ string, payload any) (protocol.Envelope, error) {
	if payload == nil {
		return protocol.Envelope{Type: typ}, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return protocol.Envelope{}, fmt.Errorf("encoding %s: %w", typ, err)
	}
	return protocol.Envelope{Type: typ, Data: data}, nil
}

func bare(typ string) commandParser {
	return func([]string) (protocol.Envelope, error) {
		return envelope(typ, nil)
	}
}

func parseCreate(args []string) (protocol.Envelope, error) {
	const u = "create <mode> [lang] [length]"
	if len(args) == 0 || len(args) > 3 {
		return protocol.Envelope{}, usage(u)
	}

	req := protocol.CreateRoom{Mode: strings.ToLower(args[0])}
	for _, arg := range args[1:] {
		if n, err := strconv.Atoi(arg); err == nil {
			if len(req.Config.WordLengths) > 0 {
				return protocol.Envelope{}, usage(u)
			}
			req.Config.WordLengths = []int{n}
			continue
		}
		if req.Config.Language != "" {
			return protocol.Envelope{}, usage(u)
		}
		req.Config.Language = strings.ToLower(arg)
	}
	return envelope(protocol.TypeCreateRoom, req)
}

func parseJoin(typ, u string) commandParser {
	return func(args []string) (protocol.Envelope, error) {
		if len(args) != 1 {
			return protocol.Envelope{}, usage(u)
		}
		return envelope(typ, protocol.JoinRoom{RoomCode: strings.ToUpper(args[0])})
	}
}

func parseGuess(args []string) (protocol.Envelope, error) {
	if len(args) != 1 {
		return protocol.Envelope{}, usage("guess <word>")
	}
	return envelope(protocol.TypeSubmitGuess, protocol.SubmitGuess{Word: args[0]})
}

func parseNext(args []string) (protocol.Envelope, error) {
	switch len(args) {
	case 0:
		return envelope(protocol.TypeNextRound, protocol.NextRound{})
	case 1:
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return protocol.Envelope{}, usage("next [length]")
		}
		return envelope(protocol.TypeNextRound, protocol.NextRound{WordLength: n})
	}
	return protocol.Envelope{}, usage("next [length]")
}

func parseSecret(args []string) (protocol.Envelope, error) {
	if len(args) == 0 {
		return protocol.Envelope{}, usage("secret <word> [hint]")
	}
	return envelope(protocol.TypeSetSecret, protocol.SetSecret{
		Word: args[0],
		Hint: strings.Join(args[1:], " "),
	})
}

func parseReact(args []string) (protocol.Envelope, error) {
	if len(args) != 1 {
		return protocol.Envelope{}, usage("react <emoji>")
	}
	return envelope(protocol.TypeReaction, protocol.Reaction{Emoji: args[0]})
}
