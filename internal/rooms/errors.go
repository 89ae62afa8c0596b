package rooms

import "errors"

var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomFull           = errors.New("room is full")
	ErrGameAlreadyStarted = errors.New("game already started")
	ErrTurnViolation      = errors.New("not your turn")
	ErrLengthMismatch     = errors.New("word length does not match")
	ErrInvalidWord        = errors.New("word not accepted")
	ErrUnknownIdentity    = errors.New("identity is not a member of this room")
	ErrMissingIdentity    = errors.New("identity is required")
	ErrSessionReplaced    = errors.New("another connection has taken over this identity")
	ErrGameNotActive      = errors.New("no round in progress")
	ErrNotHost            = errors.New("only the host can do that")
	ErrNotTurnBased       = errors.New("this mode has no turns")
	ErrLetterRevealed     = errors.New("letter already revealed")
	ErrSecretMissing      = errors.New("set a secret word first")
	ErrCodeSpaceExhausted = errors.New("no room codes available")
	ErrInvalidAction      = errors.New("invalid action")
)

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrRoomNotFound, "room_not_found"},
	{ErrRoomFull, "room_full"},
	{ErrGameAlreadyStarted, "game_already_started"},
	{ErrTurnViolation, "turn_violation"},
	{ErrLengthMismatch, "length_mismatch"},
	{ErrInvalidWord, "invalid_word"},
	{ErrUnknownIdentity, "unknown_identity"},
	{ErrMissingIdentity, "missing_identity"},
	{ErrSessionReplaced, "session_replaced"},
	{ErrGameNotActive, "game_not_active"},
	{ErrNotHost, "not_host"},
	{ErrNotTurnBased, "not_turn_based"},
	{ErrLetterRevealed, "letter_revealed"},
	{ErrSecretMissing, "secret_missing"},
	{ErrCodeSpaceExhausted, "code_space_exhausted"},
	{ErrInvalidAction, "invalid_action"},
}

const (
	// CodeInternal is reported for errors that are not one of the room errors.
	CodeInternal = "internal"
	// CodeRoomExpired is sent when an idle room is swept.
	CodeRoomExpired = "room_expired"
)

// ErrorCode maps err to the stable code sent to clients.
func ErrorCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return CodeInternal
}
