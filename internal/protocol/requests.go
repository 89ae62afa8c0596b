package protocol

// Inbound message types.
const (
	TypeCreateRoom     = "createRoom"
	TypeJoinRoom       = "joinRoom"
	TypeRejoin         = "rejoin"
	TypeSubmitGuess    = "submitGuess"
	TypePassTurn       = "passTurn"
	TypeRequestRematch = "requestRematch"
	TypeStartGame      = "startGame"
	TypeNextRound      = "nextRound"
	TypeSetSecret      = "setSecret"
	TypeReady          = "ready"
	TypeLeaveRoom      = "leaveRoom"
	TypeReaction       = "reaction"
)

type RoomConfig struct {
	Language      string `json:"language,omitempty"`
	WordLengths   []int  `json:"wordLengths,omitempty"`
	TimerEnabled  *bool  `json:"timerEnabled,omitempty"`
	HintsEnabled  bool   `json:"hintsEnabled,omitempty"`
	RandomSecrets bool   `json:"randomSecrets,omitempty"`
}

type CreateRoom struct {
	Mode     string     `json:"mode"`
	Config   RoomConfig `json:"config"`
	Identity string     `json:"identity"`
}

// JoinRoom is the payload of both joinRoom and rejoin.
type JoinRoom struct {
	RoomCode string `json:"roomCode"`
	Identity string `json:"identity"`
}

type SubmitGuess struct {
	Word string `json:"word"`
}

type NextRound struct {
	WordLength int `json:"wordLength,omitempty"`
}

type SetSecret struct {
	Word string `json:"word"`
	Hint string `json:"hint,omitempty"`
}

type Reaction struct {
	Emoji string `json:"emoji"`
}
