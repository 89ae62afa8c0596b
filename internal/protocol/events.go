package protocol

import "github.com/pixil98/go-wordle/internal/feedback"

// Outbound event types.
const (
	TypeRoomCreated        = "roomCreated"
	TypeRoomUpdate         = "roomUpdate"
	TypeGameStarted        = "gameStarted"
	TypeTurnUpdate         = "turnUpdate"
	TypeTimerTick          = "timerTick"
	TypeGuessResult        = "guessResult"
	TypeOpponentGuess      = "opponentGuess"
	TypeScoreUpdate        = "scoreUpdate"
	TypeLetterResult       = "letterResult"
	TypeRoundEnded         = "roundEnded"
	TypeConnectionStatus   = "connectionStatus"
	TypeRematchRequested   = "rematchRequested"
	TypeHostChanged        = "hostChanged"
	TypeStateSync          = "stateSync"
	TypeSecretAccepted     = "secretAccepted"
	TypeWaitingForOpponent = "waitingForOpponent"
	TypeSessionReplaced    = "sessionReplaced"
	TypeError              = "error"
)

type RoomCreated struct {
	RoomCode string `json:"roomCode"`
	Mode     string `json:"mode"`
}

type RosterEntry struct {
	Identity  string `json:"identity"`
	Connected bool   `json:"connected"`
	Host      bool   `json:"host,omitempty"`
	Score     int    `json:"score"`
}

type RoomUpdate struct {
	RoomCode string        `json:"roomCode"`
	Mode     string        `json:"mode"`
	Status   string        `json:"status"`
	Roster   []RosterEntry `json:"roster"`
}

type GameStarted struct {
	Mode       string   `json:"mode"`
	WordLength int      `json:"wordLength"`
	Roster     []string `json:"roster"`
	Hint       string   `json:"hint,omitempty"`
	MaxRows    int      `json:"maxRows,omitempty"`
}

type TurnUpdate struct {
	PlayerIdentity string `json:"playerIdentity"`
	TimeLeft       int    `json:"timeLeft"`
	TimerEnabled   bool   `json:"timerEnabled"`
}

type TimerTick struct {
	PlayerIdentity string `json:"playerIdentity"`
	TimeLeft       int    `json:"timeLeft"`
}

type GuessResult struct {
	Word          string          `json:"word"`
	Feedback      feedback.Result `json:"feedback"`
	OwnerIdentity string          `json:"ownerIdentity"`
	Attempt       int             `json:"attempt"`
	// MaxRows is the current board height in solo rooms.
	MaxRows int `json:"maxRows,omitempty"`
}

// OpponentGuess summarizes another player's private attempt. Word and
// Feedback are only populated when the room shows them.
type OpponentGuess struct {
	OwnerIdentity string          `json:"ownerIdentity"`
	Attempt       int             `json:"attempt"`
	Correct       int             `json:"correct"`
	Word          string          `json:"word,omitempty"`
	Feedback      feedback.Result `json:"feedback,omitempty"`
}

type ScoreUpdate struct {
	Identity string `json:"identity"`
	Locked   int    `json:"locked"`
	Length   int    `json:"length"`
}

type LetterResult struct {
	Identity string   `json:"identity"`
	Letter   string   `json:"letter"`
	Hit      bool     `json:"hit"`
	Revealed string   `json:"revealed"`
	Misses   []string `json:"misses"`
}

type Standing struct {
	Identity string `json:"identity"`
	Score    int    `json:"score"`
	Locked   int    `json:"locked,omitempty"`
}

type RoundEnded struct {
	WinnerIdentity string            `json:"winnerIdentity,omitempty"`
	SecretWord     string            `json:"secretWord,omitempty"`
	Secrets        map[string]string `json:"secrets,omitempty"`
	Standings      []Standing        `json:"standings"`
}

type ConnectionStatus struct {
	Identity  string `json:"identity"`
	Connected bool   `json:"connected"`
	Message   string `json:"message"`
}

type RematchRequested struct {
	Identity string `json:"identity"`
	Votes    int    `json:"votes"`
	Needed   int    `json:"needed"`
}

type HostChanged struct {
	Identity string `json:"identity"`
}

// StateSync replays everything the receiving identity is allowed to see.
type StateSync struct {
	Room        RoomUpdate      `json:"room"`
	Identity    string          `json:"identity"`
	WordLength  int             `json:"wordLength"`
	Turn        *TurnUpdate     `json:"turn,omitempty"`
	Attempts    []GuessResult   `json:"attempts"`
	Opponent    []OpponentGuess `json:"opponent,omitempty"`
	Locked      []int           `json:"locked,omitempty"`
	Revealed    string          `json:"revealed,omitempty"`
	Misses      []string        `json:"misses,omitempty"`
	Hint        string          `json:"hint,omitempty"`
	SecretSet   bool            `json:"secretSet,omitempty"`
	Ready       bool            `json:"ready,omitempty"`
	MaxRows     int             `json:"maxRows,omitempty"`
	RoundResult *RoundEnded     `json:"roundResult,omitempty"`
}

type SessionReplaced struct {
	Message string `json:"message"`
}

type ReactionEvent struct {
	Identity string `json:"identity"`
	Emoji    string `json:"emoji"`
}

type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
