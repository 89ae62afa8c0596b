package rooms

import "github.com/pixil98/go-wordle/internal/protocol"

// Conn is the transient handle a room uses to reach one client. Send must
// not block and must not call back into the room.
type Conn interface {
	Id() string
	Send(protocol.Event)
}

// Oracle is the word knowledge a room consults.
type Oracle interface {
	IsValidWord(word, lang string) bool
	RandomSecret(lang string, length int) (string, error)
	Normalize(word, lang string) string
	Language(lang string) string
	Lengths(lang string) []int
}
