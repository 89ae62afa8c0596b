package display

import (
	"strings"

	"github.com/muesli/reflow/wordwrap"
	"github.com/pixil98/go-wordle/internal/feedback"
)

const DefaultWidth = 80

// Wrap word-wraps text to DefaultWidth, preserving ANSI escape sequences.
func Wrap(text string) string {
	return wordwrap.String(text, DefaultWidth)
}

// Grid renders a scored word for a plain text terminal. [X] marks a letter in
// place and (X) a letter found elsewhere in the word.
func Grid(word string, fb feedback.Result) string {
	var sb strings.Builder
	letters := []rune(word)
	for i, s := range fb {
		l := "?"
		if i < len(letters) {
			l = string(letters[i])
		}
		switch s {
		case feedback.Correct:
			sb.WriteString("[" + l + "]")
		case feedback.Present:
			sb.WriteString("(" + l + ")")
		default:
			sb.WriteString(" " + l + " ")
		}
	}
	return sb.String()
}

// Colours renders feedback without letters, for an opponent's hidden guess.
func Colours(fb feedback.Result) string {
	var sb strings.Builder
	for _, s := range fb {
		switch s {
		case feedback.Correct:
			sb.WriteString("[#]")
		case feedback.Present:
			sb.WriteString("(#)")
		default:
			sb.WriteString(" . ")
		}
	}
	return sb.String()
}
