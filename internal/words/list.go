package words

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pixil98/go-errors"
)

var (
	patternPattern = regexp.MustCompile(`^[CV]+$`)
	letterPattern  = regexp.MustCompile(`^[A-Z]+$`)
)

// WordList is a language's secret words, keyed by length, plus extra words
// accepted as guesses and the consonant/vowel shapes used when a guess is not
// in the dictionary.
type WordList struct {
	Language   string           `json:"language"`
	Vowels     string           `json:"vowels"`
	Patterns   []string         `json:"patterns"`
	Secrets    map[int][]string `json:"secrets"`
	Dictionary []string         `json:"dictionary"`

	known map[string]struct{}
}

func (wl *WordList) Validate() error {
	el := errors.NewErrorList()

	if wl.Language == "" {
		el.Add(fmt.Errorf("language is required"))
	}
	if wl.Vowels == "" {
		el.Add(fmt.Errorf("vowels is required"))
	}
	for _, p := range wl.Patterns {
		if !patternPattern.MatchString(p) {
			el.Add(fmt.Errorf("pattern %q must only contain C and V", p))
		}
	}
	if len(wl.Secrets) == 0 {
		el.Add(fmt.Errorf("at least one secret length is required"))
	}
	for length, list := range wl.Secrets {
		if len(list) == 0 {
			el.Add(fmt.Errorf("secrets for length %d are empty", length))
		}
		for _, w := range list {
			if len([]rune(w)) != length {
				el.Add(fmt.Errorf("secret %q is not %d letters", w, length))
			}
			if !letterPattern.MatchString(w) {
				el.Add(fmt.Errorf("secret %q must be uppercase A-Z", w))
			}
		}
	}

	return el.Err()
}

// Contains reports whether word is a secret or dictionary word.
func (wl *WordList) Contains(word string) bool {
	if wl.known == nil {
		wl.index()
	}
	_, ok := wl.known[word]
	return ok
}

// Shape maps each letter to V or C.
func (wl *WordList) Shape(word string) string {
	var sb strings.Builder
	for _, r := range word {
		if strings.ContainsRune(wl.Vowels, r) {
			sb.WriteByte('V')
		} else {
			sb.WriteByte('C')
		}
	}
	return sb.String()
}

// Plausible applies the structural fallback: letters only, and the shape must
// contain at least one of the configured patterns.
func (wl *WordList) Plausible(word string) bool {
	if !letterPattern.MatchString(word) {
		return false
	}
	shape := wl.Shape(word)
	for _, p := range wl.Patterns {
		if strings.Contains(shape, p) {
			return true
		}
	}
	return false
}

func (wl *WordList) index() {
	wl.known = map[string]struct{}{}
	for _, list := range wl.Secrets {
		for _, w := range list {
			wl.known[w] = struct{}{}
		}
	}
	for _, w := range wl.Dictionary {
		wl.known[strings.ToUpper(w)] = struct{}{}
	}
}
