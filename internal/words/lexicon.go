package words

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/pixil98/go-wordle/internal/storage"
)

const DefaultLanguage = "it"

// Lexicon answers word questions for every loaded language.
type Lexicon struct {
	lists       storage.Storer[*WordList]
	defaultLang string
	intn        func(int) int

	mu sync.Mutex
}

type LexiconOpt func(*Lexicon)

// WithDefaultLanguage sets the language used when a request names an unknown one.
func WithDefaultLanguage(lang string) LexiconOpt {
	return func(l *Lexicon) {
		l.defaultLang = lang
	}
}

// WithRandom replaces the secret picker's source of randomness.
func WithRandom(intn func(int) int) LexiconOpt {
	return func(l *Lexicon) {
		l.intn = intn
	}
}

func NewLexicon(lists storage.Storer[*WordList], opts ...LexiconOpt) (*Lexicon, error) {
	l := &Lexicon{
		lists:       lists,
		defaultLang: DefaultLanguage,
		intn:        rand.IntN,
	}

	for _, opt := range opts {
		opt(l)
	}

	if l.lists.Get(l.defaultLang) == nil {
		return nil, fmt.Errorf("default language %q has no word list", l.defaultLang)
	}

	return l, nil
}

// Language resolves lang to a loaded language, falling back to the default.
func (l *Lexicon) Language(lang string) string {
	if l.lists.Get(lang) != nil {
		return lang
	}
	return l.defaultLang
}

// Languages lists every loaded language.
func (l *Lexicon) Languages() []string {
	return l.lists.Ids()
}

func (l *Lexicon) list(lang string) *WordList {
	return l.lists.Get(l.Language(lang))
}

// IsValidWord accepts dictionary words and, failing that, words whose
// consonant/vowel shape is plausible for the language.
func (l *Lexicon) IsValidWord(word, lang string) bool {
	wl := l.list(lang)
	w := Normalize(word, wl.Language)

	l.mu.Lock()
	defer l.mu.Unlock()

	if wl.Contains(w) {
		return true
	}
	return wl.Plausible(w)
}

// RandomSecret picks a secret of the given length uniformly at random.
func (l *Lexicon) RandomSecret(lang string, length int) (string, error) {
	wl := l.list(lang)
	words := wl.Secrets[length]
	if len(words) == 0 {
		return "", fmt.Errorf("no %d letter words for language %q", length, wl.Language)
	}

	l.mu.Lock()
	w := words[l.intn(len(words))]
	l.mu.Unlock()

	slog.Debug("picked secret", "language", wl.Language, "length", length)
	return w, nil
}

// Lengths returns the secret lengths available for lang, ascending.
func (l *Lexicon) Lengths(lang string) []int {
	wl := l.list(lang)
	lengths := make([]int, 0, len(wl.Secrets))
	for n := range wl.Secrets {
		lengths = append(lengths, n)
	}
	sort.Ints(lengths)
	return lengths
}

// Normalize normalizes word for lang.
func (l *Lexicon) Normalize(word, lang string) string {
	return Normalize(word, l.Language(lang))
}
