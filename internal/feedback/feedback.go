package feedback

import (
	"encoding/json"
	"fmt"
)

// State is the classification of a single guessed letter.
type State int

const (
	Absent State = iota
	Present
	Correct
)

func (s State) String() string {
	switch s {
	case Correct:
		return "correct"
	case Present:
		return "present"
	default:
		return "absent"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "correct":
		*s = Correct
	case "present":
		*s = Present
	case "absent":
		*s = Absent
	default:
		return fmt.Errorf("unknown feedback state: %s", text)
	}
	return nil
}

// Result is the per-position feedback for one guess.
type Result []State

// Compute scores guess against secret. Both must already be normalized and of
// equal length; a length mismatch returns an error rather than a partial result.
//
// Exact matches are consumed first so a repeated letter is never credited
// more times than it appears in the secret.
func Compute(guess, secret string) (Result, error) {
	g := []rune(guess)
	s := []rune(secret)
	if len(g) != len(s) {
		return nil, fmt.Errorf("guess has %d letters, secret has %d", len(g), len(s))
	}

	res := make(Result, len(g))
	remaining := make(map[rune]int, len(s))

	for i := range g {
		if g[i] == s[i] {
			res[i] = Correct
			continue
		}
		remaining[s[i]]++
	}

	for i := range g {
		if res[i] == Correct {
			continue
		}
		if remaining[g[i]] > 0 {
			res[i] = Present
			remaining[g[i]]--
			continue
		}
		res[i] = Absent
	}

	return res, nil
}

// IsWin reports whether every position is correct.
func (r Result) IsWin() bool {
	if len(r) == 0 {
		return false
	}
	for _, st := range r {
		if st != Correct {
			return false
		}
	}
	return true
}

// CorrectPositions returns the indices marked correct.
func (r Result) CorrectPositions() []int {
	var idx []int
	for i, st := range r {
		if st == Correct {
			idx = append(idx, i)
		}
	}
	return idx
}

func (r Result) MarshalJSON() ([]byte, error) {
	strs := make([]string, len(r))
	for i, st := range r {
		strs[i] = st.String()
	}
	return json.Marshal(strs)
}
