package storage

import (
	"fmt"
	"regexp"

	"github.com/pixil98/go-errors"
)

// AssetVersion is the newest asset file format this server reads.
const AssetVersion = 1

var languageTag = regexp.MustCompile(`^[a-zA-Z0-9-]*$`)

// Validator is a payload that can check itself after decoding.
type Validator interface {
	Validate() error
}

// Asset is the layout shared by word list and message catalog files. Each
// file holds the payload for one language, keyed by its tag.
type Asset[T Validator] struct {
	Version  uint   `json:"version"`
	Language string `json:"id"`
	Spec     T      `json:"spec"`
}

func (a *Asset[T]) Id() string {
	return a.Language
}

// Validate reports every problem with the file at once.
func (a *Asset[T]) Validate() error {
	el := errors.NewErrorList()

	switch {
	case a.Version == 0:
		el.Add(fmt.Errorf("version must be set"))
	case a.Version > AssetVersion:
		el.Add(fmt.Errorf("version %d is newer than supported version %d", a.Version, AssetVersion))
	}

	switch {
	case a.Language == "":
		el.Add(fmt.Errorf("id must be set"))
	case !languageTag.MatchString(a.Language):
		el.Add(fmt.Errorf("id %q is not a language tag", a.Language))
	}

	el.Add(a.Spec.Validate())

	return el.Err()
}
