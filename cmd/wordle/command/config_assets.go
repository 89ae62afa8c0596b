package command

import (
	"fmt"
	"os"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-wordle/internal/i18n"
	"github.com/pixil98/go-wordle/internal/storage"
	"github.com/pixil98/go-wordle/internal/words"
)

type AssetConfig[T storage.Validator] struct {
	Path string `json:"path"`
}

func (c *AssetConfig[T]) Validate(name string) error {
	if c.Path == "" {
		return fmt.Errorf("%s: path is required", name)
	}
	_, err := os.Stat(c.Path)
	if err != nil {
		return fmt.Errorf("%s: invalid path %q: %w", name, c.Path, err)
	}

	return nil
}

func (c *AssetConfig[T]) BuildFileStore() (*storage.FileStore[T], error) {
	return storage.NewFileStore[T](c.Path)
}

type WordsConfig struct {
	AssetConfig[*words.WordList]
	DefaultLanguage string `json:"default_language"`
}

func (c *WordsConfig) validate() error {
	return c.Validate("words")
}

func (c *WordsConfig) BuildLexicon() (*words.Lexicon, error) {
	store, err := c.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating word list store: %w", err)
	}

	var opts []words.LexiconOpt
	if c.DefaultLanguage != "" {
		opts = append(opts, words.WithDefaultLanguage(c.DefaultLanguage))
	}
	return words.NewLexicon(store, opts...)
}

// I18nConfig locates the message catalog. Language is what terminal
// sessions are shown until a player picks another.
type I18nConfig struct {
	AssetConfig[*i18n.Messages]
	Language string `json:"language"`
	Fallback string `json:"fallback"`
}

func (c *I18nConfig) validate() error {
	el := errors.NewErrorList()
	el.Add(c.Validate("i18n"))
	if c.Language == "" {
		el.Add(fmt.Errorf("i18n: language is required"))
	}
	return el.Err()
}

func (c *I18nConfig) BuildCatalog() (*i18n.Catalog, error) {
	store, err := c.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating message store: %w", err)
	}

	var opts []i18n.CatalogOpt
	if c.Fallback != "" {
		opts = append(opts, i18n.WithFallback(c.Fallback))
	}
	return i18n.NewCatalog(store, opts...)
}
