package i18n

import (
	"bytes"
	"fmt"
	"log/slog"
	"sync"
	"text/template"

	"github.com/pixil98/go-wordle/internal/storage"
)

const DefaultFallback = "en"

// Catalog translates message keys into display text. A key missing from the
// requested language is looked up in the fallback language; a key missing from
// both renders as the key itself.
type Catalog struct {
	store    storage.Storer[*Messages]
	fallback string

	mu    sync.Mutex
	cache map[string]*template.Template
}

type CatalogOpt func(*Catalog)

// WithFallback sets the language consulted when a key is not translated.
func WithFallback(lang string) CatalogOpt {
	return func(c *Catalog) {
		c.fallback = lang
	}
}

func NewCatalog(store storage.Storer[*Messages], opts ...CatalogOpt) (*Catalog, error) {
	c := &Catalog{
		store:    store,
		fallback: DefaultFallback,
		cache:    map[string]*template.Template{},
	}

	for _, opt := range opts {
		opt(c)
	}

	if store.Get(c.fallback) == nil {
		return nil, fmt.Errorf("fallback language %q has no messages", c.fallback)
	}

	return c, nil
}

// Languages lists every language with messages.
func (c *Catalog) Languages() []string {
	return c.store.Ids()
}

// Translate renders key in lang with data.
func (c *Catalog) Translate(lang, key string, data any) string {
	tmpl := c.lookup(lang, key)
	if tmpl == nil && lang != c.fallback {
		tmpl = c.lookup(c.fallback, key)
	}
	if tmpl == nil {
		slog.Warn("missing translation", "language", lang, "key", key)
		return key
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		slog.Warn("rendering translation", "language", lang, "key", key, "error", err)
		return key
	}
	return buf.String()
}

func (c *Catalog) lookup(lang, key string) *template.Template {
	msgs := c.store.Get(lang)
	if msgs == nil {
		return nil
	}
	text, ok := msgs.Messages[key]
	if !ok {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	id := lang + "/" + key
	if tmpl, ok := c.cache[id]; ok {
		return tmpl
	}
	tmpl, err := parse(key, text)
	if err != nil {
		slog.Warn("parsing translation", "language", lang, "key", key, "error", err)
		return nil
	}
	c.cache[id] = tmpl
	return tmpl
}
