package i18n

import (
	"fmt"
	"sort"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/pixil98/go-errors"
)

// templateFuncs provides utility functions for message templates.
var templateFuncs = sprig.TxtFuncMap()

// Messages is one language's display strings. Every value is a text/template
// executed against the data passed to Translate.
type Messages struct {
	Language string            `json:"language"`
	Messages map[string]string `json:"messages"`
}

func (m *Messages) Validate() error {
	el := errors.NewErrorList()

	if m.Language == "" {
		el.Add(fmt.Errorf("language is required"))
	}
	if len(m.Messages) == 0 {
		el.Add(fmt.Errorf("at least one message is required"))
	}

	keys := make([]string, 0, len(m.Messages))
	for k := range m.Messages {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := parse(k, m.Messages[k]); err != nil {
			el.Add(fmt.Errorf("message %s: %w", k, err))
		}
	}

	return el.Err()
}

func parse(name, text string) (*template.Template, error) {
	tmpl, err := template.New(name).Funcs(templateFuncs).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing template: %w", err)
	}
	return tmpl, nil
}
