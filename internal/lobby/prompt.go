package lobby

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

var ErrTooManyTries = errors.New("too many tries")

type promptValidator func(string) (bool, string)

type promptConfig struct {
	tries     int
	validator promptValidator
}

type promptOption func(*promptConfig)

func withValidator(v promptValidator) promptOption {
	return func(cfg *promptConfig) {
		cfg.validator = v
	}
}

func withMaxTries(i int) promptOption {
	return func(cfg *promptConfig) {
		cfg.tries = i
	}
}

// prompt writes prompt to w and reads a line from br until the validator
// accepts it.
func prompt(br *bufio.Reader, w io.Writer, prompt string, opts ...promptOption) (string, error) {
	config := &promptConfig{}
	for _, opt := range opts {
		opt(config)
	}

	tries := 0
	for {
		if _, err := w.Write([]byte(prompt)); err != nil {
			return "", err
		}

		line, err := br.ReadString('\n')
		if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
			return "", err
		}
		input := strings.TrimSpace(line)

		if config.validator != nil {
			ok, msg := config.validator(input)
			if !ok {
				if _, err := w.Write([]byte(msg)); err != nil {
					return "", err
				}

				tries++
				if config.tries > 0 && config.tries == tries {
					return "", ErrTooManyTries
				}
				if err != nil {
					return "", err
				}
				continue
			}
		}

		return input, nil
	}
}
