package protocol

import (
	"encoding/json"
	"fmt"
)

// Envelope frames every message in both directions.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Event is an outbound message before it is framed.
type Event struct {
	Type string
	Data any
}

func NewEvent(typ string, data any) Event {
	return Event{Type: typ, Data: data}
}

func (e Event) MarshalJSON() ([]byte, error) {
	env := struct {
		Type string `json:"type"`
		Data any    `json:"data,omitempty"`
	}{e.Type, e.Data}
	return json.Marshal(env)
}

// DecodeEnvelope parses a framed message without decoding its payload.
func DecodeEnvelope(b []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return Envelope{}, fmt.Errorf("decoding envelope: %w", err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("message type is required")
	}
	return env, nil
}

// DecodeData unmarshals the payload into v. An absent payload leaves v untouched.
func (e Envelope) DecodeData(v any) error {
	if len(e.Data) == 0 || string(e.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("decoding %s payload: %w", e.Type, err)
	}
	return nil
}

// DecodeEvent reverses Event.MarshalJSON into a typed payload.
func DecodeEvent[T any](b []byte) (string, T, error) {
	var zero T
	env, err := DecodeEnvelope(b)
	if err != nil {
		return "", zero, err
	}
	var v T
	if err := env.DecodeData(&v); err != nil {
		return env.Type, zero, err
	}
	return env.Type, v, nil
}
