package protocol

import (
	"encoding/json"
	"testing"

	"github.com/pixil98/go-testutil"
	"github.com/pixil98/go-wordle/internal/feedback"
)

func TestDecodeEnvelope(t *testing.T) {
	tests := map[string]struct {
		raw     string
		expType string
		expErr  string
	}{
		"with payload": {
			raw:     `{"type":"joinRoom","data":{"roomCode":"AB12","identity":"p1"}}`,
			expType: TypeJoinRoom,
		},
		"without payload": {
			raw:     `{"type":"passTurn"}`,
			expType: TypePassTurn,
		},
		"missing type": {
			raw:    `{"data":{}}`,
			expErr: "message type is required",
		},
		"not json": {
			raw:    `guess hello`,
			expErr: "decoding envelope",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			env, err := DecodeEnvelope([]byte(tt.raw))
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "type", env.Type, tt.expType)
		})
	}
}

func TestEnvelope_DecodeData(t *testing.T) {
	env, err := DecodeEnvelope([]byte(`{"type":"createRoom","data":{"mode":"race","identity":"p1","config":{"language":"en","wordLengths":[5,6],"timerEnabled":false,"hintsEnabled":true,"randomSecrets":true}}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var req CreateRoom
	if err := env.DecodeData(&req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "mode", req.Mode, "race")
	testutil.AssertEqual(t, "identity", req.Identity, "p1")
	testutil.AssertEqual(t, "language", req.Config.Language, "en")
	testutil.AssertEqual(t, "lengths", len(req.Config.WordLengths), 2)
	if req.Config.TimerEnabled == nil || *req.Config.TimerEnabled {
		t.Errorf("expected timerEnabled to be explicitly false")
	}
	testutil.AssertEqual(t, "hints", req.Config.HintsEnabled, true)
	testutil.AssertEqual(t, "random secrets", req.Config.RandomSecrets, true)

	bad := Envelope{Type: TypeSubmitGuess, Data: json.RawMessage(`{"word":5}`)}
	var guess SubmitGuess
	testutil.AssertErrorContains(t, bad.DecodeData(&guess), "decoding submitGuess payload")

	empty := Envelope{Type: TypePassTurn, Data: json.RawMessage(`null`)}
	if err := empty.DecodeData(&guess); err != nil {
		t.Errorf("unexpected error for null payload: %v", err)
	}
}

func TestEvent_Framing(t *testing.T) {
	b, err := json.Marshal(NewEvent(TypeGuessResult, GuessResult{
		Word:          "HELLO",
		Feedback:      feedback.Result{feedback.Correct, feedback.Absent, feedback.Present, feedback.Absent, feedback.Absent},
		OwnerIdentity: "p1",
		Attempt:       1,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	typ, got, err := DecodeEvent[GuessResult](b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "type", typ, TypeGuessResult)
	testutil.AssertEqual(t, "owner", got.OwnerIdentity, "p1")
	testutil.AssertEqual(t, "feedback", got.Feedback[2], feedback.Present)

	b, err = json.Marshal(NewEvent(TypeSecretAccepted, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "bare event", string(b), `{"type":"secretAccepted"}`)
}
