// Package message defines the wire envelopes exchanged with game clients.
//
// Every frame is a JSON object discriminated by the "message_type" field.
// Inbound kinds are initialization, chat, and answer; result and error
// envelopes only flow outbound, always with the bot sender.
package message

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind discriminates the envelope variants.
type Kind string

// Envelope kinds.
const (
	KindInitialization Kind = "initialization"
	KindChat           Kind = "chat"
	KindAnswer         Kind = "answer"
	KindResult         Kind = "result"
	KindError          Kind = "error"
)

// Valid reports whether k is a known envelope kind.
func (k Kind) Valid() bool {
	switch k {
	case KindInitialization, KindChat, KindAnswer, KindResult, KindError:
		return true
	}
	return false
}

// GameType identifies which game a session runs.
type GameType string

// Supported game types.
const (
	GameTwoTruthALie GameType = "two_truth_a_lie"
)

// Valid reports whether g is a known game type.
func (g GameType) Valid() bool {
	return g == GameTwoTruthALie
}

// Result values carried by result envelopes.
const (
	ResultSuccess = "success"
	ResultFailed  = "failed"
)

// BotSender is the sender name on all server-originated envelopes.
const BotSender = "bot"

// Decode errors.
var (
	// ErrUnknownKind marks an envelope whose message_type is not recognized.
	ErrUnknownKind = errors.New("unknown message type")
	// ErrInvalidEnvelope marks an envelope that parsed but failed validation.
	ErrInvalidEnvelope = errors.New("invalid envelope")
)

// Envelope is the tagged wire message. Field presence depends on Kind:
// initialization carries GameType, chat and answer carry Message, result
// carries Result. Sender is required on every inbound envelope. RoomID is
// optional; an empty value selects the server's default room.
type Envelope struct {
	Kind     Kind     `json:"message_type"`
	GameType GameType `json:"game_type,omitempty"`
	Message  string   `json:"message,omitempty"`
	Result   string   `json:"result,omitempty"`
	Sender   string   `json:"sender,omitempty"`
	RoomID   string   `json:"room_id,omitempty"`
}

// Decode parses and validates a wire frame.
//
// Postcondition: Returns a validated Envelope, or an error wrapping
// ErrUnknownKind or ErrInvalidEnvelope. JSON syntax errors are returned as-is.
func Decode(data []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return Envelope{}, fmt.Errorf("decoding envelope: %w", err)
	}
	if err := e.Validate(); err != nil {
		return Envelope{}, err
	}
	return e, nil
}

// Encode serializes an envelope to its wire form.
func Encode(e Envelope) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encoding envelope: %w", err)
	}
	return data, nil
}

// Validate checks kind-specific field requirements.
//
// Postcondition: nil return guarantees the envelope is well-formed for its kind.
func (e Envelope) Validate() error {
	if !e.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, e.Kind)
	}
	switch e.Kind {
	case KindInitialization:
		if !e.GameType.Valid() {
			return fmt.Errorf("%w: initialization requires a known game_type, got %q", ErrInvalidEnvelope, e.GameType)
		}
		if e.Sender == "" {
			return fmt.Errorf("%w: initialization requires a sender", ErrInvalidEnvelope)
		}
	case KindChat, KindAnswer:
		if e.Message == "" {
			return fmt.Errorf("%w: %s requires a message", ErrInvalidEnvelope, e.Kind)
		}
		if e.Sender == "" {
			return fmt.Errorf("%w: %s requires a sender", ErrInvalidEnvelope, e.Kind)
		}
	case KindResult:
		if e.Result != ResultSuccess && e.Result != ResultFailed {
			return fmt.Errorf("%w: result must be %q or %q, got %q", ErrInvalidEnvelope, ResultSuccess, ResultFailed, e.Result)
		}
	case KindError:
		if e.Message == "" {
			return fmt.Errorf("%w: error requires a message", ErrInvalidEnvelope)
		}
	}
	return nil
}

// NewBotChat builds an outbound chat envelope from the agent.
func NewBotChat(text, roomID string) Envelope {
	return Envelope{Kind: KindChat, Message: text, Sender: BotSender, RoomID: roomID}
}

// NewResult builds an outbound result envelope for an answer verdict.
func NewResult(success bool, roomID string) Envelope {
	result := ResultFailed
	if success {
		result = ResultSuccess
	}
	return Envelope{Kind: KindResult, Result: result, Sender: BotSender, RoomID: roomID}
}

// NewError builds an outbound error envelope describing a recoverable failure.
func NewError(text, roomID string) Envelope {
	return Envelope{Kind: KindError, Message: text, Sender: BotSender, RoomID: roomID}
}
