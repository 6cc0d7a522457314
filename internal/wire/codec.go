package wire

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ssabro/MailVista-sub001/internal/domain"
)

const (
	// Protocol is the authoritative tag inside every payload.
	Protocol = "signal-v1"
	// Version is the envelope format version.
	Version = 1

	// TypePreKey marks envelopes that carry X3DH bootstrap parameters.
	TypePreKey = "prekey"
	// TypeMessage marks ordinary ratchet messages.
	TypeMessage = "message"

	// HeaderProtocol and HeaderVersion are informational mail header values a
	// transport may attach. They must never be relied on for security.
	HeaderProtocol      = "X-E2E-Protocol"
	HeaderProtocolValue = "Signal"
	HeaderVersion       = "X-E2E-Version"
	HeaderVersionValue  = "1"
)

var errUnknownProtocol = errors.New("wire: unknown protocol tag")

// Message is the envelope inside a payload. Byte fields marshal as base64
// through encoding/json.
type Message struct {
	Version              int                    `json:"version"`
	Type                 string                 `json:"type"`
	SenderIdentityKey    []byte                 `json:"senderIdentityKey"`
	SenderRegistrationID uint32                 `json:"senderRegistrationId"`
	MessageNumber        uint32                 `json:"messageNumber"`
	PreviousCounter      uint32                 `json:"previousCounter"`
	Ciphertext           []byte                 `json:"ciphertext"`
	PreKeyID             *domain.PreKeyID       `json:"preKeyId,omitempty"`
	SignedPreKeyID       *domain.SignedPreKeyID `json:"signedPreKeyId,omitempty"`
	BaseKey              []byte                 `json:"baseKey,omitempty"`
}

// Payload is the complete transport document.
type Payload struct {
	Protocol string  `json:"protocol"`
	Message  Message `json:"message"`
}

// Encode wraps msg into the base64 transport form.
func Encode(msg Message) (string, error) {
	b, err := json.Marshal(Payload{Protocol: Protocol, Message: msg})
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// Decode unwraps a transport payload, verifying the protocol tag.
func Decode(body string) (Message, error) {
	raw, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return Message{}, fmt.Errorf("wire: decode base64: %w", err)
	}
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Message{}, fmt.Errorf("wire: decode payload: %w", err)
	}
	if p.Protocol != Protocol {
		return Message{}, errUnknownProtocol
	}
	return p.Message, nil
}

// IsEncrypted reports whether body looks like one of our payloads: valid
// base64, valid JSON, and the right protocol tag.
func IsEncrypted(body string) bool {
	raw, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return false
	}
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return false
	}
	return p.Protocol == Protocol
}
