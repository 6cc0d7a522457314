package types

// SessionRecord holds the ratchet state for one peer. It is read, advanced,
// and rewritten on every encrypt or decrypt call; the chain key is not
// re-derivable from an earlier snapshot.
type SessionRecord struct {
	Peer              PeerID       `json:"peer"`
	RemoteIdentityKey X25519Public `json:"remote_identity_key"`
	LocalIdentityKey  X25519Public `json:"local_identity_key"`
	RootKey           []byte       `json:"root_key"`
	ChainKey          []byte       `json:"chain_key"`
	MessageNumber     uint32       `json:"message_number"`
	PreviousCounter   uint32       `json:"previous_counter"`
	CreatedUTC        int64        `json:"created_utc"`

	// Bootstrap parameters echoed in "prekey" envelopes so the responder
	// can mirror the X3DH derivation. Only meaningful on the initiator side
	// while MessageNumber is 0.
	SignedPreKeyID  SignedPreKeyID `json:"signed_pre_key_id,omitempty"`
	OneTimePreKeyID *PreKeyID      `json:"one_time_pre_key_id,omitempty"`
	BaseKey         X25519Public   `json:"base_key"`
}
