package types

// PreKeyRecord is a full (private+public) one-time prekey stored locally.
// Each is consumed, and deleted, the first time a peer references it in a
// session bootstrap.
type PreKeyRecord struct {
	ID   PreKeyID      `json:"id"`
	Priv X25519Private `json:"priv"`
	Pub  X25519Public  `json:"pub"`
}

// SignedPreKeyRecord is a medium-term prekey signed by the account's Ed25519
// identity key. Superseded records stay on disk so in-flight messages that
// reference them remain decryptable.
type SignedPreKeyRecord struct {
	ID         SignedPreKeyID `json:"id"`
	Priv       X25519Private  `json:"priv"`
	Pub        X25519Public   `json:"pub"`
	Signature  []byte         `json:"signature"`
	CreatedUTC int64          `json:"created_utc"`
}

// OneTimePreKeyPublic is the public half of a one-time prekey as it appears
// in a bundle.
type OneTimePreKeyPublic struct {
	ID  PreKeyID     `json:"id"`
	Pub X25519Public `json:"pub"`
}

// PreKeyBundle is the public-only projection exchanged between accounts,
// either out of band or through the optional key directory.
//
// IdentityKey is the X25519 Diffie-Hellman identity; SigningKey is the
// Ed25519 key that SignedPreKeySignature verifies against.
type PreKeyBundle struct {
	RegistrationID        uint32               `json:"registration_id"`
	IdentityKey           X25519Public         `json:"identity_key"`
	SigningKey            Ed25519Public        `json:"signing_key"`
	SignedPreKeyID        SignedPreKeyID       `json:"signed_pre_key_id"`
	SignedPreKey          X25519Public         `json:"signed_pre_key"`
	SignedPreKeySignature []byte               `json:"signed_pre_key_signature"`
	OneTimePreKey         *OneTimePreKeyPublic `json:"one_time_pre_key,omitempty"`
}
