package types

// IdentityRecord holds an account's long-term key material.
//
// The X25519 pair is the Diffie-Hellman identity used by X3DH and pinned by
// peers on first contact. The Ed25519 pair signs signed prekeys. The record
// is created once at registration and never replaced.
type IdentityRecord struct {
	XPub           X25519Public   `json:"xpub"`
	XPriv          X25519Private  `json:"xpriv"`
	EdPub          Ed25519Public  `json:"edpub"`
	EdPriv         Ed25519Private `json:"edpriv"`
	RegistrationID uint32         `json:"registration_id"`
}

// RemoteIdentity is the trust-on-first-use pin for a peer. Once recorded, a
// different identity key for the same peer is a trust violation.
type RemoteIdentity struct {
	Peer        PeerID       `json:"peer"`
	IdentityKey X25519Public `json:"identity_key"`
	PinnedUTC   int64        `json:"pinned_utc"`
}
