package types

// AccountID identifies a local mail account (an opaque address such as
// "alice@example.org").
type AccountID string

// String returns the string form of the account identifier.
func (a AccountID) String() string { return string(a) }

// PeerID identifies the remote party of a session.
type PeerID string

// String returns the string form of the peer identifier.
func (p PeerID) String() string { return string(p) }

// PreKeyID numbers a one-time prekey. IDs are issued sequentially per
// account and never reused.
type PreKeyID uint32

// SignedPreKeyID numbers a signed prekey. The current one is tracked by a
// pointer record; rotation issues currentID+1.
type SignedPreKeyID uint32

// Fingerprint is a short identifier for public keys presented to users.
type Fingerprint string

// String returns the string form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }
