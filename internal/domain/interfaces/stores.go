package interfaces

import domaintypes "github.com/ssabro/MailVista-sub001/internal/domain/types"

// IdentityStore persists each account's long-term identity keys. Loads
// report absence with ok=false rather than an error.
type IdentityStore interface {
	SaveIdentity(account domaintypes.AccountID, id domaintypes.IdentityRecord) error
	LoadIdentity(account domaintypes.AccountID) (domaintypes.IdentityRecord, bool, error)
}

// PreKeyStore manages signed and one-time prekeys on disk.
type PreKeyStore interface {
	// One-time prekeys
	SaveOneTimePreKeys(account domaintypes.AccountID, recs []domaintypes.PreKeyRecord) error
	LoadOneTimePreKey(
		account domaintypes.AccountID,
		id domaintypes.PreKeyID,
	) (domaintypes.PreKeyRecord, bool, error)
	DeleteOneTimePreKey(account domaintypes.AccountID, id domaintypes.PreKeyID) error
	ListOneTimePreKeyIDs(account domaintypes.AccountID) ([]domaintypes.PreKeyID, error)

	// Signed prekeys
	SaveSignedPreKey(account domaintypes.AccountID, rec domaintypes.SignedPreKeyRecord) error
	LoadSignedPreKey(
		account domaintypes.AccountID,
		id domaintypes.SignedPreKeyID,
	) (domaintypes.SignedPreKeyRecord, bool, error)

	// Current signed prekey selection
	SetCurrentSignedPreKeyID(account domaintypes.AccountID, id domaintypes.SignedPreKeyID) error
	CurrentSignedPreKeyID(
		account domaintypes.AccountID,
	) (domaintypes.SignedPreKeyID, bool, error)
}

// SessionStore persists one session record per (account, peer).
type SessionStore interface {
	SaveSession(
		account domaintypes.AccountID,
		peer domaintypes.PeerID,
		rec domaintypes.SessionRecord,
	) error
	LoadSession(
		account domaintypes.AccountID,
		peer domaintypes.PeerID,
	) (domaintypes.SessionRecord, bool, error)
	DeleteSession(account domaintypes.AccountID, peer domaintypes.PeerID) error
	ListSessionPeers(account domaintypes.AccountID) ([]domaintypes.PeerID, error)
}

// TrustStore persists trust-on-first-use identity pins.
type TrustStore interface {
	SaveRemoteIdentity(account domaintypes.AccountID, pin domaintypes.RemoteIdentity) error
	LoadRemoteIdentity(
		account domaintypes.AccountID,
		peer domaintypes.PeerID,
	) (domaintypes.RemoteIdentity, bool, error)
}

// BundleStore caches peer bundles obtained via import or directory fetch.
type BundleStore interface {
	SaveBundle(
		account domaintypes.AccountID,
		peer domaintypes.PeerID,
		bundle domaintypes.PreKeyBundle,
	) error
	LoadBundle(
		account domaintypes.AccountID,
		peer domaintypes.PeerID,
	) (domaintypes.PreKeyBundle, bool, error)
}
