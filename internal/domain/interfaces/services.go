package interfaces

import (
	"context"

	domaintypes "github.com/ssabro/MailVista-sub001/internal/domain/types"
)

// KeyManager orchestrates identity and prekey lifecycle for local accounts.
type KeyManager interface {
	// RegisterAccount creates the identity, first signed prekey, and the
	// one-time prekey pool. It fails if the account is already registered.
	RegisterAccount(account domaintypes.AccountID) (domaintypes.PreKeyBundle, error)

	// RefreshOneTimePreKeys tops the pool back up to its target size when it
	// has fallen below the refill threshold. It returns how many new prekeys
	// were generated (zero when the pool was healthy).
	RefreshOneTimePreKeys(account domaintypes.AccountID) (int, error)

	// RotateSignedPreKeyIfNeeded replaces the current signed prekey once it
	// is older than the rotation period. The superseded record is retained.
	RotateSignedPreKeyIfNeeded(account domaintypes.AccountID) (bool, error)

	// ExportPublicBundle assembles the account's public bundle, attaching one
	// available one-time prekey when the pool is non-empty.
	ExportPublicBundle(account domaintypes.AccountID) (domaintypes.PreKeyBundle, error)

	// ImportBundle validates a peer's bundle, pins the peer identity on first
	// contact, and caches the bundle for session establishment.
	ImportBundle(
		account domaintypes.AccountID,
		peer domaintypes.PeerID,
		bundle domaintypes.PreKeyBundle,
	) error

	// ConsumePreKey removes the one-time prekey with the given id, returning
	// its key material, then triggers a pool refresh.
	ConsumePreKey(
		account domaintypes.AccountID,
		id domaintypes.PreKeyID,
	) (domaintypes.PreKeyRecord, bool, error)

	// FetchBundle returns a peer bundle from the local cache, falling back to
	// the key directory when one is configured.
	FetchBundle(
		ctx context.Context,
		account domaintypes.AccountID,
		peer domaintypes.PeerID,
	) (domaintypes.PreKeyBundle, error)

	// PublishBundle uploads the account's public bundle and remaining
	// one-time prekeys to the key directory, when one is configured.
	PublishBundle(ctx context.Context, account domaintypes.AccountID) error
}

// SessionEngine establishes sessions and encrypts/decrypts mail bodies.
type SessionEngine interface {
	// Establish runs X3DH as the initiator against the peer's bundle and
	// persists the resulting session, replacing any prior one.
	Establish(
		account domaintypes.AccountID,
		peer domaintypes.PeerID,
		bundle domaintypes.PreKeyBundle,
	) (domaintypes.SessionRecord, error)

	// Encrypt produces the transport payload for plaintext, establishing a
	// session first if none exists and a bundle can be obtained.
	Encrypt(
		ctx context.Context,
		account domaintypes.AccountID,
		peer domaintypes.PeerID,
		plaintext []byte,
	) (string, error)

	// Decrypt opens a transport payload, bootstrapping a session from a
	// "prekey" envelope when necessary.
	Decrypt(
		account domaintypes.AccountID,
		peer domaintypes.PeerID,
		payload string,
	) ([]byte, error)

	HasSession(account domaintypes.AccountID, peer domaintypes.PeerID) (bool, error)
	DeleteSession(account domaintypes.AccountID, peer domaintypes.PeerID) error
	ListSessions(account domaintypes.AccountID) ([]domaintypes.PeerID, error)
}
