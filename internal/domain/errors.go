package domain

import "errors"

// Protocol and storage error taxonomy. Operations wrap these with context via
// fmt.Errorf and %w; callers branch with errors.Is.
var (
	// ErrAlreadyRegistered is returned when registering an account that
	// already has an identity. Registration never overwrites keys.
	ErrAlreadyRegistered = errors.New("account already registered")

	// ErrNotRegistered is returned by operations that require an identity
	// before one has been created.
	ErrNotRegistered = errors.New("account not registered")

	// ErrInvalidBundleSignature means a bundle's signed-prekey signature did
	// not verify against its claimed signing key.
	ErrInvalidBundleSignature = errors.New("invalid signed prekey signature")

	// ErrIdentityKeyMismatch means a peer presented an identity key that
	// differs from the pinned one. Possible impersonation; never auto-resolved.
	ErrIdentityKeyMismatch = errors.New("peer identity key mismatch")

	// ErrNoSessionBootstrap means a non-bootstrap envelope arrived for a peer
	// with no established session.
	ErrNoSessionBootstrap = errors.New("no session and message is not a bootstrap")

	// ErrMissingSignedPreKey means a bootstrap envelope referenced a signed
	// prekey id this account does not hold.
	ErrMissingSignedPreKey = errors.New("referenced signed prekey not found")

	// ErrDecryptionFailed means AEAD authentication failed. Possible active
	// attack; never silently dropped.
	ErrDecryptionFailed = errors.New("message authentication failed")

	// ErrBundleUnavailable means no cached bundle exists for the peer and no
	// key directory is configured (or it had none).
	ErrBundleUnavailable = errors.New("no key bundle available for peer")

	// ErrStorageCorruption means a persisted record failed its authentication
	// tag. Distinct from absence so callers get a diagnosable signal.
	ErrStorageCorruption = errors.New("stored record is corrupted or tampered")
)
