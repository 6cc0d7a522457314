package domain

import (
	interfaces "github.com/ssabro/MailVista-sub001/internal/domain/interfaces"
	types "github.com/ssabro/MailVista-sub001/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	AccountID           = types.AccountID
	PeerID              = types.PeerID
	PreKeyID            = types.PreKeyID
	SignedPreKeyID      = types.SignedPreKeyID
	Fingerprint         = types.Fingerprint
	IdentityRecord      = types.IdentityRecord
	RemoteIdentity      = types.RemoteIdentity
	PreKeyRecord        = types.PreKeyRecord
	SignedPreKeyRecord  = types.SignedPreKeyRecord
	OneTimePreKeyPublic = types.OneTimePreKeyPublic
	PreKeyBundle        = types.PreKeyBundle
	SessionRecord       = types.SessionRecord
	X25519Public        = types.X25519Public
	X25519Private       = types.X25519Private
	Ed25519Public       = types.Ed25519Public
	Ed25519Private      = types.Ed25519Private
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	KeyManager      = interfaces.KeyManager
	SessionEngine   = interfaces.SessionEngine
	DirectoryClient = interfaces.DirectoryClient
	IdentityStore   = interfaces.IdentityStore
	PreKeyStore     = interfaces.PreKeyStore
	SessionStore    = interfaces.SessionStore
	TrustStore      = interfaces.TrustStore
	BundleStore     = interfaces.BundleStore
)
