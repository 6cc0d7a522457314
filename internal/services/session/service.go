package session

import (
	"context"
	"fmt"
	"time"

	"github.com/ssabro/MailVista-sub001/internal/crypto"
	"github.com/ssabro/MailVista-sub001/internal/domain"
	"github.com/ssabro/MailVista-sub001/internal/protocol/chain"
	"github.com/ssabro/MailVista-sub001/internal/protocol/x3dh"
	"github.com/ssabro/MailVista-sub001/internal/util/keylock"
	"github.com/ssabro/MailVista-sub001/internal/util/memzero"
	"github.com/ssabro/MailVista-sub001/internal/wire"
)

// Service implements domain.SessionEngine.
//
// Every encrypt and decrypt is a read-modify-write of the per-peer session
// record, so all session mutation is serialized per (account, peer).
type Service struct {
	ids      domain.IdentityStore
	pks      domain.PreKeyStore
	sessions domain.SessionStore
	trust    domain.TrustStore
	keys     domain.KeyManager

	now   func() time.Time
	locks keylock.Map
}

// Option adjusts Service construction.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New constructs a session engine over the given stores and key manager.
func New(
	ids domain.IdentityStore,
	pks domain.PreKeyStore,
	sessions domain.SessionStore,
	trust domain.TrustStore,
	keys domain.KeyManager,
	opts ...Option,
) *Service {
	s := &Service{
		ids:      ids,
		pks:      pks,
		sessions: sessions,
		trust:    trust,
		keys:     keys,
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Establish runs X3DH as the initiator against the peer's bundle and persists
// the resulting session record, replacing any prior one for that peer.
func (s *Service) Establish(
	account domain.AccountID,
	peer domain.PeerID,
	bundle domain.PreKeyBundle,
) (domain.SessionRecord, error) {
	unlock := s.locks.Lock(sessionKey(account, peer))
	defer unlock()

	return s.establishLocked(account, peer, bundle)
}

func (s *Service) establishLocked(
	account domain.AccountID,
	peer domain.PeerID,
	bundle domain.PreKeyBundle,
) (domain.SessionRecord, error) {
	id, ok, err := s.ids.LoadIdentity(account)
	if err != nil {
		return domain.SessionRecord{}, err
	}
	if !ok {
		return domain.SessionRecord{}, fmt.Errorf("%w: %s", domain.ErrNotRegistered, account)
	}

	if err := s.verifyAndPin(account, peer, bundle.IdentityKey); err != nil {
		return domain.SessionRecord{}, err
	}

	ephPriv, ephPub, err := crypto.GenerateX25519()
	if err != nil {
		return domain.SessionRecord{}, err
	}
	rootKey, chainKey, err := x3dh.InitiatorSecret(id, ephPriv, bundle)
	if err != nil {
		return domain.SessionRecord{}, err
	}
	memzero.Zero(ephPriv[:])

	rec := domain.SessionRecord{
		Peer:              peer,
		RemoteIdentityKey: bundle.IdentityKey,
		LocalIdentityKey:  id.XPub,
		RootKey:           rootKey,
		ChainKey:          chainKey,
		MessageNumber:     0,
		PreviousCounter:   0,
		CreatedUTC:        s.now().Unix(),
		SignedPreKeyID:    bundle.SignedPreKeyID,
		BaseKey:           ephPub,
	}
	if bundle.OneTimePreKey != nil {
		otpkID := bundle.OneTimePreKey.ID
		rec.OneTimePreKeyID = &otpkID
	}
	if err := s.sessions.SaveSession(account, peer, rec); err != nil {
		return domain.SessionRecord{}, err
	}
	return rec, nil
}

// Encrypt produces the transport payload for plaintext. When no session
// exists it first obtains a bundle through the key manager and establishes
// one; the first outgoing message carries the X3DH bootstrap parameters.
func (s *Service) Encrypt(
	ctx context.Context,
	account domain.AccountID,
	peer domain.PeerID,
	plaintext []byte,
) (string, error) {
	unlock := s.locks.Lock(sessionKey(account, peer))
	defer unlock()

	id, ok, err := s.ids.LoadIdentity(account)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrNotRegistered, account)
	}

	sess, ok, err := s.sessions.LoadSession(account, peer)
	if err != nil {
		return "", err
	}
	if !ok {
		bundle, err := s.keys.FetchBundle(ctx, account, peer)
		if err != nil {
			return "", err
		}
		sess, err = s.establishLocked(account, peer, bundle)
		if err != nil {
			return "", err
		}
	}

	messageKey, nextChainKey := chain.Derive(sess.ChainKey)
	blob, err := chain.Seal(messageKey, plaintext)
	memzero.Zero(messageKey)
	if err != nil {
		return "", err
	}

	msg := wire.Message{
		Version:              wire.Version,
		Type:                 wire.TypeMessage,
		SenderIdentityKey:    sess.LocalIdentityKey.Slice(),
		SenderRegistrationID: id.RegistrationID,
		MessageNumber:        sess.MessageNumber,
		PreviousCounter:      sess.PreviousCounter,
		Ciphertext:           blob,
	}
	if sess.MessageNumber == 0 {
		spkID := sess.SignedPreKeyID
		msg.Type = wire.TypePreKey
		msg.SignedPreKeyID = &spkID
		msg.PreKeyID = sess.OneTimePreKeyID
		msg.BaseKey = sess.BaseKey.Slice()
	}

	sess.ChainKey = nextChainKey
	sess.MessageNumber++
	if err := s.sessions.SaveSession(account, peer, sess); err != nil {
		return "", err
	}
	return wire.Encode(msg)
}

// Decrypt opens a transport payload from peer. When no session exists and the
// envelope is a "prekey" message, it bootstraps one by mirroring the sender's
// X3DH derivation with the referenced signed and one-time prekeys.
//
// The session record is only advanced and persisted after the AEAD tag
// verifies, so a forged envelope cannot desynchronize the chain.
func (s *Service) Decrypt(
	account domain.AccountID,
	peer domain.PeerID,
	payload string,
) ([]byte, error) {
	msg, err := wire.Decode(payload)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(sessionKey(account, peer))
	defer unlock()

	sess, ok, err := s.sessions.LoadSession(account, peer)
	if err != nil {
		return nil, err
	}
	if !ok {
		if msg.Type != wire.TypePreKey {
			return nil, fmt.Errorf("%w: peer %s", domain.ErrNoSessionBootstrap, peer)
		}
		sess, err = s.bootstrapLocked(account, peer, msg)
		if err != nil {
			return nil, err
		}
	} else if senderIK, ok := asKey(msg.SenderIdentityKey); ok &&
		senderIK != sess.RemoteIdentityKey {
		return nil, fmt.Errorf("%w: %s", domain.ErrIdentityKeyMismatch, peer)
	}

	messageKey, nextChainKey := chain.Derive(sess.ChainKey)
	pt, err := chain.Open(messageKey, msg.Ciphertext)
	memzero.Zero(messageKey)
	if err != nil {
		return nil, fmt.Errorf("%w: from %s", err, peer)
	}

	sess.ChainKey = nextChainKey
	sess.MessageNumber++
	if err := s.sessions.SaveSession(account, peer, sess); err != nil {
		return nil, err
	}
	return pt, nil
}

// bootstrapLocked establishes the responder side of a session from a "prekey"
// envelope.
func (s *Service) bootstrapLocked(
	account domain.AccountID,
	peer domain.PeerID,
	msg wire.Message,
) (domain.SessionRecord, error) {
	id, ok, err := s.ids.LoadIdentity(account)
	if err != nil {
		return domain.SessionRecord{}, err
	}
	if !ok {
		return domain.SessionRecord{}, fmt.Errorf("%w: %s", domain.ErrNotRegistered, account)
	}

	senderIK, ok := asKey(msg.SenderIdentityKey)
	if !ok {
		return domain.SessionRecord{}, fmt.Errorf(
			"bootstrap envelope from %s: malformed sender identity key", peer,
		)
	}
	baseKey, ok := asKey(msg.BaseKey)
	if !ok {
		return domain.SessionRecord{}, fmt.Errorf(
			"bootstrap envelope from %s: missing base key", peer,
		)
	}
	if msg.SignedPreKeyID == nil {
		return domain.SessionRecord{}, fmt.Errorf(
			"%w: bootstrap envelope carries no id", domain.ErrMissingSignedPreKey,
		)
	}

	if err := s.verifyAndPin(account, peer, senderIK); err != nil {
		return domain.SessionRecord{}, err
	}

	spk, ok, err := s.pks.LoadSignedPreKey(account, *msg.SignedPreKeyID)
	if err != nil {
		return domain.SessionRecord{}, err
	}
	if !ok {
		return domain.SessionRecord{}, fmt.Errorf(
			"%w: id %d", domain.ErrMissingSignedPreKey, *msg.SignedPreKeyID,
		)
	}

	var opkPriv *domain.X25519Private
	if msg.PreKeyID != nil {
		rec, ok, err := s.keys.ConsumePreKey(account, *msg.PreKeyID)
		if err != nil {
			return domain.SessionRecord{}, err
		}
		if ok {
			opkPriv = &rec.Priv
		}
	}

	rootKey, chainKey, err := x3dh.ResponderSecret(id, spk.Priv, opkPriv, senderIK, baseKey)
	if err != nil {
		return domain.SessionRecord{}, err
	}

	rec := domain.SessionRecord{
		Peer:              peer,
		RemoteIdentityKey: senderIK,
		LocalIdentityKey:  id.XPub,
		RootKey:           rootKey,
		ChainKey:          chainKey,
		MessageNumber:     0,
		PreviousCounter:   0,
		CreatedUTC:        s.now().Unix(),
	}
	if err := s.sessions.SaveSession(account, peer, rec); err != nil {
		return domain.SessionRecord{}, err
	}
	return rec, nil
}

// HasSession reports whether a session record exists for peer.
func (s *Service) HasSession(account domain.AccountID, peer domain.PeerID) (bool, error) {
	_, ok, err := s.sessions.LoadSession(account, peer)
	return ok, err
}

// DeleteSession removes the session record for peer.
func (s *Service) DeleteSession(account domain.AccountID, peer domain.PeerID) error {
	unlock := s.locks.Lock(sessionKey(account, peer))
	defer unlock()

	return s.sessions.DeleteSession(account, peer)
}

// ListSessions enumerates the peers this account holds a session with.
func (s *Service) ListSessions(account domain.AccountID) ([]domain.PeerID, error) {
	return s.sessions.ListSessionPeers(account)
}

// verifyAndPin enforces trust-on-first-use: the first identity key seen for a
// peer is pinned; a later mismatch is a hard failure, never overridden here.
func (s *Service) verifyAndPin(
	account domain.AccountID,
	peer domain.PeerID,
	identityKey domain.X25519Public,
) error {
	pin, pinned, err := s.trust.LoadRemoteIdentity(account, peer)
	if err != nil {
		return err
	}
	if pinned {
		if pin.IdentityKey != identityKey {
			return fmt.Errorf("%w: %s", domain.ErrIdentityKeyMismatch, peer)
		}
		return nil
	}
	return s.trust.SaveRemoteIdentity(account, domain.RemoteIdentity{
		Peer:        peer,
		IdentityKey: identityKey,
		PinnedUTC:   s.now().Unix(),
	})
}

func sessionKey(account domain.AccountID, peer domain.PeerID) string {
	return account.String() + "|" + peer.String()
}

func asKey(b []byte) (domain.X25519Public, bool) {
	var k domain.X25519Public
	if len(b) != len(k) {
		return k, false
	}
	copy(k[:], b)
	return k, true
}

// Compile-time assertion that Service implements domain.SessionEngine.
var _ domain.SessionEngine = (*Service)(nil)
