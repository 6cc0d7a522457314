package keymanager

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ssabro/MailVista-sub001/internal/crypto"
	"github.com/ssabro/MailVista-sub001/internal/domain"
	"github.com/ssabro/MailVista-sub001/internal/protocol/x3dh"
	"github.com/ssabro/MailVista-sub001/internal/util/keylock"
)

const (
	// poolTarget is the one-time prekey pool size restored by a refill.
	poolTarget = 100
	// refillThreshold is the pool size at which a refresh becomes a no-op.
	refillThreshold = 10
	// rotationPeriod is the signed prekey age that triggers rotation.
	rotationPeriod = 7 * 24 * time.Hour
	// firstSignedPreKeyID seeds the signed prekey id sequence.
	firstSignedPreKeyID = 1
)

// ErrNoDirectory is returned by publish operations when no key directory is
// configured.
var ErrNoDirectory = errors.New("no key directory configured")

// Service implements domain.KeyManager over the backing stores. All pool and
// registration mutation is serialized per account.
type Service struct {
	ids     domain.IdentityStore
	pks     domain.PreKeyStore
	trust   domain.TrustStore
	bundles domain.BundleStore
	dir     domain.DirectoryClient // nil when the directory is disabled

	now   func() time.Time
	locks keylock.Map
}

// Option adjusts Service construction.
type Option func(*Service)

// WithClock overrides the time source, used by rotation tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New constructs a key manager. dir may be nil; every operation except
// PublishBundle works without it.
func New(
	ids domain.IdentityStore,
	pks domain.PreKeyStore,
	trust domain.TrustStore,
	bundles domain.BundleStore,
	dir domain.DirectoryClient,
	opts ...Option,
) *Service {
	s := &Service{
		ids:     ids,
		pks:     pks,
		trust:   trust,
		bundles: bundles,
		dir:     dir,
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// RegisterAccount creates the account's identity, first signed prekey, and
// one-time prekey pool, then returns the public bundle. A second call fails
// with domain.ErrAlreadyRegistered; keys are never silently overwritten.
func (s *Service) RegisterAccount(account domain.AccountID) (domain.PreKeyBundle, error) {
	unlock := s.locks.Lock(account.String())
	defer unlock()

	if _, ok, err := s.ids.LoadIdentity(account); err != nil {
		return domain.PreKeyBundle{}, err
	} else if ok {
		return domain.PreKeyBundle{}, fmt.Errorf("%w: %s", domain.ErrAlreadyRegistered, account)
	}

	xPriv, xPub, err := crypto.GenerateX25519()
	if err != nil {
		return domain.PreKeyBundle{}, err
	}
	edPriv, edPub, err := crypto.GenerateEd25519()
	if err != nil {
		return domain.PreKeyBundle{}, err
	}
	regID, err := crypto.GenerateRegistrationID()
	if err != nil {
		return domain.PreKeyBundle{}, err
	}
	id := domain.IdentityRecord{
		XPub:           xPub,
		XPriv:          xPriv,
		EdPub:          edPub,
		EdPriv:         edPriv,
		RegistrationID: regID,
	}
	if err := s.ids.SaveIdentity(account, id); err != nil {
		return domain.PreKeyBundle{}, err
	}

	if _, err := s.issueSignedPreKey(account, id, firstSignedPreKeyID); err != nil {
		return domain.PreKeyBundle{}, err
	}
	if _, err := s.generateOneTimePreKeys(account, 1, poolTarget); err != nil {
		return domain.PreKeyBundle{}, err
	}

	return s.exportLocked(account, id)
}

// RefreshOneTimePreKeys tops the pool back up to poolTarget when fewer than
// refillThreshold prekeys remain. New ids continue from max(existing)+1.
func (s *Service) RefreshOneTimePreKeys(account domain.AccountID) (int, error) {
	unlock := s.locks.Lock(account.String())
	defer unlock()

	return s.refreshLocked(account)
}

func (s *Service) refreshLocked(account domain.AccountID) (int, error) {
	if _, ok, err := s.ids.LoadIdentity(account); err != nil {
		return 0, err
	} else if !ok {
		return 0, fmt.Errorf("%w: %s", domain.ErrNotRegistered, account)
	}

	ids, err := s.pks.ListOneTimePreKeyIDs(account)
	if err != nil {
		return 0, err
	}
	if len(ids) >= refillThreshold {
		return 0, nil
	}

	next := domain.PreKeyID(1)
	for _, id := range ids {
		if id >= next {
			next = id + 1
		}
	}
	n := poolTarget - len(ids)
	if _, err := s.generateOneTimePreKeys(account, next, n); err != nil {
		return 0, err
	}
	return n, nil
}

// RotateSignedPreKeyIfNeeded replaces the current signed prekey once it is
// older than rotationPeriod. The superseded record stays retrievable so
// in-flight messages referencing it can still be processed.
func (s *Service) RotateSignedPreKeyIfNeeded(account domain.AccountID) (bool, error) {
	unlock := s.locks.Lock(account.String())
	defer unlock()

	id, ok, err := s.ids.LoadIdentity(account)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, fmt.Errorf("%w: %s", domain.ErrNotRegistered, account)
	}

	curID, ok, err := s.pks.CurrentSignedPreKeyID(account)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, fmt.Errorf("%w: no current signed prekey", domain.ErrMissingSignedPreKey)
	}
	cur, ok, err := s.pks.LoadSignedPreKey(account, curID)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, fmt.Errorf("%w: id %d", domain.ErrMissingSignedPreKey, curID)
	}

	age := s.now().Sub(time.Unix(cur.CreatedUTC, 0))
	if age < rotationPeriod {
		return false, nil
	}
	if _, err := s.issueSignedPreKey(account, id, curID+1); err != nil {
		return false, err
	}
	return true, nil
}

// ExportPublicBundle assembles the account's public bundle. One available
// one-time prekey (the smallest id) is attached opportunistically; none of
// the caller's private material leaves the store.
func (s *Service) ExportPublicBundle(account domain.AccountID) (domain.PreKeyBundle, error) {
	unlock := s.locks.Lock(account.String())
	defer unlock()

	id, ok, err := s.ids.LoadIdentity(account)
	if err != nil {
		return domain.PreKeyBundle{}, err
	}
	if !ok {
		return domain.PreKeyBundle{}, fmt.Errorf("%w: %s", domain.ErrNotRegistered, account)
	}
	return s.exportLocked(account, id)
}

func (s *Service) exportLocked(
	account domain.AccountID,
	id domain.IdentityRecord,
) (domain.PreKeyBundle, error) {
	curID, ok, err := s.pks.CurrentSignedPreKeyID(account)
	if err != nil {
		return domain.PreKeyBundle{}, err
	}
	if !ok {
		return domain.PreKeyBundle{}, fmt.Errorf(
			"%w: no current signed prekey", domain.ErrMissingSignedPreKey,
		)
	}
	spk, ok, err := s.pks.LoadSignedPreKey(account, curID)
	if err != nil {
		return domain.PreKeyBundle{}, err
	}
	if !ok {
		return domain.PreKeyBundle{}, fmt.Errorf("%w: id %d", domain.ErrMissingSignedPreKey, curID)
	}

	bundle := domain.PreKeyBundle{
		RegistrationID:        id.RegistrationID,
		IdentityKey:           id.XPub,
		SigningKey:            id.EdPub,
		SignedPreKeyID:        spk.ID,
		SignedPreKey:          spk.Pub,
		SignedPreKeySignature: spk.Signature,
	}

	otpkIDs, err := s.pks.ListOneTimePreKeyIDs(account)
	if err != nil {
		return domain.PreKeyBundle{}, err
	}
	if len(otpkIDs) > 0 {
		rec, ok, err := s.pks.LoadOneTimePreKey(account, otpkIDs[0])
		if err != nil {
			return domain.PreKeyBundle{}, err
		}
		if ok {
			bundle.OneTimePreKey = &domain.OneTimePreKeyPublic{ID: rec.ID, Pub: rec.Pub}
		}
	}
	return bundle, nil
}

// ImportBundle validates a peer bundle, pins the peer identity on first
// contact, and caches the bundle for later session establishment.
func (s *Service) ImportBundle(
	account domain.AccountID,
	peer domain.PeerID,
	bundle domain.PreKeyBundle,
) error {
	unlock := s.locks.Lock(account.String())
	defer unlock()

	return s.importLocked(account, peer, bundle)
}

func (s *Service) importLocked(
	account domain.AccountID,
	peer domain.PeerID,
	bundle domain.PreKeyBundle,
) error {
	if !x3dh.VerifySignedPreKey(
		bundle.SigningKey, bundle.SignedPreKey, bundle.SignedPreKeySignature,
	) {
		return fmt.Errorf("%w: bundle for %s", domain.ErrInvalidBundleSignature, peer)
	}

	pin, pinned, err := s.trust.LoadRemoteIdentity(account, peer)
	if err != nil {
		return err
	}
	if pinned && pin.IdentityKey != bundle.IdentityKey {
		return fmt.Errorf("%w: %s", domain.ErrIdentityKeyMismatch, peer)
	}
	if !pinned {
		err := s.trust.SaveRemoteIdentity(account, domain.RemoteIdentity{
			Peer:        peer,
			IdentityKey: bundle.IdentityKey,
			PinnedUTC:   s.now().Unix(),
		})
		if err != nil {
			return err
		}
	}
	return s.bundles.SaveBundle(account, peer, bundle)
}

// ConsumePreKey removes the one-time prekey with the given id and triggers a
// pool refresh, so depletion is self-healing. ok=false means the id was not
// held (already consumed or never issued).
func (s *Service) ConsumePreKey(
	account domain.AccountID,
	id domain.PreKeyID,
) (domain.PreKeyRecord, bool, error) {
	unlock := s.locks.Lock(account.String())
	defer unlock()

	rec, ok, err := s.pks.LoadOneTimePreKey(account, id)
	if err != nil || !ok {
		return domain.PreKeyRecord{}, false, err
	}
	if err := s.pks.DeleteOneTimePreKey(account, id); err != nil {
		return domain.PreKeyRecord{}, false, err
	}
	if _, err := s.refreshLocked(account); err != nil {
		return domain.PreKeyRecord{}, false, err
	}
	return rec, true, nil
}

// FetchBundle returns a bundle for peer from the local cache, falling back to
// the key directory when one is configured. Directory responses go through
// the same validation and pinning as an out-of-band import.
func (s *Service) FetchBundle(
	ctx context.Context,
	account domain.AccountID,
	peer domain.PeerID,
) (domain.PreKeyBundle, error) {
	unlock := s.locks.Lock(account.String())
	defer unlock()

	if b, ok, err := s.bundles.LoadBundle(account, peer); err != nil {
		return domain.PreKeyBundle{}, err
	} else if ok {
		return b, nil
	}

	if s.dir == nil {
		return domain.PreKeyBundle{}, fmt.Errorf("%w: %s", domain.ErrBundleUnavailable, peer)
	}
	b, err := s.dir.Fetch(ctx, peer)
	if err != nil {
		return domain.PreKeyBundle{}, fmt.Errorf(
			"%w: %s: %v", domain.ErrBundleUnavailable, peer, err,
		)
	}
	if err := s.importLocked(account, peer, b); err != nil {
		return domain.PreKeyBundle{}, err
	}
	return b, nil
}

// PublishBundle uploads the account's public bundle and the public halves of
// its remaining one-time prekeys to the key directory.
func (s *Service) PublishBundle(ctx context.Context, account domain.AccountID) error {
	unlock := s.locks.Lock(account.String())
	defer unlock()

	if s.dir == nil {
		return ErrNoDirectory
	}
	id, ok, err := s.ids.LoadIdentity(account)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrNotRegistered, account)
	}
	bundle, err := s.exportLocked(account, id)
	if err != nil {
		return err
	}
	if err := s.dir.Upload(ctx, account, bundle); err != nil {
		return fmt.Errorf("upload bundle: %w", err)
	}

	otpkIDs, err := s.pks.ListOneTimePreKeyIDs(account)
	if err != nil {
		return err
	}
	keys := make([]domain.OneTimePreKeyPublic, 0, len(otpkIDs))
	for _, kid := range otpkIDs {
		rec, ok, err := s.pks.LoadOneTimePreKey(account, kid)
		if err != nil {
			return err
		}
		if ok {
			keys = append(keys, domain.OneTimePreKeyPublic{ID: rec.ID, Pub: rec.Pub})
		}
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.dir.UploadPreKeys(ctx, account, keys); err != nil {
		return fmt.Errorf("upload prekeys: %w", err)
	}
	return nil
}

// issueSignedPreKey generates, signs, persists, and repoints a signed prekey.
func (s *Service) issueSignedPreKey(
	account domain.AccountID,
	id domain.IdentityRecord,
	keyID domain.SignedPreKeyID,
) (domain.SignedPreKeyRecord, error) {
	priv, pub, err := crypto.GenerateX25519()
	if err != nil {
		return domain.SignedPreKeyRecord{}, err
	}
	rec := domain.SignedPreKeyRecord{
		ID:         keyID,
		Priv:       priv,
		Pub:        pub,
		Signature:  crypto.SignEd25519(id.EdPriv, pub.Slice()),
		CreatedUTC: s.now().Unix(),
	}
	if err := s.pks.SaveSignedPreKey(account, rec); err != nil {
		return domain.SignedPreKeyRecord{}, err
	}
	if err := s.pks.SetCurrentSignedPreKeyID(account, keyID); err != nil {
		return domain.SignedPreKeyRecord{}, err
	}
	return rec, nil
}

// generateOneTimePreKeys creates n prekeys with ids from startID.
func (s *Service) generateOneTimePreKeys(
	account domain.AccountID,
	startID domain.PreKeyID,
	n int,
) ([]domain.PreKeyRecord, error) {
	recs := make([]domain.PreKeyRecord, 0, n)
	for i := 0; i < n; i++ {
		priv, pub, err := crypto.GenerateX25519()
		if err != nil {
			return nil, err
		}
		recs = append(recs, domain.PreKeyRecord{
			ID:   startID + domain.PreKeyID(i),
			Priv: priv,
			Pub:  pub,
		})
	}
	if err := s.pks.SaveOneTimePreKeys(account, recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// Compile-time assertion that Service implements domain.KeyManager.
var _ domain.KeyManager = (*Service)(nil)
