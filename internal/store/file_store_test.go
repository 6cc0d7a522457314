package store_test

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ssabro/MailVista-sub001/internal/domain"
	"github.com/ssabro/MailVista-sub001/internal/store"
)

const testAccount = domain.AccountID("alice@test")

func newKeeper(t *testing.T) (string, *store.Keeper) {
	t.Helper()
	home := t.TempDir()
	k, err := store.NewKeeper(home)
	if err != nil {
		t.Fatalf("NewKeeper: %v", err)
	}
	return home, k
}

// flipByteIn corrupts one byte of the single file matching suffix under root.
func flipByteIn(t *testing.T, root, suffix string) {
	t.Helper()
	var target string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, suffix) {
			target = path
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	if target == "" {
		t.Fatalf("no file matching %q under %s", suffix, root)
	}
	b, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read %s: %v", target, err)
	}
	b[len(b)/2] ^= 0x01
	if err := os.WriteFile(target, b, 0o600); err != nil {
		t.Fatalf("write %s: %v", target, err)
	}
}

func TestIdentity_SaveLoad(t *testing.T) {
	home, k := newKeeper(t)
	var ids domain.IdentityStore = store.NewIdentityFileStore(home, k)

	id := domain.IdentityRecord{
		XPub:           domain.X25519Public{1},
		XPriv:          domain.X25519Private{2},
		EdPub:          domain.Ed25519Public{3},
		EdPriv:         domain.Ed25519Private{4},
		RegistrationID: 4217,
	}
	if err := ids.SaveIdentity(testAccount, id); err != nil {
		t.Fatalf("save identity: %v", err)
	}

	got, ok, err := ids.LoadIdentity(testAccount)
	if err != nil {
		t.Fatalf("load identity: %v", err)
	}
	if !ok {
		t.Fatal("identity should exist")
	}
	if got.XPub != id.XPub || got.EdPub != id.EdPub || got.RegistrationID != id.RegistrationID {
		t.Fatal("mismatch after load")
	}
}

func TestIdentity_AbsentIsNotAnError(t *testing.T) {
	home, k := newKeeper(t)
	ids := store.NewIdentityFileStore(home, k)

	_, ok, err := ids.LoadIdentity("nobody@test")
	if err != nil {
		t.Fatalf("load absent identity: %v", err)
	}
	if ok {
		t.Fatal("absent identity reported as present")
	}
}

func TestIdentity_CorruptionIsDetected(t *testing.T) {
	home, k := newKeeper(t)
	ids := store.NewIdentityFileStore(home, k)

	if err := ids.SaveIdentity(testAccount, domain.IdentityRecord{XPub: domain.X25519Public{9}}); err != nil {
		t.Fatalf("save identity: %v", err)
	}
	flipByteIn(t, filepath.Join(home, "accounts"), "identity.enc")

	_, _, err := ids.LoadIdentity(testAccount)
	if !errors.Is(err, domain.ErrStorageCorruption) {
		t.Fatalf("want ErrStorageCorruption, got %v", err)
	}
}

func TestKeeper_DifferentDeviceCannotOpen(t *testing.T) {
	home, k := newKeeper(t)
	ids := store.NewIdentityFileStore(home, k)
	if err := ids.SaveIdentity(testAccount, domain.IdentityRecord{XPub: domain.X25519Public{7}}); err != nil {
		t.Fatalf("save identity: %v", err)
	}

	// A keeper from a different device secret must reject the record.
	other, err := store.NewKeeper(t.TempDir())
	if err != nil {
		t.Fatalf("NewKeeper: %v", err)
	}
	ids2 := store.NewIdentityFileStore(home, other)
	if _, _, err := ids2.LoadIdentity(testAccount); !errors.Is(err, domain.ErrStorageCorruption) {
		t.Fatalf("want ErrStorageCorruption, got %v", err)
	}
}

func TestPreKeys_SaveListDelete(t *testing.T) {
	home, k := newKeeper(t)
	var pks domain.PreKeyStore = store.NewPreKeyFileStore(home, k)

	recs := []domain.PreKeyRecord{
		{ID: 3, Priv: domain.X25519Private{3}, Pub: domain.X25519Public{3}},
		{ID: 1, Priv: domain.X25519Private{1}, Pub: domain.X25519Public{1}},
		{ID: 2, Priv: domain.X25519Private{2}, Pub: domain.X25519Public{2}},
	}
	if err := pks.SaveOneTimePreKeys(testAccount, recs); err != nil {
		t.Fatalf("save prekeys: %v", err)
	}

	ids, err := pks.ListOneTimePreKeyIDs(testAccount)
	if err != nil {
		t.Fatalf("list prekeys: %v", err)
	}
	if len(ids) != 3 || ids[0] != 1 || ids[1] != 2 || ids[2] != 3 {
		t.Fatalf("want ids [1 2 3], got %v", ids)
	}

	rec, ok, err := pks.LoadOneTimePreKey(testAccount, 2)
	if err != nil || !ok {
		t.Fatalf("load prekey 2: ok=%v err=%v", ok, err)
	}
	if rec.Pub != (domain.X25519Public{2}) {
		t.Fatal("prekey 2 mismatch")
	}

	if err := pks.DeleteOneTimePreKey(testAccount, 2); err != nil {
		t.Fatalf("delete prekey 2: %v", err)
	}
	if _, ok, err := pks.LoadOneTimePreKey(testAccount, 2); err != nil || ok {
		t.Fatalf("deleted prekey still loads: ok=%v err=%v", ok, err)
	}
	// Deleting twice is a no-op.
	if err := pks.DeleteOneTimePreKey(testAccount, 2); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestSignedPreKeys_CurrentPointer(t *testing.T) {
	home, k := newKeeper(t)
	pks := store.NewPreKeyFileStore(home, k)

	if _, ok, err := pks.CurrentSignedPreKeyID(testAccount); err != nil || ok {
		t.Fatalf("fresh account: ok=%v err=%v", ok, err)
	}

	for id := uint32(1); id <= 2; id++ {
		rec := domain.SignedPreKeyRecord{
			ID:         domain.SignedPreKeyID(id),
			Priv:       domain.X25519Private{byte(id)},
			Pub:        domain.X25519Public{byte(id)},
			Signature:  []byte{0xAA, byte(id)},
			CreatedUTC: int64(1700000000 + id),
		}
		if err := pks.SaveSignedPreKey(testAccount, rec); err != nil {
			t.Fatalf("save spk %d: %v", id, err)
		}
		if err := pks.SetCurrentSignedPreKeyID(testAccount, rec.ID); err != nil {
			t.Fatalf("set current %d: %v", id, err)
		}
	}

	cur, ok, err := pks.CurrentSignedPreKeyID(testAccount)
	if err != nil || !ok {
		t.Fatalf("current id: ok=%v err=%v", ok, err)
	}
	if cur != 2 {
		t.Fatalf("want current id 2, got %d", cur)
	}

	// The superseded record stays loadable.
	old, ok, err := pks.LoadSignedPreKey(testAccount, 1)
	if err != nil || !ok {
		t.Fatalf("load spk 1: ok=%v err=%v", ok, err)
	}
	if old.Pub != (domain.X25519Public{1}) {
		t.Fatal("spk 1 mismatch")
	}
}

func TestSessions_SaveLoadDeleteList(t *testing.T) {
	home, k := newKeeper(t)
	var ss domain.SessionStore = store.NewSessionFileStore(home, k)

	peer := domain.PeerID("bob@test")
	rec := domain.SessionRecord{
		Peer:          peer,
		RootKey:       []byte{1, 2, 3},
		ChainKey:      []byte{4, 5, 6},
		MessageNumber: 7,
	}
	if err := ss.SaveSession(testAccount, peer, rec); err != nil {
		t.Fatalf("save session: %v", err)
	}

	got, ok, err := ss.LoadSession(testAccount, peer)
	if err != nil || !ok {
		t.Fatalf("load session: ok=%v err=%v", ok, err)
	}
	if got.MessageNumber != 7 || string(got.ChainKey) != string(rec.ChainKey) {
		t.Fatal("session mismatch after load")
	}

	peers, err := ss.ListSessionPeers(testAccount)
	if err != nil {
		t.Fatalf("list sessions: %v", err)
	}
	if len(peers) != 1 || peers[0] != peer {
		t.Fatalf("want [%s], got %v", peer, peers)
	}

	if err := ss.DeleteSession(testAccount, peer); err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if _, ok, err := ss.LoadSession(testAccount, peer); err != nil || ok {
		t.Fatalf("deleted session still loads: ok=%v err=%v", ok, err)
	}
}

func TestTrust_PinRoundTrip(t *testing.T) {
	home, k := newKeeper(t)
	var trust domain.TrustStore = store.NewTrustFileStore(home, k)

	pin := domain.RemoteIdentity{
		Peer:        "bob@test",
		IdentityKey: domain.X25519Public{0xBB},
		PinnedUTC:   1700000000,
	}
	if err := trust.SaveRemoteIdentity(testAccount, pin); err != nil {
		t.Fatalf("save pin: %v", err)
	}
	got, ok, err := trust.LoadRemoteIdentity(testAccount, pin.Peer)
	if err != nil || !ok {
		t.Fatalf("load pin: ok=%v err=%v", ok, err)
	}
	if got.IdentityKey != pin.IdentityKey {
		t.Fatal("pin mismatch after load")
	}
}

func TestBundles_CacheRoundTrip(t *testing.T) {
	home, k := newKeeper(t)
	var bundles domain.BundleStore = store.NewBundleFileStore(home, k)

	peer := domain.PeerID("bob@test")
	b := domain.PreKeyBundle{
		RegistrationID: 99,
		IdentityKey:    domain.X25519Public{0xCC},
		SignedPreKeyID: 5,
		OneTimePreKey:  &domain.OneTimePreKeyPublic{ID: 12, Pub: domain.X25519Public{0xDD}},
	}
	if err := bundles.SaveBundle(testAccount, peer, b); err != nil {
		t.Fatalf("save bundle: %v", err)
	}
	got, ok, err := bundles.LoadBundle(testAccount, peer)
	if err != nil || !ok {
		t.Fatalf("load bundle: ok=%v err=%v", ok, err)
	}
	if got.SignedPreKeyID != 5 || got.OneTimePreKey == nil || got.OneTimePreKey.ID != 12 {
		t.Fatal("bundle mismatch after load")
	}
}
