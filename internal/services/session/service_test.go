package session_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/ssabro/MailVista-sub001/internal/domain"
	"github.com/ssabro/MailVista-sub001/internal/services/keymanager"
	"github.com/ssabro/MailVista-sub001/internal/services/session"
	"github.com/ssabro/MailVista-sub001/internal/store"
	"github.com/ssabro/MailVista-sub001/internal/wire"
)

// party bundles one device's stores, key manager, and session engine.
type party struct {
	account domain.AccountID
	keys    *keymanager.Service
	engine  *session.Service
	pks     domain.PreKeyStore
}

// newParty registers account in its own keystore and returns its services.
func newParty(t *testing.T, account domain.AccountID) *party {
	t.Helper()
	home := t.TempDir()
	k, err := store.NewKeeper(home)
	if err != nil {
		t.Fatalf("NewKeeper: %v", err)
	}
	ids := store.NewIdentityFileStore(home, k)
	pks := store.NewPreKeyFileStore(home, k)
	trust := store.NewTrustFileStore(home, k)
	bundles := store.NewBundleFileStore(home, k)
	sessions := store.NewSessionFileStore(home, k)

	keys := keymanager.New(ids, pks, trust, bundles, nil)
	if _, err := keys.RegisterAccount(account); err != nil {
		t.Fatalf("RegisterAccount(%s): %v", account, err)
	}
	return &party{
		account: account,
		keys:    keys,
		engine:  session.New(ids, pks, sessions, trust, keys),
		pks:     pks,
	}
}

// connect exchanges public bundles out of band so both sides can start.
func connect(t *testing.T, a, b *party) {
	t.Helper()
	ab, err := a.keys.ExportPublicBundle(a.account)
	if err != nil {
		t.Fatalf("export %s: %v", a.account, err)
	}
	bb, err := b.keys.ExportPublicBundle(b.account)
	if err != nil {
		t.Fatalf("export %s: %v", b.account, err)
	}
	if err := a.keys.ImportBundle(a.account, domain.PeerID(b.account), bb); err != nil {
		t.Fatalf("import into %s: %v", a.account, err)
	}
	if err := b.keys.ImportBundle(b.account, domain.PeerID(a.account), ab); err != nil {
		t.Fatalf("import into %s: %v", b.account, err)
	}
}

func TestEncryptDecrypt_FirstContact(t *testing.T) {
	alice := newParty(t, "alice@test")
	bob := newParty(t, "bob@test")
	connect(t, alice, bob)

	plaintext := []byte("Hello Bob! This is a secret message.")
	payload, err := alice.engine.Encrypt(
		context.Background(), alice.account, domain.PeerID(bob.account), plaintext,
	)
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if !wire.IsEncrypted(payload) {
		t.Fatal("payload not recognised as encrypted")
	}
	if bytes.Contains([]byte(payload), plaintext) {
		t.Fatal("payload leaks plaintext")
	}

	// The first envelope carries the X3DH bootstrap parameters.
	msg, err := wire.Decode(payload)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if msg.Type != wire.TypePreKey {
		t.Fatalf("want prekey envelope, got %q", msg.Type)
	}
	if msg.SignedPreKeyID == nil || len(msg.BaseKey) != 32 {
		t.Fatal("bootstrap parameters missing from first envelope")
	}
	if msg.MessageNumber != 0 {
		t.Fatalf("want message number 0, got %d", msg.MessageNumber)
	}

	got, err := bob.engine.Decrypt(bob.account, domain.PeerID(alice.account), payload)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("got %q, want %q", got, plaintext)
	}

	// Bootstrap consumed the referenced one-time prekey on Bob's side.
	if msg.PreKeyID != nil {
		if _, ok, err := bob.pks.LoadOneTimePreKey(bob.account, *msg.PreKeyID); err != nil || ok {
			t.Fatalf("one-time prekey %d survived bootstrap: ok=%v err=%v", *msg.PreKeyID, ok, err)
		}
	}

	for _, p := range []*party{alice, bob} {
		peer := domain.PeerID(bob.account)
		if p == bob {
			peer = domain.PeerID(alice.account)
		}
		ok, err := p.engine.HasSession(p.account, peer)
		if err != nil || !ok {
			t.Fatalf("%s should hold a session with %s: ok=%v err=%v", p.account, peer, ok, err)
		}
	}
}

func TestEncryptDecrypt_Conversation(t *testing.T) {
	alice := newParty(t, "alice@test")
	bob := newParty(t, "bob@test")
	connect(t, alice, bob)

	aliceToBob := domain.PeerID(bob.account)
	bobToAlice := domain.PeerID(alice.account)

	exchange := []struct {
		from, to *party
		peerFrom domain.PeerID
		peerTo   domain.PeerID
		text     string
	}{
		{alice, bob, aliceToBob, bobToAlice, "Hello Bob! This is a secret message."},
		{bob, alice, bobToAlice, aliceToBob, "Hi Alice, got it."},
		{alice, bob, aliceToBob, bobToAlice, "Counters should keep climbing."},
		{bob, alice, bobToAlice, aliceToBob, "They do."},
	}
	for i, step := range exchange {
		payload, err := step.from.engine.Encrypt(
			context.Background(), step.from.account, step.peerFrom, []byte(step.text),
		)
		if err != nil {
			t.Fatalf("step %d Encrypt: %v", i, err)
		}
		got, err := step.to.engine.Decrypt(step.to.account, step.peerTo, payload)
		if err != nil {
			t.Fatalf("step %d Decrypt: %v", i, err)
		}
		if string(got) != step.text {
			t.Fatalf("step %d: got %q, want %q", i, got, step.text)
		}
	}
}

func TestEncrypt_MessageNumbersClimb(t *testing.T) {
	alice := newParty(t, "alice@test")
	bob := newParty(t, "bob@test")
	connect(t, alice, bob)

	peer := domain.PeerID(bob.account)
	var payloads []string
	for i := uint32(0); i < 3; i++ {
		payload, err := alice.engine.Encrypt(context.Background(), alice.account, peer, []byte("m"))
		if err != nil {
			t.Fatalf("Encrypt %d: %v", i, err)
		}
		msg, err := wire.Decode(payload)
		if err != nil {
			t.Fatalf("Decode %d: %v", i, err)
		}
		if msg.MessageNumber != i {
			t.Fatalf("want message number %d, got %d", i, msg.MessageNumber)
		}
		wantType := wire.TypeMessage
		if i == 0 {
			wantType = wire.TypePreKey
		}
		if msg.Type != wantType {
			t.Fatalf("message %d: want type %q, got %q", i, wantType, msg.Type)
		}
		payloads = append(payloads, payload)
	}

	// In-order delivery decrypts all of them.
	for i, payload := range payloads {
		if _, err := bob.engine.Decrypt(
			bob.account, domain.PeerID(alice.account), payload,
		); err != nil {
			t.Fatalf("Decrypt %d: %v", i, err)
		}
	}
}

func TestDecrypt_TamperDoesNotAdvanceSession(t *testing.T) {
	alice := newParty(t, "alice@test")
	bob := newParty(t, "bob@test")
	connect(t, alice, bob)

	peer := domain.PeerID(bob.account)
	payload, err := alice.engine.Encrypt(context.Background(), alice.account, peer, []byte("intact"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	msg, err := wire.Decode(payload)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	msg.Ciphertext[len(msg.Ciphertext)-1] ^= 0x01
	forged, err := wire.Encode(msg)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	_, err = bob.engine.Decrypt(bob.account, domain.PeerID(alice.account), forged)
	if !errors.Is(err, domain.ErrDecryptionFailed) {
		t.Fatalf("want ErrDecryptionFailed, got %v", err)
	}

	// The genuine payload still opens: the failed attempt left the chain alone.
	got, err := bob.engine.Decrypt(bob.account, domain.PeerID(alice.account), payload)
	if err != nil {
		t.Fatalf("Decrypt after forgery: %v", err)
	}
	if string(got) != "intact" {
		t.Fatalf("got %q, want %q", got, "intact")
	}
}

func TestDecrypt_NoSessionNeedsBootstrapEnvelope(t *testing.T) {
	bob := newParty(t, "bob@test")

	body, err := wire.Encode(wire.Message{
		Version:           wire.Version,
		Type:              wire.TypeMessage,
		SenderIdentityKey: bytes.Repeat([]byte{0x01}, 32),
		Ciphertext:        []byte{1, 2, 3},
	})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	_, err = bob.engine.Decrypt(bob.account, "alice@test", body)
	if !errors.Is(err, domain.ErrNoSessionBootstrap) {
		t.Fatalf("want ErrNoSessionBootstrap, got %v", err)
	}
}

func TestEncrypt_NoBundleAvailable(t *testing.T) {
	alice := newParty(t, "alice@test")
	_, err := alice.engine.Encrypt(context.Background(), alice.account, "stranger@test", []byte("hi"))
	if !errors.Is(err, domain.ErrBundleUnavailable) {
		t.Fatalf("want ErrBundleUnavailable, got %v", err)
	}
}

func TestDecrypt_IdentityKeyMismatch(t *testing.T) {
	alice := newParty(t, "alice@test")
	bob := newParty(t, "bob@test")
	connect(t, alice, bob)

	peer := domain.PeerID(bob.account)
	payload, err := alice.engine.Encrypt(context.Background(), alice.account, peer, []byte("one"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, err := bob.engine.Decrypt(bob.account, domain.PeerID(alice.account), payload); err != nil {
		t.Fatalf("Decrypt: %v", err)
	}

	// A later envelope claiming a different sender identity is rejected.
	second, err := alice.engine.Encrypt(context.Background(), alice.account, peer, []byte("two"))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	msg, err := wire.Decode(second)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	msg.SenderIdentityKey = bytes.Repeat([]byte{0xEE}, 32)
	forged, err := wire.Encode(msg)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	_, err = bob.engine.Decrypt(bob.account, domain.PeerID(alice.account), forged)
	if !errors.Is(err, domain.ErrIdentityKeyMismatch) {
		t.Fatalf("want ErrIdentityKeyMismatch, got %v", err)
	}
}

func TestSessions_ListAndDelete(t *testing.T) {
	alice := newParty(t, "alice@test")
	bob := newParty(t, "bob@test")
	connect(t, alice, bob)

	peer := domain.PeerID(bob.account)
	if _, err := alice.engine.Encrypt(context.Background(), alice.account, peer, []byte("hi")); err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	peers, err := alice.engine.ListSessions(alice.account)
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(peers) != 1 || peers[0] != peer {
		t.Fatalf("want [%s], got %v", peer, peers)
	}

	if err := alice.engine.DeleteSession(alice.account, peer); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	ok, err := alice.engine.HasSession(alice.account, peer)
	if err != nil {
		t.Fatalf("HasSession: %v", err)
	}
	if ok {
		t.Fatal("deleted session still present")
	}
}
