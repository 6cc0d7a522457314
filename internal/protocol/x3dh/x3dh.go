package x3dh

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/ssabro/MailVista-sub001/internal/crypto"
	"github.com/ssabro/MailVista-sub001/internal/domain"
	"github.com/ssabro/MailVista-sub001/internal/util/memzero"
)

// infoLabel is the fixed HKDF info string; both sides must use the same one.
const infoLabel = "MailVista-X3DH-v1"

const keyLen = 32

// InitiatorSecret derives the root and chain keys as the session initiator.
//
//	DH1 = DH(IK_our, SPK_peer)
//	DH2 = DH(EK_our, IK_peer)
//	DH3 = DH(EK_our, SPK_peer)
//	DH4 = DH(EK_our, OPK_peer)   when the bundle carried a one-time prekey
func InitiatorSecret(
	id domain.IdentityRecord,
	ephPriv domain.X25519Private,
	bundle domain.PreKeyBundle,
) (rootKey, chainKey []byte, err error) {
	dh1, err := crypto.DH(id.XPriv, bundle.SignedPreKey)
	if err != nil {
		return nil, nil, err
	}
	dh2, err := crypto.DH(ephPriv, bundle.IdentityKey)
	if err != nil {
		return nil, nil, err
	}
	dh3, err := crypto.DH(ephPriv, bundle.SignedPreKey)
	if err != nil {
		return nil, nil, err
	}

	concat := make([]byte, 0, 32*4)
	concat = append(concat, dh1[:]...)
	concat = append(concat, dh2[:]...)
	concat = append(concat, dh3[:]...)

	if bundle.OneTimePreKey != nil {
		dh4, err := crypto.DH(ephPriv, bundle.OneTimePreKey.Pub)
		if err != nil {
			return nil, nil, err
		}
		concat = append(concat, dh4[:]...)
	}

	rootKey, chainKey = deriveKeys(concat)
	memzero.Zero(concat)
	return rootKey, chainKey, nil
}

// ResponderSecret mirrors InitiatorSecret on the receiving side, using the
// sender's identity key and the base (ephemeral) key carried in the first
// envelope.
//
//	DH1 = DH(SPK_our, IK_sender)
//	DH2 = DH(IK_our, EK_sender)
//	DH3 = DH(SPK_our, EK_sender)
//	DH4 = DH(OPK_our, EK_sender)  when the sender referenced a one-time prekey
func ResponderSecret(
	id domain.IdentityRecord,
	spkPriv domain.X25519Private,
	opkPriv *domain.X25519Private,
	senderIdentity domain.X25519Public,
	baseKey domain.X25519Public,
) (rootKey, chainKey []byte, err error) {
	dh1, err := crypto.DH(spkPriv, senderIdentity)
	if err != nil {
		return nil, nil, err
	}
	dh2, err := crypto.DH(id.XPriv, baseKey)
	if err != nil {
		return nil, nil, err
	}
	dh3, err := crypto.DH(spkPriv, baseKey)
	if err != nil {
		return nil, nil, err
	}

	concat := make([]byte, 0, 32*4)
	concat = append(concat, dh1[:]...)
	concat = append(concat, dh2[:]...)
	concat = append(concat, dh3[:]...)

	if opkPriv != nil {
		dh4, err := crypto.DH(*opkPriv, baseKey)
		if err != nil {
			return nil, nil, err
		}
		concat = append(concat, dh4[:]...)
	}

	rootKey, chainKey = deriveKeys(concat)
	memzero.Zero(concat)
	return rootKey, chainKey, nil
}

// VerifySignedPreKey checks the signed prekey signature in a bundle.
func VerifySignedPreKey(
	signing domain.Ed25519Public,
	spk domain.X25519Public,
	sig []byte,
) bool {
	return crypto.VerifyEd25519(signing, spk.Slice(), sig)
}

// deriveKeys expands the DH concatenation into 64 bytes via HKDF-SHA256 with
// an all-zero salt and splits it into root and chain keys.
func deriveKeys(ikm []byte) (rootKey, chainKey []byte) {
	salt := make([]byte, sha256.Size)
	r := hkdf.New(sha256.New, ikm, salt, []byte(infoLabel))
	rootKey = make([]byte, keyLen)
	chainKey = make([]byte, keyLen)
	_, _ = io.ReadFull(r, rootKey)
	_, _ = io.ReadFull(r, chainKey)
	return rootKey, chainKey
}
