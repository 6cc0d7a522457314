package store

import (
	"crypto/rand"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/ssabro/MailVista-sub001/internal/domain"
)

// recordFormatVersion is the current supported version of the encrypted
// record format on disk.
const recordFormatVersion = 1

// record is the on-disk JSON structure holding one sealed entity.
type record struct {
	V      int    `json:"v"`
	Nonce  []byte `json:"nonce"`
	Cipher []byte `json:"cipher"` // ciphertext || tag
}

// Keeper seals and opens keystore records with the device-derived key.
// The record label is bound as associated data so a record cannot be moved
// to a different slot undetected.
type Keeper struct {
	key []byte
}

// NewKeeper initialises the keystore root at dir, creating the device secret
// on first use, and returns the record keeper for it.
func NewKeeper(dir string) (*Keeper, error) {
	dev, err := loadOrCreateDevice(dir)
	if err != nil {
		return nil, fmt.Errorf("init device secret: %w", err)
	}
	key, err := deriveRecordKey(dev.Secret)
	if err != nil {
		return nil, err
	}
	return &Keeper{key: key}, nil
}

// Seal encrypts raw into a versioned record blob.
func (k *Keeper) Seal(label string, raw []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(k.key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	ct := aead.Seal(nil, nonce, raw, []byte(label))
	return json.Marshal(record{V: recordFormatVersion, Nonce: nonce, Cipher: ct})
}

// Open decrypts a record blob. Any parse or authentication failure is
// reported as domain.ErrStorageCorruption so callers can distinguish a
// damaged record from one that never existed.
func (k *Keeper) Open(label string, blob []byte) ([]byte, error) {
	var rec record
	if err := json.Unmarshal(blob, &rec); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrStorageCorruption, label)
	}
	if rec.V > recordFormatVersion {
		return nil, fmt.Errorf("unsupported record version %d: %s", rec.V, label)
	}
	aead, err := chacha20poly1305.New(k.key)
	if err != nil {
		return nil, err
	}
	raw, err := aead.Open(nil, rec.Nonce, rec.Cipher, []byte(label))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrStorageCorruption, label)
	}
	return raw, nil
}
