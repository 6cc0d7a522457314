package chain

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"errors"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/ssabro/MailVista-sub001/internal/domain"
)

const (
	// NonceSize is the AEAD nonce length prefixed to every wire ciphertext.
	NonceSize = chacha20poly1305.NonceSize
	// TagSize is the AEAD authentication tag length.
	TagSize = chacha20poly1305.Overhead

	msgKeyTag   = 0x01
	chainKeyTag = 0x02
)

var errShortCiphertext = errors.New("chain: ciphertext shorter than nonce and tag")

// Derive splits the current chain key into the one-time message key and the
// next chain key via independent one-way HMAC evaluations.
func Derive(chainKey []byte) (messageKey, nextChainKey []byte) {
	return hmacByte(chainKey, msgKeyTag), hmacByte(chainKey, chainKeyTag)
}

// Seal encrypts plaintext under messageKey with a fresh random nonce and
// returns nonce || tag || ciphertext.
func Seal(messageKey, plaintext []byte) ([]byte, error) {
	aead, err := chacha20poly1305.New(messageKey)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	sealed := aead.Seal(nil, nonce, plaintext, nil) // ciphertext || tag
	body := sealed[:len(sealed)-TagSize]
	tag := sealed[len(sealed)-TagSize:]

	out := make([]byte, 0, NonceSize+len(sealed))
	out = append(out, nonce...)
	out = append(out, tag...)
	out = append(out, body...)
	return out, nil
}

// Open reverses Seal. A tag failure is reported as domain.ErrDecryptionFailed.
func Open(messageKey, blob []byte) ([]byte, error) {
	if len(blob) < NonceSize+TagSize {
		return nil, errShortCiphertext
	}
	aead, err := chacha20poly1305.New(messageKey)
	if err != nil {
		return nil, err
	}
	nonce := blob[:NonceSize]
	tag := blob[NonceSize : NonceSize+TagSize]
	body := blob[NonceSize+TagSize:]

	sealed := make([]byte, 0, len(body)+TagSize)
	sealed = append(sealed, body...)
	sealed = append(sealed, tag...)

	pt, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, domain.ErrDecryptionFailed
	}
	return pt, nil
}

func hmacByte(key []byte, tag byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write([]byte{tag})
	return h.Sum(nil)
}
