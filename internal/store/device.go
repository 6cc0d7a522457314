package store

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"io"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/crypto/hkdf"
)

const (
	deviceFile    = "device.json"
	deviceKeyInfo = "MailVista-store-v1"
	secretLen     = 32
)

// deviceRecord is the root secret for the keystore. It is never escrowed or
// synced; losing it makes every record on this device unreadable.
type deviceRecord struct {
	DeviceID string `json:"device_id"`
	Secret   []byte `json:"secret"`
}

// loadOrCreateDevice reads the device record under dir, creating a fresh one
// with a random secret and uuid device id on first use.
func loadOrCreateDevice(dir string) (deviceRecord, error) {
	path := filepath.Join(dir, deviceFile)

	b, err := readFile(path)
	if err != nil {
		return deviceRecord{}, err
	}
	if b != nil {
		var rec deviceRecord
		if err := json.Unmarshal(b, &rec); err != nil {
			return deviceRecord{}, err
		}
		return rec, nil
	}

	rec := deviceRecord{
		DeviceID: uuid.NewString(),
		Secret:   make([]byte, secretLen),
	}
	if _, err := rand.Read(rec.Secret); err != nil {
		return deviceRecord{}, err
	}
	out, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return deviceRecord{}, err
	}
	if err := writeFile(path, out, 0o600); err != nil {
		return deviceRecord{}, err
	}
	return rec, nil
}

// deriveRecordKey expands the device secret into the record sealing key.
func deriveRecordKey(secret []byte) ([]byte, error) {
	key := make([]byte, secretLen)
	r := hkdf.New(sha256.New, secret, nil, []byte(deviceKeyInfo))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}
	return key, nil
}
