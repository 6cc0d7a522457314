package store

import (
	"encoding/json"
	"fmt"

	"github.com/ssabro/MailVista-sub001/internal/domain"
)

// loadRecord reads, opens, and decodes one sealed record. ok=false with a nil
// error means the record does not exist.
func loadRecord(k *Keeper, path, label string, out any) (bool, error) {
	b, err := readFile(path)
	if err != nil {
		return false, err
	}
	if b == nil {
		return false, nil
	}
	raw, err := k.Open(label, b)
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("%w: %s", domain.ErrStorageCorruption, label)
	}
	return true, nil
}

// saveRecord encodes, seals, and atomically writes one record.
func saveRecord(k *Keeper, path, label string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	blob, err := k.Seal(label, raw)
	if err != nil {
		return err
	}
	return writeFile(path, blob, 0o600)
}
