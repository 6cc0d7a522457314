package crypto

import (
	"crypto/rand"
	"encoding/binary"
)

// maxRegistrationID bounds the random registration id (exclusive).
const maxRegistrationID = 16380

// GenerateRegistrationID returns a random registration id in [1, 16380).
func GenerateRegistrationID() (uint32, error) {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, err
	}
	n := binary.BigEndian.Uint32(buf[:])
	return 1 + n%(maxRegistrationID-1), nil
}
