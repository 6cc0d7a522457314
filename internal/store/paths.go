package store

import (
	"encoding/base64"
	"path/filepath"
	"strconv"

	"github.com/ssabro/MailVista-sub001/internal/domain"
)

const recordExt = ".enc"

// encodeName makes an opaque identifier safe to use as a file name.
func encodeName(id string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id))
}

// decodeName reverses encodeName for directory listings.
func decodeName(name string) (string, bool) {
	b, err := base64.RawURLEncoding.DecodeString(name)
	if err != nil {
		return "", false
	}
	return string(b), true
}

// accountDir returns the per-account keystore directory.
func accountDir(root string, account domain.AccountID) string {
	return filepath.Join(root, "accounts", encodeName(account.String()))
}

func keyIDName(id uint32) string {
	return strconv.FormatUint(uint64(id), 10) + recordExt
}

func parseKeyIDName(name string) (uint32, bool) {
	base, ok := trimExt(name)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseUint(base, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}

func trimExt(name string) (string, bool) {
	if len(name) <= len(recordExt) || name[len(name)-len(recordExt):] != recordExt {
		return "", false
	}
	return name[:len(name)-len(recordExt)], true
}
