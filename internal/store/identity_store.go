package store

import (
	"path/filepath"
	"sync"

	"github.com/ssabro/MailVista-sub001/internal/domain"
)

const identityFilename = "identity" + recordExt

// IdentityFileStore persists per-account identity records to disk.
type IdentityFileStore struct {
	root string
	k    *Keeper
	mu   sync.Mutex
}

// NewIdentityFileStore returns an IdentityFileStore rooted at root.
func NewIdentityFileStore(root string, k *Keeper) *IdentityFileStore {
	return &IdentityFileStore{root: root, k: k}
}

// SaveIdentity writes the encrypted identity record for account.
func (s *IdentityFileStore) SaveIdentity(
	account domain.AccountID,
	id domain.IdentityRecord,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(accountDir(s.root, account), identityFilename)
	return saveRecord(s.k, path, identityLabel(account), id)
}

// LoadIdentity reads and decrypts the identity record for account.
func (s *IdentityFileStore) LoadIdentity(
	account domain.AccountID,
) (domain.IdentityRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(accountDir(s.root, account), identityFilename)
	var id domain.IdentityRecord
	ok, err := loadRecord(s.k, path, identityLabel(account), &id)
	if err != nil || !ok {
		return domain.IdentityRecord{}, false, err
	}
	return id, true, nil
}

func identityLabel(account domain.AccountID) string {
	return account.String() + "/identity"
}

// Compile-time assertion that IdentityFileStore implements domain.IdentityStore.
var _ domain.IdentityStore = (*IdentityFileStore)(nil)
