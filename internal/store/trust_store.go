package store

import (
	"path/filepath"
	"sync"

	"github.com/ssabro/MailVista-sub001/internal/domain"
)

const trustDirName = "identities"

// TrustFileStore persists trust-on-first-use identity pins per peer.
type TrustFileStore struct {
	root string
	k    *Keeper
	mu   sync.Mutex
}

// NewTrustFileStore returns a TrustFileStore rooted at root.
func NewTrustFileStore(root string, k *Keeper) *TrustFileStore {
	return &TrustFileStore{root: root, k: k}
}

// SaveRemoteIdentity records or overwrites the pin for pin.Peer. Callers are
// expected to check for mismatches before overwriting.
func (s *TrustFileStore) SaveRemoteIdentity(
	account domain.AccountID,
	pin domain.RemoteIdentity,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.pinPath(account, pin.Peer)
	return saveRecord(s.k, path, trustLabel(account, pin.Peer), pin)
}

// LoadRemoteIdentity retrieves the pin for peer.
func (s *TrustFileStore) LoadRemoteIdentity(
	account domain.AccountID,
	peer domain.PeerID,
) (domain.RemoteIdentity, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pin domain.RemoteIdentity
	ok, err := loadRecord(s.k, s.pinPath(account, peer), trustLabel(account, peer), &pin)
	if err != nil || !ok {
		return domain.RemoteIdentity{}, false, err
	}
	return pin, true, nil
}

func (s *TrustFileStore) pinPath(account domain.AccountID, peer domain.PeerID) string {
	return filepath.Join(
		accountDir(s.root, account), trustDirName, encodeName(peer.String())+recordExt,
	)
}

func trustLabel(account domain.AccountID, peer domain.PeerID) string {
	return account.String() + "/remote-identity/" + peer.String()
}

// Compile-time assertion that TrustFileStore implements domain.TrustStore.
var _ domain.TrustStore = (*TrustFileStore)(nil)
