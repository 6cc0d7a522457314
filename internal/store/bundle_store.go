package store

import (
	"path/filepath"
	"sync"

	"github.com/ssabro/MailVista-sub001/internal/domain"
)

const bundleDirName = "bundles"

// BundleFileStore caches peer bundles obtained by import or directory fetch.
type BundleFileStore struct {
	root string
	k    *Keeper
	mu   sync.Mutex
}

// NewBundleFileStore returns a BundleFileStore rooted at root.
func NewBundleFileStore(root string, k *Keeper) *BundleFileStore {
	return &BundleFileStore{root: root, k: k}
}

// SaveBundle caches the bundle for peer.
func (s *BundleFileStore) SaveBundle(
	account domain.AccountID,
	peer domain.PeerID,
	bundle domain.PreKeyBundle,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.bundlePath(account, peer)
	return saveRecord(s.k, path, bundleLabel(account, peer), bundle)
}

// LoadBundle returns the cached bundle for peer and whether it was present.
func (s *BundleFileStore) LoadBundle(
	account domain.AccountID,
	peer domain.PeerID,
) (domain.PreKeyBundle, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b domain.PreKeyBundle
	ok, err := loadRecord(s.k, s.bundlePath(account, peer), bundleLabel(account, peer), &b)
	if err != nil || !ok {
		return domain.PreKeyBundle{}, false, err
	}
	return b, true, nil
}

func (s *BundleFileStore) bundlePath(account domain.AccountID, peer domain.PeerID) string {
	return filepath.Join(
		accountDir(s.root, account), bundleDirName, encodeName(peer.String())+recordExt,
	)
}

func bundleLabel(account domain.AccountID, peer domain.PeerID) string {
	return account.String() + "/bundle/" + peer.String()
}

// Compile-time assertion that BundleFileStore implements domain.BundleStore.
var _ domain.BundleStore = (*BundleFileStore)(nil)
