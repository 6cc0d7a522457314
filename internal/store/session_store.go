package store

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/ssabro/MailVista-sub001/internal/domain"
)

const sessionDirName = "sessions"

// SessionFileStore persists one session record per (account, peer).
type SessionFileStore struct {
	root string
	k    *Keeper
	mu   sync.Mutex
}

// NewSessionFileStore returns a SessionFileStore rooted at root.
func NewSessionFileStore(root string, k *Keeper) *SessionFileStore {
	return &SessionFileStore{root: root, k: k}
}

// SaveSession writes the session record for peer, replacing any prior one.
func (s *SessionFileStore) SaveSession(
	account domain.AccountID,
	peer domain.PeerID,
	rec domain.SessionRecord,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.sessionPath(account, peer)
	return saveRecord(s.k, path, sessionLabel(account, peer), rec)
}

// LoadSession retrieves the session record for peer.
func (s *SessionFileStore) LoadSession(
	account domain.AccountID,
	peer domain.PeerID,
) (domain.SessionRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rec domain.SessionRecord
	ok, err := loadRecord(s.k, s.sessionPath(account, peer), sessionLabel(account, peer), &rec)
	if err != nil || !ok {
		return domain.SessionRecord{}, false, err
	}
	return rec, true, nil
}

// DeleteSession removes the session record for peer.
func (s *SessionFileStore) DeleteSession(
	account domain.AccountID,
	peer domain.PeerID,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return removeFile(s.sessionPath(account, peer))
}

// ListSessionPeers enumerates the peers with a persisted session.
func (s *SessionFileStore) ListSessionPeers(
	account domain.AccountID,
) ([]domain.PeerID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Join(accountDir(s.root, account), sessionDirName)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	peers := make([]domain.PeerID, 0, len(entries))
	for _, e := range entries {
		base, ok := trimExt(e.Name())
		if !ok {
			continue
		}
		if name, ok := decodeName(base); ok {
			peers = append(peers, domain.PeerID(name))
		}
	}
	return peers, nil
}

func (s *SessionFileStore) sessionPath(account domain.AccountID, peer domain.PeerID) string {
	return filepath.Join(
		accountDir(s.root, account), sessionDirName, encodeName(peer.String())+recordExt,
	)
}

func sessionLabel(account domain.AccountID, peer domain.PeerID) string {
	return account.String() + "/session/" + peer.String()
}

// Compile-time assertion that SessionFileStore implements domain.SessionStore.
var _ domain.SessionStore = (*SessionFileStore)(nil)
