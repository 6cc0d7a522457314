package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/ssabro/MailVista-sub001/internal/domain"
)

const (
	preKeyDirName       = "prekeys"
	signedPreKeyDirName = "signedprekeys"
	currentSPKFilename  = "current" + recordExt
)

// spkPointer names the current signed prekey.
type spkPointer struct {
	CurrentID domain.SignedPreKeyID `json:"current_id"`
}

// PreKeyFileStore persists signed and one-time prekeys, one record per key id.
type PreKeyFileStore struct {
	root string
	k    *Keeper
	mu   sync.Mutex
}

// NewPreKeyFileStore returns a PreKeyFileStore rooted at root.
func NewPreKeyFileStore(root string, k *Keeper) *PreKeyFileStore {
	return &PreKeyFileStore{root: root, k: k}
}

// SaveOneTimePreKeys writes the given one-time prekey records.
func (s *PreKeyFileStore) SaveOneTimePreKeys(
	account domain.AccountID,
	recs []domain.PreKeyRecord,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Join(accountDir(s.root, account), preKeyDirName)
	for _, rec := range recs {
		path := filepath.Join(dir, keyIDName(uint32(rec.ID)))
		if err := saveRecord(s.k, path, preKeyLabel(account, rec.ID), rec); err != nil {
			return err
		}
	}
	return nil
}

// LoadOneTimePreKey retrieves a one-time prekey by id.
func (s *PreKeyFileStore) LoadOneTimePreKey(
	account domain.AccountID,
	id domain.PreKeyID,
) (domain.PreKeyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(accountDir(s.root, account), preKeyDirName, keyIDName(uint32(id)))
	var rec domain.PreKeyRecord
	ok, err := loadRecord(s.k, path, preKeyLabel(account, id), &rec)
	if err != nil || !ok {
		return domain.PreKeyRecord{}, false, err
	}
	return rec, true, nil
}

// DeleteOneTimePreKey removes a one-time prekey. Deletion is immediate and
// irreversible.
func (s *PreKeyFileStore) DeleteOneTimePreKey(
	account domain.AccountID,
	id domain.PreKeyID,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return removeFile(
		filepath.Join(accountDir(s.root, account), preKeyDirName, keyIDName(uint32(id))),
	)
}

// ListOneTimePreKeyIDs enumerates the persisted one-time prekey ids in
// ascending order.
func (s *PreKeyFileStore) ListOneTimePreKeyIDs(
	account domain.AccountID,
) ([]domain.PreKeyID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Join(accountDir(s.root, account), preKeyDirName)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ids := make([]domain.PreKeyID, 0, len(entries))
	for _, e := range entries {
		if id, ok := parseKeyIDName(e.Name()); ok {
			ids = append(ids, domain.PreKeyID(id))
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// SaveSignedPreKey stores a signed prekey by id.
func (s *PreKeyFileStore) SaveSignedPreKey(
	account domain.AccountID,
	rec domain.SignedPreKeyRecord,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(
		accountDir(s.root, account), signedPreKeyDirName, keyIDName(uint32(rec.ID)),
	)
	return saveRecord(s.k, path, signedPreKeyLabel(account, rec.ID), rec)
}

// LoadSignedPreKey retrieves a signed prekey by id. Superseded records remain
// loadable until explicitly pruned.
func (s *PreKeyFileStore) LoadSignedPreKey(
	account domain.AccountID,
	id domain.SignedPreKeyID,
) (domain.SignedPreKeyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(
		accountDir(s.root, account), signedPreKeyDirName, keyIDName(uint32(id)),
	)
	var rec domain.SignedPreKeyRecord
	ok, err := loadRecord(s.k, path, signedPreKeyLabel(account, id), &rec)
	if err != nil || !ok {
		return domain.SignedPreKeyRecord{}, false, err
	}
	return rec, true, nil
}

// SetCurrentSignedPreKeyID repoints the current signed prekey.
func (s *PreKeyFileStore) SetCurrentSignedPreKeyID(
	account domain.AccountID,
	id domain.SignedPreKeyID,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(accountDir(s.root, account), signedPreKeyDirName, currentSPKFilename)
	return saveRecord(s.k, path, currentSPKLabel(account), spkPointer{CurrentID: id})
}

// CurrentSignedPreKeyID returns the recorded current signed prekey id.
func (s *PreKeyFileStore) CurrentSignedPreKeyID(
	account domain.AccountID,
) (domain.SignedPreKeyID, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(accountDir(s.root, account), signedPreKeyDirName, currentSPKFilename)
	var ptr spkPointer
	ok, err := loadRecord(s.k, path, currentSPKLabel(account), &ptr)
	if err != nil || !ok {
		return 0, false, err
	}
	return ptr.CurrentID, true, nil
}

func preKeyLabel(account domain.AccountID, id domain.PreKeyID) string {
	return fmt.Sprintf("%s/prekey/%s", account, strconv.FormatUint(uint64(id), 10))
}

func signedPreKeyLabel(account domain.AccountID, id domain.SignedPreKeyID) string {
	return fmt.Sprintf("%s/signedprekey/%s", account, strconv.FormatUint(uint64(id), 10))
}

func currentSPKLabel(account domain.AccountID) string {
	return account.String() + "/signedprekey/current"
}

// Compile-time assertion that PreKeyFileStore implements domain.PreKeyStore.
var _ domain.PreKeyStore = (*PreKeyFileStore)(nil)
