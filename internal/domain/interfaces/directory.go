package interfaces

import (
	"context"

	domaintypes "github.com/ssabro/MailVista-sub001/internal/domain/types"
)

// DirectoryClient talks to the optional key-directory service. The core must
// function with no directory configured; implementations are only consulted
// by KeyManager.FetchBundle and the publish paths.
type DirectoryClient interface {
	Upload(
		ctx context.Context,
		account domaintypes.AccountID,
		bundle domaintypes.PreKeyBundle,
	) error
	UploadPreKeys(
		ctx context.Context,
		account domaintypes.AccountID,
		keys []domaintypes.OneTimePreKeyPublic,
	) error
	Fetch(
		ctx context.Context,
		peer domaintypes.PeerID,
	) (domaintypes.PreKeyBundle, error)
}
