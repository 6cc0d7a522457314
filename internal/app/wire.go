package app

import (
	"github.com/ssabro/MailVista-sub001/internal/directory"
	"github.com/ssabro/MailVista-sub001/internal/domain"
	keymanagersvc "github.com/ssabro/MailVista-sub001/internal/services/keymanager"
	sessionsvc "github.com/ssabro/MailVista-sub001/internal/services/session"
	"github.com/ssabro/MailVista-sub001/internal/store"
)

// Wire bundles the stores and services for the binaries.
type Wire struct {
	Identities domain.IdentityStore
	PreKeys    domain.PreKeyStore
	Sessions   domain.SessionStore
	Trust      domain.TrustStore
	Bundles    domain.BundleStore

	Keys   domain.KeyManager
	Engine domain.SessionEngine
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config) (*Wire, error) {
	keeper, err := store.NewKeeper(cfg.Home)
	if err != nil {
		return nil, err
	}

	identityStore := store.NewIdentityFileStore(cfg.Home, keeper)
	preKeyStore := store.NewPreKeyFileStore(cfg.Home, keeper)
	sessionStore := store.NewSessionFileStore(cfg.Home, keeper)
	trustStore := store.NewTrustFileStore(cfg.Home, keeper)
	bundleStore := store.NewBundleFileStore(cfg.Home, keeper)

	var dir domain.DirectoryClient
	if cfg.Directory.Enabled {
		dir = directory.NewClient(cfg.Directory.BaseURL, cfg.Directory.HTTP)
	}

	keys := keymanagersvc.New(identityStore, preKeyStore, trustStore, bundleStore, dir)
	engine := sessionsvc.New(identityStore, preKeyStore, sessionStore, trustStore, keys)

	return &Wire{
		Identities: identityStore,
		PreKeys:    preKeyStore,
		Sessions:   sessionStore,
		Trust:      trustStore,
		Bundles:    bundleStore,
		Keys:       keys,
		Engine:     engine,
	}, nil
}
