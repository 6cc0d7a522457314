package app

import "net/http"

// DirectoryConfig controls the optional key-directory integration. Disabled
// means bundles are only exchanged out of band; the core never depends on
// the directory for correctness.
type DirectoryConfig struct {
	Enabled bool
	BaseURL string
	HTTP    *http.Client // optional; defaults to http.DefaultClient
}

// Config holds runtime wiring options for building the app. There is no
// process-wide mutable default; callers construct and pass one explicitly.
type Config struct {
	Home      string // keystore directory, e.g. $HOME/.mailvista
	Directory DirectoryConfig
}
