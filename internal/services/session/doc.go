// Package session implements the session engine: X3DH establishment against
// a peer bundle, the per-message chain-key ratchet, and the encrypt/decrypt
// operations producing and consuming transport payloads.
package session
