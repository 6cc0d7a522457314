// Package store persists all protocol state as per-account directories of
// individually encrypted records. Every record is sealed with
// ChaCha20-Poly1305 under a key derived from a device-local secret, so the
// keystore is unreadable off-device and tampering is detected on read.
package store
