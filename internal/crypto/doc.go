// Package crypto wraps the primitive operations the protocol is built on:
// X25519 key generation and Diffie-Hellman, Ed25519 signing, and public key
// fingerprints.
package crypto
