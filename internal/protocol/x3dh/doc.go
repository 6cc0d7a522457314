// Package x3dh derives the shared session secret from identity, signed,
// ephemeral, and optional one-time prekeys. The initiator and responder
// functions compute mirrored Diffie-Hellman sets so both sides converge on
// the same root and chain keys.
package x3dh
