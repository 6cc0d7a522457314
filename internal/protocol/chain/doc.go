// Package chain implements the per-session one-way ratchet: each message
// consumes the chain key through two domain-separated HMAC evaluations, one
// producing the message key and one the next chain key, so key material for
// earlier messages cannot be recovered from later state.
package chain
