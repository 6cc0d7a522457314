// Package keymanager orchestrates the identity and prekey lifecycle:
// registration, one-time prekey pool refills, signed prekey rotation, bundle
// export/import with trust-on-first-use pinning, and the optional key
// directory integration.
package keymanager
