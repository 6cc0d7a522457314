// Package directory implements the optional key-directory integration: an
// HTTP client used by the key manager when one is configured, and the server
// handler behind cmd/keydirectoryd. The encryption core is fully functional
// with no directory at all; bundles then travel out of band.
package directory
