// Package commands defines the mailvista CLI: account registration, bundle
// exchange, message encryption/decryption, and key maintenance.
package commands
