// Package domain defines the core types, store and service interfaces, and
// the error taxonomy shared across the encryption engine.
package domain
