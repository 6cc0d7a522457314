// Package app wires the stores, services, and the optional directory client
// into the object graph the binaries use.
package app
