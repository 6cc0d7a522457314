// Package wire encodes and decodes the transport payload: a base64-wrapped
// JSON document carrying the protocol tag and the message envelope. The
// transport treats the payload as an opaque blob; the protocol tag inside it
// is the authoritative marker, the exported header values are advisory only.
package wire
