// Package resp implements the encoding of client commands and the decoding
// of replies in the REdis Serialization Protocol (RESP2).
//
// The decoder is binary safe, tolerates arbitrarily fragmented input and
// keeps null bulk strings and arrays apart from empty ones. It never tries
// to recover from a framing error: once a ProtocolError is returned the
// stream is unusable.
package resp
