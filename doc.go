// Package ebml implements a streaming codec for EBML (Extensible Binary
// Meta Language), the container grammar underlying Matroska and WebM.
//
// EBML is a self-describing, length-prefixed, hierarchically nested
// binary format. A stream is a flat concatenation of tags, where each
// tag is an id VINT, a size VINT, and content; for master elements the
// content is itself a concatenation of tags. Master elements may also
// declare an "unknown size", in which case there is no explicit end
// marker and the end must be inferred from the structure that follows.
//
// This package converts between raw bytes and a linear sequence of tag
// events using the Decoder and Encoder types. Both are driven by a
// caller-supplied schema (see the schema subpackage) that maps tag ids
// to their semantic type and nesting level.
//
// The Decoder is built to tolerate arbitrarily chunked input: every call
// to Decode appends its argument to an internal buffer and advances a
// three-phase state machine (tag, size, content) as far as the buffered
// bytes allow, returning whatever events that produced. Feeding the same
// bytes in any partition produces the same event sequence as feeding
// them in one call.
//
// This package does not interpret Matroska-specific semantics (block
// framing, codec payloads, tracks, clusters), does not support seeking,
// and performs no I/O of its own — see the ebmlio subpackage for
// adapters that drive a Decoder from an io.Reader.
package ebml
