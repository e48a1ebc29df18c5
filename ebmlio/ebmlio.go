// Package ebmlio adapts ebml.Decoder to the standard io.Reader world.
// It exists as a separate package so the core ebml package keeps zero
// I/O-blocking surface: Decoder.Decode only ever consumes an in-memory
// chunk, never a Reader, so it can never block a caller that wants to
// drive it from a non-blocking event loop.
package ebmlio

import (
	"bufio"
	"io"
	"syscall"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/go-ebml/ebml"
	"github.com/go-ebml/ebml/schema"
)

// defaultChunkSize is the read buffer size used by ReadAll and
// StreamReader when pulling from the underlying io.Reader.
const defaultChunkSize = 32 * 1024

// ReadAll drains r to completion, decoding every chunk read against s,
// and returns every event produced. It is the simplest adapter: no
// incremental access, the whole stream decoded in one call.
func ReadAll(r io.Reader, s schema.Schema, opts ...ebml.Option) ([]ebml.Event, error) {
	return readAll(r, ebml.NewDecoder(s, opts...), zap.NewNop())
}

func readAll(r io.Reader, dec *ebml.Decoder, log *zap.Logger) ([]ebml.Event, error) {
	var events []ebml.Event
	buf := make([]byte, defaultChunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			log.Debug("ebmlio: read chunk", zap.Int("bytes", n))
			evs, decErr := dec.Decode(buf[:n])
			events = append(events, evs...)
			if decErr != nil {
				log.Error("ebmlio: decode failed", zap.Error(decErr))
				return events, decErr
			}
		}
		if err == io.EOF {
			evs, decErr := dec.Decode(nil)
			events = append(events, evs...)
			return events, decErr
		}
		if err != nil {
			return events, errors.WithStack(err)
		}
	}
}

// StreamReaderOption configures a StreamReader at construction time.
type StreamReaderOption func(*StreamReader)

// WithStreamLogger attaches a zap logger to a StreamReader.
func WithStreamLogger(l *zap.Logger) StreamReaderOption {
	return func(sr *StreamReader) {
		if l != nil {
			sr.log = l
		}
	}
}

// StreamReader wraps a buffered source and a Decoder, handing back
// events a chunk at a time as they become decodable, instead of
// draining the whole source up front like ReadAll.
type StreamReader struct {
	br  *bufio.Reader
	dec *ebml.Decoder
	log *zap.Logger
	buf []byte
}

// NewStreamReader creates a StreamReader over r, decoding against s.
func NewStreamReader(r io.Reader, s schema.Schema, opts []ebml.Option, srOpts ...StreamReaderOption) *StreamReader {
	sr := &StreamReader{
		br:  bufio.NewReader(r),
		dec: ebml.NewDecoder(s, opts...),
		log: zap.NewNop(),
		buf: make([]byte, defaultChunkSize),
	}
	for _, o := range srOpts {
		o(sr)
	}
	return sr
}

// Next reads from the underlying source until at least one event is
// decoded, io.EOF is reached, or a non-transient read error occurs.
// Interrupted reads (io.ErrClosedPipe, syscall.EINTR surfaced as a
// plain error with no bytes read) are retried rather than propagated,
// matching the teacher's io.ReadSeeker-driven read loop and the pack's
// rfc6242.Decoder, which resumes a bufio scan the same way after a
// short read.
func (sr *StreamReader) Next() ([]ebml.Event, error) {
	for {
		n, err := sr.br.Read(sr.buf)
		if n > 0 {
			sr.log.Debug("ebmlio: read chunk", zap.Int("bytes", n))
			events, decErr := sr.dec.Decode(sr.buf[:n])
			if decErr != nil {
				sr.log.Error("ebmlio: decode failed", zap.Error(decErr))
				return events, decErr
			}
			if len(events) > 0 {
				return events, nil
			}
		}
		switch {
		case err == nil:
			continue
		case err == io.EOF:
			return sr.dec.Decode(nil)
		case errors.Is(err, io.ErrClosedPipe), errors.Is(err, syscall.EINTR):
			continue
		default:
			return nil, errors.WithStack(err)
		}
	}
}

// Header collects the well-known children of an EBML header master
// into a plain struct, the way the teacher's ReadEBMLHeader did for a
// Matroska-specific reader. Unlike the teacher's version this is built
// entirely on the streaming Decoder: it runs ReadAll and folds the
// header's children, rather than hand-parsing the header in isolation.
type Header struct {
	EBMLVersion        uint64
	EBMLReadVersion    uint64
	MaxIDLength        uint64
	MaxSizeLength      uint64
	DocType            string
	DocTypeVersion     uint64
	DocTypeReadVersion uint64
}

// ReadHeader reads r to completion and extracts its EBML header. It
// does not require the header to be the only thing in the stream: any
// trailing elements (e.g. a following Segment) are decoded and
// discarded, since they contribute nothing to Header.
func ReadHeader(r io.Reader, s schema.Schema) (Header, error) {
	events, err := ReadAll(r, s)
	if err != nil {
		return Header{}, err
	}
	var h Header
	for _, ev := range events {
		switch ev.ID {
		case ebml.IDEBMLVersion:
			h.EBMLVersion = ev.AsUint()
		case ebml.IDEBMLReadVersion:
			h.EBMLReadVersion = ev.AsUint()
		case ebml.IDEBMLMaxIDLength:
			h.MaxIDLength = ev.AsUint()
		case ebml.IDEBMLMaxSizeLength:
			h.MaxSizeLength = ev.AsUint()
		case ebml.IDEBMLDocType:
			h.DocType = string(ev.AsASCII())
		case ebml.IDEBMLDocTypeVersion:
			h.DocTypeVersion = ev.AsUint()
		case ebml.IDEBMLDocTypeReadVersion:
			h.DocTypeReadVersion = ev.AsUint()
		}
	}
	return h, nil
}
