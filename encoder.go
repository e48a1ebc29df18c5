package ebml

import (
	"bytes"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/go-ebml/ebml/schema"
)

// unknownSizeVintBytes is the canonical 8-octet "unknown size" sentinel.
// An 8-octet VINT's marker occupies the entire first byte (0x01),
// leaving zero payload bits there; the all-ones 56-bit payload lives
// entirely in the remaining seven bytes.
var unknownSizeVintBytes = []byte{0x01, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

// encFrame is one open master on the Encoder's stack, tracked so
// MasterEnd can verify nesting (spec §4.5). Only a known-size frame
// buffers anything: its id and size VINT can't be written until its
// body length is known, so children accumulate in content until
// MasterEnd. An unknown-size frame buffers nothing — its header is
// written eagerly at MasterStart, and its children are written
// straight through to whatever target was active before it opened
// (see current), since no frame of its own ever needs folding into a
// parent.
type encFrame struct {
	id      int64
	unknown bool
	content bytes.Buffer
}

// EncoderOption configures an Encoder at construction time.
type EncoderOption func(*Encoder)

// WithEncoderLogger attaches a zap logger for diagnostics. The default
// is a no-op logger.
func WithEncoderLogger(l *zap.Logger) EncoderOption {
	return func(e *Encoder) {
		if l != nil {
			e.log = l
		}
	}
}

// Encoder is the mechanical inverse of Decoder: it accepts the same
// Event stream a Decoder produces and renders it back to bytes that a
// matching Decoder turns into the same events again (Positions aside).
// The bytes equal the original input only where that input used the
// widths the Encoder writes: minimal-length id and size VINTs,
// minimal-width integers and 8-byte floats. Like Decoder, it is
// poisoned after any error and is not safe for concurrent use.
type Encoder struct {
	schema schema.Schema
	stack  []*encFrame
	root   bytes.Buffer
	sent   int // bytes of root already returned to a caller

	err error
	log *zap.Logger
}

// NewEncoder creates an Encoder that validates every event's tag id
// against s before emitting it.
func NewEncoder(s schema.Schema, opts ...EncoderOption) *Encoder {
	e := &Encoder{schema: s, log: zap.NewNop()}
	for _, o := range opts {
		o(e)
	}
	return e
}

// current returns the buffer the next write should target: the
// innermost open KNOWN-size master's content buffer, skipping over any
// unknown-size frames above it (they have no buffer of their own —
// their children write straight through), or the top-level output if
// no known-size master is open.
func (e *Encoder) current() *bytes.Buffer {
	for i := len(e.stack) - 1; i >= 0; i-- {
		if !e.stack[i].unknown {
			return &e.stack[i].content
		}
	}
	return &e.root
}

// Encode renders events to their wire bytes and returns only the bytes
// newly available since the last call (any content still inside an open
// master isn't available yet, since its size VINT can't be written
// until MasterEnd is seen). events may leave masters open across calls;
// the Encoder carries that state forward, mirroring Decoder's
// chunk-at-a-time resumability.
func (e *Encoder) Encode(events []Event) ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	for _, ev := range events {
		if err := e.encodeOne(ev); err != nil {
			e.err = err
			e.log.Error("ebml: encode failed", zap.Error(err), zap.Int64("id", ev.ID))
			return e.flush(), err
		}
	}
	return e.flush(), nil
}

// flush returns the slice of root written since the previous flush.
func (e *Encoder) flush() []byte {
	all := e.root.Bytes()
	fresh := all[e.sent:]
	out := append([]byte(nil), fresh...)
	e.sent = len(all)
	return out
}

func (e *Encoder) encodeOne(ev Event) error {
	switch ev.Kind {
	case KindMasterStart:
		return e.encodeMasterStart(ev)
	case KindMasterEnd:
		return e.encodeMasterEnd(ev)
	default:
		return e.encodeLeafEvent(ev)
	}
}

func (e *Encoder) encodeMasterStart(ev Event) error {
	if _, found := e.schema.Lookup(ev.ID); !found {
		return errors.Wrapf(ErrUnknownTag, "id %d (0x%X)", ev.ID, uint64(ev.ID))
	}
	if ev.Unknown {
		// Unknown size: the header is all there ever is to write for
		// this tag, so it goes out immediately; no frame buffers
		// anything, children are written straight through (see current).
		w := e.current()
		w.Write(WriteVintID(ev.ID))
		w.Write(unknownSizeVintBytes)
	}
	e.stack = append(e.stack, &encFrame{id: ev.ID, unknown: ev.Unknown})
	return nil
}

func (e *Encoder) encodeMasterEnd(ev Event) error {
	if len(e.stack) == 0 {
		return errors.Wrapf(ErrStructureBroken, "id %d", ev.ID)
	}
	top := e.stack[len(e.stack)-1]
	if top.id != ev.ID {
		return errors.Wrapf(ErrMismatchedEnd, "end for id %d, open frame is id %d", ev.ID, top.id)
	}
	e.stack = e.stack[:len(e.stack)-1]

	if top.unknown {
		// Header already written at MasterStart; children already went
		// straight to their target. Nothing left to fold in.
		return nil
	}

	size := int64(top.content.Len())
	if size < 0 || uint64(size) > maxVintValue {
		return errors.Wrapf(ErrUnrepresentableSize, "master id %d body %d bytes", top.id, size)
	}
	sizeBytes, err := WriteVint(uint64(size))
	if err != nil {
		return errors.Wrapf(ErrUnrepresentableSize, "master id %d: %v", top.id, err)
	}
	parent := e.current()
	parent.Write(WriteVintID(top.id))
	parent.Write(sizeBytes)
	parent.Write(top.content.Bytes())
	return nil
}

func (e *Encoder) encodeLeafEvent(ev Event) error {
	if _, found := e.schema.Lookup(ev.ID); !found {
		return errors.Wrapf(ErrUnknownTag, "id %d (0x%X)", ev.ID, uint64(ev.ID))
	}
	content, err := encodeLeaf(ev)
	if err != nil {
		return err
	}
	if uint64(len(content)) > maxVintValue {
		return errors.Wrapf(ErrUnrepresentableSize, "leaf id %d body %d bytes", ev.ID, len(content))
	}
	sizeBytes, err := WriteVint(uint64(len(content)))
	if err != nil {
		return errors.Wrapf(ErrUnrepresentableSize, "leaf id %d: %v", ev.ID, err)
	}
	w := e.current()
	w.Write(WriteVintID(ev.ID))
	w.Write(sizeBytes)
	w.Write(content)
	return nil
}
