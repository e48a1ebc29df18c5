package ebml

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/go-ebml/ebml/schema"
)

// phase names the three states of the decoder's pull-parser state
// machine (spec.md §4.1).
type phase int

const (
	phaseTag phase = iota
	phaseSize
	phaseContent
)

// unknownSizeSentinel is the reserved all-ones payload at 8-octet VINT
// length: "content extends until a logical boundary".
const unknownSizeSentinel = (uint64(1) << 56) - 1

// stackFrame is an open-master (or, transiently, open-leaf) entry on the
// decoder's LIFO stack.
type stackFrame struct {
	pos  Position
	skip bool // true when this tag id was skipped (see WithSkipUnknownTopLevel)
}

// Option configures a Decoder at construction time.
type Option func(*Decoder)

// WithLogger attaches a zap logger for trace/error diagnostics. The
// default is a no-op logger, so embedding this package never forces a
// logging backend on a caller that doesn't want one.
func WithLogger(l *zap.Logger) Option {
	return func(d *Decoder) {
		if l != nil {
			d.log = l
		}
	}
}

// WithSkipUnknownTopLevel, when enabled, causes an unknown tag id
// encountered with an empty open-master stack to be skipped (its bytes
// consumed and discarded, no event emitted) instead of raising
// ErrUnknownTag. Per spec.md §4.1 this is an optional extension; the
// base design reports and stops. An unknown tag that also declares
// unknown size cannot be skipped (its extent can't be determined
// without knowing whether it's a master) and still raises ErrUnknownTag.
func WithSkipUnknownTopLevel(skip bool) Option {
	return func(d *Decoder) { d.skipUnknownTopLevel = skip }
}

// WithEventSink registers a callback invoked for every event as it is
// produced, in addition to the event being queued for Decode's return
// value. Useful for streaming consumers that want to react immediately
// rather than waiting for a Decode call to return.
func WithEventSink(f func(Event)) Option {
	return func(d *Decoder) { d.sink = f }
}

// WithStrict requests the stricter unknown-size close semantics
// (closing at a sibling-of-equal-or-lesser level or EOF, rather than on
// first child completion). spec.md §9 flags this as a documented future
// extension; it is not implemented, so requesting it poisons the
// Decoder before it reads a single byte.
func WithStrict(strict bool) Option {
	return func(d *Decoder) {
		if strict {
			d.err = errors.WithStack(ErrStrictModeUnsupported)
		}
	}
}

// Decoder is a streaming EBML decoder: a three-phase (tag, size,
// content) pull-parser state machine over chunked input. It is a
// strictly single-threaded cooperative state machine (spec.md §5): it
// never blocks, never retries internally, and is not safe for
// concurrent use by multiple goroutines.
//
// A Decoder is poisoned after any error: once Decode returns a non-nil
// error, every subsequent call returns that same error without
// attempting further work.
type Decoder struct {
	schema schema.Schema

	phase  phase
	buf    []byte
	cursor int
	total  int64

	stack []stackFrame
	queue []Event

	err error
	log *zap.Logger

	skipUnknownTopLevel bool
	sink                func(Event)
}

// compactWatermark is the minimum number of already-consumed leading
// bytes before Decode bothers to shrink the internal buffer. Below this
// it's cheaper to just let the buffer grow than to pay a copy on every
// call.
const compactWatermark = 64 * 1024

// NewDecoder creates a Decoder that resolves tag ids against s.
func NewDecoder(s schema.Schema, opts ...Option) *Decoder {
	d := &Decoder{schema: s, phase: phaseTag, log: zap.NewNop()}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Decode appends chunk to the decoder's internal buffer and advances
// the state machine as far as the buffered bytes allow, returning every
// event newly produced. chunk may be empty; Decode(nil) still makes
// progress if progress is possible from already-buffered bytes, and
// returns an empty, non-erroring result once no further progress is
// possible (spec.md §4.1, §8 property 4).
func (d *Decoder) Decode(chunk []byte) ([]Event, error) {
	if d.err != nil {
		return nil, d.err
	}
	if len(chunk) > 0 {
		d.buf = append(d.buf, chunk...)
		d.log.Debug("ebml: buffered chunk", zap.Int("chunk_bytes", len(chunk)), zap.Int("buffered", len(d.buf)-d.cursor))
	}
	for {
		progressed, err := d.step()
		if err != nil {
			d.err = err
			d.log.Error("ebml: decode failed", zap.Error(err), zap.Int64("total", d.total))
			return d.drain(), err
		}
		if !progressed {
			break
		}
	}
	d.compact()
	return d.drain(), nil
}

// drain returns the events accumulated since the last call and resets
// the internal queue.
func (d *Decoder) drain() []Event {
	out := d.queue
	d.queue = nil
	return out
}

// emit appends ev to the pending queue and, if a sink is registered,
// invokes it immediately.
func (d *Decoder) emit(ev Event) {
	d.queue = append(d.queue, ev)
	if d.sink != nil {
		d.sink(ev)
	}
}

// compact discards the consumed prefix of buf once it is large enough
// to be worth the copy, per spec.md §9's sliding-window preference over
// repeated reallocation.
func (d *Decoder) compact() {
	if d.cursor < compactWatermark {
		return
	}
	remaining := len(d.buf) - d.cursor
	newBuf := make([]byte, remaining)
	copy(newBuf, d.buf[d.cursor:])
	d.buf = newBuf
	d.cursor = 0
}

// step advances the state machine by exactly one phase transition (or
// reports that more data is needed). It returns (false, nil) when the
// buffer doesn't yet hold enough bytes to proceed, and a non-nil error
// only for conditions spec.md §4.1 defines as fatal.
func (d *Decoder) step() (bool, error) {
	switch d.phase {
	case phaseTag:
		return d.readTag()
	case phaseSize:
		return d.readSize()
	case phaseContent:
		return d.readContent()
	default:
		panic("ebml: decoder in unreachable phase")
	}
}

func (d *Decoder) readTag() (bool, error) {
	if d.cursor >= len(d.buf) {
		return false, nil
	}
	v, id, ok, err := ReadVintID(d.buf, d.cursor)
	if err != nil {
		return false, errors.WithStack(err)
	}
	if !ok {
		return false, nil
	}

	entry, found := d.schema.Lookup(id)
	skip := false
	if !found {
		if !(d.skipUnknownTopLevel && len(d.stack) == 0) {
			return false, errors.Wrapf(ErrUnknownTag, "id %d (0x%X)", id, uint64(id))
		}
		skip = true
	}

	typ := TypeBinary
	if len(entry.Type) > 0 {
		typ = ElementType(entry.Type[0])
	}
	pos := Position{
		ID:       id,
		Level:    entry.Level,
		Type:     typ,
		TagStart: d.total,
	}
	d.stack = append(d.stack, stackFrame{pos: pos, skip: skip})

	d.cursor += int(v.Length)
	d.total += int64(v.Length)
	d.phase = phaseSize
	return true, nil
}

func (d *Decoder) readSize() (bool, error) {
	if d.cursor >= len(d.buf) {
		return false, nil
	}
	v, ok, err := ReadVint(d.buf, d.cursor)
	if err != nil {
		return false, errors.WithStack(err)
	}
	if !ok {
		return false, nil
	}

	top := &d.stack[len(d.stack)-1]
	top.pos.SizeStart = d.total
	top.pos.ContentStart = d.total + int64(v.Length)
	if v.Value == unknownSizeSentinel {
		if top.skip {
			return false, errors.Wrapf(ErrUnknownTag, "id %d declared unknown size and cannot be skipped", top.pos.ID)
		}
		top.pos.ContentSize = unknownContentSize
	} else {
		top.pos.ContentSize = int64(v.Value)
	}

	d.cursor += int(v.Length)
	d.total += int64(v.Length)
	d.phase = phaseContent
	return true, nil
}

func (d *Decoder) readContent() (bool, error) {
	top := &d.stack[len(d.stack)-1]

	if !top.skip && top.pos.Type == TypeMaster {
		unknown := top.pos.ContentSize == unknownContentSize
		pos := top.pos
		if unknown {
			pos.ContentSize = 0 // published Positions never carry unknownContentSize
		}
		ev := MasterStart(top.pos.ID, pos, unknown)
		d.emit(ev)
		d.phase = phaseTag
		if top.pos.ContentSize == 0 {
			d.emit(MasterEnd(top.pos.ID, top.pos))
			d.stack = d.stack[:len(d.stack)-1]
		}
		return true, nil
	}

	if top.pos.ContentSize == unknownContentSize {
		return false, errors.Wrapf(ErrUnknownSizeOnLeaf, "id %d", top.pos.ID)
	}

	size := int(top.pos.ContentSize)
	if d.cursor+size > len(d.buf) {
		return false, nil
	}
	content := d.buf[d.cursor : d.cursor+size]

	if !top.skip {
		ev, err := decodeLeaf(top.pos.Type, top.pos.ID, top.pos, content)
		if err != nil {
			return false, err
		}
		d.emit(ev)
	}

	d.cursor += size
	d.total += int64(size)
	d.phase = phaseTag
	d.stack = d.stack[:len(d.stack)-1]
	d.closeCascade()
	return true, nil
}

// closeCascade implements spec.md §4.1's post-leaf procedure: walk the
// open-master stack top-down, closing any frame whose boundary has now
// been reached. An unknown-size master closes as soon as its child
// completes (the preserved compatibility heuristic, spec.md §9 open
// question 3); a known-size master closes once total has reached its
// own content_start + content_size — using the frame's OWN size, which
// is the bug fix from spec.md §9 open question 1 (the source tested the
// just-popped child's size instead).
func (d *Decoder) closeCascade() {
	for len(d.stack) > 0 {
		top := &d.stack[len(d.stack)-1]
		if top.pos.ContentSize == unknownContentSize {
			pos := top.pos
			pos.ContentSize = 0
			d.emit(MasterEnd(top.pos.ID, pos))
			d.stack = d.stack[:len(d.stack)-1]
			continue
		}
		if d.total >= top.pos.ContentStart+top.pos.ContentSize {
			d.emit(MasterEnd(top.pos.ID, top.pos))
			d.stack = d.stack[:len(d.stack)-1]
			continue
		}
		break
	}
}
