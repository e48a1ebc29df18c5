package ebml

import "github.com/pkg/errors"

// ContentKind identifies which leaf decoder failed, for ErrReadContent.
type ContentKind string

const (
	ContentUnsigned ContentKind = "unsigned"
	ContentSigned   ContentKind = "signed"
	ContentFloat    ContentKind = "float"
	ContentString   ContentKind = "string"
	ContentUTF8     ContentKind = "utf8"
	ContentBinary   ContentKind = "binary"
	ContentDate     ContentKind = "date"
	ContentMaster   ContentKind = "master"
)

// Sentinel errors a Decoder or Encoder can return. All of them are
// fatal for the instance that produced them: spec.md §7 requires no
// internal retry, and this package honors that by poisoning the
// instance (see Decoder.err / Encoder.err).
var (
	// ErrUnknownTag means a tag id had no entry in the schema. A Decoder
	// hits this because there is no way to know the tag's size class
	// (master vs. leaf, and which leaf width rules apply) without one;
	// an Encoder hits this when asked to emit an event whose id the
	// schema doesn't recognize at all.
	ErrUnknownTag = errors.New("ebml: unknown tag id")

	// ErrUnknownSizeOnLeaf means a non-master element declared the
	// unknown-size sentinel. The sentinel is only meaningful for master
	// elements, whose end can be inferred from structure; a leaf has no
	// such fallback.
	ErrUnknownSizeOnLeaf = errors.New("ebml: unknown-size sentinel on non-master element")

	// ErrReadContent wraps a leaf-decoding failure; use
	// errors.Is(err, ErrReadContent) together with AsContentKind to
	// inspect which leaf type failed.
	ErrReadContent = errors.New("ebml: failed to read element content")

	// ErrMismatchedEnd means a MasterEnd event's id did not match the
	// id on top of the Encoder's open-frame stack.
	ErrMismatchedEnd = errors.New("ebml: master-end id does not match open frame")

	// ErrStructureBroken means a MasterEnd event arrived with no open
	// frame to close.
	ErrStructureBroken = errors.New("ebml: master-end with no open master")

	// ErrUnrepresentableSize means a master element's buffered body, or
	// a leaf's encoded payload, is too long to be written as a size VINT
	// (its length is >= 2^56-1).
	ErrUnrepresentableSize = errors.New("ebml: master body too large to represent as a size vint")

	// ErrStrictModeUnsupported is returned by every Decode call of a
	// Decoder built with WithStrict(true), that is, one asked for the
	// stricter (sibling-or-EOF) unknown-size close semantics, which
	// spec.md §9 flags as a documented future extension rather than a
	// behavior this module implements today.
	ErrStrictModeUnsupported = errors.New("ebml: strict unknown-size close mode is not implemented")
)

// contentKindError pairs ErrReadContent with the specific leaf kind and
// position that failed, and the underlying cause.
type contentKindError struct {
	kind  ContentKind
	pos   Position
	cause error
}

func (e *contentKindError) Error() string {
	return "ebml: read content (" + string(e.kind) + "): " + e.cause.Error()
}

func (e *contentKindError) Unwrap() error {
	return e.cause
}

func (e *contentKindError) Is(target error) bool {
	return target == ErrReadContent
}

func newReadContentError(kind ContentKind, pos Position, cause error) error {
	return errors.WithStack(&contentKindError{kind: kind, pos: pos, cause: cause})
}

// AsContentKind extracts the ContentKind and Position from an error
// produced by a failed leaf decode, if any.
func AsContentKind(err error) (ContentKind, Position, bool) {
	var ce *contentKindError
	for err != nil {
		if c, ok := err.(*contentKindError); ok {
			ce = c
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	if ce == nil {
		return "", Position{}, false
	}
	return ce.kind, ce.pos, true
}
