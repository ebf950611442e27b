package convert

import (
	"fmt"

	"github.com/hazyhaar/convertd/format"
)

// ErrUnsupportedConversion is returned when no pipeline exists for the
// requested (input, output) format pair.
type ErrUnsupportedConversion struct {
	From format.ID
	To   format.ID
}

func (e *ErrUnsupportedConversion) Error() string {
	return fmt.Sprintf("convert: unsupported conversion: %s to %s", e.From, e.To)
}

// ErrUnknownFormat is returned when the input filename carries no
// recognizable format extension.
type ErrUnknownFormat struct {
	Filename string
	Cause    error
}

func (e *ErrUnknownFormat) Error() string {
	return fmt.Sprintf("convert: unknown input format for %q: %v", e.Filename, e.Cause)
}

func (e *ErrUnknownFormat) Unwrap() error { return e.Cause }

// ErrDecode is returned when the input bytes cannot be parsed as their
// claimed format (corrupt image, non-OOXML docx, invalid PDF).
type ErrDecode struct {
	Format format.ID
	Cause  error
}

func (e *ErrDecode) Error() string {
	return fmt.Sprintf("convert: decode %s input: %v", e.Format, e.Cause)
}

func (e *ErrDecode) Unwrap() error { return e.Cause }

// ErrEncode is returned when a decoded representation could not be
// re-encoded into the target format.
type ErrEncode struct {
	Format format.ID
	Cause  error
}

func (e *ErrEncode) Error() string {
	return fmt.Sprintf("convert: encode to %s: %v", e.Format, e.Cause)
}

func (e *ErrEncode) Unwrap() error { return e.Cause }

// ErrCompose is returned when page layout or image embedding fails after a
// successful decode.
type ErrCompose struct {
	Mode  string // "embed" or "reflow"
	Cause error
}

func (e *ErrCompose) Error() string {
	return fmt.Sprintf("convert: compose page (%s): %v", e.Mode, e.Cause)
}

func (e *ErrCompose) Unwrap() error { return e.Cause }
