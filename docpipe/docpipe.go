// Package docpipe extracts plain text from structured document byte streams.
//
// Supported formats:
//   - docx — Microsoft Word (archive/zip → word/document.xml)
//   - odt  — OpenDocument Text (archive/zip → content.xml)
//   - pdf  — PDF content-stream text operators (pdfcpu)
//   - html — sanitized DOM walk (x/net/html), optional Markdown output
//
// Formatting, embedded objects and document structure are discarded; the
// result is a single text blob with paragraph breaks preserved as line
// breaks. Extraction never touches the filesystem: inputs arrive as byte
// slices from the upload boundary.
package docpipe

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hazyhaar/convertd/format"
)

// Config configures the extractor.
type Config struct {
	// MaxBytes is the maximum input size to process (default: 100 MB).
	MaxBytes int64

	// Logger for debug messages.
	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.MaxBytes <= 0 {
		c.MaxBytes = 100 * 1024 * 1024
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Extractor converts structured documents to plain text.
type Extractor struct {
	cfg    Config
	logger *slog.Logger
}

// New creates an Extractor with the given configuration.
func New(cfg Config) *Extractor {
	cfg.defaults()
	return &Extractor{cfg: cfg, logger: cfg.Logger}
}

// Document is the result of extracting content from a byte stream.
type Document struct {
	Format format.ID
	// Title is the first heading when one was found, otherwise empty.
	Title string
	// Text is the extracted plain text, one line per paragraph.
	Text string
}

// Extract parses the document named filename from data and returns its
// plain-text content. The filename only supplies the format; content is
// read exclusively from data.
func (e *Extractor) Extract(ctx context.Context, filename string, data []byte) (*Document, error) {
	if int64(len(data)) > e.cfg.MaxBytes {
		return nil, fmt.Errorf("docpipe: input too large: %d bytes (max %d)", len(data), e.cfg.MaxBytes)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id, err := format.Classify(filename)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("extracting document", "filename", filename, "format", id, "bytes", len(data))

	var title, text string
	switch id {
	case format.DOCX:
		title, text, err = extractDocx(data)
	case format.ODT:
		title, text, err = extractODT(data)
	case format.PDF:
		title, text, err = extractPDF(data)
	case format.HTML:
		title, text, err = extractHTML(data)
	default:
		return nil, fmt.Errorf("docpipe: no extractor for format %q", id)
	}
	if err != nil {
		return nil, fmt.Errorf("docpipe: extract %s: %w", id, err)
	}

	return &Document{Format: id, Title: title, Text: text}, nil
}

// SupportedFormats returns the formats Extract can handle.
func SupportedFormats() []format.ID {
	return []format.ID{format.DOCX, format.ODT, format.PDF, format.HTML}
}
