// Package convert dispatches conversion requests to the pipeline matching
// the (input format, output format) pair.
//
// A pipeline is a fixed composition of codec, compose and docpipe steps.
// The decision table is a single ordered rule list shared by every Engine
// scope, so the capability subset exposed to the browser-local path can
// never diverge from the server's on overlapping pairs.
package convert

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hazyhaar/convertd/codec"
	"github.com/hazyhaar/convertd/compose"
	"github.com/hazyhaar/convertd/docpipe"
	"github.com/hazyhaar/convertd/format"
)

// Request is one immutable unit of conversion work.
type Request struct {
	// Data is the raw uploaded file content.
	Data []byte
	// Filename is the original upload name; its extension determines the
	// input format.
	Filename string
	// Target is the requested output format.
	Target format.ID
}

// Result is the outcome of a successful conversion.
type Result struct {
	Data     []byte
	MIME     string
	Filename string
}

// pipelineKind tags the fixed set of transformation pipelines. Exhaustive:
// the dispatcher switch covers every variant.
type pipelineKind int

const (
	pipeReencode       pipelineKind = iota // image → image
	pipeEmbedImage                         // image → pdf
	pipePlaceholderPDF                     // pdf → image (blank page stand-in)
	pipeExtractText                        // structured doc → txt
	pipeExtractReflow                      // structured doc → pdf
	pipeReflowText                         // txt/md → pdf
	pipeHTMLMarkdown                       // html → md
)

// Scope restricts which pipelines an Engine instance exposes.
type Scope int

const (
	// ScopeFull enables every pipeline. This is the server-side dispatcher.
	ScopeFull Scope = iota
	// ScopeImage enables only the pipelines a browser can run locally:
	// image re-encoding and image-to-pdf embedding.
	ScopeImage
)

func (s Scope) allows(kind pipelineKind) bool {
	if s == ScopeFull {
		return true
	}
	return kind == pipeReencode || kind == pipeEmbedImage
}

// Config configures an Engine.
type Config struct {
	// Scope restricts the pipeline set. Default: ScopeFull.
	Scope Scope
	// JPEGQuality and WebPQuality override the lossy encode quality.
	JPEGQuality int
	WebPQuality int
	// MaxPages caps text-reflow output pages (0 = compose default).
	MaxPages int
	// Logger for per-request debug messages.
	Logger *slog.Logger
}

// Engine selects and executes exactly one pipeline per request. Engines
// are stateless across requests and safe for concurrent use.
type Engine struct {
	scope     Scope
	codec     *codec.Codec
	composer  *compose.Compositor
	extractor *docpipe.Extractor
	logger    *slog.Logger
}

// New creates an Engine.
func New(cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	c := &codec.Codec{JPEGQuality: cfg.JPEGQuality, WebPQuality: cfg.WebPQuality}
	return &Engine{
		scope:     cfg.Scope,
		codec:     c,
		composer:  &compose.Compositor{MaxPages: cfg.MaxPages, Codec: c},
		extractor: docpipe.New(docpipe.Config{Logger: logger}),
		logger:    logger,
	}
}

// selectPipeline matches the ordered dispatch rules. Returns false when no
// rule covers the pair.
func selectPipeline(in, out format.ID) (pipelineKind, bool) {
	switch {
	case format.FamilyOf(in) == format.FamilyImage:
		switch out {
		case format.JPG, format.JPEG, format.PNG, format.WebP:
			return pipeReencode, true
		case format.PDF:
			return pipeEmbedImage, true
		}
	case in == format.PDF:
		switch out {
		case format.JPG, format.JPEG, format.PNG:
			return pipePlaceholderPDF, true
		case format.TXT:
			return pipeExtractText, true
		}
	case in == format.DOCX || in == format.ODT:
		switch out {
		case format.PDF:
			return pipeExtractReflow, true
		case format.TXT:
			return pipeExtractText, true
		}
	case in == format.HTML:
		switch out {
		case format.PDF:
			return pipeExtractReflow, true
		case format.TXT:
			return pipeExtractText, true
		case format.MD:
			return pipeHTMLMarkdown, true
		}
	case in == format.TXT || in == format.MD:
		if out == format.PDF {
			return pipeReflowText, true
		}
	}
	return 0, false
}

// Supports reports whether this engine's scope covers the format pair.
func (e *Engine) Supports(in, out format.ID) bool {
	kind, ok := selectPipeline(in, out)
	return ok && e.scope.allows(kind)
}

// Convert executes the pipeline for the request. The request is consumed
// exactly once; failures abort with no partial output.
func (e *Engine) Convert(ctx context.Context, req Request) (*Result, error) {
	in, err := format.Classify(req.Filename)
	if err != nil {
		return nil, &ErrUnknownFormat{Filename: req.Filename, Cause: err}
	}
	if !format.Known(req.Target) {
		return nil, &ErrUnsupportedConversion{From: in, To: req.Target}
	}

	kind, ok := selectPipeline(in, req.Target)
	if !ok || !e.scope.allows(kind) {
		return nil, &ErrUnsupportedConversion{From: in, To: req.Target}
	}

	e.logger.Debug("converting", "filename", req.Filename, "from", in, "to", req.Target)

	var data []byte
	switch kind {
	case pipeReencode:
		data, err = e.reencode(req.Data, in, req.Target)
	case pipeEmbedImage:
		data, err = e.embedImage(req.Data, in)
	case pipePlaceholderPDF:
		data, err = e.placeholderRaster(req.Data, req.Target)
	case pipeExtractText:
		data, err = e.extractText(ctx, req)
	case pipeExtractReflow:
		data, err = e.extractReflow(ctx, req)
	case pipeReflowText:
		data, err = e.reflowText(req.Data)
	case pipeHTMLMarkdown:
		data, err = e.htmlMarkdown(req.Data)
	default:
		err = fmt.Errorf("convert: no pipeline for kind %d", kind)
	}
	if err != nil {
		return nil, err
	}

	return &Result{
		Data:     data,
		MIME:     format.MIME(req.Target),
		Filename: format.OutputName(req.Filename, req.Target),
	}, nil
}

func (e *Engine) reencode(data []byte, in, target format.ID) ([]byte, error) {
	img, _, err := e.codec.Decode(data)
	if err != nil {
		return nil, &ErrDecode{Format: in, Cause: err}
	}
	out, err := e.codec.Encode(img, target)
	if err != nil {
		return nil, &ErrEncode{Format: target, Cause: err}
	}
	return out, nil
}

func (e *Engine) embedImage(data []byte, in format.ID) ([]byte, error) {
	_, meta, err := e.codec.Decode(data)
	if err != nil {
		return nil, &ErrDecode{Format: in, Cause: err}
	}
	out, err := e.composer.EmbedImage(data, meta)
	if err != nil {
		return nil, &ErrCompose{Mode: "embed", Cause: err}
	}
	return out, nil
}

func (e *Engine) placeholderRaster(data []byte, target format.ID) ([]byte, error) {
	img, err := placeholderPage(data)
	if err != nil {
		return nil, &ErrDecode{Format: format.PDF, Cause: err}
	}
	out, err := e.codec.Encode(img, target)
	if err != nil {
		return nil, &ErrEncode{Format: target, Cause: err}
	}
	return out, nil
}

func (e *Engine) extractText(ctx context.Context, req Request) ([]byte, error) {
	doc, err := e.extractor.Extract(ctx, req.Filename, req.Data)
	if err != nil {
		return nil, &ErrDecode{Format: mustClassify(req.Filename), Cause: err}
	}
	return []byte(doc.Text), nil
}

func (e *Engine) extractReflow(ctx context.Context, req Request) ([]byte, error) {
	doc, err := e.extractor.Extract(ctx, req.Filename, req.Data)
	if err != nil {
		return nil, &ErrDecode{Format: mustClassify(req.Filename), Cause: err}
	}
	out, err := e.composer.LayoutText(doc.Text)
	if err != nil {
		return nil, &ErrCompose{Mode: "reflow", Cause: err}
	}
	return out, nil
}

func (e *Engine) reflowText(data []byte) ([]byte, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	out, err := e.composer.LayoutText(text)
	if err != nil {
		return nil, &ErrCompose{Mode: "reflow", Cause: err}
	}
	return out, nil
}

func (e *Engine) htmlMarkdown(data []byte) ([]byte, error) {
	md, err := docpipe.HTMLToMarkdown(data)
	if err != nil {
		return nil, &ErrDecode{Format: format.HTML, Cause: err}
	}
	return []byte(md), nil
}

// mustClassify re-derives a format already validated by Convert.
func mustClassify(filename string) format.ID {
	id, _ := format.Classify(filename)
	return id
}
