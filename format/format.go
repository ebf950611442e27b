// Package format classifies filenames into format identifiers and computes
// which output formats a given input can be converted to.
//
// A format identifier is the lowercase token of the filename's final
// extension ("jpg", "pdf", "docx"). Identifiers are grouped into coarse
// families (image, document, presentation) that drive the availability
// policy exposed to the upload UI.
package format

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ID is a lowercase format identifier derived from a file extension.
type ID string

const (
	JPG  ID = "jpg"
	JPEG ID = "jpeg"
	PNG  ID = "png"
	GIF  ID = "gif"
	BMP  ID = "bmp"
	WebP ID = "webp"

	PDF  ID = "pdf"
	DOCX ID = "docx"
	ODT  ID = "odt"
	TXT  ID = "txt"
	MD   ID = "md"
	HTML ID = "html"

	PPTX ID = "pptx"
)

// Family is a coarse grouping of format identifiers.
type Family string

const (
	FamilyImage        Family = "image"
	FamilyDocument     Family = "document"
	FamilyPresentation Family = "presentation"
	FamilyOther        Family = "other"
)

// families maps every known format to its family. Order within a family is
// the display order returned by Outputs.
var families = map[ID]Family{
	JPG:  FamilyImage,
	JPEG: FamilyImage,
	PNG:  FamilyImage,
	GIF:  FamilyImage,
	BMP:  FamilyImage,
	WebP: FamilyImage,

	PDF:  FamilyDocument,
	DOCX: FamilyDocument,
	ODT:  FamilyDocument,
	TXT:  FamilyDocument,
	MD:   FamilyDocument,
	HTML: FamilyDocument,

	PPTX: FamilyPresentation,
}

var imageFormats = []ID{JPG, JPEG, PNG, GIF, BMP, WebP}
var documentFormats = []ID{PDF, DOCX, ODT, TXT, MD, HTML}
var presentationFormats = []ID{PPTX}

var mimeTypes = map[ID]string{
	JPG:  "image/jpeg",
	JPEG: "image/jpeg",
	PNG:  "image/png",
	GIF:  "image/gif",
	BMP:  "image/bmp",
	WebP: "image/webp",
	PDF:  "application/pdf",
	DOCX: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	ODT:  "application/vnd.oasis.opendocument.text",
	TXT:  "text/plain; charset=utf-8",
	MD:   "text/markdown; charset=utf-8",
	HTML: "text/html; charset=utf-8",
	PPTX: "application/vnd.openxmlformats-officedocument.presentationml.presentation",
}

// Classify derives the format identifier from a filename's final extension.
// Matching is case-insensitive. A missing or unknown extension is an error.
func Classify(filename string) (ID, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return "", fmt.Errorf("format: no extension in %q", filename)
	}
	id := ID(strings.TrimPrefix(ext, "."))
	if _, ok := families[id]; !ok {
		return "", fmt.Errorf("format: unrecognized format %q", id)
	}
	return id, nil
}

// FamilyOf returns the family of a format, or FamilyOther when unknown.
func FamilyOf(id ID) Family {
	if f, ok := families[id]; ok {
		return f
	}
	return FamilyOther
}

// Known reports whether id is a recognized format identifier.
func Known(id ID) bool {
	_, ok := families[id]
	return ok
}

// Outputs returns the output formats offered for the given input format.
//
// Policy:
//   - image input: every other image format, plus pdf.
//   - pdf input: every image format, plus every document format except pdf.
//   - non-pdf document input: every other document format, with pdf present.
//   - anything else: same-family formats minus the input itself.
//
// Unrecognized inputs yield an empty set. Note that availability is the UI
// policy, not a conversion guarantee: the dispatcher remains the authority
// on which pairs actually execute.
func Outputs(in ID) []ID {
	switch {
	case FamilyOf(in) == FamilyImage:
		out := exclude(imageFormats, in)
		return append(out, PDF)
	case in == PDF:
		out := append([]ID(nil), imageFormats...)
		return append(out, exclude(documentFormats, PDF)...)
	case FamilyOf(in) == FamilyDocument:
		out := exclude(documentFormats, in)
		if !contains(out, PDF) {
			out = append(out, PDF)
		}
		return out
	case FamilyOf(in) == FamilyPresentation:
		return exclude(presentationFormats, in)
	default:
		return nil
	}
}

// All returns every known format identifier in display order.
func All() []ID {
	out := make([]ID, 0, len(families))
	out = append(out, imageFormats...)
	out = append(out, documentFormats...)
	out = append(out, presentationFormats...)
	return out
}

// MIME returns the MIME type for a format, or application/octet-stream.
func MIME(id ID) string {
	if m, ok := mimeTypes[id]; ok {
		return m
	}
	return "application/octet-stream"
}

// OutputName builds the suggested download filename: the original filename's
// full stem (everything before the final extension) plus the target format's
// extension. "my.report.v2.docx" → "my.report.v2.pdf".
func OutputName(original string, target ID) string {
	stem := strings.TrimSuffix(original, filepath.Ext(original))
	if stem == "" {
		stem = original
	}
	return stem + "." + string(target)
}

func exclude(ids []ID, skip ID) []ID {
	out := make([]ID, 0, len(ids))
	for _, id := range ids {
		if id != skip {
			out = append(out, id)
		}
	}
	return out
}

func contains(ids []ID, want ID) bool {
	for _, id := range ids {
		if id == want {
			return true
		}
	}
	return false
}
