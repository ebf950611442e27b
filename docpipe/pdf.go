package docpipe

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// extractPDF extracts text from a PDF stream using pdfcpu for structure
// parsing and a content-stream operator walk for the text itself.
func extractPDF(data []byte) (string, string, error) {
	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return "", "", fmt.Errorf("pdfcpu read: %w", err)
	}

	var pages []string
	var title string

	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		pageText := extractPageText(ctx, pageNr)
		if pageText == "" {
			continue
		}
		if title == "" {
			for _, line := range strings.Split(pageText, "\n") {
				line = strings.TrimSpace(line)
				if line != "" {
					title = line
					if len(title) > 200 {
						title = title[:200]
					}
					break
				}
			}
		}
		pages = append(pages, pageText)
	}

	if len(pages) == 0 {
		return "", "", fmt.Errorf("no text content found in PDF")
	}
	return title, strings.Join(pages, "\n"), nil
}

// extractPageText extracts text from a single PDF page content stream.
func extractPageText(ctx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return extractTextFromStream(data)
}

// pdfStringRe matches PDF string literals in parentheses: (text here)
var pdfStringRe = regexp.MustCompile(`\(([^)]*)\)`)

// Show-text and positioning operators. Producers differ on layout: some
// emit one operator per line, others a whole text object on a single line
// (gofpdf writes "BT x y Td (text) Tj ET"), so operators are matched
// anywhere in the line rather than as suffixes.
var (
	tjOpRe    = regexp.MustCompile(`\)\s*\]?\s*T[jJ]`)
	quoteOpRe = regexp.MustCompile(`\)\s*'`)
	tdOpRe    = regexp.MustCompile(`T[dD](\s|$)`)
)

// extractTextFromStream parses PDF content stream operators for text.
func extractTextFromStream(data []byte) string {
	var sb strings.Builder

	lines := bytes.Split(data, []byte{'\n'})
	for _, line := range lines {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		// Td/TD operator (text positioning — add separation).
		if tdOpRe.Match(line) && sb.Len() > 0 {
			sb.WriteByte(' ')
		}

		// ' operator (move to next line and show text): (text) '
		if quoteOpRe.Match(line) {
			sb.WriteByte('\n')
		}

		// Tj / TJ / ' operators: (text) Tj, [(text) -100 (more)] TJ
		if tjOpRe.Match(line) || quoteOpRe.Match(line) {
			for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
				if text := decodePDFString(m[1]); text != "" {
					sb.WriteString(text)
				}
			}
		}

		// T* operator (move to start of next line).
		if bytes.Equal(line, []byte("T*")) {
			sb.WriteByte('\n')
		}
	}

	return cleanPDFText(sb.String())
}

// decodePDFString handles basic PDF escape sequences.
func decodePDFString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] == '\\' && i+1 < len(raw) {
			i++
			switch raw[i] {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case '\\':
				sb.WriteByte('\\')
			case '(':
				sb.WriteByte('(')
			case ')':
				sb.WriteByte(')')
			default:
				// Octal escape (e.g. \040 for space).
				if raw[i] >= '0' && raw[i] <= '7' {
					val := int(raw[i] - '0')
					if i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7' {
						i++
						val = val*8 + int(raw[i]-'0')
						if i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7' {
							i++
							val = val*8 + int(raw[i]-'0')
						}
					}
					sb.WriteByte(byte(val))
				} else {
					sb.WriteByte(raw[i])
				}
			}
		} else {
			sb.WriteByte(raw[i])
		}
	}
	return sb.String()
}

// cleanPDFText normalises whitespace in extracted PDF text, preserving
// line breaks inserted by the operator walk.
func cleanPDFText(text string) string {
	var sb strings.Builder
	prevSpace := false
	prevNL := false
	for _, r := range text {
		switch {
		case r == '\n':
			if sb.Len() > 0 && !prevNL {
				sb.WriteByte('\n')
			}
			prevSpace = true
			prevNL = true
		case unicode.IsSpace(r):
			if !prevSpace && sb.Len() > 0 {
				sb.WriteByte(' ')
				prevSpace = true
			}
		case unicode.IsPrint(r):
			sb.WriteRune(r)
			prevSpace = false
			prevNL = false
		}
	}
	return strings.TrimSpace(sb.String())
}
