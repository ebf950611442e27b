package docpipe

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// sanitizer strips script, style and event handlers from uploaded HTML
// before any parsing. Uploads are untrusted browser input.
var sanitizer = bluemonday.UGCPolicy()

// blockAtoms are elements that terminate a text line when walking the DOM.
var blockAtoms = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Li: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true,
	atom.H5: true, atom.H6: true, atom.Tr: true, atom.Blockquote: true,
	atom.Pre: true, atom.Table: true, atom.Ul: true, atom.Ol: true,
}

// extractHTML extracts the visible text of an HTML stream, one line per
// block-level element.
func extractHTML(data []byte) (string, string, error) {
	clean := sanitizer.SanitizeBytes(data)
	doc, err := html.Parse(bytes.NewReader(clean))
	if err != nil {
		return "", "", fmt.Errorf("parse html: %w", err)
	}

	title := findHTMLTitle(doc)

	var sb strings.Builder
	collectText(doc, &sb)

	text := collapseBlankLines(sb.String())
	if text == "" {
		return "", "", fmt.Errorf("no text content found")
	}
	return title, text, nil
}

// markdownConverter converts sanitized HTML to Markdown.
var markdownConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		table.NewTablePlugin(),
	),
)

// HTMLToMarkdown converts an HTML stream to Markdown, sanitizing it first.
func HTMLToMarkdown(data []byte) (string, error) {
	clean := sanitizer.SanitizeBytes(data)
	out, err := markdownConverter.ConvertString(string(clean))
	if err != nil {
		return "", fmt.Errorf("docpipe: html to markdown: %w", err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("docpipe: html to markdown: empty result")
	}
	return out, nil
}

// findHTMLTitle extracts the <title> text.
func findHTMLTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.DataAtom == atom.Title {
		if n.FirstChild != nil {
			return strings.TrimSpace(n.FirstChild.Data)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findHTMLTitle(c); t != "" {
			return t
		}
	}
	return ""
}

// collectText walks the DOM depth-first, appending visible text and
// breaking lines on block elements.
func collectText(n *html.Node, sb *strings.Builder) {
	switch n.Type {
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Head, atom.Noscript:
			return
		}
	case html.TextNode:
		text := strings.TrimSpace(n.Data)
		if text != "" {
			if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
				sb.WriteByte(' ')
			}
			sb.WriteString(text)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}

	if n.Type == html.ElementNode && blockAtoms[n.DataAtom] {
		if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
			sb.WriteByte('\n')
		}
	}
}

// collapseBlankLines trims trailing whitespace per line and squeezes runs
// of blank lines to one.
func collapseBlankLines(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
