package docpipe

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/jung-kurt/gofpdf"

	"github.com/hazyhaar/convertd/format"
)

// buildZip assembles an in-memory ZIP with a single named entry.
func buildZip(t *testing.T, name, content string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create(name)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

const docxBody = `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p>
      <w:pPr><w:pStyle w:val="Heading1"/></w:pPr>
      <w:r><w:t>Quarterly Report</w:t></w:r>
    </w:p>
    <w:p><w:r><w:t>First paragraph of the body.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second paragraph, </w:t></w:r><w:r><w:t>split across runs.</w:t></w:r></w:p>
  </w:body>
</w:document>`

func TestExtractDocx(t *testing.T) {
	data := buildZip(t, "word/document.xml", docxBody)

	e := New(Config{})
	doc, err := e.Extract(context.Background(), "report.docx", data)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Format != format.DOCX {
		t.Errorf("format = %q, want docx", doc.Format)
	}
	if doc.Title != "Quarterly Report" {
		t.Errorf("title = %q, want Quarterly Report", doc.Title)
	}
	lines := strings.Split(doc.Text, "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3: %q", len(lines), doc.Text)
	}
	if lines[2] != "Second paragraph, split across runs." {
		t.Errorf("run concatenation broken: %q", lines[2])
	}
}

func TestExtractDocxRejectsNonZip(t *testing.T) {
	e := New(Config{})
	if _, err := e.Extract(context.Background(), "fake.docx", []byte("not a zip")); err == nil {
		t.Error("expected error for non-OOXML input")
	}
}

func TestExtractDocxMissingDocumentXML(t *testing.T) {
	data := buildZip(t, "unrelated.xml", "<x/>")
	e := New(Config{})
	if _, err := e.Extract(context.Background(), "broken.docx", data); err == nil {
		t.Error("expected error when word/document.xml is absent")
	}
}

const odtBody = `<?xml version="1.0" encoding="UTF-8"?>
<office:document-content
  xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0"
  xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0">
  <office:body><office:text>
    <text:h text:outline-level="1">Letter</text:h>
    <text:p>Dear reader,</text:p>
    <text:p>Second line.</text:p>
  </office:text></office:body>
</office:document-content>`

func TestExtractODT(t *testing.T) {
	data := buildZip(t, "content.xml", odtBody)

	e := New(Config{})
	doc, err := e.Extract(context.Background(), "letter.odt", data)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Title != "Letter" {
		t.Errorf("title = %q, want Letter", doc.Title)
	}
	want := "Letter\nDear reader,\nSecond line."
	if doc.Text != want {
		t.Errorf("text = %q, want %q", doc.Text, want)
	}
}

func TestExtractHTML(t *testing.T) {
	page := `<html><head><title>Landing</title><script>alert(1)</script></head>
<body><h1>Welcome</h1><p>First paragraph.</p><p>Second paragraph.</p></body></html>`

	e := New(Config{})
	doc, err := e.Extract(context.Background(), "page.html", []byte(page))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Title != "Landing" {
		t.Errorf("title = %q, want Landing", doc.Title)
	}
	if strings.Contains(doc.Text, "alert(1)") {
		t.Error("script content leaked into extracted text")
	}
	for _, want := range []string{"Welcome", "First paragraph.", "Second paragraph."} {
		if !strings.Contains(doc.Text, want) {
			t.Errorf("text missing %q: %q", want, doc.Text)
		}
	}
}

func TestHTMLToMarkdown(t *testing.T) {
	page := `<h1>Title</h1><p>Some <strong>bold</strong> text.</p>`
	md, err := HTMLToMarkdown([]byte(page))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(md, "# Title") {
		t.Errorf("missing heading in markdown: %q", md)
	}
	if !strings.Contains(md, "**bold**") {
		t.Errorf("missing emphasis in markdown: %q", md)
	}
}

func TestExtractPDF(t *testing.T) {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(50, 50, "Invoice 42")
	pdf.Text(50, 70, "Total due: 100")
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatal(err)
	}

	e := New(Config{})
	doc, err := e.Extract(context.Background(), "invoice.pdf", buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Invoice 42", "Total due: 100"} {
		if !strings.Contains(doc.Text, want) {
			t.Errorf("pdf text missing %q: %q", want, doc.Text)
		}
	}
}

func TestExtractPDFRejectsGarbage(t *testing.T) {
	e := New(Config{})
	if _, err := e.Extract(context.Background(), "fake.pdf", []byte("%PDF-oops")); err == nil {
		t.Error("expected error for corrupt PDF")
	}
}

func TestExtractUnsupportedFormat(t *testing.T) {
	e := New(Config{})
	if _, err := e.Extract(context.Background(), "notes.txt", []byte("plain")); err == nil {
		t.Error("expected error: txt has no structured extractor")
	}
	if _, err := e.Extract(context.Background(), "noext", nil); err == nil {
		t.Error("expected error for missing extension")
	}
}

func TestExtractSizeLimit(t *testing.T) {
	e := New(Config{MaxBytes: 16})
	if _, err := e.Extract(context.Background(), "big.docx", make([]byte, 64)); err == nil {
		t.Error("expected size-limit error")
	}
}

func TestDecodePDFString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`plain`, "plain"},
		{`a\(b\)c`, "a(b)c"},
		{`tab\there`, "tab\there"},
		{`\040`, " "},
		{`back\\slash`, `back\slash`},
	}
	for _, tt := range tests {
		if got := decodePDFString([]byte(tt.in)); got != tt.want {
			t.Errorf("decodePDFString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
