package docpipe

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

// extractODT parses an .odt stream by reading content.xml from the ZIP
// archive. <text:h> and <text:p> elements each become one output line.
func extractODT(data []byte) (string, string, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", "", fmt.Errorf("open zip: %w", err)
	}

	var contentFile *zip.File
	for _, f := range r.File {
		if f.Name == "content.xml" {
			contentFile = f
			break
		}
	}
	if contentFile == nil {
		return "", "", fmt.Errorf("content.xml not found in archive")
	}

	rc, err := contentFile.Open()
	if err != nil {
		return "", "", fmt.Errorf("open content.xml: %w", err)
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	var lines []string
	var title string
	var current strings.Builder
	var inText bool
	var isHeading bool

	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "h": // <text:h>
				inText = true
				isHeading = true
				current.Reset()
			case "p": // <text:p>
				inText = true
				isHeading = false
				current.Reset()
			case "tab":
				if inText {
					current.WriteByte('\t')
				}
			case "s": // <text:s> explicit space
				if inText {
					current.WriteByte(' ')
				}
			}

		case xml.CharData:
			if inText {
				current.Write(t)
			}

		case xml.EndElement:
			if (t.Name.Local == "h" || t.Name.Local == "p") && inText {
				inText = false
				text := strings.TrimSpace(current.String())
				if text == "" {
					continue
				}
				if isHeading && title == "" {
					title = text
				}
				lines = append(lines, text)
			}
		}
	}

	if len(lines) == 0 {
		return "", "", fmt.Errorf("no text content found")
	}
	return title, strings.Join(lines, "\n"), nil
}
