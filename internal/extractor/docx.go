package extractor

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	docxBodyPart   = "word/document.xml"
	maxDocxXMLSize = 50 << 20
)

// reads the paragraphs of word/document.xml. Runs (w:t) are concatenated,
// tabs and breaks become whitespace, paragraphs are separated by blank lines.
func extractDOCX(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}

	var body *zip.File
	for _, f := range archive.File {
		if f.Name == docxBodyPart {
			body = f
			break
		}
	}

	if body == nil {
		return "", fmt.Errorf("open docx: missing %s", docxBodyPart)
	}

	rc, err := body.Open()
	if err != nil {
		return "", fmt.Errorf("open docx body: %w", err)
	}
	defer rc.Close() //nolint:errcheck

	return docxText(io.LimitReader(rc, maxDocxXMLSize))
}

func docxText(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var (
		out       strings.Builder
		paragraph strings.Builder
		inText    bool
	)

	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return "", fmt.Errorf("parse docx body: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				paragraph.WriteByte('\t')
			case "br", "cr":
				paragraph.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if line := strings.TrimSpace(paragraph.String()); line != "" {
					out.WriteString(line)
					out.WriteString("\n\n")
				}
				paragraph.Reset()
			}
		case xml.CharData:
			if inText {
				paragraph.Write(t)
			}
		}
	}

	if line := strings.TrimSpace(paragraph.String()); line != "" {
		out.WriteString(line)
	}

	return out.String(), nil
}
