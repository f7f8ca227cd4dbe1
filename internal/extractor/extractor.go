package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrNoText          = errors.New("no text could be extracted")
)

const (
	ExtPDF  = ".pdf"
	ExtDOCX = ".docx"
	ExtTXT  = ".txt"
)

// Supported reports whether the filename has an extension we can read.
func Supported(filename string) bool {
	switch Ext(filename) {
	case ExtPDF, ExtDOCX, ExtTXT:
		return true
	}

	return false
}

func Ext(filename string) string {
	return strings.ToLower(filepath.Ext(filename))
}

// ExtractText returns the plain text of an uploaded document, chosen by extension.
func ExtractText(filename string, data []byte) (string, error) {
	var (
		text string
		err  error
	)

	switch Ext(filename) {
	case ExtTXT:
		text, err = extractPlain(data)
	case ExtPDF:
		text, err = extractPDF(data)
	case ExtDOCX:
		text, err = extractDOCX(data)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, filepath.Ext(filename))
	}

	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoText
	}

	return text, nil
}

func extractPlain(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	if !utf8.Valid(data) {
		return strings.ToValidUTF8(string(data), ""), nil
	}

	return string(data), nil
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	return buf.String(), nil
}
