package extractor

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	w, err := zw.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(`<?xml version="1.0"?><Types/>`))
	require.NoError(t, err)

	w, err = zw.Create(docxBodyPart)
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)

	require.NoError(t, zw.Close())

	return buf.Bytes()
}

const sampleDocument = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Chapter 1:</w:t></w:r><w:r><w:t xml:space="preserve"> Cells</w:t></w:r></w:p>
    <w:p><w:r><w:t>Cells divide</w:t><w:tab/><w:t>by mitosis.</w:t></w:r></w:p>
    <w:p></w:p>
    <w:p><w:r><w:t>Fin</w:t></w:r></w:p>
  </w:body>
</w:document>`

func TestExtractText_DOCX(t *testing.T) {
	text, err := ExtractText("notes.DOCX", buildDOCX(t, sampleDocument))

	require.NoError(t, err)
	assert.Equal(t, "Chapter 1: Cells\n\nCells divide\tby mitosis.\n\nFin", text)
}

func TestExtractText_DOCXMissingBody(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err := zw.Create("other.xml")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = ExtractText("notes.docx", buf.Bytes())
	assert.Error(t, err)
}

func TestExtractText_TXT(t *testing.T) {
	text, err := ExtractText("notes.txt", []byte("\xef\xbb\xbf  The French Revolution began in 1789.\n"))

	require.NoError(t, err)
	assert.Equal(t, "The French Revolution began in 1789.", text)
}

func TestExtractText_InvalidUTF8(t *testing.T) {
	text, err := ExtractText("notes.txt", []byte("ok\xff\xfe text"))

	require.NoError(t, err)
	assert.Equal(t, "ok text", text)
}

func TestExtractText_Empty(t *testing.T) {
	_, err := ExtractText("empty.txt", []byte("   \n  "))
	assert.ErrorIs(t, err, ErrNoText)

	_, err = ExtractText("empty.docx", buildDOCX(t, `<w:document xmlns:w="x"><w:body/></w:document>`))
	assert.ErrorIs(t, err, ErrNoText)
}

func TestExtractText_Unsupported(t *testing.T) {
	_, err := ExtractText("slides.pptx", []byte("data"))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = ExtractText("noext", []byte("data"))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestExtractText_CorruptPDF(t *testing.T) {
	_, err := ExtractText("paper.pdf", []byte("definitely not a pdf"))
	assert.Error(t, err)
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("a.pdf"))
	assert.True(t, Supported("a.Docx"))
	assert.True(t, Supported("a.txt"))
	assert.False(t, Supported("a.doc"))
	assert.False(t, Supported("a"))
}
