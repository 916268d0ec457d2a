package docx

import (
	"bytes"

	wordzip "github.com/nguyenthenguyen/docx"
)

// MainPart is the archive member holding the document body.
const MainPart = "word/document.xml"

// ContentType is the MIME type of a .docx archive.
const ContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Document is an opened .docx archive whose main body can be read and replaced.
// Every other archive member is carried through unchanged when the archive is written back.
type Document struct {
	archive *wordzip.ReplaceDocx
	doc     *wordzip.Docx
}

// Open reads a .docx archive from memory.
func Open(data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, &StructureError{Message: "document is empty"}
	}

	archive, err := wordzip.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &StructureError{
			Message: "could not read " + MainPart + " from docx file",
			Cause:   err,
		}
	}

	return &Document{
		archive: archive,
		doc:     archive.Editable(),
	}, nil
}

// Body returns the serialized main document body.
func (d *Document) Body() string {
	return d.doc.GetContent()
}

// SetBody replaces the main document body.
func (d *Document) SetBody(body string) {
	d.doc.SetContent(body)
}

// PlainText returns the visible text of the current body.
func (d *Document) PlainText() string {
	return PlainText(d.Body())
}

// Bytes serializes the archive with deflate compression.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.doc.Write(&buf); err != nil {
		return nil, &StructureError{Message: "failed to write docx archive", Cause: err}
	}
	return buf.Bytes(), nil
}

// Close releases the archive reader.
func (d *Document) Close() error {
	return d.archive.Close()
}
