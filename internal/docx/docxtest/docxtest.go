// Package docxtest builds minimal in-memory .docx archives for tests.
package docxtest

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
)

const contentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`

const rootRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`

const documentRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`

// StylesXML is an extra member used to check that untouched parts survive a rewrite.
const StylesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"></w:styles>`

// Run returns a run holding text with a bold property block, the way Word writes styled runs.
func Run(text string) string {
	return fmt.Sprintf(`<w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">%s</w:t></w:r>`, text)
}

// PlainRun returns a run without properties.
func PlainRun(text string) string {
	return fmt.Sprintf(`<w:r><w:t>%s</w:t></w:r>`, text)
}

// Paragraph wraps runs into a paragraph.
func Paragraph(runs ...string) string {
	return `<w:p>` + strings.Join(runs, "") + `</w:p>`
}

// Body wraps paragraphs into a complete document.xml.
func Body(paragraphs ...string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		strings.Join(paragraphs, "") +
		`</w:body></w:document>`
}

// Archive zips a document body together with the parts Word expects.
func Archive(body string) []byte {
	return ArchiveWith(map[string]string{
		"[Content_Types].xml":          contentTypes,
		"_rels/.rels":                  rootRels,
		"word/_rels/document.xml.rels": documentRels,
		"word/styles.xml":              StylesXML,
		"word/document.xml":            body,
	})
}

// ArchiveWith zips the given members as-is.
func ArchiveWith(members map[string]string) []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range members {
		w, err := zw.Create(name)
		if err != nil {
			panic(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			panic(err)
		}
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// ReadMember returns the content of one member of a zip archive.
func ReadMember(data []byte, name string) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		defer func() { _ = rc.Close() }()
		var out bytes.Buffer
		if _, err := out.ReadFrom(rc); err != nil {
			return "", err
		}
		return out.String(), nil
	}
	return "", fmt.Errorf("member %s not found", name)
}
