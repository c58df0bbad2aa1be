// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/commute-review/pkg/types"
)

const testStylesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style>
  <w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/></w:style>
  <w:style w:type="paragraph" w:styleId="Heading2"><w:name w:val="heading 2"/></w:style>
  <w:style w:type="paragraph" w:styleId="ListParagraph"><w:name w:val="List Paragraph"/></w:style>
  <w:style w:type="character" w:default="1" w:styleId="DefaultParagraphFont"><w:name w:val="Default Paragraph Font"/></w:style>
</w:styles>`

const testDocumentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"
  xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
  xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"
  xmlns:wps="http://schemas.microsoft.com/office/word/2010/wordprocessingShape">
<w:body>
  <w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Physics</w:t></w:r></w:p>
  <w:p><w:r><w:t xml:space="preserve">Force = </w:t></w:r><w:r><w:rPr><w:b/></w:rPr><w:t>mass times acceleration</w:t></w:r></w:p>
  <w:p><w:pPr><w:pStyle w:val="Heading2"/><w:tabs><w:tab w:val="left" w:pos="720"/></w:tabs></w:pPr><w:r><w:t>Sub</w:t></w:r></w:p>
  <w:tbl><w:tr><w:tc><w:p><w:r><w:t>cell text</w:t></w:r></w:p></w:tc></w:tr></w:tbl>
  <w:p><w:pPr><w:pStyle w:val="ListParagraph"/></w:pPr><w:r><w:t>a</w:t><w:tab/><w:t>b</w:t><w:br/><w:t>c</w:t></w:r></w:p>
  <w:p><w:r><w:t>outer</w:t></w:r><w:r><w:drawing><wp:inline><a:graphic><a:graphicData><wps:wsp><wps:txbx><w:txbxContent><w:p><w:r><w:t>inner</w:t></w:r></w:p></w:txbxContent></wps:txbx></wps:wsp></a:graphicData></a:graphic></wp:inline></w:drawing></w:r></w:p>
  <w:p><w:pPr><w:pStyle w:val="Unknown"/></w:pPr></w:p>
  <w:sectPr/>
</w:body>
</w:document>`

// writeDocx builds a minimal .docx containing the given parts.
func writeDocx(t *testing.T, dir string, parts map[string]string) string {
	t.Helper()
	path := filepath.Join(dir, "notes.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, body := range parts {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func TestDocxReader(t *testing.T) {
	path := writeDocx(t, t.TempDir(), map[string]string{
		"[Content_Types].xml": `<Types/>`,
		documentPart:          testDocumentXML,
		stylesPart:            testStylesXML,
	})

	got, err := DocxReader{}.Read(context.Background(), path)
	require.NoError(t, err)

	want := []types.Paragraph{
		{Style: "Heading 1", Text: "Physics"},
		{Style: "Normal", Text: "Force = mass times acceleration"},
		{Style: "Heading 2", Text: "Sub"},
		{Style: "List Paragraph", Text: "a\tb\nc"},
		{Style: "Normal", Text: "outer"},
		{Style: "Normal", Text: ""},
	}
	assert.Equal(t, want, got)
}

func TestDocxReader_NoStylesPart(t *testing.T) {
	path := writeDocx(t, t.TempDir(), map[string]string{documentPart: testDocumentXML})

	got, err := DocxReader{}.Read(context.Background(), path)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	for _, p := range got {
		assert.Equal(t, "Normal", p.Style)
	}
}

func TestDocxReader_Errors(t *testing.T) {
	dir := t.TempDir()

	notZip := filepath.Join(dir, "plain.docx")
	require.NoError(t, os.WriteFile(notZip, []byte("not a zip"), 0o644))
	_, err := DocxReader{}.Read(context.Background(), notZip)
	assert.ErrorContains(t, err, "opening docx")

	noDoc := writeDocx(t, dir, map[string]string{stylesPart: testStylesXML})
	_, err = DocxReader{}.Read(context.Background(), noDoc)
	assert.ErrorContains(t, err, "not a docx")

	_, err = DocxReader{}.Read(context.Background(), filepath.Join(dir, "missing.docx"))
	assert.Error(t, err)
}

func TestParseStyles_DefaultParagraphStyle(t *testing.T) {
	sm, err := parseStyles(stringsReader(`<w:styles xmlns:w="x">
  <w:style w:type="paragraph" w:default="1" w:styleId="BodyText"><w:name w:val="Body Text"/></w:style>
  <w:style w:type="paragraph" w:styleId="Heading3"><w:name w:val="heading 3"/></w:style>
</w:styles>`))
	require.NoError(t, err)
	assert.Equal(t, "Body Text", sm.name(""))
	assert.Equal(t, "Body Text", sm.name("NoSuchStyle"))
	assert.Equal(t, "Heading 3", sm.name("Heading3"))
}

func TestParseStyles_BuiltinNames(t *testing.T) {
	sm, err := parseStyles(stringsReader(`<w:styles xmlns:w="x">
  <w:style w:type="paragraph" w:styleId="Caption"><w:name w:val="caption"/></w:style>
  <w:style w:type="paragraph" w:styleId="Header"><w:name w:val="header"/></w:style>
  <w:style w:type="paragraph" w:styleId="Title"><w:name w:val="Title"/></w:style>
  <w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/></w:style>
</w:styles>`))
	require.NoError(t, err)
	assert.Equal(t, "Caption", sm.name("Caption"))
	assert.Equal(t, "Header", sm.name("Header"))
	assert.Equal(t, "Title", sm.name("Title"))
	assert.Equal(t, "Heading 1", sm.name("Heading1"))
}
