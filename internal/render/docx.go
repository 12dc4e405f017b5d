package render

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"resume-studio/internal/model"
)

// Page geometry in twentieths of a point: A4 with one inch margins.
const (
	pageWidth   = 11906
	pageHeight  = 16838
	pageMargin  = 1440
	bodySize    = 22 // half-points, 11pt
	spaceAfter  = 120
	lineSpacing = 276
	bulletNumID = 1
)

const (
	styleTitle    = "Title"
	styleHeading2 = "Heading2"
	styleHeading3 = "Heading3"
)

// Zip entries carry a fixed timestamp so the same record always yields the
// same bytes.
var docxModified = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

const wordNS = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

type paragraph struct {
	style     string
	pageBreak bool
	bullet    bool
	text      string
}

// DOCX builds the word-processor package for the record: one heading per
// section, one sub-heading per role and project, page breaks before every
// flagged heading.
func DOCX(r model.Resume) ([]byte, error) {
	plan := Build(r)
	var paras []paragraph
	add := func(p paragraph) { paras = append(paras, p) }

	h := plan.Header
	if h.Name != "" {
		add(paragraph{style: styleTitle, text: h.Name})
	}
	if h.Headline != "" {
		add(paragraph{text: h.Headline})
	}
	if line := h.ContactLine(); line != "" {
		add(paragraph{text: line})
	}
	if h.Primary != nil {
		add(paragraph{text: h.Primary.Label + ": " + h.Primary.Text})
	}

	for _, b := range plan.Blocks {
		add(paragraph{style: styleHeading2, pageBreak: b.BreakBefore, text: b.Title})
		switch b.Section {
		case model.SectionSummary:
			for _, s := range b.Paragraphs {
				add(paragraph{text: s})
			}
		case model.SectionSkills:
			for _, s := range b.Skills {
				add(paragraph{text: s.Line()})
			}
		case model.SectionExperience:
			for _, e := range b.Entries {
				add(paragraph{style: styleHeading3, pageBreak: e.BreakBefore, text: e.Title})
				if e.Meta != "" {
					add(paragraph{text: e.Meta})
				}
				paras = appendBody(paras, e.Body)
			}
		case model.SectionProjects:
			for _, e := range b.Entries {
				add(paragraph{style: styleHeading3, text: e.Title})
				paras = appendBody(paras, e.Body)
			}
		case model.SectionEducation:
			for i := range b.Entries {
				add(paragraph{text: educationLine(r.Education[b.Entries[i].Index])})
			}
		case model.SectionLanguages:
			add(paragraph{text: strings.Join(b.Languages, ", ")})
		}
	}

	var doc bytes.Buffer
	writeDocument(&doc, paras)

	parts := []struct {
		name string
		body []byte
	}{
		{"[Content_Types].xml", []byte(contentTypesXML)},
		{"_rels/.rels", []byte(packageRelsXML)},
		{"word/document.xml", doc.Bytes()},
		{"word/styles.xml", []byte(stylesXML)},
		{"word/numbering.xml", []byte(numberingXML)},
		{"word/_rels/document.xml.rels", []byte(documentRelsXML)},
	}

	var out bytes.Buffer
	zw := zip.NewWriter(&out)
	for _, p := range parts {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: p.name, Method: zip.Deflate, Modified: docxModified})
		if err != nil {
			return nil, fmt.Errorf("docx: create %s: %w", p.name, err)
		}
		if _, err := w.Write(p.body); err != nil {
			return nil, fmt.Errorf("docx: write %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("docx: close package: %w", err)
	}
	return out.Bytes(), nil
}

func appendBody(paras []paragraph, b Body) []paragraph {
	switch b.Kind {
	case BodyParagraph:
		paras = append(paras, paragraph{text: b.Items[0]})
	case BodyList:
		for _, it := range b.Items {
			paras = append(paras, paragraph{bullet: true, text: it})
		}
	}
	return paras
}

// educationLine reads school first in the document, unlike the HTML forms.
func educationLine(e model.Education) string {
	return join(titleSep, e.School, e.Degree, e.Dates)
}

func writeDocument(buf *bytes.Buffer, paras []paragraph) {
	buf.WriteString(xml.Header)
	buf.WriteString(`<w:document xmlns:w="` + wordNS + `"><w:body>`)
	for _, p := range paras {
		writeParagraph(buf, p)
	}
	fmt.Fprintf(buf, `<w:sectPr><w:pgSz w:w="%d" w:h="%d" w:orient="portrait"/>`, pageWidth, pageHeight)
	fmt.Fprintf(buf, `<w:pgMar w:top="%d" w:right="%d" w:bottom="%d" w:left="%d" w:header="708" w:footer="708" w:gutter="0"/>`,
		pageMargin, pageMargin, pageMargin, pageMargin)
	buf.WriteString(`</w:sectPr></w:body></w:document>`)
}

func writeParagraph(buf *bytes.Buffer, p paragraph) {
	buf.WriteString("<w:p>")
	if p.style != "" || p.pageBreak || p.bullet {
		buf.WriteString("<w:pPr>")
		if p.style != "" {
			fmt.Fprintf(buf, `<w:pStyle w:val="%s"/>`, p.style)
		}
		if p.pageBreak {
			buf.WriteString("<w:pageBreakBefore/>")
		}
		if p.bullet {
			fmt.Fprintf(buf, `<w:numPr><w:ilvl w:val="0"/><w:numId w:val="%d"/></w:numPr>`, bulletNumID)
		}
		buf.WriteString("</w:pPr>")
	}
	buf.WriteString("<w:r>")
	for i, line := range strings.Split(p.text, "\n") {
		if i > 0 {
			buf.WriteString("<w:br/>")
		}
		buf.WriteString(`<w:t xml:space="preserve">`)
		_ = xml.EscapeText(buf, []byte(line))
		buf.WriteString("</w:t>")
	}
	buf.WriteString("</w:r></w:p>")
}

const contentTypesXML = xml.Header + `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>` +
	`<Override PartName="/word/numbering.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.numbering+xml"/>` +
	`</Types>`

const packageRelsXML = xml.Header + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
	`</Relationships>`

const documentRelsXML = xml.Header + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>` +
	`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering" Target="numbering.xml"/>` +
	`</Relationships>`

var stylesXML = xml.Header + `<w:styles xmlns:w="` + wordNS + `">` +
	`<w:docDefaults><w:rPrDefault><w:rPr>` +
	`<w:rFonts w:ascii="Calibri" w:hAnsi="Calibri" w:eastAsia="Calibri" w:cs="Calibri"/>` +
	fmt.Sprintf(`<w:sz w:val="%d"/><w:szCs w:val="%d"/>`, bodySize, bodySize) +
	`</w:rPr></w:rPrDefault><w:pPrDefault><w:pPr>` +
	fmt.Sprintf(`<w:spacing w:before="0" w:after="%d" w:line="%d" w:lineRule="auto"/>`, spaceAfter, lineSpacing) +
	`</w:pPr></w:pPrDefault></w:docDefaults>` +
	`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/><w:qFormat/></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Title"><w:name w:val="Title"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/><w:qFormat/>` +
	`<w:pPr><w:spacing w:after="80"/></w:pPr><w:rPr><w:b/><w:sz w:val="52"/><w:szCs w:val="52"/></w:rPr></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Heading2"><w:name w:val="heading 2"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/><w:qFormat/>` +
	`<w:pPr><w:keepNext/><w:spacing w:before="240" w:after="80"/><w:outlineLvl w:val="1"/></w:pPr><w:rPr><w:b/><w:sz w:val="30"/><w:szCs w:val="30"/></w:rPr></w:style>` +
	`<w:style w:type="paragraph" w:styleId="Heading3"><w:name w:val="heading 3"/><w:basedOn w:val="Normal"/><w:next w:val="Normal"/><w:qFormat/>` +
	`<w:pPr><w:keepNext/><w:spacing w:before="160" w:after="40"/><w:outlineLvl w:val="2"/></w:pPr><w:rPr><w:b/><w:sz w:val="24"/><w:szCs w:val="24"/></w:rPr></w:style>` +
	`</w:styles>`

var numberingXML = xml.Header + `<w:numbering xmlns:w="` + wordNS + `">` +
	`<w:abstractNum w:abstractNumId="0"><w:multiLevelType w:val="hybridMultilevel"/>` +
	`<w:lvl w:ilvl="0"><w:start w:val="1"/><w:numFmt w:val="bullet"/><w:lvlText w:val="•"/><w:lvlJc w:val="left"/>` +
	`<w:pPr><w:ind w:left="720" w:hanging="360"/></w:pPr></w:lvl></w:abstractNum>` +
	fmt.Sprintf(`<w:num w:numId="%d"><w:abstractNumId w:val="0"/></w:num>`, bulletNumID) +
	`</w:numbering>`
