// Package render turns a resume record into its three document forms: the
// live preview page, the DOCX package and the self-contained static page.
// All three are driven by the same Plan so they agree on which sections
// appear, in which order, where page breaks fall and how bullets are laid
// out.
package render

import (
	"strings"

	"resume-studio/internal/model"
)

const (
	metaSep    = "  •  "
	titleSep   = " — "
	dateSep    = " – "
	contactSep = "  •  "
)

// BodyKind is how an entry's bullets are laid out.
type BodyKind int

const (
	BodyEmpty BodyKind = iota
	BodyParagraph
	BodyList
)

// Body is the bullet content of one entry. A single bullet is a plain
// paragraph; two or more form a list.
type Body struct {
	Kind  BodyKind
	Items []string
}

func bodyOf(bullets []string) Body {
	switch len(bullets) {
	case 0:
		return Body{Kind: BodyEmpty}
	case 1:
		return Body{Kind: BodyParagraph, Items: []string{bullets[0]}}
	}
	items := make([]string, len(bullets))
	copy(items, bullets)
	return Body{Kind: BodyList, Items: items}
}

func (b Body) IsParagraph() bool { return b.Kind == BodyParagraph }
func (b Body) IsList() bool      { return b.Kind == BodyList }

// Text is the paragraph text of a single-bullet body.
func (b Body) Text() string {
	if b.Kind != BodyParagraph {
		return ""
	}
	return b.Items[0]
}

// Link is the primary profile as surfaced in headers.
type Link struct {
	Label string
	URL   string
	Text  string
}

type Header struct {
	Name     string
	Headline string
	// Contact holds email, phone and location, in that order, skipping
	// empty ones.
	Contact []string
	Website string
	Primary *Link
}

// ContactLine joins the contact parts and the website for single-line
// renderers.
func (h Header) ContactLine() string {
	return join(contactSep, append(append([]string{}, h.Contact...), h.Website)...)
}

// Entry is one experience role, project or education line.
type Entry struct {
	Index       int
	Title       string
	Meta        string
	BreakBefore bool
	Body        Body
}

type SkillLine struct {
	Name     string
	Keywords string
}

// Line is the compact "name: keywords" form.
func (s SkillLine) Line() string {
	return join(": ", s.Name, s.Keywords)
}

// Block is one rendered section.
type Block struct {
	Section     model.Section
	Title       string
	BreakBefore bool
	Paragraphs  []string
	Skills      []SkillLine
	Entries     []Entry
	Languages   []string
}

type Plan struct {
	Header Header
	Blocks []Block
}

// Has reports whether the plan renders section s.
func (p Plan) Has(s model.Section) bool {
	for _, b := range p.Blocks {
		if b.Section == s {
			return true
		}
	}
	return false
}

// Build lays the record out. Sections come in the fixed order and a section
// with no items is left out.
func Build(r model.Resume) Plan {
	p := Plan{Header: header(r.Basics)}
	before := r.Layout.Breaks.Before
	for _, s := range model.Sections() {
		b := Block{Section: s, Title: s.Title(), BreakBefore: before.Get(s)}
		switch s {
		case model.SectionSummary:
			if len(r.Summary) == 0 {
				continue
			}
			b.Paragraphs = append([]string{}, r.Summary...)
		case model.SectionSkills:
			if len(r.Skills) == 0 {
				continue
			}
			for _, sk := range r.Skills {
				b.Skills = append(b.Skills, SkillLine{Name: sk.Name, Keywords: strings.Join(sk.Keywords, ", ")})
			}
		case model.SectionExperience:
			if len(r.Experience) == 0 {
				continue
			}
			for i, e := range r.Experience {
				b.Entries = append(b.Entries, Entry{
					Index:       i,
					Title:       join(titleSep, e.Title, e.Company),
					Meta:        join(metaSep, e.Location, dateRange(e.Start, e.End)),
					BreakBefore: r.Layout.Breaks.BeforeExperience.Has(i),
					Body:        bodyOf(e.Bullets),
				})
			}
		case model.SectionProjects:
			if len(r.Projects) == 0 {
				continue
			}
			for i, pr := range r.Projects {
				b.Entries = append(b.Entries, Entry{
					Index: i,
					Title: join(titleSep, pr.Name, pr.Org),
					Body:  bodyOf(pr.Bullets),
				})
			}
		case model.SectionEducation:
			if len(r.Education) == 0 {
				continue
			}
			for i, ed := range r.Education {
				b.Entries = append(b.Entries, Entry{
					Index: i,
					Title: join(titleSep, ed.Degree, ed.School),
					Meta:  strings.TrimSpace(ed.Dates),
				})
			}
		case model.SectionLanguages:
			if len(r.Languages) == 0 {
				continue
			}
			for _, l := range r.Languages {
				b.Languages = append(b.Languages, languageLabel(l))
			}
		}
		p.Blocks = append(p.Blocks, b)
	}
	return p
}

func header(b model.Basics) Header {
	h := Header{
		Name:     strings.TrimSpace(b.Name),
		Headline: strings.TrimSpace(b.Headline),
		Website:  strings.TrimSpace(b.Website),
	}
	for _, c := range []string{b.Email, b.Phone, b.Location} {
		if c = strings.TrimSpace(c); c != "" {
			h.Contact = append(h.Contact, c)
		}
	}
	if pr, ok := b.PrimaryProfile(); ok {
		url := strings.TrimSpace(pr.URL)
		text := url
		if text == "" {
			text = strings.TrimSpace(pr.Username)
		}
		if text != "" {
			label := strings.TrimSpace(pr.Network)
			if label == "" {
				label = "Profile"
			}
			h.Primary = &Link{Label: label, URL: url, Text: text}
		}
	}
	return h
}

func languageLabel(l model.Language) string {
	name := strings.TrimSpace(l.Name)
	level := strings.TrimSpace(l.Level)
	if level == "" {
		return name
	}
	if name == "" {
		return level
	}
	return name + " (" + level + ")"
}

// dateRange collapses to whichever side is present.
func dateRange(start, end string) string {
	return join(dateSep, start, end)
}

// join concatenates the non-blank parts with sep, so a missing part never
// leaves a dangling separator.
func join(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
