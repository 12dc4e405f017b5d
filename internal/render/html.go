package render

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"strings"

	"resume-studio/internal/model"
)

//go:embed templates/*.html templates/*.css
var templateFS embed.FS

var pages = template.Must(template.New("pages").ParseFS(templateFS, "templates/*.html"))

var (
	previewCSS = template.CSS(mustAsset("base.css") + mustAsset("preview.css"))
	staticCSS  = template.CSS(mustAsset("base.css") + mustAsset("static.css"))
)

func mustAsset(name string) string {
	b, err := templateFS.ReadFile("templates/" + name)
	if err != nil {
		panic("render: missing asset " + name)
	}
	return string(b)
}

// SkillsLayout is the on-screen arrangement of the skills section. It only
// affects the preview.
type SkillsLayout string

const (
	SkillsPills   SkillsLayout = "pills"
	SkillsTwoCol  SkillsLayout = "twocol"
	SkillsCompact SkillsLayout = "compact"
)

// ParseSkillsLayout maps a user choice to a layout, falling back to the
// two-column default.
func ParseSkillsLayout(s string) SkillsLayout {
	switch SkillsLayout(strings.ToLower(strings.TrimSpace(s))) {
	case SkillsPills:
		return SkillsPills
	case SkillsCompact:
		return SkillsCompact
	}
	return SkillsTwoCol
}

// PreviewOptions is presentation state for the live preview. None of it is
// stored in the record or read by the exporters.
type PreviewOptions struct {
	SkillsLayout      SkillsLayout
	ATS               bool
	ShowBreakControls bool
}

type sectionToggle struct {
	Section model.Section
	On      bool
}

type pageView struct {
	Plan
	Title        string
	CSS          template.CSS
	SkillsLayout SkillsLayout
	ATS          bool
	Controls     bool
	Toggles      []sectionToggle
}

// Preview writes the interactive preview page. Every active break shows a
// "Page Break" marker on screen and becomes a real page break in print.
func Preview(w io.Writer, r model.Resume, opts PreviewOptions) error {
	v := pageView{
		Plan:         Build(r),
		Title:        documentTitle(r.Basics.Name),
		CSS:          previewCSS,
		SkillsLayout: ParseSkillsLayout(string(opts.SkillsLayout)),
		ATS:          opts.ATS,
		Controls:     opts.ShowBreakControls,
	}
	if v.Controls {
		for _, s := range model.Sections() {
			v.Toggles = append(v.Toggles, sectionToggle{Section: s, On: r.Layout.Breaks.Before.Get(s)})
		}
	}
	return pages.ExecuteTemplate(w, "preview", v)
}

// StaticPage builds the self-contained branded page. All styling is inline
// and break markers only take effect when printed.
func StaticPage(r model.Resume) ([]byte, error) {
	v := pageView{
		Plan:         Build(r),
		Title:        documentTitle(r.Basics.Name),
		CSS:          staticCSS,
		SkillsLayout: SkillsTwoCol,
	}
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, "static", v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func documentTitle(name string) string {
	if name = strings.TrimSpace(name); name == "" {
		return "Resume"
	}
	return name + titleSep + "Resume"
}
