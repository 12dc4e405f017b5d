// Package importer maps resumes exported by ReactiveResume into the native
// record. The mapping is a fixed field correspondence with light text
// cleanup; anything it does not know about is left as it was in the base
// record.
package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/publicsuffix"

	"resume-studio/internal/model"
)

const (
	maxSummaryParagraphs = 6
	maxRoleBullets       = 6
	maxProjectBullets    = 4
)

var (
	tagPattern         = regexp.MustCompile(`<[^>]+>`)
	lineBreakPattern   = regexp.MustCompile(`(?i)<br\s*/?>`)
	spacePattern       = regexp.MustCompile(`[\s\x{00A0}]+`)
	roleBulletSplit    = regexp.MustCompile(`\n|\. `)
	projectBulletSplit = regexp.MustCompile(`\.\s`)
)

// link accepts both the object form {"href": ...} and a bare string.
type link struct {
	Href string `json:"href"`
}

func (l *link) UnmarshalJSON(b []byte) error {
	if bytes.HasPrefix(bytes.TrimSpace(b), []byte(`"`)) {
		return json.Unmarshal(b, &l.Href)
	}
	type plain link
	return json.Unmarshal(b, (*plain)(l))
}

type section[T any] struct {
	Items []T `json:"items"`
}

type document struct {
	Basics struct {
		Name     string `json:"name"`
		Headline string `json:"headline"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		Location string `json:"location"`
		URL      link   `json:"url"`
	} `json:"basics"`
	Sections struct {
		Summary struct {
			Content string `json:"content"`
		} `json:"summary"`
		Profiles section[struct {
			Network  string `json:"network"`
			Username string `json:"username"`
			URL      link   `json:"url"`
		}] `json:"profiles"`
		Experience section[struct {
			Company  string `json:"company"`
			Position string `json:"position"`
			Location string `json:"location"`
			Date     string `json:"date"`
			Summary  string `json:"summary"`
		}] `json:"experience"`
		Projects section[struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			Summary     string `json:"summary"`
		}] `json:"projects"`
		Skills section[struct {
			Name     string   `json:"name"`
			Keywords []string `json:"keywords"`
		}] `json:"skills"`
		Education section[struct {
			Institution string `json:"institution"`
			StudyType   string `json:"studyType"`
			Area        string `json:"area"`
			Date        string `json:"date"`
		}] `json:"education"`
		Languages section[struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		}] `json:"languages"`
	} `json:"sections"`
}

// MapReactiveResume builds a record from a ReactiveResume export, starting
// from a copy of base. base is never modified. Malformed input returns an
// error wrapping model.ErrInvalidFile.
func MapReactiveResume(data []byte, base model.Resume) (model.Resume, error) {
	trimmed := bytes.TrimSpace(data)
	if !json.Valid(trimmed) || !bytes.HasPrefix(trimmed, []byte("{")) {
		return model.Resume{}, fmt.Errorf("%w: not a ReactiveResume JSON object", model.ErrInvalidFile)
	}
	var doc document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return model.Resume{}, fmt.Errorf("%w: %v", model.ErrInvalidFile, err)
	}

	out := base.Clone()
	b, s := doc.Basics, doc.Sections

	out.Basics.Name = firstNonEmpty(b.Name, out.Basics.Name)
	out.Basics.Headline = firstNonEmpty(b.Headline, out.Basics.Headline)
	out.Basics.Email = firstNonEmpty(b.Email, out.Basics.Email)
	out.Basics.Phone = firstNonEmpty(b.Phone, out.Basics.Phone)
	out.Basics.Location = firstNonEmpty(b.Location, out.Basics.Location)
	if b.URL.Href != "" {
		out.Basics.Website = b.URL.Href
	}

	if len(s.Profiles.Items) > 0 {
		out.Basics.Profiles = make([]model.Profile, 0, len(s.Profiles.Items))
		for _, p := range s.Profiles.Items {
			network := strings.TrimSpace(p.Network)
			if network == "" {
				network = siteLabel(p.URL.Href)
			}
			out.Basics.Profiles = append(out.Basics.Profiles, model.Profile{
				Network:  network,
				Username: p.Username,
				URL:      p.URL.Href,
			})
		}
	}

	if s.Summary.Content != "" {
		out.Summary = capList(sentences(plainText(s.Summary.Content)), maxSummaryParagraphs)
	}

	if len(s.Experience.Items) > 0 {
		out.Experience = make([]model.Experience, 0, len(s.Experience.Items))
		for _, it := range s.Experience.Items {
			start, end := splitDate(it.Date)
			text := lineBreakPattern.ReplaceAllString(it.Summary, "\n")
			text = html.UnescapeString(tagPattern.ReplaceAllString(text, ""))
			out.Experience = append(out.Experience, model.Experience{
				Company:  it.Company,
				Title:    it.Position,
				Location: it.Location,
				Start:    start,
				End:      end,
				Bullets:  capList(splitTrim(roleBulletSplit, text), maxRoleBullets),
			})
		}
	}

	if len(s.Projects.Items) > 0 {
		out.Projects = make([]model.Project, 0, len(s.Projects.Items))
		for _, p := range s.Projects.Items {
			text := html.UnescapeString(tagPattern.ReplaceAllString(p.Summary, " "))
			out.Projects = append(out.Projects, model.Project{
				Name:    p.Name,
				Org:     p.Description,
				Bullets: capList(splitTrim(projectBulletSplit, text), maxProjectBullets),
			})
		}
	}

	if len(s.Skills.Items) > 0 {
		out.Skills = make([]model.Skill, 0, len(s.Skills.Items))
		for _, sk := range s.Skills.Items {
			kw := sk.Keywords
			if kw == nil {
				kw = []string{}
			}
			out.Skills = append(out.Skills, model.Skill{Name: sk.Name, Keywords: kw})
		}
	}

	if len(s.Education.Items) > 0 {
		out.Education = make([]model.Education, 0, len(s.Education.Items))
		for _, e := range s.Education.Items {
			out.Education = append(out.Education, model.Education{
				School: e.Institution,
				Degree: strings.Join(nonEmpty(e.StudyType, e.Area), " "),
				Dates:  e.Date,
			})
		}
	}

	if len(s.Languages.Items) > 0 {
		out.Languages = make([]model.Language, 0, len(s.Languages.Items))
		for _, l := range s.Languages.Items {
			out.Languages = append(out.Languages, model.Language{Name: l.Name, Level: l.Description})
		}
	}

	return out.Normalize(), nil
}

// plainText strips markup and collapses whitespace.
func plainText(s string) string {
	s = html.UnescapeString(tagPattern.ReplaceAllString(s, " "))
	return strings.TrimSpace(spacePattern.ReplaceAllString(s, " "))
}

// sentences splits after '.', '!' or '?' when a space and an upper-case
// letter follow.
func sentences(text string) []string {
	var out []string
	rs := []rune(text)
	start := 0
	for i := 0; i+2 < len(rs); i++ {
		if strings.ContainsRune(".!?", rs[i]) && unicode.IsSpace(rs[i+1]) && unicode.IsUpper(rs[i+2]) {
			if p := strings.TrimSpace(string(rs[start : i+1])); p != "" {
				out = append(out, p)
			}
			start = i + 2
		}
	}
	if p := strings.TrimSpace(string(rs[start:])); p != "" {
		out = append(out, p)
	}
	return out
}

func splitTrim(re *regexp.Regexp, s string) []string {
	out := []string{}
	for _, part := range re.Split(s, -1) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// splitDate splits "start - end" on the first dash.
func splitDate(date string) (string, string) {
	start, end, _ := strings.Cut(date, "-")
	return strings.TrimSpace(start), strings.TrimSpace(end)
}

// siteLabel names a profile after the registrable domain of its URL.
func siteLabel(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	if etld, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return etld
	}
	return host
}

func capList(list []string, n int) []string {
	if list == nil {
		return []string{}
	}
	if len(list) > n {
		return list[:n]
	}
	return list
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func nonEmpty(vals ...string) []string {
	var out []string
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
