package model

// Go models for the resume record. The JSON shape is the exchange format
// and the persisted snapshot; schema/resume.schema.json describes it.

type Profile struct {
	Network  string `json:"network"`
	Username string `json:"username,omitempty"`
	URL      string `json:"url,omitempty"`
}

type Basics struct {
	Name     string    `json:"name"`
	Headline string    `json:"headline,omitempty"`
	Email    string    `json:"email,omitempty"`
	Phone    string    `json:"phone,omitempty"`
	Location string    `json:"location,omitempty"`
	Website  string    `json:"website,omitempty"`
	Profiles []Profile `json:"profiles"`
}

// PrimaryProfile returns the first profile, the only one surfaced in headers.
func (b Basics) PrimaryProfile() (Profile, bool) {
	if len(b.Profiles) == 0 {
		return Profile{}, false
	}
	return b.Profiles[0], true
}

type Skill struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

type Experience struct {
	Company  string   `json:"company"`
	Title    string   `json:"title"`
	Location string   `json:"location,omitempty"`
	Start    string   `json:"start,omitempty"`
	End      string   `json:"end,omitempty"`
	Bullets  []string `json:"bullets"`
}

type Project struct {
	Name    string   `json:"name"`
	Org     string   `json:"org,omitempty"`
	Bullets []string `json:"bullets"`
}

type Education struct {
	School string `json:"school"`
	Degree string `json:"degree"`
	Dates  string `json:"dates,omitempty"`
}

type Language struct {
	Name  string `json:"name"`
	Level string `json:"level"`
}

type Resume struct {
	Basics     Basics       `json:"basics"`
	Summary    []string     `json:"summary"`
	Skills     []Skill      `json:"skills"`
	Experience []Experience `json:"experience"`
	Projects   []Project    `json:"projects"`
	Education  []Education  `json:"education"`
	Languages  []Language   `json:"languages"`
	Layout     Layout       `json:"layout"`
}

// Clone returns a deep copy. Nil slices stay nil so that clones compare
// equal to their source.
func (r Resume) Clone() Resume {
	out := r
	out.Basics.Profiles = cloneSlice(r.Basics.Profiles)
	out.Summary = cloneSlice(r.Summary)
	if r.Skills != nil {
		out.Skills = make([]Skill, len(r.Skills))
		for i, s := range r.Skills {
			s.Keywords = cloneSlice(s.Keywords)
			out.Skills[i] = s
		}
	}
	if r.Experience != nil {
		out.Experience = make([]Experience, len(r.Experience))
		for i, e := range r.Experience {
			e.Bullets = cloneSlice(e.Bullets)
			out.Experience[i] = e
		}
	}
	if r.Projects != nil {
		out.Projects = make([]Project, len(r.Projects))
		for i, p := range r.Projects {
			p.Bullets = cloneSlice(p.Bullets)
			out.Projects[i] = p
		}
	}
	out.Education = cloneSlice(r.Education)
	out.Languages = cloneSlice(r.Languages)
	out.Layout.Breaks.BeforeExperience = r.Layout.Breaks.BeforeExperience.clone()
	return out
}

// Normalize repairs layout state that a loaded or imported record may carry:
// break indices are sorted, deduplicated and clipped to the experience list.
func (r Resume) Normalize() Resume {
	out := r.Clone()
	out.Layout.Breaks.BeforeExperience = NewIndexSet(out.Layout.Breaks.BeforeExperience...).Clip(len(out.Experience))
	return out
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
