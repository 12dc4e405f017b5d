package model

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Section names one of the six fixed top-level content groups.
type Section string

const (
	SectionSummary    Section = "summary"
	SectionSkills     Section = "skills"
	SectionExperience Section = "experience"
	SectionProjects   Section = "projects"
	SectionEducation  Section = "education"
	SectionLanguages  Section = "languages"
)

var sectionOrder = []Section{
	SectionSummary,
	SectionSkills,
	SectionExperience,
	SectionProjects,
	SectionEducation,
	SectionLanguages,
}

// Sections returns the fixed render order.
func Sections() []Section {
	out := make([]Section, len(sectionOrder))
	copy(out, sectionOrder)
	return out
}

// Title is the heading every renderer prints for the section.
func (s Section) Title() string {
	switch s {
	case SectionSummary:
		return "Summary"
	case SectionSkills:
		return "Skills"
	case SectionExperience:
		return "Experience"
	case SectionProjects:
		return "Projects"
	case SectionEducation:
		return "Education"
	case SectionLanguages:
		return "Languages"
	}
	return string(s)
}

func ParseSection(name string) (Section, error) {
	for _, s := range sectionOrder {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown section %q", name)
}

type Layout struct {
	Breaks Breaks `json:"breaks"`
}

type Breaks struct {
	Before           SectionBreaks `json:"before"`
	BeforeExperience IndexSet      `json:"beforeExperience"`
}

// SectionBreaks holds one "page break before" flag per section.
type SectionBreaks struct {
	Summary    bool `json:"summary"`
	Skills     bool `json:"skills"`
	Experience bool `json:"experience"`
	Projects   bool `json:"projects"`
	Education  bool `json:"education"`
	Languages  bool `json:"languages"`
}

func (b *SectionBreaks) flag(s Section) *bool {
	switch s {
	case SectionSummary:
		return &b.Summary
	case SectionSkills:
		return &b.Skills
	case SectionExperience:
		return &b.Experience
	case SectionProjects:
		return &b.Projects
	case SectionEducation:
		return &b.Education
	case SectionLanguages:
		return &b.Languages
	}
	return nil
}

func (b SectionBreaks) Get(s Section) bool {
	if f := b.flag(s); f != nil {
		return *f
	}
	return false
}

// Set returns a copy with the flag for s set to v. Unknown sections are ignored.
func (b SectionBreaks) Set(s Section, v bool) SectionBreaks {
	if f := b.flag(s); f != nil {
		*f = v
	}
	return b
}

func (b SectionBreaks) Toggle(s Section) SectionBreaks {
	return b.Set(s, !b.Get(s))
}

// IndexSet is a set of experience indices kept as a sorted, duplicate-free
// slice. The empty set is nil. Methods never modify the receiver.
type IndexSet []int

func NewIndexSet(idx ...int) IndexSet {
	if len(idx) == 0 {
		return nil
	}
	out := make([]int, len(idx))
	copy(out, idx)
	sort.Ints(out)
	n := 0
	for i, v := range out {
		if i > 0 && v == out[n-1] {
			continue
		}
		out[n] = v
		n++
	}
	return IndexSet(out[:n])
}

func (s IndexSet) Has(i int) bool {
	j := sort.SearchInts(s, i)
	return j < len(s) && s[j] == i
}

func (s IndexSet) Toggle(i int) IndexSet {
	if s.Has(i) {
		return s.without(i)
	}
	return NewIndexSet(append(s.clone(), i)...)
}

// Remove accounts for deleting entry i: i leaves the set and every larger
// index shifts down by one.
func (s IndexSet) Remove(i int) IndexSet {
	var out []int
	for _, v := range s {
		switch {
		case v == i:
		case v > i:
			out = append(out, v-1)
		default:
			out = append(out, v)
		}
	}
	return NewIndexSet(out...)
}

// Move accounts for moving entry from to position to; the moved entry keeps
// its flag and the entries in between shift by one.
func (s IndexSet) Move(from, to int) IndexSet {
	if from == to {
		return s.clone()
	}
	out := make([]int, 0, len(s))
	for _, v := range s {
		switch {
		case v == from:
			out = append(out, to)
		case from < to && v > from && v <= to:
			out = append(out, v-1)
		case to < from && v >= to && v < from:
			out = append(out, v+1)
		default:
			out = append(out, v)
		}
	}
	return NewIndexSet(out...)
}

// Clip drops every index outside [0, n).
func (s IndexSet) Clip(n int) IndexSet {
	var out []int
	for _, v := range s {
		if v >= 0 && v < n {
			out = append(out, v)
		}
	}
	return NewIndexSet(out...)
}

func (s IndexSet) Slice() []int {
	return []int(s.clone())
}

func (s IndexSet) without(i int) IndexSet {
	var out []int
	for _, v := range s {
		if v != i {
			out = append(out, v)
		}
	}
	return NewIndexSet(out...)
}

func (s IndexSet) clone() IndexSet {
	if s == nil {
		return nil
	}
	out := make(IndexSet, len(s))
	copy(out, s)
	return out
}

// MarshalJSON always writes an array, never null.
func (s IndexSet) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]int(s))
}

func (s *IndexSet) UnmarshalJSON(b []byte) error {
	var raw []int
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*s = NewIndexSet(raw...)
	return nil
}
