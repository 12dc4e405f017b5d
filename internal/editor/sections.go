package editor

import "resume-studio/internal/model"

func AddSummary(r model.Resume) model.Resume {
	out := r.Clone()
	out.Summary = append(out.Summary, "")
	return out
}

func SetSummaryAt(r model.Resume, i int, text string) model.Resume {
	out := r.Clone()
	out.Summary, _ = setAt(out.Summary, i, text)
	return out
}

func RemoveSummaryAt(r model.Resume, i int) model.Resume {
	out := r.Clone()
	out.Summary, _ = removeAt(out.Summary, i)
	return out
}

func AddSkill(r model.Resume) model.Resume {
	out := r.Clone()
	out.Skills = append(out.Skills, model.Skill{Keywords: []string{}})
	return out
}

func SetSkillAt(r model.Resume, i int, s model.Skill) model.Resume {
	out := r.Clone()
	s.Keywords = copyStrings(s.Keywords)
	out.Skills, _ = setAt(out.Skills, i, s)
	return out
}

func RemoveSkillAt(r model.Resume, i int) model.Resume {
	out := r.Clone()
	out.Skills, _ = removeAt(out.Skills, i)
	return out
}

func AddExperience(r model.Resume) model.Resume {
	out := r.Clone()
	out.Experience = append(out.Experience, model.Experience{Bullets: []string{}})
	return out
}

func SetExperienceAt(r model.Resume, i int, e model.Experience) model.Resume {
	out := r.Clone()
	e.Bullets = copyStrings(e.Bullets)
	out.Experience, _ = setAt(out.Experience, i, e)
	return out
}

// RemoveExperienceAt deletes role i and reindexes the role page breaks in
// the same step, so no break index ever points past the list or at the
// wrong role.
func RemoveExperienceAt(r model.Resume, i int) model.Resume {
	out := r.Clone()
	var ok bool
	if out.Experience, ok = removeAt(out.Experience, i); !ok {
		return out
	}
	out.Layout.Breaks.BeforeExperience = out.Layout.Breaks.BeforeExperience.Remove(i)
	return out
}

// MoveExperience moves role from to position to. A role's page break
// travels with it.
func MoveExperience(r model.Resume, from, to int) model.Resume {
	out := r.Clone()
	var ok bool
	if out.Experience, ok = moveTo(out.Experience, from, to); !ok {
		return out
	}
	out.Layout.Breaks.BeforeExperience = out.Layout.Breaks.BeforeExperience.Move(from, to)
	return out
}

func AddExperienceBullet(r model.Resume, i int) model.Resume {
	out := r.Clone()
	if i >= 0 && i < len(out.Experience) {
		out.Experience[i].Bullets = append(out.Experience[i].Bullets, "")
	}
	return out
}

func SetExperienceBullet(r model.Resume, i, j int, text string) model.Resume {
	out := r.Clone()
	if i >= 0 && i < len(out.Experience) {
		out.Experience[i].Bullets, _ = setAt(out.Experience[i].Bullets, j, text)
	}
	return out
}

func RemoveExperienceBullet(r model.Resume, i, j int) model.Resume {
	out := r.Clone()
	if i >= 0 && i < len(out.Experience) {
		out.Experience[i].Bullets, _ = removeAt(out.Experience[i].Bullets, j)
	}
	return out
}

func AddProject(r model.Resume) model.Resume {
	out := r.Clone()
	out.Projects = append(out.Projects, model.Project{Bullets: []string{}})
	return out
}

func SetProjectAt(r model.Resume, i int, p model.Project) model.Resume {
	out := r.Clone()
	p.Bullets = copyStrings(p.Bullets)
	out.Projects, _ = setAt(out.Projects, i, p)
	return out
}

func RemoveProjectAt(r model.Resume, i int) model.Resume {
	out := r.Clone()
	out.Projects, _ = removeAt(out.Projects, i)
	return out
}

func AddProjectBullet(r model.Resume, i int) model.Resume {
	out := r.Clone()
	if i >= 0 && i < len(out.Projects) {
		out.Projects[i].Bullets = append(out.Projects[i].Bullets, "")
	}
	return out
}

func SetProjectBullet(r model.Resume, i, j int, text string) model.Resume {
	out := r.Clone()
	if i >= 0 && i < len(out.Projects) {
		out.Projects[i].Bullets, _ = setAt(out.Projects[i].Bullets, j, text)
	}
	return out
}

func RemoveProjectBullet(r model.Resume, i, j int) model.Resume {
	out := r.Clone()
	if i >= 0 && i < len(out.Projects) {
		out.Projects[i].Bullets, _ = removeAt(out.Projects[i].Bullets, j)
	}
	return out
}

func AddEducation(r model.Resume) model.Resume {
	out := r.Clone()
	out.Education = append(out.Education, model.Education{})
	return out
}

func SetEducationAt(r model.Resume, i int, e model.Education) model.Resume {
	out := r.Clone()
	out.Education, _ = setAt(out.Education, i, e)
	return out
}

func RemoveEducationAt(r model.Resume, i int) model.Resume {
	out := r.Clone()
	out.Education, _ = removeAt(out.Education, i)
	return out
}

func AddLanguage(r model.Resume) model.Resume {
	out := r.Clone()
	out.Languages = append(out.Languages, model.Language{})
	return out
}

func SetLanguageAt(r model.Resume, i int, l model.Language) model.Resume {
	out := r.Clone()
	out.Languages, _ = setAt(out.Languages, i, l)
	return out
}

func RemoveLanguageAt(r model.Resume, i int) model.Resume {
	out := r.Clone()
	out.Languages, _ = removeAt(out.Languages, i)
	return out
}

// ToggleSectionBreak flips the page break before one section.
func ToggleSectionBreak(r model.Resume, s model.Section) model.Resume {
	out := r.Clone()
	out.Layout.Breaks.Before = out.Layout.Breaks.Before.Toggle(s)
	return out
}

// ToggleExperienceBreak flips the page break before role i. Indices that do
// not name a role are ignored.
func ToggleExperienceBreak(r model.Resume, i int) model.Resume {
	out := r.Clone()
	if i < 0 || i >= len(out.Experience) {
		return out
	}
	out.Layout.Breaks.BeforeExperience = out.Layout.Breaks.BeforeExperience.Toggle(i)
	return out
}
