// Package editor holds the field-level edit operations. Every function takes
// the current record and returns a new one; the input is never modified.
// Out-of-range indices leave the record unchanged. No content validation is
// done: empty strings are stored as given.
package editor

import (
	"strings"

	"resume-studio/internal/model"
)

// Op is a whole-record patch.
type Op func(model.Resume) model.Resume

// BasicsField names one of the single-line identity fields.
type BasicsField string

const (
	FieldName     BasicsField = "name"
	FieldHeadline BasicsField = "headline"
	FieldEmail    BasicsField = "email"
	FieldPhone    BasicsField = "phone"
	FieldLocation BasicsField = "location"
	FieldWebsite  BasicsField = "website"
)

func SetBasicsField(r model.Resume, field BasicsField, value string) model.Resume {
	out := r.Clone()
	switch field {
	case FieldName:
		out.Basics.Name = value
	case FieldHeadline:
		out.Basics.Headline = value
	case FieldEmail:
		out.Basics.Email = value
	case FieldPhone:
		out.Basics.Phone = value
	case FieldLocation:
		out.Basics.Location = value
	case FieldWebsite:
		out.Basics.Website = value
	}
	return out
}

// SetPrimaryProfile writes the first profile entry, creating it if needed.
// Its username is kept when one exists.
func SetPrimaryProfile(r model.Resume, network, url string) model.Resume {
	out := r.Clone()
	if len(out.Basics.Profiles) == 0 {
		out.Basics.Profiles = []model.Profile{{Network: network, URL: url}}
		return out
	}
	out.Basics.Profiles[0].Network = network
	out.Basics.Profiles[0].URL = url
	return out
}

// ParseKeywords splits a comma separated list, trimming each keyword and
// dropping empty ones.
func ParseKeywords(s string) []string {
	out := []string{}
	for _, k := range strings.Split(s, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}

func setAt[T any](list []T, i int, v T) ([]T, bool) {
	if i < 0 || i >= len(list) {
		return list, false
	}
	list[i] = v
	return list, true
}

func removeAt[T any](list []T, i int) ([]T, bool) {
	if i < 0 || i >= len(list) {
		return list, false
	}
	out := make([]T, 0, len(list)-1)
	out = append(out, list[:i]...)
	return append(out, list[i+1:]...), true
}

func moveTo[T any](list []T, from, to int) ([]T, bool) {
	if from < 0 || from >= len(list) || to < 0 || to >= len(list) {
		return list, false
	}
	v := list[from]
	rest, _ := removeAt(list, from)
	out := make([]T, 0, len(list))
	out = append(out, rest[:to]...)
	out = append(out, v)
	return append(out, rest[to:]...), true
}

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append(make([]string, 0, len(in)), in...)
}
