// Package history groups, filters and orders past interviews for reporting.
package history

import (
	"maps"
	"slices"
	"strings"

	"github.com/okian/intervue/internal/domain/model"
)

// Groups maps every history category to its interviews. All six keys are
// always present.
type Groups map[model.Category][]model.Interview

// TypeFilter restricts interviews by talent type.
type TypeFilter string

// Type filters.
const (
	TypeAll    TypeFilter = "All"
	TypeSkills TypeFilter = "Skills"
	TypeDomain TypeFilter = "Domain"
)

// ParseTypeFilter parses s case-insensitively. Empty input means All.
func ParseTypeFilter(s string) (TypeFilter, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return TypeAll, true
	case "skills", "skill":
		return TypeSkills, true
	case "domain", "domains":
		return TypeDomain, true
	default:
		return "", false
	}
}

// Direction orders dates.
type Direction int

// Sort directions.
const (
	Ascending Direction = iota
	Descending
)

// ParseDirection parses "asc" or "desc"; anything else is ascending.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), "desc") {
		return Descending
	}
	return Ascending
}

// Criteria combines the type filter and the free-text search.
type Criteria struct {
	Type  TypeFilter
	Query string
}

// Group fills the six fixed buckets from the service's answer. Items under
// a known key land in that bucket. Items under any other key, including a
// flat list, land in the bucket of their own category and are dropped only
// when they carry none. Missing buckets become empty lists.
func Group(raw map[string][]model.Interview) Groups {
	out := make(Groups, len(model.Categories))
	for _, c := range model.Categories {
		out[c] = []model.Interview{}
	}
	for _, key := range slices.Sorted(maps.Keys(raw)) {
		keyed, keyOK := model.ParseCategory(key)
		for _, it := range raw[key] {
			c := keyed
			if !keyOK {
				own, ok := model.ParseCategory(string(it.Category))
				if !ok {
					continue
				}
				c = own
			}
			if it.Category == "" || !keyOK {
				it.Category = c
			}
			out[c] = append(out[c], it)
		}
	}
	return out
}

// Flatten returns every interview in category display order.
func (g Groups) Flatten() []model.Interview {
	var out []model.Interview
	for _, c := range model.Categories {
		out = append(out, g[c]...)
	}
	return out
}

// Filter applies the type filter and the search query; both must match.
func Filter(items []model.Interview, c Criteria) []model.Interview {
	q := strings.ToLower(strings.TrimSpace(c.Query))
	out := make([]model.Interview, 0, len(items))
	for _, it := range items {
		if !matchesType(it, c.Type) {
			continue
		}
		if q != "" && !strings.Contains(haystack(it), q) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// SortByDate orders items by interview date in place. Missing or unparseable
// dates count as the far future: last ascending, first descending.
func SortByDate(items []model.Interview, dir Direction) {
	slices.SortStableFunc(items, func(a, b model.Interview) int {
		ta, okA := a.Date()
		tb, okB := b.Date()
		var c int
		switch {
		case !okA && !okB:
			c = 0
		case !okA:
			c = 1
		case !okB:
			c = -1
		default:
			c = ta.Compare(tb)
		}
		if dir == Descending {
			return -c
		}
		return c
	})
}

func matchesType(it model.Interview, f TypeFilter) bool {
	switch f {
	case TypeSkills:
		return strings.EqualFold(it.TalentType, string(model.KindSkill))
	case TypeDomain:
		return strings.EqualFold(it.TalentType, string(model.KindDomain))
	default:
		return true
	}
}

func haystack(it model.Interview) string {
	return strings.ToLower(strings.Join([]string{
		it.ID,
		it.InterviewType,
		string(it.Status),
		it.TalentType,
		it.TalentID,
		it.TalentName,
		it.Description,
		it.MeetingLink,
	}, " "))
}
