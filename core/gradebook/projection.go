package gradebook

import (
	"fmt"
	"iter"
	"slices"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type SortKey string

const (
	SortByName SortKey = "full_name"
	SortByID   SortKey = "id"
)

type SortDirection string

const (
	Ascending  SortDirection = "ascending"
	Descending SortDirection = "descending"
)

// minimum similarity ratio for a typo tolerant name match
const fuzzyRatio = 0.75

func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "", "name", SortByName:
		return SortByName, nil
	case SortByID:
		return SortByID, nil
	default:
		return "", fmt.Errorf("unknown sort key %q", s)
	}
}

type SortConfig struct {
	Key       SortKey
	Direction SortDirection
}

func DefaultSort() SortConfig {
	return SortConfig{Key: SortByName, Direction: Ascending}
}

func (c SortConfig) normalized() SortConfig {
	if c.Key == "" {
		c.Key = SortByName
	}
	if c.Direction != Descending {
		c.Direction = Ascending
	}
	return c
}

// Request is what clicking a column header does: the active ascending column flips to descending,
// anything else sorts ascending by key.
func (c SortConfig) Request(key SortKey) SortConfig {
	c = c.normalized()
	if c.Key == key && c.Direction == Ascending {
		return SortConfig{Key: key, Direction: Descending}
	}
	return SortConfig{Key: key, Direction: Ascending}
}

func (c SortConfig) Toggle() SortConfig {
	c = c.normalized()
	if c.Direction == Ascending {
		c.Direction = Descending
	} else {
		c.Direction = Ascending
	}
	return c
}

// StudentSource is anything that lists students in insertion order, typically a *Cache.
type StudentSource interface {
	Students() []Student
}

// Projection is a read-only ordered view over a StudentSource.
type Projection struct {
	src    StudentSource
	cfg    SortConfig
	filter string
	lang   language.Tag
}

func NewProjection(src StudentSource, cfg SortConfig) Projection {
	return Projection{src: src, cfg: cfg.normalized(), lang: language.Russian}
}

// WithFilter keeps students whose name contains q or resembles it.
func (p Projection) WithFilter(q string) Projection {
	p.filter = strings.ToLower(strings.TrimSpace(q))
	return p
}

func (p Projection) WithLanguage(tag language.Tag) Projection {
	p.lang = tag
	return p
}

func (p Projection) Config() SortConfig { return p.cfg }

// All yields students in projection order. The source is read when iteration starts,
// so every iteration reflects the current cache.
func (p Projection) All() iter.Seq[Student] {
	return func(yield func(Student) bool) {
		students := p.src.Students()
		if p.filter != "" {
			students = slices.DeleteFunc(students, func(s Student) bool { return !matchName(s.FullName, p.filter) })
		}
		p.sort(students)
		for _, s := range students {
			if !yield(s) {
				return
			}
		}
	}
}

func (p Projection) Collect() []Student {
	return slices.Collect(p.All())
}

func (p Projection) sort(students []Student) {
	desc := p.cfg.Direction == Descending

	var cmp func(a, b Student) int
	switch p.cfg.Key {
	case SortByID:
		cmp = func(a, b Student) int { return a.ID - b.ID }
	default:
		col := collate.New(p.lang) // not safe for concurrent use
		cmp = func(a, b Student) int { return col.CompareString(a.FullName, b.FullName) }
	}

	sort.SliceStable(students, func(i, j int) bool {
		if desc {
			return cmp(students[i], students[j]) > 0
		}
		return cmp(students[i], students[j]) < 0
	})
}

// matchName reports whether every word of q (already lower-cased) is a substring of name
// or is close enough to one of its words.
func matchName(name, q string) bool {
	name = strings.ToLower(name)
	if strings.Contains(name, q) {
		return true
	}
	words := strings.Fields(name)
	for _, qw := range strings.Fields(q) {
		if strings.Contains(name, qw) {
			continue
		}
		found := false
		for _, w := range words {
			if similarity(w, qw) >= fuzzyRatio {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func similarity(a, b string) float64 {
	m := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, ""))
	return m.Ratio()
}
