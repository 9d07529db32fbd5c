package filter

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"

	"clipdata/pkg/history"
)

type FilterMode int

const (
	FilterModeNone FilterMode = iota
	FilterModeExact
	FilterModeContains
	FilterModeRegex
	FilterModeFuzzy
)

// ParseMode maps a --match flag value to a mode.
func ParseMode(s string) (FilterMode, error) {
	switch strings.ToLower(s) {
	case "", "contains":
		return FilterModeContains, nil
	case "exact":
		return FilterModeExact, nil
	case "regex", "re":
		return FilterModeRegex, nil
	case "fuzzy":
		return FilterModeFuzzy, nil
	}
	return FilterModeNone, fmt.Errorf("unknown match mode %q (want exact, contains, regex or fuzzy)", s)
}

func Modes() []string {
	return []string{"contains", "exact", "regex", "fuzzy"}
}

type StringFilter struct {
	Pattern string
	Mode    FilterMode
	regex   *regexp.Regexp
}

func NewStringFilter(pattern string, mode FilterMode) (*StringFilter, error) {
	f := &StringFilter{
		Pattern: pattern,
		Mode:    mode,
	}

	if mode == FilterModeRegex {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern '%s': %w", pattern, err)
		}
		f.regex = re
	}

	return f, nil
}

func (f *StringFilter) Match(s string) bool {
	if f == nil || f.Mode == FilterModeNone || f.Pattern == "" {
		return true
	}

	switch f.Mode {
	case FilterModeExact:
		return strings.EqualFold(s, f.Pattern)
	case FilterModeContains:
		return strings.Contains(strings.ToLower(s), strings.ToLower(f.Pattern))
	case FilterModeRegex:
		return f.regex != nil && f.regex.MatchString(s)
	case FilterModeFuzzy:
		return FuzzyMatch(f.Pattern, s)
	default:
		return true
	}
}

// FuzzyMatch reports whether the runes of pattern appear in text in order,
// ignoring case.
func FuzzyMatch(pattern, text string) bool {
	if pattern == "" {
		return true
	}
	p := []rune(strings.ToLower(pattern))
	i := 0
	for _, r := range strings.ToLower(text) {
		if r == p[i] {
			i++
			if i == len(p) {
				return true
			}
		}
	}
	return false
}

// FuzzyMatchRanked reports whether the normalized edit similarity of
// pattern and text reaches threshold (0..1).
func FuzzyMatchRanked(pattern, text string, threshold float64) bool {
	return Similarity(pattern, text) >= threshold
}

func Similarity(a, b string) float64 {
	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 1
	}
	return 1.0 - float64(LevenshteinDistance(a, b))/float64(maxLen)
}

// LevenshteinDistance is the case-insensitive edit distance in runes.
func LevenshteinDistance(s1, s2 string) int {
	a, b := []rune(s1), []rune(s2)
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	previousRow := make([]int, len(b)+1)
	currentRow := make([]int, len(b)+1)
	for i := range previousRow {
		previousRow[i] = i
	}

	for i := range a {
		currentRow[0] = i + 1
		for j := range b {
			cost := 1
			if unicode.ToLower(a[i]) == unicode.ToLower(b[j]) {
				cost = 0
			}
			currentRow[j+1] = min(currentRow[j]+1, previousRow[j+1]+1, previousRow[j]+cost)
		}
		previousRow, currentRow = currentRow, previousRow
	}

	return previousRow[len(b)]
}

// Suggest returns the candidates close to name, best first: prefix and
// substring matches, then anything within two edits or a third of the name's
// length.
func Suggest(name string, candidates []string) []string {
	type scored struct {
		name  string
		score float64
	}
	lower := strings.ToLower(name)
	var hits []scored
	for _, c := range candidates {
		cl := strings.ToLower(c)
		switch {
		case lower == "":
			hits = append(hits, scored{c, 0})
		case strings.HasPrefix(cl, lower) || strings.Contains(cl, lower):
			hits = append(hits, scored{c, 2 + Similarity(lower, cl)})
		case LevenshteinDistance(lower, cl) <= max(2, len([]rune(lower))/3):
			hits = append(hits, scored{c, Similarity(lower, cl)})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.name
	}
	return out
}

// EntryFilter selects history entries. Zero fields match everything.
type EntryFilter struct {
	Content   *StringFilter
	Direction history.Direction
	Kind      history.Kind
	Since     time.Time
}

func (f *EntryFilter) Matches(e history.Entry) bool {
	if f.Direction != "" && e.Direction != f.Direction {
		return false
	}
	if f.Kind != "" && e.Kind != f.Kind {
		return false
	}
	if !f.Since.IsZero() && e.CreatedAt.Before(f.Since) {
		return false
	}
	return f.Content.Match(e.Content)
}

// Apply returns the entries that match, in their original order.
func (f *EntryFilter) Apply(entries []history.Entry) []history.Entry {
	out := make([]history.Entry, 0, len(entries))
	for _, e := range entries {
		if f.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}
