package tabular

import (
	"fmt"
	"strings"
	"unicode"
)

// NormalizeName turns an arbitrary header into an identifier: surrounding
// whitespace is dropped, other invalid characters become underscores, and a
// leading digit gets an underscore prefix.
func NormalizeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "_"
	}
	var b strings.Builder
	for _, r := range s {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	name := b.String()
	if r := []rune(name)[0]; unicode.IsDigit(r) {
		name = "_" + name
	}
	return name
}

// MakeUnique suffixes repeated names with _1, _2 and so on, skipping any
// suffix that would collide with a name already present.
func MakeUnique(names []string) []string {
	out := make([]string, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		seen[n] = false
	}
	for i, n := range names {
		if used, ok := seen[n]; ok && !used {
			seen[n] = true
			out[i] = n
			continue
		}
		for k := 1; ; k++ {
			candidate := fmt.Sprintf("%s_%d", n, k)
			if _, taken := seen[candidate]; !taken {
				seen[candidate] = true
				out[i] = candidate
				break
			}
		}
	}
	return out
}

func defaultName(i int) string {
	return fmt.Sprintf("Column%d", i+1)
}

func headerNames(header []string, width int, normalize bool) []string {
	names := make([]string, width)
	for i := range names {
		var n string
		if i < len(header) {
			n = header[i]
		}
		switch {
		case n == "":
			n = defaultName(i)
		case normalize:
			n = NormalizeName(n)
		}
		names[i] = n
	}
	return MakeUnique(names)
}
