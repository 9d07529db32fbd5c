package tabular

import (
	"strings"
)

// Candidates in priority order. Space comes last because it also appears
// inside ordinary text fields.
var delimiterCandidates = []rune{'\t', ',', ';', '|', ' '}

const detectLines = 10

// DetectDelimiter guesses the field delimiter of text. It looks at up to ten
// non-blank lines and prefers the first candidate that occurs the same,
// non-zero number of times on each of them, falling back to the most
// frequent candidate, and finally to a comma.
func DetectDelimiter(text string) rune {
	lines := sampleLines(text, detectLines)
	if len(lines) == 0 {
		return ','
	}

	best, bestTotal := ',', 0
	for _, d := range delimiterCandidates {
		counts := make([]int, len(lines))
		total := 0
		for i, line := range lines {
			counts[i] = countOutsideQuotes(line, d)
			total += counts[i]
		}
		if consistent(counts) {
			return d
		}
		if total > bestTotal {
			best, bestTotal = d, total
		}
	}
	return best
}

func sampleLines(text string, n int) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == n {
			break
		}
	}
	return lines
}

func consistent(counts []int) bool {
	if counts[0] == 0 {
		return false
	}
	for _, c := range counts[1:] {
		if c != counts[0] {
			return false
		}
	}
	return true
}

// countOutsideQuotes counts delimiter occurrences outside double quotes.
// For a space delimiter it counts runs of spaces between fields instead.
func countOutsideQuotes(line string, d rune) int {
	if d == ' ' {
		line = strings.Trim(line, " ")
	}
	count := 0
	inQuotes := false
	var prev rune
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == d && !inQuotes:
			if d != ' ' || prev != ' ' {
				count++
			}
		}
		prev = r
	}
	return count
}

// collapseRepeated removes runs of delim outside quotes, plus delimiters
// at the start and end of each line.
func collapseRepeated(text string, delim rune) string {
	var b strings.Builder
	b.Grow(len(text))
	inQuotes := false
	lineStart := true
	pending := false
	for _, r := range text {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case inQuotes:
		case r == delim:
			if !lineStart {
				pending = true
			}
			continue
		case r == '\n' || r == '\r':
			pending = false
			lineStart = true
			b.WriteRune(r)
			continue
		}
		if pending {
			b.WriteRune(delim)
			pending = false
		}
		lineStart = false
		b.WriteRune(r)
	}
	return b.String()
}
