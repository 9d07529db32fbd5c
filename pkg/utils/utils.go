package utils

func Deduplicate(s []string) []string {
	seen := make(map[string]bool)
	result := []string{}
	for _, str := range s {
		if !seen[str] {
			seen[str] = true
			result = append(result, str)
		}
	}
	return result
}

func Ptr[T any](v T) *T {
	return &v
}

// Deref returns *p, or def when p is nil. Optional config switches are
// pointers so that an absent key keeps its default.
func Deref[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
