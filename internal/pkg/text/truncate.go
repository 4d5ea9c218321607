package text

// Head returns the first n runes of s, without any suffix.
func Head(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// Truncate cuts s to at most max runes and appends "..." when it had to cut.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	if cut := Head(s, max); len(cut) < len(s) {
		return cut + "..."
	}
	return s
}
