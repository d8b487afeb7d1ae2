package evidence

import "html"

// minStringLength matches the conventional strings(1) cutoff.
const minStringLength = 4

// ExtractStrings extracts the printable ASCII strings embedded in data,
// deduplicated and HTML-escaped for safe downstream display. Order follows
// first occurrence; callers treat the result as a set.
func ExtractStrings(data []byte) []string {
	seen := make(map[string]struct{})
	var out []string
	start := -1

	flush := func(end int) {
		if start < 0 || end-start < minStringLength {
			start = -1
			return
		}
		s := string(data[start:end])
		start = -1
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		out = append(out, html.EscapeString(s))
	}

	for i, b := range data {
		if b >= 0x20 && b <= 0x7e {
			if start < 0 {
				start = i
			}
			continue
		}
		flush(i)
	}
	flush(len(data))
	return out
}
