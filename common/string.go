package common

import "strings"

// WrapString breaks s into lines of at most width bytes, splitting on the
// last space before the limit. Existing line breaks are kept.
func WrapString(s string, width int) string {
	if width <= 0 {
		return s
	}

	paragraphs := strings.Split(s, "\n")
	for i, p := range paragraphs {
		paragraphs[i] = wrapLine(p, width)
	}
	return strings.Join(paragraphs, "\n")
}

func wrapLine(s string, width int) string {
	var lines []string
	for len(s) > width {
		splitAt := width
		for i := width; i > 0; i-- {
			if s[i] == ' ' {
				splitAt = i
				break
			}
		}
		lines = append(lines, strings.TrimRight(s[:splitAt], " "))
		s = strings.TrimLeft(s[splitAt:], " ")
	}
	if len(s) > 0 || len(lines) == 0 {
		lines = append(lines, s)
	}
	return strings.Join(lines, "\n")
}
