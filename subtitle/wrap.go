package subtitle

import "strings"

// WrapText splits text into caption lines by greedy word wrap: words
// accumulate until adding the next one would exceed maxChars.
func WrapText(text string, maxChars int) []string {
	var lines []string
	var current string

	for _, word := range strings.Fields(text) {
		switch {
		case current == "":
			current = word
		case len(current)+1+len(word) <= maxChars:
			current += " " + word
		default:
			lines = append(lines, current)
			current = word
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
