package interview

import "strings"

// enumerationMarkers are the characters stripped from the left of each line
// to remove numbered-list prefixes such as "1. " or "12. ".
const enumerationMarkers = "0123456789. "

// ExtractQuestions parses raw generated text into an ordered list of question
// strings. The backend is instructed to return a clean numbered list, but that
// instruction is advisory, so parsing is defensive: each non-blank line is
// stripped of leading enumeration markers and kept only if it still contains a
// question mark. Malformed input yields fewer or zero questions, never an
// error. An empty result is a valid outcome the caller must handle.
func ExtractQuestions(raw string) []string {
	questions := make([]string, 0)

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		line = strings.TrimSpace(strings.TrimLeft(line, enumerationMarkers))
		if !strings.Contains(line, "?") {
			continue
		}

		questions = append(questions, line)
	}

	return questions
}
