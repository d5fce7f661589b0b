package exercise

import "strings"

// BlankMarker is the conventional gap in a sentence.
const BlankMarker = "___"

// Gap is a sentence split around its blank.
type Gap struct {
	Before string
	After  string
	// Hint is the text inside a bracketed blank, e.g. "boire" for
	// "Je [boire] du café". Empty for an underscore blank.
	Hint string
	// Found is false when the sentence has no blank.
	Found bool
}

// SplitSentence locates the first blank in s. A blank is a run of three
// or more underscores or a bracketed placeholder.
func SplitSentence(s string) Gap {
	under := strings.Index(s, BlankMarker)
	open := strings.IndexByte(s, '[')
	closeAt := -1
	if open >= 0 {
		if rel := strings.IndexByte(s[open:], ']'); rel > 0 {
			closeAt = open + rel
		} else {
			open = -1
		}
	}

	switch {
	case under >= 0 && (open < 0 || under < open):
		end := under
		for end < len(s) && s[end] == '_' {
			end++
		}
		return Gap{Before: s[:under], After: s[end:], Found: true}
	case open >= 0:
		return Gap{
			Before: s[:open],
			After:  s[closeAt+1:],
			Hint:   strings.TrimSpace(s[open+1 : closeAt]),
			Found:  true,
		}
	}
	return Gap{Before: s}
}

// Fill returns the sentence with the blank replaced by answer.
func (g Gap) Fill(answer string) string {
	if !g.Found {
		return g.Before
	}
	return g.Before + answer + g.After
}
