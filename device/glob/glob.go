// Package glob matches the simple wildcard patterns used to address
// device.element identities ("joy*.button?", "*.ax0") and to match
// application callback registrations against incoming events.
package glob

import "golang.org/x/text/cases"

var fold = cases.Fold()

// Match reports whether pattern matches s using shell-style wildcards:
// '*' matches any run of characters (including none), '?' matches exactly
// one character, all other characters match themselves. Matching is
// case-insensitive, since device/element identifiers are treated as
// case-folded ASCII tokens the way driver-authored names commonly are.
func Match(pattern, s string) bool {
	p := fold.String(pattern)
	t := fold.String(s)
	return match([]rune(p), []rune(t))
}

func match(pattern, s []rune) bool {
	if len(pattern) == 0 {
		return len(s) == 0
	}
	switch pattern[0] {
	case '*':
		// Try matching zero or more characters against '*'.
		for i := 0; i <= len(s); i++ {
			if match(pattern[1:], s[i:]) {
				return true
			}
		}
		return false
	case '?':
		if len(s) == 0 {
			return false
		}
		return match(pattern[1:], s[1:])
	default:
		if len(s) == 0 || s[0] != pattern[0] {
			return false
		}
		return match(pattern[1:], s[1:])
	}
}
