package export

import "regexp"

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// Sanitize removes every character outside [A-Za-z0-9_.-] from name.
// Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(name string) string {
	return unsafeChars.ReplaceAllString(name, "")
}
