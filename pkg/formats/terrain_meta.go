package formats

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NormalizeText puts user-supplied metadata into Unicode NFC form so the
// same visible text always encodes to the same bytes.
func NormalizeText(s string) string {
	return norm.NFC.String(s)
}

// ParseAuthors splits a comma separated author list, usually in the
// `name <email>` form. Blank entries are dropped.
func ParseAuthors(list string) []string {
	var authors []string
	for _, a := range strings.Split(list, ",") {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		authors = append(authors, NormalizeText(a))
	}
	return authors
}

// FormatAuthors joins an author list for display.
func FormatAuthors(authors []string) string {
	return strings.Join(authors, ", ")
}
