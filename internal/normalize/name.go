package normalize

import (
	"regexp"
	"strings"
	"unicode"
)

var reTrailingNumber = regexp.MustCompile(`\s*\d+$`)

// trailingArtifacts are label fragments the paragraph regex tends to capture
// after the actual name. When the cleaned name ends with one of these its
// last whitespace token is dropped.
var trailingArtifacts = []string{
	"UNIT",
	"OtherIdNumber",
	"DATE OF BIRTH",
	"DOB",
	"DOB:",
	"PATIENT:",
	"DATE",
	"DATE OF",
}

// placeholders are label-only captures that mean extraction actually failed.
var placeholders = map[string]struct{}{
	"Patient":              {},
	"Patient:":             {},
	"PATIENT":              {},
	"PATIENT:":             {},
	"Name":                 {},
	"Name:":                {},
	"Patient Information":  {},
	"Patient Information:": {},
	"RE":                   {},
	"RE:":                  {},
}

// CleanName strips trailing label artifacts and numeric suffixes (stray
// patient IDs) from a raw captured name. An empty string means the capture
// was not a usable name.
func CleanName(raw string) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		return ""
	}

	for _, artifact := range trailingArtifacts {
		if strings.HasSuffix(name, artifact) {
			if tokens := strings.Fields(name); len(tokens) > 1 {
				name = strings.Join(tokens[:len(tokens)-1], " ")
			}
		}
	}

	name = strings.TrimSpace(reTrailingNumber.ReplaceAllString(name, ""))

	if _, bad := placeholders[name]; bad {
		return ""
	}
	return name
}

// SplitName lowercases a full name, splits it on whitespace and assigns the
// first ceil(n/2) tokens to the first name and the rest to the last name,
// title-casing each part. A single token yields an empty last name.
func SplitName(name string) (first, last string) {
	tokens := strings.Fields(strings.ToLower(name))
	if len(tokens) == 0 {
		return "", ""
	}
	if len(tokens) == 1 {
		return titleCase(tokens[0]), ""
	}

	split := len(tokens)/2 + len(tokens)%2
	first = titleCase(strings.Join(tokens[:split], " "))
	last = titleCase(strings.Join(tokens[split:], " "))
	return first, last
}

// titleCase capitalizes every letter that follows a non-letter, so
// apostrophized and hyphenated surnames come out as O'Brien, Jean-Luc.
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}
