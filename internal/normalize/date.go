// Package normalize canonicalizes extracted name and date strings.
package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	reCompact = regexp.MustCompile(`^\d{8}$`)
	reSlashed = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{2,4}$`)
)

// twoDigitYearPivot: 2-digit years at or below it map to 20xx, above to 19xx.
// Fixed policy carried over from the source data; callers that need a
// different pivot should wrap this package.
const twoDigitYearPivot = 30

// CanonicalDate converts a loosely formatted date to compact yyyymmdd form.
// Empty input, the literal label "DATE" and anything unparseable yield "".
func CanonicalDate(raw string) string {
	if raw == "" || strings.EqualFold(raw, "DATE") {
		return ""
	}

	// Drop any trailing time component.
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return ""
	}
	raw = fields[0]

	if reCompact.MatchString(raw) {
		return raw
	}
	if !reSlashed.MatchString(raw) {
		return ""
	}

	parts := strings.Split(raw, "/")
	mm, dd, yy := zfill(parts[0]), zfill(parts[1]), parts[2]
	if len(yy) == 2 {
		n, _ := strconv.Atoi(yy)
		if n <= twoDigitYearPivot {
			yy = "20" + yy
		} else {
			yy = "19" + yy
		}
	}
	return fmt.Sprintf("%s%s%s", yy, mm, dd)
}

func zfill(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// DisplayDate converts compact yyyymmdd to yyyy-mm-dd for the persistence
// boundary. Anything that is not 8 digits yields "".
func DisplayDate(yyyymmdd string) string {
	if !reCompact.MatchString(yyyymmdd) {
		return ""
	}
	return yyyymmdd[:4] + "-" + yyyymmdd[4:6] + "-" + yyyymmdd[6:]
}
