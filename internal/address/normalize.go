// Package address turns free-form unit addresses into the canonical string
// used as an equality key across the property dataset.
package address

import (
	"regexp"
	"strings"
)

const (
	canonicalUnit = "Unit "
	canonicalMA   = ", MA"
)

var (
	unitPattern  = regexp.MustCompile(`(?i)(?:Unit|#|Apt)\s*(\d+)`)
	statePattern = regexp.MustCompile(`(?i),\s*(?:Massachusetts|MA)\b`)
	doubleComma  = regexp.MustCompile(`,(?:\s*,)+`)
)

// steps is the normalization pipeline. Order matters: later steps expect the
// single-spaced output of CollapseWhitespace.
var steps = []func(string) string{
	CollapseWhitespace,
	CanonicalizeUnit,
	CanonicalizeState,
	CollapseCommas,
}

// Normalize produces the canonical form of a unit address. It never fails;
// malformed input just yields an unusual canonical string.
func Normalize(raw string) string {
	addr := raw
	for _, step := range steps {
		addr = step(addr)
	}
	return addr
}

// CollapseWhitespace replaces every whitespace run with a single space and
// trims both ends.
func CollapseWhitespace(addr string) string {
	return strings.Join(strings.Fields(addr), " ")
}

// CanonicalizeUnit rewrites every Unit/#/Apt designator to "Unit <N>", where
// N is the number captured by the first designator in the string.
func CanonicalizeUnit(addr string) string {
	m := unitPattern.FindStringSubmatch(addr)
	if m == nil {
		return addr
	}
	return unitPattern.ReplaceAllLiteralString(addr, canonicalUnit+m[1])
}

// UnitNumber returns the digits of the first unit designator, if any.
func UnitNumber(addr string) (string, bool) {
	m := unitPattern.FindStringSubmatch(addr)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// CanonicalizeState rewrites ", Massachusetts" and ", ma" style suffixes to ", MA".
func CanonicalizeState(addr string) string {
	return statePattern.ReplaceAllLiteralString(addr, canonicalMA)
}

// CollapseCommas folds "," followed by further commas (optionally separated
// by whitespace) into one comma.
func CollapseCommas(addr string) string {
	return doubleComma.ReplaceAllLiteralString(addr, ",")
}
