// Package version compares server version strings and builds the
// eligibility filter used to select compatibility cases.
package version

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Unversioned is the minimum version assumed for cases that declare none.
// It sorts before every real release so such cases are always eligible.
const Unversioned = "0"

// Compare returns -1, 0 or 1 depending on whether a is lower than, equal
// to or greater than b.
//
// Versions are compared as semantic versions where possible ("2.5" is
// 2.5.0, so "2.10" sorts after "2.9"). Strings that are not valid semver
// fall back to a dotted numeric comparison and finally to a plain string
// comparison.
func Compare(a, b string) int {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	if errA == nil && errB == nil {
		return va.Compare(vb)
	}

	if c, ok := compareDotted(a, b); ok {
		return c
	}

	return strings.Compare(a, b)
}

// LessOrEqual reports whether a <= b.
func LessOrEqual(a, b string) bool {
	return Compare(a, b) <= 0
}

// compareDotted compares dot-separated numeric versions of any length.
func compareDotted(a, b string) (int, bool) {
	pa, okA := splitNumeric(a)
	pb, okB := splitNumeric(b)
	if !okA || !okB {
		return 0, false
	}

	for i := 0; i < len(pa) || i < len(pb); i++ {
		var x, y int
		if i < len(pa) {
			x = pa[i]
		}
		if i < len(pb) {
			y = pb[i]
		}
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		}
	}
	return 0, true
}

func splitNumeric(v string) ([]int, bool) {
	v = strings.TrimPrefix(v, "v")
	if v == "" {
		return nil, false
	}
	parts := strings.Split(v, ".")
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, false
		}
		nums[i] = n
	}
	return nums, true
}

// Validate checks that v is usable as a scenario version. Versions become
// part of image tags and container names, so they must be non-empty and
// free of whitespace, path separators and colons.
func Validate(v string) error {
	if v == "" {
		return fmt.Errorf("version cannot be empty")
	}
	if strings.ContainsAny(v, " \t\n/:\\") {
		return fmt.Errorf("invalid version %q: must not contain whitespace, '/', '\\' or ':'", v)
	}
	return nil
}
