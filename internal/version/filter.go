package version

import "fmt"

// Tag names carried by compatibility cases. FromTag is the minimum
// compatible version of a case; Tag is the version it was declared for.
const (
	FromTag = "marqo_from_version"
	Tag     = "marqo_version"
)

// Filter selects compatibility cases for a scenario's test phase.
// A case is eligible when its minimum version is at most From, or its
// declared version is at most To. The two conditions are OR-ed.
type Filter struct {
	From string
	To   string
}

// NewFilter creates the test-phase filter for an upgrade from one
// version to another.
func NewFilter(from, to string) Filter {
	return Filter{From: from, To: to}
}

// Eligible reports whether a case with the given minimum and declared
// versions passes the filter. An empty declared version falls back to
// the minimum version; an empty minimum version is Unversioned.
func (f Filter) Eligible(fromVersion, declared string) bool {
	if fromVersion == "" {
		fromVersion = Unversioned
	}
	if declared == "" {
		declared = fromVersion
	}
	return LessOrEqual(fromVersion, f.From) || LessOrEqual(declared, f.To)
}

// PrepareEligible reports whether a case with the given minimum version
// takes part in the prepare phase against From.
func (f Filter) PrepareEligible(fromVersion string) bool {
	if fromVersion == "" {
		fromVersion = Unversioned
	}
	return LessOrEqual(fromVersion, f.From)
}

// String renders the filter as a marker expression understood by the
// external test harness.
func (f Filter) String() string {
	return fmt.Sprintf("%s<='%s' or %s<='%s'", FromTag, f.From, Tag, f.To)
}
