package domain

// Marker substrings scanned for in commit messages. A commit may carry any
// number of markers; counting is per commit, not per occurrence.
const (
	PatchMarker = "#PATCH_VERSION"
	MinorMarker = "#MINOR_VERSION"
	MajorMarker = "#MAJOR_VERSION"
)

// BumpLevel identifies which semantic version component to increment.
type BumpLevel string

const (
	BumpNone  BumpLevel = "none"
	BumpPatch BumpLevel = "patch"
	BumpMinor BumpLevel = "minor"
	BumpMajor BumpLevel = "major"
)

// ChangeSet summarizes the commit range between the latest tag (exclusive)
// and HEAD (inclusive).
type ChangeSet struct {
	BaseTag     string
	Total       int
	PatchMarked int
	MinorMarked int
	MajorMarked int
}

// Empty reports whether the range contains no commits.
func (c ChangeSet) Empty() bool {
	return c.Total == 0
}

// Decide selects exactly one bump level for the range. Rules are evaluated in
// order, first match wins:
//
//  1. patch-marked > 0, or no minor/major markers at all: patch
//  2. minor-marked > 0: minor
//  3. major-marked > 0: major
//
// Rule 1 doubles as the default, so minor and major are only reachable when
// no commit in the range carries a patch marker. A commit marked both patch
// and major therefore still bumps patch. This ordering is deliberate and must
// not be reordered without renegotiating the release policy.
func (c ChangeSet) Decide() BumpLevel {
	if c.Empty() {
		return BumpNone
	}
	switch {
	case c.PatchMarked > 0 || (c.MinorMarked == 0 && c.MajorMarked == 0):
		return BumpPatch
	case c.MinorMarked > 0:
		return BumpMinor
	default:
		return BumpMajor
	}
}
