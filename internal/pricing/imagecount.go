// Package pricing derives billable image counts and order prices from an
// order draft. Everything in here is pure.
package pricing

import (
	"regexp"

	"renovirt-backend/internal/models"
)

// BracketingPolicy decides how bracketing files that do not follow the
// <group>_<index>.<ext> naming scheme are billed.
type BracketingPolicy string

const (
	// ExcludeUnmatched bills complete named groups only.
	ExcludeUnmatched BracketingPolicy = "exclude-unmatched"
	// BillUnmatched bills every unmatched file as one image.
	BillUnmatched BracketingPolicy = "bill-unmatched"
)

func (p BracketingPolicy) Valid() bool {
	return p == ExcludeUnmatched || p == BillUnmatched
}

var bracketName = regexp.MustCompile(`(?i)^(.+)_(\d+)\.(jpe?g|png)$`)

// BracketGroup is one scene shot with several exposures.
type BracketGroup struct {
	Name  string
	Files []string
}

// BracketGroups splits file names into exposure groups keyed by the shared
// filename prefix. Groups keep the order in which their first file appears.
func BracketGroups(fileNames []string) (groups []BracketGroup, unmatched []string) {
	index := make(map[string]int)
	for _, name := range fileNames {
		m := bracketName.FindStringSubmatch(name)
		if m == nil {
			unmatched = append(unmatched, name)
			continue
		}
		prefix := m[1]
		i, ok := index[prefix]
		if !ok {
			i = len(groups)
			index[prefix] = i
			groups = append(groups, BracketGroup{Name: prefix})
		}
		groups[i].Files = append(groups[i].Files, name)
	}
	return groups, unmatched
}

// GroupOf returns the bracket group a file name belongs to, or "" when the
// name does not follow the bracketing scheme.
func GroupOf(fileName string) string {
	m := bracketName.FindStringSubmatch(fileName)
	if m == nil {
		return ""
	}
	return m[1]
}

// EffectiveImageCount is the billable unit count under the default policy.
func EffectiveImageCount(fileNames []string, photoType models.PhotoType) int {
	return effectiveImageCount(fileNames, photoType, ExcludeUnmatched)
}

func effectiveImageCount(fileNames []string, photoType models.PhotoType, policy BracketingPolicy) int {
	if len(fileNames) == 0 {
		return 0
	}
	if !photoType.IsBracketing() {
		return len(fileNames)
	}

	groups, unmatched := BracketGroups(fileNames)
	if policy == BillUnmatched {
		return len(groups) + len(unmatched)
	}
	return len(groups)
}
