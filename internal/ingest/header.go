package ingest

import (
	"fmt"
	"strings"
)

// HeaderLocation is the located column-defining row of a document.
type HeaderLocation struct {
	Row    int
	Fields []string
}

// HeaderNotFoundError reports that no line within the scan window satisfied
// the document kind's header requirements. Aggregation for that document
// cannot proceed; callers surface it as a check-your-file-format failure
// rather than silently returning a zero aggregate.
type HeaderNotFoundError struct {
	Kind   Kind
	Window int
}

func (e *HeaderNotFoundError) Error() string {
	return fmt.Sprintf("ingest: no header row found in first %d lines of %s document", e.Window, e.Kind)
}

// LocateHeader scans lines from index 0 up to the profile's window for the
// first line containing, for every requirement group, at least one fragment
// as a substring. Matching is on the raw line, so column qualifiers
// ("총비용(VAT포함,원)") still hit.
func LocateHeader(doc *Document, profile Profile) (*HeaderLocation, error) {
	window := profile.ScanWindow
	if window <= 0 {
		window = campaignScanWindow
	}
	limit := min(doc.Len(), window)

	for i := 0; i < limit; i++ {
		line := doc.Line(i)
		if lineSatisfies(line, profile.HeaderRequires) {
			return &HeaderLocation{Row: i, Fields: SplitFields(line)}, nil
		}
	}
	return nil, &HeaderNotFoundError{Kind: profile.Kind, Window: window}
}

func lineSatisfies(line string, groups [][]string) bool {
	if len(groups) == 0 {
		return false
	}
	for _, group := range groups {
		matched := false
		for _, fragment := range group {
			if strings.Contains(line, fragment) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// ColumnMap maps each semantic role to its field index, or Unresolved when
// no header field matched any of the role's fragments.
type ColumnMap map[Role]int

// Unresolved marks a role with no matching column.
const Unresolved = -1

// Index returns the resolved field index for role, or Unresolved.
func (m ColumnMap) Index(role Role) int {
	if idx, ok := m[role]; ok {
		return idx
	}
	return Unresolved
}

// ResolveColumns maps every role in the profile's fragment table to a field
// index. Candidates are tried in priority order: the more specific fragment
// wins even when a broader one matches an earlier column. Roles resolve
// independently; absence of one never blocks another.
func ResolveColumns(fields []string, profile Profile) ColumnMap {
	m := make(ColumnMap, len(profile.Fragments))
	for role, fragments := range profile.Fragments {
		m[role] = Unresolved
		for _, fragment := range fragments {
			idx := fieldContaining(fields, fragment)
			if idx >= 0 {
				m[role] = idx
				break
			}
		}
	}
	return m
}

func fieldContaining(fields []string, fragment string) int {
	for i, f := range fields {
		if strings.Contains(f, fragment) {
			return i
		}
	}
	return -1
}
