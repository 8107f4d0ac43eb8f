package ingest

// columns.go resolves semantic column roles from vendor header strings.
// Vendors never agree on names ("Lat (deg)", "Y_COORD", "latitude_wgs84"),
// so roles resolve by ordered substring keywords instead of exact matches.

import (
	"log/slog"
	"strings"

	"github.com/JonMunkholm/RadioRCA/internal/schema"
)

// ColumnMapping maps semantic roles to the one physical column name chosen
// for a table instance. Built once per load, read-only afterwards, and
// never shared across tables because vendor exports vary file to file.
type ColumnMapping map[schema.Role]string

// Has reports whether a role resolved to a column.
func (m ColumnMapping) Has(role schema.Role) bool {
	_, ok := m[role]
	return ok
}

// FindColumn returns the first header whose lower-cased text contains any
// of the keywords. Headers are scanned left to right, so ties break on
// file-column order. Keywords must already be lower-cased.
func FindColumn(headers []string, keywords []string) (string, bool) {
	for _, h := range headers {
		lowered := strings.ToLower(strings.TrimSpace(h))
		for _, kw := range keywords {
			if strings.Contains(lowered, kw) {
				return h, true
			}
		}
	}
	return "", false
}

// ResolveColumn resolves a single role against the headers, returning the
// caller-supplied fallback when no header matches.
func ResolveColumn(headers []string, role schema.Role, fallback string) string {
	if kws, ok := schema.RoleKeywords[role]; ok {
		if name, found := FindColumn(headers, kws); found {
			return name
		}
	}
	return fallback
}

// MapColumns resolves every mappable role against the headers. Roles with
// no matching header are absent from the mapping; callers decide per role
// whether that is fatal or a documented default applies.
func MapColumns(headers []string) ColumnMapping {
	mapping := make(ColumnMapping, len(schema.MappableRoles))
	for _, role := range schema.MappableRoles {
		name, found := FindColumn(headers, schema.RoleKeywords[role])
		if !found {
			continue
		}
		mapping[role] = name
		slog.Debug("column resolved", "role", string(role), "header", name)
	}
	return mapping
}

// HeaderIndex maps lower-cased header names to their column position.
type HeaderIndex map[string]int

// MakeHeaderIndex builds a HeaderIndex from a header row. Keys are cleaned
// and lower-cased for case-insensitive access.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		idx[strings.ToLower(CleanCell(h))] = i
	}
	return idx
}

// CleanCell removes common export artifacts from a cell value: surrounding
// whitespace, the Excel formula wrapper (="..."), and stray quotes.
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.Trim(s, `"'`)
}
