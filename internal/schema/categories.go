// Package schema defines the fixed dataset categories the service ingests
// and the semantic column-role vocabulary their headers normalize into.
package schema

// Category identifies one of the four archive folders under the data root.
type Category string

const (
	CategoryPM       Category = "pm"       // performance counters
	CategoryCM       Category = "cm"       // configuration dumps
	CategoryDatabase Category = "database" // site/cell design tables
	CategoryRF       Category = "rf"       // RF survey exports
)

// CategoryDef describes how files of one category are recognized and what
// a normalized table of that category must provide.
type CategoryDef struct {
	Key   Category
	Title string

	// Anchors are the keywords the format sniffer hunts for in the header
	// line of a raw export. Matched case-insensitively as substrings.
	Anchors []string

	// RequiredRoles must resolve during ingest or the file is rejected.
	RequiredRoles []Role
}

var categoryDefs = map[Category]CategoryDef{
	CategoryPM: {
		Key:     CategoryPM,
		Title:   "Performance counters",
		Anchors: []string{"date", "erbs", "cell", "counter"},
	},
	CategoryCM: {
		Key:           CategoryCM,
		Title:         "Configuration dumps",
		Anchors:       []string{"node", "cell", "tilt", "pci"},
		RequiredRoles: []Role{RoleSiteID},
	},
	CategoryDatabase: {
		Key:           CategoryDatabase,
		Title:         "Site design tables",
		Anchors:       []string{"site", "cell", "lat"},
		RequiredRoles: []Role{RoleLatitude, RoleLongitude},
	},
	CategoryRF: {
		Key:     CategoryRF,
		Title:   "RF survey exports",
		Anchors: []string{"lat", "rsrp", "level", "freq"},
	},
}

// Get returns the definition for a category key.
func Get(key string) (CategoryDef, bool) {
	def, ok := categoryDefs[Category(key)]
	return def, ok
}

// All returns the category definitions in stable display order.
func All() []CategoryDef {
	return []CategoryDef{
		categoryDefs[CategoryPM],
		categoryDefs[CategoryCM],
		categoryDefs[CategoryDatabase],
		categoryDefs[CategoryRF],
	}
}

// Valid reports whether key names a known category.
func Valid(key string) bool {
	_, ok := categoryDefs[Category(key)]
	return ok
}
