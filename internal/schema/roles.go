package schema

// Role is a normalized column role. Every ingested table maps its vendor
// headers onto this fixed vocabulary; geometry and lookups only ever read
// roles, never raw header names.
type Role string

const (
	RoleSiteID    Role = "site_id"
	RoleCellID    Role = "cell_id"
	RoleLatitude  Role = "latitude"
	RoleLongitude Role = "longitude"
	RoleAzimuth   Role = "azimuth"
	RoleHeight    Role = "height"
	RoleTilt      Role = "tilt"
	RoleChannel   Role = "channel"
	RoleUnmapped  Role = "unmapped"
)

// RoleKeywords maps each role to its ordered substring keywords. A header
// matches a role when its lower-cased text contains any keyword; the
// leftmost matching header wins. The table is read-only after init.
var RoleKeywords = map[Role][]string{
	RoleSiteID:    {"site", "node", "enodeb", "site_id"},
	RoleCellID:    {"cell", "sector", "antenna", "cell_name"},
	RoleLatitude:  {"lat", "latitude", "y_coord", "north"},
	RoleLongitude: {"lon", "long", "longitude", "x_coord", "east"},
	RoleAzimuth:   {"azi", "dir", "orientation", "angle", "beam"},
	RoleHeight:    {"hba", "height", "mha", "altitude"},
	RoleTilt:      {"tilt", "etilt", "e-tilt", "elect_tilt"},
	RoleChannel:   {"arfcn", "earfcndl", "earfcn", "ssbfrequency", "ssb_freq"},
}

// MappableRoles lists the roles the column mapper resolves, in the order
// they appear in reports.
var MappableRoles = []Role{
	RoleSiteID,
	RoleCellID,
	RoleLatitude,
	RoleLongitude,
	RoleAzimuth,
	RoleHeight,
	RoleTilt,
	RoleChannel,
}
