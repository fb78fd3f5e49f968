package pkg

const (
	INF_WEIGHT float64 = 1e15

	// edge is an original road segment, not a shortcut
	NO_CONTRACTED_VERTEX int32 = -1

	DEFAULT_WITNESS_HOP_LIMIT        = 5
	DEFAULT_WITNESS_MAX_SETTLED      = 500
	DEFAULT_MAX_UNPACK_DEPTH         = 64
	DEFAULT_UNPACK_CACHE_SIZE        = 1 << 20
	DEFAULT_CONTRACTION_LOG_INTERVAL = 10000

	NERF_MAXSPEED_OSM = 0.9
)

type OsmHighwayType uint8

// osm highway classes used for routing: https://wiki.openstreetmap.org/wiki/OSM_tags_for_routing/Telenav
const (
	MOTORWAY OsmHighwayType = iota
	TRUNK
	PRIMARY
	SECONDARY
	TERTIARY
	RESIDENTIAL
	SERVICE
	UNCLASSIFIED
	MOTORWAY_LINK
	TRUNK_LINK
	PRIMARY_LINK
	SECONDARY_LINK
	TERTIARY_LINK
	LIVING_STREET
	ROAD
	TRACK
	MOTORROAD
	UNKNOWN
)

var highwayTypes = map[string]OsmHighwayType{
	"motorway":       MOTORWAY,
	"trunk":          TRUNK,
	"primary":        PRIMARY,
	"secondary":      SECONDARY,
	"tertiary":       TERTIARY,
	"residential":    RESIDENTIAL,
	"service":        SERVICE,
	"unclassified":   UNCLASSIFIED,
	"motorway_link":  MOTORWAY_LINK,
	"trunk_link":     TRUNK_LINK,
	"primary_link":   PRIMARY_LINK,
	"secondary_link": SECONDARY_LINK,
	"tertiary_link":  TERTIARY_LINK,
	"living_street":  LIVING_STREET,
	"road":           ROAD,
	"track":          TRACK,
	"motorroad":      MOTORROAD,
}

// GetHighwayType maps the value of an osm highway tag, UNKNOWN for anything not routable by car.
func GetHighwayType(roadType string) OsmHighwayType {
	if hw, ok := highwayTypes[roadType]; ok {
		return hw
	}
	return UNKNOWN
}
