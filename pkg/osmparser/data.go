package osmparser

import (
	"github.com/lintang-b-s/navigatorx-ch/pkg"
	"github.com/lintang-b-s/navigatorx-ch/pkg/datastructure"
)

type NodeType uint8

const (
	END_NODE NodeType = iota + 1
	BETWEEN_NODE
	JUNCTION_NODE
)

// Edge. one road segment between two junction/end nodes of an osm way, after merging the nodes in between.
type Edge struct {
	from        datastructure.Index
	to          datastructure.Index
	distance    float64 // meter
	speed       float64 // km/h
	highwayType pkg.OsmHighwayType
	osmWayId    int64
}

func NewEdge(from, to datastructure.Index, distance, speed float64, highwayType pkg.OsmHighwayType, osmWayId int64) Edge {
	return Edge{
		from:        from,
		to:          to,
		distance:    distance,
		speed:       speed,
		highwayType: highwayType,
		osmWayId:    osmWayId,
	}
}

func (e Edge) GetFrom() datastructure.Index {
	return e.from
}

func (e Edge) GetTo() datastructure.Index {
	return e.to
}

func (e Edge) GetLength() float64 {
	return e.distance
}

func (e Edge) GetEdgeSpeed() float64 {
	return e.speed
}

func (e Edge) GetHighwayType() pkg.OsmHighwayType {
	return e.highwayType
}

func (e Edge) GetOsmWayId() int64 {
	return e.osmWayId
}

type NodeCoord struct {
	lat float64
	lon float64
}

func NewNodeCoord(lat, lon float64) NodeCoord {
	return NodeCoord{lat, lon}
}

var (
	// https://wiki.openstreetmap.org/wiki/OSM_tags_for_routing/Telenav
	acceptedHighway = map[string]struct{}{
		"motorway":         {},
		"motorway_link":    {},
		"trunk":            {},
		"trunk_link":       {},
		"primary":          {},
		"primary_link":     {},
		"secondary":        {},
		"secondary_link":   {},
		"residential":      {},
		"residential_link": {},
		"service":          {},
		"tertiary":         {},
		"tertiary_link":    {},
		"road":             {},
		"track":            {},
		"unclassified":     {},
		"undefined":        {},
		"unknown":          {},
		"living_street":    {},
		"private":          {},
		"motorroad":        {},
	}

	//https://wiki.openstreetmap.org/wiki/Key:barrier
	// barrier node dengan access=no memutus segment jadi 2 edge yang tidak terhubung
	acceptedBarrierType = map[string]struct{}{
		"bollard":        {},
		"swing_gate":     {},
		"jersey_barrier": {},
		"lift_gate":      {},
		"block":          {},
		"gate":           {},
	}
)
