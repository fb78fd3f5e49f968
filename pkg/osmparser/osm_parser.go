package osmparser

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/lintang-b-s/navigatorx-ch/pkg"
	"github.com/lintang-b-s/navigatorx-ch/pkg/costfunction"
	"github.com/lintang-b-s/navigatorx-ch/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-ch/pkg/geo"
	"github.com/lintang-b-s/navigatorx-ch/pkg/util"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"go.uber.org/zap"
)

type node struct {
	id    int64
	coord NodeCoord
}

// ScannerFactory opens a fresh scanner over the same osm data, Parse reads the data twice.
type ScannerFactory func(ctx context.Context) (osm.Scanner, error)

type OsmParser struct {
	wayNodeMap      map[int64]NodeType
	acceptedNodeMap map[int64]NodeCoord
	barrierNodes    map[int64]bool
	nodeIDMap       map[int64]datastructure.Index
	nodeToOsmId     map[datastructure.Index]int64
	maxNodeID       int64
	edgeSet         map[datastructure.Index]map[datastructure.Index]int // from -> to -> index in scanned edges
	useMaxSpeed     bool
	logger          *zap.Logger
	costFunction    costfunction.CostFunction
}

func NewOSMParser(logger *zap.Logger, costFunction costfunction.CostFunction, useMaxSpeed bool) *OsmParser {
	return &OsmParser{
		wayNodeMap:      make(map[int64]NodeType),
		acceptedNodeMap: make(map[int64]NodeCoord),
		barrierNodes:    make(map[int64]bool),
		nodeIDMap:       make(map[int64]datastructure.Index),
		nodeToOsmId:     make(map[datastructure.Index]int64),
		edgeSet:         make(map[datastructure.Index]map[datastructure.Index]int),
		useMaxSpeed:     useMaxSpeed,
		logger:          logger,
		costFunction:    costFunction,
	}
}

func (p *OsmParser) GetOsmNodeId(v datastructure.Index) (int64, bool) {
	id, ok := p.nodeToOsmId[v]
	return id, ok
}

// Parse reads an .osm.pbf file into a graph of original edges.
func (p *OsmParser) Parse(ctx context.Context, mapFile string) (*datastructure.Graph, error) {
	var f *os.File
	open := func(ctx context.Context) (osm.Scanner, error) {
		if f != nil {
			f.Close()
		}
		var err error
		f, err = os.Open(mapFile)
		if err != nil {
			return nil, err
		}
		return osmpbf.New(ctx, f, 0), nil
	}
	defer func() {
		if f != nil {
			f.Close()
		}
	}()
	return p.ParseScanner(ctx, open)
}

/*
ParseScanner. dua pass:
 1. scan ways: tandai node yang dipakai way yang bisa dilewati mobil sebagai END_NODE / BETWEEN_NODE / JUNCTION_NODE.
 2. scan nodes (simpan koordinat + barrier) lalu ways: setiap way dipotong di junction node, node di antaranya di-merge
    jadi satu edge dengan panjang = jumlah haversine.

di file pbf node selalu muncul sebelum way, jadi koordinat sudah ada saat way diproses di pass 2.
*/
func (p *OsmParser) ParseScanner(ctx context.Context, open ScannerFactory) (*datastructure.Graph, error) {
	scanner, err := open(ctx)
	if err != nil {
		return nil, err
	}
	// must not be parallel
	countWays := 0
	for scanner.Scan() {
		way, ok := scanner.Object().(*osm.Way)
		if !ok || len(way.Nodes) < 2 || !acceptOsmWay(way) {
			continue
		}
		if (countWays+1)%50000 == 0 {
			p.logger.Sugar().Infof("scanning openstreetmap ways: %d...", countWays+1)
		}
		countWays++
		p.markWayNodes(way)
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, err
	}
	scanner.Close()

	scanner, err = open(ctx)
	if err != nil {
		return nil, err
	}
	defer scanner.Close()

	scannedEdges := make([]Edge, 0)
	countWays = 0
	countNodes := 0
	for scanner.Scan() {
		switch o := scanner.Object().(type) {
		case *osm.Node:
			if (countNodes+1)%500000 == 0 {
				p.logger.Sugar().Infof("processing openstreetmap nodes: %d...", countNodes+1)
			}
			countNodes++
			p.processNode(o)
		case *osm.Way:
			if len(o.Nodes) < 2 || !acceptOsmWay(o) {
				continue
			}
			if (countWays+1)%100000 == 0 {
				p.logger.Sugar().Infof("processing openstreetmap ways: %d...", countWays+1)
			}
			countWays++
			if err := p.processWay(o, &scannedEdges); err != nil {
				p.logger.Debug("skipping way", zap.Int64("osmWayId", int64(o.ID)), zap.Error(err))
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	graph, err := p.BuildGraph(scannedEdges)
	if err != nil {
		return nil, err
	}
	p.logger.Sugar().Infof("number of vertices: %v", graph.NumberOfVertices())
	p.logger.Sugar().Infof("number of edges: %v", graph.NumberOfEdges())
	return graph, nil
}

func (p *OsmParser) markWayNodes(way *osm.Way) {
	for i, node := range way.Nodes {
		id := int64(node.ID)
		if _, ok := p.wayNodeMap[id]; !ok {
			if i == 0 || i == len(way.Nodes)-1 {
				p.wayNodeMap[id] = END_NODE
			} else {
				p.wayNodeMap[id] = BETWEEN_NODE
			}
		} else {
			p.wayNodeMap[id] = JUNCTION_NODE
		}
	}
}

func (p *OsmParser) processNode(node *osm.Node) {
	id := int64(node.ID)
	p.maxNodeID = max(p.maxNodeID, id)

	if _, ok := p.wayNodeMap[id]; ok {
		p.acceptedNodeMap[id] = NewNodeCoord(node.Lat, node.Lon)
	}
	barrierType := node.Tags.Find("barrier")
	if _, ok := acceptedBarrierType[barrierType]; ok && node.Tags.Find("access") == "no" {
		p.barrierNodes[id] = true
	}
}

type wayDirection struct {
	oneWay  bool
	forward bool
}

func (p *OsmParser) processWay(way *osm.Way, scannedEdges *[]Edge) error {
	hwTag := way.Tags.Find("highway")
	highwayType := pkg.GetHighwayType(hwTag)

	speed := 0.0
	if p.useMaxSpeed {
		if val := way.Tags.Find("maxspeed"); val != "" {
			var err error
			speed, err = parseMaxSpeed(val)
			if err != nil {
				return err
			}
		}
	}
	if speed == 0 {
		speed = costfunction.DefaultSpeed(highwayType) * pkg.NERF_MAXSPEED_OSM
	}

	dir := getWayDirection(way)

	waySegment := []node{}
	for _, wayNode := range way.Nodes {
		coord, ok := p.acceptedNodeMap[int64(wayNode.ID)]
		if !ok {
			// node di luar extract
			return util.WrapErrorf(nil, util.ErrBadParamInput, "way %d references missing node %d", way.ID, wayNode.ID)
		}
		nodeData := node{id: int64(wayNode.ID), coord: coord}
		waySegment = append(waySegment, nodeData)
		if p.isJunctionNode(nodeData.id) && len(waySegment) > 1 {
			p.processSegment(waySegment, speed, highwayType, dir, scannedEdges, int64(way.ID))
			waySegment = []node{nodeData}
		}
	}
	if len(waySegment) > 1 {
		p.processSegment(waySegment, speed, highwayType, dir, scannedEdges, int64(way.ID))
	}
	return nil
}

// parseMaxSpeed. osm maxspeed tag to km/h, values without unit are km/h.
func parseMaxSpeed(val string) (float64, error) {
	factor := 1.0
	switch {
	case strings.HasSuffix(val, "mph"):
		factor = 1.60934
		val = strings.TrimSuffix(val, "mph")
	case strings.HasSuffix(val, "knots"):
		factor = 1.852
		val = strings.TrimSuffix(val, "knots")
	case strings.HasSuffix(val, "km/h"):
		val = strings.TrimSuffix(val, "km/h")
	}
	speed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil {
		return 0, util.WrapErrorf(err, util.ErrBadParamInput, "invalid maxspeed %q", val)
	}
	return speed * factor, nil
}

func isRestricted(value string) bool {
	return value == "no" || value == "restricted"
}

func getWayDirection(way *osm.Way) wayDirection {
	forwardRestricted := isRestricted(way.Tags.Find("vehicle:forward")) ||
		isRestricted(way.Tags.Find("motor_vehicle:forward"))
	backwardRestricted := isRestricted(way.Tags.Find("vehicle:backward")) ||
		isRestricted(way.Tags.Find("motor_vehicle:backward"))
	oneway := way.Tags.Find("oneway")
	junction := way.Tags.Find("junction")

	d := wayDirection{forward: true}
	if oneway == "yes" || oneway == "1" || oneway == "-1" || forwardRestricted || backwardRestricted ||
		junction == "roundabout" || junction == "circular" {
		d.oneWay = true
	}
	if oneway == "-1" || forwardRestricted {
		d.forward = false
	}
	return d
}

func (p *OsmParser) processSegment(segment []node, speed float64, hw pkg.OsmHighwayType, dir wayDirection,
	scannedEdges *[]Edge, wayId int64) {
	if len(segment) == 2 && segment[0].id == segment[1].id {
		return
	}
	if len(segment) > 2 && segment[0].id == segment[len(segment)-1].id {
		// loop, dipotong supaya tidak jadi self loop
		p.splitAtBarriers(segment[:len(segment)-1], speed, hw, dir, scannedEdges, wayId)
		p.splitAtBarriers(segment[len(segment)-2:], speed, hw, dir, scannedEdges, wayId)
		return
	}
	p.splitAtBarriers(segment, speed, hw, dir, scannedEdges, wayId)
}

func (p *OsmParser) splitAtBarriers(segment []node, speed float64, hw pkg.OsmHighwayType, dir wayDirection,
	scannedEdges *[]Edge, wayId int64) {
	waySegment := []node{}
	for _, nodeData := range segment {
		if !p.barrierNodes[nodeData.id] {
			waySegment = append(waySegment, nodeData)
			continue
		}
		if len(waySegment) != 0 {
			waySegment = append(waySegment, nodeData)
			p.addEdge(waySegment, speed, hw, dir, scannedEdges, wayId)
		}
		// copy barrier node dengan id baru, edge sebelum dan sesudah barrier tidak terhubung
		waySegment = []node{p.copyNode(nodeData)}
	}
	if len(waySegment) > 1 {
		p.addEdge(waySegment, speed, hw, dir, scannedEdges, wayId)
	}
}

func (p *OsmParser) copyNode(nodeData node) node {
	p.maxNodeID++
	p.acceptedNodeMap[p.maxNodeID] = nodeData.coord
	return node{id: p.maxNodeID, coord: nodeData.coord}
}

func (p *OsmParser) vertexId(osmId int64) datastructure.Index {
	if v, ok := p.nodeIDMap[osmId]; ok {
		return v
	}
	v := datastructure.Index(len(p.nodeIDMap))
	p.nodeIDMap[osmId] = v
	p.nodeToOsmId[v] = osmId
	return v
}

// addDirected appends e unless a from->to segment is already scanned. of two parallel segments (two ways
// between the same junctions) the shorter one is kept.
func (p *OsmParser) addDirected(e Edge, scannedEdges *[]Edge) {
	from, to := e.GetFrom(), e.GetTo()
	if _, ok := p.edgeSet[from]; !ok {
		p.edgeSet[from] = make(map[datastructure.Index]int)
	}
	idx, ok := p.edgeSet[from][to]
	if !ok {
		p.edgeSet[from][to] = len(*scannedEdges)
		*scannedEdges = append(*scannedEdges, e)
		return
	}
	old := (*scannedEdges)[idx]
	if e.GetLength() < old.GetLength() {
		p.logger.Debug("replacing parallel segment with a shorter way", zap.Int64("oldWayId", old.GetOsmWayId()),
			zap.Int64("newWayId", e.GetOsmWayId()), zap.Float64("oldLength", old.GetLength()),
			zap.Float64("newLength", e.GetLength()))
		(*scannedEdges)[idx] = e
	}
}

func (p *OsmParser) addEdge(segment []node, speed float64, hw pkg.OsmHighwayType, dir wayDirection,
	scannedEdges *[]Edge, wayId int64) {
	first, last := segment[0], segment[len(segment)-1]
	if first.id == last.id {
		return
	}

	distance := 0.0
	for i := 1; i < len(segment); i++ {
		distance += geo.CalculateHaversineDistance(segment[i-1].coord.lat, segment[i-1].coord.lon,
			segment[i].coord.lat, segment[i].coord.lon)
	}
	distanceInMeter := distance * 1000

	from, to := p.vertexId(first.id), p.vertexId(last.id)

	if !dir.oneWay || dir.forward {
		p.addDirected(NewEdge(from, to, distanceInMeter, speed, hw, wayId), scannedEdges)
	}
	if !dir.oneWay || !dir.forward {
		p.addDirected(NewEdge(to, from, distanceInMeter, speed, hw, wayId), scannedEdges)
	}
}

func (p *OsmParser) isJunctionNode(nodeID int64) bool {
	return p.wayNodeMap[nodeID] == JUNCTION_NODE
}

func acceptOsmWay(way *osm.Way) bool {
	highway := way.Tags.Find("highway")
	junction := way.Tags.Find("junction")
	if highway != "" {
		_, ok := acceptedHighway[highway]
		return ok
	}
	return junction != ""
}
