package datastructure

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/lintang-b-s/navigatorx-ch/pkg/util"
)

// WriteGraph writes the (contracted) graph as bzip2 compressed text:
//
//	numVertices numEdges numSCCs
//	id lat lon level                      (numVertices lines)
//	tail head weight dist contractedVertex (numEdges lines)
//	scc scc scc ...                        (one line, empty if RunKosaraju was not called)
//
// unlinked edges are not written.
func (g *Graph) WriteGraph(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	bz, err := bzip2.NewWriter(f, &bzip2.WriterConfig{})
	if err != nil {
		return err
	}

	w := bufio.NewWriter(bz)

	fmt.Fprintf(w, "%d %d %d\n", len(g.vertices), g.NumberOfEdges(), len(g.sccs))

	for _, v := range g.vertices {
		latF := strconv.FormatFloat(v.lat, 'f', -1, 64)
		lonF := strconv.FormatFloat(v.lon, 'f', -1, 64)
		fmt.Fprintf(w, "%d %s %s %d\n", v.id, latF, lonF, v.GetLevel())
	}

	for v := range g.outEdges {
		for _, eId := range g.outEdges[v] {
			e := g.edges[eId]
			weightF := strconv.FormatFloat(e.weight, 'f', -1, 64)
			distF := strconv.FormatFloat(e.dist, 'f', -1, 64)
			fmt.Fprintf(w, "%d %d %s %s %d\n", e.tail, e.head, weightF, distF, e.contractedVertex)
		}
	}

	sccs := make([]string, len(g.sccs))
	for i, c := range g.sccs {
		sccs[i] = strconv.FormatUint(uint64(c), 10)
	}
	fmt.Fprintf(w, "%s\n", strings.Join(sccs, " "))

	if err := w.Flush(); err != nil {
		return err
	}
	return bz.Close()
}

func ParseIndex(s string) (Index, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return Index(v), nil
}

func ReadGraph(filename string) (*Graph, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	bz, err := bzip2.NewReader(f, nil)
	if err != nil {
		return nil, err
	}
	defer bz.Close()

	br := bufio.NewReaderSize(bz, 1<<20)

	line, err := util.ReadLine(br)
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	header, err := util.Fields(line, 3)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGraphIntegrity, err)
	}
	numVertices, err := strconv.Atoi(header[0])
	if err != nil {
		return nil, err
	}
	numEdges, err := strconv.Atoi(header[1])
	if err != nil {
		return nil, err
	}
	numSCCs, err := strconv.Atoi(header[2])
	if err != nil {
		return nil, err
	}

	vertices := make([]*Vertex, numVertices)
	for i := 0; i < numVertices; i++ {
		line, err := util.ReadLine(br)
		if err != nil {
			return nil, fmt.Errorf("read vertex %d: %w", i, err)
		}
		fields, err := util.Fields(line, 4)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrGraphIntegrity, err)
		}
		id, err := ParseIndex(fields[0])
		if err != nil {
			return nil, err
		}
		if int(id) != i {
			return nil, fmt.Errorf("%w: vertex line %d has id %d", ErrGraphIntegrity, i, id)
		}
		lat, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, err
		}
		lon, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, err
		}
		level, err := strconv.Atoi(fields[3])
		if err != nil {
			return nil, err
		}
		vertices[i] = NewVertex(lat, lon, id)
		vertices[i].level = level
	}

	g := NewGraph(vertices)
	for i := 0; i < numEdges; i++ {
		line, err := util.ReadLine(br)
		if err != nil {
			return nil, fmt.Errorf("read edge %d: %w", i, err)
		}
		fields, err := util.Fields(line, 5)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrGraphIntegrity, err)
		}
		tail, err := ParseIndex(fields[0])
		if err != nil {
			return nil, err
		}
		head, err := ParseIndex(fields[1])
		if err != nil {
			return nil, err
		}
		weight, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, err
		}
		dist, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return nil, err
		}
		cv, err := strconv.ParseInt(fields[4], 10, 32)
		if err != nil {
			return nil, err
		}
		if _, err := g.addEdge(tail, head, weight, dist, int32(cv)); err != nil {
			return nil, fmt.Errorf("%w: edge line %d: %v", ErrGraphIntegrity, i, err)
		}
	}

	line, err = util.ReadLine(br)
	if err != nil {
		return nil, fmt.Errorf("read sccs: %w", err)
	}
	if numSCCs > 0 {
		fields, err := util.Fields(line, numSCCs)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrGraphIntegrity, err)
		}
		sccs := make([]Index, numSCCs)
		for i, s := range fields {
			if sccs[i], err = ParseIndex(s); err != nil {
				return nil, err
			}
		}
		g.setSCCs(sccs)
	}

	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}
