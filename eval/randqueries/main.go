package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"math"
	"net/http"
	"os"
	"time"

	_ "net/http/pprof"

	"github.com/lintang-b-s/navigatorx-ch/pkg"
	"github.com/lintang-b-s/navigatorx-ch/pkg/concurrent"
	da "github.com/lintang-b-s/navigatorx-ch/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-ch/pkg/engine"
	"github.com/lintang-b-s/navigatorx-ch/pkg/engine/routing"
	log "github.com/lintang-b-s/navigatorx-ch/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"
)

var (
	graphFile  = flag.String("graph", "./data/ch.graph", "contracted graph file")
	numQueries = flag.Int("n", 1000, "number of random queries")
	seed       = flag.Uint64("seed", 42, "random seed")
	numWorkers = flag.Int("workers", 4, "number of query workers")
	outFile    = flag.String("out", "rand_queries_result.txt", "result file")
)

type spParam struct {
	row  int
	s, t da.Index
}

type spResult struct {
	spParam
	chWeight, dijkstraWeight float64
	chDuration               time.Duration
	dijkstraDuration         time.Duration
	chSettled                int
	err                      error
}

func main() {
	flag.Parse()
	logger, err := log.New()
	if err != nil {
		panic(err)
	}

	re, err := engine.NewEngine(*graphFile, 0, 1, logger)
	if err != nil {
		logger.Fatal("load engine", zap.Error(err))
	}
	ch := re.GetRoutingEngine()
	g := ch.GetGraph()

	r := rand.New(rand.NewSource(*seed))
	n := g.NumberOfVertices()
	queries := make([]spParam, *numQueries)
	for i := range queries {
		queries[i] = spParam{row: i, s: da.Index(r.Intn(n)), t: da.Index(r.Intn(n))}
	}

	go func() {
		_ = http.ListenAndServe("localhost:6060", nil)
	}()

	calcSP := func(p spParam) spResult {
		ctx := context.Background()
		res := spResult{spParam: p}

		before := time.Now()
		bs := routing.NewCHBidirectionalSearch(ch)
		w, found, err := bs.CalculateWeight(ctx, p.s, p.t, 0)
		res.chDuration = time.Since(before)
		res.chSettled = bs.GetNumSettledVertices()
		if err != nil {
			res.err = err
			return res
		}
		res.chWeight = pkg.INF_WEIGHT
		if found {
			res.chWeight = w
		}

		before = time.Now()
		dist, err := routing.NewDijkstra(g).ShortestPaths(ctx, p.s)
		res.dijkstraDuration = time.Since(before)
		if err != nil {
			res.err = err
			return res
		}
		res.dijkstraWeight = dist[p.t]
		return res
	}

	results := make([]spResult, len(queries))
	for _, res := range concurrent.RunAll(*numWorkers, queries, calcSP) {
		results[res.row] = res
	}

	fout, err := os.Create(*outFile)
	if err != nil {
		logger.Fatal("create result file", zap.Error(err))
	}
	defer fout.Close()
	w := bufio.NewWriter(fout)
	defer w.Flush()

	var (
		mismatches             int
		totalCH, totalDijkstra time.Duration
		totalSettled           int
	)
	fmt.Fprintln(w, "s t ch_weight dijkstra_weight ch_us dijkstra_us ch_settled")
	for _, res := range results {
		if res.err != nil {
			logger.Fatal("query failed", zap.Int("row", res.row), zap.Error(res.err))
		}
		if math.Abs(res.chWeight-res.dijkstraWeight) > 1e-6 {
			mismatches++
			logger.Warn("ch weight differs from dijkstra", zap.Uint32("s", uint32(res.s)), zap.Uint32("t", uint32(res.t)),
				zap.Float64("ch", res.chWeight), zap.Float64("dijkstra", res.dijkstraWeight))
		}
		totalCH += res.chDuration
		totalDijkstra += res.dijkstraDuration
		totalSettled += res.chSettled
		fmt.Fprintf(w, "%d %d %f %f %d %d %d\n", res.s, res.t, res.chWeight, res.dijkstraWeight,
			res.chDuration.Microseconds(), res.dijkstraDuration.Microseconds(), res.chSettled)
	}

	if len(results) > 0 {
		k := time.Duration(len(results))
		logger.Sugar().Infof("%d queries, %d mismatches. avg ch query %s (%d settled), avg dijkstra %s, speedup %.1fx",
			len(results), mismatches, totalCH/k, totalSettled/len(results), totalDijkstra/k,
			float64(totalDijkstra)/math.Max(float64(totalCH), 1))
	}
}
