package contractor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lintang-b-s/navigatorx-ch/pkg/concurrent"
	da "github.com/lintang-b-s/navigatorx-ch/pkg/datastructure"
	"github.com/lintang-b-s/navigatorx-ch/pkg/util"
	"go.uber.org/zap"
)

var (
	ErrAlreadyContracted = errors.New("vertex already contracted")
)

// ContractionHook receives the contracted vertex and its adjacency snapshot.
type ContractionHook func(v da.Index, neighbours []da.Neighbour)

type ContractionStats struct {
	Contracted       int
	ShortcutsAdded   int
	ShortcutsUpdated int
	Reevaluations    int // lazy priority recomputations in SelectNext
	Duration         time.Duration
}

/*
Contractor. contraction hierarchies preprocessing.

sequential loop: SelectNext mengambil vertex dengan priority terkecil (lazy update), Contract menambahkan shortcut
untuk setiap pasangan (u,w) tetangga v yang tidak punya witness path, lalu level v di-set ke level counter.
priority tetangga v hanya di-invalidate, dihitung ulang saat vertex tersebut muncul di top of heap.

Robert Geisberger, Peter Sanders, Dominik Schultes, and Daniel Delling. "Contraction Hierarchies: Faster and Simpler
Hierarchical Routing in Road Networks". WEA 2008.
*/
type Contractor struct {
	graph  *da.Graph
	logger *zap.Logger
	cfg    util.ContractionConfig

	witness  WitnessCalculator
	priority PriorityCalculator
	calcPool sync.Pool

	queue *ContractionQueue
	level int

	beforeHooks []ContractionHook
	afterHooks  []ContractionHook

	stats ContractionStats
}

func NewContractor(graph *da.Graph, cfg util.ContractionConfig, logger *zap.Logger) (*Contractor, error) {
	priority, err := NewPriorityCalculator(graph, cfg.PriorityPolicy, cfg.HopLimit, cfg.MaxSettledNodes)
	if err != nil {
		return nil, err
	}
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = 1
	}

	c := &Contractor{
		graph:    graph,
		logger:   logger,
		cfg:      cfg,
		witness:  NewDijkstraWitnessCalculator(graph, WithMaxSettledNodes(cfg.MaxSettledNodes)),
		priority: priority,
		queue:    NewContractionQueue(graph.NumberOfVertices()),
		level:    graph.MaxLevel() + 1,
	}
	c.calcPool = sync.Pool{
		New: func() any {
			calc, _ := NewPriorityCalculator(graph, cfg.PriorityPolicy, cfg.HopLimit, cfg.MaxSettledNodes)
			return calc
		},
	}
	return c, nil
}

func (c *Contractor) OnBeforeContraction(h ContractionHook) {
	c.beforeHooks = append(c.beforeHooks, h)
}

func (c *Contractor) OnAfterContraction(h ContractionHook) {
	c.afterHooks = append(c.afterHooks, h)
}

func (c *Contractor) Stats() ContractionStats {
	return c.stats
}

// Level. level that the next contracted vertex gets.
func (c *Contractor) Level() int {
	return c.level
}

func (c *Contractor) Queue() *ContractionQueue {
	return c.queue
}

type priorityResult struct {
	vertex   da.Index
	priority float64
	err      error
}

// Enqueue computes the initial priority of every uncontracted vertex in vertices and queues it. priorities are
// computed concurrently, the graph is only read here.
func (c *Contractor) Enqueue(ctx context.Context, vertices []da.Index) error {
	jobs := make([]da.Index, 0, len(vertices))
	for _, v := range vertices {
		if !c.graph.IsValidVertex(v) {
			return util.WrapErrorf(da.ErrVertexNotFound, util.ErrBadParamInput, "enqueue vertex %d", v)
		}
		if c.graph.IsContracted(v) || c.queue.Contains(v) {
			continue
		}
		jobs = append(jobs, v)
	}
	if len(jobs) == 0 {
		return nil
	}

	if c.cfg.NumWorkers == 1 || len(jobs) < 2*c.cfg.NumWorkers {
		for _, v := range jobs {
			if util.StopConcurrentOperation(ctx) {
				return ctx.Err()
			}
			p, err := c.priority.Calculate(c.level, v)
			if err != nil {
				return err
			}
			c.queue.Push(v, p)
		}
		return nil
	}

	level := c.level
	results := concurrent.RunAll(c.cfg.NumWorkers, jobs, func(v da.Index) priorityResult {
		if util.StopConcurrentOperation(ctx) {
			return priorityResult{vertex: v, err: ctx.Err()}
		}
		calc := c.calcPool.Get().(PriorityCalculator)
		defer c.calcPool.Put(calc)
		p, err := calc.Calculate(level, v)
		return priorityResult{vertex: v, priority: p, err: err}
	})

	var firstErr error
	for _, res := range results {
		if res.err != nil {
			if firstErr == nil {
				firstErr = res.err
			}
			continue
		}
		c.queue.Push(res.vertex, res.priority)
	}
	return firstErr
}

// SelectNext pops the vertex to contract next. an invalidated top is recomputed and only accepted if it still
// beats the next queued vertex, otherwise it is pushed back with the fresh priority.
func (c *Contractor) SelectNext() (da.Index, bool, error) {
	for {
		v, _, ok := c.queue.Peek()
		if !ok {
			return 0, false, nil
		}
		stale := c.queue.IsInvalidated(v)
		c.queue.Pop()
		if c.graph.IsContracted(v) {
			continue
		}
		if !stale {
			return v, true, nil
		}

		c.stats.Reevaluations++
		p, err := c.priority.Calculate(c.level, v)
		if err != nil {
			return 0, false, err
		}
		next, nextP, ok := c.queue.Peek()
		if !ok || less(p, v, nextP, next) {
			return v, true, nil
		}
		c.queue.Push(v, p)
	}
}

// Contract removes v from the uncontracted graph: adds the shortcuts between its neighbours that have no witness,
// stamps its level and invalidates the priority of its neighbours.
func (c *Contractor) Contract(v da.Index) error {
	if !c.graph.IsValidVertex(v) {
		return util.WrapErrorf(da.ErrVertexNotFound, util.ErrBadParamInput, "contract vertex %d", v)
	}
	if c.graph.IsContracted(v) {
		return util.WrapErrorf(ErrAlreadyContracted, util.ErrConflict, "vertex %d has level %d",
			v, c.graph.GetVertexLevel(v))
	}
	c.queue.Remove(v)

	nb := collectNeighbourhood(c.graph, v)
	if len(c.beforeHooks) > 0 {
		snapshot := c.graph.GetNeighbours(v)
		for _, h := range c.beforeHooks {
			h(v, snapshot)
		}
	}

	// all witness searches run before the first shortcut is inserted, a new shortcut goes through v
	shortcuts, err := findRequiredShortcuts(c.witness, v, nb, c.cfg.HopLimit)
	if err != nil {
		return err
	}
	for _, s := range shortcuts {
		status, err := c.graph.AddOrUpdateShortcut(s.from, s.to, s.weight, v)
		if err != nil {
			return err
		}
		switch status {
		case da.SHORTCUT_ADDED:
			c.stats.ShortcutsAdded++
		case da.SHORTCUT_UPDATED:
			c.stats.ShortcutsUpdated++
		}
	}

	if err := c.graph.SetVertexLevel(v, c.level); err != nil {
		return err
	}
	c.level++
	c.stats.Contracted++

	for _, u := range nb.touched() {
		c.queue.Invalidate(u)
	}

	if len(c.afterHooks) > 0 {
		snapshot := c.graph.GetNeighbours(v)
		for _, h := range c.afterHooks {
			h(v, snapshot)
		}
	}

	if c.cfg.LogInterval > 0 && c.stats.Contracted%c.cfg.LogInterval == 0 {
		c.logger.Sugar().Infof("contracted %d vertices, remaining in queue: %d, shortcuts added: %d",
			c.stats.Contracted, c.queue.Len(), c.stats.ShortcutsAdded)
	}
	return nil
}

// Start contracts vertices (every uncontracted vertex if none is given) until the queue is empty. vertices that
// are not passed stay uncontracted and form the core of the hierarchy.
func (c *Contractor) Start(ctx context.Context, vertices ...da.Index) error {
	start := time.Now()
	if len(vertices) == 0 {
		vertices = make([]da.Index, 0, c.graph.NumberOfVertices())
		for v := 0; v < c.graph.NumberOfVertices(); v++ {
			vertices = append(vertices, da.Index(v))
		}
	}

	c.logger.Info("computing initial contraction priorities", zap.Int("vertices", len(vertices)),
		zap.String("policy", string(c.cfg.PriorityPolicy)), zap.Int("workers", c.cfg.NumWorkers))
	if err := c.Enqueue(ctx, vertices); err != nil {
		return err
	}

	for {
		if util.StopConcurrentOperation(ctx) {
			return ctx.Err()
		}
		v, ok, err := c.SelectNext()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if err := c.Contract(v); err != nil {
			return err
		}
	}

	c.stats.Duration += time.Since(start)
	c.logger.Info("contraction finished",
		zap.Int("contracted", c.stats.Contracted),
		zap.Int("shortcuts_added", c.stats.ShortcutsAdded),
		zap.Int("shortcuts_updated", c.stats.ShortcutsUpdated),
		zap.Int("reevaluations", c.stats.Reevaluations),
		zap.Duration("duration", c.stats.Duration))
	return nil
}

// ContractInOrder contracts the vertices in the given order, skipping the priority queue.
func (c *Contractor) ContractInOrder(ctx context.Context, order []da.Index) error {
	start := time.Now()
	for _, v := range order {
		if util.StopConcurrentOperation(ctx) {
			return ctx.Err()
		}
		if err := c.Contract(v); err != nil {
			return err
		}
	}
	c.stats.Duration += time.Since(start)
	return nil
}
