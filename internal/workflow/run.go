package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"
)

type runConfig struct {
	parallelism int
	logger      *slog.Logger
}

// Option configures a single Run.
type Option func(*runConfig)

// WithParallelism bounds how many nodes may execute at once. Values below
// two select the sequential executor.
func WithParallelism(n int) Option {
	return func(c *runConfig) { c.parallelism = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *runConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

type nodeResult struct {
	idx    int
	update Update
	err    error
}

// Run executes every node once, in dependency order, starting from the
// entry node with initial as the state. Each node sees a snapshot that
// contains the updates of all its predecessors.
//
// The first node failure aborts the run: nodes not yet started are
// skipped and Run returns the error with a zero State.
func (w *Workflow) Run(ctx context.Context, initial State, opts ...Option) (State, error) {
	cfg := runConfig{parallelism: 1, logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	start := time.Now()
	var (
		final State
		err   error
	)
	if cfg.parallelism <= 1 {
		final, err = w.runSequential(ctx, initial.clone(), cfg)
	} else {
		final, err = w.runConcurrent(ctx, initial.clone(), cfg)
	}
	if err != nil {
		cfg.logger.Warn("workflow failed",
			slog.String("entry", w.Entry()),
			slog.Duration("elapsed", time.Since(start)),
			slog.Any("error", err),
		)
		return State{}, err
	}
	cfg.logger.Debug("workflow completed",
		slog.String("entry", w.Entry()),
		slog.Int("nodes", len(w.nodes)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return final, nil
}

func (w *Workflow) runSequential(ctx context.Context, st State, cfg runConfig) (State, error) {
	written := make(map[Field]string)
	for _, idx := range w.order {
		if err := ctx.Err(); err != nil {
			return State{}, err
		}
		upd, err := w.execNode(ctx, idx, st.clone(), cfg.logger)
		if err != nil {
			return State{}, err
		}
		st, err = w.apply(idx, upd, st, written)
		if err != nil {
			return State{}, err
		}
	}
	return st, nil
}

// runConcurrent launches a node as soon as its last predecessor has been
// merged. Merging happens on the calling goroutine only.
func (w *Workflow) runConcurrent(ctx context.Context, st State, cfg runConfig) (State, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.parallelism)

	// Each node reports exactly once, so the coordinator never blocks a
	// finishing node even while it is itself waiting in g.Go.
	results := make(chan nodeResult, len(w.nodes))
	indeg := slices.Clone(w.indeg)
	written := make(map[Field]string)

	running := 0
	launch := func(idx int) {
		running++
		snapshot := st.clone()
		g.Go(func() error {
			upd, err := w.execNode(gctx, idx, snapshot, cfg.logger)
			results <- nodeResult{idx: idx, update: upd, err: err}
			return err
		})
	}

	var runErr error
	launch(w.entry)
	for running > 0 {
		res := <-results
		running--
		if runErr != nil {
			continue
		}
		if res.err != nil {
			runErr = res.err
			cancel()
			continue
		}
		next, err := w.apply(res.idx, res.update, st, written)
		if err != nil {
			runErr = err
			cancel()
			continue
		}
		st = next
		for _, m := range w.outgoing[res.idx] {
			indeg[m]--
			if indeg[m] == 0 {
				launch(m)
			}
		}
	}
	_ = g.Wait()

	if runErr != nil {
		return State{}, runErr
	}
	return st, nil
}

func (w *Workflow) execNode(ctx context.Context, idx int, snapshot State, logger *slog.Logger) (upd Update, err error) {
	n := w.nodes[idx]
	start := time.Now()
	logger.Debug("node started", slog.String("node", n.Name))

	defer func() {
		if r := recover(); r != nil {
			upd = nil
			err = &NodeExecutionError{Node: n.Name, Cause: fmt.Errorf("panic: %v", r)}
		}
		if err != nil {
			logger.Warn("node failed",
				slog.String("node", n.Name),
				slog.Duration("elapsed", time.Since(start)),
				slog.Any("error", err),
			)
			return
		}
		logger.Debug("node finished",
			slog.String("node", n.Name),
			slog.Duration("elapsed", time.Since(start)),
		)
	}()

	upd, err = n.Run(ctx, snapshot)
	if err != nil {
		return nil, &NodeExecutionError{Node: n.Name, Cause: err}
	}
	return upd, nil
}

// apply checks that every field in upd is owned by the node and has not
// been written earlier in this run, then merges it.
func (w *Workflow) apply(idx int, upd Update, st State, written map[Field]string) (State, error) {
	n := w.nodes[idx]
	for _, f := range upd.Fields() {
		if !slices.Contains(n.Writes, f) {
			return State{}, &StateConflictError{Field: f, Nodes: []string{n.Name}, Msg: "field not declared in node write set"}
		}
		if prev, ok := written[f]; ok {
			return State{}, &StateConflictError{Field: f, Nodes: []string{prev, n.Name}, Msg: "field written twice in one run"}
		}
	}
	next, err := st.Merge(upd)
	if err != nil {
		return State{}, &NodeExecutionError{Node: n.Name, Cause: err}
	}
	for _, f := range upd.Fields() {
		written[f] = n.Name
	}
	return next, nil
}
