package workflow

import (
	"container/heap"
	"context"
	"sort"
)

// RunFunc executes one node against a snapshot of the state and returns
// the fields it produced.
type RunFunc func(ctx context.Context, s State) (Update, error)

// Node is a single workflow stage.
type Node struct {
	Name string
	// Writes is the set of fields this node owns. No two nodes in a
	// workflow may own the same field.
	Writes []Field
	Run    RunFunc
}

type edge struct {
	from, to string
}

// Builder collects nodes and edges and compiles them into a Workflow.
type Builder struct {
	nodes map[string]Node
	edges []edge
	entry string
	err   error
}

func New() *Builder {
	return &Builder{nodes: make(map[string]Node)}
}

func (b *Builder) AddNode(n Node) *Builder {
	if b.err != nil {
		return b
	}
	switch {
	case n.Name == "":
		b.err = invalidf("node with empty name")
	case n.Run == nil:
		b.err = invalidf("node %q has no run function", n.Name)
	default:
		if _, dup := b.nodes[n.Name]; dup {
			b.err = invalidf("duplicate node %q", n.Name)
			return b
		}
		b.nodes[n.Name] = n
	}
	return b
}

// AddEdge declares that to may only run after from completes.
func (b *Builder) AddEdge(from, to string) *Builder {
	b.edges = append(b.edges, edge{from: from, to: to})
	return b
}

// SetEntryPoint names the node the run must start from. When unset, the
// single node without incoming edges is used.
func (b *Builder) SetEntryPoint(name string) *Builder {
	b.entry = name
	return b
}

// Workflow is a validated DAG of nodes, ready to run.
type Workflow struct {
	nodes    []Node
	index    map[string]int
	outgoing [][]int
	incoming [][]int
	indeg    []int
	order    []int
	entry    int
}

// Compile validates the graph: every edge endpoint exists, every field has
// at most one owner, there are no cycles, and exactly one entry node exists.
func (b *Builder) Compile() (*Workflow, error) {
	if b.err != nil {
		return nil, b.err
	}
	if len(b.nodes) == 0 {
		return nil, invalidf("no nodes")
	}

	names := make([]string, 0, len(b.nodes))
	for name := range b.nodes {
		names = append(names, name)
	}
	sort.Strings(names)

	w := &Workflow{
		nodes:    make([]Node, len(names)),
		index:    make(map[string]int, len(names)),
		outgoing: make([][]int, len(names)),
		incoming: make([][]int, len(names)),
		indeg:    make([]int, len(names)),
	}
	for i, name := range names {
		w.nodes[i] = b.nodes[name]
		w.index[name] = i
	}

	seen := make(map[edge]bool, len(b.edges))
	for _, e := range b.edges {
		from, ok := w.index[e.from]
		if !ok {
			return nil, invalidf("edge %s -> %s: unknown node %q", e.from, e.to, e.from)
		}
		to, ok := w.index[e.to]
		if !ok {
			return nil, invalidf("edge %s -> %s: unknown node %q", e.from, e.to, e.to)
		}
		if from == to {
			return nil, cycleError([]string{e.from, e.to})
		}
		if seen[e] {
			continue
		}
		seen[e] = true
		w.outgoing[from] = append(w.outgoing[from], to)
		w.incoming[to] = append(w.incoming[to], from)
		w.indeg[to]++
	}
	for i := range w.outgoing {
		sort.Ints(w.outgoing[i])
		sort.Ints(w.incoming[i])
	}

	if err := w.validateOwnership(); err != nil {
		return nil, err
	}
	if err := w.validateAcyclic(); err != nil {
		return nil, err
	}
	if err := w.resolveEntry(b.entry); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *Workflow) validateOwnership() error {
	owners := make(map[Field]string)
	for _, n := range w.nodes {
		for _, f := range n.Writes {
			if prev, ok := owners[f]; ok && prev != n.Name {
				return &StateConflictError{Field: f, Nodes: []string{prev, n.Name}, Msg: "field owned by more than one node"}
			}
			owners[f] = n.Name
		}
	}
	return nil
}

// resolveEntry requires exactly one node without predecessors. In an
// acyclic graph with a single root every node is reachable from it.
func (w *Workflow) resolveEntry(want string) error {
	var roots []int
	for i, d := range w.indeg {
		if d == 0 {
			roots = append(roots, i)
		}
	}
	if len(roots) != 1 {
		rootNames := make([]string, 0, len(roots))
		for _, r := range roots {
			rootNames = append(rootNames, w.nodes[r].Name)
		}
		return noEntryf("expected exactly one node without predecessors, found %d %v", len(roots), rootNames)
	}
	if want != "" {
		idx, ok := w.index[want]
		if !ok {
			return noEntryf("entry node %q does not exist", want)
		}
		if idx != roots[0] {
			return noEntryf("entry node %q has predecessors; %q is the only root", want, w.nodes[roots[0]].Name)
		}
	}
	w.entry = roots[0]
	return nil
}

// validateAcyclic runs Kahn's algorithm; a short ordering means a cycle.
func (w *Workflow) validateAcyclic() error {
	order := w.topoOrderIndices()
	if len(order) == len(w.nodes) {
		w.order = order
		return nil
	}
	return cycleError(w.findCycle())
}

type intMinHeap []int

func (h intMinHeap) Len() int           { return len(h) }
func (h intMinHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h intMinHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *intMinHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *intMinHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// topoOrderIndices returns a deterministic topological order; ties are
// broken by node name.
func (w *Workflow) topoOrderIndices() []int {
	indeg := make([]int, len(w.indeg))
	copy(indeg, w.indeg)

	ready := &intMinHeap{}
	heap.Init(ready)
	for i := range indeg {
		if indeg[i] == 0 {
			heap.Push(ready, i)
		}
	}

	out := make([]int, 0, len(indeg))
	for ready.Len() > 0 {
		n := heap.Pop(ready).(int)
		out = append(out, n)
		for _, m := range w.outgoing[n] {
			indeg[m]--
			if indeg[m] == 0 {
				heap.Push(ready, m)
			}
		}
	}
	return out
}

// findCycle returns one cycle as a closed path of node names.
func (w *Workflow) findCycle() []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make([]int, len(w.nodes))
	parent := make([]int, len(w.nodes))
	for i := range parent {
		parent[i] = -1
	}

	var cycle []int
	var dfs func(u int) bool
	dfs = func(u int) bool {
		color[u] = gray
		for _, v := range w.outgoing[u] {
			if color[v] == white {
				parent[v] = u
				if dfs(v) {
					return true
				}
				continue
			}
			if color[v] == gray {
				cycle = append(cycle, v)
				for cur := u; cur != -1 && cur != v; cur = parent[cur] {
					cycle = append(cycle, cur)
				}
				cycle = append(cycle, v)
				return true
			}
		}
		color[u] = black
		return false
	}

	for i := range w.nodes {
		if color[i] == white && dfs(i) {
			break
		}
	}

	out := make([]string, 0, len(cycle))
	for i := len(cycle) - 1; i >= 0; i-- {
		out = append(out, w.nodes[cycle[i]].Name)
	}
	return out
}

// Entry is the name of the node every run starts from.
func (w *Workflow) Entry() string {
	return w.nodes[w.entry].Name
}

// Order returns node names in the order a sequential run executes them.
func (w *Workflow) Order() []string {
	out := make([]string, len(w.order))
	for i, idx := range w.order {
		out[i] = w.nodes[idx].Name
	}
	return out
}

// Terminals returns the nodes without outgoing edges, sorted by name.
func (w *Workflow) Terminals() []string {
	var out []string
	for i, n := range w.nodes {
		if len(w.outgoing[i]) == 0 {
			out = append(out, n.Name)
		}
	}
	return out
}
