package compaction

import (
	"container/heap"
	"fmt"
	"sort"

	"github.com/sievedb/sieve/pkg/common/cursor"
)

// Options holds configuration for graph construction and candidate selection
type Options struct {
	// MaxCompactionBytes bounds the projected total size of any proposed
	// merge window. Windows that would exceed it are not extended further.
	MaxCompactionBytes uint64
}

// DefaultOptions returns options with recommended default values
func DefaultOptions() Options {
	return Options{
		MaxCompactionBytes: 1 << 34, // 16GB
	}
}

// pairSet is an ordered set of directed edges stored as index pairs.
// Keeping edges as sorted (src, dst) pairs instead of a pointer graph keeps
// the whole structure flat and lets an edit remap indices in one pass.
type pairSet struct {
	pairs [][2]int
}

func (s *pairSet) insert(u, v int) {
	i := sort.Search(len(s.pairs), func(i int) bool {
		p := s.pairs[i]
		return p[0] > u || (p[0] == u && p[1] >= v)
	})
	if i < len(s.pairs) && s.pairs[i] == [2]int{u, v} {
		return
	}
	s.pairs = append(s.pairs, [2]int{})
	copy(s.pairs[i+1:], s.pairs[i:])
	s.pairs[i] = [2]int{u, v}
}

// neighbors returns every dst with an edge (src, dst), in ascending order.
func (s *pairSet) neighbors(src int) []int {
	start := sort.Search(len(s.pairs), func(i int) bool {
		return s.pairs[i][0] >= src
	})
	var out []int
	for i := start; i < len(s.pairs) && s.pairs[i][0] == src; i++ {
		out = append(out, s.pairs[i][1])
	}
	return out
}

func (s *pairSet) len() int {
	return len(s.pairs)
}

// vertex holds the per-file state derived during graph construction. It is
// rebuilt wholesale with the graph and never persisted.
type vertex struct {
	// level is the topological depth of the vertex's color; level 0 is oldest
	level int

	// color is the representative vertex index of the SCC this vertex is in
	color int

	// peers is the number of vertices sharing this vertex's color
	peers int

	// colorBytes is the total file size across all vertices of this color
	colorBytes uint64
}

// Graph is the merge-dependency graph over a set of file metadata. Files
// with overlapping key ranges are linked by edges ordered by timestamp;
// files whose timestamp ranges also overlap cannot be linearized and are
// collapsed into one strongly connected component (a "color") that must
// merge atomically. The condensed color graph is a DAG leveled oldest-first.
//
// The graph owns no files. It is indexed by position into its metadata
// list, in arena style: vertices in a slice, edges as index pairs, colors
// as reused vertex indices.
type Graph struct {
	opts  Options
	files []*FileMetadata

	byFingerprint map[cursor.Fingerprint]int

	vertices []vertex

	// forward edges run newer -> older; reverse is the mirror (older -> newer)
	forward pairSet
	reverse pairSet

	// colors holds the representative index of every SCC, ascending
	colors []int

	// colorAdj is the condensed color graph oriented old -> new, with its
	// mirror colorRev. Because edges are derived from every overlapping
	// pair, colorAdj is already transitively closed over overlapping colors.
	colorAdj pairSet
	colorRev pairSet
}

// NewGraph builds the merge-dependency graph for the given file metadata.
// It fails with ErrCorruption if any file has an inverted timestamp range.
func NewGraph(opts Options, files []*FileMetadata) (*Graph, error) {
	g := &Graph{
		opts:          opts,
		files:         append([]*FileMetadata(nil), files...),
		byFingerprint: make(map[cursor.Fingerprint]int, len(files)),
	}

	for i, f := range g.files {
		if f.SmallestTimestamp > f.BiggestTimestamp {
			return nil, fmt.Errorf("%w: file %s has smallest timestamp %d > biggest timestamp %d",
				ErrCorruption, f.Fingerprint, f.SmallestTimestamp, f.BiggestTimestamp)
		}
		if _, ok := g.byFingerprint[f.Fingerprint]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateFile, f.Fingerprint)
		}
		g.byFingerprint[f.Fingerprint] = i
	}

	for i := range g.files {
		for j := i + 1; j < len(g.files); j++ {
			g.classifyPair(i, j)
		}
	}

	g.rebuild()
	return g, nil
}

// classifyPair adds the edges induced by files i and j. Every overlapping
// pair gets an edge, which is what makes the condensed color graph a
// transitive closure over overlapping colors.
func (g *Graph) classifyPair(i, j int) {
	if !g.files[i].Overlaps(g.files[j]) {
		return
	}
	switch {
	case g.files[i].BiggestTimestamp < g.files[j].SmallestTimestamp:
		// i is entirely older than j
		g.forward.insert(j, i)
		g.reverse.insert(i, j)
	case g.files[j].BiggestTimestamp < g.files[i].SmallestTimestamp:
		// j is entirely older than i
		g.forward.insert(i, j)
		g.reverse.insert(j, i)
	default:
		// Timestamp ranges overlap: neither file is provably older, so
		// edges both ways force the pair into one strongly connected
		// component that must merge atomically.
		g.forward.insert(i, j)
		g.forward.insert(j, i)
		g.reverse.insert(i, j)
		g.reverse.insert(j, i)
	}
}

// Edit incrementally updates the graph after a compaction commits: removed
// files leave, added files are spliced in, surviving adjacency is remapped,
// and only pairs touching an added file are re-derived before colors and
// levels are recomputed. Full construction is O(n^2) over all pairs; an
// edit only pays for the files that changed.
func (g *Graph) Edit(removed []cursor.Fingerprint, added []*FileMetadata) error {
	drop := make(map[int]bool, len(removed))
	for _, fp := range removed {
		idx, ok := g.byFingerprint[fp]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownFile, fp)
		}
		drop[idx] = true
	}
	for _, f := range added {
		if f.SmallestTimestamp > f.BiggestTimestamp {
			return fmt.Errorf("%w: file %s has smallest timestamp %d > biggest timestamp %d",
				ErrCorruption, f.Fingerprint, f.SmallestTimestamp, f.BiggestTimestamp)
		}
	}

	// Splice out removed files and remap the survivors' indices.
	remap := make([]int, len(g.files))
	files := make([]*FileMetadata, 0, len(g.files)-len(drop)+len(added))
	for i, f := range g.files {
		if drop[i] {
			remap[i] = -1
			continue
		}
		remap[i] = len(files)
		files = append(files, f)
	}
	kept := len(files)

	byFingerprint := make(map[cursor.Fingerprint]int, len(files)+len(added))
	for i, f := range files {
		byFingerprint[f.Fingerprint] = i
	}
	for _, f := range added {
		if _, ok := byFingerprint[f.Fingerprint]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateFile, f.Fingerprint)
		}
		byFingerprint[f.Fingerprint] = len(files)
		files = append(files, f)
	}

	// Carry surviving edges through the remap; edges touching a removed
	// file disappear with it.
	var forward, reverse pairSet
	for _, p := range g.forward.pairs {
		u, v := remap[p[0]], remap[p[1]]
		if u >= 0 && v >= 0 {
			forward.insert(u, v)
		}
	}
	for _, p := range g.reverse.pairs {
		u, v := remap[p[0]], remap[p[1]]
		if u >= 0 && v >= 0 {
			reverse.insert(u, v)
		}
	}

	g.files = files
	g.byFingerprint = byFingerprint
	g.forward = forward
	g.reverse = reverse

	// Only pairs touching an added file need re-deriving.
	for i := kept; i < len(g.files); i++ {
		for j := 0; j < i; j++ {
			g.classifyPair(i, j)
		}
	}

	g.rebuild()
	return nil
}

// rebuild recomputes colors, the condensed color graph, and levels from the
// current files and adjacency sets.
func (g *Graph) rebuild() {
	n := len(g.files)
	g.vertices = make([]vertex, n)
	for i := range g.vertices {
		g.vertices[i] = vertex{color: n}
	}

	tarjanSCC(g.vertices, &g.forward)

	// Accumulate peer counts and bytes on each color's representative
	// vertex, then copy them back onto every member.
	g.colors = g.colors[:0]
	for i := range g.vertices {
		c := g.vertices[i].color
		if g.vertices[c].peers == 0 {
			g.colors = append(g.colors, c)
		}
		g.vertices[c].peers++
		g.vertices[c].colorBytes += g.files[i].Size
	}
	sort.Ints(g.colors)
	for i := range g.vertices {
		c := g.vertices[i].color
		g.vertices[i].peers = g.vertices[c].peers
		g.vertices[i].colorBytes = g.vertices[c].colorBytes
	}

	// Condense inter-color edges, oriented old -> new. If this graph had a
	// cycle, Tarjan would have merged the colors involved.
	g.colorAdj = pairSet{}
	g.colorRev = pairSet{}
	for _, p := range g.reverse.pairs {
		cu, cv := g.vertices[p[0]].color, g.vertices[p[1]].color
		if cu != cv {
			g.colorAdj.insert(cu, cv)
			g.colorRev.insert(cv, cu)
		}
	}

	// Level the color DAG: colors with nothing older start at level 0, and
	// every old -> new edge pushes its target to at least one level above
	// its source.
	h := &levelHeap{}
	for _, c := range g.colors {
		if len(g.colorRev.neighbors(c)) == 0 {
			heap.Push(h, [2]int{0, c})
		}
	}
	for h.Len() > 0 {
		top := heap.Pop(h).([2]int)
		lvl, c := top[0], top[1]
		if g.vertices[c].level > lvl {
			continue
		}
		for _, succ := range g.colorAdj.neighbors(c) {
			if g.vertices[succ].level < lvl+1 {
				g.vertices[succ].level = lvl + 1
				heap.Push(h, [2]int{lvl + 1, succ})
			}
		}
	}
	for i := range g.vertices {
		g.vertices[i].level = g.vertices[g.vertices[i].color].level
	}
}

// Len returns the number of files in the graph
func (g *Graph) Len() int {
	return len(g.files)
}

// Files returns the graph's file metadata in index order
func (g *Graph) Files() []*FileMetadata {
	return append([]*FileMetadata(nil), g.files...)
}

// Level returns the topological level of the file at the given index
func (g *Graph) Level(idx int) int {
	return g.vertices[idx].level
}

// Color returns the color (SCC representative index) of the file at the
// given index
func (g *Graph) Color(idx int) int {
	return g.vertices[idx].color
}

// EdgeCount returns the number of directed edges in the file graph
func (g *Graph) EdgeCount() int {
	return g.forward.len()
}

// ColorCount returns the number of strongly connected components
func (g *Graph) ColorCount() int {
	return len(g.colors)
}

func (g *Graph) maxLevel() int {
	max := 0
	for _, c := range g.colors {
		if g.vertices[c].level > max {
			max = g.vertices[c].level
		}
	}
	return max
}

// levelHeap is a min-heap of (level, color) pairs used to expand levels
// outward from the zero-in-degree colors.
type levelHeap [][2]int

func (h levelHeap) Len() int { return len(h) }
func (h levelHeap) Less(i, j int) bool {
	return h[i][0] < h[j][0] || (h[i][0] == h[j][0] && h[i][1] < h[j][1])
}
func (h levelHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *levelHeap) Push(x interface{}) {
	*h = append(*h, x.([2]int))
}

func (h *levelHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// tarjanVertex is the per-vertex bookkeeping for the SCC computation
type tarjanVertex struct {
	index   int
	lowlink int
	onStack bool
}

// tarjanSCC assigns each vertex a color: the representative index of its
// strongly connected component. The classic recursion is unrolled into an
// explicit stack of (vertex, adjacency-cursor) frames so stack depth does
// not grow with input size.
func tarjanSCC(vertices []vertex, adj *pairSet) {
	n := len(vertices)
	state := make([]tarjanVertex, n)
	for i := range state {
		state[i] = tarjanVertex{index: n, lowlink: n}
	}

	type frame struct {
		v   int
		adj []int
		pos int
	}

	index := 0
	var stack []int

	for idx := 0; idx < n; idx++ {
		if state[idx].index != n {
			continue
		}
		frames := []frame{{v: idx, adj: adj.neighbors(idx)}}
		state[idx].index = index
		state[idx].lowlink = index
		index++
		stack = append(stack, idx)
		state[idx].onStack = true

		for len(frames) > 0 {
			f := &frames[len(frames)-1]
			if f.pos < len(f.adj) {
				w := f.adj[f.pos]
				f.pos++
				if state[w].index == n {
					state[w].index = index
					state[w].lowlink = index
					index++
					stack = append(stack, w)
					state[w].onStack = true
					frames = append(frames, frame{v: w, adj: adj.neighbors(w)})
				} else if state[w].onStack {
					if state[w].index < state[f.v].lowlink {
						state[f.v].lowlink = state[w].index
					}
				}
				continue
			}
			v := f.v
			if state[v].lowlink == state[v].index {
				vertices[v].color = v
				for len(stack) > 0 && stack[len(stack)-1] != v {
					w := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					state[w].onStack = false
					vertices[w].color = v
				}
				if len(stack) == 0 || stack[len(stack)-1] != v {
					panic("compaction: tarjan stack lost its component root")
				}
				stack = stack[:len(stack)-1]
				state[v].onStack = false
			}
			frames = frames[:len(frames)-1]
			if len(frames) > 0 {
				p := &frames[len(frames)-1]
				if state[v].lowlink < state[p.v].lowlink {
					state[p.v].lowlink = state[v].lowlink
				}
			}
		}
	}
}
