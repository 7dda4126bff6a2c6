package compaction

import (
	"fmt"
	"sort"

	"github.com/sievedb/sieve/pkg/common/cursor"
)

// CompactionStats summarizes a proposal for scheduling and logging
type CompactionStats struct {
	// InputCount is the number of input files
	InputCount int

	// InputBytes is the total approximate size of the input files
	InputBytes uint64

	// LowerLevel is the lowest level among the inputs
	LowerLevel int

	// UpperLevel is the highest level among the inputs
	UpperLevel int

	// Ratio is the retained-bytes ratio of the chosen merge window; higher
	// ratios rewrite fewer bytes per byte of useful data
	Ratio float64
}

// Compaction is a merge proposal over a subset of the graph's files. It is
// immutable once emitted and becomes stale the moment any input is merged
// elsewhere; consumers re-validate inputs by fingerprint before acting.
type Compaction struct {
	// Inputs is the set of files to merge together
	Inputs []*FileMetadata

	// Stats summarizes the proposal
	Stats CompactionStats
}

// Fingerprints returns the fingerprints of the proposal's inputs
func (c *Compaction) Fingerprints() []cursor.Fingerprint {
	out := make([]cursor.Fingerprint, len(c.Inputs))
	for i, in := range c.Inputs {
		out[i] = in.Fingerprint
	}
	return out
}

// String returns a string representation of the compaction proposal
func (c *Compaction) String() string {
	return fmt.Sprintf("compaction of %d files (%d bytes) levels [%d,%d] ratio %.6f",
		c.Stats.InputCount, c.Stats.InputBytes, c.Stats.LowerLevel, c.Stats.UpperLevel, c.Stats.Ratio)
}

// ratioFixedPoint converts a ratio to a fixed-point integer so proposals
// sort deterministically without comparing raw floats.
func ratioFixedPoint(r float64) int64 {
	return int64(r * 1_000_000)
}

// Compactions returns a conflict-free set of merge proposals, best ratio
// first. No applicable work yields an empty result, never an error; the
// method is read-only and repeated calls without an Edit return equal
// results.
func (g *Graph) Compactions() []*Compaction {
	selected, _ := g.compactions()
	return selected
}

// compactions also reports how many candidate proposals were discarded
// because their inputs conflicted with an already-accepted proposal.
func (g *Graph) compactions() ([]*Compaction, int) {
	if len(g.files) == 0 {
		return nil, 0
	}

	// Degenerate graph: every file collapsed into one color and the whole
	// set must merge atomically. Rewriting two files into one buys almost
	// nothing, so require more than two.
	if len(g.colors) == 1 {
		if len(g.files) <= 2 {
			return nil, 0
		}
		inputs := append([]*FileMetadata(nil), g.files...)
		return []*Compaction{{
			Inputs: inputs,
			Stats: CompactionStats{
				InputCount: len(inputs),
				InputBytes: totalBytes(inputs),
			},
		}}, 0
	}

	maxLevel := g.maxLevel()
	var proposals []*Compaction
	for _, c := range g.colors {
		level := g.vertices[c].level

		// Byte-by-level histogram over this color and every color reachable
		// through its old -> new edges. One hop suffices: the condensation
		// is transitively closed over overlapping colors.
		overlap := make([]uint64, maxLevel+1)
		overlap[level] = g.vertices[c].colorBytes
		neighbors := g.colorAdj.neighbors(c)
		for _, v := range neighbors {
			if g.vertices[v].level <= level {
				panic("compaction: color level ordering violated")
			}
			overlap[g.vertices[v].level] += g.vertices[v].colorBytes
		}

		// Scan candidate upper levels, keeping the window with the best
		// ratio of already-included bytes to projected bytes. Ties favor
		// the later, larger window. An empty level or a window past the
		// byte budget stops the extension; both only get worse deeper.
		chosen := -1
		best := 0.0
		window := overlap[level]
		for upper := level + 1; upper <= maxLevel; upper++ {
			if overlap[upper] == 0 {
				break
			}
			next := window + overlap[upper]
			if next > g.opts.MaxCompactionBytes {
				break
			}
			ratio := float64(window) / float64(next)
			if chosen == -1 || ratio >= best {
				chosen = upper
				best = ratio
			}
			window = next
		}
		if chosen == -1 {
			if g.vertices[c].peers <= 1 {
				continue
			}
			// A multi-file color is a forced cycle; merge it by itself
			// rather than wait for an improving window that may never come.
			chosen = level
			best = 0.0
		}

		members := map[int]bool{c: true}
		for _, v := range neighbors {
			if g.vertices[v].level <= chosen {
				members[v] = true
			}
		}
		var inputs []*FileMetadata
		for i := range g.vertices {
			if members[g.vertices[i].color] {
				inputs = append(inputs, g.files[i])
			}
		}
		if len(inputs) < 2 {
			continue
		}
		proposals = append(proposals, &Compaction{
			Inputs: inputs,
			Stats: CompactionStats{
				InputCount: len(inputs),
				InputBytes: totalBytes(inputs),
				LowerLevel: level,
				UpperLevel: chosen,
				Ratio:      best,
			},
		})
	}

	sort.SliceStable(proposals, func(i, j int) bool {
		return ratioFixedPoint(proposals[i].Stats.Ratio) > ratioFixedPoint(proposals[j].Stats.Ratio)
	})

	// Greedy conflict-free acceptance: a proposal sharing any input with an
	// already-accepted proposal is skipped wholesale.
	locked := make(map[cursor.Fingerprint]bool)
	selected := make([]*Compaction, 0, len(proposals))
	skipped := 0
	for _, p := range proposals {
		conflict := false
		for _, in := range p.Inputs {
			if locked[in.Fingerprint] {
				conflict = true
				break
			}
		}
		if conflict {
			skipped++
			continue
		}
		for _, in := range p.Inputs {
			locked[in.Fingerprint] = true
		}
		selected = append(selected, p)
	}
	return selected, skipped
}

func totalBytes(files []*FileMetadata) uint64 {
	var total uint64
	for _, f := range files {
		total += f.Size
	}
	return total
}
