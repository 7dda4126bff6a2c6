// ABOUTME: Compaction scheduler that owns the overlap graph and produces conflict-free plans
// ABOUTME: Wires planning and incremental edits to logging, telemetry metrics, and statistics

package compaction

import (
	"context"
	"time"

	"github.com/sievedb/sieve/pkg/common/cursor"
	"github.com/sievedb/sieve/pkg/common/log"
	"github.com/sievedb/sieve/pkg/stats"
)

// Scheduler owns an overlap graph and turns it into compaction plans.
// It is safe for use from a single goroutine; callers that share a
// Scheduler across goroutines must serialize access themselves.
type Scheduler struct {
	opts    Options
	graph   *Graph
	logger  log.Logger
	metrics SchedulerMetrics
	stats   stats.Collector
}

// SchedulerOption is a function that configures a Scheduler
type SchedulerOption func(*Scheduler)

// WithLogger sets the logger used by the scheduler
func WithLogger(logger log.Logger) SchedulerOption {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithMetrics sets the telemetry metrics sink used by the scheduler
func WithMetrics(metrics SchedulerMetrics) SchedulerOption {
	return func(s *Scheduler) {
		s.metrics = metrics
	}
}

// WithStats sets the statistics collector used by the scheduler
func WithStats(collector stats.Collector) SchedulerOption {
	return func(s *Scheduler) {
		s.stats = collector
	}
}

// NewScheduler builds the overlap graph for the given files and returns a
// scheduler ready for planning. Metadata validation errors surface here.
func NewScheduler(ctx context.Context, opts Options, files []*FileMetadata, options ...SchedulerOption) (*Scheduler, error) {
	s := &Scheduler{
		opts:    opts,
		logger:  log.GetDefaultLogger().WithField("component", "scheduler"),
		metrics: NewNoopSchedulerMetrics(),
		stats:   stats.NewAtomicCollector(),
	}

	for _, option := range options {
		option(s)
	}

	start := time.Now()
	graph, err := NewGraph(opts, files)
	if err != nil {
		s.stats.TrackError("graph_build")
		return nil, err
	}
	s.graph = graph

	s.metrics.RecordGraphBuild(ctx, graph.Len(), graph.EdgeCount(), graph.ColorCount(), time.Since(start))
	s.logger.Debug("built overlap graph: %d files, %d edges, %d colors",
		graph.Len(), graph.EdgeCount(), graph.ColorCount())

	return s, nil
}

// Graph returns the scheduler's current overlap graph.
func (s *Scheduler) Graph() *Graph {
	return s.graph
}

// Plan produces a conflict-free set of compaction proposals ordered by
// descending ratio. The returned proposals never share an input file.
func (s *Scheduler) Plan(ctx context.Context) []*Compaction {
	start := time.Now()
	s.metrics.RecordPlanStart(ctx, s.graph.Len(), s.graph.ColorCount())

	proposals, skipped := s.graph.compactions()

	elapsed := time.Since(start)
	s.stats.TrackOperationWithLatency(stats.OpPlan, uint64(elapsed.Nanoseconds()))
	for _, c := range proposals {
		s.stats.TrackProposal(true)
		s.stats.TrackBytes(true, c.Stats.InputBytes)
		s.metrics.RecordProposal(ctx, c.Stats)
	}
	for i := 0; i < skipped; i++ {
		s.stats.TrackProposal(false)
	}
	s.metrics.RecordPlanComplete(ctx, elapsed, len(proposals), skipped)

	s.logger.Debug("planned %d compactions (%d skipped on conflicts)", len(proposals), skipped)
	return proposals
}

// Apply folds a finished compaction back into the graph: removed names the
// consumed input files, added the outputs that replaced them.
func (s *Scheduler) Apply(ctx context.Context, removed []cursor.Fingerprint, added []*FileMetadata) error {
	start := time.Now()

	if err := s.graph.Edit(removed, added); err != nil {
		s.stats.TrackError("graph_edit")
		s.logger.Error("graph edit failed: %v", err)
		return err
	}

	elapsed := time.Since(start)
	s.stats.TrackOperationWithLatency(stats.OpEdit, uint64(elapsed.Nanoseconds()))
	s.metrics.RecordGraphEdit(ctx, len(removed), len(added), elapsed)

	s.logger.Debug("applied edit: removed %d, added %d, graph now %d files", len(removed), len(added), s.graph.Len())
	return nil
}

// Stats exposes the scheduler's statistics collector.
func (s *Scheduler) Stats() stats.Provider {
	return s.stats
}
