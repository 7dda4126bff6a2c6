package compaction

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sievedb/sieve/pkg/common/log"
)

// Executor carries out a merge proposal: it rewrites the proposal's inputs
// and returns the metadata of the replacement files. Implementations own
// all file I/O; the coordinator only ever sees metadata.
type Executor interface {
	Compact(ctx context.Context, c *Compaction) ([]*FileMetadata, error)
}

// CoordinatorOptions holds configuration options for the coordinator
type CoordinatorOptions struct {
	// Executor carries out accepted proposals
	Executor Executor

	// Interval between background planning cycles
	Interval time.Duration

	// Threads is the number of proposals executed concurrently per cycle
	Threads int

	// Logger used by the coordinator
	Logger log.Logger
}

// Coordinator drives a scheduler in the background: on every cycle it
// plans, hands the conflict-free proposals to the executor, and folds the
// finished merges back into the graph.
type Coordinator struct {
	scheduler *Scheduler
	executor  Executor
	interval  time.Duration
	threads   int
	logger    log.Logger

	// One cycle at a time; the graph is not goroutine safe.
	cycleMu sync.Mutex

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	done    sync.WaitGroup
}

// NewCoordinator creates a coordinator around the given scheduler.
func NewCoordinator(scheduler *Scheduler, options CoordinatorOptions) (*Coordinator, error) {
	if options.Executor == nil {
		return nil, fmt.Errorf("compaction: coordinator requires an executor")
	}
	if options.Interval <= 0 {
		options.Interval = time.Second
	}
	if options.Threads <= 0 {
		options.Threads = 1
	}
	if options.Logger == nil {
		options.Logger = log.GetDefaultLogger().WithField("component", "coordinator")
	}

	return &Coordinator{
		scheduler: scheduler,
		executor:  options.Executor,
		interval:  options.Interval,
		threads:   options.Threads,
		logger:    options.Logger,
	}, nil
}

// Start begins background planning cycles
func (c *Coordinator) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil // Already running
	}
	c.running = true
	c.stopCh = make(chan struct{})

	c.done.Add(1)
	go c.worker(c.stopCh)
	return nil
}

// Stop halts background planning and waits for the worker to exit
func (c *Coordinator) Stop() error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil // Already stopped
	}
	close(c.stopCh)
	c.running = false
	c.mu.Unlock()

	c.done.Wait()
	return nil
}

// worker runs the planning loop
func (c *Coordinator) worker(stopCh chan struct{}) {
	defer c.done.Done()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if err := c.TriggerCycle(context.Background()); err != nil {
				c.logger.Error("compaction cycle failed: %v", err)
			}
		}
	}
}

// TriggerCycle runs a single plan-execute-apply cycle. Proposals never
// share inputs, so they execute concurrently; graph edits are applied
// serially once the executors finish. The first executor error is
// returned after the cycle completes.
func (c *Coordinator) TriggerCycle(ctx context.Context) error {
	c.cycleMu.Lock()
	defer c.cycleMu.Unlock()

	proposals := c.scheduler.Plan(ctx)
	if len(proposals) == 0 {
		return nil
	}

	outputs := make([][]*FileMetadata, len(proposals))
	errs := make([]error, len(proposals))

	work := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < c.threads; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				outputs[i], errs[i] = c.executor.Compact(ctx, proposals[i])
			}
		}()
	}
	for i := range proposals {
		work <- i
	}
	close(work)
	wg.Wait()

	var firstErr error
	for i, p := range proposals {
		if errs[i] != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("compaction failed: %w", errs[i])
			}
			c.logger.Error("proposal failed, inputs retained: %v", errs[i])
			continue
		}
		if err := c.scheduler.Apply(ctx, p.Fingerprints(), outputs[i]); err != nil {
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Scheduler returns the coordinator's scheduler.
func (c *Coordinator) Scheduler() *Scheduler {
	return c.scheduler
}
