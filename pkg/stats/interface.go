package stats

// Provider defines the interface for components that provide statistics
type Provider interface {
	// GetStats returns all statistics
	GetStats() map[string]interface{}

	// GetStatsFiltered returns statistics filtered by prefix
	GetStatsFiltered(prefix string) map[string]interface{}
}

// Collector interface defines methods for collecting statistics
type Collector interface {
	Provider

	// TrackOperation records a single operation
	TrackOperation(op OperationType)

	// TrackOperationWithLatency records an operation with its latency
	TrackOperationWithLatency(op OperationType, latencyNs uint64)

	// TrackError increments the counter for the specified error type
	TrackError(errorType string)

	// TrackProposal records a candidate proposal: accepted, or skipped
	// because its inputs conflicted with an accepted proposal
	TrackProposal(accepted bool)

	// TrackGCKey records the fate of one key during a retention pass
	TrackGCKey(retained bool)

	// TrackBytes adds the specified number of bytes to the scheduled or
	// discarded counter
	TrackBytes(scheduled bool, bytes uint64)
}

// Ensure AtomicCollector implements the Collector interface
var _ Collector = (*AtomicCollector)(nil)
