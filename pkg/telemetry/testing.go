// ABOUTME: Test helpers that hand out disabled telemetry so components exercise
// ABOUTME: their real code paths without exporting anything

package telemetry

// NewForTesting returns disabled telemetry for use in tests. Components wired
// with it run their real instrumentation calls against the no-op sink.
func NewForTesting() Telemetry {
	return NewNoop()
}

// NewDisabled returns disabled telemetry for callers that want the intent
// spelled out at the call site rather than using NewNoop directly.
func NewDisabled() Telemetry {
	return NewNoop()
}
