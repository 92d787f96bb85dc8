// Package metrics defines the minimal instrumentation surface used by the
// lanes execution engine, plus a no-op provider (the default) and a small
// in-memory provider suitable for tests and lightweight applications.
package metrics

// Provider constructs instruments by name. The same name always returns the
// same instrument. Implementations must be safe for concurrent use.
type Provider interface {
	Counter(name string) Counter
	UpDownCounter(name string) UpDownCounter
	Histogram(name string) Histogram
}

// Counter records monotonic counts.
type Counter interface {
	Add(n int64)
}

// UpDownCounter records values that can move up or down, e.g. current in-flight.
type UpDownCounter interface {
	Add(n int64)
}

// Histogram records a distribution of float64 measurements, e.g. durations in seconds.
type Histogram interface {
	Record(v float64)
}
