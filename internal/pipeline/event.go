// Package pipeline implements the per-instance event processor: it ingests
// events and signals from multiple producers, drives them through an
// executable graph, and fans results out to sinks and peer pipelines while
// propagating contraflow feedback back to sources.
package pipeline

// SignalKind marks an Event as a signal rather than ordinary data, or marks
// it as plain data when zero-valued.
type SignalKind int

const (
	// SignalNone marks an ordinary data event.
	SignalNone SignalKind = iota
	// SignalTick is emitted locally by a pipeline's own tick task. Ticks
	// are never forwarded to peer pipelines.
	SignalTick
	// SignalDrain requests a pipeline to flush and acknowledge quiescence.
	SignalDrain
	// SignalOther covers signal kinds outside Tick/Drain.
	SignalOther
)

// CbAction is a circuit-breaker directive carried by an Insight.
type CbAction int

const (
	// CbNone carries no circuit-breaker directive.
	CbNone CbAction = iota
	CbOpen
	CbClose
	CbAck
	CbFail
)

// Event is the unit of data flowing through a pipeline. Clones made for
// fan-out must compare equal to the original; Payload is assumed to be
// treated as immutable by graph operators so structural sharing is safe.
type Event struct {
	IngestNs int64
	Kind     SignalKind
	ID       uint64
	Payload  any
}

// Clone returns a shallow copy of the event. Fan-out relies on this being
// cheap: the payload is shared, not deep-copied.
func (e Event) Clone() Event {
	return e
}

// IsSignal reports whether this event carries a signal kind.
func (e Event) IsSignal() bool {
	return e.Kind != SignalNone
}

// ForwardMsg is what travels on a pipeline's forward channel: an event
// together with the input port it arrived on. Graph enqueue is keyed by
// port; signals ignore Port entirely since enqueue_signal runs through
// every operator regardless of input.
type ForwardMsg struct {
	Port  string
	Event Event
}

// Insight is a contraflow event: an Event travelling opposite the data
// direction, optionally carrying a circuit-breaker directive and the graph
// operator index a resumed contraflow pass should skip to.
type Insight struct {
	Event  Event
	Action CbAction
	SkipTo int
}

// HasDirective reports whether this insight carries a circuit-breaker
// action that must be broadcast to registered sources.
func (i Insight) HasDirective() bool {
	return i.Action != CbNone
}
