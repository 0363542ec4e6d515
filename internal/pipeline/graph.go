package pipeline

// PortEvent pairs an output port name with the event the graph produced
// for it, the shape the pipeline task's reusable event-set scratch buffer
// is filled with.
type PortEvent struct {
	Port  string
	Event Event
}

// Graph is the pipeline task's sole collaborator: an opaque, non-thread-safe
// executable dataflow. The task never introspects graph state beyond this
// interface, and the task's single-owner discipline is what makes the lack
// of internal synchronisation safe.
type Graph interface {
	// Enqueue runs ev through the operator attached to port, appending
	// zero or more resulting (port, event) pairs to out.
	Enqueue(port string, ev Event, out *[]PortEvent) error
	// EnqueueSignal runs a signal through every operator, appending
	// results to out exactly like Enqueue.
	EnqueueSignal(sig Event, out *[]PortEvent) error
	// Contraflow resumes graph state at operator index skipTo and folds
	// in into it, returning the (possibly amended) insight that should be
	// broadcast upstream.
	Contraflow(skipTo int, in Insight) Insight
	// DrainInsights returns and clears insights the graph produced as a
	// side effect of the most recent Enqueue/EnqueueSignal call.
	DrainInsights() []Insight
}

// Operator transforms one input event into zero or one output event. It
// must not retain ev beyond the call; SimpleGraph treats a false second
// return as "drop".
type Operator func(ev Event) (Event, bool)

// SimpleGraph is a reference Graph: a pass-through/fan-out test double with
// no windowing or join semantics, exactly spec'd as out of scope for the
// core. Each input port may have an Operator attached; the (possibly
// transformed) event is forwarded to every port named in Outputs. Builders
// that need something more elaborate than single-hop fan-out should supply
// their own Graph implementation — SimpleGraph exists for tests and the
// demo command, not as a graph compiler.
type SimpleGraph struct {
	Ops     map[string]Operator
	Outputs []string

	pendingInsights []Insight
}

// NewSimpleGraph builds a SimpleGraph that forwards to the given output
// ports unchanged, with no operators attached.
func NewSimpleGraph(outputs ...string) *SimpleGraph {
	return &SimpleGraph{Ops: map[string]Operator{}, Outputs: outputs}
}

// Enqueue implements Graph.
func (g *SimpleGraph) Enqueue(port string, ev Event, out *[]PortEvent) error {
	result := ev
	if op, ok := g.Ops[port]; ok {
		transformed, keep := op(ev)
		if !keep {
			return nil
		}
		result = transformed
	}
	for _, o := range g.Outputs {
		*out = append(*out, PortEvent{Port: o, Event: result})
	}
	return nil
}

// EnqueueSignal implements Graph. SimpleGraph has no operators that react
// to signals, so a signal adds nothing to out; the task fans the signal
// itself out to its destinations.
func (g *SimpleGraph) EnqueueSignal(sig Event, out *[]PortEvent) error {
	return nil
}

// Contraflow implements Graph. SimpleGraph does not rewrite insights; it
// passes them through unchanged, which is sufficient for a graph with no
// stateful operators to acknowledge.
func (g *SimpleGraph) Contraflow(skipTo int, in Insight) Insight {
	return in
}

// DrainInsights implements Graph.
func (g *SimpleGraph) DrainInsights() []Insight {
	out := g.pendingInsights
	g.pendingInsights = nil
	return out
}

// EmitInsight lets a test or operator push an insight SimpleGraph will
// surface on the next DrainInsights call, simulating an operator that
// observed something worth acking upstream.
func (g *SimpleGraph) EmitInsight(in Insight) {
	g.pendingInsights = append(g.pendingInsights, in)
}
