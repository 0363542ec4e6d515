package pipeline

import (
	"context"

	"github.com/ClusterCockpit/cc-pipeline/internal/cclog"
)

// Task is the long-running event loop bound to one pipeline instance: it
// drains the priority-merged source, runs events through the graph,
// dispatches results through the destination table, folds contraflow back
// to registered sources, and applies topology changes arriving on the
// management channel.
type Task struct {
	id    uint64
	graph Graph
	merge *PriorityMerge

	destinations map[string][]Destination
	sources      map[uint64]*Sender[Insight]

	eventSet []PortEvent
}

// NewTask builds a Task for the given pipeline id and graph, reading from
// the three channels backing addr.
func NewTask(id uint64, graph Graph, addr *Address) *Task {
	return &Task{
		id:           id,
		graph:        graph,
		merge:        NewPriorityMerge(addr.mgmtRecv(), addr.contraflowRecv(), addr.forwardRecv()),
		destinations: map[string][]Destination{},
		sources:      map[uint64]*Sender[Insight]{},
	}
}

// Run drives the event loop until the merged source ends (every channel
// closed) or ctx is cancelled. It returns when the task has exited
// cleanly; there is no explicit stop message for the task itself, closing
// its senders is sufficient.
func (t *Task) Run(ctx context.Context) {
	for {
		item, ok := t.merge.Next(ctx)
		if !ok {
			cclog.Infof("[PIPELINE]> task %d: source exhausted, exiting", t.id)
			return
		}
		switch item.Kind {
		case MergedContraflow:
			t.handleContraflow(ctx, 0, item.Insight)
		case MergedForward:
			if item.Forward.Event.IsSignal() {
				t.handleForwardSignal(ctx, item.Forward.Event)
			} else {
				t.handleForwardEvent(ctx, item.Forward.Port, item.Forward.Event)
			}
		case MergedMgmt:
			t.handleMgmt(item.Mgmt)
		}
	}
}

// handleContraflow implements step 1 of the main loop: resume the graph at
// skipTo, and if the resulting insight carries a circuit-breaker
// directive, broadcast it to every registered source. A send failure to
// one source is logged and does not abort delivery to the others.
func (t *Task) handleContraflow(ctx context.Context, skipTo int, in Insight) {
	result := t.graph.Contraflow(skipTo, in)
	if !result.HasDirective() {
		return
	}
	t.broadcastInsight(ctx, result)
}

func (t *Task) broadcastInsight(ctx context.Context, in Insight) {
	for id, src := range t.sources {
		if err := src.Send(ctx, in); err != nil {
			cclog.Warnf("[PIPELINE]> task %d: insight broadcast to source %d failed: %v", t.id, id, err)
		}
	}
}

// handleForwardEvent implements step 2: enqueue into the graph, drain
// resulting insights through the contraflow path, then flush the event-set
// through the destination table.
func (t *Task) handleForwardEvent(ctx context.Context, port string, ev Event) {
	t.eventSet = t.eventSet[:0]
	if err := t.graph.Enqueue(port, ev, &t.eventSet); err != nil {
		cclog.Warnf("[PIPELINE]> task %d: graph enqueue on port %q failed: %v", t.id, port, err)
		return
	}
	t.drainGraphInsights(ctx)
	t.flushEventSet(ctx)
}

// handleForwardSignal implements step 3: run the signal through every
// operator, fan it to all destinations (tick rule applies per destination
// kind), drain insights, then flush any remaining event-set entries.
func (t *Task) handleForwardSignal(ctx context.Context, sig Event) {
	t.eventSet = t.eventSet[:0]
	if err := t.graph.EnqueueSignal(sig, &t.eventSet); err != nil {
		cclog.Warnf("[PIPELINE]> task %d: graph enqueue_signal failed: %v", t.id, err)
		return
	}
	t.fanSignal(ctx, sig)
	t.drainGraphInsights(ctx)
	t.flushEventSet(ctx)
}

// fanSignal sends sig to every destination across every port, skipping a
// destination whose peer id equals this task's own id — a pipeline
// accidentally wired to itself as a destination of its own output must not
// receive its own signal back.
func (t *Task) fanSignal(ctx context.Context, sig Event) {
	for port, dests := range t.destinations {
		for _, d := range dests {
			if d.Kind == DestPipeline && d.ID == t.id {
				continue
			}
			if err := d.SendSignal(ctx, sig); err != nil {
				cclog.Warnf("[PIPELINE]> task %d: signal to destination %d on port %q failed: %v", t.id, d.ID, port, err)
			}
		}
	}
}

func (t *Task) drainGraphInsights(ctx context.Context) {
	for _, in := range t.graph.DrainInsights() {
		t.handleContraflow(ctx, in.SkipTo, in)
	}
}

// flushEventSet dispatches the scratch event-set through the destination
// table. Within one port's destination list, the first N-1 entries receive
// a copy of the event and the last receives it directly — in Go, Event is
// a plain value so both paths are identical copies, but the loop shape
// mirrors the move-the-last-one discipline the design calls for.
func (t *Task) flushEventSet(ctx context.Context) {
	for _, pe := range t.eventSet {
		dests := t.destinations[pe.Port]
		n := len(dests)
		for i, d := range dests {
			var err error
			if i == n-1 {
				err = d.SendEvent(ctx, pe.Event)
			} else {
				err = d.SendEvent(ctx, pe.Event.Clone())
			}
			if err != nil {
				cclog.Warnf("[PIPELINE]> task %d: event to destination %d on port %q failed: %v", t.id, d.ID, pe.Port, err)
			}
		}
	}
	t.eventSet = t.eventSet[:0]
}

// handleMgmt implements step 4: mutate the destination/source tables.
func (t *Task) handleMgmt(m MgmtMsg) {
	switch m.Kind {
	case MgmtConnectSink:
		t.destinations[m.Port] = append(t.destinations[m.Port], NewSinkDestination(m.ID, m.Sink))
	case MgmtConnectPipeline:
		t.destinations[m.Port] = append(t.destinations[m.Port], NewPipelineDestination(m.ID, m.Pipeline))
	case MgmtConnectSource:
		t.sources[m.ID] = m.Source
	case MgmtDisconnectOutput:
		t.disconnectOutput(m.Port, m.ID)
	case MgmtDisconnectInput:
		delete(t.sources, m.ID)
	case MgmtStop:
		// no-op: the task ends only when its channels close or its context
		// is cancelled.
	}
}

func (t *Task) disconnectOutput(port string, id uint64) {
	dests, ok := t.destinations[port]
	if !ok {
		cclog.Warnf("[PIPELINE]> task %d: DisconnectOutput on unknown port %q", t.id, port)
		return
	}
	filtered := dests[:0]
	for _, d := range dests {
		if d.ID != id {
			filtered = append(filtered, d)
		}
	}
	if len(filtered) == 0 {
		delete(t.destinations, port)
	} else {
		t.destinations[port] = filtered
	}
}
