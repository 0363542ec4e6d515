package pipeline

import "context"

// DefaultInputPort is the input port name used when a producer does not
// care to distinguish ports, and the port a peer-pipeline Destination
// delivers into unless told otherwise.
const DefaultInputPort = "in"

// Address is a pipeline's externally visible handle: a triple of send
// handles (forward, contraflow, management) plus an identifier. Cloning an
// Address shares the underlying queues but gives the clone its own overflow
// buffer on the forward channel, matching the "overflow belongs to the
// sending site" rule — a producer that clones an Address to fan out writes
// must not have its backpressure accounting entangled with another
// producer's.
type Address struct {
	id         uint64
	forward    *Sender[ForwardMsg]
	contraflow *Sender[Insight]
	mgmt       *Sender[MgmtMsg]
}

// NewAddress builds an Address around three freshly created channels of the
// given depth.
func NewAddress(id uint64, depth int) *Address {
	return &Address{
		id:         id,
		forward:    NewSender[ForwardMsg](depth),
		contraflow: NewSender[Insight](depth),
		mgmt:       NewSender[MgmtMsg](depth),
	}
}

// ID returns the pipeline identifier this address targets.
func (a *Address) ID() uint64 {
	return a.id
}

// Send awaitably forwards an event on the given input port, backpressuring
// the caller.
func (a *Address) Send(ctx context.Context, port string, ev Event) error {
	return a.forward.Send(ctx, ForwardMsg{Port: port, Event: ev})
}

// TrySendSafe forwards an event without blocking, parking in the overflow
// queue under backpressure.
func (a *Address) TrySendSafe(port string, ev Event) error {
	return a.forward.TrySendSafe(ForwardMsg{Port: port, Event: ev})
}

// MaybeSend forwards an event on a best-effort basis, discarding under
// backpressure.
func (a *Address) MaybeSend(port string, ev Event) bool {
	return a.forward.MaybeSend(ForwardMsg{Port: port, Event: ev})
}

// SendInsight awaitably submits a contraflow insight.
func (a *Address) SendInsight(ctx context.Context, in Insight) error {
	return a.contraflow.Send(ctx, in)
}

// SendMgmt awaitably submits a topology change.
func (a *Address) SendMgmt(ctx context.Context, m MgmtMsg) error {
	return a.mgmt.Send(ctx, m)
}

// Len reports the forward channel's total occupancy (channel plus
// overflow).
func (a *Address) Len() int {
	return a.forward.Len()
}

// OverflowLen reports the forward channel's overflow occupancy alone.
func (a *Address) OverflowLen() int {
	return a.forward.OverflowLen()
}

// DrainReady attempts to flush the forward overflow queue and reports the
// post-drain readiness.
func (a *Address) DrainReady() bool {
	return a.forward.DrainReady()
}

// Clone returns an Address sharing this one's underlying queues, with an
// independent forward overflow buffer.
func (a *Address) Clone() *Address {
	return &Address{
		id:         a.id,
		forward:    a.forward.Clone(),
		contraflow: a.contraflow,
		mgmt:       a.mgmt,
	}
}

// Close shuts down all three channels backing this address.
func (a *Address) Close() {
	a.forward.Close()
	a.contraflow.Close()
	a.mgmt.Close()
}

func (a *Address) forwardRecv() <-chan ForwardMsg   { return a.forward.Recv() }
func (a *Address) contraflowRecv() <-chan Insight   { return a.contraflow.Recv() }
func (a *Address) mgmtRecv() <-chan MgmtMsg         { return a.mgmt.Recv() }
