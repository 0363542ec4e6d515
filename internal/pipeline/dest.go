package pipeline

import "context"

// DestKind distinguishes the two closed variants a Destination can be.
type DestKind int

const (
	DestSink DestKind = iota
	DestPipeline
)

// Destination is a polymorphic fan-out target: either a sink (addressed via
// a buffered sender of Event) or a peer pipeline (addressed via its
// Address). The tick-suppression rule applies only to the Pipeline arm.
type Destination struct {
	ID   uint64
	Kind DestKind

	sink       *Sender[Event]
	peer       *Address
	targetPort string
}

// NewSinkDestination wraps a sink-bound sender as a Destination.
func NewSinkDestination(id uint64, sink *Sender[Event]) Destination {
	return Destination{ID: id, Kind: DestSink, sink: sink}
}

// NewPipelineDestination wraps a peer pipeline address as a Destination,
// delivering into the peer's DefaultInputPort.
func NewPipelineDestination(id uint64, peer *Address) Destination {
	return Destination{ID: id, Kind: DestPipeline, peer: peer, targetPort: DefaultInputPort}
}

// NewPipelineDestinationOnPort is like NewPipelineDestination but delivers
// into a specific named input port on the peer.
func NewPipelineDestinationOnPort(id uint64, peer *Address, port string) Destination {
	return Destination{ID: id, Kind: DestPipeline, peer: peer, targetPort: port}
}

// SendEvent dispatches an ordinary data event to this destination.
func (d Destination) SendEvent(ctx context.Context, ev Event) error {
	switch d.Kind {
	case DestSink:
		return d.sink.Send(ctx, ev)
	case DestPipeline:
		return d.peer.Send(ctx, d.targetPort, ev)
	default:
		return ErrTopologyMisuse
	}
}

// SendSignal dispatches a signal. Sink destinations always receive it;
// pipeline destinations receive it only if its signal kind is not Tick —
// ticks are scoped to the pipeline that emitted them and must never reach a
// peer's forward queue.
func (d Destination) SendSignal(ctx context.Context, sig Event) error {
	if d.Kind == DestPipeline && sig.Kind == SignalTick {
		return nil
	}
	switch d.Kind {
	case DestSink:
		return d.sink.Send(ctx, sig)
	case DestPipeline:
		return d.peer.Send(ctx, d.targetPort, sig)
	default:
		return ErrTopologyMisuse
	}
}
