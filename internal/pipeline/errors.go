package pipeline

import "errors"

// Error classes from the pipeline's error handling design. Errors that end a
// single event (Protocol, GraphEnqueueError, TopologyMisuse) are logged and
// swallowed by the task; Disconnected is fatal for the one endpoint it
// affects; Backpressure is informational, surfaced through Ready().
var (
	// ErrProtocol marks a codec parse failure.
	ErrProtocol = errors.New("[PIPELINE]> protocol error")
	// ErrBackpressure marks a non-fatal overflow condition; callers may
	// poll Ready() before retrying.
	ErrBackpressure = errors.New("[PIPELINE]> backpressure")
	// ErrDisconnected marks a permanently gone peer.
	ErrDisconnected = errors.New("[PIPELINE]> disconnected")
	// ErrTopologyMisuse marks an invalid topology mutation (unknown port,
	// duplicate connect). State is left consistent.
	ErrTopologyMisuse = errors.New("[PIPELINE]> topology misuse")
	// ErrGraphEnqueue marks a rejection by the executable graph.
	ErrGraphEnqueue = errors.New("[PIPELINE]> graph enqueue error")
)
