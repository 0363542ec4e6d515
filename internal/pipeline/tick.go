package pipeline

import (
	"context"
	"time"

	"github.com/ClusterCockpit/cc-pipeline/internal/cclog"
)

// DefaultTickInterval is the tick cadence: 1000ms. runTicker takes the
// interval as a parameter, but the Manager always passes this constant, so
// changing the cadence of managed pipelines takes a recompilation.
const DefaultTickInterval = time.Second

// runTicker emits a Tick signal onto addr's forward channel every interval
// until ctx is cancelled. It uses MaybeSend rather than TrySendSafe: a
// dropped tick under backpressure is harmless (the next one arrives a
// second later), whereas parking in the overflow queue would let a stalled
// pipeline accumulate an unbounded backlog of ticks it will never need.
func runTicker(ctx context.Context, id uint64, addr *Address, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			cclog.Debugf("[PIPELINE]> task %d: tick emitter stopping", id)
			return
		case now := <-ticker.C:
			addr.MaybeSend(DefaultInputPort, Event{IngestNs: now.UnixNano(), Kind: SignalTick})
		}
	}
}
