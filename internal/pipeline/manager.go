package pipeline

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/ClusterCockpit/cc-pipeline/internal/cclog"
)

// operatorIDBase is the reserved high bit-range the manager draws pipeline
// uids from, so they never collide with source/onramp ids that start at 0.
const operatorIDBase uint64 = 1 << 63

// DefaultManagerDepth is the configured channel depth the design calls for
// at the manager: 64.
const DefaultManagerDepth = 64

// CreateSpec describes a pipeline to build: its executable graph and an
// optional per-pipeline channel-depth override (0 means "use the manager
// default").
type CreateSpec struct {
	Graph Graph
	Depth int
}

type managerMsgKind int

const (
	mgrCreate managerMsgKind = iota
	mgrStop
)

type createResult struct {
	addr *Address
	err  error
}

type managerMsg struct {
	kind  managerMsgKind
	spec  CreateSpec
	reply chan<- createResult
}

type taskHandle struct {
	addr   *Address
	cancel context.CancelFunc
}

// Manager accepts Create/Stop commands over a bounded channel, builds the
// channel triple and tick emitter for each new pipeline, and spawns its
// task. StopPipeline may be called from outside the manager loop, so the
// task table is guarded by mu; the stopped-pipeline cache is safe for
// concurrent use on its own.
type Manager struct {
	depth   int
	inbox   chan managerMsg
	limiter *rate.Limiter

	uidCounter uint64

	mu      sync.Mutex
	tasks   map[uint64]*taskHandle
	stopped *lru.Cache[uint64, struct{}]

	wg sync.WaitGroup
}

// NewManager builds a Manager with the given management channel depth and
// pipeline-creation rate limit. depth <= 0 uses DefaultManagerDepth.
func NewManager(depth int, createRate rate.Limit, createBurst int) *Manager {
	if depth <= 0 {
		depth = DefaultManagerDepth
	}
	stopped, err := lru.New[uint64, struct{}](1024)
	if err != nil {
		// Only possible if size <= 0, which a constant never triggers.
		cclog.Fatalf("[PIPELINE]> manager: building stopped-pipeline cache: %v", err)
	}
	return &Manager{
		depth:      depth,
		inbox:      make(chan managerMsg, depth),
		limiter:    rate.NewLimiter(createRate, createBurst),
		uidCounter: operatorIDBase,
		tasks:      map[uint64]*taskHandle{},
		stopped:    stopped,
	}
}

// Run drives the manager's own loop until Stop is called or ctx is
// cancelled. It returns once the loop exits; pipelines it has spawned keep
// running against their own derived contexts until ctx itself ends.
func (m *Manager) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			cclog.Infof("[PIPELINE]> manager: context cancelled, exiting")
			return
		case msg := <-m.inbox:
			switch msg.kind {
			case mgrStop:
				cclog.Infof("[PIPELINE]> manager: stop received, exiting")
				return
			case mgrCreate:
				addr, err := m.doCreate(ctx, msg.spec)
				msg.reply <- createResult{addr: addr, err: err}
			}
		}
	}
}

// Create asks the manager to build a new pipeline and returns its address.
// Acceptance is rate-limited so a misbehaving controller cannot spawn
// pipelines faster than the manager can service them; a rejected request
// surfaces as ErrBackpressure.
func (m *Manager) Create(ctx context.Context, spec CreateSpec) (*Address, error) {
	reply := make(chan createResult, 1)
	select {
	case m.inbox <- managerMsg{kind: mgrCreate, spec: spec, reply: reply}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case res := <-reply:
		return res.addr, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Stop asks the manager loop to exit.
func (m *Manager) Stop(ctx context.Context) error {
	select {
	case m.inbox <- managerMsg{kind: mgrStop}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) doCreate(ctx context.Context, spec CreateSpec) (*Address, error) {
	if !m.limiter.Allow() {
		return nil, ErrBackpressure
	}
	depth := spec.Depth
	if depth <= 0 {
		depth = m.depth
	}
	id := m.uidCounter
	m.uidCounter++

	addr := NewAddress(id, depth)
	task := NewTask(id, spec.Graph, addr)
	taskCtx, cancel := context.WithCancel(ctx)

	m.wg.Add(2)
	go func() {
		defer m.wg.Done()
		task.Run(taskCtx)
	}()
	go func() {
		defer m.wg.Done()
		runTicker(taskCtx, id, addr, DefaultTickInterval)
	}()

	m.mu.Lock()
	m.tasks[id] = &taskHandle{addr: addr, cancel: cancel}
	m.mu.Unlock()

	cclog.Infof("[PIPELINE]> manager: created pipeline %d", id)
	return addr, nil
}

// StopPipeline tears down a single pipeline: its task and tick emitter are
// cancelled and its channels closed. The id is remembered in a bounded
// recently-stopped cache so a stray DisconnectInput/DisconnectOutput
// replay against it can be recognised and ignored by callers that consult
// Stopped.
func (m *Manager) StopPipeline(id uint64) {
	m.mu.Lock()
	h, ok := m.tasks[id]
	if ok {
		delete(m.tasks, id)
	}
	m.mu.Unlock()
	if !ok {
		return
	}
	h.cancel()
	h.addr.Close()
	m.stopped.Add(id, struct{}{})
}

// Stopped reports whether id was recently torn down by StopPipeline. Like
// any bounded cache, a sufficiently old id may have been evicted.
func (m *Manager) Stopped(id uint64) bool {
	_, ok := m.stopped.Get(id)
	return ok
}

// Wait blocks until every pipeline task and tick emitter the manager has
// spawned has returned.
func (m *Manager) Wait() {
	m.wg.Wait()
}
