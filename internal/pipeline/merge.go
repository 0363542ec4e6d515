package pipeline

import "context"

// MergedKind tags which of the three priority classes a MergedItem came
// from.
type MergedKind int

const (
	MergedMgmt MergedKind = iota
	MergedContraflow
	MergedForward
)

// MergedItem is the single cursor PriorityMerge yields.
type MergedItem struct {
	Kind    MergedKind
	Mgmt    MgmtMsg
	Insight Insight
	Forward ForwardMsg
}

// PriorityMerge merges three input streams — management, contraflow,
// forward — into one, yielding whatever is available by strict class
// priority M > C > F. It is fair within a class (items of one class are
// delivered in arrival order) but a steady stream of lower-priority items
// never starves a higher-priority one: every poll re-checks from the top.
type PriorityMerge struct {
	mgmtCh <-chan MgmtMsg
	cfCh   <-chan Insight
	fwdCh  <-chan ForwardMsg

	mgmtClosed, cfClosed, fwdClosed bool
	pendingMgmt                     *MgmtMsg
	pendingCf                       *Insight
	pendingFwd                      *ForwardMsg
}

// NewPriorityMerge builds a merge over the three given channels.
func NewPriorityMerge(mgmt <-chan MgmtMsg, cf <-chan Insight, fwd <-chan ForwardMsg) *PriorityMerge {
	return &PriorityMerge{mgmtCh: mgmt, cfCh: cf, fwdCh: fwd}
}

// Next blocks until an item is available from any class, or until all
// three sources have closed (reported as ok=false), or until ctx is
// cancelled (also ok=false).
func (p *PriorityMerge) Next(ctx context.Context) (item MergedItem, ok bool) {
	for {
		// Pending checks are interleaved with the non-blocking per-class
		// drains, highest class first, so a value that arrived on a
		// higher-priority channel while a lower-priority value sat pending
		// (parked there by the blocking select below) is always observed
		// before that pending value is yielded.
		if p.pendingMgmt != nil {
			item = MergedItem{Kind: MergedMgmt, Mgmt: *p.pendingMgmt}
			p.pendingMgmt = nil
			return item, true
		}
		if !p.mgmtClosed {
			select {
			case v, chOk := <-p.mgmtCh:
				if !chOk {
					p.mgmtClosed, p.mgmtCh = true, nil
				} else {
					return MergedItem{Kind: MergedMgmt, Mgmt: v}, true
				}
				continue
			default:
			}
		}

		if p.pendingCf != nil {
			item = MergedItem{Kind: MergedContraflow, Insight: *p.pendingCf}
			p.pendingCf = nil
			return item, true
		}
		if !p.cfClosed {
			select {
			case v, chOk := <-p.cfCh:
				if !chOk {
					p.cfClosed, p.cfCh = true, nil
				} else {
					return MergedItem{Kind: MergedContraflow, Insight: v}, true
				}
				continue
			default:
			}
		}

		if p.pendingFwd != nil {
			item = MergedItem{Kind: MergedForward, Forward: *p.pendingFwd}
			p.pendingFwd = nil
			return item, true
		}
		if !p.fwdClosed {
			select {
			case v, chOk := <-p.fwdCh:
				if !chOk {
					p.fwdClosed, p.fwdCh = true, nil
				} else {
					return MergedItem{Kind: MergedForward, Forward: v}, true
				}
				continue
			default:
			}
		}

		if p.mgmtClosed && p.cfClosed && p.fwdClosed {
			return MergedItem{}, false
		}

		select {
		case v, chOk := <-p.mgmtCh:
			if !chOk {
				p.mgmtClosed, p.mgmtCh = true, nil
			} else {
				p.pendingMgmt = &v
			}
		case v, chOk := <-p.cfCh:
			if !chOk {
				p.cfClosed, p.cfCh = true, nil
			} else {
				p.pendingCf = &v
			}
		case v, chOk := <-p.fwdCh:
			if !chOk {
				p.fwdClosed, p.fwdCh = true, nil
			} else {
				p.pendingFwd = &v
			}
		case <-ctx.Done():
			return MergedItem{}, false
		}
	}
}
