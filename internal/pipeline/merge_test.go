package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPriorityMergePrefersManagementOverContraflowOverForward(t *testing.T) {
	mgmt := make(chan MgmtMsg, 1)
	cf := make(chan Insight, 1)
	fwd := make(chan ForwardMsg, 1)

	mgmt <- MgmtMsg{Kind: MgmtDisconnectInput, ID: 1}
	cf <- Insight{Action: CbOpen}
	fwd <- ForwardMsg{Port: "in", Event: Event{ID: 7}}

	m := NewPriorityMerge(mgmt, cf, fwd)
	ctx := context.Background()

	item, ok := m.Next(ctx)
	require.True(t, ok)
	require.Equal(t, MergedMgmt, item.Kind)

	item, ok = m.Next(ctx)
	require.True(t, ok)
	require.Equal(t, MergedContraflow, item.Kind)

	item, ok = m.Next(ctx)
	require.True(t, ok)
	require.Equal(t, MergedForward, item.Kind)
}

func TestPriorityMergeSteadyForwardDoesNotStarveManagement(t *testing.T) {
	mgmt := make(chan MgmtMsg, 1)
	cf := make(chan Insight)
	fwd := make(chan ForwardMsg, 4)
	for i := 0; i < 4; i++ {
		fwd <- ForwardMsg{Event: Event{ID: uint64(i)}}
	}

	m := NewPriorityMerge(mgmt, cf, fwd)
	ctx := context.Background()

	// Drain one forward item, then inject a management message; it must
	// be observed before the remaining forward backlog.
	item, ok := m.Next(ctx)
	require.True(t, ok)
	require.Equal(t, MergedForward, item.Kind)

	mgmt <- MgmtMsg{Kind: MgmtDisconnectInput, ID: 42}
	item, ok = m.Next(ctx)
	require.True(t, ok)
	require.Equal(t, MergedMgmt, item.Kind)
	require.Equal(t, uint64(42), item.Mgmt.ID)
}

func TestPriorityMergeEndsWhenAllThreeClose(t *testing.T) {
	mgmt := make(chan MgmtMsg)
	cf := make(chan Insight)
	fwd := make(chan ForwardMsg)
	close(mgmt)
	close(cf)
	close(fwd)

	m := NewPriorityMerge(mgmt, cf, fwd)
	_, ok := m.Next(context.Background())
	require.False(t, ok)
}

func TestPriorityMergeNextRespectsContextCancellation(t *testing.T) {
	mgmt := make(chan MgmtMsg)
	cf := make(chan Insight)
	fwd := make(chan ForwardMsg)
	m := NewPriorityMerge(mgmt, cf, fwd)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, ok := m.Next(ctx)
	require.False(t, ok)
}
