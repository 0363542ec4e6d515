package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSenderTrySendSafePreservesOrderUnderOverflow(t *testing.T) {
	s := NewSender[int](2)

	for i := 0; i < 10; i++ {
		require.NoError(t, s.TrySendSafe(i))
	}
	require.Equal(t, 10, s.Len())
	require.False(t, s.Ready())

	var got []int
	for len(got) < 10 {
		select {
		case v := <-s.Recv():
			got = append(got, v)
		default:
			s.DrainReady()
		}
	}
	for i, v := range got {
		require.Equal(t, i, v)
	}
}

func TestSenderDrainReadyOnlyTrueWhenOverflowFullyDelivered(t *testing.T) {
	s := NewSender[int](2)
	require.NoError(t, s.TrySendSafe(1))
	require.NoError(t, s.TrySendSafe(2))
	require.NoError(t, s.TrySendSafe(3))
	require.False(t, s.Ready())

	// Channel full of [1,2], overflow holds [3]; nothing drains until the
	// channel has room.
	require.False(t, s.DrainReady())
	require.Equal(t, 1, s.OverflowLen())

	// Make room: consume both items in the channel, leaving room for the
	// whole overflow to replay and still have a free channel slot.
	<-s.Recv()
	<-s.Recv()
	ready := s.DrainReady()
	require.True(t, ready)
	require.Equal(t, 0, s.OverflowLen())
}

func TestSenderCloneHasIndependentOverflow(t *testing.T) {
	s := NewSender[int](1)
	clone := s.Clone()

	require.NoError(t, s.TrySendSafe(1))  // fills the shared channel
	require.NoError(t, s.TrySendSafe(2))  // parks in s's own overflow
	require.NoError(t, clone.TrySendSafe(3)) // parks in clone's own overflow

	require.Equal(t, 1, s.OverflowLen())
	require.Equal(t, 1, clone.OverflowLen())
}

func TestSenderSendBackpressuresUntilCancelled(t *testing.T) {
	s := NewSender[int](0)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := s.Send(ctx, 1)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSenderMaybeSendDiscardsOnFull(t *testing.T) {
	s := NewSender[int](1)
	require.True(t, s.MaybeSend(1))
	require.False(t, s.MaybeSend(2))
	require.Equal(t, 1, s.Len())
}

func TestSenderCloseMakesFurtherSendsFail(t *testing.T) {
	s := NewSender[int](1)
	clone := s.Clone()
	s.Close()
	require.ErrorIs(t, clone.TrySendSafe(1), ErrDisconnected)
}
