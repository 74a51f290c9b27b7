package graph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/shaban/trackgraph/document"
)

func TestCoalescePendingCancelsAddThenRemove(t *testing.T) {
	conn := document.Connection{
		Source:      document.NodePort{Node: 1, Channel: 0},
		Destination: document.NodePort{Node: 2, Channel: 0},
	}
	in := []pendingDelta{
		{conn: conn},
		{isRemove: true, conn: conn},
	}
	out := coalescePending(in)
	require.Empty(t, out)
}

func TestCoalescePendingKeepsSurvivingNetChange(t *testing.T) {
	conn := document.Connection{
		Source:      document.NodePort{Node: 1, Channel: 0},
		Destination: document.NodePort{Node: 2, Channel: 0},
	}
	other := document.Connection{
		Source:      document.NodePort{Node: 3, Channel: 0},
		Destination: document.NodePort{Node: 4, Channel: 0},
	}
	in := []pendingDelta{
		{conn: conn},
		{isRemove: true, conn: other},
	}
	out := coalescePending(in)
	require.Len(t, out, 2)
}

func TestFlushTimerBacksOffWhenIdle(t *testing.T) {
	ft := NewFlushTimer()
	interval := ft.tick()
	require.Equal(t, flushMinInterval+flushBackoffStep, interval)
}
