package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestItemStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to ItemStatus
		ok       bool
	}{
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusBorrowed, true},
		{StatusPending, StatusRejected, true},
		{StatusApproved, StatusBorrowed, true},
		{StatusBorrowed, StatusReturned, true},

		// 终态不允许复活
		{StatusReturned, StatusPending, false},
		{StatusReturned, StatusBorrowed, false},
		{StatusRejected, StatusPending, false},
		{StatusRejected, StatusApproved, false},
		{StatusPending, StatusReturned, false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.ok, tc.from.CanTransition(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestItemStatusValid(t *testing.T) {
	require.True(t, StatusPending.Valid())
	require.True(t, StatusReturned.Valid())
	require.False(t, ItemStatus("shipped").Valid())
	require.False(t, ItemStatus("").Valid())
}

func TestRequestStatusDerived(t *testing.T) {
	req := BorrowRequest{Items: []RequestItem{
		{ID: 1, Status: StatusBorrowed},
		{ID: 2, Status: StatusPending},
	}}
	// 有 pending 条目就算 pending 视图的一员
	require.Equal(t, StatusPending, req.Status())
	require.True(t, req.HasItemIn(StatusPending))
	require.True(t, req.HasItemIn(StatusBorrowed))

	req.Items[1].Status = StatusBorrowed
	require.Equal(t, StatusBorrowed, req.Status())

	req.Items[0].Status = StatusReturned
	req.Items[1].Status = StatusReturned
	require.Equal(t, StatusReturned, req.Status())

	req.Items = nil
	require.Equal(t, StatusPending, req.Status())
}

func TestRemarkTypeLabel(t *testing.T) {
	require.Equal(t, "Missing Parts", RemarkMissingParts.Label())
	require.Equal(t, "late", RemarkType("late").Label())
}

func TestFindItem(t *testing.T) {
	req := BorrowRequest{Items: []RequestItem{{ID: 5, Name: "Oscilloscope"}}}
	require.NotNil(t, req.FindItem(5))
	require.Nil(t, req.FindItem(6))

	req.FindItem(5).Quantity = 3
	require.Equal(t, 3, req.Items[0].Quantity)
}
