package state

import "testing"

func TestClampCursor(t *testing.T) {
	if got := ClampCursor(-1, 3); got != 0 {
		t.Fatalf("expected clamp to 0, got %d", got)
	}
	if got := ClampCursor(3, 3); got != 2 {
		t.Fatalf("expected clamp to 2, got %d", got)
	}
	if got := ClampCursor(1, 3); got != 1 {
		t.Fatalf("expected keep 1, got %d", got)
	}
	if got := ClampCursor(5, 0); got != 0 {
		t.Fatalf("expected 0 for empty list, got %d", got)
	}
}

func TestListHeight(t *testing.T) {
	if got := ListHeight(0, false); got != 10 {
		t.Fatalf("expected default 10, got %d", got)
	}
	if got := ListHeight(20, false); got != 14 {
		t.Fatalf("expected 14 rows, got %d", got)
	}
	if got := ListHeight(20, true); got != 13 {
		t.Fatalf("expected 13 rows with a notice, got %d", got)
	}
	if got := ListHeight(4, false); got != 3 {
		t.Fatalf("expected minimum of 3, got %d", got)
	}
}

func TestCenteredWindow(t *testing.T) {
	cases := []struct {
		total, cursor, height int
		start, end            int
	}{
		{total: 0, cursor: 0, height: 5, start: 0, end: 0},
		{total: 4, cursor: 3, height: 5, start: 0, end: 4},
		{total: 20, cursor: -1, height: 5, start: 0, end: 5},
		{total: 20, cursor: 10, height: 5, start: 8, end: 13},
		{total: 20, cursor: 19, height: 5, start: 15, end: 20},
		{total: 20, cursor: 1, height: 5, start: 0, end: 5},
	}
	for _, tc := range cases {
		start, end := CenteredWindow(tc.total, tc.cursor, tc.height)
		if start != tc.start || end != tc.end {
			t.Fatalf("CenteredWindow(%d, %d, %d) = (%d, %d), want (%d, %d)", tc.total, tc.cursor, tc.height, start, end, tc.start, tc.end)
		}
	}
}
