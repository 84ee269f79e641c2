package state

func ClampCursor(cursor, size int) int {
	if size <= 0 {
		return 0
	}
	if cursor >= size {
		return size - 1
	}
	if cursor < 0 {
		return 0
	}
	return cursor
}

// ListHeight is how many article rows fit under the header and above the
// footer for a terminal of the given height.
func ListHeight(height int, hasNotice bool) int {
	if height <= 0 {
		return 10
	}
	chrome := 6
	if hasNotice {
		chrome++
	}
	rows := height - chrome
	if rows < 3 {
		rows = 3
	}
	return rows
}

// CenteredWindow returns the [start, end) slice of totalRows to draw so that
// cursor stays roughly centered. A negative cursor pins the window to the top.
func CenteredWindow(totalRows, cursor, height int) (int, int) {
	if totalRows <= 0 {
		return 0, 0
	}
	if height <= 0 || totalRows <= height {
		return 0, totalRows
	}
	if cursor < 0 {
		return 0, height
	}
	cursor = ClampCursor(cursor, totalRows)
	start := cursor - height/2
	if start < 0 {
		start = 0
	}
	maxStart := totalRows - height
	if start > maxStart {
		start = maxStart
	}
	return start, start + height
}
