package trajectory

// trackCursor points at the next unread record of one class trajectory
type trackCursor struct {
	records []OutputRecord
	pos     int
}

func (c *trackCursor) head() OutputRecord {
	return c.records[c.pos]
}

// Copied from container/heap - https://golang.org/pkg/container/heap/
// Why make copy? Just want to avoid type conversion

type cursorHeap []*trackCursor

func (h cursorHeap) Len() int           { return len(h) }
func (h cursorHeap) Less(i, j int) bool { return recordLess(h[i].head(), h[j].head()) }
func (h cursorHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

// Push pushes the element x onto the heap.
// The complexity is O(log n) where n = h.Len().
func (h *cursorHeap) Push(x *trackCursor) {
	*h = append(*h, x)
	h.up(h.Len() - 1)
}

// Pop removes and returns the minimum element (according to Less) from the heap.
// The complexity is O(log n) where n = h.Len().
func (h *cursorHeap) Pop() *trackCursor {
	n := h.Len() - 1
	h.Swap(0, n)
	h.down(0, n)
	heapSize := len(*h)
	lastNode := (*h)[heapSize-1]
	*h = (*h)[0 : heapSize-1]
	return lastNode
}

func (h cursorHeap) up(j int) {
	for {
		i := (j - 1) / 2
		if i == j || !h.Less(j, i) {
			break
		}
		h.Swap(i, j)
		j = i
	}
}

func (h cursorHeap) down(i0, n int) bool {
	i := i0
	for {
		j1 := 2*i + 1
		if j1 >= n || j1 < 0 {
			break
		}
		j := j1
		if j2 := j1 + 1; j2 < n && h.Less(j2, j1) {
			j = j2
		}
		if !h.Less(j, i) {
			break
		}
		h.Swap(i, j)
		i = j
	}
	return i > i0
}

// mergeTracks merges frame-sorted per-class trajectories into a single slice sorted by (Frame, ClassID).
func mergeTracks(tracks [][]OutputRecord) []OutputRecord {
	total := 0
	cursors := make(cursorHeap, 0, len(tracks))
	for _, track := range tracks {
		if len(track) == 0 {
			continue
		}
		total += len(track)
		cursors.Push(&trackCursor{records: track})
	}
	merged := make([]OutputRecord, 0, total)
	for cursors.Len() > 0 {
		cursor := cursors.Pop()
		merged = append(merged, cursor.head())
		cursor.pos++
		if cursor.pos < len(cursor.records) {
			cursors.Push(cursor)
		}
	}
	return merged
}
