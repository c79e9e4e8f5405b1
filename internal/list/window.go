package list

// PageWindow returns the sliding window of page numbers to render: at most
// five, starting two pages left of current, clamped to [1, total]. The
// window is not re-centered near the right edge, so the tail pages render
// fewer than five buttons.
func PageWindow(current, total int) []int {
	if total < 1 {
		return nil
	}
	start := current - 2
	if start < 1 {
		start = 1
	}
	pages := make([]int, 0, 5)
	for p := start; p <= total && len(pages) < 5; p++ {
		pages = append(pages, p)
	}
	return pages
}
