package table

// View is an immutable picture of the controller used by renderers.
type View struct {
	Source        string     `json:"source"`
	Headers       []string   `json:"headers"`
	Rows          [][]string `json:"rows"`
	Query         string     `json:"query"`
	Page          int        `json:"page"`
	TotalPages    int        `json:"total_pages"`
	PageSize      int        `json:"page_size"`
	TotalRecords  int        `json:"total_records"`
	FilteredCount int        `json:"filtered_count"`
	FirstIndex    int        `json:"first_index"` // 1-based position of Rows[0] in the filtered set
	PageNumbers   []int      `json:"page_numbers"`
	Controls      Controls   `json:"controls"`
}

// Snapshot copies the current state into a View.
func (c *Controller) Snapshot() View {
	c.mu.RLock()
	defer c.mu.RUnlock()

	start, end := c.bounds()
	rows := make([][]string, 0, end-start)
	for _, r := range c.filtered[start:end] {
		row := make([]string, len(r.Values))
		copy(row, r.Values)
		rows = append(rows, row)
	}

	headers := make([]string, len(c.headers))
	copy(headers, c.headers)

	first := 0
	if end > start {
		first = start + 1
	}

	return View{
		Source:        c.source,
		Headers:       headers,
		Rows:          rows,
		Query:         c.query,
		Page:          c.page,
		TotalPages:    c.totalPages(),
		PageSize:      c.opts.PageSize,
		TotalRecords:  len(c.all),
		FilteredCount: len(c.filtered),
		FirstIndex:    first,
		PageNumbers:   c.pageNumbers(),
		Controls:      c.controls(),
	}
}

// Empty reports whether the view has nothing to show.
func (v View) Empty() bool {
	return len(v.Rows) == 0
}

// LastIndex returns the 1-based position of the final row on the page.
func (v View) LastIndex() int {
	if v.FirstIndex == 0 {
		return 0
	}
	return v.FirstIndex + len(v.Rows) - 1
}
