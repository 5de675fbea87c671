// Package table holds the paginated, filterable view state over a dataset.
//
// A Controller owns the full record set, the subset matching the current
// search term, and a 1-based page number. Renderers read an immutable View
// via Snapshot and drive the controller with navigation calls.
package table

import (
	"sync"

	"csvview/internal/dataset"
	"csvview/internal/logging"
)

// Options sets pagination geometry. Zero fields take the defaults.
type Options struct {
	PageSize  int
	BlockSize int
	FastJump  int
}

const (
	DefaultPageSize  = 50
	DefaultBlockSize = 10
	DefaultFastJump  = 10
)

func (o Options) withDefaults() Options {
	if o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}
	if o.BlockSize <= 0 {
		o.BlockSize = DefaultBlockSize
	}
	if o.FastJump <= 0 {
		o.FastJump = DefaultFastJump
	}
	return o
}

// Controller is the table view state. It is safe for concurrent use.
type Controller struct {
	mu   sync.RWMutex
	opts Options

	source   string
	headers  []string
	all      []dataset.Record
	filtered []dataset.Record
	query    string
	page     int
}

// New creates an empty controller.
func New(opts Options) *Controller {
	return &Controller{opts: opts.withDefaults(), page: 1}
}

// Options returns the effective pagination geometry.
func (c *Controller) Options() Options {
	return c.opts
}

// Load replaces the dataset, clears the search term and returns to page 1.
func (c *Controller) Load(ds *dataset.Dataset) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ds == nil {
		ds = &dataset.Dataset{}
	}
	c.source = ds.Source
	c.headers = ds.Headers
	c.all = ds.Records
	c.filtered = ds.Records
	c.query = ""
	c.page = 1
	logging.TableDebug("Loaded %d records (%d columns) from %q", len(c.all), len(c.headers), c.source)
}

// SetQuery filters records by case-insensitive substring and returns to page 1.
func (c *Controller) SetQuery(term string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.query = term
	c.page = 1

	m := dataset.NewMatcher(term)
	if m.Empty() {
		c.filtered = c.all
		return
	}
	filtered := make([]dataset.Record, 0, len(c.all))
	for _, r := range c.all {
		if m.Match(r) {
			filtered = append(filtered, r)
		}
	}
	c.filtered = filtered
	logging.TableDebug("Query %q matched %d of %d records", term, len(filtered), len(c.all))
}

// Query returns the active search term.
func (c *Controller) Query() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.query
}

// HasData reports whether a dataset with columns is loaded.
func (c *Controller) HasData() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.headers) > 0
}

// Page returns the current 1-based page.
func (c *Controller) Page() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.page
}

// TotalPages returns ceil(filtered/pageSize); zero when nothing matches.
func (c *Controller) TotalPages() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.totalPages()
}

func (c *Controller) totalPages() int {
	return (len(c.filtered) + c.opts.PageSize - 1) / c.opts.PageSize
}

// setPage clamps p into [1, max(total,1)].
func (c *Controller) setPage(p int) {
	total := c.totalPages()
	if p > total {
		p = total
	}
	if p < 1 {
		p = 1
	}
	c.page = p
}

// GoTo jumps to page p, clamped to the valid range.
func (c *Controller) GoTo(p int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setPage(p)
}

// Next advances one page if possible.
func (c *Controller) Next() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.page >= c.totalPages() {
		return false
	}
	c.page++
	return true
}

// Prev goes back one page if possible.
func (c *Controller) Prev() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.page <= 1 {
		return false
	}
	c.page--
	return true
}

// FastNext skips FastJump pages forward, landing on the last page when
// fewer than FastJump remain.
func (c *Controller) FastNext() {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := c.totalPages()
	if c.page <= total-c.opts.FastJump {
		c.page += c.opts.FastJump
		return
	}
	c.setPage(total)
}

// FastPrev skips FastJump pages back, landing on page 1 near the start.
func (c *Controller) FastPrev() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.page > c.opts.FastJump {
		c.page -= c.opts.FastJump
		return
	}
	c.page = 1
}

// bounds returns the filtered slice indexes of the current page.
func (c *Controller) bounds() (start, end int) {
	start = (c.page - 1) * c.opts.PageSize
	if start > len(c.filtered) {
		start = len(c.filtered)
	}
	end = start + c.opts.PageSize
	if end > len(c.filtered) {
		end = len(c.filtered)
	}
	return start, end
}

// PageRecords returns the records on the current page.
func (c *Controller) PageRecords() []dataset.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	start, end := c.bounds()
	return c.filtered[start:end]
}

// PageNumbers returns the block of page numbers containing the current page.
func (c *Controller) PageNumbers() []int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pageNumbers()
}

func (c *Controller) pageNumbers() []int {
	total := c.totalPages()
	if total == 0 {
		return nil
	}
	block := (c.page - 1) / c.opts.BlockSize
	start := block*c.opts.BlockSize + 1
	end := start + c.opts.BlockSize - 1
	if end > total {
		end = total
	}
	nums := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		nums = append(nums, i)
	}
	return nums
}

// Controls reports which navigation actions are currently possible.
type Controls struct {
	HasData     bool `json:"has_data"`
	CanPrev     bool `json:"can_prev"`
	CanNext     bool `json:"can_next"`
	CanFastPrev bool `json:"can_fast_prev"`
	CanFastNext bool `json:"can_fast_next"`
}

// Controls returns the enabled state of the navigation actions.
func (c *Controller) Controls() Controls {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.controls()
}

func (c *Controller) controls() Controls {
	total := c.totalPages()
	return Controls{
		HasData:     len(c.headers) > 0,
		CanPrev:     c.page > 1,
		CanNext:     c.page < total,
		CanFastPrev: c.page > c.opts.FastJump,
		CanFastNext: c.page <= total-c.opts.FastJump,
	}
}

// RowAt returns the record at index i of the current page.
func (c *Controller) RowAt(i int) (dataset.Record, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rowAt(i)
}

func (c *Controller) rowAt(i int) (dataset.Record, bool) {
	if i < 0 || i >= c.opts.PageSize {
		return dataset.Record{}, false
	}
	idx := (c.page-1)*c.opts.PageSize + i
	if idx >= len(c.filtered) {
		return dataset.Record{}, false
	}
	return c.filtered[idx], true
}

// Detail returns the label/value pairs of the record at index i of the current page.
func (c *Controller) Detail(i int) ([]dataset.Field, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.rowAt(i)
	if !ok {
		return nil, false
	}
	return rec.Fields(c.headers), true
}
