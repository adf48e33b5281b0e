package edl

import (
	"fmt"
	"sort"
	"strconv"
)

// Collection maps 6-digit event numbers to shot records.
type Collection struct {
	// Start is the first event number seen in the EDL. Export begins here.
	Start string

	shots map[string]*ShotRecord
}

func newCollection(n int) *Collection {
	return &Collection{shots: make(map[string]*ShotRecord, n)}
}

func (c *Collection) add(rec *ShotRecord) {
	if c.Start == "" {
		c.Start = rec.Event
	}
	if prev, ok := c.shots[rec.Event]; ok {
		rec.DuplicateEvent = true
		rec.ReplacedShotCode = prev.ShotCode
	}
	c.shots[rec.Event] = rec
}

// Len returns the number of distinct events decoded.
func (c *Collection) Len() int {
	return len(c.shots)
}

// Get returns the record for a 6-digit event number.
func (c *Collection) Get(event string) (*ShotRecord, bool) {
	rec, ok := c.shots[event]
	return rec, ok
}

// Events returns every decoded event number in numeric order.
func (c *Collection) Events() []string {
	keys := make([]string, 0, len(c.shots))
	for k := range c.shots {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Records returns the records Rows would yield, in the same order.
func (c *Collection) Records() []*ShotRecord {
	var recs []*ShotRecord
	it := c.Rows()
	for it.Next() {
		recs = append(recs, it.Record())
	}
	return recs
}

// Rows returns a cursor over the exportable records: consecutive event
// numbers starting at Start, stopping at the first number missing from the
// collection. Events after a numbering gap are not visited.
func (c *Collection) Rows() *RowIter {
	n, err := strconv.Atoi(c.Start)
	if err != nil {
		return &RowIter{done: true}
	}
	return &RowIter{c: c, next: n}
}

// RowIter walks a Collection in export order. It cannot be restarted.
type RowIter struct {
	c    *Collection
	next int
	cur  *ShotRecord
	done bool
}

// Next advances to the next record and reports whether there is one.
func (it *RowIter) Next() bool {
	if it.done {
		return false
	}
	rec, ok := it.c.shots[fmt.Sprintf("%06d", it.next)]
	if !ok {
		it.done = true
		it.cur = nil
		return false
	}
	it.cur = rec
	it.next++
	return true
}

// Record returns the current record, or nil when Next has not returned true.
func (it *RowIter) Record() *ShotRecord {
	return it.cur
}

// Row returns the current record in Columns order, or nil when Next has not
// returned true.
func (it *RowIter) Row() []string {
	if it.cur == nil {
		return nil
	}
	return it.cur.Row()
}
