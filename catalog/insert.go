package catalog

import (
	"fmt"
	"sort"
)

// AddRequest is one request to (*Catalog).AddMore: insert msg at
// position, or let the insertion heuristic choose one if Auto is set.
type AddRequest struct {
	Msg      *Entry
	Position int
	Auto     bool
}

// AddResult reports where each request actually landed: -1 if it replaced
// an existing entry in place rather than being inserted.
type AddResult struct {
	Position int
}

// AddMoreOptions governs AddMore.
type AddMoreOptions struct {
	// Synonyms maps a source path to the set of paths considered the same
	// file for the insertion heuristic's primary-source tracking.
	Synonyms map[string][]string
	// Cumulative means Position values in the request are already
	// relative to the final layout; when false (the default) they are
	// relative to the catalog's pre-call indices and must be adjusted by
	// an accumulating offset as entries are inserted.
	Cumulative bool
}

// AddMore bulk-adds or replaces entries, per spec.md §4.3 "Bulk add".
func (c *Catalog) AddMore(requests []AddRequest, opts AddMoreOptions) ([]AddResult, error) {
	results := make([]AddResult, len(requests))
	type resolved struct {
		idx int
		pos int
		msg *Entry
	}
	var toInsert []resolved

	for i, req := range requests {
		if existing, ok := c.Find(req.Msg.Msgctxt(), req.Msg.Msgid()); ok {
			*existing = *req.Msg
			existing.bindAll()
			results[i] = AddResult{Position: -1}
			continue
		}

		var pos int
		switch {
		case req.Auto:
			pos, _ = c.insertionPosition(req.Msg, opts.Synonyms)
		case req.Position < 0:
			pos = len(c.entries) + req.Position
			if pos < 0 || pos > len(c.entries) {
				return nil, fmt.Errorf("add_more: position %d out of range", req.Position)
			}
		default:
			pos = req.Position
			if pos > len(c.entries) {
				return nil, fmt.Errorf("add_more: position %d out of range", req.Position)
			}
		}
		toInsert = append(toInsert, resolved{idx: i, pos: pos, msg: req.Msg})
	}

	sort.SliceStable(toInsert, func(a, b int) bool { return toInsert[a].pos < toInsert[b].pos })

	offset := 0
	for _, r := range toInsert {
		pos := r.pos
		if !opts.Cumulative {
			pos += offset
		}
		if pos < 0 {
			pos = 0
		}
		if pos > len(c.entries) {
			pos = len(c.entries)
		}
		c.entries = append(c.entries, nil)
		copy(c.entries[pos+1:], c.entries[pos:])
		c.entries[pos] = r.msg
		results[r.idx] = AddResult{Position: pos}
		offset++
	}

	if len(toInsert) > 0 {
		if err := c.reindex(); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// insertionPosition implements the §4.3 insertion heuristic.
func (c *Catalog) insertionPosition(msg *Entry, synonyms map[string][]string) (int, float64) {
	if msg.Obsolete() || msg.Source.Len() == 0 {
		return len(c.entries), 0.0
	}
	candidatePath := msg.Source.Items()[0].Path
	candidateLine := msg.Source.Items()[0].Line

	equivalent := func(a, b string) bool {
		if a == b {
			return true
		}
		for _, syn := range synonyms[a] {
			if syn == b {
				return true
			}
		}
		for _, syn := range synonyms[b] {
			if syn == a {
				return true
			}
		}
		return false
	}

	inRun := false
	for i, e := range c.entries {
		if e.Obsolete() || e.Source.Len() == 0 {
			continue
		}
		primary := e.Source.Items()[0].Path
		if !equivalent(primary, candidatePath) {
			if inRun {
				return i, 1.0
			}
			continue
		}
		inRun = true
		for _, ref := range e.Source.Items() {
			if equivalent(ref.Path, candidatePath) && ref.Line > candidateLine {
				return i, 1.0
			}
		}
	}
	if inRun {
		return len(c.entries), 1.0
	}
	return len(c.entries), 0.0
}

// RemoveOnSync flags msg for removal at the next Sync(false).
func (c *Catalog) RemoveOnSync(msg *Entry) {
	if c.removeOnSync == nil {
		c.removeOnSync = make(map[int]bool)
	}
	for i, e := range c.entries {
		if e == msg {
			c.removeOnSync[i] = true
			return
		}
	}
}

// Inverse returns the lazy msgstr[0] → entries map, rebuilding it if
// invalidated since the last Sync.
func (c *Catalog) Inverse() map[string][]*Entry {
	if c.inverseFlag {
		return c.inverse
	}
	c.inverse = make(map[string][]*Entry)
	for _, e := range c.Entries() {
		items := e.Msgstr.Items()
		if len(items) == 0 {
			continue
		}
		c.inverse[items[0]] = append(c.inverse[items[0]], e)
	}
	c.inverseFlag = true
	return c.inverse
}
