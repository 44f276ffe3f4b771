package catalog

import (
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/polint/polint/catalog/plural"
)

// Catalog owns an ordered sequence of entries, a separately typed header
// entry, an encoding label, and the trailing bytes past the last entry in
// the source file (spec.md §3 "Catalog").
type Catalog struct {
	filename string
	entries  []*Entry
	header   *Entry
	index    map[string]int
	tail     string
	encoding string

	removeOnSync map[int]bool

	inverse     map[string][]*Entry
	inverseFlag bool

	accelerator, markup, language, environment OptString
	acceleratorDet, markupDet, languageDet, environmentDet bool

	wrapping    Wrapping
	wrappingDet bool

	pluralHeader *plural.Header
}

// invalidateHeaderCache drops every header-derived cache so the next
// accessor call re-reads the (just-mutated) header lines, per spec.md §4.3:
// setters "update the cache" but a raw header-line edit must not leave a
// stale accessor cache behind (e.g. the update_header/language round-trip
// law in spec.md §8).
func (c *Catalog) invalidateHeaderCache() {
	c.acceleratorDet = false
	c.markupDet = false
	c.languageDet = false
	c.environmentDet = false
	c.wrappingDet = false
	c.pluralHeader = nil
}

// LoadOptions governs Load.
type LoadOptions struct {
	Lcache     bool
	HeaderOnly bool
}

// Load parses data as a PO source and returns a populated Catalog.
func Load(data []byte, filename string, opts LoadOptions) (*Catalog, error) {
	entries, tail, encoding, err := ParsePO(data, filename, ParseOptions{
		Lcache:     opts.Lcache,
		HeaderOnly: opts.HeaderOnly,
	})
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, &SyntaxError{File: filename, Reason: "catalog has no header entry"}
	}

	c := &Catalog{
		filename: filename,
		entries:  entries,
		header:   entries[0],
		tail:     tail,
		encoding: encoding,
	}
	if err := c.reindex(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadFile reads path and parses it with Load.
func LoadFile(path string, opts LoadOptions) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(data, path, opts)
}

// Filename is the source path the catalog was loaded from, used for
// diagnostics.
func (c *Catalog) Filename() string { return c.filename }

// Header returns the header entry.
func (c *Catalog) Header() *Entry { return c.header }

// Entries returns the ordered, non-header message entries.
func (c *Catalog) Entries() []*Entry {
	if len(c.entries) <= 1 {
		return nil
	}
	return c.entries[1:]
}

// All returns every entry including the header, in file order.
func (c *Catalog) All() []*Entry { return c.entries }

// Len returns the number of non-header entries.
func (c *Catalog) Len() int { return len(c.Entries()) }

// reindex rebuilds the key→position map, validating key uniqueness
// (spec.md §3 "No two entries in a catalog have equal key").
func (c *Catalog) reindex() error {
	c.index = make(map[string]int, len(c.entries))
	for i, e := range c.entries {
		key := e.Key()
		if prev, ok := c.index[key]; ok {
			log.Warnf("%s: duplicate key at entries %d and %d, keeping the later one", c.filename, prev, i)
		}
		c.index[key] = i
	}
	return nil
}

// Find returns the entry with the given (msgctxt, msgid) key, if present.
func (c *Catalog) Find(msgctxt OptString, msgid string) (*Entry, bool) {
	key := optPart(msgctxt) + keySep + msgid
	i, ok := c.index[key]
	if !ok {
		return nil, false
	}
	return c.entries[i], true
}

// Translated, FuzzyCount and Untranslated return the counts used by a stat
// report.
func (c *Catalog) Translated() int   { return c.countWhere((*Entry).Translated) }
func (c *Catalog) Untranslated() int { return c.countWhere((*Entry).Untranslated) }
func (c *Catalog) FuzzyCount() int   { return c.countWhere((*Entry).Fuzzy) }

func (c *Catalog) countWhere(pred func(*Entry) bool) int {
	n := 0
	for _, e := range c.Entries() {
		if pred(e) {
			n++
		}
	}
	return n
}

// Encoding returns the catalog's source/target encoding label.
func (c *Catalog) Encoding() string { return c.encoding }

// Sync rebuilds the index (and, unless mapOnly, physically drops entries
// flagged by RemoveOnSync) per spec.md §4.3 "Delayed removal".
func (c *Catalog) Sync(mapOnly bool) error {
	if !mapOnly && len(c.removeOnSync) > 0 {
		kept := make([]*Entry, 0, len(c.entries))
		for i, e := range c.entries {
			if c.removeOnSync[i] {
				continue
			}
			kept = append(kept, e)
		}
		c.entries = kept
		c.removeOnSync = nil
	}
	c.inverseFlag = false
	return c.reindex()
}
