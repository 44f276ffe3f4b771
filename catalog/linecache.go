package catalog

// lineCache holds the raw source lines belonging to one entry, bucketed by
// field, so that an unmodified entry can be reserialized byte-for-byte
// instead of being re-rendered (spec.md §4.1 "Line cache", §4.2). Populated
// by the parser when lcache is enabled; read and, for dirty buckets,
// replaced by the serializer.
type lineCache struct {
	ManualComment        []string
	AutoComment          []string
	Source               []string
	Flags                []string
	MsgctxtPrevious      []string
	MsgidPrevious        []string
	MsgidPluralPrevious  []string
	Msgctxt              []string
	Msgid                []string
	MsgidPlural          []string
	Msgstr               []string
	MsgstrPlural         [][]string
}

// empty reports whether no lines were cached at all, which forces
// re-rendering regardless of the dirty bit (spec.md §4.2).
func (c *lineCache) empty() bool {
	return len(c.ManualComment) == 0 && len(c.AutoComment) == 0 &&
		len(c.Source) == 0 && len(c.Flags) == 0 &&
		len(c.MsgctxtPrevious) == 0 && len(c.MsgidPrevious) == 0 &&
		len(c.MsgidPluralPrevious) == 0 && len(c.Msgctxt) == 0 &&
		len(c.Msgid) == 0 && len(c.MsgidPlural) == 0 &&
		len(c.Msgstr) == 0 && len(c.MsgstrPlural) == 0
}
