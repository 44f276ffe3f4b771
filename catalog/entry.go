package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/polint/polint/catalog/monitor"
)

// OptString distinguishes an absent optional string field (msgctxt,
// msgid_plural, and the three "previous" fields) from one deliberately set
// to the empty string.
type OptString struct {
	Valid bool
	Value string
}

// Opt wraps s as a present optional string.
func Opt(s string) OptString { return OptString{Valid: true, Value: s} }

// NoOpt is the absent optional string.
var NoOpt = OptString{}

// SourceRef is one "#:" source reference. Line 0 means "no line number".
type SourceRef struct {
	Path string
	Line int
}

// fuzzyFlag is the reserved flag name that governs Entry.Fuzzy.
const fuzzyFlag = "fuzzy"

// keySep and keyAbsent are the separator and "field absent" bytes used by
// Key/Fmt/Inv. \x01 and \x02 do not occur in valid PO string content (PO
// quoted strings are C-escaped, so raw control bytes below space never
// appear in a decoded field).
const (
	keySep    = "\x01"
	keyAbsent = "\x02"
)

// Entry is one PO record: a translatable message (or, for the catalog's
// first entry, the header) plus the comments, flags and "previous" snapshot
// around it. See spec.md §3.
type Entry struct {
	ManualComment monitor.List[string]
	AutoComment   monitor.List[string]
	Source        monitor.List[SourceRef]
	Flag          monitor.Set[string]
	obsolete      monitor.Scalar[bool]

	msgctxtPrevious     monitor.Scalar[OptString]
	msgidPrevious       monitor.Scalar[OptString]
	msgidPluralPrevious monitor.Scalar[OptString]

	msgctxt     monitor.Scalar[OptString]
	msgid       monitor.Scalar[string]
	msgidPlural monitor.Scalar[OptString]
	Msgstr      monitor.List[string]

	// RefLine and RefEntry are the file line number and zero-based entry
	// index recorded at last load. They are invalidated by any structural
	// edit and restored on reserialize; they are never themselves
	// serialized (spec.md §6).
	RefLine  int
	RefEntry int

	// Dirty is bumped by every monitored field above (each Binds to it).
	// Nothing binds it to a parent: the Catalog keeps no sequence counter.
	Dirty monitor.Counter

	cache     lineCache
	loadDirty int
	loadSnap  fieldSnapshot
}

// fieldSnapshot records each monitored field's own Mods() count as of the
// last MarkLoaded, so the serializer can decide per field bucket whether a
// field changed since load rather than only entry-wide (spec.md §4.2).
type fieldSnapshot struct {
	manualComment, autoComment, source, flag                int
	msgctxtPrevious, msgidPrevious, msgidPluralPrevious     int
	msgctxt, msgid, msgidPlural, msgstr                      int
}

// NewEntry returns an empty Entry with msgid set to id and all monitored
// fields bound to its Dirty counter.
func NewEntry(msgid string) *Entry {
	e := &Entry{}
	e.msgid = monitor.NewScalar(msgid)
	e.bindAll()
	return e
}

// bindAll binds every monitored field to e.Dirty. Called both by NewEntry
// and after an Entry value is copied into place (AddMore's replace path),
// since Go has no copy-constructor hook to do this implicitly.
func (e *Entry) bindAll() {
	e.ManualComment.Bind(&e.Dirty)
	e.AutoComment.Bind(&e.Dirty)
	e.Source.Bind(&e.Dirty)
	e.Flag.Bind(&e.Dirty)
	e.obsolete.Bind(&e.Dirty)
	e.msgctxtPrevious.Bind(&e.Dirty)
	e.msgidPrevious.Bind(&e.Dirty)
	e.msgidPluralPrevious.Bind(&e.Dirty)
	e.msgctxt.Bind(&e.Dirty)
	e.msgid.Bind(&e.Dirty)
	e.msgidPlural.Bind(&e.Dirty)
	e.Msgstr.Bind(&e.Dirty)
}

// MarkLoaded snapshots the current dirty count as the clean baseline; the
// parser calls this once an entry has been fully populated from source
// lines. Rendering does not call it, so an entry edited after load stays
// dirty across renders.
func (e *Entry) MarkLoaded() {
	e.loadDirty = e.Dirty.Mods()
	e.loadSnap = fieldSnapshot{
		manualComment:       e.ManualComment.Mods(),
		autoComment:         e.AutoComment.Mods(),
		source:              e.Source.Mods(),
		flag:                e.Flag.Mods(),
		msgctxtPrevious:     e.msgctxtPrevious.Mods(),
		msgidPrevious:       e.msgidPrevious.Mods(),
		msgidPluralPrevious: e.msgidPluralPrevious.Mods(),
		msgctxt:             e.msgctxt.Mods(),
		msgid:               e.msgid.Mods(),
		msgidPlural:         e.msgidPlural.Mods(),
		msgstr:              e.Msgstr.Mods(),
	}
}

// IsDirty reports whether any monitored field has changed since MarkLoaded.
func (e *Entry) IsDirty() bool {
	return e.Dirty.Mods() != e.loadDirty
}

// fieldDirty reports whether a specific field bucket changed since
// MarkLoaded, used by the serializer's per-bucket reuse decision.
func (e *Entry) fieldDirty(name string) bool {
	switch name {
	case "manualComment":
		return e.ManualComment.Mods() != e.loadSnap.manualComment
	case "autoComment":
		return e.AutoComment.Mods() != e.loadSnap.autoComment
	case "source":
		return e.Source.Mods() != e.loadSnap.source
	case "flag":
		return e.Flag.Mods() != e.loadSnap.flag
	case "msgctxtPrevious":
		return e.msgctxtPrevious.Mods() != e.loadSnap.msgctxtPrevious
	case "msgidPrevious":
		return e.msgidPrevious.Mods() != e.loadSnap.msgidPrevious
	case "msgidPluralPrevious":
		return e.msgidPluralPrevious.Mods() != e.loadSnap.msgidPluralPrevious
	case "msgctxt":
		return e.msgctxt.Mods() != e.loadSnap.msgctxt
	case "msgid":
		return e.msgid.Mods() != e.loadSnap.msgid
	case "msgidPlural":
		return e.msgidPlural.Mods() != e.loadSnap.msgidPlural
	case "msgstr":
		return e.Msgstr.Mods() != e.loadSnap.msgstr
	}
	return true
}

// Msgctxt returns the disambiguating context, or NoOpt if none.
func (e *Entry) Msgctxt() OptString { return e.msgctxt.Get() }

// SetMsgctxt assigns the context. Pass NoOpt to clear it.
func (e *Entry) SetMsgctxt(v OptString) { e.msgctxt.Set(v) }

// Msgid returns the original singular text.
func (e *Entry) Msgid() string { return e.msgid.Get() }

// SetMsgid assigns the original singular text.
func (e *Entry) SetMsgid(v string) { e.msgid.Set(v) }

// MsgidPlural returns the original plural text, or NoOpt if this is not a
// plural entry.
func (e *Entry) MsgidPlural() OptString { return e.msgidPlural.Get() }

// SetMsgidPlural assigns the plural text; passing NoOpt demotes the entry
// to singular.
func (e *Entry) SetMsgidPlural(v OptString) { e.msgidPlural.Set(v) }

// IsPlural reports whether msgid_plural is present.
func (e *Entry) IsPlural() bool { return e.msgidPlural.Get().Valid }

// Obsolete reports whether the entry is retained for reference only.
func (e *Entry) Obsolete() bool { return e.obsolete.Get() }

// SetObsolete assigns the obsolete state.
func (e *Entry) SetObsolete(v bool) { e.obsolete.Set(v) }

// MsgctxtPrevious, MsgidPrevious and MsgidPluralPrevious return the
// pre-fuzzy snapshot fields, or NoOpt if unset.
func (e *Entry) MsgctxtPrevious() OptString     { return e.msgctxtPrevious.Get() }
func (e *Entry) MsgidPrevious() OptString       { return e.msgidPrevious.Get() }
func (e *Entry) MsgidPluralPrevious() OptString { return e.msgidPluralPrevious.Get() }

// SetMsgctxtPrevious, SetMsgidPrevious and SetMsgidPluralPrevious assign the
// pre-fuzzy snapshot fields.
func (e *Entry) SetMsgctxtPrevious(v OptString)     { e.msgctxtPrevious.Set(v) }
func (e *Entry) SetMsgidPrevious(v OptString)       { e.msgidPrevious.Set(v) }
func (e *Entry) SetMsgidPluralPrevious(v OptString) { e.msgidPluralPrevious.Set(v) }

// Fuzzy reports whether the reserved "fuzzy" flag is set.
func (e *Entry) Fuzzy() bool {
	return e.Flag.Has(fuzzyFlag)
}

// SetFuzzy assigns the fuzzy state. Clearing it (assigning false) also
// clears all three previous-fields, per spec.md §3.
func (e *Entry) SetFuzzy(v bool) {
	if v {
		e.Flag.Add(fuzzyFlag)
		return
	}
	e.Flag.Remove(fuzzyFlag)
	e.msgctxtPrevious.Set(NoOpt)
	e.msgidPrevious.Set(NoOpt)
	e.msgidPluralPrevious.Set(NoOpt)
}

// Translated reports whether the entry is not fuzzy and at least one
// msgstr slot is non-empty.
func (e *Entry) Translated() bool {
	if e.Fuzzy() {
		return false
	}
	for _, s := range e.Msgstr.Items() {
		if s != "" {
			return true
		}
	}
	return false
}

// Untranslated reports whether the entry is not fuzzy and every msgstr
// slot is empty.
func (e *Entry) Untranslated() bool {
	if e.Fuzzy() {
		return false
	}
	for _, s := range e.Msgstr.Items() {
		if s != "" {
			return false
		}
	}
	return true
}

// Format returns a flag containing the substring "-format" (e.g.
// "c-format", "python-format"), or "" if none is set. Flags are held in an
// unordered set, so when several such flags are set, which one is returned
// is not defined.
func (e *Entry) Format() string {
	for _, f := range e.Flag.Slice() {
		if strings.Contains(f, "-format") {
			return f
		}
	}
	return ""
}

func optPart(o OptString) string {
	if !o.Valid {
		return keyAbsent
	}
	return o.Value
}

// Key returns the canonical serialization of (msgctxt, msgid): the pair
// that must be unique across a well-formed catalog.
func (e *Entry) Key() string {
	return optPart(e.msgctxt.Get()) + keySep + e.msgid.Get()
}

// Fmt returns the canonical serialization of the fields that determine
// whether two entries render identically: (msgctxt, msgid, msgid_plural,
// msgstr, fuzzy, obsolete).
func (e *Entry) Fmt() string {
	var b strings.Builder
	b.WriteString(optPart(e.msgctxt.Get()))
	b.WriteString(keySep)
	b.WriteString(e.msgid.Get())
	b.WriteString(keySep)
	b.WriteString(optPart(e.msgidPlural.Get()))
	b.WriteString(keySep)
	b.WriteString(strings.Join(e.Msgstr.Items(), keySep))
	b.WriteString(keySep)
	b.WriteString(strconv.FormatBool(e.Fuzzy()))
	b.WriteString(keySep)
	b.WriteString(strconv.FormatBool(e.Obsolete()))
	return b.String()
}

// Inv extends Fmt with manual comments and the previous-fields: the
// "apparent" content pology's Catalog equality compares (spec.md §9 open
// question 3).
func (e *Entry) Inv() string {
	var b strings.Builder
	b.WriteString(e.Fmt())
	b.WriteString(keySep)
	b.WriteString(strings.Join(e.ManualComment.Items(), keySep))
	b.WriteString(keySep)
	b.WriteString(optPart(e.msgctxtPrevious.Get()))
	b.WriteString(keySep)
	b.WriteString(optPart(e.msgidPrevious.Get()))
	b.WriteString(keySep)
	b.WriteString(optPart(e.msgidPluralPrevious.Get()))
	return b.String()
}

// Equal reports whether e and o have the same Inv(). This entry comparison
// is the only equality the package defines; there is no Catalog-level one.
func (e *Entry) Equal(o *Entry) bool {
	return e.Inv() == o.Inv()
}

// Merge merges the contents of other, which must have the same Key(), into
// e. Merging is riddled with heuristics depending on the translated/
// fuzzy/untranslated state of each side; callers wanting tight control
// should edit fields directly instead. Reports whether anything changed.
//
// Grounded on file/message.py's Message.merge (original_source): plural
// always overrides non-plural regardless of which side carries it;
// otherwise which side's msgstr, msgid_plural and previous-fields win is
// decided by the translated/fuzzy/untranslated combination of both sides.
func (e *Entry) Merge(other *Entry) (bool, error) {
	if e.Key() != other.Key() {
		return false, fmt.Errorf("catalog: cannot merge entries with different keys (%q != %q)", e.Key(), other.Key())
	}
	if e.Obsolete() || other.Obsolete() {
		return false, nil
	}

	before := e.Dirty.Mods()

	switch {
	case !e.IsPlural() && other.IsPlural():
		if other.ManualComment.Len() > 0 {
			e.ManualComment.Set(other.ManualComment.Items())
		}
		if other.Fuzzy() {
			e.SetMsgctxtPrevious(other.MsgctxtPrevious())
			e.SetMsgidPrevious(other.MsgidPrevious())
			e.SetMsgidPluralPrevious(other.MsgidPluralPrevious())
		}
		e.SetMsgidPlural(other.MsgidPlural())
		e.Msgstr.Set(other.Msgstr.Items())
		e.SetFuzzy(other.Fuzzy())

	case (e.Translated() && other.Translated()) ||
		(e.Fuzzy() && other.Fuzzy()) ||
		(e.Untranslated() && other.Untranslated()):
		if e.ManualComment.Len() == 0 {
			e.ManualComment.Set(other.ManualComment.Items())
		}
		if other.IsPlural() {
			e.SetMsgidPlural(other.MsgidPlural())
		}

	case e.Fuzzy() && other.Translated():
		e.ManualComment.Set(other.ManualComment.Items())
		if !e.IsPlural() || other.IsPlural() {
			if other.IsPlural() {
				e.SetMsgidPlural(other.MsgidPlural())
			}
			e.Msgstr.Set(other.Msgstr.Items())
			if e.MsgidPlural() == other.MsgidPlural() {
				e.SetFuzzy(false)
			}
		}

	case e.Untranslated() && (other.Translated() || other.Fuzzy()):
		e.ManualComment.Set(other.ManualComment.Items())
		if !e.IsPlural() || other.IsPlural() {
			if other.Fuzzy() {
				e.SetMsgctxtPrevious(other.MsgctxtPrevious())
				e.SetMsgidPrevious(other.MsgidPrevious())
				e.SetMsgidPluralPrevious(other.MsgidPluralPrevious())
			}
			if other.IsPlural() {
				e.SetMsgidPlural(other.MsgidPlural())
			}
			e.Msgstr.Set(other.Msgstr.Items())
			e.SetFuzzy(other.Fuzzy())
		}
	}

	return e.Dirty.Mods() != before, nil
}
