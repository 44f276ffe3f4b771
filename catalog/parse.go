package catalog

import (
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// ParseOptions governs the §4.1 parser.
type ParseOptions struct {
	// Lcache enables the per-field raw line cache used by the serializer
	// to reuse unmodified entries byte-for-byte. Disable for read-only
	// uses where load speed matters more than round-trip fidelity.
	Lcache bool
	// HeaderOnly stops parsing after the first (header) entry, capturing
	// everything after it into Tail, with its lines rejoined by "\n".
	HeaderOnly bool
}

type fieldKind int

const (
	fieldNone fieldKind = iota
	fieldMsgctxt
	fieldMsgid
	fieldMsgidPlural
	fieldMsgstr
)

type ageKind int

const (
	ageCurrent ageKind = iota
	agePrevious
)

// splitLines chooses whichever of \r\n, \n, \r (checked in that order,
// ties favoring the longer terminator) yields the most lines, per
// spec.md §4.1 "Line split".
func splitLines(data []byte) []string {
	s := string(data)
	candidates := [][]string{
		strings.Split(s, "\r\n"),
		strings.Split(s, "\n"),
		strings.Split(s, "\r"),
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if len(c) > len(best) {
			best = c
		}
	}
	// Guarantee the parser flushes the final entry.
	return append(best, "")
}

type parseDraft struct {
	manualComment []string
	autoComment   []string
	sourceTokens  []string // raw "path[:line]" tokens, accumulated in order
	flags         []string // accumulated, first occurrence order, deduplicated at commit

	curField fieldKind
	curAge   ageKind
	obsolete bool

	msgctxtBuf     strings.Builder
	msgidBuf       strings.Builder
	msgidPluralBuf strings.Builder

	prevMsgctxtBuf     strings.Builder
	prevMsgidBuf       strings.Builder
	prevMsgidPluralBuf strings.Builder

	msgstrBufs  map[int]*strings.Builder
	msgstrOrder []int

	hasMsgctxtPrev, hasMsgidPrev, hasMsgidPluralPrev bool
	hasMsgidPlural                                   bool
	hasMsgctxt                                       bool

	cache lineCache

	startLine  int
	haveRef    bool
	seenMsgid  bool
	seenMsgstr bool
}

func newDraft() *parseDraft {
	return &parseDraft{msgstrBufs: make(map[int]*strings.Builder)}
}

// poParser holds state across the whole file.
type poParser struct {
	filename string
	opts     ParseOptions
	entries  []*Entry
	draft    *parseDraft
}

// ParsePO parses a PO file, per spec.md §4.1.
func ParsePO(data []byte, filename string, opts ParseOptions) (entries []*Entry, tail string, encoding string, err error) {
	rawLines := splitLines(data)

	// Encoding discovery: header area is everything before the first "#:" line.
	headerEnd := len(rawLines)
	for i, l := range rawLines {
		if strings.HasPrefix(strings.TrimSpace(l), "#:") {
			headerEnd = i
			break
		}
	}
	encoding = detectCharset(rawLines[:headerEnd])

	decoded := make([]string, len(rawLines))
	for i, l := range rawLines {
		d, derr := decodeLine([]byte(l), encoding)
		if derr != nil {
			return nil, "", "", &DecodeError{File: filename, Line: i + 1, Column: 0, Charset: encoding}
		}
		decoded[i] = d
	}

	p := &poParser{filename: filename, opts: opts}

	for i, line := range decoded {
		lineNo := i + 1
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			if err := p.flush(); err != nil {
				return nil, "", "", err
			}
			if opts.HeaderOnly && len(p.entries) > 0 {
				// The last element of rawLines is the sentinel added by
				// splitLines, not source text.
				tailStart := i + 1
				if tailStart < len(rawLines)-1 {
					tail = strings.Join(rawLines[tailStart:len(rawLines)-1], "\n")
				}
				return p.entries, tail, encoding, nil
			}
			continue
		}
		if err := p.processLine(line, trimmed, lineNo); err != nil {
			return nil, "", "", err
		}
	}
	if err := p.flush(); err != nil {
		return nil, "", "", err
	}
	return p.entries, tail, encoding, nil
}

func (p *poParser) ensureDraft() *parseDraft {
	if p.draft == nil {
		p.draft = newDraft()
	}
	return p.draft
}

// boundary flushes and replaces the in-progress draft if the previous
// field left off mid-msgstr and this line is not itself msgstr-shaped:
// "The message is emitted when msgstr context is left" (spec.md §4.1).
func (p *poParser) boundary(nextIsMsgstrLike bool) error {
	if p.draft != nil && p.draft.curField == fieldMsgstr && !nextIsMsgstrLike {
		if err := p.flush(); err != nil {
			return err
		}
	}
	return nil
}

func (p *poParser) processLine(raw, trimmed string, lineNo int) error {
	switch {
	case strings.HasPrefix(trimmed, "#~|"):
		rest := strings.TrimSpace(strings.TrimPrefix(trimmed, "#~|"))
		if err := p.boundary(isMsgstrLike(rest)); err != nil {
			return err
		}
		d := p.ensureDraft()
		d.obsolete = true
		return p.dispatchField(d, rest, raw, true, agePrevious, lineNo)

	case strings.HasPrefix(trimmed, "#~"):
		rest := strings.TrimSpace(strings.TrimPrefix(trimmed, "#~"))
		if err := p.boundary(isMsgstrLike(rest)); err != nil {
			return err
		}
		d := p.ensureDraft()
		d.obsolete = true
		return p.dispatchField(d, rest, raw, true, ageCurrent, lineNo)

	case strings.HasPrefix(trimmed, "#|"):
		rest := strings.TrimSpace(strings.TrimPrefix(trimmed, "#|"))
		if err := p.boundary(isMsgstrLike(rest)); err != nil {
			return err
		}
		d := p.ensureDraft()
		return p.dispatchField(d, rest, raw, d.obsolete, agePrevious, lineNo)

	case strings.HasPrefix(trimmed, "#:"):
		if err := p.boundary(false); err != nil {
			return err
		}
		d := p.ensureDraft()
		rest := strings.TrimSpace(strings.TrimPrefix(trimmed, "#:"))
		d.sourceTokens = append(d.sourceTokens, strings.Fields(rest)...)
		if p.opts.Lcache {
			d.cache.Source = append(d.cache.Source, raw)
		}
		return nil

	case strings.HasPrefix(trimmed, "#,"):
		if err := p.boundary(false); err != nil {
			return err
		}
		d := p.ensureDraft()
		rest := strings.TrimPrefix(trimmed, "#,")
		for _, f := range strings.Split(rest, ",") {
			f = strings.TrimSpace(f)
			if f != "" {
				d.flags = append(d.flags, f)
			}
		}
		if p.opts.Lcache {
			d.cache.Flags = append(d.cache.Flags, raw)
		}
		return nil

	case strings.HasPrefix(trimmed, "#."):
		if err := p.boundary(false); err != nil {
			return err
		}
		d := p.ensureDraft()
		rest := strings.TrimPrefix(trimmed, "#.")
		rest = strings.TrimPrefix(rest, " ")
		d.autoComment = append(d.autoComment, rest)
		if p.opts.Lcache {
			d.cache.AutoComment = append(d.cache.AutoComment, raw)
		}
		return nil

	case strings.HasPrefix(trimmed, "#"):
		if err := p.boundary(false); err != nil {
			return err
		}
		d := p.ensureDraft()
		rest := strings.TrimPrefix(trimmed, "#")
		rest = strings.TrimPrefix(rest, " ")
		d.manualComment = append(d.manualComment, rest)
		if p.opts.Lcache {
			d.cache.ManualComment = append(d.cache.ManualComment, raw)
		}
		return nil

	default:
		if err := p.boundary(isMsgstrLike(trimmed)); err != nil {
			return err
		}
		d := p.ensureDraft()
		return p.dispatchField(d, trimmed, raw, d.obsolete, ageCurrent, lineNo)
	}
}

func isMsgstrLike(rest string) bool {
	return strings.HasPrefix(rest, "msgstr") || strings.HasPrefix(rest, `"`)
}

// dispatchField handles a keyword line (msgctxt/msgid/msgid_plural/msgstr[N])
// or a bare-quote continuation line, within the given life/age context.
func (p *poParser) dispatchField(d *parseDraft, rest, raw string, obsolete bool, age ageKind, lineNo int) error {
	switch {
	case strings.HasPrefix(rest, "msgctxt"):
		val := dequote(strings.TrimSpace(strings.TrimPrefix(rest, "msgctxt")))
		d.curField = fieldMsgctxt
		d.curAge = age
		if age == agePrevious {
			d.prevMsgctxtBuf.WriteString(poUnescape(val))
			d.hasMsgctxtPrev = true
			p.cachePrev(d, "msgctxt", raw)
		} else {
			d.msgctxtBuf.WriteString(poUnescape(val))
			d.hasMsgctxt = true
			p.cacheCur(d, "msgctxt", raw)
		}
		return nil

	case strings.HasPrefix(rest, "msgid_plural"):
		val := dequote(strings.TrimSpace(strings.TrimPrefix(rest, "msgid_plural")))
		d.curField = fieldMsgidPlural
		d.curAge = age
		d.hasMsgidPlural = true
		if age == agePrevious {
			d.prevMsgidPluralBuf.WriteString(poUnescape(val))
			d.hasMsgidPluralPrev = true
			p.cachePrev(d, "msgid_plural", raw)
		} else {
			d.msgidPluralBuf.WriteString(poUnescape(val))
			p.cacheCur(d, "msgid_plural", raw)
		}
		return nil

	case strings.HasPrefix(rest, "msgid"):
		val := dequote(strings.TrimSpace(strings.TrimPrefix(rest, "msgid")))
		d.curField = fieldMsgid
		d.curAge = age
		if age == agePrevious {
			d.prevMsgidBuf.WriteString(poUnescape(val))
			d.hasMsgidPrev = true
			p.cachePrev(d, "msgid", raw)
		} else {
			d.msgidBuf.WriteString(poUnescape(val))
			p.cacheCur(d, "msgid", raw)
			if !d.haveRef {
				d.startLine = lineNo
				d.haveRef = true
			}
			d.seenMsgid = true
		}
		return nil

	case strings.HasPrefix(rest, "msgstr["):
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return &SyntaxError{File: p.filename, Line: lineNo, Reason: "malformed msgstr[N]: missing ']'"}
		}
		idx, convErr := strconv.Atoi(rest[len("msgstr[") : end])
		if convErr != nil {
			return &SyntaxError{File: p.filename, Line: lineNo, Reason: fmt.Sprintf("malformed msgstr[N]: %v", convErr)}
		}
		val := dequote(strings.TrimSpace(rest[end+1:]))
		d.curField = fieldMsgstr
		d.curAge = ageCurrent
		b, ok := d.msgstrBufs[idx]
		if !ok {
			b = &strings.Builder{}
			d.msgstrBufs[idx] = b
			d.msgstrOrder = append(d.msgstrOrder, idx)
		}
		b.WriteString(poUnescape(val))
		d.seenMsgstr = true
		if p.opts.Lcache {
			for len(d.cache.MsgstrPlural) <= idx {
				d.cache.MsgstrPlural = append(d.cache.MsgstrPlural, nil)
			}
			d.cache.MsgstrPlural[idx] = append(d.cache.MsgstrPlural[idx], raw)
		}
		return nil

	case strings.HasPrefix(rest, "msgstr"):
		val := dequote(strings.TrimSpace(strings.TrimPrefix(rest, "msgstr")))
		d.curField = fieldMsgstr
		d.curAge = ageCurrent
		b, ok := d.msgstrBufs[-1]
		if !ok {
			b = &strings.Builder{}
			d.msgstrBufs[-1] = b
			d.msgstrOrder = append(d.msgstrOrder, -1)
		}
		b.WriteString(poUnescape(val))
		d.seenMsgstr = true
		if p.opts.Lcache {
			d.cache.Msgstr = append(d.cache.Msgstr, raw)
		}
		return nil

	case strings.HasPrefix(rest, `"`):
		val := poUnescape(dequote(rest))
		switch d.curField {
		case fieldMsgctxt:
			if d.curAge == agePrevious {
				d.prevMsgctxtBuf.WriteString(val)
				p.cachePrev(d, "msgctxt", raw)
			} else {
				d.msgctxtBuf.WriteString(val)
				d.hasMsgctxt = true
				p.cacheCur(d, "msgctxt", raw)
			}
		case fieldMsgid:
			if d.curAge == agePrevious {
				d.prevMsgidBuf.WriteString(val)
				p.cachePrev(d, "msgid", raw)
			} else {
				d.msgidBuf.WriteString(val)
				p.cacheCur(d, "msgid", raw)
			}
		case fieldMsgidPlural:
			if d.curAge == agePrevious {
				d.prevMsgidPluralBuf.WriteString(val)
				p.cachePrev(d, "msgid_plural", raw)
			} else {
				d.msgidPluralBuf.WriteString(val)
				p.cacheCur(d, "msgid_plural", raw)
			}
		case fieldMsgstr:
			idx := -1
			if len(d.msgstrOrder) > 0 {
				idx = d.msgstrOrder[len(d.msgstrOrder)-1]
			}
			if b, ok := d.msgstrBufs[idx]; ok {
				b.WriteString(val)
			}
			if p.opts.Lcache {
				if idx < 0 {
					d.cache.Msgstr = append(d.cache.Msgstr, raw)
				} else {
					for len(d.cache.MsgstrPlural) <= idx {
						d.cache.MsgstrPlural = append(d.cache.MsgstrPlural, nil)
					}
					d.cache.MsgstrPlural[idx] = append(d.cache.MsgstrPlural[idx], raw)
				}
			}
		default:
			log.Warnf("%s:%d: stray continuation line outside a field, ignored", p.filename, lineNo)
		}
		return nil

	default:
		log.Warnf("%s:%d: unrecognized line %q, treated as manual comment", p.filename, lineNo, rest)
		d.manualComment = append(d.manualComment, rest)
		return nil
	}
}

func (p *poParser) cacheCur(d *parseDraft, field, raw string) {
	if !p.opts.Lcache {
		return
	}
	switch field {
	case "msgctxt":
		d.cache.Msgctxt = append(d.cache.Msgctxt, raw)
	case "msgid":
		d.cache.Msgid = append(d.cache.Msgid, raw)
	case "msgid_plural":
		d.cache.MsgidPlural = append(d.cache.MsgidPlural, raw)
	}
}

func (p *poParser) cachePrev(d *parseDraft, field, raw string) {
	if !p.opts.Lcache {
		return
	}
	switch field {
	case "msgctxt":
		d.cache.MsgctxtPrevious = append(d.cache.MsgctxtPrevious, raw)
	case "msgid":
		d.cache.MsgidPrevious = append(d.cache.MsgidPrevious, raw)
	case "msgid_plural":
		d.cache.MsgidPluralPrevious = append(d.cache.MsgidPluralPrevious, raw)
	}
}

// flush commits the in-progress draft as an Entry, if it carries any
// content at all (a run of blank lines produces no entry).
func (p *poParser) flush() error {
	d := p.draft
	p.draft = nil
	if d == nil {
		return nil
	}
	if !d.seenMsgid && !d.seenMsgstr && len(d.manualComment) == 0 &&
		len(d.autoComment) == 0 && len(d.sourceTokens) == 0 && len(d.flags) == 0 {
		return nil
	}

	msgid := d.msgidBuf.String()
	msgctxtVal := d.msgctxtBuf.String()

	if len(p.entries) > 0 && msgid == "" && !d.hasMsgctxt {
		return &SyntaxError{File: p.filename, Reason: "empty msgid and no msgctxt (EmptyKey)"}
	}

	e := NewEntry(msgid)
	if d.hasMsgctxt {
		e.SetMsgctxt(Opt(msgctxtVal))
	}
	if d.hasMsgidPlural {
		e.SetMsgidPlural(Opt(d.msgidPluralBuf.String()))
	}
	if d.hasMsgctxtPrev {
		e.SetMsgctxtPrevious(Opt(d.prevMsgctxtBuf.String()))
	}
	if d.hasMsgidPrev {
		e.SetMsgidPrevious(Opt(d.prevMsgidBuf.String()))
	}
	if d.hasMsgidPluralPrev {
		e.SetMsgidPluralPrevious(Opt(d.prevMsgidPluralBuf.String()))
	}
	e.SetObsolete(d.obsolete)
	e.ManualComment.Set(append([]string(nil), d.manualComment...))
	e.AutoComment.Set(append([]string(nil), d.autoComment...))
	e.Source.Set(parseSourceTokens(d.sourceTokens))
	for _, f := range dedupFlags(d.flags) {
		e.Flag.Add(f)
	}

	msgstr := assembleMsgstr(d)
	e.Msgstr.Set(msgstr)

	e.RefLine = d.startLine
	e.RefEntry = len(p.entries)
	e.cache = d.cache
	e.MarkLoaded()

	p.entries = append(p.entries, e)
	return nil
}

func dedupFlags(flags []string) []string {
	seen := make(map[string]bool, len(flags))
	out := make([]string, 0, len(flags))
	for _, f := range flags {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

func parseSourceTokens(tokens []string) []SourceRef {
	refs := make([]SourceRef, 0, len(tokens))
	for _, tok := range tokens {
		path := tok
		line := 0
		if idx := strings.LastIndexByte(tok, ':'); idx >= 0 {
			if n, err := strconv.Atoi(tok[idx+1:]); err == nil && n > 0 {
				path = tok[:idx]
				line = n
			}
		}
		refs = append(refs, SourceRef{Path: path, Line: line})
	}
	return refs
}

// assembleMsgstr builds the ordered msgstr vector, filling any missing
// lower indices with empty strings (spec.md §4.1 "Post-processing").
func assembleMsgstr(d *parseDraft) []string {
	if len(d.msgstrBufs) == 0 {
		return []string{""}
	}
	if b, ok := d.msgstrBufs[-1]; ok && len(d.msgstrBufs) == 1 {
		return []string{b.String()}
	}
	maxIdx := -1
	for idx := range d.msgstrBufs {
		if idx > maxIdx {
			maxIdx = idx
		}
	}
	out := make([]string, maxIdx+1)
	for idx := 0; idx <= maxIdx; idx++ {
		if b, ok := d.msgstrBufs[idx]; ok {
			out[idx] = b.String()
		}
	}
	return out
}
