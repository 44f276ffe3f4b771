package catalog

import "fmt"

// SyntaxError is spec.md §7's CatalogSyntaxError: returned for an empty
// key, a malformed msgstr[N], or a catalog with no header entry, and by
// WriteFile when the output cannot be encoded. A line that cannot be
// decoded is reported as DecodeError instead.
type SyntaxError struct {
	File   string
	Line   int
	Reason string
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Reason)
}

// DecodeError is raised when a line cannot be decoded in the catalog's
// detected (or header-declared) encoding.
type DecodeError struct {
	File    string
	Line    int
	Column  int
	Charset string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s:%d:%d: cannot decode as %s", e.File, e.Line, e.Column, e.Charset)
}

// InvalidHeaderError describes a header entry that cannot be parsed into
// its well-known fields. Nothing in this package returns it: the header
// accessors treat a missing or unparseable field as absent, and
// PluralHeader falls back to a single plural form.
type InvalidHeaderError struct {
	File   string
	Reason string
}

func (e *InvalidHeaderError) Error() string {
	return fmt.Sprintf("%s: invalid header: %s", e.File, e.Reason)
}

// NameError describes an unknown or ill-formed variable name. Nothing in
// this package returns it; text.ExpandVars reports such names with its own
// text.NameErr type.
type NameError struct {
	Name   string
	Reason string
}

func (e *NameError) Error() string {
	return fmt.Sprintf("%s: %s", e.Name, e.Reason)
}
