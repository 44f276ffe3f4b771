// Package hook implements the external check-hook contract (spec.md §4.7):
// request-string parsing, the three call-arity shapes a hook may take, and
// a static name→hook registry in place of the original's dynamic module
// import (spec.md §9 design note 4: Go has no runtime import, so hooks are
// registered by name at init time instead of discovered by path).
// Grounded on misc/langdep.py's split_req/get_hook.
package hook

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/polint/polint/catalog"
)

// MutatingHook edits the message/catalog in place and reports nothing.
type MutatingHook func(cat *catalog.Catalog, msg *catalog.Entry)

// TextFieldHook transforms one field's text, returning the replacement and
// true, or false to mean "no change" (the string is then ignored).
type TextFieldHook func(cat *catalog.Catalog, msg *catalog.Entry, text string) (string, bool)

// TextHook transforms bare text, returning the replacement and true, or
// false to mean "no change" (the string is then ignored).
type TextHook func(text string) (string, bool)

// Factory builds a hook of one of the three shapes from an argument
// string (the request's "~args" tail, with no surrounding parentheses).
type Factory func(args string) (interface{}, error)

// Request is a parsed "[lang:]path[/item][~args]" hook request.
type Request struct {
	Lang string // "" if unstated
	Path string // dotted identifiers, hyphens normalized to underscores
	Item string // "" if unstated
	Args string // "" if unstated; "~"-tail verbatim
	hasArgs bool
}

var (
	validLangRx = regexp.MustCompile(`^[a-z]{2,3}(_[A-Z]{2})?(@\w+)?$`)
	validPathRx = regexp.MustCompile(`^([a-zA-Z][\w-]*(\.|$))+$`)
	validItemRx = regexp.MustCompile(`^[a-zA-Z][\w-]*$`)
)

// ParseRequest splits a hook request string per spec.md §4.7.
func ParseRequest(req string) (Request, error) {
	rest := req
	var args string
	hasArgs := false
	if idx := strings.IndexByte(rest, '~'); idx >= 0 {
		args = rest[idx+1:]
		rest = rest[:idx]
		hasArgs = true
	}

	item := ""
	if idx := strings.IndexByte(rest, '/'); idx >= 0 {
		item = rest[idx+1:]
		rest = rest[:idx]
	}

	lang := ""
	path := rest
	if idx := strings.IndexByte(rest, ':'); idx >= 0 {
		lang = rest[:idx]
		path = rest[idx+1:]
	}

	if lang != "" && !validLangRx.MatchString(lang) {
		return Request{}, fmt.Errorf("invalid language %q in item request %q", lang, req)
	}
	if !validPathRx.MatchString(path) {
		return Request{}, fmt.Errorf("invalid path %q in item request %q", path, req)
	}
	if item != "" && !validItemRx.MatchString(item) {
		return Request{}, fmt.Errorf("invalid item %q in item request %q", item, req)
	}

	path = strings.ReplaceAll(path, "-", "_")
	if item != "" {
		item = strings.ReplaceAll(item, "-", "_")
	}

	return Request{Lang: lang, Path: path, Item: item, Args: args, hasArgs: hasArgs}, nil
}

// HasArgs reports whether the request carried a "~args" tail (even an
// empty one), distinguishing a plain hook from a factory invocation.
func (r Request) HasArgs() bool { return r.hasArgs }

// registryEntry is either a ready-made hook or a factory awaiting args.
type registryEntry struct {
	hook    interface{}
	factory Factory
}

var registry = map[string]registryEntry{}

// Register adds a ready-made hook under name, which callers reference as
// the "path[/item]" portion of a request (languages are not modeled by the
// static registry; register a separately-named entry per language if
// needed).
func Register(name string, h interface{}) {
	registry[name] = registryEntry{hook: h}
}

// RegisterFactory adds a hook factory under name.
func RegisterFactory(name string, f Factory) {
	registry[name] = registryEntry{factory: f}
}

func registryKey(r Request) string {
	if r.Item != "" {
		return r.Path + "/" + r.Item
	}
	return r.Path
}

// Load resolves a parsed request to a concrete hook, invoking a factory
// with the request's argument string if present.
func Load(r Request) (interface{}, error) {
	key := registryKey(r)
	entry, ok := registry[key]
	if !ok {
		return nil, fmt.Errorf("no hook registered for %q", key)
	}
	if r.HasArgs() {
		if entry.factory == nil {
			return nil, fmt.Errorf("hook %q is not a factory, but request supplied arguments", key)
		}
		return entry.factory(r.Args)
	}
	if entry.hook != nil {
		return entry.hook, nil
	}
	if entry.factory != nil {
		return entry.factory("")
	}
	return nil, fmt.Errorf("hook %q has no implementation", key)
}

// LoadRequest parses and loads in one step.
func LoadRequest(req string) (interface{}, error) {
	r, err := ParseRequest(req)
	if err != nil {
		return nil, err
	}
	return Load(r)
}

// LoadFactoryRequest parses req for its path/item/lang (any "~args" tail on
// req itself is ignored) and invokes the registered factory with args. This
// is the separate "factory=" field form of a hook request, distinct from a
// plain request's own "~args" tail.
func LoadFactoryRequest(req, args string) (interface{}, error) {
	r, err := ParseRequest(req)
	if err != nil {
		return nil, err
	}
	key := registryKey(r)
	entry, ok := registry[key]
	if !ok {
		return nil, fmt.Errorf("no hook registered for %q", key)
	}
	if entry.factory == nil {
		return nil, fmt.Errorf("hook %q is not a factory", key)
	}
	return entry.factory(args)
}
