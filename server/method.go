package server

import "github.com/nebularoute/osc"

// Handler is invoked for every message a registration claims.
//
// effectivePath is the registration's own path when it is non-empty,
// otherwise the incoming message's path (the generic, empty-path
// handler sees the incoming path; every other handler sees its own
// literal path, which is the concrete path it matched). types is the typespec the handler is
// being invoked with — the registration's typespec when coercion
// occurred, the message's own typespec otherwise. Returning false
// signals the message is unclaimed and dispatch should try the next
// registration; returning true stops iteration, unless the incoming
// path is itself a pattern, in which case dispatch always tries every
// registration (enumeration semantics).
type Handler func(effectivePath, types string, msg *osc.Message, user any) bool

// registration is one entry in the method table's ordered list.
type registration struct {
	// path and typespec are pointers so that a nil value behaves as a
	// wildcard and so Del can use pointer identity the same way liblo
	// compares its C string pointers.
	path     *string
	typespec *string
	handler  Handler
	user     any
}

// Methods is an ordered method table: registrations are matched in
// registration order, and Add always appends to the tail.
type Methods struct {
	regs []*registration
}

// Add registers h to run on messages sent to path with the given
// typespec. An empty path or typespec is a wildcard. Add rejects a
// path containing pattern metacharacters (a registration is never
// itself a pattern; only an incoming path may be one), returning
// false in that case exactly as liblo's lop_server_add_method returns
// NULL.
func (m *Methods) Add(path, typespec string, h Handler, user any) bool {
	if path != "" && HasMeta(path) {
		return false
	}
	r := &registration{handler: h, user: user}
	if path != "" {
		p := path
		r.path = &p
	}
	if typespec != "" {
		t := typespec
		r.typespec = &t
	}
	m.regs = append(m.regs, r)
	return true
}

// Del removes every registration whose path and typespec equal the
// arguments, or, if path itself contains pattern metacharacters, every
// registration whose literal path that pattern matches — liblo's
// lop_server_del_method calls lop_pattern_match(it->path, path)
// whenever the argument is itself a pattern. An empty path or typespec
// matches only a registration that was itself registered with an empty
// (wildcard) path/typespec — liblo's null-pointer-equals-null
// semantics, since Go has no pointer to compare a literal "" against a
// non-wildcard registration with.
func (m *Methods) Del(path, typespec string) {
	var asPattern Pattern
	isPattern := path != "" && HasMeta(path)
	if isPattern {
		p, err := ParsePattern(path)
		if err != nil {
			return
		}
		asPattern = p
	}

	out := m.regs[:0]
	for _, r := range m.regs {
		var pathMatch bool
		switch {
		case isPattern:
			pathMatch = r.path != nil && asPattern.Match(*r.path)
		case path == "":
			pathMatch = r.path == nil
		default:
			pathMatch = r.path != nil && *r.path == path
		}
		typeMatch := (r.typespec == nil && typespec == "") ||
			(r.typespec != nil && typespec != "" && *r.typespec == typespec)
		if pathMatch && typeMatch {
			continue
		}
		out = append(out, r)
	}
	m.regs = out
}

// Len reports the number of live registrations, mostly useful for
// tests.
func (m *Methods) Len() int {
	return len(m.regs)
}
