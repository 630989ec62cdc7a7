package feed

// Registry maps canonical source names to constructors. Registration order
// doubles as the merge order the aggregator relies on; Go maps iterate in
// random order, so the order lives in its own slice.
type Registry struct {
	order []string
	ctors map[string]func() Source
}

func NewRegistry() *Registry {
	return &Registry{ctors: make(map[string]func() Source)}
}

// Register adds a named constructor. Re-registering a name is a no-op so the
// first registration keeps its position.
func (r *Registry) Register(name string, ctor func() Source) {
	if _, dup := r.ctors[name]; dup {
		return
	}
	r.order = append(r.order, name)
	r.ctors[name] = ctor
}

// Names returns the canonical names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Instantiate builds one Source per enabled canonical name, in registration
// order. Names in the enabled map that the registry does not know are
// silently ignored.
func (r *Registry) Instantiate(enabled map[string]bool) []Source {
	var out []Source
	for _, name := range r.order {
		if enabled[name] {
			out = append(out, r.ctors[name]())
		}
	}
	return out
}
