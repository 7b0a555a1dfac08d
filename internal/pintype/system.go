package pintype

// System holds the configurable compatibility rules. The widening table is a
// one-directional relation between primitive kinds: widen[src][dst] means a
// source pin of kind src may feed a target pin of kind dst.
type System struct {
	widen map[Kind]map[Kind]struct{}
}

// Option configures a System.
type Option func(*System)

// WithWidening adds a one-directional widening from src to dst.
func WithWidening(src, dst Kind) Option {
	return func(s *System) {
		if s.widen[src] == nil {
			s.widen[src] = make(map[Kind]struct{})
		}
		s.widen[src][dst] = struct{}{}
	}
}

// WithoutDefaultWidenings starts from an empty widening table instead of the
// default int-to-float rule.
func WithoutDefaultWidenings() Option {
	return func(s *System) {
		s.widen = make(map[Kind]map[Kind]struct{})
	}
}

// NewSystem builds a System with the default widening table (int widens to
// float) plus any options.
func NewSystem(opts ...Option) *System {
	s := &System{widen: map[Kind]map[Kind]struct{}{
		KindInt: {KindFloat: {}},
	}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Default is the system used when callers do not supply their own.
var Default = NewSystem()

// Compatible reports whether a value of type src may flow into a pin of type
// dst. It is pure and total: exact matches are compatible, Any is compatible
// in either position, widenings apply one-directionally, and lists are
// compatible iff their element types are.
func (s *System) Compatible(src, dst Type) bool {
	if src.IsAny() || dst.IsAny() {
		return true
	}
	if src.kind == KindList && dst.kind == KindList {
		return s.Compatible(src.Elem(), dst.Elem())
	}
	if src.kind == dst.kind {
		return src.Equals(dst)
	}
	_, ok := s.widen[src.kind][dst.kind]
	return ok
}

// Unify returns the single type able to represent both a and b, preferring
// the wider of the two under the widening table. The second result is false
// when no such type exists; the first result is then Any, the fallback used
// for conflicted interface pins.
func (s *System) Unify(a, b Type) (Type, bool) {
	if a.Equals(b) {
		return a, true
	}
	if a.IsAny() || b.IsAny() {
		return Any, true
	}
	if a.kind == KindList && b.kind == KindList {
		elem, ok := s.Unify(a.Elem(), b.Elem())
		if !ok {
			return Any, false
		}
		return List(elem), true
	}
	if s.Compatible(a, b) {
		return b, true
	}
	if s.Compatible(b, a) {
		return a, true
	}
	return Any, false
}

// Compatible applies the Default system.
func Compatible(src, dst Type) bool { return Default.Compatible(src, dst) }

// Unify applies the Default system.
func Unify(a, b Type) (Type, bool) { return Default.Unify(a, b) }
