package model

// IsFlow reports whether link l, between start and end, is drawn as an
// active value flow. A link marked as a flow is active when:
//
//  1. it is marked both past and future;
//  2. it is marked past and exactly one endpoint is evolving;
//  3. it is marked future and either endpoint is an evolved counterpart.
//
// The result depends only on its arguments.
func IsFlow(l Link, start, end Node) bool {
	if !l.Flow {
		return false
	}
	switch {
	case l.Past && l.Future:
		return true
	case l.Past && start.Evolving != end.Evolving:
		return true
	case l.Future && (start.Evolved || end.Evolved):
		return true
	}
	return false
}

// FlowLinks returns the links of m that classify as flows against their
// declared endpoints, in declaration order.
func (m *Map) FlowLinks() []Link {
	var out []Link
	for _, l := range m.Links {
		start, end, ok := m.Endpoints(l)
		if ok && IsFlow(l, start, end) {
			out = append(out, l)
		}
	}
	return out
}
