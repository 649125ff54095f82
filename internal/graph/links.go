package graph

// LinkSet holds the links of a graph.
type LinkSet struct {
	origins map[Socket]Socket
	targets map[Socket][]Socket
	links   []Link
}

func newLinkSet() LinkSet {
	return LinkSet{
		origins: make(map[Socket]Socket),
		targets: make(map[Socket][]Socket),
	}
}

func (ls *LinkSet) add(l Link) error {
	if existing, ok := ls.origins[l.To]; ok {
		return &DuplicateLinkError{To: l.To, Existing: existing, New: l.From}
	}
	ls.origins[l.To] = l.From
	ls.targets[l.From] = append(ls.targets[l.From], l.To)
	ls.links = append(ls.links, l)
	return nil
}

// OriginOf returns the output socket linked into the input socket in.
func (ls *LinkSet) OriginOf(in Socket) (Socket, bool) {
	from, ok := ls.origins[in]
	return from, ok
}

// TargetsOf returns the input sockets linked from out, in link order. The
// returned slice must not be modified.
func (ls *LinkSet) TargetsOf(out Socket) []Socket {
	return ls.targets[out]
}

// Links returns every link in insertion order.
func (ls *LinkSet) Links() []Link {
	return append([]Link(nil), ls.links...)
}

// Len returns the number of links.
func (ls *LinkSet) Len() int { return len(ls.links) }
