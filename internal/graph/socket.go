package graph

import (
	"fmt"
	"sort"
)

// NodeID is the arena index of a node in its graph.
type NodeID int

// Direction tells input sockets from output sockets.
type Direction uint8

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	if d == Input {
		return "in"
	}
	return "out"
}

// Socket identifies one socket of one node. Sockets are comparable values.
type Socket struct {
	Node  NodeID
	Dir   Direction
	Index int
}

// In returns the i-th input socket of node n.
func In(n NodeID, i int) Socket { return Socket{Node: n, Dir: Input, Index: i} }

// Out returns the i-th output socket of node n.
func Out(n NodeID, i int) Socket { return Socket{Node: n, Dir: Output, Index: i} }

// IsInput reports whether s is an input socket.
func (s Socket) IsInput() bool { return s.Dir == Input }

func (s Socket) String() string {
	return fmt.Sprintf("n%d.%s[%d]", s.Node, s.Dir, s.Index)
}

// Link is a directed edge from an output socket to an input socket.
type Link struct {
	From Socket
	To   Socket
}

func (l Link) String() string { return l.From.String() + " -> " + l.To.String() }

// SocketSet is a set of sockets.
type SocketSet map[Socket]struct{}

// NewSocketSet creates a set holding the given sockets.
func NewSocketSet(sockets ...Socket) SocketSet {
	s := make(SocketSet, len(sockets))
	for _, sock := range sockets {
		s.Add(sock)
	}
	return s
}

// Add inserts a socket.
func (s SocketSet) Add(sock Socket) { s[sock] = struct{}{} }

// Has reports whether the socket is in the set.
func (s SocketSet) Has(sock Socket) bool {
	_, ok := s[sock]
	return ok
}

// Sorted returns the sockets ordered by node, direction and index.
func (s SocketSet) Sorted() []Socket {
	out := make([]Socket, 0, len(s))
	for sock := range s {
		out = append(out, sock)
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func less(a, b Socket) bool {
	if a.Node != b.Node {
		return a.Node < b.Node
	}
	if a.Dir != b.Dir {
		return a.Dir < b.Dir
	}
	return a.Index < b.Index
}
