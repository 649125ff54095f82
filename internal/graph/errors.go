package graph

import (
	"errors"
	"fmt"
	"strings"
)

// UnknownSocketError reports a socket that does not exist or has the wrong
// direction for where it is used.
type UnknownSocketError struct {
	Socket Socket
	Reason string
}

func (e *UnknownSocketError) Error() string {
	return fmt.Sprintf("invalid socket %s: %s", e.Socket, e.Reason)
}

// TypeMismatchError reports a link between sockets of different types.
type TypeMismatchError struct {
	From, To         string
	FromType, ToType string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("cannot link %s (%s) to %s (%s): type mismatch", e.From, e.FromType, e.To, e.ToType)
}

// DuplicateLinkError reports a second link into an input socket.
type DuplicateLinkError struct {
	To       Socket
	Existing Socket
	New      Socket
}

func (e *DuplicateLinkError) Error() string {
	return fmt.Sprintf("input %s is already linked from %s, cannot link it from %s", e.To, e.Existing, e.New)
}

// MissingOriginError reports a required input socket without a link.
type MissingOriginError struct {
	Socket Socket
	// Name is the human-readable socket name, "node.socket".
	Name string
}

func (e *MissingOriginError) Error() string {
	return fmt.Sprintf("input %s is required but not linked", e.Name)
}

// CycleError reports a dependency cycle. Nodes lists the node names along
// the cycle; the first name is repeated at the end.
type CycleError struct {
	Nodes []string
}

func (e *CycleError) Error() string {
	return "graph contains a cycle: " + strings.Join(e.Nodes, " -> ")
}

// AsCycleError unwraps err into a *CycleError.
func AsCycleError(err error) (*CycleError, bool) {
	var ce *CycleError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// ErrDuplicateInput is returned when a socket is provided more than once.
var ErrDuplicateInput = errors.New("socket provided more than once")

// ContractViolation is the panic value of structural errors found while
// traversing a graph that skipped validation.
type ContractViolation struct {
	Msg string
}

func (c ContractViolation) Error() string { return "graph contract violation: " + c.Msg }

func violatef(format string, args ...any) {
	panic(ContractViolation{Msg: fmt.Sprintf(format, args...)})
}
