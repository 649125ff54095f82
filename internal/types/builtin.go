package types

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/zclconf/go-cty/cty"
)

// Built-in types.
var (
	Number     = New("number", cty.Number, Trivial{})
	Bool       = New("bool", cty.Bool, Trivial{})
	String     = New("string", cty.String, Trivial{})
	BufferType = New("buffer", BufferCty, RefCounted{Retain: retainBuffer, Release: releaseBuffer})
)

var (
	derivedMu sync.Mutex
	derived   = map[string]*Type{}
)

// FromCty returns the shared Type for a cty type. Collection and structural
// types of trivial elements get a Trivial type named after their type
// expression, for example list(number).
func FromCty(ty cty.Type) (*Type, error) {
	switch {
	case ty.Equals(cty.Number):
		return Number, nil
	case ty.Equals(cty.Bool):
		return Bool, nil
	case ty.Equals(cty.String):
		return String, nil
	case ty.Equals(BufferCty):
		return BufferType, nil
	case ty.Equals(cty.DynamicPseudoType):
		return nil, fmt.Errorf("type any is not concrete")
	case ty.IsCapsuleType():
		return nil, fmt.Errorf("unsupported capsule type %s", ty.FriendlyName())
	}
	if err := mustBeTrivial(ty); err != nil {
		return nil, err
	}

	name := TypeName(ty)
	derivedMu.Lock()
	defer derivedMu.Unlock()
	if t, ok := derived[name]; ok {
		return t, nil
	}
	t := New(name, ty, Trivial{})
	derived[name] = t
	return t, nil
}

// MustFromCty is FromCty for types known to be supported.
func MustFromCty(ty cty.Type) *Type {
	t, err := FromCty(ty)
	if err != nil {
		panic(err)
	}
	return t
}

// TypeName renders ty as a type expression.
func TypeName(ty cty.Type) string {
	switch {
	case ty.Equals(cty.Number):
		return "number"
	case ty.Equals(cty.Bool):
		return "bool"
	case ty.Equals(cty.String):
		return "string"
	case ty.Equals(cty.DynamicPseudoType):
		return "any"
	case ty.IsCapsuleType():
		return ty.FriendlyName()
	case ty.IsListType():
		return "list(" + TypeName(ty.ElementType()) + ")"
	case ty.IsSetType():
		return "set(" + TypeName(ty.ElementType()) + ")"
	case ty.IsMapType():
		return "map(" + TypeName(ty.ElementType()) + ")"
	case ty.IsObjectType():
		attrs := ty.AttributeTypes()
		names := make([]string, 0, len(attrs))
		for n := range attrs {
			names = append(names, n)
		}
		sort.Strings(names)
		parts := make([]string, len(names))
		for i, n := range names {
			parts[i] = n + "=" + TypeName(attrs[n])
		}
		return "object({" + strings.Join(parts, ",") + "})"
	case ty.IsTupleType():
		elems := ty.TupleElementTypes()
		parts := make([]string, len(elems))
		for i, et := range elems {
			parts[i] = TypeName(et)
		}
		return "tuple([" + strings.Join(parts, ",") + "])"
	}
	return ty.FriendlyName()
}
