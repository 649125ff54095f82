package expr

import (
	"errors"
	"fmt"
	"reflect"

	celtypes "github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"
	"github.com/specialistvlad/gridc/internal/types"
	"github.com/zclconf/go-cty/cty"
)

var errUnsupported = errors.New("unsupported value")

// toNative converts a cty value to the Go value CEL expects for it.
func toNative(v cty.Value) (any, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsKnown() {
		return nil, fmt.Errorf("%w: unknown", errUnsupported)
	}
	ty := v.Type()
	switch {
	case ty.Equals(cty.Number):
		f, _ := v.AsBigFloat().Float64()
		return f, nil
	case ty.Equals(cty.String):
		return v.AsString(), nil
	case ty.Equals(cty.Bool):
		return v.True(), nil
	case ty.IsListType(), ty.IsSetType(), ty.IsTupleType():
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			native, err := toNative(ev)
			if err != nil {
				return nil, err
			}
			out = append(out, native)
		}
		return out, nil
	case ty.IsMapType(), ty.IsObjectType():
		out := make(map[string]any, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			native, err := toNative(ev)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = native
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %s", errUnsupported, types.TypeName(ty))
}

// goNative transforms CEL output into plain Go values.
func goNative(v ref.Val) (any, error) {
	switch v.Type() {
	case celtypes.BoolType:
		return v.Value().(bool), nil
	case celtypes.IntType:
		return v.Value().(int64), nil
	case celtypes.UintType:
		return v.Value().(uint64), nil
	case celtypes.DoubleType:
		return v.Value().(float64), nil
	case celtypes.StringType:
		return v.Value().(string), nil
	case celtypes.NullType:
		return nil, nil
	case celtypes.ListType:
		lister, ok := v.(traits.Lister)
		if !ok {
			return v.ConvertToNative(reflect.TypeOf([]any{}))
		}
		var out []any
		for it := lister.Iterator(); it.HasNext() == celtypes.True; {
			elem, err := goNative(it.Next())
			if err != nil {
				return nil, err
			}
			out = append(out, elem)
		}
		return out, nil
	case celtypes.MapType:
		mapper, ok := v.(traits.Mapper)
		if !ok {
			return v.ConvertToNative(reflect.TypeOf(map[string]any{}))
		}
		out := make(map[string]any)
		for it := mapper.Iterator(); it.HasNext() == celtypes.True; {
			key := it.Next()
			k, ok := key.Value().(string)
			if !ok {
				return nil, fmt.Errorf("map key must be a string, got %s", key.Type().TypeName())
			}
			elem, err := goNative(mapper.Get(key))
			if err != nil {
				return nil, err
			}
			out[k] = elem
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %s", errUnsupported, v.Type().TypeName())
}

// toCty converts a Go value produced by goNative into a value of type ty.
func toCty(v any, ty cty.Type) (cty.Value, error) {
	if v == nil {
		return cty.NullVal(ty), nil
	}
	switch {
	case ty.Equals(cty.Number):
		switch n := v.(type) {
		case float64:
			return cty.NumberFloatVal(n), nil
		case int64:
			return cty.NumberIntVal(n), nil
		case uint64:
			return cty.NumberUIntVal(n), nil
		}
	case ty.Equals(cty.String):
		if s, ok := v.(string); ok {
			return cty.StringVal(s), nil
		}
	case ty.Equals(cty.Bool):
		if b, ok := v.(bool); ok {
			return cty.BoolVal(b), nil
		}
	case ty.IsListType(), ty.IsSetType():
		list, ok := v.([]any)
		if !ok {
			break
		}
		elems := make([]cty.Value, len(list))
		for i, e := range list {
			ev, err := toCty(e, ty.ElementType())
			if err != nil {
				return cty.NilVal, fmt.Errorf("element %d: %w", i, err)
			}
			elems[i] = ev
		}
		if ty.IsSetType() {
			if len(elems) == 0 {
				return cty.SetValEmpty(ty.ElementType()), nil
			}
			return cty.SetVal(elems), nil
		}
		if len(elems) == 0 {
			return cty.ListValEmpty(ty.ElementType()), nil
		}
		return cty.ListVal(elems), nil
	case ty.IsMapType():
		m, ok := v.(map[string]any)
		if !ok {
			break
		}
		if len(m) == 0 {
			return cty.MapValEmpty(ty.ElementType()), nil
		}
		elems := make(map[string]cty.Value, len(m))
		for k, e := range m {
			ev, err := toCty(e, ty.ElementType())
			if err != nil {
				return cty.NilVal, fmt.Errorf("key %q: %w", k, err)
			}
			elems[k] = ev
		}
		return cty.MapVal(elems), nil
	case ty.IsObjectType():
		m, ok := v.(map[string]any)
		if !ok {
			break
		}
		attrs := make(map[string]cty.Value, len(ty.AttributeTypes()))
		for name, at := range ty.AttributeTypes() {
			ev, err := toCty(m[name], at)
			if err != nil {
				return cty.NilVal, fmt.Errorf("attribute %q: %w", name, err)
			}
			attrs[name] = ev
		}
		return cty.ObjectVal(attrs), nil
	case ty.IsTupleType():
		list, ok := v.([]any)
		if !ok || len(list) != len(ty.TupleElementTypes()) {
			break
		}
		elems := make([]cty.Value, len(list))
		for i, et := range ty.TupleElementTypes() {
			ev, err := toCty(list[i], et)
			if err != nil {
				return cty.NilVal, fmt.Errorf("element %d: %w", i, err)
			}
			elems[i] = ev
		}
		return cty.TupleVal(elems), nil
	}
	return cty.NilVal, fmt.Errorf("cannot convert %T to %s", v, types.TypeName(ty))
}
