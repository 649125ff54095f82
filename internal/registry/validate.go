package registry

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// TagName is the struct tag DecodeParams reads.
const TagName = "gridc"

var ctyValueType = reflect.TypeOf(cty.Value{})

// DecodeParams decodes params into the struct pointed to by target. Fields
// are matched by their `gridc:"name"` tag; a tag option "optional" makes the
// parameter optional. Unknown parameters, missing parameters and values that
// cannot be converted to the field type are all reported together.
func DecodeParams(params map[string]cty.Value, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		panic(fmt.Sprintf("registry: DecodeParams target must be a pointer to a struct, got %T", target))
	}
	st := rv.Elem().Type()

	var errs []string
	known := make(map[string]bool)
	for i := 0; i < st.NumField(); i++ {
		field := st.Field(i)
		if !field.IsExported() {
			continue
		}
		name, optional := parseTag(field.Tag.Get(TagName))
		if name == "" || name == "-" {
			continue
		}
		known[name] = true

		val, ok := params[name]
		if !ok || val.IsNull() {
			if !optional {
				errs = append(errs, fmt.Sprintf("missing required parameter %q", name))
			}
			continue
		}

		if field.Type == ctyValueType {
			rv.Elem().Field(i).Set(reflect.ValueOf(val))
			continue
		}
		want, err := gocty.ImpliedType(reflect.Zero(field.Type).Interface())
		if err != nil {
			panic(fmt.Sprintf("registry: field %s has no cty equivalent: %v", field.Name, err))
		}
		conv, err := convert.Convert(val, want)
		if err != nil {
			errs = append(errs, fmt.Sprintf("parameter %q: %s", name, err))
			continue
		}
		if err := gocty.FromCtyValue(conv, rv.Elem().Field(i).Addr().Interface()); err != nil {
			errs = append(errs, fmt.Sprintf("parameter %q: %s", name, err))
		}
	}

	var unknown []string
	for name := range params {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		errs = append(errs, fmt.Sprintf("unsupported parameter %q", name))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid parameters:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func parseTag(tag string) (name string, optional bool) {
	parts := strings.Split(tag, ",")
	for _, opt := range parts[1:] {
		if opt == "optional" {
			optional = true
		}
	}
	return parts[0], optional
}
