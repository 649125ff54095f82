package types

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// ParseJSON decodes a JSON argument into a value of type t. Buffers are
// written as JSON strings and come back holding one fresh reference. Null is
// not an argument.
func ParseJSON(t *Type, raw []byte) (cty.Value, error) {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return cty.NilVal, fmt.Errorf("%s argument must not be null", t.Name())
	}
	if t.Cty().Equals(BufferCty) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return cty.NilVal, fmt.Errorf("buffer argument must be a JSON string: %w", err)
		}
		return BufferVal(NewBuffer([]byte(s))), nil
	}
	v, err := ctyjson.Unmarshal(raw, t.Cty())
	if err != nil {
		return cty.NilVal, fmt.Errorf("decoding %s argument: %w", t.Name(), err)
	}
	return v, nil
}

// FormatJSON encodes a result value as JSON.
func FormatJSON(v cty.Value) (json.RawMessage, error) {
	if v.Type().Equals(BufferCty) {
		b, err := BufferFrom(v)
		if err != nil {
			return nil, err
		}
		return json.Marshal(string(b.Bytes()))
	}
	out, err := ctyjson.Marshal(v, v.Type())
	if err != nil {
		return nil, fmt.Errorf("encoding %s result: %w", TypeName(v.Type()), err)
	}
	return out, nil
}
