package netlist

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Attributes is a component's attribute set. Values are kept as text so a
// design file may spell them as JSON strings, numbers or booleans.
type Attributes map[string]string

// UnmarshalJSON accepts scalar values of any JSON type.
func (a *Attributes) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Attributes, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			out[k] = val
		case bool:
			out[k] = strconv.FormatBool(val)
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64)
		case nil:
			out[k] = ""
		default:
			return fmt.Errorf("attribute %q: unsupported value %v", k, v)
		}
	}
	*a = out
	return nil
}

func (a Attributes) String(key, def string) string {
	if v, ok := a[key]; ok {
		return v
	}
	return def
}

// Int parses a decimal or 0x-prefixed integer attribute.
func (a Attributes) Int(key string, def int) int {
	v, ok := a[key]
	if !ok {
		return def
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 0, 64)
	if err != nil {
		return def
	}
	return int(n)
}

func (a Attributes) Bool(key string, def bool) bool {
	v, ok := a[key]
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return b
}

// Uint64s parses a whitespace or comma separated list of hex words, as used
// for memory contents. A "n*value" item repeats value n times.
func (a Attributes) Uint64s(key string) ([]uint64, error) {
	v, ok := a[key]
	if !ok {
		return nil, nil
	}
	fields := strings.FieldsFunc(v, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t' || r == '\r'
	})
	var out []uint64
	for _, f := range fields {
		count := uint64(1)
		if i := strings.IndexByte(f, '*'); i >= 0 {
			n, err := strconv.ParseUint(f[:i], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("attribute %q: bad repeat count %q", key, f)
			}
			count, f = n, f[i+1:]
		}
		w, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(f), "0x"), 16, 64)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: bad hex word %q", key, f)
		}
		for ; count > 0; count-- {
			out = append(out, w)
		}
	}
	return out, nil
}
