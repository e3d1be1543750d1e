package normalizer

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"
)

// FieldError reports a supplied value that cannot be coerced into a BuildSpec field.
type FieldError struct {
	Field  string
	Value  any
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// record is one raw catalog entry (cpu, gpu, ...) addressed by the key it arrived under.
type record struct {
	path   string
	fields map[string]any
}

func loadRecord(raw map[string]any, keys ...string) (record, error) {
	v, key, ok := lookup(raw, keys...)
	if !ok {
		return record{path: keys[0]}, nil
	}
	// Multi-part entries (several drives) are evaluated by their first part.
	if items, isList := v.([]any); isList {
		v = items[0]
	}
	fields, err := cast.ToStringMapE(v)
	if err != nil {
		return record{}, &FieldError{Field: key, Value: v, Reason: "must be an object"}
	}
	return record{path: key, fields: fields}, nil
}

func (r record) present() bool {
	return len(r.fields) > 0
}

func (r record) number(keys ...string) (float64, bool, error) {
	return number(r.fields, r.path+".", keys...)
}

func (r record) text(keys ...string) string {
	return text(r.fields, keys...)
}

func (r record) raw(keys ...string) (any, string, bool) {
	v, key, ok := lookup(r.fields, keys...)
	return v, r.path + "." + key, ok
}

// lookup returns the first usable value among keys. Nil values, blank strings and empty arrays
// count as missing; single-element arrays are unwrapped.
func lookup(m map[string]any, keys ...string) (any, string, bool) {
	for _, key := range keys {
		v, ok := m[key]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			if strings.TrimSpace(t) == "" {
				continue
			}
		case []any:
			if len(t) == 0 {
				continue
			}
			if len(t) == 1 {
				if t[0] == nil {
					continue
				}
				v = t[0]
			}
		}
		return v, key, true
	}
	return nil, "", false
}

func number(m map[string]any, prefix string, keys ...string) (float64, bool, error) {
	v, key, ok := lookup(m, keys...)
	if !ok {
		return 0, false, nil
	}
	return toNumber(prefix+key, v)
}

// toNumber coerces catalog scalars ("650", 650, json.Number) to a float. Zero reads as missing.
func toNumber(field string, v any) (float64, bool, error) {
	if _, isBool := v.(bool); isBool {
		return 0, false, &FieldError{Field: field, Value: v, Reason: "must be a number"}
	}
	if s, isString := v.(string); isString {
		v = strings.TrimSpace(s)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, false, &FieldError{Field: field, Value: v, Reason: "must be a number"}
	}
	switch {
	case !finite(f):
		return 0, false, &FieldError{Field: field, Value: v, Reason: "must be finite"}
	case f < 0:
		return 0, false, &FieldError{Field: field, Value: v, Reason: "must not be negative"}
	case f == 0:
		return 0, false, nil
	}
	return f, true, nil
}

func text(m map[string]any, keys ...string) string {
	v, _, ok := lookup(m, keys...)
	if !ok {
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// pair splits catalog tuples such as speed [ddr, mhz] or modules [count, size_gb].
func pair(v any) (any, any, bool) {
	items, ok := v.([]any)
	if !ok || len(items) != 2 {
		return nil, nil, false
	}
	return items[0], items[1], true
}

// toInt rounds a coerced value to a whole count. Values that round to zero read as missing.
func toInt(field string, f float64) (int, bool, error) {
	if !finite(f) || f > math.MaxInt32 {
		return 0, false, &FieldError{Field: field, Value: f, Reason: "out of range"}
	}
	n := int(math.Round(f))
	return n, n > 0, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// ghz folds clocks given in MHz into GHz.
func ghz(clock float64) float64 {
	if clock > 100 {
		return clock / 1000
	}
	return clock
}

// mhz folds clocks given in GHz into MHz.
func mhz(clock float64) float64 {
	if clock < 100 {
		return clock * 1000
	}
	return clock
}
