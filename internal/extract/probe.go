package extract

import (
	"reflect"
	"strings"
)

// The probing helpers below read fields off values whose concrete type is
// unknown: structs (possibly behind pointers) with Go-cased field names, or
// maps with snake_case keys. Names are compared case-insensitively with
// underscores stripped, so "extracted_content" matches ExtractedContent.

func normName(s string) string {
	return strings.ToLower(strings.ReplaceAll(s, "_", ""))
}

func deref(v any) (reflect.Value, bool) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return reflect.Value{}, false
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return reflect.Value{}, false
	}
	return rv, true
}

// valueAt returns the value of the first field or map key matching one of
// the given names.
func valueAt(v any, names ...string) (any, bool) {
	rv, ok := deref(v)
	if !ok {
		return nil, false
	}

	switch rv.Kind() {
	case reflect.Struct:
		t := rv.Type()
		for i := 0; i < t.NumField(); i++ {
			if !t.Field(i).IsExported() {
				continue
			}
			for _, name := range names {
				if normName(t.Field(i).Name) == normName(name) {
					return rv.Field(i).Interface(), true
				}
			}
		}
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		iter := rv.MapRange()
		for iter.Next() {
			for _, name := range names {
				if normName(iter.Key().String()) == normName(name) {
					return iter.Value().Interface(), true
				}
			}
		}
	}
	return nil, false
}

// stringAt probes for a string-valued field or a niladic string method.
func stringAt(v any, names ...string) (string, bool) {
	if raw, ok := valueAt(v, names...); ok {
		if s, ok := raw.(string); ok {
			return s, true
		}
	}

	// Method probe: only exact exported Go method names can match.
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return "", false
	}
	for _, name := range names {
		m := rv.MethodByName(exportedName(name))
		if m.IsValid() && m.Type().NumIn() == 0 && m.Type().NumOut() == 1 && m.Type().Out(0).Kind() == reflect.String {
			return m.Call(nil)[0].String(), true
		}
	}
	return "", false
}

func boolAt(v any, names ...string) bool {
	raw, ok := valueAt(v, names...)
	if !ok {
		return false
	}
	b, ok := raw.(bool)
	return ok && b
}

// sliceAt probes for a field holding a slice and returns it as []any.
func sliceAt(v any, names ...string) ([]any, bool) {
	raw, ok := valueAt(v, names...)
	if !ok {
		return nil, false
	}
	return asSlice(raw)
}

// asSlice converts any slice or array value to []any.
func asSlice(v any) ([]any, bool) {
	rv, ok := deref(v)
	if !ok {
		return nil, false
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// exportedName turns snake_case into an exported Go identifier
// ("final_result" -> "FinalResult").
func exportedName(name string) string {
	parts := strings.Split(name, "_")
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}
