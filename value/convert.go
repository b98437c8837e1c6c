package value

// ToGo converts a Value into a plain Go value (nil, bool, float64, string,
// []any, map[string]any) suitable for a generic JSON codec. Used by the json
// stdlib module and by the web bridge's response-helper JSON encoding, so
// both paths share one codec instead of each hand-rolling serialization.
func ToGo(v Value) any {
	switch v.Kind() {
	case KindNull:
		return nil
	case KindBool:
		return v.Bool()
	case KindNumber:
		return v.Number()
	case KindString:
		return v.String()
	case KindArray:
		items := v.Array().Items()
		out := make([]any, len(items))
		for i, it := range items {
			out[i] = ToGo(it)
		}
		return out
	case KindMap:
		out := make(map[string]any, v.Map().Len())
		for _, k := range v.Map().Keys() {
			val, _ := v.Map().Get(k)
			out[k] = ToGo(val)
		}
		return out
	default:
		return ToDisplayString(v)
	}
}

// FromGo converts a decoded JSON value (as produced by encoding/json or
// goccy/go-json's Unmarshal into an any) back into a Value.
func FromGo(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(t)
	case float64:
		return Number(t)
	case string:
		return Str(t)
	case []any:
		items := make([]Value, len(t))
		for i, it := range t {
			items[i] = FromGo(it)
		}
		return ArrayValue(NewArray(items))
	case map[string]any:
		entries := make(map[string]Value, len(t))
		for k, val := range t {
			entries[k] = FromGo(val)
		}
		return MapValue(NewRelic(entries))
	default:
		return Null()
	}
}
