package codec

// Decoders disagree about what an "integer" or a "map" looks like: JSON gives
// float64 and map[string]any, msgpack gives int64/uint64 and
// map[string]interface{}, CBOR gives uint64 and map[interface{}]interface{}.
// normalize settles every decoded value into the protocol value set: int64,
// float64, string, bool, []any, map[string]any.
func normalize(v any) any {
	switch x := v.(type) {
	case []any:
		for i, e := range x {
			x[i] = normalize(e)
		}
		return x
	case map[string]any:
		for k, e := range x {
			x[k] = normalize(e)
		}
		return x
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, e := range x {
			ks, ok := k.(string)
			if !ok {
				// Non-string keys do not occur in WAMP payloads; keep the
				// value printable rather than dropping it.
				continue
			}
			m[ks] = normalize(e)
		}
		return m
	case float64:
		if x == float64(int64(x)) {
			return int64(x)
		}
		return x
	case float32:
		return normalize(float64(x))
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		return int64(x)
	case []byte:
		return string(x)
	default:
		return v
	}
}

func normalizeArr(arr []any) []any {
	for i, e := range arr {
		arr[i] = normalize(e)
	}
	return arr
}
