// Package attrs reads values out of slog-style key/value argument lists.
package attrs

// ExtractString returns the string value paired with key in a
// [key1, value1, key2, value2, ...] list, or "" when absent or not a string.
// Values implementing fmt.Stringer are rendered with String.
func ExtractString(kv []any, key string) string {
	for i := 0; i+1 < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok || k != key {
			continue
		}
		switch v := kv[i+1].(type) {
		case string:
			return v
		case interface{ String() string }:
			return v.String()
		}
	}
	return ""
}

// FirstString returns the first non-empty value among keys, in order.
func FirstString(kv []any, keys ...string) string {
	for _, key := range keys {
		if v := ExtractString(kv, key); v != "" {
			return v
		}
	}
	return ""
}
