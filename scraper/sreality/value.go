package sreality

import (
	"sort"
	"strconv"
	"strings"
)

// Helpers for digging typed values out of decoded API payloads. The upstream
// schema drifts between API versions and between summary and detail
// responses, so every accessor degrades to a zero value instead of failing.

// asObject returns v as a JSON object, or nil.
func asObject(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// asList returns v as a JSON array, or nil.
func asList(v any) []any {
	l, _ := v.([]any)
	return l
}

// asString returns the trimmed string form of a scalar value. Numbers are
// rendered without a decimal point when integral; identifiers like hash_id
// arrive as JSON numbers.
func asString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	}
	return ""
}

// asInt returns the integer form of a scalar value, or 0.
func asInt(v any) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case int:
		return t
	case int64:
		return int(t)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err == nil {
			return n
		}
	}
	return 0
}

// childMap walks a chain of object keys and returns the final object, or nil.
func childMap(m map[string]any, keys ...string) map[string]any {
	for _, key := range keys {
		if m == nil {
			return nil
		}
		m = asObject(m[key])
	}
	return m
}

// childList walks a chain of object keys and returns the final array, or nil.
func childList(m map[string]any, keys ...string) []any {
	if len(keys) == 0 {
		return nil
	}
	parent := childMap(m, keys[:len(keys)-1]...)
	if parent == nil {
		return nil
	}
	return asList(parent[keys[len(keys)-1]])
}

// stringField returns the first non-empty string among the named keys of m.
func stringField(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if s := asString(m[key]); s != "" {
			return s
		}
	}
	return ""
}

// sortedKeys returns the keys of m in lexical order. Go map iteration is
// randomized; "first non-empty entry" scans need a stable order.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// contactValue pulls a usable string out of one contact entry, which may be
// a bare string, an object carrying the value under a known field, or a list
// of either.
func contactValue(v any) string {
	switch t := v.(type) {
	case string, float64, int, int64:
		return asString(t)
	case map[string]any:
		return stringField(t, "number", "value", "email")
	case []any:
		for _, item := range t {
			if s := contactValue(item); s != "" {
				return s
			}
		}
	}
	return ""
}

// firstByKeySubstring depth-first scans the value graph for the first
// non-empty contact entry stored under a key whose name contains one of the
// given substrings (case-insensitive). Upstream key names vary ("telefon",
// "phone", "mobile"), so exact-key lookups are not enough.
func firstByKeySubstring(v any, subs ...string) string {
	switch t := v.(type) {
	case map[string]any:
		keys := sortedKeys(t)
		for _, k := range keys {
			if keyMatches(k, subs) {
				if s := contactValue(t[k]); s != "" {
					return s
				}
			}
		}
		for _, k := range keys {
			if keyMatches(k, subs) {
				continue
			}
			if s := firstByKeySubstring(t[k], subs...); s != "" {
				return s
			}
		}
	case []any:
		for _, item := range t {
			if s := firstByKeySubstring(item, subs...); s != "" {
				return s
			}
		}
	}
	return ""
}

func keyMatches(key string, subs []string) bool {
	lower := strings.ToLower(key)
	for _, sub := range subs {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}
