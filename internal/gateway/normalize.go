package gateway

import "strings"

// extractImageURL reduces the provider's output to a single URL. Precedence:
// a bare string wins outright; else the first element of an array (unwrapping
// url-bearing elements recursively); else the object's "url" field, then
// "output". Anything else is unusable.
func extractImageURL(output any) (string, bool) {
	switch v := output.(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return s, true
		}
	case []any:
		if len(v) > 0 {
			return extractImageURL(v[0])
		}
	case map[string]any:
		for _, field := range []string{"url", "output"} {
			if nested, ok := v[field]; ok {
				if s, ok := extractImageURL(nested); ok {
					return s, true
				}
			}
		}
	}
	return "", false
}
