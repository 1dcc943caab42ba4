package brand

import "strings"

// DefaultContentTypeLabel is adopted when a message clearly asks for content
// but matches no keyword set.
const DefaultContentTypeLabel = "Job Opportunity Spotlight"

var genericContentSignals = []string{"post", "content", "image"}

// DetectContentType matches a free-text description against the keyword table
// in declaration order and returns the label of the first content type whose
// keyword set matches. Messages that mention content generically but match no
// keyword set fall back to the job spotlight label.
func DetectContentType(message string) (string, bool) {
	lower := strings.ToLower(message)

	for _, entry := range contentTypeKeywords {
		for _, kw := range entry.Keywords {
			if strings.Contains(lower, kw) {
				if ct, ok := GetContentType(entry.ID); ok {
					return ct.Label, true
				}
			}
		}
	}

	for _, signal := range genericContentSignals {
		if strings.Contains(lower, signal) {
			return DefaultContentTypeLabel, true
		}
	}

	return "", false
}

// slugify normalizes a display label into identifier form. Labels that contain
// separators beyond spaces (e.g. "Benefits/Value Props") are resolved by exact
// label comparison in GetContentTypeByLabel before slug matching applies.
func slugify(label string) string {
	lower := strings.ToLower(strings.TrimSpace(label))
	for _, ct := range contentTypes {
		if strings.ToLower(ct.Label) == lower {
			return ct.ID
		}
	}
	return strings.Join(strings.Fields(lower), "-")
}
