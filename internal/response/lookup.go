package response

import (
	"github.com/tidwall/gjson"
)

// Lookup extracts a value from a structured body using a JSON path such as
// "$.user.id" or "user.id". ok is false for non-structured bodies or missing paths.
func (s *Summary) Lookup(path string) (string, bool) {
	if s == nil || s.Body.Kind != BodyStructured || path == "" {
		return "", false
	}
	// Strip leading $. if present, or handle bare $ to return entire JSON
	if path[0] == '$' {
		if len(path) > 1 && path[1] == '.' {
			path = path[2:]
		} else if len(path) == 1 {
			path = "@this"
		}
	}
	result := gjson.GetBytes(s.Body.Raw, path)
	if !result.Exists() {
		return "", false
	}
	return result.String(), true
}
