package classify

import "encoding/json"

// ExtractJSONObjects scans free text for top-level balanced {...} spans and
// returns the ones that parse as JSON objects. Each span is attempted
// independently, so one malformed record cannot poison the rest of a batch
// reply. Braces inside JSON string literals do not count toward nesting.
func ExtractJSONObjects(s string) []json.RawMessage {
	var objects []json.RawMessage

	depth := 0
	start := -1
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				span := s[start : i+1]
				if json.Valid([]byte(span)) {
					objects = append(objects, json.RawMessage(span))
				}
			}
		}
	}

	return objects
}
