package llm

import (
	"encoding/json"

	"github.com/hjson/hjson-go/v4"
	"github.com/pkg/errors"
)

// ExtractObject finds the last JSON object in a model reply and decodes it
// into out. Models often add prose, trailing commas or unquoted keys, so each
// candidate is tried as strict JSON first and then as Hjson.
func ExtractObject(reply string, out any) error {
	objects := topLevelObjects(reply)
	if len(objects) == 0 {
		return errors.New("no JSON object in reply")
	}

	var lastErr error
	for i := len(objects) - 1; i >= 0; i-- {
		if err := json.Unmarshal([]byte(objects[i]), out); err == nil {
			return nil
		}
		if err := decodeHjson(objects[i], out); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}
	return errors.Wrap(lastErr, "no parsable object in reply")
}

// topLevelObjects returns every balanced {...} span that is not nested in
// another. Braces inside double-quoted strings do not count, so a regex
// quantifier such as "\\d{4}" stays inside its object.
func topLevelObjects(s string) []string {
	var out []string
	depth, start := 0, 0
	inString, escaped := false, false
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
			inString = depth > 0
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 {
					out = append(out, s[start:i+1])
				}
			}
		}
	}
	return out
}

func decodeHjson(text string, out any) error {
	var generic map[string]any
	if err := hjson.Unmarshal([]byte(text), &generic); err != nil {
		return err
	}
	data, err := json.Marshal(generic)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
