package talent

import "strings"

// Matcher implements the substring test shared by all talents.
//
// Matching is deliberately coarse: any exclusion substring vetoes the command,
// otherwise any keyword substring accepts it. Stricter parsing happens in Execute.
type Matcher struct {
	Keywords   []string
	Exclusions []string
}

// Match reports whether text is a plausible command for the talent.
func (m Matcher) Match(text string) bool {
	lower := strings.ToLower(text)
	if m.Excluded(lower) {
		return false
	}
	for _, kw := range m.Keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Excluded reports whether lower contains any exclusion term.
// lower must already be lower-cased.
func (m Matcher) Excluded(lower string) bool {
	for _, ex := range m.Exclusions {
		if strings.Contains(lower, ex) {
			return true
		}
	}
	return false
}

// Base provides Info and CanHandle from a static descriptor.
// Talents embed it and add Execute and ConfigSchema.
type Base struct {
	info Info
}

// NewBase returns a Base for info.
func NewBase(info Info) Base {
	return Base{info: info}
}

func (b Base) Info() Info { return b.info }

func (b Base) CanHandle(text string) bool {
	return b.info.Matcher().Match(text)
}
