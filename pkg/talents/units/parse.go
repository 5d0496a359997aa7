package units

import (
	"regexp"
	"strconv"
	"strings"
)

type conversion struct {
	value    float64
	from, to string
}

var (
	convertPattern = regexp.MustCompile(`convert\s+([\d,.]+)\s+(\w+)\s+(?:to|into|in)\s+(\w+)`)
	barePattern    = regexp.MustCompile(`([\d,.]+)\s+(\w+)\s+(?:to|into|in)\s+(\w+)`)
	howManyPattern = regexp.MustCompile(`how\s+many\s+(\w+)\s+in\s+([\d,.]+)\s+(\w+)`)
	howManyOne     = regexp.MustCompile(`how\s+many\s+(\w+)\s+in\s+(?:a|an|one)\s+(\w+)`)
)

// parse extracts a conversion from a lower-cased command.
func parse(text string) (conversion, bool) {
	cmd := strings.TrimSpace(strings.ToLower(text))

	for _, re := range []*regexp.Regexp{convertPattern, barePattern} {
		if m := re.FindStringSubmatch(cmd); m != nil {
			if v, ok := number(m[1]); ok {
				return conversion{value: v, from: m[2], to: m[3]}, true
			}
		}
	}
	if m := howManyPattern.FindStringSubmatch(cmd); m != nil {
		if v, ok := number(m[2]); ok {
			return conversion{value: v, from: m[3], to: m[1]}, true
		}
	}
	if m := howManyOne.FindStringSubmatch(cmd); m != nil {
		return conversion{value: 1, from: m[2], to: m[1]}, true
	}
	return conversion{}, false
}

func number(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	return v, err == nil
}
