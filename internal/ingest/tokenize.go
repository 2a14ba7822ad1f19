package ingest

import (
	"math"
	"strconv"
	"strings"
)

// SplitFields splits one raw CSV line into trimmed field values. A double
// quote toggles quoted mode and is never emitted into the value; the comma
// separator is literal inside a quoted span. The result always has at least
// one element, possibly the empty string.
func SplitFields(line string) []string {
	fields := make([]string, 0, 8)
	var b strings.Builder
	inQuotes := false

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(b.String()))
			b.Reset()
		default:
			b.WriteRune(r)
		}
	}
	fields = append(fields, strings.TrimSpace(b.String()))
	return fields
}

// numberCleaner strips locale thousands separators and quote wrapping from
// numeric tokens ("1,234" → "1234").
var numberCleaner = strings.NewReplacer(`"`, "", `'`, "", ",", "")

// ParseNumber converts a locale-formatted numeric token to a float64. It is
// a total function: empty, absent or unparseable tokens yield exactly 0 and
// NaN/Inf never escape. Malformed cells therefore become zeros rather than
// aborting aggregation; callers that care track this via parseNumberOK.
func ParseNumber(s string) float64 {
	v, _ := parseNumberOK(s)
	return v
}

// parseNumberOK reports whether the token actually parsed, so aggregation
// can count defaulted cells.
func parseNumberOK(s string) (float64, bool) {
	s = strings.TrimSpace(numberCleaner.Replace(s))
	s = numericPrefix(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// numericPrefix trims trailing unit suffixes ("1234원", "12.5%") down to the
// leading numeric literal, mirroring how these exports mix units into cells.
// Scientific notation counts as part of the literal: "1e5" stays intact, while
// a bare trailing exponent marker ("1e", "2e+") is dropped.
func numericPrefix(s string) string {
	end := 0
	seenDot := false
	seenExp := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= '0' && c <= '9' {
			end = i + 1
			continue
		}
		if c == '.' && !seenDot && !seenExp {
			seenDot = true
			end = i + 1
			continue
		}
		if (c == '-' || c == '+') && i == 0 {
			end = i + 1
			continue
		}
		if (c == 'e' || c == 'E') && !seenExp && end == i && end > 0 {
			j := i + 1
			if j < len(s) && (s[j] == '-' || s[j] == '+') {
				j++
			}
			if j < len(s) && s[j] >= '0' && s[j] <= '9' {
				seenExp = true
				end = j + 1
				i = j
				continue
			}
		}
		break
	}
	return strings.TrimRight(s[:end], ".+-")
}
