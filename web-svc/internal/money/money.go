package money

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goodsign/monday"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var copPrinter = message.NewPrinter(language.MustParse("es-CO"))

const timestampLayout = "2 Jan 2006, 15:04"

// FormatCOP renders a zero-decimal peso amount, e.g. "$ 38.000".
func FormatCOP(v int64) string {
	if v < 0 {
		return "-" + copPrinter.Sprintf("$ %d", -v)
	}
	return copPrinter.Sprintf("$ %d", v)
}

// ParseInt leniently coerces a decoded JSON value to an integer.
// Strings are parsed by their leading digits, floats are truncated.
func ParseInt(v any) (int, bool) {
	switch n := v.(type) {
	case nil, bool:
		return 0, false
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		return ParseInt(string(n))
	case string:
		return parseLeadingInt(n)
	default:
		return 0, false
	}
}

// ParseAmount coerces a decoded JSON value to a non-negative peso amount.
// Anything unparsable becomes 0.
func ParseAmount(v any) int64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0
	}
	return int64(f)
}

// AtLeastOne floors a quantity to 1.
func AtLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// FormatTimestamp renders an RFC3339 timestamp as a Spanish short date with 24h time,
// keeping the offset the timestamp was written in.
func FormatTimestamp(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Fecha no disponible"
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return monday.Format(t, timestampLayout, monday.LocaleEsES)
}

func parseLeadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
