package contextbuild

import (
	"math"
	"strconv"
	"time"
)

// formatVND renders a VND amount the way Vietnamese storefronts print it:
// dot-separated thousands with a trailing đ ("10.000.000đ").
func formatVND(v float64) string {
	n := int64(math.Round(v))
	neg := n < 0
	if neg {
		n = -n
	}

	s := strconv.FormatInt(n, 10)
	out := make([]byte, 0, len(s)+len(s)/3+2)
	if neg {
		out = append(out, '-')
	}
	lead := len(s) % 3
	if lead > 0 {
		out = append(out, s[:lead]...)
	}
	for i := lead; i < len(s); i += 3 {
		if len(out) > 0 && out[len(out)-1] != '-' {
			out = append(out, '.')
		}
		out = append(out, s[i:i+3]...)
	}

	return string(out) + "đ"
}

// formatDate renders a timestamp as a date only; the generator does not need
// sub-day precision and shorter context is cheaper.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return "không rõ"
	}
	return t.Format("02/01/2006")
}
