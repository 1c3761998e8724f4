package services

import "strconv"

// FormatRub renders a ruble amount the way the result page shows it:
// truncated to an integer, digit groups separated by spaces. 5500000.4
// becomes "5 500 000".
func FormatRub(v float64) string {
	s := strconv.FormatInt(int64(v), 10)

	start := 0
	if s[0] == '-' {
		start = 1
	}

	digits := len(s) - start
	if digits <= 3 {
		return s
	}

	var b []byte
	b = append(b, s[:start]...)
	for i := start; i < len(s); i++ {
		if i > start && (len(s)-i)%3 == 0 {
			b = append(b, ' ')
		}
		b = append(b, s[i])
	}
	return string(b)
}
