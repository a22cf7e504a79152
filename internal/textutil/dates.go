package textutil

import (
	"strconv"
	"strings"
)

// UndefinedDate sorts after every real date.
const UndefinedDate = "9999-12-31"

// PeriodEnd expands a partial date to the last day of the period it names.
// "1995" becomes "1995-12-31" and "1995-02" becomes "1995-02-28"; February
// always ends on the 28th. Full dates are truncated to ten characters. The
// second return is false when the value is not a recognizable date.
func PeriodEnd(value string) (string, bool) {
	year, month, day, ok := splitDate(value)
	if !ok {
		return "", false
	}
	switch {
	case month == "":
		return year + "-12-31", true
	case day == "":
		m, _ := strconv.Atoi(month)
		return year + "-" + month + "-" + strconv.Itoa(monthEnd(m)), true
	default:
		return year + "-" + month + "-" + day, true
	}
}

// PeriodStart expands a partial date to the first day of the period it names.
func PeriodStart(value string) (string, bool) {
	year, month, day, ok := splitDate(value)
	if !ok {
		return "", false
	}
	if month == "" {
		month = "01"
	}
	if day == "" {
		day = "01"
	}
	return year + "-" + month + "-" + day, true
}

// Day truncates a date-like value to YYYY-MM-DD or shorter.
func Day(value string) string {
	value = strings.TrimSpace(value)
	if len(value) > 10 {
		return value[:10]
	}
	return value
}

func splitDate(value string) (year, month, day string, ok bool) {
	parts := strings.Split(Day(value), "-")
	if len(parts) == 0 || len(parts) > 3 {
		return "", "", "", false
	}
	if !digits(parts[0], 4) {
		return "", "", "", false
	}
	year = parts[0]
	if len(parts) >= 2 {
		m, err := strconv.Atoi(parts[1])
		if !digits(parts[1], 2) || err != nil || m < 1 || m > 12 {
			return "", "", "", false
		}
		month = parts[1]
	}
	if len(parts) == 3 {
		d, err := strconv.Atoi(parts[2])
		if !digits(parts[2], 2) || err != nil || d < 1 || d > 31 {
			return "", "", "", false
		}
		day = parts[2]
	}
	return year, month, day, true
}

func digits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func monthEnd(month int) int {
	switch month {
	case 2:
		return 28
	case 4, 6, 9, 11:
		return 30
	default:
		return 31
	}
}
