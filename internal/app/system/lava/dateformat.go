package lava

import (
	"strconv"
	"strings"
	"time"
)

// standard single-letter formats, expanded to custom patterns.
var standardFormats = map[string]string{
	"d": "M/d/yyyy",
	"D": "dddd, MMMM d, yyyy",
	"f": "dddd, MMMM d, yyyy h:mm tt",
	"F": "dddd, MMMM d, yyyy h:mm:ss tt",
	"g": "M/d/yyyy h:mm tt",
	"G": "M/d/yyyy h:mm:ss tt",
	"m": "MMMM d",
	"M": "MMMM d",
	"s": "yyyy'-'MM'-'dd'T'HH':'mm':'ss",
	"t": "h:mm tt",
	"T": "h:mm:ss tt",
	"y": "MMMM yyyy",
	"Y": "MMMM yyyy",
}

// FormatDate formats t with a .NET style date pattern (MMM, yyyy-MM-dd,
// dddd, h:mm tt, ...). Quoted text and backslash escapes are copied as is.
// An empty pattern uses "G".
func FormatDate(t time.Time, pattern string) string {
	if pattern == "" {
		pattern = "G"
	}
	if std, ok := standardFormats[pattern]; ok {
		pattern = std
	}

	var sb strings.Builder
	rs := []rune(pattern)
	for i := 0; i < len(rs); {
		c := rs[i]

		if c == '\'' || c == '"' {
			j := i + 1
			for j < len(rs) && rs[j] != c {
				j++
			}
			sb.WriteString(string(rs[i+1 : min(j, len(rs))]))
			i = j + 1
			continue
		}
		if c == '\\' {
			if i+1 < len(rs) {
				sb.WriteRune(rs[i+1])
			}
			i += 2
			continue
		}

		n := 1
		for i+n < len(rs) && rs[i+n] == c {
			n++
		}
		i += n

		switch c {
		case 'y':
			switch {
			case n == 1:
				sb.WriteString(strconv.Itoa(t.Year() % 100))
			case n == 2:
				sb.WriteString(pad(t.Year()%100, 2))
			default:
				sb.WriteString(pad(t.Year(), n))
			}
		case 'M':
			switch n {
			case 1:
				sb.WriteString(strconv.Itoa(int(t.Month())))
			case 2:
				sb.WriteString(pad(int(t.Month()), 2))
			case 3:
				sb.WriteString(t.Month().String()[:3])
			default:
				sb.WriteString(t.Month().String())
			}
		case 'd':
			switch n {
			case 1:
				sb.WriteString(strconv.Itoa(t.Day()))
			case 2:
				sb.WriteString(pad(t.Day(), 2))
			case 3:
				sb.WriteString(t.Weekday().String()[:3])
			default:
				sb.WriteString(t.Weekday().String())
			}
		case 'H':
			sb.WriteString(pad(t.Hour(), min(n, 2)))
		case 'h':
			h := t.Hour() % 12
			if h == 0 {
				h = 12
			}
			sb.WriteString(pad(h, min(n, 2)))
		case 'm':
			sb.WriteString(pad(t.Minute(), min(n, 2)))
		case 's':
			sb.WriteString(pad(t.Second(), min(n, 2)))
		case 'f':
			frac := pad(t.Nanosecond(), 9)
			sb.WriteString(frac[:min(n, 7)])
		case 't':
			ampm := "AM"
			if t.Hour() >= 12 {
				ampm = "PM"
			}
			sb.WriteString(ampm[:min(n, 2)])
		default:
			sb.WriteString(strings.Repeat(string(c), n))
		}
	}
	return sb.String()
}

func pad(v, width int) string {
	s := strconv.Itoa(v)
	if len(s) < width {
		s = strings.Repeat("0", width-len(s)) + s
	}
	return s
}
