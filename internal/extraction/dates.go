package extraction

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

type dateOrder int

const (
	orderDayMonthYear dateOrder = iota
	orderYearMonthDay
	orderDayNameYear
)

type datePattern struct {
	re    *regexp.Regexp
	order dateOrder
}

// Date formats seen on Turkish receipts, tried in priority order.
func buildDatePatterns() []datePattern {
	return []datePattern{
		{regexp.MustCompile(`(\d{1,2})[./](\d{1,2})[./](20\d{2})`), orderDayMonthYear},
		{regexp.MustCompile(`(\d{1,2})-(\d{1,2})-(20\d{2})`), orderDayMonthYear},
		{regexp.MustCompile(`(20\d{2})[./](\d{1,2})[./](\d{1,2})`), orderYearMonthDay},
		{regexp.MustCompile(`(?i)(\d{1,2})\s+(ocak|[şs]ubat|mart|nisan|may[ıi]s|haziran|temmuz|a[ğg]ustos|eyl[üu]l|ek[iİ]m|kas[ıi]m|aral[ıi]k)\s+(20\d{2})`), orderDayNameYear},
	}
}

// Month names keyed by their folded form. ASCII variants cover OCR output
// that drops Turkish diacritics.
var turkishMonths = map[string]time.Month{
	"ocak": time.January, "şubat": time.February, "subat": time.February,
	"mart": time.March, "nisan": time.April,
	"mayıs": time.May, "mayis": time.May,
	"haziran": time.June, "temmuz": time.July,
	"ağustos": time.August, "agustos": time.August,
	"eylül": time.September, "eylul": time.September,
	"ekim": time.October,
	"kasım": time.November, "kasim": time.November,
	"aralık": time.December, "aralik": time.December,
}

func foldMonthName(s string) string {
	s = strings.ToLower(s)
	// ToLower turns İ into "i" plus a combining dot; drop the dot.
	return strings.ReplaceAll(s, "\u0307", "")
}

// extractDate returns the first structurally valid calendar date found by
// the prioritized pattern list. Malformed matches are skipped silently.
func (e *Extractor) extractDate(text string) (time.Time, bool) {
	for _, dp := range e.datePatterns {
		for _, m := range dp.re.FindAllStringSubmatch(text, -1) {
			var day, month, year int
			switch dp.order {
			case orderYearMonthDay:
				year, _ = strconv.Atoi(m[1])
				month, _ = strconv.Atoi(m[2])
				day, _ = strconv.Atoi(m[3])
			case orderDayNameYear:
				day, _ = strconv.Atoi(m[1])
				mon, ok := turkishMonths[foldMonthName(m[2])]
				if !ok {
					continue
				}
				month = int(mon)
				year, _ = strconv.Atoi(m[3])
			default:
				day, _ = strconv.Atoi(m[1])
				month, _ = strconv.Atoi(m[2])
				year, _ = strconv.Atoi(m[3])
			}
			if d, ok := validDate(year, month, day); ok {
				return d, true
			}
		}
	}
	return time.Time{}, false
}

// validDate rejects impossible day/month combinations; time.Date would
// silently normalize them instead.
func validDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || int(d.Month()) != month || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}
