package extraction

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var currencyJunk = regexp.MustCompile(`[TL₺\s]`)

// ParseAmount converts a Turkish-formatted amount ("1.234,56", dot as
// thousands separator, comma as decimal separator) to a decimal. Malformed
// input returns ok=false rather than zero.
func ParseAmount(s string) (decimal.Decimal, bool) {
	cleaned := currencyJunk.ReplaceAllString(strings.TrimSpace(s), "")
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

func (e *Extractor) amountInLine(line string) (decimal.Decimal, bool) {
	for _, p := range e.amountPatterns {
		if m := p.FindStringSubmatch(line); m != nil {
			if amount, ok := ParseAmount(m[1]); ok && amount.IsPositive() {
				return amount, true
			}
		}
	}
	return decimal.Decimal{}, false
}

// extractTotal finds the gross amount. Keyword-labelled lines are tried
// first; if none yields a positive amount, the largest amount anywhere in
// the text is used, since OCR often detaches the total label from its value
// but the grand total is reliably the largest printed figure.
func (e *Extractor) extractTotal(rawText string, lines []string) (decimal.Decimal, bool) {
	for _, keyword := range totalKeywords {
		for _, line := range lines {
			if !strings.Contains(strings.ToLower(line), keyword) {
				continue
			}
			if amount, ok := e.amountInLine(line); ok {
				return amount, true
			}
		}
	}

	var largest decimal.Decimal
	found := false
	for _, p := range e.amountPatterns {
		for _, m := range p.FindAllStringSubmatch(rawText, -1) {
			amount, ok := ParseAmount(m[1])
			if !ok || !amount.IsPositive() {
				continue
			}
			if !found || amount.GreaterThan(largest) {
				largest = amount
				found = true
			}
		}
	}
	return largest, found
}

// extractTax finds the KDV amount. On lines carrying an explicit rate
// marker ("KDV %18 12,34") the amount after the percentage wins over a
// generic amount match on the same line.
func (e *Extractor) extractTax(lines []string) (decimal.Decimal, bool) {
	for _, keyword := range taxKeywords {
		for _, line := range lines {
			if !strings.Contains(strings.ToLower(line), keyword) {
				continue
			}
			if e.percentMarker.MatchString(line) {
				if m := e.taxRateAmount.FindStringSubmatch(line); m != nil {
					if amount, ok := ParseAmount(m[1]); ok && amount.IsPositive() {
						return amount, true
					}
				}
				continue
			}
			if amount, ok := e.amountInLine(line); ok {
				return amount, true
			}
		}
	}
	return decimal.Decimal{}, false
}
