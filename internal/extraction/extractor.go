package extraction

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Record holds the structured fields recovered from raw OCR text. A nil
// pointer means the field could not be extracted; it is never zero-valued.
type Record struct {
	VendorName *string           `json:"vendor_name,omitempty"`
	VKN        *string           `json:"vkn,omitempty"`
	TCKN       *string           `json:"tckn,omitempty"`
	DocDate    *time.Time        `json:"doc_date,omitempty"`
	TotalGross *decimal.Decimal  `json:"total_gross,omitempty"`
	TotalTax   *decimal.Decimal  `json:"total_tax,omitempty"`
	TotalNet   *decimal.Decimal  `json:"total_net,omitempty"`
	DocNo      *string           `json:"doc_no,omitempty"`
	Currency   string            `json:"currency"`
	Confidence float64           `json:"confidence"`
	Details    map[string]string `json:"details,omitempty"`
}

// Extractor pulls structured fields out of noisy OCR text from Turkish
// receipts and invoices. Extraction never fails: fields that cannot be
// parsed are simply absent and lower the confidence score.
type Extractor struct {
	vknPattern     *regexp.Regexp
	tcknPattern    *regexp.Regexp
	docNoPatterns  []*regexp.Regexp
	standaloneID   *regexp.Regexp
	nonNameLine    *regexp.Regexp
	datePatterns   []datePattern
	amountPatterns []*regexp.Regexp
	taxRateAmount  *regexp.Regexp
	percentMarker  *regexp.Regexp
}

// Confidence weights per extracted field. The sum over found fields is
// reported as a 0-100 percentage.
var fieldWeights = map[string]float64{
	"vendor_name": 0.15,
	"vkn":         0.15,
	"tckn":        0.10,
	"doc_date":    0.15,
	"total_gross": 0.25,
	"total_tax":   0.15,
	"doc_no":      0.05,
}

// Keywords marking the line that carries the grand total. Payment-method
// words are included because receipts often print the total next to them.
var totalKeywords = []string{
	"toplam", "genel toplam", "ödenecek tutar", "tutar",
	"net tutar", "brüt tutar", "total", "grand total",
	"yekun", "ödenen", "nakit", "kredi kartı",
}

var taxKeywords = []string{
	"kdv", "k.d.v", "vergi", "tax", "kdv toplam",
	"kdv tutarı", "%8", "%10", "%18", "%20",
}

var addressTokens = []string{"sok.", "cad.", "mah.", "no:", "apt"}

func NewExtractor() *Extractor {
	return &Extractor{
		vknPattern:   regexp.MustCompile(`(?:VKN|V\.K\.N|VERG[İI]\s*(?:K[İI]ML[İI]K)?\s*(?:NO|NUMARASI)?)[:\s]*(\d{10,11})`),
		tcknPattern:  regexp.MustCompile(`(?:TCKN|T\.C\.?(?:\s*K[İI]ML[İI]K)?\s*(?:NO|NUMARASI)?)[:\s]*(\d{11})`),
		standaloneID: regexp.MustCompile(`\b(\d{10,11})\b`),
		docNoPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?:F[İI]Ş|BELGE|FATURA)\s*(?:NO|NUMARASI?)[:\s]*([A-Z0-9\-]+)`),
			regexp.MustCompile(`(?:NO|NUMARA)[:\s]*([A-Z0-9\-]+)`),
		},
		nonNameLine:  regexp.MustCompile(`^[\d\s\-\./]+$`),
		datePatterns: buildDatePatterns(),
		amountPatterns: []*regexp.Regexp{
			// *1.234,56 with the asterisk prefix common on register receipts
			regexp.MustCompile(`\*?\s*(\d{1,3}(?:\.\d{3})*(?:,\d{2}))`),
			regexp.MustCompile(`(?i)(\d{1,3}(?:\.\d{3})*(?:,\d{2}))\s*(?:TL|TRY|₺)`),
			regexp.MustCompile(`(\d{1,3}(?:\.\d{3})*,\d{2})`),
		},
		taxRateAmount: regexp.MustCompile(`%\s*\d+\s*[:\s]*(\d{1,3}(?:\.\d{3})*,\d{2})`),
		percentMarker: regexp.MustCompile(`%\s*\d+`),
	}
}

// Extract recovers structured fields from OCR text. Empty or unparsable
// input yields a Record with all optional fields absent and confidence 0.
func (e *Extractor) Extract(rawText string) Record {
	rec := Record{Currency: "TRY", Details: map[string]string{}}
	if strings.TrimSpace(rawText) == "" {
		return rec
	}

	upper := strings.ToUpper(rawText)
	lines := strings.Split(rawText, "\n")

	var found []string

	if name := e.extractVendorName(lines); name != "" {
		rec.VendorName = &name
		rec.Details["vendor_name_source"] = "header"
		found = append(found, "vendor_name")
	}
	if vkn := e.extractVKN(rawText, upper); vkn != "" {
		rec.VKN = &vkn
		found = append(found, "vkn")
	}
	if tckn := e.extractTCKN(upper); tckn != "" {
		rec.TCKN = &tckn
		found = append(found, "tckn")
	}
	if d, ok := e.extractDate(rawText); ok {
		rec.DocDate = &d
		found = append(found, "doc_date")
	}
	if gross, ok := e.extractTotal(rawText, lines); ok {
		rec.TotalGross = &gross
		found = append(found, "total_gross")
	}
	if tax, ok := e.extractTax(lines); ok {
		rec.TotalTax = &tax
		found = append(found, "total_tax")
	}
	if docNo := e.extractDocNo(upper); docNo != "" {
		rec.DocNo = &docNo
		found = append(found, "doc_no")
	}

	// Net is derived, never estimated: only when both gross and tax exist.
	if rec.TotalGross != nil && rec.TotalTax != nil {
		net := rec.TotalGross.Sub(*rec.TotalTax)
		rec.TotalNet = &net
	}

	var confidence float64
	for _, f := range found {
		confidence += fieldWeights[f]
	}
	rec.Confidence = math.Round(confidence*1000) / 10

	return rec
}

// extractVendorName scans the first five non-empty lines for the merchant
// header, skipping numeric/date-like lines, very short lines and lines that
// look like street addresses.
func (e *Extractor) extractVendorName(lines []string) string {
	seen := 0
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		seen++
		if seen > 5 {
			break
		}
		if e.nonNameLine.MatchString(line) {
			continue
		}
		if len([]rune(line)) < 3 {
			continue
		}
		lower := strings.ToLower(line)
		addressLike := false
		for _, tok := range addressTokens {
			if strings.Contains(lower, tok) {
				addressLike = true
				break
			}
		}
		if addressLike {
			continue
		}
		return line
	}
	return ""
}

func (e *Extractor) extractVKN(rawText, upper string) string {
	if m := e.vknPattern.FindStringSubmatch(upper); m != nil {
		if n := len(m[1]); n == 10 || n == 11 {
			return m[1]
		}
	}

	// OCR frequently detaches the number from its label; look for a
	// standalone 10-11 digit number in a short window after tax keywords.
	// Index and slice the same folded copy: lowercasing İ changes byte
	// offsets, so positions in it do not map back into rawText.
	lower := strings.ToLower(rawText)
	for _, word := range []string{"vergi", "vkn", "dairesi"} {
		idx := strings.Index(lower, word)
		if idx < 0 {
			continue
		}
		end := idx + 50
		if end > len(lower) {
			end = len(lower)
		}
		if m := e.standaloneID.FindStringSubmatch(lower[idx:end]); m != nil {
			return m[1]
		}
	}
	return ""
}

func (e *Extractor) extractTCKN(upper string) string {
	if m := e.tcknPattern.FindStringSubmatch(upper); m != nil && len(m[1]) == 11 {
		return m[1]
	}
	return ""
}

func (e *Extractor) extractDocNo(upper string) string {
	for _, p := range e.docNoPatterns {
		if m := p.FindStringSubmatch(upper); m != nil {
			return m[1]
		}
	}
	return ""
}
