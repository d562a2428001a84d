package extraction

import (
	"strings"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestExtraction(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Extraction Suite")
}

var _ = Describe("Extractor", func() {
	var extractor *Extractor

	BeforeEach(func() {
		extractor = NewExtractor()
	})

	Describe("Extract", func() {
		When("given a complete register receipt", func() {
			var rec Record

			BeforeEach(func() {
				rec = extractor.Extract("MİGROS TİCARET A.Ş.\n" +
					"Tarih: 15.01.2026\n" +
					"FİŞ NO: A1234\n" +
					"VKN: 1234567890\n" +
					"TOPLAM *1.234,56\n" +
					"KDV %18 188,32\n")
			})

			It("takes the vendor name from the header line", func() {
				Expect(rec.VendorName).NotTo(BeNil())
				Expect(*rec.VendorName).To(Equal("MİGROS TİCARET A.Ş."))
			})

			It("extracts the tax identification number", func() {
				Expect(rec.VKN).NotTo(BeNil())
				Expect(*rec.VKN).To(Equal("1234567890"))
			})

			It("parses the document date as day.month.year", func() {
				Expect(rec.DocDate).NotTo(BeNil())
				Expect(*rec.DocDate).To(Equal(time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)))
			})

			It("parses the asterisk-prefixed total", func() {
				Expect(rec.TotalGross).NotTo(BeNil())
				Expect(rec.TotalGross.StringFixed(2)).To(Equal("1234.56"))
			})

			It("takes the tax amount after the rate marker", func() {
				Expect(rec.TotalTax).NotTo(BeNil())
				Expect(rec.TotalTax.StringFixed(2)).To(Equal("188.32"))
			})

			It("derives net as gross minus tax", func() {
				Expect(rec.TotalNet).NotTo(BeNil())
				Expect(rec.TotalNet.StringFixed(2)).To(Equal("1046.24"))
			})

			It("extracts the document number", func() {
				Expect(rec.DocNo).NotTo(BeNil())
				Expect(*rec.DocNo).To(Equal("A1234"))
			})

			It("sums the field weights into a 0-100 confidence", func() {
				Expect(rec.Confidence).To(BeNumerically("==", 90.0))
			})

			It("defaults the currency to TRY", func() {
				Expect(rec.Currency).To(Equal("TRY"))
			})
		})

		When("the input is empty", func() {
			It("returns an empty record with zero confidence", func() {
				rec := extractor.Extract("   \n \n")
				Expect(rec.VendorName).To(BeNil())
				Expect(rec.TotalGross).To(BeNil())
				Expect(rec.DocDate).To(BeNil())
				Expect(rec.Confidence).To(BeZero())
				Expect(rec.Currency).To(Equal("TRY"))
			})
		})

		When("no total keyword appears", func() {
			It("falls back to the largest amount in the text", func() {
				rec := extractor.Extract("ABC\n45,00\n120,50\n12,00\n")
				Expect(rec.TotalGross).NotTo(BeNil())
				Expect(rec.TotalGross.StringFixed(2)).To(Equal("120.50"))
			})
		})

		When("the VKN is detached from its label", func() {
			It("finds a standalone number near a tax keyword", func() {
				rec := extractor.Extract("Firma\nVergi Dairesi: Kadikoy 1234567890\n")
				Expect(rec.VKN).NotTo(BeNil())
				Expect(*rec.VKN).To(Equal("1234567890"))
			})

			It("is not thrown off by dotted capitals before the keyword", func() {
				// İ grows by a byte when lowercased; enough of them used to
				// push the search window past the number.
				header := strings.Repeat("İ", 20)
				rec := extractor.Extract(header + "\nVergi Dairesi 1234567890\n")
				Expect(rec.VKN).NotTo(BeNil())
				Expect(*rec.VKN).To(Equal("1234567890"))
			})
		})

		When("the date is written with a Turkish month name", func() {
			It("parses it", func() {
				rec := extractor.Extract("Firma\n12 Şubat 2026\n")
				Expect(rec.DocDate).NotTo(BeNil())
				Expect(*rec.DocDate).To(Equal(time.Date(2026, 2, 12, 0, 0, 0, 0, time.UTC)))
			})
		})

		When("a matched date is not a real calendar day", func() {
			It("rejects it instead of normalizing", func() {
				rec := extractor.Extract("Firma\nTarih: 31.02.2026\n")
				Expect(rec.DocDate).To(BeNil())
			})
		})

		When("the header lines look like an address", func() {
			It("skips them when picking the vendor name", func() {
				rec := extractor.Extract("12.01.2026\nAtatürk Cad. No:12\nLezzet Lokantası\n")
				Expect(rec.VendorName).NotTo(BeNil())
				Expect(*rec.VendorName).To(Equal("Lezzet Lokantası"))
			})
		})
	})

	Describe("ParseAmount", func() {
		It("parses dot-thousands comma-decimal amounts", func() {
			amount, ok := ParseAmount("1.234,56")
			Expect(ok).To(BeTrue())
			Expect(amount.StringFixed(2)).To(Equal("1234.56"))
		})

		It("strips currency markers and whitespace", func() {
			amount, ok := ParseAmount(" 12,50 TL ")
			Expect(ok).To(BeTrue())
			Expect(amount.StringFixed(2)).To(Equal("12.50"))
		})

		It("rejects malformed input", func() {
			_, ok := ParseAmount("abc")
			Expect(ok).To(BeFalse())
		})
	})
})
