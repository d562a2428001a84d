package vendormatch

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/google/uuid"

	"muhasebe-backend/internal/models"
)

func TestVendormatch(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Vendormatch Suite")
}

// mockCatalog is an in-memory Catalog for one user.
type mockCatalog struct {
	vendors   map[uuid.UUID]*models.Vendor
	createErr error
	created   []*models.Vendor
	aliases   []*models.VendorAlias
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{vendors: make(map[uuid.UUID]*models.Vendor)}
}

func (m *mockCatalog) add(vendor *models.Vendor) *models.Vendor {
	if vendor.ID == uuid.Nil {
		vendor.ID = uuid.New()
	}
	m.vendors[vendor.ID] = vendor
	return vendor
}

func (m *mockCatalog) FindByVKN(_ uuid.UUID, vkn string) (*models.Vendor, error) {
	for _, v := range m.vendors {
		if v.VKN != nil && *v.VKN == vkn {
			return v, nil
		}
	}
	return nil, nil
}

func (m *mockCatalog) FindByTCKN(_ uuid.UUID, tckn string) (*models.Vendor, error) {
	for _, v := range m.vendors {
		if v.TCKN != nil && *v.TCKN == tckn {
			return v, nil
		}
	}
	return nil, nil
}

func (m *mockCatalog) FindByNormalizedName(_ uuid.UUID, name string) (*models.Vendor, error) {
	for _, v := range m.vendors {
		if v.NormalizedName == name {
			return v, nil
		}
	}
	return nil, nil
}

func (m *mockCatalog) FindByAlias(_ uuid.UUID, normalized string) (*models.Vendor, error) {
	for _, v := range m.vendors {
		for _, a := range v.Aliases {
			if a.NormalizedAlias == normalized {
				return v, nil
			}
		}
	}
	return nil, nil
}

func (m *mockCatalog) ListAll(_ uuid.UUID) ([]models.Vendor, error) {
	out := make([]models.Vendor, 0, len(m.vendors))
	for _, v := range m.vendors {
		out = append(out, *v)
	}
	return out, nil
}

func (m *mockCatalog) GetByID(id uuid.UUID) (*models.Vendor, error) {
	return m.vendors[id], nil
}

func (m *mockCatalog) Create(vendor *models.Vendor) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, v := range m.vendors {
		if v.NormalizedName == vendor.NormalizedName {
			return ErrDuplicateName
		}
	}
	m.add(vendor)
	m.created = append(m.created, vendor)
	return nil
}

func (m *mockCatalog) AddAlias(alias *models.VendorAlias) error {
	m.aliases = append(m.aliases, alias)
	if v, ok := m.vendors[alias.VendorID]; ok {
		v.Aliases = append(v.Aliases, *alias)
	}
	return nil
}

var _ = Describe("NormalizeName", func() {
	It("lowercases, strips corporate suffixes and punctuation", func() {
		Expect(NormalizeName("Migros Tic. Ltd. Şti.")).To(Equal("migros"))
	})

	It("folds the Turkish dotted capital I", func() {
		Expect(NormalizeName("MİGROS")).To(Equal("migros"))
	})

	It("is idempotent", func() {
		once := NormalizeName("Anadolu A.Ş.")
		Expect(once).To(Equal("anadolu"))
		Expect(NormalizeName(once)).To(Equal(once))
	})

	It("collapses internal whitespace", func() {
		Expect(NormalizeName("  Kahve   Durağı ")).To(Equal("kahve durağı"))
	})

	It("strips suffix tokens without requiring word boundaries", func() {
		// "san" is removed from inside "Sanal"; both spellings of the same
		// vendor must land on the same canonical form.
		Expect(NormalizeName("Migros Sanal")).To(Equal("migrosal"))
		Expect(NormalizeName("MİGROS SAN.")).To(Equal("migros"))
	})

	It("returns empty for empty input", func() {
		Expect(NormalizeName("")).To(Equal(""))
	})
})

var _ = Describe("Similarity", func() {
	It("returns 1.0 only for identical strings", func() {
		Expect(Similarity("migros", "migros")).To(Equal(1.0))
	})

	It("scores one-letter OCR noise above the fuzzy threshold", func() {
		Expect(Similarity("migroz", "migros")).To(BeNumerically("~", 10.0/12.0, 1e-9))
	})

	It("returns 0 when either side is empty", func() {
		Expect(Similarity("", "migros")).To(BeZero())
		Expect(Similarity("migros", "")).To(BeZero())
	})

	It("is symmetric", func() {
		Expect(Similarity("kahve dunyasi", "kahve")).To(Equal(Similarity("kahve", "kahve dunyasi")))
	})
})

var _ = Describe("Matcher", func() {
	var (
		catalog *mockCatalog
		matcher *Matcher
		userID  uuid.UUID
	)

	BeforeEach(func() {
		catalog = newMockCatalog()
		matcher = NewMatcher(catalog)
		userID = uuid.New()
	})

	Describe("Resolve", func() {
		It("prefers a VKN hit over any name match", func() {
			vkn := "1234567890"
			byTax := catalog.add(&models.Vendor{DisplayName: "Migros", NormalizedName: "migros", VKN: &vkn})
			catalog.add(&models.Vendor{DisplayName: "Lezzet", NormalizedName: "lezzet"})

			match, err := matcher.Resolve(userID, "Lezzet", vkn, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(match.Kind).To(Equal(MatchTaxID))
			Expect(*match.VendorID).To(Equal(byTax.ID))
			Expect(match.Similarity).To(Equal(1.0))
			Expect(match.IsNew).To(BeFalse())
		})

		It("matches an exact normalized name at 0.95", func() {
			vendor := catalog.add(&models.Vendor{DisplayName: "Migros", NormalizedName: "migros"})

			match, err := matcher.Resolve(userID, "MİGROS TİC. LTD. ŞTİ.", "", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(match.Kind).To(Equal(MatchExactName))
			Expect(*match.VendorID).To(Equal(vendor.ID))
			Expect(match.Similarity).To(Equal(0.95))
		})

		It("matches a learned alias at 0.90", func() {
			vendor := catalog.add(&models.Vendor{DisplayName: "Migros", NormalizedName: "migros"})
			vendor.Aliases = []models.VendorAlias{{
				VendorID:        vendor.ID,
				Alias:           "MİGROS SANAL",
				NormalizedAlias: NormalizeName("MİGROS SANAL"),
			}}

			match, err := matcher.Resolve(userID, "Migros Sanal", "", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(match.Kind).To(Equal(MatchAlias))
			Expect(*match.VendorID).To(Equal(vendor.ID))
			Expect(match.Similarity).To(Equal(0.90))
		})

		It("falls back to fuzzy matching above the threshold", func() {
			vendor := catalog.add(&models.Vendor{DisplayName: "Migros", NormalizedName: "migros"})

			match, err := matcher.Resolve(userID, "MİGROZ", "", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(match.Kind).To(Equal(MatchFuzzy))
			Expect(*match.VendorID).To(Equal(vendor.ID))
			Expect(match.Similarity).To(Equal(0.83))
		})

		It("reports a new vendor below the threshold", func() {
			catalog.add(&models.Vendor{DisplayName: "Migros", NormalizedName: "migros"})

			match, err := matcher.Resolve(userID, "Starbucks", "", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(match.Kind).To(Equal(MatchNone))
			Expect(match.VendorID).To(BeNil())
			Expect(match.IsNew).To(BeTrue())
		})

		It("skips name tiers entirely without a name guess", func() {
			catalog.add(&models.Vendor{DisplayName: "Migros", NormalizedName: "migros"})

			match, err := matcher.Resolve(userID, "", "9999999999", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(match.Kind).To(Equal(MatchNone))
			Expect(match.IsNew).To(BeTrue())
		})
	})

	Describe("GetOrCreate", func() {
		It("creates a vendor when nothing matches", func() {
			vendor, err := matcher.GetOrCreate(userID, "Starbucks Coffee", "", "", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(vendor.NormalizedName).To(Equal("starbucks coffee"))
			Expect(catalog.created).To(HaveLen(1))
		})

		It("learns the observed spelling as an alias on a fuzzy match", func() {
			catalog.add(&models.Vendor{DisplayName: "Migros", NormalizedName: "migros"})

			vendor, err := matcher.GetOrCreate(userID, "MİGROZ", "", "", "MİGROZ")
			Expect(err).NotTo(HaveOccurred())
			Expect(vendor.NormalizedName).To(Equal("migros"))
			Expect(catalog.aliases).To(HaveLen(1))
			Expect(catalog.aliases[0].NormalizedAlias).To(Equal("migroz"))
		})

		It("does not learn an alias equal to the normalized name", func() {
			catalog.add(&models.Vendor{DisplayName: "Migros", NormalizedName: "migros"})

			_, err := matcher.GetOrCreate(userID, "Migros A.Ş.", "", "", "Migros A.Ş.")
			Expect(err).NotTo(HaveOccurred())
			Expect(catalog.aliases).To(BeEmpty())
		})

		It("returns the existing vendor without creating a duplicate", func() {
			existing := catalog.add(&models.Vendor{DisplayName: "Migros", NormalizedName: "migros"})

			vendor, err := matcher.GetOrCreate(userID, "migros", "", "", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(vendor.ID).To(Equal(existing.ID))
			Expect(catalog.created).To(BeEmpty())
		})
	})
})
