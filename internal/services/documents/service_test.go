package documents

import (
	"errors"
	"io"
	"log"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"muhasebe-backend/internal/common"
	"muhasebe-backend/internal/extraction"
	"muhasebe-backend/internal/models"
	"muhasebe-backend/internal/ocr"
	"muhasebe-backend/internal/services/vendormatch"
)

func TestDocuments(t *testing.T) {
	// Silence audit failure logging during tests
	log.SetOutput(io.Discard)

	RegisterFailHandler(Fail)
	RunSpecs(t, "Documents Suite")
}

// mockStore keeps documents and ledger entries in memory. Reads hand out
// copies so callers mutate nothing until an explicit save, like a real
// database.
type mockStore struct {
	documents map[uuid.UUID]models.Document
	entries   map[uuid.UUID]models.LedgerEntry // keyed by document ID
	audits    []models.AuditLog
	postErr   error
}

func newMockStore() *mockStore {
	return &mockStore{
		documents: make(map[uuid.UUID]models.Document),
		entries:   make(map[uuid.UUID]models.LedgerEntry),
	}
}

func (m *mockStore) CreateDocument(doc *models.Document) error {
	m.documents[doc.ID] = *doc
	return nil
}

func (m *mockStore) GetDocument(id uuid.UUID) (*models.Document, error) {
	doc, ok := m.documents[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	copied := doc
	return &copied, nil
}

func (m *mockStore) SaveDocument(doc *models.Document) error {
	m.documents[doc.ID] = *doc
	return nil
}

func (m *mockStore) HasLedgerEntry(docID uuid.UUID) (bool, error) {
	_, ok := m.entries[docID]
	return ok, nil
}

func (m *mockStore) PostWithLedger(doc *models.Document, entry *models.LedgerEntry) error {
	if m.postErr != nil {
		return m.postErr
	}
	if _, ok := m.entries[*entry.DocumentID]; ok {
		return common.ErrDuplicateEntry
	}
	m.documents[doc.ID] = *doc
	m.entries[*entry.DocumentID] = *entry
	return nil
}

func (m *mockStore) CreateAudit(entry *models.AuditLog) error {
	m.audits = append(m.audits, *entry)
	return nil
}

// mockOCR returns canned text for the pipeline tests.
type mockOCR struct {
	result *ocr.Result
	err    error
}

func (m *mockOCR) ExtractText(string) (*ocr.Result, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

// emptyCatalog resolves nothing, so every vendor is new.
type emptyCatalog struct{}

func (emptyCatalog) FindByVKN(uuid.UUID, string) (*models.Vendor, error)            { return nil, nil }
func (emptyCatalog) FindByTCKN(uuid.UUID, string) (*models.Vendor, error)           { return nil, nil }
func (emptyCatalog) FindByNormalizedName(uuid.UUID, string) (*models.Vendor, error) { return nil, nil }
func (emptyCatalog) FindByAlias(uuid.UUID, string) (*models.Vendor, error)          { return nil, nil }
func (emptyCatalog) ListAll(uuid.UUID) ([]models.Vendor, error)                     { return nil, nil }
func (emptyCatalog) GetByID(uuid.UUID) (*models.Vendor, error)                      { return nil, nil }
func (emptyCatalog) Create(*models.Vendor) error                                    { return nil }
func (emptyCatalog) AddAlias(*models.VendorAlias) error                             { return nil }

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

var _ = Describe("Service", func() {
	var (
		store   *mockStore
		engine  *mockOCR
		service *Service
		userID  uuid.UUID
	)

	BeforeEach(func() {
		store = newMockStore()
		engine = &mockOCR{result: &ocr.Result{Text: "", Confidence: 0}}
		service = NewService(store, extraction.NewExtractor(), vendormatch.NewMatcher(emptyCatalog{}), engine)
		userID = uuid.New()
	})

	draftDocument := func(gross, tax *decimal.Decimal) *models.Document {
		doc := &models.Document{
			ID:         uuid.New(),
			UserID:     userID,
			Status:     models.DocumentStatusDraft,
			DocType:    models.DocumentTypeReceipt,
			Currency:   "TRY",
			TotalGross: gross,
			TotalTax:   tax,
		}
		Expect(store.CreateDocument(doc)).To(Succeed())
		return doc
	}

	Describe("Confirm", func() {
		It("posts a draft and creates exactly one ledger entry", func() {
			doc := draftDocument(dec("100.00"), dec("18.00"))

			posted, err := service.Confirm(userID, doc.ID, Overrides{})
			Expect(err).NotTo(HaveOccurred())
			Expect(posted.Status).To(Equal(models.DocumentStatusPosted))

			entry, ok := store.entries[doc.ID]
			Expect(ok).To(BeTrue())
			Expect(entry.Amount.StringFixed(2)).To(Equal("100.00"))
			Expect(entry.TaxAmount.StringFixed(2)).To(Equal("18.00"))
			Expect(entry.Direction).To(Equal(models.EntryDirectionExpense))
			Expect(entry.UserID).To(Equal(userID))
		})

		It("records an audit entry for the confirmation", func() {
			doc := draftDocument(dec("100.00"), nil)

			_, err := service.Confirm(userID, doc.ID, Overrides{})
			Expect(err).NotTo(HaveOccurred())
			Expect(store.audits).To(HaveLen(1))
			Expect(store.audits[0].Action).To(Equal("document.confirm"))
		})

		It("applies overrides before posting", func() {
			doc := draftDocument(dec("100.00"), dec("18.00"))
			direction := models.EntryDirectionIncome

			posted, err := service.Confirm(userID, doc.ID, Overrides{
				TotalGross: dec("250.00"),
				Direction:  &direction,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(posted.TotalGross.StringFixed(2)).To(Equal("250.00"))
			Expect(posted.TotalNet.StringFixed(2)).To(Equal("232.00"))

			entry := store.entries[doc.ID]
			Expect(entry.Amount.StringFixed(2)).To(Equal("250.00"))
			Expect(entry.Direction).To(Equal(models.EntryDirectionIncome))
		})

		It("rejects a document that is already posted", func() {
			doc := draftDocument(dec("100.00"), nil)
			_, err := service.Confirm(userID, doc.ID, Overrides{})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Confirm(userID, doc.ID, Overrides{})
			var stateErr *StateError
			Expect(errors.As(err, &stateErr)).To(BeTrue())
			Expect(stateErr.Current).To(Equal(models.DocumentStatusPosted))
			Expect(store.entries).To(HaveLen(1))
		})

		It("rejects a cancelled document", func() {
			doc := draftDocument(dec("100.00"), nil)
			_, err := service.Cancel(userID, doc.ID)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Confirm(userID, doc.ID, Overrides{})
			var stateErr *StateError
			Expect(errors.As(err, &stateErr)).To(BeTrue())
			Expect(store.entries).To(BeEmpty())
		})

		It("rejects a draft that somehow already has a ledger entry", func() {
			doc := draftDocument(dec("100.00"), nil)
			store.entries[doc.ID] = models.LedgerEntry{DocumentID: &doc.ID}

			_, err := service.Confirm(userID, doc.ID, Overrides{})
			Expect(err).To(MatchError(ErrLedgerExists))
			Expect(store.documents[doc.ID].Status).To(Equal(models.DocumentStatusDraft))
		})

		It("maps a duplicate insert during posting to ErrLedgerExists", func() {
			doc := draftDocument(dec("100.00"), nil)
			store.postErr = common.ErrDuplicateEntry

			_, err := service.Confirm(userID, doc.ID, Overrides{})
			Expect(err).To(MatchError(ErrLedgerExists))
			Expect(store.documents[doc.ID].Status).To(Equal(models.DocumentStatusDraft))
		})

		It("rejects a confirm without a gross amount", func() {
			doc := draftDocument(nil, nil)

			_, err := service.Confirm(userID, doc.ID, Overrides{})
			Expect(err).To(MatchError(ErrMissingAmount))
			Expect(store.documents[doc.ID].Status).To(Equal(models.DocumentStatusDraft))
		})

		It("accepts a gross amount supplied as an override", func() {
			doc := draftDocument(nil, nil)

			posted, err := service.Confirm(userID, doc.ID, Overrides{TotalGross: dec("42.00")})
			Expect(err).NotTo(HaveOccurred())
			Expect(posted.Status).To(Equal(models.DocumentStatusPosted))
		})

		It("hides other users' documents", func() {
			doc := draftDocument(dec("100.00"), nil)

			_, err := service.Confirm(uuid.New(), doc.ID, Overrides{})
			Expect(err).To(MatchError(common.ErrNotFound))
		})

		It("uses the document date as the entry date", func() {
			doc := draftDocument(dec("100.00"), nil)
			docDate := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

			_, err := service.Confirm(userID, doc.ID, Overrides{DocDate: &docDate})
			Expect(err).NotTo(HaveOccurred())
			Expect(store.entries[doc.ID].EntryDate).To(Equal(docDate))
		})
	})

	Describe("Cancel", func() {
		It("cancels a draft", func() {
			doc := draftDocument(dec("100.00"), nil)

			cancelled, err := service.Cancel(userID, doc.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(cancelled.Status).To(Equal(models.DocumentStatusCancelled))
		})

		It("rejects cancelling a posted document", func() {
			doc := draftDocument(dec("100.00"), nil)
			_, err := service.Confirm(userID, doc.ID, Overrides{})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Cancel(userID, doc.ID)
			var stateErr *StateError
			Expect(errors.As(err, &stateErr)).To(BeTrue())
			Expect(store.documents[doc.ID].Status).To(Equal(models.DocumentStatusPosted))
		})
	})

	Describe("Update", func() {
		It("applies overrides and recomputes net", func() {
			doc := draftDocument(dec("100.00"), dec("18.00"))

			updated, err := service.Update(userID, doc.ID, Overrides{TotalGross: dec("200.00")})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.TotalGross.StringFixed(2)).To(Equal("200.00"))
			Expect(updated.TotalNet.StringFixed(2)).To(Equal("182.00"))
		})

		It("clears net when tax is no longer known", func() {
			doc := draftDocument(dec("100.00"), nil)

			updated, err := service.Update(userID, doc.ID, Overrides{TotalGross: dec("200.00")})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.TotalNet).To(BeNil())
		})

		It("rejects updates to a posted document", func() {
			doc := draftDocument(dec("100.00"), nil)
			_, err := service.Confirm(userID, doc.ID, Overrides{})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Update(userID, doc.ID, Overrides{TotalGross: dec("1.00")})
			var stateErr *StateError
			Expect(errors.As(err, &stateErr)).To(BeTrue())
		})
	})

	Describe("ProcessImage", func() {
		It("turns OCR text into a reviewable draft", func() {
			engine.result = &ocr.Result{
				Text:       "Lezzet Lokantası\nTarih: 15.01.2026\nTOPLAM *120,50\n",
				Confidence: 88.5,
			}

			draft, err := service.ProcessImage(userID, "/tmp/receipt.jpg", "abc123")
			Expect(err).NotTo(HaveOccurred())
			Expect(draft.VendorName).NotTo(BeNil())
			Expect(*draft.VendorName).To(Equal("Lezzet Lokantası"))
			Expect(draft.IsNewVendor).To(BeTrue())
			Expect(draft.TotalGross.StringFixed(2)).To(Equal("120.50"))
			Expect(draft.OCRConfidence).To(Equal(88.5))

			doc := store.documents[draft.DocumentID]
			Expect(doc.Status).To(Equal(models.DocumentStatusDraft))
			Expect(doc.UserID).To(Equal(userID))
			Expect(*doc.ImageSHA256).To(Equal("abc123"))
		})

		It("propagates OCR failures", func() {
			engine.err = errors.New("tesseract exploded")

			_, err := service.ProcessImage(userID, "/tmp/receipt.jpg", "abc123")
			Expect(err).To(HaveOccurred())
			Expect(store.documents).To(BeEmpty())
		})
	})
})
