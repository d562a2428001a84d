package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"muhasebe-backend/internal/models"
	"muhasebe-backend/internal/repository"
)

type Service struct {
	ledger *repository.LedgerRepository
}

func NewService(ledger *repository.LedgerRepository) *Service {
	return &Service{ledger: ledger}
}

type Summary struct {
	PeriodStart  time.Time       `json:"period_start"`
	PeriodEnd    time.Time       `json:"period_end"`
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	Net          decimal.Decimal `json:"net"`
	TaxTotal     decimal.Decimal `json:"tax_total"`
	EntryCount   int64           `json:"transaction_count"`
}

// periodRange resolves a named period to concrete bounds. Custom periods
// fall back to the last 30 days when bounds are missing.
func periodRange(period string, start, end *time.Time) (time.Time, time.Time) {
	now := time.Now()
	switch period {
	case "week":
		return now.AddDate(0, 0, -7), now
	case "year":
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()), now
	case "custom":
		from := now.AddDate(0, 0, -30)
		to := now
		if start != nil {
			from = *start
		}
		if end != nil {
			to = *end
		}
		return from, to
	default: // month
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), now
	}
}

func (s *Service) Summary(userID uuid.UUID, period string, start, end *time.Time) (Summary, error) {
	from, to := periodRange(period, start, end)
	totals, err := s.ledger.TotalsForPeriod(userID, from, to)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		PeriodStart:  from,
		PeriodEnd:    to,
		TotalIncome:  totals.Income,
		TotalExpense: totals.Expense,
		Net:          totals.Income.Sub(totals.Expense),
		TaxTotal:     totals.Tax,
		EntryCount:   totals.Count,
	}, nil
}

func (s *Service) ByVendor(userID uuid.UUID, period string) ([]repository.VendorTotal, error) {
	from, _ := periodRange(period, nil, nil)
	return s.ledger.ExpenseByVendor(userID, from, 10)
}

func directionLabel(direction string) string {
	if direction == models.EntryDirectionIncome {
		return "Gelir"
	}
	return "Gider"
}

func taxOrZero(entry models.LedgerEntry) string {
	if entry.TaxAmount != nil {
		return entry.TaxAmount.StringFixed(2)
	}
	return "0.00"
}

func notesOrEmpty(entry models.LedgerEntry) string {
	if entry.Notes != nil {
		return *entry.Notes
	}
	return ""
}

// ExportCSV renders the user's ledger entries for the given range.
func (s *Service) ExportCSV(userID uuid.UUID, from, to *time.Time) ([]byte, error) {
	entries, err := s.ledger.List(userID, from, to, 10000, 0)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"Tarih", "Yön", "Tutar", "KDV", "Para Birimi", "Not"}); err != nil {
		return nil, err
	}
	for _, entry := range entries {
		record := []string{
			entry.EntryDate.Format("2006-01-02"),
			directionLabel(entry.Direction),
			entry.Amount.StringFixed(2),
			taxOrZero(entry),
			entry.Currency,
			notesOrEmpty(entry),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportXLSX renders the same ledger rows as a spreadsheet.
func (s *Service) ExportXLSX(userID uuid.UUID, from, to *time.Time) ([]byte, error) {
	entries, err := s.ledger.List(userID, from, to, 10000, 0)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Defter"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Tarih", "Yön", "Tutar", "KDV", "Para Birimi", "Not"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}

	for row, entry := range entries {
		amount, _ := entry.Amount.Float64()
		values := []any{
			entry.EntryDate.Format("2006-01-02"),
			directionLabel(entry.Direction),
			amount,
			taxOrZero(entry),
			entry.Currency,
			notesOrEmpty(entry),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write spreadsheet: %w", err)
	}
	return buf.Bytes(), nil
}
