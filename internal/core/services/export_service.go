package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/asientoflow/asientoflow/internal/core/domain"
	portsrepo "github.com/asientoflow/asientoflow/internal/core/ports/repositories"
	portssvc "github.com/asientoflow/asientoflow/internal/core/ports/services"
	"github.com/asientoflow/asientoflow/internal/dto"
)

// utf8BOM makes spreadsheet programs detect the encoding of exported CSV.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

const exportPageSize = 200

// exportService renders entry listings to files. CSV is assembled locally;
// the binary spreadsheet is rendered by the ledger authority and streamed
// through.
type exportService struct {
	ledger portsrepo.LedgerRemote
}

// NewExportService creates the export service.
func NewExportService(ledger portsrepo.LedgerRemote) portssvc.ExportSvc {
	return &exportService{ledger: ledger}
}

var _ portssvc.ExportSvc = (*exportService)(nil)

func filtersFromParams(companyID string, params dto.ListEntriesParams) domain.EntryFilters {
	return domain.EntryFilters{
		CompanyID: companyID,
		PeriodID:  params.PeriodID,
		DateFrom:  params.DateFrom,
		DateTo:    params.DateTo,
		Status:    params.Status,
		Limit:     params.Limit,
		NextToken: params.NextToken,
	}
}

// ExportCSV pages through the listing and writes one row per entry.
func (e *exportService) ExportCSV(ctx context.Context, companyID string, params dto.ListEntriesParams) ([]byte, string, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"Voucher", "Date", "Memo", "Currency", "TotalDebit", "TotalCredit", "Status"}); err != nil {
		return nil, "", fmt.Errorf("writing csv header: %w", err)
	}

	filters := filtersFromParams(companyID, params)
	filters.Limit = exportPageSize
	filters.NextToken = nil

	for {
		entries, next, err := e.ledger.ListEntries(ctx, filters)
		if err != nil {
			return nil, "", err
		}
		for i := range entries {
			entry := &entries[i]
			row := []string{
				entry.Voucher,
				entry.EntryDate.Format("2006-01-02"),
				entry.Memo,
				entry.CurrencyCode,
				entry.TotalDebit.StringFixed(2),
				entry.TotalCredit.StringFixed(2),
				string(entry.Status),
			}
			if err := w.Write(row); err != nil {
				return nil, "", fmt.Errorf("writing csv row: %w", err)
			}
		}
		if next == nil || *next == "" {
			break
		}
		filters.NextToken = next
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, "", fmt.Errorf("flushing csv: %w", err)
	}

	filename := fmt.Sprintf("entries_%s_%s.csv", companyID, time.Now().Format("20060102"))
	return buf.Bytes(), filename, nil
}

// ExportSpreadsheet streams the authority-rendered binary format through.
func (e *exportService) ExportSpreadsheet(ctx context.Context, companyID string, params dto.ListEntriesParams) (io.ReadCloser, string, string, error) {
	return e.ledger.ExportSpreadsheet(ctx, filtersFromParams(companyID, params))
}
