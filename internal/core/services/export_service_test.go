package services_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/asientoflow/asientoflow/internal/core/domain"
	"github.com/asientoflow/asientoflow/internal/core/services"
	"github.com/asientoflow/asientoflow/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ExportServiceTestSuite struct {
	suite.Suite
	mockLedger *MockLedgerRemote
	container  *services.Container
	ctx        context.Context
}

func (suite *ExportServiceTestSuite) SetupTest() {
	suite.mockLedger = new(MockLedgerRemote)
	suite.container = services.NewContainer(suite.mockLedger, newStubDraftStore(), nil, services.ContainerConfig{
		ValidationDebounce:    time.Millisecond,
		DraftAutosaveInterval: time.Hour,
		DraftMaxAge:           7 * 24 * time.Hour,
	})
	suite.ctx = ctxWithRole("u1", domain.RoleAccountant)
}

func summaryEntry(voucher, memo string) domain.JournalEntry {
	return domain.JournalEntry{
		EntryID:      "id-" + voucher,
		CompanyID:    "c1",
		Voucher:      voucher,
		EntryDate:    time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		Memo:         memo,
		CurrencyCode: "PEN",
		Status:       domain.StatusPosted,
		TotalDebit:   decimal.RequireFromString("118.00"),
		TotalCredit:  decimal.RequireFromString("118.00"),
	}
}

func (suite *ExportServiceTestSuite) TestExportCSV_BOMHeaderAndRows() {
	entries := []domain.JournalEntry{
		summaryEntry("0001", "compra de mercadería"),
		summaryEntry("0002", "venta, con coma"),
	}
	suite.mockLedger.On("ListEntries", mock.Anything, mock.Anything).Return(entries, nil, nil).Once()

	data, filename, err := suite.container.Export.ExportCSV(suite.ctx, "c1", dto.ListEntriesParams{})
	suite.Require().NoError(err)

	suite.True(bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}), "starts with the UTF-8 byte-order mark")
	suite.True(strings.HasSuffix(filename, ".csv"))

	records, err := csv.NewReader(bytes.NewReader(data[3:])).ReadAll()
	suite.Require().NoError(err)
	suite.Require().Len(records, 3)
	suite.Equal([]string{"Voucher", "Date", "Memo", "Currency", "TotalDebit", "TotalCredit", "Status"}, records[0])
	suite.Equal([]string{"0001", "2026-01-15", "compra de mercadería", "PEN", "118.00", "118.00", "POSTED"}, records[1])
	suite.Equal("venta, con coma", records[2][2], "embedded commas survive quoting")
}

func (suite *ExportServiceTestSuite) TestExportCSV_PagesThroughListing() {
	first := []domain.JournalEntry{summaryEntry("0001", "a")}
	second := []domain.JournalEntry{summaryEntry("0002", "b")}

	suite.mockLedger.On("ListEntries", mock.Anything, mock.MatchedBy(func(f domain.EntryFilters) bool {
		return f.NextToken == nil
	})).Return(first, "page-2", nil).Once()
	suite.mockLedger.On("ListEntries", mock.Anything, mock.MatchedBy(func(f domain.EntryFilters) bool {
		return f.NextToken != nil && *f.NextToken == "page-2"
	})).Return(second, nil, nil).Once()

	data, _, err := suite.container.Export.ExportCSV(suite.ctx, "c1", dto.ListEntriesParams{})
	suite.Require().NoError(err)

	records, err := csv.NewReader(bytes.NewReader(data[3:])).ReadAll()
	suite.Require().NoError(err)
	suite.Len(records, 3, "header plus one row per page")
	suite.mockLedger.AssertExpectations(suite.T())
}

func (suite *ExportServiceTestSuite) TestExportSpreadsheet_Passthrough() {
	content := io.NopCloser(strings.NewReader("binary-bytes"))
	suite.mockLedger.On("ExportSpreadsheet", mock.Anything, mock.MatchedBy(func(f domain.EntryFilters) bool {
		return f.CompanyID == "c1"
	})).Return(content, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "entries.xlsx", nil).Once()

	stream, contentType, filename, err := suite.container.Export.ExportSpreadsheet(suite.ctx, "c1", dto.ListEntriesParams{})
	suite.Require().NoError(err)
	defer stream.Close()

	body, err := io.ReadAll(stream)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "binary-bytes", string(body))
	assert.Contains(suite.T(), contentType, "spreadsheet")
	assert.Equal(suite.T(), "entries.xlsx", filename)
}

func TestExportServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ExportServiceTestSuite))
}
