package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/asientoflow/asientoflow/internal/apperrors"
	"github.com/asientoflow/asientoflow/internal/core/domain"
	"github.com/asientoflow/asientoflow/internal/core/services"
	"github.com/asientoflow/asientoflow/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type SuggestionServiceTestSuite struct {
	suite.Suite
	mockLedger *MockLedgerRemote
	container  *services.Container
	ctx        context.Context
	companyID  string
	sessionID  string
}

func (suite *SuggestionServiceTestSuite) SetupTest() {
	suite.mockLedger = new(MockLedgerRemote)
	suite.container = services.NewContainer(suite.mockLedger, newStubDraftStore(), nil, services.ContainerConfig{
		ValidationDebounce:    5 * time.Millisecond,
		DraftAutosaveInterval: time.Hour,
		DraftMaxAge:           7 * 24 * time.Hour,
	})
	suite.ctx = ctxWithRole("u1", domain.RoleAccountant)
	suite.companyID = "c1"

	suite.mockLedger.On("Validate", mock.Anything, mock.Anything).Return(&domain.ValidationResult{}, nil).Maybe()

	resp, err := suite.container.Editor.OpenSession(suite.ctx, dto.OpenSessionRequest{
		Mode:      "create",
		CompanyID: suite.companyID,
		Period: &dto.PeriodRequest{
			PeriodID: "2026-01",
			Start:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			End:      time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
		},
	})
	suite.Require().NoError(err)
	suite.sessionID = resp.SessionID
}

func (suite *SuggestionServiceTestSuite) TearDownTest() {
	_ = suite.container.Editor.CloseSession(suite.ctx, suite.sessionID)
}

func (suite *SuggestionServiceTestSuite) purchaseTemplate() domain.Template {
	return domain.Template{
		TemplateID:  "tpl-purchase",
		Name:        "Compra con IGV",
		ExampleMemo: "compra de mercadería",
		Lines: []domain.TemplateLine{
			{AccountCode: "601", Side: domain.SideDebit, AutoCalc: domain.CalcBase},
			{AccountCode: "40.11", Side: domain.SideDebit, AutoCalc: domain.CalcIGV},
			{AccountCode: "42.12", Side: domain.SideCredit, AutoCalc: domain.CalcTotal},
		},
	}
}

func (suite *SuggestionServiceTestSuite) TestApplyTemplate_SplitsTaxInclusiveTotal() {
	suite.mockLedger.On("ListTemplates", mock.Anything, suite.companyID).
		Return([]domain.Template{suite.purchaseTemplate()}, nil).Once()

	resp, err := suite.container.Suggestion.ApplyTemplate(suite.ctx, suite.sessionID, dto.ApplyTemplateRequest{
		TemplateID: "tpl-purchase",
		Total:      decimal.RequireFromString("118.00"),
	})
	suite.Require().NoError(err)
	suite.Require().Len(resp.Entry.Lines, 3)

	suite.Equal("100.00", resp.Entry.Lines[0].Debit.StringFixed(2))
	suite.Equal("18.00", resp.Entry.Lines[1].Debit.StringFixed(2))
	suite.Equal("118.00", resp.Entry.Lines[2].Credit.StringFixed(2))
	suite.True(resp.Balanced)
	suite.True(resp.TemplateApplied)
	suite.Equal("compra de mercadería", resp.Entry.Memo)
}

func (suite *SuggestionServiceTestSuite) TestApplyTemplate_BasePlusTaxReproducesTotal() {
	suite.mockLedger.On("ListTemplates", mock.Anything, suite.companyID).
		Return([]domain.Template{suite.purchaseTemplate()}, nil).Once()

	// 100.33 does not divide evenly by 1.18; the tax line absorbs the
	// rounding remainder so the entry still balances.
	resp, err := suite.container.Suggestion.ApplyTemplate(suite.ctx, suite.sessionID, dto.ApplyTemplateRequest{
		TemplateID: "tpl-purchase",
		Total:      decimal.RequireFromString("100.33"),
	})
	suite.Require().NoError(err)

	base := resp.Entry.Lines[0].Debit
	tax := resp.Entry.Lines[1].Debit
	suite.Equal("100.33", base.Add(tax).StringFixed(2))
	suite.True(resp.Balanced)
}

func (suite *SuggestionServiceTestSuite) TestApplyTemplate_SkipsLinesWithoutAccount() {
	tpl := suite.purchaseTemplate()
	tpl.Lines = append(tpl.Lines, domain.TemplateLine{AccountCode: "", Side: domain.SideDebit})
	suite.mockLedger.On("ListTemplates", mock.Anything, suite.companyID).
		Return([]domain.Template{tpl}, nil).Once()

	resp, err := suite.container.Suggestion.ApplyTemplate(suite.ctx, suite.sessionID, dto.ApplyTemplateRequest{
		TemplateID: "tpl-purchase",
		Total:      decimal.RequireFromString("118.00"),
	})
	suite.Require().NoError(err)
	suite.Len(resp.Entry.Lines, 3)
}

func (suite *SuggestionServiceTestSuite) TestApplyTemplate_DropsDraftOffer() {
	store := newStubDraftStore()
	container := services.NewContainer(suite.mockLedger, store, nil, services.ContainerConfig{
		ValidationDebounce:    5 * time.Millisecond,
		DraftAutosaveInterval: time.Hour,
		DraftMaxAge:           7 * 24 * time.Hour,
	})
	store.SaveDraft(context.Background(), suite.companyID, domain.Draft{
		CompanyID: suite.companyID,
		Memo:      "in-progress work",
		SavedAt:   time.Now().Add(-time.Hour),
	})

	opened, err := container.Editor.OpenSession(suite.ctx, dto.OpenSessionRequest{
		Mode:      "create",
		CompanyID: suite.companyID,
		Period: &dto.PeriodRequest{
			PeriodID: "2026-01",
			Start:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			End:      time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
		},
	})
	suite.Require().NoError(err)
	defer container.Editor.CloseSession(suite.ctx, opened.SessionID)
	suite.Require().NotNil(opened.DraftOffer)

	suite.mockLedger.On("ListTemplates", mock.Anything, suite.companyID).
		Return([]domain.Template{suite.purchaseTemplate()}, nil).Once()

	resp, err := container.Suggestion.ApplyTemplate(suite.ctx, opened.SessionID, dto.ApplyTemplateRequest{
		TemplateID: "tpl-purchase",
		Total:      decimal.RequireFromString("118.00"),
	})
	suite.Require().NoError(err)
	suite.Nil(resp.DraftOffer, "choosing a template supersedes the recovery offer")
}

func (suite *SuggestionServiceTestSuite) TestApplyTemplate_UnknownTemplate() {
	suite.mockLedger.On("ListTemplates", mock.Anything, suite.companyID).
		Return([]domain.Template{}, nil).Once()

	_, err := suite.container.Suggestion.ApplyTemplate(suite.ctx, suite.sessionID, dto.ApplyTemplateRequest{
		TemplateID: "missing",
		Total:      decimal.RequireFromString("118.00"),
	})
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *SuggestionServiceTestSuite) TestSuggestLines_FailureDegradesToEmpty() {
	suite.mockLedger.On("SuggestEntry", mock.Anything, suite.companyID, "compra", (*decimal.Decimal)(nil)).
		Return(nil, errors.New("suggestion engine offline")).Once()

	resp, err := suite.container.Suggestion.SuggestLines(suite.ctx, suite.sessionID, dto.SuggestRequest{Memo: "compra"})
	suite.Require().NoError(err, "a failed lookup is not an operator-facing error")
	suite.True(resp.Empty)
	suite.Empty(resp.Suggestions)
}

func (suite *SuggestionServiceTestSuite) TestSuggestLines_ReturnsRankedLines() {
	suggested := []domain.SuggestedLine{
		{AccountCode: "601", AccountName: "Mercaderías", Side: domain.SideDebit, Amount: decimal.RequireFromString("100.00")},
		{AccountCode: "42", AccountName: "Proveedores", Side: domain.SideCredit, Amount: decimal.RequireFromString("100.00")},
	}
	suite.mockLedger.On("SuggestEntry", mock.Anything, suite.companyID, "compra", (*decimal.Decimal)(nil)).
		Return(suggested, nil).Once()

	resp, err := suite.container.Suggestion.SuggestLines(suite.ctx, suite.sessionID, dto.SuggestRequest{Memo: "compra"})
	suite.Require().NoError(err)
	suite.False(resp.Empty)
	suite.Len(resp.Suggestions, 2)
}

func (suite *SuggestionServiceTestSuite) TestApplySimilar_CopiesPatternWithoutAmounts() {
	source := &domain.JournalEntry{
		EntryID:   "e9",
		CompanyID: suite.companyID,
		Status:    domain.StatusPosted,
		Lines: []domain.EntryLine{
			{LineID: "s1", AccountCode: "63", Memo: "alquiler", Debit: decimal.RequireFromString("1500.00"), Credit: decimal.Zero},
			{LineID: "s2", AccountCode: "42", Memo: "", Debit: decimal.Zero, Credit: decimal.RequireFromString("1500.00")},
		},
	}
	suite.mockLedger.On("GetEntry", mock.Anything, "e9").Return(source, nil).Once()

	resp, err := suite.container.Suggestion.ApplySimilar(suite.ctx, suite.sessionID, dto.ApplySimilarRequest{EntryID: "e9"})
	suite.Require().NoError(err)
	suite.Require().Len(resp.Entry.Lines, 2)
	suite.Equal("63", resp.Entry.Lines[0].AccountCode)
	suite.Equal("alquiler", resp.Entry.Lines[0].Memo)
	for _, l := range resp.Entry.Lines {
		suite.True(l.Debit.IsZero())
		suite.True(l.Credit.IsZero())
	}
}

func (suite *SuggestionServiceTestSuite) TestApplySimilar_OtherCompanyRejected() {
	source := &domain.JournalEntry{
		EntryID:   "e9",
		CompanyID: "other-company",
		Status:    domain.StatusPosted,
	}
	suite.mockLedger.On("GetEntry", mock.Anything, "e9").Return(source, nil).Once()

	_, err := suite.container.Suggestion.ApplySimilar(suite.ctx, suite.sessionID, dto.ApplySimilarRequest{EntryID: "e9"})
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestSuggestionServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SuggestionServiceTestSuite))
}
