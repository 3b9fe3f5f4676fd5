package domain

import "github.com/shopspring/decimal"

// IGVRate is the value-added tax rate used when a template derives base and
// tax amounts from a tax-inclusive total.
var IGVRate = decimal.RequireFromString("1.18")

// AutoCalcRule names how a template line derives its amount from the target
// total. Empty means the line's amount is left for the operator.
type AutoCalcRule string

const (
	CalcNone  AutoCalcRule = ""
	CalcBase  AutoCalcRule = "BASE"
	CalcIGV   AutoCalcRule = "IGV"
	CalcTotal AutoCalcRule = "TOTAL"
)

// TemplateLine is one prototype line of an entry template.
type TemplateLine struct {
	AccountCode string       `json:"accountCode"`
	Side        Side         `json:"side"`
	AutoCalc    AutoCalcRule `json:"autoCalc"`
	Memo        string       `json:"memo"`
}

// Template is a named prototype for a whole entry.
type Template struct {
	TemplateID  string         `json:"templateID"`
	Name        string         `json:"name"`
	ExampleMemo string         `json:"exampleMemo"`
	Lines       []TemplateLine `json:"lines"`
}
