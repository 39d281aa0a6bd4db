package analysis

import (
	"encoding/json"
	"strconv"
)

// Placeholder is rendered for any value the remote target did not provide.
const Placeholder = "—"

// Amount is a number that may be absent. Absent and zero are different states.
type Amount struct {
	Value float64
	Valid bool
}

// Some returns a present amount.
func Some(v float64) Amount { return Amount{Value: v, Valid: true} }

// OrZero returns the value, or 0 when absent.
func (a Amount) OrZero() float64 {
	if !a.Valid {
		return 0
	}
	return a.Value
}

func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(a.Value, 'f', -1, 64)), nil
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*a = Amount{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*a = Some(v)
	return nil
}

// Money is a dual-currency pair: local (TRY) plus an optional USD value.
// Display always carries both sides when USD is present.
type Money struct {
	Local   Amount `json:"local"`
	USD     Amount `json:"usd"`
	Display string `json:"display"`
}

// ViewModel is the closed set of per-analysis render shapes.
type ViewModel interface {
	AnalysisID() ID
	view()
}

type CostRow struct {
	SKU        string `json:"sku"`
	Name       string `json:"name"`
	Cost       Money  `json:"cost"`
	LoadedCost Money  `json:"loaded_cost"`
}

type CostView struct {
	Ratio        Amount    `json:"ratio"`
	RatioDisplay string    `json:"ratio_display"`
	TotalExpense Money     `json:"total_expense"`
	TotalRevenue Money     `json:"total_revenue"`
	Rows         []CostRow `json:"rows"`
}

type DeadStockItem struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Quantity Amount `json:"quantity"`
	Capital  Money  `json:"capital"`
}

type DeadStockView struct {
	TotalCapital Money           `json:"total_capital"`
	Items        []DeadStockItem `json:"items"`
}

type StockoutItem struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	DaysLeft Amount `json:"days_left"`
	Urgency  string `json:"urgency"`
}

type StockoutView struct {
	Advice string         `json:"advice"`
	Items  []StockoutItem `json:"items"`
}

type CargoEntry struct {
	OrderID       string `json:"order_id"`
	CargoFirm     string `json:"cargo_firm"`
	Desi          Amount `json:"desi"`
	ExpectedPrice Money  `json:"expected_price"`
	ChargedPrice  Money  `json:"charged_price"`
	PriceDiff     Amount `json:"price_diff"`
}

// CargoView holds every entry; Filtered and DerivedTotalLoss are recomputed
// from Entries whenever Filter changes.
type CargoView struct {
	Entries          []CargoEntry `json:"entries"`
	Filter           string       `json:"filter"`
	Filtered         []CargoEntry `json:"filtered"`
	DerivedTotalLoss float64      `json:"derived_total_loss"`
	LossDisplay      string       `json:"loss_display"`
}

type InvoiceItem struct {
	Description string `json:"description"`
	Quantity    Amount `json:"quantity"`
	UnitPrice   Money  `json:"unit_price"`
	LineTotal   Money  `json:"line_total"`
}

type InvoiceView struct {
	InvoiceNo string        `json:"invoice_no"`
	Supplier  string        `json:"supplier"`
	Date      string        `json:"date"`
	Total     Money         `json:"total"`
	VAT       Money         `json:"vat"`
	Items     []InvoiceItem `json:"items"`
}

type ImportError struct {
	Row     string `json:"row"`
	Message string `json:"message"`
}

type BulkImportView struct {
	Imported Amount        `json:"imported"`
	Skipped  Amount        `json:"skipped"`
	Failed   Amount        `json:"failed"`
	Message  string        `json:"message"`
	Errors   []ImportError `json:"errors"`
}

type TaxView struct {
	Period     string `json:"period"`
	OutputVAT  Money  `json:"output_vat"`
	InputVAT   Money  `json:"input_vat"`
	CarriedVAT Money  `json:"carried_vat"`
	PayableVAT Money  `json:"payable_vat"`
	Advice     string `json:"advice"`
}

// ScoreSource records which rule produced a creative score.
type ScoreSource string

const (
	ScoreFromField   ScoreSource = "field"
	ScoreFromPattern ScoreSource = "pattern"
	ScoreNone        ScoreSource = "none"
)

type CreativeView struct {
	Score       int         `json:"score"`
	ScoreSource ScoreSource `json:"score_source"`
	Narrative   string      `json:"narrative"`
}

func (CostView) AnalysisID() ID       { return IDCost }
func (DeadStockView) AnalysisID() ID  { return IDDeadStock }
func (StockoutView) AnalysisID() ID   { return IDStockout }
func (CargoView) AnalysisID() ID      { return IDCargoLeakage }
func (InvoiceView) AnalysisID() ID    { return IDInvoiceOCR }
func (BulkImportView) AnalysisID() ID { return IDBulkImport }
func (TaxView) AnalysisID() ID        { return IDTaxProjection }
func (CreativeView) AnalysisID() ID   { return IDCreativeScore }

func (CostView) view()       {}
func (DeadStockView) view()  {}
func (StockoutView) view()   {}
func (CargoView) view()      {}
func (InvoiceView) view()    {}
func (BulkImportView) view() {}
func (TaxView) view()        {}
func (CreativeView) view()   {}
