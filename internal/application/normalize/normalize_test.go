package normalize

import (
	"errors"
	"strings"
	"testing"

	"github.com/bryanwahyu/analysis-gateway/internal/domain/analysis"
)

func TestEveryKnownIDHasTransform(t *testing.T) {
	for _, id := range analysis.KnownIDs {
		if !Supports(id) {
			t.Errorf("no transform for %s", id)
		}
	}
	if len(transforms) != len(analysis.KnownIDs) {
		t.Errorf("transforms has %d entries, known ids %d", len(transforms), len(analysis.KnownIDs))
	}
}

func TestNormalizeCost(t *testing.T) {
	raw := `{"stats":{"ratio":0.25,"totalExp":1000,"totalRev":4000},
		"rows":[{"sku":"A1","name":"Widget","cost":10,"loaded_cost":12,"extra":"ignored"}]}`
	vm, err := Normalize(analysis.IDCost, []byte(raw))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	v, ok := vm.(analysis.CostView)
	if !ok {
		t.Fatalf("expected CostView, got %T", vm)
	}
	if !v.Ratio.Valid || v.Ratio.Value != 0.25 {
		t.Fatalf("ratio = %+v, want 0.25", v.Ratio)
	}
	if len(v.Rows) != 1 || v.Rows[0].SKU != "A1" {
		t.Fatalf("rows = %+v", v.Rows)
	}
	if v.TotalExpense.Local.Value != 1000 || v.TotalRevenue.Local.Value != 4000 {
		t.Fatalf("totals = %+v / %+v", v.TotalExpense, v.TotalRevenue)
	}
	if v.Rows[0].LoadedCost.Local.Value != 12 {
		t.Fatalf("loaded cost = %+v", v.Rows[0].LoadedCost)
	}
}

func TestNormalizeErrorAndDuplicateStatus(t *testing.T) {
	cases := []struct {
		raw     string
		status  string
		message string
	}{
		{`{"status":"duplicate","message":"already processed"}`, "duplicate", "already processed"},
		{`{"status":"error","error":"sheet missing"}`, "error", "sheet missing"},
		{`{"status":"ERROR"}`, "error", "remote workflow reported error"},
	}
	for _, id := range analysis.KnownIDs {
		for _, tc := range cases {
			vm, err := Normalize(id, []byte(tc.raw))
			var rre *analysis.RemoteReportedError
			if !errors.As(err, &rre) {
				t.Fatalf("%s: expected RemoteReportedError, got %v", id, err)
			}
			if rre.Status != tc.status || rre.Message != tc.message {
				t.Fatalf("%s: got %+v", id, rre)
			}
			if vm != nil {
				t.Fatalf("%s: expected no view model", id)
			}
		}
	}
}

func TestNormalizeUnwrapsOkData(t *testing.T) {
	raw := `{"status":"ok","data":{"totalCapital":5000,"totalCapitalUsd":150,
		"list":[{"kod":"K1","urun_adi":"Mug","adet":3,"bagli_para":300}]}}`
	vm, err := Normalize(analysis.IDDeadStock, []byte(raw))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	v := vm.(analysis.DeadStockView)
	if v.TotalCapital.Local.Value != 5000 || !v.TotalCapital.USD.Valid || v.TotalCapital.USD.Value != 150 {
		t.Fatalf("total capital = %+v", v.TotalCapital)
	}
	if !strings.Contains(v.TotalCapital.Display, "$") || !strings.Contains(v.TotalCapital.Display, "₺") {
		t.Fatalf("dual display should carry both currencies: %q", v.TotalCapital.Display)
	}
	if len(v.Items) != 1 || v.Items[0].Code != "K1" {
		t.Fatalf("items = %+v", v.Items)
	}
	if v.Items[0].Capital.USD.Valid {
		t.Fatalf("usd must be absent when not provided")
	}
	if strings.Contains(v.Items[0].Capital.Display, "$") {
		t.Fatalf("absent usd must not render: %q", v.Items[0].Capital.Display)
	}
}

func TestNormalizeSingleItemArray(t *testing.T) {
	vm, err := Normalize(analysis.IDCreativeScore, []byte(`[{"score":8,"analysis":"nice"}]`))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if v := vm.(analysis.CreativeView); v.Score != 8 || v.ScoreSource != analysis.ScoreFromField {
		t.Fatalf("unexpected view %+v", v)
	}
}

func TestNormalizeOkDataRowList(t *testing.T) {
	raw := `{"status":"ok","data":[{"order_id":"1","cargo_firm":"X","price_diff":10},{"order_id":"2","cargo_firm":"Y","price_diff":5}]}`
	vm, err := Normalize(analysis.IDCargoLeakage, []byte(raw))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	v := vm.(analysis.CargoView)
	if len(v.Entries) != 2 || v.DerivedTotalLoss != 15 {
		t.Fatalf("expected 2 entries and loss 15, got %d entries, loss %v", len(v.Entries), v.DerivedTotalLoss)
	}

	// one row is still a row, not a whole response
	vm, err = Normalize(analysis.IDStockout, []byte(`{"status":"success","data":[{"kod":"S1","gun":2}]}`))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if items := vm.(analysis.StockoutView).Items; len(items) != 1 || items[0].Code != "S1" {
		t.Fatalf("items = %+v", items)
	}
}

func TestNormalizeBareRowList(t *testing.T) {
	vm, err := Normalize(analysis.IDCost, []byte(`[{"sku":"A1","cost":1},{"sku":"B2","cost":2}]`))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if rows := vm.(analysis.CostView).Rows; len(rows) != 2 || rows[1].SKU != "B2" {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestNormalizeOkDataListForScalarAnalysis(t *testing.T) {
	_, err := Normalize(analysis.IDTaxProjection, []byte(`{"status":"ok","data":[{"period":"a"},{"period":"b"}]}`))
	var ne *analysis.NormalizationError
	if !errors.As(err, &ne) {
		t.Fatalf("expected NormalizationError, got %v", err)
	}
}

func TestNormalizeMissingKeysUsePlaceholders(t *testing.T) {
	vm, err := Normalize(analysis.IDCost, []byte(`{"rows":[{"cost":5},"garbage"]}`))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	v := vm.(analysis.CostView)
	if v.Ratio.Valid || v.RatioDisplay != analysis.Placeholder {
		t.Fatalf("ratio should be absent: %+v %q", v.Ratio, v.RatioDisplay)
	}
	if v.TotalExpense.Display != analysis.Placeholder {
		t.Fatalf("missing total should render placeholder, got %q", v.TotalExpense.Display)
	}
	if len(v.Rows) != 2 {
		t.Fatalf("rows = %d", len(v.Rows))
	}
	if v.Rows[0].SKU != analysis.Placeholder || v.Rows[0].LoadedCost.Local.Valid {
		t.Fatalf("row 0 = %+v", v.Rows[0])
	}
	if v.Rows[1].Name != analysis.Placeholder {
		t.Fatalf("row 1 = %+v", v.Rows[1])
	}
}

func TestNormalizeZeroIsNotAbsent(t *testing.T) {
	vm, err := Normalize(analysis.IDTaxProjection, []byte(`{"payable_vat":0,"payable_vat_usd":0}`))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	v := vm.(analysis.TaxView)
	if !v.PayableVAT.Local.Valid || !v.PayableVAT.USD.Valid {
		t.Fatalf("zero values must stay present: %+v", v.PayableVAT)
	}
	if v.OutputVAT.Local.Valid {
		t.Fatalf("missing output vat must be absent")
	}
	if v.Period != analysis.Placeholder || v.Advice != analysis.Placeholder {
		t.Fatalf("missing text should be placeholder: %+v", v)
	}
}

func TestNormalizeInvalidBodies(t *testing.T) {
	for _, raw := range []string{`not json`, `42`, `[1,2]`} {
		_, err := Normalize(analysis.IDStockout, []byte(raw))
		var ne *analysis.NormalizationError
		if !errors.As(err, &ne) {
			t.Fatalf("%q: expected NormalizationError, got %v", raw, err)
		}
	}
}

func TestNormalizeUnknownID(t *testing.T) {
	_, err := Normalize("weather", []byte(`{}`))
	var ne *analysis.NormalizationError
	if !errors.As(err, &ne) {
		t.Fatalf("expected NormalizationError, got %v", err)
	}
}

func TestNormalizeStockoutSanitizesAdvice(t *testing.T) {
	raw := `{"advice":"## Plan\n**Order** <b>now</b>","stockoutList":[{"kod":"S1","urun_adi":"Cup","gun":"4","aciliyet":"HIGH"}]}`
	vm, err := Normalize(analysis.IDStockout, []byte(raw))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	v := vm.(analysis.StockoutView)
	if v.Advice != "Plan\nOrder <b>now</b>" {
		t.Fatalf("advice = %q", v.Advice)
	}
	if !v.Items[0].DaysLeft.Valid || v.Items[0].DaysLeft.Value != 4 {
		t.Fatalf("numeric string should parse: %+v", v.Items[0].DaysLeft)
	}
}

func TestNormalizeInvoiceAndBulkImport(t *testing.T) {
	vm, err := Normalize(analysis.IDInvoiceOCR, []byte(`{"invoice_no":"F-1","supplier":"ACME","total":"1.234,50",
		"items":[{"description":"Paper","quantity":2,"unit_price":10,"line_total":20}]}`))
	if err != nil {
		t.Fatalf("normalize invoice: %v", err)
	}
	inv := vm.(analysis.InvoiceView)
	if inv.Total.Local.Value != 1234.5 || inv.Date != analysis.Placeholder || len(inv.Items) != 1 {
		t.Fatalf("invoice = %+v", inv)
	}

	vm, err = Normalize(analysis.IDBulkImport, []byte(`{"imported":10,"failed":1,"errors":[{"row":4,"message":"bad sku"}]}`))
	if err != nil {
		t.Fatalf("normalize bulk import: %v", err)
	}
	bi := vm.(analysis.BulkImportView)
	if bi.Imported.Value != 10 || bi.Skipped.Valid || bi.Errors[0].Row != "4" {
		t.Fatalf("bulk import = %+v", bi)
	}
}

func TestNormalizeCargoComputesLoss(t *testing.T) {
	raw := `{"list":[{"order_id":"1","cargo_firm":"X","price_diff":10},{"order_id":"2","cargo_firm":"Y","price_diff":5},{"order_id":"3"}]}`
	vm, err := Normalize(analysis.IDCargoLeakage, []byte(raw))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	v := vm.(analysis.CargoView)
	if len(v.Filtered) != 3 || v.DerivedTotalLoss != 15 {
		t.Fatalf("unfiltered view = %d entries, loss %v", len(v.Filtered), v.DerivedTotalLoss)
	}
}
