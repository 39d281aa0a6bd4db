package normalize

import (
	"github.com/tidwall/gjson"

	"github.com/bryanwahyu/analysis-gateway/internal/domain/analysis"
)

func costView(r gjson.Result) analysis.ViewModel {
	stats := r.Get("stats")
	v := analysis.CostView{
		Ratio:        amount(stats.Get("ratio")),
		TotalExpense: money(stats.Get("totalExp"), stats.Get("totalExpUsd")),
		TotalRevenue: money(stats.Get("totalRev"), stats.Get("totalRevUsd")),
	}
	v.RatioDisplay = percent(v.Ratio)

	list := rows(r.Get("rows"))
	v.Rows = make([]analysis.CostRow, 0, len(list))
	for _, row := range list {
		v.Rows = append(v.Rows, analysis.CostRow{
			SKU:        text(row.Get("sku")),
			Name:       text(row.Get("name")),
			Cost:       money(row.Get("cost"), row.Get("usd_cost")),
			LoadedCost: money(row.Get("loaded_cost"), row.Get("usd_loaded_cost")),
		})
	}
	return v
}

func deadStockView(r gjson.Result) analysis.ViewModel {
	v := analysis.DeadStockView{
		TotalCapital: money(r.Get("totalCapital"), r.Get("totalCapitalUsd")),
	}
	list := rows(r.Get("list"))
	v.Items = make([]analysis.DeadStockItem, 0, len(list))
	for _, item := range list {
		v.Items = append(v.Items, analysis.DeadStockItem{
			Code:     text(item.Get("kod")),
			Name:     text(item.Get("urun_adi")),
			Quantity: amount(item.Get("adet")),
			Capital:  money(item.Get("bagli_para"), item.Get("bagli_para_usd")),
		})
	}
	return v
}

func stockoutView(r gjson.Result) analysis.ViewModel {
	v := analysis.StockoutView{
		Advice: narrative(r, "advice"),
	}
	list := rows(r.Get("stockoutList"))
	v.Items = make([]analysis.StockoutItem, 0, len(list))
	for _, item := range list {
		v.Items = append(v.Items, analysis.StockoutItem{
			Code:     text(item.Get("kod")),
			Name:     text(item.Get("urun_adi")),
			DaysLeft: amount(item.Get("gun")),
			Urgency:  text(item.Get("aciliyet")),
		})
	}
	return v
}

func cargoView(r gjson.Result) analysis.ViewModel {
	list := rows(firstOf(r, "list", "entries", "rows"))
	v := analysis.CargoView{
		Entries: make([]analysis.CargoEntry, 0, len(list)),
	}
	for _, e := range list {
		v.Entries = append(v.Entries, analysis.CargoEntry{
			OrderID:       text(e.Get("order_id")),
			CargoFirm:     text(e.Get("cargo_firm")),
			Desi:          amount(e.Get("desi")),
			ExpectedPrice: money(e.Get("expected_price"), e.Get("expected_price_usd")),
			ChargedPrice:  money(e.Get("charged_price"), e.Get("charged_price_usd")),
			PriceDiff:     amount(e.Get("price_diff")),
		})
	}
	return FilterCargo(v, "")
}

func invoiceView(r gjson.Result) analysis.ViewModel {
	v := analysis.InvoiceView{
		InvoiceNo: text(r.Get("invoice_no")),
		Supplier:  text(r.Get("supplier")),
		Date:      text(r.Get("date")),
		Total:     money(r.Get("total"), r.Get("total_usd")),
		VAT:       money(r.Get("vat"), r.Get("vat_usd")),
	}
	list := rows(r.Get("items"))
	v.Items = make([]analysis.InvoiceItem, 0, len(list))
	for _, item := range list {
		v.Items = append(v.Items, analysis.InvoiceItem{
			Description: text(item.Get("description")),
			Quantity:    amount(item.Get("quantity")),
			UnitPrice:   money(item.Get("unit_price"), item.Get("unit_price_usd")),
			LineTotal:   money(item.Get("line_total"), item.Get("line_total_usd")),
		})
	}
	return v
}

func bulkImportView(r gjson.Result) analysis.ViewModel {
	v := analysis.BulkImportView{
		Imported: amount(r.Get("imported")),
		Skipped:  amount(r.Get("skipped")),
		Failed:   amount(r.Get("failed")),
		Message:  narrative(r, "message"),
	}
	list := rows(r.Get("errors"))
	v.Errors = make([]analysis.ImportError, 0, len(list))
	for _, e := range list {
		v.Errors = append(v.Errors, analysis.ImportError{
			Row:     text(e.Get("row")),
			Message: text(e.Get("message")),
		})
	}
	return v
}

func taxView(r gjson.Result) analysis.ViewModel {
	return analysis.TaxView{
		Period:     text(r.Get("period")),
		OutputVAT:  money(r.Get("output_vat"), r.Get("output_vat_usd")),
		InputVAT:   money(r.Get("input_vat"), r.Get("input_vat_usd")),
		CarriedVAT: money(firstOf(r, "carried_vat", "devreden_kdv"), r.Get("carried_vat_usd")),
		PayableVAT: money(r.Get("payable_vat"), r.Get("payable_vat_usd")),
		Advice:     narrative(r, "advice"),
	}
}

func creativeView(r gjson.Result) analysis.ViewModel {
	body := Sanitize(firstText(r, "analysis", "report", "advice", "text"))
	score, src := ExtractScore(r.Get("score"), body)
	v := analysis.CreativeView{
		Score:       score,
		ScoreSource: src,
		Narrative:   body,
	}
	if v.Narrative == "" {
		v.Narrative = analysis.Placeholder
	}
	return v
}
