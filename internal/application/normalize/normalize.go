// Package normalize maps the ad-hoc JSON returned by each remote workflow into
// its canonical view model, and recomputes derived view state.
package normalize

import (
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/bryanwahyu/analysis-gateway/internal/domain/analysis"
)

type transform func(r gjson.Result) analysis.ViewModel

// one entry per analysis id; TestEveryKnownIDHasTransform keeps it exhaustive
var transforms = map[analysis.ID]transform{
	analysis.IDCost:          costView,
	analysis.IDDeadStock:     deadStockView,
	analysis.IDStockout:      stockoutView,
	analysis.IDCargoLeakage:  cargoView,
	analysis.IDInvoiceOCR:    invoiceView,
	analysis.IDBulkImport:    bulkImportView,
	analysis.IDTaxProjection: taxView,
	analysis.IDCreativeScore: creativeView,
}

// Supports reports whether id has a transform.
func Supports(id analysis.ID) bool {
	_, ok := transforms[id]
	return ok
}

// Normalize maps raw into the view model for id. An error/duplicate status
// yields *analysis.RemoteReportedError and no view.
func Normalize(id analysis.ID, raw []byte) (analysis.ViewModel, error) {
	fn, ok := transforms[id]
	if !ok {
		return nil, &analysis.NormalizationError{ID: id, Reason: "no transform for analysis"}
	}
	body, err := unwrap(id, raw)
	if err != nil {
		return nil, err
	}
	return fn(body), nil
}

// listShape describes analyses whose answer is mostly a row list. key is where
// the transform reads rows; markers are keys only a whole response carries.
type listShape struct {
	key     string
	markers []string
}

var listShapes = map[analysis.ID]listShape{
	analysis.IDCost:         {key: "rows", markers: []string{"rows", "stats"}},
	analysis.IDDeadStock:    {key: "list", markers: []string{"list", "totalCapital", "totalCapitalUsd"}},
	analysis.IDStockout:     {key: "stockoutList", markers: []string{"stockoutList", "advice"}},
	analysis.IDCargoLeakage: {key: "list", markers: []string{"list", "entries", "rows"}},
	analysis.IDInvoiceOCR:   {key: "items", markers: []string{"items", "invoice_no", "supplier", "total"}},
}

// unwrap checks the status wrapper and peels one {status:"ok", data:...} level.
func unwrap(id analysis.ID, raw []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, &analysis.NormalizationError{ID: id, Reason: "response is not valid JSON"}
	}
	r, ok := root(id, gjson.ParseBytes(raw))
	if !ok {
		return gjson.Result{}, &analysis.NormalizationError{ID: id, Reason: "response is not a JSON object"}
	}

	switch status := strings.ToLower(strings.TrimSpace(r.Get("status").String())); status {
	case "error", "duplicate":
		msg := firstText(r, "message", "error")
		if msg == "" {
			msg = "remote workflow reported " + status
		}
		return gjson.Result{}, &analysis.RemoteReportedError{Status: status, Message: msg}
	case "ok", "success":
		data := r.Get("data")
		if !data.IsObject() && !data.IsArray() {
			return r, nil
		}
		d, ok := root(id, data)
		if !ok {
			return gjson.Result{}, &analysis.NormalizationError{ID: id, Reason: "data is neither an object nor a row list"}
		}
		return d, nil
	}
	return r, nil
}

// root turns r into the object a transform reads. A one-item array holding a
// whole response is unwrapped; any other array of objects becomes the row
// list of list-shaped analyses.
func root(id analysis.ID, r gjson.Result) (gjson.Result, bool) {
	if r.IsObject() {
		return r, true
	}
	if !r.IsArray() {
		return r, false
	}
	arr := r.Array()
	shape, listy := listShapes[id]
	if len(arr) == 1 && arr[0].IsObject() && (!listy || wholeResponse(arr[0], shape)) {
		return arr[0], true
	}
	if !listy {
		return r, false
	}
	for _, row := range arr {
		if !row.IsObject() {
			return r, false
		}
	}
	obj, err := sjson.SetRaw(`{}`, shape.key, r.Raw)
	if err != nil {
		return r, false
	}
	return gjson.Parse(obj), true
}

// workflow engines often wrap the whole answer in a one-item array
func wholeResponse(r gjson.Result, shape listShape) bool {
	if r.Get("status").Exists() || r.Get("data").Exists() {
		return true
	}
	for _, k := range shape.markers {
		if r.Get(k).Exists() {
			return true
		}
	}
	return false
}
