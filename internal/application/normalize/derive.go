package normalize

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/bryanwahyu/analysis-gateway/internal/domain/analysis"
)

// DeriveInput is the operator-controlled view state.
type DeriveInput struct {
	Filter string
	// SortDesc orders dead stock by tied-up capital and stockout by days left,
	// most urgent first.
	SortDesc bool
}

// Derive recomputes filtered/aggregated state for v. Views without derived
// state are returned unchanged.
func Derive(v analysis.ViewModel, in DeriveInput) analysis.ViewModel {
	switch view := v.(type) {
	case analysis.CargoView:
		return FilterCargo(view, in.Filter)
	case analysis.DeadStockView:
		if in.SortDesc {
			return sortDeadStock(view)
		}
	case analysis.StockoutView:
		if in.SortDesc {
			return sortStockout(view)
		}
	}
	return v
}

// FilterCargo keeps entries whose order id or cargo firm contains filter
// (case-insensitive) and sums their price difference. Absent differences count as 0.
func FilterCargo(v analysis.CargoView, filter string) analysis.CargoView {
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(filter))

	out := v
	out.Filter = filter
	out.Filtered = make([]analysis.CargoEntry, 0, len(v.Entries))
	var total float64
	for _, e := range v.Entries {
		if needle != "" && !matches(fold, e.OrderID, needle) && !matches(fold, e.CargoFirm, needle) {
			continue
		}
		out.Filtered = append(out.Filtered, e)
		total += e.PriceDiff.OrZero()
	}
	out.DerivedTotalLoss = total
	out.LossDisplay = formatLocal(total)
	return out
}

// missing values render as the placeholder and never match
func matches(fold cases.Caser, field, needle string) bool {
	if field == analysis.Placeholder {
		return false
	}
	return strings.Contains(fold.String(field), needle)
}

func sortDeadStock(v analysis.DeadStockView) analysis.DeadStockView {
	items := append([]analysis.DeadStockItem(nil), v.Items...)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Capital.Local.OrZero() > items[j].Capital.Local.OrZero()
	})
	v.Items = items
	return v
}

// fewest days left first; rows without a value go last
func sortStockout(v analysis.StockoutView) analysis.StockoutView {
	items := append([]analysis.StockoutItem(nil), v.Items...)
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].DaysLeft, items[j].DaysLeft
		if a.Valid != b.Valid {
			return a.Valid
		}
		return a.Value < b.Value
	})
	v.Items = items
	return v
}
