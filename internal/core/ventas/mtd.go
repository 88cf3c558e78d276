package ventas

import (
	"time"

	"ventas-service/internal/domain"
)

// MonthWindow builds the half-open month-to-date window
// [first-of-month, cutoff+1d) for the given year. The cutoff day is clamped
// to the month's true last day first, so asking for day 31 of a 30-day
// month never constructs an invalid date.
func MonthWindow(year, month, cutoffDay int) (time.Time, time.Time) {
	// Day 0 of the following month is this month's last day.
	lastDay := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	day := cutoffDay
	if day > lastDay {
		day = lastDay
	}
	if day < 1 {
		day = 1
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return start, end
}

// CompareMTD filters each year's sales batch to its same-cutoff-day window,
// scoped to the selected salespeople via each batch's own salesperson field,
// and compares realized value, distinct customers and distinct products.
// Variations are (current/reference − 1) × 100, defined as 0 when the
// reference side is 0. Lines with an unknown date never enter a window.
func (s *service) CompareMTD(current, reference domain.SalesBatch, params domain.MTDParams, sel domain.FilterSelection) domain.MTDResult {
	curLines := derivedCopy(current.Lines, s.cfg.TaxFactor)
	refLines := derivedCopy(reference.Lines, s.cfg.TaxFactor)

	result := domain.MTDResult{
		Current:   mtdSide(curLines, params.Year, params.Month, params.CutoffDay, sel),
		Reference: mtdSide(refLines, s.cfg.ReferenceYear, params.Month, params.CutoffDay, sel),
	}
	result.ValueVariationPct = variationPct(result.Current.NetValue, result.Reference.NetValue)
	result.CustomerVariationPct = variationPct(float64(result.Current.Customers), float64(result.Reference.Customers))
	result.ProductVariationPct = variationPct(float64(result.Current.UniqueProducts), float64(result.Reference.UniqueProducts))
	return result
}

func mtdSide(lines []domain.SalesLine, year, month, cutoffDay int, sel domain.FilterSelection) domain.MTDSide {
	start, end := MonthWindow(year, month, cutoffDay)

	var names map[string]bool
	if !sel.AllSalespeople {
		names = make(map[string]bool, len(sel.Salespeople))
		for _, n := range sel.Salespeople {
			names[normalizeName(n)] = true
		}
	}

	side := domain.MTDSide{Year: year, WindowStart: start, WindowEnd: end}
	customers := make(map[string]bool)
	products := make(map[string]bool)
	for _, ln := range lines {
		if ln.Date.IsZero() || ln.Date.Before(start) || !ln.Date.Before(end) {
			continue
		}
		if names != nil && !names[normalizeName(ln.Salesperson)] {
			continue
		}
		side.NetValue += ln.NetValue
		if code := NormalizeCode(ln.CustomerCode); code != "" {
			customers[code] = true
		}
		if code := NormalizeCode(ln.ProductCode); code != "" {
			products[code] = true
		}
	}
	side.Customers = len(customers)
	side.UniqueProducts = len(products)
	return side
}

func variationPct(current, reference float64) float64 {
	if reference == 0 {
		return 0
	}
	return (current/reference - 1) * 100
}
