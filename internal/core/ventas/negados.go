package ventas

import (
	"sort"

	"ventas-service/internal/domain"
)

// VendorScope restricts a computation to a set of normalized salesperson
// codes. The zero value matches nothing; use AllVendors for the
// unrestricted scope. "All" and "empty" are deliberately distinct states —
// an unresolvable salesperson mapping yields an empty scope and therefore
// zero denied value, never a silent fallback to everything.
type VendorScope struct {
	all   bool
	codes map[string]bool
}

// AllVendors returns the scope that matches every salesperson.
func AllVendors() VendorScope {
	return VendorScope{all: true}
}

// VendorsByCode returns a scope over the given codes, normalizing each.
func VendorsByCode(codes ...string) VendorScope {
	set := make(map[string]bool, len(codes))
	for _, c := range codes {
		if n := NormalizeCode(c); n != "" {
			set[n] = true
		}
	}
	return VendorScope{codes: set}
}

// All reports whether the scope is unrestricted.
func (s VendorScope) All() bool { return s.all }

// Contains reports whether a normalized vendor code is in scope.
func (s VendorScope) Contains(code string) bool {
	if s.all {
		return true
	}
	return s.codes[NormalizeCode(code)]
}

// ReducePriceList collapses raw price rows to at most one resolved entry per
// normalized product code. When a tip_pre column exists and any row is
// marked primary (1), only primary rows compete. Per code the highest price
// wins; the description is the first non-empty one encountered in
// price-descending order, which makes the tie-break deterministic.
func ReducePriceList(src domain.PriceSource) map[string]domain.PriceEntry {
	entries := src.Entries
	if src.HasType {
		anyPrimary := false
		for _, e := range entries {
			if e.PriceType == 1 {
				anyPrimary = true
				break
			}
		}
		if anyPrimary {
			primary := make([]domain.PriceEntry, 0, len(entries))
			for _, e := range entries {
				if e.PriceType == 1 {
					primary = append(primary, e)
				}
			}
			entries = primary
		}
	}

	sorted := make([]domain.PriceEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		ci, cj := NormalizeCode(sorted[i].ProductCode), NormalizeCode(sorted[j].ProductCode)
		if ci != cj {
			return ci < cj
		}
		return sorted[i].Price > sorted[j].Price
	})

	reduced := make(map[string]domain.PriceEntry, len(sorted))
	for _, e := range sorted {
		code := NormalizeCode(e.ProductCode)
		if code == "" {
			continue
		}
		cur, ok := reduced[code]
		if !ok {
			e.ProductCode = code
			reduced[code] = e
			continue
		}
		if cur.Description == "" && e.Description != "" {
			cur.Description = e.Description
			reduced[code] = cur
		}
	}
	return reduced
}

// ValueNegados values denied order lines against the reduced price list for
// the given salesperson scope. Lines joining no price entry value at price
// zero; positive-quantity lines priced at or below zero are counted as
// missing-price so the caller can surface a warning. When either source is
// tagged with a load reason the result is unavailable and every figure is
// zero — the rest of the pipeline keeps running.
func (s *service) ValueNegados(negados domain.NegadosSource, precios domain.PriceSource, scope VendorScope) domain.NegadosResult {
	if negados.Reason != "" {
		return domain.NegadosResult{Reason: "NEGADOS: " + negados.Reason}
	}
	if precios.Reason != "" {
		return domain.NegadosResult{Reason: "PRECIOS: " + precios.Reason}
	}

	reduced := ReducePriceList(precios)

	type acc struct {
		description string
		value       float64
	}
	byProduct := make(map[string]*acc)
	var order []string

	var total float64
	missing := 0

	for _, ln := range negados.Lines {
		if !scope.Contains(ln.VendorCode) {
			continue
		}
		if !s.cfg.IncludeNegativeNegados && ln.Quantity <= 0 {
			continue
		}

		code := NormalizeCode(ln.ProductCode)
		var price float64
		var description string
		if entry, ok := reduced[code]; ok {
			price = entry.Price
			description = entry.Description
		}

		value := ln.Quantity * price
		total += value
		if ln.Quantity > 0 && price <= 0 {
			missing++
		}

		a, ok := byProduct[code]
		if !ok {
			a = &acc{description: description}
			byProduct[code] = a
			order = append(order, code)
		}
		a.value += value
	}

	breakdown := make([]domain.NegadoProduct, 0, len(order))
	for _, code := range order {
		a := byProduct[code]
		breakdown = append(breakdown, domain.NegadoProduct{
			ProductCode: code,
			Description: a.description,
			Value:       a.value,
		})
	}
	sort.SliceStable(breakdown, func(i, j int) bool {
		if breakdown[i].Value != breakdown[j].Value {
			return breakdown[i].Value > breakdown[j].Value
		}
		return breakdown[i].ProductCode < breakdown[j].ProductCode
	})
	for i := range breakdown {
		if total > 0 {
			breakdown[i].PctOfTotal = breakdown[i].Value / total * 100
		}
	}

	return domain.NegadosResult{
		Available:         true,
		TotalValue:        total,
		MissingPriceCount: missing,
		Breakdown:         breakdown,
	}
}
