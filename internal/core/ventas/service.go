// package ventas/service.go
package ventas

import (
	"fmt"
	"sort"
	"strings"

	"ventas-service/internal/domain"
)

// Params are the deployment knobs of the engine. One fixed tax factor per
// deployment; multi-currency and multi-tax-regime inputs are out of scope.
type Params struct {
	TaxFactor              float64
	ParetoThreshold        float64
	ParetoGapFloor         float64
	IncludeNegativeNegados bool
	ReferenceYear          int
}

// Service is the reconciliation and aggregation engine. Every method is a
// pure pass over the snapshot it is given: no ambient state, no mutation of
// inputs, so concurrent requests only need their own snapshot.
type Service interface {
	ComputeDashboard(snap domain.Snapshot, sel domain.FilterSelection) domain.DashboardResult
	ValueNegados(negados domain.NegadosSource, precios domain.PriceSource, scope VendorScope) domain.NegadosResult
	CompareMTD(current, reference domain.SalesBatch, params domain.MTDParams, sel domain.FilterSelection) domain.MTDResult
}

type service struct {
	cfg Params
}

// NewService creates the engine with the given deployment parameters.
func NewService(cfg Params) Service {
	if cfg.TaxFactor == 0 {
		cfg.TaxFactor = 1
	}
	if cfg.ParetoThreshold == 0 {
		cfg.ParetoThreshold = 0.8
	}
	return &service{cfg: cfg}
}

// ComputeDashboard runs one full recomputation pass: derive net values,
// scope, aggregate territorially, compute KPIs, value denied demand and run
// the Pareto analysis. Degraded sources surface as warnings on the result,
// never as a failed pass.
func (s *service) ComputeDashboard(snap domain.Snapshot, sel domain.FilterSelection) domain.DashboardResult {
	lines := derivedCopy(snap.Sales.Lines, s.cfg.TaxFactor)

	salespeople := distinctSalespeople(lines)
	if len(salespeople) == 0 {
		return domain.DashboardResult{
			Empty:       true,
			EmptyReason: "no se encontraron vendedores en VENTAS",
		}
	}

	if sel.AllSalespeople {
		sel.Salespeople = salespeople
	}

	filtered := FilterSales(lines, sel)
	agg := AggregateByCustomer(filtered, snap.Customers, sel.TopCustomers)
	scoped := scopeCustomers(snap.Customers, sel)
	noSale := NoSaleCustomers(scoped, agg, sel.MaxNoSale)
	kpis := ComputeKPIs(agg, scoped, filtered, snap.Sales.ProductColumn != "")

	var vendorScope VendorScope
	if sel.AllSalespeople {
		vendorScope = AllVendors()
	} else {
		vendorScope = resolveVendorScope(lines, snap.Sales.HasVendorCode, sel.Salespeople)
	}
	negados := s.ValueNegados(snap.Negados, snap.Precios, vendorScope)
	if negados.Available && kpis.TotalNetValue > 0 {
		negados.PctVsSold = negados.TotalValue / kpis.TotalNetValue * 100
	}

	pareto := domain.ParetoResult{
		Global: AnalyzePareto(SumByEspecie(lines), s.cfg.ParetoThreshold),
	}
	if !sel.AllSalespeople && len(sel.Salespeople) == 1 {
		name := sel.Salespeople[0]
		scopedSel := domain.FilterSelection{Salespeople: []string{name}}
		scopedSums := SumByEspecie(FilterSales(lines, scopedSel))
		pareto.ScopedTo = strings.TrimSpace(name)
		pareto.Scoped = AnalyzePareto(scopedSums, s.cfg.ParetoThreshold)
		pareto.Gaps = ParetoGaps(pareto.Global, scopedSums, s.cfg.ParetoGapFloor)
	}

	var warnings []string
	if !negados.Available && negados.Reason != "" {
		warnings = append(warnings, negados.Reason)
	}
	if negados.MissingPriceCount > 0 {
		warnings = append(warnings, fmt.Sprintf("%d renglones negados quedaron sin precio (precio=0); revisa la lista de precios", negados.MissingPriceCount))
	}

	return domain.DashboardResult{
		CustomerSales:   agg,
		NoSaleCustomers: noSale,
		KPIs:            kpis,
		Negados:         negados,
		Pareto:          pareto,
		Salespeople:     salespeople,
		Especies:        distinctEspecies(lines),
		Warnings:        warnings,
	}
}

// derivedCopy clones the batch and derives net values on the clone, keeping
// the caller's snapshot untouched.
func derivedCopy(lines []domain.SalesLine, taxFactor float64) []domain.SalesLine {
	out := make([]domain.SalesLine, len(lines))
	copy(out, lines)
	DeriveNetValues(out, taxFactor)
	return out
}

// resolveVendorScope maps selected salesperson display names to the numeric
// codes negados lines are keyed by. When the sales sheet carries cve_vnd
// the mapping comes from its own rows; otherwise the selected names
// themselves are normalized and kept only if numeric. An unresolvable
// mapping yields the empty scope — zero denied value, not "all".
func resolveVendorScope(lines []domain.SalesLine, hasVendorCode bool, names []string) VendorScope {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[normalizeName(n)] = true
	}

	var codes []string
	if hasVendorCode {
		seen := make(map[string]bool)
		for _, ln := range lines {
			if ln.VendorCode == "" || !wanted[normalizeName(ln.Salesperson)] {
				continue
			}
			code := NormalizeCode(ln.VendorCode)
			if code != "" && !seen[code] {
				seen[code] = true
				codes = append(codes, code)
			}
		}
	} else {
		for _, n := range names {
			if code := NormalizeCode(n); isNumericCode(code) {
				codes = append(codes, code)
			}
		}
	}
	return VendorsByCode(codes...)
}

func distinctSalespeople(lines []domain.SalesLine) []string {
	seen := make(map[string]bool)
	var out []string
	for _, ln := range lines {
		name := strings.TrimSpace(ln.Salesperson)
		if name == "" {
			continue
		}
		key := normalizeName(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func distinctEspecies(lines []domain.SalesLine) []string {
	seen := make(map[string]bool)
	var out []string
	for _, ln := range lines {
		especie := strings.TrimSpace(ln.Especie)
		if especie == "" || seen[especie] {
			continue
		}
		seen[especie] = true
		out = append(out, especie)
	}
	sort.Strings(out)
	return out
}
