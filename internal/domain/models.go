// package domain/models.go
package domain

import "time"

// Customer is one row of the clientes sheet after loading. Latitude and
// Longitude are only meaningful when HasGeo is true; customers without
// coordinates stay in coverage denominators but never reach the map output.
type Customer struct {
	Code        string  `json:"cve_cte"`
	Name        string  `json:"nombre"`
	Salesperson string  `json:"vendedor"`
	Latitude    float64 `json:"latitud"`
	Longitude   float64 `json:"longitud"`
	HasGeo      bool    `json:"has_geo"`
}

// SalesLine is one row of a monthly ventas sheet. Date is the zero time when
// the source cell could not be parsed ("unknown date"); such lines stay in
// totals but are excluded from date-windowed views. NetValue is derived by
// the engine, never read from the source.
type SalesLine struct {
	CustomerCode string    `json:"cve_cte"`
	Salesperson  string    `json:"vendedor"`
	VendorCode   string    `json:"cve_vnd"`
	Date         time.Time `json:"fecha"`
	Especie      string    `json:"especie"`
	GrossTotal   float64   `json:"total"`
	Quantity     float64   `json:"cantidad"`
	UnitValue    float64   `json:"importe"`
	ProductCode  string    `json:"producto"`
	NetValue     float64   `json:"venta_sin_iva"`
}

// SalesBatch is a loaded ventas sheet plus the load-time schema decisions
// that apply to the whole batch. ProductColumn is the source header the
// product code was resolved from; empty means no candidate header was
// present and unique-product KPIs are "not determined" rather than zero.
type SalesBatch struct {
	Lines         []SalesLine `json:"lines"`
	HasVendorCode bool        `json:"has_vendor_code"`
	ProductColumn string      `json:"product_column"`
}

// DeniedLine is one negados row: demand a customer asked for that was not
// fulfilled. Quantity is signed; negative rows are adjustments/returns and
// only count when the deployment opts in.
type DeniedLine struct {
	VendorCode  string  `json:"cve_vnd"`
	ProductCode string  `json:"cve_art"`
	Quantity    float64 `json:"cant_negada"`
}

// NegadosSource is the negados sheet as a tagged value: Reason is non-empty
// when a required column was missing and the set could not be loaded.
type NegadosSource struct {
	Lines  []DeniedLine `json:"lines"`
	Reason string       `json:"reason,omitempty"`
}

// PriceEntry is one raw price-list row before reduction. PriceType carries
// tip_pre when the column exists (see PriceSource.HasType); type 1 marks the
// primary list.
type PriceEntry struct {
	ProductCode string  `json:"cve_art"`
	Price       float64 `json:"precio"`
	Description string  `json:"descri"`
	PriceType   int     `json:"tip_pre"`
}

// PriceSource is the price list as a tagged value, mirroring NegadosSource.
type PriceSource struct {
	Entries []PriceEntry `json:"entries"`
	HasType bool         `json:"has_type"`
	Reason  string       `json:"reason,omitempty"`
}

// Snapshot is one immutable set of freshly loaded inputs. The engine never
// mutates it; every computation pass works on its own copy of what it needs.
type Snapshot struct {
	Customers []Customer
	Sales     SalesBatch
	Negados   NegadosSource
	Precios   PriceSource
}

// FilterSelection is the explicit request value replacing the original
// ambient view state: which salespeople and especies to scope to, plus the
// display truncations. AllSalespeople must be set explicitly — an empty
// Salespeople list with AllSalespeople false means "nothing", never "all".
type FilterSelection struct {
	AllSalespeople bool     `json:"todos_vendedores"`
	Salespeople    []string `json:"vendedores"`
	Especies       []string `json:"especies"`
	TopCustomers   int      `json:"top_clientes"`
	MaxNoSale      int      `json:"max_sin_compra"`
}

// CustomerSales is one per-customer aggregate row for the map layer.
type CustomerSales struct {
	CustomerCode string  `json:"cve_cte"`
	Name         string  `json:"nombre"`
	Salesperson  string  `json:"vendedor"`
	NetValue     float64 `json:"venta_sin_iva"`
	Especies     string  `json:"especies"`
	LineCount    int     `json:"renglones"`
	Latitude     float64 `json:"latitud"`
	Longitude    float64 `json:"longitud"`
}

// KPIBundle holds the scalar indicators for the current selection.
// UniqueProducts is nil when the sales sheet had no recognizable product
// column — "not determined" is distinct from zero products sold.
type KPIBundle struct {
	TotalNetValue     float64 `json:"venta_total"`
	CustomersWithSale int     `json:"clientes_con_venta"`
	AvgTicket         float64 `json:"ticket_promedio"`
	AssignedCustomers int     `json:"clientes_asignados"`
	CoveragePct       float64 `json:"cobertura_pct"`
	UniqueProducts    *int    `json:"skus_unicos,omitempty"`
}

// NegadoProduct is one row of the denied-demand breakdown.
type NegadoProduct struct {
	ProductCode string  `json:"cve_art"`
	Description string  `json:"descri"`
	Value       float64 `json:"valor_negado"`
	PctOfTotal  float64 `json:"pct_total"`
}

// NegadosResult is the valued denied demand for the selection. When either
// source sheet could not supply its required columns the result is tagged
// unavailable with a human-readable reason and zero values, so consumers
// render a degraded view instead of aborting.
type NegadosResult struct {
	Available         bool            `json:"available"`
	Reason            string          `json:"reason,omitempty"`
	TotalValue        float64         `json:"valor_negado"`
	MissingPriceCount int             `json:"renglones_sin_precio"`
	PctVsSold         float64         `json:"pct_negado_vs_vendido"`
	Breakdown         []NegadoProduct `json:"detalle"`
}

// ParetoCategory is one especie with its share bookkeeping. InCoreSet marks
// membership in the concentration core (the "80" of 80/20).
type ParetoCategory struct {
	Especie         string  `json:"especie"`
	Value           float64 `json:"valor"`
	Share           float64 `json:"share"`
	CumulativeShare float64 `json:"share_acumulado"`
	InCoreSet       bool    `json:"in_core_set"`
}

// ParetoGapEntry is a category in the global core set that the scoped
// salesperson is not moving.
type ParetoGapEntry struct {
	Especie     string  `json:"especie"`
	GlobalValue float64 `json:"valor_global"`
	ScopedValue float64 `json:"valor_vendedor"`
}

// ParetoResult carries the global run, the scoped run (only when the
// selection names exactly one salesperson) and the gap report between them.
type ParetoResult struct {
	Global   []ParetoCategory `json:"global"`
	Scoped   []ParetoCategory `json:"vendedor,omitempty"`
	ScopedTo string           `json:"vendedor_nombre,omitempty"`
	Gaps     []ParetoGapEntry `json:"faltantes,omitempty"`
}

// MTDParams selects the month-to-date window: the target year, the month
// and the cutoff day-of-month. The cutoff is clamped to the month's real
// last day before any date is constructed.
type MTDParams struct {
	Year      int `json:"anio"`
	Month     int `json:"mes"`
	CutoffDay int `json:"dia_corte"`
}

// MTDSide is one year's half of the comparison.
type MTDSide struct {
	Year           int       `json:"anio"`
	WindowStart    time.Time `json:"desde"`
	WindowEnd      time.Time `json:"hasta"`
	NetValue       float64   `json:"venta_sin_iva"`
	Customers      int       `json:"clientes"`
	UniqueProducts int       `json:"skus_unicos"`
}

// MTDResult compares the current window against the reference year's.
// Variations are percentages, defined as 0 when the reference side is 0.
type MTDResult struct {
	Current              MTDSide `json:"actual"`
	Reference            MTDSide `json:"referencia"`
	ValueVariationPct    float64 `json:"variacion_venta_pct"`
	CustomerVariationPct float64 `json:"variacion_clientes_pct"`
	ProductVariationPct  float64 `json:"variacion_skus_pct"`
}

// DashboardResult is one full computation pass over a snapshot. Empty marks
// the explicit "nothing to show" state (for example a ventas sheet with no
// salespeople), which is not an error.
type DashboardResult struct {
	Empty           bool            `json:"empty"`
	EmptyReason     string          `json:"empty_reason,omitempty"`
	CustomerSales   []CustomerSales `json:"clientes_con_venta"`
	NoSaleCustomers []Customer      `json:"clientes_sin_compra"`
	KPIs            KPIBundle       `json:"kpis"`
	Negados         NegadosResult   `json:"negados"`
	Pareto          ParetoResult    `json:"pareto"`
	Salespeople     []string        `json:"vendedores"`
	Especies        []string        `json:"especies"`
	Warnings        []string        `json:"warnings,omitempty"`
}
