package loader

import (
	"io"
	"strconv"
	"strings"

	"ventas-service/internal/core/ventas"
	"ventas-service/internal/domain"
)

// Ordered candidate headers per logical field. Resolved once at load time;
// nothing downstream re-sniffs columns.
var (
	customerNameCandidates = []string{"nombre cliente", "nombre_cliente", "cliente", "nombre"}
	productCodeCandidates  = []string{"codigo", "código", "sku", "clave", "clave_art", "cve_art", "producto", "articulo", "artículo"}
)

// LoadClientes loads the customer base. Missing optional columns default to
// empty values; customers without parseable coordinates are kept (they still
// count toward coverage) but flagged geo-less.
func LoadClientes(r io.Reader, filename string) ([]domain.Customer, error) {
	rows, err := ReadRows(r, filename)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	idx := headerIndex(rows[0])
	codeCol := pickColumn(idx, "cve_cte")
	nameCol := pickColumn(idx, customerNameCandidates...)
	vendCol := pickColumn(idx, "vendedor")
	latCol := pickColumn(idx, "latitud")
	lonCol := pickColumn(idx, "longitud")

	var customers []domain.Customer
	for _, row := range rows[1:] {
		code := strings.TrimSpace(cell(row, codeCol))
		if code == "" {
			continue
		}
		lat, latOK := parseCoord(cell(row, latCol))
		lon, lonOK := parseCoord(cell(row, lonCol))
		customers = append(customers, domain.Customer{
			Code:        code,
			Name:        strings.TrimSpace(cell(row, nameCol)),
			Salesperson: strings.TrimSpace(cell(row, vendCol)),
			Latitude:    lat,
			Longitude:   lon,
			HasGeo:      latOK && lonOK,
		})
	}
	return customers, nil
}

// LoadVentas loads a monthly sales sheet. The product column is resolved
// from the candidate list once; when absent, ProductColumn stays empty and
// unique-product KPIs report "not determined". Net values are not derived
// here — that is the engine's batch-level decision.
func LoadVentas(r io.Reader, filename string) (domain.SalesBatch, error) {
	rows, err := ReadRows(r, filename)
	if err != nil {
		return domain.SalesBatch{}, err
	}
	if len(rows) == 0 {
		return domain.SalesBatch{}, nil
	}

	idx := headerIndex(rows[0])
	custCol := pickColumn(idx, "cve_cte")
	vendCol := pickColumn(idx, "vendedor")
	vendCodeCol := pickColumn(idx, "cve_vnd")
	dateCol := pickColumn(idx, "fecha")
	especieCol := pickColumn(idx, "especie")
	totalCol := pickColumn(idx, "total")
	qtyCol := pickColumn(idx, "cantidad")
	unitCol := pickColumn(idx, "importe")
	productCol := pickColumn(idx, productCodeCandidates...)

	batch := domain.SalesBatch{HasVendorCode: vendCodeCol >= 0}
	if productCol >= 0 {
		batch.ProductColumn = strings.ToLower(strings.TrimSpace(rows[0][productCol]))
	}

	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		line := domain.SalesLine{
			CustomerCode: strings.TrimSpace(cell(row, custCol)),
			Salesperson:  strings.TrimSpace(cell(row, vendCol)),
			Date:         parseDate(cell(row, dateCol)),
			Especie:      strings.TrimSpace(cell(row, especieCol)),
			GrossTotal:   parseNumber(cell(row, totalCol)),
			Quantity:     parseNumber(cell(row, qtyCol)),
			UnitValue:    parseNumber(cell(row, unitCol)),
		}
		if vendCodeCol >= 0 {
			if raw := strings.TrimSpace(cell(row, vendCodeCol)); raw != "" {
				line.VendorCode = ventas.NormalizeCode(raw)
			}
		}
		if productCol >= 0 {
			line.ProductCode = ventas.NormalizeCode(cell(row, productCol))
		}
		batch.Lines = append(batch.Lines, line)
	}
	return batch, nil
}

// LoadNegados loads the denied-order lines. The quantity column name is a
// deployment setting because the upstream export labels it with a raw SQL
// expression. A missing required column tags the whole source unavailable
// with a reason instead of failing the pipeline.
func LoadNegados(r io.Reader, filename, quantityColumn string) domain.NegadosSource {
	rows, err := ReadRows(r, filename)
	if err != nil {
		return domain.NegadosSource{Reason: "no se pudo leer la hoja de negados: " + err.Error()}
	}
	if len(rows) == 0 {
		return domain.NegadosSource{Reason: "la hoja de negados está vacía"}
	}

	idx := headerIndex(rows[0])
	productCol := pickColumn(idx, "cve_art")
	if productCol < 0 {
		return domain.NegadosSource{Reason: "no encontré la columna cve_art en NEGADOS"}
	}
	qtyCol := pickColumn(idx, quantityColumn)
	if qtyCol < 0 {
		return domain.NegadosSource{Reason: "no encontré la columna " + quantityColumn + " en NEGADOS (ahí debe venir la cantidad negada)"}
	}
	vendCol := pickColumn(idx, "cve_vnd")
	if vendCol < 0 {
		return domain.NegadosSource{Reason: "no encontré la columna cve_vnd (número de vendedor) en NEGADOS"}
	}

	var src domain.NegadosSource
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		src.Lines = append(src.Lines, domain.DeniedLine{
			VendorCode:  ventas.NormalizeCode(cell(row, vendCol)),
			ProductCode: ventas.NormalizeCode(cell(row, productCol)),
			Quantity:    parseNumber(cell(row, qtyCol)),
		})
	}
	return src
}

// LoadPrecios loads the price list. cve_art and precio are required;
// descri and tip_pre are optional. Reduction to one entry per product is the
// engine's job.
func LoadPrecios(r io.Reader, filename string) domain.PriceSource {
	rows, err := ReadRows(r, filename)
	if err != nil {
		return domain.PriceSource{Reason: "no se pudo leer la lista de precios: " + err.Error()}
	}
	if len(rows) == 0 {
		return domain.PriceSource{Reason: "la lista de precios está vacía"}
	}

	idx := headerIndex(rows[0])
	productCol := pickColumn(idx, "cve_art")
	priceCol := pickColumn(idx, "precio")
	if productCol < 0 || priceCol < 0 {
		return domain.PriceSource{Reason: "no encontré columnas cve_art/precio en PRECIOS"}
	}
	descCol := pickColumn(idx, "descri")
	typeCol := pickColumn(idx, "tip_pre")

	src := domain.PriceSource{HasType: typeCol >= 0}
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		entry := domain.PriceEntry{
			ProductCode: strings.TrimSpace(cell(row, productCol)),
			Price:       parseNumber(cell(row, priceCol)),
			Description: strings.TrimSpace(cell(row, descCol)),
		}
		if typeCol >= 0 {
			entry.PriceType = int(parseNumber(cell(row, typeCol)))
		}
		src.Entries = append(src.Entries, entry)
	}
	return src
}

func parseCoord(val string) (float64, bool) {
	s := strings.TrimSpace(val)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
