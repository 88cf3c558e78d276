// internal/api/handlers/dashboard_handler.go
package handlers

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"ventas-service/internal/api/responses"
	"ventas-service/internal/config"
	"ventas-service/internal/core/ventas"
	"ventas-service/internal/domain"
	"ventas-service/internal/loader"
	"ventas-service/internal/source"
)

var allowedExtensions = map[string]bool{".csv": true, ".xls": true, ".xlsx": true}

// DashboardHandler handles the dashboard computation requests: uploaded
// record sets or sheets fetched for a configured month.
type DashboardHandler struct {
	service ventas.Service
	fetcher *source.Client
	cfg     *config.Config
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(service ventas.Service, fetcher *source.Client, cfg *config.Config) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		fetcher: fetcher,
		cfg:     cfg,
	}
}

// getListFromForm splits a comma-separated form/query value into trimmed
// non-empty items.
func getListFromForm(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	var items []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

func getIntValue(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return n
}

// selectionFromValues builds the explicit filter selection. An absent or
// empty vendedores value means "all" — the selection value keeps that
// distinction explicit for the engine.
func selectionFromValues(get func(string) string) domain.FilterSelection {
	vendedores := getListFromForm(get("vendedores"))
	return domain.FilterSelection{
		AllSalespeople: len(vendedores) == 0,
		Salespeople:    vendedores,
		Especies:       getListFromForm(get("especies")),
		TopCustomers:   getIntValue(get("topClientes"), 0),
		MaxNoSale:      getIntValue(get("maxSinCompra"), 0),
	}
}

func openFormFile(c *gin.Context, field string) (multipart.File, string, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, "", err
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		return nil, "", fmt.Errorf("extensión no soportada para %s: %s", field, ext)
	}
	file, err := header.Open()
	if err != nil {
		return nil, "", err
	}
	return file, header.Filename, nil
}

// HandleDashboard computes the dashboard over four uploaded record sets.
// ventasFile and clientesFile are required; negados and precios degrade to
// a tagged unavailable result when absent or malformed.
func (h *DashboardHandler) HandleDashboard(c *gin.Context) {
	ventasFile, ventasName, err := openFormFile(c, "ventasFile")
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "Archivo de ventas (.csv, .xls, .xlsx) no encontrado o inválido", err.Error())
		return
	}
	defer ventasFile.Close()

	clientesFile, clientesName, err := openFormFile(c, "clientesFile")
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "Archivo de clientes (.csv, .xls, .xlsx) no encontrado o inválido", err.Error())
		return
	}
	defer clientesFile.Close()

	sales, err := loader.LoadVentas(ventasFile, ventasName)
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "No se pudo leer el archivo de ventas", err.Error())
		return
	}
	customers, err := loader.LoadClientes(clientesFile, clientesName)
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "No se pudo leer el archivo de clientes", err.Error())
		return
	}

	snap := domain.Snapshot{
		Customers: customers,
		Sales:     sales,
		Negados:   domain.NegadosSource{Reason: "archivo de negados no enviado"},
		Precios:   domain.PriceSource{Reason: "lista de precios no enviada"},
	}

	if negadosFile, negadosName, err := openFormFile(c, "negadosFile"); err == nil {
		snap.Negados = loader.LoadNegados(negadosFile, negadosName, h.cfg.Engine.NegadosQuantityColumn)
		negadosFile.Close()
	}
	if preciosFile, preciosName, err := openFormFile(c, "preciosFile"); err == nil {
		snap.Precios = loader.LoadPrecios(preciosFile, preciosName)
		preciosFile.Close()
	}

	h.compute(c, snap)
}

// HandleDashboardMes computes the dashboard for a configured month,
// fetching the four sheets through the TTL-cached source client.
func (h *DashboardHandler) HandleDashboardMes(c *gin.Context) {
	mes := strings.ToUpper(strings.TrimSpace(c.Param("mes")))
	ref, ok := h.cfg.Sheets.Meses[mes]
	if !ok {
		responses.Error(c, http.StatusNotFound, fmt.Sprintf("Mes no configurado: %s", mes))
		return
	}

	ctx := c.Request.Context()

	ventasCSV, err := h.fetcher.Fetch(ctx, ref)
	if err != nil {
		responses.Error(c, http.StatusBadGateway, "No se pudo descargar la hoja de ventas", err.Error())
		return
	}
	clientesCSV, err := h.fetcher.Fetch(ctx, h.cfg.Sheets.Clientes)
	if err != nil {
		responses.Error(c, http.StatusBadGateway, "No se pudo descargar la hoja de clientes", err.Error())
		return
	}

	sales, err := loader.LoadVentas(bytes.NewReader(ventasCSV), "ventas.csv")
	if err != nil {
		responses.Error(c, http.StatusBadGateway, "No se pudo leer la hoja de ventas", err.Error())
		return
	}
	customers, err := loader.LoadClientes(bytes.NewReader(clientesCSV), "clientes.csv")
	if err != nil {
		responses.Error(c, http.StatusBadGateway, "No se pudo leer la hoja de clientes", err.Error())
		return
	}

	snap := domain.Snapshot{Customers: customers, Sales: sales}

	if negadosCSV, err := h.fetcher.Fetch(ctx, h.cfg.Sheets.Negados); err != nil {
		snap.Negados = domain.NegadosSource{Reason: err.Error()}
	} else {
		snap.Negados = loader.LoadNegados(bytes.NewReader(negadosCSV), "negados.csv", h.cfg.Engine.NegadosQuantityColumn)
	}
	if preciosCSV, err := h.fetcher.Fetch(ctx, h.cfg.Sheets.Precios); err != nil {
		snap.Precios = domain.PriceSource{Reason: err.Error()}
	} else {
		snap.Precios = loader.LoadPrecios(bytes.NewReader(preciosCSV), "precios.csv")
	}

	h.compute(c, snap)
}

func (h *DashboardHandler) compute(c *gin.Context, snap domain.Snapshot) {
	sel := selectionFromValues(func(key string) string {
		if c.Request.Method == http.MethodGet {
			return c.Query(key)
		}
		return c.PostForm(key)
	})

	result := h.service.ComputeDashboard(snap, sel)
	if result.Empty {
		responses.Success(c, result, result.EmptyReason)
		return
	}
	responses.SuccessWithWarnings(c, result, "Cálculo del tablero completado", result.Warnings)
}

// HandleMTD compares the month-to-date window of an uploaded sales sheet
// against the reference year's sheet at the same cutoff day.
func (h *DashboardHandler) HandleMTD(c *gin.Context) {
	ventasFile, ventasName, err := openFormFile(c, "ventasFile")
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "Archivo de ventas actual (.csv, .xls, .xlsx) no encontrado o inválido", err.Error())
		return
	}
	defer ventasFile.Close()

	refFile, refName, err := openFormFile(c, "ventasRefFile")
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "Archivo de ventas de referencia no encontrado o inválido", err.Error())
		return
	}
	defer refFile.Close()

	params := domain.MTDParams{
		Year:      getIntValue(c.PostForm("anio"), 0),
		Month:     getIntValue(c.PostForm("mes"), 0),
		CutoffDay: getIntValue(c.PostForm("diaCorte"), 31),
	}
	if params.Year < 1 || params.Month < 1 || params.Month > 12 {
		responses.Error(c, http.StatusBadRequest, "Parámetros anio/mes inválidos")
		return
	}

	current, err := loader.LoadVentas(ventasFile, ventasName)
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "No se pudo leer el archivo de ventas actual", err.Error())
		return
	}
	reference, err := loader.LoadVentas(refFile, refName)
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "No se pudo leer el archivo de ventas de referencia", err.Error())
		return
	}

	sel := selectionFromValues(c.PostForm)
	result := h.service.CompareMTD(current, reference, params, sel)
	responses.Success(c, result, "Comparativo MTD completado")
}

// HandleMeses lists the configured month keys, menu data for the UI.
func (h *DashboardHandler) HandleMeses(c *gin.Context) {
	meses := make([]string, 0, len(h.cfg.Sheets.Meses))
	for mes := range h.cfg.Sheets.Meses {
		meses = append(meses, mes)
	}
	sort.Strings(meses)
	responses.Success(c, gin.H{"meses": meses}, "")
}
