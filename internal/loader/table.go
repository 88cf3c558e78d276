// Package loader turns the four external tabular sources into the typed
// record sets the engine consumes. Loaders are deliberately thin: they
// resolve headers once, coerce cells with zero sentinels on parse failure
// and tag a source as unavailable when a required column is missing —
// policy beyond that belongs to the engine.
package loader

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

// ReadRows materializes a tabular file as rows of cells. The format is
// picked by extension: .csv (UTF-8, comma — what the gviz export emits),
// .xlsx via excelize, .xls via xlsReader. An .xls that is really an xlsx in
// disguise gets a second chance with excelize.
func ReadRows(r io.Reader, filename string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", "":
		return readCSVRows(r)
	case ".xlsx":
		return readXLSXRows(r)
	case ".xls":
		return readXLSRows(r)
	default:
		return nil, fmt.Errorf("formato de archivo no soportado: %s", filepath.Ext(filename))
	}
}

func readCSVRows(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	// Los exportes viejos llegan en latin1
	if !utf8.Valid(data) {
		if decoded, errD := charmap.ISO8859_1.NewDecoder().Bytes(data); errD == nil {
			data = decoded
		}
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\uFEFF")
	}
	return rows, nil
}

func readXLSXRows(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("el archivo xlsx no contiene hojas")
	}
	return f.GetRows(sheets[0])
}

func readXLSRows(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	workbook, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		// quizá sea un xlsx renombrado
		if rows, errX := readXLSXRows(bytes.NewReader(data)); errX == nil {
			return rows, nil
		}
		return nil, err
	}

	if len(workbook.GetSheets()) == 0 {
		return nil, fmt.Errorf("el archivo xls no contiene hojas")
	}
	sheet, err := workbook.GetSheet(0)
	if err != nil {
		return nil, err
	}
	var rows [][]string
	for _, row := range sheet.GetRows() {
		var cells []string
		for _, cell := range row.GetCols() {
			cells = append(cells, cell.GetString())
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// headerIndex maps lowercased, trimmed header names to their column index.
// Column-name matching everywhere in the loaders is case-insensitive and
// whitespace-trimmed, resolved once here.
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if key == "" {
			continue
		}
		if _, ok := idx[key]; !ok {
			idx[key] = i
		}
	}
	return idx
}

// pickColumn resolves a logical field from an ordered candidate list of
// header names; -1 when none is present.
func pickColumn(idx map[string]int, candidates ...string) int {
	for _, c := range candidates {
		if i, ok := idx[strings.ToLower(strings.TrimSpace(c))]; ok {
			return i
		}
	}
	return -1
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
