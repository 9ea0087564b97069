// Package export renders validation rules as spreadsheets and reads them
// back for seeding.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"acordex/internal/domain"
)

// SheetName is the worksheet rules are written to.
const SheetName = "Rules"

var columns = []string{
	"ID",
	"Certificate Type",
	"Product Name",
	"Active",
	"Created At",
	"Updated At",
}

// RulesXLSX returns an XLSX workbook listing rules in the given order.
func RulesXLSX(rules []domain.ValidationRule) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	for i, h := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(SheetName, cell, h)
	}

	for i := range rules {
		row := i + 2
		for col, v := range ruleRow(&rules[i]) {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(SheetName, cell, v)
		}
	}

	_ = f.SetColWidth(SheetName, "A", "A", 8)
	_ = f.SetColWidth(SheetName, "B", "C", 32)
	_ = f.SetColWidth(SheetName, "D", "D", 8)
	_ = f.SetColWidth(SheetName, "E", "F", 22)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func ruleRow(r *domain.ValidationRule) []any {
	return []any{
		r.ID,
		r.CertificateType,
		r.ProductName,
		formatBool(r.IsActive),
		r.CreatedAt.UTC().Format(time.RFC3339),
		r.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// SeedRow is one rule read from a seed workbook.
type SeedRow struct {
	Row             int
	CertificateType string
	ProductName     string
	IsActive        bool
}

// ReadSeedRows reads rules from the first sheet of an XLSX workbook. The
// header row must name "Certificate Type" and "Product Name" columns; an
// "Active" column is optional and defaults to active.
func ReadSeedRows(r io.Reader) ([]SeedRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("workbook is empty")
	}

	certCol, productCol, activeCol := -1, -1, -1
	for i, h := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "certificate type", "certificate_type":
			certCol = i
		case "product name", "product_name":
			productCol = i
		case "active", "is_active":
			activeCol = i
		}
	}
	if certCol < 0 || productCol < 0 {
		return nil, fmt.Errorf("header must name certificate type and product name columns")
	}

	var out []SeedRow
	for i, row := range rows[1:] {
		seed := SeedRow{
			Row:             i + 2,
			CertificateType: cellAt(row, certCol),
			ProductName:     cellAt(row, productCol),
			IsActive:        true,
		}
		if seed.CertificateType == "" && seed.ProductName == "" {
			continue
		}
		if activeCol >= 0 {
			if v := cellAt(row, activeCol); v != "" {
				seed.IsActive = parseBool(v)
			}
		}
		out = append(out, seed)
	}
	return out, nil
}

func cellAt(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "yes", "y", "x":
		return true
	case "no", "n":
		return false
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return true
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
