// Package export renders the current product list as an XLSX report.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/ecorank/internal/models"
	"github.com/hyperjump/ecorank/pkg/utils"
)

// SheetName is the worksheet holding the product table.
const SheetName = "Products"

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var header = []interface{}{"URL", "Product", "Sustainability Index", "Percentage"}

// Build creates a workbook with one row per product, in submission order, and
// a column chart of the percentages when they were computed. The caller must
// Close the returned file.
func Build(products []models.ScoredProduct) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeTable(f, products); err != nil {
		f.Close()
		return nil, err
	}
	if len(products) > 1 && products[0].HasPercentage() {
		if err := addChart(f, len(products)); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}

// Write builds the workbook and writes it to w.
func Write(w io.Writer, products []models.ScoredProduct) error {
	f, err := Build(products)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeTable(f *excelize.File, products []models.ScoredProduct) error {
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if err := f.SetCellStyle(SheetName, "A1", "D1", bold); err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	for i, p := range products {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{p.URL, p.Name, p.RawIndex}
		if p.HasPercentage() {
			row = append(row, utils.Round(*p.Percentage, 2))
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.SetColWidth(SheetName, "A", "A", 48); err != nil {
		return err
	}
	return f.SetColWidth(SheetName, "B", "B", 32)
}

func addChart(f *excelize.File, n int) error {
	last := n + 1
	err := f.AddChart(SheetName, "F2", &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("%s!$D$1", SheetName),
			Categories: fmt.Sprintf("%s!$B$2:$B$%d", SheetName, last),
			Values:     fmt.Sprintf("%s!$D$2:$D$%d", SheetName, last),
		}},
		Title:  []excelize.RichTextRun{{Text: "Deviation from median (%)"}},
		Legend: excelize.ChartLegend{Position: "none"},
	})
	if err != nil {
		return fmt.Errorf("add chart: %w", err)
	}
	return nil
}
