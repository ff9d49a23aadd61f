// Package export renders fetched collections as downloadable tables.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/hms/console/internal/domain/billing"
	"github.com/hms/console/internal/domain/emergency"
	"github.com/hms/console/internal/domain/finance"
	"github.com/hms/console/internal/domain/inventory"
)

// Format selects the output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// ParseFormat maps a user-supplied format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatJSON, FormatXLSX:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown export format %q (want csv, json or xlsx)", s)
	}
}

// Table is a flat, ordered view of a collection ready for encoding.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// Write encodes the table to w in the given format.
func (t Table) Write(w io.Writer, format Format) error {
	switch format {
	case FormatCSV:
		return t.writeCSV(w)
	case FormatJSON:
		return t.writeJSON(w)
	case FormatXLSX:
		return t.writeXLSX(w)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

func (t Table) writeCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range t.Rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func (t Table) writeJSON(w io.Writer) error {
	records := make([]map[string]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(map[string]string, len(t.Columns))
		for i, col := range t.Columns {
			if i < len(row) {
				rec[col] = row[i]
			}
		}
		records = append(records, rec)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func (t Table) writeXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := t.Name
	if sheet == "" {
		sheet = "Sheet1"
	}
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	header := make([]any, len(t.Columns))
	for i, col := range t.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header row: %w", err)
	}
	for i, row := range t.Rows {
		cells := make([]any, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("address row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if sheet != "Sheet1" {
		f.DeleteSheet("Sheet1")
	}

	_, err = f.WriteTo(w)
	return err
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func day(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// Bills flattens a billing collection.
func Bills(items []billing.Bill) Table {
	t := Table{
		Name:    "Bills",
		Columns: []string{"id", "patient", "description", "amount", "status", "createdAt"},
	}
	for _, b := range items {
		t.Rows = append(t.Rows, []string{b.ID, b.PatientName, b.Description, money(b.Amount), b.Status, day(b.CreatedAt)})
	}
	return t
}

// Emergencies flattens an emergency case collection.
func Emergencies(items []emergency.Emergency) Table {
	t := Table{
		Name:    "Emergencies",
		Columns: []string{"id", "patient", "severity", "location", "department", "status", "createdAt"},
	}
	for _, e := range items {
		t.Rows = append(t.Rows, []string{e.ID, e.PatientName, e.Severity, e.Location, e.Department, e.Status, day(e.CreatedAt)})
	}
	return t
}

// Inventory flattens a stock collection.
func Inventory(items []inventory.Item) Table {
	t := Table{
		Name:    "Inventory",
		Columns: []string{"id", "name", "category", "quantity", "reorderLevel", "lowStock"},
	}
	for _, i := range items {
		t.Rows = append(t.Rows, []string{
			i.ID, i.Name, i.Category,
			strconv.FormatFloat(i.Quantity, 'f', -1, 64),
			strconv.FormatFloat(i.ReorderLevel, 'f', -1, 64),
			strconv.FormatBool(i.LowStock()),
		})
	}
	return t
}

// Budgets flattens a budget collection.
func Budgets(items []finance.Budget) Table {
	t := Table{
		Name:    "Budgets",
		Columns: []string{"id", "department", "allocated", "spent", "remaining", "period"},
	}
	for _, b := range items {
		t.Rows = append(t.Rows, []string{b.ID, b.Department, money(b.Allocated), money(b.Spent), money(b.Remaining()), b.Period})
	}
	return t
}

// Reports flattens a financial report collection.
func Reports(items []finance.FinancialReport) Table {
	t := Table{
		Name:    "Reports",
		Columns: []string{"id", "period", "revenue", "expenses", "net"},
	}
	for _, r := range items {
		t.Rows = append(t.Rows, []string{r.ID, r.Period, money(r.Revenue), money(r.Expenses), money(r.Net())})
	}
	return t
}
