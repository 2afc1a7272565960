// Package export renders transactions as an xlsx workbook.
package export

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/erazemk/ppestock/internal/model"
)

// SheetName is the single sheet of every exported workbook.
const SheetName = "Transactions"

// ErrNoTransactions means there was nothing to export.
var ErrNoTransactions = errors.New("no transactions to export")

// Header is the first row of the sheet.
var Header = []string{
	"#", "Date", "Time", "Type", "Employee", "Category", "Item", "Variant",
	"Brand", "Quantity", "Latitude", "Longitude", "Proof Image Name",
}

// columnWidths apply from column A onward.
var columnWidths = []float64{4, 12, 10, 26, 16, 26, 10, 12, 8, 10, 11, 22}

// Row is one flattened transaction.
type Row struct {
	N         int
	Date      string
	Time      string
	Type      string
	Employee  string
	Category  string
	Item      string
	Variant   string
	Brand     string
	Quantity  int
	Latitude  *float64
	Longitude *float64
	ProofName string
}

func (r Row) values() []any {
	lat, lng := any(""), any("")
	if r.Latitude != nil {
		lat = *r.Latitude
	}
	if r.Longitude != nil {
		lng = *r.Longitude
	}
	return []any{
		r.N, r.Date, r.Time, r.Type, r.Employee, r.Category, r.Item, r.Variant,
		r.Brand, r.Quantity, lat, lng, r.ProofName,
	}
}

// Rows flattens transactions in order. proofNames maps proof refs to file
// names; a missing entry leaves the column empty.
func Rows(txs []model.Transaction, proofNames map[string]string) []Row {
	rows := make([]Row, len(txs))
	for i, t := range txs {
		r := Row{
			N:         i + 1,
			Date:      t.Date,
			Time:      clock(t.Time),
			Type:      string(t.Type),
			Employee:  t.Actor(),
			Category:  t.Category,
			Item:      t.Item,
			Variant:   t.Variant,
			Brand:     t.Brand,
			Quantity:  t.Quantity,
			ProofName: proofNames[t.ProofRef],
		}
		if t.Location != nil {
			lat, lng := t.Location.Lat, t.Location.Lng
			r.Latitude, r.Longitude = &lat, &lng
		}
		rows[i] = r
	}
	return rows
}

func clock(stamp string) string {
	ts, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		return stamp
	}
	return ts.Format(time.TimeOnly)
}

// Workbook builds a workbook from rows. The caller closes the file.
func Workbook(rows []Row) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("creating header style: %w", err)
	}
	last, _ := excelize.ColumnNumberToName(len(Header))
	if err := f.SetCellStyle(SheetName, "A1", last+"1", bold); err != nil {
		f.Close()
		return nil, fmt.Errorf("styling header: %w", err)
	}

	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := r.values()
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			f.Close()
			return nil, fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	for i, w := range columnWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(SheetName, col, col, w); err != nil {
			f.Close()
			return nil, fmt.Errorf("setting width of column %s: %w", col, err)
		}
	}
	return f, nil
}

// Daily builds the workbook for one date (YYYY-MM-DD).
func Daily(txs []model.Transaction, date string, proofNames map[string]string) (*excelize.File, error) {
	var day []model.Transaction
	for _, t := range txs {
		if t.Date == date {
			day = append(day, t)
		}
	}
	if len(day) == 0 {
		return nil, fmt.Errorf("%s: %w", date, ErrNoTransactions)
	}
	return Workbook(Rows(day, proofNames))
}

// Write writes the daily workbook for date to w.
func Write(w io.Writer, txs []model.Transaction, date string, proofNames map[string]string) error {
	f, err := Daily(txs, date, proofNames)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// FileName is the download name for a date's export.
func FileName(date string) string {
	return "Transactions_" + date + ".xlsx"
}
