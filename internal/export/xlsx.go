package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

var xlsxHeaders = []string{"Item", "Description", "Option", "Mode", "Qty", "Unit", "Rate", "Total"}

// RenderXLSX writes doc as a single-sheet workbook. Amounts are numeric cells
// so the sheet can be recalculated; all text is guarded against formulas.
func RenderXLSX(doc Document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(doc)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	widths := []float64{36, 40, 16, 10, 8, 8, 12, 14}
	for i, w := range widths {
		name, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, name, name, w); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", name, err)
		}
	}

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}})
	if err != nil {
		return nil, fmt.Errorf("create title style: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#333333"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	sectionStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#F0F0F0"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create section style: %w", err)
	}
	moneyFmt := "#,##0.00"
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt, Border: thinBorders()})
	if err != nil {
		return nil, fmt.Errorf("create money style: %w", err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 11}, CustomNumFmt: &moneyFmt})
	if err != nil {
		return nil, fmt.Errorf("create total style: %w", err)
	}

	cw := &cellWriter{f: f, sheet: sheet}
	cw.value("A1", sanitizeExcelCell(doc.CompanyName))
	cw.style("A1", "A1", titleStyle)
	cw.value("A2", "Quote "+doc.Number)
	cw.value("B2", "Date: "+doc.GeneratedAt.Format("2006-01-02"))
	cw.value("A3", sanitizeExcelCell(doc.ClientName))
	cw.value("B3", sanitizeExcelCell(doc.JobTitle))
	cw.value("C3", "Currency: "+doc.Currency)

	const headerRow = 5
	for i, h := range xlsxHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, headerRow)
		if err != nil {
			return nil, fmt.Errorf("header cell %d: %w", i+1, err)
		}
		cw.value(cell, h)
	}
	cw.style("A5", "H5", headerStyle)

	row := headerRow + 1
	for _, s := range doc.Sections {
		r := fmt.Sprint(row)
		cw.value("A"+r, sanitizeExcelCell(sectionName(s)))
		cw.style("A"+r, "H"+r, sectionStyle)
		row++

		for _, l := range s.Lines {
			r = fmt.Sprint(row)
			cw.value("A"+r, sanitizeExcelCell(lineLabel(l)))
			cw.value("B"+r, sanitizeExcelCell(l.Description))
			cw.value("C"+r, sanitizeExcelCell(l.MaterialOptionName))
			cw.value("D"+r, string(l.InputType))
			if l.Quantity != nil {
				cw.value("E"+r, *l.Quantity)
			}
			cw.value("F"+r, sanitizeExcelCell(l.Unit))
			cw.value("G"+r, l.ReferenceRate)
			cw.value("H"+r, l.LineTotal)
			cw.style("G"+r, "H"+r, moneyStyle)
			row++
		}

		r = fmt.Sprint(row)
		cw.value("G"+r, "Subtotal")
		cw.value("H"+r, s.Subtotal)
		cw.style("G"+r, "H"+r, totalStyle)
		row += 2
	}

	r := fmt.Sprint(row)
	cw.value("G"+r, "Total")
	cw.value("H"+r, doc.Total)
	cw.style("G"+r, "H"+r, totalStyle)

	if doc.Notes != "" {
		row += 2
		cw.value(fmt.Sprintf("A%d", row), "Notes")
		cw.value(fmt.Sprintf("B%d", row), sanitizeExcelCell(doc.Notes))
	}

	if cw.err != nil {
		return nil, cw.err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write quote xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func sheetName(doc Document) string {
	if doc.Number == "" {
		return "Quote"
	}
	return doc.Number
}

// sanitizeExcelCell prefixes values that a spreadsheet would treat as a
// formula with a single quote.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{Type: side, Color: "#000000", Style: 1}
	}
	return borders
}

// cellWriter keeps the first cell error so the layout code reads straight
// through; later writes are skipped once one has failed.
type cellWriter struct {
	f     *excelize.File
	sheet string
	err   error
}

func (w *cellWriter) value(cell string, v any) {
	if w.err != nil {
		return
	}
	if err := w.f.SetCellValue(w.sheet, cell, v); err != nil {
		w.err = fmt.Errorf("set cell %s: %w", cell, err)
	}
}

func (w *cellWriter) style(from, to string, styleID int) {
	if w.err != nil {
		return
	}
	if err := w.f.SetCellStyle(w.sheet, from, to, styleID); err != nil {
		w.err = fmt.Errorf("style cells %s:%s: %w", from, to, err)
	}
}
