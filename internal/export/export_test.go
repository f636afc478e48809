package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/BuzzBrady/quotecraft/internal/pricing"
	"github.com/BuzzBrady/quotecraft/internal/quotes"
)

func f64(v float64) *float64 { return &v }

func sampleDocument(level Level) Document {
	q := quotes.Quote{
		Number:     "Q-0007",
		ClientName: "Ana Lopez",
		JobTitle:   "=HYPERLINK(\"x\")",
		Notes:      "Valid for 30 days",
		Status:     quotes.StatusDraft,
		Lines: []quotes.Line{
			{Section: "Kitchen", DisplayName: "Paint walls", Quantity: f64(3), Unit: "hour", ReferenceRate: 50, InputType: pricing.InputQuantity, LineTotal: 150, Order: 0},
			{Section: "Bathroom", DisplayName: "Regrout", Price: f64(220), Unit: "item", ReferenceRate: 220, InputType: pricing.InputPrice, LineTotal: 220, Order: 1},
			{Section: "Kitchen", DisplayName: "Haul away", Description: "Skip bin", Price: f64(80), Unit: "item", ReferenceRate: 80, InputType: pricing.InputCheckbox, LineTotal: 80, Order: 2},
		},
	}
	return BuildDocument(q, Options{
		CompanyName: "Brady Trades",
		Currency:    "AUD",
		Level:       level,
		Now:         time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC),
	})
}

func TestBuildDocumentGroupsSections(t *testing.T) {
	doc := sampleDocument(LevelStandard)

	if len(doc.Sections) != 2 || doc.Sections[0].Name != "Kitchen" || doc.Sections[1].Name != "Bathroom" {
		t.Fatalf("unexpected sections: %+v", doc.Sections)
	}
	if doc.Sections[0].Subtotal != 230 || doc.Sections[1].Subtotal != 220 {
		t.Fatalf("unexpected subtotals: %v, %v", doc.Sections[0].Subtotal, doc.Sections[1].Subtotal)
	}
	if doc.Total != 450 {
		t.Fatalf("expected total 450, got %v", doc.Total)
	}
	if got := doc.FileName("pdf"); got != "quote-Q-0007.pdf" {
		t.Fatalf("unexpected file name %q", got)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		raw     string
		want    Level
		wantErr bool
	}{
		{"", LevelStandard, false},
		{"summary", LevelSummary, false},
		{"standardDetail", LevelStandard, false},
		{"fullDetail", LevelFull, false},
		{"everything", "", true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.raw)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Fatalf("ParseLevel(%q) = %q, %v", tt.raw, got, err)
		}
	}
}

func TestRenderPDFAllLevels(t *testing.T) {
	for _, level := range []Level{LevelSummary, LevelStandard, LevelFull} {
		t.Run(string(level), func(t *testing.T) {
			result, err := RenderPDF(sampleDocument(level))
			if err != nil {
				t.Fatalf("RenderPDF() error = %v", err)
			}
			if len(result) < 5 || string(result[:5]) != "%PDF-" {
				t.Fatalf("result does not start with PDF header")
			}
		})
	}
}

func TestRenderPDFEmptyQuote(t *testing.T) {
	doc := BuildDocument(quotes.Quote{}, Options{CompanyName: "Brady Trades", Currency: "AUD"})
	result, err := RenderPDF(doc)
	if err != nil {
		t.Fatalf("RenderPDF() error = %v", err)
	}
	if len(result) == 0 {
		t.Fatal("RenderPDF() returned empty bytes")
	}
}

func TestRenderXLSX(t *testing.T) {
	result, err := RenderXLSX(sampleDocument(LevelFull))
	if err != nil {
		t.Fatalf("RenderXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(result))
	if err != nil {
		t.Fatalf("result is not valid Excel: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 1 || sheets[0] != "Q-0007" {
		t.Fatalf("expected single sheet Q-0007, got %v", sheets)
	}

	expect := map[string]string{
		"A1":  "Brady Trades",
		"B3":  "'=HYPERLINK(\"x\")",
		"A6":  "Kitchen",
		"A7":  "Paint walls",
		"E7":  "3",
		"A8":  "Haul away (optional)",
		"B8":  "Skip bin",
		"G9":  "Subtotal",
		"A11": "Bathroom",
	}
	for cell, want := range expect {
		got, err := f.GetCellValue(sheets[0], cell)
		if err != nil {
			t.Fatalf("GetCellValue(%s): %v", cell, err)
		}
		if got != want {
			t.Fatalf("cell %s = %q, want %q", cell, got, want)
		}
	}

	total, err := f.GetCellValue(sheets[0], "H15", excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatalf("GetCellValue(H15): %v", err)
	}
	if total != "450" {
		t.Fatalf("expected grand total 450, got %q", total)
	}
}

func TestSanitizeExcelCell(t *testing.T) {
	tests := map[string]string{
		"":        "",
		"=1+1":    "'=1+1",
		"+61 400": "'+61 400",
		"-5":      "'-5",
		"@sum":    "'@sum",
		"Kitchen": "Kitchen",
		"1 = 1":   "1 = 1",
	}
	for in, want := range tests {
		if got := sanitizeExcelCell(in); got != want {
			t.Fatalf("sanitizeExcelCell(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount float64
		code   string
		want   string
	}{
		{1234.5, "AUD", "AUD 1,234.50"},
		{0, "aud", "AUD 0.00"},
		{1000000, "USD", "USD 1,000,000.00"},
		{12.5, "", "12.50"},
	}
	for _, tt := range tests {
		if got := FormatMoney(tt.amount, tt.code); got != tt.want {
			t.Fatalf("FormatMoney(%v, %q) = %q, want %q", tt.amount, tt.code, got, tt.want)
		}
	}
}

func TestCellWriterKeepsFirstError(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	cw := &cellWriter{f: f, sheet: "Sheet1"}
	cw.value("A1", "kept")
	cw.value("A0", "bad cell")
	cw.value("A2", "skipped")
	cw.style("Z0", "Z0", 0)

	if cw.err == nil || !strings.Contains(cw.err.Error(), "A0") {
		t.Fatalf("expected error for cell A0, got %v", cw.err)
	}
	if got, _ := f.GetCellValue("Sheet1", "A1"); got != "kept" {
		t.Fatalf("write before the error should land, got %q", got)
	}
	if got, _ := f.GetCellValue("Sheet1", "A2"); got != "" {
		t.Fatalf("writes after the error should be skipped, got %q", got)
	}
}
