package export

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/BuzzBrady/quotecraft/internal/pricing"
	"github.com/BuzzBrady/quotecraft/internal/quotes"
)

var (
	grey       = &props.Color{Red: 80, Green: 80, Blue: 80}
	headerFill = &props.Cell{BackgroundColor: &props.Color{Red: 33, Green: 37, Blue: 41}}
	white      = &props.Color{Red: 255, Green: 255, Blue: 255}
	sectionBg  = &props.Cell{BackgroundColor: &props.Color{Red: 240, Green: 240, Blue: 240}}
)

// pdfColumn is one column of the line table at a given detail level.
type pdfColumn struct {
	title string
	size  int
	align align.Type
	value func(l quotes.Line, currency string) string
}

// RenderPDF lays out doc on A4 portrait pages with maroto.
func RenderPDF(doc Document) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).
		WithTopMargin(12).
		WithRightMargin(12).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	addPDFHeader(m, doc)
	if doc.Level == LevelSummary {
		addPDFSummary(m, doc)
	} else {
		addPDFLines(m, doc, pdfColumns(doc.Level))
	}
	addPDFTotal(m, doc)
	addPDFFooter(m, doc)

	out, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate quote pdf: %w", err)
	}
	return out.GetBytes(), nil
}

func addPDFHeader(m core.Maroto, doc Document) {
	m.AddRows(
		row.New(12).Add(
			col.New(8).Add(text.New(doc.CompanyName, props.Text{Size: 16, Style: fontstyle.Bold})),
			col.New(4).Add(text.New("Quote "+doc.Number, props.Text{Size: 12, Style: fontstyle.Bold, Align: align.Right})),
		),
		row.New(6).Add(
			col.New(8).Add(text.New(doc.JobTitle, props.Text{Size: 10, Style: fontstyle.Bold})),
			col.New(4).Add(text.New("Date: "+doc.GeneratedAt.Format("2 Jan 2006"), props.Text{Size: 9, Align: align.Right, Color: grey})),
		),
	)

	client := doc.ClientName
	if doc.ClientEmail != "" {
		client += " <" + doc.ClientEmail + ">"
	}
	for _, line := range []string{client, doc.JobAddress} {
		if line == "" {
			continue
		}
		m.AddRows(row.New(5).Add(col.New(12).Add(text.New(line, props.Text{Size: 9, Color: grey}))))
	}
	m.AddRows(row.New(6))
}

func addPDFSummary(m core.Maroto, doc Document) {
	m.AddRows(row.New(8).Add(
		col.New(8).Add(text.New("Section", props.Text{Size: 9, Style: fontstyle.Bold, Color: white, Left: 2, Top: 2})).WithStyle(headerFill),
		col.New(4).Add(text.New("Subtotal", props.Text{Size: 9, Style: fontstyle.Bold, Color: white, Align: align.Right, Right: 2, Top: 2})).WithStyle(headerFill),
	))
	for _, s := range doc.Sections {
		m.AddRows(row.New(7).Add(
			col.New(8).Add(text.New(sectionName(s), props.Text{Size: 9, Left: 2, Top: 1.5})),
			col.New(4).Add(text.New(FormatMoney(s.Subtotal, doc.Currency), props.Text{Size: 9, Align: align.Right, Right: 2, Top: 1.5})),
		))
	}
}

func addPDFLines(m core.Maroto, doc Document, columns []pdfColumn) {
	header := make([]core.Col, 0, len(columns))
	for _, c := range columns {
		header = append(header, col.New(c.size).Add(
			text.New(c.title, props.Text{Size: 8, Style: fontstyle.Bold, Color: white, Align: c.align, Left: 1, Right: 1, Top: 2}),
		).WithStyle(headerFill))
	}
	m.AddRows(row.New(8).Add(header...))

	for _, s := range doc.Sections {
		m.AddRows(row.New(7).Add(
			col.New(12).Add(text.New(sectionName(s), props.Text{Size: 9, Style: fontstyle.Bold, Left: 1, Top: 1.5})).WithStyle(sectionBg),
		))

		for _, l := range s.Lines {
			cols := make([]core.Col, 0, len(columns))
			for _, c := range columns {
				cols = append(cols, col.New(c.size).Add(
					text.New(c.value(l, doc.Currency), props.Text{Size: 8, Align: c.align, Left: 1, Right: 1, Top: 1.5}),
				))
			}
			m.AddRows(row.New(6).Add(cols...))

			if doc.Level == LevelFull && l.Description != "" {
				m.AddRows(row.New(5).Add(
					col.New(12).Add(text.New(l.Description, props.Text{Size: 7, Color: grey, Left: 4})),
				))
			}
		}

		m.AddRows(row.New(7).Add(
			col.New(8).Add(text.New("Subtotal", props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Right, Top: 1.5})),
			col.New(4).Add(text.New(FormatMoney(s.Subtotal, doc.Currency), props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Right, Right: 1, Top: 1.5})),
		))
	}
}

func addPDFTotal(m core.Maroto, doc Document) {
	m.AddRows(
		row.New(4),
		row.New(9).Add(
			col.New(8).Add(text.New("Total", props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Right, Top: 2})).WithStyle(sectionBg),
			col.New(4).Add(text.New(FormatMoney(doc.Total, doc.Currency), props.Text{Size: 11, Style: fontstyle.Bold, Align: align.Right, Right: 2, Top: 2})).WithStyle(sectionBg),
		),
	)
}

func addPDFFooter(m core.Maroto, doc Document) {
	if doc.Notes != "" {
		m.AddRows(
			row.New(6),
			row.New(5).Add(col.New(12).Add(text.New("Notes", props.Text{Size: 9, Style: fontstyle.Bold}))),
			row.New(10).Add(col.New(12).Add(text.New(doc.Notes, props.Text{Size: 8}))),
		)
	}
	m.AddRows(
		row.New(8),
		row.New(5).Add(col.New(12).Add(text.New(
			"Generated "+doc.GeneratedAt.Format("2006-01-02 15:04"),
			props.Text{Size: 7, Color: grey, Align: align.Center},
		))),
	)
}

func pdfColumns(level Level) []pdfColumn {
	name := pdfColumn{title: "Item", size: 6, align: align.Left, value: func(l quotes.Line, _ string) string { return lineLabel(l) }}
	qty := pdfColumn{title: "Qty", size: 2, align: align.Right, value: func(l quotes.Line, _ string) string { return lineQty(l) }}
	unit := pdfColumn{title: "Unit", size: 2, align: align.Center, value: func(l quotes.Line, _ string) string { return l.Unit }}
	total := pdfColumn{title: "Total", size: 2, align: align.Right, value: func(l quotes.Line, cur string) string { return FormatMoney(l.LineTotal, cur) }}

	if level != LevelFull {
		return []pdfColumn{name, qty, unit, total}
	}

	name.size = 3
	qty.size = 1
	unit.size = 1
	return []pdfColumn{
		name,
		{title: "Option", size: 2, align: align.Left, value: func(l quotes.Line, _ string) string { return l.MaterialOptionName }},
		{title: "Mode", size: 1, align: align.Center, value: func(l quotes.Line, _ string) string { return string(l.InputType) }},
		qty,
		unit,
		{title: "Rate", size: 2, align: align.Right, value: func(l quotes.Line, cur string) string { return FormatMoney(l.ReferenceRate, cur) }},
		total,
	}
}

// lineLabel marks checkbox lines as optional add-ons.
func lineLabel(l quotes.Line) string {
	if l.InputType == pricing.InputCheckbox {
		return l.DisplayName + " (optional)"
	}
	return l.DisplayName
}

func lineQty(l quotes.Line) string {
	if l.Quantity == nil {
		return "-"
	}
	return formatQty(*l.Quantity)
}
