// Package export renders saved quotes as PDF and XLSX documents.
package export

import (
	"fmt"
	"time"

	"github.com/BuzzBrady/quotecraft/internal/quotes"
)

// Level controls how much line detail an export shows.
type Level string

const (
	LevelSummary  Level = "summary"
	LevelStandard Level = "standardDetail"
	LevelFull     Level = "fullDetail"
)

// ParseLevel maps a query value to a Level. Empty means LevelStandard.
func ParseLevel(raw string) (Level, error) {
	switch Level(raw) {
	case "":
		return LevelStandard, nil
	case LevelSummary, LevelStandard, LevelFull:
		return Level(raw), nil
	}
	return "", fmt.Errorf("unknown export level %q", raw)
}

type Options struct {
	CompanyName string
	Currency    string
	Level       Level
	Now         time.Time
}

// Document is a quote prepared for rendering: lines grouped by section with
// subtotals already summed.
type Document struct {
	CompanyName string
	Currency    string
	Level       Level

	Number      string
	ClientName  string
	ClientEmail string
	JobTitle    string
	JobAddress  string
	Notes       string
	Status      quotes.Status

	Sections    []quotes.Section
	Total       float64
	GeneratedAt time.Time
}

func BuildDocument(q quotes.Quote, opts Options) Document {
	if opts.Level == "" {
		opts.Level = LevelStandard
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	return Document{
		CompanyName: opts.CompanyName,
		Currency:    opts.Currency,
		Level:       opts.Level,
		Number:      q.Number,
		ClientName:  q.ClientName,
		ClientEmail: q.ClientEmail,
		JobTitle:    q.JobTitle,
		JobAddress:  q.JobAddress,
		Notes:       q.Notes,
		Status:      q.Status,
		Sections:    quotes.GroupBySection(q.Lines),
		Total:       quotes.Total(q.Lines),
		GeneratedAt: opts.Now,
	}
}

// FileName returns the download name for the given extension.
func (d Document) FileName(ext string) string {
	name := d.Number
	if name == "" {
		name = "draft"
	}
	return fmt.Sprintf("quote-%s.%s", name, ext)
}

func sectionName(s quotes.Section) string {
	if s.Name == "" {
		return "General"
	}
	return s.Name
}
