package quotes

import (
	"cmp"
	"slices"
)

// Total sums the cached line totals.
func Total(lines []Line) float64 {
	var total float64
	for _, l := range lines {
		total += l.LineTotal
	}
	return total
}

// Section is a group of lines sharing a section name.
type Section struct {
	Name     string  `json:"name"`
	Lines    []Line  `json:"lines"`
	Subtotal float64 `json:"subtotal"`
}

// GroupBySection orders lines by Order and groups them by section. Sections
// appear in the order of their first line.
func GroupBySection(lines []Line) []Section {
	sorted := slices.Clone(lines)
	slices.SortStableFunc(sorted, func(a, b Line) int { return cmp.Compare(a.Order, b.Order) })

	sections := []Section{}
	index := map[string]int{}
	for _, l := range sorted {
		i, ok := index[l.Section]
		if !ok {
			i = len(sections)
			index[l.Section] = i
			sections = append(sections, Section{Name: l.Section})
		}
		sections[i].Lines = append(sections[i].Lines, l)
		sections[i].Subtotal += l.LineTotal
	}
	return sections
}
