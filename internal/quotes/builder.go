package quotes

import (
	"strconv"
	"strings"

	"github.com/BuzzBrady/quotecraft/internal/catalog"
	"github.com/BuzzBrady/quotecraft/internal/pricing"
	"github.com/BuzzBrady/quotecraft/internal/textutil"
)

// Builder prices drafts against a catalog snapshot. The zero value is usable.
type Builder struct {
	// OnResolve, when set, is called with the tier of every rate lookup.
	OnResolve func(pricing.Tier)
}

// Line validates d, resolves its rate and prices it. Errors are always
// *ValidationError.
func (b Builder) Line(snap *catalog.Snapshot, d LineDraft) (Line, error) {
	if d.TaskID == "" && d.MaterialID == "" {
		return Line{}, &ValidationError{Field: "taskId", Message: "Please select a task or material"}
	}

	var (
		task     catalog.Task
		material catalog.Material
		option   catalog.MaterialOption
		ok       bool
	)
	if d.TaskID != "" {
		if task, ok = snap.Task(d.TaskID); !ok {
			return Line{}, &ValidationError{Field: "taskId", Message: "Unknown task"}
		}
	}
	if d.MaterialID != "" {
		if material, ok = snap.Material(d.MaterialID); !ok {
			return Line{}, &ValidationError{Field: "materialId", Message: "Unknown material"}
		}
	}
	switch {
	case d.MaterialOptionID != "" && d.MaterialID == "":
		return Line{}, &ValidationError{Field: "materialOptionId", Message: "Please select a material before choosing an option"}
	case d.MaterialOptionID != "":
		if option, ok = material.Option(d.MaterialOptionID); !ok {
			return Line{}, &ValidationError{Field: "materialOptionId", Message: "Option does not belong to this material"}
		}
	case material.OptionsRequired:
		return Line{}, &ValidationError{Field: "materialOptionId", Message: "Please select an option for this material"}
	}

	sel := pricing.SelectionKey{TaskID: d.TaskID, MaterialID: d.MaterialID, MaterialOptionID: d.MaterialOptionID}
	rate, tier, found := pricing.ResolveRate(snap.Rates(), sel)
	if b.OnResolve != nil {
		b.OnResolve(tier)
	}

	in := pricing.LineInput{
		InputType: d.InputType,
		Quantity:  d.Quantity,
		Override:  d.OverrideRate,
		Fallback: pricing.Fallback{
			MaterialSelected: d.MaterialID != "",
			MaterialRate:     material.DefaultRate,
			MaterialUnit:     material.DefaultUnit,
			TaskUnit:         task.DefaultUnit,
		},
	}
	if found {
		in.Rate = &rate
	}
	priced := pricing.PriceLine(in)

	line := Line{
		Section:            textutil.Clean(d.Section),
		TaskID:             d.TaskID,
		MaterialID:         d.MaterialID,
		MaterialOptionID:   d.MaterialOptionID,
		MaterialOptionName: option.Name,
		DisplayName:        textutil.Clean(d.DisplayName),
		Description:        textutil.Clean(d.Description),
		Quantity:           priced.Quantity,
		Unit:               priced.Unit,
		ReferenceRate:      priced.Rate,
		InputType:          priced.InputType,
		LineTotal:          priced.LineTotal,
		KitTemplateID:      d.KitTemplateID,
	}
	if priced.InputType != pricing.InputQuantity {
		price := priced.Rate
		line.Price = &price
	}
	if line.DisplayName == "" {
		line.DisplayName = displayName(task, material, option)
	}
	return line, nil
}

// Lines builds every draft and orders the result 0..n-1. The first invalid
// draft stops the build; its field is prefixed with the draft index.
func (b Builder) Lines(snap *catalog.Snapshot, drafts []LineDraft) ([]Line, error) {
	lines := make([]Line, 0, len(drafts))
	for i, d := range drafts {
		line, err := b.Line(snap, d)
		if err != nil {
			return nil, indexed(i, err)
		}
		line.Order = i
		lines = append(lines, line)
	}
	return lines, nil
}

// Revise rebuilds a quote's lines from edits. An edit naming a stored line
// is applied to that line without consulting the catalog, so catalog changes
// never reprice saved work. Unknown ids are treated as new drafts.
func (b Builder) Revise(snap *catalog.Snapshot, stored []Line, edits []LineEdit) ([]Line, error) {
	byID := make(map[string]Line, len(stored))
	for _, l := range stored {
		byID[l.ID] = l
	}

	lines := make([]Line, 0, len(edits))
	for i, e := range edits {
		line, kept := byID[e.ID]
		if kept {
			line = reviseStored(line, e.LineDraft)
		} else {
			var err error
			if line, err = b.Line(snap, e.LineDraft); err != nil {
				return nil, indexed(i, err)
			}
		}
		line.Order = i
		lines = append(lines, line)
	}
	return lines, nil
}

// reviseStored applies a draft to a saved line. Selection ids stay as saved.
// Text always follows the draft, except that an empty display name keeps the
// saved one. When the draft sets a quantity, an override or a mode, the line
// is repriced against its own saved rate and unit.
func reviseStored(line Line, d LineDraft) Line {
	line.Section = textutil.Clean(d.Section)
	line.Description = textutil.Clean(d.Description)
	if name := textutil.Clean(d.DisplayName); name != "" {
		line.DisplayName = name
	}

	if d.Quantity == "" && d.OverrideRate == "" && !d.InputType.Valid() {
		return line
	}

	mode := line.InputType
	if d.InputType.Valid() {
		mode = d.InputType
	}
	qty := d.Quantity
	if qty == "" && line.Quantity != nil {
		qty = strconv.FormatFloat(*line.Quantity, 'f', -1, 64)
	}

	priced := pricing.PriceLine(pricing.LineInput{
		InputType: mode,
		Quantity:  qty,
		Override:  d.OverrideRate,
		Rate:      &pricing.RateTemplate{ReferenceRate: line.ReferenceRate, Unit: line.Unit, InputType: mode},
	})
	line.InputType = priced.InputType
	line.ReferenceRate = priced.Rate
	line.Unit = priced.Unit
	line.Quantity = priced.Quantity
	line.LineTotal = priced.LineTotal
	line.Price = nil
	if priced.InputType != pricing.InputQuantity {
		price := priced.Rate
		line.Price = &price
	}
	return line
}

// ApplyKit expands a kit into priced lines for section, numbered from
// startOrder. Every line is tagged with the kit id.
func (b Builder) ApplyKit(snap *catalog.Snapshot, kitID, section string, startOrder int) ([]Line, error) {
	kit, ok := snap.Kit(kitID)
	if !ok {
		return nil, &ValidationError{Field: "kitId", Message: "Unknown kit"}
	}

	lines := make([]Line, 0, len(kit.Lines))
	for i, kl := range kit.Lines {
		line, err := b.Line(snap, LineDraft{
			Section:          section,
			TaskID:           kl.TaskID,
			MaterialID:       kl.MaterialID,
			MaterialOptionID: kl.MaterialOptionID,
			DisplayName:      kl.DisplayName,
			Description:      kl.Description,
			Quantity:         strconv.FormatFloat(kl.Quantity, 'f', -1, 64),
			OverrideRate:     kl.OverrideRate,
			InputType:        kl.InputType,
			KitTemplateID:    kit.ID,
		})
		if err != nil {
			return nil, indexed(i, err)
		}
		line.Order = startOrder + i
		lines = append(lines, line)
	}
	return lines, nil
}

func indexed(i int, err error) error {
	if ve, ok := err.(*ValidationError); ok {
		return &ValidationError{Field: "lines[" + strconv.Itoa(i) + "]." + ve.Field, Message: ve.Message}
	}
	return err
}

func displayName(task catalog.Task, material catalog.Material, option catalog.MaterialOption) string {
	parts := make([]string, 0, 2)
	if task.Name != "" {
		parts = append(parts, task.Name)
	}
	if material.Name != "" {
		parts = append(parts, material.Name)
	}
	name := strings.Join(parts, " - ")
	if option.Name != "" {
		name += " (" + option.Name + ")"
	}
	return name
}
