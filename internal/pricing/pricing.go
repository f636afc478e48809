package pricing

import (
	"math"
	"strconv"
	"strings"
)

// DefaultUnit is used when neither the rate nor the catalog supplies a unit.
const DefaultUnit = "item"

// InputType selects how a line total is computed from its inputs.
type InputType string

const (
	InputQuantity InputType = "quantity"
	InputPrice    InputType = "price"
	InputCheckbox InputType = "checkbox"
)

// Valid reports whether t is one of the known input modes.
func (t InputType) Valid() bool {
	switch t {
	case InputQuantity, InputPrice, InputCheckbox:
		return true
	}
	return false
}

// RateTemplate is a user-defined price for a task/material/option combination.
// An empty id field is a wildcard for that dimension.
type RateTemplate struct {
	TaskID           string    `json:"taskId"`
	MaterialID       string    `json:"materialId"`
	MaterialOptionID string    `json:"materialOptionId"`
	ReferenceRate    float64   `json:"referenceRate"`
	Unit             string    `json:"unit"`
	InputType        InputType `json:"inputType"`
}

// SelectionKey is the (task, material, option) triple being priced.
type SelectionKey struct {
	TaskID           string `json:"taskId"`
	MaterialID       string `json:"materialId"`
	MaterialOptionID string `json:"materialOptionId"`
}

// Tier identifies which fallback level produced a resolved rate.
type Tier int

const (
	TierNone Tier = iota
	TierExact
	TierTaskMaterial
	TierTask
)

func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierTaskMaterial:
		return "task_material"
	case TierTask:
		return "task"
	default:
		return "none"
	}
}

// ResolveRate returns the most specific rate for sel. Tiers are tried in order
// exact, task+material, task; within a tier the first record wins.
func ResolveRate(rates []RateTemplate, sel SelectionKey) (RateTemplate, Tier, bool) {
	for _, r := range rates {
		if r.TaskID == sel.TaskID && r.MaterialID == sel.MaterialID && r.MaterialOptionID == sel.MaterialOptionID {
			return r, TierExact, true
		}
	}

	if sel.MaterialID != "" {
		for _, r := range rates {
			if r.TaskID == sel.TaskID && r.MaterialID == sel.MaterialID && r.MaterialOptionID == "" {
				return r, TierTaskMaterial, true
			}
		}
	}

	if sel.TaskID != "" {
		for _, r := range rates {
			if r.TaskID == sel.TaskID && r.MaterialID == "" && r.MaterialOptionID == "" {
				return r, TierTask, true
			}
		}
	}

	return RateTemplate{}, TierNone, false
}

// Fallback carries the catalog defaults used when no rate was resolved.
type Fallback struct {
	MaterialSelected bool
	MaterialRate     *float64
	MaterialUnit     string
	TaskUnit         string
}

// LineInput groups everything needed to price one line.
type LineInput struct {
	// InputType is the caller's chosen mode. When empty or unknown the mode
	// is inferred from the rate and catalog.
	InputType InputType
	Quantity  string
	Override  string
	Rate      *RateTemplate
	Fallback  Fallback
}

// LinePrice is the outcome of pricing a line.
type LinePrice struct {
	Unit      string    `json:"unit"`
	Rate      float64   `json:"rate"`
	InputType InputType `json:"inputType"`
	Quantity  *float64  `json:"quantity"`
	LineTotal float64   `json:"lineTotal"`
}

// PriceLine computes the effective rate, unit, mode and total for a line.
// Invalid numeric input is coerced to zero; it never fails.
func PriceLine(in LineInput) LinePrice {
	out := LinePrice{
		Rate:      effectiveRate(in),
		Unit:      effectiveUnit(in.Rate, in.Fallback),
		InputType: in.InputType,
	}
	if !out.InputType.Valid() {
		out.InputType = EffectiveInputType(in.Rate, in.Fallback)
	}

	switch out.InputType {
	case InputQuantity:
		qty := ParseQuantity(in.Quantity)
		out.Quantity = &qty
		out.LineTotal = qty * out.Rate
	default:
		out.LineTotal = out.Rate
	}

	return out
}

// EffectiveInputType infers a mode when the caller has not chosen one.
// Hourly task units are priced flat like any other task without material.
func EffectiveInputType(rate *RateTemplate, fb Fallback) InputType {
	if rate != nil && rate.InputType.Valid() {
		return rate.InputType
	}
	if fb.MaterialSelected {
		return InputQuantity
	}
	return InputPrice
}

// ParseQuantity parses a user-entered quantity. Anything that is not a finite
// non-negative number is treated as 0.
func ParseQuantity(raw string) float64 {
	v, ok := parseFinite(raw)
	if !ok || v < 0 {
		return 0
	}
	return v
}

// ParseOverride parses a user-entered override rate.
func ParseOverride(raw string) (float64, bool) {
	return parseFinite(raw)
}

func parseFinite(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func effectiveRate(in LineInput) float64 {
	if v, ok := ParseOverride(in.Override); ok {
		return v
	}
	if in.Rate != nil {
		return in.Rate.ReferenceRate
	}
	if in.Fallback.MaterialRate != nil {
		return *in.Fallback.MaterialRate
	}
	return 0
}

func effectiveUnit(rate *RateTemplate, fb Fallback) string {
	if rate != nil && rate.Unit != "" {
		return rate.Unit
	}
	if fb.MaterialUnit != "" {
		return fb.MaterialUnit
	}
	if fb.TaskUnit != "" {
		return fb.TaskUnit
	}
	return DefaultUnit
}
