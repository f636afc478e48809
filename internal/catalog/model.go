// Package catalog holds the per-user price book: tasks, materials and their
// options, job areas, rate templates and kits.
package catalog

import (
	"errors"

	"github.com/BuzzBrady/quotecraft/internal/pricing"
)

var (
	ErrNotFound = errors.New("catalog: not found")
	// ErrReadOnly is returned when a user tries to change a global catalog entry.
	ErrReadOnly = errors.New("catalog: entry is read-only")
	ErrInvalid  = errors.New("catalog: invalid entry")
)

// Kind tells global catalog entries apart from a user's own entries.
type Kind string

const (
	KindCatalog Kind = "catalog"
	KindCustom  Kind = "custom"
)

// EditableBy reports whether userID may change an entry of this kind owned by ownerID.
func (k Kind) EditableBy(ownerID, userID string) error {
	switch k {
	case KindCatalog:
		return ErrReadOnly
	case KindCustom:
		if ownerID != userID {
			return ErrNotFound
		}
		return nil
	}
	return ErrNotFound
}

func kindFor(userID string) Kind {
	if userID == "" {
		return KindCatalog
	}
	return KindCustom
}

type Task struct {
	ID          string `json:"id"`
	UserID      string `json:"userId,omitempty"`
	Kind        Kind   `json:"kind"`
	Name        string `json:"name"`
	Description string `json:"description"`
	DefaultUnit string `json:"defaultUnit"`
}

type MaterialOption struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Material struct {
	ID              string           `json:"id"`
	UserID          string           `json:"userId,omitempty"`
	Kind            Kind             `json:"kind"`
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	DefaultRate     *float64         `json:"defaultRate"`
	DefaultUnit     string           `json:"defaultUnit"`
	OptionsRequired bool             `json:"optionsRequired"`
	Options         []MaterialOption `json:"options"`
}

// Option looks up one of the material's options.
func (m Material) Option(id string) (MaterialOption, bool) {
	for _, o := range m.Options {
		if o.ID == id {
			return o, true
		}
	}
	return MaterialOption{}, false
}

// Area is a job section such as a room. Quote lines are grouped by area name.
type Area struct {
	ID     string `json:"id"`
	UserID string `json:"userId,omitempty"`
	Kind   Kind   `json:"kind"`
	Name   string `json:"name"`
	Order  int    `json:"order"`
}

// Rate is a stored rate template owned by a user.
type Rate struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
	pricing.RateTemplate
}

type KitLine struct {
	TaskID           string            `json:"taskId"`
	MaterialID       string            `json:"materialId"`
	MaterialOptionID string            `json:"materialOptionId"`
	DisplayName      string            `json:"displayName"`
	Description      string            `json:"description"`
	Quantity         float64           `json:"quantity"`
	OverrideRate     string            `json:"overrideRate"`
	InputType        pricing.InputType `json:"inputType"`
	Order            int               `json:"order"`
}

// Kit is a reusable bundle of lines applied to a quote section in one step.
type Kit struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Lines       []KitLine `json:"lines"`
}
