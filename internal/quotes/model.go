// Package quotes turns catalog selections into priced quote lines and
// persists quotes with their ordered lines.
package quotes

import (
	"errors"
	"fmt"
	"time"

	"github.com/BuzzBrady/quotecraft/internal/pricing"
)

var (
	ErrNotFound = errors.New("quotes: not found")
	// ErrLocked is returned when changing an accepted or rejected quote.
	ErrLocked        = errors.New("quotes: quote is locked")
	ErrInvalidStatus = errors.New("quotes: invalid status")
)

type Status string

const (
	StatusDraft    Status = "draft"
	StatusSent     Status = "sent"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// Locked reports whether a quote in this status is a closed historical record.
func (s Status) Locked() bool {
	return s == StatusAccepted || s == StatusRejected
}

// Line is one priced entry of a quote. Quantity is set for quantity lines and
// Price for price and checkbox lines. LineTotal is fixed when the line is
// built and is not recomputed when the catalog changes.
type Line struct {
	ID                 string            `json:"id"`
	Section            string            `json:"section"`
	TaskID             string            `json:"taskId"`
	MaterialID         string            `json:"materialId"`
	MaterialOptionID   string            `json:"materialOptionId"`
	MaterialOptionName string            `json:"materialOptionName"`
	DisplayName        string            `json:"displayName"`
	Description        string            `json:"description"`
	Quantity           *float64          `json:"quantity"`
	Price              *float64          `json:"price"`
	Unit               string            `json:"unit"`
	ReferenceRate      float64           `json:"referenceRate"`
	InputType          pricing.InputType `json:"inputType"`
	LineTotal          float64           `json:"lineTotal"`
	Order              int               `json:"order"`
	KitTemplateID      string            `json:"kitTemplateId,omitempty"`
}

type Quote struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Number      string    `json:"number"`
	ClientName  string    `json:"clientName"`
	ClientEmail string    `json:"clientEmail"`
	JobTitle    string    `json:"jobTitle"`
	JobAddress  string    `json:"jobAddress"`
	Notes       string    `json:"notes"`
	Status      Status    `json:"status"`
	Lines       []Line    `json:"lines"`
	TotalAmount float64   `json:"totalAmount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Summary is the list view of a quote.
type Summary struct {
	ID          string    `json:"id"`
	Number      string    `json:"number"`
	ClientName  string    `json:"clientName"`
	JobTitle    string    `json:"jobTitle"`
	Status      Status    `json:"status"`
	TotalAmount float64   `json:"totalAmount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// LineDraft is what a user has entered for a line before it is priced.
// Quantity and OverrideRate are kept as typed so half-entered values coerce
// to zero instead of failing.
type LineDraft struct {
	Section          string            `json:"section"`
	TaskID           string            `json:"taskId"`
	MaterialID       string            `json:"materialId"`
	MaterialOptionID string            `json:"materialOptionId"`
	DisplayName      string            `json:"displayName"`
	Description      string            `json:"description"`
	Quantity         string            `json:"quantity"`
	OverrideRate     string            `json:"overrideRate"`
	InputType        pricing.InputType `json:"inputType"`
	KitTemplateID    string            `json:"kitTemplateId"`
}

// LineEdit is one entry of a quote update. When ID names a line already on the
// quote, that line keeps its saved pricing and only Section is taken from the
// edit; otherwise the embedded draft is priced.
type LineEdit struct {
	ID string `json:"id"`
	LineDraft
}

// ValidationError is a user-facing problem with a draft.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// FormatNumber renders a quote sequence number.
func FormatNumber(seq int64) string {
	return fmt.Sprintf("Q-%04d", seq)
}
