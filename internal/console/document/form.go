package document

import (
	apperrors "github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/errors"
)

// LineItem is one shipped SKU on an 856. Quantity is kept as entered.
type LineItem struct {
	SKU      string `json:"sku" yaml:"sku"`
	Quantity string `json:"quantity" yaml:"quantity"`
}

// GuidedForm holds the field-by-field inputs used when no raw XML is given.
// ShipmentID and Items only apply to an 856.
type GuidedForm struct {
	PONumber   string
	ShipmentID string
	Items      []LineItem
}

// SampleItems are the rows a fresh console starts with.
func SampleItems() []LineItem {
	return []LineItem{
		{SKU: "SKU-001", Quantity: "10"},
		{SKU: "SKU-002", Quantity: "5"},
	}
}

// AddItem appends a row.
func (f *GuidedForm) AddItem(sku, quantity string) {
	f.Items = append(f.Items, LineItem{SKU: sku, Quantity: quantity})
}

// RemoveItem drops the row at the zero-based index.
func (f *GuidedForm) RemoveItem(index int) error {
	if index < 0 || index >= len(f.Items) {
		return apperrors.Newf(apperrors.ErrInvalidInput, 400, "item %d out of range (have %d)", index+1, len(f.Items))
	}
	f.Items = append(f.Items[:index], f.Items[index+1:]...)
	return nil
}

// Clear resets every field and removes all rows.
func (f *GuidedForm) Clear() {
	*f = GuidedForm{}
}
