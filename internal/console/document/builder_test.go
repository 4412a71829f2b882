package document

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/errors"
)

func TestBuildPurchaseOrder(t *testing.T) {
	got := Build(KindPurchaseOrder, "", GuidedForm{PONumber: "  PO-1001 "}, Options{})
	want := "<?xml version=\"1.0\"?>\n<order>\n  <poNumber>PO-1001</poNumber>\n</order>"
	assert.Equal(t, want, got)
}

func TestBuildShipNotice(t *testing.T) {
	form := GuidedForm{
		PONumber:   "PO-1",
		ShipmentID: " SH-9 ",
		Items:      []LineItem{{SKU: "SKU-001", Quantity: "10"}, {SKU: " SKU-002", Quantity: "5 "}},
	}
	got := Build(KindShipNotice, "", form, Options{})
	want := "<?xml version=\"1.0\"?>\n<asn>\n" +
		"  <shipmentIdentificationNumber>SH-9</shipmentIdentificationNumber>\n" +
		"  <poNumber>PO-1</poNumber>\n" +
		"  <item>\n    <itemIdentifier>SKU-001</itemIdentifier>\n    <quantityShipped>10</quantityShipped>\n  </item>\n" +
		"  <item>\n    <itemIdentifier>SKU-002</itemIdentifier>\n    <quantityShipped>5</quantityShipped>\n  </item>\n" +
		"</asn>"
	assert.Equal(t, want, got)
}

func TestBuildShipNoticeNoItems(t *testing.T) {
	got := Build(KindShipNotice, "", GuidedForm{PONumber: "P", ShipmentID: "S"}, Options{})
	want := "<?xml version=\"1.0\"?>\n<asn>\n" +
		"  <shipmentIdentificationNumber>S</shipmentIdentificationNumber>\n" +
		"  <poNumber>P</poNumber>\n" +
		"\n" +
		"</asn>"
	assert.Equal(t, want, got)
}

func TestBuildRawWinsVerbatim(t *testing.T) {
	raw := "  <order><poNumber>X</poNumber></order>\n"
	for _, kind := range []Kind{KindPurchaseOrder, KindShipNotice} {
		got := Build(kind, raw, GuidedForm{PONumber: "ignored", Items: SampleItems()}, Options{EscapeValues: true})
		assert.Equal(t, raw, got, "kind %s", kind)
	}
}

func TestBuildBlankRawFallsBackToForm(t *testing.T) {
	got := Build(KindPurchaseOrder, " \n\t ", GuidedForm{PONumber: "PO-7"}, Options{})
	assert.Contains(t, got, "<poNumber>PO-7</poNumber>")
	assert.False(t, UsesRaw(" \n\t "))
}

func TestBuildEmptyFieldsStillWellFormed(t *testing.T) {
	got := Build(KindPurchaseOrder, "", GuidedForm{}, Options{})
	assert.Contains(t, got, "<poNumber></poNumber>")
}

func TestBuildEscaping(t *testing.T) {
	form := GuidedForm{PONumber: "A&B<1>"}

	plain := Build(KindPurchaseOrder, "", form, Options{})
	assert.Contains(t, plain, "<poNumber>A&B<1></poNumber>")

	escaped := Build(KindPurchaseOrder, "", form, Options{EscapeValues: true})
	assert.Contains(t, escaped, "<poNumber>A&amp;B&lt;1&gt;</poNumber>")
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind(" 856 ")
	require.NoError(t, err)
	assert.Equal(t, KindShipNotice, k)

	_, err = ParseKind("810")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestGuidedFormItems(t *testing.T) {
	f := GuidedForm{Items: SampleItems()}
	f.AddItem("SKU-003", "1")
	require.Len(t, f.Items, 3)

	require.NoError(t, f.RemoveItem(0))
	assert.Equal(t, "SKU-002", f.Items[0].SKU)

	err := f.RemoveItem(5)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	f.PONumber = "x"
	f.Clear()
	assert.Empty(t, f.Items)
	assert.Empty(t, f.PONumber)
}
