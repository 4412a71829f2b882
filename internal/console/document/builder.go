// Package document produces the XML body submitted to the ingestion service,
// either verbatim from pasted raw XML or from the guided form.
package document

import (
	"bytes"
	"encoding/xml"
	"strings"
)

const xmlDecl = `<?xml version="1.0"?>`

// Options tune guided-form output.
type Options struct {
	// EscapeValues XML-escapes field values. Off by default so the output
	// matches what operators have always seen.
	EscapeValues bool
}

// Build returns the document to submit. Raw input that is not blank after
// trimming wins and is returned exactly as given. Otherwise the guided form
// is rendered with trimmed values.
func Build(kind Kind, raw string, form GuidedForm, opts Options) string {
	if strings.TrimSpace(raw) != "" {
		return raw
	}
	v := valueFunc(opts)
	if kind == KindShipNotice {
		return buildShipNotice(form, v)
	}
	return buildPurchaseOrder(form, v)
}

// UsesRaw reports whether Build would submit raw unchanged.
func UsesRaw(raw string) bool {
	return strings.TrimSpace(raw) != ""
}

func buildPurchaseOrder(form GuidedForm, v func(string) string) string {
	var b strings.Builder
	b.WriteString(xmlDecl + "\n")
	b.WriteString("<order>\n")
	b.WriteString("  <poNumber>" + v(form.PONumber) + "</poNumber>\n")
	b.WriteString("</order>")
	return b.String()
}

func buildShipNotice(form GuidedForm, v func(string) string) string {
	items := make([]string, 0, len(form.Items))
	for _, it := range form.Items {
		items = append(items,
			"  <item>\n"+
				"    <itemIdentifier>"+v(it.SKU)+"</itemIdentifier>\n"+
				"    <quantityShipped>"+v(it.Quantity)+"</quantityShipped>\n"+
				"  </item>")
	}

	var b strings.Builder
	b.WriteString(xmlDecl + "\n")
	b.WriteString("<asn>\n")
	b.WriteString("  <shipmentIdentificationNumber>" + v(form.ShipmentID) + "</shipmentIdentificationNumber>\n")
	b.WriteString("  <poNumber>" + v(form.PONumber) + "</poNumber>\n")
	// An empty item list still leaves its line behind.
	b.WriteString(strings.Join(items, "\n") + "\n")
	b.WriteString("</asn>")
	return b.String()
}

func valueFunc(opts Options) func(string) string {
	if !opts.EscapeValues {
		return strings.TrimSpace
	}
	return func(s string) string {
		var buf bytes.Buffer
		_ = xml.EscapeText(&buf, []byte(strings.TrimSpace(s)))
		return buf.String()
	}
}
