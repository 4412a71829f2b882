package document

import (
	"fmt"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/errors"
)

// Kind is the trading-partner document type being submitted.
type Kind string

const (
	// KindPurchaseOrder is an X12 850.
	KindPurchaseOrder Kind = "850"
	// KindShipNotice is an X12 856 advance ship notice.
	KindShipNotice Kind = "856"
)

// ParseKind accepts "850" or "856".
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.TrimSpace(s)); k {
	case KindPurchaseOrder, KindShipNotice:
		return k, nil
	default:
		return "", apperrors.Newf(apperrors.ErrInvalidInput, 400, "document kind %q: want 850 or 856", s)
	}
}

func (k Kind) String() string { return string(k) }

// Label is a human-readable name for the kind.
func (k Kind) Label() string {
	switch k {
	case KindPurchaseOrder:
		return "850 purchase order"
	case KindShipNotice:
		return "856 ship notice"
	default:
		return fmt.Sprintf("unknown kind %q", string(k))
	}
}
