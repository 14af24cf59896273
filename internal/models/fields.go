package models

import "regexp"

// Schema field names. These are the wire names used by both extraction
// passes, the reconciler and the exported report.
const (
	FieldInvoiceNumber = "invoice_number"
	FieldInvoiceDate   = "invoice_date"
	FieldSeller        = "seller"
	FieldBuyer         = "buyer"
	FieldCurrency      = "currency"
	FieldSubtotal      = "subtotal"
	FieldTax           = "tax"
	FieldTotal         = "total"
	FieldIECCode       = "iec_code"
	FieldGSTIN         = "gstin"
	FieldHSNCode       = "hsn_code"
	FieldIncoterm      = "incoterm"
	FieldLUTReference  = "lut_reference"
)

// FieldNames lists every schema field in declaration order. Reconciliation
// emits exactly one candidate per entry, and the normalizer materializes
// every entry on the record.
var FieldNames = []string{
	FieldInvoiceNumber,
	FieldInvoiceDate,
	FieldSeller,
	FieldBuyer,
	FieldCurrency,
	FieldSubtotal,
	FieldTax,
	FieldTotal,
	FieldIECCode,
	FieldGSTIN,
	FieldHSNCode,
	FieldIncoterm,
	FieldLUTReference,
}

// FieldKind drives per-field coercion in the normalizer.
type FieldKind int

const (
	KindText FieldKind = iota
	KindDate
	KindAmount
	KindCode // upper-cased, whitespace-stripped text
)

var fieldKinds = map[string]FieldKind{
	FieldInvoiceNumber: KindCode,
	FieldInvoiceDate:   KindDate,
	FieldSeller:        KindText,
	FieldBuyer:         KindText,
	FieldCurrency:      KindCode,
	FieldSubtotal:      KindAmount,
	FieldTax:           KindAmount,
	FieldTotal:         KindAmount,
	FieldIECCode:       KindCode,
	FieldGSTIN:         KindCode,
	FieldHSNCode:       KindCode,
	FieldIncoterm:      KindCode,
	FieldLUTReference:  KindCode,
}

// KindOf returns the coercion kind for a schema field. Unknown names
// default to plain text.
func KindOf(name string) FieldKind {
	if k, ok := fieldKinds[name]; ok {
		return k
	}
	return KindText
}

// Lightweight format checks used by the reconciler to gate AI candidates.
// These are deliberately looser than the rule engine's format rules: the
// reconciler only needs to reject obviously malformed AI output, the rules
// produce the user-facing findings.
var (
	gstinLooseRe  = regexp.MustCompile(`^[0-9A-Za-z]{15}$`)
	iecLooseRe    = regexp.MustCompile(`^[0-9]{10}$`)
	hsnLooseRe    = regexp.MustCompile(`^[0-9]{4}([0-9]{2}([0-9]{2})?)?$`)
	currencyRe    = regexp.MustCompile(`^[A-Za-z]{3}$`)
	incotermRe    = regexp.MustCompile(`^[A-Za-z]{3}$`)
	amountLooseRe = regexp.MustCompile(`^[^0-9]{0,4}[0-9][0-9,. ]*$`)
)

// PlausibleFormat reports whether value looks structurally valid for the
// named field. Fields without a dedicated pattern accept any non-empty value.
func PlausibleFormat(name, value string) bool {
	if value == "" {
		return false
	}
	switch name {
	case FieldGSTIN:
		return gstinLooseRe.MatchString(value)
	case FieldIECCode:
		return iecLooseRe.MatchString(value)
	case FieldHSNCode:
		return hsnLooseRe.MatchString(value)
	case FieldCurrency:
		return currencyRe.MatchString(value)
	case FieldIncoterm:
		return incotermRe.MatchString(value)
	case FieldSubtotal, FieldTax, FieldTotal:
		return amountLooseRe.MatchString(value)
	default:
		return true
	}
}

// GSTINStructureRe is the full 15-character GSTIN layout: state code, PAN,
// entity digit, the literal Z, checksum. Used by the rule engine; checksum
// verification against the registry is out of scope.
var GSTINStructureRe = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][0-9A-Z]Z[0-9A-Z]$`)

// HSNStructureRe accepts the 4/6/8 digit HSN layouts.
var HSNStructureRe = regexp.MustCompile(`^([0-9]{4}|[0-9]{6}|[0-9]{8})$`)

// IECStructureRe is the 10-digit Importer-Exporter Code layout.
var IECStructureRe = regexp.MustCompile(`^[0-9]{10}$`)
