package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Source identifies which extraction pass produced a field value.
type Source string

const (
	SourceAI       Source = "AI"
	SourceFallback Source = "RULE_FALLBACK"
	SourceNone     Source = "NONE"
)

// RawFieldCandidate is one extraction pass's proposal for a schema field.
// Candidates are never mutated after creation and are discarded once the
// reconciler has chosen a winner per field.
type RawFieldCandidate struct {
	FieldName  string  `json:"field_name"`
	Value      *string `json:"value"`
	Source     Source  `json:"source"`
	Confidence float64 `json:"confidence"`
}

// FieldMeta carries presence and provenance shared by all field kinds.
// Raw keeps the original extracted text even when coercion failed, so the
// exporter can see what was read off the invoice.
type FieldMeta struct {
	Raw     string `json:"raw,omitempty"`
	Present bool   `json:"present"`
	Source  Source `json:"source"`
}

// TextField holds a string-valued invoice field (names, codes, references).
type TextField struct {
	FieldMeta
	Value string `json:"value,omitempty"`
}

// DateField holds a date-valued invoice field.
type DateField struct {
	FieldMeta
	Value time.Time `json:"value,omitempty"`
}

// AmountField holds a monetary invoice field, rounded to 2 places.
type AmountField struct {
	FieldMeta
	Value decimal.Decimal `json:"value"`
}

// InvoiceRecord is the canonical invoice built by the normalizer. Every
// schema field is always materialized: a field no extraction pass produced
// has Present=false and Source=NONE. The record is immutable once built;
// the what-if simulator works on copies (see WithOverrides).
type InvoiceRecord struct {
	InvoiceNumber TextField   `json:"invoice_number"`
	InvoiceDate   DateField   `json:"invoice_date"`
	Seller        TextField   `json:"seller"`
	Buyer         TextField   `json:"buyer"`
	Currency      TextField   `json:"currency"`
	Subtotal      AmountField `json:"subtotal"`
	Tax           AmountField `json:"tax"`
	Total         AmountField `json:"total"`
	IECCode       TextField   `json:"iec_code"`
	GSTIN         TextField   `json:"gstin"`
	HSNCode       TextField   `json:"hsn_code"`
	Incoterm      TextField   `json:"incoterm"`
	LUTReference  TextField   `json:"lut_reference"`
}

// ErrInvariant marks a construction bug in the record itself, as opposed to
// a problem with the exporter's invoice. It aborts evaluation.
var ErrInvariant = errors.New("invoice record invariant violation")

// TextFieldByName returns the named text field. The second result is false
// for amount/date fields and unknown names.
func (r *InvoiceRecord) TextFieldByName(name string) (TextField, bool) {
	switch name {
	case FieldInvoiceNumber:
		return r.InvoiceNumber, true
	case FieldSeller:
		return r.Seller, true
	case FieldBuyer:
		return r.Buyer, true
	case FieldCurrency:
		return r.Currency, true
	case FieldIECCode:
		return r.IECCode, true
	case FieldGSTIN:
		return r.GSTIN, true
	case FieldHSNCode:
		return r.HSNCode, true
	case FieldIncoterm:
		return r.Incoterm, true
	case FieldLUTReference:
		return r.LUTReference, true
	}
	return TextField{}, false
}

// FieldPresent reports whether the named schema field carries a usable value.
func (r *InvoiceRecord) FieldPresent(name string) bool {
	switch name {
	case FieldInvoiceDate:
		return r.InvoiceDate.Present
	case FieldSubtotal:
		return r.Subtotal.Present
	case FieldTax:
		return r.Tax.Present
	case FieldTotal:
		return r.Total.Present
	default:
		f, ok := r.TextFieldByName(name)
		return ok && f.Present
	}
}

// Validate checks the record's internal coherence. A failure here is a bug
// in record construction, never an exporter input problem.
func (r *InvoiceRecord) Validate() error {
	for _, name := range FieldNames {
		meta, err := r.metaByName(name)
		if err != nil {
			return err
		}
		if meta.Present && meta.Source == SourceNone {
			return fmt.Errorf("%w: field %s present without a source", ErrInvariant, name)
		}
		if meta.Source == "" {
			return fmt.Errorf("%w: field %s has no source marker", ErrInvariant, name)
		}
	}
	return nil
}

func (r *InvoiceRecord) metaByName(name string) (FieldMeta, error) {
	switch name {
	case FieldInvoiceDate:
		return r.InvoiceDate.FieldMeta, nil
	case FieldSubtotal:
		return r.Subtotal.FieldMeta, nil
	case FieldTax:
		return r.Tax.FieldMeta, nil
	case FieldTotal:
		return r.Total.FieldMeta, nil
	}
	if f, ok := r.TextFieldByName(name); ok {
		return f.FieldMeta, nil
	}
	return FieldMeta{}, fmt.Errorf("%w: unknown schema field %s", ErrInvariant, name)
}

// WithOverrides returns a copy of the record with the what-if simulator's
// adjustments applied. The receiver is left untouched.
func (r *InvoiceRecord) WithOverrides(total *decimal.Decimal, incoterm string) InvoiceRecord {
	out := *r
	if total != nil {
		out.Total = AmountField{
			FieldMeta: FieldMeta{Raw: total.StringFixed(2), Present: true, Source: r.Total.Source},
			Value:     total.Round(2),
		}
		if out.Total.Source == SourceNone {
			out.Total.Source = SourceFallback
		}
	}
	if incoterm != "" && incoterm != "UNCHANGED" {
		out.Incoterm = TextField{
			FieldMeta: FieldMeta{Raw: incoterm, Present: true, Source: r.Incoterm.Source},
			Value:     incoterm,
		}
		if out.Incoterm.Source == SourceNone {
			out.Incoterm.Source = SourceFallback
		}
	}
	return out
}
