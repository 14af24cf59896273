// Package normalize coerces reconciled field candidates into the canonical
// InvoiceRecord. Normalization never fails: a value that cannot be coerced
// is logged, kept as raw text on the field and treated as absent, so the
// exporter can still see what was read off the invoice.
package normalize

import (
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/exportops/customs-risk-service/internal/models"
)

// Normalizer holds the coercion constants.
type Normalizer struct {
	dateFormats []string
}

// NewNormalizer creates a normalizer with the accepted date layouts, tried
// in order with first match winning.
func NewNormalizer(dateFormats []string) *Normalizer {
	return &Normalizer{dateFormats: dateFormats}
}

// Normalize builds a complete InvoiceRecord from the reconciled candidates.
// Every schema field is materialized; fields without a usable candidate get
// Present=false and Source=NONE.
func (n *Normalizer) Normalize(candidates []models.RawFieldCandidate) *models.InvoiceRecord {
	byName := make(map[string]models.RawFieldCandidate, len(candidates))
	for _, c := range candidates {
		byName[c.FieldName] = c
	}

	record := &models.InvoiceRecord{
		InvoiceNumber: n.textField(byName[models.FieldInvoiceNumber], models.FieldInvoiceNumber),
		InvoiceDate:   n.dateField(byName[models.FieldInvoiceDate]),
		Seller:        n.textField(byName[models.FieldSeller], models.FieldSeller),
		Buyer:         n.textField(byName[models.FieldBuyer], models.FieldBuyer),
		Currency:      n.textField(byName[models.FieldCurrency], models.FieldCurrency),
		Subtotal:      n.amountField(byName[models.FieldSubtotal]),
		Tax:           n.amountField(byName[models.FieldTax]),
		Total:         n.amountField(byName[models.FieldTotal]),
		IECCode:       n.textField(byName[models.FieldIECCode], models.FieldIECCode),
		GSTIN:         n.textField(byName[models.FieldGSTIN], models.FieldGSTIN),
		HSNCode:       n.textField(byName[models.FieldHSNCode], models.FieldHSNCode),
		Incoterm:      n.textField(byName[models.FieldIncoterm], models.FieldIncoterm),
		LUTReference:  n.textField(byName[models.FieldLUTReference], models.FieldLUTReference),
	}
	return record
}

func (n *Normalizer) textField(c models.RawFieldCandidate, name string) models.TextField {
	raw, ok := rawValue(c)
	if !ok {
		return models.TextField{FieldMeta: absentMeta()}
	}

	var value string
	if models.KindOf(name) == models.KindCode {
		value = cleanCode(raw)
	} else {
		value = strings.TrimSpace(raw)
	}
	if value == "" {
		log.Printf("[Normalize] %s: blank after coercion, treating as absent", name)
		return models.TextField{FieldMeta: malformedMeta(c, raw)}
	}
	return models.TextField{
		FieldMeta: models.FieldMeta{Raw: raw, Present: true, Source: c.Source},
		Value:     value,
	}
}

func (n *Normalizer) dateField(c models.RawFieldCandidate) models.DateField {
	raw, ok := rawValue(c)
	if !ok {
		return models.DateField{FieldMeta: absentMeta()}
	}

	trimmed := strings.TrimSpace(raw)
	for _, layout := range n.dateFormats {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return models.DateField{
				FieldMeta: models.FieldMeta{Raw: raw, Present: true, Source: c.Source},
				Value:     t,
			}
		}
	}
	log.Printf("[Normalize] %s: no accepted date layout matches %q", c.FieldName, raw)
	return models.DateField{FieldMeta: malformedMeta(c, raw)}
}

func (n *Normalizer) amountField(c models.RawFieldCandidate) models.AmountField {
	raw, ok := rawValue(c)
	if !ok {
		return models.AmountField{FieldMeta: absentMeta()}
	}

	cleaned := cleanAmount(raw)
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		log.Printf("[Normalize] %s: cannot parse amount %q: %v", c.FieldName, raw, err)
		return models.AmountField{FieldMeta: malformedMeta(c, raw)}
	}
	return models.AmountField{
		FieldMeta: models.FieldMeta{Raw: raw, Present: true, Source: c.Source},
		Value:     d.Round(2),
	}
}

func rawValue(c models.RawFieldCandidate) (string, bool) {
	if c.FieldName == "" || c.Value == nil || c.Source == models.SourceNone {
		return "", false
	}
	return *c.Value, true
}

func absentMeta() models.FieldMeta {
	return models.FieldMeta{Present: false, Source: models.SourceNone}
}

// malformedMeta keeps the raw text and the producing source on a field
// whose value failed coercion. Presence stays false so the rule engine
// treats it like a genuinely missing field.
func malformedMeta(c models.RawFieldCandidate, raw string) models.FieldMeta {
	return models.FieldMeta{Raw: raw, Present: false, Source: c.Source}
}

// cleanCode upper-cases and strips all whitespace.
func cleanCode(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}

// cleanAmount removes thousands separators and currency symbol noise,
// keeping digits, the decimal point and a leading sign.
func cleanAmount(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		case r == '-' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}
