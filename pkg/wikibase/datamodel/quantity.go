package datamodel

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/diwise/wikibase-datamodel/pkg/wikibase/errors"
)

// Unitless is the unit of a quantity that has no unit
const Unitless string = "1"

// QuantityValue is a decimal amount with an optional interval of uncertainty and a unit IRI
type QuantityValue struct {
	amount     decimal.Decimal
	lowerBound *decimal.Decimal
	upperBound *decimal.Decimal
	unit       string
}

type jsonQuantityValue struct {
	Type  string            `json:"type"`
	Value jsonInnerQuantity `json:"value"`
}

type jsonInnerQuantity struct {
	Amount     string  `json:"amount"`
	Unit       string  `json:"unit"`
	UpperBound *string `json:"upperBound,omitempty"`
	LowerBound *string `json:"lowerBound,omitempty"`
}

type QuantityDecoratorFunc func(q *QuantityValue)

// Bounds sets the interval the actual amount lies within
func Bounds(lower, upper decimal.Decimal) QuantityDecoratorFunc {
	return func(q *QuantityValue) {
		q.lowerBound = &lower
		q.upperBound = &upper
	}
}

// NewQuantityValue creates a quantity. Use Unitless for amounts without a unit.
func NewQuantityValue(amount decimal.Decimal, unit string, decorators ...QuantityDecoratorFunc) (*QuantityValue, error) {
	q := &QuantityValue{
		amount: amount,
		unit:   unit,
	}

	for _, decorator := range decorators {
		decorator(q)
	}

	if q.unit == "" {
		return nil, errors.NewNullNotAllowedError("quantity unit")
	}

	if (q.lowerBound == nil) != (q.upperBound == nil) {
		return nil, errors.NewInvalidArgumentError("lower and upper bound must either both be given or both be omitted")
	}

	if q.lowerBound != nil {
		if q.lowerBound.GreaterThan(q.amount) || q.upperBound.LessThan(q.amount) {
			return nil, errors.NewInvalidArgumentError(fmt.Sprintf(
				"amount %s is not within [%s, %s]",
				formatDecimal(q.amount), formatDecimal(*q.lowerBound), formatDecimal(*q.upperBound),
			))
		}
	}

	return q, nil
}

func (q *QuantityValue) NumericValue() decimal.Decimal {
	return q.amount
}

// LowerBound returns the lower bound and whether the quantity has bounds at all
func (q *QuantityValue) LowerBound() (decimal.Decimal, bool) {
	if q.lowerBound == nil {
		return decimal.Decimal{}, false
	}
	return *q.lowerBound, true
}

// UpperBound returns the upper bound and whether the quantity has bounds at all
func (q *QuantityValue) UpperBound() (decimal.Decimal, bool) {
	if q.upperBound == nil {
		return decimal.Decimal{}, false
	}
	return *q.upperBound, true
}

func (q *QuantityValue) Unit() string {
	return q.unit
}

func (q *QuantityValue) accept(d valueDispatcher) { d.visitQuantity(q) }

func (q *QuantityValue) writeContent(w *contentWriter) {
	w.begin("QuantityValue")
	writeDecimal(w, "amount", &q.amount)
	writeDecimal(w, "lowerBound", q.lowerBound)
	writeDecimal(w, "upperBound", q.upperBound)
	w.str("unit", q.unit)
	w.end()
}

// writeDecimal keeps the scale, so 1.5 and 1.50 are different amounts
func writeDecimal(w *contentWriter, field string, d *decimal.Decimal) {
	if d == nil {
		w.str(field, "")
		return
	}
	w.str(field, d.Coefficient().String()+"e"+fmt.Sprint(d.Exponent()))
}

func (q *QuantityValue) Equals(other any) bool { return Equal(q, other) }
func (q *QuantityValue) Hash() uint64          { return Hash(q) }
func (q *QuantityValue) String() string        { return ToString(q) }

func (q *QuantityValue) MarshalJSON() ([]byte, error) {
	inner := jsonInnerQuantity{
		Amount: formatDecimal(q.amount),
		Unit:   q.unit,
	}

	if q.upperBound != nil {
		upper := formatDecimal(*q.upperBound)
		lower := formatDecimal(*q.lowerBound)
		inner.UpperBound = &upper
		inner.LowerBound = &lower
	}

	return json.Marshal(jsonQuantityValue{Type: JSONValueTypeQuantity, Value: inner})
}

// formatDecimal writes a decimal the way the wire format expects it: with an explicit sign
// and without losing trailing zeros.
func formatDecimal(d decimal.Decimal) string {
	s := d.String()
	if d.Exponent() < 0 {
		s = d.StringFixed(-d.Exponent())
	}

	if d.Sign() >= 0 {
		return "+" + s
	}

	return s
}

func parseDecimal(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimPrefix(s, "+"))
	if err != nil {
		return decimal.Decimal{}, errors.NewFormatError(field, err)
	}
	return d, nil
}

func quantityValueFromInner(inner jsonInnerQuantity) (*QuantityValue, error) {
	amount, err := parseDecimal("value.amount", inner.Amount)
	if err != nil {
		return nil, err
	}

	decorators := []QuantityDecoratorFunc{}

	if inner.LowerBound != nil || inner.UpperBound != nil {
		if inner.LowerBound == nil || inner.UpperBound == nil {
			return nil, errors.NewFormatError("value", fmt.Errorf("quantity has only one bound"))
		}

		lower, err := parseDecimal("value.lowerBound", *inner.LowerBound)
		if err != nil {
			return nil, err
		}

		upper, err := parseDecimal("value.upperBound", *inner.UpperBound)
		if err != nil {
			return nil, err
		}

		decorators = append(decorators, Bounds(lower, upper))
	}

	q, err := NewQuantityValue(amount, inner.Unit, decorators...)
	if err != nil {
		return nil, errors.NewFormatError("value", err)
	}

	return q, nil
}
