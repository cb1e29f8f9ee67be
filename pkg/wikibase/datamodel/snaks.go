package datamodel

import (
	"encoding/json"

	"github.com/diwise/wikibase-datamodel/pkg/wikibase/errors"
)

// Discriminators of the "snaktype" member of a snak document
const (
	JSONSnakTypeValue     string = "value"
	JSONSnakTypeSomeValue string = "somevalue"
	JSONSnakTypeNoValue   string = "novalue"
)

// Snak is an assertion about a property: it has a given value, some unknown value, or no value
type Snak interface {
	contentful
	json.Marshaler

	PropertyID() *PropertyIDValue
	SnakType() string

	Equals(other any) bool
	Hash() uint64
	String() string

	acceptSnak(d snakDispatcher)
}

type SnakVisitor[T any] interface {
	VisitValueSnak(s *ValueSnak) T
	VisitSomeValueSnak(s *SomeValueSnak) T
	VisitNoValueSnak(s *NoValueSnak) T
}

type snakDispatcher interface {
	visitValueSnak(s *ValueSnak)
	visitSomeValueSnak(s *SomeValueSnak)
	visitNoValueSnak(s *NoValueSnak)
}

type snakVisitorAdapter[T any] struct {
	visitor SnakVisitor[T]
	result  T
}

func (a *snakVisitorAdapter[T]) visitValueSnak(s *ValueSnak) {
	a.result = a.visitor.VisitValueSnak(s)
}
func (a *snakVisitorAdapter[T]) visitSomeValueSnak(s *SomeValueSnak) {
	a.result = a.visitor.VisitSomeValueSnak(s)
}
func (a *snakVisitorAdapter[T]) visitNoValueSnak(s *NoValueSnak) {
	a.result = a.visitor.VisitNoValueSnak(s)
}

// AcceptSnak calls the visitor method matching the kind of s and returns its result
func AcceptSnak[T any](s Snak, visitor SnakVisitor[T]) T {
	adapter := &snakVisitorAdapter[T]{visitor: visitor}
	s.acceptSnak(adapter)
	return adapter.result
}

type jsonSnak struct {
	SnakType  string          `json:"snaktype"`
	Property  string          `json:"property"`
	DataValue json.RawMessage `json:"datavalue,omitempty"`
	DataType  string          `json:"datatype,omitempty"`
}

// ValueSnak states that a property has a specific value
type ValueSnak struct {
	property *PropertyIDValue
	value    Value
	datatype string
}

type ValueSnakDecoratorFunc func(s *ValueSnak)

// Datatype attaches the property datatype (such as "wikibase-item") that the wire format
// repeats on every value snak. It is informational and not part of the snak's content.
func Datatype(datatype string) ValueSnakDecoratorFunc {
	return func(s *ValueSnak) {
		s.datatype = datatype
	}
}

func NewValueSnak(property *PropertyIDValue, value Value, decorators ...ValueSnakDecoratorFunc) (*ValueSnak, error) {
	if property == nil {
		return nil, errors.NewNullNotAllowedError("snak property")
	}

	if value == nil {
		return nil, errors.NewNullNotAllowedError("snak value")
	}

	s := &ValueSnak{property: property, value: value}
	for _, decorator := range decorators {
		decorator(s)
	}

	return s, nil
}

func (s *ValueSnak) PropertyID() *PropertyIDValue { return s.property }
func (s *ValueSnak) SnakType() string             { return JSONSnakTypeValue }
func (s *ValueSnak) Value() Value                 { return s.value }
func (s *ValueSnak) Datatype() string             { return s.datatype }

func (s *ValueSnak) acceptSnak(d snakDispatcher) { d.visitValueSnak(s) }

func (s *ValueSnak) writeContent(w *contentWriter) {
	w.begin("ValueSnak")
	w.nested("property", s.property)
	w.nested("value", s.value)
	w.end()
}

func (s *ValueSnak) Equals(other any) bool { return Equal(s, other) }
func (s *ValueSnak) Hash() uint64          { return Hash(s) }
func (s *ValueSnak) String() string        { return ToString(s) }

func (s *ValueSnak) MarshalJSON() ([]byte, error) {
	datavalue, err := s.value.MarshalJSON()
	if err != nil {
		return nil, err
	}

	return json.Marshal(jsonSnak{
		SnakType:  JSONSnakTypeValue,
		Property:  s.property.ID(),
		DataValue: datavalue,
		DataType:  s.datatype,
	})
}

// SomeValueSnak states that a property has a value that is not known
type SomeValueSnak struct {
	property *PropertyIDValue
}

func NewSomeValueSnak(property *PropertyIDValue) (*SomeValueSnak, error) {
	if property == nil {
		return nil, errors.NewNullNotAllowedError("snak property")
	}
	return &SomeValueSnak{property: property}, nil
}

func (s *SomeValueSnak) PropertyID() *PropertyIDValue { return s.property }
func (s *SomeValueSnak) SnakType() string             { return JSONSnakTypeSomeValue }

func (s *SomeValueSnak) acceptSnak(d snakDispatcher) { d.visitSomeValueSnak(s) }

func (s *SomeValueSnak) writeContent(w *contentWriter) {
	w.begin("SomeValueSnak")
	w.nested("property", s.property)
	w.end()
}

func (s *SomeValueSnak) Equals(other any) bool { return Equal(s, other) }
func (s *SomeValueSnak) Hash() uint64          { return Hash(s) }
func (s *SomeValueSnak) String() string        { return ToString(s) }

func (s *SomeValueSnak) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonSnak{SnakType: JSONSnakTypeSomeValue, Property: s.property.ID()})
}

// NoValueSnak states that a property has no value
type NoValueSnak struct {
	property *PropertyIDValue
}

func NewNoValueSnak(property *PropertyIDValue) (*NoValueSnak, error) {
	if property == nil {
		return nil, errors.NewNullNotAllowedError("snak property")
	}
	return &NoValueSnak{property: property}, nil
}

func (s *NoValueSnak) PropertyID() *PropertyIDValue { return s.property }
func (s *NoValueSnak) SnakType() string             { return JSONSnakTypeNoValue }

func (s *NoValueSnak) acceptSnak(d snakDispatcher) { d.visitNoValueSnak(s) }

func (s *NoValueSnak) writeContent(w *contentWriter) {
	w.begin("NoValueSnak")
	w.nested("property", s.property)
	w.end()
}

func (s *NoValueSnak) Equals(other any) bool { return Equal(s, other) }
func (s *NoValueSnak) Hash() uint64          { return Hash(s) }
func (s *NoValueSnak) String() string        { return ToString(s) }

func (s *NoValueSnak) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonSnak{SnakType: JSONSnakTypeNoValue, Property: s.property.ID()})
}
