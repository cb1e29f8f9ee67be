package datamodel

import (
	"bytes"
	"encoding/json"

	"github.com/diwise/wikibase-datamodel/pkg/wikibase/errors"
)

// Discriminators of the "type" member of a value document
const (
	JSONValueTypeString           string = "string"
	JSONValueTypeEntityID         string = "wikibase-entityid"
	JSONValueTypeTime             string = "time"
	JSONValueTypeGlobeCoordinates string = "globecoordinate"
	JSONValueTypeQuantity         string = "quantity"
	JSONValueTypeMonolingualText  string = "monolingualtext"
)

// Value is the closed set of value kinds a snak can hold. Use Accept with a ValueVisitor
// to run kind specific logic.
type Value interface {
	contentful
	json.Marshaler

	Equals(other any) bool
	Hash() uint64
	String() string

	accept(d valueDispatcher)
}

// ValueVisitor has one method per value kind. Adding a kind adds a method here, so every
// visitor must be extended before the module compiles again.
type ValueVisitor[T any] interface {
	VisitString(v *StringValue) T
	VisitEntityID(v EntityIDValue) T
	VisitTime(v *TimeValue) T
	VisitGlobeCoordinates(v *GlobeCoordinatesValue) T
	VisitQuantity(v *QuantityValue) T
	VisitMonolingualText(v *MonolingualTextValue) T
	VisitUnsupported(v *UnsupportedValue) T
}

type valueDispatcher interface {
	visitString(v *StringValue)
	visitEntityID(v EntityIDValue)
	visitTime(v *TimeValue)
	visitGlobeCoordinates(v *GlobeCoordinatesValue)
	visitQuantity(v *QuantityValue)
	visitMonolingualText(v *MonolingualTextValue)
	visitUnsupported(v *UnsupportedValue)
}

type valueVisitorAdapter[T any] struct {
	visitor ValueVisitor[T]
	result  T
}

func (a *valueVisitorAdapter[T]) visitString(v *StringValue) { a.result = a.visitor.VisitString(v) }
func (a *valueVisitorAdapter[T]) visitEntityID(v EntityIDValue) {
	a.result = a.visitor.VisitEntityID(v)
}
func (a *valueVisitorAdapter[T]) visitTime(v *TimeValue) { a.result = a.visitor.VisitTime(v) }
func (a *valueVisitorAdapter[T]) visitGlobeCoordinates(v *GlobeCoordinatesValue) {
	a.result = a.visitor.VisitGlobeCoordinates(v)
}
func (a *valueVisitorAdapter[T]) visitQuantity(v *QuantityValue) {
	a.result = a.visitor.VisitQuantity(v)
}
func (a *valueVisitorAdapter[T]) visitMonolingualText(v *MonolingualTextValue) {
	a.result = a.visitor.VisitMonolingualText(v)
}
func (a *valueVisitorAdapter[T]) visitUnsupported(v *UnsupportedValue) {
	a.result = a.visitor.VisitUnsupported(v)
}

// Accept calls the visitor method matching the kind of v and returns its result
func Accept[T any](v Value, visitor ValueVisitor[T]) T {
	adapter := &valueVisitorAdapter[T]{visitor: visitor}
	v.accept(adapter)
	return adapter.result
}

// StringValue holds a plain string such as an external identifier or a media file name
type StringValue struct {
	value string
}

type jsonStringValue struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

func NewStringValue(value string) *StringValue {
	return &StringValue{value: value}
}

func (s *StringValue) Value() string {
	return s.value
}

func (s *StringValue) accept(d valueDispatcher) { d.visitString(s) }

func (s *StringValue) writeContent(w *contentWriter) {
	w.begin("StringValue")
	w.str("value", s.value)
	w.end()
}

func (s *StringValue) Equals(other any) bool { return Equal(s, other) }
func (s *StringValue) Hash() uint64          { return Hash(s) }
func (s *StringValue) String() string        { return ToString(s) }

func (s *StringValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonStringValue{Type: JSONValueTypeString, Value: s.value})
}

// MonolingualTextValue is a text in a single, explicitly given language
type MonolingualTextValue struct {
	value jsonInnerMonolingualText
}

type jsonMonolingualTextValue struct {
	Type  string                   `json:"type"`
	Value jsonInnerMonolingualText `json:"value"`
}

type jsonInnerMonolingualText struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

func NewMonolingualTextValue(text, languageCode string) *MonolingualTextValue {
	return &MonolingualTextValue{
		value: jsonInnerMonolingualText{Text: text, Language: languageCode},
	}
}

func (m *MonolingualTextValue) Text() string {
	return m.value.Text
}

func (m *MonolingualTextValue) LanguageCode() string {
	return m.value.Language
}

func (m *MonolingualTextValue) accept(d valueDispatcher) { d.visitMonolingualText(m) }

func (m *MonolingualTextValue) writeContent(w *contentWriter) {
	w.begin("MonolingualTextValue")
	w.str("text", m.value.Text)
	w.str("language", m.value.Language)
	w.end()
}

func (m *MonolingualTextValue) Equals(other any) bool { return Equal(m, other) }
func (m *MonolingualTextValue) Hash() uint64          { return Hash(m) }
func (m *MonolingualTextValue) String() string        { return ToString(m) }

func (m *MonolingualTextValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonMonolingualTextValue{Type: JSONValueTypeMonolingualText, Value: m.value})
}

// UnsupportedValue keeps a value document of a kind this model does not know. The document
// is carried verbatim so that it survives a serialization round trip.
type UnsupportedValue struct {
	typeJSON string
	document json.RawMessage
}

func newUnsupportedValue(typeJSON string, document []byte) (*UnsupportedValue, error) {
	compacted := &bytes.Buffer{}
	if err := json.Compact(compacted, document); err != nil {
		return nil, errors.NewFormatError("datavalue", err)
	}

	return &UnsupportedValue{
		typeJSON: typeJSON,
		document: compacted.Bytes(),
	}, nil
}

// TypeJSONString returns the unrecognized "type" discriminator of the document
func (u *UnsupportedValue) TypeJSONString() string {
	return u.typeJSON
}

func (u *UnsupportedValue) accept(d valueDispatcher) { d.visitUnsupported(u) }

func (u *UnsupportedValue) writeContent(w *contentWriter) {
	w.begin("UnsupportedValue")
	w.str("type", u.typeJSON)
	w.str("document", string(u.document))
	w.end()
}

func (u *UnsupportedValue) Equals(other any) bool { return Equal(u, other) }
func (u *UnsupportedValue) Hash() uint64          { return Hash(u) }
func (u *UnsupportedValue) String() string        { return ToString(u) }

func (u *UnsupportedValue) MarshalJSON() ([]byte, error) {
	return bytes.Clone(u.document), nil
}
