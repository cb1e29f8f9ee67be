package datamodel

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"

	"github.com/diwise/wikibase-datamodel/pkg/wikibase/errors"
)

// Values of the "entity-type" member of an entity id document
const (
	EntityTypeItem      string = "item"
	EntityTypeProperty  string = "property"
	EntityTypeLexeme    string = "lexeme"
	EntityTypeForm      string = "form"
	EntityTypeSense     string = "sense"
	EntityTypeMediaInfo string = "mediainfo"
)

// SiteWikidata is the site IRI of Wikidata entities
const SiteWikidata string = "http://www.wikidata.org/entity/"

var (
	itemIDPattern      = regexp.MustCompile(`^Q[1-9]\d{0,9}$`)
	propertyIDPattern  = regexp.MustCompile(`^P[1-9]\d{0,9}$`)
	lexemeIDPattern    = regexp.MustCompile(`^L[1-9]\d{0,9}$`)
	formIDPattern      = regexp.MustCompile(`^(L[1-9]\d{0,9})-F[1-9]\d{0,9}$`)
	senseIDPattern     = regexp.MustCompile(`^(L[1-9]\d{0,9})-S[1-9]\d{0,9}$`)
	mediaInfoIDPattern = regexp.MustCompile(`^M[1-9]\d{0,9}$`)
)

// EntityIDValue is a value referring to an entity on a given site
type EntityIDValue interface {
	Value

	ID() string
	SiteIRI() string
	EntityType() string
	IRI() string

	acceptEntityID(d entityIDDispatcher)
}

// EntityIDVisitor has one method per kind of entity id
type EntityIDVisitor[T any] interface {
	VisitItemID(v *ItemIDValue) T
	VisitPropertyID(v *PropertyIDValue) T
	VisitLexemeID(v *LexemeIDValue) T
	VisitFormID(v *FormIDValue) T
	VisitSenseID(v *SenseIDValue) T
	VisitMediaInfoID(v *MediaInfoIDValue) T
	VisitUnsupportedEntityID(v *UnsupportedEntityIDValue) T
}

type entityIDDispatcher interface {
	visitItemID(v *ItemIDValue)
	visitPropertyID(v *PropertyIDValue)
	visitLexemeID(v *LexemeIDValue)
	visitFormID(v *FormIDValue)
	visitSenseID(v *SenseIDValue)
	visitMediaInfoID(v *MediaInfoIDValue)
	visitUnsupportedEntityID(v *UnsupportedEntityIDValue)
}

type entityIDVisitorAdapter[T any] struct {
	visitor EntityIDVisitor[T]
	result  T
}

func (a *entityIDVisitorAdapter[T]) visitItemID(v *ItemIDValue) {
	a.result = a.visitor.VisitItemID(v)
}
func (a *entityIDVisitorAdapter[T]) visitPropertyID(v *PropertyIDValue) {
	a.result = a.visitor.VisitPropertyID(v)
}
func (a *entityIDVisitorAdapter[T]) visitLexemeID(v *LexemeIDValue) {
	a.result = a.visitor.VisitLexemeID(v)
}
func (a *entityIDVisitorAdapter[T]) visitFormID(v *FormIDValue) {
	a.result = a.visitor.VisitFormID(v)
}
func (a *entityIDVisitorAdapter[T]) visitSenseID(v *SenseIDValue) {
	a.result = a.visitor.VisitSenseID(v)
}
func (a *entityIDVisitorAdapter[T]) visitMediaInfoID(v *MediaInfoIDValue) {
	a.result = a.visitor.VisitMediaInfoID(v)
}
func (a *entityIDVisitorAdapter[T]) visitUnsupportedEntityID(v *UnsupportedEntityIDValue) {
	a.result = a.visitor.VisitUnsupportedEntityID(v)
}

// AcceptEntityID calls the visitor method matching the kind of id and returns its result
func AcceptEntityID[T any](id EntityIDValue, visitor EntityIDVisitor[T]) T {
	adapter := &entityIDVisitorAdapter[T]{visitor: visitor}
	id.acceptEntityID(adapter)
	return adapter.result
}

type jsonEntityIDValue struct {
	Type  string            `json:"type"`
	Value jsonInnerEntityID `json:"value"`
}

type jsonInnerEntityID struct {
	EntityType string `json:"entity-type"`
	NumericID  *int64 `json:"numeric-id,omitempty"`
	ID         string `json:"id,omitempty"`
}

// entityID holds what all kinds of entity ids share
type entityID struct {
	id      string
	siteIRI string
}

func (e entityID) ID() string      { return e.id }
func (e entityID) SiteIRI() string { return e.siteIRI }
func (e entityID) IRI() string     { return e.siteIRI + e.id }

func (e entityID) write(w *contentWriter, entityType string) {
	w.begin("EntityIdValue")
	w.str("entityType", entityType)
	w.str("id", e.id)
	w.str("siteIRI", e.siteIRI)
	w.end()
}

func (e entityID) marshal(entityType string, withNumericID bool) ([]byte, error) {
	inner := jsonInnerEntityID{EntityType: entityType, ID: e.id}

	if withNumericID {
		n, err := strconv.ParseInt(e.id[1:], 10, 64)
		if err != nil {
			return nil, err
		}
		inner.NumericID = &n
	}

	return json.Marshal(jsonEntityIDValue{Type: JSONValueTypeEntityID, Value: inner})
}

func newEntityID(id, siteIRI, kind string, pattern *regexp.Regexp) (entityID, error) {
	if !pattern.MatchString(id) {
		return entityID{}, errors.NewInvalidArgumentError(fmt.Sprintf("\"%s\" is not a valid %s id", id, kind))
	}

	return entityID{id: id, siteIRI: siteIRI}, nil
}

func numericIDOf(id string) int64 {
	n, _ := strconv.ParseInt(id[1:], 10, 64)
	return n
}

// ItemIDValue refers to an item, such as Q42
type ItemIDValue struct {
	entityID
}

func NewItemIDValue(id, siteIRI string) (*ItemIDValue, error) {
	e, err := newEntityID(id, siteIRI, EntityTypeItem, itemIDPattern)
	if err != nil {
		return nil, err
	}
	return &ItemIDValue{entityID: e}, nil
}

func (i *ItemIDValue) EntityType() string { return EntityTypeItem }
func (i *ItemIDValue) NumericID() int64   { return numericIDOf(i.id) }

func (i *ItemIDValue) accept(d valueDispatcher)            { d.visitEntityID(i) }
func (i *ItemIDValue) acceptEntityID(d entityIDDispatcher) { d.visitItemID(i) }
func (i *ItemIDValue) writeContent(w *contentWriter)       { i.write(w, EntityTypeItem) }
func (i *ItemIDValue) Equals(other any) bool               { return Equal(i, other) }
func (i *ItemIDValue) Hash() uint64                        { return Hash(i) }
func (i *ItemIDValue) String() string                      { return ToString(i) }
func (i *ItemIDValue) MarshalJSON() ([]byte, error)        { return i.marshal(EntityTypeItem, true) }

// PropertyIDValue refers to a property, such as P31
type PropertyIDValue struct {
	entityID
}

func NewPropertyIDValue(id, siteIRI string) (*PropertyIDValue, error) {
	e, err := newEntityID(id, siteIRI, EntityTypeProperty, propertyIDPattern)
	if err != nil {
		return nil, err
	}
	return &PropertyIDValue{entityID: e}, nil
}

func (p *PropertyIDValue) EntityType() string { return EntityTypeProperty }
func (p *PropertyIDValue) NumericID() int64   { return numericIDOf(p.id) }

func (p *PropertyIDValue) accept(d valueDispatcher)            { d.visitEntityID(p) }
func (p *PropertyIDValue) acceptEntityID(d entityIDDispatcher) { d.visitPropertyID(p) }
func (p *PropertyIDValue) writeContent(w *contentWriter)       { p.write(w, EntityTypeProperty) }
func (p *PropertyIDValue) Equals(other any) bool               { return Equal(p, other) }
func (p *PropertyIDValue) Hash() uint64                        { return Hash(p) }
func (p *PropertyIDValue) String() string                      { return ToString(p) }
func (p *PropertyIDValue) MarshalJSON() ([]byte, error)        { return p.marshal(EntityTypeProperty, true) }

// LexemeIDValue refers to a lexeme, such as L7
type LexemeIDValue struct {
	entityID
}

func NewLexemeIDValue(id, siteIRI string) (*LexemeIDValue, error) {
	e, err := newEntityID(id, siteIRI, EntityTypeLexeme, lexemeIDPattern)
	if err != nil {
		return nil, err
	}
	return &LexemeIDValue{entityID: e}, nil
}

func (l *LexemeIDValue) EntityType() string { return EntityTypeLexeme }
func (l *LexemeIDValue) NumericID() int64   { return numericIDOf(l.id) }

func (l *LexemeIDValue) accept(d valueDispatcher)            { d.visitEntityID(l) }
func (l *LexemeIDValue) acceptEntityID(d entityIDDispatcher) { d.visitLexemeID(l) }
func (l *LexemeIDValue) writeContent(w *contentWriter)       { l.write(w, EntityTypeLexeme) }
func (l *LexemeIDValue) Equals(other any) bool               { return Equal(l, other) }
func (l *LexemeIDValue) Hash() uint64                        { return Hash(l) }
func (l *LexemeIDValue) String() string                      { return ToString(l) }
func (l *LexemeIDValue) MarshalJSON() ([]byte, error)        { return l.marshal(EntityTypeLexeme, true) }

// FormIDValue refers to a form of a lexeme, such as L7-F2
type FormIDValue struct {
	entityID
	lexemeID string
}

func NewFormIDValue(id, siteIRI string) (*FormIDValue, error) {
	e, err := newEntityID(id, siteIRI, EntityTypeForm, formIDPattern)
	if err != nil {
		return nil, err
	}
	return &FormIDValue{entityID: e, lexemeID: formIDPattern.FindStringSubmatch(id)[1]}, nil
}

func (f *FormIDValue) EntityType() string { return EntityTypeForm }

// LexemeID returns the id of the lexeme this form belongs to
func (f *FormIDValue) LexemeID() *LexemeIDValue {
	return &LexemeIDValue{entityID: entityID{id: f.lexemeID, siteIRI: f.siteIRI}}
}

func (f *FormIDValue) accept(d valueDispatcher)            { d.visitEntityID(f) }
func (f *FormIDValue) acceptEntityID(d entityIDDispatcher) { d.visitFormID(f) }
func (f *FormIDValue) writeContent(w *contentWriter)       { f.write(w, EntityTypeForm) }
func (f *FormIDValue) Equals(other any) bool               { return Equal(f, other) }
func (f *FormIDValue) Hash() uint64                        { return Hash(f) }
func (f *FormIDValue) String() string                      { return ToString(f) }
func (f *FormIDValue) MarshalJSON() ([]byte, error)        { return f.marshal(EntityTypeForm, false) }

// SenseIDValue refers to a sense of a lexeme, such as L7-S1
type SenseIDValue struct {
	entityID
	lexemeID string
}

func NewSenseIDValue(id, siteIRI string) (*SenseIDValue, error) {
	e, err := newEntityID(id, siteIRI, EntityTypeSense, senseIDPattern)
	if err != nil {
		return nil, err
	}
	return &SenseIDValue{entityID: e, lexemeID: senseIDPattern.FindStringSubmatch(id)[1]}, nil
}

func (s *SenseIDValue) EntityType() string { return EntityTypeSense }

// LexemeID returns the id of the lexeme this sense belongs to
func (s *SenseIDValue) LexemeID() *LexemeIDValue {
	return &LexemeIDValue{entityID: entityID{id: s.lexemeID, siteIRI: s.siteIRI}}
}

func (s *SenseIDValue) accept(d valueDispatcher)            { d.visitEntityID(s) }
func (s *SenseIDValue) acceptEntityID(d entityIDDispatcher) { d.visitSenseID(s) }
func (s *SenseIDValue) writeContent(w *contentWriter)       { s.write(w, EntityTypeSense) }
func (s *SenseIDValue) Equals(other any) bool               { return Equal(s, other) }
func (s *SenseIDValue) Hash() uint64                        { return Hash(s) }
func (s *SenseIDValue) String() string                      { return ToString(s) }
func (s *SenseIDValue) MarshalJSON() ([]byte, error)        { return s.marshal(EntityTypeSense, false) }

// MediaInfoIDValue refers to the structured data of a media file, such as M5
type MediaInfoIDValue struct {
	entityID
}

func NewMediaInfoIDValue(id, siteIRI string) (*MediaInfoIDValue, error) {
	e, err := newEntityID(id, siteIRI, EntityTypeMediaInfo, mediaInfoIDPattern)
	if err != nil {
		return nil, err
	}
	return &MediaInfoIDValue{entityID: e}, nil
}

func (m *MediaInfoIDValue) EntityType() string { return EntityTypeMediaInfo }
func (m *MediaInfoIDValue) NumericID() int64   { return numericIDOf(m.id) }

func (m *MediaInfoIDValue) accept(d valueDispatcher)            { d.visitEntityID(m) }
func (m *MediaInfoIDValue) acceptEntityID(d entityIDDispatcher) { d.visitMediaInfoID(m) }
func (m *MediaInfoIDValue) writeContent(w *contentWriter)       { m.write(w, EntityTypeMediaInfo) }
func (m *MediaInfoIDValue) Equals(other any) bool               { return Equal(m, other) }
func (m *MediaInfoIDValue) Hash() uint64                        { return Hash(m) }
func (m *MediaInfoIDValue) String() string                      { return ToString(m) }
func (m *MediaInfoIDValue) MarshalJSON() ([]byte, error) {
	return m.marshal(EntityTypeMediaInfo, true)
}

// UnsupportedEntityIDValue refers to an entity of a type this model does not know. The
// inner value document is kept verbatim for serialization.
type UnsupportedEntityIDValue struct {
	entityID
	entityType string
	inner      json.RawMessage
}

func newUnsupportedEntityIDValue(inner jsonInnerEntityID, raw []byte, siteIRI string) (*UnsupportedEntityIDValue, error) {
	if inner.EntityType == "" {
		return nil, errors.NewFormatError("value.entity-type", fmt.Errorf("missing entity type"))
	}

	compacted := &bytes.Buffer{}
	if err := json.Compact(compacted, raw); err != nil {
		return nil, errors.NewFormatError("value", err)
	}

	return &UnsupportedEntityIDValue{
		entityID:   entityID{id: inner.ID, siteIRI: siteIRI},
		entityType: inner.EntityType,
		inner:      compacted.Bytes(),
	}, nil
}

func (u *UnsupportedEntityIDValue) EntityType() string { return u.entityType }

func (u *UnsupportedEntityIDValue) accept(d valueDispatcher) { d.visitEntityID(u) }
func (u *UnsupportedEntityIDValue) acceptEntityID(d entityIDDispatcher) {
	d.visitUnsupportedEntityID(u)
}

func (u *UnsupportedEntityIDValue) writeContent(w *contentWriter) {
	w.begin("UnsupportedEntityIdValue")
	w.str("entityType", u.entityType)
	w.str("id", u.id)
	w.str("siteIRI", u.siteIRI)
	w.str("document", string(u.inner))
	w.end()
}

func (u *UnsupportedEntityIDValue) Equals(other any) bool { return Equal(u, other) }
func (u *UnsupportedEntityIDValue) Hash() uint64          { return Hash(u) }
func (u *UnsupportedEntityIDValue) String() string        { return ToString(u) }

func (u *UnsupportedEntityIDValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  string          `json:"type"`
		Value json.RawMessage `json:"value"`
	}{
		Type:  JSONValueTypeEntityID,
		Value: u.inner,
	})
}

// NewEntityIDValue creates an entity id of the kind matching entityType. Unknown entity
// types are rejected; documents of unknown types are handled by the Deserializer.
func NewEntityIDValue(entityType, id, siteIRI string) (EntityIDValue, error) {
	switch entityType {
	case EntityTypeItem:
		return NewItemIDValue(id, siteIRI)
	case EntityTypeProperty:
		return NewPropertyIDValue(id, siteIRI)
	case EntityTypeLexeme:
		return NewLexemeIDValue(id, siteIRI)
	case EntityTypeForm:
		return NewFormIDValue(id, siteIRI)
	case EntityTypeSense:
		return NewSenseIDValue(id, siteIRI)
	case EntityTypeMediaInfo:
		return NewMediaInfoIDValue(id, siteIRI)
	default:
		return nil, errors.NewInvalidArgumentError(fmt.Sprintf("entity type \"%s\" is not supported", entityType))
	}
}

// entityIDPrefixes is used to rebuild ids from documents that only carry a numeric id
var entityIDPrefixes = map[string]string{
	EntityTypeItem:      "Q",
	EntityTypeProperty:  "P",
	EntityTypeLexeme:    "L",
	EntityTypeMediaInfo: "M",
}

func entityIDFromInner(inner jsonInnerEntityID, raw []byte, siteIRI string) (EntityIDValue, error) {
	id := inner.ID

	if id == "" && inner.NumericID != nil {
		if prefix, ok := entityIDPrefixes[inner.EntityType]; ok {
			id = prefix + strconv.FormatInt(*inner.NumericID, 10)
		}
	}

	if _, ok := entityIDPrefixes[inner.EntityType]; ok || inner.EntityType == EntityTypeForm || inner.EntityType == EntityTypeSense {
		if id == "" {
			return nil, errors.NewFormatError("value.id", fmt.Errorf("missing entity id"))
		}

		e, err := NewEntityIDValue(inner.EntityType, id, siteIRI)
		if err != nil {
			return nil, errors.NewFormatError("value.id", err)
		}

		if _, numbered := entityIDPrefixes[inner.EntityType]; numbered && inner.NumericID != nil {
			if numericIDOf(id) != *inner.NumericID {
				return nil, errors.NewFormatError("value.numeric-id", fmt.Errorf("numeric id %d does not match id %s", *inner.NumericID, id))
			}
		}

		return e, nil
	}

	return newUnsupportedEntityIDValue(inner, raw, siteIRI)
}
