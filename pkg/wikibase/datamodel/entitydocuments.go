package datamodel

import (
	"cmp"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/diwise/wikibase-datamodel/pkg/wikibase/errors"
)

// EntityDocument is an entity with its terms and statements, as found in a JSON dump or an
// entity data response. Statement groups keep the order they were added in, but that order
// is not content: the claims object of the wire format does not preserve it. Neither is the
// property datatype.
type EntityDocument struct {
	id           EntityIDValue
	labels       map[string]*MonolingualTextValue
	descriptions map[string]*MonolingualTextValue
	aliases      map[string][]*MonolingualTextValue
	statements   []*StatementGroup
	revisionID   int64
	datatype     string
}

type jsonEntityDocument struct {
	Type         string                         `json:"type"`
	ID           string                         `json:"id"`
	Datatype     string                         `json:"datatype,omitempty"`
	Labels       *orderedMap[jsonTerm]          `json:"labels,omitempty"`
	Descriptions *orderedMap[jsonTerm]          `json:"descriptions,omitempty"`
	Aliases      *orderedMap[[]jsonTerm]        `json:"aliases,omitempty"`
	Claims       *orderedMap[[]json.RawMessage] `json:"claims,omitempty"`
	Statements   *orderedMap[[]json.RawMessage] `json:"statements,omitempty"`
	LastRevID    int64                          `json:"lastrevid,omitempty"`
}

// jsonTerm is how labels, descriptions and aliases are written. It is the same information
// as a monolingual text value but with other member names.
type jsonTerm struct {
	Language string `json:"language"`
	Value    string `json:"value"`
}

type EntityDocumentDecoratorFunc func(e *EntityDocument)

func Label(language, text string) EntityDocumentDecoratorFunc {
	return func(e *EntityDocument) {
		e.labels[language] = NewMonolingualTextValue(text, language)
	}
}

func Description(language, text string) EntityDocumentDecoratorFunc {
	return func(e *EntityDocument) {
		e.descriptions[language] = NewMonolingualTextValue(text, language)
	}
}

// Alias adds an alias after any aliases already given for the language
func Alias(language, text string) EntityDocumentDecoratorFunc {
	return func(e *EntityDocument) {
		e.aliases[language] = append(e.aliases[language], NewMonolingualTextValue(text, language))
	}
}

func Statements(groups ...*StatementGroup) EntityDocumentDecoratorFunc {
	return func(e *EntityDocument) {
		e.statements = append(e.statements, groups...)
	}
}

func RevisionID(id int64) EntityDocumentDecoratorFunc {
	return func(e *EntityDocument) {
		e.revisionID = id
	}
}

// PropertyDatatype sets the datatype of a property entity, such as "wikibase-item"
func PropertyDatatype(datatype string) EntityDocumentDecoratorFunc {
	return func(e *EntityDocument) {
		e.datatype = datatype
	}
}

func NewEntityDocument(id EntityIDValue, decorators ...EntityDocumentDecoratorFunc) (*EntityDocument, error) {
	if id == nil {
		return nil, errors.NewNullNotAllowedError("entity id")
	}

	e := &EntityDocument{
		id:           id,
		labels:       map[string]*MonolingualTextValue{},
		descriptions: map[string]*MonolingualTextValue{},
		aliases:      map[string][]*MonolingualTextValue{},
		statements:   []*StatementGroup{},
	}

	for _, decorator := range decorators {
		decorator(e)
	}

	seen := map[string]bool{}
	for idx, g := range e.statements {
		if g == nil {
			return nil, errors.NewNullNotAllowedError(fmt.Sprintf("statement group %d", idx))
		}

		if !g.Subject().Equals(id) {
			return nil, errors.NewInvalidArgumentError(fmt.Sprintf(
				"statement group %d is about %s but the entity is %s", idx, g.Subject().ID(), id.ID(),
			))
		}

		property := g.Property().ID()
		if seen[property] {
			return nil, errors.NewInvalidArgumentError(fmt.Sprintf("more than one statement group for %s", property))
		}
		seen[property] = true
	}

	return e, nil
}

func (e *EntityDocument) ID() EntityIDValue { return e.id }
func (e *EntityDocument) RevisionID() int64 { return e.revisionID }
func (e *EntityDocument) Datatype() string  { return e.datatype }

func (e *EntityDocument) Labels() map[string]*MonolingualTextValue {
	return maps.Clone(e.labels)
}

func (e *EntityDocument) FindLabel(language string) (string, bool) {
	if l, ok := e.labels[language]; ok {
		return l.Text(), true
	}
	return "", false
}

func (e *EntityDocument) Descriptions() map[string]*MonolingualTextValue {
	return maps.Clone(e.descriptions)
}

func (e *EntityDocument) FindDescription(language string) (string, bool) {
	if d, ok := e.descriptions[language]; ok {
		return d.Text(), true
	}
	return "", false
}

func (e *EntityDocument) Aliases(language string) []*MonolingualTextValue {
	return slices.Clone(e.aliases[language])
}

func (e *EntityDocument) StatementGroups() []*StatementGroup {
	return slices.Clone(e.statements)
}

// FindStatementGroup returns the group for the property id, or nil
func (e *EntityDocument) FindStatementGroup(propertyID string) *StatementGroup {
	for _, g := range e.statements {
		if g.Property().ID() == propertyID {
			return g
		}
	}
	return nil
}

// WithStatement returns a copy of the document with s added to the group of its property,
// replacing a statement with the same id. A new group is appended when there is none.
func (e *EntityDocument) WithStatement(s *Statement) (*EntityDocument, error) {
	if s == nil {
		return nil, errors.NewNullNotAllowedError("statement")
	}

	if !s.Subject().Equals(e.id) {
		return nil, errors.NewInvalidArgumentError(fmt.Sprintf(
			"statement is about %s but the entity is %s", s.Subject().ID(), e.id.ID(),
		))
	}

	c := *e
	c.statements = slices.Clone(e.statements)

	property := s.MainSnak().PropertyID()
	for idx, g := range c.statements {
		if g.Property().Equals(property) {
			updated, err := g.WithStatement(s)
			if err != nil {
				return nil, err
			}
			c.statements[idx] = updated
			return &c, nil
		}
	}

	g, err := NewStatementGroup([]*Statement{s})
	if err != nil {
		return nil, err
	}
	c.statements = append(c.statements, g)

	return &c, nil
}

func (e *EntityDocument) writeContent(w *contentWriter) {
	w.begin("EntityDocument")
	w.nested("id", e.id)
	writeList(w, "labels", termsOf(e.labels))
	writeList(w, "descriptions", termsOf(e.descriptions))

	aliases := []*MonolingualTextValue{}
	for _, lang := range slices.Sorted(maps.Keys(e.aliases)) {
		aliases = append(aliases, e.aliases[lang]...)
	}
	writeList(w, "aliases", aliases)

	byProperty := slices.SortedFunc(slices.Values(e.statements), func(a, b *StatementGroup) int {
		return cmp.Compare(a.Property().ID(), b.Property().ID())
	})
	writeList(w, "statements", byProperty)
	w.integer("revisionId", e.revisionID)
	w.end()
}

func termsOf(m map[string]*MonolingualTextValue) []*MonolingualTextValue {
	terms := make([]*MonolingualTextValue, 0, len(m))
	for _, lang := range slices.Sorted(maps.Keys(m)) {
		terms = append(terms, m[lang])
	}
	return terms
}

func (e *EntityDocument) Equals(other any) bool { return Equal(e, other) }
func (e *EntityDocument) Hash() uint64          { return Hash(e) }
func (e *EntityDocument) String() string        { return ToString(e) }

func (e *EntityDocument) MarshalJSON() ([]byte, error) {
	doc := jsonEntityDocument{
		Type:         e.id.EntityType(),
		ID:           e.id.ID(),
		Datatype:     e.datatype,
		Labels:       &orderedMap[jsonTerm]{},
		Descriptions: &orderedMap[jsonTerm]{},
		Aliases:      &orderedMap[[]jsonTerm]{},
		LastRevID:    e.revisionID,
	}

	for _, t := range termsOf(e.labels) {
		doc.Labels.set(t.LanguageCode(), jsonTerm{Language: t.LanguageCode(), Value: t.Text()})
	}

	for _, t := range termsOf(e.descriptions) {
		doc.Descriptions.set(t.LanguageCode(), jsonTerm{Language: t.LanguageCode(), Value: t.Text()})
	}

	for _, lang := range slices.Sorted(maps.Keys(e.aliases)) {
		terms := []jsonTerm{}
		for _, t := range e.aliases[lang] {
			terms = append(terms, jsonTerm{Language: t.LanguageCode(), Value: t.Text()})
		}
		doc.Aliases.set(lang, terms)
	}

	statements := &orderedMap[[]json.RawMessage]{}
	for _, g := range e.statements {
		docs := []json.RawMessage{}
		for _, s := range g.statements {
			b, err := s.MarshalJSON()
			if err != nil {
				return nil, err
			}
			docs = append(docs, b)
		}
		statements.set(g.Property().ID(), docs)
	}

	if e.id.EntityType() == EntityTypeMediaInfo {
		doc.Statements = statements
	} else {
		doc.Claims = statements
	}

	return json.Marshal(doc)
}

func (d *Deserializer) entityDocumentFromJSON(data []byte) (*EntityDocument, error) {
	var doc jsonEntityDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.NewFormatError("entity", err)
	}

	if doc.Type == "" {
		return nil, errors.NewFormatError("type", fmt.Errorf("missing entity type"))
	}

	if doc.ID == "" {
		return nil, errors.NewFormatError("id", fmt.Errorf("missing entity id"))
	}

	id, err := d.entityIDOf(doc.Type, doc.ID)
	if err != nil {
		return nil, err
	}

	decorators := []EntityDocumentDecoratorFunc{RevisionID(doc.LastRevID), PropertyDatatype(doc.Datatype)}

	for _, lang := range doc.Labels.orderedKeys(nil) {
		decorators = append(decorators, Label(termLanguage(lang, doc.Labels.values[lang]), doc.Labels.values[lang].Value))
	}

	for _, lang := range doc.Descriptions.orderedKeys(nil) {
		decorators = append(decorators, Description(termLanguage(lang, doc.Descriptions.values[lang]), doc.Descriptions.values[lang].Value))
	}

	for _, lang := range doc.Aliases.orderedKeys(nil) {
		for _, t := range doc.Aliases.values[lang] {
			decorators = append(decorators, Alias(termLanguage(lang, t), t.Value))
		}
	}

	field, claims := "claims", doc.Claims
	if claims == nil {
		field, claims = "statements", doc.Statements
	}

	for _, property := range claims.orderedKeys(nil) {
		docs := claims.values[property]
		if len(docs) == 0 {
			continue
		}

		g, err := d.statementGroupFromJSON(field+"."+property, docs, id)
		if err != nil {
			return nil, err
		}

		if g.Property().ID() != property {
			return nil, errors.NewFormatError(field+"."+property, fmt.Errorf("statements for %s listed under %s", g.Property().ID(), property))
		}

		decorators = append(decorators, Statements(g))
	}

	e, err := NewEntityDocument(id, decorators...)
	if err != nil {
		return nil, errors.NewFormatError(field, err)
	}

	return e, nil
}

func termLanguage(key string, t jsonTerm) string {
	if t.Language == "" {
		return key
	}
	return t.Language
}

func (d *Deserializer) entityIDOf(entityType, id string) (EntityIDValue, error) {
	switch entityType {
	case EntityTypeItem, EntityTypeProperty, EntityTypeLexeme, EntityTypeForm, EntityTypeSense, EntityTypeMediaInfo:
	default:
		inner := jsonInnerEntityID{EntityType: entityType, ID: id}
		raw, err := json.Marshal(inner)
		if err != nil {
			return nil, errors.NewFormatError("id", err)
		}
		return newUnsupportedEntityIDValue(inner, raw, d.siteIRI)
	}

	e, err := NewEntityIDValue(entityType, id, d.siteIRI)
	if err != nil {
		return nil, errors.NewFormatError("id", err)
	}

	return e, nil
}
