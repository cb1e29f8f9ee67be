package datamodel

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/diwise/wikibase-datamodel/pkg/wikibase/errors"
)

// Statement is a claim together with its references, a rank and an id. An empty id means
// that no id has been assigned yet.
type Statement struct {
	claim      *Claim
	references []*Reference
	rank       StatementRank
	id         string
}

type jsonStatement struct {
	MainSnak        json.RawMessage                `json:"mainsnak"`
	Type            string                         `json:"type"`
	Qualifiers      *orderedMap[[]json.RawMessage] `json:"qualifiers,omitempty"`
	QualifiersOrder []string                       `json:"qualifiers-order,omitempty"`
	ID              string                         `json:"id,omitempty"`
	Rank            string                         `json:"rank"`
	References      []json.RawMessage              `json:"references,omitempty"`
}

const jsonTypeStatement string = "statement"

// NewStatement creates a statement. A nil list of references is treated as an empty one.
func NewStatement(claim *Claim, references []*Reference, rank StatementRank, id string) (*Statement, error) {
	if claim == nil {
		return nil, errors.NewNullNotAllowedError("claim")
	}

	if err := checkRank(rank); err != nil {
		return nil, err
	}

	if err := checkReferences(references); err != nil {
		return nil, err
	}

	return &Statement{
		claim:      claim,
		references: cloneOrEmpty(references),
		rank:       rank,
		id:         id,
	}, nil
}

func checkReferences(references []*Reference) error {
	for idx, r := range references {
		if r == nil {
			return errors.NewNullNotAllowedError(fmt.Sprintf("reference %d", idx))
		}
	}
	return nil
}

// NewStatementID creates a fresh statement id of the form <subject id>$<GUID>
func NewStatementID(subject EntityIDValue) string {
	return subject.ID() + "$" + strings.ToUpper(uuid.NewString())
}

func (s *Statement) Claim() *Claim            { return s.claim }
func (s *Statement) Subject() EntityIDValue   { return s.claim.subject }
func (s *Statement) MainSnak() Snak           { return s.claim.mainSnak }
func (s *Statement) Rank() StatementRank      { return s.rank }
func (s *Statement) StatementID() string      { return s.id }
func (s *Statement) Qualifiers() []*SnakGroup { return s.claim.Qualifiers() }

func (s *Statement) References() []*Reference {
	return slices.Clone(s.references)
}

// Value returns the value of the main snak, or nil for some value and no value snaks
func (s *Statement) Value() Value {
	return s.claim.Value()
}

// WithStatementID returns a copy of the statement with another id
func (s *Statement) WithStatementID(id string) *Statement {
	c := *s
	c.id = id
	return &c
}

func (s *Statement) WithRank(rank StatementRank) (*Statement, error) {
	if err := checkRank(rank); err != nil {
		return nil, err
	}

	c := *s
	c.rank = rank
	return &c, nil
}

func (s *Statement) WithReferences(references []*Reference) (*Statement, error) {
	if err := checkReferences(references); err != nil {
		return nil, err
	}

	c := *s
	c.references = cloneOrEmpty(references)
	return &c, nil
}

// WithQualifiers returns a copy of the statement whose claim has the given qualifiers
func (s *Statement) WithQualifiers(qualifiers []*SnakGroup) (*Statement, error) {
	claim, err := NewClaim(s.claim.subject, s.claim.mainSnak, qualifiers)
	if err != nil {
		return nil, err
	}

	c := *s
	c.claim = claim
	return &c, nil
}

func (s *Statement) writeContent(w *contentWriter) {
	w.begin("Statement")
	w.nested("claim", s.claim)
	writeList(w, "references", s.references)
	w.integer("rank", int64(s.rank))
	w.str("statementId", s.id)
	w.end()
}

func (s *Statement) Equals(other any) bool { return Equal(s, other) }
func (s *Statement) Hash() uint64          { return Hash(s) }
func (s *Statement) String() string        { return ToString(s) }

// MarshalJSON writes the statement without its subject, which the wire format only gives
// through the entity the statement belongs to.
func (s *Statement) MarshalJSON() ([]byte, error) {
	mainSnak, err := s.claim.mainSnak.MarshalJSON()
	if err != nil {
		return nil, err
	}

	doc := jsonStatement{
		MainSnak: mainSnak,
		Type:     jsonTypeStatement,
		ID:       s.id,
		Rank:     s.rank.String(),
	}

	if len(s.claim.qualifiers) > 0 {
		doc.Qualifiers, doc.QualifiersOrder, err = snakGroupsToJSON(s.claim.qualifiers)
		if err != nil {
			return nil, err
		}
	}

	for _, r := range s.references {
		ref, err := r.MarshalJSON()
		if err != nil {
			return nil, err
		}
		doc.References = append(doc.References, ref)
	}

	return json.Marshal(doc)
}

func (d *Deserializer) statementFromJSON(field string, data []byte, subject EntityIDValue) (*Statement, error) {
	var doc jsonStatement
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.NewFormatError(docField(field, "statement"), err)
	}

	if doc.Type != "" && doc.Type != jsonTypeStatement && doc.Type != "claim" {
		return nil, errors.NewFormatError(join(field, "type"), fmt.Errorf("unexpected type \"%s\"", doc.Type))
	}

	if len(doc.MainSnak) == 0 {
		return nil, errors.NewFormatError(join(field, "mainsnak"), fmt.Errorf("missing main snak"))
	}

	mainSnak, err := d.snakFromJSON(join(field, "mainsnak"), doc.MainSnak)
	if err != nil {
		return nil, err
	}

	qualifiers, err := d.snakGroupsFromJSON(join(field, "qualifiers"), doc.Qualifiers, doc.QualifiersOrder)
	if err != nil {
		return nil, err
	}

	references := make([]*Reference, 0, len(doc.References))
	for idx, ref := range doc.References {
		r, err := d.referenceFromJSON(fmt.Sprintf("%s[%d]", join(field, "references"), idx), ref)
		if err != nil {
			return nil, err
		}
		references = append(references, r)
	}

	rank, err := ParseStatementRank(doc.Rank)
	if err != nil {
		return nil, errors.NewFormatError(join(field, "rank"), err)
	}

	claim, err := NewClaim(subject, mainSnak, qualifiers)
	if err != nil {
		return nil, errors.NewFormatError(docField(field, "statement"), err)
	}

	return NewStatement(claim, references, rank, doc.ID)
}
