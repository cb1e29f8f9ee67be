package datamodel

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/diwise/wikibase-datamodel/pkg/wikibase/errors"
)

// StatementGroup is a non-empty, ordered list of statements that share subject and
// main snak property
type StatementGroup struct {
	statements []*Statement
}

func NewStatementGroup(statements []*Statement) (*StatementGroup, error) {
	if statements == nil {
		return nil, errors.NewNullNotAllowedError("list of statements")
	}

	if len(statements) == 0 {
		return nil, errors.NewInvalidArgumentError("a statement group must contain at least one statement")
	}

	for idx, s := range statements {
		if s == nil {
			return nil, errors.NewNullNotAllowedError(fmt.Sprintf("statement %d", idx))
		}
	}

	first := statements[0]
	for idx, s := range statements[1:] {
		if err := checkBelongsTo(first, s, idx+1); err != nil {
			return nil, err
		}
	}

	return &StatementGroup{statements: slices.Clone(statements)}, nil
}

func checkBelongsTo(first, s *Statement, idx int) error {
	if !s.Subject().Equals(first.Subject()) {
		return errors.NewInvalidArgumentError(fmt.Sprintf(
			"statement %d is about %s but the group is about %s", idx, s.Subject().ID(), first.Subject().ID(),
		))
	}

	if !s.MainSnak().PropertyID().Equals(first.MainSnak().PropertyID()) {
		return errors.NewInvalidArgumentError(fmt.Sprintf(
			"statement %d has property %s but the group is for %s",
			idx, s.MainSnak().PropertyID().ID(), first.MainSnak().PropertyID().ID(),
		))
	}

	return nil
}

func (g *StatementGroup) Subject() EntityIDValue {
	return g.statements[0].Subject()
}

func (g *StatementGroup) Property() *PropertyIDValue {
	return g.statements[0].MainSnak().PropertyID()
}

func (g *StatementGroup) Statements() []*Statement {
	return slices.Clone(g.statements)
}

func (g *StatementGroup) Len() int {
	return len(g.statements)
}

// WithStatement returns a group where s replaces the statement with the same id, keeping
// its position, or where s is appended when there is no such statement. Statements without
// an id never replace each other.
func (g *StatementGroup) WithStatement(s *Statement) (*StatementGroup, error) {
	if s == nil {
		return nil, errors.NewNullNotAllowedError("statement")
	}

	if err := checkBelongsTo(g.statements[0], s, len(g.statements)); err != nil {
		return nil, err
	}

	statements := slices.Clone(g.statements)

	if s.id != "" {
		idx := slices.IndexFunc(statements, func(existing *Statement) bool {
			return existing.id == s.id
		})
		if idx >= 0 {
			statements[idx] = s
			return &StatementGroup{statements: statements}, nil
		}
	}

	return &StatementGroup{statements: append(statements, s)}, nil
}

// BestStatements returns the preferred statements of the group, or the normal ones if none
// is preferred. Nil is returned when every statement is deprecated.
func (g *StatementGroup) BestStatements() *StatementGroup {
	for _, rank := range []StatementRank{RankPreferred, RankNormal} {
		best := []*Statement{}
		for _, s := range g.statements {
			if s.rank == rank {
				best = append(best, s)
			}
		}

		if len(best) > 0 {
			return &StatementGroup{statements: best}
		}
	}

	return nil
}

func (g *StatementGroup) writeContent(w *contentWriter) {
	w.begin("StatementGroup")
	writeList(w, "statements", g.statements)
	w.end()
}

func (g *StatementGroup) Equals(other any) bool { return Equal(g, other) }
func (g *StatementGroup) Hash() uint64          { return Hash(g) }
func (g *StatementGroup) String() string        { return ToString(g) }

func (g *StatementGroup) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.statements)
}

func (d *Deserializer) statementGroupFromJSON(field string, docs []json.RawMessage, subject EntityIDValue) (*StatementGroup, error) {
	statements := make([]*Statement, 0, len(docs))

	for idx, doc := range docs {
		s, err := d.statementFromJSON(fmt.Sprintf("%s[%d]", field, idx), doc, subject)
		if err != nil {
			return nil, err
		}
		statements = append(statements, s)
	}

	g, err := NewStatementGroup(statements)
	if err != nil {
		return nil, errors.NewFormatError(field, err)
	}

	return g, nil
}
