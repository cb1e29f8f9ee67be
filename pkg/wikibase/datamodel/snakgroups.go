package datamodel

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/diwise/wikibase-datamodel/pkg/wikibase/errors"
)

// SnakGroup is a non-empty, ordered list of snaks that all share the same property
type SnakGroup struct {
	snaks []Snak
}

func NewSnakGroup(snaks []Snak) (*SnakGroup, error) {
	if snaks == nil {
		return nil, errors.NewNullNotAllowedError("list of snaks")
	}

	if len(snaks) == 0 {
		return nil, errors.NewInvalidArgumentError("a snak group must contain at least one snak")
	}

	for idx, s := range snaks {
		if s == nil {
			return nil, errors.NewNullNotAllowedError(fmt.Sprintf("snak %d", idx))
		}
	}

	property := snaks[0].PropertyID()
	for idx, s := range snaks[1:] {
		if !s.PropertyID().Equals(property) {
			return nil, errors.NewInvalidArgumentError(fmt.Sprintf(
				"snak %d has property %s but the group is for %s", idx+1, s.PropertyID().ID(), property.ID(),
			))
		}
	}

	return &SnakGroup{snaks: slices.Clone(snaks)}, nil
}

func (g *SnakGroup) Snaks() []Snak {
	return slices.Clone(g.snaks)
}

func (g *SnakGroup) Property() *PropertyIDValue {
	return g.snaks[0].PropertyID()
}

func (g *SnakGroup) Len() int {
	return len(g.snaks)
}

func (g *SnakGroup) writeContent(w *contentWriter) {
	w.begin("SnakGroup")
	writeList(w, "snaks", g.snaks)
	w.end()
}

func (g *SnakGroup) Equals(other any) bool { return Equal(g, other) }
func (g *SnakGroup) Hash() uint64          { return Hash(g) }
func (g *SnakGroup) String() string        { return ToString(g) }

func (g *SnakGroup) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.snaks)
}

// snakGroupsToJSON builds the keyed snak object and the order list the wire format uses in
// place of an ordered list of groups.
func snakGroupsToJSON(groups []*SnakGroup) (*orderedMap[[]json.RawMessage], []string, error) {
	m := &orderedMap[[]json.RawMessage]{}

	for _, g := range groups {
		key := g.Property().ID()
		docs := make([]json.RawMessage, 0, len(g.snaks))

		for _, s := range g.snaks {
			doc, err := s.MarshalJSON()
			if err != nil {
				return nil, nil, err
			}
			docs = append(docs, doc)
		}

		m.set(key, docs)
	}

	return m, append([]string{}, m.keys...), nil
}

func (d *Deserializer) snakGroupsFromJSON(field string, m *orderedMap[[]json.RawMessage], order []string) ([]*SnakGroup, error) {
	groups := []*SnakGroup{}

	for _, key := range m.orderedKeys(order) {
		docs := m.values[key]
		snaks := make([]Snak, 0, len(docs))

		for idx, doc := range docs {
			s, err := d.snakFromJSON(fmt.Sprintf("%s.%s[%d]", field, key, idx), doc)
			if err != nil {
				return nil, err
			}

			if s.PropertyID().ID() != key {
				return nil, errors.NewFormatError(
					fmt.Sprintf("%s.%s[%d].property", field, key, idx),
					fmt.Errorf("snak for %s listed under %s", s.PropertyID().ID(), key),
				)
			}

			snaks = append(snaks, s)
		}

		g, err := NewSnakGroup(snaks)
		if err != nil {
			return nil, errors.NewFormatError(field+"."+key, err)
		}

		groups = append(groups, g)
	}

	return groups, nil
}
