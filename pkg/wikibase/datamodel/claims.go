package datamodel

import (
	"fmt"
	"slices"

	"github.com/diwise/wikibase-datamodel/pkg/wikibase/errors"
)

// Claim is a main snak about a subject, qualified by zero or more snak groups
type Claim struct {
	subject    EntityIDValue
	mainSnak   Snak
	qualifiers []*SnakGroup
}

// NewClaim creates a claim. A nil list of qualifiers is treated as an empty one. No two
// qualifier groups may share a property.
func NewClaim(subject EntityIDValue, mainSnak Snak, qualifiers []*SnakGroup) (*Claim, error) {
	if subject == nil {
		return nil, errors.NewNullNotAllowedError("claim subject")
	}

	if mainSnak == nil {
		return nil, errors.NewNullNotAllowedError("main snak")
	}

	if err := checkSnakGroups("qualifier", qualifiers); err != nil {
		return nil, err
	}

	return &Claim{
		subject:    subject,
		mainSnak:   mainSnak,
		qualifiers: cloneOrEmpty(qualifiers),
	}, nil
}

// checkSnakGroups requires one group per property, since the wire format keys groups by
// property id
func checkSnakGroups(kind string, groups []*SnakGroup) error {
	seen := map[string]int{}

	for idx, g := range groups {
		if g == nil {
			return errors.NewNullNotAllowedError(fmt.Sprintf("%s group %d", kind, idx))
		}

		property := g.Property().ID()
		if first, ok := seen[property]; ok {
			return errors.NewInvalidArgumentError(fmt.Sprintf(
				"%s group %d has property %s, same as group %d", kind, idx, property, first,
			))
		}
		seen[property] = idx
	}
	return nil
}

func cloneOrEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return slices.Clone(items)
}

func (c *Claim) Subject() EntityIDValue { return c.subject }
func (c *Claim) MainSnak() Snak         { return c.mainSnak }

func (c *Claim) Qualifiers() []*SnakGroup {
	return slices.Clone(c.qualifiers)
}

// AllQualifiers returns the snaks of all qualifier groups in order
func (c *Claim) AllQualifiers() []Snak {
	snaks := []Snak{}
	for _, g := range c.qualifiers {
		snaks = append(snaks, g.snaks...)
	}
	return snaks
}

// Value returns the value of the main snak, or nil if the main snak has no value
func (c *Claim) Value() Value {
	if vs, ok := c.mainSnak.(*ValueSnak); ok {
		return vs.Value()
	}
	return nil
}

func (c *Claim) writeContent(w *contentWriter) {
	w.begin("Claim")
	w.nested("subject", c.subject)
	w.nested("mainSnak", c.mainSnak)
	writeList(w, "qualifiers", c.qualifiers)
	w.end()
}

func (c *Claim) Equals(other any) bool { return Equal(c, other) }
func (c *Claim) Hash() uint64          { return Hash(c) }
func (c *Claim) String() string        { return ToString(c) }
