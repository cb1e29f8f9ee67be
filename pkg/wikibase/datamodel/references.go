package datamodel

import (
	"encoding/json"
	"slices"

	"github.com/diwise/wikibase-datamodel/pkg/wikibase/errors"
)

// Reference describes the provenance of a statement as a list of snak groups
type Reference struct {
	groups []*SnakGroup
}

type jsonReference struct {
	Snaks      *orderedMap[[]json.RawMessage] `json:"snaks"`
	SnaksOrder []string                       `json:"snaks-order"`
}

// NewReference creates a reference. A nil or empty list gives an empty reference.
func NewReference(groups []*SnakGroup) (*Reference, error) {
	if err := checkSnakGroups("reference", groups); err != nil {
		return nil, err
	}

	return &Reference{groups: cloneOrEmpty(groups)}, nil
}

func (r *Reference) SnakGroups() []*SnakGroup {
	return slices.Clone(r.groups)
}

// AllSnaks returns the snaks of all groups in order
func (r *Reference) AllSnaks() []Snak {
	snaks := []Snak{}
	for _, g := range r.groups {
		snaks = append(snaks, g.snaks...)
	}
	return snaks
}

func (r *Reference) writeContent(w *contentWriter) {
	w.begin("Reference")
	writeList(w, "snakGroups", r.groups)
	w.end()
}

func (r *Reference) Equals(other any) bool { return Equal(r, other) }
func (r *Reference) Hash() uint64          { return Hash(r) }
func (r *Reference) String() string        { return ToString(r) }

func (r *Reference) MarshalJSON() ([]byte, error) {
	snaks, order, err := snakGroupsToJSON(r.groups)
	if err != nil {
		return nil, err
	}

	return json.Marshal(jsonReference{Snaks: snaks, SnaksOrder: order})
}

func (d *Deserializer) referenceFromJSON(field string, data []byte) (*Reference, error) {
	var ref jsonReference
	if err := json.Unmarshal(data, &ref); err != nil {
		return nil, errors.NewFormatError(field, err)
	}

	groups, err := d.snakGroupsFromJSON(field+".snaks", ref.Snaks, ref.SnaksOrder)
	if err != nil {
		return nil, err
	}

	return &Reference{groups: groups}, nil
}
