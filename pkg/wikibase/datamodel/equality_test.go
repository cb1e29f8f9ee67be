package datamodel

import (
	"testing"

	"github.com/matryer/is"
)

func TestEqualIsFalseForNilAndUnrelatedValues(t *testing.T) {
	is := is.New(t)

	var missing *StringValue
	s := NewStringValue("Q42")

	is.True(!Equal(s, nil))
	is.True(!Equal(nil, s))
	is.True(!Equal(s, missing))
	is.True(!Equal(missing, missing))
	is.True(!Equal(s, "Q42"))
	is.True(!s.Equals(struct{}{}))
}

func TestEqualComparesKindAndContent(t *testing.T) {
	is := is.New(t)

	text := NewMonolingualTextValue("Q42", "en")
	str := NewStringValue("Q42")

	is.True(Equal(str, NewStringValue("Q42")))
	is.True(!Equal(str, text))
	is.True(!Equal(str, NewStringValue("Q43")))
}

func TestListsOfDifferentLengthDiffer(t *testing.T) {
	is := is.New(t)

	p31, _ := NewPropertyIDValue("P31", SiteWikidata)
	snak, _ := NewSomeValueSnak(p31)

	one, _ := NewSnakGroup([]Snak{snak})
	two, _ := NewSnakGroup([]Snak{snak, snak})

	is.True(!one.Equals(two))
	is.True(one.Hash() != two.Hash())
}

func TestToStringRendersTheContent(t *testing.T) {
	is := is.New(t)

	g := NewGlobeCoordinatesValue(62.39, 17.3, 0.01, GlobeEarth)
	is.Equal(g.String(), `GlobeCoordinatesValue{latitude=62.39, longitude=17.3, precision=0.01, globe="http://www.wikidata.org/entity/Q2"}`)

	var missing *StringValue
	is.Equal(ToString(missing), "nil")
}
