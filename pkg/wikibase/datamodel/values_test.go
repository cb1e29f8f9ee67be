package datamodel

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/matryer/is"
	"github.com/shopspring/decimal"

	wberrors "github.com/diwise/wikibase-datamodel/pkg/wikibase/errors"
)

func TestGlobeCoordinatesAccessorsReturnWhatWasGiven(t *testing.T) {
	is := is.New(t)

	for _, c := range []struct {
		lat, lon, precision float64
		globe               string
	}{
		{62.390, 17.306, PrecisionArcsecond, GlobeEarth},
		{-90, 180, PrecisionDegree, GlobeMoon},
		{123.4, -500, 0.000001, "http://www.wikidata.org/entity/Q111"},
		{0, 0, 0, ""},
	} {
		g := NewGlobeCoordinatesValue(c.lat, c.lon, c.precision, c.globe)
		is.Equal(g.Latitude(), c.lat)
		is.Equal(g.Longitude(), c.lon)
		is.Equal(g.Precision(), c.precision)
		is.Equal(g.Globe(), c.globe)
	}
}

func TestGlobeCoordinatesAreNestedUnderValue(t *testing.T) {
	is := is.New(t)

	b, err := json.Marshal(NewGlobeCoordinatesValue(59.3, 18.05, 0.0001, GlobeEarth))
	is.NoErr(err)
	is.Equal(string(b), `{"type":"globecoordinate","value":{"latitude":59.3,"longitude":18.05,"precision":0.0001,"globe":"http://www.wikidata.org/entity/Q2"}}`)
}

func TestGlobeCoordinatesEquality(t *testing.T) {
	is := is.New(t)

	a := NewGlobeCoordinatesValue(59.3, 18.05, 0.0001, GlobeEarth)
	b := NewGlobeCoordinatesValue(59.3, 18.05, 0.0001, GlobeEarth)

	is.True(a.Equals(b))
	is.Equal(a.Hash(), b.Hash())
	is.True(!a.Equals(NewGlobeCoordinatesValue(59.3, 18.05, 0.0001, GlobeMoon)))
	is.True(!a.Equals(NewGlobeCoordinatesValue(59.3, 18.05, 0.001, GlobeEarth)))
}

func TestStringValueJSON(t *testing.T) {
	is := is.New(t)

	b, err := json.Marshal(NewStringValue("Douglas Adams.jpg"))
	is.NoErr(err)
	is.Equal(string(b), `{"type":"string","value":"Douglas Adams.jpg"}`)
}

func TestMonolingualTextJSON(t *testing.T) {
	is := is.New(t)

	b, err := json.Marshal(NewMonolingualTextValue("Hartungviken", "sv"))
	is.NoErr(err)
	is.Equal(string(b), `{"type":"monolingualtext","value":{"text":"Hartungviken","language":"sv"}}`)
}

func TestItemIDJSONCarriesNumericID(t *testing.T) {
	is := is.New(t)

	q, err := NewItemIDValue("Q42", SiteWikidata)
	is.NoErr(err)
	is.Equal(q.NumericID(), int64(42))
	is.Equal(q.IRI(), "http://www.wikidata.org/entity/Q42")

	b, err := json.Marshal(q)
	is.NoErr(err)
	is.Equal(string(b), `{"type":"wikibase-entityid","value":{"entity-type":"item","numeric-id":42,"id":"Q42"}}`)
}

func TestFormIDHasNoNumericID(t *testing.T) {
	is := is.New(t)

	f, err := NewFormIDValue("L7-F2", SiteWikidata)
	is.NoErr(err)
	is.Equal(f.LexemeID().ID(), "L7")

	b, err := json.Marshal(f)
	is.NoErr(err)
	is.Equal(string(b), `{"type":"wikibase-entityid","value":{"entity-type":"form","id":"L7-F2"}}`)
}

func TestInvalidEntityIDsAreRejected(t *testing.T) {
	is := is.New(t)

	for _, c := range []struct {
		entityType, id string
	}{
		{EntityTypeItem, "P42"},
		{EntityTypeItem, "Q0"},
		{EntityTypeProperty, "P"},
		{EntityTypeSense, "L1-F1"},
		{"entity-schema", "E1"},
	} {
		_, err := NewEntityIDValue(c.entityType, c.id, SiteWikidata)
		is.True(errors.Is(err, wberrors.ErrInvalidArgument))
	}
}

func TestEntityIDsOnDifferentSitesDiffer(t *testing.T) {
	is := is.New(t)

	a, _ := NewItemIDValue("Q42", SiteWikidata)
	b, _ := NewItemIDValue("Q42", "http://example.org/entity/")
	c, _ := NewItemIDValue("Q42", SiteWikidata)

	is.True(!a.Equals(b))
	is.True(a.Equals(c))
}

func TestTimeValueJSON(t *testing.T) {
	is := is.New(t)

	tv, err := NewTimeValue(1952, 3, 11, PrecisionDay, CalendarGregorian)
	is.NoErr(err)

	b, err := json.Marshal(tv)
	is.NoErr(err)
	is.Equal(string(b), `{"type":"time","value":{"time":"+1952-03-11T00:00:00Z","timezone":0,"before":0,"after":0,"precision":11,"calendarmodel":"http://www.wikidata.org/entity/Q1985727"}}`)
}

func TestTimeValueKeepsTheSignOfYearZero(t *testing.T) {
	is := is.New(t)
	d := NewDeserializer("")

	const negative = `{"type":"time","value":{"time":"-0000-00-00T00:00:00Z","timezone":0,"before":0,"after":0,"precision":9,"calendarmodel":"http://www.wikidata.org/entity/Q1985727"}}`

	v, err := d.DeserializeValue([]byte(negative))
	is.NoErr(err)

	b, err := json.Marshal(v)
	is.NoErr(err)
	is.Equal(string(b), negative)

	positive, err := d.DeserializeValue([]byte(strings.Replace(negative, "-0000", "+0000", 1)))
	is.NoErr(err)
	is.True(!v.Equals(positive))

	bce, err := NewTimeValue(-44, 3, 15, PrecisionDay, CalendarJulian, NegativeYearZero())
	is.NoErr(err)
	is.True(!bce.IsNegativeYearZero())
}

func TestTimeValueValidation(t *testing.T) {
	is := is.New(t)

	_, err := NewTimeValue(2001, 1, 1, PrecisionDay, "")
	is.True(errors.Is(err, wberrors.ErrNullNotAllowed))

	_, err = NewTimeValue(2001, 13, 1, PrecisionDay, CalendarGregorian)
	is.True(errors.Is(err, wberrors.ErrInvalidArgument))

	_, err = NewTimeValue(2001, 1, 1, 15, CalendarGregorian)
	is.True(errors.Is(err, wberrors.ErrInvalidArgument))

	_, err = NewTimeValue(2001, 1, 1, PrecisionDay, CalendarGregorian, Tolerance(-1, 0))
	is.True(errors.Is(err, wberrors.ErrInvalidArgument))
}

func TestQuantityKeepsScaleAndSign(t *testing.T) {
	is := is.New(t)

	q, err := NewQuantityValue(
		decimal.RequireFromString("1.50"), Unitless,
		Bounds(decimal.RequireFromString("1.49"), decimal.RequireFromString("1.51")),
	)
	is.NoErr(err)

	b, err := json.Marshal(q)
	is.NoErr(err)
	is.Equal(string(b), `{"type":"quantity","value":{"amount":"+1.50","unit":"1","upperBound":"+1.51","lowerBound":"+1.49"}}`)

	negative, err := NewQuantityValue(decimal.RequireFromString("-3"), "http://www.wikidata.org/entity/Q11573")
	is.NoErr(err)

	b, err = json.Marshal(negative)
	is.NoErr(err)
	is.Equal(string(b), `{"type":"quantity","value":{"amount":"-3","unit":"http://www.wikidata.org/entity/Q11573"}}`)
}

func TestQuantityEqualityIsScaleSensitive(t *testing.T) {
	is := is.New(t)

	a, _ := NewQuantityValue(decimal.RequireFromString("1.5"), Unitless)
	b, _ := NewQuantityValue(decimal.RequireFromString("1.50"), Unitless)
	c, _ := NewQuantityValue(decimal.RequireFromString("1.5"), Unitless)

	is.True(!a.Equals(b))
	is.True(a.Equals(c))
	is.Equal(a.Hash(), c.Hash())
}

func TestQuantityAmountMustBeWithinBounds(t *testing.T) {
	is := is.New(t)

	_, err := NewQuantityValue(
		decimal.RequireFromString("10"), Unitless,
		Bounds(decimal.RequireFromString("1"), decimal.RequireFromString("2")),
	)
	is.True(errors.Is(err, wberrors.ErrInvalidArgument))

	_, err = NewQuantityValue(decimal.RequireFromString("10"), "")
	is.True(errors.Is(err, wberrors.ErrNullNotAllowed))
}

type valueKind struct{}

func (valueKind) VisitString(v *StringValue) string                     { return "string" }
func (valueKind) VisitEntityID(v EntityIDValue) string                  { return "entity:" + v.EntityType() }
func (valueKind) VisitTime(v *TimeValue) string                         { return "time" }
func (valueKind) VisitGlobeCoordinates(v *GlobeCoordinatesValue) string { return "globe" }
func (valueKind) VisitQuantity(v *QuantityValue) string                 { return "quantity" }
func (valueKind) VisitMonolingualText(v *MonolingualTextValue) string   { return "text" }
func (valueKind) VisitUnsupported(v *UnsupportedValue) string           { return "unsupported:" + v.TypeJSONString() }

func TestVisitorIsCalledForTheValueKind(t *testing.T) {
	is := is.New(t)

	item, _ := NewItemIDValue("Q5", SiteWikidata)
	tv, _ := NewTimeValue(2001, 1, 1, PrecisionDay, CalendarGregorian)
	q, _ := NewQuantityValue(decimal.NewFromInt(3), Unitless)
	unsupported, err := newUnsupportedValue("musical-notation", []byte(`{"type":"musical-notation","value":"c d e"}`))
	is.NoErr(err)

	values := []Value{
		NewStringValue("x"), item, tv, NewGlobeCoordinatesValue(1, 2, 3, GlobeEarth), q,
		NewMonolingualTextValue("x", "en"), unsupported,
	}
	expected := []string{"string", "entity:item", "time", "globe", "quantity", "text", "unsupported:musical-notation"}

	for idx, v := range values {
		is.Equal(Accept[string](v, valueKind{}), expected[idx])
	}
}

type entityKind struct{}

func (entityKind) VisitItemID(v *ItemIDValue) string           { return "item" }
func (entityKind) VisitPropertyID(v *PropertyIDValue) string   { return "property" }
func (entityKind) VisitLexemeID(v *LexemeIDValue) string       { return "lexeme" }
func (entityKind) VisitFormID(v *FormIDValue) string           { return "form" }
func (entityKind) VisitSenseID(v *SenseIDValue) string         { return "sense" }
func (entityKind) VisitMediaInfoID(v *MediaInfoIDValue) string { return "mediainfo" }
func (entityKind) VisitUnsupportedEntityID(v *UnsupportedEntityIDValue) string {
	return "unsupported"
}

func TestEntityIDVisitor(t *testing.T) {
	is := is.New(t)

	sense, _ := NewSenseIDValue("L7-S1", SiteWikidata)
	media, _ := NewMediaInfoIDValue("M12", "https://commons.wikimedia.org/entity/")

	is.Equal(AcceptEntityID[string](sense, entityKind{}), "sense")
	is.Equal(AcceptEntityID[string](media, entityKind{}), "mediainfo")
}
