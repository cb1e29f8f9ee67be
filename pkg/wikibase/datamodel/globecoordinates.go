package datamodel

import (
	"encoding/json"
)

const (
	GlobeEarth string = "http://www.wikidata.org/entity/Q2"
	GlobeMoon  string = "http://www.wikidata.org/entity/Q405"
)

// Common precisions in degrees
const (
	PrecisionTenDegrees      float64 = 10.0
	PrecisionDegree          float64 = 1.0
	PrecisionTenthDegree     float64 = 0.1
	PrecisionArcminute       float64 = 1.0 / 60
	PrecisionHundredthDegree float64 = 0.01
	PrecisionArcsecond       float64 = 1.0 / 3600
)

// GlobeCoordinatesValue is a position on a celestial body. Latitude and longitude are not
// range checked.
type GlobeCoordinatesValue struct {
	value jsonInnerGlobeCoordinates
}

// jsonGlobeCoordinatesValue nests the coordinates one level below the type discriminator
type jsonGlobeCoordinatesValue struct {
	Type  string                    `json:"type"`
	Value jsonInnerGlobeCoordinates `json:"value"`
}

type jsonInnerGlobeCoordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Precision float64 `json:"precision"`
	Globe     string  `json:"globe"`
}

// NewGlobeCoordinatesValue creates a coordinate value from degrees and the IRI of the globe
func NewGlobeCoordinatesValue(latitude, longitude, precision float64, globe string) *GlobeCoordinatesValue {
	return &GlobeCoordinatesValue{
		value: jsonInnerGlobeCoordinates{
			Latitude:  latitude,
			Longitude: longitude,
			Precision: precision,
			Globe:     globe,
		},
	}
}

func globeCoordinatesFromInner(inner jsonInnerGlobeCoordinates) *GlobeCoordinatesValue {
	return &GlobeCoordinatesValue{value: inner}
}

func (g *GlobeCoordinatesValue) Latitude() float64 {
	return g.value.Latitude
}

func (g *GlobeCoordinatesValue) Longitude() float64 {
	return g.value.Longitude
}

func (g *GlobeCoordinatesValue) Precision() float64 {
	return g.value.Precision
}

// Globe returns the IRI of the celestial body the coordinates refer to
func (g *GlobeCoordinatesValue) Globe() string {
	return g.value.Globe
}

func (g *GlobeCoordinatesValue) accept(d valueDispatcher) { d.visitGlobeCoordinates(g) }

func (g *GlobeCoordinatesValue) writeContent(w *contentWriter) {
	w.begin("GlobeCoordinatesValue")
	w.float("latitude", g.value.Latitude)
	w.float("longitude", g.value.Longitude)
	w.float("precision", g.value.Precision)
	w.str("globe", g.value.Globe)
	w.end()
}

func (g *GlobeCoordinatesValue) Equals(other any) bool { return Equal(g, other) }
func (g *GlobeCoordinatesValue) Hash() uint64          { return Hash(g) }
func (g *GlobeCoordinatesValue) String() string        { return ToString(g) }

func (g *GlobeCoordinatesValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonGlobeCoordinatesValue{Type: JSONValueTypeGlobeCoordinates, Value: g.value})
}
