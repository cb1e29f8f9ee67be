package datamodel

import (
	"encoding/json"
	"fmt"

	"github.com/diwise/wikibase-datamodel/pkg/wikibase/errors"
)

// Deserializer turns wire format documents into model objects. Entity ids in the wire format
// do not name their site, so every id created by a Deserializer gets its site IRI.
// A Deserializer holds no state besides the site IRI and may be shared between goroutines.
type Deserializer struct {
	siteIRI string
}

// NewDeserializer creates a deserializer for a site. An empty site IRI means Wikidata.
func NewDeserializer(siteIRI string) *Deserializer {
	if siteIRI == "" {
		siteIRI = SiteWikidata
	}
	return &Deserializer{siteIRI: siteIRI}
}

func (d *Deserializer) SiteIRI() string {
	return d.siteIRI
}

func (d *Deserializer) DeserializeValue(data []byte) (Value, error) {
	return d.valueFromJSON("", data)
}

func (d *Deserializer) DeserializeSnak(data []byte) (Snak, error) {
	return d.snakFromJSON("", data)
}

// DeserializeStatement reads a statement document. Statement documents do not carry their
// subject, so it has to be given.
func (d *Deserializer) DeserializeStatement(data []byte, subject EntityIDValue) (*Statement, error) {
	if subject == nil {
		return nil, errors.NewNullNotAllowedError("statement subject")
	}
	return d.statementFromJSON("", data, subject)
}

func (d *Deserializer) DeserializeEntityDocument(data []byte) (*EntityDocument, error) {
	return d.entityDocumentFromJSON(data)
}

// jsonValue is read first to find out which kind of value the document holds
type jsonValue struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

func withField(field string, err error) error {
	if field == "" {
		return err
	}
	return errors.NewFormatError(field, err)
}

func join(field, member string) string {
	if field == "" {
		return member
	}
	return field + "." + member
}

// docField names a whole document in errors about it
func docField(field, kind string) string {
	if field == "" {
		return kind
	}
	return field
}

func (d *Deserializer) valueFromJSON(field string, data []byte) (Value, error) {
	var doc jsonValue
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.NewFormatError(docField(field, "datavalue"), err)
	}

	if doc.Type == "" {
		return nil, errors.NewFormatError(join(field, "type"), fmt.Errorf("missing value type"))
	}

	switch doc.Type {
	case JSONValueTypeString:
		var s string
		if err := json.Unmarshal(doc.Value, &s); err != nil {
			return nil, errors.NewFormatError(join(field, "value"), err)
		}
		return NewStringValue(s), nil

	case JSONValueTypeEntityID:
		var inner jsonInnerEntityID
		if err := json.Unmarshal(doc.Value, &inner); err != nil {
			return nil, errors.NewFormatError(join(field, "value"), err)
		}
		v, err := entityIDFromInner(inner, doc.Value, d.siteIRI)
		if err != nil {
			return nil, withField(field, err)
		}
		return v, nil

	case JSONValueTypeTime:
		var inner jsonInnerTime
		if err := json.Unmarshal(doc.Value, &inner); err != nil {
			return nil, errors.NewFormatError(join(field, "value"), err)
		}
		v, err := timeValueFromInner(inner)
		if err != nil {
			return nil, withField(field, err)
		}
		return v, nil

	case JSONValueTypeGlobeCoordinates:
		var inner jsonInnerGlobeCoordinates
		if err := json.Unmarshal(doc.Value, &inner); err != nil {
			return nil, errors.NewFormatError(join(field, "value"), err)
		}
		return globeCoordinatesFromInner(inner), nil

	case JSONValueTypeQuantity:
		var inner jsonInnerQuantity
		if err := json.Unmarshal(doc.Value, &inner); err != nil {
			return nil, errors.NewFormatError(join(field, "value"), err)
		}
		v, err := quantityValueFromInner(inner)
		if err != nil {
			return nil, withField(field, err)
		}
		return v, nil

	case JSONValueTypeMonolingualText:
		var inner jsonInnerMonolingualText
		if err := json.Unmarshal(doc.Value, &inner); err != nil {
			return nil, errors.NewFormatError(join(field, "value"), err)
		}
		return NewMonolingualTextValue(inner.Text, inner.Language), nil

	default:
		v, err := newUnsupportedValue(doc.Type, data)
		if err != nil {
			return nil, withField(field, err)
		}
		return v, nil
	}
}

func (d *Deserializer) snakFromJSON(field string, data []byte) (Snak, error) {
	var doc jsonSnak
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.NewFormatError(docField(field, "snak"), err)
	}

	property, err := NewPropertyIDValue(doc.Property, d.siteIRI)
	if err != nil {
		return nil, errors.NewFormatError(join(field, "property"), err)
	}

	switch doc.SnakType {
	case JSONSnakTypeValue:
		if len(doc.DataValue) == 0 || string(doc.DataValue) == "null" {
			return nil, errors.NewFormatError(join(field, "datavalue"), fmt.Errorf("value snak without a value"))
		}

		v, err := d.valueFromJSON(join(field, "datavalue"), doc.DataValue)
		if err != nil {
			return nil, err
		}

		return &ValueSnak{property: property, value: v, datatype: doc.DataType}, nil

	case JSONSnakTypeSomeValue:
		return &SomeValueSnak{property: property}, nil

	case JSONSnakTypeNoValue:
		return &NoValueSnak{property: property}, nil

	default:
		return nil, errors.NewFormatError(join(field, "snaktype"), fmt.Errorf("unknown snak type \"%s\"", doc.SnakType))
	}
}
