package storage

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/matryer/is"

	"github.com/diwise/wikibase-datamodel/pkg/wikibase/datamodel"
)

func TestConnStr(t *testing.T) {
	is := is.New(t)

	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("POSTGRES_USER", "wb")
	t.Setenv("POSTGRES_PASSWORD", "secret")

	cfg := LoadConfiguration(context.Background())
	is.Equal(cfg.ConnStr(), "postgres://wb:secret@db:5432/wikibase?sslmode=disable")
}

func TestNewDocumentRow(t *testing.T) {
	is := is.New(t)

	id, err := datamodel.NewItemIDValue("Q1", datamodel.SiteWikidata)
	is.NoErr(err)

	e, err := datamodel.NewEntityDocument(id, datamodel.Label("en", "universe"), datamodel.RevisionID(42))
	is.NoErr(err)

	row, err := newDocumentRow(e)
	is.NoErr(err)

	is.Equal(row.id, "Q1")
	is.Equal(row.entityType, "item")
	is.Equal(row.revision, int64(42))
	is.Equal(uint64(row.hash), e.Hash())

	stored, err := datamodel.NewDeserializer("").DeserializeEntityDocument(row.document)
	is.NoErr(err)
	is.True(stored.Equals(e))

	var doc map[string]any
	is.NoErr(json.Unmarshal(row.document, &doc))
	is.Equal(doc["id"], "Q1")
}
