package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matryer/is"

	wberrors "github.com/diwise/wikibase-datamodel/pkg/wikibase/errors"
)

func TestRetrieveEntityDocument(t *testing.T) {
	is, ts := setupTest(t)
	defer ts.Close()

	c := NewEntityDataClient(ts.URL + "/")
	e, err := c.RetrieveEntityDocument(context.Background(), "Q1")
	is.NoErr(err)

	is.Equal(e.ID().ID(), "Q1")
	is.Equal(e.RevisionID(), int64(42))

	label, ok := e.FindLabel("en")
	is.True(ok)
	is.Equal(label, "universe")
}

func TestRetrieveEntityDocumentForAnotherSite(t *testing.T) {
	is, ts := setupTest(t)
	defer ts.Close()

	c := NewEntityDataClient(ts.URL, SiteIRI("https://example.wikibase.cloud/entity/"))
	e, err := c.RetrieveEntityDocument(context.Background(), "Q1")
	is.NoErr(err)

	is.Equal(e.ID().IRI(), "https://example.wikibase.cloud/entity/Q1")
}

func TestRetrieveRedirectedEntity(t *testing.T) {
	is, ts := setupTest(t)
	defer ts.Close()

	c := NewEntityDataClient(ts.URL)
	e, err := c.RetrieveEntityDocument(context.Background(), "Q100")
	is.NoErr(err)

	is.Equal(e.ID().ID(), "Q1")
}

func TestRetrieveEntityRevision(t *testing.T) {
	is, ts := setupTest(t)
	defer ts.Close()

	c := NewEntityDataClient(ts.URL)
	e, err := c.RetrieveEntityRevision(context.Background(), "Q1", 7)
	is.NoErr(err)
	is.Equal(e.RevisionID(), int64(7))

	_, err = c.RetrieveEntityRevision(context.Background(), "Q1", 0)
	is.True(errors.Is(err, ErrRequest))
}

func TestRetrieveMissingEntity(t *testing.T) {
	is, ts := setupTest(t)
	defer ts.Close()

	c := NewEntityDataClient(ts.URL, Debug("true"))
	_, err := c.RetrieveEntityDocument(context.Background(), "Q404")
	is.True(errors.Is(err, ErrNotFound))
}

func TestRetrieveWithBadEntityID(t *testing.T) {
	is, ts := setupTest(t)
	defer ts.Close()

	c := NewEntityDataClient(ts.URL)
	_, err := c.RetrieveEntityDocument(context.Background(), "Q1/../Q2")
	is.True(errors.Is(err, ErrRequest))
}

func TestRetrieveWhenServerFails(t *testing.T) {
	is, ts := setupTest(t)
	defer ts.Close()

	c := NewEntityDataClient(ts.URL)
	_, err := c.RetrieveEntityDocument(context.Background(), "Q500")
	is.True(errors.Is(err, ErrBadResponse))
}

func TestRetrieveMalformedEntity(t *testing.T) {
	is, ts := setupTest(t)
	defer ts.Close()

	c := NewEntityDataClient(ts.URL)
	_, err := c.RetrieveEntityDocument(context.Background(), "Q13")
	is.True(errors.Is(err, ErrBadResponse))
	is.True(errors.Is(err, wberrors.ErrFormat))
}

func setupTest(t *testing.T) (*is.I, *httptest.Server) {
	is := is.New(t)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/wiki/Special:EntityData/Q1.json":
			if r.URL.Query().Get("revision") == "7" {
				w.Write([]byte(revisionSevenJSON))
				return
			}
			w.Write([]byte(universeJSON))
		case "/wiki/Special:EntityData/Q100.json":
			w.Write([]byte(universeJSON))
		case "/wiki/Special:EntityData/Q13.json":
			w.Write([]byte(malformedSnakJSON))
		case "/wiki/Special:EntityData/Q500.json":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	return is, ts
}

const universeJSON string = `{"entities":{"Q1":{"type":"item","id":"Q1","lastrevid":42,
"labels":{"en":{"language":"en","value":"universe"}},"descriptions":{},"aliases":{},"claims":{}}}}`

const revisionSevenJSON string = `{"entities":{"Q1":{"type":"item","id":"Q1","lastrevid":7,
"labels":{"en":{"language":"en","value":"Universe"}},"claims":[]}}}`

const malformedSnakJSON string = `{"entities":{"Q13":{"type":"item","id":"Q13","lastrevid":3,
"claims":{"P31":[{"type":"statement","rank":"normal","mainsnak":{"snaktype":"bogus","property":"P31"}}]}}}}`
