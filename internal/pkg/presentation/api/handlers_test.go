package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/diwise/wikibase-datamodel/internal/pkg/application/entities"
	"github.com/diwise/wikibase-datamodel/internal/pkg/infrastructure/router"
	"github.com/diwise/wikibase-datamodel/pkg/wikibase/datamodel"
)

func TestRetrieveEntity(t *testing.T) {
	is, ts, _ := setupTest(t)
	defer ts.Close()

	resp, body := newTestRequest(is, ts, "/api/v1/entities/Q1", "letmein")

	is.Equal(resp.StatusCode, http.StatusOK)
	is.Equal(resp.Header.Get("Content-Type"), "application/json")
	is.True(strings.Contains(body, `"id":"Q1"`))
}

func TestRetrieveEntityWithoutTokenIsUnauthorized(t *testing.T) {
	is, ts, _ := setupTest(t)
	defer ts.Close()

	resp, _ := newTestRequest(is, ts, "/api/v1/entities/Q1", "")

	is.Equal(resp.StatusCode, http.StatusUnauthorized)
}

func TestRetrieveUnknownEntity(t *testing.T) {
	is, ts, app := setupTest(t)
	defer ts.Close()

	app.RetrieveEntityDocumentFunc = func(ctx context.Context, entityID string) (*datamodel.EntityDocument, error) {
		return nil, entities.NewNotFoundError("no entity with id " + entityID)
	}

	resp, body := newTestRequest(is, ts, "/api/v1/entities/Q2", "letmein")

	is.Equal(resp.StatusCode, http.StatusNotFound)
	is.True(strings.Contains(body, "no entity with id Q2"))
}

func TestRetrieveEntityCanHandleInternalError(t *testing.T) {
	is, ts, app := setupTest(t)
	defer ts.Close()

	app.RetrieveEntityDocumentFunc = func(ctx context.Context, entityID string) (*datamodel.EntityDocument, error) {
		return nil, fmt.Errorf("some unknown error")
	}

	resp, _ := newTestRequest(is, ts, "/api/v1/entities/Q1", "letmein")

	is.Equal(resp.StatusCode, http.StatusInternalServerError)
}

func TestRetrieveBestStatements(t *testing.T) {
	is, ts, app := setupTest(t)
	defer ts.Close()

	var gotProperty string
	var gotBest bool
	app.RetrieveStatementGroupFunc = func(ctx context.Context, entityID, propertyID string, bestOnly bool) (*datamodel.StatementGroup, error) {
		gotProperty, gotBest = propertyID, bestOnly
		return nil, entities.NewNotFoundError("no statements")
	}

	resp, _ := newTestRequest(is, ts, "/api/v1/entities/Q1/statements/P31?best=true", "letmein")

	is.Equal(resp.StatusCode, http.StatusNotFound)
	is.Equal(gotProperty, "P31")
	is.True(gotBest)
}

func TestRetrieveStatementsWithBadBestParameter(t *testing.T) {
	is, ts, _ := setupTest(t)
	defer ts.Close()

	resp, _ := newTestRequest(is, ts, "/api/v1/entities/Q1/statements/P31?best=maybe", "letmein")

	is.Equal(resp.StatusCode, http.StatusBadRequest)
}

func TestRetrieveStatementsForBadProperty(t *testing.T) {
	is, ts, app := setupTest(t)
	defer ts.Close()

	app.RetrieveStatementGroupFunc = func(ctx context.Context, entityID, propertyID string, bestOnly bool) (*datamodel.StatementGroup, error) {
		return nil, entities.NewBadRequestDataError(propertyID + " is not a property id")
	}

	resp, _ := newTestRequest(is, ts, "/api/v1/entities/Q1/statements/label", "letmein")

	is.Equal(resp.StatusCode, http.StatusBadRequest)
}

func newTestRequest(is *is.I, ts *httptest.Server, path, token string) (*http.Response, string) {
	req, _ := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	if token != "" {
		req.Header.Add("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	is.NoErr(err) // http request failed
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	is.NoErr(err) // failed to read response body

	return resp, string(respBody)
}

func setupTest(t *testing.T) (*is.I, *httptest.Server, *entityLookupMock) {
	is := is.New(t)

	id, err := datamodel.NewItemIDValue("Q1", datamodel.SiteWikidata)
	is.NoErr(err)
	e, err := datamodel.NewEntityDocument(id, datamodel.Label("en", "universe"))
	is.NoErr(err)

	app := &entityLookupMock{
		RetrieveEntityDocumentFunc: func(ctx context.Context, entityID string) (*datamodel.EntityDocument, error) {
			return e, nil
		},
	}

	r := router.New("wikibase-api-test")
	err = RegisterHandlers(context.Background(), r, bytes.NewBufferString(testPolicies), app)
	is.NoErr(err)

	ts := httptest.NewServer(r)

	return is, ts, app
}

type entityLookupMock struct {
	RetrieveEntityDocumentFunc func(ctx context.Context, entityID string) (*datamodel.EntityDocument, error)
	RetrieveStatementGroupFunc func(ctx context.Context, entityID, propertyID string, bestOnly bool) (*datamodel.StatementGroup, error)
}

func (m *entityLookupMock) RetrieveEntityDocument(ctx context.Context, entityID string) (*datamodel.EntityDocument, error) {
	return m.RetrieveEntityDocumentFunc(ctx, entityID)
}

func (m *entityLookupMock) RetrieveStatementGroup(ctx context.Context, entityID, propertyID string, bestOnly bool) (*datamodel.StatementGroup, error) {
	return m.RetrieveStatementGroupFunc(ctx, entityID, propertyID, bestOnly)
}

const testPolicies string = `package wikibase.authz

default allow = false

allow {
	input.token == "letmein"
}
`
