package entities

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"

	"github.com/diwise/wikibase-datamodel/internal/pkg/infrastructure/storage"
	"github.com/diwise/wikibase-datamodel/pkg/client"
	"github.com/diwise/wikibase-datamodel/pkg/wikibase/datamodel"
)

type EntityLookup interface {
	RetrieveEntityDocument(ctx context.Context, entityID string) (*datamodel.EntityDocument, error)
	RetrieveStatementGroup(ctx context.Context, entityID, propertyID string, bestOnly bool) (*datamodel.StatementGroup, error)
}

type EntityDocumentStore interface {
	SaveEntityDocument(ctx context.Context, e *datamodel.EntityDocument) error
	RetrieveEntityDocument(ctx context.Context, entityID string) (*datamodel.EntityDocument, error)
}

type EntityDocumentFetcher interface {
	RetrieveEntityDocument(ctx context.Context, entityID string) (*datamodel.EntityDocument, error)
}

var propertyIDPattern = regexp.MustCompile(`^P[1-9]\d{0,9}$`)

type lookupApp struct {
	store   EntityDocumentStore
	fetcher EntityDocumentFetcher
}

// New creates a lookup that answers from the store. Documents missing from the store are
// fetched, and saved, when a fetcher is given.
func New(store EntityDocumentStore, fetcher EntityDocumentFetcher) EntityLookup {
	return &lookupApp{
		store:   store,
		fetcher: fetcher,
	}
}

func (app *lookupApp) RetrieveEntityDocument(ctx context.Context, entityID string) (*datamodel.EntityDocument, error) {
	e, err := app.store.RetrieveEntityDocument(ctx, entityID)
	if err == nil {
		return e, nil
	}

	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	if app.fetcher == nil {
		return nil, NewNotFoundError(fmt.Sprintf("no entity with id %s", entityID))
	}

	e, err = app.fetcher.RetrieveEntityDocument(ctx, entityID)
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			return nil, NewNotFoundError(fmt.Sprintf("no entity with id %s", entityID))
		}
		if errors.Is(err, client.ErrRequest) {
			return nil, NewBadRequestDataError(fmt.Sprintf("%s is not a valid entity id", entityID))
		}
		return nil, err
	}

	if err = app.store.SaveEntityDocument(ctx, e); err != nil {
		logging.GetFromContext(ctx).Warn("failed to save fetched entity document", "entity_id", entityID, "err", err.Error())
	}

	return e, nil
}

func (app *lookupApp) RetrieveStatementGroup(ctx context.Context, entityID, propertyID string, bestOnly bool) (*datamodel.StatementGroup, error) {
	if !propertyIDPattern.MatchString(propertyID) {
		return nil, NewBadRequestDataError(fmt.Sprintf("%s is not a property id", propertyID))
	}

	e, err := app.RetrieveEntityDocument(ctx, entityID)
	if err != nil {
		return nil, err
	}

	g := e.FindStatementGroup(propertyID)
	if g == nil {
		return nil, NewNotFoundError(fmt.Sprintf("%s has no statements for %s", entityID, propertyID))
	}

	if bestOnly {
		g = g.BestStatements()
		if g == nil {
			return nil, NewNotFoundError(fmt.Sprintf("%s has only deprecated statements for %s", entityID, propertyID))
		}
	}

	return g, nil
}
