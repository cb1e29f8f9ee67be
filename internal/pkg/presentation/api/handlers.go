package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/diwise/wikibase-datamodel/internal/pkg/application/entities"
	"github.com/diwise/wikibase-datamodel/internal/pkg/presentation/api/auth"
	"github.com/diwise/wikibase-datamodel/internal/pkg/presentation/api/problems"
)

var tracer = otel.Tracer("wikibase-api/entities")

const TraceAttributeEntityID string = "entity-id"

func RegisterHandlers(ctx context.Context, r chi.Router, policies io.Reader, app entities.EntityLookup) error {

	authenticator, err := auth.NewAuthenticator(ctx, policies)
	if err != nil {
		return fmt.Errorf("failed to create api authenticator: %w", err)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(Logger(logging.GetFromContext(ctx)))

		r.Route("/entities/{entityId}", func(r chi.Router) {
			r.Get("/", NewRetrieveEntityHandler(app, authenticator))
			r.Get("/statements/{propertyId}", NewRetrieveStatementGroupHandler(app, authenticator))
		})
	})

	return nil
}

func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			_, ctx, _ = o11y.AddTraceIDToLoggerAndStoreInContext(
				trace.SpanFromContext(ctx),
				logger,
				ctx)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NewRetrieveEntityHandler serves an entity document in the Wikibase JSON format
func NewRetrieveEntityHandler(app entities.EntityLookup, authenticator auth.Enticator) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		entityID, _ := url.PathUnescape(chi.URLParam(r, "entityId"))

		ctx, span := tracer.Start(r.Context(), "retrieve-entity",
			trace.WithAttributes(attribute.String(TraceAttributeEntityID, entityID)),
		)
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		if err = authenticator.CheckAccess(ctx, r, entityID); err != nil {
			problems.ReportUnauthorizedRequest(w, "not authorized to read this entity")
			return
		}

		e, err := app.RetrieveEntityDocument(ctx, entityID)
		if err != nil {
			reportLookupError(ctx, w, err)
			return
		}

		writeJSON(ctx, w, e)
	})
}

// NewRetrieveStatementGroupHandler serves the statements of an entity for one property.
// With best=true only the statements of the highest non-deprecated rank are included.
func NewRetrieveStatementGroupHandler(app entities.EntityLookup, authenticator auth.Enticator) http.HandlerFunc {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error

		entityID, _ := url.PathUnescape(chi.URLParam(r, "entityId"))
		propertyID, _ := url.PathUnescape(chi.URLParam(r, "propertyId"))

		ctx, span := tracer.Start(r.Context(), "retrieve-statement-group",
			trace.WithAttributes(attribute.String(TraceAttributeEntityID, entityID)),
		)
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		if err = authenticator.CheckAccess(ctx, r, entityID); err != nil {
			problems.ReportUnauthorizedRequest(w, "not authorized to read this entity")
			return
		}

		bestOnly := false
		if best := r.URL.Query().Get("best"); best != "" {
			bestOnly, err = strconv.ParseBool(best)
			if err != nil {
				problems.ReportBadRequestData(w, fmt.Sprintf("invalid value for best: %s", best))
				return
			}
		}

		g, err := app.RetrieveStatementGroup(ctx, entityID, propertyID, bestOnly)
		if err != nil {
			reportLookupError(ctx, w, err)
			return
		}

		writeJSON(ctx, w, g)
	})
}

func reportLookupError(ctx context.Context, w http.ResponseWriter, err error) {
	var nfe entities.NotFoundError
	var brd entities.BadRequestDataError

	switch {
	case errors.As(err, &nfe):
		problems.ReportNotFound(w, nfe.Error())
	case errors.As(err, &brd):
		problems.ReportBadRequestData(w, brd.Error())
	default:
		logging.GetFromContext(ctx).Error("entity lookup failed", "err", err.Error())
		problems.ReportInternalError(w, "failed to retrieve entity")
	}
}

func writeJSON(ctx context.Context, w http.ResponseWriter, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		logging.GetFromContext(ctx).Error("failed to marshal response", "err", err.Error())
		problems.ReportInternalError(w, "failed to encode response")
		return
	}

	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
