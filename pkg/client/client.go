package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"strings"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/diwise/wikibase-datamodel/pkg/wikibase/datamodel"
)

// EntityDataClient retrieves single entity documents from the Special:EntityData page of
// a Wikibase installation
type EntityDataClient interface {
	RetrieveEntityDocument(ctx context.Context, entityID string) (*datamodel.EntityDocument, error)
	RetrieveEntityRevision(ctx context.Context, entityID string, revision int64) (*datamodel.EntityDocument, error)
}

func Debug(enabled string) func(*edClient) {
	return func(c *edClient) {
		c.debug = (enabled == "true")
	}
}

func UserAgent(userAgent string) func(*edClient) {
	return func(c *edClient) {
		c.userAgent = userAgent
	}
}

// SiteIRI sets the site that entity ids in retrieved documents belong to
func SiteIRI(siteIRI string) func(*edClient) {
	return func(c *edClient) {
		c.deserializer = datamodel.NewDeserializer(siteIRI)
	}
}

// NewEntityDataClient creates a client for the wiki at baseURL, i.e. https://www.wikidata.org
func NewEntityDataClient(baseURL string, options ...func(*edClient)) EntityDataClient {
	c := &edClient{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		userAgent:    "wikibase-datamodel/0.1",
		debug:        false,
		deserializer: datamodel.NewDeserializer(""),
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}

	for _, option := range options {
		option(c)
	}

	return c
}

const (
	TraceAttributeEntityID string = "entity-id"
	TraceAttributeRevision string = "revision"
)

var tracer = otel.Tracer("wikibase-entitydata-client")

type edClient struct {
	baseURL      string
	userAgent    string
	debug        bool
	deserializer *datamodel.Deserializer
	httpClient   *http.Client
}

func (c edClient) RetrieveEntityDocument(ctx context.Context, entityID string) (*datamodel.EntityDocument, error) {
	var err error

	ctx, span := tracer.Start(ctx, "retrieve-entity-document",
		trace.WithAttributes(attribute.String(TraceAttributeEntityID, entityID)),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	e, err := c.retrieve(ctx, entityID, nil)
	return e, err
}

func (c edClient) RetrieveEntityRevision(ctx context.Context, entityID string, revision int64) (*datamodel.EntityDocument, error) {
	var err error

	ctx, span := tracer.Start(ctx, "retrieve-entity-revision",
		trace.WithAttributes(
			attribute.String(TraceAttributeEntityID, entityID),
			attribute.Int64(TraceAttributeRevision, revision),
		),
	)
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	if revision <= 0 {
		err = fmt.Errorf("revision %d is not a valid revision id (%w)", revision, ErrRequest)
		return nil, err
	}

	e, err := c.retrieve(ctx, entityID, url.Values{"revision": []string{strconv.FormatInt(revision, 10)}})
	return e, err
}

type entityDataResponse struct {
	Entities map[string]json.RawMessage `json:"entities"`
}

func (c edClient) retrieve(ctx context.Context, entityID string, query url.Values) (*datamodel.EntityDocument, error) {
	if entityID == "" || strings.ContainsAny(entityID, "/?#") {
		return nil, fmt.Errorf("\"%s\" is not a valid entity id (%w)", entityID, ErrRequest)
	}

	endpoint := c.baseURL + "/wiki/Special:EntityData/" + url.PathEscape(entityID) + ".json"
	if len(query) > 0 {
		endpoint = endpoint + "?" + query.Encode()
	}

	response, responseBody, err := c.callEntityData(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	if response.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("entity %s was not found (%w)", entityID, ErrNotFound)
	}

	if response.StatusCode != http.StatusOK {
		contentType := response.Header.Get("Content-Type")
		return nil, fmt.Errorf("entity data returned status code %d (content-type: %s, body: %s) (%w)", response.StatusCode, contentType, string(responseBody), ErrBadResponse)
	}

	var data entityDataResponse
	if err = json.Unmarshal(responseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to decode entity data: %s (%w)", err.Error(), ErrBadResponse)
	}

	// a redirected id is answered with the target entity under its own id
	raw, ok := data.Entities[entityID]
	if !ok {
		if len(data.Entities) != 1 {
			return nil, fmt.Errorf("entity data for %s holds %d entities (%w)", entityID, len(data.Entities), ErrBadResponse)
		}
		for _, r := range data.Entities {
			raw = r
		}
	}

	e, err := c.deserializer.DeserializeEntityDocument(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode entity %s: %w (%w)", entityID, err, ErrBadResponse)
	}

	return e, nil
}

func (c edClient) callEntityData(ctx context.Context, endpoint string) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		err = fmt.Errorf("failed to create request: %s (%w)", err.Error(), ErrInternal)
		return nil, nil, err
	}

	req.Header.Add("Accept", "application/json")
	req.Header.Add("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("failed to send request: %s (%w)", err.Error(), ErrRequest)
		return nil, nil, err
	}

	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		err = fmt.Errorf("failed to read response body: %s (%w)", err.Error(), ErrBadResponse)
		return nil, nil, err
	}

	if c.debug && resp.StatusCode >= http.StatusBadRequest {
		reqbytes, _ := httputil.DumpRequest(req, false)
		respbytes, _ := httputil.DumpResponse(resp, false)

		log := logging.GetFromContext(ctx)
		log.Error("request failed", "request", string(reqbytes), "response", string(respbytes))
	}

	return resp, respBody, nil
}
