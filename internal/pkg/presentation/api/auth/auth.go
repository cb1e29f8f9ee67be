package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/tracing"
	"github.com/open-policy-agent/opa/rego"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("wikibase-api/authz")

var ErrAccessDenied = errors.New("access denied")

type Enticator interface {
	CheckAccess(ctx context.Context, r *http.Request, entityID string) error
}

type enticatorImpl struct {
	preparedQuery rego.PreparedEvalQuery
}

// NewAuthenticator prepares the rego policies read from policies. The policies must define
// data.wikibase.authz.allow
func NewAuthenticator(ctx context.Context, policies io.Reader) (Enticator, error) {

	module, err := io.ReadAll(policies)
	if err != nil {
		return nil, fmt.Errorf("unable to read authz policies: %s", err.Error())
	}

	impl := &enticatorImpl{}

	impl.preparedQuery, err = rego.New(
		rego.Query("x = data.wikibase.authz.allow"),
		rego.Module("wikibase.rego", string(module)),
	).PrepareForEval(ctx)

	if err != nil {
		return nil, err
	}

	return impl, nil
}

func (e *enticatorImpl) CheckAccess(ctx context.Context, r *http.Request, entityID string) error {
	var err error

	_, span := tracer.Start(ctx, "check-auth")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	token := r.Header.Get("Authorization")
	token = strings.TrimPrefix(token, "Bearer ")

	path := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	input := map[string]any{
		"method": r.Method,
		"path":   path,
		"token":  token,
		"entity": entityID,
	}

	results, err := e.preparedQuery.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		err = fmt.Errorf("opa eval failed: %w", err)
		return err
	}

	if len(results) == 0 {
		err = fmt.Errorf("opa query could not be satisfied (%w)", ErrAccessDenied)
		return err
	}

	switch binding := results[0].Bindings["x"].(type) {
	case bool:
		if !binding {
			err = ErrAccessDenied
			return err
		}
	case map[string]any:
		// an object result carries claims about the caller and means access is granted
	default:
		err = fmt.Errorf("opa error: unexpected result type %T", binding)
		return err
	}

	return nil
}
