package problems

import (
	"encoding/json"
	"net/http"
)

// ProblemDetails stores details about a certain problem according to RFC7807
// See https://tools.ietf.org/html/rfc7807
type ProblemDetails interface {
	ContentType() string
	Type() string
	Title() string
	Detail() string
	ResponseCode() int
	MarshalJSON() ([]byte, error)
	WriteResponse(w http.ResponseWriter)
}

type problemDetailsImpl struct {
	typ    string
	title  string
	detail string
	code   int
}

const (
	// ProblemReportContentType as required by https://tools.ietf.org/html/rfc7807
	ProblemReportContentType string = "application/problem+json"

	problemTypeBase string = "https://github.com/diwise/wikibase-datamodel/problems/"
)

func newProblem(name, title, detail string, code int) ProblemDetails {
	return &problemDetailsImpl{
		typ:    problemTypeBase + name,
		title:  title,
		detail: detail,
		code:   code,
	}
}

// NewBadRequestData reports request input that does not meet the requirements of the operation
func NewBadRequestData(detail string) ProblemDetails {
	return newProblem("BadRequestData", "Bad Request Data", detail, http.StatusBadRequest)
}

func NewNotFound(detail string) ProblemDetails {
	return newProblem("ResourceNotFound", "Resource Not Found", detail, http.StatusNotFound)
}

func NewUnauthorizedRequest(detail string) ProblemDetails {
	return newProblem("UnauthorizedRequest", "Unauthorized Request", detail, http.StatusUnauthorized)
}

func NewInternalError(detail string) ProblemDetails {
	return newProblem("InternalError", "Internal Error", detail, http.StatusInternalServerError)
}

func ReportBadRequestData(w http.ResponseWriter, detail string) {
	NewBadRequestData(detail).WriteResponse(w)
}

func ReportNotFound(w http.ResponseWriter, detail string) {
	NewNotFound(detail).WriteResponse(w)
}

func ReportUnauthorizedRequest(w http.ResponseWriter, detail string) {
	NewUnauthorizedRequest(detail).WriteResponse(w)
}

func ReportInternalError(w http.ResponseWriter, detail string) {
	NewInternalError(detail).WriteResponse(w)
}

func (p *problemDetailsImpl) ContentType() string { return ProblemReportContentType }
func (p *problemDetailsImpl) Type() string        { return p.typ }
func (p *problemDetailsImpl) Title() string       { return p.title }
func (p *problemDetailsImpl) Detail() string      { return p.detail }

func (p *problemDetailsImpl) ResponseCode() int {
	if p.code != 0 {
		return p.code
	}
	return http.StatusBadRequest
}

func (p *problemDetailsImpl) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type   string `json:"type"`
		Title  string `json:"title"`
		Detail string `json:"detail"`
		Status int    `json:"status"`
	}{
		Type:   p.typ,
		Title:  p.title,
		Detail: p.detail,
		Status: p.ResponseCode(),
	})
}

func (p *problemDetailsImpl) WriteResponse(w http.ResponseWriter) {
	w.Header().Add("Content-Type", p.ContentType())
	w.Header().Add("Content-Language", "en")
	w.WriteHeader(p.ResponseCode())

	pdbytes, err := json.MarshalIndent(p, "", "  ")
	if err == nil {
		w.Write(pdbytes)
	}
}
