package problems

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matryer/is"
)

func TestReportNotFound(t *testing.T) {
	is := is.New(t)
	w := httptest.NewRecorder()

	ReportNotFound(w, "no entity with id Q1")

	is.Equal(w.Code, http.StatusNotFound)
	is.Equal(w.Header().Get("Content-Type"), ProblemReportContentType)

	body := map[string]any{}
	is.NoErr(json.Unmarshal(w.Body.Bytes(), &body))
	is.Equal(body["title"], "Resource Not Found")
	is.Equal(body["detail"], "no entity with id Q1")
	is.Equal(body["status"], float64(404))
}
