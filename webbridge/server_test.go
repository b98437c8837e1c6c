package webbridge

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestGinContext(method, target, body string) *gin.Context {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	c.Request.Header.Set("X-Custom", "abc")
	return c
}

func TestBuildRequestMapFields(t *testing.T) {
	c := newTestGinContext("POST", "/widgets/7?x=1", `{"name":"widget"}`)
	req := buildRequestMap(c)
	m := req.Map()

	method, _ := m.Get("method")
	if method.String() != "POST" {
		t.Errorf("method = %q, want POST", method.String())
	}
	pathname, _ := m.Get("pathname")
	if pathname.String() != "/widgets/7" {
		t.Errorf("pathname = %q, want /widgets/7", pathname.String())
	}
	body, _ := m.Get("body")
	if body.String() != `{"name":"widget"}` {
		t.Errorf("body = %q", body.String())
	}
	headersV, _ := m.Get("headers")
	h, ok := headersV.Map().Get("x-custom")
	if !ok || h.String() != "abc" {
		t.Errorf("headers[x-custom] = %v, %v; want abc (lowercased)", h, ok)
	}
	if _, ok := m.Get("id"); !ok {
		t.Error("request map should include an id field")
	}

	query, ok := m.Get("query")
	if !ok || query.Map().Len() != 0 {
		t.Error("query should be present but intentionally empty")
	}
	cookies, ok := m.Get("cookies")
	if !ok || cookies.Map().Len() != 0 {
		t.Error("cookies should be present but intentionally empty")
	}
}

func TestWriteResponseSetsHeadersAndBody(t *testing.T) {
	w := httptest.NewRecorder()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(w)

	writeResponse(c, Materialized{
		Status:      201,
		Body:        "created",
		ContentType: "text/plain",
		Headers:     map[string]string{"X-Trace": "xyz"},
	})

	if w.Code != 201 {
		t.Errorf("status = %d, want 201", w.Code)
	}
	if w.Body.String() != "created" {
		t.Errorf("body = %q, want created", w.Body.String())
	}
	if w.Header().Get("X-Trace") != "xyz" {
		t.Errorf("X-Trace header = %q, want xyz", w.Header().Get("X-Trace"))
	}
}

func TestWriteResponseDefaultsContentTypeWhenEmpty(t *testing.T) {
	w := httptest.NewRecorder()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(w)

	writeResponse(c, Materialized{Status: 200, Body: "ok"})
	ct := w.Header().Get("Content-Type")
	if !strings.Contains(ct, "text/plain") {
		t.Errorf("content-type = %q, want text/plain", ct)
	}
}
