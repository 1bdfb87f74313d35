package mvc

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/toyz/scaffold/pkg/scaffold"
)

type testContext struct {
	req    *http.Request
	rec    *httptest.ResponseRecorder
	status int
	values map[string]any
}

func newRequest(method, target, contentType, body string) *testContext {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return &testContext{req: req, rec: httptest.NewRecorder(), values: make(map[string]any)}
}

func (c *testContext) header(key, value string) *testContext {
	c.req.Header.Set(key, value)
	return c
}

func (c *testContext) Context() context.Context           { return c.req.Context() }
func (c *testContext) Method() string                     { return c.req.Method }
func (c *testContext) Path() string                       { return c.req.URL.Path }
func (c *testContext) RealIP() string                     { return c.req.RemoteAddr }
func (c *testContext) Param(string) string                { return "" }
func (c *testContext) QueryParam(key string) string       { return c.req.URL.Query().Get(key) }
func (c *testContext) QueryParams() map[string][]string   { return c.req.URL.Query() }
func (c *testContext) Request() scaffold.RequestInterface { return testRequest{c.req} }
func (c *testContext) Response() scaffold.ResponseInterface {
	return testResponse{c}
}
func (c *testContext) Get(key string) interface{}      { return c.values[key] }
func (c *testContext) Set(key string, val interface{}) { c.values[key] = val }

func (c *testContext) FormParams() (map[string][]string, error) {
	if err := c.req.ParseForm(); err != nil {
		return nil, err
	}
	return c.req.PostForm, nil
}

type testRequest struct{ r *http.Request }

func (r testRequest) Header(key string) string { return r.r.Header.Get(key) }
func (r testRequest) BodyReader() io.Reader    { return r.r.Body }
func (r testRequest) ContentLength() int64     { return r.r.ContentLength }
func (r testRequest) ContentType() string      { return r.r.Header.Get("Content-Type") }

type testResponse struct{ c *testContext }

func (r testResponse) Status() int {
	if r.c.status == 0 {
		return http.StatusOK
	}
	return r.c.status
}

func (r testResponse) Header(key string) string    { return r.c.rec.Header().Get(key) }
func (r testResponse) SetHeader(key, value string) { r.c.rec.Header().Set(key, value) }
func (r testResponse) Written() bool               { return r.c.status != 0 }

func (r testResponse) write(code int, contentType string, b []byte) error {
	r.c.status = code
	r.c.rec.Header().Set("Content-Type", contentType)
	r.c.rec.WriteHeader(code)
	_, err := r.c.rec.Write(b)
	return err
}

func (r testResponse) JSON(code int, i interface{}) error {
	b, err := json.Marshal(i)
	if err != nil {
		return err
	}
	return r.write(code, "application/json", b)
}

func (r testResponse) String(code int, s string) error {
	return r.write(code, "text/plain; charset=utf-8", []byte(s))
}

func (r testResponse) HTML(code int, html string) error {
	return r.write(code, "text/html; charset=utf-8", []byte(html))
}

func (r testResponse) Blob(code int, contentType string, b []byte) error {
	return r.write(code, contentType, b)
}

func (r testResponse) Redirect(code int, url string) error {
	r.c.rec.Header().Set("Location", url)
	r.c.status = code
	r.c.rec.WriteHeader(code)
	return nil
}

type recordedRoute struct {
	method string
	path   scaffold.Path
}

type recordingWeb struct {
	routes []recordedRoute
}

func (w *recordingWeb) RegisterRoute(method string, path scaffold.Path, _ scaffold.HandlerFunc, _ ...scaffold.MiddlewareFunc) {
	w.routes = append(w.routes, recordedRoute{method: method, path: path})
}
func (w *recordingWeb) RegisterGroup(string) scaffold.RouteGroup { return nil }
func (w *recordingWeb) Use(scaffold.MiddlewareFunc)              {}
func (w *recordingWeb) Start(string) error                       { return nil }
func (w *recordingWeb) Stop(context.Context) error               { return nil }
func (w *recordingWeb) Name() string                             { return "recording" }
