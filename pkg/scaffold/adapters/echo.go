package adapters

import (
	"context"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/toyz/scaffold/pkg/scaffold"
)

// EchoAdapter implements scaffold.WebServerInterface for Echo v4
type EchoAdapter struct {
	engine *echo.Echo
}

// NewEchoAdapter creates a new Echo adapter
func NewEchoAdapter(e *echo.Echo) *EchoAdapter {
	return &EchoAdapter{engine: e}
}

// NewDefaultEchoAdapter creates a new Echo adapter with default Echo instance
func NewDefaultEchoAdapter() *EchoAdapter {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	return &EchoAdapter{engine: e}
}

// RegisterRoute registers a route with the Echo server
func (ea *EchoAdapter) RegisterRoute(method string, path scaffold.Path, handler scaffold.HandlerFunc, middlewares ...scaffold.MiddlewareFunc) {
	ea.engine.Add(method, scaffold.ConvertPath(path, scaffold.DialectEcho), ea.convertHandler(handler), ea.convertMiddlewares(middlewares)...)
}

// RegisterGroup creates a new route group
func (ea *EchoAdapter) RegisterGroup(prefix string) scaffold.RouteGroup {
	return &EchoGroupAdapter{group: ea.engine.Group(prefix), adapter: ea}
}

// Use adds global middleware
func (ea *EchoAdapter) Use(middleware scaffold.MiddlewareFunc) {
	ea.engine.Use(ea.convertMiddleware(middleware))
}

// Start starts the server
func (ea *EchoAdapter) Start(addr string) error {
	return ea.engine.Start(addr)
}

// Stop stops the server
func (ea *EchoAdapter) Stop(ctx context.Context) error {
	return ea.engine.Shutdown(ctx)
}

// Name returns the adapter name
func (ea *EchoAdapter) Name() string {
	return "Echo"
}

// GetEngine returns the underlying Echo instance
func (ea *EchoAdapter) GetEngine() *echo.Echo {
	return ea.engine
}

// Handler returns the engine as an http.Handler
func (ea *EchoAdapter) Handler() http.Handler {
	return ea.engine
}

// EchoGroupAdapter implements scaffold.RouteGroup for Echo groups
type EchoGroupAdapter struct {
	group   *echo.Group
	adapter *EchoAdapter
}

// RegisterRoute registers a route with the group
func (ega *EchoGroupAdapter) RegisterRoute(method string, path scaffold.Path, handler scaffold.HandlerFunc, middlewares ...scaffold.MiddlewareFunc) {
	ega.group.Add(method, scaffold.ConvertPath(path, scaffold.DialectEcho), ega.adapter.convertHandler(handler), ega.adapter.convertMiddlewares(middlewares)...)
}

// Use adds middleware to the group
func (ega *EchoGroupAdapter) Use(middleware scaffold.MiddlewareFunc) {
	ega.group.Use(ega.adapter.convertMiddleware(middleware))
}

// Group creates a sub-group
func (ega *EchoGroupAdapter) Group(prefix string) scaffold.RouteGroup {
	return &EchoGroupAdapter{group: ega.group.Group(prefix), adapter: ega.adapter}
}

// convertHandler converts scaffold.HandlerFunc to echo.HandlerFunc. Handler
// errors are written here so Echo's error handler never sees them.
func (ea *EchoAdapter) convertHandler(handler scaffold.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := &EchoRequestContext{context: c}
		if err := handler(ctx); err != nil {
			return writeError(ctx.Context(), ctx, err)
		}
		return nil
	}
}

func (ea *EchoAdapter) convertMiddlewares(middlewares []scaffold.MiddlewareFunc) []echo.MiddlewareFunc {
	out := make([]echo.MiddlewareFunc, len(middlewares))
	for i, mw := range middlewares {
		out[i] = ea.convertMiddleware(mw)
	}
	return out
}

// convertMiddleware converts scaffold.MiddlewareFunc to echo.MiddlewareFunc
func (ea *EchoAdapter) convertMiddleware(middleware scaffold.MiddlewareFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			scaffoldNext := func(ctx scaffold.RequestContext) error {
				return next(c)
			}
			ctx := &EchoRequestContext{context: c}
			if err := middleware(scaffoldNext)(ctx); err != nil {
				return writeError(ctx.Context(), ctx, err)
			}
			return nil
		}
	}
}

// EchoRequestContext implements scaffold.RequestContext for Echo
type EchoRequestContext struct {
	context echo.Context
}

// Context returns the request context
func (erc *EchoRequestContext) Context() context.Context {
	return erc.context.Request().Context()
}

// Method returns the HTTP method
func (erc *EchoRequestContext) Method() string {
	return erc.context.Request().Method
}

// Path returns the request path
func (erc *EchoRequestContext) Path() string {
	return erc.context.Request().URL.Path
}

// RealIP returns the real IP address
func (erc *EchoRequestContext) RealIP() string {
	return erc.context.RealIP()
}

// Param returns path parameter by name
func (erc *EchoRequestContext) Param(key string) string {
	return erc.context.Param(key)
}

// QueryParam returns query parameter by name
func (erc *EchoRequestContext) QueryParam(key string) string {
	return erc.context.QueryParam(key)
}

// QueryParams returns all query parameters
func (erc *EchoRequestContext) QueryParams() map[string][]string {
	return erc.context.QueryParams()
}

// Request returns the request interface
func (erc *EchoRequestContext) Request() scaffold.RequestInterface {
	return &EchoRequestInterface{request: erc.context.Request()}
}

// Response returns the response interface
func (erc *EchoRequestContext) Response() scaffold.ResponseInterface {
	return &EchoResponseInterface{response: erc.context.Response(), context: erc.context}
}

// Get retrieves data from context
func (erc *EchoRequestContext) Get(key string) interface{} {
	return erc.context.Get(key)
}

// Set stores data in context
func (erc *EchoRequestContext) Set(key string, val interface{}) {
	erc.context.Set(key, val)
}

// FormParams returns form parameters
func (erc *EchoRequestContext) FormParams() (map[string][]string, error) {
	return erc.context.FormParams()
}

// EchoRequestInterface implements scaffold.RequestInterface for Echo requests
type EchoRequestInterface struct {
	request *http.Request
}

// Header returns request header value
func (eri *EchoRequestInterface) Header(key string) string {
	return eri.request.Header.Get(key)
}

// BodyReader returns the request body
func (eri *EchoRequestInterface) BodyReader() io.Reader {
	return eri.request.Body
}

// ContentLength returns content length
func (eri *EchoRequestInterface) ContentLength() int64 {
	return eri.request.ContentLength
}

// ContentType returns content type
func (eri *EchoRequestInterface) ContentType() string {
	return eri.request.Header.Get(echo.HeaderContentType)
}

// EchoResponseInterface implements scaffold.ResponseInterface for Echo responses
type EchoResponseInterface struct {
	response *echo.Response
	context  echo.Context
}

// Status returns response status code
func (eri *EchoResponseInterface) Status() int {
	return eri.response.Status
}

// Header returns response header value
func (eri *EchoResponseInterface) Header(key string) string {
	return eri.response.Header().Get(key)
}

// SetHeader sets response header
func (eri *EchoResponseInterface) SetHeader(key, value string) {
	eri.response.Header().Set(key, value)
}

// JSON writes JSON response
func (eri *EchoResponseInterface) JSON(code int, i interface{}) error {
	return eri.context.JSON(code, i)
}

// String writes string response
func (eri *EchoResponseInterface) String(code int, s string) error {
	return eri.context.String(code, s)
}

// HTML writes HTML response
func (eri *EchoResponseInterface) HTML(code int, html string) error {
	return eri.context.HTML(code, html)
}

// Blob writes blob response
func (eri *EchoResponseInterface) Blob(code int, contentType string, b []byte) error {
	return eri.context.Blob(code, contentType, b)
}

// Redirect sends a redirect
func (eri *EchoResponseInterface) Redirect(code int, url string) error {
	return eri.context.Redirect(code, url)
}

// Written returns whether response has been written
func (eri *EchoResponseInterface) Written() bool {
	return eri.response.Committed
}
