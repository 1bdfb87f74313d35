package adapters

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/toyz/scaffold/pkg/scaffold"
)

// GinAdapter implements scaffold.WebServerInterface for Gin
type GinAdapter struct {
	engine *gin.Engine
	server *http.Server
}

// NewGinAdapter creates a new Gin adapter
func NewGinAdapter(g *gin.Engine) *GinAdapter {
	return &GinAdapter{engine: g}
}

// NewDefaultGinAdapter creates a new Gin adapter with default Gin instance
func NewDefaultGinAdapter() *GinAdapter {
	return &GinAdapter{engine: gin.Default()}
}

// RegisterRoute registers a route with the Gin server
func (ga *GinAdapter) RegisterRoute(method string, path scaffold.Path, handler scaffold.HandlerFunc, middlewares ...scaffold.MiddlewareFunc) {
	ga.engine.Handle(method, scaffold.ConvertPath(path, scaffold.DialectGin), ga.handlers(handler, middlewares)...)
}

// RegisterGroup registers a route group with the Gin server
func (ga *GinAdapter) RegisterGroup(prefix string) scaffold.RouteGroup {
	return &GinRouteGroup{group: ga.engine.Group(prefix), adapter: ga}
}

// Use registers global middleware
func (ga *GinAdapter) Use(middleware scaffold.MiddlewareFunc) {
	ga.engine.Use(ga.convertMiddleware(middleware))
}

// Start starts the Gin server
func (ga *GinAdapter) Start(addr string) error {
	ga.server = &http.Server{Addr: addr, Handler: ga.engine}
	return ga.server.ListenAndServe()
}

// Stop stops the Gin server
func (ga *GinAdapter) Stop(ctx context.Context) error {
	if ga.server == nil {
		return nil
	}
	return ga.server.Shutdown(ctx)
}

// Name returns the adapter name
func (ga *GinAdapter) Name() string {
	return "Gin"
}

// GetEngine returns the underlying Gin engine
func (ga *GinAdapter) GetEngine() *gin.Engine {
	return ga.engine
}

// Handler returns the engine as an http.Handler
func (ga *GinAdapter) Handler() http.Handler {
	return ga.engine
}

func (ga *GinAdapter) handlers(handler scaffold.HandlerFunc, middlewares []scaffold.MiddlewareFunc) []gin.HandlerFunc {
	handlers := make([]gin.HandlerFunc, 0, len(middlewares)+1)
	for _, middleware := range middlewares {
		handlers = append(handlers, ga.convertMiddleware(middleware))
	}
	return append(handlers, ga.convertHandler(handler))
}

// GinRouteGroup implements scaffold.RouteGroup for Gin
type GinRouteGroup struct {
	group   *gin.RouterGroup
	adapter *GinAdapter
}

// RegisterRoute registers a route within the group
func (grg *GinRouteGroup) RegisterRoute(method string, path scaffold.Path, handler scaffold.HandlerFunc, middlewares ...scaffold.MiddlewareFunc) {
	grg.group.Handle(method, scaffold.ConvertPath(path, scaffold.DialectGin), grg.adapter.handlers(handler, middlewares)...)
}

// Use registers middleware with the group
func (grg *GinRouteGroup) Use(middleware scaffold.MiddlewareFunc) {
	grg.group.Use(grg.adapter.convertMiddleware(middleware))
}

// Group creates a sub-group
func (grg *GinRouteGroup) Group(prefix string) scaffold.RouteGroup {
	return &GinRouteGroup{group: grg.group.Group(prefix), adapter: grg.adapter}
}

// convertHandler converts scaffold.HandlerFunc to gin.HandlerFunc
func (ga *GinAdapter) convertHandler(handler scaffold.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestContext := &GinRequestContext{ctx: c}
		if err := handler(requestContext); err != nil {
			_ = c.Error(err)
			_ = writeError(c.Request.Context(), requestContext, err)
		}
	}
}

// convertMiddleware converts scaffold.MiddlewareFunc to gin.HandlerFunc
func (ga *GinAdapter) convertMiddleware(middleware scaffold.MiddlewareFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestContext := &GinRequestContext{ctx: c}

		next := func(rc scaffold.RequestContext) error {
			c.Next()
			return nil
		}

		if err := middleware(next)(requestContext); err != nil {
			c.Abort()
			_ = writeError(c.Request.Context(), requestContext, err)
		}
	}
}

// GinRequestContext implements scaffold.RequestContext for Gin
type GinRequestContext struct {
	ctx *gin.Context
}

// Context returns the request context
func (grc *GinRequestContext) Context() context.Context {
	return grc.ctx.Request.Context()
}

// Method returns the HTTP method
func (grc *GinRequestContext) Method() string {
	return grc.ctx.Request.Method
}

// Path returns the request path
func (grc *GinRequestContext) Path() string {
	return grc.ctx.Request.URL.Path
}

// Param returns a path parameter; "*" names the catch-all
func (grc *GinRequestContext) Param(name string) string {
	if name == scaffold.WildcardParam {
		name = "path"
	}
	value := grc.ctx.Param(name)
	if name == "path" {
		return strings.TrimPrefix(value, "/")
	}
	return value
}

// QueryParam returns a query parameter
func (grc *GinRequestContext) QueryParam(name string) string {
	return grc.ctx.Query(name)
}

// QueryParams returns all query parameters
func (grc *GinRequestContext) QueryParams() map[string][]string {
	return grc.ctx.Request.URL.Query()
}

// RealIP returns the client IP
func (grc *GinRequestContext) RealIP() string {
	return grc.ctx.ClientIP()
}

// Request returns the request interface
func (grc *GinRequestContext) Request() scaffold.RequestInterface {
	return &GinRequestInterface{ctx: grc.ctx}
}

// Response returns the response interface
func (grc *GinRequestContext) Response() scaffold.ResponseInterface {
	return &GinResponseInterface{ctx: grc.ctx}
}

// Get retrieves a value from the context
func (grc *GinRequestContext) Get(key string) interface{} {
	value, _ := grc.ctx.Get(key)
	return value
}

// Set stores a value in the context
func (grc *GinRequestContext) Set(key string, val interface{}) {
	grc.ctx.Set(key, val)
}

// FormParams returns the posted form values
func (grc *GinRequestContext) FormParams() (map[string][]string, error) {
	req := grc.ctx.Request
	if strings.HasPrefix(req.Header.Get("Content-Type"), gin.MIMEMultipartPOSTForm) {
		if err := req.ParseMultipartForm(32 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return nil, err
		}
	} else if err := req.ParseForm(); err != nil {
		return nil, err
	}
	return req.PostForm, nil
}

// GinRequestInterface implements scaffold.RequestInterface for Gin
type GinRequestInterface struct {
	ctx *gin.Context
}

// Header returns a request header
func (gri *GinRequestInterface) Header(key string) string {
	return gri.ctx.GetHeader(key)
}

// BodyReader returns the request body
func (gri *GinRequestInterface) BodyReader() io.Reader {
	return gri.ctx.Request.Body
}

// ContentLength returns the content length
func (gri *GinRequestInterface) ContentLength() int64 {
	return gri.ctx.Request.ContentLength
}

// ContentType returns the content type
func (gri *GinRequestInterface) ContentType() string {
	return gri.ctx.GetHeader("Content-Type")
}

// GinResponseInterface implements scaffold.ResponseInterface for Gin
type GinResponseInterface struct {
	ctx *gin.Context
}

// Status returns the response status code
func (gri *GinResponseInterface) Status() int {
	return gri.ctx.Writer.Status()
}

// Header returns a response header
func (gri *GinResponseInterface) Header(key string) string {
	return gri.ctx.Writer.Header().Get(key)
}

// SetHeader sets a response header
func (gri *GinResponseInterface) SetHeader(key, value string) {
	gri.ctx.Header(key, value)
}

// JSON writes a JSON response
func (gri *GinResponseInterface) JSON(code int, i interface{}) error {
	gri.ctx.JSON(code, i)
	return nil
}

// String writes a string response
func (gri *GinResponseInterface) String(code int, s string) error {
	gri.ctx.String(code, s)
	return nil
}

// HTML writes an HTML response
func (gri *GinResponseInterface) HTML(code int, html string) error {
	gri.ctx.Data(code, "text/html; charset=utf-8", []byte(html))
	return nil
}

// Blob writes a blob response
func (gri *GinResponseInterface) Blob(code int, contentType string, b []byte) error {
	gri.ctx.Data(code, contentType, b)
	return nil
}

// Redirect sends a redirect
func (gri *GinResponseInterface) Redirect(code int, url string) error {
	gri.ctx.Redirect(code, url)
	gri.ctx.Writer.WriteHeaderNow()
	return nil
}

// Written returns whether the response has been written
func (gri *GinResponseInterface) Written() bool {
	return gri.ctx.Writer.Written()
}
