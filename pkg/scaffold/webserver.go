package scaffold

import (
	"context"
	"io"
)

// WebServerInterface defines the contract for web server implementations
type WebServerInterface interface {
	// Route registration
	RegisterRoute(method string, path Path, handler HandlerFunc, middlewares ...MiddlewareFunc)
	RegisterGroup(prefix string) RouteGroup

	// Global middleware
	Use(middleware MiddlewareFunc)

	// Server lifecycle
	Start(addr string) error
	Stop(ctx context.Context) error

	// Server information
	Name() string
}

// RouteGroup represents a group of routes with a common prefix
type RouteGroup interface {
	RegisterRoute(method string, path Path, handler HandlerFunc, middlewares ...MiddlewareFunc)
	Use(middleware MiddlewareFunc)
	Group(prefix string) RouteGroup
}

// RequestContext provides a framework-agnostic interface for handling HTTP requests
type RequestContext interface {
	// Context is cancelled when the client goes away or the server shuts down
	Context() context.Context

	// Request data
	Method() string
	Path() string
	RealIP() string

	// Parameters
	Param(key string) string

	// Query parameters
	QueryParam(key string) string
	QueryParams() map[string][]string

	// Headers
	Request() RequestInterface
	Response() ResponseInterface

	// Context data
	Get(key string) interface{}
	Set(key string, val interface{})

	// Request body
	FormParams() (map[string][]string, error)
}

// RequestInterface provides access to the underlying request
type RequestInterface interface {
	Header(key string) string
	BodyReader() io.Reader
	ContentLength() int64
	ContentType() string
}

// ResponseInterface provides response writing capabilities
type ResponseInterface interface {
	// Status
	Status() int

	// Headers
	Header(key string) string
	SetHeader(key, value string)

	// Content
	JSON(code int, i interface{}) error
	String(code int, s string) error
	HTML(code int, html string) error
	Blob(code int, contentType string, b []byte) error
	Redirect(code int, url string) error

	// Response data
	Written() bool
}

// HandlerFunc defines the signature for HTTP handlers
type HandlerFunc func(RequestContext) error

// MiddlewareFunc defines the signature for middleware
type MiddlewareFunc func(HandlerFunc) HandlerFunc
