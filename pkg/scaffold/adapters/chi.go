package adapters

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/toyz/scaffold/pkg/scaffold"
)

// ChiOption configures a ChiAdapter
type ChiOption func(*ChiAdapter)

// WithTracing wraps every request in an OpenTelemetry server span
func WithTracing(operation string) ChiOption {
	return func(ca *ChiAdapter) {
		ca.router.Use(otelhttp.NewMiddleware(operation))
	}
}

// ChiAdapter implements scaffold.WebServerInterface for chi
type ChiAdapter struct {
	router chi.Router

	mu     sync.Mutex
	server *http.Server
}

// NewChiAdapter creates a chi adapter around router
func NewChiAdapter(router chi.Router, opts ...ChiOption) *ChiAdapter {
	ca := &ChiAdapter{router: router}
	for _, opt := range opts {
		opt(ca)
	}
	return ca
}

// NewDefaultChiAdapter creates a chi adapter with a new router
func NewDefaultChiAdapter(opts ...ChiOption) *ChiAdapter {
	return NewChiAdapter(chi.NewRouter(), opts...)
}

// RegisterRoute registers a route with the chi router
func (ca *ChiAdapter) RegisterRoute(method string, path scaffold.Path, handler scaffold.HandlerFunc, middlewares ...scaffold.MiddlewareFunc) {
	ca.router.Method(strings.ToUpper(method), scaffold.ConvertPath(path, scaffold.DialectChi), chiHandler(handler, middlewares))
}

// RegisterGroup creates a route group below prefix
func (ca *ChiAdapter) RegisterGroup(prefix string) scaffold.RouteGroup {
	return &ChiRouteGroup{router: ca.router, prefix: strings.TrimRight(prefix, "/")}
}

// Use adds global middleware
func (ca *ChiAdapter) Use(middleware scaffold.MiddlewareFunc) {
	ca.router.Use(convertMiddlewareToChi(middleware))
}

// Start serves the router on addr
func (ca *ChiAdapter) Start(addr string) error {
	ca.mu.Lock()
	ca.server = &http.Server{Addr: addr, Handler: ca.router}
	srv := ca.server
	ca.mu.Unlock()
	return srv.ListenAndServe()
}

// Stop shuts the server down
func (ca *ChiAdapter) Stop(ctx context.Context) error {
	ca.mu.Lock()
	srv := ca.server
	ca.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// Name returns the adapter name
func (ca *ChiAdapter) Name() string {
	return "Chi"
}

// Router returns the underlying chi router
func (ca *ChiAdapter) Router() chi.Router {
	return ca.router
}

// ChiRouteGroup implements scaffold.RouteGroup for chi. Group middleware
// applies to routes registered after Use.
type ChiRouteGroup struct {
	router      chi.Router
	prefix      string
	middlewares []scaffold.MiddlewareFunc
}

// RegisterRoute registers a route below the group prefix
func (crg *ChiRouteGroup) RegisterRoute(method string, path scaffold.Path, handler scaffold.HandlerFunc, middlewares ...scaffold.MiddlewareFunc) {
	all := append(append([]scaffold.MiddlewareFunc(nil), crg.middlewares...), middlewares...)
	crg.router.Method(strings.ToUpper(method), crg.prefix+scaffold.ConvertPath(path, scaffold.DialectChi), chiHandler(handler, all))
}

// Use adds middleware to the group
func (crg *ChiRouteGroup) Use(middleware scaffold.MiddlewareFunc) {
	crg.middlewares = append(crg.middlewares, middleware)
}

// Group creates a sub-group
func (crg *ChiRouteGroup) Group(prefix string) scaffold.RouteGroup {
	return &ChiRouteGroup{
		router:      crg.router,
		prefix:      crg.prefix + strings.TrimRight(prefix, "/"),
		middlewares: append([]scaffold.MiddlewareFunc(nil), crg.middlewares...),
	}
}

func chiHandler(handler scaffold.HandlerFunc, middlewares []scaffold.MiddlewareFunc) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rc := newChiRequestContext(w, r)
		if err := handler(rc); err != nil {
			_ = writeError(r.Context(), rc, err)
		}
	})
}

// convertMiddlewareToChi converts a scaffold middleware to net/http middleware
func convertMiddlewareToChi(middleware scaffold.MiddlewareFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rc := newChiRequestContext(w, r)
			err := middleware(func(ctx scaffold.RequestContext) error {
				next.ServeHTTP(rc.writer, rc.request)
				return nil
			})(rc)
			if err != nil {
				_ = writeError(r.Context(), rc, err)
			}
		})
	}
}

type chiValuesKey struct{}

// ChiRequestContext implements scaffold.RequestContext over net/http
type ChiRequestContext struct {
	writer  *statusWriter
	request *http.Request
	values  map[string]interface{}
}

func newChiRequestContext(w http.ResponseWriter, r *http.Request) *ChiRequestContext {
	sw, ok := w.(*statusWriter)
	if !ok {
		sw = &statusWriter{ResponseWriter: w}
	}
	values, ok := r.Context().Value(chiValuesKey{}).(map[string]interface{})
	if !ok {
		values = make(map[string]interface{})
		r = r.WithContext(context.WithValue(r.Context(), chiValuesKey{}, values))
	}
	return &ChiRequestContext{writer: sw, request: r, values: values}
}

// Context returns the request context
func (crc *ChiRequestContext) Context() context.Context {
	return crc.request.Context()
}

// Method returns the HTTP method
func (crc *ChiRequestContext) Method() string {
	return crc.request.Method
}

// Path returns the request path
func (crc *ChiRequestContext) Path() string {
	return crc.request.URL.Path
}

// RealIP returns the remote address
func (crc *ChiRequestContext) RealIP() string {
	if fwd := crc.request.Header.Get("X-Forwarded-For"); fwd != "" {
		ip, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(ip)
	}
	return crc.request.RemoteAddr
}

// Param returns a path parameter
func (crc *ChiRequestContext) Param(key string) string {
	return chi.URLParam(crc.request, key)
}

// QueryParam returns a query parameter
func (crc *ChiRequestContext) QueryParam(key string) string {
	return crc.request.URL.Query().Get(key)
}

// QueryParams returns all query parameters
func (crc *ChiRequestContext) QueryParams() map[string][]string {
	return crc.request.URL.Query()
}

// Request returns the request interface
func (crc *ChiRequestContext) Request() scaffold.RequestInterface {
	return &ChiRequest{request: crc.request}
}

// Response returns the response interface
func (crc *ChiRequestContext) Response() scaffold.ResponseInterface {
	return &ChiResponse{writer: crc.writer, request: crc.request}
}

// Get retrieves a request-scoped value
func (crc *ChiRequestContext) Get(key string) interface{} {
	return crc.values[key]
}

// Set stores a request-scoped value
func (crc *ChiRequestContext) Set(key string, val interface{}) {
	crc.values[key] = val
}

// FormParams returns the posted form values
func (crc *ChiRequestContext) FormParams() (map[string][]string, error) {
	if strings.HasPrefix(crc.request.Header.Get("Content-Type"), "multipart/form-data") {
		if err := crc.request.ParseMultipartForm(32 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return nil, err
		}
	} else if err := crc.request.ParseForm(); err != nil {
		return nil, err
	}
	return crc.request.PostForm, nil
}

// ChiRequest implements scaffold.RequestInterface
type ChiRequest struct {
	request *http.Request
}

// Header returns a request header
func (cr *ChiRequest) Header(key string) string {
	return cr.request.Header.Get(key)
}

// BodyReader returns the request body
func (cr *ChiRequest) BodyReader() io.Reader {
	return cr.request.Body
}

// ContentLength returns the content length
func (cr *ChiRequest) ContentLength() int64 {
	return cr.request.ContentLength
}

// ContentType returns the content type
func (cr *ChiRequest) ContentType() string {
	return cr.request.Header.Get("Content-Type")
}

// statusWriter remembers the status code written through it
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	if sw.status == 0 {
		sw.status = code
	}
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	if sw.status == 0 {
		sw.status = http.StatusOK
	}
	return sw.ResponseWriter.Write(b)
}

// ChiResponse implements scaffold.ResponseInterface
type ChiResponse struct {
	writer  *statusWriter
	request *http.Request
}

// Status returns the written status, 200 before anything was written
func (cr *ChiResponse) Status() int {
	if cr.writer.status == 0 {
		return http.StatusOK
	}
	return cr.writer.status
}

// Header returns a response header
func (cr *ChiResponse) Header(key string) string {
	return cr.writer.Header().Get(key)
}

// SetHeader sets a response header
func (cr *ChiResponse) SetHeader(key, value string) {
	cr.writer.Header().Set(key, value)
}

// JSON writes a JSON response
func (cr *ChiResponse) JSON(code int, i interface{}) error {
	b, err := json.Marshal(i)
	if err != nil {
		return err
	}
	return cr.Blob(code, "application/json; charset=utf-8", b)
}

// String writes a plain text response
func (cr *ChiResponse) String(code int, s string) error {
	return cr.Blob(code, "text/plain; charset=utf-8", []byte(s))
}

// HTML writes an HTML response
func (cr *ChiResponse) HTML(code int, html string) error {
	return cr.Blob(code, "text/html; charset=utf-8", []byte(html))
}

// Blob writes a response with the given content type
func (cr *ChiResponse) Blob(code int, contentType string, b []byte) error {
	cr.writer.Header().Set("Content-Type", contentType)
	cr.writer.WriteHeader(code)
	_, err := cr.writer.Write(b)
	return err
}

// Redirect sends a redirect
func (cr *ChiResponse) Redirect(code int, url string) error {
	http.Redirect(cr.writer, cr.request, url, code)
	return nil
}

// Written returns whether the response has been written
func (cr *ChiResponse) Written() bool {
	return cr.writer.status != 0
}
