package adapters

import (
	"bytes"
	"context"
	"io"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/toyz/scaffold/pkg/scaffold"
)

// writtenKey marks a Fiber context whose response was written by a handler
const writtenKey = "scaffold.written"

// FiberAdapter wraps a Fiber app to implement scaffold.WebServerInterface
type FiberAdapter struct {
	app *fiber.App
}

// NewFiberAdapter creates a new Fiber adapter instance
func NewFiberAdapter() *FiberAdapter {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	return &FiberAdapter{app: app}
}

// NewDefaultFiberAdapter creates a new Fiber adapter with default middleware
func NewDefaultFiberAdapter() *FiberAdapter {
	adapter := NewFiberAdapter()

	adapter.app.Use(logger.New())
	adapter.app.Use(recover.New())

	return adapter
}

// RegisterRoute registers a route with the Fiber app
func (fa *FiberAdapter) RegisterRoute(method string, path scaffold.Path, handler scaffold.HandlerFunc, middlewares ...scaffold.MiddlewareFunc) {
	fa.app.Add(strings.ToUpper(method), scaffold.ConvertPath(path, scaffold.DialectFiber), fiberHandlers(handler, middlewares)...)
}

// RegisterGroup creates a new route group with the given prefix
func (fa *FiberAdapter) RegisterGroup(prefix string) scaffold.RouteGroup {
	return &FiberRouteGroup{group: fa.app.Group(prefix)}
}

// Use adds middleware to the Fiber app
func (fa *FiberAdapter) Use(middleware scaffold.MiddlewareFunc) {
	fa.app.Use(convertMiddlewareToFiber(middleware))
}

// Start starts the Fiber server
func (fa *FiberAdapter) Start(addr string) error {
	return fa.app.Listen(addr)
}

// Stop stops the Fiber server
func (fa *FiberAdapter) Stop(ctx context.Context) error {
	return fa.app.ShutdownWithContext(ctx)
}

// Name returns the adapter name
func (fa *FiberAdapter) Name() string {
	return "Fiber"
}

// App returns the underlying Fiber app
func (fa *FiberAdapter) App() *fiber.App {
	return fa.app
}

// FiberRouteGroup wraps a Fiber route group to implement scaffold.RouteGroup
type FiberRouteGroup struct {
	group fiber.Router
}

// RegisterRoute registers a route with this group
func (frg *FiberRouteGroup) RegisterRoute(method string, path scaffold.Path, handler scaffold.HandlerFunc, middlewares ...scaffold.MiddlewareFunc) {
	frg.group.Add(strings.ToUpper(method), scaffold.ConvertPath(path, scaffold.DialectFiber), fiberHandlers(handler, middlewares)...)
}

// Use adds middleware to this route group
func (frg *FiberRouteGroup) Use(middleware scaffold.MiddlewareFunc) {
	frg.group.Use(convertMiddlewareToFiber(middleware))
}

// Group creates a sub-group with the given prefix
func (frg *FiberRouteGroup) Group(prefix string) scaffold.RouteGroup {
	return &FiberRouteGroup{group: frg.group.Group(prefix)}
}

func fiberHandlers(handler scaffold.HandlerFunc, middlewares []scaffold.MiddlewareFunc) []fiber.Handler {
	handlers := make([]fiber.Handler, 0, len(middlewares)+1)
	for _, mw := range middlewares {
		handlers = append(handlers, convertMiddlewareToFiber(mw))
	}
	return append(handlers, convertHandlerToFiber(handler))
}

// convertHandlerToFiber converts a scaffold handler to a Fiber handler
func convertHandlerToFiber(handler scaffold.HandlerFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rc := &FiberRequestContext{ctx: c}
		if err := handler(rc); err != nil {
			return writeError(rc.Context(), rc, err)
		}
		return nil
	}
}

// convertMiddlewareToFiber converts a scaffold middleware to a Fiber middleware
func convertMiddlewareToFiber(middleware scaffold.MiddlewareFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rc := &FiberRequestContext{ctx: c}
		err := middleware(func(ctx scaffold.RequestContext) error {
			return c.Next()
		})(rc)
		if err != nil {
			return writeError(rc.Context(), rc, err)
		}
		return nil
	}
}

// FiberRequestContext wraps fiber.Ctx to implement scaffold.RequestContext
type FiberRequestContext struct {
	ctx *fiber.Ctx
}

// Context returns the user context of the request
func (frc *FiberRequestContext) Context() context.Context {
	return frc.ctx.UserContext()
}

func (frc *FiberRequestContext) Method() string {
	return frc.ctx.Method()
}

func (frc *FiberRequestContext) Path() string {
	return frc.ctx.Path()
}

func (frc *FiberRequestContext) RealIP() string {
	return frc.ctx.IP()
}

func (frc *FiberRequestContext) Param(name string) string {
	return frc.ctx.Params(name)
}

func (frc *FiberRequestContext) QueryParam(key string) string {
	return frc.ctx.Query(key)
}

func (frc *FiberRequestContext) QueryParams() map[string][]string {
	result := make(map[string][]string)
	frc.ctx.Request().URI().QueryArgs().VisitAll(func(key, value []byte) {
		k := string(key)
		result[k] = append(result[k], string(value))
	})
	return result
}

func (frc *FiberRequestContext) Request() scaffold.RequestInterface {
	return &FiberRequest{ctx: frc.ctx}
}

func (frc *FiberRequestContext) Response() scaffold.ResponseInterface {
	return &FiberResponse{ctx: frc.ctx}
}

func (frc *FiberRequestContext) Get(key string) interface{} {
	return frc.ctx.Locals(key)
}

func (frc *FiberRequestContext) Set(key string, val interface{}) {
	frc.ctx.Locals(key, val)
}

// FormParams returns url-encoded or multipart form values
func (frc *FiberRequestContext) FormParams() (map[string][]string, error) {
	if strings.HasPrefix(string(frc.ctx.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		form, err := frc.ctx.MultipartForm()
		if err != nil {
			return nil, err
		}
		return form.Value, nil
	}

	result := make(map[string][]string)
	frc.ctx.Request().PostArgs().VisitAll(func(key, value []byte) {
		k := string(key)
		result[k] = append(result[k], string(value))
	})
	return result, nil
}

// FiberRequest wraps fiber.Ctx to implement scaffold.RequestInterface
type FiberRequest struct {
	ctx *fiber.Ctx
}

func (fr *FiberRequest) Header(key string) string {
	return fr.ctx.Get(key)
}

// BodyReader returns the buffered request body
func (fr *FiberRequest) BodyReader() io.Reader {
	return bytes.NewReader(fr.ctx.Body())
}

func (fr *FiberRequest) ContentLength() int64 {
	return int64(len(fr.ctx.Body()))
}

func (fr *FiberRequest) ContentType() string {
	return fr.ctx.Get(fiber.HeaderContentType)
}

// FiberResponse wraps fiber.Ctx to implement scaffold.ResponseInterface
type FiberResponse struct {
	ctx *fiber.Ctx
}

func (fr *FiberResponse) Status() int {
	return fr.ctx.Response().StatusCode()
}

func (fr *FiberResponse) Header(key string) string {
	return string(fr.ctx.Response().Header.Peek(key))
}

func (fr *FiberResponse) SetHeader(name, value string) {
	fr.ctx.Set(name, value)
}

func (fr *FiberResponse) written() {
	fr.ctx.Locals(writtenKey, true)
}

func (fr *FiberResponse) JSON(code int, data interface{}) error {
	fr.written()
	return fr.ctx.Status(code).JSON(data)
}

func (fr *FiberResponse) String(code int, s string) error {
	fr.written()
	return fr.ctx.Status(code).SendString(s)
}

func (fr *FiberResponse) HTML(code int, html string) error {
	fr.written()
	fr.ctx.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return fr.ctx.Status(code).SendString(html)
}

func (fr *FiberResponse) Blob(code int, contentType string, data []byte) error {
	fr.written()
	fr.ctx.Set(fiber.HeaderContentType, contentType)
	return fr.ctx.Status(code).Send(data)
}

func (fr *FiberResponse) Redirect(code int, url string) error {
	fr.written()
	return fr.ctx.Redirect(url, code)
}

func (fr *FiberResponse) Written() bool {
	written, _ := fr.ctx.Locals(writtenKey).(bool)
	return written
}
