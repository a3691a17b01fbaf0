// Package router assembles the gin engine: the middleware chain, the health
// endpoints and the versioned Q&A API.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/setof/qna-backend/internal/infrastructure/logger"
	"github.com/setof/qna-backend/internal/infrastructure/telemetry"
	"github.com/setof/qna-backend/internal/interfaces/http/handler"
	"github.com/setof/qna-backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers all routes under /api/<version>
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// DomainGroup creates a route group for a specific domain
type DomainGroup struct {
	name       string
	prefix     string
	routes     []routeDefinition
	subgroups  []*DomainGroup
	middleware []gin.HandlerFunc
}

type routeDefinition struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewDomainGroup creates a new domain-specific route group
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// Use adds middleware to this group
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

func (dg *DomainGroup) handle(method, path string, handlers []gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, routeDefinition{method: method, path: path, handlers: handlers})
	return dg
}

// GET registers a GET route
func (dg *DomainGroup) GET(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodGet, path, handlers)
}

// POST registers a POST route
func (dg *DomainGroup) POST(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodPost, path, handlers)
}

// PATCH registers a PATCH route
func (dg *DomainGroup) PATCH(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodPatch, path, handlers)
}

// DELETE registers a DELETE route
func (dg *DomainGroup) DELETE(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodDelete, path, handlers)
}

// Group creates a sub-group within this domain
func (dg *DomainGroup) Group(name, prefix string) *DomainGroup {
	subgroup := NewDomainGroup(name, prefix)
	dg.subgroups = append(dg.subgroups, subgroup)
	return subgroup
}

// RegisterRoutes implements RouteRegistrar
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix)
	if len(dg.middleware) > 0 {
		group.Use(dg.middleware...)
	}
	for _, route := range dg.routes {
		group.Handle(route.method, route.path, route.handlers...)
	}
	for _, subgroup := range dg.subgroups {
		subgroup.RegisterRoutes(group)
	}
}

// Name returns the group name
func (dg *DomainGroup) Name() string {
	return dg.name
}

// Prefix returns the group prefix
func (dg *DomainGroup) Prefix() string {
	return dg.prefix
}

// QnaRoutes builds the /qnas group. Reads accept anonymous callers; every
// write requires the caller identity.
func QnaRoutes(qnas *handler.QnaHandler, replies *handler.ReplyHandler) *DomainGroup {
	auth := middleware.RequireViewer()

	group := NewDomainGroup("qnas", "/qnas").
		GET("", qnas.List).
		POST("/product", auth, qnas.CreateProductQna).
		POST("/order", auth, qnas.CreateOrderQna).
		GET("/:id", qnas.GetByID).
		PATCH("/:id/content", auth, qnas.UpdateContent).
		POST("/:id/images", auth, qnas.AddImages).
		PATCH("/:id/close", auth, qnas.Close).
		DELETE("/:id", auth, qnas.Delete)

	group.Group("replies", "/:id/replies").
		GET("", replies.List).
		POST("", auth, replies.Create).
		PATCH("/:replyId", auth, replies.Update).
		DELETE("/:replyId", auth, replies.Delete)

	return group
}

// Config carries everything New needs
type Config struct {
	Logger        *zap.Logger
	ServiceName   string
	Version       string
	Tracing       bool
	MeterProvider *telemetry.MeterProvider

	TrustedProxies []string
	AllowOrigins   []string
	MaxBodyBytes   int64
	// RateLimiter is optional
	RateLimiter *middleware.RateLimiter

	Health  *handler.HealthHandler
	Qnas    *handler.QnaHandler
	Replies *handler.ReplyHandler
}

// New builds the engine with the full middleware chain and all routes
func New(cfg Config) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}
	middleware.SetupValidator()

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.AllowOrigins

	engine.Use(
		middleware.RequestID(),
		logger.Recovery(log),
		logger.GinMiddleware(log),
		middleware.TracingWithConfig(middleware.TracingConfig{ServiceName: cfg.ServiceName, Enabled: cfg.Tracing}),
		middleware.SpanErrorMarker(),
		middleware.HTTPMetrics(middleware.HTTPMetricsConfig{MeterProvider: cfg.MeterProvider, Enabled: true, Logger: log}),
		middleware.Secure(),
		middleware.CORSWithConfig(cors),
		middleware.Identity(),
		middleware.TracingAttributeInjector(),
	)
	if cfg.MaxBodyBytes > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	}
	if cfg.RateLimiter != nil {
		engine.Use(middleware.RateLimit(cfg.RateLimiter))
	}

	health := cfg.Health
	if health == nil {
		health = handler.NewHealthHandler(nil, cfg.Version)
	}
	engine.GET("/health", health.Health)

	r := NewRouter(engine)
	r.Register(NewDomainGroup("system", "/system").GET("/info", health.GetSystemInfo))
	if cfg.Qnas != nil && cfg.Replies != nil {
		r.Register(QnaRoutes(cfg.Qnas, cfg.Replies))
	}
	r.Setup()

	return engine, nil
}
