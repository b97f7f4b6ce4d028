package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/mapoverlay/internal/pkg/metrics"
)

const requestTimeout = 15 * time.Second

// deprecatedRoutes are kept for clients built against the first overlay API.
var deprecatedRoutes = []DeprecatedRoute{
	{
		Path:        "/v1/alignments/:id/move",
		SunsetDate:  time.Date(2027, time.June, 30, 0, 0, 0, 0, time.UTC),
		Alternative: "/v1/alignments/{id}/center",
	},
}

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: 300 requests per minute per IP. Dragging an overlay
	// issues a move per animation step, so this is higher than a plain CRUD API.
	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, 429, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(DeprecationMiddleware(deprecatedRoutes))

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")

	// Alignment sessions
	v1.Get("/alignments", withTimeout(ListAlignmentsHandler(deps)))
	v1.Post("/alignments", withTimeout(CreateAlignmentHandler(deps)))
	v1.Get("/alignments/:id", withTimeout(GetAlignmentHandler(deps)))
	v1.Delete("/alignments/:id", withTimeout(DeleteAlignmentHandler(deps)))
	v1.Put("/alignments/:id/pairs", withTimeout(UpdatePairsHandler(deps)))
	v1.Put("/alignments/:id/center", withTimeout(MoveOverlayHandler(deps)))
	v1.Post("/alignments/:id/move", withTimeout(MoveOverlayHandler(deps)))
	v1.Put("/alignments/:id/opacity", withTimeout(SetOpacityHandler(deps)))
	v1.Post("/alignments/:id/accuracy", withTimeout(AlignmentAccuracyHandler(deps)))
	v1.Get("/alignments/:id/project", withTimeout(ProjectHandler(deps)))
	v1.Get("/alignments/:id/unproject", withTimeout(UnprojectHandler(deps)))
	v1.Get("/alignments/:id/footprint", withTimeout(FootprintHandler(deps)))
	v1.Put("/alignments/:id/page-image", withTimeout(PutPageImageHandler(deps)))
	v1.Get("/alignments/:id/page-image", withTimeout(GetPageImageHandler(deps)))
	v1.Get("/overlays/containing", withTimeout(ContainingHandler(deps)))

	// Stateless engine
	g := v1.Group("/georef")
	g.Post("/estimate", EstimateHandler())
	g.Post("/transform", TransformHandler())
	g.Post("/invert", InvertHandler())
	g.Post("/bounds", BoundsHandler())
	g.Post("/accuracy", AccuracyHandler())
	g.Post("/recenter", RecenterHandler())
	g.Get("/distance", DistanceHandler())

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app, DefaultOpenAPIPath)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}

func withTimeout(h fiber.Handler) fiber.Handler {
	return timeout.NewWithContext(h, requestTimeout)
}
