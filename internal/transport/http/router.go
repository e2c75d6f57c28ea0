package httptransport

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"

	"inventory-server-go/internal/platform/config"
	"inventory-server-go/internal/platform/logging"
	"inventory-server-go/internal/platform/observability"
	"inventory-server-go/internal/transport/http/envelope"
)

// Options configures the HTTP router builder.
type Options struct {
	Config         *config.Config
	Logger         *logging.Logger
	Envelope       *envelope.Builder
	AuthMiddleware gin.HandlerFunc
	StaticRoot     string
}

// Router bundles the gin engine and the route groups services register on.
// API is the public /api group, Secured the subgroup behind the auth
// middleware.
type Router struct {
	Engine  *gin.Engine
	API     *gin.RouterGroup
	Secured *gin.RouterGroup
}

// Build constructs a gin engine with recovery, request logging, CORS and
// observability middlewares. The CORS middleware is derived from the
// envelope builder's resolved header set, so preflight answers and response
// envelopes can never disagree about origins, methods or headers.
func Build(opts Options) (*Router, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("http router requires config")
	}
	if opts.Envelope == nil {
		return nil, fmt.Errorf("http router requires an envelope builder")
	}
	logger := opts.Logger

	if strings.EqualFold(opts.Config.Log.Level, "debug") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	if logger != nil {
		engine.Use(loggingMiddleware(logger))
	}
	engine.Use(observabilityMiddleware())

	engine.SetTrustedProxies([]string{"0.0.0.0"})

	engine.Use(cors.New(corsFromEnvelope(opts.Envelope, opts.Config.CORS.MaxAge)))

	staticRoot := opts.StaticRoot
	if staticRoot == "" {
		staticRoot = opts.Config.Web.StaticDir
	}
	serveStatic := opts.Config.Web.Enabled && staticRoot != ""
	if serveStatic {
		engine.Use(static.Serve("/", static.LocalFile(staticRoot, true)))
	}

	engine.NoRoute(noRouteHandler(opts.Envelope, serveStatic, staticRoot))

	api := engine.Group("/api")
	var secured *gin.RouterGroup
	if opts.AuthMiddleware != nil {
		secured = api.Group("")
		secured.Use(opts.AuthMiddleware)
	}

	return &Router{
		Engine:  engine,
		API:     api,
		Secured: secured,
	}, nil
}

// corsFromEnvelope reads the builder's resolved headers back into a
// gin-contrib/cors config. The builder already validated the origin and
// backfilled method/header defaults.
func corsFromEnvelope(env *envelope.Builder, maxAge time.Duration) cors.Config {
	headers := env.Headers()
	if maxAge <= 0 {
		maxAge = 12 * time.Hour
	}
	return cors.Config{
		AllowOrigins:     splitHeaderList(headers["Access-Control-Allow-Origin"]),
		AllowMethods:     splitHeaderList(headers["Access-Control-Allow-Methods"]),
		AllowHeaders:     splitHeaderList(headers["Access-Control-Allow-Headers"]),
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: headers["Access-Control-Allow-Credentials"] == "true",
		MaxAge:           maxAge,
	}
}

func splitHeaderList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// noRouteHandler answers requests no route matched: API paths get a 404
// failure envelope, anything else falls back to the SPA index when static
// serving is on.
func noRouteHandler(env *envelope.Builder, serveStatic bool, staticRoot string) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api/") || path == "/api" {
			envelope.Write(c, env.FailureStatus(http.StatusNotFound, "not_found",
				fmt.Sprintf("no route for %s %s", c.Request.Method, path)))
			return
		}
		if serveStatic && c.Request.Method == http.MethodGet {
			c.File(filepath.Join(staticRoot, "index.html"))
			return
		}
		c.Status(http.StatusNotFound)
	}
}

func loggingMiddleware(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		logger.InfoTag("HTTP", "%s %s -> %d (%s) %s",
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			duration,
			c.ClientIP(),
		)
	}
}

func observabilityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		ctx := c.Request.Context()
		end := observability.StartSpan(ctx, "http.server", path)

		start := time.Now()
		c.Next()
		duration := time.Since(start)

		var spanErr error
		if len(c.Errors) > 0 {
			spanErr = c.Errors.Last().Err
		} else if status := c.Writer.Status(); status >= http.StatusInternalServerError {
			spanErr = fmt.Errorf("status %d", status)
		}
		end(spanErr)

		observability.RecordMetric(ctx, "http.requests", 1, map[string]string{
			"component": "http.server",
			"method":    c.Request.Method,
			"path":      path,
			"status":    strconv.Itoa(c.Writer.Status()),
		})
		observability.RecordMetric(ctx, "http.request.duration_ms",
			float64(duration.Milliseconds()), map[string]string{
				"component": "http.server",
				"method":    c.Request.Method,
				"path":      path,
			})
	}
}
