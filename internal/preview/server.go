// Package preview serves a built site the way the production distribution
// does, so pull requests can be reviewed before they reach CloudFront.
package preview

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ryands17/cloud-resume/internal/edge"
)

type options struct {
	logRequests bool
}

// Option configures the router.
type Option func(*options)

// WithRequestLogging logs one line per request when enabled.
func WithRequestLogging(enabled bool) Option {
	return func(o *options) {
		o.logRequests = enabled
	}
}

// NewRouter returns a gin engine serving files from siteDir. Paths go through
// the same viewer rules as the blog distribution before they are resolved.
func NewRouter(siteDir string, logger *zap.Logger, opts ...Option) *gin.Engine {
	cfg := options{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(recovery(logger))
	if cfg.logRequests {
		r.Use(requestLogger(logger))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.NoRoute(edge.Middleware(), serveSite(siteDir, logger))

	return r
}

func serveSite(siteDir string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.JSON(http.StatusMethodNotAllowed, gin.H{"message": "method not allowed"})
			return
		}

		uri := c.Request.URL.Path
		name := filepath.Join(siteDir, filepath.FromSlash(path.Clean("/"+uri)))

		f, err := os.Open(name)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				logger.Warn("open site file", zap.String("path", name), zap.Error(err))
			}
			notFound(c, uri)
			return
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil || info.IsDir() {
			notFound(c, uri)
			return
		}

		// ServeContent, unlike ServeFile, does not redirect */index.html.
		http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
	}
}

func notFound(c *gin.Context, uri string) {
	c.Header(edge.CacheControlHeader, "no-store")
	c.JSON(http.StatusNotFound, gin.H{"message": "not found: " + uri})
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("resolved", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

func recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec any) {
		logger.Error("panic recovered", zap.Any("error", rec))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
	})
}
