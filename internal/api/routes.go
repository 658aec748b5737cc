package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/codyseavey/booster-value/internal/api/handlers"
	"github.com/codyseavey/booster-value/internal/metrics"
	"github.com/codyseavey/booster-value/internal/services"
)

// RouterOptions carries the non-service settings of the router
type RouterOptions struct {
	CORSOrigins  []string
	FrontendPath string
}

func SetupRouter(lookupService *services.LookupService, catalog *services.SetCatalog, gate *services.RequestGate, refresher *services.CacheRefresher, opts RouterOptions) *gin.Engine {
	router := gin.Default()
	router.Use(metricsMiddleware())

	serveFrontend := opts.FrontendPath != "" && dirExists(opts.FrontendPath)

	config := cors.DefaultConfig()
	if len(opts.CORSOrigins) > 0 {
		config.AllowOrigins = opts.CORSOrigins
	} else {
		config.AllowAllOrigins = true
	}
	config.AllowMethods = []string{"GET", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", handlers.ClientIDHeader}
	config.AllowCredentials = false
	router.Use(cors.New(config))

	lookupHandler := handlers.NewLookupHandler(lookupService, catalog, gate)
	setHandler := handlers.NewSetHandler(catalog)
	refreshHandler := handlers.NewRefreshHandler(refresher)

	api := router.Group("/api")
	{
		api.GET("/lookup", lookupHandler.Lookup)
		api.GET("/sets", setHandler.SearchSets)
		api.GET("/refresh/status", refreshHandler.GetRefreshStatus)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if serveFrontend {
		indexPath := filepath.Join(opts.FrontendPath, "index.html")

		router.Static("/assets", filepath.Join(opts.FrontendPath, "assets"))
		router.StaticFile("/favicon.ico", filepath.Join(opts.FrontendPath, "favicon.ico"))

		router.GET("/", func(c *gin.Context) {
			c.File(indexPath)
		})

		// SPA fallback - serve index.html for all non-API routes
		router.NoRoute(func(c *gin.Context) {
			if strings.HasPrefix(c.Request.URL.Path, "/api") {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			c.File(indexPath)
		})
	}

	return router
}

// metricsMiddleware records request counts and latency per route template
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
