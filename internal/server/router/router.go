package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rahim112008/ovinmanager/internal/metrics"
	"github.com/rahim112008/ovinmanager/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(h *handlers.Handler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))
	r.Use(metricsMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/logout", h.Logout)
	r.GET("/session", h.Session)
	r.GET("/standards", h.Standards)
	r.POST("/backup/import", h.ImportBackup)

	api := r.Group("/", h.RequireUser)
	api.PUT("/session/breeder", h.SelectBreeder)

	api.GET("/breeders", h.ListBreeders)
	api.POST("/breeders", h.AddBreeder)
	api.DELETE("/breeders/:id", h.DeleteBreeder)

	api.GET("/sheep", h.ListSheep)
	api.POST("/sheep", h.Intake)
	api.POST("/sheep/analyze", h.Analyze)
	api.GET("/sheep/:id", h.GetSheep)
	api.PUT("/sheep/:id", h.UpdateSheep)
	api.DELETE("/sheep/:id", h.DeleteSheep)
	api.GET("/sheep/:id/conformity", h.Conformity)

	api.GET("/production", h.ListProduction)
	api.POST("/production", h.RecordProduction)
	api.GET("/health-records", h.ListHealth)
	api.POST("/health-records", h.RecordHealth)
	api.GET("/reproduction", h.ListReproduction)
	api.POST("/reproduction", h.RecordMating)
	api.POST("/reproduction/:id/complete", h.CompleteReproduction)

	api.GET("/prices", h.ListPrices)
	api.PUT("/prices/:id", h.UpdatePrice)
	api.GET("/rations", h.ListRations)
	api.POST("/rations", h.SaveRation)
	api.POST("/rations/suggest", h.SuggestRation)

	api.GET("/dashboard", h.Dashboard)
	api.GET("/inventory.xlsx", h.Inventory)

	api.GET("/backup", h.DownloadBackup)
	api.GET("/backup/bundle", h.BackupBundle)
	api.POST("/backup/share", h.ShareBackup)

	api.POST("/messages", h.SendMessage)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}

func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
