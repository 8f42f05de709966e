package http

import (
	"embed"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed static/index.html
var staticFS embed.FS

func (s *Server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(observabilityMiddleware(s.deps.Obs, s.logger))
	engine.Use(cors.New(corsConfig(s.deps.Server.AllowedOrigins)))
	if s.deps.Server.MaxUploadBytes > 0 {
		engine.MaxMultipartMemory = s.deps.Server.MaxUploadBytes
	}

	engine.GET("/", s.handleIndex)
	engine.GET("/healthz", s.handleHealth)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	limited := rateLimitMiddleware(RateLimitConfig{
		RequestsPerMinute: s.deps.Server.RateLimitPerMinute,
		Burst:             s.deps.Server.RateLimitBurst,
	})
	engine.POST("/evaluate", limited, s.handleEvaluate)
	engine.POST("/feedback", s.handleFeedback)
	engine.POST("/extract", limited, s.handleExtract)

	api := engine.Group("/api")
	{
		api.GET("/evaluations/:id", s.handleGetEvaluation)
		api.GET("/criteria", s.handleCriteria)
	}
	return engine
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Requested-With"}
	allowAll := len(origins) == 0
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
	}
	if allowAll {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func (s *Server) handleIndex(c *gin.Context) {
	page, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		c.String(http.StatusInternalServerError, "index unavailable")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"generator": s.deps.Generator != nil,
		"model":     s.deps.ModelLabel,
	})
}

func errorJSON(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": message})
}
