package dashboard

import (
	"io/fs"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// registerRoutes sets up all dashboard routes on the Gin router.
func registerRoutes(router *gin.Engine, s *server) {
	// Embedded static assets (served from assets/ subdir of the embed.FS).
	staticFS, _ := fs.Sub(assetsFS, "assets")
	router.StaticFS("/static", http.FS(staticFS))

	router.GET("/healthz", s.handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Pages.
	router.GET("/", s.handleIndex)

	api := router.Group("/api")
	api.GET("/dashboard", s.apiDashboard)
	api.GET("/reports/planned-vs-executed", s.apiPlannedVsExecuted)
	api.GET("/responsibles/:id/groups", s.apiResponsibleGroups)
	api.GET("/events", s.handleSSE)

	for _, r := range resources() {
		pages := router.Group("/" + r.path)
		pages.GET("", s.htmlList(r))
		pages.GET("/new", s.htmlNew(r))
		pages.POST("", s.htmlCreate(r))
		pages.GET("/:id", s.htmlShow(r))
		pages.GET("/:id/edit", s.htmlEdit(r))
		pages.POST("/:id", s.htmlUpdate(r))
		pages.POST("/:id/delete", s.htmlDelete(r))

		api.GET("/"+r.path, s.apiList(r))
		api.POST("/"+r.path, s.apiCreate(r))
		api.GET("/"+r.path+"/:id", s.apiGet(r))
		api.PUT("/"+r.path+"/:id", s.apiUpdate(r))
		api.PATCH("/"+r.path+"/:id", s.apiUpdate(r))
		api.DELETE("/"+r.path+"/:id", s.apiDelete(r))
	}

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.HTML(http.StatusNotFound, "error.html", gin.H{
			"Title":   http.StatusText(http.StatusNotFound),
			"Status":  http.StatusNotFound,
			"Message": "page not found",
		})
	})
}

func (s *server) handleHealth(c *gin.Context) {
	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
