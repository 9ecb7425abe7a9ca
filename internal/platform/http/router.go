package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/weiwei-tsao/gerencial-qoe/apps/api/internal/business/dataset"
	"github.com/weiwei-tsao/gerencial-qoe/apps/api/internal/business/qoe"
)

// Options tunes the router.
type Options struct {
	AllowedOrigins string
	// SectorMatch is used by the generic filters; sector pages always
	// normalize.
	SectorMatch    qoe.SectorMatcher
	MaxUploadBytes int64
	HistoryLimit   int
}

// Router wires HTTP handlers.
type Router struct {
	datasets     *dataset.Service
	sectorMatch  qoe.SectorMatcher
	maxUpload    int64
	historyLimit int
	origins      string
}

func NewRouter(datasets *dataset.Service, opts Options) *gin.Engine {
	r := &Router{
		datasets:     datasets,
		sectorMatch:  opts.SectorMatch,
		maxUpload:    opts.MaxUploadBytes,
		historyLimit: opts.HistoryLimit,
		origins:      opts.AllowedOrigins,
	}
	if r.sectorMatch == nil {
		r.sectorMatch = qoe.ExactSectorMatch{}
	}
	if r.maxUpload <= 0 {
		r.maxUpload = 32 << 20
	}
	if r.historyLimit <= 0 {
		r.historyLimit = 50
	}

	router := gin.New()
	router.Use(requestLogger(), gin.Recovery(), r.corsMiddleware())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/dataset", r.getDataset)
		api.POST("/dataset/upload", r.uploadDataset)
		api.POST("/dataset/reload", r.reloadDataset)
		api.GET("/uploads", r.listUploads)

		api.GET("/filters", r.getFilters)
		api.GET("/dashboard", r.getDashboard)
		api.GET("/sectors/:sector", r.getSector)
		api.GET("/cities/:city", r.getCity)
		api.GET("/nodes", r.listNodes)
		api.GET("/records", r.listRecords)
		api.GET("/records/export", r.exportRecords)
		api.GET("/report", r.getReport)
		api.GET("/report/export", r.exportReport)
		api.GET("/methodology", r.getMethodology)
	}

	return router
}

func (r *Router) corsMiddleware() gin.HandlerFunc {
	origins := strings.Split(r.origins, ",")
	trimmed := make([]string, 0, len(origins))
	for _, o := range origins {
		if t := strings.TrimSpace(o); t != "" {
			trimmed = append(trimmed, t)
		}
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowed := "*"
		for _, o := range trimmed {
			if o == "*" || o == origin {
				allowed = origin
				break
			}
		}
		c.Header("Access-Control-Allow-Origin", allowed)
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		c.Next()
	}
}

// snapshot fetches the active dataset or answers 409.
func (r *Router) snapshot(c *gin.Context) (dataset.Snapshot, bool) {
	snap, err := r.datasets.Current()
	if errors.Is(err, dataset.ErrNoDataset) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return dataset.Snapshot{}, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return dataset.Snapshot{}, false
	}
	return snap, true
}

// filterFromQuery reads month, city and sector query parameters.
func (r *Router) filterFromQuery(c *gin.Context) qoe.Filter {
	return qoe.Filter{
		Month:       strings.TrimSpace(c.Query("month")),
		City:        strings.TrimSpace(c.Query("city")),
		Sector:      strings.TrimSpace(c.Query("sector")),
		SectorMatch: r.sectorMatch,
	}
}
