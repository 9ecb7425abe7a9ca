package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/weiwei-tsao/gerencial-qoe/apps/api/internal/business/dataset"
	"github.com/weiwei-tsao/gerencial-qoe/apps/api/internal/platform/spreadsheet"
	"github.com/weiwei-tsao/gerencial-qoe/apps/api/pkg/model"
)

func (r *Router) getDataset(c *gin.Context) {
	snap, ok := r.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, snap.Dataset)
}

func (r *Router) uploadDataset(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, r.maxUpload)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file exceeds upload limit"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field \"file\" is required"})
		return
	}
	defer file.Close()

	snap, err := r.datasets.Upload(c.Request.Context(), header.Filename, file)
	if err != nil {
		writeIngestError(c, err)
		return
	}
	c.JSON(http.StatusCreated, snap.Dataset)
}

func (r *Router) reloadDataset(c *gin.Context) {
	snap, err := r.datasets.Reload(c.Request.Context())
	if err != nil {
		writeIngestError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap.Dataset)
}

func writeIngestError(c *gin.Context, err error) {
	var schemaErr *model.SchemaError
	switch {
	case errors.As(err, &schemaErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":          err.Error(),
			"missingColumns": schemaErr.Missing,
		})
	case errors.Is(err, spreadsheet.ErrUnsupportedFormat):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": err.Error()})
	case errors.Is(err, dataset.ErrPersist):
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

func (r *Router) listUploads(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(r.historyLimit)))
	if err != nil || limit <= 0 || limit > r.historyLimit {
		limit = r.historyLimit
	}
	uploads, err := r.datasets.History(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if uploads == nil {
		uploads = []model.Upload{}
	}
	c.JSON(http.StatusOK, gin.H{"items": uploads})
}
