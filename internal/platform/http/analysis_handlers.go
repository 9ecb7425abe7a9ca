package http

import (
	"encoding/csv"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/weiwei-tsao/gerencial-qoe/apps/api/internal/business/qoe"
	"github.com/weiwei-tsao/gerencial-qoe/apps/api/internal/platform/telemetry"
	"github.com/weiwei-tsao/gerencial-qoe/apps/api/pkg/model"
	"github.com/weiwei-tsao/gerencial-qoe/apps/api/pkg/util"
)

type filterEcho struct {
	Month  string `json:"month,omitempty"`
	City   string `json:"city,omitempty"`
	Sector string `json:"sector,omitempty"`
}

func echo(f qoe.Filter) filterEcho {
	return filterEcho{Month: f.Month, City: f.City, Sector: f.Sector}
}

func (r *Router) getFilters(c *gin.Context) {
	snap, ok := r.snapshot(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, qoe.ListDimensions(snap.Table.Records))
}

// getDashboard serves the general dashboard: nodes consolidated over the
// whole month/city slice.
func (r *Router) getDashboard(c *gin.Context) {
	snap, ok := r.snapshot(c)
	if !ok {
		return
	}
	f := qoe.Filter{Month: strings.TrimSpace(c.Query("month")), City: strings.TrimSpace(c.Query("city"))}
	records := f.Apply(snap.Table.Records)

	metrics, _ := qoe.Summarize(records)
	telemetry.RecordComputation(telemetry.ModeNodes, 1)
	c.JSON(http.StatusOK, gin.H{
		"datasetId":        snap.ID,
		"filter":           echo(f),
		"metrics":          metrics,
		"evolutionPercent": qoe.EvolutionPercent(metrics),
		"charts":           qoe.BuildCharts(records),
	})
}

// getSector consolidates nodes inside one sector. The sector is matched after
// trimming and upper-casing both sides.
func (r *Router) getSector(c *gin.Context) {
	snap, ok := r.snapshot(c)
	if !ok {
		return
	}
	f := qoe.Filter{
		Sector:      c.Param("sector"),
		Month:       strings.TrimSpace(c.Query("month")),
		City:        strings.TrimSpace(c.Query("city")),
		SectorMatch: qoe.NormalizedSectorMatch{},
	}
	records := f.Apply(snap.Table.Records)

	metrics, nodes := qoe.Summarize(records)
	telemetry.RecordComputation(telemetry.ModeNodes, 1)
	c.JSON(http.StatusOK, gin.H{
		"datasetId":        snap.ID,
		"sector":           util.NormalizeSector(f.Sector),
		"filter":           echo(f),
		"metrics":          metrics,
		"evolutionPercent": qoe.EvolutionPercent(metrics),
		"nodes":            nodes,
		"charts":           qoe.BuildCharts(records),
		"records":          qoe.DetailRows(records),
	})
}

// getCity runs the raw-table calculator over one city.
func (r *Router) getCity(c *gin.Context) {
	snap, ok := r.snapshot(c)
	if !ok {
		return
	}
	f := qoe.Filter{City: c.Param("city"), Month: strings.TrimSpace(c.Query("month"))}
	t := f.ApplyTable(snap.Table)

	metrics, err := qoe.CalculateFromTable(t)
	if err != nil {
		writeCalcError(c, err)
		return
	}
	telemetry.RecordComputation(telemetry.ModeTable, 1)
	c.JSON(http.StatusOK, gin.H{
		"datasetId":        snap.ID,
		"filter":           echo(f),
		"metrics":          metrics,
		"evolutionPercent": qoe.EvolutionPercent(metrics),
		"charts":           qoe.BuildCharts(t.Records),
	})
}

func (r *Router) listNodes(c *gin.Context) {
	snap, ok := r.snapshot(c)
	if !ok {
		return
	}
	f := r.filterFromQuery(c)
	nodes := qoe.ConsolidateNodes(f.Apply(snap.Table.Records))
	c.JSON(http.StatusOK, gin.H{
		"filter": echo(f),
		"items":  nodes,
		"total":  len(nodes),
	})
}

func (r *Router) listRecords(c *gin.Context) {
	snap, ok := r.snapshot(c)
	if !ok {
		return
	}
	f := r.filterFromQuery(c)
	rows := qoe.DetailRows(f.Apply(snap.Table.Records))
	c.JSON(http.StatusOK, gin.H{
		"filter": echo(f),
		"items":  rows,
		"total":  len(rows),
	})
}

func (r *Router) exportRecords(c *gin.Context) {
	snap, ok := r.snapshot(c)
	if !ok {
		return
	}
	rows := qoe.DetailRows(r.filterFromQuery(c).Apply(snap.Table.Records))

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=registros_detalhados.csv")

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	if err := writer.Write([]string{"Cidade", "Node", "Motivo", "QOE Antes", "QOE Depois", "Evolução", "Atingiu 80", "Responsável"}); err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	for _, row := range rows {
		reached := "Não"
		if row.ReachedThreshold {
			reached = "Sim"
		}
		record := []string{
			row.City,
			row.NodeID,
			row.Reason,
			util.FormatScore(row.Before),
			util.FormatScore(row.After),
			util.FormatSignedScore(row.Evolution),
			reached,
			row.Responsible,
		}
		if err := writer.Write(record); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
	}
}

func (r *Router) buildReport(c *gin.Context) (qoe.Report, bool) {
	snap, ok := r.snapshot(c)
	if !ok {
		return qoe.Report{}, false
	}
	report, err := qoe.BuildReport(snap.Table, time.Now().UTC())
	if err != nil {
		writeCalcError(c, err)
		return qoe.Report{}, false
	}
	telemetry.RecordComputation(telemetry.ModeTable, len(report.Sections()))
	return report, true
}

func (r *Router) getReport(c *gin.Context) {
	report, ok := r.buildReport(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, report)
}

func (r *Router) exportReport(c *gin.Context) {
	report, ok := r.buildReport(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", "attachment; filename=relatorio_gerencial_qoe.csv")

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	if err := writer.Write([]string{"Seção", "Métrica", "Valor"}); err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	for _, section := range report.Sections() {
		for _, line := range section.Lines {
			if err := writer.Write([]string{section.Title, line.Label, line.Text}); err != nil {
				c.Status(http.StatusInternalServerError)
				return
			}
		}
	}
}

func (r *Router) getMethodology(c *gin.Context) {
	c.JSON(http.StatusOK, qoe.DefaultMethodology)
}

func writeCalcError(c *gin.Context, err error) {
	var schemaErr *model.SchemaError
	if errors.As(err, &schemaErr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":          err.Error(),
			"missingColumns": schemaErr.Missing,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
