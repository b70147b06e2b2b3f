package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"tankreport/internal/charts"
	apierrors "tankreport/internal/errors"
	"tankreport/internal/exporter"
	"tankreport/internal/middleware"
	"tankreport/internal/report"
)

// Response formats of a table
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// ResultCountHeader carries the row count of a filtered table
const ResultCountHeader = "X-Result-Count"

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePNG  = "image/png"
)

// filterRequest selects districts of the DSD table. A null or missing
// list selects every district.
type filterRequest struct {
	Districts []string `json:"districts" validate:"max=64,dive,required,printascii,max=128"`
}

// ReportHandler serves the report, its tables and charts
type ReportHandler struct {
	service      ReportService
	renderer     *charts.Renderer
	validation   *middleware.ValidationMiddleware
	query        *middleware.QueryParamValidator
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewReportHandler creates a report handler
func NewReportHandler(service ReportService, renderer *charts.Renderer, validation *middleware.ValidationMiddleware, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		service:      service,
		renderer:     renderer,
		validation:   validation,
		query:        middleware.NewQueryParamValidator(logger, errorHandler),
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("component", "report_handler")),
	}
}

// Routes returns the report routes
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.GetReport)
	r.Get("/districts", h.GetDistricts)
	r.Get("/frames", h.GetFrames)
	r.Get("/export.xlsx", h.ExportWorkbook)

	r.Route("/dsd", func(r chi.Router) {
		r.Get("/", h.GetDSD)
		r.With(h.validation.ValidateRequest, middleware.ContentTypeValidator("application/json")).
			Post("/filter", h.FilterDSD)
	})

	r.Route("/charts", func(r chi.Router) {
		r.Get("/", h.ListCharts)
		r.Get("/{chart}", h.GetChart)
	})

	r.Get("/{section}", h.GetSection)

	return r
}

// GetReport handles GET /api/report
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.service.Generate(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   rep,
	})
}

// GetSection handles GET /api/report/{section}?format=json|csv
func (h *ReportHandler) GetSection(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "section")
	if err := h.validation.ValidateVar("section", name, "required,section"); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.SectionNotFoundError(name))
		return
	}

	format, ok := h.query.ValidateEnum(w, r, "format", []string{FormatJSON, FormatCSV}, FormatJSON)
	if !ok {
		return
	}

	if format == FormatCSV {
		frame, err := h.service.Frame(r.Context(), name)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		h.writeCSV(w, r, frame)
		return
	}

	data, err := h.service.Section(r.Context(), name)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status":  "success",
		"section": name,
		"data":    data,
	})
}

// GetFrames handles GET /api/report/frames
func (h *ReportHandler) GetFrames(w http.ResponseWriter, r *http.Request) {
	frames, err := h.service.Frames(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   frames,
		"count":  len(frames),
	})
}

// GetDistricts handles GET /api/report/districts
func (h *ReportHandler) GetDistricts(w http.ResponseWriter, r *http.Request) {
	districts, err := h.service.Districts(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   districts,
		"count":  len(districts),
	})
}

// GetDSD handles GET /api/report/dsd?district=A&district=B. Without any
// district every district is selected; none=1 selects none.
func (h *ReportHandler) GetDSD(w http.ResponseWriter, r *http.Request) {
	req, ok := h.selection(w, r)
	if !ok {
		return
	}

	format, ok := h.query.ValidateEnum(w, r, "format", []string{FormatJSON, FormatCSV}, FormatJSON)
	if !ok {
		return
	}

	h.filter(w, r, req.Districts, format)
}

// FilterDSD handles POST /api/report/dsd/filter
func (h *ReportHandler) FilterDSD(w http.ResponseWriter, r *http.Request) {
	var req filterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validation.ValidateStruct(&req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.filter(w, r, req.Districts, FormatJSON)
}

// selection reads the district query parameters. none=true selects no
// district, repeated district values select those, and neither selects
// all of them.
func (h *ReportHandler) selection(w http.ResponseWriter, r *http.Request) (filterRequest, bool) {
	query := r.URL.Query()

	var req filterRequest
	if none, _ := strconv.ParseBool(query.Get("none")); none {
		req.Districts = []string{}
	} else if values, ok := query["district"]; ok {
		req.Districts = values
	}

	if err := h.validation.ValidateStruct(&req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return req, false
	}
	return req, true
}

func (h *ReportHandler) filter(w http.ResponseWriter, r *http.Request, districts []string, format string) {
	table, err := h.service.FilterDSD(r.Context(), districts)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.DebugContext(r.Context(), "dsd filter",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.Any("districts", districts),
		slog.Int("count", table.Count))

	w.Header().Set(ResultCountHeader, strconv.Itoa(table.Count))
	if format == FormatCSV {
		h.writeCSV(w, r, report.MaskFrame(table))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   report.SelectDSD(table),
		"count":  table.Count,
	})
}

// ListCharts handles GET /api/report/charts
func (h *ReportHandler) ListCharts(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   report.Charts,
		"count":  len(report.Charts),
	})
}

// GetChart handles GET /api/report/charts/{chart} and, with a .png
// suffix, returns the rendered image. The DSD access chart takes the
// same district selection as GET /api/report/dsd.
func (h *ReportHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "chart")
	name, png := strings.CutSuffix(name, ".png")

	var chart report.Chart
	if name == report.ChartDSDAccess {
		req, ok := h.selection(w, r)
		if !ok {
			return
		}
		table, err := h.service.FilterDSD(r.Context(), req.Districts)
		if err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		chart = report.MaskChart(table)
	} else {
		var err error
		if chart, err = h.service.Chart(r.Context(), name); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
	}

	if !png {
		render.JSON(w, r, map[string]interface{}{
			"status": "success",
			"data":   chart,
		})
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.WritePNG(&buf, chart); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrReportGeneration(err))
		return
	}

	w.Header().Set("Content-Type", contentTypePNG)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

// ExportWorkbook handles GET /api/report/export.xlsx
func (h *ReportHandler) ExportWorkbook(w http.ResponseWriter, r *http.Request) {
	frames, err := h.service.Frames(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := exporter.WriteWorkbookTo(&buf, frames); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrReportGeneration(err))
		return
	}

	w.Header().Set("Content-Type", contentTypeXLSX)
	w.Header().Set("Content-Disposition", `attachment; filename="small_tanks_report.xlsx"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}

func (h *ReportHandler) writeCSV(w http.ResponseWriter, r *http.Request, frame report.Frame) {
	var buf bytes.Buffer
	if err := exporter.WriteFrameTo(&buf, frame); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrReportGeneration(err))
		return
	}

	w.Header().Set("Content-Type", contentTypeCSV)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.csv"`, frame.Name))
	w.Write(buf.Bytes())
}
