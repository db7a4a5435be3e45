package http

import (
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"smbpulse/internal/dataprocessing"
	apierrors "smbpulse/internal/errors"
	"smbpulse/internal/exporter"
	custommw "smbpulse/internal/middleware"
	"smbpulse/internal/services"
)

// DataHandler handles dataset HTTP requests with RFC 7807 compliance.
type DataHandler struct {
	service      DataServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validator    *validator.Validate
}

// NewDataHandler creates a new data handler with RFC 7807 error handling.
func NewDataHandler(service DataServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DataHandler {
	return &DataHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "data_handler")),
		errorHandler: errorHandler,
		validator:    validator.New(),
	}
}

// Routes returns the data routes with proper Chi patterns.
func (h *DataHandler) Routes() chi.Router {
	r := chi.NewRouter()

	// Use render for consistent JSON responses
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/categories", h.GetCategories)
	r.Get("/chart", h.GetChart)
	r.Get("/table", h.GetTable)
	r.Get("/status", h.GetStatus)
	r.Post("/reload", h.Reload)

	// Export routes stream files, not JSON
	r.Route("/export/{format}", func(r chi.Router) {
		r.Use(h.ExportFormatCtx)
		r.Get("/", h.Export)
	})

	return r
}

// chartQuery captures the query parameters shared by the chart and table
// endpoints.
type chartQuery struct {
	Category     string `json:"category" validate:"required,min=1,max=100"`
	HideSubtotal bool   `json:"hide_subtotal"`
}

// parseChartQuery extracts and validates the chart/table query parameters.
// A false return means the error response has already been written.
func (h *DataHandler) parseChartQuery(w http.ResponseWriter, r *http.Request) (chartQuery, bool) {
	q := chartQuery{
		Category: r.URL.Query().Get("category"),
	}

	if raw := r.URL.Query().Get("hide_subtotal"); raw != "" {
		hide, err := strconv.ParseBool(raw)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation(
				"hide_subtotal", "hide_subtotal must be a boolean"))
			return chartQuery{}, false
		}
		q.HideSubtotal = hide
	}

	if err := h.validator.Struct(q); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation(
				"category", fmt.Sprintf("category failed %s validation", verrs[0].Tag())))
			return chartQuery{}, false
		}
		h.errorHandler.HandleError(w, r, err)
		return chartQuery{}, false
	}

	return q, true
}

// ExportFormatCtx middleware validates the export format parameter.
func (h *DataHandler) ExportFormatCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		format := chi.URLParam(r, "format")
		if format != "csv" && format != "xlsx" {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation(
				"format", fmt.Sprintf("invalid export format: %s (expected csv or xlsx)", format)))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetCategories handles GET /api/data/categories.
func (h *DataHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	reqID := custommw.GetRequestID(r.Context())

	h.logger.InfoContext(r.Context(), "fetching categories",
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	categories, err := h.service.Categories(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to get categories",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, h.mapServiceError(err))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   categories,
		"count":  len(categories),
	})
}

// GetChart handles GET /api/data/chart.
func (h *DataHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	reqID := custommw.GetRequestID(r.Context())

	q, ok := h.parseChartQuery(w, r)
	if !ok {
		return
	}

	h.logger.InfoContext(r.Context(), "fetching chart data",
		slog.String("request_id", reqID),
		slog.String("category", q.Category),
		slog.Bool("hide_subtotal", q.HideSubtotal),
	)

	chart, err := h.service.ChartData(r.Context(), q.Category, q.HideSubtotal)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to build chart data",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
			slog.String("category", q.Category),
		)
		h.errorHandler.HandleError(w, r, h.mapServiceError(err))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   chart,
	})
}

// GetTable handles GET /api/data/table.
func (h *DataHandler) GetTable(w http.ResponseWriter, r *http.Request) {
	reqID := custommw.GetRequestID(r.Context())

	q, ok := h.parseChartQuery(w, r)
	if !ok {
		return
	}

	rows, err := h.service.TableData(r.Context(), q.Category, q.HideSubtotal)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to build table data",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
			slog.String("category", q.Category),
		)
		h.errorHandler.HandleError(w, r, h.mapServiceError(err))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   rows,
		"count":  len(rows),
	})
}

// GetStatus handles GET /api/data/status.
func (h *DataHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.Status(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to get dataset status",
			slog.String("error", err.Error()),
			slog.String("request_id", custommw.GetRequestID(r.Context())),
		)
		h.errorHandler.HandleError(w, r, h.mapServiceError(err))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   status,
	})
}

// Reload handles POST /api/data/reload. It re-reads the source file and
// replaces the cached dataset.
func (h *DataHandler) Reload(w http.ResponseWriter, r *http.Request) {
	reqID := custommw.GetRequestID(r.Context())

	h.logger.InfoContext(r.Context(), "reloading dataset",
		slog.String("request_id", reqID),
	)

	status, err := h.service.Reload(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to reload dataset",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
		)
		h.errorHandler.HandleError(w, r, h.mapServiceError(err))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   status,
	})
}

// Export handles GET /api/data/export/{format}. It streams the filtered
// table as a CSV or XLSX attachment.
func (h *DataHandler) Export(w http.ResponseWriter, r *http.Request) {
	reqID := custommw.GetRequestID(r.Context())
	format := chi.URLParam(r, "format")

	q, ok := h.parseChartQuery(w, r)
	if !ok {
		return
	}

	table, err := h.service.FilteredTable(r.Context(), q.Category, q.HideSubtotal)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to build export table",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
			slog.String("category", q.Category),
			slog.String("format", format),
		)
		h.errorHandler.HandleError(w, r, h.mapServiceError(err))
		return
	}

	filename := fmt.Sprintf("smb_stats_%s_%s.%s",
		q.Category, time.Now().Format("20060102"), format)

	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		h.setAttachment(w, filename)
		err = exporter.WriteCSV(w, table)
	case "xlsx":
		w.Header().Set("Content-Type",
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		h.setAttachment(w, filename)
		err = exporter.WriteXLSX(w, table)
	}
	if err != nil {
		// Headers are already out, all we can do is log.
		h.logger.ErrorContext(r.Context(), "failed to stream export",
			slog.String("error", err.Error()),
			slog.String("request_id", reqID),
			slog.String("format", format),
		)
	}
}

// setAttachment sets the download headers. The filename carries Korean
// category names, so the RFC 5987 encoded form is included as well.
func (h *DataHandler) setAttachment(w http.ResponseWriter, filename string) {
	ascii := mime.QEncoding.Encode("utf-8", filename)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`,
			ascii, url.PathEscape(filename)))
}

// mapServiceError translates service sentinel errors into API errors. Errors
// with no mapping pass through and become opaque 500s.
func (h *DataHandler) mapServiceError(err error) error {
	switch {
	case errors.Is(err, services.ErrFileNotFound):
		return apierrors.ErrDataFileNotFound
	case errors.Is(err, dataprocessing.ErrDataFormat):
		return apierrors.ErrDataFormat
	case errors.Is(err, services.ErrColumnMissing):
		return apierrors.ErrColumnMissing
	case errors.Is(err, services.ErrNoCategories):
		return apierrors.ErrNoCategories
	case errors.Is(err, services.ErrCategoryNotFound):
		return apierrors.ErrCategoryNotFound
	case errors.Is(err, services.ErrNoChartColumns):
		return apierrors.New(http.StatusUnprocessableEntity,
			"NO_CHART_COLUMNS", "No metric columns available for charting")
	default:
		return err
	}
}
