package http

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "tankreport/internal/errors"
	"tankreport/internal/files"
	"tankreport/internal/report"
)

// MapsHandler serves the static map images as stored on disk
type MapsHandler struct {
	service      ReportService
	discovery    *files.Discovery
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewMapsHandler creates a maps handler
func NewMapsHandler(service ReportService, discovery *files.Discovery, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *MapsHandler {
	return &MapsHandler{
		service:      service,
		discovery:    discovery,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("component", "maps_handler")),
	}
}

// Routes returns the maps routes
func (h *MapsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListMaps)
	r.Get("/{file}", h.GetMap)
	return r
}

// mapImage is one image of the maps directory. Known images are the ones
// the report refers to and the only ones GET /maps/{file} serves.
type mapImage struct {
	Name    string    `json:"name"`
	URL     string    `json:"url,omitempty"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
	Known   bool      `json:"known"`
}

// ListMaps handles GET /maps/. A missing maps directory lists nothing.
func (h *MapsHandler) ListMaps(w http.ResponseWriter, r *http.Request) {
	found, err := h.discovery.FindImages()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	images := make([]mapImage, 0, len(found))
	for _, f := range found {
		img := mapImage{Name: f.Name, Size: f.Size, ModTime: f.ModTime}
		if _, err := h.service.MapPath(f.Name); err == nil {
			img.Known = true
			img.URL = report.MapsURLPrefix + f.Name
		}
		images = append(images, img)
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   images,
		"count":  len(images),
	})
}

// GetMap handles GET /maps/{file}. Only the known map images are served.
func (h *MapsHandler) GetMap(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")

	path, err := h.service.MapPath(file)
	if err != nil {
		h.logger.DebugContext(r.Context(), "map not served",
			slog.String("file", file),
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, apierrors.ErrMapNotFound)
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeFile(w, r, path)
}
