package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"RetailPulse/internal/filter"
	"RetailPulse/internal/model"
	"RetailPulse/internal/query"
	"RetailPulse/internal/recorder"
	"RetailPulse/internal/session"
)

const dateLayout = "2006-01-02"

// Handler serves the dashboard session over JSON.
type Handler struct {
	session *session.Session
	logger  *zap.Logger
	now     func() time.Time
}

func NewHandler(s *session.Session, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{session: s, logger: logger, now: time.Now}
}

type filtersResponse struct {
	Start   string          `json:"start"`
	End     string          `json:"end"`
	Region  string          `json:"region"`
	Preset  string          `json:"preset,omitempty"`
	Regions []string        `json:"regions"`
	Presets []filter.Preset `json:"presets"`
}

func (h *Handler) filters() filtersResponse {
	st := h.session.Filters()
	return filtersResponse{
		Start:   query.FormatDate(st.DateRange.Start),
		End:     query.FormatDate(st.DateRange.End),
		Region:  st.Region,
		Preset:  st.Preset,
		Regions: h.session.Regions(),
		Presets: filter.Presets,
	}
}

// GetFilters handles GET /api/filters.
func (h *Handler) GetFilters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.filters())
}

// SetDateRange handles PUT /api/filters/date-range.
//
// Request body is either an explicit range or a preset:
//
//	{"start": "2024-01-01", "end": "2024-01-31"}
//	{"preset": "30"}
func (h *Handler) SetDateRange(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Start  string `json:"start"`
		End    string `json:"end"`
		Preset string `json:"preset"`
	}
	if err := decode(r, &in); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	if in.Preset != "" {
		if in.Start != "" || in.End != "" {
			badRequest(w, "give either preset or start/end, not both")
			return
		}
		if err := h.session.ApplyPreset(in.Preset, h.now()); err != nil {
			badRequest(w, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, h.filters())
		return
	}

	start, err := time.Parse(dateLayout, in.Start)
	if err != nil {
		badRequest(w, "start must be a YYYY-MM-DD date")
		return
	}
	end, err := time.Parse(dateLayout, in.End)
	if err != nil {
		badRequest(w, "end must be a YYYY-MM-DD date")
		return
	}
	if end.Before(start) {
		badRequest(w, "end is before start")
		return
	}
	h.session.SetDateRange(model.DateRange{Start: start, End: end})
	writeJSON(w, http.StatusOK, h.filters())
}

// SetRegion handles PUT /api/filters/region with body {"region": "West"}.
func (h *Handler) SetRegion(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Region string `json:"region"`
	}
	if err := decode(r, &in); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if err := h.session.SetRegion(in.Region); err != nil {
		badRequest(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.filters())
}

// GetCatalog handles GET /api/catalog.
func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"categories": h.session.Catalog().Categories(),
		"controls":   h.session.ForecastControls(),
	})
}

// SetForecastControls handles PUT /api/views/forecast/controls with body
// {"category": "Technology", "sub_category": "Phones"}. sub_category may be
// omitted.
func (h *Handler) SetForecastControls(w http.ResponseWriter, r *http.Request) {
	var in model.ForecastControls
	if err := decode(r, &in); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	controls, err := h.session.SetForecastControls(in.Category, in.SubCategory)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, controls)
}

// ListViews handles GET /api/views.
func (h *Handler) ListViews(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.session.Statuses())
}

// GetView handles GET /api/views/{name}.
func (h *Handler) GetView(w http.ResponseWriter, r *http.Request) {
	v, err := h.session.View(chi.URLParam(r, "name"))
	if err != nil {
		notFound(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, v.Status())
}

// RefreshView handles POST /api/views/{name}/refresh.
func (h *Handler) RefreshView(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	issued, err := h.session.Refresh(name)
	if err != nil {
		notFound(w, err.Error())
		return
	}
	if !issued {
		writeError(w, http.StatusConflict, fmt.Sprintf("view %q has nothing to refresh", name))
		return
	}
	v, _ := h.session.View(name)
	writeJSON(w, http.StatusAccepted, v.Status())
}

// ViewHistory handles GET /api/views/{name}/history?limit=20.
func (h *Handler) ViewHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			badRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	events, err := h.session.History(chi.URLParam(r, "name"), limit)
	if errors.Is(err, session.ErrUnknownView) {
		notFound(w, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("load fetch history", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not load history")
		return
	}
	if events == nil {
		events = []recorder.FetchEvent{}
	}
	writeJSON(w, http.StatusOK, events)
}

// Report handles GET /api/report with a plain-text summary.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(h.session.Report(h.now())))
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "session": h.session.ID()})
}
