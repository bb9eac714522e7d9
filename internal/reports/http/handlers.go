package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/benfund/benfund/internal/platform/httpx"
	"github.com/benfund/benfund/internal/reports"
)

// Handler wires the report endpoints.
type Handler struct {
	logger  *slog.Logger
	service *reports.Service
}

// NewHandler constructs the handler.
func NewHandler(logger *slog.Logger, service *reports.Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes attaches report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/movement", h.movement)
	r.Get("/movement.csv", h.movementCSV)
	r.Get("/dues", h.dues)
	r.Get("/dues.csv", h.duesCSV)
	r.Get("/collections", h.collections)
	r.Get("/collections.csv", h.collectionsCSV)
}

// parsePeriod reads from/to query params in 2006-01 form. A missing "to"
// collapses the period to the single "from" month; a missing "from" defaults
// to the current month.
func parsePeriod(r *http.Request) (reports.Period, error) {
	fromRaw := r.URL.Query().Get("from")
	toRaw := r.URL.Query().Get("to")

	var (
		from reports.Month
		err  error
	)
	if fromRaw == "" {
		from = reports.MonthOf(time.Now().UTC())
	} else if from, err = reports.ParseMonth(fromRaw); err != nil {
		return reports.Period{}, err
	}

	to := from
	if toRaw != "" {
		if to, err = reports.ParseMonth(toRaw); err != nil {
			return reports.Period{}, err
		}
	}
	return reports.NewPeriod(from, to)
}

func (h *Handler) movement(w http.ResponseWriter, r *http.Request) {
	period, err := parsePeriod(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Period", err.Error())
		return
	}
	report, err := h.service.Movement(r.Context(), period)
	if err != nil {
		h.logger.Error("build movement report failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) movementCSV(w http.ResponseWriter, r *http.Request) {
	period, err := parsePeriod(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Period", err.Error())
		return
	}
	report, err := h.service.Movement(r.Context(), period)
	if err != nil {
		h.logger.Error("build movement report failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	setCSVHeaders(w, "movement-"+report.Meta.From+"-"+report.Meta.To+".csv")
	if err := writeMovementCSV(w, report); err != nil {
		h.logger.Warn("stream movement csv", slog.Any("error", err))
	}
}

func (h *Handler) dues(w http.ResponseWriter, r *http.Request) {
	period, err := parsePeriod(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Period", err.Error())
		return
	}
	unitID, _ := strconv.ParseInt(r.URL.Query().Get("unit"), 10, 64)
	report, err := h.service.Dues(r.Context(), period, unitID)
	if err != nil {
		h.logger.Error("build dues report failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) duesCSV(w http.ResponseWriter, r *http.Request) {
	period, err := parsePeriod(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Period", err.Error())
		return
	}
	unitID, _ := strconv.ParseInt(r.URL.Query().Get("unit"), 10, 64)
	report, err := h.service.Dues(r.Context(), period, unitID)
	if err != nil {
		h.logger.Error("build dues report failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	setCSVHeaders(w, "dues-"+report.Meta.From+"-"+report.Meta.To+".csv")
	if err := writeDuesCSV(w, report); err != nil {
		h.logger.Warn("stream dues csv", slog.Any("error", err))
	}
}

func (h *Handler) collections(w http.ResponseWriter, r *http.Request) {
	period, err := parsePeriod(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Period", err.Error())
		return
	}
	report, err := h.service.Collections(r.Context(), period)
	if err != nil {
		h.logger.Error("build collections report failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) collectionsCSV(w http.ResponseWriter, r *http.Request) {
	period, err := parsePeriod(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Period", err.Error())
		return
	}
	report, err := h.service.Collections(r.Context(), period)
	if err != nil {
		h.logger.Error("build collections report failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	setCSVHeaders(w, "collections-"+report.Meta.From+"-"+report.Meta.To+".csv")
	if err := writeCollectionsCSV(w, report); err != nil {
		h.logger.Warn("stream collections csv", slog.Any("error", err))
	}
}

func setCSVHeaders(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
}
