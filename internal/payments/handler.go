package payments

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/benfund/benfund/internal/platform/httpx"
	"github.com/benfund/benfund/internal/shared"
)

type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes attaches payment routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Record)
	r.Get("/{id}", h.Get)
	r.Delete("/{id}", h.Delete)
}

type recordPaymentRequest struct {
	MemberID    int64    `json:"member_id" validate:"required,gt=0"`
	Amount      float64  `json:"amount" validate:"required,gt=0"`
	Months      []string `json:"months" validate:"required,min=1,dive,datetime=2006-01"`
	PaymentDate string   `json:"payment_date" validate:"required,datetime=2006-01-02"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 20
	}
	memberID, _ := strconv.ParseInt(r.URL.Query().Get("member"), 10, 64)
	from, _ := time.Parse("2006-01-02", r.URL.Query().Get("from"))
	to, _ := time.Parse("2006-01-02", r.URL.Query().Get("to"))

	list, total, err := h.service.List(r.Context(), ListFilters{
		Page:     page,
		Limit:    limit,
		MemberID: memberID,
		From:     from,
		To:       to,
	})
	if err != nil {
		h.logger.Error("list payments failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"payments":   list,
		"pagination": shared.NewPagination(page, limit, total),
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	var req recordPaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	months := make([]time.Time, 0, len(req.Months))
	for _, raw := range req.Months {
		parsed, _ := time.Parse("2006-01", raw)
		months = append(months, CanonicalMonth(parsed.Year(), parsed.Month()))
	}
	when, _ := time.Parse("2006-01-02", req.PaymentDate)

	p, err := h.service.Record(r.Context(), Payment{
		MemberID:    req.MemberID,
		Amount:      req.Amount,
		Months:      months,
		PaymentDate: when,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	actorID, _ := strconv.ParseInt(r.Header.Get("X-Actor-ID"), 10, 64)
	if err := h.service.Delete(r.Context(), actorID, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
