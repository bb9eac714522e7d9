package payouts

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
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

// MountRoutes attaches payout routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Delete("/{id}", h.Delete)
}

type createPayoutRequest struct {
	MemberID    int64   `json:"member_id" validate:"required,gt=0"`
	Reason      string  `json:"reason" validate:"required,oneof=RETIREMENT DEATH"`
	GrossAmount float64 `json:"gross_amount" validate:"required,gt=0"`
	Deductions  float64 `json:"deductions" validate:"gte=0"`
	PayoutDate  string  `json:"payout_date" validate:"required,datetime=2006-01-02"`
	Notes       string  `json:"notes" validate:"max=512"`
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

	list, total, err := h.service.List(r.Context(), ListFilters{
		Page:     page,
		Limit:    limit,
		MemberID: memberID,
		Reason:   strings.ToUpper(r.URL.Query().Get("reason")),
	})
	if err != nil {
		h.logger.Error("list payouts failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"payouts":    list,
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

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPayoutRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	when, _ := time.Parse("2006-01-02", req.PayoutDate)
	p, err := h.service.Create(r.Context(), Payout{
		MemberID:    req.MemberID,
		Reason:      req.Reason,
		GrossAmount: req.GrossAmount,
		Deductions:  req.Deductions,
		PayoutDate:  when,
		Notes:       req.Notes,
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
