package transfers

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

// MountRoutes attaches transfer routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Record)
	r.Get("/{id}", h.Get)
	r.Delete("/{id}", h.Delete)
}

type recordTransferRequest struct {
	MemberID     int64  `json:"member_id" validate:"required,gt=0"`
	FromUnitID   int64  `json:"from_unit_id" validate:"required,gt=0"`
	ToUnitID     int64  `json:"to_unit_id" validate:"required,gt=0"`
	TransferDate string `json:"transfer_date" validate:"required,datetime=2006-01-02"`
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
	unitID, _ := strconv.ParseInt(r.URL.Query().Get("unit"), 10, 64)
	from, _ := time.Parse("2006-01-02", r.URL.Query().Get("from"))
	to, _ := time.Parse("2006-01-02", r.URL.Query().Get("to"))

	list, total, err := h.service.List(r.Context(), ListFilters{
		Page:     page,
		Limit:    limit,
		MemberID: memberID,
		UnitID:   unitID,
		From:     from,
		To:       to,
	})
	if err != nil {
		h.logger.Error("list transfers failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"transfers":  list,
		"pagination": shared.NewPagination(page, limit, total),
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	t, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, t)
}

func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	var req recordTransferRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	when, _ := time.Parse("2006-01-02", req.TransferDate)
	t, err := h.service.Record(r.Context(), Transfer{
		MemberID:     req.MemberID,
		FromUnitID:   req.FromUnitID,
		ToUnitID:     req.ToUnitID,
		TransferDate: when,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, t)
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
