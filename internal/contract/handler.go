package contract

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/frahmantamala/epic-events-crm/internal"
	"github.com/frahmantamala/epic-events-crm/internal/auth"
	"github.com/frahmantamala/epic-events-crm/internal/transport"
	"github.com/frahmantamala/epic-events-crm/pkg/logger"
	"github.com/shopspring/decimal"
)

type ServiceAPI interface {
	List(ctx context.Context, actor *auth.Actor, filter Filter, mine bool) ([]*Contract, error)
	Get(ctx context.Context, actor *auth.Actor, id int64) (*Contract, error)
	Create(ctx context.Context, actor *auth.Actor, dto CreateContractDTO) (*Contract, error)
	Update(ctx context.Context, actor *auth.Actor, id int64, dto UpdateContractDTO) (*Contract, error)
	Sign(ctx context.Context, actor *auth.Actor, id int64) (*Contract, error)
	Pay(ctx context.Context, actor *auth.Actor, id int64, dto PaymentDTO) (*Contract, error)
	Delete(ctx context.Context, actor *auth.Actor, id int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (*auth.Actor, bool) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.ErrNoSession)
	}
	return actor, ok
}

// ParseFilter reads list filters from query parameters.
func ParseFilter(q url.Values) (Filter, bool, error) {
	var f Filter
	if v := q.Get("signed"); v != "" {
		signed, err := strconv.ParseBool(v)
		if err != nil {
			return f, false, internal.NewValidationFieldError("signed", "signed must be true or false", internal.ErrCodeValidationFailed)
		}
		f.Signed = &signed
	}
	f.Unpaid, _ = strconv.ParseBool(q.Get("unpaid"))
	f.ClientName = q.Get("client_name")
	for _, bound := range []struct {
		key string
		dst **decimal.Decimal
	}{{"min_amount", &f.MinAmount}, {"max_amount", &f.MaxAmount}} {
		v := q.Get(bound.key)
		if v == "" {
			continue
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			return f, false, internal.NewValidationFieldError(bound.key, bound.key+" must be a number", internal.ErrCodeInvalidAmount)
		}
		*bound.dst = &d
	}
	mine, _ := strconv.ParseBool(q.Get("mine"))
	return f, mine, nil
}

// List handles GET /contracts
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	filter, mine, err := ParseFilter(r.URL.Query())
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	contracts, err := h.Service.List(r.Context(), actor, filter, mine)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"contracts": contracts})
}

// Get handles GET /contracts/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.IDParam(w, r, "id")
	if !ok {
		return
	}
	c, err := h.Service.Get(r.Context(), actor, id)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, c)
}

// Create handles POST /contracts
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var dto CreateContractDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}
	c, err := h.Service.Create(r.Context(), actor, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, c)
}

// Sign handles POST /contracts/{id}/sign
func (h *Handler) Sign(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.IDParam(w, r, "id")
	if !ok {
		return
	}
	c, err := h.Service.Sign(r.Context(), actor, id)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, c)
}

// Pay handles POST /contracts/{id}/payments
func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.IDParam(w, r, "id")
	if !ok {
		return
	}
	var dto PaymentDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}
	c, err := h.Service.Pay(r.Context(), actor, id, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, c)
}

// Update handles PUT /contracts/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.IDParam(w, r, "id")
	if !ok {
		return
	}
	var dto UpdateContractDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}
	c, err := h.Service.Update(r.Context(), actor, id, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, c)
}

// Delete handles DELETE /contracts/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.IDParam(w, r, "id")
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), actor, id); err != nil {
		h.WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
