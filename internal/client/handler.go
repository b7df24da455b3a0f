package client

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/epic-events-crm/internal"
	"github.com/frahmantamala/epic-events-crm/internal/auth"
	"github.com/frahmantamala/epic-events-crm/internal/transport"
	"github.com/frahmantamala/epic-events-crm/pkg/logger"
)

type ServiceAPI interface {
	List(ctx context.Context, actor *auth.Actor, mine bool, search string) ([]*Client, error)
	Get(ctx context.Context, actor *auth.Actor, id int64) (*Client, error)
	Create(ctx context.Context, actor *auth.Actor, dto CreateClientDTO) (*Client, error)
	Update(ctx context.Context, actor *auth.Actor, id int64, dto UpdateClientDTO) (*Client, error)
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

// List handles GET /clients?mine=true&search=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	mine, _ := strconv.ParseBool(r.URL.Query().Get("mine"))
	clients, err := h.Service.List(r.Context(), actor, mine, r.URL.Query().Get("search"))
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"clients": clients})
}

// Get handles GET /clients/{id}
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

// Create handles POST /clients
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var dto CreateClientDTO
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

// Update handles PUT /clients/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.IDParam(w, r, "id")
	if !ok {
		return
	}
	var dto UpdateClientDTO
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

// Delete handles DELETE /clients/{id}
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
