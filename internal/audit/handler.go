package audit

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
	List(ctx context.Context, actor *auth.Actor, filter Filter) ([]*Entry, error)
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

// List handles GET /audit?user_id=&action=&entity_type=&limit=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.ErrNoSession)
		return
	}
	q := r.URL.Query()
	filter := Filter{Action: q.Get("action"), EntityType: q.Get("entity_type")}
	if v := q.Get("user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			h.WriteAppError(w, internal.NewValidationFieldError("user_id", "user_id must be an integer", internal.ErrCodeValidationFailed))
			return
		}
		filter.UserID = id
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			h.WriteAppError(w, internal.NewValidationFieldError("limit", "limit must be an integer", internal.ErrCodeValidationFailed))
			return
		}
		filter.Limit = n
	}

	entries, err := h.Service.List(r.Context(), actor, filter)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}
