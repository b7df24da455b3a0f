package report

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/epic-events-crm/internal"
	"github.com/frahmantamala/epic-events-crm/internal/auth"
	"github.com/frahmantamala/epic-events-crm/internal/transport"
	"github.com/frahmantamala/epic-events-crm/pkg/logger"
)

type ServiceAPI interface {
	Contracts(ctx context.Context, actor *auth.Actor) (*ContractSummary, error)
	Events(ctx context.Context, actor *auth.Actor) (*EventSummary, error)
	Users(ctx context.Context, actor *auth.Actor) (*UserSummary, error)
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

// Get handles GET /reports/{kind} for contracts, events and users.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.ErrNoSession)
		return
	}

	var (
		summary interface{}
		err     error
	)
	switch auth.Report(chi.URLParam(r, "kind")) {
	case auth.ReportContracts:
		summary, err = h.Service.Contracts(r.Context(), actor)
	case auth.ReportEvents:
		summary, err = h.Service.Events(r.Context(), actor)
	case auth.ReportUsers:
		summary, err = h.Service.Users(r.Context(), actor)
	default:
		h.WriteAppError(w, internal.NewNotFoundError("Unknown report", "REPORT_NOT_FOUND"))
		return
	}
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, summary)
}
