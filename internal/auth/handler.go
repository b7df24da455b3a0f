package auth

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/epic-events-crm/internal"
	"github.com/frahmantamala/epic-events-crm/internal/transport"
	"github.com/frahmantamala/epic-events-crm/pkg/logger"
)

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

// Login handles POST /auth/login. Lockouts answer 429 with Retry-After.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}
	dto.Email = NormalizeEmail(dto.Email)
	if err := dto.Validate(); err != nil {
		h.WriteAppError(w, err)
		return
	}

	session, err := h.Service.Login(r.Context(), dto.Email, dto.Password)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, session)
}

// Me handles GET /me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.ErrNoSession)
		return
	}
	h.WriteJSON(w, http.StatusOK, MeResponse{Actor: actor, Permissions: PermissionsFor(actor.Role).Slice()})
}

// Logout handles POST /auth/logout. Bearer tokens are stateless, so this
// only records the logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.ErrNoSession)
		return
	}
	if err := h.Service.Logout(r.Context(), actor); err != nil {
		h.WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AuthMiddleware resolves the bearer token to an actor and stores it on the
// request context.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.Logger.WarnContext(r.Context(), "auth middleware: missing authorization token", "path", r.URL.Path)
			h.WriteAppError(w, internal.ErrNoSession)
			return
		}

		tokenPrefix := token
		if len(token) > 12 {
			tokenPrefix = token[:12]
		}

		actor, err := h.Service.ActorFromToken(r.Context(), token)
		if err != nil {
			h.Logger.WarnContext(r.Context(), "auth middleware: token rejected", "error", err, "token_prefix", tokenPrefix)
			h.WriteAppError(w, err)
			return
		}

		ctx := ContextWithActor(r.Context(), actor)
		ctx = logger.With(ctx, "user_id", actor.ID, "role", actor.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
