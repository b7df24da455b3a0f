package event

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/frahmantamala/epic-events-crm/internal"
	"github.com/frahmantamala/epic-events-crm/internal/auth"
	"github.com/frahmantamala/epic-events-crm/internal/transport"
	"github.com/frahmantamala/epic-events-crm/pkg/logger"
)

type ServiceAPI interface {
	List(ctx context.Context, actor *auth.Actor, opts ListOptions) ([]*Event, error)
	Get(ctx context.Context, actor *auth.Actor, id int64) (*Event, error)
	Create(ctx context.Context, actor *auth.Actor, dto CreateEventDTO) (*Event, error)
	Update(ctx context.Context, actor *auth.Actor, id int64, dto UpdateEventDTO) (*Event, error)
	AssignSupport(ctx context.Context, actor *auth.Actor, id int64, dto AssignSupportDTO) (*Event, error)
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

// ParseDate accepts RFC 3339 or a bare YYYY-MM-DD.
func ParseDate(field, v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", v, time.Local)
	if err != nil {
		return time.Time{}, internal.NewValidationFieldError(field, field+" must be YYYY-MM-DD or RFC 3339", internal.ErrCodeInvalidDate)
	}
	return t, nil
}

// ParseListOptions reads list filters from query parameters.
func ParseListOptions(q url.Values) (ListOptions, error) {
	var opts ListOptions
	opts.WithoutSupport, _ = strconv.ParseBool(q.Get("without_support"))
	opts.Mine, _ = strconv.ParseBool(q.Get("mine"))
	opts.Location = q.Get("location")
	opts.Name = q.Get("name")

	ints := []struct {
		key string
		dst *int64
	}{{"support_id", &opts.SupportID}, {"client_id", &opts.ClientID}}
	for _, p := range ints {
		if v := q.Get(p.key); v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return opts, internal.NewValidationFieldError(p.key, p.key+" must be an integer", internal.ErrCodeValidationFailed)
			}
			*p.dst = n
		}
	}
	if v := q.Get("upcoming"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, internal.NewValidationFieldError("upcoming", "upcoming must be a number of days", internal.ErrCodeValidationFailed)
		}
		opts.UpcomingDays = n
	}
	for _, p := range []struct {
		key string
		dst **time.Time
	}{{"from", &opts.From}, {"to", &opts.To}} {
		if v := q.Get(p.key); v != "" {
			t, err := ParseDate(p.key, v)
			if err != nil {
				return opts, err
			}
			*p.dst = &t
		}
	}
	return opts, nil
}

// List handles GET /events
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	opts, err := ParseListOptions(r.URL.Query())
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	evts, err := h.Service.List(r.Context(), actor, opts)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"events": evts})
}

// Get handles GET /events/{id}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.IDParam(w, r, "id")
	if !ok {
		return
	}
	e, err := h.Service.Get(r.Context(), actor, id)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, e)
}

// Create handles POST /events
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var dto CreateEventDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}
	e, err := h.Service.Create(r.Context(), actor, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, e)
}

// Update handles PUT /events/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.IDParam(w, r, "id")
	if !ok {
		return
	}
	var dto UpdateEventDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}
	e, err := h.Service.Update(r.Context(), actor, id, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, e)
}

// AssignSupport handles PUT /events/{id}/support
func (h *Handler) AssignSupport(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := h.IDParam(w, r, "id")
	if !ok {
		return
	}
	var dto AssignSupportDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}
	e, err := h.Service.AssignSupport(r.Context(), actor, id, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, e)
}

// Delete handles DELETE /events/{id}
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
