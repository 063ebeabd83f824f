package task

import (
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-task-go-stdlib/internal/session"
	"github.com/ovaphlow/pitchfork/service-task-go-stdlib/internal/task/entity"
	"github.com/ovaphlow/pitchfork/service-task-go-stdlib/pkg/utilities"
)

// Handler exposes HTTP endpoints for task CRUD. Every route behind it runs
// after the auth gate, so the session is always present in the context.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	fields, err := utilities.DecodeRequestBody(r)
	if err != nil {
		utilities.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	t, err := h.svc.Create(r.Context(), sess.User.Username, fields["todo"])
	if err != nil {
		if errors.Is(err, ErrValidation) {
			utilities.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		h.logger.Errorw("create todo failed", "err", err)
		utilities.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	utilities.WriteJSON(w, http.StatusCreated, map[string]any{
		"message": "todo created successfully",
		"data":    t,
	})
}

func (h *Handler) ReadItems(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	skip := 0
	if v := r.URL.Query().Get("skip"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			skip = parsed
		}
	}
	tasks, err := h.svc.List(r.Context(), sess.User.Username, skip)
	if err != nil {
		h.logger.Errorw("read todos failed", "err", err)
		utilities.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if len(tasks) == 0 {
		// empty page is a distinguishable non-failure signal, original shape
		utilities.WriteJSON(w, http.StatusOK, map[string]any{
			"status":  204,
			"message": "no todo found",
		})
		return
	}
	utilities.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  200,
		"message": "read item successfully",
		"data":    tasks,
	})
}

func (h *Handler) EditItem(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	fields, err := utilities.DecodeRequestBody(r)
	if err != nil {
		utilities.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if fields["todoId"] == "" {
		utilities.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "todo id is missing"})
		return
	}
	t, err := h.svc.Edit(r.Context(), sess.User.Username, fields["todoId"], fields["newData"])
	if err != nil {
		h.writeTaskError(w, err, "edit todo failed")
		return
	}
	utilities.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "todo updated successfully",
		"data":    t,
	})
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	fields, err := utilities.DecodeRequestBody(r)
	if err != nil {
		utilities.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	if fields["todoId"] == "" {
		utilities.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "todo id is missing"})
		return
	}
	if err := h.svc.Delete(r.Context(), sess.User.Username, fields["todoId"]); err != nil {
		h.writeTaskError(w, err, "delete todo failed")
		return
	}
	utilities.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "todo deleted successfully",
	})
}

func (h *Handler) writeTaskError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, ErrValidation):
		utilities.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, ErrNotFound):
		utilities.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "todo not found"})
	case errors.Is(err, ErrForbidden):
		utilities.WriteJSON(w, http.StatusForbidden, map[string]string{"error": "not allowed to modify the todo"})
	default:
		h.logger.Errorw(logMsg, "err", err)
		utilities.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

// keep the entity type visible to API consumers of this package
var _ = entity.Task{}
