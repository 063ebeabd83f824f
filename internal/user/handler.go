package user

import (
	"errors"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-task-go-stdlib/internal/mail"
	"github.com/ovaphlow/pitchfork/service-task-go-stdlib/internal/session"
	sessentity "github.com/ovaphlow/pitchfork/service-task-go-stdlib/internal/session/entity"
	"github.com/ovaphlow/pitchfork/service-task-go-stdlib/internal/token"
	"github.com/ovaphlow/pitchfork/service-task-go-stdlib/pkg/utilities"
)

// Handler exposes HTTP endpoints for registration, email verification,
// login and logout.
type Handler struct {
	svc       *UserService
	tokens    *token.Service
	mail      mail.Sender
	sessions  *session.Manager
	appOrigin string
	logger    *zap.SugaredLogger
}

func NewHandler(svc *UserService, tokens *token.Service, sender mail.Sender, sessions *session.Manager, logger *zap.SugaredLogger) *Handler {
	origin := os.Getenv("APP_ORIGIN")
	if origin == "" {
		origin = "http://localhost:8431"
	}
	return &Handler{svc: svc, tokens: tokens, mail: sender, sessions: sessions, appOrigin: origin, logger: logger}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	fields, err := utilities.DecodeRequestBody(r)
	if err != nil {
		utilities.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	email := fields["email"]
	_, err = h.svc.Register(r.Context(), fields["name"], email, fields["username"], fields["password"])
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			utilities.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		case errors.Is(err, ErrDuplicateEmail):
			utilities.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "email already exists"})
		case errors.Is(err, ErrDuplicateUsername):
			utilities.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "username already exists"})
		default:
			h.logger.Errorw("register failed", "err", err)
			utilities.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	tok, err := h.tokens.Issue(email)
	if err != nil {
		h.logger.Errorw("issue verification token failed", "err", err)
		utilities.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	link := h.appOrigin + "/verifytoken/" + tok
	// mail delivery is best-effort; the account exists either way and the
	// link is recoverable from the logs
	if err := h.mail.SendVerification(r.Context(), email, link); err != nil {
		h.logger.Warnw("send verification mail failed", "to", email, "err", err)
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	email, err := h.tokens.Verify(r.PathValue("token"))
	if err != nil {
		h.logger.Debugw("verify token failed", "err", err)
		utilities.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "invalid token"})
		return
	}
	if err := h.svc.MarkEmailVerified(r.Context(), email); err != nil {
		h.logger.Errorw("mark verified failed", "err", err)
		utilities.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(`<html>
  <head><meta http-equiv="refresh" content="2;url=/login"></head>
  <body>
    <h1>Email has been verified successfully!</h1>
    <p>You will be redirected to the login page shortly...</p>
  </body>
</html>`))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	fields, err := utilities.DecodeRequestBody(r)
	if err != nil {
		utilities.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	loginID, password := fields["loginId"], fields["password"]
	if loginID == "" || password == "" {
		utilities.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "missing login credentials"})
		return
	}

	view, err := h.svc.Authenticate(r.Context(), loginID, password)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			utilities.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "user not found, please register first"})
		case errors.Is(err, ErrUnverified):
			utilities.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "please verify your email first"})
		case errors.Is(err, ErrBadCredentials):
			utilities.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "incorrect password"})
		case errors.Is(err, ErrValidation):
			utilities.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "missing login credentials"})
		default:
			h.logger.Errorw("login failed", "err", err)
			utilities.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	sess, err := h.sessions.Create(r.Context(), sessentity.UserSummary{
		UserID:   view.ID,
		Email:    view.Email,
		Username: view.Username,
	})
	if err != nil {
		h.logger.Errorw("create session failed", "err", err)
		utilities.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	session.SetCookie(w, sess.ID, sess.ExpiresAt)

	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())
	if err := h.sessions.Destroy(r.Context(), sess.ID); err != nil {
		h.logger.Errorw("destroy session failed", "err", err)
		utilities.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "logout unsuccessful"})
		return
	}
	session.ClearCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
