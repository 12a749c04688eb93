package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dhakanet/ispconsole/internal/auth"
	"github.com/dhakanet/ispconsole/internal/csrf"
	"github.com/dhakanet/ispconsole/internal/domain"
	"github.com/dhakanet/ispconsole/internal/service"
	"github.com/dhakanet/ispconsole/internal/session"
)

// AuthHandler handles login, logout, and the operator's own profile.
//
// Routes handled:
// - GET  /login            -> ShowLogin
// - POST /login            -> Login
// - POST /logout           -> Logout
// - GET  /profile          -> Profile
// - POST /profile/password -> ChangePassword
type AuthHandler struct {
	authService service.AuthService
	sessions    *session.Store
	renderer    TemplateRenderer
	logger      *slog.Logger
	isSecure    bool
}

// NewAuthHandler creates a new AuthHandler with the required dependencies.
func NewAuthHandler(
	authService service.AuthService,
	sessions *session.Store,
	renderer TemplateRenderer,
	logger *slog.Logger,
	isSecure bool,
) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		renderer:    renderer,
		logger:      logger,
		isSecure:    isSecure,
	}
}

// LoginPageData is passed to the auth/login template.
type LoginPageData struct {
	PageData
	Form     map[string]string // Form field values for re-populating on error
	Errors   map[string]string // Field-level validation errors
	ReturnTo string            // URL to return to after successful login
}

// ShowLogin renders the login form. A signed-in operator is sent straight
// to the dashboard.
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	if auth.GetSession(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	data := LoginPageData{
		PageData: NewPageData(w, r, h.isSecure),
		Form:     make(map[string]string),
		Errors:   make(map[string]string),
		ReturnTo: safeReturnTo(r.URL.Query().Get("return_to")),
	}
	h.renderer.RenderHTTP(w, "auth/login", data)
}

// Login processes the login form: exchanges credentials with the platform,
// stores the token pair in a session row, and sets the session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.logger.Error("failed to parse form", "error", err)
		h.renderLoginError(w, r, nil, nil, "Invalid form submission. Please try again.")
		return
	}
	if !CheckCSRF(w, r) {
		return
	}

	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	returnTo := safeReturnTo(r.FormValue("return_to"))

	formValues := map[string]string{"username": username, "return_to": returnTo}

	fieldErrors := make(map[string]string)
	if username == "" {
		fieldErrors["username"] = "Username is required"
	}
	if password == "" {
		fieldErrors["password"] = "Password is required"
	}
	if len(fieldErrors) > 0 {
		h.renderLoginError(w, r, formValues, fieldErrors, "")
		return
	}

	result, err := h.authService.Login(r.Context(), username, password)
	if err != nil {
		switch domain.ErrorCode(err) {
		case domain.EINVALID, domain.EUNAUTHORIZED:
			h.renderLoginError(w, r, formValues, nil, "Invalid username or password.")
		case domain.ERATELIMIT:
			h.renderLoginError(w, r, formValues, nil, "Too many attempts. Please wait and try again.")
		default:
			h.logger.Error("login failed", "error", err, "username", username)
			h.renderLoginError(w, r, formValues, nil, domain.ErrorMessage(err))
		}
		return
	}

	role := domain.RoleStaff
	if result.User != nil && result.User.Role != "" {
		role = result.User.Role
	}

	sess, err := h.sessions.Create(r.Context(), username, role, result.Tokens.Access, result.Tokens.Refresh)
	if err != nil {
		h.logger.Error("failed to create session", "error", err, "username", username)
		h.renderLoginError(w, r, formValues, nil, "Sign-in failed. Please try again.")
		return
	}

	setSessionCookie(w, sess.Token, h.isSecure)
	csrf.RefreshToken(w, h.isSecure)

	h.logger.Info("operator signed in", "username", username, "role", role)

	if returnTo != "" {
		http.Redirect(w, r, returnTo, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout revokes the refresh token on the platform (best effort), deletes
// the session row, and clears the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if !CheckCSRF(w, r) {
		return
	}

	if sess := auth.GetSession(r.Context()); sess != nil {
		if err := h.authService.Logout(r.Context(), sess.RefreshToken); err != nil {
			// The local session is gone either way; the platform token
			// will lapse on its own.
			h.logger.Debug("platform logout failed", "error", err, "username", sess.Username)
		}
		if err := h.sessions.Delete(r.Context(), sess.Token); err != nil {
			h.logger.Error("failed to delete session", "error", err)
		}
	}

	clearSessionCookie(w, h.isSecure)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// ProfilePageData is passed to the profile template.
type ProfilePageData struct {
	PageData
	User         *domain.User
	LoginHistory []domain.LoginHistory
	Errors       map[string]string
}

// Profile renders the operator's account page with recent sign-in history.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, err := h.authService.Profile(r.Context())
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	history, err := h.authService.LoginHistory(r.Context(), domain.ListQuery{})
	if err != nil {
		// History is secondary; render the page without it.
		h.logger.Warn("failed to load login history", "error", err)
		history = &domain.Page[domain.LoginHistory]{}
	}

	data := ProfilePageData{
		PageData:     NewPageData(w, r, h.isSecure),
		User:         user,
		LoginHistory: history.Results,
		Errors:       make(map[string]string),
	}
	h.renderer.RenderHTTP(w, "profile", data)
}

// ChangePassword processes the password change form on the profile page.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.logger.Error("failed to parse form", "error", err)
		SetFlash(w, "error", "Invalid form submission.")
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}
	if !CheckCSRF(w, r) {
		return
	}

	params := domain.ChangePasswordParams{
		OldPassword:        r.FormValue("old_password"),
		NewPassword:        r.FormValue("new_password"),
		NewPasswordConfirm: r.FormValue("new_password_confirm"),
	}

	fieldErrors := make(map[string]string)
	if params.OldPassword == "" {
		fieldErrors["old_password"] = "Current password is required"
	}
	if len(params.NewPassword) < 8 {
		fieldErrors["new_password"] = "New password must be at least 8 characters"
	}
	if params.NewPassword != params.NewPasswordConfirm {
		fieldErrors["new_password_confirm"] = "Passwords do not match"
	}
	if len(fieldErrors) > 0 {
		h.renderProfileErrors(w, r, fieldErrors)
		return
	}

	if err := h.authService.ChangePassword(r.Context(), params); err != nil {
		if fields := domain.FieldErrors(err); fields != nil {
			h.renderProfileErrors(w, r, fields)
			return
		}
		h.logger.Error("failed to change password", "error", err)
		SetFlash(w, "error", domain.ErrorMessage(err))
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}

	SetFlash(w, "success", "Password updated.")
	http.Redirect(w, r, "/profile", http.StatusSeeOther)
}

func (h *AuthHandler) renderLoginError(w http.ResponseWriter, r *http.Request, formValues, fieldErrors map[string]string, flashMessage string) {
	if formValues == nil {
		formValues = make(map[string]string)
	}
	if fieldErrors == nil {
		fieldErrors = make(map[string]string)
	}

	data := LoginPageData{
		PageData: NewPageData(w, r, h.isSecure),
		Form:     formValues,
		Errors:   fieldErrors,
		ReturnTo: formValues["return_to"],
	}
	if flashMessage != "" {
		data.Flash = &Flash{Type: "error", Message: flashMessage}
	}
	h.renderer.RenderHTTP(w, "auth/login", data)
}

func (h *AuthHandler) renderProfileErrors(w http.ResponseWriter, r *http.Request, fieldErrors map[string]string) {
	user, err := h.authService.Profile(r.Context())
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	data := ProfilePageData{
		PageData: NewPageData(w, r, h.isSecure),
		User:     user,
		Errors:   fieldErrors,
	}
	data.Flash = &Flash{Type: "error", Message: "Password change failed. Please check the form."}
	h.renderer.RenderHTTP(w, "profile", data)
}

// safeReturnTo only allows same-site relative paths, so the login redirect
// cannot be pointed at another host.
func safeReturnTo(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return ""
	}
	return raw
}

// setSessionCookie sets the session cookie on the response.
func setSessionCookie(w http.ResponseWriter, token string, isSecure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     session.CookiePath,
		MaxAge:   session.CookieMaxAge,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie removes the session cookie from the client.
func clearSessionCookie(w http.ResponseWriter, isSecure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     session.CookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
