package handler

import (
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"github.com/dhakanet/ispconsole/internal/domain"
	"github.com/dhakanet/ispconsole/internal/service"
)

// UserHandler handles operator account pages. All routes sit behind the
// admin-only middleware; the platform enforces the same rule server-side.
type UserHandler struct {
	users    service.UserService
	renderer TemplateRenderer
	logger   *slog.Logger
	isSecure bool
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users service.UserService, renderer TemplateRenderer, logger *slog.Logger, isSecure bool) *UserHandler {
	return &UserHandler{
		users:    users,
		renderer: renderer,
		logger:   logger,
		isSecure: isSecure,
	}
}

// UserListPageData is passed to the users/index template.
type UserListPageData struct {
	PageData
	Users      []domain.User
	Query      domain.ListQuery
	Pagination domain.Pagination
	QueryFunc  func(page int) string
}

// UserFormPageData is passed to the users/new and users/edit templates.
type UserFormPageData struct {
	PageData
	User   *domain.User
	Roles  []string
	Form   map[string]string
	Errors map[string]string
}

// List renders the operator account list.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	q := ParseListQuery(r, "role")

	page, err := h.users.List(r.Context(), q)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	data := UserListPageData{
		PageData:   NewPageData(w, r, h.isSecure),
		Users:      page.Results,
		Query:      q,
		Pagination: domain.NewPagination(q.Page, page.Count),
		QueryFunc:  func(p int) string { return ListQueryString(q, p) },
	}
	h.renderer.RenderHTTP(w, "users/index", data)
}

// New renders the operator create form.
func (h *UserHandler) New(w http.ResponseWriter, r *http.Request) {
	h.renderUserForm(w, r, "users/new", nil, nil, nil)
}

// Create processes the operator create form.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("users.create", "Invalid form submission"))
		return
	}
	if !CheckCSRF(w, r) {
		return
	}

	params, formValues, fieldErrors := parseUserForm(r, true)
	if len(fieldErrors) > 0 {
		h.renderUserForm(w, r, "users/new", nil, formValues, fieldErrors)
		return
	}

	user, err := h.users.Create(r.Context(), params)
	if err != nil {
		if fields := domain.FieldErrors(err); fields != nil {
			h.renderUserForm(w, r, "users/new", nil, formValues, fields)
			return
		}
		ErrorResponse(w, r, h.logger, err)
		return
	}

	SetFlash(w, "success", "Operator "+user.Username+" created.")
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

// Edit renders the operator update form.
func (h *UserHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r, "id")
	if !ok {
		NotFoundResponse(w, r, h.logger)
		return
	}

	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	h.renderUserForm(w, r, "users/edit", user, map[string]string{
		"username":   user.Username,
		"email":      user.Email,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"phone":      user.Phone,
		"role":       user.Role,
		"status":     user.Status,
	}, nil)
}

// Update processes the operator update form. Passwords are never changed
// here; operators use the self-service flow on their profile page.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r, "id")
	if !ok {
		NotFoundResponse(w, r, h.logger)
		return
	}
	if err := r.ParseForm(); err != nil {
		ErrorResponse(w, r, h.logger, domain.Invalid("users.update", "Invalid form submission"))
		return
	}
	if !CheckCSRF(w, r) {
		return
	}

	params, formValues, fieldErrors := parseUserForm(r, false)
	if len(fieldErrors) > 0 {
		h.renderUserEditForm(w, r, id, formValues, fieldErrors)
		return
	}

	user, err := h.users.Update(r.Context(), id, params)
	if err != nil {
		if fields := domain.FieldErrors(err); fields != nil {
			h.renderUserEditForm(w, r, id, formValues, fields)
			return
		}
		ErrorResponse(w, r, h.logger, err)
		return
	}

	SetFlash(w, "success", "Operator "+user.Username+" updated.")
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

// Delete removes an operator account.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := ParseID(r, "id")
	if !ok {
		NotFoundResponse(w, r, h.logger)
		return
	}
	if !CheckCSRF(w, r) {
		return
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		// The platform rejects deleting your own account.
		if domain.ErrorCode(err) == domain.ECONFLICT {
			SetFlash(w, "error", domain.ErrorMessage(err))
			http.Redirect(w, r, "/users", http.StatusSeeOther)
			return
		}
		ErrorResponse(w, r, h.logger, err)
		return
	}

	SetFlash(w, "success", "Operator deleted.")
	http.Redirect(w, r, "/users", http.StatusSeeOther)
}

func (h *UserHandler) renderUserForm(w http.ResponseWriter, r *http.Request, template string, user *domain.User, formValues, fieldErrors map[string]string) {
	if formValues == nil {
		formValues = make(map[string]string)
	}
	if fieldErrors == nil {
		fieldErrors = make(map[string]string)
	}
	data := UserFormPageData{
		PageData: NewPageData(w, r, h.isSecure),
		User:     user,
		Roles:    []string{domain.RoleAdmin, domain.RoleManager, domain.RoleStaff},
		Form:     formValues,
		Errors:   fieldErrors,
	}
	h.renderer.RenderHTTP(w, template, data)
}

func (h *UserHandler) renderUserEditForm(w http.ResponseWriter, r *http.Request, id int64, formValues, fieldErrors map[string]string) {
	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	h.renderUserForm(w, r, "users/edit", user, formValues, fieldErrors)
}

// parseUserForm extracts and validates the operator form fields. Password
// fields are only read when creating.
func parseUserForm(r *http.Request, isCreate bool) (domain.UserParams, map[string]string, map[string]string) {
	formValues := map[string]string{
		"username":   strings.TrimSpace(r.FormValue("username")),
		"email":      strings.TrimSpace(r.FormValue("email")),
		"first_name": strings.TrimSpace(r.FormValue("first_name")),
		"last_name":  strings.TrimSpace(r.FormValue("last_name")),
		"phone":      strings.TrimSpace(r.FormValue("phone")),
		"role":       strings.TrimSpace(r.FormValue("role")),
		"status":     strings.TrimSpace(r.FormValue("status")),
	}

	fieldErrors := make(map[string]string)
	if formValues["username"] == "" {
		fieldErrors["username"] = "Username is required"
	}
	if formValues["email"] == "" {
		fieldErrors["email"] = "Email is required"
	} else if _, err := mail.ParseAddress(formValues["email"]); err != nil {
		fieldErrors["email"] = "Enter a valid email address"
	}
	switch formValues["role"] {
	case domain.RoleAdmin, domain.RoleManager, domain.RoleStaff:
	default:
		fieldErrors["role"] = "Select a role"
	}

	params := domain.UserParams{
		Username:  formValues["username"],
		Email:     formValues["email"],
		FirstName: formValues["first_name"],
		LastName:  formValues["last_name"],
		Phone:     formValues["phone"],
		Role:      formValues["role"],
		Status:    formValues["status"],
	}

	if isCreate {
		password := r.FormValue("password")
		confirm := r.FormValue("password_confirm")
		if len(password) < 8 {
			fieldErrors["password"] = "Password must be at least 8 characters"
		}
		if password != confirm {
			fieldErrors["password_confirm"] = "Passwords do not match"
		}
		params.Password = password
		params.PasswordConfirm = confirm
	}

	return params, formValues, fieldErrors
}
