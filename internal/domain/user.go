package domain

import "time"

// Operator roles on the platform.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleStaff   = "staff"
)

// User is a back-office operator account on the platform (not a customer).
type User struct {
	ID            int64      `json:"id"`
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	Phone         string     `json:"phone"`
	Role          string     `json:"role"`
	RoleDisplay   string     `json:"role_display"`
	Status        string     `json:"status"`
	StatusDisplay string     `json:"status_display"`
	LastLogin     *time.Time `json:"last_login"`
	LastLoginIP   string     `json:"last_login_ip"`
	DateJoined    time.Time  `json:"date_joined"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// UserParams is the create/update payload for an operator account.
// Password fields are only sent on create.
type UserParams struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	FirstName       string `json:"first_name,omitempty"`
	LastName        string `json:"last_name,omitempty"`
	Phone           string `json:"phone,omitempty"`
	Password        string `json:"password,omitempty"`
	PasswordConfirm string `json:"password_confirm,omitempty"`
	Role            string `json:"role"`
	Status          string `json:"status,omitempty"`
}

// ChangePasswordParams is the self-service password change payload.
type ChangePasswordParams struct {
	OldPassword        string `json:"old_password"`
	NewPassword        string `json:"new_password"`
	NewPasswordConfirm string `json:"new_password_confirm"`
}

// LoginHistory is one sign-in attempt recorded by the platform.
type LoginHistory struct {
	ID            int64      `json:"id"`
	Username      string     `json:"username"`
	IPAddress     string     `json:"ip_address"`
	UserAgent     string     `json:"user_agent"`
	LoginTime     time.Time  `json:"login_time"`
	LogoutTime    *time.Time `json:"logout_time"`
	IsSuccessful  bool       `json:"is_successful"`
	FailureReason string     `json:"failure_reason"`
}
