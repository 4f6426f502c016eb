package domain

// ============================================================
// User management - request / response types
// ============================================================

// CreateUserRequest is the body of create-user.
type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name,omitempty"`
	Role     Role   `json:"role"`
	Sector   Sector `json:"sector"`
}

// UpdateUserRequest is the body of update-user. Empty fields are left as is.
type UpdateUserRequest struct {
	UserID   string  `json:"user_id"`
	Username string  `json:"username,omitempty"`
	Email    string  `json:"email,omitempty"`
	FullName string  `json:"full_name,omitempty"`
	Role     Role    `json:"role,omitempty"`
	Sector   *Sector `json:"sector,omitempty"`
}

// DeleteUserRequest is the body of delete-user.
type DeleteUserRequest struct {
	UserID string `json:"user_id"`
}

// ResetPasswordRequest is the body of reset-password.
type ResetPasswordRequest struct {
	UserID      string `json:"user_id"`
	NewPassword string `json:"new_password"`
}

// UserAccount is a managed user as seen by the user-management screen.
type UserAccount struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
	Role     Role   `json:"role"`
	Sector   Sector `json:"sector"`
}

// UserFunctionResponse is the success envelope of the user functions.
type UserFunctionResponse struct {
	Success bool         `json:"success"`
	User    *UserAccount `json:"user,omitempty"`
	Message string       `json:"message,omitempty"`
}

// ============================================================
// Auth
// ============================================================

// LoginRequest is the body for POST /v1/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthTokens is what the hosted auth returns on a password grant.
type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	UserID       string `json:"-"`
}

// LoginResponse is the body for 200 from POST /v1/auth/login.
type LoginResponse struct {
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
	ExpiresIn    int           `json:"expiresIn"`
	Session      *Session      `json:"session"`
	Capabilities *Capabilities `json:"capabilities"`
}

// Capabilities is the rendered permission snapshot for a session.
type Capabilities struct {
	AccessCalendar       bool `json:"accessCalendar"`
	EditCalendar         bool `json:"editCalendar"`
	AccessFleet          bool `json:"accessFleet"`
	EditFleet            bool `json:"editFleet"`
	AccessBonus          bool `json:"accessBonus"`
	EditBonus            bool `json:"editBonus"`
	AccessTeam           bool `json:"accessTeam"`
	EditTeam             bool `json:"editTeam"`
	AccessVacations      bool `json:"accessVacations"`
	EditVacations        bool `json:"editVacations"`
	AccessUserManagement bool `json:"accessUserManagement"`
	EditUserManagement   bool `json:"editUserManagement"`
}
