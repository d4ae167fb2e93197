package coachapi

import "time"

// ErrorResponse is the standard error body for every endpoint.
type ErrorResponse struct {
	// Error is a stable machine-readable code (e.g. "invalid_request",
	// "invalid_token", "token_used", "token_expired").
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error.
	ErrorDescription string `json:"error_description"`
}

// Error codes returned in ErrorResponse.Error.
const (
	ErrCodeInvalidRequest     = "invalid_request"
	ErrCodeInvalidCredentials = "invalid_credentials"
	ErrCodeInvalidToken       = "invalid_token"
	ErrCodeTokenUsed          = "token_used"
	ErrCodeTokenExpired       = "token_expired"
	ErrCodePasswordTooShort   = "password_too_short"
	ErrCodeGoalLocked         = "goal_locked"
	ErrCodeNotFound           = "not_found"
	ErrCodeConflict           = "conflict"
	ErrCodeForbidden          = "forbidden"
	ErrCodeServerError        = "server_error"
	ErrCodeUnresolved         = "unresolved"
	ErrCodeDeliveryFailed     = "delivery_failed"
)

// LoginRequest is the body for POST /v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is the body returned by login and refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"` // always "Bearer"
	ExpiresIn    int64  `json:"expires_in"` // seconds
	Landing      string `json:"landing"`    // selector | admin | coach | coachee
}

// RefreshRequest is the body for POST /v1/auth/refresh and /v1/auth/logout.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LandingResponse is the body for GET /v1/landing.
type LandingResponse struct {
	Landing string `json:"landing"`
}

// CreateCoacheeRequest is the body for POST /v1/coachees.
type CreateCoacheeRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

// Coachee is a coaching relationship as returned by the API.
type Coachee struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Status    string    `json:"status"` // invited | active
	CreatedAt time.Time `json:"created_at"`
}

// CoacheeListResponse is the body for GET /v1/coachees.
type CoacheeListResponse struct {
	Coachees []Coachee `json:"coachees"`
}

// SendInvitationRequest is the body for POST /v1/invitations/send.
type SendInvitationRequest struct {
	CoacheeID string `json:"coachee_id"`
	// Email overrides the coachee's stored address when set.
	Email string `json:"email,omitempty"`
}

// InvitationResponse describes an issued invitation. The raw token is never
// returned over the API; it only travels in the emailed link.
type InvitationResponse struct {
	ID        string    `json:"id"`
	CoacheeID string    `json:"coachee_id"`
	Email     string    `json:"email"`
	Status    string    `json:"status"` // sent | used | expired | revoked
	ExpiresAt time.Time `json:"expires_at"`
}

// RedeemInvitationRequest is the body for POST /v1/invitations/redeem.
type RedeemInvitationRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// RedeemInvitationResponse confirms activation.
type RedeemInvitationResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// PasswordResetRequest is the body for POST /v1/password-resets.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// RedeemPasswordResetRequest is the body for POST /v1/password-resets/redeem.
type RedeemPasswordResetRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// StatusResponse is a generic acknowledgement body.
type StatusResponse struct {
	Status string `json:"status"`
}

// CreateGoalRequest is the body for POST /v1/quieros.
type CreateGoalRequest struct {
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
}

// UpdateGoalRequest is the body for PUT /v1/quieros/{id}.
type UpdateGoalRequest struct {
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
}

// GoalStatusRequest is the body for PUT /v1/quieros/{id}/status.
type GoalStatusRequest struct {
	Status string `json:"status"` // activo | reformulado | cerrado
}

// Goal is a "quiero" as returned by the API.
type Goal struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Detail    string    `json:"detail,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GoalListResponse is the body for GET /v1/quieros.
type GoalListResponse struct {
	Goals []Goal `json:"goals"`
}

// CreateActionRequest is the body for POST /v1/quieros/{id}/actions.
type CreateActionRequest struct {
	Kind        string `json:"kind"` // habilitante | inhabilitante
	Description string `json:"description"`
}

// UpdateActionRequest is the body for PUT /v1/actions/{id}.
type UpdateActionRequest struct {
	Description string `json:"description"`
	Done        bool   `json:"done"`
}

// Action is a goal's enabler or blocker as returned by the API.
type Action struct {
	ID          string    `json:"id"`
	GoalID      string    `json:"goal_id"`
	Kind        string    `json:"kind"`
	Description string    `json:"description"`
	Done        bool      `json:"done"`
	CreatedAt   time.Time `json:"created_at"`
}

// ActionListResponse is the body for GET /v1/quieros/{id}/actions.
type ActionListResponse struct {
	Actions []Action `json:"actions"`
}

// Setting is an application setting as returned by the API.
type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SettingListResponse is the body for GET /v1/settings.
type SettingListResponse struct {
	Settings []Setting `json:"settings"`
}

// PutSettingRequest is the body for PUT /v1/settings/{key}.
type PutSettingRequest struct {
	Value string `json:"value"`
}

// UserProfileResponse is the body for GET /v1/users/{id} and /v1/me.
type UserProfileResponse struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	Active   bool     `json:"active"`
	Roles    []string `json:"roles"`
}

// RoleRequest is the body for POST/DELETE /v1/users/{id}/roles.
type RoleRequest struct {
	Role string `json:"role"`
}
