package types

// SignupRequest represents the request to create a new user account.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name,omitempty"`
}

// LoginRequest represents the login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by signup and login, including paywall status.
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	FullName    string `json:"full_name,omitempty"`
	Plan        string `json:"plan"`
	HasResume   bool   `json:"has_resume"`
	WeeklyUsage int    `json:"weekly_usage"`
	WeeklyLimit int    `json:"weekly_limit"`
}

// CalculateATSRequest carries the job description for a scoring call.
type CalculateATSRequest struct {
	JobDesc string `json:"job_desc" validate:"required"`
}

// OptimizeResumeRequest carries the job description and optional addon
// content for an optimization run.
type OptimizeResumeRequest struct {
	JobDesc string `json:"job_desc" validate:"required"`
	Addons  string `json:"addons,omitempty"`
}
